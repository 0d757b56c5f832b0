// Package scanner implements the ticket scan dialog: decoded QR text goes
// in, a valid/error verdict against the ticket store comes out.
package scanner

import (
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"cardifyAPI/internal/types/scan"
	"cardifyAPI/internal/types/ticket"
)

const (
	MsgNotJSON     = "QR code is not in the correct format."
	MsgNoID        = "Invalid QR code format."
	MsgNotFound    = "Ticket not found in the database."
	MsgCameraError = "Could not start QR scanner. Please ensure you have a camera and have granted permissions."
)

var ErrSessionClosed = errors.New("scan session is closed")

// Outcome classifies what a decoded frame did to the session.
type Outcome int

const (
	OutcomeIgnored Outcome = iota
	OutcomeValid
	OutcomeNotJSON
	OutcomeNoID
	OutcomeNotFound
)

func (o Outcome) String() string {
	switch o {
	case OutcomeValid:
		return "valid"
	case OutcomeNotJSON:
		return "not_json"
	case OutcomeNoID:
		return "no_id"
	case OutcomeNotFound:
		return "not_found"
	default:
		return "ignored"
	}
}

type TicketLookup interface {
	Get(id string) (ticket.Ticket, bool)
}

type Session struct {
	mu sync.Mutex

	id        string
	state     scan.State
	message   string
	ticket    *ticket.Ticket
	updatedAt time.Time

	lookup TicketLookup
	source FrameSource
}

func NewSession(id string, lookup TicketLookup) *Session {
	return &Session{
		id:        id,
		state:     scan.StateScanning,
		lookup:    lookup,
		updatedAt: time.Now(),
	}
}

func (s *Session) ID() string { return s.id }

// HandleFrame validates one decoded frame. Frames are only acted on while
// scanning; a verdict pauses decoding until Reset.
func (s *Session) HandleFrame(text string) (scan.Snapshot, Outcome) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != scan.StateScanning {
		return s.snapshotLocked(), OutcomeIgnored
	}

	var payload any
	if err := json.Unmarshal([]byte(text), &payload); err != nil {
		s.setLocked(scan.StateError, MsgNotJSON, nil)
		return s.snapshotLocked(), OutcomeNotJSON
	}

	id, ok := payloadID(payload)
	if !ok {
		s.setLocked(scan.StateError, MsgNoID, nil)
		return s.snapshotLocked(), OutcomeNoID
	}

	idStr, isString := id.(string)
	if !isString {
		s.setLocked(scan.StateError, MsgNotFound, nil)
		return s.snapshotLocked(), OutcomeNotFound
	}

	t, found := s.lookup.Get(idStr)
	if !found {
		s.setLocked(scan.StateError, MsgNotFound, nil)
		return s.snapshotLocked(), OutcomeNotFound
	}

	s.setLocked(scan.StateValid, "", &t)
	return s.snapshotLocked(), OutcomeValid
}

// Reset goes back to scanning from a verdict. It is a no-op while
// scanning and fails once closed.
func (s *Session) Reset() (scan.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == scan.StateClosed {
		return s.snapshotLocked(), ErrSessionClosed
	}
	if s.state != scan.StateScanning {
		s.setLocked(scan.StateScanning, "", nil)
	}
	return s.snapshotLocked(), nil
}

// Fail puts the session in the error state with a camera message. There
// is no retry; the session has to be closed and reopened.
func (s *Session) Fail(message string) (scan.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == scan.StateClosed {
		return s.snapshotLocked(), ErrSessionClosed
	}
	if message == "" {
		message = MsgCameraError
	}
	s.setLocked(scan.StateError, message, nil)
	return s.snapshotLocked(), nil
}

// ValidTicketID returns the id of the ticket on display, if any.
func (s *Session) ValidTicketID() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != scan.StateValid || s.ticket == nil {
		return "", false
	}
	return s.ticket.ID, true
}

// Close is terminal and releases the frame source, if one is attached.
func (s *Session) Close() scan.Snapshot {
	s.mu.Lock()
	src := s.source
	s.source = nil
	if s.state != scan.StateClosed {
		s.setLocked(scan.StateClosed, "", nil)
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()

	if src != nil {
		if err := src.Stop(); err != nil {
			log.Printf("[scan %s] failed to stop frame source: %v", s.id, err)
		}
	}
	return snap
}

func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == scan.StateClosed
}

func (s *Session) Snapshot() scan.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) setLocked(state scan.State, message string, t *ticket.Ticket) {
	s.state = state
	s.message = message
	s.ticket = t
	s.updatedAt = time.Now()
}

func (s *Session) snapshotLocked() scan.Snapshot {
	snap := scan.Snapshot{
		SessionID: s.id,
		State:     s.state,
		Message:   s.message,
		UpdatedAt: s.updatedAt,
	}
	if s.ticket != nil {
		summary := s.ticket.Summary()
		snap.Ticket = &summary
	}
	return snap
}

// payloadID extracts a truthy "id" from a decoded JSON object.
func payloadID(payload any) (any, bool) {
	obj, ok := payload.(map[string]any)
	if !ok {
		return nil, false
	}
	id, ok := obj["id"]
	if !ok {
		return nil, false
	}
	switch v := id.(type) {
	case nil:
		return nil, false
	case string:
		return v, v != ""
	case bool:
		return v, v
	case float64:
		return v, v != 0
	default:
		return v, true
	}
}
