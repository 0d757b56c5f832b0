package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"cardifyAPI/internal/notification"
	"cardifyAPI/internal/scanner"
	"cardifyAPI/internal/types/scan"
	"cardifyAPI/internal/types/ticket"
)

var (
	ErrScanSessionNotFound = errors.New("scan session not found")
	ErrNoValidTicket       = errors.New("no valid ticket in this scan session")
	ErrTicketGone          = errors.New("ticket no longer exists")
)

// ScanService owns the open scan dialogs. Each one is a scanner.Session
// plus the live stream clients watching it.
type ScanService struct {
	mu       sync.RWMutex
	sessions map[string]*scanSession

	tickets  *TicketService
	notifier Notifier
}

type scanSession struct {
	*scanner.Session
	openedAt time.Time

	mu      sync.Mutex
	clients map[*StreamClient]bool
}

func NewScanService(tickets *TicketService, notifier Notifier) *ScanService {
	return &ScanService{
		sessions: make(map[string]*scanSession),
		tickets:  tickets,
		notifier: notifier,
	}
}

func (s *ScanService) Open() scan.Snapshot {
	sess := &scanSession{
		Session:  scanner.NewSession(uuid.New().String(), s.tickets),
		openedAt: time.Now(),
		clients:  make(map[*StreamClient]bool),
	}

	s.mu.Lock()
	s.sessions[sess.ID()] = sess
	s.mu.Unlock()

	activeScanSessions.Inc()
	log.Printf("[scan %s] opened", sess.ID())
	return sess.Snapshot()
}

func (s *ScanService) Get(id string) (scan.Snapshot, bool) {
	sess, ok := s.lookup(id)
	if !ok {
		return scan.Snapshot{}, false
	}
	return sess.Snapshot(), true
}

// Frame feeds one decoded QR text into the session.
func (s *ScanService) Frame(ctx context.Context, id, text string) (scan.Snapshot, error) {
	sess, ok := s.lookup(id)
	if !ok {
		return scan.Snapshot{}, ErrScanSessionNotFound
	}
	snap, outcome := sess.HandleFrame(text)
	s.afterFrame(ctx, sess, snap, outcome)
	return snap, nil
}

func (s *ScanService) Reset(ctx context.Context, id string) (scan.Snapshot, error) {
	sess, ok := s.lookup(id)
	if !ok {
		return scan.Snapshot{}, ErrScanSessionNotFound
	}
	snap, err := sess.Reset()
	if err != nil {
		return snap, err
	}
	sess.publish(snap)
	return snap, nil
}

// CameraError reports that the frame source could not start.
func (s *ScanService) CameraError(ctx context.Context, id, message string) (scan.Snapshot, error) {
	sess, ok := s.lookup(id)
	if !ok {
		return scan.Snapshot{}, ErrScanSessionNotFound
	}
	snap, err := sess.Fail(message)
	if err != nil {
		return snap, err
	}

	log.Printf("[scan %s] camera error: %s", id, snap.Message)
	s.notifier.Notify(ctx, destructive("Camera Error", "Could not access the camera. Please check permissions."))
	sess.publish(snap)
	return snap, nil
}

// AddLog appends a note to the scan log of the ticket currently shown as
// valid. It is refused in every other state.
func (s *ScanService) AddLog(ctx context.Context, id, message string) (ticket.ScanLogEntry, error) {
	sess, ok := s.lookup(id)
	if !ok {
		return ticket.ScanLogEntry{}, ErrScanSessionNotFound
	}
	ticketID, ok := sess.ValidTicketID()
	if !ok {
		return ticket.ScanLogEntry{}, ErrNoValidTicket
	}

	entry, found, err := s.tickets.AddScanLogEntry(ctx, ticketID, message)
	if err != nil {
		return ticket.ScanLogEntry{}, err
	}
	if !found {
		return ticket.ScanLogEntry{}, fmt.Errorf("%w: %s", ErrTicketGone, ticketID)
	}
	return entry, nil
}

// Close ends the session and releases its frame source and stream clients.
func (s *ScanService) Close(id string) (scan.Snapshot, bool) {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if !ok {
		return scan.Snapshot{}, false
	}

	snap := sess.Close()
	sess.publish(snap)
	sess.dropClients()

	activeScanSessions.Dec()
	log.Printf("[scan %s] closed", id)
	return snap, true
}

func (s *ScanService) CloseAll() {
	s.mu.RLock()
	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	s.mu.RUnlock()

	for _, id := range ids {
		s.Close(id)
	}
}

// CleanupIdle closes sessions open longer than maxAge until ctx is done.
func (s *ScanService) CleanupIdle(ctx context.Context, every, maxAge time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.closeOlderThan(maxAge)
		}
	}
}

func (s *ScanService) closeOlderThan(maxAge time.Duration) int {
	s.mu.RLock()
	var stale []string
	for id, sess := range s.sessions {
		if time.Since(sess.openedAt) > maxAge {
			stale = append(stale, id)
		}
	}
	s.mu.RUnlock()

	for _, id := range stale {
		s.Close(id)
	}
	if len(stale) > 0 {
		log.Printf("Closed %d idle scan session(s)", len(stale))
	}
	return len(stale)
}

func (s *ScanService) lookup(id string) (*scanSession, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

func (s *ScanService) afterFrame(ctx context.Context, sess *scanSession, snap scan.Snapshot, outcome scanner.Outcome) {
	if outcome == scanner.OutcomeIgnored {
		return
	}
	scanOutcomes.WithLabelValues(outcome.String()).Inc()

	switch outcome {
	case scanner.OutcomeValid:
		s.notifier.Notify(ctx, notification.Toast{
			Title:       "Valid Ticket!",
			Description: fmt.Sprintf("Ticket for %s is valid.", snap.Ticket.OwnerName),
		})
	case scanner.OutcomeNotFound:
		s.notifier.Notify(ctx, destructive("Invalid Ticket", "This QR code does not correspond to a valid ticket."))
	case scanner.OutcomeNotJSON:
		s.notifier.Notify(ctx, destructive("Scan Error", "Could not parse QR code data."))
	}
	sess.publish(snap)
}

func (ss *scanSession) addClient(c *StreamClient) {
	ss.mu.Lock()
	ss.clients[c] = true
	ss.mu.Unlock()
}

func (ss *scanSession) removeClient(c *StreamClient) {
	ss.mu.Lock()
	delete(ss.clients, c)
	ss.mu.Unlock()
}

func (ss *scanSession) publish(snap scan.Snapshot) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	for c := range ss.clients {
		c.sendSnapshot(snap)
	}
}

func (ss *scanSession) dropClients() {
	ss.mu.Lock()
	clients := ss.clients
	ss.clients = make(map[*StreamClient]bool)
	ss.mu.Unlock()

	for c := range clients {
		c.Stop()
	}
}
