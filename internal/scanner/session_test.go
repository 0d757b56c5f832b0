package scanner

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"cardifyAPI/internal/types/scan"
	"cardifyAPI/internal/types/ticket"
)

type fakeTickets map[string]ticket.Ticket

func (f fakeTickets) Get(id string) (ticket.Ticket, bool) {
	t, ok := f[id]
	return t, ok
}

func tickets() fakeTickets {
	return fakeTickets{
		"tkt-X": {
			ID:        "tkt-X",
			EventName: "Conf",
			OwnerName: "Ada",
			EventDate: time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC),
			PassType:  ticket.PassVIP,
		},
	}
}

func TestHandleFrame(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		state   scan.State
		message string
		outcome Outcome
	}{
		{"known ticket", `{"id":"tkt-X"}`, scan.StateValid, "", OutcomeValid},
		{"full ticket payload", `{"id":"tkt-X","ownerName":"Ada","passType":"VIP"}`, scan.StateValid, "", OutcomeValid},
		{"not json", `not json`, scan.StateError, MsgNotJSON, OutcomeNotJSON},
		{"partial json", `{"id":"tkt-`, scan.StateError, MsgNotJSON, OutcomeNotJSON},
		{"missing id", `{"foo":1}`, scan.StateError, MsgNoID, OutcomeNoID},
		{"empty id", `{"id":""}`, scan.StateError, MsgNoID, OutcomeNoID},
		{"null payload", `null`, scan.StateError, MsgNoID, OutcomeNoID},
		{"array payload", `[1,2]`, scan.StateError, MsgNoID, OutcomeNoID},
		{"unknown id", `{"id":"tkt-missing"}`, scan.StateError, MsgNotFound, OutcomeNotFound},
		{"numeric id", `{"id":42}`, scan.StateError, MsgNotFound, OutcomeNotFound},
		{"member qr", `{"memberId":"member-1"}`, scan.StateError, MsgNoID, OutcomeNoID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSession("s1", tickets())
			snap, outcome := s.HandleFrame(tt.text)

			if outcome != tt.outcome {
				t.Errorf("Expected outcome %s, got %s", tt.outcome, outcome)
			}
			if snap.State != tt.state {
				t.Errorf("Expected state %s, got %s", tt.state, snap.State)
			}
			if snap.Message != tt.message {
				t.Errorf("Expected message %q, got %q", tt.message, snap.Message)
			}
		})
	}
}

func TestValidSnapshotCarriesTicketSummary(t *testing.T) {
	s := NewSession("s1", tickets())
	snap, _ := s.HandleFrame(`{"id":"tkt-X"}`)

	if snap.Ticket == nil {
		t.Fatal("Expected ticket summary")
	}
	if snap.Ticket.OwnerName != "Ada" || snap.Ticket.EventName != "Conf" || snap.Ticket.PassType != ticket.PassVIP {
		t.Errorf("Unexpected summary %+v", snap.Ticket)
	}
	if id, ok := s.ValidTicketID(); !ok || id != "tkt-X" {
		t.Errorf("Expected valid ticket id tkt-X, got %q", id)
	}
}

func TestFramesIgnoredUntilReset(t *testing.T) {
	s := NewSession("s1", tickets())
	s.HandleFrame(`not json`)

	snap, outcome := s.HandleFrame(`{"id":"tkt-X"}`)
	if outcome != OutcomeIgnored || snap.State != scan.StateError {
		t.Fatalf("Expected frame ignored while showing a verdict, got %s/%s", outcome, snap.State)
	}

	snap, err := s.Reset()
	if err != nil || snap.State != scan.StateScanning || snap.Message != "" {
		t.Fatalf("Expected clean scanning state after reset, got %+v (%v)", snap, err)
	}

	snap, outcome = s.HandleFrame(`{"id":"tkt-X"}`)
	if outcome != OutcomeValid || snap.State != scan.StateValid {
		t.Errorf("Expected valid after reset, got %s/%s", outcome, snap.State)
	}
}

func TestCameraFailure(t *testing.T) {
	s := NewSession("s1", tickets())
	snap, err := s.Fail("")
	if err != nil || snap.State != scan.StateError || snap.Message != MsgCameraError {
		t.Errorf("Expected camera error state, got %+v (%v)", snap, err)
	}
	if _, ok := s.ValidTicketID(); ok {
		t.Error("Expected no valid ticket in error state")
	}
}

type fakeSource struct {
	mu      sync.Mutex
	frames  chan Frame
	stopped int
}

func newFakeSource(frames ...Frame) *fakeSource {
	ch := make(chan Frame, len(frames))
	for _, f := range frames {
		ch <- f
	}
	return &fakeSource{frames: ch}
}

func (f *fakeSource) Frames() <-chan Frame { return f.frames }

func (f *fakeSource) Stop() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped++
	return nil
}

func TestCloseIsTerminalAndStopsSource(t *testing.T) {
	s := NewSession("s1", tickets())
	src := newFakeSource()
	s.Attach(src)

	s.HandleFrame(`{"id":"tkt-X"}`)
	snap := s.Close()

	if snap.State != scan.StateClosed {
		t.Errorf("Expected closed, got %s", snap.State)
	}
	if src.stopped != 1 {
		t.Errorf("Expected source stopped once, got %d", src.stopped)
	}
	if _, err := s.Reset(); !errors.Is(err, ErrSessionClosed) {
		t.Errorf("Expected ErrSessionClosed on reset, got %v", err)
	}
	if _, outcome := s.HandleFrame(`{"id":"tkt-X"}`); outcome != OutcomeIgnored {
		t.Errorf("Expected frames ignored after close, got %s", outcome)
	}

	s.Close()
	if src.stopped != 1 {
		t.Errorf("Expected second close not to stop the source again, got %d", src.stopped)
	}
}

func TestRunSkipsFrameErrors(t *testing.T) {
	s := NewSession("s1", tickets())
	src := newFakeSource(
		Frame{Err: errors.New("no code in view")},
		Frame{Text: `{"id":"tkt-X"}`},
		Frame{Text: `not json`},
	)
	close(src.frames)

	var outcomes []Outcome
	err := Run(context.Background(), s, src, func(_ scan.Snapshot, o Outcome) {
		outcomes = append(outcomes, o)
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(outcomes) != 1 || outcomes[0] != OutcomeValid {
		t.Errorf("Expected a single valid update, got %v", outcomes)
	}
	if !s.Closed() || src.stopped != 1 {
		t.Errorf("Expected session closed and source stopped, closed=%v stopped=%d", s.Closed(), src.stopped)
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	s := NewSession("s1", tickets())
	src := &fakeSource{frames: make(chan Frame)}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := Run(ctx, s, src, nil); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if src.stopped != 1 {
		t.Errorf("Expected source released on cancel, got %d", src.stopped)
	}
}
