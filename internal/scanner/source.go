package scanner

import (
	"context"
	"log"

	"cardifyAPI/internal/types/scan"
)

// Frame is one decode attempt from a camera. Err is set when the frame
// held no readable code; such frames are expected and skipped.
type Frame struct {
	Text string
	Err  error
}

type FrameSource interface {
	Frames() <-chan Frame
	Stop() error
}

// Attach binds src to the session so Close releases it.
func (s *Session) Attach(src FrameSource) error {
	s.mu.Lock()
	if s.state == scan.StateClosed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	prev := s.source
	s.source = src
	s.mu.Unlock()

	if prev != nil {
		if err := prev.Stop(); err != nil {
			log.Printf("[scan %s] failed to stop previous frame source: %v", s.id, err)
		}
	}
	return nil
}

// Run feeds frames from src into the session until the source is
// drained, ctx is done, or the session closes. onUpdate is called for
// every frame that changed the session.
func Run(ctx context.Context, s *Session, src FrameSource, onUpdate func(scan.Snapshot, Outcome)) error {
	if err := s.Attach(src); err != nil {
		return err
	}
	defer s.Close()

	frames := src.Frames()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case f, ok := <-frames:
			if !ok {
				return nil
			}
			if f.Err != nil {
				continue
			}
			snap, outcome := s.HandleFrame(f.Text)
			if outcome != OutcomeIgnored && onUpdate != nil {
				onUpdate(snap, outcome)
			}
			if snap.State == scan.StateClosed {
				return nil
			}
		}
	}
}
