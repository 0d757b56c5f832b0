// Package broadcast notifies other store instances that a persisted key
// changed so they can reload it. Each instance stamps its changes with an
// origin so it can ignore its own echoes.
package broadcast

import (
	"context"
	"sync"
)

type Change struct {
	Key    string `json:"key"`
	Origin string `json:"origin"`
}

type Broadcaster interface {
	Publish(ctx context.Context, change Change) error
	Subscribe(fn func(Change)) (unsubscribe func(), err error)
	Close() error
}

// Local fans changes out to subscribers in the same process.
type Local struct {
	mu     sync.RWMutex
	nextID int
	subs   map[int]func(Change)
}

func NewLocal() *Local {
	return &Local{subs: make(map[int]func(Change))}
}

func (l *Local) Publish(_ context.Context, change Change) error {
	l.mu.RLock()
	fns := make([]func(Change), 0, len(l.subs))
	for _, fn := range l.subs {
		fns = append(fns, fn)
	}
	l.mu.RUnlock()

	for _, fn := range fns {
		fn(change)
	}
	return nil
}

func (l *Local) Subscribe(fn func(Change)) (func(), error) {
	l.mu.Lock()
	id := l.nextID
	l.nextID++
	l.subs[id] = fn
	l.mu.Unlock()

	return func() {
		l.mu.Lock()
		delete(l.subs, id)
		l.mu.Unlock()
	}, nil
}

func (l *Local) Close() error {
	l.mu.Lock()
	l.subs = make(map[int]func(Change))
	l.mu.Unlock()
	return nil
}
