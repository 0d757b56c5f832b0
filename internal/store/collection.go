// Package store keeps one ordered, newest-first record collection per
// storage key, cached in memory and written back as a JSON array on every
// mutation.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"slices"
	"sync"

	"cardifyAPI/internal/broadcast"
	"cardifyAPI/internal/storage"
)

// Upgrader migrates a raw persisted payload to the current record shape.
type Upgrader interface {
	Upgrade(ctx context.Context, name string, raw []byte) ([]byte, bool, error)
	Normalize(ctx context.Context, name string, raw []byte) ([]byte, error)
	Stamp(ctx context.Context, name string) error
}

type Options[T any] struct {
	// Name is the collection name, e.g. "tickets"; the storage key is
	// derived from it and Namespace.
	Name      string
	Namespace string
	Storage   storage.Storage
	ID        func(*T) string

	// Cap bounds the collection; inserting past it drops the oldest records.
	Cap int
	// Seed is written when the key is absent on first load.
	Seed []T
	// ReadThrough re-reads storage before every mutation so writers in
	// other processes are not clobbered.
	ReadThrough bool

	Migrator    Upgrader
	Broadcaster broadcast.Broadcaster
}

type Collection[T any] struct {
	mu      sync.RWMutex
	records []T

	name        string
	key         string
	storage     storage.Storage
	id          func(*T) string
	cap         int
	seed        []T
	readThrough bool
	migrator    Upgrader
	broadcaster broadcast.Broadcaster
	origin      string
	unsubscribe func()
}

func NewCollection[T any](opts Options[T]) *Collection[T] {
	return &Collection[T]{
		name:        opts.Name,
		key:         storage.Key(opts.Namespace, opts.Name),
		storage:     opts.Storage,
		id:          opts.ID,
		cap:         opts.Cap,
		seed:        opts.Seed,
		readThrough: opts.ReadThrough,
		migrator:    opts.Migrator,
		broadcaster: opts.Broadcaster,
		origin:      NewID("origin"),
	}
}

func (c *Collection[T]) Key() string { return c.key }

// Load hydrates the cache. An absent key is seeded; a present one is
// migrated and decoded. When a broadcaster is set, Load also starts
// following changes written by other instances.
func (c *Collection[T]) Load(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	raw, err := c.storage.Get(ctx, c.key)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		c.records = cloneAll(c.seed)
		if err := c.write(ctx, c.records); err != nil {
			return err
		}
		log.Printf("store: seeded %s with %d record(s)", c.key, len(c.records))
	case err != nil:
		return fmt.Errorf("failed to load %s: %w", c.key, err)
	default:
		migrated := false
		if c.migrator != nil {
			raw, migrated, err = c.migrator.Upgrade(ctx, c.name, raw)
			if err != nil {
				return err
			}
		}
		records, err := decode[T](raw)
		if err != nil {
			return fmt.Errorf("failed to decode %s: %w", c.key, err)
		}
		c.records = records
		if migrated {
			if err := c.write(ctx, c.records); err != nil {
				return err
			}
		}
	}

	if c.migrator != nil {
		if err := c.migrator.Stamp(ctx, c.name); err != nil {
			return err
		}
	}

	if c.broadcaster != nil && c.unsubscribe == nil {
		unsub, err := c.broadcaster.Subscribe(c.onChange)
		if err != nil {
			return fmt.Errorf("failed to follow %s: %w", c.key, err)
		}
		c.unsubscribe = unsub
	}
	return nil
}

// Reload replaces the cache with what storage holds now. An absent key
// reads as an empty collection.
func (c *Collection[T]) Reload(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.refresh(ctx)
}

func (c *Collection[T]) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.unsubscribe != nil {
		c.unsubscribe()
		c.unsubscribe = nil
	}
}

func (c *Collection[T]) onChange(change broadcast.Change) {
	if change.Key != c.key || change.Origin == c.origin {
		return
	}
	if err := c.Reload(context.Background()); err != nil {
		log.Printf("store: failed to reload %s after external change: %v", c.key, err)
	}
}

func (c *Collection[T]) List() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return cloneAll(c.records)
}

func (c *Collection[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.records)
}

func (c *Collection[T]) Get(id string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if i := c.indexOf(id); i >= 0 {
		return clone(c.records[i]), true
	}
	var zero T
	return zero, false
}

func (c *Collection[T]) Filter(keep func(*T) bool) []T {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []T
	for i := range c.records {
		if keep(&c.records[i]) {
			out = append(out, clone(c.records[i]))
		}
	}
	return out
}

// Insert prepends rec and persists.
func (c *Collection[T]) Insert(ctx context.Context, rec T) error {
	err := c.mutate(ctx, func(records []T) ([]T, bool) {
		next := make([]T, 0, len(records)+1)
		next = append(next, clone(rec))
		next = append(next, records...)
		if c.cap > 0 && len(next) > c.cap {
			next = next[:c.cap]
		}
		return next, true
	})
	return err
}

// Update applies fn to the record with the given id. It reports false,
// without touching storage, when no record matches.
func (c *Collection[T]) Update(ctx context.Context, id string, fn func(*T)) (T, bool, error) {
	updated, err := c.UpdateMany(ctx, []string{id}, fn)
	if err != nil || len(updated) == 0 {
		var zero T
		return zero, false, err
	}
	return updated[0], true, nil
}

// UpdateMany applies fn to every record whose id is in ids and returns
// the updated records in collection order.
func (c *Collection[T]) UpdateMany(ctx context.Context, ids []string, fn func(*T)) ([]T, error) {
	var updated []T
	err := c.mutate(ctx, func(records []T) ([]T, bool) {
		next := slices.Clone(records)
		for i := range next {
			if !slices.Contains(ids, c.id(&next[i])) {
				continue
			}
			rec := clone(next[i])
			fn(&rec)
			next[i] = rec
			updated = append(updated, clone(rec))
		}
		return next, len(updated) > 0
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (c *Collection[T]) Delete(ctx context.Context, id string) (bool, error) {
	removed, err := c.DeleteMany(ctx, []string{id})
	return len(removed) > 0, err
}

// DeleteMany removes every record whose id is in ids and returns them.
// Nothing is written when no id matches.
func (c *Collection[T]) DeleteMany(ctx context.Context, ids []string) ([]T, error) {
	var removed []T
	err := c.mutate(ctx, func(records []T) ([]T, bool) {
		next := make([]T, 0, len(records))
		for _, rec := range records {
			if slices.Contains(ids, c.id(&rec)) {
				removed = append(removed, rec)
				continue
			}
			next = append(next, rec)
		}
		return next, len(removed) > 0
	})
	if err != nil {
		return nil, err
	}
	return removed, nil
}

// Clear empties the collection and removes its key from storage.
func (c *Collection[T]) Clear(ctx context.Context) error {
	c.mu.Lock()
	if err := c.storage.Delete(ctx, c.key); err != nil {
		c.mu.Unlock()
		return fmt.Errorf("failed to clear %s: %w", c.key, err)
	}
	c.records = nil
	c.mu.Unlock()

	c.publish(ctx)
	return nil
}

// mutate runs a read-modify-write under the lock. The cache only changes
// once the write succeeded. Subscribers are notified after unlocking.
func (c *Collection[T]) mutate(ctx context.Context, fn func([]T) ([]T, bool)) error {
	c.mu.Lock()
	if c.readThrough {
		if err := c.refresh(ctx); err != nil {
			c.mu.Unlock()
			return err
		}
	}

	next, changed := fn(c.records)
	if !changed {
		c.mu.Unlock()
		return nil
	}
	if err := c.write(ctx, next); err != nil {
		c.mu.Unlock()
		return err
	}
	c.records = next
	c.mu.Unlock()

	c.publish(ctx)
	return nil
}

func (c *Collection[T]) refresh(ctx context.Context) error {
	raw, err := c.storage.Get(ctx, c.key)
	if errors.Is(err, storage.ErrNotFound) {
		c.records = nil
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to reload %s: %w", c.key, err)
	}
	if c.migrator != nil {
		if raw, err = c.migrator.Normalize(ctx, c.name, raw); err != nil {
			return err
		}
	}
	records, err := decode[T](raw)
	if err != nil {
		return fmt.Errorf("failed to decode %s: %w", c.key, err)
	}
	c.records = records
	return nil
}

func (c *Collection[T]) write(ctx context.Context, records []T) error {
	if records == nil {
		records = []T{}
	}
	payload, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", c.key, err)
	}
	if err := c.storage.Set(ctx, c.key, payload); err != nil {
		return fmt.Errorf("failed to persist %s: %w", c.key, err)
	}
	return nil
}

func (c *Collection[T]) publish(ctx context.Context) {
	if c.broadcaster == nil {
		return
	}
	if err := c.broadcaster.Publish(ctx, broadcast.Change{Key: c.key, Origin: c.origin}); err != nil {
		log.Printf("store: failed to broadcast change to %s: %v", c.key, err)
	}
}

func (c *Collection[T]) indexOf(id string) int {
	for i := range c.records {
		if c.id(&c.records[i]) == id {
			return i
		}
	}
	return -1
}

func decode[T any](raw []byte) ([]T, error) {
	var records []T
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, err
	}
	return records, nil
}
