// Package migrate upgrades persisted record arrays written by older
// versions of the application. Each collection has an ordered list of
// steps; the version a key was last written at is kept under a meta key
// in the same storage, so a step runs at most once per key.
package migrate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"

	"cardifyAPI/internal/storage"
)

// Step rewrites raw records in place. Steps only fill in or reshape
// fields that are missing, so replaying one is harmless.
type Step func(records []map[string]any) error

type Migrator struct {
	mu      sync.Mutex
	storage storage.Storage
	metaKey string
	plans   map[string][]Step
}

func New(s storage.Storage, namespace string) *Migrator {
	return &Migrator{
		storage: s,
		metaKey: storage.Key(namespace, "schema-versions"),
		plans:   make(map[string][]Step),
	}
}

// Register sets the steps for a collection. Its current version is len(steps).
func (m *Migrator) Register(name string, steps ...Step) *Migrator {
	m.mu.Lock()
	m.plans[name] = steps
	m.mu.Unlock()
	return m
}

// Version returns the version a collection was last stamped at, 0 if never.
func (m *Migrator) Version(ctx context.Context, name string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	versions, err := m.readVersions(ctx)
	if err != nil {
		return 0, err
	}
	return versions[name], nil
}

// Upgrade runs every pending step against raw and reports whether the
// payload changed. The new version is stamped only after the caller has
// persisted the result, via Stamp.
func (m *Migrator) Upgrade(ctx context.Context, name string, raw []byte) ([]byte, bool, error) {
	m.mu.Lock()
	steps := m.plans[name]
	versions, err := m.readVersions(ctx)
	m.mu.Unlock()
	if err != nil {
		return nil, false, err
	}

	current := versions[name]
	if current >= len(steps) {
		return raw, false, nil
	}

	var records []map[string]any
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, false, fmt.Errorf("failed to decode %s for migration: %w", name, err)
	}

	for v := current; v < len(steps); v++ {
		if err := steps[v](records); err != nil {
			return nil, false, fmt.Errorf("migration %s v%d failed: %w", name, v+1, err)
		}
		log.Printf("migrate: applied %s v%d to %d record(s)", name, v+1, len(records))
	}

	out, err := json.Marshal(records)
	if err != nil {
		return nil, false, fmt.Errorf("failed to encode migrated %s: %w", name, err)
	}
	return out, true, nil
}

// Normalize replays every step of a collection's plan regardless of the
// stamped version. Reloads use it for payloads another writer may have
// stored after the key was stamped.
func (m *Migrator) Normalize(ctx context.Context, name string, raw []byte) ([]byte, error) {
	m.mu.Lock()
	steps := m.plans[name]
	m.mu.Unlock()
	if len(steps) == 0 {
		return raw, nil
	}

	var records []map[string]any
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("failed to decode %s for migration: %w", name, err)
	}
	for v, step := range steps {
		if err := step(records); err != nil {
			return nil, fmt.Errorf("migration %s v%d failed: %w", name, v+1, err)
		}
	}

	out, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("failed to encode migrated %s: %w", name, err)
	}
	return out, nil
}

// Stamp records that a collection is at its latest version.
func (m *Migrator) Stamp(ctx context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	versions, err := m.readVersions(ctx)
	if err != nil {
		return err
	}
	latest := len(m.plans[name])
	if versions[name] == latest {
		return nil
	}
	versions[name] = latest

	payload, err := json.Marshal(versions)
	if err != nil {
		return fmt.Errorf("failed to encode schema versions: %w", err)
	}
	if err := m.storage.Set(ctx, m.metaKey, payload); err != nil {
		return fmt.Errorf("failed to stamp %s: %w", name, err)
	}
	return nil
}

func (m *Migrator) readVersions(ctx context.Context) (map[string]int, error) {
	raw, err := m.storage.Get(ctx, m.metaKey)
	if errors.Is(err, storage.ErrNotFound) {
		return make(map[string]int), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read schema versions: %w", err)
	}

	versions := make(map[string]int)
	if err := json.Unmarshal(raw, &versions); err != nil {
		return nil, fmt.Errorf("failed to decode schema versions: %w", err)
	}
	return versions, nil
}
