package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func exerciseStorage(t *testing.T, s Storage) {
	t.Helper()
	ctx := context.Background()

	if _, err := s.Get(ctx, "cardify-tickets"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Expected ErrNotFound for absent key, got %v", err)
	}

	if err := s.Set(ctx, "cardify-tickets", []byte(`[{"id":"tkt-1"}]`)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := s.Set(ctx, "cardify-tickets", []byte(`[{"id":"tkt-2"}]`)); err != nil {
		t.Fatalf("Overwrite failed: %v", err)
	}

	got, err := s.Get(ctx, "cardify-tickets")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(got) != `[{"id":"tkt-2"}]` {
		t.Errorf("Expected overwritten value, got %s", got)
	}

	if err := s.Delete(ctx, "cardify-tickets"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := s.Get(ctx, "cardify-tickets"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound after delete, got %v", err)
	}
	if err := s.Delete(ctx, "never-written"); err != nil {
		t.Errorf("Deleting an absent key should not fail: %v", err)
	}
}

func TestMemoryStorage(t *testing.T) {
	exerciseStorage(t, NewMemoryStorage())
}

func TestSQLiteStorage(t *testing.T) {
	s, err := NewSQLiteStorage(context.Background(), filepath.Join(t.TempDir(), "cardify.db"))
	if err != nil {
		t.Fatalf("Failed to open sqlite storage: %v", err)
	}
	defer s.Close()

	exerciseStorage(t, s)
}

func TestSQLiteStorageSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "cardify.db")

	s, err := NewSQLiteStorage(ctx, path)
	if err != nil {
		t.Fatalf("Failed to open sqlite storage: %v", err)
	}
	if err := s.Set(ctx, "cardify-events", []byte(`[]`)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	s.Close()

	s, err = NewSQLiteStorage(ctx, path)
	if err != nil {
		t.Fatalf("Failed to reopen sqlite storage: %v", err)
	}
	defer s.Close()

	got, err := s.Get(ctx, "cardify-events")
	if err != nil || string(got) != `[]` {
		t.Errorf("Expected persisted value, got %q (%v)", got, err)
	}
}

func TestKey(t *testing.T) {
	if got := Key("cardify", "vcards"); got != "cardify-vcards" {
		t.Errorf("Expected cardify-vcards, got %s", got)
	}
	if got := Key("", "logs"); got != "logs" {
		t.Errorf("Expected bare name without namespace, got %s", got)
	}
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	if _, err := Open(context.Background(), Options{Driver: "floppy"}); err == nil {
		t.Error("Expected error for unknown driver")
	}
	if _, err := Open(context.Background(), Options{Driver: DriverPostgres}); err == nil {
		t.Error("Expected error when DATABASE_URL is missing")
	}
}
