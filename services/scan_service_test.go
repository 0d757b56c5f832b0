package services

import (
	"context"
	"errors"
	"testing"

	"cardifyAPI/internal/scanner"
	"cardifyAPI/internal/storage"
	scantypes "cardifyAPI/internal/types/scan"
	"cardifyAPI/internal/types/ticket"
)

func TestScanSessionFlow(t *testing.T) {
	env := newTestEnv(t, storage.NewMemoryStorage())
	ctx := context.Background()

	tk, err := env.tickets.Create(ctx, "u", ticket.Ticket{
		EventName: "Conf", EventDate: date("2025-01-10"), OwnerName: "Ada", PassType: ticket.PassVIP,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	payload, _ := TicketPayload(tk)

	opened := env.scans.Open()
	if opened.State != scantypes.StateScanning {
		t.Fatalf("Expected scanning state, got %s", opened.State)
	}
	id := opened.SessionID

	if _, err := env.scans.AddLog(ctx, id, "too early"); !errors.Is(err, ErrNoValidTicket) {
		t.Errorf("Expected ErrNoValidTicket while scanning, got %v", err)
	}

	snap, err := env.scans.Frame(ctx, id, payload)
	if err != nil {
		t.Fatalf("Frame failed: %v", err)
	}
	if snap.State != scantypes.StateValid || snap.Ticket.ID != tk.ID {
		t.Fatalf("Expected valid ticket, got %+v", snap)
	}
	if toast := env.notifier.last(); toast.Title != "Valid Ticket!" || toast.Description != "Ticket for Ada is valid." {
		t.Errorf("Unexpected toast %+v", toast)
	}

	entry, err := env.scans.AddLog(ctx, id, "Checked in at gate B")
	if err != nil {
		t.Fatalf("AddLog failed: %v", err)
	}
	stored, _ := env.tickets.Get(tk.ID)
	if len(stored.ScanLog) != 1 || stored.ScanLog[0].ID != entry.ID {
		t.Errorf("Expected entry on the ticket, got %+v", stored.ScanLog)
	}

	if _, err := env.scans.Reset(ctx, id); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	snap, _ = env.scans.Frame(ctx, id, "not json")
	if snap.State != scantypes.StateError || snap.Message != scanner.MsgNotJSON {
		t.Errorf("Expected parse error, got %+v", snap)
	}
	if toast := env.notifier.last(); toast.Title != "Scan Error" {
		t.Errorf("Unexpected toast %+v", toast)
	}

	if _, ok := env.scans.Close(id); !ok {
		t.Fatal("Close failed")
	}
	if _, ok := env.scans.Get(id); ok {
		t.Error("Expected session to be gone after Close")
	}
	if _, err := env.scans.Frame(ctx, id, payload); !errors.Is(err, ErrScanSessionNotFound) {
		t.Errorf("Expected ErrScanSessionNotFound, got %v", err)
	}
}

func TestScanUnknownTicket(t *testing.T) {
	env := newTestEnv(t, storage.NewMemoryStorage())
	ctx := context.Background()
	id := env.scans.Open().SessionID

	snap, _ := env.scans.Frame(ctx, id, `{"id":"tkt-404"}`)
	if snap.State != scantypes.StateError || snap.Message != scanner.MsgNotFound {
		t.Errorf("Expected not found, got %+v", snap)
	}
	toast := env.notifier.last()
	if toast.Title != "Invalid Ticket" || toast.Variant != "destructive" {
		t.Errorf("Unexpected toast %+v", toast)
	}
}

func TestScanTicketDeletedAfterValidation(t *testing.T) {
	env := newTestEnv(t, storage.NewMemoryStorage())
	ctx := context.Background()

	tk, _ := env.tickets.Create(ctx, "u", ticket.Ticket{
		EventName: "Conf", EventDate: date("2025-01-10"), OwnerName: "Ada", PassType: ticket.PassBasic,
	})
	payload, _ := TicketPayload(tk)
	id := env.scans.Open().SessionID
	env.scans.Frame(ctx, id, payload)

	env.tickets.Delete(ctx, "u", tk.ID)
	if _, err := env.scans.AddLog(ctx, id, "late"); !errors.Is(err, ErrTicketGone) {
		t.Errorf("Expected ErrTicketGone, got %v", err)
	}
}

func TestScanCameraError(t *testing.T) {
	env := newTestEnv(t, storage.NewMemoryStorage())
	ctx := context.Background()
	id := env.scans.Open().SessionID

	snap, err := env.scans.CameraError(ctx, id, "")
	if err != nil {
		t.Fatalf("CameraError failed: %v", err)
	}
	if snap.State != scantypes.StateError || snap.Message != scanner.MsgCameraError {
		t.Errorf("Unexpected snapshot %+v", snap)
	}
	if env.notifier.last().Title != "Camera Error" {
		t.Errorf("Unexpected toast %+v", env.notifier.last())
	}
}

func TestCloseOlderThan(t *testing.T) {
	env := newTestEnv(t, storage.NewMemoryStorage())
	env.scans.Open()
	env.scans.Open()

	if n := env.scans.closeOlderThan(0); n != 2 {
		t.Errorf("Expected 2 sessions closed, got %d", n)
	}
}
