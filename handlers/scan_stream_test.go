package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"cardifyAPI/internal/scanner"
	"cardifyAPI/internal/types/scan"
	"cardifyAPI/internal/types/ticket"
	"cardifyAPI/services"
)

func dialStream(t *testing.T, ts *testServer, sessionID string) *websocket.Conn {
	t.Helper()
	r := mux.NewRouter()
	r.HandleFunc("/api/v1/scan/sessions/{id}/stream", ts.scans.StreamSession).Methods("GET")
	server := httptest.NewServer(r)
	t.Cleanup(server.Close)

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/api/v1/scan/sessions/" + sessionID + "/stream"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	return conn
}

func readSnapshot(t *testing.T, conn *websocket.Conn) scan.Snapshot {
	t.Helper()
	var snap scan.Snapshot
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&snap); err != nil {
		t.Fatalf("Failed to read snapshot: %v", err)
	}
	return snap
}

func sendAction(t *testing.T, conn *websocket.Conn, msg scan.StreamMessage) {
	t.Helper()
	if err := conn.WriteJSON(msg); err != nil {
		t.Fatalf("Failed to send %s: %v", msg.Action, err)
	}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("Timed out waiting for %s", what)
}

func createStreamTicket(t *testing.T, ts *testServer) ticket.Ticket {
	t.Helper()
	rec := call(ts.tickets.CreateTicket, http.MethodPost, "/", map[string]any{
		"eventName": "Conf", "eventDate": "2025-01-10T00:00:00Z", "ownerName": "Ada", "passType": "VIP",
	}, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("Create ticket failed: %d %s", rec.Code, rec.Body)
	}
	return decode[ticket.Ticket](t, rec)
}

func TestScanStream(t *testing.T) {
	ts := newTestServer(t)
	tk := createStreamTicket(t, ts)
	payload, _ := services.TicketPayload(tk)

	session := ts.scanSvc.Open()
	conn := dialStream(t, ts, session.SessionID)
	defer conn.Close()

	if snap := readSnapshot(t, conn); snap.State != scan.StateScanning {
		t.Fatalf("Expected scanning on connect, got %s", snap.State)
	}

	sendAction(t, conn, scan.StreamMessage{Action: scan.ActionFrame, Text: "not json"})
	snap := readSnapshot(t, conn)
	if snap.State != scan.StateError || snap.Message != scanner.MsgNotJSON {
		t.Fatalf("Expected not-json error, got %s %q", snap.State, snap.Message)
	}

	sendAction(t, conn, scan.StreamMessage{Action: scan.ActionReset})
	if snap := readSnapshot(t, conn); snap.State != scan.StateScanning {
		t.Fatalf("Expected scanning after reset, got %s", snap.State)
	}

	sendAction(t, conn, scan.StreamMessage{Action: scan.ActionFrame, Text: payload})
	snap = readSnapshot(t, conn)
	if snap.State != scan.StateValid || snap.Ticket == nil || snap.Ticket.ID != tk.ID {
		t.Fatalf("Expected valid ticket, got %+v", snap)
	}

	sendAction(t, conn, scan.StreamMessage{Action: scan.ActionLog, Message: "Gate B"})
	waitFor(t, "scan log entry", func() bool {
		got, ok := ts.ticketSvc.Get(tk.ID)
		return ok && len(got.ScanLog) == 1 && got.ScanLog[0].Message == "Gate B"
	})

	rec := call(ts.scans.CloseSession, http.MethodDelete, "/", nil, map[string]string{"id": session.SessionID})
	if rec.Code != http.StatusOK {
		t.Fatalf("Close failed: %d %s", rec.Code, rec.Body)
	}

	// drain the closed snapshot until the close frame arrives
	var closeErr *websocket.CloseError
	for {
		conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		_, _, err := conn.ReadMessage()
		if err == nil {
			continue
		}
		if !errors.As(err, &closeErr) {
			t.Fatalf("Expected a close frame, got %v", err)
		}
		break
	}
	if closeErr.Code != websocket.CloseNormalClosure {
		t.Errorf("Expected close 1000, got %d", closeErr.Code)
	}
	if _, ok := ts.scanSvc.Get(session.SessionID); ok {
		t.Error("Session should be gone after close")
	}
}

func TestScanStreamDisconnectClosesSession(t *testing.T) {
	ts := newTestServer(t)

	session := ts.scanSvc.Open()
	conn := dialStream(t, ts, session.SessionID)
	readSnapshot(t, conn)

	conn.Close()
	waitFor(t, "session release", func() bool {
		_, ok := ts.scanSvc.Get(session.SessionID)
		return !ok
	})
}

func TestScanStreamUnknownSession(t *testing.T) {
	ts := newTestServer(t)

	r := mux.NewRouter()
	r.HandleFunc("/api/v1/scan/sessions/{id}/stream", ts.scans.StreamSession).Methods("GET")
	server := httptest.NewServer(r)
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/api/v1/scan/sessions/missing/stream"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		t.Fatal("Expected dial to fail for an unknown session")
	}
	if resp == nil || resp.StatusCode != http.StatusNotFound {
		t.Errorf("Expected 404, got %v", resp)
	}
}
