package handlers

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"cardifyAPI/internal/types/scan"
	"cardifyAPI/services"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type ScanHandler struct {
	scanService *services.ScanService
}

func NewScanHandler(scanService *services.ScanService) *ScanHandler {
	return &ScanHandler{scanService: scanService}
}

// POST /api/v1/scan/sessions
func (h *ScanHandler) OpenSession(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusCreated, h.scanService.Open())
}

// GET /api/v1/scan/sessions/{id}
func (h *ScanHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.scanService.Get(mux.Vars(r)["id"])
	if !ok {
		respondWithError(w, http.StatusNotFound, "Scan session not found")
		return
	}
	respondWithJSON(w, http.StatusOK, snap)
}

// POST /api/v1/scan/sessions/{id}/frames
func (h *ScanHandler) SubmitFrame(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var req scan.FrameRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	snap, err := h.scanService.Frame(ctx, mux.Vars(r)["id"], req.Text)
	if err != nil {
		respondWithServiceError(w, "scan frame", err)
		return
	}
	respondWithJSON(w, http.StatusOK, snap)
}

// POST /api/v1/scan/sessions/{id}/reset
func (h *ScanHandler) ResetSession(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	snap, err := h.scanService.Reset(ctx, mux.Vars(r)["id"])
	if err != nil {
		respondWithServiceError(w, "reset scan", err)
		return
	}
	respondWithJSON(w, http.StatusOK, snap)
}

// POST /api/v1/scan/sessions/{id}/log
func (h *ScanHandler) AddLog(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var req scan.LogRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	entry, err := h.scanService.AddLog(ctx, mux.Vars(r)["id"], req.Message)
	if err != nil {
		respondWithServiceError(w, "scan log", err)
		return
	}
	respondWithJSON(w, http.StatusCreated, entry)
}

// POST /api/v1/scan/sessions/{id}/camera-error
func (h *ScanHandler) ReportCameraError(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	// the body is optional
	var req scan.CameraErrorRequest
	if err := decodeJSON(w, r, &req); err != nil && !errors.Is(err, io.EOF) {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	snap, err := h.scanService.CameraError(ctx, mux.Vars(r)["id"], req.Message)
	if err != nil {
		respondWithServiceError(w, "camera error", err)
		return
	}
	respondWithJSON(w, http.StatusOK, snap)
}

// DELETE /api/v1/scan/sessions/{id}
func (h *ScanHandler) CloseSession(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.scanService.Close(mux.Vars(r)["id"])
	if !ok {
		respondWithError(w, http.StatusNotFound, "Scan session not found")
		return
	}
	respondWithJSON(w, http.StatusOK, snap)
}

// GET /api/v1/scan/sessions/{id}/stream upgrades to a websocket. The
// handler blocks until the client leaves; leaving closes the session.
func (h *ScanHandler) StreamSession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	if _, ok := h.scanService.Get(sessionID); !ok {
		http.Error(w, "Scan session not found", http.StatusNotFound)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Could not upgrade connection: %v", err)
		return
	}

	if err := h.scanService.ServeStream(r.Context(), sessionID, conn); err != nil {
		log.Printf("[scan %s] stream ended: %v", sessionID, err)
	}
}
