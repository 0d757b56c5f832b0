package handlers

import (
	"context"
	"net/http"
	"time"

	"cardifyAPI/services"
)

type LogHandler struct {
	activityLog *services.ActivityLog
}

func NewLogHandler(activityLog *services.ActivityLog) *LogHandler {
	return &LogHandler{activityLog: activityLog}
}

// GET /api/v1/logs - newest first
func (h *LogHandler) ListLogs(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.activityLog.List())
}

// DELETE /api/v1/logs
func (h *LogHandler) ClearLogs(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.activityLog.Clear(ctx); err != nil {
		respondWithServiceError(w, "clear logs", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
