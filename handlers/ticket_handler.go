package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"cardifyAPI/internal/store"
	"cardifyAPI/internal/types/ticket"
	"cardifyAPI/middleware"
	"cardifyAPI/services"
)

type TicketHandler struct {
	ticketService *services.TicketService
	qrService     *services.QRService
}

func NewTicketHandler(ticketService *services.TicketService, qrService *services.QRService) *TicketHandler {
	return &TicketHandler{
		ticketService: ticketService,
		qrService:     qrService,
	}
}

// GET /api/v1/tickets
func (h *TicketHandler) ListTickets(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.ticketService.List())
}

// GET /api/v1/tickets/{id}
func (h *TicketHandler) GetTicket(w http.ResponseWriter, r *http.Request) {
	t, ok := h.ticketService.Get(mux.Vars(r)["id"])
	if !ok {
		respondWithError(w, http.StatusNotFound, "Ticket not found")
		return
	}
	respondWithJSON(w, http.StatusOK, t)
}

// POST /api/v1/tickets
func (h *TicketHandler) CreateTicket(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var req ticket.Ticket
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	created, err := h.ticketService.Create(ctx, middleware.GetActor(ctx), req)
	if err != nil {
		respondWithServiceError(w, "create ticket", err)
		return
	}
	respondWithJSON(w, http.StatusCreated, created)
}

// PATCH /api/v1/tickets/{id}
func (h *TicketHandler) UpdateTicket(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var patch ticket.Patch
	if err := decodeJSON(w, r, &patch); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	updated, ok, err := h.ticketService.Update(ctx, middleware.GetActor(ctx), mux.Vars(r)["id"], patch)
	if err != nil {
		respondWithServiceError(w, "update ticket", err)
		return
	}
	if !ok {
		respondWithError(w, http.StatusNotFound, "Ticket not found")
		return
	}
	respondWithJSON(w, http.StatusOK, updated)
}

// DELETE /api/v1/tickets/{id}
func (h *TicketHandler) DeleteTicket(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	ok, err := h.ticketService.Delete(ctx, middleware.GetActor(ctx), mux.Vars(r)["id"])
	if err != nil {
		respondWithServiceError(w, "delete ticket", err)
		return
	}
	if !ok {
		respondWithError(w, http.StatusNotFound, "Ticket not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// POST /api/v1/tickets/bulk-delete
func (h *TicketHandler) BulkDeleteTickets(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var req bulkDeleteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := store.Validate(req); err != nil {
		respondWithServiceError(w, "bulk delete tickets", err)
		return
	}

	n, err := h.ticketService.DeleteMany(ctx, middleware.GetActor(ctx), req.IDs)
	if err != nil {
		respondWithServiceError(w, "bulk delete tickets", err)
		return
	}
	respondWithJSON(w, http.StatusOK, bulkResponse{Count: n})
}

// POST /api/v1/tickets/bulk-tags
func (h *TicketHandler) BulkTagTickets(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var req bulkTagsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := store.Validate(req); err != nil {
		respondWithServiceError(w, "bulk tag tickets", err)
		return
	}

	n, err := h.ticketService.AddTagsToMany(ctx, middleware.GetActor(ctx), req.IDs, req.Tags)
	if err != nil {
		respondWithServiceError(w, "bulk tag tickets", err)
		return
	}
	respondWithJSON(w, http.StatusOK, bulkResponse{Count: n})
}

// POST /api/v1/tickets/{id}/scan-log
func (h *TicketHandler) AddScanLogEntry(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var req ticket.ScanLogRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	entry, ok, err := h.ticketService.AddScanLogEntry(ctx, mux.Vars(r)["id"], req.Message)
	if err != nil {
		respondWithServiceError(w, "add scan log entry", err)
		return
	}
	if !ok {
		respondWithError(w, http.StatusNotFound, "Ticket not found")
		return
	}
	respondWithJSON(w, http.StatusCreated, entry)
}

// GET /api/v1/tickets/{id}/qr.png
func (h *TicketHandler) TicketQR(w http.ResponseWriter, r *http.Request) {
	t, ok := h.ticketService.Get(mux.Vars(r)["id"])
	if !ok {
		respondWithError(w, http.StatusNotFound, "Ticket not found")
		return
	}

	png, err := h.qrService.TicketPNG(t)
	if err != nil {
		respondWithServiceError(w, "ticket QR", err)
		return
	}
	writePNG(w, png)
}
