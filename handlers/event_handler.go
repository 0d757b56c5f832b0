package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"cardifyAPI/internal/store"
	"cardifyAPI/internal/types/event"
	"cardifyAPI/middleware"
	"cardifyAPI/services"
)

type EventHandler struct {
	eventService  *services.EventService
	ticketService *services.TicketService
}

func NewEventHandler(eventService *services.EventService, ticketService *services.TicketService) *EventHandler {
	return &EventHandler{
		eventService:  eventService,
		ticketService: ticketService,
	}
}

// GET /api/v1/events
func (h *EventHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.eventService.List())
}

// GET /api/v1/events/{id}
func (h *EventHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	e, ok := h.eventService.Get(mux.Vars(r)["id"])
	if !ok {
		respondWithError(w, http.StatusNotFound, "Event not found")
		return
	}
	respondWithJSON(w, http.StatusOK, e)
}

// GET /api/v1/events/{id}/tickets answers for deleted events too; their
// tickets are kept.
func (h *EventHandler) ListEventTickets(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.ticketService.ListByEvent(mux.Vars(r)["id"]))
}

// POST /api/v1/events
func (h *EventHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var req event.Event
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	created, err := h.eventService.Create(ctx, middleware.GetActor(ctx), req)
	if err != nil {
		respondWithServiceError(w, "create event", err)
		return
	}
	respondWithJSON(w, http.StatusCreated, created)
}

// PATCH /api/v1/events/{id}
func (h *EventHandler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var patch event.Patch
	if err := decodeJSON(w, r, &patch); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	updated, ok, err := h.eventService.Update(ctx, middleware.GetActor(ctx), mux.Vars(r)["id"], patch)
	if err != nil {
		respondWithServiceError(w, "update event", err)
		return
	}
	if !ok {
		respondWithError(w, http.StatusNotFound, "Event not found")
		return
	}
	respondWithJSON(w, http.StatusOK, updated)
}

// DELETE /api/v1/events/{id}
func (h *EventHandler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	ok, err := h.eventService.Delete(ctx, middleware.GetActor(ctx), mux.Vars(r)["id"])
	if err != nil {
		respondWithServiceError(w, "delete event", err)
		return
	}
	if !ok {
		respondWithError(w, http.StatusNotFound, "Event not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// POST /api/v1/events/bulk-delete
func (h *EventHandler) BulkDeleteEvents(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var req bulkDeleteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := store.Validate(req); err != nil {
		respondWithServiceError(w, "bulk delete events", err)
		return
	}

	n, err := h.eventService.DeleteMany(ctx, middleware.GetActor(ctx), req.IDs)
	if err != nil {
		respondWithServiceError(w, "bulk delete events", err)
		return
	}
	respondWithJSON(w, http.StatusOK, bulkResponse{Count: n})
}
