package handlers

import (
	"net/http"

	"cardifyAPI/internal/notification"
	"cardifyAPI/internal/store"
	"cardifyAPI/services"
)

type NotificationHandler struct {
	dispatcher *services.NotificationDispatcher
}

func NewNotificationHandler(dispatcher *services.NotificationDispatcher) *NotificationHandler {
	return &NotificationHandler{
		dispatcher: dispatcher,
	}
}

// GET /api/v1/notifications - latest toasts, newest first
func (h *NotificationHandler) GetNotifications(w http.ResponseWriter, r *http.Request) {
	toasts := h.dispatcher.Recent()
	if toasts == nil {
		toasts = []notification.Toast{}
	}
	respondWithJSON(w, http.StatusOK, notification.ToastListResponse{
		Toasts:     toasts,
		TotalCount: len(toasts),
	})
}

// POST /api/v1/notifications/devices - register an FCM device token
func (h *NotificationHandler) RegisterDevice(w http.ResponseWriter, r *http.Request) {
	var req notification.RegisterDeviceRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := store.Validate(req); err != nil {
		respondWithServiceError(w, "register device", err)
		return
	}

	h.dispatcher.RegisterDevice(req.Token)
	respondWithJSON(w, http.StatusCreated, map[string]string{"message": "Device registered"})
}
