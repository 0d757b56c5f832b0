package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"cardifyAPI/internal/scanner"
	"cardifyAPI/internal/store"
	"cardifyAPI/services"
)

const maxBodyBytes = 1 << 20

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(dst)
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "Internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

// respondWithServiceError maps service errors to a status. Anything
// unrecognised is logged and reported as a 500.
func respondWithServiceError(w http.ResponseWriter, op string, err error) {
	var verr *store.ValidationError
	switch {
	case errors.As(err, &verr):
		respondWithJSON(w, http.StatusBadRequest, map[string]any{
			"error":  "Validation failed",
			"fields": verr.Fields,
		})
	case errors.Is(err, services.ErrScanSessionNotFound):
		respondWithError(w, http.StatusNotFound, "Scan session not found")
	case errors.Is(err, services.ErrTicketGone):
		respondWithError(w, http.StatusNotFound, "Ticket not found")
	case errors.Is(err, services.ErrNoValidTicket):
		respondWithError(w, http.StatusConflict, "No valid ticket is being shown")
	case errors.Is(err, scanner.ErrSessionClosed):
		respondWithError(w, http.StatusConflict, "Scan session is closed")
	default:
		log.Printf("%s failed: %v", op, err)
		respondWithError(w, http.StatusInternalServerError, "Server error")
	}
}

type bulkDeleteRequest struct {
	IDs []string `json:"ids" validate:"required,min=1"`
}

type bulkTagsRequest struct {
	IDs  []string `json:"ids" validate:"required,min=1"`
	Tags []string `json:"tags" validate:"required,min=1"`
}

type bulkResponse struct {
	Count int `json:"count"`
}
