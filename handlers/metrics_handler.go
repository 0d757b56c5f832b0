package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"cardifyAPI/services"
)

type MetricsHandler struct {
	metricsService *services.MetricsService
}

func NewMetricsHandler(metricsService *services.MetricsService) *MetricsHandler {
	return &MetricsHandler{metricsService: metricsService}
}

// GET /api/v1/metrics/summary?from=&to=
func (h *MetricsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	rng, err := services.ParseRange(r.URL.Query().Get("from"), r.URL.Query().Get("to"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondWithJSON(w, http.StatusOK, h.metricsService.Summary(rng))
}

// GET /api/v1/metrics/export.csv?from=&to=
func (h *MetricsHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	rng, err := services.ParseRange(r.URL.Query().Get("from"), r.URL.Query().Get("to"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	var buf bytes.Buffer
	if err := services.WriteCSV(&buf, h.metricsService.Summary(rng)); err != nil {
		respondWithServiceError(w, "export metrics", err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", services.ExportFilename(time.Now())))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
