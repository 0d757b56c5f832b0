package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"cardifyAPI/internal/store"
	"cardifyAPI/internal/types/vcard"
	"cardifyAPI/middleware"
	"cardifyAPI/services"
)

type VCardHandler struct {
	vcardService *services.VCardService
	qrService    *services.QRService
}

func NewVCardHandler(vcardService *services.VCardService, qrService *services.QRService) *VCardHandler {
	return &VCardHandler{
		vcardService: vcardService,
		qrService:    qrService,
	}
}

// GET /api/v1/vcards
func (h *VCardHandler) ListVCards(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.vcardService.List())
}

// GET /api/v1/vcards/{id}
func (h *VCardHandler) GetVCard(w http.ResponseWriter, r *http.Request) {
	v, ok := h.vcardService.Get(mux.Vars(r)["id"])
	if !ok {
		respondWithError(w, http.StatusNotFound, "vCard not found")
		return
	}
	respondWithJSON(w, http.StatusOK, v)
}

// POST /api/v1/vcards
func (h *VCardHandler) CreateVCard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var req vcard.VCard
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	created, err := h.vcardService.Create(ctx, middleware.GetActor(ctx), req)
	if err != nil {
		respondWithServiceError(w, "create vCard", err)
		return
	}
	respondWithJSON(w, http.StatusCreated, created)
}

// PATCH /api/v1/vcards/{id}
func (h *VCardHandler) UpdateVCard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var patch vcard.Patch
	if err := decodeJSON(w, r, &patch); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	updated, ok, err := h.vcardService.Update(ctx, middleware.GetActor(ctx), mux.Vars(r)["id"], patch)
	if err != nil {
		respondWithServiceError(w, "update vCard", err)
		return
	}
	if !ok {
		respondWithError(w, http.StatusNotFound, "vCard not found")
		return
	}
	respondWithJSON(w, http.StatusOK, updated)
}

// DELETE /api/v1/vcards/{id}
func (h *VCardHandler) DeleteVCard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	ok, err := h.vcardService.Delete(ctx, middleware.GetActor(ctx), mux.Vars(r)["id"])
	if err != nil {
		respondWithServiceError(w, "delete vCard", err)
		return
	}
	if !ok {
		respondWithError(w, http.StatusNotFound, "vCard not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// POST /api/v1/vcards/bulk-delete
func (h *VCardHandler) BulkDeleteVCards(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var req bulkDeleteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := store.Validate(req); err != nil {
		respondWithServiceError(w, "bulk delete vCards", err)
		return
	}

	n, err := h.vcardService.DeleteMany(ctx, middleware.GetActor(ctx), req.IDs)
	if err != nil {
		respondWithServiceError(w, "bulk delete vCards", err)
		return
	}
	respondWithJSON(w, http.StatusOK, bulkResponse{Count: n})
}

// POST /api/v1/vcards/bulk-tags
func (h *VCardHandler) BulkTagVCards(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var req bulkTagsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := store.Validate(req); err != nil {
		respondWithServiceError(w, "bulk tag vCards", err)
		return
	}

	n, err := h.vcardService.AddTagsToMany(ctx, middleware.GetActor(ctx), req.IDs, req.Tags)
	if err != nil {
		respondWithServiceError(w, "bulk tag vCards", err)
		return
	}
	respondWithJSON(w, http.StatusOK, bulkResponse{Count: n})
}

// GET /api/v1/vcards/{id}/qr.png
func (h *VCardHandler) VCardQR(w http.ResponseWriter, r *http.Request) {
	v, ok := h.vcardService.Get(mux.Vars(r)["id"])
	if !ok {
		respondWithError(w, http.StatusNotFound, "vCard not found")
		return
	}

	png, err := h.qrService.VCardPNG(v)
	if err != nil {
		respondWithServiceError(w, "vCard QR", err)
		return
	}
	writePNG(w, png)
}

// GET /api/v1/vcards/{id}/vcf
func (h *VCardHandler) DownloadVCF(w http.ResponseWriter, r *http.Request) {
	v, ok := h.vcardService.Get(mux.Vars(r)["id"])
	if !ok {
		respondWithError(w, http.StatusNotFound, "vCard not found")
		return
	}

	w.Header().Set("Content-Type", "text/vcard; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", services.VCFFilename(v)))
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(services.VCF(v)))
}

func writePNG(w http.ResponseWriter, png []byte) {
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}
