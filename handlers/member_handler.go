package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"cardifyAPI/internal/store"
	"cardifyAPI/internal/types/member"
	"cardifyAPI/middleware"
	"cardifyAPI/services"
)

type MemberHandler struct {
	memberService *services.MemberService
	qrService     *services.QRService
}

func NewMemberHandler(memberService *services.MemberService, qrService *services.QRService) *MemberHandler {
	return &MemberHandler{
		memberService: memberService,
		qrService:     qrService,
	}
}

// GET /api/v1/members
func (h *MemberHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.memberService.List())
}

// GET /api/v1/members/{id}
func (h *MemberHandler) GetMember(w http.ResponseWriter, r *http.Request) {
	m, ok := h.memberService.Get(mux.Vars(r)["id"])
	if !ok {
		respondWithError(w, http.StatusNotFound, "Member not found")
		return
	}
	respondWithJSON(w, http.StatusOK, m)
}

// POST /api/v1/members
func (h *MemberHandler) CreateMember(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var req member.ClubMember
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	created, err := h.memberService.Create(ctx, middleware.GetActor(ctx), req)
	if err != nil {
		respondWithServiceError(w, "create member", err)
		return
	}
	respondWithJSON(w, http.StatusCreated, created)
}

// PATCH /api/v1/members/{id}
func (h *MemberHandler) UpdateMember(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var patch member.Patch
	if err := decodeJSON(w, r, &patch); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	updated, ok, err := h.memberService.Update(ctx, middleware.GetActor(ctx), mux.Vars(r)["id"], patch)
	if err != nil {
		respondWithServiceError(w, "update member", err)
		return
	}
	if !ok {
		respondWithError(w, http.StatusNotFound, "Member not found")
		return
	}
	respondWithJSON(w, http.StatusOK, updated)
}

// DELETE /api/v1/members/{id}
func (h *MemberHandler) DeleteMember(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	ok, err := h.memberService.Delete(ctx, middleware.GetActor(ctx), mux.Vars(r)["id"])
	if err != nil {
		respondWithServiceError(w, "delete member", err)
		return
	}
	if !ok {
		respondWithError(w, http.StatusNotFound, "Member not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// POST /api/v1/members/bulk-delete
func (h *MemberHandler) BulkDeleteMembers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var req bulkDeleteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := store.Validate(req); err != nil {
		respondWithServiceError(w, "bulk delete members", err)
		return
	}

	n, err := h.memberService.DeleteMany(ctx, middleware.GetActor(ctx), req.IDs)
	if err != nil {
		respondWithServiceError(w, "bulk delete members", err)
		return
	}
	respondWithJSON(w, http.StatusOK, bulkResponse{Count: n})
}

// POST /api/v1/members/{id}/payments
func (h *MemberHandler) AddPayment(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var req member.PaymentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	updated, ok, err := h.memberService.AddPayment(ctx, middleware.GetActor(ctx), mux.Vars(r)["id"], req)
	if err != nil {
		respondWithServiceError(w, "add payment", err)
		return
	}
	if !ok {
		respondWithError(w, http.StatusNotFound, "Member not found")
		return
	}
	respondWithJSON(w, http.StatusCreated, updated)
}

// GET /api/v1/members/{id}/qr.png
func (h *MemberHandler) MemberQR(w http.ResponseWriter, r *http.Request) {
	m, ok := h.memberService.Get(mux.Vars(r)["id"])
	if !ok {
		respondWithError(w, http.StatusNotFound, "Member not found")
		return
	}

	png, err := h.qrService.MemberPNG(m)
	if err != nil {
		respondWithServiceError(w, "member QR", err)
		return
	}
	writePNG(w, png)
}
