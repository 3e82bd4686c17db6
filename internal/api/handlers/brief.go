package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/clarionhq/clarion/internal/api/middleware"
	"github.com/clarionhq/clarion/internal/domain"
	"github.com/clarionhq/clarion/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type BriefHandler struct {
	briefStore domain.BriefStore
}

func NewBriefHandler(briefStore domain.BriefStore) *BriefHandler {
	return &BriefHandler{briefStore: briefStore}
}

type createBriefRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

func (h *BriefHandler) Create(w http.ResponseWriter, r *http.Request) {
	tenant := middleware.TenantFromContext(r.Context())
	if tenant == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req createBriefRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Content == "" {
		writeError(w, http.StatusBadRequest, "content is required")
		return
	}

	brief := &domain.Brief{
		TenantID: tenant.ID,
		Title:    req.Title,
		Content:  req.Content,
	}
	if err := h.briefStore.Create(r.Context(), brief); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create brief")
		return
	}

	writeJSON(w, http.StatusCreated, brief)
}

func (h *BriefHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	tenant := middleware.TenantFromContext(r.Context())
	if tenant == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid brief id")
		return
	}

	brief, err := h.briefStore.GetByID(r.Context(), id, tenant.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "brief not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to get brief")
		return
	}

	writeJSON(w, http.StatusOK, brief)
}
