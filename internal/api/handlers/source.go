package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/clarionhq/clarion/internal/api/middleware"
	"github.com/clarionhq/clarion/internal/domain"
	"github.com/clarionhq/clarion/internal/service"
)

type SourceHandler struct {
	svc *service.SourceService
}

func NewSourceHandler(svc *service.SourceService) *SourceHandler {
	return &SourceHandler{svc: svc}
}

type createSourceRequest struct {
	URL     string `json:"url,omitempty"`
	Title   string `json:"title,omitempty"`
	Content string `json:"content"`
}

func (h *SourceHandler) Create(w http.ResponseWriter, r *http.Request) {
	tenant := middleware.TenantFromContext(r.Context())
	if tenant == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req createSourceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	src := &domain.SourceDocument{
		TenantID: tenant.ID,
		URL:      req.URL,
		Title:    req.Title,
		Content:  req.Content,
	}
	if err := h.svc.Ingest(r.Context(), src); err != nil {
		if errors.Is(err, service.ErrSourceContentEmpty) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to ingest source")
		return
	}

	writeJSON(w, http.StatusCreated, src)
}
