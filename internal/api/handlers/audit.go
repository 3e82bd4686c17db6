package handlers

import (
	"net/http"
	"strconv"

	"github.com/clarionhq/clarion/internal/api/middleware"
	"github.com/clarionhq/clarion/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type AuditHandler struct {
	store domain.AuditStore
}

func NewAuditHandler(store domain.AuditStore) *AuditHandler {
	return &AuditHandler{store: store}
}

type listAuditResponse struct {
	Records []domain.AuditRecord `json:"records"`
}

// List returns the scoring and refinement trail for a brief. Supports
// ?kind= and ?limit= filters.
func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	tenant := middleware.TenantFromContext(r.Context())
	if tenant == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	briefID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid brief id")
		return
	}

	kind := domain.AuditKind(r.URL.Query().Get("kind"))
	if kind != "" && !domain.ValidAuditKind(string(kind)) {
		writeError(w, http.StatusBadRequest, "invalid audit kind")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
	}

	records, err := h.store.ListByBrief(r.Context(), briefID, tenant.ID, kind, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list audit records")
		return
	}
	if records == nil {
		records = []domain.AuditRecord{}
	}

	writeJSON(w, http.StatusOK, listAuditResponse{Records: records})
}

// ListAttempts returns only the refinement attempt records for a brief,
// newest first. Equivalent to List with kind=attempt.
func (h *AuditHandler) ListAttempts(w http.ResponseWriter, r *http.Request) {
	tenant := middleware.TenantFromContext(r.Context())
	if tenant == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	briefID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid brief id")
		return
	}

	records, err := h.store.ListByBrief(r.Context(), briefID, tenant.ID, domain.AuditAttempt, 0)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list attempts")
		return
	}
	if records == nil {
		records = []domain.AuditRecord{}
	}

	writeJSON(w, http.StatusOK, listAuditResponse{Records: records})
}
