package handlers

import (
	"errors"
	"net/http"

	"github.com/clarionhq/clarion/internal/api/middleware"
	"github.com/clarionhq/clarion/internal/domain"
	"github.com/clarionhq/clarion/internal/service"
	"github.com/clarionhq/clarion/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type ScoreHandler struct {
	consensus  *service.ConsensusService
	briefStore domain.BriefStore
}

func NewScoreHandler(consensus *service.ConsensusService, briefStore domain.BriefStore) *ScoreHandler {
	return &ScoreHandler{consensus: consensus, briefStore: briefStore}
}

// Score runs the evaluation panel against the stored brief.
func (h *ScoreHandler) Score(w http.ResponseWriter, r *http.Request) {
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

	score, err := h.consensus.Score(r.Context(), tenant.ID, brief.ID, brief.Content)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBriefEmpty):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrPanelUnavailable):
			writeError(w, http.StatusBadGateway, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "failed to score brief")
		}
		return
	}

	writeJSON(w, http.StatusOK, score)
}
