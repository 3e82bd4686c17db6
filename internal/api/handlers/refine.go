package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/clarionhq/clarion/internal/api/middleware"
	"github.com/clarionhq/clarion/internal/domain"
	"github.com/clarionhq/clarion/internal/service"
	"github.com/clarionhq/clarion/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type RefineHandler struct {
	consensus  *service.ConsensusService
	refine     *service.RefineService
	sources    *service.SourceService
	briefStore domain.BriefStore
}

func NewRefineHandler(consensus *service.ConsensusService, refine *service.RefineService, sources *service.SourceService, briefStore domain.BriefStore) *RefineHandler {
	return &RefineHandler{
		consensus:  consensus,
		refine:     refine,
		sources:    sources,
		briefStore: briefStore,
	}
}

type refineRequest struct {
	MaxAttempts int                  `json:"max_attempts,omitempty"`
	SourceIDs   []uuid.UUID          `json:"source_ids,omitempty"`
	Initial     *domain.ClarityScore `json:"initial_score,omitempty"`
}

// Refine drives the fix-and-rescore loop until the brief passes the quality
// gate or runs out of attempts. The brief is scored first unless the caller
// supplies an initial score from an earlier /score call.
func (h *RefineHandler) Refine(w http.ResponseWriter, r *http.Request) {
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

	var req refineRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
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

	initial := req.Initial
	if initial == nil {
		initial, err = h.consensus.Score(r.Context(), tenant.ID, brief.ID, brief.Content)
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
	}

	sources := h.gatherSources(r, tenant.ID, initial.Critique, req.SourceIDs)

	result, err := h.refine.RefineUntilPassing(r.Context(), tenant.ID, brief.ID, brief.Content, initial, sources, req.MaxAttempts)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBriefEmpty),
			errors.Is(err, service.ErrInitialScoreRequired),
			errors.Is(err, service.ErrInvalidInitialScore):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrPanelUnavailable):
			writeError(w, http.StatusBadGateway, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "failed to refine brief")
		}
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// gatherSources resolves explicitly requested documents, falling back to
// similarity retrieval against the initial critique. Fixers can always run
// without sources.
func (h *RefineHandler) gatherSources(r *http.Request, tenantID uuid.UUID, critique string, sourceIDs []uuid.UUID) []domain.SourceDocument {
	if h.sources == nil {
		return nil
	}
	if len(sourceIDs) > 0 {
		if resolved, err := h.sources.Resolve(r.Context(), sourceIDs, tenantID); err == nil {
			return resolved
		}
	}
	return h.sources.RetrieveForCritique(r.Context(), tenantID, critique, service.DefaultSourceTopK)
}
