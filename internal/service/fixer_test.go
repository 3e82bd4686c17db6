package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/clarionhq/clarion/internal/domain"
	"go.uber.org/zap"
)

type mockFixer struct {
	mu    sync.Mutex
	fn    func(req domain.FixRequest) (*domain.FixerResult, error)
	calls []domain.FixRequest
}

func (m *mockFixer) SuggestEdits(ctx context.Context, req domain.FixRequest) (*domain.FixerResult, error) {
	m.mu.Lock()
	m.calls = append(m.calls, req)
	fn := m.fn
	m.mu.Unlock()
	if fn == nil {
		return &domain.FixerResult{
			Dimension: req.Dimension,
			Edits: []domain.SuggestedEdit{{
				Section:       "body",
				OriginalText:  "old",
				SuggestedText: "new",
				Rationale:     "tighten " + string(req.Dimension),
				Priority:      domain.PriorityMedium,
			}},
			Confidence: 0.8,
		}, nil
	}
	return fn(req)
}

func clarityScoreWith(base float64, overrides map[domain.Dimension]float64) *domain.ClarityScore {
	score := &domain.ClarityScore{
		Confidence:      0.9,
		ConsensusMethod: domain.ConsensusUnanimous,
		Critique:        "overall critique",
		CreatedAt:       time.Now().UTC(),
	}
	total := 0.0
	for _, dim := range domain.AllDimensions() {
		s := base
		if v, ok := overrides[dim]; ok {
			s = v
		}
		score.DimensionScores = append(score.DimensionScores, domain.DimensionScore{
			Dimension: dim,
			Score:     s,
			Reasoning: "because " + string(dim),
		})
		total += s
	}
	score.OverallScore = total / float64(domain.DimensionCount)
	return score
}

func TestFixerService_Orchestrate_NoWeakDimensions(t *testing.T) {
	fixer := &mockFixer{}
	svc := NewFixerService(fixer, 7.0, zap.NewNop())

	orch, err := svc.Orchestrate(context.Background(), "the launch plan", clarityScoreWith(8.5, nil), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(orch.FixersDeployed) != 0 {
		t.Errorf("fixers deployed = %v, want none", orch.FixersDeployed)
	}
	if len(orch.AllSuggestedEdits) != 0 {
		t.Errorf("edits = %d, want 0", len(orch.AllSuggestedEdits))
	}
	if len(fixer.calls) != 0 {
		t.Errorf("fixer calls = %d, want 0 on the fast path", len(fixer.calls))
	}
	if orch.FixersDeployed == nil || orch.AllSuggestedEdits == nil {
		t.Error("fast path should return empty slices, not nil")
	}
}

func TestFixerService_Orchestrate_ThresholdIsStrict(t *testing.T) {
	fixer := &mockFixer{}
	svc := NewFixerService(fixer, 7.0, zap.NewNop())

	score := clarityScoreWith(9.0, map[domain.Dimension]float64{
		domain.DimensionCoherence: 6.9,
		domain.DimensionEvidence:  7.0,
		domain.DimensionBias:      7.1,
	})

	orch, err := svc.Orchestrate(context.Background(), "the launch plan", score, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(orch.FixersDeployed) != 1 || orch.FixersDeployed[0] != domain.DimensionCoherence {
		t.Errorf("fixers deployed = %v, want only coherence at 6.9", orch.FixersDeployed)
	}
}

func TestFixerService_Orchestrate_OneFixerPerWeakDimension(t *testing.T) {
	fixer := &mockFixer{}
	svc := NewFixerService(fixer, 7.0, zap.NewNop())

	score := clarityScoreWith(8.0, map[domain.Dimension]float64{
		domain.DimensionCoherence: 4.0,
		domain.DimensionEvidence:  5.0,
		domain.DimensionAccuracy:  6.0,
	})

	orch, err := svc.Orchestrate(context.Background(), "the launch plan", score, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(fixer.calls) != 3 {
		t.Fatalf("fixer calls = %d, want 3", len(fixer.calls))
	}
	if len(orch.FixerResults) != 3 {
		t.Errorf("results = %d, want 3", len(orch.FixerResults))
	}
	if len(orch.AllSuggestedEdits) != 3 {
		t.Errorf("edits = %d, want one per fixer", len(orch.AllSuggestedEdits))
	}

	// Results come back in canonical dimension order regardless of which
	// goroutine finished first.
	want := []domain.Dimension{domain.DimensionCoherence, domain.DimensionEvidence, domain.DimensionAccuracy}
	for i, dim := range want {
		if orch.FixerResults[i].Dimension != dim {
			t.Errorf("result[%d] = %s, want %s", i, orch.FixerResults[i].Dimension, dim)
		}
	}

	// Each fixer gets the per-dimension critique, not the overall one.
	for _, call := range fixer.calls {
		if call.Critique != "because "+string(call.Dimension) {
			t.Errorf("critique for %s = %q", call.Dimension, call.Critique)
		}
	}
}

func TestFixerService_Orchestrate_FixerFailureSkipsDimension(t *testing.T) {
	fixer := &mockFixer{
		fn: func(req domain.FixRequest) (*domain.FixerResult, error) {
			if req.Dimension == domain.DimensionEvidence {
				return nil, errors.New("provider error")
			}
			return &domain.FixerResult{
				Dimension: req.Dimension,
				Edits:     []domain.SuggestedEdit{{OriginalText: "a", SuggestedText: "b"}},
			}, nil
		},
	}
	svc := NewFixerService(fixer, 7.0, zap.NewNop())

	score := clarityScoreWith(8.0, map[domain.Dimension]float64{
		domain.DimensionCoherence: 4.0,
		domain.DimensionEvidence:  5.0,
	})

	orch, err := svc.Orchestrate(context.Background(), "the launch plan", score, nil)
	if err != nil {
		t.Fatalf("a single fixer failure must not fail the round: %v", err)
	}

	if len(orch.FixersDeployed) != 2 {
		t.Errorf("fixers deployed = %d, want 2", len(orch.FixersDeployed))
	}
	if len(orch.FixerResults) != 1 {
		t.Errorf("results = %d, want 1 surviving fixer", len(orch.FixerResults))
	}
	if len(orch.AllSuggestedEdits) != 1 {
		t.Errorf("edits = %d, want 1", len(orch.AllSuggestedEdits))
	}
}

func TestFixerService_Orchestrate_InvalidInput(t *testing.T) {
	svc := NewFixerService(&mockFixer{}, 7.0, zap.NewNop())

	if _, err := svc.Orchestrate(context.Background(), "", clarityScoreWith(5.0, nil), nil); !errors.Is(err, ErrBriefEmpty) {
		t.Errorf("empty brief err = %v, want ErrBriefEmpty", err)
	}
	if _, err := svc.Orchestrate(context.Background(), "the launch plan", nil, nil); !errors.Is(err, ErrScoreRequired) {
		t.Errorf("nil score err = %v, want ErrScoreRequired", err)
	}
}
