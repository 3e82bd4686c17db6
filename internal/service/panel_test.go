package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/clarionhq/clarion/internal/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type mockEvaluator struct {
	mu sync.Mutex

	evaluateFn   func(role domain.EvaluatorRole) (*domain.EvaluatorVerdict, error)
	reevaluateFn func(role domain.EvaluatorRole) (*domain.EvaluatorVerdict, error)
	arbitrateFn  func(disputed []domain.Dimension) (*domain.EvaluatorVerdict, error)

	evaluateCalls   int
	reevaluateCalls int
	arbitrateCalls  int
}

func (m *mockEvaluator) Evaluate(ctx context.Context, brief string, role domain.EvaluatorRole) (*domain.EvaluatorVerdict, error) {
	m.mu.Lock()
	m.evaluateCalls++
	fn := m.evaluateFn
	m.mu.Unlock()
	if fn == nil {
		return uniformVerdict(role, 8.0, 0.9), nil
	}
	return fn(role)
}

func (m *mockEvaluator) Reevaluate(ctx context.Context, brief string, role domain.EvaluatorRole, prior []domain.EvaluatorVerdict, disagreement *domain.DisagreementResult) (*domain.EvaluatorVerdict, error) {
	m.mu.Lock()
	m.reevaluateCalls++
	fn := m.reevaluateFn
	m.mu.Unlock()
	if fn == nil {
		for _, v := range prior {
			if v.Role == role {
				clone := v
				return &clone, nil
			}
		}
		return uniformVerdict(role, 8.0, 0.9), nil
	}
	return fn(role)
}

func (m *mockEvaluator) Arbitrate(ctx context.Context, brief string, disputed []domain.Dimension, prior []domain.EvaluatorVerdict) (*domain.EvaluatorVerdict, error) {
	m.mu.Lock()
	m.arbitrateCalls++
	fn := m.arbitrateFn
	m.mu.Unlock()
	if fn == nil {
		return uniformVerdict(domain.RoleArbiter, 7.0, 0.9), nil
	}
	return fn(disputed)
}

func uniformVerdict(role domain.EvaluatorRole, score, confidence float64) *domain.EvaluatorVerdict {
	v := &domain.EvaluatorVerdict{
		Role:         role,
		OverallScore: score,
		Confidence:   confidence,
		Critique:     "fine as written",
		CreatedAt:    time.Now().UTC(),
	}
	for _, dim := range domain.AllDimensions() {
		v.DimensionScores = append(v.DimensionScores, domain.DimensionScore{
			Dimension: dim,
			Score:     score,
		})
	}
	return v
}

// verdictWith overrides individual dimensions on an otherwise uniform verdict.
func verdictWith(role domain.EvaluatorRole, base float64, overrides map[domain.Dimension]float64) *domain.EvaluatorVerdict {
	v := uniformVerdict(role, base, 0.9)
	total := 0.0
	for i := range v.DimensionScores {
		if s, ok := overrides[v.DimensionScores[i].Dimension]; ok {
			v.DimensionScores[i].Score = s
		}
		total += v.DimensionScores[i].Score
	}
	v.OverallScore = total / float64(len(v.DimensionScores))
	return v
}

func TestConsensusService_Score_Unanimous(t *testing.T) {
	eval := &mockEvaluator{}
	svc := NewConsensusService(eval, 2.0, zap.NewNop())

	score, err := svc.Score(context.Background(), uuid.New(), uuid.New(), "the launch plan")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if score.ConsensusMethod != domain.ConsensusUnanimous {
		t.Errorf("method = %s, want %s", score.ConsensusMethod, domain.ConsensusUnanimous)
	}
	if score.HasDisagreement {
		t.Error("expected no disagreement")
	}
	if score.OverallScore != 8.0 {
		t.Errorf("overall = %f, want 8.0", score.OverallScore)
	}
	if len(score.DimensionScores) != domain.DimensionCount {
		t.Errorf("dimension scores = %d, want %d", len(score.DimensionScores), domain.DimensionCount)
	}
	if eval.reevaluateCalls != 0 {
		t.Errorf("reevaluate calls = %d, want 0 without disagreement", eval.reevaluateCalls)
	}
	if eval.arbitrateCalls != 0 {
		t.Errorf("arbitrate calls = %d, want 0 without disagreement", eval.arbitrateCalls)
	}
	if score.NeedsHumanReview {
		t.Errorf("unexpected human review flag: %s", score.ReviewReason)
	}
}

func TestConsensusService_Score_EmptyBrief(t *testing.T) {
	svc := NewConsensusService(&mockEvaluator{}, 2.0, zap.NewNop())

	_, err := svc.Score(context.Background(), uuid.New(), uuid.New(), "   ")
	if !errors.Is(err, ErrBriefEmpty) {
		t.Fatalf("err = %v, want ErrBriefEmpty", err)
	}
}

func TestConsensusService_Score_DiscussionResolves(t *testing.T) {
	// Skeptic starts far apart on evidence, then converges after seeing
	// the other positions.
	eval := &mockEvaluator{
		evaluateFn: func(role domain.EvaluatorRole) (*domain.EvaluatorVerdict, error) {
			if role == domain.RoleSkeptic {
				return verdictWith(role, 8.0, map[domain.Dimension]float64{domain.DimensionEvidence: 4.0}), nil
			}
			return uniformVerdict(role, 8.0, 0.9), nil
		},
		reevaluateFn: func(role domain.EvaluatorRole) (*domain.EvaluatorVerdict, error) {
			return uniformVerdict(role, 8.0, 0.9), nil
		},
	}
	svc := NewConsensusService(eval, 2.0, zap.NewNop())

	score, err := svc.Score(context.Background(), uuid.New(), uuid.New(), "the launch plan")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if score.ConsensusMethod != domain.ConsensusDiscussion {
		t.Errorf("method = %s, want %s", score.ConsensusMethod, domain.ConsensusDiscussion)
	}
	if !score.HasDisagreement {
		t.Error("expected disagreement to be recorded even after resolution")
	}
	if eval.reevaluateCalls != 3 {
		t.Errorf("reevaluate calls = %d, want 3", eval.reevaluateCalls)
	}
	if eval.arbitrateCalls != 0 {
		t.Errorf("arbitrate calls = %d, want 0 after discussion resolved", eval.arbitrateCalls)
	}
}

func TestConsensusService_Score_TiebreakerOverridesDisputed(t *testing.T) {
	stubborn := func(role domain.EvaluatorRole) (*domain.EvaluatorVerdict, error) {
		if role == domain.RoleSkeptic {
			return verdictWith(role, 8.0, map[domain.Dimension]float64{domain.DimensionEvidence: 3.0}), nil
		}
		return uniformVerdict(role, 8.0, 0.9), nil
	}
	eval := &mockEvaluator{
		evaluateFn:   stubborn,
		reevaluateFn: stubborn,
		arbitrateFn: func(disputed []domain.Dimension) (*domain.EvaluatorVerdict, error) {
			if len(disputed) != 1 || disputed[0] != domain.DimensionEvidence {
				t.Errorf("disputed = %v, want [evidence]", disputed)
			}
			return verdictWith(domain.RoleArbiter, 8.0, map[domain.Dimension]float64{domain.DimensionEvidence: 5.0}), nil
		},
	}
	svc := NewConsensusService(eval, 2.0, zap.NewNop())

	score, err := svc.Score(context.Background(), uuid.New(), uuid.New(), "the launch plan")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if score.ConsensusMethod != domain.ConsensusTiebreaker {
		t.Errorf("method = %s, want %s", score.ConsensusMethod, domain.ConsensusTiebreaker)
	}
	if s, ok := score.ScoreFor(domain.DimensionEvidence); !ok || s != 5.0 {
		t.Errorf("evidence score = %f, want arbiter's 5.0", s)
	}
	// Undisputed dimensions stay with the panel median.
	if s, ok := score.ScoreFor(domain.DimensionCoherence); !ok || s != 8.0 {
		t.Errorf("coherence score = %f, want panel median 8.0", s)
	}
	if len(score.Verdicts) != 4 {
		t.Errorf("verdicts = %d, want 3 panelists + arbiter", len(score.Verdicts))
	}
}

func TestConsensusService_Score_ArbiterFailureUnresolved(t *testing.T) {
	stubborn := func(role domain.EvaluatorRole) (*domain.EvaluatorVerdict, error) {
		if role == domain.RoleSkeptic {
			return verdictWith(role, 8.0, map[domain.Dimension]float64{domain.DimensionEvidence: 3.0}), nil
		}
		return uniformVerdict(role, 8.0, 0.9), nil
	}
	eval := &mockEvaluator{
		evaluateFn:   stubborn,
		reevaluateFn: stubborn,
		arbitrateFn: func(disputed []domain.Dimension) (*domain.EvaluatorVerdict, error) {
			return nil, errors.New("arbiter timeout")
		},
	}
	svc := NewConsensusService(eval, 2.0, zap.NewNop())

	score, err := svc.Score(context.Background(), uuid.New(), uuid.New(), "the launch plan")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if score.ConsensusMethod != domain.ConsensusUnresolved {
		t.Errorf("method = %s, want %s", score.ConsensusMethod, domain.ConsensusUnresolved)
	}
	if !score.NeedsHumanReview {
		t.Error("unresolved consensus should be flagged for human review")
	}
	want := 0.9 * unresolvedConfidenceDiscount
	if score.Confidence < want-0.001 || score.Confidence > want+0.001 {
		t.Errorf("confidence = %f, want discounted ~%f", score.Confidence, want)
	}
}

func TestConsensusService_Score_DegradedPanel(t *testing.T) {
	eval := &mockEvaluator{
		evaluateFn: func(role domain.EvaluatorRole) (*domain.EvaluatorVerdict, error) {
			if role == domain.RoleAdvocate {
				return nil, errors.New("rate limited")
			}
			return uniformVerdict(role, 8.0, 0.9), nil
		},
	}
	svc := NewConsensusService(eval, 2.0, zap.NewNop())

	score, err := svc.Score(context.Background(), uuid.New(), uuid.New(), "the launch plan")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(score.Verdicts) != 2 {
		t.Errorf("verdicts = %d, want 2 from a degraded panel", len(score.Verdicts))
	}
	if !score.NeedsHumanReview {
		t.Error("degraded panel should be flagged for human review")
	}
	want := 0.9 * degradedConfidenceDiscount
	if score.Confidence < want-0.001 || score.Confidence > want+0.001 {
		t.Errorf("confidence = %f, want discounted ~%f", score.Confidence, want)
	}
}

func TestConsensusService_Score_PanelUnavailable(t *testing.T) {
	eval := &mockEvaluator{
		evaluateFn: func(role domain.EvaluatorRole) (*domain.EvaluatorVerdict, error) {
			if role == domain.RoleGeneralist {
				return uniformVerdict(role, 8.0, 0.9), nil
			}
			return nil, errors.New("provider down")
		},
	}
	svc := NewConsensusService(eval, 2.0, zap.NewNop())

	_, err := svc.Score(context.Background(), uuid.New(), uuid.New(), "the launch plan")
	if !errors.Is(err, ErrPanelUnavailable) {
		t.Fatalf("err = %v, want ErrPanelUnavailable", err)
	}
}

func TestMedian(t *testing.T) {
	tests := []struct {
		name string
		vals []float64
		want float64
	}{
		{"odd", []float64{9.0, 3.0, 6.0}, 6.0},
		{"even", []float64{4.0, 8.0}, 6.0},
		{"single", []float64{7.5}, 7.5},
		{"empty", nil, 0},
		{"order independent", []float64{6.0, 9.0, 3.0}, 6.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := median(tt.vals); got != tt.want {
				t.Errorf("median(%v) = %f, want %f", tt.vals, got, tt.want)
			}
		})
	}
}
