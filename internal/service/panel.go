package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/clarionhq/clarion/internal/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	ErrBriefEmpty       = errors.New("brief content is required")
	ErrPanelUnavailable = errors.New("panel could not produce enough verdicts")
)

const (
	// minPanelVerdicts is the smallest panel that can still reach consensus.
	minPanelVerdicts = 2
	// unresolvedConfidenceDiscount is applied when disagreement survives
	// discussion and the arbiter is unavailable.
	unresolvedConfidenceDiscount = 0.75
	// degradedConfidenceDiscount is applied when the panel ran short-handed.
	degradedConfidenceDiscount = 0.9
	// reviewConfidenceFloor flags a score for human review below this.
	reviewConfidenceFloor = 0.5
)

// ConsensusService runs the evaluation panel against a brief and distills
// the verdicts into a single ClarityScore.
type ConsensusService struct {
	evaluator domain.EvaluatorClient
	audit     domain.AuditSink
	tolerance float64
	logger    *zap.Logger
}

func NewConsensusService(evaluator domain.EvaluatorClient, tolerance float64, logger *zap.Logger) *ConsensusService {
	if tolerance <= 0 {
		tolerance = DefaultDisagreementTolerance
	}
	return &ConsensusService{
		evaluator: evaluator,
		tolerance: tolerance,
		logger:    logger,
	}
}

func (s *ConsensusService) SetAuditSink(sink domain.AuditSink) {
	s.audit = sink
}

// Score runs the full consensus pipeline: concurrent panel evaluation,
// disagreement detection, a discussion round, and an arbiter tiebreak when
// the panel stays split.
func (s *ConsensusService) Score(ctx context.Context, tenantID, briefID uuid.UUID, brief string) (*domain.ClarityScore, error) {
	if strings.TrimSpace(brief) == "" {
		return nil, ErrBriefEmpty
	}

	verdicts, degraded, err := s.dispatchPanel(ctx, brief)
	if err != nil {
		return nil, err
	}
	for _, v := range verdicts {
		emitAudit(ctx, s.audit, s.logger, tenantID, briefID, domain.AuditVerdict, v)
	}

	hadDisagreement := false
	method := domain.ConsensusUnanimous
	resolved := true
	var arbiter *domain.EvaluatorVerdict
	var disputed []domain.Dimension

	disagreement := DetectDisagreement(verdicts, s.tolerance)
	if disagreement.HasDisagreement {
		hadDisagreement = true
		emitAudit(ctx, s.audit, s.logger, tenantID, briefID, domain.AuditDisagreement, disagreement)
		s.logger.Info("panel disagreement detected",
			zap.String("brief_id", briefID.String()),
			zap.Float64("max_spread", disagreement.MaxSpread),
			zap.Int("disputed_dimensions", len(disagreement.Dimensions)))

		verdicts = s.discuss(ctx, tenantID, briefID, brief, verdicts, &disagreement)
		method = domain.ConsensusDiscussion

		disagreement = DetectDisagreement(verdicts, s.tolerance)
		if disagreement.HasDisagreement {
			disputed = disagreement.Dimensions
			av, err := s.evaluator.Arbitrate(ctx, brief, disputed, verdicts)
			if err != nil {
				s.logger.Warn("arbiter unavailable, consensus unresolved",
					zap.String("brief_id", briefID.String()),
					zap.Error(err))
				method = domain.ConsensusUnresolved
				resolved = false
			} else {
				arbiter = av
				method = domain.ConsensusTiebreaker
				emitAudit(ctx, s.audit, s.logger, tenantID, briefID, domain.AuditTiebreak, av)
			}
		}
	}

	score := aggregateVerdicts(verdicts, arbiter, disputed, method, resolved, degraded, hadDisagreement)
	emitAudit(ctx, s.audit, s.logger, tenantID, briefID, domain.AuditScore, score)

	s.logger.Info("consensus reached",
		zap.String("brief_id", briefID.String()),
		zap.Float64("overall_score", score.OverallScore),
		zap.String("method", string(score.ConsensusMethod)),
		zap.Bool("needs_human_review", score.NeedsHumanReview))

	return score, nil
}

// dispatchPanel fans the brief out to every panel role concurrently and
// collects whatever verdicts come back, in fixed role order. A partial
// panel is tolerated down to minPanelVerdicts.
func (s *ConsensusService) dispatchPanel(ctx context.Context, brief string) ([]domain.EvaluatorVerdict, bool, error) {
	roles := domain.PanelRoles()
	results := make([]*domain.EvaluatorVerdict, len(roles))
	failures := make([]error, len(roles))

	g, gctx := errgroup.WithContext(ctx)
	for i, role := range roles {
		i, role := i, role
		g.Go(func() error {
			v, err := s.evaluator.Evaluate(gctx, brief, role)
			results[i], failures[i] = v, err
			return nil
		})
	}
	_ = g.Wait()

	var verdicts []domain.EvaluatorVerdict
	var firstErr error
	for i, role := range roles {
		if failures[i] != nil {
			s.logger.Warn("panel evaluator failed",
				zap.String("role", string(role)),
				zap.Error(failures[i]))
			if firstErr == nil {
				firstErr = failures[i]
			}
			continue
		}
		verdicts = append(verdicts, *results[i])
	}

	if len(verdicts) < minPanelVerdicts {
		return nil, false, fmt.Errorf("%w: %d of %d evaluators responded: %v",
			ErrPanelUnavailable, len(verdicts), len(roles), firstErr)
	}
	return verdicts, len(verdicts) < len(roles), nil
}

// discuss shows each evaluator the other panelists' positions and lets it
// revise its verdict. An evaluator that fails the round keeps its original
// verdict.
func (s *ConsensusService) discuss(ctx context.Context, tenantID, briefID uuid.UUID, brief string, verdicts []domain.EvaluatorVerdict, disagreement *domain.DisagreementResult) []domain.EvaluatorVerdict {
	revised := make([]*domain.EvaluatorVerdict, len(verdicts))

	g, gctx := errgroup.WithContext(ctx)
	for i, v := range verdicts {
		i, v := i, v
		g.Go(func() error {
			rv, err := s.evaluator.Reevaluate(gctx, brief, v.Role, verdicts, disagreement)
			if err != nil {
				s.logger.Warn("discussion round failed, keeping original verdict",
					zap.String("role", string(v.Role)),
					zap.Error(err))
				return nil
			}
			revised[i] = rv
			return nil
		})
	}
	_ = g.Wait()

	out := make([]domain.EvaluatorVerdict, len(verdicts))
	changes := 0
	for i := range verdicts {
		if revised[i] == nil {
			out[i] = verdicts[i]
			continue
		}
		out[i] = *revised[i]
		if revised[i].OverallScore != verdicts[i].OverallScore {
			changes++
		}
	}

	emitAudit(ctx, s.audit, s.logger, tenantID, briefID, domain.AuditDiscussion, map[string]any{
		"positions_changed": changes,
		"verdicts":          out,
	})
	return out
}

// aggregateVerdicts folds the panel into a single score: median per
// dimension, arbiter overriding disputed dimensions, overall as the mean
// of the seven aggregates.
func aggregateVerdicts(verdicts []domain.EvaluatorVerdict, arbiter *domain.EvaluatorVerdict, disputed []domain.Dimension, method domain.ConsensusMethod, resolved, degraded, hadDisagreement bool) *domain.ClarityScore {
	disputedSet := make(map[domain.Dimension]bool, len(disputed))
	for _, d := range disputed {
		disputedSet[d] = true
	}

	dims := domain.AllDimensions()
	scores := make([]domain.DimensionScore, 0, len(dims))
	sum := 0.0
	for _, dim := range dims {
		var value float64
		if as, ok := arbiterScore(arbiter, dim, disputedSet); ok {
			value = as
		} else {
			vals := make([]float64, 0, len(verdicts))
			for _, v := range verdicts {
				if s, ok := v.ScoreFor(dim); ok {
					vals = append(vals, s)
				}
			}
			value = median(vals)
		}
		scores = append(scores, domain.DimensionScore{Dimension: dim, Score: value})
		sum += value
	}
	overall := sum / float64(len(dims))

	confidence := 0.0
	critiques := make([]string, 0, len(verdicts))
	all := make([]domain.EvaluatorVerdict, 0, len(verdicts)+1)
	for _, v := range verdicts {
		confidence += v.Confidence
		if v.Critique != "" {
			critiques = append(critiques, fmt.Sprintf("[%s] %s", v.Role, v.Critique))
		}
		all = append(all, v)
	}
	confidence /= float64(len(verdicts))
	if arbiter != nil {
		all = append(all, *arbiter)
		if arbiter.Critique != "" {
			critiques = append(critiques, fmt.Sprintf("[%s] %s", arbiter.Role, arbiter.Critique))
		}
	}
	if !resolved {
		confidence *= unresolvedConfidenceDiscount
	}
	if degraded {
		confidence *= degradedConfidenceDiscount
	}

	score := &domain.ClarityScore{
		OverallScore:    overall,
		DimensionScores: scores,
		Critique:        strings.Join(critiques, "\n"),
		Confidence:      confidence,
		Verdicts:        all,
		ConsensusMethod: method,
		HasDisagreement: hadDisagreement,
		CreatedAt:       time.Now().UTC(),
	}

	switch {
	case !resolved:
		score.NeedsHumanReview = true
		score.ReviewReason = "panel disagreement was not resolved by discussion or arbitration"
	case degraded:
		score.NeedsHumanReview = true
		score.ReviewReason = "panel ran without its full complement of evaluators"
	case confidence < reviewConfidenceFloor:
		score.NeedsHumanReview = true
		score.ReviewReason = fmt.Sprintf("panel confidence %.2f is below the review floor", confidence)
	}

	return score
}

func arbiterScore(arbiter *domain.EvaluatorVerdict, dim domain.Dimension, disputed map[domain.Dimension]bool) (float64, bool) {
	if arbiter == nil || !disputed[dim] {
		return 0, false
	}
	return arbiter.ScoreFor(dim)
}

func median(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	sorted := make([]float64, len(vals))
	copy(sorted, vals)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}
