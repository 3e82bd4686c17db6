package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/clarionhq/clarion/internal/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrInitialScoreRequired = errors.New("initial consensus score is required")
	ErrInvalidInitialScore  = errors.New("initial consensus score is invalid")
)

const (
	// DefaultQualityGate is the overall score a brief must reach to pass.
	DefaultQualityGate = 8.0
	// DefaultMaxRefineAttempts bounds the fix-and-rescore loop.
	DefaultMaxRefineAttempts = 3
)

// RefineService drives the fix-and-rescore loop until the brief clears the
// quality gate or the attempt budget runs out.
type RefineService struct {
	consensus   *ConsensusService
	fixers      *FixerService
	briefStore  domain.BriefStore
	audit       domain.AuditSink
	gate        float64
	maxAttempts int
	logger      *zap.Logger
}

func NewRefineService(consensus *ConsensusService, fixers *FixerService, gate float64, maxAttempts int, logger *zap.Logger) *RefineService {
	if gate <= 0 {
		gate = DefaultQualityGate
	}
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxRefineAttempts
	}
	return &RefineService{
		consensus:   consensus,
		fixers:      fixers,
		gate:        gate,
		maxAttempts: maxAttempts,
		logger:      logger,
	}
}

func (s *RefineService) SetBriefStore(bs domain.BriefStore) {
	s.briefStore = bs
}

func (s *RefineService) SetAuditSink(sink domain.AuditSink) {
	s.audit = sink
}

// RefineUntilPassing runs up to maxAttempts fix-and-rescore rounds. Every
// round adopts the reconciled text regardless of whether the rescore
// improved, so progress on some dimensions is never thrown away. A
// maxAttempts <= 0 uses the service default.
func (s *RefineService) RefineUntilPassing(ctx context.Context, tenantID, briefID uuid.UUID, brief string, initial *domain.ClarityScore, sources []domain.SourceDocument, maxAttempts int) (*domain.RefinementResult, error) {
	if strings.TrimSpace(brief) == "" {
		return nil, ErrBriefEmpty
	}
	if initial == nil {
		return nil, ErrInitialScoreRequired
	}
	if err := initial.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInitialScore, err)
	}
	if maxAttempts <= 0 {
		maxAttempts = s.maxAttempts
	}

	start := time.Now()
	result := &domain.RefinementResult{
		FinalBrief: brief,
		FinalScore: initial.OverallScore,
		Attempts:   []domain.RefinementAttempt{},
	}

	if initial.OverallScore >= s.gate {
		result.Success = true
		result.Duration = time.Since(start)
		emitAudit(ctx, s.audit, s.logger, tenantID, briefID, domain.AuditRefinement, result)
		return result, nil
	}

	current := brief
	score := initial
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		attemptStart := time.Now()

		orch, err := s.fixers.Orchestrate(ctx, current, score, sources)
		if err != nil {
			return nil, fmt.Errorf("fixer round %d: %w", attempt, err)
		}
		if len(orch.FixersDeployed) == 0 {
			// Every dimension already clears the repair threshold; another
			// round would rescore identical text.
			s.logger.Warn("no repairable dimensions below gate",
				zap.String("brief_id", briefID.String()),
				zap.Float64("overall_score", score.OverallScore))
			break
		}

		reconciled := Reconcile(current, orch.AllSuggestedEdits)
		rescored, err := s.consensus.Score(ctx, tenantID, briefID, reconciled.RevisedBrief)
		if err != nil {
			return nil, fmt.Errorf("rescore attempt %d: %w", attempt, err)
		}

		record := domain.RefinementAttempt{
			Attempt:         attempt,
			DimensionsFixed: orch.FixersDeployed,
			EditsApplied:    reconciled.EditsApplied,
			EditsSkipped:    reconciled.EditsSkipped,
			ScoreBefore:     score.OverallScore,
			ScoreAfter:      rescored.OverallScore,
			BreakdownBefore: breakdownOf(score),
			BreakdownAfter:  breakdownOf(rescored),
			Duration:        time.Since(attemptStart),
		}
		result.Attempts = append(result.Attempts, record)
		emitAudit(ctx, s.audit, s.logger, tenantID, briefID, domain.AuditAttempt, record)

		// Always advance on the reconciled text: per-dimension gains are
		// kept even when the overall score moves the wrong way.
		current = reconciled.RevisedBrief
		score = rescored

		s.logger.Info("refinement attempt finished",
			zap.String("brief_id", briefID.String()),
			zap.Int("attempt", attempt),
			zap.Float64("score_before", record.ScoreBefore),
			zap.Float64("score_after", record.ScoreAfter))

		if score.OverallScore >= s.gate {
			break
		}
	}

	result.FinalBrief = current
	result.FinalScore = score.OverallScore
	result.Success = score.OverallScore >= s.gate
	result.Duration = time.Since(start)
	if !result.Success {
		result.QualityWarning = true
		result.WarningReason = fmt.Sprintf("quality gate %v not reached after %d attempts, final score %v",
			s.gate, len(result.Attempts), score.OverallScore)
	}

	if s.briefStore != nil && current != brief {
		if err := s.briefStore.UpdateContent(ctx, briefID, tenantID, current); err != nil {
			s.logger.Warn("persist refined brief failed",
				zap.String("brief_id", briefID.String()),
				zap.Error(err))
		}
	}

	emitAudit(ctx, s.audit, s.logger, tenantID, briefID, domain.AuditRefinement, result)
	return result, nil
}

func breakdownOf(score *domain.ClarityScore) map[domain.Dimension]float64 {
	breakdown := make(map[domain.Dimension]float64, len(score.DimensionScores))
	for _, ds := range score.DimensionScores {
		breakdown[ds.Dimension] = ds.Score
	}
	return breakdown
}
