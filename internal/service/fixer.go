package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/clarionhq/clarion/internal/domain"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var ErrScoreRequired = errors.New("consensus score is required")

// DefaultRepairThreshold is the dimension score below which a fixer is
// deployed. The comparison is strict: a dimension sitting exactly on the
// threshold is left alone.
const DefaultRepairThreshold = 7.0

// FixerService deploys one fixer per weak dimension and collects their
// suggested edits.
type FixerService struct {
	fixer     domain.FixerClient
	threshold float64
	logger    *zap.Logger
}

func NewFixerService(fixer domain.FixerClient, threshold float64, logger *zap.Logger) *FixerService {
	if threshold <= 0 {
		threshold = DefaultRepairThreshold
	}
	return &FixerService{
		fixer:     fixer,
		threshold: threshold,
		logger:    logger,
	}
}

// FixOrchestration is the combined outcome of one fixer round.
type FixOrchestration struct {
	FixersDeployed    []domain.Dimension     `json:"fixers_deployed"`
	FixerResults      []domain.FixerResult   `json:"fixer_results"`
	AllSuggestedEdits []domain.SuggestedEdit `json:"all_suggested_edits"`
	TotalDuration     time.Duration          `json:"total_duration"`
}

// Orchestrate inspects the score, deploys fixers concurrently for every
// dimension strictly below the threshold, and concatenates their edits in
// canonical dimension order. When nothing is weak it returns immediately
// with empty results.
func (s *FixerService) Orchestrate(ctx context.Context, brief string, score *domain.ClarityScore, sources []domain.SourceDocument) (*FixOrchestration, error) {
	if strings.TrimSpace(brief) == "" {
		return nil, ErrBriefEmpty
	}
	if score == nil {
		return nil, ErrScoreRequired
	}

	start := time.Now()
	orch := &FixOrchestration{
		FixersDeployed:    []domain.Dimension{},
		FixerResults:      []domain.FixerResult{},
		AllSuggestedEdits: []domain.SuggestedEdit{},
	}

	byDim := make(map[domain.Dimension]domain.DimensionScore, len(score.DimensionScores))
	for _, ds := range score.DimensionScores {
		byDim[ds.Dimension] = ds
	}

	var weak []domain.DimensionScore
	for _, dim := range domain.AllDimensions() {
		ds, ok := byDim[dim]
		if !ok {
			continue
		}
		if ds.Score < s.threshold {
			weak = append(weak, ds)
			orch.FixersDeployed = append(orch.FixersDeployed, dim)
		}
	}
	if len(weak) == 0 {
		return orch, nil
	}

	results := make([]*domain.FixerResult, len(weak))
	failures := make([]error, len(weak))

	g, gctx := errgroup.WithContext(ctx)
	for i, ds := range weak {
		i := i
		critique := ds.Reasoning
		if critique == "" {
			critique = score.Critique
		}
		req := domain.FixRequest{
			Brief:     brief,
			Dimension: ds.Dimension,
			Score:     ds.Score,
			Critique:  critique,
			Sources:   sources,
		}
		g.Go(func() error {
			r, err := s.fixer.SuggestEdits(gctx, req)
			results[i], failures[i] = r, err
			return nil
		})
	}
	_ = g.Wait()

	for i, ds := range weak {
		if failures[i] != nil {
			s.logger.Warn("fixer failed, skipping dimension",
				zap.String("dimension", string(ds.Dimension)),
				zap.Error(failures[i]))
			continue
		}
		orch.FixerResults = append(orch.FixerResults, *results[i])
		orch.AllSuggestedEdits = append(orch.AllSuggestedEdits, results[i].Edits...)
	}

	orch.TotalDuration = time.Since(start)
	s.logger.Info("fixer round complete",
		zap.Int("fixers_deployed", len(orch.FixersDeployed)),
		zap.Int("edits_suggested", len(orch.AllSuggestedEdits)),
		zap.Duration("duration", orch.TotalDuration))
	return orch, nil
}
