package domain

import (
	"fmt"
	"time"
)

// ConsensusMethod identifies how the panel's verdicts were reduced to a
// single score.
type ConsensusMethod string

const (
	// ConsensusUnanimous: no dimension diverged beyond tolerance.
	ConsensusUnanimous ConsensusMethod = "unanimous"
	// ConsensusDiscussion: disagreement resolved after evaluators revised
	// their verdicts having seen each other's positions.
	ConsensusDiscussion ConsensusMethod = "discussion"
	// ConsensusTiebreaker: the arbiter issued a binding verdict on the
	// dimensions still disputed after discussion.
	ConsensusTiebreaker ConsensusMethod = "tiebreaker"
	// ConsensusUnresolved: disagreement survived discussion and the
	// tiebreaker was unavailable; medians used with discounted confidence.
	ConsensusUnresolved ConsensusMethod = "unresolved"
)

func ValidConsensusMethod(m string) bool {
	switch ConsensusMethod(m) {
	case ConsensusUnanimous, ConsensusDiscussion, ConsensusTiebreaker, ConsensusUnresolved:
		return true
	}
	return false
}

// ClarityScore is the canonical scoring result for one brief. Immutable once
// constructed.
type ClarityScore struct {
	OverallScore     float64            `json:"overall_score"`
	DimensionScores  []DimensionScore   `json:"dimension_scores"`
	Critique         string             `json:"critique"`
	Confidence       float64            `json:"confidence"`
	Verdicts         []EvaluatorVerdict `json:"verdicts,omitempty"`
	ConsensusMethod  ConsensusMethod    `json:"consensus_method"`
	HasDisagreement  bool               `json:"has_disagreement"`
	NeedsHumanReview bool               `json:"needs_human_review"`
	ReviewReason     string             `json:"review_reason,omitempty"`
	CreatedAt        time.Time          `json:"created_at"`
}

// ScoreFor returns the aggregated score for the given dimension.
func (s *ClarityScore) ScoreFor(d Dimension) (float64, bool) {
	for _, ds := range s.DimensionScores {
		if ds.Dimension == d {
			return ds.Score, true
		}
	}
	return 0, false
}

// Validate checks structural soundness: overall score in range and every
// dimension present exactly once. Used to fail fast before refinement
// dispatches any concurrent work.
func (s *ClarityScore) Validate() error {
	if s.OverallScore < MinScore || s.OverallScore > MaxScore {
		return fmt.Errorf("overall score %.2f out of range", s.OverallScore)
	}
	if !ValidConsensusMethod(string(s.ConsensusMethod)) {
		return fmt.Errorf("invalid consensus method %q", s.ConsensusMethod)
	}
	seen := make(map[Dimension]bool, DimensionCount)
	for _, ds := range s.DimensionScores {
		if !ValidDimension(string(ds.Dimension)) {
			return fmt.Errorf("unknown dimension %q", ds.Dimension)
		}
		if seen[ds.Dimension] {
			return fmt.Errorf("duplicate dimension %q", ds.Dimension)
		}
		seen[ds.Dimension] = true
	}
	if len(seen) != DimensionCount {
		return fmt.Errorf("score covers %d of %d dimensions", len(seen), DimensionCount)
	}
	return nil
}
