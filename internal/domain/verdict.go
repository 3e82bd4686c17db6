package domain

import (
	"fmt"
	"time"
)

// EvaluatorRole identifies one flavor of the evaluator capability.
type EvaluatorRole string

const (
	RoleSkeptic    EvaluatorRole = "skeptic"
	RoleAdvocate   EvaluatorRole = "advocate"
	RoleGeneralist EvaluatorRole = "generalist"
	// RoleArbiter is invoked only to break ties that survive discussion.
	RoleArbiter EvaluatorRole = "arbiter"
)

// PanelRoles returns the roles dispatched on every scoring round, in the
// order their verdicts are collected.
func PanelRoles() []EvaluatorRole {
	return []EvaluatorRole{RoleSkeptic, RoleAdvocate, RoleGeneralist}
}

func ValidRole(r string) bool {
	switch EvaluatorRole(r) {
	case RoleSkeptic, RoleAdvocate, RoleGeneralist, RoleArbiter:
		return true
	}
	return false
}

type IssueSeverity string

const (
	SeverityCritical IssueSeverity = "critical"
	SeverityMajor    IssueSeverity = "major"
	SeverityMinor    IssueSeverity = "minor"
)

func ValidIssueSeverity(s string) bool {
	switch IssueSeverity(s) {
	case SeverityCritical, SeverityMajor, SeverityMinor:
		return true
	}
	return false
}

// Issue is a discrete problem an evaluator found in the brief.
type Issue struct {
	Dimension   Dimension     `json:"dimension"`
	Severity    IssueSeverity `json:"severity"`
	Description string        `json:"description"`
}

// DimensionScore is one evaluator's (or the aggregated panel's) score for a
// single dimension. Read-only once produced.
type DimensionScore struct {
	Dimension Dimension `json:"dimension"`
	Score     float64   `json:"score"`
	Reasoning string    `json:"reasoning,omitempty"`
	Issues    []string  `json:"issues,omitempty"`
}

// EvaluatorVerdict is one evaluator's full scoring output for a brief.
// Verdicts are never mutated; a discussion round supersedes them with
// revised copies.
type EvaluatorVerdict struct {
	Role            EvaluatorRole    `json:"role"`
	OverallScore    float64          `json:"overall_score"`
	Confidence      float64          `json:"confidence"`
	Critique        string           `json:"critique"`
	DimensionScores []DimensionScore `json:"dimension_scores"`
	Issues          []Issue          `json:"issues,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
}

// ScoreFor returns the verdict's score for the given dimension.
func (v *EvaluatorVerdict) ScoreFor(d Dimension) (float64, bool) {
	for _, ds := range v.DimensionScores {
		if ds.Dimension == d {
			return ds.Score, true
		}
	}
	return 0, false
}

// Validate checks that the verdict covers every dimension exactly once and
// that all scores are in range.
func (v *EvaluatorVerdict) Validate() error {
	if !ValidRole(string(v.Role)) {
		return fmt.Errorf("invalid evaluator role %q", v.Role)
	}
	if v.OverallScore < MinScore || v.OverallScore > MaxScore {
		return fmt.Errorf("overall score %.2f out of range", v.OverallScore)
	}
	if v.Confidence < 0 || v.Confidence > 1 {
		return fmt.Errorf("confidence %.2f out of range", v.Confidence)
	}
	seen := make(map[Dimension]bool, DimensionCount)
	for _, ds := range v.DimensionScores {
		if !ValidDimension(string(ds.Dimension)) {
			return fmt.Errorf("unknown dimension %q", ds.Dimension)
		}
		if seen[ds.Dimension] {
			return fmt.Errorf("duplicate dimension %q", ds.Dimension)
		}
		if ds.Score < MinScore || ds.Score > MaxScore {
			return fmt.Errorf("dimension %q score %.2f out of range", ds.Dimension, ds.Score)
		}
		seen[ds.Dimension] = true
	}
	if len(seen) != DimensionCount {
		return fmt.Errorf("verdict covers %d of %d dimensions", len(seen), DimensionCount)
	}
	return nil
}

// DisagreementResult captures per-dimension divergence among panel verdicts.
// Derived and recomputed each round; never persisted on its own.
type DisagreementResult struct {
	HasDisagreement bool        `json:"has_disagreement"`
	Dimensions      []Dimension `json:"dimensions,omitempty"`
	MaxSpread       float64     `json:"max_spread"`
	// Positions summarizes each evaluator's score per dimension so a
	// discussion round can show evaluators where they stand.
	Positions map[Dimension]map[EvaluatorRole]float64 `json:"positions,omitempty"`
}

// Disputed reports whether the given dimension is among the disagreeing ones.
func (r *DisagreementResult) Disputed(d Dimension) bool {
	for _, dim := range r.Dimensions {
		if dim == d {
			return true
		}
	}
	return false
}
