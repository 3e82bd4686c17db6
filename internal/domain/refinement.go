package domain

import "time"

// RefinementAttempt records one score→fix→reconcile→rescore cycle.
// Attempts are append-only; they are never mutated after creation.
type RefinementAttempt struct {
	Attempt         int                   `json:"attempt"`
	DimensionsFixed []Dimension           `json:"dimensions_fixed"`
	EditsApplied    []SuggestedEdit       `json:"edits_applied"`
	EditsSkipped    []SkippedEdit         `json:"edits_skipped,omitempty"`
	ScoreBefore     float64               `json:"score_before"`
	ScoreAfter      float64               `json:"score_after"`
	BreakdownBefore map[Dimension]float64 `json:"breakdown_before"`
	BreakdownAfter  map[Dimension]float64 `json:"breakdown_after"`
	Duration        time.Duration         `json:"duration"`
}

// RefinementResult is the terminal output of the refinement loop for one
// brief. Immutable.
type RefinementResult struct {
	FinalBrief     string              `json:"final_brief"`
	FinalScore     float64             `json:"final_score"`
	Success        bool                `json:"success"`
	Attempts       []RefinementAttempt `json:"attempts"`
	Duration       time.Duration       `json:"duration"`
	QualityWarning bool                `json:"quality_warning"`
	WarningReason  string              `json:"warning_reason,omitempty"`
}
