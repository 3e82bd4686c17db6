package domain

import "time"

// EditPriority orders suggested edits by urgency.
type EditPriority string

const (
	PriorityCritical EditPriority = "critical"
	PriorityHigh     EditPriority = "high"
	PriorityMedium   EditPriority = "medium"
	PriorityLow      EditPriority = "low"
)

func ValidEditPriority(p string) bool {
	switch EditPriority(p) {
	case PriorityCritical, PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// SuggestedEdit is one text replacement proposed by a fixer. Consumed once
// by the reconciler.
type SuggestedEdit struct {
	Section       string       `json:"section"`
	OriginalText  string       `json:"original_text"`
	SuggestedText string       `json:"suggested_text"`
	Rationale     string       `json:"rationale,omitempty"`
	Priority      EditPriority `json:"priority"`
}

// FixerResult is the output of one fixer dispatched against one weak
// dimension.
type FixerResult struct {
	Dimension  Dimension       `json:"dimension"`
	Edits      []SuggestedEdit `json:"edits"`
	Confidence float64         `json:"confidence"`
	Duration   time.Duration   `json:"duration"`
}

// SkippedEdit records an edit the reconciler could not apply, with a
// human-readable reason. Skips are expected outcomes, never errors.
type SkippedEdit struct {
	Edit   SuggestedEdit `json:"edit"`
	Reason string        `json:"reason"`
}
