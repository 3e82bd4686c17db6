package service

import (
	"strings"

	"github.com/clarionhq/clarion/internal/domain"
)

// ReconcileResult is the outcome of applying a batch of suggested edits
// to a brief.
type ReconcileResult struct {
	RevisedBrief string                 `json:"revised_brief"`
	EditsApplied []domain.SuggestedEdit `json:"edits_applied"`
	EditsSkipped []domain.SkippedEdit   `json:"edits_skipped"`
}

type appliedSpan struct {
	start, end int
}

// Reconcile applies edits to the brief in order. Each edit replaces the
// first occurrence of its original text that does not touch a span an
// earlier edit already rewrote. Edits that cannot be placed are skipped
// with a reason, never dropped silently.
func Reconcile(brief string, edits []domain.SuggestedEdit) ReconcileResult {
	result := ReconcileResult{
		RevisedBrief: brief,
		EditsApplied: []domain.SuggestedEdit{},
		EditsSkipped: []domain.SkippedEdit{},
	}

	var applied []appliedSpan
	for _, edit := range edits {
		if edit.OriginalText == "" {
			result.EditsSkipped = append(result.EditsSkipped, domain.SkippedEdit{
				Edit:   edit,
				Reason: "edit has no original text to locate",
			})
			continue
		}

		idx, found := findPlacement(result.RevisedBrief, edit.OriginalText, applied)
		if !found {
			reason := "original text not found in brief"
			if strings.Contains(result.RevisedBrief, edit.OriginalText) {
				reason = "conflicts with an already applied edit"
			}
			result.EditsSkipped = append(result.EditsSkipped, domain.SkippedEdit{
				Edit:   edit,
				Reason: reason,
			})
			continue
		}

		end := idx + len(edit.OriginalText)
		result.RevisedBrief = result.RevisedBrief[:idx] + edit.SuggestedText + result.RevisedBrief[end:]

		// Spans after the replacement shift by the length delta.
		delta := len(edit.SuggestedText) - len(edit.OriginalText)
		for i := range applied {
			if applied[i].start >= end {
				applied[i].start += delta
				applied[i].end += delta
			}
		}
		applied = append(applied, appliedSpan{start: idx, end: idx + len(edit.SuggestedText)})
		result.EditsApplied = append(result.EditsApplied, edit)
	}

	return result
}

// findPlacement scans occurrences of target left to right and returns the
// first one clear of every already-applied span.
func findPlacement(text, target string, applied []appliedSpan) (int, bool) {
	from := 0
	for {
		rel := strings.Index(text[from:], target)
		if rel < 0 {
			return 0, false
		}
		start := from + rel
		end := start + len(target)
		if !overlapsAny(start, end, applied) {
			return start, true
		}
		from = start + 1
	}
}

func overlapsAny(start, end int, applied []appliedSpan) bool {
	for _, s := range applied {
		if start < s.end && end > s.start {
			return true
		}
	}
	return false
}
