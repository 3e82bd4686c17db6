package llm

import (
	"strings"
	"testing"
	"time"

	"github.com/clarionhq/clarion/internal/domain"
)

func validVerdictJSON() string {
	return `{
		"overall_score": 7.5,
		"confidence": 0.85,
		"critique": "solid but the evidence section is thin",
		"dimension_scores": [
			{"dimension": "coherence", "score": 8.0, "reasoning": "flows well"},
			{"dimension": "consistency", "score": 7.5},
			{"dimension": "evidence", "score": 6.0, "reasoning": "claims lack citations", "issues": ["no data for the revenue claim"]},
			{"dimension": "accessibility", "score": 8.0},
			{"dimension": "objectivity", "score": 7.5},
			{"dimension": "accuracy", "score": 8.0},
			{"dimension": "bias", "score": 7.5}
		],
		"issues": [
			{"dimension": "evidence", "severity": "major", "description": "revenue claim unsupported"}
		]
	}`
}

func TestParseVerdict(t *testing.T) {
	v, err := parseVerdict(domain.RoleSkeptic, validVerdictJSON())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if v.Role != domain.RoleSkeptic {
		t.Errorf("role = %s", v.Role)
	}
	if v.OverallScore != 7.5 {
		t.Errorf("overall = %f, want 7.5", v.OverallScore)
	}
	if len(v.DimensionScores) != domain.DimensionCount {
		t.Fatalf("dimensions = %d, want %d", len(v.DimensionScores), domain.DimensionCount)
	}
	// Canonical order regardless of response order.
	for i, dim := range domain.AllDimensions() {
		if v.DimensionScores[i].Dimension != dim {
			t.Errorf("dimension[%d] = %s, want %s", i, v.DimensionScores[i].Dimension, dim)
		}
	}
	if len(v.Issues) != 1 || v.Issues[0].Severity != domain.SeverityMajor {
		t.Errorf("issues = %+v", v.Issues)
	}
}

func TestParseVerdict_StripsFences(t *testing.T) {
	raw := "```json\n" + validVerdictJSON() + "\n```"
	if _, err := parseVerdict(domain.RoleAdvocate, raw); err != nil {
		t.Fatalf("fenced JSON should parse: %v", err)
	}
}

func TestParseVerdict_ClampsOutOfRangeScores(t *testing.T) {
	raw := strings.Replace(validVerdictJSON(), `"score": 8.0, "reasoning": "flows well"`, `"score": 14.0`, 1)
	raw = strings.Replace(raw, `"confidence": 0.85`, `"confidence": 1.8`, 1)

	v, err := parseVerdict(domain.RoleSkeptic, raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s, _ := v.ScoreFor(domain.DimensionCoherence); s != domain.MaxScore {
		t.Errorf("coherence = %f, want clamped to %f", s, domain.MaxScore)
	}
	if v.Confidence != 1.0 {
		t.Errorf("confidence = %f, want clamped to 1.0", v.Confidence)
	}
}

func TestParseVerdict_MissingDimension(t *testing.T) {
	raw := `{
		"overall_score": 7.0,
		"confidence": 0.8,
		"critique": "partial",
		"dimension_scores": [
			{"dimension": "coherence", "score": 8.0},
			{"dimension": "consistency", "score": 7.5}
		]
	}`

	_, err := parseVerdict(domain.RoleSkeptic, raw)
	if err == nil || !strings.Contains(err.Error(), "missing dimension") {
		t.Fatalf("err = %v, want missing dimension error", err)
	}
}

func TestParseVerdict_DuplicateDimension(t *testing.T) {
	raw := strings.Replace(validVerdictJSON(), `{"dimension": "consistency", "score": 7.5}`, `{"dimension": "coherence", "score": 7.5}`, 1)

	_, err := parseVerdict(domain.RoleSkeptic, raw)
	if err == nil || !strings.Contains(err.Error(), "twice") {
		t.Fatalf("err = %v, want duplicate dimension error", err)
	}
}

func TestParseVerdict_UnknownDimension(t *testing.T) {
	raw := strings.Replace(validVerdictJSON(), `"dimension": "bias"`, `"dimension": "vibes"`, 1)

	_, err := parseVerdict(domain.RoleSkeptic, raw)
	if err == nil || !strings.Contains(err.Error(), "unknown dimension") {
		t.Fatalf("err = %v, want unknown dimension error", err)
	}
}

func TestParseVerdict_MalformedJSON(t *testing.T) {
	if _, err := parseVerdict(domain.RoleSkeptic, "the brief seems fine to me"); err == nil {
		t.Fatal("expected an error for non-JSON output")
	}
}

func TestParseFixerResult(t *testing.T) {
	raw := `{
		"confidence": 0.7,
		"edits": [
			{"section": "intro", "original_text": "it should go well", "suggested_text": "pilot data shows a 12% lift", "rationale": "replace speculation with data", "priority": "high"},
			{"section": "budget", "original_text": "", "suggested_text": "orphaned", "priority": "low"},
			{"section": "risks", "original_text": "probably fine", "suggested_text": "214 legacy contracts need review", "priority": "someday"}
		]
	}`

	result, err := parseFixerResult(domain.DimensionEvidence, raw, 120*time.Millisecond)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Dimension != domain.DimensionEvidence {
		t.Errorf("dimension = %s", result.Dimension)
	}
	// The empty original_text edit is dropped; it cannot be located.
	if len(result.Edits) != 2 {
		t.Fatalf("edits = %d, want 2", len(result.Edits))
	}
	if result.Edits[0].Priority != domain.PriorityHigh {
		t.Errorf("priority = %s, want high", result.Edits[0].Priority)
	}
	// An unknown priority falls back to medium.
	if result.Edits[1].Priority != domain.PriorityMedium {
		t.Errorf("priority = %s, want medium fallback", result.Edits[1].Priority)
	}
	if result.Duration != 120*time.Millisecond {
		t.Errorf("duration = %s", result.Duration)
	}
}

func TestStripFences(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"```json\n{}\n```", "{}"},
		{"```\n{}\n```", "{}"},
		{"  {} ", "{}"},
		{"{}", "{}"},
	}
	for _, tt := range tests {
		if got := stripFences(tt.in); got != tt.want {
			t.Errorf("stripFences(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
