package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/clarionhq/clarion/internal/domain"
)

// completer is the single-prompt completion primitive every provider client
// implements; all capability methods are built on top of it.
type completer interface {
	complete(ctx context.Context, prompt string) (string, error)
}

// stripFences removes markdown code fences some models wrap JSON in.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

type verdictPayload struct {
	OverallScore    float64 `json:"overall_score"`
	Confidence      float64 `json:"confidence"`
	Critique        string  `json:"critique"`
	DimensionScores []struct {
		Dimension string   `json:"dimension"`
		Score     float64  `json:"score"`
		Reasoning string   `json:"reasoning"`
		Issues    []string `json:"issues"`
	} `json:"dimension_scores"`
	Issues []struct {
		Dimension   string `json:"dimension"`
		Severity    string `json:"severity"`
		Description string `json:"description"`
	} `json:"issues"`
}

// parseVerdict converts a raw model response into a validated verdict.
// Scores are clamped into range before validation; a missing or duplicated
// dimension is a malformed response and fails the call.
func parseVerdict(role domain.EvaluatorRole, raw string) (*domain.EvaluatorVerdict, error) {
	raw = stripFences(raw)

	var p verdictPayload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return nil, fmt.Errorf("parse verdict: %w (raw: %s)", err, raw)
	}

	byDim := make(map[domain.Dimension]domain.DimensionScore, domain.DimensionCount)
	for _, ds := range p.DimensionScores {
		if !domain.ValidDimension(ds.Dimension) {
			return nil, fmt.Errorf("verdict names unknown dimension %q", ds.Dimension)
		}
		d := domain.Dimension(ds.Dimension)
		if _, dup := byDim[d]; dup {
			return nil, fmt.Errorf("verdict scores dimension %q twice", ds.Dimension)
		}
		byDim[d] = domain.DimensionScore{
			Dimension: d,
			Score:     clamp(ds.Score, domain.MinScore, domain.MaxScore),
			Reasoning: ds.Reasoning,
			Issues:    ds.Issues,
		}
	}

	// Canonical dimension order regardless of response order.
	scores := make([]domain.DimensionScore, 0, domain.DimensionCount)
	for _, d := range domain.AllDimensions() {
		ds, ok := byDim[d]
		if !ok {
			return nil, fmt.Errorf("verdict missing dimension %q", d)
		}
		scores = append(scores, ds)
	}

	var issues []domain.Issue
	for _, is := range p.Issues {
		if !domain.ValidDimension(is.Dimension) {
			continue
		}
		sev := domain.IssueSeverity(is.Severity)
		if !domain.ValidIssueSeverity(is.Severity) {
			sev = domain.SeverityMinor
		}
		issues = append(issues, domain.Issue{
			Dimension:   domain.Dimension(is.Dimension),
			Severity:    sev,
			Description: is.Description,
		})
	}

	v := &domain.EvaluatorVerdict{
		Role:            role,
		OverallScore:    clamp(p.OverallScore, domain.MinScore, domain.MaxScore),
		Confidence:      clamp(p.Confidence, 0, 1),
		Critique:        p.Critique,
		DimensionScores: scores,
		Issues:          issues,
		CreatedAt:       time.Now(),
	}
	if err := v.Validate(); err != nil {
		return nil, fmt.Errorf("invalid verdict: %w", err)
	}
	return v, nil
}

type fixPayload struct {
	Confidence float64 `json:"confidence"`
	Edits      []struct {
		Section       string `json:"section"`
		OriginalText  string `json:"original_text"`
		SuggestedText string `json:"suggested_text"`
		Rationale     string `json:"rationale"`
		Priority      string `json:"priority"`
	} `json:"edits"`
}

func parseFixerResult(dim domain.Dimension, raw string, elapsed time.Duration) (*domain.FixerResult, error) {
	raw = stripFences(raw)

	var p fixPayload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return nil, fmt.Errorf("parse fixer result: %w (raw: %s)", err, raw)
	}

	edits := make([]domain.SuggestedEdit, 0, len(p.Edits))
	for _, e := range p.Edits {
		if e.OriginalText == "" {
			continue
		}
		prio := domain.EditPriority(e.Priority)
		if !domain.ValidEditPriority(e.Priority) {
			prio = domain.PriorityMedium
		}
		edits = append(edits, domain.SuggestedEdit{
			Section:       e.Section,
			OriginalText:  e.OriginalText,
			SuggestedText: e.SuggestedText,
			Rationale:     e.Rationale,
			Priority:      prio,
		})
	}

	return &domain.FixerResult{
		Dimension:  dim,
		Edits:      edits,
		Confidence: clamp(p.Confidence, 0, 1),
		Duration:   elapsed,
	}, nil
}

// The capability methods share one implementation over the completion
// primitive; each provider client delegates here.

func evaluate(ctx context.Context, c completer, brief string, role domain.EvaluatorRole) (*domain.EvaluatorVerdict, error) {
	raw, err := c.complete(ctx, evaluatePrompt(brief, role))
	if err != nil {
		return nil, fmt.Errorf("evaluate as %s: %w", role, err)
	}
	return parseVerdict(role, raw)
}

func reevaluate(ctx context.Context, c completer, brief string, role domain.EvaluatorRole, prior []domain.EvaluatorVerdict, disagreement *domain.DisagreementResult) (*domain.EvaluatorVerdict, error) {
	raw, err := c.complete(ctx, reevaluatePrompt(brief, role, prior, disagreement))
	if err != nil {
		return nil, fmt.Errorf("reevaluate as %s: %w", role, err)
	}
	return parseVerdict(role, raw)
}

func arbitrate(ctx context.Context, c completer, brief string, disputed []domain.Dimension, prior []domain.EvaluatorVerdict) (*domain.EvaluatorVerdict, error) {
	raw, err := c.complete(ctx, arbitratePrompt(brief, disputed, prior))
	if err != nil {
		return nil, fmt.Errorf("arbitrate: %w", err)
	}
	return parseVerdict(domain.RoleArbiter, raw)
}

func suggestEdits(ctx context.Context, c completer, req domain.FixRequest) (*domain.FixerResult, error) {
	start := time.Now()
	raw, err := c.complete(ctx, fixPrompt(req))
	if err != nil {
		return nil, fmt.Errorf("suggest edits for %s: %w", req.Dimension, err)
	}
	return parseFixerResult(req.Dimension, raw, time.Since(start))
}
