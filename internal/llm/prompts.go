package llm

import (
	"fmt"
	"strings"

	"github.com/clarionhq/clarion/internal/domain"
)

// rolePersona returns the stance an evaluator role takes toward the brief.
func rolePersona(role domain.EvaluatorRole) string {
	switch role {
	case domain.RoleSkeptic:
		return "You are a skeptical reviewer. Hunt for weak arguments, unsupported claims, and hidden inconsistencies. Do not give the benefit of the doubt."
	case domain.RoleAdvocate:
		return "You are an advocate for the author. Credit what the brief does well and score generously where the text earns it, while still flagging genuine problems."
	case domain.RoleGeneralist:
		return "You are a generalist editor. Judge the brief as an informed reader would, balancing rigor against readability."
	case domain.RoleArbiter:
		return "You are the arbiter. Your verdict is binding. Weigh the panel's positions dispassionately and settle the disputed dimensions."
	default:
		return "You are a careful reviewer."
	}
}

func dimensionRubric() string {
	var sb strings.Builder
	for _, d := range domain.AllDimensions() {
		sb.WriteString(fmt.Sprintf("- %s: %s\n", d, d.Description()))
	}
	return sb.String()
}

const verdictFormat = `Respond ONLY with JSON, no markdown fences, matching exactly:
{"overall_score":0.0,"confidence":0.0,"critique":"...","dimension_scores":[{"dimension":"<name>","score":0.0,"reasoning":"...","issues":["..."]}],"issues":[{"dimension":"<name>","severity":"critical|major|minor","description":"..."}]}

Every dimension must appear exactly once under dimension_scores. Scores are 0.0-10.0, confidence is 0.0-1.0.`

func evaluatePrompt(brief string, role domain.EvaluatorRole) string {
	return fmt.Sprintf(`%s

Score the brief below on each quality dimension:
%s
%s

Brief:
%s`, rolePersona(role), dimensionRubric(), verdictFormat, brief)
}

func reevaluatePrompt(brief string, role domain.EvaluatorRole, prior []domain.EvaluatorVerdict, disagreement *domain.DisagreementResult) string {
	var positions strings.Builder
	for _, v := range prior {
		positions.WriteString(fmt.Sprintf("%s (overall %.1f, confidence %.2f): %s\n", v.Role, v.OverallScore, v.Confidence, v.Critique))
		for _, ds := range v.DimensionScores {
			positions.WriteString(fmt.Sprintf("  %s=%.1f\n", ds.Dimension, ds.Score))
		}
	}

	var disputed strings.Builder
	for _, d := range disagreement.Dimensions {
		disputed.WriteString(fmt.Sprintf("- %s (spread across evaluators exceeds tolerance)\n", d))
	}

	return fmt.Sprintf(`%s

You previously scored this brief as role %q. The panel disagrees on:
%s
All panel positions:
%s
Reconsider your verdict in light of the other evaluators' reasoning. You may
keep your scores if you remain convinced. Return your full (possibly revised)
verdict.
%s

Brief:
%s`, rolePersona(role), role, disputed.String(), positions.String(), verdictFormat, brief)
}

func arbitratePrompt(brief string, disputed []domain.Dimension, prior []domain.EvaluatorVerdict) string {
	var positions strings.Builder
	for _, v := range prior {
		positions.WriteString(fmt.Sprintf("%s:", v.Role))
		for _, d := range disputed {
			if s, ok := v.ScoreFor(d); ok {
				positions.WriteString(fmt.Sprintf(" %s=%.1f", d, s))
			}
		}
		positions.WriteString("\n")
	}

	names := make([]string, len(disputed))
	for i, d := range disputed {
		names[i] = string(d)
	}

	return fmt.Sprintf(`%s

The panel could not converge on: %s.
Panel positions on the disputed dimensions:
%s
Issue a full verdict. Your scores on the disputed dimensions are final.
%s

Brief:
%s`, rolePersona(domain.RoleArbiter), strings.Join(names, ", "), positions.String(), verdictFormat, brief)
}

const fixFormat = `Respond ONLY with JSON, no markdown fences, matching exactly:
{"confidence":0.0,"edits":[{"section":"...","original_text":"...","suggested_text":"...","rationale":"...","priority":"critical|high|medium|low"}]}

original_text must be quoted verbatim from the brief so the replacement can be located. Propose at most 5 edits, highest impact first.`

func fixPrompt(req domain.FixRequest) string {
	var sources strings.Builder
	if len(req.Sources) > 0 {
		sources.WriteString("\nSupporting sources:\n")
		for _, s := range req.Sources {
			sources.WriteString(fmt.Sprintf("- %s: %s\n", s.Title, s.Content))
		}
	}

	return fmt.Sprintf(`You are an editor repairing one weakness in a brief.

Weak dimension: %s (%s)
Current score: %.1f out of 10
Panel critique: %s
%s
Suggest precise text replacements that raise this dimension without rewriting
unrelated passages.
%s

Brief:
%s`, req.Dimension, req.Dimension.Description(), req.Score, req.Critique, sources.String(), fixFormat, req.Brief)
}
