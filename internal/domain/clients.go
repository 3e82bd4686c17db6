package domain

import "context"

// EvaluatorClient is the external text-evaluation capability. Implementations
// are remote, latent, and individually failable; the engine treats each call
// as a black box returning a structured verdict.
type EvaluatorClient interface {
	// Evaluate scores the brief from the perspective of one role.
	Evaluate(ctx context.Context, brief string, role EvaluatorRole) (*EvaluatorVerdict, error)

	// Reevaluate re-invokes one evaluator with the full set of prior
	// verdicts and the disagreement summary, allowing it to revise its
	// own verdict.
	Reevaluate(ctx context.Context, brief string, role EvaluatorRole, prior []EvaluatorVerdict, disagreement *DisagreementResult) (*EvaluatorVerdict, error)

	// Arbitrate asks the arbiter role for a binding verdict on the
	// disputed dimensions.
	Arbitrate(ctx context.Context, brief string, disputed []Dimension, prior []EvaluatorVerdict) (*EvaluatorVerdict, error)
}

// FixRequest carries everything one fixer needs to repair one weak dimension.
type FixRequest struct {
	Brief     string
	Dimension Dimension
	Score     float64
	Critique  string
	Sources   []SourceDocument
}

// FixerClient is the external remediation capability, bound per call to a
// single dimension.
type FixerClient interface {
	SuggestEdits(ctx context.Context, req FixRequest) (*FixerResult, error)
}

// EmbeddingClient converts text into a vector for source-document retrieval.
type EmbeddingClient interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}
