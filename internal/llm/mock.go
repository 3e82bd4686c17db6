package llm

import (
	"context"
	"sync"
	"time"

	"github.com/clarionhq/clarion/internal/domain"
)

// MockClient is a configurable capability client for testing and for running
// the service without a real provider. Set response fields to control what
// each method returns. Safe for concurrent dispatch.
type MockClient struct {
	mu sync.Mutex

	EvaluateResponses   map[domain.EvaluatorRole]*domain.EvaluatorVerdict
	EvaluateErrors      map[domain.EvaluatorRole]error
	ReevaluateResponses map[domain.EvaluatorRole]*domain.EvaluatorVerdict
	ArbitrateResponse   *domain.EvaluatorVerdict
	ArbitrateError      error
	SuggestResponses    map[domain.Dimension]*domain.FixerResult
	SuggestErrors       map[domain.Dimension]error

	// Call tracking for assertions
	EvaluateCalls   []domain.EvaluatorRole
	ReevaluateCalls []domain.EvaluatorRole
	ArbitrateCalls  [][]domain.Dimension
	SuggestCalls    []domain.FixRequest
}

func NewMockClient() *MockClient {
	return &MockClient{
		EvaluateResponses:   make(map[domain.EvaluatorRole]*domain.EvaluatorVerdict),
		EvaluateErrors:      make(map[domain.EvaluatorRole]error),
		ReevaluateResponses: make(map[domain.EvaluatorRole]*domain.EvaluatorVerdict),
		SuggestResponses:    make(map[domain.Dimension]*domain.FixerResult),
		SuggestErrors:       make(map[domain.Dimension]error),
	}
}

// UniformVerdict builds a verdict scoring every dimension the same. Handy
// default for tests and the mock provider.
func UniformVerdict(role domain.EvaluatorRole, score, confidence float64) *domain.EvaluatorVerdict {
	scores := make([]domain.DimensionScore, 0, domain.DimensionCount)
	for _, d := range domain.AllDimensions() {
		scores = append(scores, domain.DimensionScore{Dimension: d, Score: score})
	}
	return &domain.EvaluatorVerdict{
		Role:            role,
		OverallScore:    score,
		Confidence:      confidence,
		Critique:        "mock critique",
		DimensionScores: scores,
		CreatedAt:       time.Now(),
	}
}

func (c *MockClient) Evaluate(ctx context.Context, brief string, role domain.EvaluatorRole) (*domain.EvaluatorVerdict, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.EvaluateCalls = append(c.EvaluateCalls, role)
	if err := c.EvaluateErrors[role]; err != nil {
		return nil, err
	}
	if v := c.EvaluateResponses[role]; v != nil {
		return v, nil
	}
	return UniformVerdict(role, 8.0, 0.9), nil
}

func (c *MockClient) Reevaluate(ctx context.Context, brief string, role domain.EvaluatorRole, prior []domain.EvaluatorVerdict, disagreement *domain.DisagreementResult) (*domain.EvaluatorVerdict, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ReevaluateCalls = append(c.ReevaluateCalls, role)
	if v := c.ReevaluateResponses[role]; v != nil {
		return v, nil
	}
	// Default: the evaluator stands by its original verdict.
	if v := c.EvaluateResponses[role]; v != nil {
		return v, nil
	}
	return UniformVerdict(role, 8.0, 0.9), nil
}

func (c *MockClient) Arbitrate(ctx context.Context, brief string, disputed []domain.Dimension, prior []domain.EvaluatorVerdict) (*domain.EvaluatorVerdict, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ArbitrateCalls = append(c.ArbitrateCalls, disputed)
	if c.ArbitrateError != nil {
		return nil, c.ArbitrateError
	}
	if c.ArbitrateResponse != nil {
		return c.ArbitrateResponse, nil
	}
	return UniformVerdict(domain.RoleArbiter, 8.0, 0.95), nil
}

func (c *MockClient) SuggestEdits(ctx context.Context, req domain.FixRequest) (*domain.FixerResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.SuggestCalls = append(c.SuggestCalls, req)
	if err := c.SuggestErrors[req.Dimension]; err != nil {
		return nil, err
	}
	if r := c.SuggestResponses[req.Dimension]; r != nil {
		return r, nil
	}
	return &domain.FixerResult{Dimension: req.Dimension, Edits: []domain.SuggestedEdit{}, Confidence: 0.5}, nil
}

// Reset clears recorded calls and configured responses.
func (c *MockClient) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.EvaluateResponses = make(map[domain.EvaluatorRole]*domain.EvaluatorVerdict)
	c.EvaluateErrors = make(map[domain.EvaluatorRole]error)
	c.ReevaluateResponses = make(map[domain.EvaluatorRole]*domain.EvaluatorVerdict)
	c.ArbitrateResponse = nil
	c.ArbitrateError = nil
	c.SuggestResponses = make(map[domain.Dimension]*domain.FixerResult)
	c.SuggestErrors = make(map[domain.Dimension]error)
	c.EvaluateCalls = nil
	c.ReevaluateCalls = nil
	c.ArbitrateCalls = nil
	c.SuggestCalls = nil
}
