package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/clarionhq/clarion/internal/domain"
)

const (
	anthropicMessagesURL = "https://api.anthropic.com/v1/messages"
	anthropicModel       = "claude-3-5-haiku-20241022"
	anthropicVersion     = "2023-06-01"
	anthropicMaxTokens   = 4096
)

type AnthropicClient struct {
	apiKey string
	http   *http.Client
}

func NewAnthropicClient(apiKey string) *AnthropicClient {
	return &AnthropicClient{apiKey: apiKey, http: newHTTPClient()}
}

func (c *AnthropicClient) complete(ctx context.Context, prompt string) (string, error) {
	payload := map[string]any{
		"model":      anthropicModel,
		"max_tokens": anthropicMaxTokens,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
	}
	headers := map[string]string{
		"x-api-key":         c.apiKey,
		"anthropic-version": anthropicVersion,
	}

	body, err := postJSON(ctx, c.http, anthropicMessagesURL, headers, payload)
	if err != nil {
		return "", fmt.Errorf("anthropic: %w", err)
	}

	var result struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("anthropic: unmarshal response: %w", err)
	}
	if result.Error != nil {
		return "", fmt.Errorf("anthropic: %s", result.Error.Message)
	}
	if len(result.Content) == 0 {
		return "", fmt.Errorf("anthropic: no content in response")
	}
	return strings.TrimSpace(result.Content[0].Text), nil
}

func (c *AnthropicClient) Evaluate(ctx context.Context, brief string, role domain.EvaluatorRole) (*domain.EvaluatorVerdict, error) {
	return evaluate(ctx, c, brief, role)
}

func (c *AnthropicClient) Reevaluate(ctx context.Context, brief string, role domain.EvaluatorRole, prior []domain.EvaluatorVerdict, disagreement *domain.DisagreementResult) (*domain.EvaluatorVerdict, error) {
	return reevaluate(ctx, c, brief, role, prior, disagreement)
}

func (c *AnthropicClient) Arbitrate(ctx context.Context, brief string, disputed []domain.Dimension, prior []domain.EvaluatorVerdict) (*domain.EvaluatorVerdict, error) {
	return arbitrate(ctx, c, brief, disputed, prior)
}

func (c *AnthropicClient) SuggestEdits(ctx context.Context, req domain.FixRequest) (*domain.FixerResult, error) {
	return suggestEdits(ctx, c, req)
}
