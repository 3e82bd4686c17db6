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
	openAIChatURL = "https://api.openai.com/v1/chat/completions"
	openAIModel   = "gpt-4o-mini"
	// Evaluators should be consistent across panel members; keep sampling low.
	openAITemperature = 0.2
)

type OpenAIClient struct {
	apiKey string
	http   *http.Client
}

func NewOpenAIClient(apiKey string) *OpenAIClient {
	return &OpenAIClient{apiKey: apiKey, http: newHTTPClient()}
}

func (c *OpenAIClient) complete(ctx context.Context, prompt string) (string, error) {
	payload := map[string]any{
		"model":       openAIModel,
		"temperature": openAITemperature,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
	}
	headers := map[string]string{"Authorization": "Bearer " + c.apiKey}

	body, err := postJSON(ctx, c.http, openAIChatURL, headers, payload)
	if err != nil {
		return "", fmt.Errorf("openai: %w", err)
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("openai: unmarshal response: %w", err)
	}
	if result.Error != nil {
		return "", fmt.Errorf("openai: %s", result.Error.Message)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("openai: no choices in response")
	}
	return strings.TrimSpace(result.Choices[0].Message.Content), nil
}

func (c *OpenAIClient) Evaluate(ctx context.Context, brief string, role domain.EvaluatorRole) (*domain.EvaluatorVerdict, error) {
	return evaluate(ctx, c, brief, role)
}

func (c *OpenAIClient) Reevaluate(ctx context.Context, brief string, role domain.EvaluatorRole, prior []domain.EvaluatorVerdict, disagreement *domain.DisagreementResult) (*domain.EvaluatorVerdict, error) {
	return reevaluate(ctx, c, brief, role, prior, disagreement)
}

func (c *OpenAIClient) Arbitrate(ctx context.Context, brief string, disputed []domain.Dimension, prior []domain.EvaluatorVerdict) (*domain.EvaluatorVerdict, error) {
	return arbitrate(ctx, c, brief, disputed, prior)
}

func (c *OpenAIClient) SuggestEdits(ctx context.Context, req domain.FixRequest) (*domain.FixerResult, error) {
	return suggestEdits(ctx, c, req)
}
