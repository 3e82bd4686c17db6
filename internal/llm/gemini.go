package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/clarionhq/clarion/internal/domain"
)

const geminiGenerateURL = "https://generativelanguage.googleapis.com/v1beta/models/gemini-2.0-flash:generateContent"

type GeminiClient struct {
	apiKey string
	http   *http.Client
}

func NewGeminiClient(apiKey string) *GeminiClient {
	return &GeminiClient{apiKey: apiKey, http: newHTTPClient()}
}

func (c *GeminiClient) complete(ctx context.Context, prompt string) (string, error) {
	payload := map[string]any{
		"contents": []map[string]any{
			{
				"role":  "user",
				"parts": []map[string]string{{"text": prompt}},
			},
		},
	}

	// Gemini authenticates via query param rather than a header.
	url := fmt.Sprintf("%s?key=%s", geminiGenerateURL, c.apiKey)
	body, err := postJSON(ctx, c.http, url, nil, payload)
	if err != nil {
		return "", fmt.Errorf("gemini: %w", err)
	}

	var result struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("gemini: unmarshal response: %w", err)
	}
	if result.Error != nil {
		return "", fmt.Errorf("gemini: %s", result.Error.Message)
	}
	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini: no content in response")
	}
	return strings.TrimSpace(result.Candidates[0].Content.Parts[0].Text), nil
}

func (c *GeminiClient) Evaluate(ctx context.Context, brief string, role domain.EvaluatorRole) (*domain.EvaluatorVerdict, error) {
	return evaluate(ctx, c, brief, role)
}

func (c *GeminiClient) Reevaluate(ctx context.Context, brief string, role domain.EvaluatorRole, prior []domain.EvaluatorVerdict, disagreement *domain.DisagreementResult) (*domain.EvaluatorVerdict, error) {
	return reevaluate(ctx, c, brief, role, prior, disagreement)
}

func (c *GeminiClient) Arbitrate(ctx context.Context, brief string, disputed []domain.Dimension, prior []domain.EvaluatorVerdict) (*domain.EvaluatorVerdict, error) {
	return arbitrate(ctx, c, brief, disputed, prior)
}

func (c *GeminiClient) SuggestEdits(ctx context.Context, req domain.FixRequest) (*domain.FixerResult, error) {
	return suggestEdits(ctx, c, req)
}
