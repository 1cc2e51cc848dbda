// Package gemini implements port.Completer with Google's Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/genai"

	"ledgerbot/internal/config"
	"ledgerbot/internal/extractor"
	"ledgerbot/internal/port"
)

const defaultModel = "gemini-2.0-flash"

// Completer calls Gemini generateContent with a JSON response type.
type Completer struct {
	client *genai.Client
	model  string
}

// New creates a Gemini completer. cfg.Endpoint overrides the API base URL.
func New(cfg *config.AIProviderConfig) (*Completer, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	model := cfg.DefaultModel
	if model == "" {
		model = defaultModel
	}
	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:      cfg.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: cfg.Endpoint},
	})
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	return &Completer{client: client, model: model}, nil
}

func (c *Completer) Complete(ctx context.Context, input port.CompletionInput) (*port.CompletionOutput, error) {
	gc := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(float32(input.Temperature)),
		MaxOutputTokens:  int32(input.MaxTokens),
		ResponseMIMEType: "application/json",
	}
	if input.System != "" {
		gc.SystemInstruction = genai.NewContentFromText(input.System, genai.RoleUser)
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(input.Prompt), gc)
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) && apiErr.Code == http.StatusTooManyRequests {
			return nil, extractor.NewRateLimitError("gemini", err, 0)
		}
		return nil, fmt.Errorf("calling gemini API: %w", err)
	}
	text := resp.Text()
	if text == "" {
		return nil, fmt.Errorf("empty response from gemini")
	}
	return &port.CompletionOutput{Text: text, ModelUsed: c.model}, nil
}
