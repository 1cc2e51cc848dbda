// Package deepseek implements port.Completer with the DeepSeek chat API, which
// speaks the OpenAI wire protocol.
package deepseek

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	openai "github.com/sashabaranov/go-openai"

	"ledgerbot/internal/config"
	"ledgerbot/internal/extractor"
	"ledgerbot/internal/port"
)

const (
	baseURL      = "https://api.deepseek.com/v1"
	defaultModel = "deepseek-chat"
)

// Completer calls DeepSeek chat completions.
type Completer struct {
	client *openai.Client
	model  string
}

// New creates a DeepSeek completer. cfg.Endpoint overrides the API base URL.
func New(cfg *config.AIProviderConfig) *Completer {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = baseURL
	}
	return NewWithBaseURL(cfg, endpoint)
}

// NewWithBaseURL creates a completer pointing at a custom API base URL (for testing).
func NewWithBaseURL(cfg *config.AIProviderConfig, url string) *Completer {
	model := cfg.DefaultModel
	if model == "" {
		model = defaultModel
	}
	oc := openai.DefaultConfig(cfg.APIKey)
	oc.BaseURL = url
	return &Completer{client: openai.NewClientWithConfig(oc), model: model}
}

func (c *Completer) Complete(ctx context.Context, input port.CompletionInput) (*port.CompletionOutput, error) {
	var messages []openai.ChatCompletionMessage
	if input.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: input.System})
	}
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: input.Prompt})

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: float32(input.Temperature),
		MaxTokens:   input.MaxTokens,
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusTooManyRequests {
			return nil, extractor.NewRateLimitError("deepseek", err, 0)
		}
		var reqErr *openai.RequestError
		if errors.As(err, &reqErr) && reqErr.HTTPStatusCode == http.StatusTooManyRequests {
			return nil, extractor.NewRateLimitError("deepseek", err, 0)
		}
		return nil, fmt.Errorf("calling deepseek API: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty response from deepseek: no choices")
	}
	return &port.CompletionOutput{Text: resp.Choices[0].Message.Content, ModelUsed: c.model}, nil
}
