// Package yandexgpt implements port.Completer with the YandexGPT foundation models API.
package yandexgpt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"ledgerbot/internal/config"
	"ledgerbot/internal/extractor"
	"ledgerbot/internal/port"
)

const (
	apiURL       = "https://llm.api.cloud.yandex.net/foundationModels/v1/completion"
	defaultModel = "yandexgpt/latest"
)

// Completer calls the YandexGPT completion endpoint with an IAM token.
type Completer struct {
	token    string
	folderID string
	modelURI string
	endpoint string
	client   *http.Client
}

// New creates a YandexGPT completer. cfg.APIKey carries the IAM token.
func New(cfg *config.AIProviderConfig) *Completer {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = apiURL
	}
	return NewWithEndpoint(cfg, endpoint)
}

// NewWithEndpoint creates a completer pointing at a custom API endpoint (for testing).
func NewWithEndpoint(cfg *config.AIProviderConfig, endpoint string) *Completer {
	model := cfg.DefaultModel
	if model == "" {
		model = defaultModel
	}
	modelURI := model
	if !strings.HasPrefix(model, "gpt://") {
		modelURI = fmt.Sprintf("gpt://%s/%s", cfg.FolderID, model)
	}
	return &Completer{
		token:    cfg.APIKey,
		folderID: cfg.FolderID,
		modelURI: modelURI,
		endpoint: endpoint,
		client:   &http.Client{},
	}
}

type message struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

type completionOptions struct {
	Stream      bool    `json:"stream"`
	Temperature float64 `json:"temperature"`
	MaxTokens   string  `json:"maxTokens"`
}

type apiRequest struct {
	ModelURI          string            `json:"modelUri"`
	CompletionOptions completionOptions `json:"completionOptions"`
	Messages          []message         `json:"messages"`
}

// apiResponse models the completion response.
type apiResponse struct {
	Result struct {
		Alternatives []struct {
			Message message `json:"message"`
			Status  string  `json:"status"`
		} `json:"alternatives"`
		ModelVersion string `json:"modelVersion"`
	} `json:"result"`
}

func (c *Completer) Complete(ctx context.Context, input port.CompletionInput) (*port.CompletionOutput, error) {
	var messages []message
	if input.System != "" {
		messages = append(messages, message{Role: "system", Text: input.System})
	}
	messages = append(messages, message{Role: "user", Text: input.Prompt})

	bodyBytes, err := json.Marshal(apiRequest{
		ModelURI: c.modelURI,
		CompletionOptions: completionOptions{
			Temperature: input.Temperature,
			MaxTokens:   fmt.Sprint(input.MaxTokens),
		},
		Messages: messages,
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)
	if c.folderID != "" {
		req.Header.Set("x-folder-id", c.folderID)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling yandexgpt API: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		baseErr := fmt.Errorf("yandexgpt API error (status %d): %s", resp.StatusCode, string(respBody))
		if resp.StatusCode == http.StatusTooManyRequests {
			retryAfter := extractor.ParseRetryAfterHeader(resp.Header.Get("Retry-After"))
			return nil, extractor.NewRateLimitError("yandexgpt", baseErr, retryAfter)
		}
		return nil, baseErr
	}

	var parsed apiResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("unmarshaling response: %w", err)
	}
	if len(parsed.Result.Alternatives) == 0 {
		return nil, fmt.Errorf("empty response from yandexgpt: no alternatives")
	}
	return &port.CompletionOutput{
		Text:      parsed.Result.Alternatives[0].Message.Text,
		ModelUsed: c.modelURI,
	}, nil
}
