package port

import "context"

// CompletionInput carries one prompt for a chat completion service.
type CompletionInput struct {
	System      string
	Prompt      string
	Temperature float64
	MaxTokens   int
}

// CompletionOutput contains the raw model reply.
type CompletionOutput struct {
	Text      string
	ModelUsed string
}

// Completer abstracts an LLM chat completion call.
type Completer interface {
	Complete(ctx context.Context, input CompletionInput) (*CompletionOutput, error)
}
