package extractor_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"ledgerbot/internal/extractor"
	"ledgerbot/internal/port"
	"ledgerbot/mocks"
)

var completionInput = port.CompletionInput{Prompt: "расход 100", MaxTokens: 1000}

func output(model string) *port.CompletionOutput {
	return &port.CompletionOutput{Text: `{"type":"Расход"}`, ModelUsed: model}
}

func TestFallbackCompleter_FirstSucceeds(t *testing.T) {
	c1 := new(mocks.MockCompleter)
	c2 := new(mocks.MockCompleter)
	c1.On("Complete", mock.Anything, completionInput).Return(output("deepseek-chat"), nil)

	fc := extractor.NewFallbackCompleter([]port.Completer{c1, c2}, []string{"deepseek", "yandexgpt"}, zap.NewNop())

	out, err := fc.Complete(context.Background(), completionInput)

	require.NoError(t, err)
	assert.Equal(t, "deepseek-chat", out.ModelUsed)
	c2.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
}

func TestFallbackCompleter_FirstFails_SecondSucceeds(t *testing.T) {
	c1 := new(mocks.MockCompleter)
	c2 := new(mocks.MockCompleter)
	c1.On("Complete", mock.Anything, completionInput).Return(nil, errors.New("bad gateway"))
	c2.On("Complete", mock.Anything, completionInput).Return(output("yandexgpt"), nil)

	fc := extractor.NewFallbackCompleter([]port.Completer{c1, c2}, []string{"deepseek", "yandexgpt"}, zap.NewNop())

	out, err := fc.Complete(context.Background(), completionInput)

	require.NoError(t, err)
	assert.Equal(t, "yandexgpt", out.ModelUsed)
}

func TestFallbackCompleter_AllRateLimited(t *testing.T) {
	c1 := new(mocks.MockCompleter)
	c2 := new(mocks.MockCompleter)
	c1.On("Complete", mock.Anything, completionInput).Return(nil, extractor.NewRateLimitError("deepseek", errors.New("429"), 60))
	c2.On("Complete", mock.Anything, completionInput).Return(nil, extractor.NewRateLimitError("gemini", errors.New("429"), 30))

	fc := extractor.NewFallbackCompleter([]port.Completer{c1, c2}, []string{"deepseek", "gemini"}, zap.NewNop())

	out, err := fc.Complete(context.Background(), completionInput)

	assert.Nil(t, out)
	var rlErr *extractor.RateLimitError
	require.True(t, errors.As(err, &rlErr))
	assert.Equal(t, "all", rlErr.Provider)
	assert.Equal(t, 30*time.Second, rlErr.RetryAfter)
}

func TestFallbackCompleter_AllFail_NonRateLimit(t *testing.T) {
	c1 := new(mocks.MockCompleter)
	c2 := new(mocks.MockCompleter)
	c1.On("Complete", mock.Anything, completionInput).Return(nil, errors.New("error 1"))
	c2.On("Complete", mock.Anything, completionInput).Return(nil, errors.New("error 2"))

	fc := extractor.NewFallbackCompleter([]port.Completer{c1, c2}, []string{"deepseek", "gemini"}, zap.NewNop())

	_, err := fc.Complete(context.Background(), completionInput)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "all providers failed")
	assert.Contains(t, err.Error(), "error 2")
	var rlErr *extractor.RateLimitError
	assert.False(t, errors.As(err, &rlErr))
}

func TestFallbackCompleter_StopsOnDeadline(t *testing.T) {
	c1 := new(mocks.MockCompleter)
	c2 := new(mocks.MockCompleter)
	ctx, cancel := context.WithCancel(context.Background())
	c1.On("Complete", mock.Anything, completionInput).
		Run(func(mock.Arguments) { cancel() }).
		Return(nil, context.Canceled)

	fc := extractor.NewFallbackCompleter([]port.Completer{c1, c2}, []string{"deepseek", "gemini"}, zap.NewNop())

	_, err := fc.Complete(ctx, completionInput)

	assert.ErrorIs(t, err, context.Canceled)
	c2.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
}

func TestFallbackCompleter_CircuitOpensAndCloses(t *testing.T) {
	c1 := new(mocks.MockCompleter)
	c2 := new(mocks.MockCompleter)
	c1.On("Complete", mock.Anything, completionInput).Return(nil, extractor.NewRateLimitError("deepseek", errors.New("429"), 60)).Once()
	c2.On("Complete", mock.Anything, completionInput).Return(output("gemini"), nil)

	now := time.Date(2025, 5, 14, 12, 0, 0, 0, time.UTC)
	fc := extractor.NewFallbackCompleter([]port.Completer{c1, c2}, []string{"deepseek", "gemini"}, zap.NewNop()).
		WithClock(func() time.Time { return now })

	out, err := fc.Complete(context.Background(), completionInput)
	require.NoError(t, err)
	assert.Equal(t, "gemini", out.ModelUsed)

	// Still inside the backoff window.
	now = now.Add(30 * time.Second)
	out, err = fc.Complete(context.Background(), completionInput)
	require.NoError(t, err)
	assert.Equal(t, "gemini", out.ModelUsed)
	c1.AssertNumberOfCalls(t, "Complete", 1)

	now = now.Add(31 * time.Second)
	c1.On("Complete", mock.Anything, completionInput).Return(output("deepseek-chat"), nil).Once()
	out, err = fc.Complete(context.Background(), completionInput)
	require.NoError(t, err)
	assert.Equal(t, "deepseek-chat", out.ModelUsed)
}

func TestFallbackCompleter_ConcurrentSafety(t *testing.T) {
	c1 := new(mocks.MockCompleter)
	c2 := new(mocks.MockCompleter)
	c1.On("Complete", mock.Anything, completionInput).Return(nil, extractor.NewRateLimitError("deepseek", errors.New("429"), 5)).Maybe()
	c2.On("Complete", mock.Anything, completionInput).Return(output("gemini"), nil).Maybe()

	fc := extractor.NewFallbackCompleter([]port.Completer{c1, c2}, []string{"deepseek", "gemini"}, zap.NewNop())

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out, err := fc.Complete(context.Background(), completionInput)
			assert.NoError(t, err)
			assert.NotNil(t, out)
		}()
	}
	wg.Wait()
}
