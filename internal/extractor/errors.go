package extractor

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

// ErrorKind classifies why free-text extraction failed.
type ErrorKind string

const (
	KindTimeout          ErrorKind = "timeout"
	KindMalformedOutput  ErrorKind = "malformed_output"
	KindUnclassifiedType ErrorKind = "unclassified_type"
)

// ErrNoAmount is carried by a MalformedOutput error when the reply names no sum.
var ErrNoAmount = errors.New("reply has no amount")

// ErrNonPositiveAmount is carried by a MalformedOutput error when the reply
// names a zero or negative sum.
var ErrNonPositiveAmount = errors.New("reply amount is not positive")

// ExtractionError is returned when the model reply cannot become a draft.
// The user can always retry or fall back to manual entry.
type ExtractionError struct {
	Kind ErrorKind
	Err  error
}

func (e *ExtractionError) Error() string {
	if e.Err == nil {
		return "extraction failed: " + string(e.Kind)
	}
	return fmt.Sprintf("extraction failed: %s: %v", e.Kind, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

func newExtractionError(kind ErrorKind, err error) *ExtractionError {
	return &ExtractionError{Kind: kind, Err: err}
}

// KindOf returns the extraction error kind carried by err, if any.
func KindOf(err error) (ErrorKind, bool) {
	var exErr *ExtractionError
	if errors.As(err, &exErr) {
		return exErr.Kind, true
	}
	return "", false
}

// RateLimitError indicates a completion provider returned HTTP 429.
type RateLimitError struct {
	Err        error
	RetryAfter time.Duration
	Provider   string
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s rate limited (retry after %s): %v", e.Provider, e.RetryAfter, e.Err)
}

func (e *RateLimitError) Unwrap() error {
	return e.Err
}

// NewRateLimitError creates a RateLimitError. If retryAfterSecs is 0, defaults to 60s.
func NewRateLimitError(provider string, err error, retryAfterSecs int) *RateLimitError {
	if retryAfterSecs <= 0 {
		retryAfterSecs = 60
	}
	return &RateLimitError{
		Err:        err,
		RetryAfter: time.Duration(retryAfterSecs) * time.Second,
		Provider:   provider,
	}
}

// ParseRetryAfterHeader parses a Retry-After header value into seconds.
// Returns 0 if the value is empty or not a valid integer.
func ParseRetryAfterHeader(val string) int {
	if val == "" {
		return 0
	}
	secs, err := strconv.Atoi(val)
	if err != nil {
		return 0
	}
	return secs
}
