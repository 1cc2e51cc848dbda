package dialogue

import (
	"errors"

	"ledgerbot/internal/domain"
	"ledgerbot/internal/extractor"
)

// failureMessage maps an error to what the user sees. Errors without a
// dedicated text get fallback, which names the operation that failed.
func failureMessage(err error, fallback string) string {
	var rateErr *extractor.RateLimitError
	kind, isExtraction := extractor.KindOf(err)
	switch {
	case isExtraction && kind == extractor.KindTimeout:
		return msgAITimeout
	case errors.Is(err, extractor.ErrNoAmount):
		return msgAINoAmount
	case errors.Is(err, extractor.ErrNonPositiveAmount):
		return msgAIBadAmount
	case isExtraction && kind == extractor.KindUnclassifiedType:
		return msgAIUnclassified
	case errors.As(err, &rateErr):
		return msgAIRateLimited
	case errors.Is(err, domain.ErrAuthRequired):
		return msgPasswordPrompt
	case errors.Is(err, domain.ErrProjectRequired):
		return msgChooseProjectFirst
	case errors.Is(err, domain.ErrEmptyProjectName):
		return msgEmptyProjectName
	case errors.Is(err, domain.ErrDuplicateSheet):
		return msgProjectCreateFail
	case errors.Is(err, domain.ErrTemplateNotFound):
		return msgTemplateMissing
	case errors.Is(err, domain.ErrIncompleteRecord):
		return msgIncomplete
	default:
		return fallback
	}
}

// failureReason labels an extraction failure for metrics.
func failureReason(err error) string {
	if kind, ok := extractor.KindOf(err); ok {
		return string(kind)
	}
	var rateErr *extractor.RateLimitError
	if errors.As(err, &rateErr) {
		return "rate_limited"
	}
	return "provider_error"
}
