// internal/apperrors/errors.go
package apperrors

import (
	"errors"
	"fmt"
)

// Error codes surfaced to API clients. Services translate collaborator
// failures into these; handlers map them onto HTTP status codes.
const (
	CodeCatalogUnavailable  = "CATALOG_UNAVAILABLE"
	CodePlatformUnavailable = "PLATFORM_UNAVAILABLE"
	CodeQuotaExceeded       = "QUOTA_EXCEEDED"
	CodeValidation          = "VALIDATION_ERROR"
	CodeNotFound            = "NOT_FOUND"
	CodeAuditFailed         = "AUDIT_FAILED"
)

var (
	// ErrCatalogUnavailable aborts an audit run; safe to retry since audits
	// are idempotent.
	ErrCatalogUnavailable = errors.New("catalog unavailable")

	// ErrPlatformUnavailable marks a single backend failure. The orchestrator
	// skips the platform and continues the run.
	ErrPlatformUnavailable = errors.New("platform unavailable")

	// ErrQuotaExceeded rejects an operation before any work is started. Not
	// retryable until the plan period resets.
	ErrQuotaExceeded = errors.New("quota exceeded")

	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("not found")
)

// CodeFor maps a service error onto its API error code.
func CodeFor(err error) string {
	switch {
	case errors.Is(err, ErrCatalogUnavailable):
		return CodeCatalogUnavailable
	case errors.Is(err, ErrPlatformUnavailable):
		return CodePlatformUnavailable
	case errors.Is(err, ErrQuotaExceeded):
		return CodeQuotaExceeded
	case errors.Is(err, ErrValidation):
		return CodeValidation
	case errors.Is(err, ErrNotFound):
		return CodeNotFound
	default:
		return "INTERNAL_ERROR"
	}
}

// Wrap attaches context while keeping the sentinel matchable with errors.Is.
func Wrap(sentinel error, format string, args ...interface{}) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), sentinel)
}
