package cvs

import (
	"errors"
	"strings"

	"cvprofile-backend/internal/llmretry"
)

var (
	ErrMissingFile          = errors.New("file is required")
	ErrUnsupportedType      = errors.New("unsupported file type")
	ErrEmptyFile            = errors.New("file is empty")
	ErrTooLarge             = errors.New("file exceeds size limit")
	ErrInvalidFileName      = errors.New("invalid file name")
	ErrNotFound             = errors.New("not found")
	ErrForbidden            = errors.New("record belongs to another user")
	ErrNoExtractionStrategy = errors.New("no extraction strategy available")
)

const (
	ErrorCodeValidation     = "VALIDATION_ERROR"
	ErrorCodeRetryExhausted = "RETRY_EXHAUSTED"
	ErrorCodeNoStrategy     = "NO_EXTRACTION_STRATEGY"
	ErrorCodeSync           = "PROFILE_SYNC_ERROR"
	ErrorCodeStorage        = "STORAGE_ERROR"
	ErrorCodeInternal       = "INTERNAL_ERROR"
)

// classifyFailure maps a pipeline error to a stable code persisted with the
// record and emitted in logs.
func classifyFailure(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNoExtractionStrategy):
		return ErrorCodeNoStrategy
	case errors.Is(err, llmretry.ErrRetryExhausted):
		return ErrorCodeRetryExhausted
	case strings.Contains(err.Error(), "profile sync"):
		return ErrorCodeSync
	default:
		return ErrorCodeInternal
	}
}

// sanitizeError flattens and bounds an error message for storage and logs.
func sanitizeError(err error) string {
	if err == nil {
		return ""
	}
	msg := strings.ReplaceAll(err.Error(), "\n", " ")
	if len(msg) > 500 {
		msg = msg[:500]
	}
	return msg
}
