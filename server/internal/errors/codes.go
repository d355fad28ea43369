package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode identifies a class of failure in the bot.
type ErrorCode string

const (
	// ErrCodeNoEntityRecognized indicates the utterance carried no usable entity.
	ErrCodeNoEntityRecognized ErrorCode = "NO_ENTITY_RECOGNIZED"
	// ErrCodeUnsupportedNamedEvent indicates the named event is not in the calendar.
	ErrCodeUnsupportedNamedEvent ErrorCode = "UNSUPPORTED_NAMED_EVENT"
	// ErrCodeNoUsableDateCandidate indicates no candidate resolved to a date.
	ErrCodeNoUsableDateCandidate ErrorCode = "NO_USABLE_DATE_CANDIDATE"
	// ErrCodeUpstreamRecognitionFailure indicates the NLU service failed.
	ErrCodeUpstreamRecognitionFailure ErrorCode = "UPSTREAM_RECOGNITION_FAILURE"
	// ErrCodeInvalidArgument indicates invalid input parameters.
	ErrCodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"
	// ErrCodeRateLimitExceeded indicates rate limit has been exceeded.
	ErrCodeRateLimitExceeded ErrorCode = "RATE_LIMIT_EXCEEDED"
	// ErrCodeServiceUnavailable indicates the service is not available.
	ErrCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
	// ErrCodeTimeout indicates the operation timed out.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
	// ErrCodeContextCanceled indicates the operation was canceled.
	ErrCodeContextCanceled ErrorCode = "CONTEXT_CANCELED"
)

// BotError is a structured error carrying a code and optional context.
type BotError struct {
	Code    ErrorCode
	Message string
	Cause   error
	Context map[string]any
}

// Error implements the error interface.
func (e *BotError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *BotError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error.
func (e *BotError) WithContext(key string, value any) *BotError {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// GetCode returns the error code.
func (e *BotError) GetCode() ErrorCode {
	return e.Code
}

// Convenience constructors for common error types.

// UpstreamRecognitionFailure creates an error for a failed NLU call.
func UpstreamRecognitionFailure(cause error) *BotError {
	return &BotError{Code: ErrCodeUpstreamRecognitionFailure, Message: "recognition failed", Cause: cause}
}

// InvalidArgument creates an invalid argument error.
func InvalidArgument(msg string) *BotError {
	return &BotError{Code: ErrCodeInvalidArgument, Message: msg}
}

// RateLimitExceeded creates a rate limit exceeded error.
func RateLimitExceeded(msg string) *BotError {
	return &BotError{Code: ErrCodeRateLimitExceeded, Message: msg}
}

// ServiceUnavailable creates a service unavailable error.
func ServiceUnavailable(msg string) *BotError {
	return &BotError{Code: ErrCodeServiceUnavailable, Message: msg}
}

// ContextCanceled creates a context canceled error.
func ContextCanceled(cause error) *BotError {
	return &BotError{Code: ErrCodeContextCanceled, Message: "operation canceled", Cause: cause}
}

// Timeout creates a timeout error.
func Timeout(msg string, cause error) *BotError {
	return &BotError{Code: ErrCodeTimeout, Message: msg, Cause: cause}
}

// Wrap wraps an existing error with a code and message.
func Wrap(cause error, code ErrorCode, msg string) *BotError {
	return &BotError{Code: code, Message: msg, Cause: cause}
}

// IsCode reports whether any BotError in err's chain has code.
func IsCode(err error, code ErrorCode) bool {
	var botErr *BotError
	for err != nil {
		if !stderrors.As(err, &botErr) {
			return false
		}
		if botErr.Code == code {
			return true
		}
		err = botErr.Cause
	}
	return false
}

// GetCodeFromError extracts the outermost error code from err.
// Returns defaultCode if err carries no BotError.
func GetCodeFromError(err error, defaultCode ErrorCode) ErrorCode {
	var botErr *BotError
	if stderrors.As(err, &botErr) {
		return botErr.Code
	}
	return defaultCode
}
