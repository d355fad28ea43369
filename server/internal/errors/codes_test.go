package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBotError_Error(t *testing.T) {
	err := InvalidArgument("text is required")
	assert.Equal(t, "[INVALID_ARGUMENT] text is required", err.Error())

	wrapped := UpstreamRecognitionFailure(stderrors.New("status 503"))
	assert.Equal(t, "[UPSTREAM_RECOGNITION_FAILURE] recognition failed: status 503", wrapped.Error())
}

func TestBotError_Unwrap(t *testing.T) {
	err := Timeout("recognition timed out", context.DeadlineExceeded)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestIsCode(t *testing.T) {
	inner := UpstreamRecognitionFailure(stderrors.New("boom"))
	outer := fmt.Errorf("turn: %w", inner)

	assert.True(t, IsCode(inner, ErrCodeUpstreamRecognitionFailure))
	assert.True(t, IsCode(outer, ErrCodeUpstreamRecognitionFailure))
	assert.False(t, IsCode(outer, ErrCodeTimeout))
	assert.False(t, IsCode(stderrors.New("plain"), ErrCodeTimeout))
	assert.False(t, IsCode(nil, ErrCodeTimeout))

	nested := Wrap(Timeout("slow", nil), ErrCodeUpstreamRecognitionFailure, "recognition failed")
	assert.True(t, IsCode(nested, ErrCodeTimeout))
}

func TestGetCodeFromError(t *testing.T) {
	assert.Equal(t, ErrCodeRateLimitExceeded, GetCodeFromError(RateLimitExceeded("slow down"), ErrCodeServiceUnavailable))
	assert.Equal(t, ErrCodeServiceUnavailable, GetCodeFromError(stderrors.New("x"), ErrCodeServiceUnavailable))
}

func TestBotError_WithContext(t *testing.T) {
	err := ServiceUnavailable("no recognizer").WithContext("provider", "luis")
	assert.Equal(t, "luis", err.Context["provider"])
	assert.Equal(t, ErrCodeServiceUnavailable, err.GetCode())
}
