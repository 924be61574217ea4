package errors

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorFormatting(t *testing.T) {
	withCode := &Error{Type: ErrorTypeValidation, Message: "status 404", Code: 404}
	assert.Equal(t, "validation error (code 404): status 404", withCode.Error())

	withoutCode := New(ErrorTypeDecode, "bad header")
	assert.Equal(t, "decode error: bad header", withoutCode.Error())
}

func TestWrapUnwrap(t *testing.T) {
	err := Wrap(ErrorTypeNetwork, context.DeadlineExceeded, "image request failed")

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, ErrorTypeNetwork, TypeOf(err))

	wrapped := fmt.Errorf("attempt 2: %w", err)
	assert.True(t, IsType(wrapped, ErrorTypeNetwork))
	assert.False(t, IsType(nil, ErrorTypeNetwork))
	assert.Equal(t, ErrorTypeUnknown, TypeOf(fmt.Errorf("plain")))
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		errorType ErrorType
		want      bool
	}{
		{ErrorTypeNetwork, true},
		{ErrorTypeValidation, true},
		{ErrorTypeDecode, false},
		{ErrorTypeTooSmall, false},
		{ErrorTypeRender, false},
		{ErrorTypeIO, false},
		{ErrorTypeUnknown, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.errorType), func(t *testing.T) {
			assert.Equal(t, tt.want, IsRetryable(tt.errorType))
		})
	}
}

func TestIsRetryableStatusCode(t *testing.T) {
	assert.True(t, IsRetryableStatusCode(0))
	assert.True(t, IsRetryableStatusCode(403))
	assert.True(t, IsRetryableStatusCode(503))
	assert.False(t, IsRetryableStatusCode(200))
	assert.False(t, IsRetryableStatusCode(304))
}
