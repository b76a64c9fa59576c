package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(cause, CodeDatabaseError, "failed to get user")

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "DATABASE_ERROR")
	assert.Contains(t, err.Error(), "connection refused")
}

func TestStatusOf(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, StatusOf(New(CodeInvalidInput, "missing field")))
	assert.Equal(t, http.StatusNotFound, StatusOf(New(CodeNotFound, "gone")))
	assert.Equal(t, http.StatusConflict, StatusOf(New(CodeAlreadyExists, "dup")))
	assert.Equal(t, http.StatusUnauthorized, StatusOf(New(CodeUnauthorized, "no session")))
	assert.Equal(t, http.StatusBadGateway, StatusOf(New(CodeUpstreamError, "lms down")))
	assert.Equal(t, http.StatusInternalServerError, StatusOf(New(CodeDatabaseError, "dynamo")))
	assert.Equal(t, http.StatusInternalServerError, StatusOf(errors.New("plain")))
}

func TestStatusOfWrappedAppError(t *testing.T) {
	inner := New(CodeInvalidInput, "bad")
	wrapped := fmt.Errorf("handler: %w", inner)
	assert.Equal(t, http.StatusBadRequest, StatusOf(wrapped))
}
