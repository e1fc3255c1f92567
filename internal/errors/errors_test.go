package errors

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppErrorIsMatchesTypeAndCode(t *testing.T) {
	err := NewValidationError(CodeInvalidDate, "only today or yesterday")
	wrapped := fmt.Errorf("apply: %w", err)

	assert.True(t, stderrors.Is(wrapped, New(ErrorTypeValidation, CodeInvalidDate, "")))
	assert.False(t, stderrors.Is(wrapped, New(ErrorTypeValidation, CodeInvalidAction, "")))
	assert.True(t, IsType(wrapped, ErrorTypeValidation))
}

func TestAppErrorUnwrapsInternal(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := NewCompletionError(cause, "gemini")

	assert.True(t, stderrors.Is(err, cause))
	assert.Equal(t, "gemini", err.Context["provider"])
	assert.True(t, err.Retryable())
}

func TestUserMessageHidesInternals(t *testing.T) {
	err := NewDatabaseError(stderrors.New("pq: relation does not exist"))
	assert.NotContains(t, err.UserMessage(), "pq:")
	assert.NotContains(t, UserMessage(stderrors.New("boom")), "boom")

	v := NewValidationError(CodeInvalidDate, "You can only log for today or yesterday.")
	assert.Equal(t, "You can only log for today or yesterday.", UserMessage(v))
	assert.False(t, v.Retryable())
}

func TestSummaryUnavailableSaysEntriesWereSaved(t *testing.T) {
	err := NewSummaryUnavailableError(stderrors.New("pq: connection reset"))

	assert.Equal(t, CodeSummaryUnavailable, err.Code)
	assert.Contains(t, err.UserMessage(), "were saved")
	assert.NotContains(t, err.UserMessage(), "Nothing was logged")
	assert.NotContains(t, err.UserMessage(), "pq:")
	assert.False(t, err.Retryable())
}

func TestHandlerLogsByType(t *testing.T) {
	var buf bytes.Buffer
	h := NewHandler(slog.New(slog.NewJSONHandler(&buf, nil)))

	h.Handle(context.Background(), NewValidationError(CodeInvalidAction, "bad"))
	require.Contains(t, buf.String(), `"level":"WARN"`)

	buf.Reset()
	err := h.LogAndReturn(context.Background(), NewCompletionError(stderrors.New("503"), "openai"))
	require.Error(t, err)
	assert.Contains(t, buf.String(), `"level":"ERROR"`)
	assert.Contains(t, buf.String(), CodeCompletionFailed)
}
