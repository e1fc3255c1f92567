package services

import (
	"context"
	"errors"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vladimiradmaev/fluid-helper/internal/domain"
	apperrors "github.com/vladimiradmaev/fluid-helper/internal/errors"
)

func TestParseBasicIntake(t *testing.T) {
	comp := &fakeCompleter{response: `{"actions":[{"type":"input","fluidType":"pediasure","amountMl":120}],"dateOffset":0,"unparseable":false}`}
	parser := NewParserService(comp, time.Second)

	result, err := parser.Parse(context.Background(), "120ml pediasure")
	require.NoError(t, err)
	require.Len(t, result.Actions, 1)
	assert.Equal(t, domain.ActionInput, result.Actions[0].Kind)
	assert.Equal(t, domain.FluidPediasure, result.Actions[0].FluidType)
	assert.Equal(t, 120.0, *result.Actions[0].AmountMl)
	assert.False(t, result.Unparseable)
	assert.Equal(t, 0, result.DateOffset)
	assert.Equal(t, "120ml pediasure", comp.lastMsg)
}

func TestParseCompoundMessage(t *testing.T) {
	comp := &fakeCompleter{response: "```json\n" + `{"actions":[
		{"type":"input","fluidType":"pediasure","amountMl":120},
		{"type":"input","fluidType":"water","amountMl":45}
	]}` + "\n```"}
	parser := NewParserService(comp, time.Second)

	result, err := parser.Parse(context.Background(), "120ml pediasure and 45ml water")
	require.NoError(t, err)
	require.Len(t, result.Actions, 2)

	total := 0.0
	for _, a := range result.Actions {
		total += *a.AmountMl
	}
	assert.Equal(t, 165.0, total)
}

func TestParseUnmeasuredVomitIsUnparseable(t *testing.T) {
	comp := &fakeCompleter{response: `{"actions":[{"type":"output","fluidType":"vomit","amountMl":null}],"unparseable":false}`}
	parser := NewParserService(comp, time.Second)

	result, err := parser.Parse(context.Background(), "vomit")
	require.NoError(t, err)
	assert.True(t, result.Unparseable)
	assert.False(t, result.Malformed)
	assert.Empty(t, result.Actions)
	require.Len(t, result.Rejected, 1)
}

func TestParsePoopWithoutAmount(t *testing.T) {
	comp := &fakeCompleter{response: `{"actions":[{"type":"output","fluidType":"poop","amountMl":null}]}`}
	parser := NewParserService(comp, time.Second)

	result, err := parser.Parse(context.Background(), "pooped")
	require.NoError(t, err)
	assert.False(t, result.Unparseable)
	require.Len(t, result.Actions, 1)
	assert.Equal(t, domain.FluidPoop, result.Actions[0].FluidType)
	assert.Nil(t, result.Actions[0].AmountMl)
}

func TestParseYesterday(t *testing.T) {
	comp := &fakeCompleter{response: `{"actions":[{"type":"gag","count":2}],"dateOffset":-1}`}
	parser := NewParserService(comp, time.Second)

	result, err := parser.Parse(context.Background(), "yesterday he gagged twice")
	require.NoError(t, err)
	assert.Equal(t, -1, result.DateOffset)
	assert.Equal(t, 2, result.Actions[0].Count)
}

func TestParseMalformedResponse(t *testing.T) {
	for _, raw := range []string{
		"I'm not sure what you mean",
		`{"actions": [ {"type": "input", }`,
		`{"actions": "none"}`,
	} {
		comp := &fakeCompleter{response: raw}
		parser := NewParserService(comp, time.Second)

		result, err := parser.Parse(context.Background(), "hello")
		require.NoError(t, err, raw)
		assert.True(t, result.Unparseable, raw)
		assert.True(t, result.Malformed, raw)
		assert.Empty(t, result.Actions, raw)
	}
}

func TestParseNotALogEntry(t *testing.T) {
	comp := &fakeCompleter{response: `{"actions":[],"unparseable":true}`}
	parser := NewParserService(comp, time.Second)

	result, err := parser.Parse(context.Background(), "what's the weather")
	require.NoError(t, err)
	assert.True(t, result.Unparseable)
	assert.False(t, result.Malformed)
}

func TestParseEmptyMessageSkipsCompletion(t *testing.T) {
	comp := &fakeCompleter{}
	parser := NewParserService(comp, time.Second)

	result, err := parser.Parse(context.Background(), "   ")
	require.NoError(t, err)
	assert.True(t, result.Unparseable)
	assert.Zero(t, comp.calls)
}

func TestParseCompletionFailure(t *testing.T) {
	comp := &fakeCompleter{name: "gemini", err: errors.New("quota exceeded")}
	parser := NewParserService(comp, time.Second)

	result, err := parser.Parse(context.Background(), "120ml water")
	require.Error(t, err)
	assert.Nil(t, result)

	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrorTypeExternal, appErr.Type)
	assert.Equal(t, apperrors.CodeCompletionFailed, appErr.Code)
	assert.True(t, appErr.Retryable())
	assert.NotContains(t, appErr.UserMessage(), "quota")
}

func TestParseCompletionTimeout(t *testing.T) {
	comp := &fakeCompleter{block: true}
	parser := NewParserService(comp, 20*time.Millisecond)

	_, err := parser.Parse(context.Background(), "120ml water")
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeTimeout))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestTruncateKeepsRunesWhole(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abc...", truncate("abcdef", 3))

	// "é" is two bytes, the cut at 2 would fall inside it
	out := truncate("aéb", 2)
	assert.True(t, utf8.ValidString(out))
	assert.Equal(t, "a...", out)

	mixed := "💧 120ml pediasure 🍼 then 45ml water"
	for n := 0; n < len(mixed); n++ {
		assert.True(t, utf8.ValidString(truncate(mixed, n)), "cut at %d", n)
	}
}
