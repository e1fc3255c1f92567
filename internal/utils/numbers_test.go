package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRound(t *testing.T) {
	assert.Equal(t, 120.3, Round(120.26, 1))
	assert.Equal(t, 12.35, Round(12.345678, 2))
	assert.Equal(t, 100.0, Round(99.96, 1))
}

func TestFormatMl(t *testing.T) {
	assert.Equal(t, "120", FormatMl(120))
	assert.Equal(t, "45.5", FormatMl(45.5))
	assert.Equal(t, "0", FormatMl(0))
}
