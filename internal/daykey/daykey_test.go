package daykey

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newYork(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	return loc
}

func TestFor(t *testing.T) {
	loc := newYork(t)

	tests := []struct {
		name string
		at   time.Time
		hour int
		want string
	}{
		{"after start", time.Date(2024, 3, 5, 7, 0, 0, 0, loc), 7, "2024-03-05"},
		{"one minute before start", time.Date(2024, 3, 5, 6, 59, 59, 0, loc), 7, "2024-03-04"},
		{"late evening", time.Date(2024, 3, 5, 23, 30, 0, 0, loc), 7, "2024-03-05"},
		{"after midnight", time.Date(2024, 3, 6, 2, 15, 0, 0, loc), 7, "2024-03-05"},
		{"midnight start hour", time.Date(2024, 3, 6, 0, 0, 0, 0, loc), 0, "2024-03-06"},
		{"first of month rolls back", time.Date(2024, 3, 1, 3, 0, 0, 0, loc), 7, "2024-02-29"},
		{"first of year rolls back", time.Date(2024, 1, 1, 6, 0, 0, 0, loc), 7, "2023-12-31"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, For(tt.at, loc, tt.hour))
		})
	}
}

func TestForUsesTimezoneNotUTC(t *testing.T) {
	loc := newYork(t)
	// 10:00 UTC is 06:00 EDT, before a 7am start
	at := time.Date(2024, 7, 10, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, "2024-07-09", For(at, loc, 7))
	assert.Equal(t, "2024-07-10", For(at, time.UTC, 7))
}

func TestForAcrossDaylightSaving(t *testing.T) {
	loc := newYork(t)
	// clocks spring forward at 02:00 on 2024-03-10
	before := time.Date(2024, 3, 10, 6, 30, 0, 0, loc)
	after := time.Date(2024, 3, 10, 7, 30, 0, 0, loc)
	assert.Equal(t, "2024-03-09", For(before, loc, 7))
	assert.Equal(t, "2024-03-10", For(after, loc, 7))
	// clocks fall back at 02:00 on 2024-11-03
	assert.Equal(t, "2024-11-02", For(time.Date(2024, 11, 3, 1, 30, 0, 0, loc), loc, 7))
}

func TestForWindowIsStable(t *testing.T) {
	loc := newYork(t)
	start := time.Date(2024, 5, 1, 7, 0, 0, 0, loc)
	for i := 0; i < 24*4; i++ {
		at := start.Add(time.Duration(i) * 15 * time.Minute)
		assert.Equal(t, "2024-05-01", For(at, loc, 7), at.String())
	}
	assert.Equal(t, "2024-05-02", For(start.Add(24*time.Hour), loc, 7))
	assert.Equal(t, "2024-04-30", For(start.Add(-time.Millisecond), loc, 7))
}

func TestShift(t *testing.T) {
	got, err := Shift("2024-03-01", -1)
	require.NoError(t, err)
	assert.Equal(t, "2024-02-29", got)

	_, err = Shift("03/01/2024", -1)
	assert.Error(t, err)
}

func TestValid(t *testing.T) {
	assert.True(t, Valid("2020-01-01"))
	assert.False(t, Valid("2020-13-01"))
	assert.False(t, Valid(""))
}

func TestStart(t *testing.T) {
	loc := newYork(t)
	got, err := Start("2024-05-01", loc, 7)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 5, 1, 7, 0, 0, 0, loc), got)
	assert.Equal(t, "2024-05-01", For(got, loc, 7))
}
