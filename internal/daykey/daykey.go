// Package daykey maps instants to fluid days. A fluid day starts at a
// configurable local hour instead of midnight, so a night feed at 02:00
// still counts toward the day that started the previous morning.
package daykey

import (
	"fmt"
	"time"
)

// Layout is the day key format
const Layout = "2006-01-02"

// For returns the day key of t in loc for a day starting at dayStartHour.
// Local hours strictly before dayStartHour belong to the previous date.
func For(t time.Time, loc *time.Location, dayStartHour int) string {
	if loc == nil {
		loc = time.UTC
	}
	local := t.In(loc)
	y, m, d := local.Date()
	if local.Hour() < dayStartHour {
		d--
	}
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC).Format(Layout)
}

// Parse validates a day key and returns it as a UTC calendar date
func Parse(key string) (time.Time, error) {
	t, err := time.Parse(Layout, key)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid day key %q: %w", key, err)
	}
	return t, nil
}

// Valid reports whether key is a well-formed day key
func Valid(key string) bool {
	_, err := Parse(key)
	return err == nil
}

// Shift moves a day key by n calendar days
func Shift(key string, n int) (string, error) {
	t, err := Parse(key)
	if err != nil {
		return "", err
	}
	return t.AddDate(0, 0, n).Format(Layout), nil
}

// Start returns the instant the fluid day begins
func Start(key string, loc *time.Location, dayStartHour int) (time.Time, error) {
	t, err := Parse(key)
	if err != nil {
		return time.Time{}, err
	}
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, dayStartHour, 0, 0, 0, loc), nil
}
