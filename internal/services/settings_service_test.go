package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apperrors "github.com/vladimiradmaev/fluid-helper/internal/errors"
)

func TestSettingsDefaults(t *testing.T) {
	svc := NewSettingsService(newMemorySettings(), testDefaults)

	st, err := svc.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1200.0, st.DailyLimitMl)
	assert.Equal(t, 6, st.DayStartHour)
	assert.Equal(t, "America/Los_Angeles", st.Location.String())
	assert.Equal(t, 70, st.WarnPercent)
	assert.Equal(t, 90, st.CriticalPercent)
	assert.Equal(t, "Sam", st.ChildName)
}

func TestSettingsReadFreshEveryCall(t *testing.T) {
	store := newMemorySettings()
	svc := NewSettingsService(store, testDefaults)
	ctx := context.Background()

	_, err := svc.Current(ctx)
	require.NoError(t, err)

	require.NoError(t, store.SetSetting(ctx, KeyDailyLimitMl, "950"))
	require.NoError(t, store.SetSetting(ctx, KeyTimezone, "Europe/Berlin"))

	st, err := svc.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, 950.0, st.DailyLimitMl)
	assert.Equal(t, "Europe/Berlin", st.Location.String())
}

func TestSettingsIgnoreInvalidStoredValues(t *testing.T) {
	store := newMemorySettings()
	svc := NewSettingsService(store, testDefaults)
	ctx := context.Background()

	store.values[KeyDailyLimitMl] = "lots"
	store.values[KeyDayStartHour] = "25"
	store.values[KeyTimezone] = "Mars/Olympus"
	store.values[KeyWarnPercent] = "95"

	st, err := svc.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1200.0, st.DailyLimitMl)
	assert.Equal(t, 6, st.DayStartHour)
	assert.Equal(t, "America/Los_Angeles", st.Timezone)
	// warn >= critical falls back to both defaults
	assert.Equal(t, 70, st.WarnPercent)
	assert.Equal(t, 90, st.CriticalPercent)
}

func TestSettingsStoreFailure(t *testing.T) {
	store := newMemorySettings()
	store.failGet = true
	svc := NewSettingsService(store, testDefaults)

	_, err := svc.Current(context.Background())
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeStoreUnavailable, appErr.Code)
}

func TestSettingsSet(t *testing.T) {
	store := newMemorySettings()
	svc := NewSettingsService(store, testDefaults)
	ctx := context.Background()

	tests := []struct {
		key   string
		value string
		ok    bool
	}{
		{KeyDailyLimitMl, "1100", true},
		{KeyDailyLimitMl, "0", false},
		{KeyDailyLimitMl, "-5", false},
		{KeyDailyLimitMl, "abc", false},
		{KeyDayStartHour, "0", true},
		{KeyDayStartHour, "23", true},
		{KeyDayStartHour, "24", false},
		{KeyTimezone, "Asia/Tokyo", true},
		{KeyTimezone, "Nowhere/City", false},
		{KeyTimezone, "", false},
		{KeyWarnPercent, "60", true},
		{KeyWarnPercent, "95", false},
		{KeyCriticalPercent, "50", false},
		{KeyCriticalPercent, "101", false},
		{KeyChildName, "Alex", true},
		{"favorite_color", "blue", false},
	}
	for _, tt := range tests {
		err := svc.Set(ctx, tt.key, tt.value)
		if tt.ok {
			assert.NoError(t, err, "%s=%s", tt.key, tt.value)
			assert.Equal(t, tt.value, store.values[tt.key])
		} else {
			assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation), "%s=%s", tt.key, tt.value)
		}
	}
}

func TestSettingsSetManyMovesBothThresholds(t *testing.T) {
	store := newMemorySettings()
	svc := NewSettingsService(store, testDefaults)
	ctx := context.Background()

	// 95 alone would not sit below the current critical of 90
	err := svc.SetMany(ctx, map[string]string{
		KeyChildName:       "Alex",
		KeyCriticalPercent: "99",
		KeyWarnPercent:     "95",
		KeyDailyLimitMl:    "1000",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{KeyDailyLimitMl, KeyWarnPercent, KeyCriticalPercent, KeyChildName}, store.written)
	st, err := svc.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, 95, st.WarnPercent)
	assert.Equal(t, 99, st.CriticalPercent)
}

func TestSettingsSetManyWritesNothingWhenRejected(t *testing.T) {
	tests := []struct {
		name   string
		values map[string]string
	}{
		{"inverted thresholds", map[string]string{KeyWarnPercent: "80", KeyCriticalPercent: "75", KeyDailyLimitMl: "1000"}},
		{"equal thresholds", map[string]string{KeyWarnPercent: "90"}},
		{"one bad value", map[string]string{KeyDailyLimitMl: "1000", KeyDayStartHour: "30"}},
		{"unknown key", map[string]string{KeyChildName: "Alex", "favorite_color": "blue"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemorySettings()
			svc := NewSettingsService(store, testDefaults)

			err := svc.SetMany(context.Background(), tt.values)
			assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
			assert.Empty(t, store.written)
		})
	}
}

func TestSettingsAll(t *testing.T) {
	store := newMemorySettings()
	svc := NewSettingsService(store, testDefaults)
	ctx := context.Background()
	require.NoError(t, svc.Set(ctx, KeyDailyLimitMl, "1050.5"))

	all, err := svc.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, len(SettingKeys))
	assert.Equal(t, "1050.5", all[KeyDailyLimitMl])
	assert.Equal(t, "6", all[KeyDayStartHour])
}
