package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/vladimiradmaev/fluid-helper/internal/config"
	"github.com/vladimiradmaev/fluid-helper/internal/domain"
	apperrors "github.com/vladimiradmaev/fluid-helper/internal/errors"
	"github.com/vladimiradmaev/fluid-helper/internal/logger"
)

// Setting keys
const (
	KeyDailyLimitMl    = "daily_limit_ml"
	KeyDayStartHour    = "day_start_hour"
	KeyTimezone        = "timezone"
	KeyWarnPercent     = "warn_threshold_pct"
	KeyCriticalPercent = "critical_threshold_pct"
	KeyChildName       = "child_name"
)

// SettingKeys lists every known setting
var SettingKeys = []string{
	KeyDailyLimitMl, KeyDayStartHour, KeyTimezone, KeyWarnPercent, KeyCriticalPercent, KeyChildName,
}

// Settings is a snapshot of the runtime settings
type Settings struct {
	DailyLimitMl    float64
	DayStartHour    int
	Timezone        string
	Location        *time.Location
	WarnPercent     int
	CriticalPercent int
	ChildName       string
}

// SettingsReader yields the settings in effect right now
type SettingsReader interface {
	Current(ctx context.Context) (Settings, error)
}

// SettingsService reads settings from the store on every call. Nothing is
// cached, so a changed limit or day start applies to the next read.
type SettingsService struct {
	store    domain.SettingsStore
	defaults config.DefaultSettings
	log      *slog.Logger
}

func NewSettingsService(store domain.SettingsStore, defaults config.DefaultSettings) *SettingsService {
	return &SettingsService{
		store:    store,
		defaults: defaults,
		log:      logger.Component("settings"),
	}
}

// Current returns the settings in effect now, falling back to defaults for
// missing or unreadable values.
func (s *SettingsService) Current(ctx context.Context) (Settings, error) {
	raw, err := s.read(ctx)
	if err != nil {
		return Settings{}, apperrors.NewStoreUnavailableError(err)
	}

	st := Settings{
		DailyLimitMl:    float64(s.defaults.DailyLimitMl),
		DayStartHour:    s.defaults.DayStartHour,
		Timezone:        s.defaults.Timezone,
		WarnPercent:     s.defaults.WarnPercent,
		CriticalPercent: s.defaults.CriticalPercent,
		ChildName:       s.defaults.ChildName,
	}

	for key, value := range raw {
		if err := validateSetting(key, value); err != nil {
			s.log.WarnContext(ctx, "Ignoring invalid stored setting", "key", key, "value", value, "error", err)
			continue
		}
		switch key {
		case KeyDailyLimitMl:
			st.DailyLimitMl, _ = strconv.ParseFloat(value, 64)
		case KeyDayStartHour:
			st.DayStartHour, _ = strconv.Atoi(value)
		case KeyTimezone:
			st.Timezone = value
		case KeyWarnPercent:
			st.WarnPercent, _ = strconv.Atoi(value)
		case KeyCriticalPercent:
			st.CriticalPercent, _ = strconv.Atoi(value)
		case KeyChildName:
			st.ChildName = value
		}
	}

	if st.WarnPercent >= st.CriticalPercent {
		st.WarnPercent, st.CriticalPercent = s.defaults.WarnPercent, s.defaults.CriticalPercent
	}

	loc, err := time.LoadLocation(st.Timezone)
	if err != nil {
		s.log.WarnContext(ctx, "Falling back to default timezone", "timezone", st.Timezone, "error", err)
		st.Timezone = s.defaults.Timezone
		loc, err = time.LoadLocation(st.Timezone)
		if err != nil {
			loc = time.UTC
		}
	}
	st.Location = loc

	return st, nil
}

func (s *SettingsService) read(ctx context.Context) (map[string]string, error) {
	raw := make(map[string]string, len(SettingKeys))
	for _, key := range SettingKeys {
		value, ok, err := s.store.GetSetting(ctx, key)
		if err != nil {
			return nil, err
		}
		if ok {
			raw[key] = value
		}
	}
	return raw, nil
}

// All returns the effective settings as strings, keyed like the store
func (s *SettingsService) All(ctx context.Context) (map[string]string, error) {
	st, err := s.Current(ctx)
	if err != nil {
		return nil, err
	}
	return map[string]string{
		KeyDailyLimitMl:    strconv.FormatFloat(st.DailyLimitMl, 'f', -1, 64),
		KeyDayStartHour:    strconv.Itoa(st.DayStartHour),
		KeyTimezone:        st.Timezone,
		KeyWarnPercent:     strconv.Itoa(st.WarnPercent),
		KeyCriticalPercent: strconv.Itoa(st.CriticalPercent),
		KeyChildName:       st.ChildName,
	}, nil
}

// Set validates and stores one setting
func (s *SettingsService) Set(ctx context.Context, key, value string) error {
	return s.SetMany(ctx, map[string]string{key: value})
}

// SetMany validates every value, and the resulting warning/critical pair,
// before writing any of them. Writes follow SettingKeys order.
func (s *SettingsService) SetMany(ctx context.Context, values map[string]string) error {
	clean := make(map[string]string, len(values))
	for key, value := range values {
		value = strings.TrimSpace(value)
		if err := validateSetting(key, value); err != nil {
			return apperrors.NewValidationError(apperrors.CodeInvalidSetting, err.Error()).
				WithContext("key", key)
		}
		clean[key] = value
	}

	warnValue, hasWarn := clean[KeyWarnPercent]
	criticalValue, hasCritical := clean[KeyCriticalPercent]
	if hasWarn || hasCritical {
		st, err := s.Current(ctx)
		if err != nil {
			return err
		}
		warn, critical := st.WarnPercent, st.CriticalPercent
		if hasWarn {
			warn, _ = strconv.Atoi(warnValue)
		}
		if hasCritical {
			critical, _ = strconv.Atoi(criticalValue)
		}
		if warn >= critical {
			return apperrors.NewValidationError(apperrors.CodeInvalidSetting,
				"The warning threshold must be lower than the critical threshold.")
		}
	}

	for _, key := range SettingKeys {
		value, ok := clean[key]
		if !ok {
			continue
		}
		if err := s.store.SetSetting(ctx, key, value); err != nil {
			return apperrors.NewDatabaseError(err).WithContext("key", key)
		}
		s.log.InfoContext(ctx, "Setting updated", "key", key, "value", value)
	}
	return nil
}

func validateSetting(key, value string) error {
	switch key {
	case KeyDailyLimitMl:
		v, err := strconv.ParseFloat(value, 64)
		if err != nil || v <= 0 {
			return errors.New("The daily limit must be a positive number of ml.")
		}
	case KeyDayStartHour:
		v, err := strconv.Atoi(value)
		if err != nil || v < 0 || v > 23 {
			return errors.New("The day start hour must be between 0 and 23.")
		}
	case KeyTimezone:
		if value == "" {
			return errors.New("The timezone cannot be empty.")
		}
		if _, err := time.LoadLocation(value); err != nil {
			return fmt.Errorf("Unknown timezone %q.", value)
		}
	case KeyWarnPercent, KeyCriticalPercent:
		v, err := strconv.Atoi(value)
		if err != nil || v < 1 || v > 100 {
			return errors.New("Thresholds must be whole percentages between 1 and 100.")
		}
	case KeyChildName:
		if len(value) > 64 {
			return errors.New("The name is too long.")
		}
	default:
		return fmt.Errorf("Unknown setting %q.", key)
	}
	return nil
}
