package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vladimiradmaev/fluid-helper/internal/logger"
)

func setRequired(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("GEMINI_API_KEY", "key")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 1200, cfg.Defaults.DailyLimitMl)
	assert.Equal(t, 7, cfg.Defaults.DayStartHour)
	assert.Equal(t, "America/New_York", cfg.Defaults.Timezone)
	assert.Equal(t, 70, cfg.Defaults.WarnPercent)
	assert.Equal(t, 90, cfg.Defaults.CriticalPercent)
	assert.Equal(t, []string{"0 19 * * *", "0 22 * * *"}, cfg.Reports.Schedule)
	assert.Equal(t, 30*time.Second, cfg.AI.Timeout)
	assert.Equal(t, logger.LevelInfo, cfg.Logger.Level)
	assert.False(t, cfg.Redis.Enabled())
	assert.Equal(t, "host=localhost port=5432 user=postgres password=postgres dbname=fluid_helper sslmode=disable", cfg.DB.DSN())
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("DEFAULT_DAILY_LIMIT_ML", "900")
	t.Setenv("DEFAULT_DAY_START_HOUR", "6")
	t.Setenv("REPORT_CHAT_IDS", "42, -100200")
	t.Setenv("REDIS_HOST", "redis")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 900, cfg.Defaults.DailyLimitMl)
	assert.Equal(t, 6, cfg.Defaults.DayStartHour)
	assert.Equal(t, []int64{42, -100200}, cfg.Reports.ChatIDs)
	assert.True(t, cfg.Redis.Enabled())
	assert.Equal(t, logger.LevelDebug, cfg.Logger.Level)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"start hour out of range", "DEFAULT_DAY_START_HOUR", "24"},
		{"non numeric limit", "DEFAULT_DAILY_LIMIT_ML", "lots"},
		{"unknown timezone", "DEFAULT_TIMEZONE", "Mars/Olympus"},
		{"bad chat id", "REPORT_CHAT_IDS", "abc"},
		{"warn above critical", "DEFAULT_WARN_PERCENT", "95"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequired(t)
			t.Setenv(tt.key, tt.val)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoadRequiresBotTokenOnlyWhenEnabled(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	t.Setenv("GEMINI_API_KEY", "key")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TELEGRAM_BOT_TOKEN")

	t.Setenv("BOT_ENABLED", "false")
	_, err = Load()
	assert.NoError(t, err)
}
