package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/vladimiradmaev/fluid-helper/internal/logger"
)

type Config struct {
	TelegramToken string
	BotEnabled    bool
	HTTPAddr      string
	AI            AIConfig
	DB            DBConfig
	Redis         RedisConfig
	Reports       ReportConfig
	Defaults      DefaultSettings
	Logger        LoggerConfig
}

type AIConfig struct {
	GeminiAPIKey string
	GeminiModel  string
	OpenAIAPIKey string
	OpenAIModel  string
	Timeout      time.Duration
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// DSN returns the postgres connection string
func (c DBConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// RedisConfig selects Redis-backed bot state. An empty host keeps state in memory.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

func (c RedisConfig) Enabled() bool {
	return c.Host != ""
}

type ReportConfig struct {
	ChatIDs  []int64
	Schedule []string // cron specs in the configured timezone
}

// DefaultSettings seed the settings table for keys that are not stored yet
type DefaultSettings struct {
	DailyLimitMl    int
	DayStartHour    int
	Timezone        string
	WarnPercent     int
	CriticalPercent int
	ChildName       string
}

type LoggerConfig struct {
	Level      logger.LogLevel
	OutputPath string
	Format     string
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return v, nil
}

func parseLogLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "debug":
		return logger.LevelDebug
	case "info":
		return logger.LevelInfo
	case "warn", "warning":
		return logger.LevelWarn
	case "error":
		return logger.LevelError
	default:
		return logger.LevelInfo
	}
}

func parseChatIDs(raw string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid chat id %q: %w", part, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ";") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func Load() (*Config, error) {
	var errs []string
	collect := func(err error) {
		if err != nil {
			errs = append(errs, err.Error())
		}
	}

	limit, err := getIntOrDefault("DEFAULT_DAILY_LIMIT_ML", 1200)
	collect(err)
	startHour, err := getIntOrDefault("DEFAULT_DAY_START_HOUR", 7)
	collect(err)
	warn, err := getIntOrDefault("DEFAULT_WARN_PERCENT", 70)
	collect(err)
	critical, err := getIntOrDefault("DEFAULT_CRITICAL_PERCENT", 90)
	collect(err)
	redisDB, err := getIntOrDefault("REDIS_DB", 0)
	collect(err)
	chatIDs, err := parseChatIDs(os.Getenv("REPORT_CHAT_IDS"))
	collect(err)
	timeout, err := time.ParseDuration(getEnvOrDefault("COMPLETION_TIMEOUT", "30s"))
	collect(err)
	botEnabled, err := strconv.ParseBool(getEnvOrDefault("BOT_ENABLED", "true"))
	collect(err)

	if len(errs) > 0 {
		return nil, fmt.Errorf("invalid configuration:\n  - %s", strings.Join(errs, "\n  - "))
	}

	cfg := &Config{
		TelegramToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		BotEnabled:    botEnabled,
		HTTPAddr:      getEnvOrDefault("HTTP_ADDR", ":8080"),
		AI: AIConfig{
			GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
			GeminiModel:  getEnvOrDefault("GEMINI_MODEL", "gemini-1.5-flash"),
			OpenAIAPIKey: os.Getenv("OPENAI_API_KEY"),
			OpenAIModel:  getEnvOrDefault("OPENAI_MODEL", "gpt-4o-mini"),
			Timeout:      timeout,
		},
		DB: DBConfig{
			Host:     getEnvOrDefault("DB_HOST", "localhost"),
			Port:     getEnvOrDefault("DB_PORT", "5432"),
			User:     getEnvOrDefault("DB_USER", "postgres"),
			Password: getEnvOrDefault("DB_PASSWORD", "postgres"),
			DBName:   getEnvOrDefault("DB_NAME", "fluid_helper"),
			SSLMode:  getEnvOrDefault("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     os.Getenv("REDIS_HOST"),
			Port:     getEnvOrDefault("REDIS_PORT", "6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Reports: ReportConfig{
			ChatIDs:  chatIDs,
			Schedule: splitList(getEnvOrDefault("REPORT_SCHEDULE", "0 19 * * *;0 22 * * *")),
		},
		Defaults: DefaultSettings{
			DailyLimitMl:    limit,
			DayStartHour:    startHour,
			Timezone:        getEnvOrDefault("DEFAULT_TIMEZONE", "America/New_York"),
			WarnPercent:     warn,
			CriticalPercent: critical,
			ChildName:       getEnvOrDefault("CHILD_NAME", ""),
		},
		Logger: LoggerConfig{
			Level:      parseLogLevel(getEnvOrDefault("LOG_LEVEL", "info")),
			OutputPath: getEnvOrDefault("LOG_OUTPUT", "stdout"),
			Format:     getEnvOrDefault("LOG_FORMAT", "json"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the service cannot run with
func (c *Config) Validate() error {
	var errs []string
	if c.BotEnabled && c.TelegramToken == "" {
		errs = append(errs, "TELEGRAM_BOT_TOKEN is required when the bot is enabled")
	}
	if c.AI.GeminiAPIKey == "" && c.AI.OpenAIAPIKey == "" {
		errs = append(errs, "at least one of GEMINI_API_KEY or OPENAI_API_KEY is required")
	}
	if c.AI.Timeout <= 0 {
		errs = append(errs, "COMPLETION_TIMEOUT must be positive")
	}
	if c.Defaults.DailyLimitMl <= 0 {
		errs = append(errs, "DEFAULT_DAILY_LIMIT_ML must be positive")
	}
	if c.Defaults.DayStartHour < 0 || c.Defaults.DayStartHour > 23 {
		errs = append(errs, "DEFAULT_DAY_START_HOUR must be between 0 and 23")
	}
	if _, err := time.LoadLocation(c.Defaults.Timezone); err != nil {
		errs = append(errs, fmt.Sprintf("DEFAULT_TIMEZONE %q is not a valid IANA zone", c.Defaults.Timezone))
	}
	if c.Defaults.WarnPercent <= 0 || c.Defaults.CriticalPercent > 100 || c.Defaults.WarnPercent >= c.Defaults.CriticalPercent {
		errs = append(errs, "warning thresholds must satisfy 0 < warn < critical <= 100")
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
