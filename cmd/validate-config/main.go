package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/vladimiradmaev/fluid-helper/internal/config"
)

func main() {
	fmt.Println("🔍 Checking configuration...")

	// Load .env if present
	if err := godotenv.Load(); err != nil {
		fmt.Printf("⚠️  .env file not found: %v\n", err)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("❌ Configuration is invalid:\n%v\n", err)
		os.Exit(1)
	}

	fmt.Println("✅ Configuration is valid!")
	fmt.Printf("📋 Configuration details:\n")
	fmt.Printf("  - Bot enabled: %t\n", cfg.BotEnabled)
	fmt.Printf("  - Telegram Token: %s\n", maskToken(cfg.TelegramToken))
	fmt.Printf("  - Gemini API Key: %s (model %s)\n", maskToken(cfg.AI.GeminiAPIKey), cfg.AI.GeminiModel)
	fmt.Printf("  - OpenAI API Key: %s (model %s)\n", maskToken(cfg.AI.OpenAIAPIKey), cfg.AI.OpenAIModel)
	fmt.Printf("  - Completion timeout: %s\n", cfg.AI.Timeout)
	fmt.Printf("  - HTTP address: %s\n", cfg.HTTPAddr)
	fmt.Printf("  - DB Host: %s\n", cfg.DB.Host)
	fmt.Printf("  - DB Port: %s\n", cfg.DB.Port)
	fmt.Printf("  - DB User: %s\n", cfg.DB.User)
	fmt.Printf("  - DB Name: %s\n", cfg.DB.DBName)
	if cfg.Redis.Enabled() {
		fmt.Printf("  - Redis: %s:%s (db %d)\n", cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.DB)
	} else {
		fmt.Printf("  - Redis: <not set, bot state in memory>\n")
	}
	fmt.Printf("  - Report chats: %d\n", len(cfg.Reports.ChatIDs))
	fmt.Printf("  - Report schedule: %s\n", strings.Join(cfg.Reports.Schedule, "; "))
	fmt.Printf("  - Default limit: %d ml, day starts at %02d:00 %s\n", cfg.Defaults.DailyLimitMl, cfg.Defaults.DayStartHour, cfg.Defaults.Timezone)
	fmt.Printf("  - Warning thresholds: %d%% / %d%%\n", cfg.Defaults.WarnPercent, cfg.Defaults.CriticalPercent)
	fmt.Printf("  - Log Level: %v\n", cfg.Logger.Level)
	fmt.Printf("  - Log Output: %s\n", cfg.Logger.OutputPath)
	fmt.Printf("  - Log Format: %s\n", cfg.Logger.Format)
}

func maskToken(token string) string {
	if token == "" {
		return "<not set>"
	}
	if len(token) <= 8 {
		return "***"
	}
	return token[:4] + "..." + token[len(token)-4:]
}
