package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/vladimiradmaev/fluid-helper/internal/api"
	"github.com/vladimiradmaev/fluid-helper/internal/bot"
	"github.com/vladimiradmaev/fluid-helper/internal/bot/handlers"
	"github.com/vladimiradmaev/fluid-helper/internal/bot/state"
	"github.com/vladimiradmaev/fluid-helper/internal/config"
	"github.com/vladimiradmaev/fluid-helper/internal/database"
	"github.com/vladimiradmaev/fluid-helper/internal/logger"
	"github.com/vladimiradmaev/fluid-helper/internal/repository"
	"github.com/vladimiradmaev/fluid-helper/internal/scheduler"
	"github.com/vladimiradmaev/fluid-helper/internal/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.InitWithConfig(logger.Config{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	}); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Close()

	logger.Info("Starting Fluid Helper...")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgresDB(cfg.DB)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}

	// Initialize services
	events := repository.NewEventRepository(db)
	settingsSvc := services.NewSettingsService(repository.NewSettingsRepository(db), cfg.Defaults)
	days := services.NewDayResolver(settingsSvc, time.Now)
	summarySvc := services.NewSummaryService(events, settingsSvc, days)

	completer, closeAI, err := services.NewCompleterFromConfig(ctx, cfg.AI)
	if err != nil {
		logger.Fatal("Failed to initialize completion providers", "error", err)
	}
	defer closeAI()

	parser := services.NewParserService(completer, cfg.AI.Timeout)
	loggingSvc := services.NewLoggingService(events, settingsSvc, summarySvc, parser, time.Now)
	reportSvc := services.NewReportService(summarySvc, settingsSvc)
	logger.Info("Services initialized", "completion", completer.Name())

	var wg sync.WaitGroup

	restAPI := api.InitAPI(loggingSvc, summarySvc, reportSvc, settingsSvc, days, events)
	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           api.NewRouter(restAPI, prometheus.DefaultRegisterer, prometheus.DefaultGatherer),
		ReadHeaderTimeout: 10 * time.Second,
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		logger.Info("HTTP API listening", "addr", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server stopped with error", "error", err)
			stop()
		}
	}()

	if cfg.BotEnabled {
		stateManager := newStateManager(cfg.Redis)
		if closer, ok := stateManager.(interface{ Close() error }); ok {
			defer closer.Close()
		}
		deps := handlers.Dependencies{
			LoggingSvc:  loggingSvc,
			SummarySvc:  summarySvc,
			ReportSvc:   reportSvc,
			SettingsSvc: settingsSvc,
			Days:        days,
		}
		telegramBot, err := bot.NewBot(cfg.TelegramToken, deps, stateManager)
		if err != nil {
			logger.Fatal("Failed to create bot", "error", err)
		}

		reports := scheduler.NewReportScheduler(reportSvc, days, telegramBot, cfg.Reports.ChatIDs, cfg.Reports.Schedule, reportLocation(ctx, settingsSvc))
		if err := reports.Start(); err != nil {
			logger.Fatal("Failed to start report scheduler", "error", err)
		}
		defer reports.Stop()

		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := telegramBot.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("Bot stopped with error", "error", err)
				stop()
			}
		}()
	} else {
		logger.Info("Telegram bot disabled")
	}

	logger.Info("Fluid Helper is running. Press Ctrl+C to stop.")
	<-ctx.Done()
	logger.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", "error", err)
	}
	wg.Wait()

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
	logger.Info("Fluid Helper stopped")
}

// newStateManager keeps bot state in Redis when configured and in memory otherwise
func newStateManager(cfg config.RedisConfig) state.StateManager {
	if !cfg.Enabled() {
		logger.Info("Redis not configured, bot state kept in memory")
		return state.NewManager()
	}
	m, err := state.NewRedisManager(cfg)
	if err != nil {
		logger.Warn("Redis unavailable, bot state kept in memory", "error", err)
		return state.NewManager()
	}
	return m
}

// reportLocation reads the timezone the report schedule is expressed in
func reportLocation(ctx context.Context, settings *services.SettingsService) *time.Location {
	st, err := settings.Current(ctx)
	if err != nil {
		logger.Warn("Failed to read settings, scheduling reports in UTC", "error", err)
		return time.UTC
	}
	return st.Location
}
