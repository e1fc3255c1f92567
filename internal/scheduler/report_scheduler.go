package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/vladimiradmaev/fluid-helper/internal/logger"
	"github.com/vladimiradmaev/fluid-helper/internal/metrics"
)

// ReportBuilder renders the report of one fluid day
type ReportBuilder interface {
	BuildReport(ctx context.Context, dayKey string) (string, error)
}

// DayProvider resolves the current fluid day
type DayProvider interface {
	Today(ctx context.Context) (string, error)
}

// ReportSender delivers a report to one chat
type ReportSender interface {
	SendText(chatID int64, text string) error
}

// ReportScheduler sends the daily report to caregivers on a cron schedule
type ReportScheduler struct {
	reports ReportBuilder
	days    DayProvider
	sender  ReportSender
	chatIDs []int64
	specs   []string
	cron    *cron.Cron
	log     *slog.Logger
}

// NewReportScheduler creates a scheduler whose specs are read in loc
func NewReportScheduler(reports ReportBuilder, days DayProvider, sender ReportSender, chatIDs []int64, specs []string, loc *time.Location) *ReportScheduler {
	if loc == nil {
		loc = time.UTC
	}
	return &ReportScheduler{
		reports: reports,
		days:    days,
		sender:  sender,
		chatIDs: chatIDs,
		specs:   specs,
		cron:    cron.New(cron.WithLocation(loc)),
		log:     logger.Component("scheduler"),
	}
}

// Start registers every schedule and starts the cron runner
func (s *ReportScheduler) Start() error {
	if len(s.chatIDs) == 0 {
		s.log.Info("No report chats configured, scheduled reports disabled")
		return nil
	}

	for _, spec := range s.specs {
		if _, err := s.cron.AddFunc(spec, s.RunReports); err != nil {
			return fmt.Errorf("failed to add report schedule %q: %w", spec, err)
		}
	}

	s.cron.Start()
	s.log.Info("Report scheduler started", "schedules", s.specs, "chats", len(s.chatIDs), "location", s.cron.Location().String())
	return nil
}

// Stop waits for a running report to finish
func (s *ReportScheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info("Report scheduler stopped")
}

// RunReports builds today's report once and sends it to every chat
func (s *ReportScheduler) RunReports() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	dayKey, err := s.days.Today(ctx)
	if err != nil {
		s.log.Error("Failed to resolve day for report", "error", err)
		return
	}
	report, err := s.reports.BuildReport(ctx, dayKey)
	if err != nil {
		s.log.Error("Failed to build report", "day_key", dayKey, "error", err)
		return
	}

	for _, chatID := range s.chatIDs {
		if err := s.sender.SendText(chatID, report); err != nil {
			s.log.Error("Failed to send report", "chat_id", chatID, "error", err)
			continue
		}
		metrics.ReportsSent.WithLabelValues("scheduled").Inc()
	}
	s.log.Info("Scheduled report sent", "day_key", dayKey, "chats", len(s.chatIDs))
}
