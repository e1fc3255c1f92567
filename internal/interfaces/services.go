package interfaces

import (
	"context"

	"github.com/vladimiradmaev/fluid-helper/internal/domain"
	"github.com/vladimiradmaev/fluid-helper/internal/services"
)

// LoggingServiceInterface defines the contract for writing to the log
type LoggingServiceInterface interface {
	LogText(ctx context.Context, text string, source domain.Source) (*services.ApplyResult, *domain.ParseResult, error)
	Apply(ctx context.Context, actions []domain.ParsedAction, explicitDate string, source domain.Source) (*services.ApplyResult, error)
	Undo(ctx context.Context, refs []domain.RecordRef) (int, error)
	DeleteEntry(ctx context.Context, kind domain.RecordKind, id uint) error
}

// SummaryServiceInterface defines the contract for reading a fluid day
type SummaryServiceInterface interface {
	Summarize(ctx context.Context, dayKey string) (*domain.DaySummary, error)
	Limit(ctx context.Context, summary *domain.DaySummary) (domain.LimitStatus, error)
}

// ReportServiceInterface defines the contract for daily reports
type ReportServiceInterface interface {
	BuildReport(ctx context.Context, dayKey string) (string, error)
}

// SettingsServiceInterface defines the contract for runtime settings
type SettingsServiceInterface interface {
	Current(ctx context.Context) (services.Settings, error)
	All(ctx context.Context) (map[string]string, error)
	Set(ctx context.Context, key, value string) error
	SetMany(ctx context.Context, values map[string]string) error
}

// DayResolverInterface defines the contract for resolving day keys
type DayResolverInterface interface {
	Today(ctx context.Context) (string, error)
	Yesterday(ctx context.Context) (string, error)
}
