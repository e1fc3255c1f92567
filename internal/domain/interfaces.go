package domain

import (
	"context"
	"time"
)

// EventStore persists fluid logs, wellness checks, gags and weights
type EventStore interface {
	InsertFluidLog(ctx context.Context, entry *FluidLogEntry) (uint, error)
	InsertWellness(ctx context.Context, check *WellnessCheck) (uint, error)
	InsertGag(ctx context.Context, timestamp time.Time, dayKey, batchID string) (uint, error)
	UpsertWeight(ctx context.Context, date string, weightKg float64, notes string) error

	FluidLogsByDay(ctx context.Context, dayKey string) ([]FluidLogEntry, error)
	WellnessByDay(ctx context.Context, dayKey string) ([]WellnessCheck, error)
	GagsByDay(ctx context.Context, dayKey string) ([]GagEvent, error)
	WeightByDate(ctx context.Context, date string) (*WeightEntry, error)

	DeleteByID(ctx context.Context, kind RecordKind, id uint) (bool, error)
}

// SettingsStore is the raw key/value settings table
type SettingsStore interface {
	GetSetting(ctx context.Context, key string) (string, bool, error)
	SetSetting(ctx context.Context, key, value string) error
}

// Completer is a black-box text-completion service
type Completer interface {
	Complete(ctx context.Context, instructions, message string) (string, error)
	Name() string
}
