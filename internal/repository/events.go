package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vladimiradmaev/fluid-helper/internal/database"
	"github.com/vladimiradmaev/fluid-helper/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EventRepository is the gorm-backed event store. Reads and writes go
// through the connection pool; the database serializes concurrent writes.
type EventRepository struct {
	db *gorm.DB
}

// NewEventRepository creates a new event repository
func NewEventRepository(db *gorm.DB) *EventRepository {
	return &EventRepository{db: db}
}

var _ domain.EventStore = (*EventRepository)(nil)

// Ping checks that the database is reachable
func (r *EventRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (r *EventRepository) InsertFluidLog(ctx context.Context, entry *domain.FluidLogEntry) (uint, error) {
	row := database.FluidLog{
		OccurredAt: entry.Timestamp,
		DayKey:     entry.DayKey,
		EntryType:  string(entry.EntryType),
		FluidType:  string(entry.FluidType),
		AmountMl:   entry.AmountMl,
		Notes:      entry.Notes,
		Source:     string(entry.Source),
		BatchID:    entry.BatchID,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return 0, fmt.Errorf("failed to insert fluid log: %w", err)
	}
	entry.ID = row.ID
	return row.ID, nil
}

func (r *EventRepository) InsertWellness(ctx context.Context, check *domain.WellnessCheck) (uint, error) {
	row := database.WellnessCheck{
		OccurredAt: check.Timestamp,
		DayKey:     check.DayKey,
		CheckTime:  string(check.CheckTime),
		Appetite:   check.Appetite,
		Energy:     check.Energy,
		Mood:       check.Mood,
		Cyanosis:   check.Cyanosis,
		BatchID:    check.BatchID,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return 0, fmt.Errorf("failed to insert wellness check: %w", err)
	}
	check.ID = row.ID
	return row.ID, nil
}

func (r *EventRepository) InsertGag(ctx context.Context, timestamp time.Time, dayKey, batchID string) (uint, error) {
	row := database.GagEvent{
		OccurredAt: timestamp,
		DayKey:     dayKey,
		BatchID:    batchID,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return 0, fmt.Errorf("failed to insert gag event: %w", err)
	}
	return row.ID, nil
}

// UpsertWeight writes the weight for a date, replacing any previous value
func (r *EventRepository) UpsertWeight(ctx context.Context, date string, weightKg float64, notes string) error {
	row := database.WeightEntry{
		Date:     date,
		WeightKg: weightKg,
		Notes:    notes,
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "entry_date"}},
		DoUpdates: clause.AssignmentColumns([]string{"weight_kg", "notes", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to upsert weight: %w", err)
	}
	return nil
}

func (r *EventRepository) FluidLogsByDay(ctx context.Context, dayKey string) ([]domain.FluidLogEntry, error) {
	var rows []database.FluidLog
	if err := r.db.WithContext(ctx).
		Where("day_key = ?", dayKey).
		Order("occurred_at ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to get fluid logs: %w", err)
	}

	entries := make([]domain.FluidLogEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, domain.FluidLogEntry{
			ID:        row.ID,
			Timestamp: row.OccurredAt,
			DayKey:    row.DayKey,
			EntryType: domain.EntryType(row.EntryType),
			FluidType: domain.FluidType(row.FluidType),
			AmountMl:  row.AmountMl,
			Notes:     row.Notes,
			Source:    domain.Source(row.Source),
			BatchID:   row.BatchID,
		})
	}
	return entries, nil
}

func (r *EventRepository) WellnessByDay(ctx context.Context, dayKey string) ([]domain.WellnessCheck, error) {
	var rows []database.WellnessCheck
	if err := r.db.WithContext(ctx).
		Where("day_key = ?", dayKey).
		Order("occurred_at ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to get wellness checks: %w", err)
	}

	checks := make([]domain.WellnessCheck, 0, len(rows))
	for _, row := range rows {
		checks = append(checks, domain.WellnessCheck{
			ID:        row.ID,
			Timestamp: row.OccurredAt,
			DayKey:    row.DayKey,
			CheckTime: domain.CheckTime(row.CheckTime),
			Appetite:  row.Appetite,
			Energy:    row.Energy,
			Mood:      row.Mood,
			Cyanosis:  row.Cyanosis,
			BatchID:   row.BatchID,
		})
	}
	return checks, nil
}

func (r *EventRepository) GagsByDay(ctx context.Context, dayKey string) ([]domain.GagEvent, error) {
	var rows []database.GagEvent
	if err := r.db.WithContext(ctx).
		Where("day_key = ?", dayKey).
		Order("occurred_at ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to get gag events: %w", err)
	}

	gags := make([]domain.GagEvent, 0, len(rows))
	for _, row := range rows {
		gags = append(gags, domain.GagEvent{
			ID:        row.ID,
			Timestamp: row.OccurredAt,
			DayKey:    row.DayKey,
			BatchID:   row.BatchID,
		})
	}
	return gags, nil
}

// WeightByDate returns nil without error when no weight is stored
func (r *EventRepository) WeightByDate(ctx context.Context, date string) (*domain.WeightEntry, error) {
	var row database.WeightEntry
	err := r.db.WithContext(ctx).Where("entry_date = ?", date).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get weight: %w", err)
	}
	return &domain.WeightEntry{
		Date:      row.Date,
		WeightKg:  row.WeightKg,
		Notes:     row.Notes,
		UpdatedAt: row.UpdatedAt,
	}, nil
}

// DeleteByID removes one record. It reports false when nothing matched.
func (r *EventRepository) DeleteByID(ctx context.Context, kind domain.RecordKind, id uint) (bool, error) {
	var model interface{}
	switch kind {
	case domain.KindFluid:
		model = &database.FluidLog{}
	case domain.KindWellness:
		model = &database.WellnessCheck{}
	case domain.KindGag:
		model = &database.GagEvent{}
	default:
		return false, fmt.Errorf("unknown record kind %q", kind)
	}

	result := r.db.WithContext(ctx).Delete(model, id)
	if result.Error != nil {
		return false, fmt.Errorf("failed to delete %s %d: %w", kind, id, result.Error)
	}
	return result.RowsAffected > 0, nil
}
