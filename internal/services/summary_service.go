package services

import (
	"context"
	"time"

	"github.com/vladimiradmaev/fluid-helper/internal/daykey"
	"github.com/vladimiradmaev/fluid-helper/internal/domain"
	apperrors "github.com/vladimiradmaev/fluid-helper/internal/errors"
)

// DayResolver answers "which fluid day is it" using the settings in effect
// at call time.
type DayResolver struct {
	settings SettingsReader
	now      func() time.Time
}

func NewDayResolver(settings SettingsReader, now func() time.Time) *DayResolver {
	if now == nil {
		now = time.Now
	}
	return &DayResolver{settings: settings, now: now}
}

// KeyFor returns the day key of t
func (r *DayResolver) KeyFor(ctx context.Context, t time.Time) (string, error) {
	st, err := r.settings.Current(ctx)
	if err != nil {
		return "", err
	}
	return daykey.For(t, st.Location, st.DayStartHour), nil
}

// Today returns the day key of the current instant
func (r *DayResolver) Today(ctx context.Context) (string, error) {
	return r.KeyFor(ctx, r.now())
}

// Yesterday returns the day before today
func (r *DayResolver) Yesterday(ctx context.Context) (string, error) {
	today, err := r.Today(ctx)
	if err != nil {
		return "", err
	}
	return daykey.Shift(today, -1)
}

// SummaryService reduces one fluid day into a DaySummary. It only reads.
type SummaryService struct {
	store    domain.EventStore
	settings SettingsReader
	days     *DayResolver
}

func NewSummaryService(store domain.EventStore, settings SettingsReader, days *DayResolver) *SummaryService {
	return &SummaryService{store: store, settings: settings, days: days}
}

// Summarize collects everything logged under dayKey
func (s *SummaryService) Summarize(ctx context.Context, dayKey string) (*domain.DaySummary, error) {
	if !daykey.Valid(dayKey) {
		return nil, apperrors.NewValidationError(apperrors.CodeInvalidDate, "Dates must look like 2024-05-01.").
			WithContext("day_key", dayKey)
	}

	logs, err := s.store.FluidLogsByDay(ctx, dayKey)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	wellness, err := s.store.WellnessByDay(ctx, dayKey)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	gags, err := s.store.GagsByDay(ctx, dayKey)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	weight, err := s.store.WeightByDate(ctx, dayKey)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}

	summary := Reduce(dayKey, logs, wellness, gags)
	summary.Weight = weight
	return summary, nil
}

// Today summarizes the current fluid day
func (s *SummaryService) Today(ctx context.Context) (*domain.DaySummary, error) {
	key, err := s.days.Today(ctx)
	if err != nil {
		return nil, err
	}
	return s.Summarize(ctx, key)
}

// Limit measures a summary against the limit in effect now, not the one in
// effect when the entries were logged.
func (s *SummaryService) Limit(ctx context.Context, summary *domain.DaySummary) (domain.LimitStatus, error) {
	st, err := s.settings.Current(ctx)
	if err != nil {
		return domain.LimitStatus{}, err
	}
	return LimitStatusFor(summary.TotalIntake, st), nil
}

// Reduce partitions raw records into a summary. Records are expected in
// timestamp order; that order is preserved.
func Reduce(dayKey string, logs []domain.FluidLogEntry, wellness []domain.WellnessCheck, gags []domain.GagEvent) *domain.DaySummary {
	summary := &domain.DaySummary{
		DayKey:       dayKey,
		Inputs:       []domain.FluidLogEntry{},
		Outputs:      []domain.FluidLogEntry{},
		IntakeByType: []domain.TypeTotal{},
		Wellness:     wellness,
		Gags:         gags,
		GagCount:     len(gags),
	}
	if summary.Wellness == nil {
		summary.Wellness = []domain.WellnessCheck{}
	}
	if summary.Gags == nil {
		summary.Gags = []domain.GagEvent{}
	}

	index := make(map[domain.FluidType]int)
	for _, e := range logs {
		switch e.EntryType {
		case domain.EntryInput:
			summary.Inputs = append(summary.Inputs, e)
			summary.TotalIntake += e.Amount()
			i, ok := index[e.FluidType]
			if !ok {
				i = len(summary.IntakeByType)
				index[e.FluidType] = i
				summary.IntakeByType = append(summary.IntakeByType, domain.TypeTotal{FluidType: e.FluidType})
			}
			summary.IntakeByType[i].AmountMl += e.Amount()
		case domain.EntryOutput:
			summary.Outputs = append(summary.Outputs, e)
		}
	}
	return summary
}

// LimitStatusFor derives percent, band and overage from total intake
func LimitStatusFor(totalMl float64, st Settings) domain.LimitStatus {
	status := domain.LimitStatus{
		LimitMl: st.DailyLimitMl,
		TotalMl: totalMl,
	}
	if st.DailyLimitMl <= 0 {
		status.Band = domain.BandGreen
		return status
	}

	status.Percent = totalMl / st.DailyLimitMl * 100
	status.Exceeded = totalMl > st.DailyLimitMl
	switch {
	case status.Exceeded:
		status.Band = domain.BandOver
		status.OverByMl = totalMl - st.DailyLimitMl
	case status.Percent >= float64(st.CriticalPercent):
		status.Band = domain.BandRed
	case status.Percent >= float64(st.WarnPercent):
		status.Band = domain.BandYellow
	default:
		status.Band = domain.BandGreen
	}
	if !status.Exceeded {
		status.RemainingMl = st.DailyLimitMl - totalMl
	}
	return status
}
