package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/vladimiradmaev/fluid-helper/internal/daykey"
	"github.com/vladimiradmaev/fluid-helper/internal/domain"
	apperrors "github.com/vladimiradmaev/fluid-helper/internal/errors"
	"github.com/vladimiradmaev/fluid-helper/internal/logger"
	"github.com/vladimiradmaev/fluid-helper/internal/metrics"
)

// ActionFailure is an action the store refused
type ActionFailure struct {
	Index  int                 `json:"index"`
	Action domain.ParsedAction `json:"action"`
	Error  string              `json:"error"`
}

// ApplyResult is what a surface needs to confirm a logged message
type ApplyResult struct {
	DayKey       string                `json:"dayKey"`
	BatchID      string                `json:"batchId"`
	Actions      []domain.ParsedAction `json:"actions"`
	Created      []domain.RecordRef    `json:"created"`
	WeightLogged bool                  `json:"weightLogged"`
	Failed       []ActionFailure       `json:"failed,omitempty"`
	Summary      *domain.DaySummary    `json:"summary"`
	Limit        domain.LimitStatus    `json:"limit"`
}

// Backdated reports whether the entries went to a day other than today
func (r *ApplyResult) Backdated(today string) bool {
	return r.DayKey != today
}

// MessageParser is the parsing half of the pipeline
type MessageParser interface {
	Parse(ctx context.Context, message string) (*domain.ParseResult, error)
}

// LoggingService persists parsed actions under the right fluid day and
// returns a fresh summary of that day.
type LoggingService struct {
	store    domain.EventStore
	settings SettingsReader
	summary  *SummaryService
	parser   MessageParser
	now      func() time.Time
	log      *slog.Logger
}

func NewLoggingService(store domain.EventStore, settings SettingsReader, summary *SummaryService, parser MessageParser, now func() time.Time) *LoggingService {
	if now == nil {
		now = time.Now
	}
	return &LoggingService{
		store:    store,
		settings: settings,
		summary:  summary,
		parser:   parser,
		now:      now,
		log:      logger.Component("logging"),
	}
}

// LogText runs the whole pipeline for one caregiver message. A message
// nothing could be made of yields an unparseable AppError.
func (s *LoggingService) LogText(ctx context.Context, text string, source domain.Source) (*ApplyResult, *domain.ParseResult, error) {
	parsed, err := s.parser.Parse(ctx, text)
	if err != nil {
		return nil, nil, err
	}
	if parsed.Unparseable {
		return nil, parsed, apperrors.NewUnparseableError("Nothing in the message could be logged.")
	}

	// one clock reading for both "yesterday" and the day check in apply
	now := s.now()
	explicitDate := ""
	if parsed.DateOffset == -1 {
		st, err := s.settings.Current(ctx)
		if err != nil {
			return nil, parsed, err
		}
		today := daykey.For(now, st.Location, st.DayStartHour)
		if explicitDate, err = daykey.Shift(today, -1); err != nil {
			return nil, parsed, apperrors.NewInternalError(err)
		}
	}

	result, err := s.apply(ctx, parsed.Actions, explicitDate, source, now)
	return result, parsed, err
}

// Apply persists actions in order. explicitDate, when set, must be today's
// or yesterday's day key. Validation happens before any write; after that
// each action is persisted on its own and a failing one is skipped.
//
// When the writes succeed but the day cannot be summarized, the result is
// returned without Summary alongside a SUMMARY_UNAVAILABLE error, so callers
// can still offer undo for what was saved.
func (s *LoggingService) Apply(ctx context.Context, actions []domain.ParsedAction, explicitDate string, source domain.Source) (*ApplyResult, error) {
	return s.apply(ctx, actions, explicitDate, source, s.now())
}

func (s *LoggingService) apply(ctx context.Context, actions []domain.ParsedAction, explicitDate string, source domain.Source, now time.Time) (*ApplyResult, error) {
	st, err := s.settings.Current(ctx)
	if err != nil {
		return nil, err
	}

	dayKey, err := s.resolveDay(now, st, explicitDate)
	if err != nil {
		return nil, err
	}

	if len(actions) == 0 {
		return nil, apperrors.NewValidationError(apperrors.CodeInvalidAction, "There was nothing to log.")
	}
	for i, a := range actions {
		if err := ValidateAction(a); err != nil {
			return nil, apperrors.NewValidationError(apperrors.CodeInvalidAction, err.Error()).
				WithContext("index", i).
				WithContext("kind", a.Kind)
		}
	}

	result := &ApplyResult{
		DayKey:  dayKey,
		BatchID: uuid.NewString(),
		Actions: actions,
		Created: []domain.RecordRef{},
	}

	// Each record gets its own millisecond so insertion order survives the
	// timestamp sort.
	base := now.Truncate(time.Millisecond)
	tick := 0
	next := func() time.Time {
		t := base.Add(time.Duration(tick) * time.Millisecond)
		tick++
		return t
	}

	attempted := 0
	for i, a := range actions {
		attempted++
		refs, err := s.persist(ctx, a, dayKey, result.BatchID, source, next)
		result.Created = append(result.Created, refs...)
		if err != nil {
			metrics.PersistFailures.WithLabelValues(string(a.Kind)).Inc()
			s.log.ErrorContext(ctx, "Failed to persist action, skipping", "index", i, "kind", a.Kind, "day_key", dayKey, "error", err)
			result.Failed = append(result.Failed, ActionFailure{Index: i, Action: a, Error: err.Error()})
			continue
		}
		if a.Kind == domain.ActionWeight {
			result.WeightLogged = true
		}
		metrics.LoggedActions.WithLabelValues(string(a.Kind)).Inc()
	}

	if attempted > 0 && len(result.Failed) == attempted {
		return nil, apperrors.NewStoreUnavailableError(fmt.Errorf("all %d actions failed: %s", attempted, result.Failed[0].Error)).
			WithContext("day_key", dayKey)
	}

	summary, err := s.summary.Summarize(ctx, dayKey)
	if err != nil {
		s.log.ErrorContext(ctx, "Logged actions but failed to summarize the day",
			"day_key", dayKey, "batch_id", result.BatchID, "created", len(result.Created), "error", err)
		return result, apperrors.NewSummaryUnavailableError(err).WithContext("day_key", dayKey)
	}
	result.Summary = summary
	result.Limit = LimitStatusFor(summary.TotalIntake, st)

	s.log.InfoContext(ctx, "Logged actions",
		"day_key", dayKey,
		"batch_id", result.BatchID,
		"actions", len(actions),
		"failed", len(result.Failed),
		"total_intake", summary.TotalIntake,
		"exceeded", result.Limit.Exceeded,
	)
	return result, nil
}

func (s *LoggingService) resolveDay(now time.Time, st Settings, explicitDate string) (string, error) {
	today := daykey.For(now, st.Location, st.DayStartHour)
	if explicitDate == "" {
		return today, nil
	}

	yesterday, err := daykey.Shift(today, -1)
	if err != nil {
		return "", apperrors.NewInternalError(err)
	}
	if explicitDate != today && explicitDate != yesterday {
		return "", apperrors.NewValidationError(apperrors.CodeInvalidDate,
			fmt.Sprintf("Entries can only be logged for today (%s) or yesterday (%s).", today, yesterday)).
			WithContext("explicit_date", explicitDate)
	}
	return explicitDate, nil
}

// persist writes one action. Gags write one row per episode; refs of rows
// written before a failure are still returned.
func (s *LoggingService) persist(ctx context.Context, a domain.ParsedAction, dayKey, batchID string, source domain.Source, next func() time.Time) ([]domain.RecordRef, error) {
	switch a.Kind {
	case domain.ActionInput, domain.ActionOutput:
		entryType := domain.EntryInput
		if a.Kind == domain.ActionOutput {
			entryType = domain.EntryOutput
		}
		entry := &domain.FluidLogEntry{
			Timestamp: next(),
			DayKey:    dayKey,
			EntryType: entryType,
			FluidType: a.FluidType,
			AmountMl:  a.AmountMl,
			Notes:     a.Notes,
			Source:    source,
			BatchID:   batchID,
		}
		id, err := s.store.InsertFluidLog(ctx, entry)
		if err != nil {
			return nil, err
		}
		return []domain.RecordRef{{Kind: domain.KindFluid, ID: id}}, nil

	case domain.ActionWellness:
		check := &domain.WellnessCheck{
			Timestamp: next(),
			DayKey:    dayKey,
			CheckTime: a.CheckTime,
			Appetite:  a.Appetite,
			Energy:    a.Energy,
			Mood:      a.Mood,
			Cyanosis:  a.Cyanosis,
			BatchID:   batchID,
		}
		id, err := s.store.InsertWellness(ctx, check)
		if err != nil {
			return nil, err
		}
		return []domain.RecordRef{{Kind: domain.KindWellness, ID: id}}, nil

	case domain.ActionGag:
		refs := make([]domain.RecordRef, 0, a.Count)
		for n := 0; n < a.Count; n++ {
			id, err := s.store.InsertGag(ctx, next(), dayKey, batchID)
			if err != nil {
				return refs, err
			}
			refs = append(refs, domain.RecordRef{Kind: domain.KindGag, ID: id})
		}
		return refs, nil

	case domain.ActionWeight:
		return nil, s.store.UpsertWeight(ctx, dayKey, a.WeightKg, a.Notes)
	}
	return nil, fmt.Errorf("unknown action kind %q", a.Kind)
}

// Undo deletes the records of a previous Apply. Weights are upserts and
// are left alone.
func (s *LoggingService) Undo(ctx context.Context, refs []domain.RecordRef) (int, error) {
	deleted := 0
	for _, ref := range refs {
		ok, err := s.store.DeleteByID(ctx, ref.Kind, ref.ID)
		if err != nil {
			return deleted, apperrors.NewDatabaseError(err).WithContext("kind", ref.Kind).WithContext("id", ref.ID)
		}
		if ok {
			deleted++
		}
	}
	s.log.InfoContext(ctx, "Undid entries", "requested", len(refs), "deleted", deleted)
	return deleted, nil
}

// DeleteEntry removes a single record for manual correction
func (s *LoggingService) DeleteEntry(ctx context.Context, kind domain.RecordKind, id uint) error {
	if !kind.Valid() {
		return apperrors.NewValidationError(apperrors.CodeInvalidAction, fmt.Sprintf("Unknown entry kind %q.", kind))
	}
	ok, err := s.store.DeleteByID(ctx, kind, id)
	if err != nil {
		return apperrors.NewDatabaseError(err)
	}
	if !ok {
		return apperrors.NewNotFoundError(fmt.Sprintf("No %s entry with id %d.", kind, id))
	}
	return nil
}

// ValidateAction rejects actions that must never reach the store
func ValidateAction(a domain.ParsedAction) error {
	switch a.Kind {
	case domain.ActionInput, domain.ActionOutput:
		if a.Kind == domain.ActionInput && !a.FluidType.IsInput() {
			return fmt.Errorf("%q is not an intake type.", a.FluidType)
		}
		if a.Kind == domain.ActionOutput && !a.FluidType.IsOutput() {
			return fmt.Errorf("%q is not an output type.", a.FluidType)
		}
		if a.AmountMl == nil {
			if !a.FluidType.AmountOptional() {
				return fmt.Errorf("An amount in ml is required for %s.", a.FluidType)
			}
			return nil
		}
		if *a.AmountMl <= 0 {
			return fmt.Errorf("The amount for %s must be positive.", a.FluidType)
		}
	case domain.ActionWellness:
		if !a.CheckTime.Valid() {
			return fmt.Errorf("Wellness checks are for 5pm or 10pm, not %q.", a.CheckTime)
		}
		for _, score := range []*int{a.Appetite, a.Energy, a.Mood, a.Cyanosis} {
			if score != nil && (*score < 1 || *score > 10) {
				return errors.New("Wellness scores must be between 1 and 10.")
			}
		}
	case domain.ActionGag:
		if a.Count < 1 {
			return errors.New("The gag count must be at least 1.")
		}
		if a.Count > MaxGagCount {
			return fmt.Errorf("The gag count must be at most %d.", MaxGagCount)
		}
	case domain.ActionWeight:
		if a.WeightKg <= 0 {
			return errors.New("The weight must be positive.")
		}
	default:
		return fmt.Errorf("Unknown action type %q.", a.Kind)
	}
	return nil
}
