package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/vladimiradmaev/fluid-helper/internal/config"
	"github.com/vladimiradmaev/fluid-helper/internal/domain"
)

var errStoreDown = errors.New("store down")

// memoryStore is an in-memory EventStore with per-kind failure injection
type memoryStore struct {
	mu       sync.Mutex
	nextID   uint
	logs     []domain.FluidLogEntry
	wellness []domain.WellnessCheck
	gags     []domain.GagEvent
	weights  map[string]domain.WeightEntry

	failFluid  map[domain.FluidType]bool
	failAll    bool
	failGags   bool
	failReads  bool
	writeCalls int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		weights:   make(map[string]domain.WeightEntry),
		failFluid: make(map[domain.FluidType]bool),
	}
}

func (s *memoryStore) id() uint {
	s.nextID++
	return s.nextID
}

func (s *memoryStore) InsertFluidLog(_ context.Context, entry *domain.FluidLogEntry) (uint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writeCalls++
	if s.failAll || s.failFluid[entry.FluidType] {
		return 0, errStoreDown
	}
	entry.ID = s.id()
	s.logs = append(s.logs, *entry)
	return entry.ID, nil
}

func (s *memoryStore) InsertWellness(_ context.Context, check *domain.WellnessCheck) (uint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writeCalls++
	if s.failAll {
		return 0, errStoreDown
	}
	check.ID = s.id()
	s.wellness = append(s.wellness, *check)
	return check.ID, nil
}

func (s *memoryStore) InsertGag(_ context.Context, ts time.Time, dayKey, batchID string) (uint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writeCalls++
	if s.failAll || s.failGags {
		return 0, errStoreDown
	}
	g := domain.GagEvent{ID: s.id(), Timestamp: ts, DayKey: dayKey, BatchID: batchID}
	s.gags = append(s.gags, g)
	return g.ID, nil
}

func (s *memoryStore) UpsertWeight(_ context.Context, date string, kg float64, notes string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writeCalls++
	if s.failAll {
		return errStoreDown
	}
	s.weights[date] = domain.WeightEntry{Date: date, WeightKg: kg, Notes: notes}
	return nil
}

func (s *memoryStore) FluidLogsByDay(_ context.Context, dayKey string) ([]domain.FluidLogEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failReads {
		return nil, errStoreDown
	}
	var out []domain.FluidLogEntry
	for _, e := range s.logs {
		if e.DayKey == dayKey {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].ID < out[j].ID
		}
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out, nil
}

func (s *memoryStore) WellnessByDay(_ context.Context, dayKey string) ([]domain.WellnessCheck, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failReads {
		return nil, errStoreDown
	}
	var out []domain.WellnessCheck
	for _, w := range s.wellness {
		if w.DayKey == dayKey {
			out = append(out, w)
		}
	}
	return out, nil
}

func (s *memoryStore) GagsByDay(_ context.Context, dayKey string) ([]domain.GagEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failReads {
		return nil, errStoreDown
	}
	var out []domain.GagEvent
	for _, g := range s.gags {
		if g.DayKey == dayKey {
			out = append(out, g)
		}
	}
	return out, nil
}

func (s *memoryStore) WeightByDate(_ context.Context, date string) (*domain.WeightEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failReads {
		return nil, errStoreDown
	}
	w, ok := s.weights[date]
	if !ok {
		return nil, nil
	}
	return &w, nil
}

func (s *memoryStore) DeleteByID(_ context.Context, kind domain.RecordKind, id uint) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch kind {
	case domain.KindFluid:
		for i, e := range s.logs {
			if e.ID == id {
				s.logs = append(s.logs[:i], s.logs[i+1:]...)
				return true, nil
			}
		}
	case domain.KindWellness:
		for i, w := range s.wellness {
			if w.ID == id {
				s.wellness = append(s.wellness[:i], s.wellness[i+1:]...)
				return true, nil
			}
		}
	case domain.KindGag:
		for i, g := range s.gags {
			if g.ID == id {
				s.gags = append(s.gags[:i], s.gags[i+1:]...)
				return true, nil
			}
		}
	default:
		return false, errors.New("unknown kind")
	}
	return false, nil
}

func (s *memoryStore) rowCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.logs) + len(s.wellness) + len(s.gags) + len(s.weights)
}

// memorySettings is an in-memory SettingsStore
type memorySettings struct {
	mu      sync.Mutex
	values  map[string]string
	written []string
	failGet bool
}

func newMemorySettings() *memorySettings {
	return &memorySettings{values: make(map[string]string)}
}

func (s *memorySettings) GetSetting(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failGet {
		return "", false, errStoreDown
	}
	v, ok := s.values[key]
	return v, ok, nil
}

func (s *memorySettings) SetSetting(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	s.written = append(s.written, key)
	return nil
}

// fakeCompleter returns a canned response or error
type fakeCompleter struct {
	name     string
	response string
	err      error
	block    bool
	calls    int
	lastMsg  string
}

func (c *fakeCompleter) Name() string {
	if c.name == "" {
		return "fake"
	}
	return c.name
}

func (c *fakeCompleter) Complete(ctx context.Context, _, message string) (string, error) {
	c.calls++
	c.lastMsg = message
	if c.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if c.err != nil {
		return "", c.err
	}
	return c.response, nil
}

var testDefaults = config.DefaultSettings{
	DailyLimitMl:    1200,
	DayStartHour:    6,
	Timezone:        "America/Los_Angeles",
	WarnPercent:     70,
	CriticalPercent: 90,
	ChildName:       "Sam",
}

// fixedClock reads *t, so tests can move time forward
func fixedClock(t *time.Time) func() time.Time {
	return func() time.Time { return *t }
}

func laTime(y int, m time.Month, d, h, min int) time.Time {
	loc, err := time.LoadLocation("America/Los_Angeles")
	if err != nil {
		panic(err)
	}
	return time.Date(y, m, d, h, min, 0, 0, loc)
}

type harness struct {
	store    *memoryStore
	settings *memorySettings
	st       *SettingsService
	days     *DayResolver
	summary  *SummaryService
	parser   *ParserService
	logging  *LoggingService
	reports  *ReportService
	comp     *fakeCompleter
	now      time.Time
}

func newHarness() *harness {
	h := &harness{
		store:    newMemoryStore(),
		settings: newMemorySettings(),
		comp:     &fakeCompleter{},
		now:      laTime(2024, 5, 1, 12, 0),
	}
	clock := fixedClock(&h.now)
	h.st = NewSettingsService(h.settings, testDefaults)
	h.days = NewDayResolver(h.st, clock)
	h.summary = NewSummaryService(h.store, h.st, h.days)
	h.parser = NewParserService(h.comp, time.Second)
	h.logging = NewLoggingService(h.store, h.st, h.summary, h.parser, clock)
	h.reports = NewReportService(h.summary, h.st)
	return h
}

func ml(v float64) *float64 { return &v }

func intp(v int) *int { return &v }
