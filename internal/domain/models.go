package domain

import (
	"time"
)

// EntryType separates intake from output
type EntryType string

const (
	EntryInput  EntryType = "input"
	EntryOutput EntryType = "output"
)

// FluidType is the kind of fluid taken in or passed
type FluidType string

const (
	FluidWater        FluidType = "water"
	FluidJuice        FluidType = "juice"
	FluidVitaminWater FluidType = "vitamin_water"
	FluidMilk         FluidType = "milk"
	FluidPediasure    FluidType = "pediasure"
	FluidYogurtDrink  FluidType = "yogurt_drink"

	FluidUrine FluidType = "urine"
	FluidPoop  FluidType = "poop"
	FluidVomit FluidType = "vomit"
)

// InputFluidTypes lists intake types in display order
var InputFluidTypes = []FluidType{
	FluidWater, FluidJuice, FluidVitaminWater, FluidMilk, FluidPediasure, FluidYogurtDrink,
}

// OutputFluidTypes lists output types in display order
var OutputFluidTypes = []FluidType{FluidUrine, FluidPoop, FluidVomit}

// IsInput reports whether t is a valid intake type
func (t FluidType) IsInput() bool {
	for _, f := range InputFluidTypes {
		if f == t {
			return true
		}
	}
	return false
}

// IsOutput reports whether t is a valid output type
func (t FluidType) IsOutput() bool {
	for _, f := range OutputFluidTypes {
		if f == t {
			return true
		}
	}
	return false
}

// AmountOptional reports whether a fluid type may be logged without a volume
func (t FluidType) AmountOptional() bool {
	return t == FluidPoop
}

// CheckTime is one of the two daily wellness observation windows
type CheckTime string

const (
	CheckAfternoon CheckTime = "5pm"
	CheckEvening   CheckTime = "10pm"
)

// Valid reports whether c is a known observation window
func (c CheckTime) Valid() bool {
	return c == CheckAfternoon || c == CheckEvening
}

// Source tags where a record came from
type Source string

const (
	SourceTelegram Source = "telegram"
	SourceChat     Source = "chat"
	SourceAPI      Source = "api"
	SourceAlexa    Source = "alexa"
	SourceSeed     Source = "seed"
)

// FluidLogEntry is one intake or output event
type FluidLogEntry struct {
	ID        uint
	Timestamp time.Time
	DayKey    string
	EntryType EntryType
	FluidType FluidType
	AmountMl  *float64 // nil only for poop
	Notes     string
	Source    Source
	BatchID   string
}

// Amount returns the logged volume, treating nil as zero
func (e FluidLogEntry) Amount() float64 {
	if e.AmountMl == nil {
		return 0
	}
	return *e.AmountMl
}

// WellnessCheck is one scored observation for a period of the day
type WellnessCheck struct {
	ID        uint
	Timestamp time.Time
	DayKey    string
	CheckTime CheckTime
	Appetite  *int
	Energy    *int
	Mood      *int
	Cyanosis  *int
	BatchID   string
}

// GagEvent is a single gag episode
type GagEvent struct {
	ID        uint
	Timestamp time.Time
	DayKey    string
	BatchID   string
}

// WeightEntry is the weight for one day; one per date
type WeightEntry struct {
	Date      string
	WeightKg  float64
	Notes     string
	UpdatedAt time.Time
}

// RecordKind names a deletable record table
type RecordKind string

const (
	KindFluid    RecordKind = "fluid"
	KindWellness RecordKind = "wellness"
	KindGag      RecordKind = "gag"
)

// Valid reports whether k names a deletable record kind
func (k RecordKind) Valid() bool {
	return k == KindFluid || k == KindWellness || k == KindGag
}

// RecordRef points at one persisted record
type RecordRef struct {
	Kind RecordKind `json:"kind"`
	ID   uint       `json:"id"`
}
