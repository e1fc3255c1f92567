package domain

// TypeTotal is the summed volume of one fluid type
type TypeTotal struct {
	FluidType FluidType `json:"fluidType"`
	AmountMl  float64   `json:"amountMl"`
}

// DaySummary is the reduced view of one fluid day
type DaySummary struct {
	DayKey       string          `json:"dayKey"`
	Inputs       []FluidLogEntry `json:"inputs"`
	Outputs      []FluidLogEntry `json:"outputs"`
	TotalIntake  float64         `json:"totalIntake"`
	IntakeByType []TypeTotal     `json:"intakeByType"`
	Wellness     []WellnessCheck `json:"wellness"`
	Gags         []GagEvent      `json:"gags"`
	GagCount     int             `json:"gagCount"`
	Weight       *WeightEntry    `json:"weight,omitempty"`
}

// IntakeOf returns the summed intake for one fluid type
func (s *DaySummary) IntakeOf(t FluidType) float64 {
	for _, tt := range s.IntakeByType {
		if tt.FluidType == t {
			return tt.AmountMl
		}
	}
	return 0
}

// LatestWellness returns the most recently inserted check for a period.
// Checks are append-only; the last one wins.
func (s *DaySummary) LatestWellness(c CheckTime) *WellnessCheck {
	var latest *WellnessCheck
	for i := range s.Wellness {
		w := &s.Wellness[i]
		if w.CheckTime != c {
			continue
		}
		if latest == nil || w.ID > latest.ID {
			latest = w
		}
	}
	return latest
}

// OutputSummary groups outputs of one type
type OutputSummary struct {
	FluidType FluidType
	Count     int
	AmountMl  float64
}

// OutputsByType groups outputs in display order, omitting absent types
func (s *DaySummary) OutputsByType() []OutputSummary {
	var out []OutputSummary
	for _, t := range OutputFluidTypes {
		o := OutputSummary{FluidType: t}
		for _, e := range s.Outputs {
			if e.FluidType == t {
				o.Count++
				o.AmountMl += e.Amount()
			}
		}
		if o.Count > 0 {
			out = append(out, o)
		}
	}
	return out
}

// Band is the color band of intake against the daily limit
type Band string

const (
	BandGreen  Band = "green"
	BandYellow Band = "yellow"
	BandRed    Band = "red"
	BandOver   Band = "over"
)

// LimitStatus is intake measured against the limit in effect at read time
type LimitStatus struct {
	LimitMl     float64 `json:"limitMl"`
	TotalMl     float64 `json:"totalMl"`
	Percent     float64 `json:"percent"`
	Band        Band    `json:"band"`
	Exceeded    bool    `json:"exceeded"`
	OverByMl    float64 `json:"overByMl"`
	RemainingMl float64 `json:"remainingMl"`
}
