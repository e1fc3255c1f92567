package domain

// ActionKind tags a ParsedAction variant
type ActionKind string

const (
	ActionInput    ActionKind = "input"
	ActionOutput   ActionKind = "output"
	ActionWellness ActionKind = "wellness"
	ActionGag      ActionKind = "gag"
	ActionWeight   ActionKind = "weight"
)

// ParsedAction is one sanitized, typed log action. Only the fields of its
// Kind are meaningful.
type ParsedAction struct {
	Kind ActionKind `json:"type"`

	// input / output
	FluidType FluidType `json:"fluidType,omitempty"`
	AmountMl  *float64  `json:"amountMl,omitempty"`

	// wellness
	CheckTime CheckTime `json:"checkTime,omitempty"`
	Appetite  *int      `json:"appetite,omitempty"`
	Energy    *int      `json:"energy,omitempty"`
	Mood      *int      `json:"mood,omitempty"`
	Cyanosis  *int      `json:"cyanosis,omitempty"`

	// gag
	Count int `json:"count,omitempty"`

	// weight
	WeightKg float64 `json:"weightKg,omitempty"`

	Notes string `json:"notes,omitempty"`
}

// Rejection records a candidate action dropped during sanitization
type Rejection struct {
	Index  int    `json:"index"`
	Kind   string `json:"kind"`
	Reason string `json:"reason"`
}

// ParseResult is the outcome of parsing one caregiver message
type ParseResult struct {
	Actions     []ParsedAction `json:"actions"`
	DateOffset  int            `json:"dateOffset"`
	Unparseable bool           `json:"unparseable"`
	// Malformed is set when the completion response could not be decoded
	Malformed bool        `json:"malformed,omitempty"`
	Rejected  []Rejection `json:"rejected,omitempty"`
}
