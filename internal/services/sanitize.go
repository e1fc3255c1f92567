package services

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/vladimiradmaev/fluid-helper/internal/domain"
	"github.com/vladimiradmaev/fluid-helper/internal/utils"
)

// PoundsPerKg converts pounds to kilograms by division
const PoundsPerKg = 2.205

// MaxGagCount bounds one gag action; a larger count is a misread, not a log
const MaxGagCount = 20

// Candidate is the completion service's raw answer. Field types are loose on
// purpose; nothing in it is trusted until Sanitize has run.
type Candidate struct {
	Actions     []map[string]any `json:"actions"`
	DateOffset  any              `json:"dateOffset"`
	Unparseable *bool            `json:"unparseable"`
}

// Rejection reasons
const (
	reasonUnknownKind   = "unknown action type"
	reasonUnknownFluid  = "unknown fluid type"
	reasonMissingAmount = "missing or non-positive amount"
	reasonBadWeight     = "missing or non-positive weight"
	reasonMixedUnits    = "weight does not match any unit in the message"
	reasonGagCount      = "gag count out of range"
)

var (
	poundsPattern = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(?:lbs?|pounds?)\b`)
	kilosPattern  = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(?:kgs?|kilos?|kilograms?)\b`)
)

// Sanitize filters a candidate into typed actions. Invalid actions are
// dropped and collected in Rejected; they never become errors.
func Sanitize(message string, c Candidate) domain.ParseResult {
	result := domain.ParseResult{
		Actions:  []domain.ParsedAction{},
		Rejected: []domain.Rejection{},
	}

	for i, raw := range c.Actions {
		kind := strings.ToLower(strings.TrimSpace(stringField(raw, "type")))
		var (
			action domain.ParsedAction
			reason string
		)
		switch domain.ActionKind(kind) {
		case domain.ActionInput:
			action, reason = sanitizeFluid(raw, domain.ActionInput)
		case domain.ActionOutput:
			action, reason = sanitizeFluid(raw, domain.ActionOutput)
		case domain.ActionWellness:
			action = sanitizeWellness(raw)
		case domain.ActionGag:
			action, reason = sanitizeGag(raw)
		case domain.ActionWeight:
			action, reason = sanitizeWeight(message, raw)
		default:
			reason = reasonUnknownKind
		}

		if reason != "" {
			result.Rejected = append(result.Rejected, domain.Rejection{Index: i, Kind: kind, Reason: reason})
			continue
		}
		action.Notes = strings.TrimSpace(stringField(raw, "notes"))
		result.Actions = append(result.Actions, action)
	}

	if offset, ok := toNumber(c.DateOffset); ok && offset == -1 {
		result.DateOffset = -1
	}

	// Surviving actions decide; the service's own flag cannot override an
	// empty list.
	result.Unparseable = len(result.Actions) == 0
	return result
}

func sanitizeFluid(raw map[string]any, kind domain.ActionKind) (domain.ParsedAction, string) {
	fluid := normalizeFluidType(stringField(raw, "fluidType"))
	valid := fluid.IsInput()
	if kind == domain.ActionOutput {
		valid = fluid.IsOutput()
	}
	if !valid {
		return domain.ParsedAction{}, reasonUnknownFluid
	}

	var amount *float64
	if v, ok := toNumber(raw["amountMl"]); ok && v > 0 {
		rounded := utils.Round(v, 1)
		if rounded > 0 {
			amount = &rounded
		}
	}
	// An unmeasured volume is dropped, never recorded as zero
	if amount == nil && !fluid.AmountOptional() {
		return domain.ParsedAction{}, reasonMissingAmount
	}

	return domain.ParsedAction{Kind: kind, FluidType: fluid, AmountMl: amount}, ""
}

func sanitizeWellness(raw map[string]any) domain.ParsedAction {
	check := domain.CheckTime(strings.ToLower(strings.ReplaceAll(stringField(raw, "checkTime"), " ", "")))
	if !check.Valid() {
		check = domain.CheckAfternoon
	}
	return domain.ParsedAction{
		Kind:      domain.ActionWellness,
		CheckTime: check,
		Appetite:  clampScore(raw["appetite"]),
		Energy:    clampScore(raw["energy"]),
		Mood:      clampScore(raw["mood"]),
		Cyanosis:  clampScore(raw["cyanosis"]),
	}
}

func sanitizeGag(raw map[string]any) (domain.ParsedAction, string) {
	count := 1
	if v, ok := toNumber(raw["count"]); ok {
		v = math.Round(v)
		if v > MaxGagCount {
			return domain.ParsedAction{}, reasonGagCount
		}
		if v >= 1 {
			count = int(v)
		}
	}
	return domain.ParsedAction{Kind: domain.ActionGag, Count: count}, ""
}

// unitWeight is a number written with a weight unit in the message
type unitWeight struct {
	value  float64
	pounds bool
}

func (w unitWeight) kg() float64 {
	if w.pounds {
		return w.value / PoundsPerKg
	}
	return w.value
}

func unitWeights(message string) []unitWeight {
	var out []unitWeight
	for _, p := range []struct {
		re     *regexp.Regexp
		pounds bool
	}{{poundsPattern, true}, {kilosPattern, false}} {
		for _, m := range p.re.FindAllStringSubmatch(message, -1) {
			v, err := strconv.ParseFloat(m[1], 64)
			if err == nil {
				out = append(out, unitWeight{value: v, pounds: p.pounds})
			}
		}
	}
	return out
}

// sanitizeWeight prefers a weight written in the message itself. Pounds are
// converted here; the service's number is taken as kilograms only when the
// message carries no unit. With several unit numbers in the message, the
// service's number must match them in a single unit.
func sanitizeWeight(message string, raw map[string]any) (domain.ParsedAction, string) {
	v, hasValue := toNumber(raw["weight"])
	if !hasValue {
		v, hasValue = toNumber(raw["weightKg"])
	}
	unit := strings.ToLower(stringField(raw, "unit"))
	statedPounds := strings.HasPrefix(unit, "lb") || strings.HasPrefix(unit, "pound")
	statedKilos := strings.HasPrefix(unit, "kg") || strings.HasPrefix(unit, "kilo")

	var kg float64
	switch found := unitWeights(message); len(found) {
	case 0:
		if !hasValue {
			return domain.ParsedAction{}, reasonBadWeight
		}
		kg = v
		if statedPounds {
			kg = v / PoundsPerKg
		}
	case 1:
		kg = found[0].kg()
	default:
		if !hasValue {
			return domain.ParsedAction{}, reasonMixedUnits
		}
		var match *unitWeight
		for i := range found {
			w := found[i]
			if math.Abs(w.value-v) > 0.005 || (statedPounds && !w.pounds) || (statedKilos && w.pounds) {
				continue
			}
			if match != nil && match.pounds != w.pounds {
				return domain.ParsedAction{}, reasonMixedUnits
			}
			match = &w
		}
		if match == nil {
			return domain.ParsedAction{}, reasonMixedUnits
		}
		kg = match.kg()
	}

	kg = utils.Round(kg, 2)
	if kg <= 0 {
		return domain.ParsedAction{}, reasonBadWeight
	}
	return domain.ParsedAction{Kind: domain.ActionWeight, WeightKg: kg}, ""
}

func normalizeFluidType(s string) domain.FluidType {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer(" ", "_", "-", "_").Replace(s)
	return domain.FluidType(s)
}

// clampScore coerces a score to an integer in [1,10], or nil when absent
func clampScore(v any) *int {
	f, ok := toNumber(v)
	if !ok {
		return nil
	}
	n := int(math.Round(math.Max(1, math.Min(10, f))))
	return &n
}

func stringField(raw map[string]any, key string) string {
	s, _ := raw[key].(string)
	return s
}

func toNumber(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case int:
		f = float64(n)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
