package services

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/vladimiradmaev/fluid-helper/internal/domain"
	apperrors "github.com/vladimiradmaev/fluid-helper/internal/errors"
	"github.com/vladimiradmaev/fluid-helper/internal/logger"
	"github.com/vladimiradmaev/fluid-helper/internal/metrics"
)

const parseInstructions = `You turn a caregiver's short message about a child into log actions.

ACTION TYPES:
- input: fluid the child drank. fluidType is one of: water, juice, vitamin_water, milk, pediasure, yogurt_drink. amountMl is the volume in ml.
- output: fluid or waste leaving the child. fluidType is one of: urine, poop, vomit. amountMl is the volume in ml; for poop it may be null.
- wellness: a scored check. checkTime is "5pm" (afternoon) or "10pm" (evening). appetite, energy, mood, cyanosis are integers 1-10 or null when not mentioned.
- gag: gag episodes. count is how many.
- weight: the child's weight. Copy the number as written into "weight" and the unit into "unit" ("kg" or "lb"). Do not convert units.

RULES:
- One message may contain several actions; return all of them in order.
- "pee", "wet diaper" and "urinated" mean urine. "BM" and "stool" mean poop. "threw up" means vomit.
- Convert ounces to ml (1 oz = 30 ml). Never invent an amount that was not given; use null instead.
- Set "dateOffset" to -1 only when the message clearly refers to yesterday; otherwise 0.
- Set "unparseable" to true when the message is not a log entry.

CRITICAL JSON FORMAT REQUIREMENTS:
- Your response MUST be a single valid JSON object
- Do not include any markdown formatting or explanatory text
- The JSON must have exactly this shape:
  {
    "actions": [
      {"type": "input", "fluidType": "pediasure", "amountMl": 120},
      {"type": "output", "fluidType": "poop", "amountMl": null},
      {"type": "wellness", "checkTime": "5pm", "appetite": 7, "energy": 6, "mood": 8, "cyanosis": null},
      {"type": "gag", "count": 2},
      {"type": "weight", "weight": 27.5, "unit": "lb"}
    ],
    "dateOffset": 0,
    "unparseable": false
  }`

// ParserService turns one caregiver message into sanitized actions. The
// completion service interprets; Sanitize decides what survives.
type ParserService struct {
	completer domain.Completer
	timeout   time.Duration
	log       *slog.Logger
}

func NewParserService(completer domain.Completer, timeout time.Duration) *ParserService {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ParserService{
		completer: completer,
		timeout:   timeout,
		log:       logger.Component("parser"),
	}
}

// Parse returns an error only when the completion call itself fails. A
// response that cannot be decoded, or that yields no valid action, comes
// back as an unparseable result.
func (s *ParserService) Parse(ctx context.Context, message string) (*domain.ParseResult, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		metrics.ParseResults.WithLabelValues(metrics.OutcomeUnparseable).Inc()
		return &domain.ParseResult{Actions: []domain.ParsedAction{}, Unparseable: true}, nil
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	raw, err := s.completer.Complete(callCtx, parseInstructions, message)
	if err != nil {
		metrics.ParseResults.WithLabelValues(metrics.OutcomeFailed).Inc()
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			return nil, apperrors.NewTimeoutError("completion", err)
		}
		return nil, apperrors.NewCompletionError(err, s.completer.Name())
	}

	candidate, ok := decodeCandidate(raw)
	if !ok {
		s.log.WarnContext(ctx, "Malformed completion response", "provider", s.completer.Name(), "response", truncate(raw, 500))
		metrics.ParseResults.WithLabelValues(metrics.OutcomeMalformed).Inc()
		return &domain.ParseResult{Actions: []domain.ParsedAction{}, Unparseable: true, Malformed: true}, nil
	}

	result := Sanitize(message, candidate)
	for _, r := range result.Rejected {
		metrics.RejectedActions.WithLabelValues(r.Kind).Inc()
		s.log.InfoContext(ctx, "Dropped candidate action", "index", r.Index, "kind", r.Kind, "reason", r.Reason)
	}
	if result.Unparseable {
		metrics.ParseResults.WithLabelValues(metrics.OutcomeUnparseable).Inc()
	} else {
		metrics.ParseResults.WithLabelValues(metrics.OutcomeParsed).Inc()
	}

	s.log.DebugContext(ctx, "Parsed message", "actions", len(result.Actions), "rejected", len(result.Rejected), "date_offset", result.DateOffset)
	return &result, nil
}

func decodeCandidate(raw string) (Candidate, bool) {
	var c Candidate
	jsonStr := extractJSON(raw)
	if jsonStr == "" {
		return c, false
	}
	if err := json.Unmarshal([]byte(jsonStr), &c); err != nil {
		return c, false
	}
	return c, true
}

// truncate keeps at most n bytes of s without splitting a rune
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
