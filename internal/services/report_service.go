package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/vladimiradmaev/fluid-helper/internal/domain"
	"github.com/vladimiradmaev/fluid-helper/internal/utils"
)

// ReportService renders the daily report sent to caregivers
type ReportService struct {
	summary  *SummaryService
	settings SettingsReader
}

func NewReportService(summary *SummaryService, settings SettingsReader) *ReportService {
	return &ReportService{summary: summary, settings: settings}
}

// BuildReport summarizes dayKey and renders it with the current settings
func (s *ReportService) BuildReport(ctx context.Context, dayKey string) (string, error) {
	summary, err := s.summary.Summarize(ctx, dayKey)
	if err != nil {
		return "", err
	}
	st, err := s.settings.Current(ctx)
	if err != nil {
		return "", err
	}
	return RenderReport(summary, LimitStatusFor(summary.TotalIntake, st), st.ChildName), nil
}

// BandEmoji is the marker shown next to a limit band
func BandEmoji(b domain.Band) string {
	switch b {
	case domain.BandYellow:
		return "🟡"
	case domain.BandRed:
		return "🔴"
	case domain.BandOver:
		return "⛔"
	default:
		return "🟢"
	}
}

// FluidLabel is the display name of a fluid type
func FluidLabel(t domain.FluidType) string {
	switch t {
	case domain.FluidVitaminWater:
		return "Vitamin water"
	case domain.FluidPediasure:
		return "PediaSure"
	case domain.FluidYogurtDrink:
		return "Yogurt drink"
	}
	s := string(t)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// RenderReport is deterministic: the same summary always renders the same text
func RenderReport(summary *domain.DaySummary, limit domain.LimitStatus, childName string) string {
	var sb strings.Builder

	title := "Daily report"
	if childName != "" {
		title = childName + "'s daily report"
	}
	fmt.Fprintf(&sb, "📋 %s for %s\n\n", title, summary.DayKey)

	fmt.Fprintf(&sb, "%s Intake: %s / %s ml (%.0f%%)\n",
		BandEmoji(limit.Band), utils.FormatMl(limit.TotalMl), utils.FormatMl(limit.LimitMl), limit.Percent)
	if limit.Exceeded {
		fmt.Fprintf(&sb, "⚠️ Over the limit by %s ml\n", utils.FormatMl(limit.OverByMl))
	} else {
		fmt.Fprintf(&sb, "Remaining: %s ml\n", utils.FormatMl(limit.RemainingMl))
	}
	for _, tt := range summary.IntakeByType {
		fmt.Fprintf(&sb, "  • %s: %s ml\n", FluidLabel(tt.FluidType), utils.FormatMl(tt.AmountMl))
	}

	sb.WriteString("\nOutputs:\n")
	outputs := summary.OutputsByType()
	if len(outputs) == 0 {
		sb.WriteString("  none logged\n")
	}
	for _, o := range outputs {
		fmt.Fprintf(&sb, "  • %s: %dx", FluidLabel(o.FluidType), o.Count)
		if o.AmountMl > 0 {
			fmt.Fprintf(&sb, ", %s ml", utils.FormatMl(o.AmountMl))
		}
		sb.WriteString("\n")
	}

	fmt.Fprintf(&sb, "\nGags: %d\n", summary.GagCount)

	for _, ct := range []domain.CheckTime{domain.CheckAfternoon, domain.CheckEvening} {
		w := summary.LatestWellness(ct)
		if w == nil {
			fmt.Fprintf(&sb, "Wellness %s: not logged\n", ct)
			continue
		}
		fmt.Fprintf(&sb, "Wellness %s: appetite %s, energy %s, mood %s, cyanosis %s\n",
			ct, score(w.Appetite), score(w.Energy), score(w.Mood), score(w.Cyanosis))
	}

	if summary.Weight != nil {
		fmt.Fprintf(&sb, "Weight: %s kg\n", strconv.FormatFloat(summary.Weight.WeightKg, 'f', -1, 64))
	}

	return strings.TrimRight(sb.String(), "\n")
}

func score(v *int) string {
	if v == nil {
		return "-"
	}
	return strconv.Itoa(*v)
}
