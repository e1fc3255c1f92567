package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vladimiradmaev/fluid-helper/internal/domain"
)

func TestBuildReport(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	_, err := h.logging.Apply(ctx, []domain.ParsedAction{
		input(domain.FluidPediasure, 1000),
		input(domain.FluidWater, 250),
		{Kind: domain.ActionOutput, FluidType: domain.FluidUrine, AmountMl: ml(80)},
		{Kind: domain.ActionOutput, FluidType: domain.FluidPoop},
		{Kind: domain.ActionGag, Count: 2},
		{Kind: domain.ActionWellness, CheckTime: domain.CheckAfternoon, Appetite: intp(3), Mood: intp(5)},
		{Kind: domain.ActionWellness, CheckTime: domain.CheckAfternoon, Appetite: intp(6), Mood: intp(7)},
		{Kind: domain.ActionWeight, WeightKg: 12.47},
	}, "", domain.SourceAPI)
	require.NoError(t, err)

	report, err := h.reports.BuildReport(ctx, "2024-05-01")
	require.NoError(t, err)

	assert.Contains(t, report, "Sam's daily report for 2024-05-01")
	assert.Contains(t, report, "⛔ Intake: 1250 / 1200 ml (104%)")
	assert.Contains(t, report, "Over the limit by 50 ml")
	assert.Contains(t, report, "PediaSure: 1000 ml")
	assert.Contains(t, report, "Water: 250 ml")
	assert.Contains(t, report, "Urine: 1x, 80 ml")
	assert.Contains(t, report, "Poop: 1x\n")
	assert.Contains(t, report, "Gags: 2")
	assert.Contains(t, report, "Wellness 5pm: appetite 6, energy -, mood 7, cyanosis -")
	assert.Contains(t, report, "Wellness 10pm: not logged")
	assert.Contains(t, report, "Weight: 12.47 kg")

	again, err := h.reports.BuildReport(ctx, "2024-05-01")
	require.NoError(t, err)
	assert.Equal(t, report, again)
}

func TestRenderReportEmptyDay(t *testing.T) {
	summary := Reduce("2024-05-01", nil, nil, nil)
	limit := LimitStatusFor(0, Settings{DailyLimitMl: 1200, WarnPercent: 70, CriticalPercent: 90})

	report := RenderReport(summary, limit, "")
	assert.Contains(t, report, "Daily report for 2024-05-01")
	assert.Contains(t, report, "🟢 Intake: 0 / 1200 ml (0%)")
	assert.Contains(t, report, "Remaining: 1200 ml")
	assert.Contains(t, report, "none logged")
	assert.NotContains(t, report, "Weight")
}

func TestFluidLabel(t *testing.T) {
	assert.Equal(t, "Vitamin water", FluidLabel(domain.FluidVitaminWater))
	assert.Equal(t, "Juice", FluidLabel(domain.FluidJuice))
	assert.Equal(t, "", FluidLabel(""))
}
