package menus

import (
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/vladimiradmaev/fluid-helper/internal/bot/keyboards"
	"github.com/vladimiradmaev/fluid-helper/internal/domain"
	"github.com/vladimiradmaev/fluid-helper/internal/services"
	"github.com/vladimiradmaev/fluid-helper/internal/utils"
)

// Sender is the part of the Telegram API the bot talks through
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

const mainMenuText = `💧 *Fluid Helper* keeps the daily fluid log

Just write what happened, for example:
• 120ml pediasure and 45ml water
• pee 80ml, pooped
• gagged 3 times
• 5pm check: appetite 6, energy 7, mood 8
• weight 27.5 lbs
• yesterday 60ml milk

Choose an action:`

// HelpText lists the commands
const HelpText = `Commands:
/today - intake and outputs for today
/yesterday - the same for yesterday
/report - full daily report
/undo - remove the entries from your last message
/limit <ml> - change the daily limit
/help - show this message

The day starts at the configured hour, so a feed at 2am still counts for the previous day.`

// SendMainMenu sends the main menu to a chat
func SendMainMenu(api Sender, chatID int64) error {
	msg := tgbotapi.NewMessage(chatID, mainMenuText)
	msg.ParseMode = "Markdown"
	msg.ReplyMarkup = keyboards.MainMenu()
	_, err := api.Send(msg)
	return err
}

// SendText sends plain text, optionally with a keyboard
func SendText(api Sender, chatID int64, text string, markup *tgbotapi.InlineKeyboardMarkup) error {
	msg := tgbotapi.NewMessage(chatID, text)
	if markup != nil {
		msg.ReplyMarkup = *markup
	}
	_, err := api.Send(msg)
	return err
}

// DescribeAction renders one logged action as a short line
func DescribeAction(a domain.ParsedAction) string {
	switch a.Kind {
	case domain.ActionInput, domain.ActionOutput:
		label := services.FluidLabel(a.FluidType)
		if a.AmountMl == nil {
			return label
		}
		return fmt.Sprintf("%s %s ml", label, utils.FormatMl(*a.AmountMl))
	case domain.ActionWellness:
		var scores []string
		for _, s := range []struct {
			name  string
			value *int
		}{
			{"appetite", a.Appetite},
			{"energy", a.Energy},
			{"mood", a.Mood},
			{"cyanosis", a.Cyanosis},
		} {
			if s.value != nil {
				scores = append(scores, fmt.Sprintf("%s %d", s.name, *s.value))
			}
		}
		if len(scores) == 0 {
			return fmt.Sprintf("Wellness %s", a.CheckTime)
		}
		return fmt.Sprintf("Wellness %s: %s", a.CheckTime, strings.Join(scores, ", "))
	case domain.ActionGag:
		if a.Count == 1 {
			return "Gag"
		}
		return fmt.Sprintf("Gag x%d", a.Count)
	case domain.ActionWeight:
		return fmt.Sprintf("Weight %s kg", strconv.FormatFloat(a.WeightKg, 'f', -1, 64))
	}
	return string(a.Kind)
}

// LimitLine renders intake against the limit
func LimitLine(limit domain.LimitStatus) string {
	line := fmt.Sprintf("%s Intake: %s / %s ml (%.0f%%)",
		services.BandEmoji(limit.Band), utils.FormatMl(limit.TotalMl), utils.FormatMl(limit.LimitMl), limit.Percent)
	if limit.Exceeded {
		return line + fmt.Sprintf("\n⚠️ Over the daily limit by %s ml!", utils.FormatMl(limit.OverByMl))
	}
	return line + fmt.Sprintf("\nRemaining: %s ml", utils.FormatMl(limit.RemainingMl))
}

// FormatConfirmation renders the reply to a logged message
func FormatConfirmation(result *services.ApplyResult, today string) string {
	var sb strings.Builder

	day := "today"
	if result.Backdated(today) {
		day = "yesterday"
	}
	fmt.Fprintf(&sb, "✅ Logged for %s (%s):\n", day, result.DayKey)

	failed := make(map[int]bool, len(result.Failed))
	for _, f := range result.Failed {
		failed[f.Index] = true
	}
	for i, a := range result.Actions {
		if failed[i] {
			continue
		}
		fmt.Fprintf(&sb, "• %s\n", DescribeAction(a))
	}
	if len(result.Failed) > 0 {
		sb.WriteString("\n❗ Could not save:\n")
		for _, f := range result.Failed {
			fmt.Fprintf(&sb, "• %s\n", DescribeAction(f.Action))
		}
	}

	sb.WriteString("\n")
	sb.WriteString(LimitLine(result.Limit))
	return sb.String()
}

// FormatStatus renders a short view of one day
func FormatStatus(summary *domain.DaySummary, limit domain.LimitStatus) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "📊 %s\n\n", summary.DayKey)
	sb.WriteString(LimitLine(limit))
	sb.WriteString("\n")

	for _, tt := range summary.IntakeByType {
		fmt.Fprintf(&sb, "• %s: %s ml\n", services.FluidLabel(tt.FluidType), utils.FormatMl(tt.AmountMl))
	}

	outputs := summary.OutputsByType()
	if len(outputs) > 0 {
		parts := make([]string, 0, len(outputs))
		for _, o := range outputs {
			parts = append(parts, fmt.Sprintf("%s %dx", strings.ToLower(services.FluidLabel(o.FluidType)), o.Count))
		}
		fmt.Fprintf(&sb, "Outputs: %s\n", strings.Join(parts, ", "))
	}
	if summary.GagCount > 0 {
		fmt.Fprintf(&sb, "Gags: %d\n", summary.GagCount)
	}
	return strings.TrimRight(sb.String(), "\n")
}
