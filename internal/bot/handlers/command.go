package handlers

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/vladimiradmaev/fluid-helper/internal/bot/keyboards"
	"github.com/vladimiradmaev/fluid-helper/internal/bot/menus"
	"github.com/vladimiradmaev/fluid-helper/internal/bot/state"
	"github.com/vladimiradmaev/fluid-helper/internal/logger"
	"github.com/vladimiradmaev/fluid-helper/internal/metrics"
	"github.com/vladimiradmaev/fluid-helper/internal/services"
)

// CommandHandler handles bot commands
type CommandHandler struct {
	api          menus.Sender
	deps         Dependencies
	stateManager state.StateManager
}

// NewCommandHandler creates a new command handler
func NewCommandHandler(api menus.Sender, deps Dependencies, stateManager state.StateManager) *CommandHandler {
	return &CommandHandler{
		api:          api,
		deps:         deps,
		stateManager: stateManager,
	}
}

// Handle processes a command message
func (h *CommandHandler) Handle(ctx context.Context, message *tgbotapi.Message) error {
	chatID := message.Chat.ID
	logger.Info("Handling command", "command", message.Command(), "chat_id", chatID)

	switch message.Command() {
	case "start":
		h.stateManager.SetUserState(chatID, state.None)
		return menus.SendMainMenu(h.api, chatID)
	case "help":
		return menus.SendText(h.api, chatID, menus.HelpText, nil)
	case "today":
		return sendStatus(ctx, h.api, h.deps, chatID, h.deps.Days.Today)
	case "yesterday":
		return sendStatus(ctx, h.api, h.deps, chatID, h.deps.Days.Yesterday)
	case "report":
		return sendReport(ctx, h.api, h.deps, chatID)
	case "undo":
		return undoLast(ctx, h.api, h.deps, h.stateManager, chatID)
	case "limit":
		return h.handleLimit(ctx, chatID, strings.TrimSpace(message.CommandArguments()))
	default:
		return menus.SendText(h.api, chatID, "Unknown command. Use /help to see the available commands.", nil)
	}
}

// handleLimit sets the limit directly or asks for it
func (h *CommandHandler) handleLimit(ctx context.Context, chatID int64, arg string) error {
	if arg == "" {
		return askForLimit(ctx, h.api, h.deps, h.stateManager, chatID)
	}
	return setLimit(ctx, h.api, h.deps, h.stateManager, chatID, arg)
}

func sendStatus(ctx context.Context, api menus.Sender, deps Dependencies, chatID int64, day func(context.Context) (string, error)) error {
	key, err := day(ctx)
	if err != nil {
		return replyError(ctx, api, chatID, err)
	}
	summary, err := deps.SummarySvc.Summarize(ctx, key)
	if err != nil {
		return replyError(ctx, api, chatID, err)
	}
	limit, err := deps.SummarySvc.Limit(ctx, summary)
	if err != nil {
		return replyError(ctx, api, chatID, err)
	}
	markup := keyboards.MainMenu()
	return menus.SendText(api, chatID, menus.FormatStatus(summary, limit), &markup)
}

func sendReport(ctx context.Context, api menus.Sender, deps Dependencies, chatID int64) error {
	key, err := deps.Days.Today(ctx)
	if err != nil {
		return replyError(ctx, api, chatID, err)
	}
	report, err := deps.ReportSvc.BuildReport(ctx, key)
	if err != nil {
		return replyError(ctx, api, chatID, err)
	}
	metrics.ReportsSent.WithLabelValues("command").Inc()
	return menus.SendText(api, chatID, report, nil)
}

func undoLast(ctx context.Context, api menus.Sender, deps Dependencies, sm state.StateManager, chatID int64) error {
	refs, ok := sm.GetLastBatch(chatID)
	if !ok {
		return menus.SendText(api, chatID, "There is nothing to undo.", nil)
	}
	deleted, err := deps.LoggingSvc.Undo(ctx, refs)
	if err != nil {
		return replyError(ctx, api, chatID, err)
	}
	sm.ClearLastBatch(chatID)
	return menus.SendText(api, chatID, fmt.Sprintf("↩️ Removed %d entries from your last message.", deleted), nil)
}

func askForLimit(ctx context.Context, api menus.Sender, deps Dependencies, sm state.StateManager, chatID int64) error {
	st, err := deps.SettingsSvc.Current(ctx)
	if err != nil {
		return replyError(ctx, api, chatID, err)
	}
	sm.SetUserState(chatID, state.WaitingForLimit)
	markup := keyboards.BackMenu()
	text := fmt.Sprintf("The daily limit is %.0f ml. Send the new limit in ml:", st.DailyLimitMl)
	return menus.SendText(api, chatID, text, &markup)
}

func setLimit(ctx context.Context, api menus.Sender, deps Dependencies, sm state.StateManager, chatID int64, value string) error {
	value = strings.TrimSpace(strings.TrimSuffix(strings.ToLower(strings.TrimSpace(value)), "ml"))
	if err := deps.SettingsSvc.Set(ctx, services.KeyDailyLimitMl, value); err != nil {
		return replyError(ctx, api, chatID, err)
	}
	sm.SetUserState(chatID, state.None)
	return menus.SendText(api, chatID, fmt.Sprintf("✅ Daily limit set to %s ml.", value), nil)
}
