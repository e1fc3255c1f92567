package handlers

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/vladimiradmaev/fluid-helper/internal/bot/keyboards"
	"github.com/vladimiradmaev/fluid-helper/internal/bot/menus"
	"github.com/vladimiradmaev/fluid-helper/internal/bot/state"
	"github.com/vladimiradmaev/fluid-helper/internal/logger"
)

// CallbackHandler handles callback query messages
type CallbackHandler struct {
	api          menus.Sender
	deps         Dependencies
	stateManager state.StateManager
}

// NewCallbackHandler creates a new callback handler
func NewCallbackHandler(api menus.Sender, deps Dependencies, stateManager state.StateManager) *CallbackHandler {
	return &CallbackHandler{
		api:          api,
		deps:         deps,
		stateManager: stateManager,
	}
}

// Handle processes a callback query
func (h *CallbackHandler) Handle(ctx context.Context, query *tgbotapi.CallbackQuery) error {
	// Answer the callback query first
	callback := tgbotapi.NewCallback(query.ID, "")
	if _, err := h.api.Request(callback); err != nil {
		logger.Warn("Failed to answer callback query", "error", err)
	}

	chatID := query.Message.Chat.ID
	switch query.Data {
	case keyboards.CallbackToday:
		return sendStatus(ctx, h.api, h.deps, chatID, h.deps.Days.Today)
	case keyboards.CallbackReport:
		return sendReport(ctx, h.api, h.deps, chatID)
	case keyboards.CallbackUndo:
		return undoLast(ctx, h.api, h.deps, h.stateManager, chatID)
	case keyboards.CallbackSetLimit:
		return askForLimit(ctx, h.api, h.deps, h.stateManager, chatID)
	case keyboards.CallbackMainMenu:
		h.stateManager.SetUserState(chatID, state.None)
		return menus.SendMainMenu(h.api, chatID)
	case keyboards.CallbackHelp:
		return menus.SendText(h.api, chatID, menus.HelpText, nil)
	default:
		return menus.SendText(h.api, chatID, "Unknown action. Use /help to see the available commands.", nil)
	}
}
