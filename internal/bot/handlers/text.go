package handlers

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/vladimiradmaev/fluid-helper/internal/bot/keyboards"
	"github.com/vladimiradmaev/fluid-helper/internal/bot/menus"
	"github.com/vladimiradmaev/fluid-helper/internal/bot/state"
	"github.com/vladimiradmaev/fluid-helper/internal/domain"
	"github.com/vladimiradmaev/fluid-helper/internal/logger"
)

// TextHandler handles text messages
type TextHandler struct {
	api          menus.Sender
	deps         Dependencies
	stateManager state.StateManager
}

// NewTextHandler creates a new text handler
func NewTextHandler(api menus.Sender, deps Dependencies, stateManager state.StateManager) *TextHandler {
	return &TextHandler{
		api:          api,
		deps:         deps,
		stateManager: stateManager,
	}
}

// Handle processes a text message
func (h *TextHandler) Handle(ctx context.Context, message *tgbotapi.Message) error {
	chatID := message.Chat.ID

	switch h.stateManager.GetUserState(chatID) {
	case state.WaitingForLimit:
		return setLimit(ctx, h.api, h.deps, h.stateManager, chatID, message.Text)
	default:
		return h.handleLogEntry(ctx, message)
	}
}

// handleLogEntry parses free text and logs it
func (h *TextHandler) handleLogEntry(ctx context.Context, message *tgbotapi.Message) error {
	chatID := message.Chat.ID

	// Typing indicator while the completion call runs
	if _, err := h.api.Request(tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping)); err != nil {
		logger.Warn("Failed to send chat action", "chat_id", chatID, "error", err)
	}

	result, _, err := h.deps.LoggingSvc.LogText(ctx, message.Text, domain.SourceTelegram)
	// a result next to an error means entries were saved, keep them undoable
	if result != nil && len(result.Created) > 0 {
		h.stateManager.SetLastBatch(chatID, result.Created)
	}
	if err != nil {
		return replyError(ctx, h.api, chatID, err)
	}

	today, err := h.deps.Days.Today(ctx)
	if err != nil {
		today = result.DayKey
	}
	markup := keyboards.ConfirmationMenu()
	return menus.SendText(h.api, chatID, menus.FormatConfirmation(result, today), &markup)
}
