package handlers

import (
	"context"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/vladimiradmaev/fluid-helper/internal/bot/menus"
	"github.com/vladimiradmaev/fluid-helper/internal/bot/state"
	apperrors "github.com/vladimiradmaev/fluid-helper/internal/errors"
	"github.com/vladimiradmaev/fluid-helper/internal/logger"
)

// UpdateHandler handles telegram updates and coordinates other handlers
type UpdateHandler struct {
	api             menus.Sender
	stateManager    state.StateManager
	callbackHandler *CallbackHandler
	commandHandler  *CommandHandler
	textHandler     *TextHandler
	log             *slog.Logger
}

// NewUpdateHandler creates a new update handler
func NewUpdateHandler(api menus.Sender, deps Dependencies, stateManager state.StateManager) *UpdateHandler {
	return &UpdateHandler{
		api:             api,
		stateManager:    stateManager,
		callbackHandler: NewCallbackHandler(api, deps, stateManager),
		commandHandler:  NewCommandHandler(api, deps, stateManager),
		textHandler:     NewTextHandler(api, deps, stateManager),
		log:             logger.Component("bot"),
	}
}

// Handle processes a telegram update
func (h *UpdateHandler) Handle(ctx context.Context, update tgbotapi.Update) error {
	if update.CallbackQuery != nil {
		if update.CallbackQuery.Message == nil {
			return nil
		}
		return h.callbackHandler.Handle(ctx, update.CallbackQuery)
	}

	message := update.Message
	if message == nil {
		return nil
	}

	if message.IsCommand() {
		return h.commandHandler.Handle(ctx, message)
	}
	if message.Text != "" {
		return h.textHandler.Handle(ctx, message)
	}
	return menus.SendText(h.api, message.Chat.ID, "I can only read text messages. Try \"120ml pediasure\".", nil)
}

// replyError logs err and tells the caregiver what happened
func replyError(ctx context.Context, api menus.Sender, chatID int64, err error) error {
	apperrors.NewHandler(logger.GetLogger()).Handle(ctx, err)
	return menus.SendText(api, chatID, "❌ "+apperrors.UserMessage(err), nil)
}
