package bot

import (
	"context"
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/vladimiradmaev/fluid-helper/internal/bot/handlers"
	"github.com/vladimiradmaev/fluid-helper/internal/bot/menus"
	"github.com/vladimiradmaev/fluid-helper/internal/bot/state"
	"github.com/vladimiradmaev/fluid-helper/internal/logger"
)

var commands = []tgbotapi.BotCommand{
	{Command: "today", Description: "Intake and outputs for today"},
	{Command: "yesterday", Description: "Intake and outputs for yesterday"},
	{Command: "report", Description: "Full daily report"},
	{Command: "undo", Description: "Remove the entries from your last message"},
	{Command: "limit", Description: "Change the daily limit"},
	{Command: "help", Description: "How to log"},
}

type Bot struct {
	api           *tgbotapi.BotAPI
	updateHandler *handlers.UpdateHandler
	log           *slog.Logger
}

func NewBot(token string, deps handlers.Dependencies, stateManager state.StateManager) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	log := logger.Component("bot")
	log.Info("Bot authorized", "account", api.Self.UserName)

	if _, err := api.Request(tgbotapi.NewSetMyCommands(commands...)); err != nil {
		log.Warn("Failed to register bot commands", "error", err)
	}

	return &Bot{
		api:           api,
		updateHandler: handlers.NewUpdateHandler(api, deps, stateManager),
		log:           log,
	}, nil
}

// SendText delivers a plain message, used for scheduled reports
func (b *Bot) SendText(chatID int64, text string) error {
	return menus.SendText(b.api, chatID, text, nil)
}

func (b *Bot) Start(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	b.log.Info("Bot is now listening for updates")

	for {
		select {
		case <-ctx.Done():
			b.log.Info("Bot is shutting down")
			b.api.StopReceivingUpdates()
			return ctx.Err()
		case update := <-updates:
			if update.Message != nil {
				b.log.Debug("Received message", "chat_id", update.Message.Chat.ID, "text", update.Message.Text)
			}
			if err := b.updateHandler.Handle(ctx, update); err != nil {
				b.log.Error("Error handling update", "update_id", update.UpdateID, "error", err)
			}
		}
	}
}
