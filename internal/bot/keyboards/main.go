package keyboards

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Callback data
const (
	CallbackToday    = "today"
	CallbackReport   = "report"
	CallbackUndo     = "undo"
	CallbackSetLimit = "set_limit"
	CallbackMainMenu = "main_menu"
	CallbackHelp     = "help"
)

// MainMenu creates the main menu keyboard
func MainMenu() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📊 Today", CallbackToday),
			tgbotapi.NewInlineKeyboardButtonData("📋 Report", CallbackReport),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("↩️ Undo last", CallbackUndo),
			tgbotapi.NewInlineKeyboardButtonData("⚙️ Daily limit", CallbackSetLimit),
		),
	)
}

// ConfirmationMenu is attached to every "logged" reply
func ConfirmationMenu() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("↩️ Undo", CallbackUndo),
			tgbotapi.NewInlineKeyboardButtonData("📊 Today", CallbackToday),
		),
	)
}

// BackMenu returns to the main menu
func BackMenu() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("◀️ Main menu", CallbackMainMenu),
		),
	)
}
