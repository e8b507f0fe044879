package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// BotTransport исполняет исходящие действия через Telegram Bot API.
// Реализует контракт транспорта очереди доставки.
type BotTransport struct {
	api *tgbotapi.BotAPI
}

func NewBotTransport(api *tgbotapi.BotAPI) *BotTransport {
	return &BotTransport{api: api}
}

func (t *BotTransport) SendMessage(chatID int64, text string, replyMarkup interface{}) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = "HTML"
	if replyMarkup != nil {
		msg.ReplyMarkup = replyMarkup
	}

	_, err := t.api.Send(msg)
	return err
}

func (t *BotTransport) EditMessage(chatID int64, messageID int, text string, replyMarkup interface{}) error {
	msg := tgbotapi.NewEditMessageText(chatID, messageID, text)
	msg.ParseMode = "HTML"
	if markup, ok := replyMarkup.(tgbotapi.InlineKeyboardMarkup); ok {
		msg.ReplyMarkup = &markup
	}
	if markup, ok := replyMarkup.(*tgbotapi.InlineKeyboardMarkup); ok {
		msg.ReplyMarkup = markup
	}

	_, err := t.api.Send(msg)
	return err
}

func (t *BotTransport) DeleteMessage(chatID int64, messageID int) error {
	_, err := t.api.Request(tgbotapi.NewDeleteMessage(chatID, messageID))
	return err
}
