package telegram

import (
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"rideNowBot/internal/domain/models"
)

// eventFromUpdate сводит сообщение и callback к единому событию.
// Возвращает false для апдейтов, которые бот не обрабатывает.
func eventFromUpdate(update tgbotapi.Update) (models.Event, bool) {
	if cb := update.CallbackQuery; cb != nil {
		ev := models.Event{
			UserID:     cb.From.ID,
			Data:       cb.Data,
			IsCallback: true,
			CallbackID: cb.ID,
			Username:   cb.From.UserName,
			FullName:   fullName(cb.From),
		}
		if cb.From.LanguageCode != "" {
			ev.LanguageCode = cb.From.LanguageCode
		}
		if cb.Message != nil {
			ev.ChatID = cb.Message.Chat.ID
			ev.MessageID = cb.Message.MessageID
		}
		return ev, true
	}

	msg := update.Message
	if msg == nil || msg.From == nil {
		return models.Event{}, false
	}

	ev := models.Event{
		UserID:       msg.From.ID,
		ChatID:       msg.Chat.ID,
		MessageID:    msg.MessageID,
		Text:         strings.TrimSpace(msg.Text),
		Username:     msg.From.UserName,
		FullName:     fullName(msg.From),
		LanguageCode: msg.From.LanguageCode,
	}

	if msg.Location != nil {
		ev.Location = &models.Location{
			Lat:        msg.Location.Latitude,
			Lng:        msg.Location.Longitude,
			Heading:    msg.Location.Heading,
			LivePeriod: msg.Location.LivePeriod,
			Accuracy:   msg.Location.HorizontalAccuracy,
		}
	}

	if msg.Contact != nil {
		phone := msg.Contact.PhoneNumber
		if phone != "" && !strings.HasPrefix(phone, "+") {
			phone = "+" + phone
		}
		ev.Contact = phone
	}

	return ev, true
}

func fullName(u *tgbotapi.User) string {
	if u == nil {
		return ""
	}
	name := u.FirstName
	if u.LastName != "" {
		name += " " + u.LastName
	}
	return name
}
