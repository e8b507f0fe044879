package telegram

import (
	"context"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"rideNowBot/internal/domain/models"
	"rideNowBot/internal/pricing"
)

// replyKeyboard собирает reply-клавиатуру из слагов кнопок.
// Слаги send_location и send_number становятся специальными кнопками
// запроса геопозиции и контакта.
func (b *Bot) replyKeyboard(ctx context.Context, lang string, rows ...[]string) tgbotapi.ReplyKeyboardMarkup {
	keyboardRows := make([][]tgbotapi.KeyboardButton, 0, len(rows))

	for _, row := range rows {
		buttons := make([]tgbotapi.KeyboardButton, 0, len(row))
		for _, slug := range row {
			label := b.texts.Text(ctx, lang, slug, nil)

			switch slug {
			case "send_location":
				buttons = append(buttons, tgbotapi.NewKeyboardButtonLocation(label))
			case "send_number":
				buttons = append(buttons, tgbotapi.NewKeyboardButtonContact(label))
			default:
				buttons = append(buttons, tgbotapi.NewKeyboardButton(label))
			}
		}
		keyboardRows = append(keyboardRows, buttons)
	}

	keyboard := tgbotapi.NewReplyKeyboard(keyboardRows...)
	keyboard.ResizeKeyboard = true
	keyboard.OneTimeKeyboard = false

	return keyboard
}

// nameKeyboard — клавиатура регистрации с именем из профиля Telegram
func (b *Bot) nameKeyboard(fullName string) tgbotapi.ReplyKeyboardMarkup {
	keyboard := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(fullName)),
	)
	keyboard.ResizeKeyboard = true

	return keyboard
}

// locationKeyboard — клавиатура ввода точки: номера сохраненных адресов
// рядами по пять, кнопка геопозиции и "назад"
func (b *Bot) locationKeyboard(ctx context.Context, lang string, historyLen int) tgbotapi.ReplyKeyboardMarkup {
	var rows [][]tgbotapi.KeyboardButton

	var row []tgbotapi.KeyboardButton
	for i := 1; i <= historyLen; i++ {
		row = append(row, tgbotapi.NewKeyboardButton(strconv.Itoa(i)))
		if len(row) == historyRowsPerColumn {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}

	rows = append(rows,
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButtonLocation(b.texts.Text(ctx, lang, "send_location", nil))),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(b.texts.Text(ctx, lang, "back", nil))),
	)

	keyboard := tgbotapi.NewReplyKeyboard(rows...)
	keyboard.ResizeKeyboard = true

	return keyboard
}

func removeKeyboard() tgbotapi.ReplyKeyboardRemove {
	return tgbotapi.NewRemoveKeyboard(true)
}

// languageKeyboard — inline-выбор языка; названия языков не локализуются
func languageKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("O'zbekcha", "lang:uz"),
			tgbotapi.NewInlineKeyboardButtonData("Русский", "lang:ru"),
			tgbotapi.NewInlineKeyboardButtonData("English", "lang:en"),
		),
	)
}

// detailsKeyboard — inline-клавиатура параметров поездки.
// Выбранные значения помечаются галочкой.
func (b *Bot) detailsKeyboard(ctx context.Context, lang string, scratch *models.Scratch) tgbotapi.InlineKeyboardMarkup {
	mark := func(label string, selected bool) string {
		if selected {
			return "✅ " + label
		}
		return label
	}

	freeCar := b.texts.Text(ctx, lang, "free_car", nil)
	female := b.texts.Text(ctx, lang, "female_passenger", nil)

	countRow := tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData(mark("1", scratch.PassengerCount == 1), "one"),
		tgbotapi.NewInlineKeyboardButtonData(mark("2", scratch.PassengerCount == 2), "two"),
		tgbotapi.NewInlineKeyboardButtonData(mark(freeCar, scratch.PassengerCount == pricing.MaxPassengers), "free_car"),
	)

	femaleRow := tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData(mark(female, scratch.HasFemale), "female_passenger"),
	)

	classRow := make([]tgbotapi.InlineKeyboardButton, 0, 3)
	for _, class := range []string{pricing.ClassEconomy, pricing.ClassStandard, pricing.ClassBusiness} {
		label := b.texts.Text(ctx, lang, class, nil)
		classRow = append(classRow,
			tgbotapi.NewInlineKeyboardButtonData(mark(label, scratch.TravelClass == class), "class:"+class))
	}

	return tgbotapi.NewInlineKeyboardMarkup(
		countRow,
		femaleRow,
		classRow,
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(b.texts.Text(ctx, lang, "start", nil), "start"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(b.texts.Text(ctx, lang, "back", nil), "back"),
		),
	)
}
