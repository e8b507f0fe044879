package telegram

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"rideNowBot/internal/domain/models"
	"rideNowBot/internal/geocode"
	"rideNowBot/internal/statemachine"
)

const historyRowsPerColumn = 5

// pageStartNow начинает оформление поездки: просит точку отправления
// и показывает нумерованную историю адресов
func (b *Bot) pageStartNow(ctx context.Context, sess *statemachine.Session, ev models.Event) error {
	sess.Clear()
	sess.SetPhase(models.PhaseTravelLocBegin)

	lang := b.lang(ctx, ev.UserID, ev.LanguageCode)
	history := b.locations.History(ctx, ev.UserID)

	text := b.text(ctx, ev, "trip_start_prompt")
	if len(history) > 0 {
		text = b.textP(ctx, ev, "start_location_with_history", map[string]string{
			"history": renderHistory(history),
		})
	}

	b.send(ev.ChatID, text, b.locationKeyboard(ctx, lang, len(history)))

	return nil
}

// phaseLocBegin принимает точку отправления: геопозицию, номер
// из истории или текстовый адрес
func (b *Bot) phaseLocBegin(ctx context.Context, sess *statemachine.Session, ev models.Event) error {
	if b.isBack(ctx, ev) {
		return b.pageOrder(ctx, sess, ev)
	}

	loc, ok, err := b.resolveInput(ctx, sess, ev)
	if err != nil || !ok {
		return err
	}

	sess.Scratch().LocBegin = &loc
	sess.SetPhase(models.PhaseTravelLocEnd)

	b.send(ev.ChatID, b.textP(ctx, ev, "confirm_start_location", map[string]string{
		"address": loc.Address,
	}), nil)

	return b.promptDestination(ctx, sess, ev)
}

// promptDestination просит точку назначения. Также вызывается кнопкой
// "назад" со страницы параметров поездки.
func (b *Bot) promptDestination(ctx context.Context, sess *statemachine.Session, ev models.Event) error {
	sess.SetPhase(models.PhaseTravelLocEnd)

	lang := b.lang(ctx, ev.UserID, ev.LanguageCode)
	b.send(ev.ChatID, b.text(ctx, ev, "ask_destination"),
		b.replyKeyboard(ctx, lang,
			[]string{"send_location"},
			[]string{"back"},
		))

	return nil
}

// phaseLocEnd принимает точку назначения и открывает параметры поездки
func (b *Bot) phaseLocEnd(ctx context.Context, sess *statemachine.Session, ev models.Event) error {
	if b.isBack(ctx, ev) {
		return b.pageStartNow(ctx, sess, ev)
	}

	loc, ok, err := b.resolveInput(ctx, sess, ev)
	if err != nil || !ok {
		return err
	}

	scratch := sess.Scratch()
	if scratch.LocBegin == nil {
		// точка отправления потерялась, начинаем заново
		return b.pageStartNow(ctx, sess, ev)
	}

	scratch.LocEnd = &loc

	return b.openDetails(ctx, sess, ev)
}

// resolveInput превращает событие в точку с адресом.
// ok=false означает, что пользователю уже отправлена подсказка
// и менять фазу не нужно.
func (b *Bot) resolveInput(ctx context.Context, sess *statemachine.Session, ev models.Event) (models.Location, bool, error) {
	if ev.Location != nil {
		return b.locations.FromGPS(ctx, ev.UserID, ev.Location), true, nil
	}

	if ev.Text == "" {
		b.send(ev.ChatID, b.text(ctx, ev, "send_exact_location"), nil)
		return models.Location{}, false, nil
	}

	history := b.locations.History(ctx, ev.UserID)

	loc, err := b.locations.FromText(ctx, ev.UserID, ev.Text, history)
	if err == nil {
		return loc, true, nil
	}

	if errors.Is(err, geocode.ErrOutOfServiceArea) {
		b.send(ev.ChatID, b.text(ctx, ev, "out_of_service_area"), nil)
		return models.Location{}, false, nil
	}

	var notFound *geocode.NotFoundError
	if errors.As(err, &notFound) {
		if notFound.Suggestion != "" {
			b.send(ev.ChatID, b.textP(ctx, ev, "location_not_found_suggest", map[string]string{
				"suggestion": notFound.Suggestion,
			}), nil)
		} else {
			b.send(ev.ChatID, b.text(ctx, ev, "send_exact_location"), nil)
		}
		return models.Location{}, false, nil
	}

	return models.Location{}, false, err
}

// isBack распознает локализованную кнопку "назад" в текстовом вводе
func (b *Bot) isBack(ctx context.Context, ev models.Event) bool {
	if ev.Text == "" {
		return false
	}

	lang := b.lang(ctx, ev.UserID, ev.LanguageCode)
	slug := b.texts.Slug(ctx, lang, ev.Text)

	return slug == "back" || slug == "back_order"
}

// renderHistory нумерует сохраненные адреса для выбора по номеру
func renderHistory(history []models.SavedLocation) string {
	var sb strings.Builder
	for i, loc := range history {
		sb.WriteString(strconv.Itoa(i + 1))
		sb.WriteString(": ")
		sb.WriteString(loc.Name)
		if (i+1)%historyRowsPerColumn == 0 {
			sb.WriteString("\n\n")
		} else {
			sb.WriteString("\n")
		}
	}

	return strings.TrimRight(sb.String(), "\n")
}
