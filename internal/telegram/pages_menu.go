package telegram

import (
	"context"
	"strconv"
	"strings"

	"rideNowBot/internal/domain/models"
	"rideNowBot/internal/statemachine"
)

// pageStart — команда /start: сбрасывает диалог и показывает главное
// меню, а пользователю без выбранного языка — выбор языка
func (b *Bot) pageStart(ctx context.Context, sess *statemachine.Session, ev models.Event) error {
	sess.Clear()

	if !b.hasLanguage(ctx, ev.UserID) {
		return b.pageLanguage(ctx, sess, ev)
	}

	if !b.passengers.IsRegistered(ctx, ev.UserID) {
		return b.startRegistration(ctx, sess, ev)
	}

	return b.pageMainMenu(ctx, sess, ev)
}

func (b *Bot) pageMainMenu(ctx context.Context, sess *statemachine.Session, ev models.Event) error {
	sess.Clear()

	lang := b.lang(ctx, ev.UserID, ev.LanguageCode)
	b.send(ev.ChatID, b.text(ctx, ev, "main_menu_greeting"),
		b.replyKeyboard(ctx, lang,
			[]string{"order"},
			[]string{"my_trips", "help"},
		))

	return nil
}

// pageOrder — выбор типа поездки
func (b *Bot) pageOrder(ctx context.Context, sess *statemachine.Session, ev models.Event) error {
	sess.Clear()

	lang := b.lang(ctx, ev.UserID, ev.LanguageCode)
	b.send(ev.ChatID, b.text(ctx, ev, "select_trip_type"),
		b.replyKeyboard(ctx, lang,
			[]string{"start_now"},
			[]string{"plan_trip", "send_parcel"},
			[]string{"back"},
		))

	return nil
}

func (b *Bot) pageMyTrips(ctx context.Context, sess *statemachine.Session, ev models.Event) error {
	history := b.locations.History(ctx, ev.UserID)
	if len(history) == 0 {
		b.send(ev.ChatID, b.text(ctx, ev, "no_trips_yet"), nil)
		return nil
	}

	var sb strings.Builder
	for i, loc := range history {
		sb.WriteString(b.textP(ctx, ev, "trip_history_row", map[string]string{
			"index":   strconv.Itoa(i + 1),
			"address": loc.Name,
		}))
		sb.WriteString("\n")
	}

	b.send(ev.ChatID, sb.String(), nil)

	return nil
}

func (b *Bot) pageHelp(ctx context.Context, sess *statemachine.Session, ev models.Event) error {
	b.send(ev.ChatID, b.text(ctx, ev, "_help"), nil)
	return nil
}

// pageLanguage — inline-выбор языка интерфейса
func (b *Bot) pageLanguage(ctx context.Context, sess *statemachine.Session, ev models.Event) error {
	b.send(ev.ChatID, b.text(ctx, ev, "choose_language"), languageKeyboard())
	return nil
}

// actionSetLanguage обрабатывает callback вида lang:<code>
func (b *Bot) actionSetLanguage(ctx context.Context, sess *statemachine.Session, ev models.Event) error {
	code := strings.TrimPrefix(ev.Data, "lang:")

	if err := b.users.SetLanguage(ctx, ev.UserID, code); err != nil {
		return err
	}
	if b.langs != nil {
		b.langs.Set(ctx, ev.UserID, code)
	}

	b.send(ev.ChatID, b.texts.Text(ctx, code, "language_updated", nil), nil)

	if !b.passengers.IsRegistered(ctx, ev.UserID) {
		return b.startRegistration(ctx, sess, ev)
	}

	return b.pageMainMenu(ctx, sess, ev)
}

// actionBack контекстно зависим: из параметров поездки возвращает
// к вводу адреса назначения, отовсюду ещё — в главное меню
func (b *Bot) actionBack(ctx context.Context, sess *statemachine.Session, ev models.Event) error {
	if sess.Phase() == models.PhaseTravelDetails {
		return b.promptDestination(ctx, sess, ev)
	}

	return b.pageMainMenu(ctx, sess, ev)
}

// pagePlanTrip и pageSendParcel пока только анонсируются
func (b *Bot) pagePlanTrip(ctx context.Context, sess *statemachine.Session, ev models.Event) error {
	b.send(ev.ChatID, b.text(ctx, ev, "coming_soon"), nil)
	return nil
}

func (b *Bot) pageSendParcel(ctx context.Context, sess *statemachine.Session, ev models.Event) error {
	b.send(ev.ChatID, b.text(ctx, ev, "coming_soon"), nil)
	return nil
}
