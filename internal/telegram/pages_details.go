package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"rideNowBot/internal/domain/models"
	"rideNowBot/internal/pricing"
	"rideNowBot/internal/statemachine"
)

// openDetails считает маршрут с параметрами по умолчанию и показывает
// сводку поездки с inline-клавиатурой
func (b *Bot) openDetails(ctx context.Context, sess *statemachine.Session, ev models.Event) error {
	scratch := sess.Scratch()

	scratch.PassengerCount = 1
	scratch.TravelClass = pricing.ClassEconomy
	scratch.HasFemale = false
	scratch.DistanceKm = pricing.DistanceKm(
		scratch.LocBegin.Lat, scratch.LocBegin.Lng,
		scratch.LocEnd.Lat, scratch.LocEnd.Lng,
	)
	scratch.Price = pricing.ComputePrice(scratch.DistanceKm, scratch.TravelClass, scratch.PassengerCount)

	sess.SetPhase(models.PhaseTravelDetails)

	lang := b.lang(ctx, ev.UserID, ev.LanguageCode)
	b.send(ev.ChatID, b.renderDetails(ctx, ev, scratch), b.detailsKeyboard(ctx, lang, scratch))

	scratch.LastRender = detailsFingerprint(scratch)

	return nil
}

// actionDetails применяет изменение параметров поездки.
// Повторное нажатие уже выбранной кнопки ничего не перерисовывает:
// callback подтвержден, а edit без изменений Telegram не принимает.
func (b *Bot) actionDetails(ctx context.Context, sess *statemachine.Session, ev models.Event) error {
	if sess.Phase() != models.PhaseTravelDetails {
		// просроченный callback со старой клавиатуры
		return nil
	}

	scratch := sess.Scratch()

	switch {
	case ev.Data == "one":
		scratch.PassengerCount = 1
	case ev.Data == "two":
		scratch.PassengerCount = 2
	case ev.Data == "free_car":
		scratch.PassengerCount = pricing.MaxPassengers
	case ev.Data == "female_passenger":
		scratch.HasFemale = !scratch.HasFemale
	case strings.HasPrefix(ev.Data, "class:"):
		scratch.TravelClass = strings.TrimPrefix(ev.Data, "class:")
	default:
		return nil
	}

	scratch.Price = pricing.ComputePrice(scratch.DistanceKm, scratch.TravelClass, scratch.PassengerCount)

	fingerprint := detailsFingerprint(scratch)
	if fingerprint == scratch.LastRender {
		return nil
	}
	scratch.LastRender = fingerprint

	// редактируем сообщение, с которого пришел callback: inline-клавиатура
	// висит на самой сводке
	lang := b.lang(ctx, ev.UserID, ev.LanguageCode)
	b.edit(ev.ChatID, ev.MessageID,
		b.renderDetails(ctx, ev, scratch),
		b.detailsKeyboard(ctx, lang, scratch))

	return nil
}

// phaseDetails — текстовый ввод на странице параметров:
// работает только кнопка "назад"
func (b *Bot) phaseDetails(ctx context.Context, sess *statemachine.Session, ev models.Event) error {
	if b.isBack(ctx, ev) {
		return b.promptDestination(ctx, sess, ev)
	}

	return nil
}

func (b *Bot) renderDetails(ctx context.Context, ev models.Event, scratch *models.Scratch) string {
	female := "❌"
	if scratch.HasFemale {
		female = "✅"
	}

	count := strconv.Itoa(scratch.PassengerCount)
	if scratch.PassengerCount == pricing.MaxPassengers {
		count = "3+"
	}

	return b.textP(ctx, ev, "trip_details", map[string]string{
		"start":    scratch.LocBegin.Address,
		"end":      scratch.LocEnd.Address,
		"distance": fmt.Sprintf("%.1f", scratch.DistanceKm),
		"count":    count,
		"class":    b.text(ctx, ev, scratch.TravelClass),
		"female":   female,
		"price":    strconv.FormatInt(scratch.Price, 10),
	})
}

// detailsFingerprint — отпечаток отрисованного состояния сводки
func detailsFingerprint(scratch *models.Scratch) string {
	return fmt.Sprintf("%d|%s|%t|%d",
		scratch.PassengerCount, scratch.TravelClass, scratch.HasFemale, scratch.Price)
}
