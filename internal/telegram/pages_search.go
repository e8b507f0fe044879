package telegram

import (
	"context"
	"fmt"

	"rideNowBot/internal/domain/models"
	"rideNowBot/internal/statemachine"
	"rideNowBot/pkg/client/journey"
)

// actionStartTravel отправляет заказ диспетчеру и начинает поиск машины
func (b *Bot) actionStartTravel(ctx context.Context, sess *statemachine.Session, ev models.Event) error {
	if sess.Phase() != models.PhaseTravelDetails {
		return nil
	}

	scratch := sess.Scratch()
	if scratch.LocBegin == nil || scratch.LocEnd == nil {
		return b.pageStartNow(ctx, sess, ev)
	}

	order := journey.Order{
		PassengerTgID:  ev.UserID,
		StartAddress:   scratch.LocBegin.Address,
		StartLat:       scratch.LocBegin.Lat,
		StartLng:       scratch.LocBegin.Lng,
		EndAddress:     scratch.LocEnd.Address,
		EndLat:         scratch.LocEnd.Lat,
		EndLng:         scratch.LocEnd.Lng,
		TravelClass:    scratch.TravelClass,
		PassengerCount: scratch.PassengerCount,
		HasFemale:      scratch.HasFemale,
		DistanceKm:     scratch.DistanceKm,
		Price:          scratch.Price,
	}

	if _, err := b.orders.CreateOrder(ctx, order); err != nil {
		return fmt.Errorf("create order: %w", err)
	}

	b.delete(ev.ChatID, ev.MessageID)
	sess.SetPhase(models.PhaseTravelStart)

	lang := b.lang(ctx, ev.UserID, ev.LanguageCode)
	b.send(ev.ChatID, b.text(ctx, ev, "searching_driver"),
		b.replyKeyboard(ctx, lang, []string{"cancel"}))

	return nil
}

// phaseTravelStart — во время поиска машины работает только отмена
func (b *Bot) phaseTravelStart(ctx context.Context, sess *statemachine.Session, ev models.Event) error {
	lang := b.lang(ctx, ev.UserID, ev.LanguageCode)
	if b.texts.Slug(ctx, lang, ev.Text) == "cancel" {
		return b.pageMainMenu(ctx, sess, ev)
	}

	b.send(ev.ChatID, b.text(ctx, ev, "searching_driver"), nil)

	return nil
}

// DriverFound уведомляет пассажира о найденной машине и завершает диалог.
// Вызывается снаружи, когда диспетчер назначил водителя.
func (b *Bot) DriverFound(ctx context.Context, userID, chatID int64) {
	sess := b.store.Acquire(userID)
	defer sess.Release()

	lang := b.lang(ctx, userID, "")
	b.send(chatID, b.texts.Text(ctx, lang, "driver_found", nil), removeKeyboard())

	sess.Clear()
}
