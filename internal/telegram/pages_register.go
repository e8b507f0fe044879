package telegram

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"rideNowBot/internal/domain/models"
	"rideNowBot/internal/statemachine"
)

// Операторские префиксы Узбекистана
var phoneRe = regexp.MustCompile(`^\+998(90|91|93|94|95|98|99|33|97|71)\d{7}$`)

// registrationGuard перехватывает события незарегистрированных
// пользователей до любой маршрутизации и уводит их в регистрацию
func (b *Bot) registrationGuard(ctx context.Context, sess *statemachine.Session, ev models.Event) (bool, error) {
	if sess.Phase().InRegistration() {
		return false, nil
	}

	// выбор языка доступен и до регистрации: новый пользователь сначала
	// видит страницу языков
	if ev.IsCallback && strings.HasPrefix(ev.Data, "lang:") {
		return false, nil
	}

	if b.passengers.IsRegistered(ctx, ev.UserID) {
		return false, nil
	}

	return true, b.startRegistration(ctx, sess, ev)
}

func (b *Bot) startRegistration(ctx context.Context, sess *statemachine.Session, ev models.Event) error {
	sess.Clear()
	sess.SetPhase(models.PhaseRegistrationName)

	var markup interface{}
	if ev.FullName != "" {
		markup = b.nameKeyboard(ev.FullName)
	}

	b.send(ev.ChatID, b.text(ctx, ev, "ask_full_name"), markup)

	return nil
}

func (b *Bot) phaseRegistrationName(ctx context.Context, sess *statemachine.Session, ev models.Event) error {
	name := strings.TrimSpace(ev.Text)
	if name == "" {
		b.send(ev.ChatID, b.text(ctx, ev, "ask_full_name"), nil)
		return nil
	}

	sess.Scratch().Name = name
	sess.SetPhase(models.PhaseRegistrationContact)

	lang := b.lang(ctx, ev.UserID, ev.LanguageCode)
	b.send(ev.ChatID, b.text(ctx, ev, "ask_contact"),
		b.replyKeyboard(ctx, lang, []string{"send_number"}))

	return nil
}

func (b *Bot) phaseRegistrationContact(ctx context.Context, sess *statemachine.Session, ev models.Event) error {
	phone := ev.Contact
	if phone == "" {
		phone = strings.TrimSpace(ev.Text)
	}
	phone = strings.ReplaceAll(phone, " ", "")

	if !phoneRe.MatchString(phone) {
		b.send(ev.ChatID, b.text(ctx, ev, "invalid_phone"), nil)
		return nil
	}

	p := models.Passenger{
		TelegramID: ev.UserID,
		Name:       sess.Scratch().Name,
		Contact:    phone,
	}

	if err := b.passengers.Register(ctx, p); err != nil {
		return fmt.Errorf("register passenger: %w", err)
	}

	sess.Clear()

	return b.pageMainMenu(ctx, sess, ev)
}
