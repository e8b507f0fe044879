package telegram

import (
	"context"
	"errors"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"rideNowBot/internal/domain/models"
	"rideNowBot/internal/pkg/logger/sl"
	"rideNowBot/internal/statemachine"
)

// Handler принимает апдейты Telegram и прогоняет их через диалоговую
// машину. События разных пользователей обрабатываются параллельно,
// события одного пользователя строго по очереди.
type Handler struct {
	api *tgbotapi.BotAPI
	bot *Bot
	log *slog.Logger
}

func NewHandler(api *tgbotapi.BotAPI, bot *Bot, log *slog.Logger) *Handler {
	return &Handler{
		api: api,
		bot: bot,
		log: log,
	}
}

// Run блокируется до отмены контекста
func (h *Handler) Run(ctx context.Context) error {
	h.log.Info("bot authorized", slog.String("username", h.api.Self.UserName))

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := h.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			h.api.StopReceivingUpdates()
			return ctx.Err()
		case update := <-updates:
			ev, ok := eventFromUpdate(update)
			if !ok {
				continue
			}

			go h.process(ctx, ev)
		}
	}
}

func (h *Handler) process(ctx context.Context, ev models.Event) {
	// callback подтверждаем сразу, чтобы у пользователя не висели часики
	if ev.IsCallback {
		if _, err := h.api.Request(tgbotapi.NewCallback(ev.CallbackID, "")); err != nil {
			h.log.Warn("failed to answer callback", sl.Err(err))
		}
	}

	if h.bot.flood != nil && !h.bot.flood.Allow(ctx, ev.UserID) {
		if !ev.IsCallback {
			h.bot.send(ev.ChatID, h.bot.text(ctx, ev, "too_many_requests"), nil)
		}
		return
	}

	if _, err := h.bot.users.GetOrCreate(ctx, ev.UserID, ev.FullName, ev.Username); err != nil {
		h.log.Error("failed to get or create user",
			slog.Int64("tg_id", ev.UserID), sl.Err(err))
		return
	}

	sess := h.bot.store.Acquire(ev.UserID)
	defer sess.Release()

	if err := h.dispatch(ctx, sess, ev); err != nil {
		h.log.Error("failed to handle event",
			slog.Int64("tg_id", ev.UserID), sl.Err(err))
	}
}

func (h *Handler) dispatch(ctx context.Context, sess *statemachine.Session, ev models.Event) error {
	switch ev.Text {
	case "/start":
		return h.bot.pageStart(ctx, sess, ev)
	case "/language":
		return h.bot.pageLanguage(ctx, sess, ev)
	}

	err := h.bot.router.Dispatch(ctx, sess, ev)
	if errors.Is(err, statemachine.ErrUnhandled) {
		// нераспознанный ввод возвращает пользователя в главное меню
		return h.bot.pageMainMenu(ctx, sess, ev)
	}

	return err
}
