package statemachine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"

	"rideNowBot/internal/domain/models"
)

// ErrUnhandled — для события не нашлось обработчика.
// Вызывающая сторона решает, отвечать ли пользователю подсказкой.
var ErrUnhandled = errors.New("no handler for event")

// Handler обрабатывает событие пользователя при захваченной сессии
type Handler func(ctx context.Context, sess *Session, ev models.Event) error

// Guard вызывается до любой маршрутизации. Возвращает true, если
// событие перехвачено (например, незарегистрированный пользователь
// уведен в регистрацию).
type Guard func(ctx context.Context, sess *Session, ev models.Event) (bool, error)

// SlugFunc превращает локализованный текст кнопки в слаг действия
type SlugFunc func(ctx context.Context, userID int64, text string) string

// Router раскидывает события по неизменяемым таблицам: callback-данные
// по таблице действий, текст и геопозиции по таблице фаз. Таблицы
// собираются один раз при старте и дальше только читаются.
type Router struct {
	actions map[string]Handler
	phases  map[models.Phase]Handler
	guard   Guard
	slugOf  SlugFunc
	log     *slog.Logger
}

type RouterConfig struct {
	Actions map[string]Handler
	Phases  map[models.Phase]Handler
	Guard   Guard
	SlugOf  SlugFunc
	Log     *slog.Logger
}

func NewRouter(cfg RouterConfig) *Router {
	actions := make(map[string]Handler, len(cfg.Actions))
	for k, v := range cfg.Actions {
		actions[k] = v
	}

	phases := make(map[models.Phase]Handler, len(cfg.Phases))
	for k, v := range cfg.Phases {
		phases[k] = v
	}

	return &Router{
		actions: actions,
		phases:  phases,
		guard:   cfg.Guard,
		slugOf:  cfg.SlugOf,
		log:     cfg.Log,
	}
}

// Dispatch обрабатывает одно событие. Паника в обработчике гасится
// здесь: бот логирует и продолжает принимать апдейты.
func (r *Router) Dispatch(ctx context.Context, sess *Session, ev models.Event) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error("handler panicked",
				slog.Int64("user_id", ev.UserID),
				slog.Any("panic", rec),
				slog.String("stack", string(debug.Stack())),
			)
			err = fmt.Errorf("handler panic: %v", rec)
		}
	}()

	if r.guard != nil {
		handled, gerr := r.guard(ctx, sess, ev)
		if gerr != nil {
			return fmt.Errorf("registration guard: %w", gerr)
		}
		if handled {
			return nil
		}
	}

	phase := sess.Phase()

	if ev.IsCallback {
		if h, ok := r.actions[ev.Data]; ok {
			return h(ctx, sess, ev)
		}
		// неизвестные данные со старой клавиатуры посреди диалога
		// молча игнорируются, состояние не трогаем
		if phase != models.PhaseUnset {
			return nil
		}
		return ErrUnhandled
	}

	// вне диалога текст кнопки reply-клавиатуры работает как действие
	if phase == models.PhaseUnset {
		if ev.Text != "" && r.slugOf != nil {
			if slug := r.slugOf(ctx, ev.UserID, ev.Text); slug != "" {
				if h, ok := r.actions[slug]; ok {
					return h(ctx, sess, ev)
				}
			}
		}
		return ErrUnhandled
	}

	if h, ok := r.phases[phase]; ok {
		return h(ctx, sess, ev)
	}

	return ErrUnhandled
}
