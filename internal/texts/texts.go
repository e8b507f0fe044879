package texts

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"rideNowBot/internal/pkg/logger/sl"
)

const cacheTTL = time.Hour

// Store — хранилище локализованных текстов (таблица bot_messages)
type Store interface {
	// Message возвращает тексты слага по языкам: lang -> text
	Message(ctx context.Context, slug string) (map[string]string, error)
	// SlugByText ищет слаг по локализованному тексту
	SlugByText(ctx context.Context, lang, text string) (string, error)
}

// Resolver отдает локализованный текст по (lang, slug) с подстановкой
// параметров вида {name}. Отсутствующий текст заменяется самим слагом,
// чтобы пользователь никогда не остался без ответа.
type Resolver struct {
	store Store
	cache *redis.Client
	log   *slog.Logger
}

func NewResolver(store Store, cache *redis.Client, log *slog.Logger) *Resolver {
	return &Resolver{
		store: store,
		cache: cache,
		log:   log,
	}
}

// Text возвращает локализованный текст слага с подстановкой параметров
func (r *Resolver) Text(ctx context.Context, lang, slug string, params map[string]string) string {
	text := r.rawText(ctx, lang, slug)

	if len(params) == 0 {
		return text
	}

	pairs := make([]string, 0, len(params)*2)
	for k, v := range params {
		pairs = append(pairs, "{"+k+"}", v)
	}

	return strings.NewReplacer(pairs...).Replace(text)
}

// Slug ищет слаг по локализованному тексту кнопки.
// Возвращает пустую строку, если текст неизвестен.
func (r *Resolver) Slug(ctx context.Context, lang, text string) string {
	cacheKey := fmt.Sprintf("msg:slug:%s:%s", lang, text)

	if r.cache != nil {
		if slug, err := r.cache.Get(ctx, cacheKey).Result(); err == nil {
			return slug
		}
	}

	slug, err := r.store.SlugByText(ctx, lang, text)
	if err != nil || slug == "" {
		return ""
	}

	if r.cache != nil {
		if err := r.cache.Set(ctx, cacheKey, slug, cacheTTL).Err(); err != nil {
			r.log.Warn("failed to cache slug lookup", sl.Err(err))
		}
	}

	return slug
}

func (r *Resolver) rawText(ctx context.Context, lang, slug string) string {
	cacheKey := fmt.Sprintf("msg:%s:%s", slug, lang)

	if r.cache != nil {
		if text, err := r.cache.Get(ctx, cacheKey).Result(); err == nil {
			return text
		}
	}

	msg, err := r.store.Message(ctx, slug)
	if err != nil {
		r.log.Warn("failed to load message text",
			slog.String("slug", slug), sl.Err(err))
		return slug
	}

	text, ok := msg[lang]
	if !ok || text == "" {
		return slug
	}

	if r.cache != nil {
		if err := r.cache.Set(ctx, cacheKey, text, cacheTTL).Err(); err != nil {
			r.log.Warn("failed to cache message text", sl.Err(err))
		}
	}

	return text
}
