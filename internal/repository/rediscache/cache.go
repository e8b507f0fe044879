package rediscache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type Config struct {
	Addr     string
	Password string
	DB       int
}

// New создает клиент Redis и проверяет соединение
func New(ctx context.Context, cfg Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return client, nil
}

const langTTL = time.Hour

// LangCache кэширует код языка пользователя, чтобы не ходить в базу
// на каждое исходящее сообщение
type LangCache struct {
	client *redis.Client
}

func NewLangCache(client *redis.Client) *LangCache {
	return &LangCache{client: client}
}

func (c *LangCache) key(tgID int64) string {
	return fmt.Sprintf("tguser:lang:%d", tgID)
}

// Get возвращает закэшированный язык; false — если в кэше нет
func (c *LangCache) Get(ctx context.Context, tgID int64) (string, bool) {
	lang, err := c.client.Get(ctx, c.key(tgID)).Result()
	if err != nil {
		return "", false
	}
	return lang, true
}

func (c *LangCache) Set(ctx context.Context, tgID int64, lang string) {
	c.client.Set(ctx, c.key(tgID), lang, langTTL)
}

func (c *LangCache) Delete(ctx context.Context, tgID int64) {
	c.client.Del(ctx, c.key(tgID))
}

// FloodGate отсекает события, приходящие от пользователя чаще
// заданного интервала
type FloodGate struct {
	client   *redis.Client
	interval time.Duration
}

func NewFloodGate(client *redis.Client, interval time.Duration) *FloodGate {
	return &FloodGate{client: client, interval: interval}
}

// Allow отмечает событие пользователя и сообщает, можно ли его обрабатывать.
// При недоступном Redis пропускает всё: лучше обработать лишнее,
// чем молча игнорировать пользователей.
func (g *FloodGate) Allow(ctx context.Context, tgID int64) bool {
	key := fmt.Sprintf("flood:%d", tgID)

	ok, err := g.client.SetNX(ctx, key, time.Now().UnixMilli(), g.interval).Result()
	if err != nil {
		return true
	}

	return ok
}
