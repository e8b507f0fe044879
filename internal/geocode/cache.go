package geocode

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// twoTierCache — кэш в два уровня: быстрый локальный map под мьютексом
// и общий Redis. Локальный уровень спрашивается первым, запись идет
// в оба уровня.
type twoTierCache struct {
	mu     sync.Mutex
	local  map[string]localEntry
	shared *redis.Client
	ttl    time.Duration
}

type localEntry struct {
	at  time.Time
	val []byte
}

func newTwoTierCache(shared *redis.Client, ttl time.Duration) *twoTierCache {
	return &twoTierCache{
		local:  make(map[string]localEntry),
		shared: shared,
		ttl:    ttl,
	}
}

func (c *twoTierCache) get(ctx context.Context, key string, out interface{}) bool {
	c.mu.Lock()
	entry, ok := c.local[key]
	if ok && time.Since(entry.at) > c.ttl {
		delete(c.local, key)
		ok = false
	}
	c.mu.Unlock()

	if ok {
		return json.Unmarshal(entry.val, out) == nil
	}

	if c.shared == nil {
		return false
	}

	raw, err := c.shared.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	if json.Unmarshal(raw, out) != nil {
		return false
	}

	// прогреваем локальный уровень
	c.mu.Lock()
	c.local[key] = localEntry{at: time.Now(), val: raw}
	c.mu.Unlock()

	return true
}

func (c *twoTierCache) set(ctx context.Context, key string, val interface{}) {
	raw, err := json.Marshal(val)
	if err != nil {
		return
	}

	c.mu.Lock()
	c.local[key] = localEntry{at: time.Now(), val: raw}
	c.mu.Unlock()

	if c.shared != nil {
		c.shared.Set(ctx, key, raw, c.ttl)
	}
}
