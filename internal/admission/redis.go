package admission

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisGuard holds the busy slot in Redis so a restarted bridge, or a
// second bridge pointed at the same browser profile, cannot start a
// concurrent fill. The TTL is a safety net against a crashed holder; a
// normal run releases explicitly.
type RedisGuard struct {
	client redis.Cmdable
	key    string
	ttl    time.Duration
}

func NewRedisGuard(client redis.Cmdable, key string, ttl time.Duration) *RedisGuard {
	normalized := strings.TrimSpace(key)
	if normalized == "" {
		normalized = "lotposter:busy"
	}
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &RedisGuard{client: client, key: normalized, ttl: ttl}
}

func (g *RedisGuard) Acquire(ctx context.Context) (func(), bool, error) {
	token := uuid.NewString()
	acquired, err := g.client.SetNX(ctx, g.key, token, g.ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("admission setnx: %w", err)
	}
	if !acquired {
		return nil, false, nil
	}

	var once sync.Once
	release := func() {
		once.Do(func() {
			// Release must run even when the request context is gone.
			releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_, err := releaseSlotScript.Run(releaseCtx, g.client, []string{g.key}, token).Int()
			if err != nil && !errors.Is(err, redis.Nil) {
				// Expiry will reclaim the slot.
				_ = err
			}
		})
	}
	return release, true, nil
}

var releaseSlotScript = redis.NewScript(`
local existing = redis.call("GET", KEYS[1])
if not existing then
  return 0
end
if existing == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`)
