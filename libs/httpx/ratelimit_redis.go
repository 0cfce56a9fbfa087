package httpx

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLimiter keeps fixed windows in Redis so every replica shares one quota per client.
type RedisLimiter struct {
	rdb    redis.Scripter
	limit  int
	window time.Duration
	prefix string
}

// Returns {count, pttl}. The expiry is set by the first hit of a window.
var windowScript = redis.NewScript(`
local n = redis.call("INCR", KEYS[1])
if n == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return {n, redis.call("PTTL", KEYS[1])}
`)

func NewRedisLimiter(rdb redis.Scripter, limit int, window time.Duration, prefix string) *RedisLimiter {
	limit, window = limiterDefaults(limit, window)
	if prefix = strings.TrimSpace(prefix); prefix == "" {
		prefix = "rl"
	}
	return &RedisLimiter{rdb: rdb, limit: limit, window: window, prefix: prefix}
}

func (l *RedisLimiter) Take(ctx context.Context, key string) (Quota, error) {
	res, err := windowScript.Run(ctx, l.rdb, []string{l.prefix + ":" + key}, l.window.Milliseconds()).Int64Slice()
	if err != nil {
		return Quota{}, fmt.Errorf("rate limit %s: %w", key, err)
	}
	if len(res) != 2 {
		return Quota{}, fmt.Errorf("rate limit %s: unexpected script reply %v", key, res)
	}
	resetIn := time.Duration(res[1]) * time.Millisecond
	if res[1] < 0 {
		resetIn = l.window
	}
	return quotaFor(l.limit, int(res[0]), resetIn), nil
}

// ReadyCheck pings Redis when the scripter is a full client.
func (l *RedisLimiter) ReadyCheck() func(context.Context) error {
	return func(ctx context.Context) error {
		c, ok := l.rdb.(redis.Cmdable)
		if !ok {
			return nil
		}
		return c.Ping(ctx).Err()
	}
}
