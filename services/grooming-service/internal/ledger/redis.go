package ledger

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis keeps usage in Redis so several grooming-service replicas share one ledger.
type Redis struct {
	rdb     *redis.Client
	ceiling int
	prefix  string
}

// ARGV[1] = units, ARGV[2] = ceiling. Returns the new usage or -1 when the units do not fit.
var reserveScript = redis.NewScript(`
local used = tonumber(redis.call("GET", KEYS[1]) or "0")
local units = tonumber(ARGV[1])
if used + units > tonumber(ARGV[2]) then
  return -1
end
return redis.call("INCRBY", KEYS[1], units)
`)

func NewRedis(rdb *redis.Client, ceiling int, prefix string) *Redis {
	if ceiling <= 0 {
		ceiling = DefaultCeiling
	}
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = "ledger"
	}
	return &Redis{rdb: rdb, ceiling: ceiling, prefix: prefix}
}

func (l *Redis) Ceiling() int { return l.ceiling }

func (l *Redis) key(date time.Time, slot string) string {
	return l.prefix + ":" + dateKey(date) + ":" + slot
}

func (l *Redis) Remaining(ctx context.Context, date time.Time, slot string) (int, error) {
	used, err := l.rdb.Get(ctx, l.key(date, slot)).Int()
	if err == redis.Nil {
		return l.ceiling, nil
	}
	if err != nil {
		return 0, fmt.Errorf("ledger: read %s %s: %w", dateKey(date), slot, err)
	}
	return l.ceiling - used, nil
}

func (l *Redis) Reserve(ctx context.Context, date time.Time, slot string, units int) error {
	if units <= 0 {
		return fmt.Errorf("ledger: units must be positive (got %d)", units)
	}
	res, err := reserveScript.Run(ctx, l.rdb, []string{l.key(date, slot)}, units, l.ceiling).Result()
	if err != nil {
		return fmt.Errorf("ledger: reserve %s %s: %w", dateKey(date), slot, err)
	}
	n, err := toInt64(res)
	if err != nil {
		return err
	}
	if n < 0 {
		return ErrInsufficientCapacity
	}
	return nil
}

// Seed applies entries with SETNX semantics so an existing shared ledger is not overwritten.
func (l *Redis) Seed(ctx context.Context, entries []Entry) error {
	for _, e := range entries {
		units := min(e.Units, l.ceiling)
		if units <= 0 {
			continue
		}
		if err := l.rdb.SetNX(ctx, l.key(e.Date, e.Slot), units, 0).Err(); err != nil {
			return fmt.Errorf("ledger: seed %s %s: %w", dateKey(e.Date), e.Slot, err)
		}
	}
	return nil
}

func (l *Redis) ReadyCheck() func(context.Context) error {
	return func(ctx context.Context) error {
		return l.rdb.Ping(ctx).Err()
	}
}

func toInt64(res any) (int64, error) {
	switch v := res.(type) {
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case string:
		return strconv.ParseInt(v, 10, 64)
	default:
		return 0, fmt.Errorf("ledger: unexpected redis script result type %T", res)
	}
}
