package ledger

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var day = time.Date(2024, 7, 17, 0, 0, 0, 0, time.UTC)

func TestMemoryReserveWithinCeiling(t *testing.T) {
	m := NewMemory(2)
	ctx := context.Background()
	if err := m.Reserve(ctx, day, "09:00", 1); err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if err := m.Reserve(ctx, day, "09:00", 1); err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if err := m.Reserve(ctx, day, "09:00", 1); !errors.Is(err, ErrInsufficientCapacity) {
		t.Fatalf("expected ErrInsufficientCapacity, got %v", err)
	}
	if r, _ := m.Remaining(ctx, day, "09:00"); r != 0 {
		t.Fatalf("expected 0 remaining, got %d", r)
	}
}

func TestMemoryRejectedReserveLeavesStateUnchanged(t *testing.T) {
	m := NewMemory(2, DemoSeed()...)
	ctx := context.Background()
	if err := m.Reserve(ctx, day, "10:30", 2); !errors.Is(err, ErrInsufficientCapacity) {
		t.Fatalf("expected ErrInsufficientCapacity, got %v", err)
	}
	if r, _ := m.Remaining(ctx, day, "10:30"); r != 1 {
		t.Fatalf("expected 1 remaining after failed reserve, got %d", r)
	}
}

func TestMemoryDemoSeed(t *testing.T) {
	m := NewMemory(DefaultCeiling, DemoSeed()...)
	ctx := context.Background()
	full := time.Date(2024, 7, 10, 0, 0, 0, 0, time.UTC)
	if r, _ := m.Remaining(ctx, full, "09:00"); r != 0 {
		t.Fatalf("expected seeded slot full, got %d", r)
	}
	if r, _ := m.Remaining(ctx, day, "10:30"); r != 1 {
		t.Fatalf("expected 1 remaining, got %d", r)
	}
	if r, _ := m.Remaining(ctx, day, "11:00"); r != 2 {
		t.Fatalf("expected untouched slot at ceiling, got %d", r)
	}
}

func TestMemoryLoadClampsToCeiling(t *testing.T) {
	m := NewMemory(2)
	m.Load([]Entry{{Date: day, Slot: "08:30", Units: 5}})
	if r, _ := m.Remaining(context.Background(), day, "08:30"); r != 0 {
		t.Fatalf("expected clamped usage, got remaining %d", r)
	}
}

func TestMemoryRejectsNonPositiveUnits(t *testing.T) {
	m := NewMemory(2)
	if err := m.Reserve(context.Background(), day, "08:30", 0); err == nil {
		t.Fatal("expected error for zero units")
	}
}

func TestMemoryConcurrentReserveNeverOverbooks(t *testing.T) {
	m := NewMemory(2)
	ctx := context.Background()

	var wg sync.WaitGroup
	var mu sync.Mutex
	ok := 0
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := m.Reserve(ctx, day, "12:00", 1); err == nil {
				mu.Lock()
				ok++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if ok != 2 {
		t.Fatalf("expected exactly 2 successful reservations, got %d", ok)
	}
}

func redisClient(t *testing.T) *redis.Client {
	t.Helper()
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		t.Skipf("redis unavailable: %v", err)
	}
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func TestRedisReserve(t *testing.T) {
	rdb := redisClient(t)
	ctx := context.Background()
	l := NewRedis(rdb, 2, "test-ledger-"+uuid.NewString())

	if r, err := l.Remaining(ctx, day, "09:00"); err != nil || r != 2 {
		t.Fatalf("expected empty slot, got %d (%v)", r, err)
	}
	if err := l.Reserve(ctx, day, "09:00", 2); err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if err := l.Reserve(ctx, day, "09:00", 1); !errors.Is(err, ErrInsufficientCapacity) {
		t.Fatalf("expected ErrInsufficientCapacity, got %v", err)
	}
	if r, _ := l.Remaining(ctx, day, "09:00"); r != 0 {
		t.Fatalf("expected 0 remaining, got %d", r)
	}
}

func TestRedisSeedDoesNotOverwrite(t *testing.T) {
	rdb := redisClient(t)
	ctx := context.Background()
	l := NewRedis(rdb, 2, "test-ledger-"+uuid.NewString())

	if err := l.Reserve(ctx, day, "10:30", 2); err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if err := l.Seed(ctx, DemoSeed()); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if r, _ := l.Remaining(ctx, day, "10:30"); r != 0 {
		t.Fatalf("seed overwrote existing usage, remaining %d", r)
	}
}
