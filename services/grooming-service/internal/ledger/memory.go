package ledger

import (
	"context"
	"fmt"
	"sync"
	"time"
)

type slotKey struct {
	date string
	slot string
}

// Memory is a process-local ledger.
type Memory struct {
	mu      sync.Mutex
	ceiling int
	used    map[slotKey]int
}

func NewMemory(ceiling int, seed ...Entry) *Memory {
	if ceiling <= 0 {
		ceiling = DefaultCeiling
	}
	m := &Memory{ceiling: ceiling, used: map[slotKey]int{}}
	m.Load(seed)
	return m
}

// Load adds usage from entries, clamped to the ceiling. Used for seeding and rehydration.
func (m *Memory) Load(entries []Entry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range entries {
		if e.Units <= 0 {
			continue
		}
		k := slotKey{dateKey(e.Date), e.Slot}
		m.used[k] = min(m.used[k]+e.Units, m.ceiling)
	}
}

func (m *Memory) Ceiling() int { return m.ceiling }

func (m *Memory) Remaining(_ context.Context, date time.Time, slot string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ceiling - m.used[slotKey{dateKey(date), slot}], nil
}

func (m *Memory) Reserve(_ context.Context, date time.Time, slot string, units int) error {
	if units <= 0 {
		return fmt.Errorf("ledger: units must be positive (got %d)", units)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	k := slotKey{dateKey(date), slot}
	if m.used[k]+units > m.ceiling {
		return ErrInsufficientCapacity
	}
	m.used[k] += units
	return nil
}
