// Package ledger tracks capacity units consumed per (date, slot).
package ledger

import (
	"context"
	"errors"
	"time"
)

// DefaultCeiling is the salon's per-slot capacity.
const DefaultCeiling = 2

// ErrInsufficientCapacity is returned by Reserve when the units do not fit. The ledger is
// left unchanged.
var ErrInsufficientCapacity = errors.New("ledger: insufficient capacity")

// Ledger implementations must make Reserve an atomic check-then-increment so concurrent
// callers can never push a slot over its ceiling. Usage is never decremented.
type Ledger interface {
	Ceiling() int
	Remaining(ctx context.Context, date time.Time, slot string) (int, error)
	Reserve(ctx context.Context, date time.Time, slot string, units int) error
}

// Entry is pre-existing usage for one slot.
type Entry struct {
	Date  time.Time
	Slot  string
	Units int
}

// DemoSeed is the usage the salon demo starts with.
func DemoSeed() []Entry {
	return []Entry{
		{Date: time.Date(2024, 7, 10, 0, 0, 0, 0, time.UTC), Slot: "09:00", Units: 2},
		{Date: time.Date(2024, 7, 17, 0, 0, 0, 0, time.UTC), Slot: "10:30", Units: 1},
	}
}

func dateKey(d time.Time) string {
	return d.Format("2006-01-02")
}
