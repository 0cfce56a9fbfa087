// Package catalog holds the fixed list of appointment start times offered on open days.
package catalog

import (
	"fmt"
	"strings"
	"time"

	"github.com/smarterdog/grooming/services/grooming-service/internal/calendar"
)

const clockLayout = "15:04"

type Config struct {
	First string        // first slot, "HH:MM"
	Last  string        // last slot, inclusive
	Step  time.Duration // spacing between slots
}

// DefaultConfig is the salon's 30-minute grid from 08:30 to 13:00.
func DefaultConfig() Config {
	return Config{First: "08:30", Last: "13:00", Step: 30 * time.Minute}
}

// Catalog is immutable after construction and safe to share.
type Catalog struct {
	slots []string
	index map[string]struct{}
}

func New(cfg Config) (*Catalog, error) {
	first, err := time.Parse(clockLayout, cfg.First)
	if err != nil {
		return nil, fmt.Errorf("catalog: invalid first slot %q", cfg.First)
	}
	last, err := time.Parse(clockLayout, cfg.Last)
	if err != nil {
		return nil, fmt.Errorf("catalog: invalid last slot %q", cfg.Last)
	}
	if cfg.Step < time.Minute {
		return nil, fmt.Errorf("catalog: step must be at least one minute (got %s)", cfg.Step)
	}
	if last.Before(first) {
		return nil, fmt.Errorf("catalog: last slot %s is before first slot %s", cfg.Last, cfg.First)
	}

	c := &Catalog{index: map[string]struct{}{}}
	for t := first; !t.After(last); t = t.Add(cfg.Step) {
		s := t.Format(clockLayout)
		c.slots = append(c.slots, s)
		c.index[s] = struct{}{}
	}
	return c, nil
}

// MustNew is New for static configuration known to be valid.
func MustNew(cfg Config) *Catalog {
	c, err := New(cfg)
	if err != nil {
		panic(err)
	}
	return c
}

// SlotsFor returns a copy of the catalog for an open day and nothing for a closed one.
func (c *Catalog) SlotsFor(day calendar.OperatingDay) []string {
	if !day.IsOpen {
		return nil
	}
	return append([]string(nil), c.slots...)
}

// Contains reports whether slot (already normalised by ParseClock) is offered.
func (c *Catalog) Contains(slot string) bool {
	_, ok := c.index[slot]
	return ok
}

func (c *Catalog) Len() int { return len(c.slots) }

// ParseClock normalises "9:00", "09:00" and "09:00:00" to "09:00".
func ParseClock(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	for _, layout := range []string{clockLayout, "15:04:05", "3:04"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format(clockLayout), true
		}
	}
	return "", false
}

// Minutes converts an "HH:MM" slot into minutes after midnight.
func Minutes(slot string) int {
	t, err := time.Parse(clockLayout, slot)
	if err != nil {
		return -1
	}
	return t.Hour()*60 + t.Minute()
}
