package calendar

import (
	"sync"
	"time"
)

// bankHolidays computes the holiday dates the salon observes for a year: the spring and
// summer bank holidays (last Monday of May and August) and Christmas Day with its
// weekend substitute.
func bankHolidays(year int) map[time.Time]struct{} {
	christmas := date(year, time.December, 25)
	days := []time.Time{
		lastWeekdayOfMonth(year, time.May, time.Monday),
		lastWeekdayOfMonth(year, time.August, time.Monday),
		christmas,
	}
	switch christmas.Weekday() {
	case time.Saturday:
		days = append(days, christmas.AddDate(0, 0, 2))
	case time.Sunday:
		days = append(days, christmas.AddDate(0, 0, 1))
	}

	out := make(map[time.Time]struct{}, len(days))
	for _, d := range days {
		out[d] = struct{}{}
	}
	return out
}

func lastWeekdayOfMonth(year int, month time.Month, wd time.Weekday) time.Time {
	// Day 0 of the next month normalises to the last day of this one.
	d := date(year, month+1, 0)
	for d.Weekday() != wd {
		d = d.AddDate(0, 0, -1)
	}
	return d
}

// holidayCache memoises bankHolidays per year.
type holidayCache struct {
	mu    sync.RWMutex
	years map[int]map[time.Time]struct{}
}

func (c *holidayCache) forYear(year int) map[time.Time]struct{} {
	c.mu.RLock()
	h, ok := c.years[year]
	c.mu.RUnlock()
	if ok {
		return h
	}

	h = bankHolidays(year)
	c.mu.Lock()
	if c.years == nil {
		c.years = make(map[int]map[time.Time]struct{})
	}
	c.years[year] = h
	c.mu.Unlock()
	return h
}

// inChristmasShutdown covers 24–26 December and the Monday–Wednesday run starting on the
// first Monday after Boxing Day. That run can begin in January, so the previous year's
// window is checked too.
func inChristmasShutdown(d time.Time) bool {
	if d.Month() == time.December && d.Day() >= 24 && d.Day() <= 26 {
		return true
	}
	for _, year := range []int{d.Year(), d.Year() - 1} {
		start := firstMondayAfter(date(year, time.December, 26))
		if !d.Before(start) && d.Before(start.AddDate(0, 0, 3)) {
			return true
		}
	}
	return false
}

func firstMondayAfter(d time.Time) time.Time {
	d = d.AddDate(0, 0, 1)
	for d.Weekday() != time.Monday {
		d = d.AddDate(0, 0, 1)
	}
	return d
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
