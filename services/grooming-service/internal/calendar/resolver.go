// Package calendar maps a requested date onto the day the salon actually operates.
package calendar

import (
	"fmt"
	"strings"
	"time"

	"github.com/smarterdog/grooming/services/grooming-service/internal/model"
)

// OperatingDay is derived from a requested date on every call; it is never stored.
type OperatingDay struct {
	Requested time.Time
	Date      time.Time
	IsOpen    bool
	Notes     []string
}

type Config struct {
	// OpenWeekdays defaults to Monday–Wednesday.
	OpenWeekdays []time.Weekday
	// ShiftTo is where bookings falling on a holiday move within the same week.
	// The zero value (Sunday) means Thursday.
	ShiftTo time.Weekday
	// ExtraHolidays are observed in addition to the computed bank holidays.
	ExtraHolidays []time.Time
}

type Resolver struct {
	open     map[time.Weekday]bool
	shiftTo  time.Weekday
	extra    map[time.Time]struct{}
	holidays holidayCache
}

func NewResolver(cfg Config) *Resolver {
	if len(cfg.OpenWeekdays) == 0 {
		cfg.OpenWeekdays = []time.Weekday{time.Monday, time.Tuesday, time.Wednesday}
	}
	if cfg.ShiftTo == time.Sunday {
		cfg.ShiftTo = time.Thursday
	}
	r := &Resolver{
		open:    make(map[time.Weekday]bool, len(cfg.OpenWeekdays)),
		shiftTo: cfg.ShiftTo,
		extra:   make(map[time.Time]struct{}, len(cfg.ExtraHolidays)),
	}
	for _, wd := range cfg.OpenWeekdays {
		r.open[wd] = true
	}
	for _, d := range cfg.ExtraHolidays {
		r.extra[truncate(d)] = struct{}{}
	}
	return r
}

// IsHoliday reports whether d is a bank holiday or a configured extra holiday.
func (r *Resolver) IsHoliday(d time.Time) bool {
	d = truncate(d)
	if _, ok := r.extra[d]; ok {
		return true
	}
	_, ok := r.holidays.forYear(d.Year())[d]
	return ok
}

// InShutdown reports whether d falls in the Christmas shutdown.
func (r *Resolver) InShutdown(d time.Time) bool {
	return inChristmasShutdown(truncate(d))
}

// Resolve never fails: closed days come back with IsOpen=false and at least one note.
// A requested date inside the Christmas shutdown is closed outright and never shifted.
func (r *Resolver) Resolve(requested time.Time) OperatingDay {
	requested = truncate(requested)
	day := OperatingDay{Requested: requested, Date: requested}

	if r.InShutdown(requested) {
		day.Notes = append(day.Notes, shutdownNote(requested))
		return day
	}

	if !r.open[requested.Weekday()] {
		day.Notes = append(day.Notes, fmt.Sprintf("%s falls on %s, salon closed.",
			model.FormatDate(requested), requested.Weekday()))
		return day
	}

	if !r.IsHoliday(requested) {
		day.IsOpen = true
		return day
	}

	day.Date = r.shiftWithinWeek(requested)
	day.Notes = append(day.Notes, fmt.Sprintf("%s is a bank holiday, booking moved to %s.",
		model.FormatDate(requested), model.FormatDate(day.Date)))

	switch {
	case r.InShutdown(day.Date):
		day.Notes = append(day.Notes, shutdownNote(day.Date))
	case r.IsHoliday(day.Date):
		// Consecutive holidays do not chain: the shifted day is closed rather than moved again.
		day.Notes = append(day.Notes, fmt.Sprintf("%s is also a holiday, salon closed.", model.FormatDate(day.Date)))
	default:
		day.IsOpen = true
	}
	return day
}

func shutdownNote(d time.Time) string {
	return fmt.Sprintf("%s is during the Christmas shutdown.", model.FormatDate(d))
}

func (r *Resolver) shiftWithinWeek(d time.Time) time.Time {
	delta := int(r.shiftTo) - int(d.Weekday())
	if delta <= 0 {
		delta += 7
	}
	return d.AddDate(0, 0, delta)
}

// ParseWeekdays converts names such as "monday" or "Tue" into weekdays.
func ParseWeekdays(names []string) ([]time.Weekday, error) {
	out := make([]time.Weekday, 0, len(names))
	for _, n := range names {
		n = strings.ToLower(strings.TrimSpace(n))
		if n == "" {
			continue
		}
		wd, ok := weekdayNames[n]
		if !ok && len(n) >= 3 {
			wd, ok = weekdayNames[n[:3]]
		}
		if !ok {
			return nil, fmt.Errorf("unknown weekday %q", n)
		}
		out = append(out, wd)
	}
	return out, nil
}

var weekdayNames = map[string]time.Weekday{
	"sun": time.Sunday, "sunday": time.Sunday,
	"mon": time.Monday, "monday": time.Monday,
	"tue": time.Tuesday, "tuesday": time.Tuesday,
	"wed": time.Wednesday, "wednesday": time.Wednesday,
	"thu": time.Thursday, "thursday": time.Thursday,
	"fri": time.Friday, "friday": time.Friday,
	"sat": time.Saturday, "saturday": time.Saturday,
}

func truncate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
