package catalog

import (
	"strings"
	"testing"
	"time"

	"github.com/smarterdog/grooming/services/grooming-service/internal/calendar"
)

func TestDefaultCatalog(t *testing.T) {
	c := MustNew(DefaultConfig())
	got := c.SlotsFor(calendar.OperatingDay{IsOpen: true})
	want := "08:30,09:00,09:30,10:00,10:30,11:00,11:30,12:00,12:30,13:00"
	if strings.Join(got, ",") != want {
		t.Fatalf("unexpected slots %v", got)
	}
	if c.Len() != 10 {
		t.Fatalf("expected 10 slots, got %d", c.Len())
	}
}

func TestSlotsForClosedDayIsEmpty(t *testing.T) {
	c := MustNew(DefaultConfig())
	if got := c.SlotsFor(calendar.OperatingDay{IsOpen: false}); len(got) != 0 {
		t.Fatalf("expected no slots for a closed day, got %v", got)
	}
}

func TestSlotsForReturnsCopy(t *testing.T) {
	c := MustNew(DefaultConfig())
	open := calendar.OperatingDay{IsOpen: true}
	first := c.SlotsFor(open)
	first[0] = "23:59"
	if c.SlotsFor(open)[0] != "08:30" {
		t.Fatal("catalog was mutated through a returned slice")
	}
}

func TestContains(t *testing.T) {
	c := MustNew(DefaultConfig())
	if !c.Contains("10:30") || c.Contains("10:15") || c.Contains("23:59") {
		t.Fatal("unexpected membership")
	}
}

func TestNewRejectsBadConfig(t *testing.T) {
	bad := []Config{
		{First: "8.30", Last: "13:00", Step: 30 * time.Minute},
		{First: "08:30", Last: "13:00", Step: 0},
		{First: "13:00", Last: "08:30", Step: 30 * time.Minute},
	}
	for _, cfg := range bad {
		if _, err := New(cfg); err == nil {
			t.Fatalf("expected error for %+v", cfg)
		}
	}
}

func TestParseClock(t *testing.T) {
	cases := map[string]string{"9:00": "09:00", "09:00": "09:00", "10:30:00": "10:30", " 12:00 ": "12:00"}
	for in, want := range cases {
		got, ok := ParseClock(in)
		if !ok || got != want {
			t.Fatalf("ParseClock(%q) = %q, %v", in, got, ok)
		}
	}
	if _, ok := ParseClock("noon"); ok {
		t.Fatal("expected failure for non-clock input")
	}
}

func TestMinutes(t *testing.T) {
	if Minutes("10:30") != 630 || Minutes("bad") != -1 {
		t.Fatal("unexpected minute conversion")
	}
}
