package model

import (
	"errors"
	"testing"
	"time"
)

func TestDogSizeUnits(t *testing.T) {
	if DogSizeSmall.Units() != 1 || DogSizeMedium.Units() != 1 || DogSizeLarge.Units() != 2 {
		t.Fatalf("unexpected unit mapping")
	}
}

func TestParseDogSize(t *testing.T) {
	s, err := ParseDogSize(" Large ")
	if err != nil || s != DogSizeLarge {
		t.Fatalf("expected large, got %q (%v)", s, err)
	}
	if _, err := ParseDogSize("huge"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-07-17")
	if err != nil {
		t.Fatalf("ParseDate failed: %v", err)
	}
	if !d.Equal(time.Date(2024, 7, 17, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected date %s", d)
	}
	for _, raw := range []string{"", "17/07/2024", "2024-02-30", "2024-07-17T10:30:00Z"} {
		if _, err := ParseDate(raw); ReasonOf(err) != ReasonInvalidInput {
			t.Fatalf("expected InvalidInput for %q, got %v", raw, err)
		}
	}
}

func TestParseBookingRequest(t *testing.T) {
	in := BookingInput{
		DogName:       "Luna",
		DogSize:       "medium",
		RequestedDate: "2024-07-17",
		RequestedTime: "10:30",
		CustomerName:  "Sarah Chen",
		ContactNumber: "555-0123",
	}
	req, err := ParseBookingRequest(in)
	if err != nil {
		t.Fatalf("ParseBookingRequest failed: %v", err)
	}
	if req.DogSize != DogSizeMedium || req.RequestedTime != "10:30" || FormatDate(req.RequestedDate) != "2024-07-17" {
		t.Fatalf("unexpected request %+v", req)
	}

	in.CustomerName = "  "
	if _, err := ParseBookingRequest(in); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for blank customer, got %v", err)
	}
}

func TestRejectionUnwrap(t *testing.T) {
	err := error(Reject(ReasonCapacityExceeded, "slot full"))
	if !errors.Is(err, ErrCapacityExceeded) || errors.Is(err, ErrClosedDay) {
		t.Fatalf("unexpected unwrap behaviour for %v", err)
	}
	if ReasonOf(err) != ReasonCapacityExceeded {
		t.Fatalf("unexpected reason %q", ReasonOf(err))
	}
	if ReasonOf(errors.New("other")) != "" {
		t.Fatal("expected empty reason for foreign error")
	}
}
