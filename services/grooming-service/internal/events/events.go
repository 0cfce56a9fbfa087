// Package events publishes booking confirmations for downstream consumers such as the
// spreadsheet logger.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/smarterdog/grooming/services/grooming-service/internal/model"
)

const TypeBookingConfirmed = "grooming.booking.confirmed.v1"

type Event struct {
	ID         string              `json:"event_id"`
	Type       string              `json:"event_type"`
	OccurredAt time.Time           `json:"occurred_at"`
	Booking    model.BookingRecord `json:"booking"`
}

func BookingConfirmed(rec model.BookingRecord, now time.Time) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       TypeBookingConfirmed,
		OccurredAt: now.UTC(),
		Booking:    rec,
	}
}

// Key groups events for the same operating day onto one partition.
func (e Event) Key() string {
	return e.Booking.Date
}

type Publisher interface {
	Publish(ctx context.Context, evt Event) error
	Close() error
}

// Noop drops every event.
type Noop struct{}

func (Noop) Publish(context.Context, Event) error { return nil }

func (Noop) Close() error { return nil }
