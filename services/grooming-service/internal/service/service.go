// Package service is the boundary between transports and the booking engine. It parses
// raw input, and after a confirmed booking it journals the record and announces it.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/smarterdog/grooming/services/grooming-service/internal/engine"
	"github.com/smarterdog/grooming/services/grooming-service/internal/events"
	"github.com/smarterdog/grooming/services/grooming-service/internal/ledger"
	"github.com/smarterdog/grooming/services/grooming-service/internal/model"
)

// Journal is durable storage for confirmed bookings.
type Journal interface {
	Insert(ctx context.Context, rec model.BookingRecord) error
	ListRecent(ctx context.Context, limit int) ([]model.BookingRecord, error)
	LedgerUsage(ctx context.Context, from time.Time) ([]ledger.Entry, error)
}

type Service struct {
	engine    *engine.Engine
	journal   Journal
	publisher events.Publisher
	logger    *slog.Logger
	now       func() time.Time
}

type Option func(*Service)

func WithJournal(j Journal) Option {
	return func(s *Service) { s.journal = j }
}

func WithPublisher(p events.Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func New(eng *engine.Engine, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		engine:    eng,
		publisher: events.Noop{},
		logger:    logger,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetAvailableSlots parses the raw date and size and lists open slots.
func (s *Service) GetAvailableSlots(ctx context.Context, date, dogSize string) (model.Availability, error) {
	d, err := model.ParseDate(date)
	if err != nil {
		return model.Availability{}, err
	}
	size, err := model.ParseDogSize(dogSize)
	if err != nil {
		return model.Availability{}, err
	}
	return s.engine.AvailableSlots(ctx, d, size)
}

// BookAppointment parses in and commits it. Every rejection, including malformed input,
// comes back as a Failed record alongside a *model.Rejection.
func (s *Service) BookAppointment(ctx context.Context, in model.BookingInput) (model.BookingRecord, error) {
	req, err := model.ParseBookingRequest(in)
	if err != nil {
		rec := model.BookingRecord{
			DogName:       in.DogName,
			DogSize:       model.DogSize(in.DogSize),
			RequestedDate: in.RequestedDate,
			Date:          in.RequestedDate,
			Time:          in.RequestedTime,
			CustomerName:  in.CustomerName,
			ContactNumber: in.ContactNumber,
			Status:        model.StatusFailed,
			Reason:        model.ReasonOf(err),
			Notes:         []string{noteOf(err)},
			CreatedAt:     s.now().UTC(),
		}
		return rec, err
	}

	rec, err := s.engine.Book(ctx, req)
	if err != nil {
		return rec, err
	}
	s.afterConfirm(ctx, rec)
	return rec, nil
}

// afterConfirm never fails the booking: the ledger has already been committed.
func (s *Service) afterConfirm(ctx context.Context, rec model.BookingRecord) {
	if s.journal != nil {
		if err := s.journal.Insert(ctx, rec); err != nil {
			s.logger.ErrorContext(ctx, "journal booking failed", "booking_id", rec.ID, "err", err)
		}
	}
	if err := s.publisher.Publish(ctx, events.BookingConfirmed(rec, s.now())); err != nil {
		s.logger.ErrorContext(ctx, "publish booking event failed", "booking_id", rec.ID, "err", err)
	}
}

// RecentBookings reads from the journal when one is configured, otherwise from the
// in-process history.
func (s *Service) RecentBookings(ctx context.Context, limit int) ([]model.BookingRecord, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	if s.journal != nil {
		return s.journal.ListRecent(ctx, limit)
	}
	return s.engine.History().Recent(limit), nil
}

// Rehydrate loads journaled usage from the given day onward into a process-local ledger.
func Rehydrate(ctx context.Context, j Journal, mem *ledger.Memory, from time.Time) (int, error) {
	entries, err := j.LedgerUsage(ctx, from)
	if err != nil {
		return 0, err
	}
	mem.Load(entries)
	return len(entries), nil
}

func noteOf(err error) string {
	var rej *model.Rejection
	if errors.As(err, &rej) {
		return rej.Note
	}
	return err.Error()
}
