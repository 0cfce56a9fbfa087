// Package engine serves availability queries and booking commits on top of the calendar,
// slot catalog and capacity ledger.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	otelx "github.com/smarterdog/grooming/libs/otel"
	"github.com/smarterdog/grooming/services/grooming-service/internal/calendar"
	"github.com/smarterdog/grooming/services/grooming-service/internal/catalog"
	"github.com/smarterdog/grooming/services/grooming-service/internal/ledger"
	"github.com/smarterdog/grooming/services/grooming-service/internal/model"
)

// State is the position of a single request in the booking state machine.
type State string

const (
	StatePending           State = "Pending"
	StateResolvingDay      State = "ResolvingDay"
	StateCheckingSlot      State = "CheckingSlot"
	StateReservingCapacity State = "ReservingCapacity"
	StateConfirmed         State = "Confirmed"
	StateRejected          State = "Rejected"
)

// alternativesShown caps the slots suggested when a requested slot is full.
const alternativesShown = 3

type Options struct {
	Logger       *slog.Logger
	HistoryLimit int
	Now          func() time.Time
	NewID        func() string
}

type Engine struct {
	resolver *calendar.Resolver
	catalog  *catalog.Catalog
	ledger   ledger.Ledger
	history  *History
	logger   *slog.Logger
	tracer   trace.Tracer
	now      func() time.Time
	newID    func() string
}

func New(resolver *calendar.Resolver, cat *catalog.Catalog, l ledger.Ledger, opts Options) *Engine {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	return &Engine{
		resolver: resolver,
		catalog:  cat,
		ledger:   l,
		history:  NewHistory(opts.HistoryLimit),
		logger:   opts.Logger,
		tracer:   otelx.Tracer("grooming-service/engine"),
		now:      opts.Now,
		newID:    opts.NewID,
	}
}

func (e *Engine) History() *History { return e.history }

func (e *Engine) Ledger() ledger.Ledger { return e.ledger }

// AvailableSlots lists the slots on the operating day for date that still have room for a
// dog of the given size. It has no side effects.
func (e *Engine) AvailableSlots(ctx context.Context, date time.Time, size model.DogSize) (model.Availability, error) {
	ctx, span := e.tracer.Start(ctx, "engine.AvailableSlots",
		trace.WithAttributes(attribute.String("dog_size", string(size))))
	defer span.End()

	if !size.Valid() {
		err := model.Reject(model.ReasonInvalidInput, "dog_size must be small, medium, or large (got %q)", size)
		span.SetStatus(codes.Error, err.Error())
		return model.Availability{}, err
	}

	day := e.resolver.Resolve(date)
	out := model.Availability{
		RequestedDate:  model.FormatDate(day.Requested),
		OperatingDate:  model.FormatDate(day.Date),
		DogSize:        size,
		AvailableSlots: []string{},
		Notes:          append([]string{}, day.Notes...),
	}
	span.SetAttributes(attribute.String("operating_date", out.OperatingDate), attribute.Bool("open", day.IsOpen))

	if !day.IsOpen {
		if len(out.Notes) == 0 {
			out.Notes = append(out.Notes, fmt.Sprintf("%s is outside operating days.", out.RequestedDate))
		}
		return out, nil
	}

	slots, err := e.openSlots(ctx, day, size)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return model.Availability{}, err
	}
	out.AvailableSlots = slots
	span.SetAttributes(attribute.Int("available", len(slots)))
	return out, nil
}

func (e *Engine) openSlots(ctx context.Context, day calendar.OperatingDay, size model.DogSize) ([]string, error) {
	units := size.Units()
	out := []string{}
	for _, slot := range e.catalog.SlotsFor(day) {
		remaining, err := e.ledger.Remaining(ctx, day.Date, slot)
		if err != nil {
			return nil, fmt.Errorf("engine: remaining capacity for %s %s: %w", model.FormatDate(day.Date), slot, err)
		}
		if remaining >= units {
			out = append(out, slot)
		}
	}
	return out, nil
}

// Book commits a booking. Business rejections return a record with status Failed together
// with a *model.Rejection; any other error means the ledger could not be consulted.
func (e *Engine) Book(ctx context.Context, req model.BookingRequest) (model.BookingRecord, error) {
	ctx, span := e.tracer.Start(ctx, "engine.Book",
		trace.WithAttributes(attribute.String("dog_size", string(req.DogSize))))
	defer span.End()

	rec := model.BookingRecord{
		DogName:       req.DogName,
		DogSize:       req.DogSize,
		RequestedDate: model.FormatDate(req.RequestedDate),
		Date:          model.FormatDate(req.RequestedDate),
		Time:          strings.TrimSpace(req.RequestedTime),
		CustomerName:  req.CustomerName,
		ContactNumber: req.ContactNumber,
		Notes:         []string{},
		CreatedAt:     e.now().UTC(),
	}
	state := StatePending

	reject := func(rej *model.Rejection) (model.BookingRecord, error) {
		e.transition(ctx, &state, StateRejected)
		rec.Status = model.StatusFailed
		rec.Reason = rej.Reason
		rec.Notes = append(rec.Notes, rej.Note)
		span.SetAttributes(attribute.String("outcome", string(rej.Reason)))
		e.logger.InfoContext(ctx, "booking rejected",
			"reason", rej.Reason, "date", rec.Date, "time", rec.Time, "dog_size", rec.DogSize)
		return rec, rej
	}

	if !req.DogSize.Valid() {
		return reject(model.Reject(model.ReasonInvalidInput, "dog_size must be small, medium, or large (got %q)", req.DogSize))
	}

	e.transition(ctx, &state, StateResolvingDay)
	day := e.resolver.Resolve(req.RequestedDate)
	rec.Date = model.FormatDate(day.Date)
	rec.Notes = append(rec.Notes, day.Notes...)
	span.SetAttributes(attribute.String("operating_date", rec.Date))
	if !day.IsOpen {
		return reject(model.Reject(model.ReasonClosedDay, "Salon closed on %s", rec.Date))
	}

	e.transition(ctx, &state, StateCheckingSlot)
	slot, ok := catalog.ParseClock(req.RequestedTime)
	if ok {
		rec.Time = slot
	}
	if !ok || !e.catalog.Contains(slot) {
		return reject(model.Reject(model.ReasonInvalidSlotTime, "Requested time is outside operating hours."))
	}

	e.transition(ctx, &state, StateReservingCapacity)
	if err := e.ledger.Reserve(ctx, day.Date, slot, req.DogSize.Units()); err != nil {
		if !errors.Is(err, ledger.ErrInsufficientCapacity) {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return model.BookingRecord{}, fmt.Errorf("engine: reserve %s %s: %w", rec.Date, slot, err)
		}
		note := "Requested slot is full; pick another time."
		if open, err := e.openSlots(ctx, day, req.DogSize); err == nil {
			if alt := NearestAlternatives(slot, open, alternativesShown); len(alt) > 0 {
				note += " Nearest open slots: " + strings.Join(alt, ", ") + "."
			}
		}
		return reject(model.Reject(model.ReasonCapacityExceeded, "%s", note))
	}

	e.transition(ctx, &state, StateConfirmed)
	rec.ID = e.newID()
	rec.Status = model.StatusBooked
	e.history.Append(rec)
	span.SetAttributes(attribute.String("outcome", string(model.StatusBooked)))
	e.logger.InfoContext(ctx, "booking confirmed",
		"booking_id", rec.ID, "date", rec.Date, "time", rec.Time, "dog_size", rec.DogSize)
	return rec, nil
}

func (e *Engine) transition(ctx context.Context, state *State, next State) {
	e.logger.DebugContext(ctx, "booking state", "from", *state, "to", next)
	*state = next
}
