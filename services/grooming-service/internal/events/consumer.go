package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/smarterdog/grooming/libs/kafkax"
	otelx "github.com/smarterdog/grooming/libs/otel"
)

// Inbox deduplicates deliveries by event id. Forget undoes Record when handling fails.
type Inbox interface {
	Record(ctx context.Context, eventID, eventType string) (bool, error)
	Forget(ctx context.Context, eventID string) error
}

type Handler func(ctx context.Context, evt Event) error

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type ConsumerConfig struct {
	Brokers string
	GroupID string
	Topic   string
}

// Consumer reads booking events from Kafka. A message is committed once it has been
// handled, skipped as a duplicate, or found undecodable. A failing message is retried
// until it succeeds or the context ends.
type Consumer struct {
	reader  messageReader
	inbox   Inbox
	handler Handler
	logger  *slog.Logger
	tracer  trace.Tracer
	backoff time.Duration
}

func NewConsumer(logger *slog.Logger, inbox Inbox, cfg ConsumerConfig, handler Handler) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  kafkax.SplitBrokers(cfg.Brokers),
		GroupID:  cfg.GroupID,
		Topic:    cfg.Topic,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	return newConsumer(reader, logger, inbox, handler)
}

func newConsumer(reader messageReader, logger *slog.Logger, inbox Inbox, handler Handler) *Consumer {
	return &Consumer{
		reader:  reader,
		inbox:   inbox,
		handler: handler,
		logger:  logger,
		tracer:  otelx.Tracer("grooming-service/events"),
		backoff: time.Second,
	}
}

// Run blocks until ctx is cancelled.
func (c *Consumer) Run(ctx context.Context) {
	defer c.reader.Close()

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.logger.Error("kafka read error", "err", err)
			c.sleep(ctx)
			continue
		}
		for {
			err := c.process(ctx, msg)
			if err == nil || ctx.Err() != nil {
				break
			}
			c.logger.Error("event handling failed", "err", err, "offset", msg.Offset)
			c.sleep(ctx)
		}
		if ctx.Err() != nil {
			return
		}
		if err := c.reader.CommitMessages(ctx, msg); err != nil && ctx.Err() == nil {
			c.logger.Error("kafka commit failed", "err", err)
		}
	}
}

func (c *Consumer) process(ctx context.Context, msg kafka.Message) error {
	ctx = kafkax.ExtractTraceContext(ctx, msg)
	ctx, span := c.tracer.Start(ctx, "kafka.consume", trace.WithAttributes(
		attribute.String("messaging.system", "kafka"),
		attribute.String("messaging.destination", msg.Topic),
	))
	defer span.End()

	meta := kafkax.ExtractEventMeta(msg)
	var evt Event
	if err := json.Unmarshal(msg.Value, &evt); err != nil {
		c.logger.ErrorContext(ctx, "invalid event payload", "err", err, "event_id", meta.EventID)
		return nil
	}
	if evt.Type != TypeBookingConfirmed {
		c.logger.DebugContext(ctx, "ignoring event", "event_type", evt.Type)
		return nil
	}

	// Event keys are operating dates, so the generic key fallback would merge distinct bookings.
	if kafkax.HeaderValue(msg.Headers, kafkax.HeaderEventID) == "" {
		meta.EventID = evt.ID
	}
	fresh, err := c.inbox.Record(ctx, meta.EventID, meta.EventType)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("inbox record: %w", err)
	}
	if !fresh {
		c.logger.InfoContext(ctx, "duplicate event ignored", "event_id", meta.EventID)
		return nil
	}
	if err := c.handler(ctx, evt); err != nil {
		span.RecordError(err)
		if ferr := c.inbox.Forget(ctx, meta.EventID); ferr != nil {
			c.logger.ErrorContext(ctx, "inbox forget failed", "err", ferr, "event_id", meta.EventID)
		}
		return err
	}
	return nil
}

func (c *Consumer) sleep(ctx context.Context) {
	select {
	case <-ctx.Done():
	case <-time.After(c.backoff):
	}
}
