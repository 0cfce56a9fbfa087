package events

import (
	"context"
	"fmt"

	"github.com/smarterdog/grooming/libs/mq"
	otelx "github.com/smarterdog/grooming/libs/otel"
)

type jsonPublisher interface {
	PublishJSON(ctx context.Context, key, messageID string, headers map[string]string, v any) error
	Close() error
}

// AMQPPublisher routes events by type on a topic exchange.
type AMQPPublisher struct {
	pub jsonPublisher
}

func NewAMQPPublisher(url, exchange string) (*AMQPPublisher, error) {
	pub, err := mq.NewPublisher(url, exchange)
	if err != nil {
		return nil, err
	}
	return &AMQPPublisher{pub: pub}, nil
}

func (p *AMQPPublisher) Publish(ctx context.Context, evt Event) error {
	headers := map[string]string{"event_type": evt.Type}
	if tp, ts := otelx.TraceContextStrings(ctx); tp != "" {
		headers["traceparent"] = tp
		if ts != "" {
			headers["tracestate"] = ts
		}
	}
	if err := p.pub.PublishJSON(ctx, evt.Type, evt.ID, headers, evt); err != nil {
		return fmt.Errorf("publish %s: %w", evt.Type, err)
	}
	return nil
}

// Ready reports broker connectivity when the underlying publisher supports it.
func (p *AMQPPublisher) Ready(ctx context.Context) error {
	if r, ok := p.pub.(interface{ Ready(context.Context) error }); ok {
		return r.Ready(ctx)
	}
	return nil
}

func (p *AMQPPublisher) Close() error {
	return p.pub.Close()
}
