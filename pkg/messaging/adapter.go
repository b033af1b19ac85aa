package messaging

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/salon-api/pkg/logger"
	"github.com/jwalitptl/salon-api/pkg/metrics"
)

// EventPublisher adapts a Broker to the Publisher interface. Events go to a
// single channel and carry their type in the envelope.
type EventPublisher struct {
	broker  Broker
	channel string
	logger  *logger.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewEventPublisher(broker Broker, channel string, log *logger.Logger, m *metrics.Metrics) *EventPublisher {
	return &EventPublisher{
		broker:  broker,
		channel: channel,
		logger:  log,
		metrics: m,
		now:     time.Now,
	}
}

func (p *EventPublisher) Publish(ctx context.Context, eventType string, payload interface{}) error {
	evt := Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		OccurredAt: p.now().UTC(),
		Payload:    payload,
	}
	if err := p.broker.Publish(ctx, p.channel, evt); err != nil {
		p.metrics.EventsPublished.WithLabelValues(eventType, "error").Inc()
		p.logger.Warn(err, "failed to publish event", "event_type", eventType, "event_id", evt.ID)
		return err
	}
	p.metrics.EventsPublished.WithLabelValues(eventType, "ok").Inc()
	return nil
}

// NopPublisher discards events.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, interface{}) error { return nil }
