package messaging

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/salon-api/pkg/logger"
	"github.com/jwalitptl/salon-api/pkg/metrics"
)

type failingBroker struct{}

func (failingBroker) Publish(context.Context, string, interface{}) error {
	return errors.New("connection refused")
}

func (failingBroker) Close() error { return nil }

func TestEventPublisher_WrapsPayloadInEnvelope(t *testing.T) {
	broker := NewMemoryBroker()
	m := metrics.NewNop()
	p := NewEventPublisher(broker, "salon.events", logger.Nop(), m)

	require.NoError(t, p.Publish(context.Background(), "payment.completed", map[string]int64{"payment_id": 7}))

	msgs := broker.Messages("salon.events")
	require.Len(t, msgs, 1)
	evt, ok := msgs[0].(Event)
	require.True(t, ok)
	assert.Equal(t, "payment.completed", evt.Type)
	assert.NotEmpty(t, evt.ID)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.EventsPublished.WithLabelValues("payment.completed", "ok")))
}

func TestEventPublisher_CountsFailures(t *testing.T) {
	m := metrics.NewNop()
	p := NewEventPublisher(failingBroker{}, "salon.events", logger.Nop(), m)

	assert.Error(t, p.Publish(context.Background(), "payment.failed", nil))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.EventsPublished.WithLabelValues("payment.failed", "error")))
}
