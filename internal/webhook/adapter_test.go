package webhook

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v79/webhook"

	"github.com/jwalitptl/salon-api/internal/gateway"
	stripegw "github.com/jwalitptl/salon-api/internal/gateway/stripe"
	"github.com/jwalitptl/salon-api/internal/model"
	"github.com/jwalitptl/salon-api/internal/policy"
	"github.com/jwalitptl/salon-api/internal/repository"
	"github.com/jwalitptl/salon-api/internal/repository/memory"
	"github.com/jwalitptl/salon-api/internal/service/audit"
	"github.com/jwalitptl/salon-api/internal/service/payment"
	"github.com/jwalitptl/salon-api/pkg/errors"
	"github.com/jwalitptl/salon-api/pkg/logger"
	"github.com/jwalitptl/salon-api/pkg/messaging"
	"github.com/jwalitptl/salon-api/pkg/metrics"
)

const secret = "whsec_adapter_test"

type unusedGateway struct{}

func (unusedGateway) CreateIntent(context.Context, gateway.IntentRequest) (*gateway.Intent, error) {
	return nil, gateway.ErrUnavailable
}

type fixture struct {
	store   *memory.Store
	metrics *metrics.Metrics
	adapter *Adapter
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.New()
	store.AddClient(model.Client{ID: 1, LocationID: 1, Name: "Ana"})
	ref := "pi_123"
	require.NoError(t, store.Payments().Insert(context.Background(), &model.Payment{
		ClientID:         1,
		Amount:           5000,
		Method:           model.PaymentMethodGateway,
		Status:           model.PaymentStatusPending,
		Commission:       1000,
		GatewayReference: &ref,
		IntentKey:        "key-1",
	}))

	m := metrics.NewNop()
	payments := payment.NewService(store, unusedGateway{}, audit.NewRecorder(), messaging.NopPublisher{},
		logger.Nop(), m, payment.Config{CommissionRate: 20, Currency: "USD", GatewayTimeout: time.Second})
	adapter := NewAdapter("stripe", stripegw.NewVerifier(secret, 5*time.Minute), payments, logger.Nop(), m)
	return &fixture{store: store, metrics: m, adapter: adapter}
}

func (f *fixture) payment(t *testing.T) *model.Payment {
	t.Helper()
	p, err := f.store.Payments().GetByID(context.Background(), 1)
	require.NoError(t, err)
	return p
}

func (f *fixture) auditCount(t *testing.T) int {
	t.Helper()
	q := repository.NewQuery(model.ResourceAuditLogs)
	s := policy.AllScope()
	q.Scope = &s
	page, err := f.store.Audit().Find(context.Background(), q)
	require.NoError(t, err)
	return page.Total
}

func event(eventType, intentID string) []byte {
	return []byte(fmt.Sprintf(`{
		"id": "evt_%s",
		"object": "event",
		"type": %q,
		"data": {"object": {"id": %q, "object": "payment_intent", "metadata": {"intent_key": "key-1"}}}
	}`, intentID, eventType, intentID))
}

func sign(payload []byte, key string) string {
	return webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    key,
		Timestamp: time.Now(),
	}).Header
}

func TestHandle_InvalidSignatureIsRejected(t *testing.T) {
	f := newFixture(t)
	body := event("payment_intent.succeeded", "pi_123")

	res, err := f.adapter.Handle(context.Background(), body, sign(body, "whsec_wrong"))
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
	assert.ErrorIs(t, err, gateway.ErrInvalidSignature)
	assert.Equal(t, StatusRejected, res.Status)

	assert.Equal(t, model.PaymentStatusPending, f.payment(t).Status)
	assert.Equal(t, 0, f.auditCount(t))
	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.WebhookResults.WithLabelValues("stripe", "invalid_signature")))
}

func TestHandle_TamperedBodyIsRejected(t *testing.T) {
	f := newFixture(t)
	body := event("payment_intent.payment_failed", "pi_123")
	header := sign(body, secret)

	res, err := f.adapter.Handle(context.Background(), event("payment_intent.succeeded", "pi_123"), header)
	require.Error(t, err)
	assert.Equal(t, StatusRejected, res.Status)
	assert.Equal(t, model.PaymentStatusPending, f.payment(t).Status)
}

func TestHandle_DuplicateSuccessAppliesOnce(t *testing.T) {
	f := newFixture(t)
	body := event("payment_intent.succeeded", "pi_123")

	first, err := f.adapter.Handle(context.Background(), body, sign(body, secret))
	require.NoError(t, err)
	second, err := f.adapter.Handle(context.Background(), body, sign(body, secret))
	require.NoError(t, err)

	assert.Equal(t, StatusAck, first.Status)
	assert.True(t, first.Changed)
	assert.Equal(t, StatusAck, second.Status)
	assert.False(t, second.Changed)

	p := f.payment(t)
	assert.Equal(t, model.PaymentStatusCompleted, p.Status)
	assert.Equal(t, model.Cents(1000), p.Commission)
	assert.Equal(t, 1, f.auditCount(t))
	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.WebhookResults.WithLabelValues("stripe", "duplicate")))
}

func TestHandle_UnknownTypeIsAcked(t *testing.T) {
	f := newFixture(t)
	body := event("payment_intent.created", "pi_123")

	res, err := f.adapter.Handle(context.Background(), body, sign(body, secret))
	require.NoError(t, err)
	assert.Equal(t, StatusAck, res.Status)
	assert.False(t, res.Changed)
	assert.Equal(t, model.PaymentStatusPending, f.payment(t).Status)
	assert.Equal(t, 0, f.auditCount(t))
}

func TestHandle_UnknownPaymentAsksForRetry(t *testing.T) {
	f := newFixture(t)
	body := []byte(`{"id": "evt_x", "object": "event", "type": "payment_intent.succeeded",
		"data": {"object": {"id": "pi_other", "object": "payment_intent"}}}`)

	res, err := f.adapter.Handle(context.Background(), body, sign(body, secret))
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
	assert.NotEqual(t, StatusAck, res.Status)
}
