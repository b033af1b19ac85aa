package stripe

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v79/webhook"

	"github.com/jwalitptl/salon-api/internal/gateway"
)

const testSecret = "whsec_test_secret"

func intentEvent(eventType, intentID, extra string) []byte {
	return []byte(fmt.Sprintf(`{
		"id": "evt_1",
		"object": "event",
		"type": %q,
		"data": {"object": {"id": %q, "object": "payment_intent", "metadata": {"intent_key": "key-1"}%s}}
	}`, eventType, intentID, extra))
}

func sign(payload []byte, secret string, at time.Time) string {
	return webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    secret,
		Timestamp: at,
	}).Header
}

func TestVerifier_Succeeded(t *testing.T) {
	v := NewVerifier(testSecret, 5*time.Minute)
	payload := intentEvent("payment_intent.succeeded", "pi_123", "")

	evt, err := v.Verify(payload, sign(payload, testSecret, time.Now()))
	require.NoError(t, err)
	assert.Equal(t, gateway.EventSucceeded, evt.Kind)
	assert.Equal(t, "pi_123", evt.Reference)
	assert.Equal(t, "key-1", evt.IntentKey)
}

func TestVerifier_FailedCarriesReason(t *testing.T) {
	v := NewVerifier(testSecret, 5*time.Minute)
	payload := intentEvent("payment_intent.payment_failed", "pi_9",
		`, "last_payment_error": {"code": "card_declined", "message": "Your card was declined."}`)

	evt, err := v.Verify(payload, sign(payload, testSecret, time.Now()))
	require.NoError(t, err)
	assert.Equal(t, gateway.EventFailed, evt.Kind)
	assert.Equal(t, "Your card was declined.", evt.FailureReason)
}

func TestVerifier_UnknownTypeIsIgnored(t *testing.T) {
	v := NewVerifier(testSecret, 5*time.Minute)
	payload := []byte(`{"id": "evt_2", "object": "event", "type": "charge.refunded", "data": {"object": {"id": "ch_1"}}}`)

	evt, err := v.Verify(payload, sign(payload, testSecret, time.Now()))
	require.NoError(t, err)
	assert.Equal(t, gateway.EventIgnored, evt.Kind)
}

func TestVerifier_RejectsBadSignatures(t *testing.T) {
	v := NewVerifier(testSecret, 5*time.Minute)
	payload := intentEvent("payment_intent.succeeded", "pi_123", "")

	tests := map[string]string{
		"wrong secret": sign(payload, "whsec_other", time.Now()),
		"too old":      sign(payload, testSecret, time.Now().Add(-time.Hour)),
		"missing":      "",
		"garbage":      "t=abc,v1=zz",
	}
	for name, header := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := v.Verify(payload, header)
			assert.ErrorIs(t, err, gateway.ErrInvalidSignature)
		})
	}
}

func TestVerifier_MalformedPayload(t *testing.T) {
	v := NewVerifier(testSecret, 5*time.Minute)
	payload := []byte(`{not json`)

	_, err := v.Verify(payload, sign(payload, testSecret, time.Now()))
	assert.ErrorIs(t, err, gateway.ErrMalformedEvent)
}
