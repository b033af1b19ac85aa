package stripe

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/webhook"

	"github.com/jwalitptl/salon-api/internal/gateway"
)

// Verifier checks the Stripe-Signature header and reduces payment intent
// events to gateway.Event.
type Verifier struct {
	secret    string
	tolerance time.Duration
}

func NewVerifier(secret string, tolerance time.Duration) *Verifier {
	if tolerance <= 0 {
		tolerance = webhook.DefaultTolerance
	}
	return &Verifier{secret: secret, tolerance: tolerance}
}

func (v *Verifier) Verify(payload []byte, signatureHeader string) (*gateway.Event, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signatureHeader, v.secret, webhook.ConstructEventOptions{
		Tolerance:                v.tolerance,
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		if isSignatureError(err) {
			return nil, fmt.Errorf("%w: %v", gateway.ErrInvalidSignature, err)
		}
		return nil, fmt.Errorf("%w: %v", gateway.ErrMalformedEvent, err)
	}

	out := &gateway.Event{ID: event.ID, Type: string(event.Type)}

	switch event.Type {
	case stripe.EventTypePaymentIntentSucceeded:
		out.Kind = gateway.EventSucceeded
	case stripe.EventTypePaymentIntentPaymentFailed:
		out.Kind = gateway.EventFailed
	default:
		return out, nil
	}

	if event.Data == nil || len(event.Data.Raw) == 0 {
		return nil, fmt.Errorf("%w: %s has no data", gateway.ErrMalformedEvent, event.Type)
	}
	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		return nil, fmt.Errorf("%w: %v", gateway.ErrMalformedEvent, err)
	}
	if pi.ID == "" {
		return nil, fmt.Errorf("%w: payment intent without id", gateway.ErrMalformedEvent)
	}

	out.Reference = pi.ID
	out.IntentKey = pi.Metadata[MetadataIntentKey]
	if pi.LastPaymentError != nil {
		out.FailureReason = pi.LastPaymentError.Msg
		if out.FailureReason == "" {
			out.FailureReason = string(pi.LastPaymentError.Code)
		}
	}
	return out, nil
}

func isSignatureError(err error) bool {
	return stderrors.Is(err, webhook.ErrNotSigned) ||
		stderrors.Is(err, webhook.ErrNoValidSignature) ||
		stderrors.Is(err, webhook.ErrInvalidHeader) ||
		stderrors.Is(err, webhook.ErrTooOld)
}
