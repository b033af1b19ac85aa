// Package webhook turns verified gateway notifications into payment
// confirmations.
package webhook

import (
	"context"
	stderrors "errors"

	"github.com/jwalitptl/salon-api/internal/gateway"
	"github.com/jwalitptl/salon-api/internal/model"
	"github.com/jwalitptl/salon-api/internal/service/payment"
	"github.com/jwalitptl/salon-api/pkg/errors"
	"github.com/jwalitptl/salon-api/pkg/logger"
	"github.com/jwalitptl/salon-api/pkg/metrics"
)

type Status string

const (
	// StatusAck means the delivery was handled or deliberately ignored.
	StatusAck Status = "ack"
	// StatusRejected means the delivery failed verification. Nothing changed.
	StatusRejected Status = "rejected"
)

type Result struct {
	Status    Status `json:"status"`
	EventID   string `json:"event_id,omitempty"`
	PaymentID int64  `json:"payment_id,omitempty"`
	Changed   bool   `json:"changed"`
}

// Confirmer applies a gateway outcome to a payment.
type Confirmer interface {
	Confirm(ctx context.Context, actor model.Identity, req payment.ConfirmRequest) (*payment.ConfirmResult, error)
}

type Adapter struct {
	provider string
	verifier gateway.Verifier
	payments Confirmer
	logger   *logger.Logger
	metrics  *metrics.Metrics
}

func NewAdapter(provider string, verifier gateway.Verifier, payments Confirmer, log *logger.Logger, m *metrics.Metrics) *Adapter {
	return &Adapter{
		provider: provider,
		verifier: verifier,
		payments: payments,
		logger:   log.With("provider", provider),
		metrics:  m,
	}
}

// Handle verifies body against the signature header before reading it.
// Deliveries that fail verification are Rejected with a validation error.
// An error with an Ack-less result asks the gateway to retry later.
func (a *Adapter) Handle(ctx context.Context, body []byte, signature string) (Result, error) {
	evt, err := a.verifier.Verify(body, signature)
	if err != nil {
		reason := "malformed"
		if stderrors.Is(err, gateway.ErrInvalidSignature) {
			reason = "invalid_signature"
		}
		a.metrics.WebhookResults.WithLabelValues(a.provider, reason).Inc()
		a.logger.Warn(err, "webhook rejected", "reason", reason)
		return Result{Status: StatusRejected}, errors.Validation("webhook rejected: "+reason, err)
	}

	res := Result{Status: StatusAck, EventID: evt.ID}

	var outcome model.Outcome
	switch evt.Kind {
	case gateway.EventSucceeded:
		outcome = model.OutcomeSuccess
	case gateway.EventFailed:
		outcome = model.OutcomeFailure
	default:
		a.metrics.WebhookResults.WithLabelValues(a.provider, "ignored").Inc()
		a.logger.Debug("webhook event ignored", "event_id", evt.ID, "event_type", evt.Type)
		return res, nil
	}

	out, err := a.payments.Confirm(ctx, model.SystemIdentity(), payment.ConfirmRequest{
		GatewayReference: evt.Reference,
		IntentKey:        evt.IntentKey,
		Outcome:          outcome,
		Reason:           evt.FailureReason,
	})
	if err != nil {
		a.metrics.WebhookResults.WithLabelValues(a.provider, "error").Inc()
		a.logger.Error(err, "webhook event not applied",
			"event_id", evt.ID, "event_type", evt.Type, "reference", evt.Reference)
		return Result{EventID: evt.ID}, err
	}

	res.PaymentID = out.Payment.ID
	res.Changed = out.Changed
	result := "duplicate"
	if out.Changed {
		result = "applied"
	}
	a.metrics.WebhookResults.WithLabelValues(a.provider, result).Inc()
	a.logger.Info("webhook event handled",
		"event_id", evt.ID,
		"event_type", evt.Type,
		"payment_id", out.Payment.ID,
		"status", string(out.Payment.Status),
		"changed", out.Changed,
	)
	return res, nil
}
