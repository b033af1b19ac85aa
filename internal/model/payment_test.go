package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaymentStatus_CanTransition(t *testing.T) {
	all := []PaymentStatus{PaymentStatusPending, PaymentStatusCompleted, PaymentStatusFailed, PaymentStatusCanceled}

	for _, from := range all {
		for _, to := range all {
			want := from == PaymentStatusPending && to != PaymentStatusPending
			assert.Equal(t, want, from.CanTransition(to), "%s -> %s", from, to)
		}
	}
}

func TestOutcome_Target(t *testing.T) {
	assert.Equal(t, PaymentStatusCompleted, OutcomeSuccess.Target())
	assert.Equal(t, PaymentStatusFailed, OutcomeFailure.Target())
}
