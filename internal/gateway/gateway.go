// Package gateway is the boundary to the external payment provider.
package gateway

import (
	"context"
	"errors"

	"github.com/jwalitptl/salon-api/internal/model"
)

var (
	// ErrTimeout means the outcome of the call is unknown.
	ErrTimeout = errors.New("gateway timeout")
	// ErrDeclined means the provider refused the intent.
	ErrDeclined = errors.New("gateway declined")
	// ErrUnavailable means the provider could not be reached or failed.
	ErrUnavailable = errors.New("gateway unavailable")
	// ErrInvalidSignature is returned by a Verifier for unauthenticated payloads.
	ErrInvalidSignature = errors.New("invalid webhook signature")
	// ErrMalformedEvent is returned by a Verifier for authenticated but unreadable payloads.
	ErrMalformedEvent = errors.New("malformed webhook event")
)

// IntentRequest asks the provider to prepare a payment. IdempotencyKey is
// also stored on the payment row so a webhook can find it after a timeout.
type IntentRequest struct {
	IdempotencyKey string
	Amount         model.Cents
	Currency       string
	ClientID       int64
	Description    string
}

type Intent struct {
	Reference    string
	ClientSecret string
	Status       string
}

// Gateway creates payment intents.
type Gateway interface {
	CreateIntent(ctx context.Context, req IntentRequest) (*Intent, error)
}

type EventKind int

const (
	EventIgnored EventKind = iota
	EventSucceeded
	EventFailed
)

func (k EventKind) String() string {
	switch k {
	case EventSucceeded:
		return "succeeded"
	case EventFailed:
		return "failed"
	default:
		return "ignored"
	}
}

// Event is a verified provider notification reduced to what the payment
// lifecycle needs.
type Event struct {
	ID            string
	Type          string
	Kind          EventKind
	Reference     string
	IntentKey     string
	FailureReason string
}

// Verifier authenticates a raw webhook body before anything reads it.
type Verifier interface {
	Verify(payload []byte, signatureHeader string) (*Event, error)
}
