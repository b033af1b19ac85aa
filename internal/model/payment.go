package model

import "time"

type PaymentMethod string

const (
	PaymentMethodCash    PaymentMethod = "cash"
	PaymentMethodGateway PaymentMethod = "gateway"
)

func (m PaymentMethod) Valid() bool {
	return m == PaymentMethodCash || m == PaymentMethodGateway
}

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusCanceled  PaymentStatus = "canceled"
)

// IsTerminal reports whether no transition leaves s.
func (s PaymentStatus) IsTerminal() bool {
	return s == PaymentStatusCompleted || s == PaymentStatusFailed || s == PaymentStatusCanceled
}

// CanTransition is the only place payment transitions are defined.
// Every transition starts from pending.
func (s PaymentStatus) CanTransition(to PaymentStatus) bool {
	if s != PaymentStatusPending {
		return false
	}
	switch to {
	case PaymentStatusCompleted, PaymentStatusFailed, PaymentStatusCanceled:
		return true
	}
	return false
}

// Outcome is what the gateway (or a manual confirmation) reports.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
)

func (o Outcome) Valid() bool {
	return o == OutcomeSuccess || o == OutcomeFailure
}

// Target returns the status an outcome moves a pending payment to.
func (o Outcome) Target() PaymentStatus {
	if o == OutcomeSuccess {
		return PaymentStatusCompleted
	}
	return PaymentStatusFailed
}

type Payment struct {
	ID            int64         `json:"id" db:"id"`
	ClientID      int64         `json:"client_id" db:"client_id"`
	AppointmentID *int64        `json:"appointment_id,omitempty" db:"appointment_id"`
	PackageID     *int64        `json:"package_id,omitempty" db:"package_id"`
	Amount        Cents         `json:"amount" db:"amount"`
	Method        PaymentMethod `json:"method" db:"method"`
	Status        PaymentStatus `json:"status" db:"status"`
	// Commission is fixed at creation and never recomputed.
	Commission       Cents     `json:"commission" db:"commission"`
	CommissionRate   float64   `json:"commission_rate" db:"commission_rate"`
	Tips             Cents     `json:"tips" db:"tips"`
	Currency         string    `json:"currency" db:"currency"`
	GatewayReference *string   `json:"gateway_reference,omitempty" db:"gateway_reference"`
	IntentKey        string    `json:"intent_key" db:"intent_key"`
	FailureReason    *string   `json:"failure_reason,omitempty" db:"failure_reason"`
	CreatedBy        int64     `json:"created_by" db:"created_by"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time `json:"updated_at" db:"updated_at"`
}

type CreatePaymentRequest struct {
	ClientID      int64         `json:"client_id" validate:"required,gt=0"`
	AppointmentID *int64        `json:"appointment_id" validate:"omitempty,gt=0"`
	PackageID     *int64        `json:"package_id" validate:"omitempty,gt=0"`
	Amount        Cents         `json:"amount"`
	Tips          Cents         `json:"tips" validate:"gte=0"`
	Method        PaymentMethod `json:"method" validate:"required"`
	Description   string        `json:"description" validate:"max=500"`
}

type ConfirmPaymentRequest struct {
	Outcome Outcome `json:"outcome" validate:"required,oneof=success failure"`
	Reason  string  `json:"reason" validate:"max=500"`
}

// Transition is a guarded status change applied with a conditional update.
type Transition struct {
	PaymentID        int64
	From             PaymentStatus
	To               PaymentStatus
	GatewayReference *string
	FailureReason    *string
	At               time.Time
}
