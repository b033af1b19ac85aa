package model

import (
	"time"

	"github.com/google/uuid"
)

// AuditLog is append-only. Nothing in this service updates or deletes rows.
type AuditLog struct {
	ID           uuid.UUID `json:"id" db:"id"`
	ActorID      int64     `json:"actor_id" db:"actor_id"`
	ActorRole    Role      `json:"actor_role" db:"actor_role"`
	Action       string    `json:"action" db:"action"`
	ResourceType Resource  `json:"resource_type" db:"resource_type"`
	ResourceID   int64     `json:"resource_id" db:"resource_id"`
	Before       RawJSON   `json:"before_snapshot,omitempty" db:"before_snapshot"`
	After        RawJSON   `json:"after_snapshot,omitempty" db:"after_snapshot"`
	RequestID    string    `json:"request_id,omitempty" db:"request_id"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

const (
	AuditActionPaymentCreate  = "payment.create"
	AuditActionPaymentConfirm = "payment.confirm"
	AuditActionPaymentFail    = "payment.fail"
	AuditActionPaymentCancel  = "payment.cancel"
	AuditActionClientUpdate   = "client.update"
)
