package model

import "time"

type AppointmentStatus string

const (
	AppointmentStatusScheduled AppointmentStatus = "scheduled"
	AppointmentStatusConfirmed AppointmentStatus = "confirmed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
	AppointmentStatusCompleted AppointmentStatus = "completed"
)

// Appointment links a client to a provider and is what grants providers
// visibility into clients they have served.
type Appointment struct {
	ID         int64             `db:"id" json:"id"`
	ClientID   int64             `db:"client_id" json:"client_id"`
	ProviderID *int64            `db:"provider_id" json:"provider_id,omitempty"`
	LocationID int64             `db:"location_id" json:"location_id"`
	StartsAt   time.Time         `db:"starts_at" json:"starts_at"`
	Status     AppointmentStatus `db:"status" json:"status"`
	CreatedAt  time.Time         `db:"created_at" json:"created_at"`
}
