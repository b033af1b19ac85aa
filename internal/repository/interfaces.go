package repository

import (
	"context"

	"github.com/jwalitptl/salon-api/internal/model"
)

// All repository interfaces in one file
type (
	// ClientRepository reads client profiles. Clients are created elsewhere.
	ClientRepository interface {
		GetByID(ctx context.Context, id int64) (*model.Client, error)
		GetByUserID(ctx context.Context, userID int64) (*model.Client, error)
		Find(ctx context.Context, q Query) (model.Page[*model.Client], error)
		Update(ctx context.Context, client *model.Client) error
	}

	AppointmentRepository interface {
		GetByID(ctx context.Context, id int64) (*model.Appointment, error)
		Find(ctx context.Context, q Query) (model.Page[*model.Appointment], error)
	}

	PaymentRepository interface {
		Insert(ctx context.Context, payment *model.Payment) error
		GetByID(ctx context.Context, id int64) (*model.Payment, error)
		GetByReference(ctx context.Context, reference string) (*model.Payment, error)
		GetByIntentKey(ctx context.Context, intentKey string) (*model.Payment, error)
		// Transition applies t only if the row is still in t.From. It reports
		// whether a row changed.
		Transition(ctx context.Context, t model.Transition) (bool, error)
		Find(ctx context.Context, q Query) (model.Page[*model.Payment], error)
	}

	// AuditRepository is append-only.
	AuditRepository interface {
		Create(ctx context.Context, log *model.AuditLog) error
		Find(ctx context.Context, q Query) (model.Page[*model.AuditLog], error)
	}

	SchemaInspector interface {
		HasColumn(ctx context.Context, table, column string) (bool, error)
	}

	// Tx exposes repositories bound to one transaction.
	Tx interface {
		Clients() ClientRepository
		Payments() PaymentRepository
		Audit() AuditRepository
	}

	// UnitOfWork runs fn in a transaction. fn's error rolls everything back.
	UnitOfWork interface {
		WithTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	}

	// Store groups the non-transactional repositories and the unit of work.
	Store interface {
		UnitOfWork
		Clients() ClientRepository
		Appointments() AppointmentRepository
		Payments() PaymentRepository
		Audit() AuditRepository
		Schema() SchemaInspector
		Ping(ctx context.Context) error
	}
)
