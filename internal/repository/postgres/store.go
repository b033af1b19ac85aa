package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/salon-api/internal/repository"
	"github.com/jwalitptl/salon-api/pkg/logger"
)

// Store is the postgres implementation of repository.Store.
type Store struct {
	db     *sqlx.DB
	schema *SchemaInspector
	logger *logger.Logger
}

func NewStore(db *sqlx.DB, schemaTTL time.Duration, log *logger.Logger) *Store {
	return &Store{
		db:     db,
		schema: NewSchemaInspector(db, schemaTTL),
		logger: log,
	}
}

func (s *Store) Clients() repository.ClientRepository {
	return &clientRepository{BaseRepository: NewBaseRepository(s.db), schema: s.schema}
}

func (s *Store) Appointments() repository.AppointmentRepository {
	return &appointmentRepository{NewBaseRepository(s.db)}
}

func (s *Store) Payments() repository.PaymentRepository {
	return &paymentRepository{NewBaseRepository(s.db)}
}

func (s *Store) Audit() repository.AuditRepository {
	return &auditRepository{NewBaseRepository(s.db)}
}

func (s *Store) Schema() repository.SchemaInspector {
	return s.schema
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// WithTx executes fn within a transaction
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context, tx repository.Tx) error) (err error) {
	sqlTx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = sqlTx.Rollback()
			panic(p)
		}
	}()

	if err := fn(ctx, &txStore{tx: sqlTx, schema: s.schema}); err != nil {
		if rbErr := sqlTx.Rollback(); rbErr != nil {
			s.logger.Error(rbErr, "failed to rollback transaction")
		}
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

type txStore struct {
	tx     *sqlx.Tx
	schema *SchemaInspector
}

func (t *txStore) Clients() repository.ClientRepository {
	return &clientRepository{BaseRepository: NewBaseRepository(t.tx), schema: t.schema}
}

func (t *txStore) Payments() repository.PaymentRepository {
	return &paymentRepository{NewBaseRepository(t.tx)}
}

func (t *txStore) Audit() repository.AuditRepository {
	return &auditRepository{NewBaseRepository(t.tx)}
}
