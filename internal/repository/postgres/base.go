package postgres

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/jwalitptl/salon-api/pkg/errors"
)

const uniqueViolation = "23505"

// BaseRepository runs statements against either the pool or a transaction.
type BaseRepository struct {
	db sqlx.ExtContext
}

func NewBaseRepository(db sqlx.ExtContext) BaseRepository {
	return BaseRepository{db: db}
}

func (r *BaseRepository) get(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	return sqlx.GetContext(ctx, r.db, dest, query, args...)
}

func (r *BaseRepository) selectAll(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	return sqlx.SelectContext(ctx, r.db, dest, query, args...)
}

// mapError turns driver errors into application errors for resource.
func mapError(err error, resource, op string) error {
	if err == nil {
		return nil
	}
	if stderrors.Is(err, sql.ErrNoRows) {
		return errors.NotFound(resource, err)
	}
	var pqErr *pq.Error
	if stderrors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return errors.Conflict(fmt.Sprintf("%s already exists", resource), err)
	}
	return fmt.Errorf("failed to %s %s: %w", op, resource, err)
}
