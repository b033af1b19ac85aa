package postgres

import (
	"context"

	"github.com/jwalitptl/salon-api/internal/model"
	"github.com/jwalitptl/salon-api/internal/repository"
)

const paymentColumns = `p.id, p.client_id, p.appointment_id, p.package_id, p.amount, p.method, p.status,
	p.commission, p.commission_rate, p.tips, p.currency, p.gateway_reference, p.intent_key,
	p.failure_reason, p.created_by, p.created_at, p.updated_at`

type paymentRepository struct {
	BaseRepository
}

func (r *paymentRepository) Insert(ctx context.Context, p *model.Payment) error {
	query := `
		INSERT INTO payments (
			client_id, appointment_id, package_id, amount, method, status,
			commission, commission_rate, tips, currency, gateway_reference,
			intent_key, failure_reason, created_by, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING id`

	err := r.get(ctx, &p.ID, query,
		p.ClientID,
		p.AppointmentID,
		p.PackageID,
		p.Amount,
		p.Method,
		p.Status,
		p.Commission,
		p.CommissionRate,
		p.Tips,
		p.Currency,
		p.GatewayReference,
		p.IntentKey,
		p.FailureReason,
		p.CreatedBy,
		p.CreatedAt,
		p.UpdatedAt,
	)
	return mapError(err, "payment", "insert")
}

func (r *paymentRepository) getBy(ctx context.Context, column string, value interface{}) (*model.Payment, error) {
	var p model.Payment
	if err := r.get(ctx, &p, "SELECT "+paymentColumns+" FROM payments p WHERE p."+column+" = $1", value); err != nil {
		return nil, mapError(err, "payment", "get")
	}
	return &p, nil
}

func (r *paymentRepository) GetByID(ctx context.Context, id int64) (*model.Payment, error) {
	return r.getBy(ctx, "id", id)
}

func (r *paymentRepository) GetByReference(ctx context.Context, reference string) (*model.Payment, error) {
	return r.getBy(ctx, "gateway_reference", reference)
}

func (r *paymentRepository) GetByIntentKey(ctx context.Context, intentKey string) (*model.Payment, error) {
	return r.getBy(ctx, "intent_key", intentKey)
}

// Transition is a single conditional update. Concurrent callers race on the
// status predicate and exactly one of them sees a changed row.
func (r *paymentRepository) Transition(ctx context.Context, t model.Transition) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE payments
		SET status = $1,
			gateway_reference = COALESCE($2, gateway_reference),
			failure_reason = COALESCE($3, failure_reason),
			updated_at = $4
		WHERE id = $5 AND status = $6`,
		t.To, t.GatewayReference, t.FailureReason, t.At, t.PaymentID, t.From,
	)
	if err != nil {
		return false, mapError(err, "payment", "update")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, mapError(err, "payment", "update")
	}
	return n == 1, nil
}

func (r *paymentRepository) Find(ctx context.Context, q repository.Query) (model.Page[*model.Payment], error) {
	var page model.Page[*model.Payment]
	count, list, args, err := selectSQL(q, paymentColumns)
	if err != nil {
		return page, err
	}
	if err := r.get(ctx, &page.Total, count, args...); err != nil {
		return page, mapError(err, "payments", "count")
	}
	page.Items = make([]*model.Payment, 0)
	if err := r.selectAll(ctx, &page.Items, list, args...); err != nil {
		return page, mapError(err, "payments", "list")
	}
	return page, nil
}
