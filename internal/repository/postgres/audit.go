package postgres

import (
	"context"

	"github.com/jwalitptl/salon-api/internal/model"
	"github.com/jwalitptl/salon-api/internal/repository"
)

const auditColumns = `l.id, l.actor_id, l.actor_role, l.action, l.resource_type, l.resource_id,
	l.before_snapshot, l.after_snapshot, l.request_id, l.created_at`

type auditRepository struct {
	BaseRepository
}

func (r *auditRepository) Create(ctx context.Context, log *model.AuditLog) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO audit_logs (
			id, actor_id, actor_role, action, resource_type, resource_id,
			before_snapshot, after_snapshot, request_id, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		log.ID,
		log.ActorID,
		log.ActorRole,
		log.Action,
		log.ResourceType,
		log.ResourceID,
		log.Before,
		log.After,
		log.RequestID,
		log.CreatedAt,
	)
	return mapError(err, "audit log", "create")
}

func (r *auditRepository) Find(ctx context.Context, q repository.Query) (model.Page[*model.AuditLog], error) {
	var page model.Page[*model.AuditLog]
	count, list, args, err := selectSQL(q, auditColumns)
	if err != nil {
		return page, err
	}
	if err := r.get(ctx, &page.Total, count, args...); err != nil {
		return page, mapError(err, "audit logs", "count")
	}
	page.Items = make([]*model.AuditLog, 0)
	if err := r.selectAll(ctx, &page.Items, list, args...); err != nil {
		return page, mapError(err, "audit logs", "list")
	}
	return page, nil
}
