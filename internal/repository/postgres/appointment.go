package postgres

import (
	"context"

	"github.com/jwalitptl/salon-api/internal/model"
	"github.com/jwalitptl/salon-api/internal/repository"
)

const appointmentColumns = "a.id, a.client_id, a.provider_id, a.location_id, a.starts_at, a.status, a.created_at"

type appointmentRepository struct {
	BaseRepository
}

func (r *appointmentRepository) GetByID(ctx context.Context, id int64) (*model.Appointment, error) {
	var appointment model.Appointment
	if err := r.get(ctx, &appointment, "SELECT "+appointmentColumns+" FROM appointments a WHERE a.id = $1", id); err != nil {
		return nil, mapError(err, "appointment", "get")
	}
	return &appointment, nil
}

func (r *appointmentRepository) Find(ctx context.Context, q repository.Query) (model.Page[*model.Appointment], error) {
	var page model.Page[*model.Appointment]
	count, list, args, err := selectSQL(q, appointmentColumns)
	if err != nil {
		return page, err
	}
	if err := r.get(ctx, &page.Total, count, args...); err != nil {
		return page, mapError(err, "appointments", "count")
	}
	page.Items = make([]*model.Appointment, 0)
	if err := r.selectAll(ctx, &page.Items, list, args...); err != nil {
		return page, mapError(err, "appointments", "list")
	}
	return page, nil
}
