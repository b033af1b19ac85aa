package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jwalitptl/salon-api/internal/model"
	"github.com/jwalitptl/salon-api/internal/repository"
)

const clientColumns = "c.id, c.user_id, c.location_id, c.name, c.email, c.phone, c.created_at"

type clientRepository struct {
	BaseRepository
	schema *SchemaInspector
}

// columns adds preferred_provider_id only where the deployment has it.
func (r *clientRepository) columns(ctx context.Context) string {
	ok, err := r.schema.HasColumn(ctx, "clients", "preferred_provider_id")
	if err != nil || !ok {
		return clientColumns
	}
	return clientColumns + ", c.preferred_provider_id"
}

func (r *clientRepository) GetByID(ctx context.Context, id int64) (*model.Client, error) {
	var client model.Client
	query := fmt.Sprintf("SELECT %s FROM clients c WHERE c.id = $1", r.columns(ctx))
	if err := r.get(ctx, &client, query, id); err != nil {
		return nil, mapError(err, "client", "get")
	}
	return &client, nil
}

func (r *clientRepository) GetByUserID(ctx context.Context, userID int64) (*model.Client, error) {
	var client model.Client
	query := fmt.Sprintf("SELECT %s FROM clients c WHERE c.user_id = $1", r.columns(ctx))
	if err := r.get(ctx, &client, query, userID); err != nil {
		return nil, mapError(err, "client", "get")
	}
	return &client, nil
}

func (r *clientRepository) Find(ctx context.Context, q repository.Query) (model.Page[*model.Client], error) {
	var page model.Page[*model.Client]
	count, list, args, err := selectSQL(q, r.columns(ctx))
	if err != nil {
		return page, err
	}
	if err := r.get(ctx, &page.Total, count, args...); err != nil {
		return page, mapError(err, "clients", "count")
	}
	page.Items = make([]*model.Client, 0)
	if err := r.selectAll(ctx, &page.Items, list, args...); err != nil {
		return page, mapError(err, "clients", "list")
	}
	return page, nil
}

func (r *clientRepository) Update(ctx context.Context, client *model.Client) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE clients SET name = $1, email = $2, phone = $3
		WHERE id = $4`,
		client.Name, client.Email, client.Phone, client.ID,
	)
	if err != nil {
		return mapError(err, "client", "update")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return mapError(sql.ErrNoRows, "client", "update")
	}
	return nil
}
