package audit

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/salon-api/internal/model"
	"github.com/jwalitptl/salon-api/internal/policy"
	"github.com/jwalitptl/salon-api/internal/reqctx"
	"github.com/jwalitptl/salon-api/internal/repository"
	"github.com/jwalitptl/salon-api/internal/repository/memory"
)

func allAudit() repository.Query {
	q := repository.NewQuery(model.ResourceAuditLogs)
	s := policy.AllScope()
	q.Scope = &s
	return q
}

func TestRecorder_WritesSnapshotsInTransaction(t *testing.T) {
	store := memory.New()
	rec := NewRecorder()
	ctx := reqctx.WithRequestID(context.Background(), "req-1")
	actor := model.Identity{ID: 4, Role: model.RoleReception}

	err := store.WithTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		_, err := rec.Record(ctx, tx, Entry{
			Actor:        actor,
			Action:       model.AuditActionPaymentCancel,
			ResourceType: model.ResourcePayments,
			ResourceID:   9,
			Before:       map[string]string{"status": "pending"},
			After:        map[string]string{"status": "canceled"},
		})
		return err
	})
	require.NoError(t, err)

	page, err := NewService(store.Audit()).List(context.Background(), allAudit())
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	log := page.Items[0]
	assert.Equal(t, int64(4), log.ActorID)
	assert.Equal(t, model.RoleReception, log.ActorRole)
	assert.Equal(t, "req-1", log.RequestID)
	assert.JSONEq(t, `{"status":"pending"}`, string(log.Before))
	assert.JSONEq(t, `{"status":"canceled"}`, string(log.After))
}

func TestRecorder_RollsBackWithMutation(t *testing.T) {
	store := memory.New()
	rec := NewRecorder()
	failed := stderrors.New("mutation failed")

	err := store.WithTx(context.Background(), func(ctx context.Context, tx repository.Tx) error {
		if _, err := rec.Record(ctx, tx, Entry{Actor: model.SystemIdentity(), Action: "x", ResourceType: model.ResourcePayments, ResourceID: 1}); err != nil {
			return err
		}
		return failed
	})
	assert.ErrorIs(t, err, failed)

	page, err := NewService(store.Audit()).List(context.Background(), allAudit())
	require.NoError(t, err)
	assert.Empty(t, page.Items)
}
