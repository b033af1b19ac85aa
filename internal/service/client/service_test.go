package client

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/salon-api/internal/access"
	"github.com/jwalitptl/salon-api/internal/model"
	"github.com/jwalitptl/salon-api/internal/policy"
	"github.com/jwalitptl/salon-api/internal/repository"
	"github.com/jwalitptl/salon-api/internal/repository/memory"
	"github.com/jwalitptl/salon-api/internal/service/audit"
	"github.com/jwalitptl/salon-api/pkg/errors"
	"github.com/jwalitptl/salon-api/pkg/logger"
)

func newStore() *memory.Store {
	store := memory.New()
	store.AddClient(model.Client{ID: 1, LocationID: 1, Name: "Ana", Email: "ana@example.com", Phone: "555-0100"})
	return store
}

func TestUpdate_AuditsBeforeAndAfter(t *testing.T) {
	store := newStore()
	svc := NewService(store, audit.NewRecorder(), logger.Nop())
	actor := model.Identity{ID: 3, Role: model.RoleReception}
	phone := "555-0199"

	out, err := svc.Update(context.Background(), actor, 1, model.UpdateClientRequest{Phone: &phone})
	require.NoError(t, err)
	assert.Equal(t, "555-0199", out.Phone)
	assert.Equal(t, "Ana", out.Name)

	q := repository.NewQuery(model.ResourceAuditLogs)
	s := policy.AllScope()
	q.Scope = &s
	page, err := store.Audit().Find(context.Background(), q)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	log := page.Items[0]
	assert.Equal(t, model.AuditActionClientUpdate, log.Action)
	assert.Contains(t, string(log.Before), `"phone":"555-0100"`)
	assert.Contains(t, string(log.After), `"phone":"555-0199"`)
}

func TestUpdate_Validation(t *testing.T) {
	svc := NewService(newStore(), audit.NewRecorder(), logger.Nop())
	bad := "not-an-email"

	_, err := svc.Update(context.Background(), model.Identity{ID: 3, Role: model.RoleAdmin}, 1, model.UpdateClientRequest{Email: &bad})
	assert.True(t, errors.IsValidation(err))

	name := "Zoe"
	_, err = svc.Update(context.Background(), model.Identity{ID: 3, Role: model.RoleAdmin}, 77, model.UpdateClientRequest{Name: &name})
	assert.True(t, errors.IsNotFound(err))
}

func TestMutate_OnlyUpdate(t *testing.T) {
	svc := NewService(newStore(), audit.NewRecorder(), logger.Nop())

	_, err := svc.Mutate(context.Background(), access.Mutation{Action: model.ActionCancel, TargetID: 1})
	assert.True(t, errors.IsValidation(err))

	_, err = svc.Mutate(context.Background(), access.Mutation{Action: model.ActionUpdate, TargetID: 1, Payload: "junk"})
	assert.True(t, errors.IsValidation(err))
}
