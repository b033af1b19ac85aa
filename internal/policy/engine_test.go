package policy

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/salon-api/internal/model"
	"github.com/jwalitptl/salon-api/pkg/errors"
	"github.com/jwalitptl/salon-api/pkg/logger"
	"github.com/jwalitptl/salon-api/pkg/metrics"
)

type mockClientProfiles struct {
	mock.Mock
}

func (m *mockClientProfiles) GetByUserID(ctx context.Context, userID int64) (*model.Client, error) {
	args := m.Called(ctx, userID)
	if c, ok := args.Get(0).(*model.Client); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockSchema struct {
	mock.Mock
}

func (m *mockSchema) HasColumn(ctx context.Context, table, column string) (bool, error) {
	args := m.Called(ctx, table, column)
	return args.Bool(0), args.Error(1)
}

func newEngine(clients ClientProfiles, schema SchemaInspector) *Engine {
	return NewEngine(DefaultTable(), clients, schema, logger.Nop(), metrics.NewNop())
}

func TestDefaultTable_MatchesPolicy(t *testing.T) {
	tbl := DefaultTable()

	tests := []struct {
		role     model.Role
		resource model.Resource
		action   model.Action
		want     Decision
	}{
		{model.RoleAdmin, model.ResourceClients, model.ActionRead, Decision{AllowedAll, ScopeAll}},
		{model.RoleReception, model.ResourceClients, model.ActionRead, Decision{AllowedAll, ScopeAll}},
		{model.RoleProvider, model.ResourceClients, model.ActionRead, Decision{AllowedScoped, ScopeAssignedOrLinkedClient}},
		{model.RoleClient, model.ResourceClients, model.ActionRead, Decision{AllowedScoped, ScopeOwnedByClientUser}},
		{model.RoleProvider, model.ResourceClients, model.ActionUpdate, Decision{Denied, ScopeNone}},
		{model.RoleProvider, model.ResourceAppointments, model.ActionRead, Decision{AllowedScoped, ScopeAssignedToProvider}},
		{model.RoleProvider, model.ResourcePayments, model.ActionRead, Decision{AllowedScoped, ScopePaymentsOfProviderAppointments}},
		{model.RoleClient, model.ResourcePayments, model.ActionCreate, Decision{AllowedScoped, ScopeOwnedByClientUser}},
		{model.RoleClient, model.ResourcePayments, model.ActionRecordCash, Decision{Denied, ScopeNone}},
		{model.RoleProvider, model.ResourcePayments, model.ActionConfirm, Decision{Denied, ScopeNone}},
		{model.RoleClient, model.ResourcePayments, model.ActionCancel, Decision{AllowedScoped, ScopeOwnedByClientUser}},
		{model.RoleAdmin, model.ResourceAuditLogs, model.ActionRead, Decision{AllowedAll, ScopeAll}},
		{model.RoleReception, model.ResourceAuditLogs, model.ActionRead, Decision{Denied, ScopeNone}},
		{model.RoleSystem, model.ResourcePayments, model.ActionRead, Decision{Denied, ScopeNone}},
	}
	for _, tt := range tests {
		got := tbl.Lookup(tt.role, tt.resource, tt.action)
		assert.Equal(t, tt.want, got, "%s %s %s", tt.role, tt.resource, tt.action)
	}
}

func TestDefaultTable_AuditLogsHaveNoMutation(t *testing.T) {
	for _, r := range DefaultTable().Rules() {
		if r.Resource == model.ResourceAuditLogs {
			assert.Equal(t, model.ActionRead, r.Action)
		}
	}
}

func TestResolve_AdminGetsAllScope(t *testing.T) {
	e := newEngine(&mockClientProfiles{}, &mockSchema{})

	scope, err := e.Resolve(context.Background(), model.Identity{ID: 1, Role: model.RoleAdmin}, model.ResourcePayments, model.ActionRead)
	require.NoError(t, err)
	assert.Equal(t, ScopeAll, scope.Kind)
}

func TestResolve_ClientScopeBindsProfile(t *testing.T) {
	clients := &mockClientProfiles{}
	clients.On("GetByUserID", mock.Anything, int64(42)).Return(&model.Client{ID: 7}, nil)
	e := newEngine(clients, &mockSchema{})

	scope, err := e.Resolve(context.Background(), model.Identity{ID: 42, Role: model.RoleClient}, model.ResourceAppointments, model.ActionRead)
	require.NoError(t, err)
	assert.Equal(t, Scope{Kind: ScopeOwnedByClientUser, ClientID: 7}, scope)
	clients.AssertExpectations(t)
}

func TestResolve_ClientWithoutProfileIsNotFound(t *testing.T) {
	clients := &mockClientProfiles{}
	clients.On("GetByUserID", mock.Anything, int64(42)).Return(nil, errors.NotFound("client", nil))
	e := newEngine(clients, &mockSchema{})

	_, err := e.Resolve(context.Background(), model.Identity{ID: 42, Role: model.RoleClient}, model.ResourcePayments, model.ActionRead)
	assert.True(t, errors.IsNotFound(err))

	_, err = e.Resolve(context.Background(), model.Identity{ID: 42, Role: model.RoleClient}, model.ResourceAuditLogs, model.ActionRead)
	assert.True(t, errors.IsNotFound(err), "denied read still requires a profile")
}

func TestResolve_DeniedReadIsEmptyScope(t *testing.T) {
	e := newEngine(&mockClientProfiles{}, &mockSchema{})

	scope, err := e.Resolve(context.Background(), model.Identity{ID: 3, Role: model.RoleProvider}, model.ResourceAuditLogs, model.ActionRead)
	require.NoError(t, err)
	assert.Equal(t, ScopeNone, scope.Kind)
}

func TestResolve_DeniedMutationFailsClosed(t *testing.T) {
	e := newEngine(&mockClientProfiles{}, &mockSchema{})

	_, err := e.Resolve(context.Background(), model.Identity{ID: 3, Role: model.RoleProvider}, model.ResourcePayments, model.ActionConfirm)
	assert.True(t, errors.IsAuthorization(err))

	_, err = e.Resolve(context.Background(), model.Identity{ID: 1, Role: model.RoleAdmin}, model.ResourceAuditLogs, model.ActionUpdate)
	assert.True(t, errors.IsAuthorization(err))
}

func TestResolve_ProviderClientScope(t *testing.T) {
	provider := model.Identity{ID: 9, Role: model.RoleProvider}

	t.Run("column present", func(t *testing.T) {
		schema := &mockSchema{}
		schema.On("HasColumn", mock.Anything, "clients", "preferred_provider_id").Return(true, nil)
		e := newEngine(&mockClientProfiles{}, schema)

		scope, err := e.Resolve(context.Background(), provider, model.ResourceClients, model.ActionRead)
		require.NoError(t, err)
		assert.Equal(t, Scope{Kind: ScopeAssignedOrLinkedClient, ProviderID: 9}, scope)
	})

	t.Run("column absent narrows", func(t *testing.T) {
		schema := &mockSchema{}
		schema.On("HasColumn", mock.Anything, "clients", "preferred_provider_id").Return(false, nil)
		e := newEngine(&mockClientProfiles{}, schema)

		scope, err := e.Resolve(context.Background(), provider, model.ResourceClients, model.ActionRead)
		require.NoError(t, err)
		assert.Equal(t, Scope{Kind: ScopeLinkedByProviderAppointment, ProviderID: 9}, scope)
	})

	t.Run("probe failure narrows", func(t *testing.T) {
		schema := &mockSchema{}
		schema.On("HasColumn", mock.Anything, "clients", "preferred_provider_id").Return(false, stderrors.New("timeout"))
		e := newEngine(&mockClientProfiles{}, schema)

		scope, err := e.Resolve(context.Background(), provider, model.ResourceClients, model.ActionRead)
		require.NoError(t, err)
		assert.Equal(t, ScopeLinkedByProviderAppointment, scope.Kind)
		assert.NotEqual(t, ScopeAll, scope.Kind)
	})
}
