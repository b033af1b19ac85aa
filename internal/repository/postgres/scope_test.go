package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/salon-api/internal/model"
	"github.com/jwalitptl/salon-api/internal/policy"
	"github.com/jwalitptl/salon-api/internal/repository"
)

func scoped(resource model.Resource, s policy.Scope) repository.Query {
	q := repository.NewQuery(resource)
	q.Scope = &s
	return q
}

func TestWhereSQL_RejectsUnscopedQuery(t *testing.T) {
	_, err := whereSQL(repository.NewQuery(model.ResourcePayments), &builder{})
	assert.ErrorIs(t, err, repository.ErrUnscopedQuery)
}

func TestWhereSQL_ScopeComesFirst(t *testing.T) {
	q := scoped(model.ResourceAppointments, policy.Scope{Kind: policy.ScopeAssignedToProvider, ProviderID: 5}).
		Where(repository.Condition{Field: repository.FieldStatus, Op: repository.OpEq, Value: "scheduled"})

	b := &builder{}
	where, err := whereSQL(q, b)
	require.NoError(t, err)
	assert.Equal(t, "a.provider_id = $1 AND a.status = $2", where)
	assert.Equal(t, []interface{}{int64(5), "scheduled"}, b.args)
}

func TestScopeSQL_ProviderClientScopes(t *testing.T) {
	b := &builder{}
	linked, err := scopeSQL(model.ResourceClients, policy.Scope{Kind: policy.ScopeLinkedByProviderAppointment, ProviderID: 3}, b)
	require.NoError(t, err)
	assert.Equal(t, "EXISTS (SELECT 1 FROM appointments ap WHERE ap.client_id = c.id AND ap.provider_id = $1)", linked)
	assert.NotContains(t, linked, "preferred_provider_id")

	b = &builder{}
	assigned, err := scopeSQL(model.ResourceClients, policy.Scope{Kind: policy.ScopeAssignedOrLinkedClient, ProviderID: 3}, b)
	require.NoError(t, err)
	assert.Contains(t, assigned, "c.preferred_provider_id = $1 OR EXISTS")
	assert.Len(t, b.args, 1)
}

func TestScopeSQL_NoneMatchesNothing(t *testing.T) {
	s, err := scopeSQL(model.ResourceAuditLogs, policy.NoneScope(), &builder{})
	require.NoError(t, err)
	assert.Equal(t, "FALSE", s)
}

func TestScopeSQL_MismatchedKindFailsClosed(t *testing.T) {
	_, err := scopeSQL(model.ResourceAuditLogs, policy.Scope{Kind: policy.ScopeOwnedByClientUser, ClientID: 1}, &builder{})
	assert.Error(t, err)
}

func TestSelectSQL_SearchEscapesWildcards(t *testing.T) {
	q := scoped(model.ResourceClients, policy.AllScope()).
		Where(repository.Condition{Field: repository.FieldSearch, Op: repository.OpSearch, Value: "50%_off"})
	q.Page = model.Pagination{Page: 2, PageSize: 10}

	count, page, args, err := selectSQL(q, "c.id")
	require.NoError(t, err)
	assert.Equal(t, "SELECT COUNT(*) FROM clients c WHERE TRUE AND (c.name ILIKE $1 OR c.email ILIKE $1 OR c.phone ILIKE $1)", count)
	assert.Contains(t, page, "LIMIT 10 OFFSET 10")
	assert.Equal(t, []interface{}{`%50\%\_off%`}, args)
}
