package payment

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/salon-api/internal/access"
	"github.com/jwalitptl/salon-api/internal/model"
	"github.com/jwalitptl/salon-api/internal/policy"
	"github.com/jwalitptl/salon-api/pkg/errors"
)

func TestMutate_CreateChecksOwnership(t *testing.T) {
	f := newFixture(t)
	client := model.Identity{ID: 501, Role: model.RoleClient}
	owned := policy.Scope{Kind: policy.ScopeOwnedByClientUser, ClientID: 1}

	_, err := f.svc.Mutate(context.Background(), access.Mutation{
		Identity: client,
		Action:   model.ActionCreate,
		Scope:    owned,
		Payload:  model.CreatePaymentRequest{ClientID: 2, Amount: 100, Method: model.PaymentMethodGateway},
	})
	assert.True(t, errors.IsAuthorization(err))
	f.gw.AssertNotCalled(t, "CreateIntent", mock.Anything, mock.Anything)
}

func TestMutate_ActionMustMatchMethod(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Mutate(context.Background(), access.Mutation{
		Identity: reception,
		Action:   model.ActionCreate,
		Scope:    policy.AllScope(),
		Payload:  model.CreatePaymentRequest{ClientID: 1, Amount: 100, Method: model.PaymentMethodCash},
	})
	assert.True(t, errors.IsValidation(err))

	_, err = f.svc.Mutate(context.Background(), access.Mutation{
		Identity: reception,
		Action:   model.ActionRecordCash,
		Scope:    policy.AllScope(),
		Payload:  model.CreatePaymentRequest{ClientID: 1, Amount: 100, Method: model.PaymentMethodGateway},
	})
	assert.True(t, errors.IsValidation(err))
}

func TestMutate_RecordCash(t *testing.T) {
	f := newFixture(t)

	out, err := f.svc.Mutate(context.Background(), access.Mutation{
		Identity: reception,
		Action:   model.ActionRecordCash,
		Scope:    policy.AllScope(),
		Payload:  model.CreatePaymentRequest{ClientID: 1, Amount: 10000, Method: model.PaymentMethodCash},
	})
	require.NoError(t, err)
	res := out.(*CreateResult)
	assert.Equal(t, model.PaymentStatusCompleted, res.Payment.Status)
	assert.Equal(t, model.Cents(2000), res.Payment.Commission)
	assert.Len(t, f.auditLogs(t), 1)
}
