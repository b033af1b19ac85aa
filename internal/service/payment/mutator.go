package payment

import (
	"context"
	"fmt"

	"github.com/jwalitptl/salon-api/internal/access"
	"github.com/jwalitptl/salon-api/internal/model"
	"github.com/jwalitptl/salon-api/internal/policy"
	"github.com/jwalitptl/salon-api/pkg/errors"
)

// Mutate serves payment mutations routed through access.Service. The policy
// check and target visibility have already passed.
func (s *Service) Mutate(ctx context.Context, m access.Mutation) (interface{}, error) {
	switch m.Action {
	case model.ActionCreate, model.ActionRecordCash:
		req, ok := m.Payload.(model.CreatePaymentRequest)
		if !ok {
			return nil, errors.Validation("invalid payment payload", nil)
		}
		if m.Action == model.ActionRecordCash && req.Method != model.PaymentMethodCash {
			return nil, errors.Validation("record_cash only accepts cash payments", nil)
		}
		if m.Action == model.ActionCreate && req.Method == model.PaymentMethodCash {
			return nil, errors.Validation("cash payments are recorded with record_cash", nil)
		}
		if err := ownsClient(m.Scope, req.ClientID); err != nil {
			return nil, err
		}
		return s.Create(ctx, m.Identity, req)

	case model.ActionConfirm:
		req, ok := m.Payload.(model.ConfirmPaymentRequest)
		if !ok {
			return nil, errors.Validation("invalid confirmation payload", nil)
		}
		return s.ConfirmByID(ctx, m.Identity, m.TargetID, req)

	case model.ActionCancel:
		return s.Cancel(ctx, m.Identity, m.TargetID)
	}
	return nil, errors.Validation(fmt.Sprintf("payments do not support %s", m.Action), nil)
}

// ownsClient checks a new payment's client against the creation scope.
func ownsClient(scope policy.Scope, clientID int64) error {
	switch scope.Kind {
	case policy.ScopeAll:
		return nil
	case policy.ScopeOwnedByClientUser:
		if clientID == scope.ClientID {
			return nil
		}
	}
	return errors.Authorization("cannot create payments for this client", nil)
}
