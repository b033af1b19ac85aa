package client

import (
	"context"
	"fmt"

	"github.com/jwalitptl/salon-api/internal/access"
	"github.com/jwalitptl/salon-api/internal/model"
	"github.com/jwalitptl/salon-api/internal/repository"
	"github.com/jwalitptl/salon-api/internal/service/audit"
	"github.com/jwalitptl/salon-api/pkg/errors"
	"github.com/jwalitptl/salon-api/pkg/logger"
	"github.com/jwalitptl/salon-api/pkg/validator"
)

// Service edits client contact details. Clients are created and deleted by
// other parts of the system.
type Service struct {
	store     repository.UnitOfWork
	recorder  *audit.Recorder
	validator validator.Validator
	logger    *logger.Logger
}

func NewService(store repository.UnitOfWork, recorder *audit.Recorder, log *logger.Logger) *Service {
	return &Service{
		store:     store,
		recorder:  recorder,
		validator: validator.New(),
		logger:    log,
	}
}

func (s *Service) Update(ctx context.Context, actor model.Identity, id int64, req model.UpdateClientRequest) (*model.Client, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	var out *model.Client
	err := s.store.WithTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		before, err := tx.Clients().GetByID(ctx, id)
		if err != nil {
			return err
		}
		after := *before
		req.Apply(&after)
		if err := tx.Clients().Update(ctx, &after); err != nil {
			return err
		}
		out = &after

		_, err = s.recorder.Record(ctx, tx, audit.Entry{
			Actor:        actor,
			Action:       model.AuditActionClientUpdate,
			ResourceType: model.ResourceClients,
			ResourceID:   id,
			Before:       before,
			After:        &after,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("client updated", "client_id", id, "actor_id", actor.ID, "actor_role", string(actor.Role))
	return out, nil
}

// Mutate serves client mutations routed through access.Service.
func (s *Service) Mutate(ctx context.Context, m access.Mutation) (interface{}, error) {
	if m.Action != model.ActionUpdate {
		return nil, errors.Validation(fmt.Sprintf("clients do not support %s", m.Action), nil)
	}
	req, ok := m.Payload.(model.UpdateClientRequest)
	if !ok {
		return nil, errors.Validation("invalid client payload", nil)
	}
	return s.Update(ctx, m.Identity, m.TargetID, req)
}
