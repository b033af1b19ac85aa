// Package access is the query interface over protected resources. Every read
// and mutation resolves the caller's scope through the policy engine first.
package access

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"github.com/jwalitptl/salon-api/internal/model"
	"github.com/jwalitptl/salon-api/internal/policy"
	"github.com/jwalitptl/salon-api/internal/repository"
	"github.com/jwalitptl/salon-api/internal/service/audit"
	"github.com/jwalitptl/salon-api/pkg/errors"
	"github.com/jwalitptl/salon-api/pkg/logger"
)

// Resolver produces the scope of identity for a resource action.
type Resolver interface {
	Resolve(ctx context.Context, id model.Identity, resource model.Resource, action model.Action) (policy.Scope, error)
}

// Mutation is what a Mutator receives once the caller is allowed to act and,
// for existing records, the target is known to be inside the caller's scope.
type Mutation struct {
	Identity model.Identity
	Action   model.Action
	Scope    policy.Scope
	// TargetID is zero for creations.
	TargetID int64
	Payload  interface{}
}

type Mutator interface {
	Mutate(ctx context.Context, m Mutation) (interface{}, error)
}

// List is one page of records of a single resource.
type List struct {
	Items    interface{} `json:"items"`
	Total    int         `json:"total"`
	Page     int         `json:"page"`
	PageSize int         `json:"page_size"`
}

type Service struct {
	policy   Resolver
	mediator *Mediator
	store    repository.Store
	audit    *audit.Service
	logger   *logger.Logger
	mutators map[model.Resource]Mutator
}

func NewService(resolver Resolver, mediator *Mediator, store repository.Store, auditSvc *audit.Service, log *logger.Logger) *Service {
	return &Service{
		policy:   resolver,
		mediator: mediator,
		store:    store,
		audit:    auditSvc,
		logger:   log,
		mutators: make(map[model.Resource]Mutator),
	}
}

// Register routes mutations of resource to m.
func (s *Service) Register(resource model.Resource, m Mutator) {
	s.mutators[resource] = m
}

// List returns the records of resource visible to id, narrowed by filters.
// A caller with no visibility gets an empty page, not an error.
func (s *Service) List(ctx context.Context, id model.Identity, resource model.Resource, filters map[string]string) (*List, error) {
	if !resource.Valid() {
		return nil, errors.Validation(fmt.Sprintf("unknown resource %q", resource), nil)
	}
	scope, err := s.policy.Resolve(ctx, id, resource, model.ActionRead)
	if err != nil {
		return nil, err
	}
	q, err := s.mediator.Apply(repository.NewQuery(resource), scope, filters)
	if err != nil {
		return nil, err
	}

	items, total, err := s.find(ctx, q)
	if err != nil {
		return nil, err
	}
	return &List{Items: items, Total: total, Page: q.Page.Page, PageSize: q.Page.PageSize}, nil
}

// Get returns one record. A record that exists outside the caller's scope is
// an authorization error; only a record that does not exist is NotFound.
func (s *Service) Get(ctx context.Context, id model.Identity, resource model.Resource, recordID string) (interface{}, error) {
	if !resource.Valid() {
		return nil, errors.Validation(fmt.Sprintf("unknown resource %q", resource), nil)
	}
	scope, err := s.policy.Resolve(ctx, id, resource, model.ActionRead)
	if err != nil {
		return nil, err
	}
	cond, err := idCondition(resource, recordID)
	if err != nil {
		return nil, err
	}
	return s.visible(ctx, id, resource, scope, cond)
}

// Mutate runs action on resource. targetID is zero for creations, otherwise
// the target must be inside the scope granted for action.
func (s *Service) Mutate(ctx context.Context, id model.Identity, resource model.Resource, action model.Action, targetID int64, payload interface{}) (interface{}, error) {
	if action.IsRead() {
		return nil, errors.Validation("read is not a mutation", nil)
	}
	scope, err := s.policy.Resolve(ctx, id, resource, action)
	if err != nil {
		return nil, err
	}
	m, ok := s.mutators[resource]
	if !ok {
		return nil, errors.Validation(fmt.Sprintf("%s cannot be modified", resource), nil)
	}

	if targetID != 0 {
		cond := repository.Condition{Field: repository.FieldID, Op: repository.OpEq, Value: targetID}
		if _, err := s.visible(ctx, id, resource, scope, cond); err != nil {
			return nil, err
		}
	}

	return m.Mutate(ctx, Mutation{
		Identity: id,
		Action:   action,
		Scope:    scope,
		TargetID: targetID,
		Payload:  payload,
	})
}

func (s *Service) visible(ctx context.Context, id model.Identity, resource model.Resource, scope policy.Scope, cond repository.Condition) (interface{}, error) {
	q, err := s.mediator.Apply(repository.NewQuery(resource), scope, nil)
	if err != nil {
		return nil, err
	}
	q = q.Where(cond)
	q.Page = model.Pagination{Page: 1, PageSize: 1}

	items, total, err := s.find(ctx, q)
	if err != nil {
		return nil, err
	}
	if total > 0 {
		return first(items), nil
	}

	// Distinguish "not yours" from "not there".
	probe, err := s.mediator.Apply(repository.NewQuery(resource), policy.AllScope(), nil)
	if err != nil {
		return nil, err
	}
	probe = probe.Where(cond)
	probe.Page = q.Page
	if _, total, err = s.find(ctx, probe); err != nil {
		return nil, err
	}
	if total > 0 {
		s.logger.Warn(nil, "access outside scope denied",
			"identity_id", id.ID,
			"role", string(id.Role),
			"resource", string(resource),
			"record_id", fmt.Sprint(cond.Value),
			"scope", scope.String(),
		)
		return nil, errors.Authorization(fmt.Sprintf("%s is outside your access", singular(resource)), nil)
	}
	return nil, errors.NotFound(singular(resource), nil)
}

func (s *Service) find(ctx context.Context, q repository.Query) (interface{}, int, error) {
	switch q.Resource {
	case model.ResourceClients:
		p, err := s.store.Clients().Find(ctx, q)
		return p.Items, p.Total, err
	case model.ResourceAppointments:
		p, err := s.store.Appointments().Find(ctx, q)
		return p.Items, p.Total, err
	case model.ResourcePayments:
		p, err := s.store.Payments().Find(ctx, q)
		return p.Items, p.Total, err
	case model.ResourceAuditLogs:
		p, err := s.audit.List(ctx, q)
		return p.Items, p.Total, err
	}
	return nil, 0, errors.Validation(fmt.Sprintf("unknown resource %q", q.Resource), nil)
}

func first(items interface{}) interface{} {
	switch v := items.(type) {
	case []*model.Client:
		return v[0]
	case []*model.Appointment:
		return v[0]
	case []*model.Payment:
		return v[0]
	case []*model.AuditLog:
		return v[0]
	}
	return nil
}

func idCondition(resource model.Resource, raw string) (repository.Condition, error) {
	c := repository.Condition{Field: repository.FieldID, Op: repository.OpEq}
	if resource == model.ResourceAuditLogs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return c, errors.Validation("id must be a uuid", err)
		}
		c.Value = id
		return c, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return c, errors.Validation("id must be a positive integer", err)
	}
	c.Value = id
	return c, nil
}

func singular(r model.Resource) string {
	switch r {
	case model.ResourceClients:
		return "client"
	case model.ResourceAppointments:
		return "appointment"
	case model.ResourcePayments:
		return "payment"
	case model.ResourceAuditLogs:
		return "audit log"
	}
	return string(r)
}
