package policy

import (
	"context"
	"fmt"

	"github.com/jwalitptl/salon-api/internal/model"
	"github.com/jwalitptl/salon-api/pkg/errors"
	"github.com/jwalitptl/salon-api/pkg/logger"
	"github.com/jwalitptl/salon-api/pkg/metrics"
)

// ClientProfiles finds the client profile linked to a client-role identity.
type ClientProfiles interface {
	GetByUserID(ctx context.Context, userID int64) (*model.Client, error)
}

// SchemaInspector reports optional columns of the deployed schema.
type SchemaInspector interface {
	HasColumn(ctx context.Context, table, column string) (bool, error)
}

// Engine evaluates the policy table against an identity.
type Engine struct {
	table   *Table
	clients ClientProfiles
	schema  SchemaInspector
	logger  *logger.Logger
	metrics *metrics.Metrics
}

func NewEngine(table *Table, clients ClientProfiles, schema SchemaInspector, log *logger.Logger, m *metrics.Metrics) *Engine {
	return &Engine{
		table:   table,
		clients: clients,
		schema:  schema,
		logger:  log,
		metrics: m,
	}
}

// Decide is a pure table lookup.
func (e *Engine) Decide(id model.Identity, resource model.Resource, action model.Action) Decision {
	d := e.table.Lookup(id.Role, resource, action)
	e.metrics.PolicyDecisions.WithLabelValues(string(resource), string(action), d.Effect.String()).Inc()
	return d
}

// Resolve turns a decision into a concrete scope for id.
//
// A denied read resolves to ScopeNone with no error. A denied mutation is an
// authorization error. A client-role identity without a client profile is
// NotFound whatever the action.
func (e *Engine) Resolve(ctx context.Context, id model.Identity, resource model.Resource, action model.Action) (Scope, error) {
	d := e.Decide(id, resource, action)

	switch d.Effect {
	case AllowedAll:
		return AllScope(), nil
	case AllowedScoped:
		return e.bind(ctx, id, d.Scope)
	}

	if action.IsRead() {
		if id.Role == model.RoleClient {
			// Still surfaces a missing profile rather than an empty list.
			if _, err := e.clientProfile(ctx, id); err != nil {
				return Scope{}, err
			}
		}
		return NoneScope(), nil
	}
	return Scope{}, errors.Authorization("action not permitted", nil)
}

func (e *Engine) bind(ctx context.Context, id model.Identity, kind ScopeKind) (Scope, error) {
	switch kind {
	case ScopeOwnedByClientUser:
		c, err := e.clientProfile(ctx, id)
		if err != nil {
			return Scope{}, err
		}
		return Scope{Kind: kind, ClientID: c.ID}, nil

	case ScopeAssignedOrLinkedClient:
		ok, err := e.schema.HasColumn(ctx, "clients", "preferred_provider_id")
		if err != nil {
			e.logger.Warn(err, "schema probe failed, narrowing client scope",
				"identity_id", id.ID, "scope", string(kind))
		}
		if err != nil || !ok {
			return Scope{Kind: ScopeLinkedByProviderAppointment, ProviderID: id.ID}, nil
		}
		return Scope{Kind: kind, ProviderID: id.ID}, nil

	case ScopeLinkedByProviderAppointment, ScopeAssignedToProvider, ScopePaymentsOfProviderAppointments:
		return Scope{Kind: kind, ProviderID: id.ID}, nil

	case ScopeNone:
		return NoneScope(), nil
	}
	return Scope{}, errors.Internal(fmt.Errorf("unknown scope kind %q", kind))
}

func (e *Engine) clientProfile(ctx context.Context, id model.Identity) (*model.Client, error) {
	c, err := e.clients.GetByUserID(ctx, id.ID)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, errors.NotFound("client profile", err)
		}
		return nil, err
	}
	return c, nil
}
