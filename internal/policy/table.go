package policy

import (
	"github.com/jwalitptl/salon-api/internal/model"
)

type Effect int

const (
	Denied Effect = iota
	AllowedAll
	AllowedScoped
)

func (e Effect) String() string {
	switch e {
	case AllowedAll:
		return "allowed_all"
	case AllowedScoped:
		return "allowed_scoped"
	default:
		return "denied"
	}
}

// Decision is the typed result of a table lookup.
type Decision struct {
	Effect Effect
	Scope  ScopeKind
}

func (d Decision) Allowed() bool {
	return d.Effect != Denied
}

type key struct {
	role     model.Role
	resource model.Resource
	action   model.Action
}

// Rule is one row of the policy table.
type Rule struct {
	Role     model.Role
	Resource model.Resource
	Action   model.Action
	Decision Decision
}

func Allow(role model.Role, resource model.Resource, action model.Action) Rule {
	return Rule{Role: role, Resource: resource, Action: action, Decision: Decision{Effect: AllowedAll, Scope: ScopeAll}}
}

func Scoped(role model.Role, resource model.Resource, action model.Action, kind ScopeKind) Rule {
	return Rule{Role: role, Resource: resource, Action: action, Decision: Decision{Effect: AllowedScoped, Scope: kind}}
}

// Table maps (role, resource, action) to a decision. Absent keys are denied.
type Table struct {
	rules map[key]Decision
}

func NewTable(rules ...Rule) *Table {
	t := &Table{rules: make(map[key]Decision, len(rules))}
	for _, r := range rules {
		t.rules[key{r.Role, r.Resource, r.Action}] = r.Decision
	}
	return t
}

func (t *Table) Lookup(role model.Role, resource model.Resource, action model.Action) Decision {
	if d, ok := t.rules[key{role, resource, action}]; ok {
		return d
	}
	return Decision{Effect: Denied, Scope: ScopeNone}
}

// Rules returns every entry, for listing and tests.
func (t *Table) Rules() []Rule {
	out := make([]Rule, 0, len(t.rules))
	for k, d := range t.rules {
		out = append(out, Rule{Role: k.role, Resource: k.resource, Action: k.action, Decision: d})
	}
	return out
}

// DefaultTable is the salon's access policy. Audit logs have no mutating
// entry for any role.
func DefaultTable() *Table {
	const (
		admin     = model.RoleAdmin
		reception = model.RoleReception
		provider  = model.RoleProvider
		client    = model.RoleClient

		clients      = model.ResourceClients
		appointments = model.ResourceAppointments
		payments     = model.ResourcePayments
		auditLogs    = model.ResourceAuditLogs
	)

	return NewTable(
		Allow(admin, clients, model.ActionRead),
		Allow(reception, clients, model.ActionRead),
		Scoped(provider, clients, model.ActionRead, ScopeAssignedOrLinkedClient),
		Scoped(client, clients, model.ActionRead, ScopeOwnedByClientUser),

		Allow(admin, clients, model.ActionUpdate),
		Allow(reception, clients, model.ActionUpdate),
		Scoped(client, clients, model.ActionUpdate, ScopeOwnedByClientUser),

		Allow(admin, appointments, model.ActionRead),
		Allow(reception, appointments, model.ActionRead),
		Scoped(provider, appointments, model.ActionRead, ScopeAssignedToProvider),
		Scoped(client, appointments, model.ActionRead, ScopeOwnedByClientUser),

		Allow(admin, payments, model.ActionRead),
		Allow(reception, payments, model.ActionRead),
		Scoped(provider, payments, model.ActionRead, ScopePaymentsOfProviderAppointments),
		Scoped(client, payments, model.ActionRead, ScopeOwnedByClientUser),

		Allow(admin, payments, model.ActionCreate),
		Allow(reception, payments, model.ActionCreate),
		Scoped(client, payments, model.ActionCreate, ScopeOwnedByClientUser),

		Allow(admin, payments, model.ActionRecordCash),
		Allow(reception, payments, model.ActionRecordCash),

		Allow(admin, payments, model.ActionConfirm),
		Allow(reception, payments, model.ActionConfirm),

		Allow(admin, payments, model.ActionCancel),
		Allow(reception, payments, model.ActionCancel),
		Scoped(client, payments, model.ActionCancel, ScopeOwnedByClientUser),

		Allow(admin, auditLogs, model.ActionRead),
	)
}
