package postgres

import (
	"fmt"
	"strings"

	"github.com/jwalitptl/salon-api/internal/model"
	"github.com/jwalitptl/salon-api/internal/policy"
	"github.com/jwalitptl/salon-api/internal/repository"
)

// table describes how a resource's logical fields map to SQL.
type table struct {
	name    string
	alias   string
	columns map[repository.Field]string
	search  []string
	orderBy string
}

var tables = map[model.Resource]table{
	model.ResourceClients: {
		name:  "clients",
		alias: "c",
		columns: map[repository.Field]string{
			repository.FieldID:         "c.id",
			repository.FieldLocationID: "c.location_id",
			repository.FieldTime:       "c.created_at",
		},
		search:  []string{"c.name", "c.email", "c.phone"},
		orderBy: "c.name ASC, c.id ASC",
	},
	model.ResourceAppointments: {
		name:  "appointments",
		alias: "a",
		columns: map[repository.Field]string{
			repository.FieldID:         "a.id",
			repository.FieldStatus:     "a.status",
			repository.FieldClientID:   "a.client_id",
			repository.FieldLocationID: "a.location_id",
			repository.FieldTime:       "a.starts_at",
		},
		orderBy: "a.starts_at DESC, a.id DESC",
	},
	model.ResourcePayments: {
		name:  "payments",
		alias: "p",
		columns: map[repository.Field]string{
			repository.FieldID:       "p.id",
			repository.FieldStatus:   "p.status",
			repository.FieldClientID: "p.client_id",
			repository.FieldMethod:   "p.method",
			repository.FieldTime:     "p.created_at",
		},
		orderBy: "p.created_at DESC, p.id DESC",
	},
	model.ResourceAuditLogs: {
		name:  "audit_logs",
		alias: "l",
		columns: map[repository.Field]string{
			repository.FieldID:           "l.id",
			repository.FieldAction:       "l.action",
			repository.FieldResourceType: "l.resource_type",
			repository.FieldActorID:      "l.actor_id",
			repository.FieldTime:         "l.created_at",
		},
		orderBy: "l.created_at DESC",
	},
}

type builder struct {
	args []interface{}
}

func (b *builder) arg(v interface{}) string {
	b.args = append(b.args, v)
	return fmt.Sprintf("$%d", len(b.args))
}

// scopeSQL renders the scope predicate for resource. Unknown combinations
// are an error so that a misconfigured table cannot widen access.
func scopeSQL(resource model.Resource, s policy.Scope, b *builder) (string, error) {
	switch s.Kind {
	case policy.ScopeAll:
		return "TRUE", nil
	case policy.ScopeNone:
		return "FALSE", nil
	}

	switch resource {
	case model.ResourceClients:
		switch s.Kind {
		case policy.ScopeOwnedByClientUser:
			return "c.id = " + b.arg(s.ClientID), nil
		case policy.ScopeLinkedByProviderAppointment:
			return linkedClientSQL(b.arg(s.ProviderID)), nil
		case policy.ScopeAssignedOrLinkedClient:
			p := b.arg(s.ProviderID)
			return fmt.Sprintf("(c.preferred_provider_id = %s OR %s)", p, linkedClientSQL(p)), nil
		}
	case model.ResourceAppointments:
		switch s.Kind {
		case policy.ScopeOwnedByClientUser:
			return "a.client_id = " + b.arg(s.ClientID), nil
		case policy.ScopeAssignedToProvider:
			return "a.provider_id = " + b.arg(s.ProviderID), nil
		}
	case model.ResourcePayments:
		switch s.Kind {
		case policy.ScopeOwnedByClientUser:
			return "p.client_id = " + b.arg(s.ClientID), nil
		case policy.ScopePaymentsOfProviderAppointments:
			return "p.appointment_id IN (SELECT ap.id FROM appointments ap WHERE ap.provider_id = " + b.arg(s.ProviderID) + ")", nil
		}
	}
	return "", fmt.Errorf("scope %s does not apply to %s", s.Kind, resource)
}

func linkedClientSQL(providerArg string) string {
	return "EXISTS (SELECT 1 FROM appointments ap WHERE ap.client_id = c.id AND ap.provider_id = " + providerArg + ")"
}

// whereSQL renders "scope AND cond AND cond..." for q.
func whereSQL(q repository.Query, b *builder) (string, error) {
	if err := q.Check(q.Resource); err != nil {
		return "", err
	}
	t, ok := tables[q.Resource]
	if !ok {
		return "", fmt.Errorf("unknown resource %s", q.Resource)
	}

	scope, err := scopeSQL(q.Resource, *q.Scope, b)
	if err != nil {
		return "", err
	}
	parts := []string{scope}

	for _, c := range q.Conditions {
		if c.Op == repository.OpSearch {
			if len(t.search) == 0 {
				return "", fmt.Errorf("%s does not support search", q.Resource)
			}
			p := b.arg("%" + escapeLike(fmt.Sprint(c.Value)) + "%")
			ors := make([]string, len(t.search))
			for i, col := range t.search {
				ors[i] = col + " ILIKE " + p
			}
			parts = append(parts, "("+strings.Join(ors, " OR ")+")")
			continue
		}

		col, ok := t.columns[c.Field]
		if !ok {
			return "", fmt.Errorf("%s has no field %s", q.Resource, c.Field)
		}
		var op string
		switch c.Op {
		case repository.OpEq:
			op = "="
		case repository.OpGTE:
			op = ">="
		case repository.OpLT:
			op = "<"
		default:
			return "", fmt.Errorf("unsupported operator %s", c.Op)
		}
		parts = append(parts, fmt.Sprintf("%s %s %s", col, op, b.arg(c.Value)))
	}

	return strings.Join(parts, " AND "), nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// selectSQL returns the count and page queries for q.
func selectSQL(q repository.Query, columns string) (count, page string, args []interface{}, err error) {
	b := &builder{}
	where, err := whereSQL(q, b)
	if err != nil {
		return "", "", nil, err
	}
	t := tables[q.Resource]
	from := fmt.Sprintf("FROM %s %s WHERE %s", t.name, t.alias, where)

	count = "SELECT COUNT(*) " + from
	pg := q.Page.Normalize()
	page = fmt.Sprintf("SELECT %s %s ORDER BY %s LIMIT %d OFFSET %d", columns, from, t.orderBy, pg.PageSize, pg.Offset())
	return count, page, b.args, nil
}
