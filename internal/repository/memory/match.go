package memory

import (
	"fmt"
	"strings"
	"time"

	"github.com/jwalitptl/salon-api/internal/model"
	"github.com/jwalitptl/salon-api/internal/policy"
	"github.com/jwalitptl/salon-api/internal/repository"
)

// matches evaluates q's scope, then its conditions, against rec.
func matches(st *state, q repository.Query, rec interface{}) (bool, error) {
	ok, err := inScope(st, q.Resource, *q.Scope, rec)
	if err != nil || !ok {
		return false, err
	}
	for _, c := range q.Conditions {
		ok, err := holds(rec, c)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

func inScope(st *state, resource model.Resource, s policy.Scope, rec interface{}) (bool, error) {
	switch s.Kind {
	case policy.ScopeAll:
		return true, nil
	case policy.ScopeNone:
		return false, nil
	}

	switch r := rec.(type) {
	case *model.Client:
		switch s.Kind {
		case policy.ScopeOwnedByClientUser:
			return r.ID == s.ClientID, nil
		case policy.ScopeLinkedByProviderAppointment:
			return linked(st, r.ID, s.ProviderID), nil
		case policy.ScopeAssignedOrLinkedClient:
			preferred := r.PreferredProviderID != nil && *r.PreferredProviderID == s.ProviderID
			return preferred || linked(st, r.ID, s.ProviderID), nil
		}
	case *model.Appointment:
		switch s.Kind {
		case policy.ScopeOwnedByClientUser:
			return r.ClientID == s.ClientID, nil
		case policy.ScopeAssignedToProvider:
			return r.ProviderID != nil && *r.ProviderID == s.ProviderID, nil
		}
	case *model.Payment:
		switch s.Kind {
		case policy.ScopeOwnedByClientUser:
			return r.ClientID == s.ClientID, nil
		case policy.ScopePaymentsOfProviderAppointments:
			if r.AppointmentID == nil {
				return false, nil
			}
			a, ok := st.appointments[*r.AppointmentID]
			return ok && a.ProviderID != nil && *a.ProviderID == s.ProviderID, nil
		}
	}
	return false, fmt.Errorf("scope %s does not apply to %s", s.Kind, resource)
}

func linked(st *state, clientID, providerID int64) bool {
	for _, a := range st.appointments {
		if a.ClientID == clientID && a.ProviderID != nil && *a.ProviderID == providerID {
			return true
		}
	}
	return false
}

// field returns the comparable value of f on rec, mirroring the SQL columns.
func field(rec interface{}, f repository.Field) (interface{}, bool) {
	switch r := rec.(type) {
	case *model.Client:
		switch f {
		case repository.FieldID:
			return r.ID, true
		case repository.FieldLocationID:
			return r.LocationID, true
		case repository.FieldTime:
			return r.CreatedAt, true
		}
	case *model.Appointment:
		switch f {
		case repository.FieldID:
			return r.ID, true
		case repository.FieldStatus:
			return string(r.Status), true
		case repository.FieldClientID:
			return r.ClientID, true
		case repository.FieldLocationID:
			return r.LocationID, true
		case repository.FieldTime:
			return r.StartsAt, true
		}
	case *model.Payment:
		switch f {
		case repository.FieldID:
			return r.ID, true
		case repository.FieldStatus:
			return string(r.Status), true
		case repository.FieldClientID:
			return r.ClientID, true
		case repository.FieldMethod:
			return string(r.Method), true
		case repository.FieldTime:
			return r.CreatedAt, true
		}
	case *model.AuditLog:
		switch f {
		case repository.FieldID:
			return r.ID, true
		case repository.FieldAction:
			return r.Action, true
		case repository.FieldResourceType:
			return string(r.ResourceType), true
		case repository.FieldActorID:
			return r.ActorID, true
		case repository.FieldTime:
			return r.CreatedAt, true
		}
	}
	return nil, false
}

func searchable(rec interface{}) []string {
	if c, ok := rec.(*model.Client); ok {
		return []string{c.Name, c.Email, c.Phone}
	}
	return nil
}

func holds(rec interface{}, c repository.Condition) (bool, error) {
	if c.Op == repository.OpSearch {
		texts := searchable(rec)
		if texts == nil {
			return false, fmt.Errorf("search is not supported for %T", rec)
		}
		needle := strings.ToLower(fmt.Sprint(c.Value))
		for _, t := range texts {
			if strings.Contains(strings.ToLower(t), needle) {
				return true, nil
			}
		}
		return false, nil
	}

	v, ok := field(rec, c.Field)
	if !ok {
		return false, fmt.Errorf("%T has no field %s", rec, c.Field)
	}

	switch c.Op {
	case repository.OpEq:
		return v == c.Value, nil
	case repository.OpGTE, repository.OpLT:
		t, ok := v.(time.Time)
		bound, okBound := c.Value.(time.Time)
		if !ok || !okBound {
			return false, fmt.Errorf("range on non-time field %s", c.Field)
		}
		if c.Op == repository.OpGTE {
			return !t.Before(bound), nil
		}
		return t.Before(bound), nil
	}
	return false, fmt.Errorf("unsupported operator %s", c.Op)
}
