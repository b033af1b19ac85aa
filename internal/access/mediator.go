package access

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/salon-api/internal/model"
	"github.com/jwalitptl/salon-api/internal/policy"
	"github.com/jwalitptl/salon-api/internal/repository"
	"github.com/jwalitptl/salon-api/pkg/errors"
)

// Filter keys shared by every listing.
const (
	FilterPage     = "page"
	FilterPageSize = "page_size"
)

type filterKind int

const (
	kindInt filterKind = iota
	kindUUID
	kindText
	kindSearch
	kindFrom
	kindTo
	kindPaymentStatus
	kindPaymentMethod
)

type filterSpec struct {
	field repository.Field
	kind  filterKind
}

// whitelist lists the user filters each resource accepts.
var whitelist = map[model.Resource]map[string]filterSpec{
	model.ResourceClients: {
		"id":          {repository.FieldID, kindInt},
		"q":           {repository.FieldSearch, kindSearch},
		"location_id": {repository.FieldLocationID, kindInt},
		"from":        {repository.FieldTime, kindFrom},
		"to":          {repository.FieldTime, kindTo},
	},
	model.ResourceAppointments: {
		"id":          {repository.FieldID, kindInt},
		"status":      {repository.FieldStatus, kindText},
		"client_id":   {repository.FieldClientID, kindInt},
		"location_id": {repository.FieldLocationID, kindInt},
		"from":        {repository.FieldTime, kindFrom},
		"to":          {repository.FieldTime, kindTo},
	},
	model.ResourcePayments: {
		"id":        {repository.FieldID, kindInt},
		"status":    {repository.FieldStatus, kindPaymentStatus},
		"client_id": {repository.FieldClientID, kindInt},
		"method":    {repository.FieldMethod, kindPaymentMethod},
		"from":      {repository.FieldTime, kindFrom},
		"to":        {repository.FieldTime, kindTo},
	},
	model.ResourceAuditLogs: {
		"id":            {repository.FieldID, kindUUID},
		"action":        {repository.FieldAction, kindText},
		"resource_type": {repository.FieldResourceType, kindText},
		"actor_id":      {repository.FieldActorID, kindInt},
		"from":          {repository.FieldTime, kindFrom},
		"to":            {repository.FieldTime, kindTo},
	},
}

// Mediator is the only place a scope gets attached to a query.
type Mediator struct{}

func NewMediator() *Mediator {
	return &Mediator{}
}

// Apply sets scope on q, then ANDs the whitelisted filters. Filters can only
// narrow the scope. Empty values are ignored.
func (m *Mediator) Apply(q repository.Query, scope policy.Scope, filters map[string]string) (repository.Query, error) {
	if scope.IsZero() {
		return q, errors.Internal(repository.ErrUnscopedQuery)
	}
	allowed, ok := whitelist[q.Resource]
	if !ok {
		return q, errors.Validation(fmt.Sprintf("unknown resource %q", q.Resource), nil)
	}
	q.Scope = &scope

	// Sorted so the generated conditions are stable.
	keys := make([]string, 0, len(filters))
	for k := range filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		raw := strings.TrimSpace(filters[key])
		switch key {
		case FilterPage:
			n, err := parsePositive(key, raw)
			if err != nil {
				return q, err
			}
			q.Page.Page = n
			continue
		case FilterPageSize:
			n, err := parsePositive(key, raw)
			if err != nil {
				return q, err
			}
			q.Page.PageSize = n
			continue
		}

		spec, ok := allowed[key]
		if !ok {
			return q, errors.Validation(fmt.Sprintf("unknown filter %q for %s", key, q.Resource), nil)
		}
		if raw == "" {
			continue
		}
		cond, err := condition(key, spec, raw)
		if err != nil {
			return q, err
		}
		q = q.Where(cond)
	}
	q.Page = q.Page.Normalize()
	return q, nil
}

func condition(key string, spec filterSpec, raw string) (repository.Condition, error) {
	c := repository.Condition{Field: spec.field, Op: repository.OpEq}
	switch spec.kind {
	case kindInt:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return c, errors.Validation(fmt.Sprintf("%s must be an integer", key), err)
		}
		c.Value = n
	case kindUUID:
		id, err := uuid.Parse(raw)
		if err != nil {
			return c, errors.Validation(fmt.Sprintf("%s must be a uuid", key), err)
		}
		c.Value = id
	case kindText:
		c.Value = raw
	case kindSearch:
		c.Op = repository.OpSearch
		c.Value = raw
	case kindPaymentStatus:
		switch s := model.PaymentStatus(raw); s {
		case model.PaymentStatusPending, model.PaymentStatusCompleted, model.PaymentStatusFailed, model.PaymentStatusCanceled:
			c.Value = raw
		default:
			return c, errors.Validation(fmt.Sprintf("unknown payment status %q", raw), nil)
		}
	case kindPaymentMethod:
		if !model.PaymentMethod(raw).Valid() {
			return c, errors.Validation(fmt.Sprintf("unknown payment method %q", raw), nil)
		}
		c.Value = raw
	case kindFrom, kindTo:
		t, dateOnly, err := parseTime(raw)
		if err != nil {
			return c, errors.Validation(fmt.Sprintf("%s must be a date (YYYY-MM-DD) or RFC3339 time", key), err)
		}
		if spec.kind == kindFrom {
			c.Op = repository.OpGTE
		} else {
			c.Op = repository.OpLT
			// A bare date includes the whole day.
			if dateOnly {
				t = t.AddDate(0, 0, 1)
			}
		}
		c.Value = t
	}
	return c, nil
}

func parseTime(raw string) (time.Time, bool, error) {
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, true, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	return t.UTC(), false, err
}

func parsePositive(key, raw string) (int, error) {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, errors.Validation(fmt.Sprintf("%s must be a positive integer", key), err)
	}
	return n, nil
}
