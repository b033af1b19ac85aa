package repository

import (
	stderrors "errors"
	"fmt"

	"github.com/jwalitptl/salon-api/internal/model"
	"github.com/jwalitptl/salon-api/internal/policy"
)

// ErrUnscopedQuery is returned by every Find when the query has no scope.
// Scopes are only attached by the access mediator.
var ErrUnscopedQuery = stderrors.New("query has no scope")

// Field is a logical column. Each store maps it to its own representation.
type Field string

const (
	FieldID           Field = "id"
	FieldStatus       Field = "status"
	FieldClientID     Field = "client_id"
	FieldLocationID   Field = "location_id"
	FieldMethod       Field = "method"
	FieldAction       Field = "action"
	FieldResourceType Field = "resource_type"
	FieldActorID      Field = "actor_id"
	// FieldTime is the resource's primary timestamp: starts_at for
	// appointments, created_at for everything else.
	FieldTime Field = "time"
	// FieldSearch matches free text against the resource's text columns.
	FieldSearch Field = "search"
)

type Op string

const (
	OpEq     Op = "eq"
	OpGTE    Op = "gte"
	OpLT     Op = "lt"
	OpSearch Op = "search"
)

// Condition narrows a query. Conditions are always ANDed.
type Condition struct {
	Field Field
	Op    Op
	Value interface{}
}

// Query is a store independent description of a read.
type Query struct {
	Resource   model.Resource
	Scope      *policy.Scope
	Conditions []Condition
	Page       model.Pagination
}

func NewQuery(resource model.Resource) Query {
	return Query{Resource: resource}
}

// Check reports ErrUnscopedQuery or a resource mismatch.
func (q Query) Check(resource model.Resource) error {
	if q.Scope == nil || q.Scope.IsZero() {
		return ErrUnscopedQuery
	}
	if q.Resource != resource {
		return fmt.Errorf("query for %s run against %s", q.Resource, resource)
	}
	return nil
}

// Where returns a copy of q with c appended.
func (q Query) Where(c Condition) Query {
	conds := make([]Condition, len(q.Conditions), len(q.Conditions)+1)
	copy(conds, q.Conditions)
	q.Conditions = append(conds, c)
	return q
}
