// Package memory is an in-process repository.Store. It backs local runs with
// database.driver=memory and the service tests.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/jwalitptl/salon-api/internal/model"
	"github.com/jwalitptl/salon-api/internal/repository"
	"github.com/jwalitptl/salon-api/pkg/errors"
)

type state struct {
	clients      map[int64]model.Client
	appointments map[int64]model.Appointment
	payments     map[int64]model.Payment
	audit        []model.AuditLog
	nextPayment  int64
}

func newState() *state {
	return &state{
		clients:      make(map[int64]model.Client),
		appointments: make(map[int64]model.Appointment),
		payments:     make(map[int64]model.Payment),
	}
}

func (s *state) clone() *state {
	c := &state{
		clients:      make(map[int64]model.Client, len(s.clients)),
		appointments: make(map[int64]model.Appointment, len(s.appointments)),
		payments:     make(map[int64]model.Payment, len(s.payments)),
		audit:        make([]model.AuditLog, len(s.audit)),
		nextPayment:  s.nextPayment,
	}
	for k, v := range s.clients {
		c.clients[k] = v
	}
	for k, v := range s.appointments {
		c.appointments[k] = v
	}
	for k, v := range s.payments {
		c.payments[k] = v
	}
	copy(c.audit, s.audit)
	return c
}

type Option func(*Store)

// WithPreferredProviderColumn controls whether the simulated schema has
// clients.preferred_provider_id. The default is true.
func WithPreferredProviderColumn(present bool) Option {
	return func(s *Store) { s.preferredColumn = present }
}

// Store serialises transactions with a single mutex. Repositories obtained
// from the Store must not be used inside WithTx; use the Tx instead.
type Store struct {
	mu              sync.Mutex
	data            *state
	preferredColumn bool
	auditErr        error
}

func New(opts ...Option) *Store {
	s := &Store{data: newState(), preferredColumn: true}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddClient seeds a client row.
func (s *Store) AddClient(c model.Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.clients[c.ID] = c
}

// AddAppointment seeds an appointment row.
func (s *Store) AddAppointment(a model.Appointment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.appointments[a.ID] = a
}

// FailAuditWrites makes every audit insert return err until reset with nil.
func (s *Store) FailAuditWrites(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.auditErr = err
}

func (s *Store) direct() *handle {
	return &handle{store: s}
}

func (s *Store) Clients() repository.ClientRepository           { return clientRepo{s.direct()} }
func (s *Store) Appointments() repository.AppointmentRepository { return appointmentRepo{s.direct()} }
func (s *Store) Payments() repository.PaymentRepository         { return paymentRepo{s.direct()} }
func (s *Store) Audit() repository.AuditRepository              { return auditRepo{s.direct()} }
func (s *Store) Schema() repository.SchemaInspector             { return s }

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) HasColumn(_ context.Context, table, column string) (bool, error) {
	if table == "clients" && column == "preferred_provider_id" {
		return s.preferredColumn, nil
	}
	return true, nil
}

// WithTx runs fn against a copy of the data and swaps it in on success.
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context, tx repository.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	h := &handle{store: s, data: s.data.clone(), inTx: true}
	if err := fn(ctx, h); err != nil {
		return err
	}
	s.data = h.data
	return nil
}

// handle reaches the data either directly (taking the lock per call) or
// through a transaction's private copy.
type handle struct {
	store *Store
	data  *state
	inTx  bool
}

func (h *handle) Clients() repository.ClientRepository   { return clientRepo{h} }
func (h *handle) Payments() repository.PaymentRepository { return paymentRepo{h} }
func (h *handle) Audit() repository.AuditRepository      { return auditRepo{h} }

func (h *handle) with(fn func(st *state) error) error {
	if h.inTx {
		return fn(h.data)
	}
	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	return fn(h.store.data)
}

// projectClient hides preferred_provider_id when the column is absent.
func (s *Store) projectClient(c model.Client) *model.Client {
	if !s.preferredColumn {
		c.PreferredProviderID = nil
	}
	return &c
}

func paginate[T any](items []T, p model.Pagination) model.Page[T] {
	p = p.Normalize()
	total := len(items)
	start := p.Offset()
	if start > total {
		start = total
	}
	end := start + p.PageSize
	if end > total {
		end = total
	}
	return model.Page[T]{Items: items[start:end], Total: total}
}

func conflict(what string) error {
	return errors.Conflict(fmt.Sprintf("%s already exists", what), nil)
}
