package payment

import (
	"context"
	stderrors "errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/jwalitptl/salon-api/internal/gateway"
	"github.com/jwalitptl/salon-api/internal/model"
	"github.com/jwalitptl/salon-api/internal/repository"
	"github.com/jwalitptl/salon-api/internal/service/audit"
	"github.com/jwalitptl/salon-api/pkg/errors"
	"github.com/jwalitptl/salon-api/pkg/logger"
	"github.com/jwalitptl/salon-api/pkg/messaging"
	"github.com/jwalitptl/salon-api/pkg/metrics"
	"github.com/jwalitptl/salon-api/pkg/validator"
)

// Lifecycle event types published after commit.
const (
	EventPaymentCreated   = "payment.created"
	EventPaymentCompleted = "payment.completed"
	EventPaymentFailed    = "payment.failed"
	EventPaymentCanceled  = "payment.canceled"
)

type Config struct {
	CommissionRate float64
	Currency       string
	GatewayTimeout time.Duration
}

// CreateResult carries the stored payment and, for gateway payments, what
// the payer's device needs to complete the intent.
type CreateResult struct {
	Payment      *model.Payment `json:"payment"`
	ClientSecret string         `json:"client_secret,omitempty"`
}

// ConfirmRequest identifies a payment by gateway reference, falling back to
// the intent key for payments whose creation timed out.
type ConfirmRequest struct {
	GatewayReference string
	IntentKey        string
	Outcome          model.Outcome
	Reason           string
}

// ConfirmResult reports the payment's state after the call. Changed is
// false when the payment had already left pending.
type ConfirmResult struct {
	Payment *model.Payment `json:"payment"`
	Changed bool           `json:"changed"`
}

// Service owns the payment state machine.
type Service struct {
	store     repository.Store
	gateway   gateway.Gateway
	recorder  *audit.Recorder
	publisher messaging.Publisher
	validator validator.Validator
	logger    *logger.Logger
	metrics   *metrics.Metrics
	cfg       Config

	sf  singleflight.Group
	now func() time.Time
}

func NewService(
	store repository.Store,
	gw gateway.Gateway,
	recorder *audit.Recorder,
	publisher messaging.Publisher,
	log *logger.Logger,
	m *metrics.Metrics,
	cfg Config,
) *Service {
	return &Service{
		store:     store,
		gateway:   gw,
		recorder:  recorder,
		publisher: publisher,
		validator: validator.New(),
		logger:    log,
		metrics:   m,
		cfg:       cfg,
		now:       time.Now,
	}
}

// Create records a cash payment as completed or opens a gateway intent and
// records the payment as pending.
func (s *Service) Create(ctx context.Context, actor model.Identity, req model.CreatePaymentRequest) (*CreateResult, error) {
	if req.Amount <= 0 {
		return nil, errors.Validation("amount must be greater than zero", nil)
	}
	if req.Amount > model.MaxCents {
		return nil, errors.Validation(fmt.Sprintf("amount must be at most %s", model.MaxCents), nil)
	}
	if req.Tips < 0 || req.Tips > model.MaxCents {
		return nil, errors.Validation(fmt.Sprintf("tips must be between 0 and %s", model.MaxCents), nil)
	}
	if !req.Method.Valid() {
		return nil, errors.Validation(fmt.Sprintf("unknown payment method %q", req.Method), nil)
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	if _, err := s.store.Clients().GetByID(ctx, req.ClientID); err != nil {
		return nil, err
	}
	if req.AppointmentID != nil {
		apt, err := s.store.Appointments().GetByID(ctx, *req.AppointmentID)
		if err != nil {
			return nil, err
		}
		if apt.ClientID != req.ClientID {
			return nil, errors.Validation("appointment belongs to another client", nil)
		}
	}

	commission, err := Commission(req.Amount, s.cfg.CommissionRate)
	if err != nil {
		return nil, errors.Internal(err)
	}

	now := s.now().UTC()
	p := &model.Payment{
		ClientID:       req.ClientID,
		AppointmentID:  req.AppointmentID,
		PackageID:      req.PackageID,
		Amount:         req.Amount,
		Method:         req.Method,
		Commission:     commission,
		CommissionRate: s.cfg.CommissionRate,
		Tips:           req.Tips,
		Currency:       s.cfg.Currency,
		IntentKey:      uuid.NewString(),
		CreatedBy:      actor.ID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	result := &CreateResult{Payment: p}
	switch req.Method {
	case model.PaymentMethodCash:
		p.Status = model.PaymentStatusCompleted
	case model.PaymentMethodGateway:
		p.Status = model.PaymentStatusPending
		intent, err := s.requestIntent(ctx, p, req.Description)
		if err != nil {
			return nil, err
		}
		if intent != nil {
			p.GatewayReference = &intent.Reference
			result.ClientSecret = intent.ClientSecret
		}
	}

	err = s.store.WithTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		if err := tx.Payments().Insert(ctx, p); err != nil {
			return err
		}
		_, err := s.recorder.Record(ctx, tx, audit.Entry{
			Actor:        actor,
			Action:       model.AuditActionPaymentCreate,
			ResourceType: model.ResourcePayments,
			ResourceID:   p.ID,
			After:        p,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.metrics.PaymentTransitions.WithLabelValues("new", string(p.Status), string(p.Method)).Inc()
	s.logger.Info("payment created",
		"payment_id", p.ID,
		"client_id", p.ClientID,
		"method", string(p.Method),
		"status", string(p.Status),
		"actor_id", actor.ID,
	)
	s.publish(ctx, EventPaymentCreated, p)
	return result, nil
}

// requestIntent asks the gateway for an intent within the configured
// timeout. A nil intent with a nil error means the call timed out and the
// payment stays pending until a webhook reconciles it by intent key.
func (s *Service) requestIntent(ctx context.Context, p *model.Payment, description string) (*gateway.Intent, error) {
	gctx, cancel := context.WithTimeout(ctx, s.cfg.GatewayTimeout)
	defer cancel()

	intent, err := s.gateway.CreateIntent(gctx, gateway.IntentRequest{
		IdempotencyKey: p.IntentKey,
		Amount:         p.Amount,
		Currency:       p.Currency,
		ClientID:       p.ClientID,
		Description:    description,
	})
	if err == nil {
		return intent, nil
	}
	if stderrors.Is(err, gateway.ErrTimeout) || stderrors.Is(gctx.Err(), context.DeadlineExceeded) {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		s.logger.Warn(err, "gateway timed out, recording payment as pending",
			"intent_key", p.IntentKey, "client_id", p.ClientID)
		return nil, nil
	}
	if stderrors.Is(err, gateway.ErrDeclined) {
		return nil, errors.Gateway("payment was declined by the gateway", err)
	}
	return nil, errors.Gateway("payment gateway unavailable", err)
}

// Confirm applies a gateway outcome. Repeated or late deliveries for a
// payment that already left pending are no-ops without an audit entry.
func (s *Service) Confirm(ctx context.Context, actor model.Identity, req ConfirmRequest) (*ConfirmResult, error) {
	if !req.Outcome.Valid() {
		return nil, errors.Validation(fmt.Sprintf("unknown outcome %q", req.Outcome), nil)
	}
	if req.GatewayReference == "" && req.IntentKey == "" {
		return nil, errors.Validation("gateway reference is required", nil)
	}

	p, err := s.lookup(ctx, req.GatewayReference, req.IntentKey)
	if err != nil {
		return nil, err
	}
	return s.settle(ctx, actor, p.ID, req.Outcome, req.GatewayReference, req.Reason)
}

func (s *Service) lookup(ctx context.Context, reference, intentKey string) (*model.Payment, error) {
	repo := s.store.Payments()
	if reference != "" {
		p, err := repo.GetByReference(ctx, reference)
		if err == nil {
			return p, nil
		}
		if !errors.IsNotFound(err) || intentKey == "" {
			return nil, err
		}
	}
	return repo.GetByIntentKey(ctx, intentKey)
}

// ConfirmByID is the manual confirmation path. It races the webhook on the
// same conditional update.
func (s *Service) ConfirmByID(ctx context.Context, actor model.Identity, id int64, req model.ConfirmPaymentRequest) (*ConfirmResult, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	return s.settle(ctx, actor, id, req.Outcome, "", req.Reason)
}

// settle collapses concurrent calls for one payment in this process; the
// collapsed callers share the leader's result. The conditional update
// decides between processes. The shared work ignores the leader's
// cancellation so other waiting deliveries still get a result.
func (s *Service) settle(ctx context.Context, actor model.Identity, id int64, outcome model.Outcome, reference, reason string) (*ConfirmResult, error) {
	key := "payment:" + strconv.FormatInt(id, 10) + ":" + string(outcome)
	shared := context.WithoutCancel(ctx)
	v, err, _ := s.sf.Do(key, func() (interface{}, error) {
		return s.transition(shared, actor, id, outcome.Target(), reference, reason)
	})
	if err != nil {
		return nil, err
	}
	res := v.(*ConfirmResult)
	return &ConfirmResult{Payment: res.Payment, Changed: res.Changed}, nil
}

func (s *Service) transition(ctx context.Context, actor model.Identity, id int64, to model.PaymentStatus, reference, reason string) (*ConfirmResult, error) {
	var res ConfirmResult
	err := s.store.WithTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		before, err := tx.Payments().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if !before.Status.CanTransition(to) {
			res.Payment = before
			return nil
		}

		t := model.Transition{
			PaymentID: id,
			From:      before.Status,
			To:        to,
			At:        s.now().UTC(),
		}
		if reference != "" && before.GatewayReference == nil {
			t.GatewayReference = &reference
		}
		if to == model.PaymentStatusFailed && reason != "" {
			t.FailureReason = &reason
		}

		changed, err := tx.Payments().Transition(ctx, t)
		if err != nil {
			return err
		}
		after, err := tx.Payments().GetByID(ctx, id)
		if err != nil {
			return err
		}
		res.Payment = after
		if !changed {
			return nil
		}
		res.Changed = true

		action := model.AuditActionPaymentConfirm
		if to == model.PaymentStatusFailed {
			action = model.AuditActionPaymentFail
		}
		_, err = s.recorder.Record(ctx, tx, audit.Entry{
			Actor:        actor,
			Action:       action,
			ResourceType: model.ResourcePayments,
			ResourceID:   id,
			Before:       before,
			After:        after,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	p := res.Payment
	if !res.Changed {
		s.metrics.PaymentNoops.WithLabelValues(string(p.Status)).Inc()
		s.logger.Info("payment confirmation ignored",
			"payment_id", p.ID, "status", string(p.Status), "requested", string(to))
		return &res, nil
	}

	s.metrics.PaymentTransitions.WithLabelValues(string(model.PaymentStatusPending), string(p.Status), string(p.Method)).Inc()
	s.logger.Info("payment transitioned",
		"payment_id", p.ID, "status", string(p.Status), "actor_id", actor.ID, "actor_role", string(actor.Role))

	evt := EventPaymentCompleted
	if p.Status == model.PaymentStatusFailed {
		evt = EventPaymentFailed
	}
	s.publish(ctx, evt, p)
	return &res, nil
}

// Cancel moves a pending payment to canceled. Anything else is a conflict.
func (s *Service) Cancel(ctx context.Context, actor model.Identity, id int64) (*model.Payment, error) {
	var out *model.Payment
	err := s.store.WithTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		before, err := tx.Payments().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if !before.Status.CanTransition(model.PaymentStatusCanceled) {
			return errors.Conflict(fmt.Sprintf("payment is %s and cannot be canceled", before.Status), nil)
		}

		changed, err := tx.Payments().Transition(ctx, model.Transition{
			PaymentID: id,
			From:      before.Status,
			To:        model.PaymentStatusCanceled,
			At:        s.now().UTC(),
		})
		if err != nil {
			return err
		}
		if !changed {
			return errors.Conflict("payment changed state concurrently", nil)
		}

		after, err := tx.Payments().GetByID(ctx, id)
		if err != nil {
			return err
		}
		out = after
		_, err = s.recorder.Record(ctx, tx, audit.Entry{
			Actor:        actor,
			Action:       model.AuditActionPaymentCancel,
			ResourceType: model.ResourcePayments,
			ResourceID:   id,
			Before:       before,
			After:        after,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.metrics.PaymentTransitions.WithLabelValues(string(model.PaymentStatusPending), string(out.Status), string(out.Method)).Inc()
	s.logger.Info("payment canceled", "payment_id", out.ID, "actor_id", actor.ID)
	s.publish(ctx, EventPaymentCanceled, out)
	return out, nil
}

// publish is best-effort: the transition has already committed.
func (s *Service) publish(ctx context.Context, eventType string, p *model.Payment) {
	payload := map[string]interface{}{
		"payment_id": p.ID,
		"client_id":  p.ClientID,
		"status":     p.Status,
		"method":     p.Method,
		"amount":     p.Amount,
		"commission": p.Commission,
	}
	if err := s.publisher.Publish(ctx, eventType, payload); err != nil {
		s.logger.Warn(err, "lifecycle event not published", "event_type", eventType, "payment_id", p.ID)
	}
}
