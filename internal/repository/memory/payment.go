package memory

import (
	"context"
	"sort"

	"github.com/jwalitptl/salon-api/internal/model"
	"github.com/jwalitptl/salon-api/internal/repository"
	"github.com/jwalitptl/salon-api/pkg/errors"
)

type paymentRepo struct {
	*handle
}

func (r paymentRepo) Insert(_ context.Context, p *model.Payment) error {
	return r.with(func(st *state) error {
		for _, existing := range st.payments {
			if existing.IntentKey == p.IntentKey {
				return conflict("payment")
			}
			if p.GatewayReference != nil && existing.GatewayReference != nil &&
				*existing.GatewayReference == *p.GatewayReference {
				return conflict("payment")
			}
		}
		st.nextPayment++
		p.ID = st.nextPayment
		st.payments[p.ID] = *p
		return nil
	})
}

func (r paymentRepo) getWhere(match func(model.Payment) bool) (*model.Payment, error) {
	var out *model.Payment
	err := r.with(func(st *state) error {
		for _, p := range st.payments {
			if match(p) {
				p := p
				out = &p
				return nil
			}
		}
		return errors.NotFound("payment", nil)
	})
	return out, err
}

func (r paymentRepo) GetByID(_ context.Context, id int64) (*model.Payment, error) {
	return r.getWhere(func(p model.Payment) bool { return p.ID == id })
}

func (r paymentRepo) GetByReference(_ context.Context, reference string) (*model.Payment, error) {
	return r.getWhere(func(p model.Payment) bool {
		return p.GatewayReference != nil && *p.GatewayReference == reference
	})
}

func (r paymentRepo) GetByIntentKey(_ context.Context, intentKey string) (*model.Payment, error) {
	return r.getWhere(func(p model.Payment) bool { return p.IntentKey == intentKey })
}

func (r paymentRepo) Transition(_ context.Context, t model.Transition) (bool, error) {
	changed := false
	err := r.with(func(st *state) error {
		p, ok := st.payments[t.PaymentID]
		if !ok || p.Status != t.From {
			return nil
		}
		p.Status = t.To
		if t.GatewayReference != nil {
			p.GatewayReference = t.GatewayReference
		}
		if t.FailureReason != nil {
			p.FailureReason = t.FailureReason
		}
		p.UpdatedAt = t.At
		st.payments[p.ID] = p
		changed = true
		return nil
	})
	return changed, err
}

func (r paymentRepo) Find(_ context.Context, q repository.Query) (model.Page[*model.Payment], error) {
	var page model.Page[*model.Payment]
	if err := q.Check(model.ResourcePayments); err != nil {
		return page, err
	}
	err := r.with(func(st *state) error {
		items := make([]*model.Payment, 0)
		for _, p := range st.payments {
			p := p
			ok, err := matches(st, q, &p)
			if err != nil {
				return err
			}
			if ok {
				items = append(items, &p)
			}
		}
		sort.Slice(items, func(i, j int) bool {
			if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
				return items[i].CreatedAt.After(items[j].CreatedAt)
			}
			return items[i].ID > items[j].ID
		})
		page = paginate(items, q.Page)
		return nil
	})
	return page, err
}

type auditRepo struct {
	*handle
}

func (r auditRepo) Create(_ context.Context, log *model.AuditLog) error {
	return r.with(func(st *state) error {
		if r.store.auditErr != nil {
			return r.store.auditErr
		}
		st.audit = append(st.audit, *log)
		return nil
	})
}

func (r auditRepo) Find(_ context.Context, q repository.Query) (model.Page[*model.AuditLog], error) {
	var page model.Page[*model.AuditLog]
	if err := q.Check(model.ResourceAuditLogs); err != nil {
		return page, err
	}
	err := r.with(func(st *state) error {
		items := make([]*model.AuditLog, 0)
		// Newest first; insertion order breaks timestamp ties.
		for i := len(st.audit) - 1; i >= 0; i-- {
			l := st.audit[i]
			ok, err := matches(st, q, &l)
			if err != nil {
				return err
			}
			if ok {
				items = append(items, &l)
			}
		}
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].CreatedAt.After(items[j].CreatedAt)
		})
		page = paginate(items, q.Page)
		return nil
	})
	return page, err
}
