package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/salon-api/internal/model"
	"github.com/jwalitptl/salon-api/internal/reqctx"
	"github.com/jwalitptl/salon-api/internal/repository"
)

// Entry describes one sensitive mutation.
type Entry struct {
	Actor        model.Identity
	Action       string
	ResourceType model.Resource
	ResourceID   int64
	Before       interface{}
	After        interface{}
}

// Recorder writes audit rows. It only accepts the transaction of the
// mutation being documented, so the row commits or rolls back with it.
type Recorder struct {
	now func() time.Time
}

func NewRecorder() *Recorder {
	return &Recorder{now: time.Now}
}

func (r *Recorder) Record(ctx context.Context, tx repository.Tx, e Entry) (*model.AuditLog, error) {
	before, err := model.Snapshot(e.Before)
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot before state: %w", err)
	}
	after, err := model.Snapshot(e.After)
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot after state: %w", err)
	}

	log := &model.AuditLog{
		ID:           uuid.New(),
		ActorID:      e.Actor.ID,
		ActorRole:    e.Actor.Role,
		Action:       e.Action,
		ResourceType: e.ResourceType,
		ResourceID:   e.ResourceID,
		Before:       before,
		After:        after,
		RequestID:    reqctx.RequestID(ctx),
		CreatedAt:    r.now().UTC(),
	}
	if err := tx.Audit().Create(ctx, log); err != nil {
		return nil, fmt.Errorf("failed to record audit log: %w", err)
	}
	return log, nil
}
