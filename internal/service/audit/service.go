package audit

import (
	"context"

	"github.com/jwalitptl/salon-api/internal/model"
	"github.com/jwalitptl/salon-api/internal/repository"
)

// Service reads the audit trail. Queries arrive already scoped.
type Service struct {
	repo repository.AuditRepository
}

func NewService(repo repository.AuditRepository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, q repository.Query) (model.Page[*model.AuditLog], error) {
	return s.repo.Find(ctx, q)
}
