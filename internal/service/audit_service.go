package service

import (
	"context"

	"sistramite/internal/model"
	"sistramite/internal/repository"
)

// AuditService exposes the administrative action trail.
type AuditService interface {
	List(ctx context.Context, page, limit int) ([]model.AuditLog, int64, error)
}

type auditService struct {
	repo repository.AuditRepository
}

func NewAuditService(repo repository.AuditRepository) AuditService {
	return &auditService{repo: repo}
}

func (s *auditService) List(ctx context.Context, page, limit int) ([]model.AuditLog, int64, error) {
	return s.repo.List(ctx, page, limit)
}
