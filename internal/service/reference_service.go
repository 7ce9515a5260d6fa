package service

import (
	"context"

	"sistramite/internal/model"
	"sistramite/internal/repository"
)

// ReferenceService exposes the seeded catalogs that back the intake and
// filter forms.
type ReferenceService interface {
	Regions(ctx context.Context) ([]model.AdministrativeRegion, error)
	Statuses(ctx context.Context) ([]model.Status, error)
	DemandTypes(ctx context.Context) ([]model.DemandType, error)
	Demands(ctx context.Context) ([]model.Demand, error)
	Departments(ctx context.Context) ([]model.Department, error)
	Directorates(ctx context.Context) ([]model.Directorate, error)
}

type referenceService struct {
	repo repository.ReferenceRepository
}

func NewReferenceService(repo repository.ReferenceRepository) ReferenceService {
	return &referenceService{repo: repo}
}

func (s *referenceService) Regions(ctx context.Context) ([]model.AdministrativeRegion, error) {
	return s.repo.Regions(ctx)
}

func (s *referenceService) Statuses(ctx context.Context) ([]model.Status, error) {
	return s.repo.Statuses(ctx)
}

func (s *referenceService) DemandTypes(ctx context.Context) ([]model.DemandType, error) {
	return s.repo.DemandTypes(ctx)
}

func (s *referenceService) Demands(ctx context.Context) ([]model.Demand, error) {
	return s.repo.Demands(ctx)
}

func (s *referenceService) Departments(ctx context.Context) ([]model.Department, error) {
	return s.repo.Departments(ctx)
}

func (s *referenceService) Directorates(ctx context.Context) ([]model.Directorate, error) {
	return s.repo.Directorates(ctx)
}
