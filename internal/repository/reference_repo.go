package repository

import (
	"context"

	"sistramite/internal/model"

	"gorm.io/gorm"
)

// ReferenceRepository serves the static catalogs backing form selects and
// filter translation.
type ReferenceRepository interface {
	Regions(ctx context.Context) ([]model.AdministrativeRegion, error)
	Statuses(ctx context.Context) ([]model.Status, error)
	StatusByDescription(ctx context.Context, description string) (*model.Status, error)
	DemandTypes(ctx context.Context) ([]model.DemandType, error)
	Demands(ctx context.Context) ([]model.Demand, error)
	Departments(ctx context.Context) ([]model.Department, error)
	Directorates(ctx context.Context) ([]model.Directorate, error)
	DirectorateByDisplayName(ctx context.Context, displayName string) (*model.Directorate, error)
}

type referenceRepository struct {
	db *gorm.DB
}

func NewReferenceRepository(db *gorm.DB) ReferenceRepository {
	return &referenceRepository{db: db}
}

func (r *referenceRepository) Regions(ctx context.Context) ([]model.AdministrativeRegion, error) {
	var out []model.AdministrativeRegion
	err := GetDB(ctx, r.db).Order("description asc").Find(&out).Error
	return out, err
}

// Statuses are returned in their configured display order, not alphabetically.
func (r *referenceRepository) Statuses(ctx context.Context) ([]model.Status, error) {
	var out []model.Status
	err := GetDB(ctx, r.db).Order("display_order asc").Find(&out).Error
	return out, err
}

func (r *referenceRepository) StatusByDescription(ctx context.Context, description string) (*model.Status, error) {
	var s model.Status
	if err := GetDB(ctx, r.db).First(&s, "description = ?", description).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *referenceRepository) DemandTypes(ctx context.Context) ([]model.DemandType, error) {
	var out []model.DemandType
	err := GetDB(ctx, r.db).Order("description asc").Find(&out).Error
	return out, err
}

func (r *referenceRepository) Demands(ctx context.Context) ([]model.Demand, error) {
	var out []model.Demand
	err := GetDB(ctx, r.db).Preload("Department.Directorate").Order("description asc").Find(&out).Error
	return out, err
}

func (r *referenceRepository) Departments(ctx context.Context) ([]model.Department, error) {
	var out []model.Department
	err := GetDB(ctx, r.db).Preload("Directorate").Order("name asc").Find(&out).Error
	return out, err
}

func (r *referenceRepository) Directorates(ctx context.Context) ([]model.Directorate, error) {
	var out []model.Directorate
	err := GetDB(ctx, r.db).Order("full_name asc").Find(&out).Error
	return out, err
}

func (r *referenceRepository) DirectorateByDisplayName(ctx context.Context, displayName string) (*model.Directorate, error) {
	var d model.Directorate
	if err := GetDB(ctx, r.db).First(&d, "display_name = ?", displayName).Error; err != nil {
		return nil, err
	}
	return &d, nil
}
