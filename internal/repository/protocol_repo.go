package repository

import (
	"context"

	"sistramite/internal/model"

	"gorm.io/gorm"
)

// ProtocolRepository defines data access for attendances and interactions.
type ProtocolRepository interface {
	Create(ctx context.Context, a *model.ProtocolAttendance) error
	SetProtocolNumber(ctx context.Context, id uint, number string) error
	GetByID(ctx context.Context, id uint) (*model.ProtocolAttendance, error)
	GetByProtocolNumber(ctx context.Context, number string) (*model.ProtocolAttendance, error)
	List(ctx context.Context, page, limit int) ([]model.ProtocolAttendance, int64, error)
	CreateInteraction(ctx context.Context, i *model.Interaction) error
	Interactions(ctx context.Context, attendanceID uint) ([]model.Interaction, error)
}

type protocolRepository struct {
	db *gorm.DB
}

func NewProtocolRepository(db *gorm.DB) ProtocolRepository {
	return &protocolRepository{db: db}
}

func (r *protocolRepository) Create(ctx context.Context, a *model.ProtocolAttendance) error {
	return GetDB(ctx, r.db).Create(a).Error
}

func (r *protocolRepository) SetProtocolNumber(ctx context.Context, id uint, number string) error {
	return GetDB(ctx, r.db).
		Model(&model.ProtocolAttendance{}).
		Where("id = ?", id).
		Update("protocol_number", number).Error
}

func (r *protocolRepository) GetByID(ctx context.Context, id uint) (*model.ProtocolAttendance, error) {
	var a model.ProtocolAttendance
	if err := GetDB(ctx, r.db).Preload("CreatedBy").First(&a, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *protocolRepository) GetByProtocolNumber(ctx context.Context, number string) (*model.ProtocolAttendance, error) {
	var a model.ProtocolAttendance
	if err := GetDB(ctx, r.db).Preload("CreatedBy").First(&a, "protocol_number = ?", number).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

// List returns attendances newest first.
func (r *protocolRepository) List(ctx context.Context, page, limit int) ([]model.ProtocolAttendance, int64, error) {
	var out []model.ProtocolAttendance
	var total int64

	db := GetDB(ctx, r.db)
	if err := db.Model(&model.ProtocolAttendance{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.
		Preload("CreatedBy").
		Order("occurred_at desc").
		Offset(offset).Limit(limit).
		Find(&out).Error; err != nil {
		return nil, 0, err
	}

	return out, total, nil
}

func (r *protocolRepository) CreateInteraction(ctx context.Context, i *model.Interaction) error {
	return GetDB(ctx, r.db).Create(i).Error
}

// Interactions returns the attendance's log, oldest first.
func (r *protocolRepository) Interactions(ctx context.Context, attendanceID uint) ([]model.Interaction, error) {
	var out []model.Interaction
	if err := GetDB(ctx, r.db).
		Preload("User").
		Where("attendance_id = ?", attendanceID).
		Order("created_at asc").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
