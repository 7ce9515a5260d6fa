package repository

import (
	"context"
	"errors"
	"time"

	"sistramite/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ConsultFilter carries the optional criteria of the unified consultation.
// Zero values mean "no restriction" on that dimension.
type ConsultFilter struct {
	NumberContains string
	Status         string
	Region         string
	Directorate    string
	DemandTypeID   string
	DemandID       string
	Start          *time.Time // bounds on the entry's ReceivedAt
	End            *time.Time
}

// ProcessRepository defines data access for processes, entries and movements.
type ProcessRepository interface {
	Create(ctx context.Context, p *model.Process) error
	CreateEntry(ctx context.Context, e *model.ProcessEntry) error
	CreateMovement(ctx context.Context, m *model.Movement) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Process, error)
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Process, error)
	GetByNumber(ctx context.Context, number string) (*model.Process, error)
	FirstEntry(ctx context.Context, processID uuid.UUID) (*model.ProcessEntry, error)
	EntryByID(ctx context.Context, entryID uuid.UUID) (*model.ProcessEntry, error)
	LatestMovement(ctx context.Context, entryID uuid.UUID) (*model.Movement, error)
	Movements(ctx context.Context, entryID uuid.UUID) ([]model.Movement, error)
	UpdateCurrentStatus(ctx context.Context, processID uuid.UUID, status string) error
	Consult(ctx context.Context, f ConsultFilter) ([]model.Process, error)
	CountWhere(ctx context.Context, query string, args ...interface{}) (int64, error)
}

type processRepository struct {
	db *gorm.DB
}

func NewProcessRepository(db *gorm.DB) ProcessRepository {
	return &processRepository{db: db}
}

func (r *processRepository) Create(ctx context.Context, p *model.Process) error {
	return GetDB(ctx, r.db).Create(p).Error
}

func (r *processRepository) CreateEntry(ctx context.Context, e *model.ProcessEntry) error {
	return GetDB(ctx, r.db).Create(e).Error
}

func (r *processRepository) CreateMovement(ctx context.Context, m *model.Movement) error {
	return GetDB(ctx, r.db).Create(m).Error
}

func (r *processRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Process, error) {
	var p model.Process
	if err := GetDB(ctx, r.db).First(&p, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// GetByIDForUpdate locks the process row for the duration of the surrounding
// transaction, serializing concurrent movement writers on the same process.
// SQLite has no row locks, so the clause is only emitted on Postgres.
func (r *processRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Process, error) {
	db := GetDB(ctx, r.db)
	if db.Dialector.Name() == "postgres" {
		db = db.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var p model.Process
	if err := db.First(&p, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *processRepository) GetByNumber(ctx context.Context, number string) (*model.Process, error) {
	var p model.Process
	if err := GetDB(ctx, r.db).First(&p, "number = ?", number).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// FirstEntry returns the intake record. The application writes exactly one
// entry per process.
func (r *processRepository) FirstEntry(ctx context.Context, processID uuid.UUID) (*model.ProcessEntry, error) {
	var e model.ProcessEntry
	if err := GetDB(ctx, r.db).
		Preload("DemandType").
		Preload("Demand").
		Preload("Responsible").
		Order("received_at asc").
		First(&e, "process_id = ?", processID).Error; err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *processRepository) EntryByID(ctx context.Context, entryID uuid.UUID) (*model.ProcessEntry, error) {
	var e model.ProcessEntry
	if err := GetDB(ctx, r.db).First(&e, "id = ?", entryID).Error; err != nil {
		return nil, err
	}
	return &e, nil
}

// LatestMovement returns the entry's most recent ledger row, ordered by
// movement date with the id as the deterministic tie-break. Returns
// (nil, nil) when the entry has no movements yet.
func (r *processRepository) LatestMovement(ctx context.Context, entryID uuid.UUID) (*model.Movement, error) {
	var m model.Movement
	err := GetDB(ctx, r.db).
		Order("date desc, id desc").
		First(&m, "entry_id = ?", entryID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Movements returns the full history of an entry, oldest first.
func (r *processRepository) Movements(ctx context.Context, entryID uuid.UUID) ([]model.Movement, error) {
	var ms []model.Movement
	if err := GetDB(ctx, r.db).
		Preload("User").
		Where("entry_id = ?", entryID).
		Order("date asc, id asc").
		Find(&ms).Error; err != nil {
		return nil, err
	}
	return ms, nil
}

func (r *processRepository) UpdateCurrentStatus(ctx context.Context, processID uuid.UUID, status string) error {
	return GetDB(ctx, r.db).
		Model(&model.Process{}).
		Where("id = ?", processID).
		Update("current_status", status).Error
}

// Consult joins processes to their entries and applies each present filter,
// newest process first. Absent criteria leave the dimension unrestricted.
func (r *processRepository) Consult(ctx context.Context, f ConsultFilter) ([]model.Process, error) {
	q := GetDB(ctx, r.db).
		Model(&model.Process{}).
		Joins("JOIN process_entries ON process_entries.process_id = processes.id")

	if f.NumberContains != "" {
		q = q.Where("processes.number LIKE ?", "%"+f.NumberContains+"%")
	}
	if f.Status != "" {
		q = q.Where("processes.current_status = ?", f.Status)
	}
	if f.Region != "" {
		q = q.Where("process_entries.origin_region = ?", f.Region)
	}
	if f.Directorate != "" {
		q = q.Where("processes.destination_directorate = ?", f.Directorate)
	}
	if f.DemandTypeID != "" {
		q = q.Where("process_entries.demand_type_id = ?", f.DemandTypeID)
	}
	if f.DemandID != "" {
		q = q.Where("process_entries.demand_id = ?", f.DemandID)
	}
	if f.Start != nil {
		q = q.Where("process_entries.received_at >= ?", *f.Start)
	}
	if f.End != nil {
		q = q.Where("process_entries.received_at <= ?", *f.End)
	}

	var out []model.Process
	if err := q.Order("processes.created_at desc, processes.id desc").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *processRepository) CountWhere(ctx context.Context, query string, args ...interface{}) (int64, error) {
	var n int64
	db := GetDB(ctx, r.db).Model(&model.Process{})
	if query != "" {
		db = db.Where(query, args...)
	}
	if err := db.Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}
