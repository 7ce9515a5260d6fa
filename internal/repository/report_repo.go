package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Status filter modes. Historical matches every ledger row that ever carried
// the status; Current matches rows whose process is in the status right now.
const (
	StatusModeHistorical = "historical"
	StatusModeCurrent    = "current"
)

// ReportFilter carries the optional criteria of the advanced report. Empty
// fields leave their dimension unrestricted.
type ReportFilter struct {
	Status      string
	StatusMode  string // StatusModeHistorical (default) or StatusModeCurrent
	Region      string
	Directorate string // display name ("DC"), translated to the stored full name
	Department  string
	Demand      string
	Start       *time.Time // bounds on the movement date
	End         *time.Time
}

// ReportTuple is one row of the movement ⋈ user ⋈ entry ⋈ process ⋈ demand
// ⋈ department ⋈ directorate join.
type ReportTuple struct {
	MovementID     string
	Date           time.Time
	ReceivedAt     time.Time
	ProcessNumber  string
	Region         string
	Status         string
	CurrentStatus  string
	Directorate    string
	Department     string
	Demand         string
	Responsible    string
	Note           string
}

// ReportRepository assembles the advanced-report query.
type ReportRepository interface {
	Find(ctx context.Context, f ReportFilter) ([]ReportTuple, error)
}

type reportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{db: db}
}

// Find compiles the filter into a single query. Every criterion is optional
// and AND-combined; results are ordered by movement date descending with the
// movement id as the deterministic tie-break.
func (r *reportRepository) Find(ctx context.Context, f ReportFilter) ([]ReportTuple, error) {
	q := GetDB(ctx, r.db).Table("movements").
		Select(`movements.id as movement_id,
			movements.date as date,
			process_entries.received_at as received_at,
			processes.number as process_number,
			process_entries.origin_region as region,
			movements.new_status as status,
			processes.current_status as current_status,
			directorates.display_name as directorate,
			departments.name as department,
			demands.description as demand,
			users.username as responsible,
			movements.note as note`).
		Joins("JOIN users ON users.id = movements.user_id").
		Joins("JOIN process_entries ON process_entries.id = movements.entry_id").
		Joins("JOIN processes ON processes.id = process_entries.process_id").
		Joins("JOIN demands ON demands.id = process_entries.demand_id").
		Joins("JOIN departments ON departments.id = demands.department_id").
		Joins("JOIN directorates ON directorates.id = departments.directorate_id")

	if f.Directorate != "" {
		q = q.Where("directorates.display_name = ?", f.Directorate)
	}
	if f.Department != "" {
		q = q.Where("departments.name = ?", f.Department)
	}
	if f.Demand != "" {
		q = q.Where("demands.description = ?", f.Demand)
	}
	if f.Region != "" {
		q = q.Where("process_entries.origin_region = ?", f.Region)
	}
	if f.Status != "" {
		switch f.StatusMode {
		case StatusModeCurrent:
			q = q.Where("processes.current_status = ?", f.Status)
		case StatusModeHistorical, "":
			q = q.Where("movements.new_status = ?", f.Status)
		default:
			return nil, fmt.Errorf("unknown status mode %q", f.StatusMode)
		}
	}
	if f.Start != nil {
		q = q.Where("movements.date >= ?", *f.Start)
	}
	if f.End != nil {
		q = q.Where("movements.date <= ?", *f.End)
	}

	var tuples []ReportTuple
	if err := q.Order("movements.date DESC, movements.id DESC").Scan(&tuples).Error; err != nil {
		return nil, fmt.Errorf("failed to run report query: %w", err)
	}
	return tuples, nil
}
