package service

import (
	"context"
	"time"

	"sistramite/internal/model"
	"sistramite/internal/repository"
	"sistramite/pkg/apperr"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// reportDateLayout is the display format of movement timestamps in report
// rows and exports.
const reportDateLayout = "02/01/2006"

// ReportRequest carries the raw (string) filter values of the advanced
// report as received from the HTTP layer.
type ReportRequest struct {
	Status      string
	StatusMode  string // "historical" (default) or "current"
	Region      string
	Directorate string
	Department  string
	Demand      string
	Start       string // YYYY-MM-DD
	End         string
}

// ReportResult bundles the rows, the summary cards and any filter warnings
// of one report run.
type ReportResult struct {
	Rows     []model.ReportRow   `json:"rows"`
	Summary  model.ReportSummary `json:"summary"`
	Warnings []string            `json:"warnings,omitempty"`
}

// ReportService runs the advanced multi-filter report.
type ReportService interface {
	Run(ctx context.Context, req ReportRequest) (*ReportResult, error)
}

type reportService struct {
	repo repository.ReportRepository
	log  *zap.Logger
}

func NewReportService(repo repository.ReportRepository, log *zap.Logger) ReportService {
	return &reportService{repo: repo, log: log}
}

// Run validates the request, executes the report query and derives the
// summary cards. Malformed date filters are skipped with a warning instead
// of failing the whole report.
func (s *reportService) Run(ctx context.Context, req ReportRequest) (*ReportResult, error) {
	switch req.StatusMode {
	case "", repository.StatusModeHistorical, repository.StatusModeCurrent:
	default:
		return nil, apperr.Validation("unknown status mode %q", req.StatusMode)
	}

	filter := repository.ReportFilter{
		Status:      req.Status,
		StatusMode:  req.StatusMode,
		Region:      req.Region,
		Directorate: req.Directorate,
		Department:  req.Department,
		Demand:      req.Demand,
	}

	var warnings []string
	if req.Start != "" {
		if t, err := time.Parse(dateLayout, req.Start); err == nil {
			filter.Start = &t
		} else {
			s.log.Warn("skipping malformed start date filter", zap.String("value", req.Start))
			warnings = append(warnings, "invalid start date ignored, expected YYYY-MM-DD")
		}
	}
	if req.End != "" {
		if t, err := time.Parse(dateLayout, req.End); err == nil {
			// Include the whole end day.
			end := t.Add(24*time.Hour - time.Second)
			filter.End = &end
		} else {
			s.log.Warn("skipping malformed end date filter", zap.String("value", req.End))
			warnings = append(warnings, "invalid end date ignored, expected YYYY-MM-DD")
		}
	}

	tuples, err := s.repo.Find(ctx, filter)
	if err != nil {
		return nil, err
	}

	rows := make([]model.ReportRow, 0, len(tuples))
	regions := map[string]struct{}{}
	demands := map[string]struct{}{}
	totalDays := decimal.Zero

	for _, t := range tuples {
		rows = append(rows, model.ReportRow{
			Date:          t.Date.Format(reportDateLayout),
			ProcessNumber: t.ProcessNumber,
			Region:        t.Region,
			Status:        t.Status,
			Directorate:   t.Directorate,
			Department:    t.Department,
			Demand:        t.Demand,
			Responsible:   t.Responsible,
			Note:          t.Note,
		})
		regions[t.Region] = struct{}{}
		demands[t.Demand] = struct{}{}

		days := t.Date.Sub(t.ReceivedAt).Hours() / 24
		if days < 0 {
			days = 0
		}
		totalDays = totalDays.Add(decimal.NewFromFloat(days))
	}

	summary := model.ReportSummary{
		TotalRows:       len(rows),
		DistinctRegions: len(regions),
		DistinctDemands: len(demands),
		AverageDays:     "0.0",
	}
	if len(rows) > 0 {
		summary.AverageDays = totalDays.
			Div(decimal.NewFromInt(int64(len(rows)))).
			StringFixed(1)
	}

	if len(rows) == 0 {
		warnings = append(warnings, "no movement matches the applied filters")
	}

	return &ReportResult{Rows: rows, Summary: summary, Warnings: warnings}, nil
}
