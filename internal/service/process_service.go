package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"sistramite/internal/model"
	"sistramite/internal/repository"
	"sistramite/pkg/apperr"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

// initialMovementNote is the ledger note of the movement written when a
// process is registered.
const initialMovementNote = "Initial process registration."

// --- DTOs ---

type CreateProcessRequest struct {
	Number                 string `json:"number" binding:"required"`
	InitialStatus          string `json:"initial_status" binding:"required"`
	Notes                  string `json:"notes"`
	DestinationDirectorate string `json:"destination_directorate"`
	RegionCreatedAt        string `json:"region_created_at" binding:"required"` // YYYY-MM-DD
	ReceivedAt             string `json:"received_at" binding:"required"`
	DocumentDate           string `json:"document_date" binding:"required"`
	InitialChannel         string `json:"initial_channel" binding:"required"`
	OriginRegion           string `json:"origin_region" binding:"required"`
	DemandTypeID           string `json:"demand_type_id" binding:"required"`
	DemandID               string `json:"demand_id" binding:"required"`
	ResponsibleUserID      string `json:"responsible_user_id" binding:"required"`
	HasInspection          bool   `json:"has_inspection"`
	LetterSigned           bool   `json:"letter_signed"`
}

type RecordMovementRequest struct {
	NewStatus string `json:"new_status" binding:"required"`
	Note      string `json:"note"`
	Date      string `json:"date" binding:"required"` // YYYY-MM-DD
	UserID    string `json:"user_id" binding:"required"`
}

type ConsultRequest struct {
	Number       string
	Status       string
	Region       string
	Directorate  string
	DemandTypeID string
	DemandID     string
	Start        string
	End          string
}

// ProcessListItem is one row of the unified consultation.
type ProcessListItem struct {
	ID                     uuid.UUID `json:"id"`
	Number                 string    `json:"number"`
	CurrentStatus          string    `json:"current_status"`
	DestinationDirectorate string    `json:"destination_directorate"`
	OriginRegion           string    `json:"origin_region"`
	DemandType             string    `json:"demand_type"`
	Demand                 string    `json:"demand"`
	LastMovementAt         string    `json:"last_movement_at"`
}

// ProcessDetail is the full dossier of one process.
type ProcessDetail struct {
	Process   model.Process      `json:"process"`
	Entry     model.ProcessEntry `json:"entry"`
	Movements []model.Movement   `json:"movements"`
}

// ProcessService owns the process lifecycle: atomic registration (process +
// entry + first ledger row), the status ledger, and the unified consultation.
type ProcessService interface {
	CreateProcess(ctx context.Context, actor uuid.UUID, req CreateProcessRequest) (*model.Process, error)
	RecordMovement(ctx context.Context, processID uuid.UUID, req RecordMovementRequest) (*model.Movement, error)
	DeriveCurrentStatus(ctx context.Context, entryID uuid.UUID) (string, error)
	GetDetail(ctx context.Context, processID uuid.UUID) (*ProcessDetail, error)
	Exists(ctx context.Context, number string) (*model.Process, error)
	Consult(ctx context.Context, req ConsultRequest) ([]ProcessListItem, []string, error)
}

type processService struct {
	repo  repository.ProcessRepository
	refs  repository.ReferenceRepository
	audit repository.AuditRepository
	tx    repository.TransactionManager
	hub   interface{ Publish(event string, payload interface{}) } // optional websocket hub
	log   *zap.Logger
}

func NewProcessService(
	repo repository.ProcessRepository,
	refs repository.ReferenceRepository,
	audit repository.AuditRepository,
	tx repository.TransactionManager,
	hub interface{ Publish(event string, payload interface{}) },
	log *zap.Logger,
) ProcessService {
	return &processService{repo: repo, refs: refs, audit: audit, tx: tx, hub: hub, log: log}
}

// NormalizeNumber strips spaces and zero-width characters from an external
// process number before it is stored or compared.
func NormalizeNumber(number string) string {
	number = strings.TrimSpace(number)
	number = strings.ReplaceAll(number, " ", "")
	number = strings.ReplaceAll(number, "\u200b", "")
	return number
}

func parseDate(value, field string) (time.Time, error) {
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, apperr.Validation("invalid %s %q, expected YYYY-MM-DD", field, value)
	}
	return t, nil
}

// resolveDirectorate translates a directorate display name ("DC") to the
// stored full name. Full names and empty values pass through untouched.
func (s *processService) resolveDirectorate(ctx context.Context, value string) string {
	if value == "" {
		return value
	}
	if d, err := s.refs.DirectorateByDisplayName(ctx, value); err == nil {
		return d.FullName
	}
	return value
}

// CreateProcess registers a process together with its intake entry and the
// first ledger movement as one atomic unit. A duplicate external number
// fails with Conflict and leaves no orphan entry or movement behind.
func (s *processService) CreateProcess(ctx context.Context, actor uuid.UUID, req CreateProcessRequest) (*model.Process, error) {
	number := NormalizeNumber(req.Number)
	if number == "" {
		return nil, apperr.Validation("process number is required")
	}

	if _, err := s.repo.GetByNumber(ctx, number); err == nil {
		return nil, apperr.Conflict("process %s is already registered", number)
	}

	if _, err := s.refs.StatusByDescription(ctx, req.InitialStatus); err != nil {
		return nil, apperr.Validation("unknown status %q", req.InitialStatus)
	}

	regionCreatedAt, err := parseDate(req.RegionCreatedAt, "region creation date")
	if err != nil {
		return nil, err
	}
	receivedAt, err := parseDate(req.ReceivedAt, "arrival date")
	if err != nil {
		return nil, err
	}
	documentDate, err := parseDate(req.DocumentDate, "document date")
	if err != nil {
		return nil, err
	}

	demandTypeID, err := uuid.Parse(req.DemandTypeID)
	if err != nil {
		return nil, apperr.Validation("invalid demand type id")
	}
	demandID, err := uuid.Parse(req.DemandID)
	if err != nil {
		return nil, apperr.Validation("invalid demand id")
	}
	responsibleID, err := uuid.Parse(req.ResponsibleUserID)
	if err != nil {
		return nil, apperr.Validation("invalid responsible user id")
	}

	process := &model.Process{
		Number:                 number,
		CurrentStatus:          req.InitialStatus,
		Notes:                  req.Notes,
		DestinationDirectorate: s.resolveDirectorate(ctx, req.DestinationDirectorate),
	}

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.Create(txCtx, process); err != nil {
			// The pre-insert lookup is racy; the unique index has the last word.
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperr.Conflict("process %s is already registered", number)
			}
			return err
		}

		entry := &model.ProcessEntry{
			ProcessID:         process.ID,
			RegionCreatedAt:   regionCreatedAt,
			ReceivedAt:        receivedAt,
			DocumentDate:      documentDate,
			InitialChannel:    req.InitialChannel,
			OriginRegion:      req.OriginRegion,
			DemandTypeID:      demandTypeID,
			DemandID:          demandID,
			ResponsibleUserID: responsibleID,
			InitialStatus:     req.InitialStatus,
			HasInspection:     req.HasInspection,
			LetterSigned:      req.LetterSigned,
		}
		if err := s.repo.CreateEntry(txCtx, entry); err != nil {
			return err
		}

		first := &model.Movement{
			EntryID:   entry.ID,
			UserID:    responsibleID,
			NewStatus: req.InitialStatus,
			Note:      initialMovementNote,
			Date:      documentDate,
		}
		if err := s.repo.CreateMovement(txCtx, first); err != nil {
			return err
		}

		details, _ := json.Marshal(map[string]interface{}{"number": number, "status": req.InitialStatus})
		return s.audit.Log(txCtx, &model.AuditLog{
			UserID:     &actor,
			Action:     model.ActionCreateProcess,
			EntityID:   process.ID.String(),
			EntityName: number,
			Details:    string(details),
		})
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("process registered",
		zap.String("number", process.Number),
		zap.String("status", process.CurrentStatus))

	if s.hub != nil {
		s.hub.Publish("process_created", map[string]interface{}{
			"number": process.Number,
			"status": process.CurrentStatus,
		})
	}

	return process, nil
}

// RecordMovement appends one ledger row and overwrites the parent process's
// mirrored status in the same transaction. The process row is locked for the
// duration so two concurrent writers cannot interleave ledger and mirror.
func (s *processService) RecordMovement(ctx context.Context, processID uuid.UUID, req RecordMovementRequest) (*model.Movement, error) {
	date, err := parseDate(req.Date, "movement date")
	if err != nil {
		return nil, err
	}
	actingUser, err := uuid.Parse(req.UserID)
	if err != nil {
		return nil, apperr.Validation("invalid user id")
	}
	if _, err := s.refs.StatusByDescription(ctx, req.NewStatus); err != nil {
		return nil, apperr.Validation("unknown status %q", req.NewStatus)
	}

	var movement *model.Movement
	var number string
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		process, err := s.repo.GetByIDForUpdate(txCtx, processID)
		if err != nil {
			return apperr.NotFound("process not found")
		}
		number = process.Number

		entry, err := s.repo.FirstEntry(txCtx, process.ID)
		if err != nil {
			return apperr.NotFound("process %s has no intake entry", process.Number)
		}

		movement = &model.Movement{
			EntryID:   entry.ID,
			UserID:    actingUser,
			NewStatus: req.NewStatus,
			Note:      req.Note,
			Date:      date,
		}
		if err := s.repo.CreateMovement(txCtx, movement); err != nil {
			return err
		}

		if err := s.repo.UpdateCurrentStatus(txCtx, process.ID, req.NewStatus); err != nil {
			return err
		}

		details, _ := json.Marshal(map[string]interface{}{"status": req.NewStatus, "date": req.Date})
		return s.audit.Log(txCtx, &model.AuditLog{
			UserID:     &actingUser,
			Action:     model.ActionRecordMovement,
			EntityID:   process.ID.String(),
			EntityName: process.Number,
			Details:    string(details),
		})
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("movement recorded",
		zap.String("number", number),
		zap.String("status", req.NewStatus))

	// Broadcast only after the transaction committed.
	if s.hub != nil {
		s.hub.Publish("process_movement", map[string]interface{}{
			"number": number,
			"status": req.NewStatus,
		})
	}

	return movement, nil
}

// DeriveCurrentStatus is the read-only projection over the ledger: the
// status of the movement with the greatest (date, id), falling back to the
// entry's initial status when no movement exists yet. Used as the drift
// oracle for the mirrored Process.CurrentStatus.
func (s *processService) DeriveCurrentStatus(ctx context.Context, entryID uuid.UUID) (string, error) {
	entry, err := s.repo.EntryByID(ctx, entryID)
	if err != nil {
		return "", apperr.NotFound("entry not found")
	}

	latest, err := s.repo.LatestMovement(ctx, entryID)
	if err != nil {
		return "", err
	}
	if latest == nil {
		return entry.InitialStatus, nil
	}
	return latest.NewStatus, nil
}

func (s *processService) GetDetail(ctx context.Context, processID uuid.UUID) (*ProcessDetail, error) {
	process, err := s.repo.GetByID(ctx, processID)
	if err != nil {
		return nil, apperr.NotFound("process not found")
	}
	entry, err := s.repo.FirstEntry(ctx, process.ID)
	if err != nil {
		return nil, apperr.NotFound("process %s has no intake entry", process.Number)
	}
	movements, err := s.repo.Movements(ctx, entry.ID)
	if err != nil {
		return nil, err
	}
	return &ProcessDetail{Process: *process, Entry: *entry, Movements: movements}, nil
}

// Exists probes for a process by its (normalized) external number.
func (s *processService) Exists(ctx context.Context, number string) (*model.Process, error) {
	p, err := s.repo.GetByNumber(ctx, NormalizeNumber(number))
	if err != nil {
		return nil, apperr.NotFound("process not registered")
	}
	return p, nil
}

// Consult runs the unified listing. Malformed date filters do not fail the
// request: the dimension is skipped and a warning is returned alongside the
// results.
func (s *processService) Consult(ctx context.Context, req ConsultRequest) ([]ProcessListItem, []string, error) {
	filter := repository.ConsultFilter{
		NumberContains: NormalizeNumber(req.Number),
		Status:         req.Status,
		Region:         req.Region,
		Directorate:    s.resolveDirectorate(ctx, req.Directorate),
		DemandTypeID:   req.DemandTypeID,
		DemandID:       req.DemandID,
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
			filter.End = &t
		} else {
			s.log.Warn("skipping malformed end date filter", zap.String("value", req.End))
			warnings = append(warnings, "invalid end date ignored, expected YYYY-MM-DD")
		}
	}

	processes, err := s.repo.Consult(ctx, filter)
	if err != nil {
		return nil, nil, err
	}

	items := make([]ProcessListItem, 0, len(processes))
	for i := range processes {
		p := processes[i]
		item := ProcessListItem{
			ID:                     p.ID,
			Number:                 p.Number,
			CurrentStatus:          p.CurrentStatus,
			DestinationDirectorate: p.DestinationDirectorate,
		}

		entry, err := s.repo.FirstEntry(ctx, p.ID)
		if err == nil {
			item.OriginRegion = entry.OriginRegion
			item.DemandType = entry.DemandType.Description
			item.Demand = entry.Demand.Description

			last, err := s.repo.LatestMovement(ctx, entry.ID)
			if err == nil && last != nil {
				item.LastMovementAt = last.Date.Format(dateLayout)
			} else {
				item.LastMovementAt = entry.DocumentDate.Format(dateLayout)
			}
		}

		items = append(items, item)
	}

	if len(items) == 0 {
		warnings = append(warnings, "no process matches the applied filters")
	}

	return items, warnings, nil
}
