package service

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"sistramite/internal/model"
	"sistramite/internal/repository"
	"sistramite/pkg/apperr"

	"github.com/google/uuid"
)

const defaultProtocolPrefix = "CR"

// CreateAttendanceRequest carries the intake form of a citizen-service
// attendance.
type CreateAttendanceRequest struct {
	OccurredAt     string `json:"occurred_at" binding:"required"` // YYYY-MM-DD
	SEINumber      string `json:"sei_number"`
	RequestNumber  string `json:"request_number"`
	RequesterName  string `json:"requester_name" binding:"required"`
	RequesterKind  string `json:"requester_kind"`
	Phone          string `json:"phone"`
	Email          string `json:"email"`
	OriginRegion   string `json:"origin_region"`
	Demand         string `json:"demand"`
	Subject        string `json:"subject" binding:"required"`
	InitialRouting string `json:"initial_routing"`
}

type AddInteractionRequest struct {
	Response string `json:"response" binding:"required"`
}

// AttendanceDetail is an attendance together with its interaction log.
type AttendanceDetail struct {
	Attendance   model.ProtocolAttendance `json:"attendance"`
	Interactions []model.Interaction      `json:"interactions"`
}

// ProtocolService owns citizen-service attendances: creation with the
// sequential protocol number, the interaction log, listing and lookup.
type ProtocolService interface {
	Create(ctx context.Context, actor uuid.UUID, req CreateAttendanceRequest) (*model.ProtocolAttendance, error)
	Get(ctx context.Context, id uint) (*AttendanceDetail, error)
	GetByProtocolNumber(ctx context.Context, number string) (*AttendanceDetail, error)
	List(ctx context.Context, page, limit int) ([]model.ProtocolAttendance, int64, error)
	AddInteraction(ctx context.Context, actor uuid.UUID, attendanceID uint, req AddInteractionRequest) (*model.Interaction, error)
}

type protocolService struct {
	repo  repository.ProtocolRepository
	audit repository.AuditRepository
	tx    repository.TransactionManager
	hub   interface{ Publish(event string, payload interface{}) }
}

func NewProtocolService(
	repo repository.ProtocolRepository,
	audit repository.AuditRepository,
	tx repository.TransactionManager,
	hub interface{ Publish(event string, payload interface{}) },
) ProtocolService {
	return &protocolService{repo: repo, audit: audit, tx: tx, hub: hub}
}

func protocolPrefix() string {
	if p := strings.TrimSpace(os.Getenv("PROTOCOL_PREFIX")); p != "" {
		return p
	}
	return defaultProtocolPrefix
}

// FormatProtocolNumber renders the human-readable number, e.g. "CR-0042/2026".
func FormatProtocolNumber(prefix string, id uint, year int) string {
	return fmt.Sprintf("%s-%04d/%d", prefix, id, year)
}

// Create inserts the attendance and assigns its protocol number in the same
// transaction. The number embeds the autoincrement id, so the insert has to
// happen first.
func (s *protocolService) Create(ctx context.Context, actor uuid.UUID, req CreateAttendanceRequest) (*model.ProtocolAttendance, error) {
	occurredAt, err := parseDate(req.OccurredAt, "attendance date")
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.RequesterName) == "" {
		return nil, apperr.Validation("requester name is required")
	}

	attendance := &model.ProtocolAttendance{
		OccurredAt:     occurredAt,
		SEINumber:      NormalizeNumber(req.SEINumber),
		RequestNumber:  req.RequestNumber,
		RequesterName:  strings.TrimSpace(req.RequesterName),
		RequesterKind:  req.RequesterKind,
		Phone:          req.Phone,
		Email:          req.Email,
		OriginRegion:   req.OriginRegion,
		Demand:         req.Demand,
		Subject:        req.Subject,
		InitialRouting: req.InitialRouting,
		CreatedByID:    actor,
	}

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.Create(txCtx, attendance); err != nil {
			return err
		}

		number := FormatProtocolNumber(protocolPrefix(), attendance.ID, time.Now().Year())
		if err := s.repo.SetProtocolNumber(txCtx, attendance.ID, number); err != nil {
			return err
		}
		attendance.ProtocolNumber = number

		details, _ := json.Marshal(map[string]interface{}{
			"protocol":  number,
			"requester": attendance.RequesterName,
		})
		return s.audit.Log(txCtx, &model.AuditLog{
			UserID:     &actor,
			Action:     model.ActionCreateProtocol,
			EntityID:   number,
			EntityName: attendance.RequesterName,
			Details:    string(details),
		})
	})
	if err != nil {
		return nil, err
	}

	if s.hub != nil {
		s.hub.Publish("attendance_created", map[string]interface{}{
			"protocol": attendance.ProtocolNumber,
		})
	}

	return attendance, nil
}

func (s *protocolService) Get(ctx context.Context, id uint) (*AttendanceDetail, error) {
	attendance, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.NotFound("attendance not found")
	}
	return s.withInteractions(ctx, attendance)
}

func (s *protocolService) GetByProtocolNumber(ctx context.Context, number string) (*AttendanceDetail, error) {
	attendance, err := s.repo.GetByProtocolNumber(ctx, strings.TrimSpace(number))
	if err != nil {
		return nil, apperr.NotFound("protocol %s not found", number)
	}
	return s.withInteractions(ctx, attendance)
}

func (s *protocolService) withInteractions(ctx context.Context, a *model.ProtocolAttendance) (*AttendanceDetail, error) {
	interactions, err := s.repo.Interactions(ctx, a.ID)
	if err != nil {
		return nil, err
	}
	return &AttendanceDetail{Attendance: *a, Interactions: interactions}, nil
}

func (s *protocolService) List(ctx context.Context, page, limit int) ([]model.ProtocolAttendance, int64, error) {
	return s.repo.List(ctx, page, limit)
}

// AddInteraction appends one response to the attendance's log.
func (s *protocolService) AddInteraction(ctx context.Context, actor uuid.UUID, attendanceID uint, req AddInteractionRequest) (*model.Interaction, error) {
	if strings.TrimSpace(req.Response) == "" {
		return nil, apperr.Validation("response must not be empty")
	}

	attendance, err := s.repo.GetByID(ctx, attendanceID)
	if err != nil {
		return nil, apperr.NotFound("attendance not found")
	}

	interaction := &model.Interaction{
		AttendanceID: attendance.ID,
		Response:     strings.TrimSpace(req.Response),
		UserID:       actor,
	}

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.CreateInteraction(txCtx, interaction); err != nil {
			return err
		}
		return s.audit.Log(txCtx, &model.AuditLog{
			UserID:     &actor,
			Action:     model.ActionAddInteraction,
			EntityID:   attendance.ProtocolNumber,
			EntityName: attendance.RequesterName,
		})
	})
	if err != nil {
		return nil, err
	}

	return interaction, nil
}
