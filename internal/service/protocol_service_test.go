package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"sistramite/internal/model"
	"sistramite/internal/repository"
	"sistramite/pkg/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newProtocolService(db *gorm.DB) ProtocolService {
	return NewProtocolService(
		repository.NewProtocolRepository(db),
		repository.NewAuditRepository(db),
		repository.NewTransactionManager(db),
		nil,
	)
}

func attendanceReq(requester string) CreateAttendanceRequest {
	return CreateAttendanceRequest{
		OccurredAt:    "2026-03-10",
		RequesterName: requester,
		RequesterKind: "Cidadão",
		OriginRegion:  "Taguatinga (RA III)",
		Demand:        "Tapa-buraco",
		Subject:       "Buraco na via principal",
	}
}

func TestCreateAttendanceAssignsSequentialProtocolNumber(t *testing.T) {
	db := newTestDB(t)
	svc := newProtocolService(db)
	user := seedUser(t, db, "maria", false)
	year := time.Now().Year()

	first, err := svc.Create(context.Background(), user.ID, attendanceReq("Ana"))
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("CR-0001/%d", year), first.ProtocolNumber)

	second, err := svc.Create(context.Background(), user.ID, attendanceReq("Bruno"))
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("CR-0002/%d", year), second.ProtocolNumber)

	// The number is persisted, not just set on the returned struct.
	var stored model.ProtocolAttendance
	require.NoError(t, db.First(&stored, "id = ?", second.ID).Error)
	assert.Equal(t, second.ProtocolNumber, stored.ProtocolNumber)
}

func TestCreateAttendanceRespectsPrefixOverride(t *testing.T) {
	db := newTestDB(t)
	svc := newProtocolService(db)
	user := seedUser(t, db, "maria", false)
	t.Setenv("PROTOCOL_PREFIX", "OV")

	a, err := svc.Create(context.Background(), user.ID, attendanceReq("Ana"))
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("OV-0001/%d", time.Now().Year()), a.ProtocolNumber)
}

func TestGetByProtocolNumber(t *testing.T) {
	db := newTestDB(t)
	svc := newProtocolService(db)
	user := seedUser(t, db, "maria", false)

	created, err := svc.Create(context.Background(), user.ID, attendanceReq("Ana"))
	require.NoError(t, err)

	detail, err := svc.GetByProtocolNumber(context.Background(), " "+created.ProtocolNumber+" ")
	require.NoError(t, err)
	assert.Equal(t, "Ana", detail.Attendance.RequesterName)

	_, err = svc.GetByProtocolNumber(context.Background(), "CR-9999/2020")
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestAddInteraction(t *testing.T) {
	db := newTestDB(t)
	svc := newProtocolService(db)
	user := seedUser(t, db, "maria", false)

	created, err := svc.Create(context.Background(), user.ID, attendanceReq("Ana"))
	require.NoError(t, err)

	_, err = svc.AddInteraction(context.Background(), user.ID, created.ID, AddInteractionRequest{Response: "   "})
	require.ErrorIs(t, err, apperr.ErrValidation)

	_, err = svc.AddInteraction(context.Background(), user.ID, created.ID, AddInteractionRequest{
		Response: "Equipe acionada para vistoria.",
	})
	require.NoError(t, err)
	_, err = svc.AddInteraction(context.Background(), user.ID, created.ID, AddInteractionRequest{
		Response: "Serviço executado.",
	})
	require.NoError(t, err)

	detail, err := svc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	require.Len(t, detail.Interactions, 2)
	assert.Equal(t, "Equipe acionada para vistoria.", detail.Interactions[0].Response)

	_, err = svc.AddInteraction(context.Background(), user.ID, 4242, AddInteractionRequest{Response: "x"})
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestListAttendancesNewestFirst(t *testing.T) {
	db := newTestDB(t)
	svc := newProtocolService(db)
	user := seedUser(t, db, "maria", false)

	older := attendanceReq("Ana")
	older.OccurredAt = "2026-03-01"
	_, err := svc.Create(context.Background(), user.ID, older)
	require.NoError(t, err)

	newer := attendanceReq("Bruno")
	newer.OccurredAt = "2026-03-20"
	_, err = svc.Create(context.Background(), user.ID, newer)
	require.NoError(t, err)

	items, total, err := svc.List(context.Background(), 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, items, 2)
	assert.Equal(t, "Bruno", items[0].RequesterName)
}
