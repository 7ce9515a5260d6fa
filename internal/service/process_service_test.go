package service

import (
	"context"
	"testing"

	"sistramite/internal/model"
	"sistramite/internal/repository"
	"sistramite/pkg/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func TestNormalizeNumber(t *testing.T) {
	assert.Equal(t, "00112-00012345/2026-11", NormalizeNumber("  00112-00012345/2026-11  "))
	assert.Equal(t, "00112-00012345/2026-11", NormalizeNumber("00112 - 00012345 / 2026 - 11"))
	assert.Equal(t, "00112", NormalizeNumber("0​0112"))
}

func TestCreateProcessWritesEntryAndFirstMovement(t *testing.T) {
	db := newTestDB(t)
	svc := newProcessService(db)
	user := seedUser(t, db, "maria", false)

	p := createProcess(t, db, svc, "00112-00012345/2026-11", user)
	assert.Equal(t, "Enviado à Diretoria das Cidades", p.CurrentStatus)

	var entries []model.ProcessEntry
	require.NoError(t, db.Find(&entries, "process_id = ?", p.ID).Error)
	require.Len(t, entries, 1)

	var movements []model.Movement
	require.NoError(t, db.Find(&movements, "entry_id = ?", entries[0].ID).Error)
	require.Len(t, movements, 1)
	assert.Equal(t, "Enviado à Diretoria das Cidades", movements[0].NewStatus)

	var audits int64
	require.NoError(t, db.Model(&model.AuditLog{}).
		Where("action = ?", model.ActionCreateProcess).Count(&audits).Error)
	assert.EqualValues(t, 1, audits)
}

func TestCreateProcessDuplicateLeavesNoOrphans(t *testing.T) {
	db := newTestDB(t)
	svc := newProcessService(db)
	user := seedUser(t, db, "maria", false)

	createProcess(t, db, svc, "00112-00012345/2026-11", user)

	// Same number with different spacing is still a duplicate.
	_, err := svc.CreateProcess(context.Background(), user.ID,
		validProcessRequest(t, db, "00112-00012345/2026-11 ", user))
	require.ErrorIs(t, err, apperr.ErrConflict)

	var processes, entries, movements int64
	require.NoError(t, db.Model(&model.Process{}).Count(&processes).Error)
	require.NoError(t, db.Model(&model.ProcessEntry{}).Count(&entries).Error)
	require.NoError(t, db.Model(&model.Movement{}).Count(&movements).Error)
	assert.EqualValues(t, 1, processes)
	assert.EqualValues(t, 1, entries)
	assert.EqualValues(t, 1, movements)
}

func TestCreateProcessRejectsUnknownStatus(t *testing.T) {
	db := newTestDB(t)
	svc := newProcessService(db)
	user := seedUser(t, db, "maria", false)

	req := validProcessRequest(t, db, "11111-00012345/2026-00", user)
	req.InitialStatus = "Status inexistente"
	_, err := svc.CreateProcess(context.Background(), user.ID, req)
	require.ErrorIs(t, err, apperr.ErrValidation)
}

func TestCreateProcessRejectsMalformedDate(t *testing.T) {
	db := newTestDB(t)
	svc := newProcessService(db)
	user := seedUser(t, db, "maria", false)

	req := validProcessRequest(t, db, "11111-00012345/2026-00", user)
	req.ReceivedAt = "15/01/2026"
	_, err := svc.CreateProcess(context.Background(), user.ID, req)
	require.ErrorIs(t, err, apperr.ErrValidation)
}

func TestRecordMovementKeepsMirrorInSync(t *testing.T) {
	db := newTestDB(t)
	svc := newProcessService(db)
	user := seedUser(t, db, "maria", false)
	p := createProcess(t, db, svc, "00112-00012345/2026-11", user)

	steps := []struct {
		status string
		date   string
	}{
		{"Enviado à Diretoria de Obras", "2026-02-01"},
		{"Encerrado pela RA de origem", "2026-02-20"},
		{"Atendido", "2026-03-05"},
	}
	for _, step := range steps {
		_, err := svc.RecordMovement(context.Background(), p.ID, RecordMovementRequest{
			NewStatus: step.status,
			Date:      step.date,
			UserID:    user.ID.String(),
		})
		require.NoError(t, err)

		var current model.Process
		require.NoError(t, db.First(&current, "id = ?", p.ID).Error)
		assert.Equal(t, step.status, current.CurrentStatus, "mirror must match after %q", step.status)
	}

	var entry model.ProcessEntry
	require.NoError(t, db.First(&entry, "process_id = ?", p.ID).Error)

	derived, err := svc.DeriveCurrentStatus(context.Background(), entry.ID)
	require.NoError(t, err)
	assert.Equal(t, "Atendido", derived)

	var movements int64
	require.NoError(t, db.Model(&model.Movement{}).Where("entry_id = ?", entry.ID).Count(&movements).Error)
	assert.EqualValues(t, 4, movements, "initial movement plus three recorded")
}

func TestRecordMovementUnknownProcess(t *testing.T) {
	db := newTestDB(t)
	svc := newProcessService(db)
	user := seedUser(t, db, "maria", false)

	_, err := svc.RecordMovement(context.Background(), user.ID, RecordMovementRequest{
		NewStatus: "Atendido",
		Date:      "2026-02-01",
		UserID:    user.ID.String(),
	})
	require.ErrorIs(t, err, apperr.ErrNotFound)

	var movements int64
	require.NoError(t, db.Model(&model.Movement{}).Count(&movements).Error)
	assert.Zero(t, movements)
}

func TestRecordMovementRejectsUnknownStatus(t *testing.T) {
	db := newTestDB(t)
	svc := newProcessService(db)
	user := seedUser(t, db, "maria", false)
	p := createProcess(t, db, svc, "00112-00012345/2026-11", user)

	_, err := svc.RecordMovement(context.Background(), p.ID, RecordMovementRequest{
		NewStatus: "Status inexistente",
		Date:      "2026-02-01",
		UserID:    user.ID.String(),
	})
	require.ErrorIs(t, err, apperr.ErrValidation)
}

func TestDeriveCurrentStatusFallsBackToEntryStatus(t *testing.T) {
	db := newTestDB(t)
	svc := newProcessService(db)
	user := seedUser(t, db, "maria", false)
	p := createProcess(t, db, svc, "00112-00012345/2026-11", user)

	var entry model.ProcessEntry
	require.NoError(t, db.First(&entry, "process_id = ?", p.ID).Error)

	// Strip the ledger; the entry's initial status remains the truth.
	require.NoError(t, db.Delete(&model.Movement{}, "entry_id = ?", entry.ID).Error)

	derived, err := svc.DeriveCurrentStatus(context.Background(), entry.ID)
	require.NoError(t, err)
	assert.Equal(t, entry.InitialStatus, derived)
}

func TestExists(t *testing.T) {
	db := newTestDB(t)
	svc := newProcessService(db)
	user := seedUser(t, db, "maria", false)
	createProcess(t, db, svc, "00112-00012345/2026-11", user)

	found, err := svc.Exists(context.Background(), " 00112-00012345/2026-11 ")
	require.NoError(t, err)
	assert.Equal(t, "00112-00012345/2026-11", found.Number)

	_, err = svc.Exists(context.Background(), "99999-00000000/2026-00")
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestConsultFiltersAndWarnings(t *testing.T) {
	db := newTestDB(t)
	svc := newProcessService(db)
	user := seedUser(t, db, "maria", false)
	p := createProcess(t, db, svc, "00112-00012345/2026-11", user)

	other := validProcessRequest(t, db, "22222-00054321/2026-07", user)
	other.OriginRegion = "Gama (RA II)"
	_, err := svc.CreateProcess(context.Background(), user.ID, other)
	require.NoError(t, err)

	items, warnings, err := svc.Consult(context.Background(), ConsultRequest{})
	require.NoError(t, err)
	assert.Len(t, items, 2)
	assert.Empty(t, warnings)

	items, _, err = svc.Consult(context.Background(), ConsultRequest{Region: "Gama (RA II)"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "22222-00054321/2026-07", items[0].Number)

	items, _, err = svc.Consult(context.Background(), ConsultRequest{Number: "00112"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, p.Number, items[0].Number)

	// A malformed bound is skipped with a warning, not an error.
	items, warnings, err = svc.Consult(context.Background(), ConsultRequest{Start: "not-a-date"})
	require.NoError(t, err)
	assert.Len(t, items, 2)
	require.NotEmpty(t, warnings)
	assert.Contains(t, warnings[0], "invalid start date")

	_, warnings, err = svc.Consult(context.Background(), ConsultRequest{Region: "Varjão (RA XXIII)"})
	require.NoError(t, err)
	assert.Contains(t, warnings, "no process matches the applied filters")
}

func TestCreateProcessTranslatesDirectorateDisplayName(t *testing.T) {
	db := newTestDB(t)
	svc := newProcessService(db)
	user := seedUser(t, db, "maria", false)

	req := validProcessRequest(t, db, "04001-00001111/2026-55", user)
	req.DestinationDirectorate = "DC"
	p, err := svc.CreateProcess(context.Background(), user.ID, req)
	require.NoError(t, err)
	assert.Equal(t, "Diretoria das Cidades - DC", p.DestinationDirectorate)

	// The consultation filter accepts the short display name too.
	items, _, err := svc.Consult(context.Background(), ConsultRequest{Directorate: "DC"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, p.Number, items[0].Number)
}

// racingProcessRepo makes the duplicate pre-check miss, as when a concurrent
// writer inserts the same number between the lookup and the insert.
type racingProcessRepo struct {
	repository.ProcessRepository
}

func (racingProcessRepo) GetByNumber(ctx context.Context, number string) (*model.Process, error) {
	return nil, gorm.ErrRecordNotFound
}

func TestCreateProcessRaceStillYieldsConflict(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "maria", false)

	svc := NewProcessService(
		racingProcessRepo{repository.NewProcessRepository(db)},
		repository.NewReferenceRepository(db),
		repository.NewAuditRepository(db),
		repository.NewTransactionManager(db),
		nil,
		zap.NewNop(),
	)

	createProcess(t, db, svc, "00112-00012345/2026-11", user)

	// The lookup misses, the unique index fires, and the error is still Conflict.
	_, err := svc.CreateProcess(context.Background(), user.ID,
		validProcessRequest(t, db, "00112-00012345/2026-11", user))
	require.ErrorIs(t, err, apperr.ErrConflict)

	var processes int64
	require.NoError(t, db.Model(&model.Process{}).Count(&processes).Error)
	assert.EqualValues(t, 1, processes)
}
