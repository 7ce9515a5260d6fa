package repository

import (
	"context"
	"testing"
	"time"

	"sistramite/internal/database"
	"sistramite/internal/model"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func seedEntry(t *testing.T, db *gorm.DB) (*model.ProcessEntry, *model.User) {
	t.Helper()
	user := &model.User{Name: "Maria", Username: "maria", Email: "maria@novacap.df.gov.br", PasswordHash: "x", Approved: true}
	require.NoError(t, db.Create(user).Error)

	dt := &model.DemandType{Description: "Zeladoria"}
	require.NoError(t, db.Create(dt).Error)
	dir := &model.Directorate{FullName: "Diretoria das Cidades - DC", DisplayName: "DC"}
	require.NoError(t, db.Create(dir).Error)
	dep := &model.Department{Name: "Departamento de Conservação Urbana", DirectorateID: dir.ID}
	require.NoError(t, db.Create(dep).Error)
	demand := &model.Demand{Description: "Tapa-buraco", DepartmentID: dep.ID}
	require.NoError(t, db.Create(demand).Error)

	process := &model.Process{Number: "00112-00012345/2026-11", CurrentStatus: "Enviado à Diretoria das Cidades"}
	require.NoError(t, db.Create(process).Error)

	day := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	entry := &model.ProcessEntry{
		ProcessID:         process.ID,
		RegionCreatedAt:   day,
		ReceivedAt:        day,
		DocumentDate:      day,
		InitialChannel:    "SEI",
		OriginRegion:      "Taguatinga (RA III)",
		DemandTypeID:      dt.ID,
		DemandID:          demand.ID,
		ResponsibleUserID: user.ID,
		InitialStatus:     "Enviado à Diretoria das Cidades",
	}
	require.NoError(t, db.Create(entry).Error)
	return entry, user
}

func TestLatestMovementTieBreaksOnID(t *testing.T) {
	db := newTestDB(t)
	repo := NewProcessRepository(db)
	entry, user := seedEntry(t, db)
	ctx := context.Background()

	day := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	lowID := uuid.MustParse("00000000-0000-0000-0000-000000000001")
	highID := uuid.MustParse("ffffffff-ffff-ffff-ffff-ffffffffffff")

	// Same date on both rows; the greater id wins deterministically.
	require.NoError(t, repo.CreateMovement(ctx, &model.Movement{
		ID: highID, EntryID: entry.ID, UserID: user.ID, NewStatus: "Atendido", Date: day,
	}))
	require.NoError(t, repo.CreateMovement(ctx, &model.Movement{
		ID: lowID, EntryID: entry.ID, UserID: user.ID, NewStatus: "Encerrado pela RA de origem", Date: day,
	}))

	latest, err := repo.LatestMovement(ctx, entry.ID)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, highID, latest.ID)
	assert.Equal(t, "Atendido", latest.NewStatus)
}

func TestLatestMovementPrefersNewerDate(t *testing.T) {
	db := newTestDB(t)
	repo := NewProcessRepository(db)
	entry, user := seedEntry(t, db)
	ctx := context.Background()

	older := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	newer := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, repo.CreateMovement(ctx, &model.Movement{
		EntryID: entry.ID, UserID: user.ID, NewStatus: "Atendido", Date: newer,
	}))
	require.NoError(t, repo.CreateMovement(ctx, &model.Movement{
		EntryID: entry.ID, UserID: user.ID, NewStatus: "Encerrado pela RA de origem", Date: older,
	}))

	latest, err := repo.LatestMovement(ctx, entry.ID)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, "Atendido", latest.NewStatus)
}

func TestLatestMovementEmptyLedger(t *testing.T) {
	db := newTestDB(t)
	repo := NewProcessRepository(db)
	entry, _ := seedEntry(t, db)

	latest, err := repo.LatestMovement(context.Background(), entry.ID)
	require.NoError(t, err)
	assert.Nil(t, latest)
}
