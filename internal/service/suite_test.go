package service

import (
	"context"
	"testing"

	"sistramite/internal/database"
	"sistramite/internal/model"
	"sistramite/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens an in-memory database migrated and seeded exactly like
// production startup.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	require.NoError(t, database.Seed(db))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, username string, admin bool) *model.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)
	u := &model.User{
		Name:         "Test " + username,
		Username:     username,
		Email:        username + "@novacap.df.gov.br",
		PasswordHash: string(hash),
		Approved:     true,
		IsAdmin:      admin,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

func firstDemandType(t *testing.T, db *gorm.DB) model.DemandType {
	t.Helper()
	var dt model.DemandType
	require.NoError(t, db.First(&dt).Error)
	return dt
}

func demandByDescription(t *testing.T, db *gorm.DB, description string) model.Demand {
	t.Helper()
	var d model.Demand
	require.NoError(t, db.First(&d, "description = ?", description).Error)
	return d
}

// newProcessService wires a ProcessService over the given database, without
// a websocket hub.
func newProcessService(db *gorm.DB) ProcessService {
	return NewProcessService(
		repository.NewProcessRepository(db),
		repository.NewReferenceRepository(db),
		repository.NewAuditRepository(db),
		repository.NewTransactionManager(db),
		nil,
		zap.NewNop(),
	)
}

func validProcessRequest(t *testing.T, db *gorm.DB, number string, responsible *model.User) CreateProcessRequest {
	t.Helper()
	dt := firstDemandType(t, db)
	demand := demandByDescription(t, db, "Tapa-buraco")
	return CreateProcessRequest{
		Number:                 number,
		InitialStatus:          "Enviado à Diretoria das Cidades",
		DestinationDirectorate: "Diretoria das Cidades - DC",
		RegionCreatedAt:        "2026-01-10",
		ReceivedAt:             "2026-01-15",
		DocumentDate:           "2026-01-12",
		InitialChannel:         "SEI",
		OriginRegion:           "Taguatinga (RA III)",
		DemandTypeID:           dt.ID.String(),
		DemandID:               demand.ID.String(),
		ResponsibleUserID:      responsible.ID.String(),
	}
}

func createProcess(t *testing.T, db *gorm.DB, svc ProcessService, number string, actor *model.User) *model.Process {
	t.Helper()
	p, err := svc.CreateProcess(context.Background(), actor.ID, validProcessRequest(t, db, number, actor))
	require.NoError(t, err)
	return p
}
