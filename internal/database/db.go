package database

import (
	"sistramite/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// NewConnection initializes a new connection pool using GORM
func NewConnection(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

// Migrate creates or updates the schema for all core models. Shared with the
// test harness, which runs it against an in-memory sqlite database.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.RefreshToken{},
		&model.AdministrativeRegion{},
		&model.Status{},
		&model.DemandType{},
		&model.Directorate{},
		&model.Department{},
		&model.Demand{},
		&model.Process{},
		&model.ProcessEntry{},
		&model.Movement{},
		&model.ProtocolAttendance{},
		&model.Interaction{},
		&model.AuditLog{},
	)
}
