package model

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AdministrativeRegion is a seeded, effectively immutable reference entity
// ("Guará (RA X)" etc.). Entries reference it by its display description.
type AdministrativeRegion struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Code        string    `gorm:"type:varchar(20);uniqueIndex;not null" json:"code"` // "RA I" .. "RA XXXV"
	Name        string    `gorm:"type:varchar(100);not null" json:"name"`
	Description string    `gorm:"type:varchar(120);uniqueIndex;not null" json:"description"` // "Name (Code)"
}

func (r *AdministrativeRegion) BeforeCreate(_ *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// Status is the catalog of tramitation states. Final indicates the status
// closes the process (no further movement expected).
type Status struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Description  string    `gorm:"type:varchar(120);uniqueIndex;not null" json:"description"`
	DisplayOrder int       `gorm:"not null" json:"display_order"`
	Final        bool      `gorm:"default:false" json:"final"`
}

func (s *Status) BeforeCreate(_ *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// DemandType classifies the broad nature of a request (Zeladoria,
// Implantação, Indivíduo Arbóreo).
type DemandType struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Description string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"description"`
}

func (t *DemandType) BeforeCreate(_ *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// Directorate is the top of the routing hierarchy. FullName is the stored
// destination value on processes ("Diretoria das Cidades - DC"); DisplayName
// is what report filters present ("DC").
type Directorate struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	FullName    string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"full_name"`
	DisplayName string    `gorm:"type:varchar(20);uniqueIndex;not null" json:"display_name"`
}

func (d *Directorate) BeforeCreate(_ *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

// Department sits between demands and directorates for report routing.
type Department struct {
	ID            uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	Name          string      `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
	DirectorateID uuid.UUID   `gorm:"type:uuid;not null;index" json:"directorate_id"`
	Directorate   Directorate `gorm:"foreignKey:DirectorateID" json:"directorate"`
}

func (d *Department) BeforeCreate(_ *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

// Demand is a concrete service catalog entry ("Tapa-buraco", "Calçada"...)
// linked to the department responsible for executing it.
type Demand struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Description  string     `gorm:"type:varchar(100);uniqueIndex;not null" json:"description"`
	DepartmentID uuid.UUID  `gorm:"type:uuid;not null;index" json:"department_id"`
	Department   Department `gorm:"foreignKey:DepartmentID" json:"department"`
}

func (d *Demand) BeforeCreate(_ *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}
