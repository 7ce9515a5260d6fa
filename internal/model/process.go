package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Process is the tracked unit of work, identified by its unique external
// (SEI) number. CurrentStatus mirrors the status of the latest Movement and
// is only ever written inside the same transaction as the ledger append.
type Process struct {
	ID                     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Number                 string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"number"`
	CurrentStatus          string    `gorm:"type:varchar(120);not null" json:"current_status"`
	Notes                  string    `gorm:"type:text" json:"notes"`
	DestinationDirectorate string    `gorm:"type:varchar(100)" json:"destination_directorate"`
	CreatedAt              time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt              time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Entries []ProcessEntry `gorm:"foreignKey:ProcessID" json:"entries,omitempty"`
}

func (p *Process) BeforeCreate(_ *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// ProcessEntry records how/when/where a process first arrived. The schema
// allows several entries per process but the application writes exactly one.
type ProcessEntry struct {
	ID                uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	ProcessID         uuid.UUID  `gorm:"type:uuid;not null;index" json:"process_id"`
	Process           Process    `gorm:"foreignKey:ProcessID" json:"-"`
	RegionCreatedAt   time.Time  `gorm:"not null" json:"region_created_at"`   // creation date at the origin region
	ReceivedAt        time.Time  `gorm:"not null;index" json:"received_at"`   // arrival date at the company
	DocumentDate      time.Time  `gorm:"not null" json:"document_date"`       // date of the originating document
	InitialChannel    string     `gorm:"type:varchar(10);not null" json:"initial_channel"` // "SEI", "MEMO"...
	OriginRegion      string     `gorm:"type:varchar(120);not null;index" json:"origin_region"`
	DemandTypeID      uuid.UUID  `gorm:"type:uuid;not null" json:"demand_type_id"`
	DemandType        DemandType `gorm:"foreignKey:DemandTypeID" json:"demand_type"`
	DemandID          uuid.UUID  `gorm:"type:uuid;not null;index" json:"demand_id"`
	Demand            Demand     `gorm:"foreignKey:DemandID" json:"demand"`
	ResponsibleUserID uuid.UUID  `gorm:"type:uuid;not null" json:"responsible_user_id"`
	Responsible       User       `gorm:"foreignKey:ResponsibleUserID" json:"responsible"`
	InitialStatus     string     `gorm:"type:varchar(120);not null" json:"initial_status"`
	HasInspection     bool       `gorm:"default:false" json:"has_inspection"`
	LetterSigned      bool       `gorm:"default:false" json:"letter_signed"`
	ClosedByRegion    bool       `gorm:"default:false" json:"closed_by_region"`
	ClosedByRegionAt  *time.Time `json:"closed_by_region_at,omitempty"`

	Movements []Movement `gorm:"foreignKey:EntryID;constraint:OnDelete:CASCADE;" json:"movements,omitempty"`
}

func (e *ProcessEntry) BeforeCreate(_ *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// Movement is one append-only ledger row of a process's status history.
type Movement struct {
	ID        uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	EntryID   uuid.UUID    `gorm:"type:uuid;not null;index" json:"entry_id"`
	Entry     ProcessEntry `gorm:"foreignKey:EntryID;constraint:OnDelete:CASCADE;" json:"-"`
	UserID    uuid.UUID    `gorm:"type:uuid;not null;index" json:"user_id"`
	User      User         `gorm:"foreignKey:UserID" json:"user"`
	NewStatus string       `gorm:"type:varchar(120);not null;index" json:"new_status"`
	Note      string       `gorm:"type:text" json:"note"`
	Date      time.Time    `gorm:"not null;index" json:"date"`
	CreatedAt time.Time    `gorm:"autoCreateTime" json:"created_at"`
}

func (m *Movement) BeforeCreate(_ *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
