package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProtocolAttendance is a citizen-service ticket, parallel in shape to
// Process but with an independent lifecycle. The uint primary key is
// deliberate: the human-readable protocol number ("CR-0042/2026") embeds the
// sequential id, which is only known after the row is inserted.
type ProtocolAttendance struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	ProtocolNumber string    `gorm:"type:varchar(30);uniqueIndex" json:"protocol_number"`
	OccurredAt     time.Time `gorm:"not null;index" json:"occurred_at"`
	SEINumber      string    `gorm:"type:varchar(50)" json:"sei_number"`
	RequestNumber  string    `gorm:"type:varchar(50)" json:"request_number"`
	RequesterName  string    `gorm:"type:varchar(120);not null" json:"requester_name"`
	RequesterKind  string    `gorm:"type:varchar(50)" json:"requester_kind"` // citizen, region office...
	Phone          string    `gorm:"type:varchar(30)" json:"phone"`
	Email          string    `gorm:"type:varchar(100)" json:"email"`
	OriginRegion   string    `gorm:"type:varchar(120)" json:"origin_region"`
	Demand         string    `gorm:"type:varchar(100)" json:"demand"`
	Subject        string    `gorm:"type:text" json:"subject"`
	InitialRouting string    `gorm:"type:varchar(120)" json:"initial_routing"`
	CreatedByID    uuid.UUID `gorm:"type:uuid;not null" json:"created_by_id"`
	CreatedBy      User      `gorm:"foreignKey:CreatedByID" json:"created_by"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`

	Interactions []Interaction `gorm:"foreignKey:AttendanceID;constraint:OnDelete:CASCADE;" json:"interactions,omitempty"`
}

// Interaction is one append-only response on an attendance's log.
type Interaction struct {
	ID           uuid.UUID          `gorm:"type:uuid;primaryKey" json:"id"`
	AttendanceID uint               `gorm:"not null;index" json:"attendance_id"`
	Attendance   ProtocolAttendance `gorm:"foreignKey:AttendanceID;constraint:OnDelete:CASCADE;" json:"-"`
	Response     string             `gorm:"type:text;not null" json:"response"`
	UserID       uuid.UUID          `gorm:"type:uuid;not null" json:"user_id"`
	User         User               `gorm:"foreignKey:UserID" json:"user"`
	CreatedAt    time.Time          `gorm:"autoCreateTime;index" json:"created_at"`
}

func (i *Interaction) BeforeCreate(_ *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
