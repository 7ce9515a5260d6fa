package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ActionRegisterUser    = "REGISTER_USER"
	ActionApproveUser     = "APPROVE_USER"
	ActionBlockUser       = "BLOCK_USER"
	ActionUnblockUser     = "UNBLOCK_USER"
	ActionGrantAdmin      = "GRANT_ADMIN"
	ActionCreateProcess   = "CREATE_PROCESS"
	ActionRecordMovement  = "RECORD_MOVEMENT"
	ActionCreateProtocol  = "CREATE_PROTOCOL"
	ActionAddInteraction  = "ADD_INTERACTION"
)

// AuditLog tracks Who, What, and When for critical system changes
type AuditLog struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     *uuid.UUID `gorm:"type:uuid;index" json:"user_id"` // nil for system actions
	User       *User      `gorm:"foreignKey:UserID" json:"user"`
	Action     string     `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityID   string     `gorm:"type:varchar(50);index" json:"entity_id"`
	EntityName string     `gorm:"type:varchar(255)" json:"entity_name,omitempty"` // human readable name
	Details    string     `gorm:"type:text" json:"details"`                       // serialized JSON payload of the action
	CreatedAt  time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
}

func (a *AuditLog) BeforeCreate(_ *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
