package models

import (
	"time"

	"gorm.io/datatypes"
)

// Notification records a single outbound delivery attempt. Rows are
// written best-effort; a failed write never affects the triggering request.
type Notification struct {
	BaseModel

	OrderID uint   `gorm:"index"`
	UserID  uint   `gorm:"not null;index"`
	Channel string `gorm:"not null"` // "email"
	Status  string `gorm:"not null"` // "sent", "failed"
	Subject string
	Payload datatypes.JSON `gorm:"type:jsonb"`
	SentAt  *time.Time

	// Relationships
	User User `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
