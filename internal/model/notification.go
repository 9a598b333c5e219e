package model

import (
	"time"

	"gorm.io/datatypes"
)

const NotificationTableName = "notifications"

// Notification 站内通知（发件箱）, 投递由 Notifier 完成
type Notification struct {
	BaseModel
	UserID    int64          `gorm:"not null;index" json:"user_id"`
	TeamID    *int64         `gorm:"index" json:"team_id,omitempty"`
	ProjectID *int64         `gorm:"index" json:"project_id,omitempty"`
	Type      string         `gorm:"size:32;not null" json:"type"`
	Title     string         `gorm:"size:200;not null" json:"title"`
	Content   string         `gorm:"type:text" json:"content"`
	Payload   datatypes.JSON `json:"payload,omitempty"`
	ReadAt    *time.Time     `json:"read_at,omitempty"`
}

func (Notification) TableName() string {
	return NotificationTableName
}
