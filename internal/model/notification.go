package model

import (
	"time"

	"gorm.io/gorm"
)

// 通知类型
const (
	NotificationInfo     = "info"
	NotificationAlerte   = "alerte"
	NotificationNote     = "note"
	NotificationBulletin = "bulletin"
	NotificationCours    = "cours"
)

// Notification 通知消息表，对应 notifications
type Notification struct {
	NotificationID string     `gorm:"type:char(36);primaryKey"               json:"notification_id"`
	UserID         string     `gorm:"type:char(36);not null"                 json:"user_id"`
	Titre          string     `gorm:"type:varchar(200);not null"             json:"titre"`
	Message        string     `gorm:"type:text;not null"                     json:"message"`
	Type           string     `gorm:"type:varchar(20);not null;default:'info'" json:"type"`
	IsRead         bool       `gorm:"not null;default:false"                 json:"is_read"`
	ReadAt         *time.Time `json:"read_at,omitempty"`
	RelatedType    *string    `gorm:"type:varchar(20)"                       json:"related_type,omitempty"` // cours | note | bulletin
	RelatedID      *string    `gorm:"type:char(36)"                          json:"related_id,omitempty"`
	BaseModel
}

// TableName 指定表名
func (Notification) TableName() string { return "notifications" }

// BeforeCreate 生成主键
func (n *Notification) BeforeCreate(*gorm.DB) error {
	ensureID(&n.NotificationID)
	return nil
}
