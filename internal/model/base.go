package model

import (
	"time"

	"github.com/google/uuid"
)

// BaseModel 通用审计字段（所有业务模型嵌入）
type BaseModel struct {
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	CreatedBy *string   `gorm:"type:char(36)"           json:"created_by,omitempty"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
	UpdatedBy *string   `gorm:"type:char(36)"           json:"updated_by,omitempty"`
}

// NewID 生成主键
// 主键在应用侧生成，MySQL 与 PostgreSQL 行为一致
func NewID() string {
	return uuid.New().String()
}

// ensureID 主键为空时补齐
func ensureID(id *string) {
	if *id == "" {
		*id = NewID()
	}
}

// ── 角色 ──

const (
	RoleAdmin      = "admin"
	RoleProfesseur = "professeur"
	RoleEleve      = "eleve"
)
