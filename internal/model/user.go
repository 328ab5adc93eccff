package model

import (
	"time"

	"gorm.io/gorm"
)

// User 用户表，对应 users
type User struct {
	UserID       string     `gorm:"type:char(36);primaryKey"                     json:"user_id"`
	Email        string     `gorm:"type:varchar(255);not null;uniqueIndex"       json:"email"`
	PasswordHash string     `gorm:"type:varchar(255);not null"                   json:"-"`
	Role         string     `gorm:"type:varchar(20);not null;default:'eleve'"    json:"role"` // admin | professeur | eleve
	Nom          string     `gorm:"type:varchar(100);not null"                   json:"nom"`
	Prenom       string     `gorm:"type:varchar(100);not null"                   json:"prenom"`
	IsActive     bool       `gorm:"not null;default:true"                        json:"is_active"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	BaseModel
}

// TableName 指定表名
func (User) TableName() string { return "users" }

// BeforeCreate 生成主键
func (u *User) BeforeCreate(*gorm.DB) error {
	ensureID(&u.UserID)
	return nil
}

// FullName 展示用姓名
func (u *User) FullName() string { return u.Prenom + " " + u.Nom }
