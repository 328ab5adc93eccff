package model

import (
	"time"

	"gorm.io/gorm"
)

// Term 学期表，对应 semestres
type Term struct {
	TermID        string    `gorm:"type:char(36);primaryKey"  json:"term_id"`
	Nom           string    `gorm:"type:varchar(100);not null" json:"nom"`
	AnneeScolaire string    `gorm:"type:varchar(9);not null"  json:"annee_scolaire"`
	StartDate     time.Time `gorm:"type:date;not null"        json:"start_date"`
	EndDate       time.Time `gorm:"type:date;not null"        json:"end_date"`
	IsActive      bool      `gorm:"not null;default:false"    json:"is_active"`
	BaseModel
}

// TableName 指定表名
func (Term) TableName() string { return "semestres" }

// BeforeCreate 生成主键
func (t *Term) BeforeCreate(*gorm.DB) error {
	ensureID(&t.TermID)
	return nil
}
