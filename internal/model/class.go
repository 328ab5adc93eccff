package model

import "gorm.io/gorm"

// Class 班级表，对应 classes
type Class struct {
	ClassID       string `gorm:"type:char(36);primaryKey"   json:"class_id"`
	Nom           string `gorm:"type:varchar(50);not null"  json:"nom"`
	Niveau        string `gorm:"type:varchar(50);not null"  json:"niveau"`
	AnneeScolaire string `gorm:"type:varchar(9);not null"   json:"annee_scolaire"` // 2025-2026
	Capacite      int    `gorm:"not null;default:0"         json:"capacite"`
	BaseModel
}

// TableName 指定表名
func (Class) TableName() string { return "classes" }

// BeforeCreate 生成主键
func (c *Class) BeforeCreate(*gorm.DB) error {
	ensureID(&c.ClassID)
	return nil
}
