package model

import "gorm.io/gorm"

// Subject 科目表，对应 matieres
type Subject struct {
	SubjectID   string  `gorm:"type:char(36);primaryKey"           json:"subject_id"`
	Nom         string  `gorm:"type:varchar(100);not null"         json:"nom"`
	Code        string  `gorm:"type:varchar(20);not null"          json:"code"`
	Coefficient float64 `gorm:"type:decimal(4,1);not null;default:1" json:"coefficient"`
	BaseModel
}

// TableName 指定表名
func (Subject) TableName() string { return "matieres" }

// BeforeCreate 生成主键
func (s *Subject) BeforeCreate(*gorm.DB) error {
	ensureID(&s.SubjectID)
	return nil
}
