package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// BulletinLine 成绩单中的单科行
// Moyenne 为空表示该科评估不完整
type BulletinLine struct {
	SubjectID     string   `json:"subject_id"`
	Matiere       string   `json:"matiere"`
	Coefficient   float64  `json:"coefficient"`
	Devoir        *float64 `json:"devoir,omitempty"`
	Composition   *float64 `json:"composition,omitempty"`
	Moyenne       *float64 `json:"moyenne,omitempty"`
	MoyenneClasse *float64 `json:"moyenne_classe,omitempty"`
	Professeur    string   `json:"professeur"`
	Appreciation  string   `json:"appreciation"`
}

// Bulletin 成绩单表，对应 bulletins（每个学生每学期一份）
// AppreciationManuelle 为真时重新生成保留现有评语，否则随总平均刷新
type Bulletin struct {
	BulletinID           string                             `gorm:"type:char(36);primaryKey"   json:"bulletin_id"`
	StudentID            string                             `gorm:"type:char(36);not null"     json:"student_id"`
	ClassID              string                             `gorm:"type:char(36);not null"     json:"class_id"`
	TermID               string                             `gorm:"type:char(36);not null"     json:"term_id"`
	MoyenneGenerale      float64                            `gorm:"type:decimal(5,2);not null" json:"moyenne_generale"`
	Rang                 int                                `gorm:"not null"                   json:"rang"`
	Effectif             int                                `gorm:"not null"                   json:"effectif"`
	Appreciation         string                             `gorm:"type:varchar(255);not null" json:"appreciation"`
	AppreciationManuelle bool                               `gorm:"not null"                   json:"appreciation_manuelle"`
	Complet              bool                               `gorm:"not null"                   json:"complet"`
	Lignes               datatypes.JSONType[[]BulletinLine] `gorm:"not null"                   json:"lignes"`
	GeneratedAt          time.Time                          `gorm:"not null"                   json:"generated_at"`
	BaseModel

	// 关联
	Student *Student `gorm:"foreignKey:StudentID;references:StudentID" json:"eleve,omitempty"`
}

// TableName 指定表名
func (Bulletin) TableName() string { return "bulletins" }

// BeforeCreate 生成主键
func (b *Bulletin) BeforeCreate(*gorm.DB) error {
	ensureID(&b.BulletinID)
	return nil
}
