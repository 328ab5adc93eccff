package model

import "gorm.io/gorm"

// 评估类型：每个学生每科每学期各一次
const (
	GradeTypeDevoir      = "devoir"
	GradeTypeComposition = "composition"
)

// Grade 成绩表，对应 notes
type Grade struct {
	GradeID     string  `gorm:"type:char(36);primaryKey"      json:"grade_id"`
	StudentID   string  `gorm:"type:char(36);not null"        json:"student_id"`
	SubjectID   string  `gorm:"type:char(36);not null"        json:"subject_id"`
	TermID      string  `gorm:"type:char(36);not null"        json:"term_id"`
	Type        string  `gorm:"type:varchar(20);not null"     json:"type"` // devoir | composition
	Valeur      float64 `gorm:"type:decimal(4,2);not null"    json:"valeur"`
	Commentaire string  `gorm:"type:varchar(255);not null"    json:"commentaire"`
	BaseModel

	// 关联
	Subject *Subject `gorm:"foreignKey:SubjectID;references:SubjectID" json:"matiere,omitempty"`
}

// TableName 指定表名
func (Grade) TableName() string { return "notes" }

// BeforeCreate 生成主键
func (g *Grade) BeforeCreate(*gorm.DB) error {
	ensureID(&g.GradeID)
	return nil
}
