package model

import (
	"time"

	"gorm.io/gorm"
)

// Student 学生表，对应 eleves
type Student struct {
	StudentID       string     `gorm:"type:char(36);primaryKey"           json:"student_id"`
	Matricule       string     `gorm:"type:varchar(30);not null;uniqueIndex" json:"matricule"`
	Nom             string     `gorm:"type:varchar(100);not null"         json:"nom"`
	Prenom          string     `gorm:"type:varchar(100);not null"         json:"prenom"`
	DateNaissance   *time.Time `gorm:"type:date"                          json:"date_naissance,omitempty"`
	Sexe            string     `gorm:"type:char(1);not null"              json:"sexe"` // M | F
	Adresse         string     `gorm:"type:varchar(255);not null"         json:"adresse"`
	Telephone       string     `gorm:"type:varchar(30);not null"          json:"telephone"`
	Email           string     `gorm:"type:varchar(255);not null"         json:"email"`
	NomParent       string     `gorm:"type:varchar(200);not null"         json:"nom_parent"`
	TelephoneParent string     `gorm:"type:varchar(30);not null"          json:"telephone_parent"`
	ClassID         string     `gorm:"type:char(36);not null;index"       json:"class_id"`
	UserID          *string    `gorm:"type:char(36)"                      json:"user_id,omitempty"`
	BaseModel

	// 关联
	Class *Class `gorm:"foreignKey:ClassID;references:ClassID" json:"classe,omitempty"`
}

// TableName 指定表名
func (Student) TableName() string { return "eleves" }

// BeforeCreate 生成主键
func (s *Student) BeforeCreate(*gorm.DB) error {
	ensureID(&s.StudentID)
	return nil
}

// FullName 展示用姓名
func (s *Student) FullName() string { return s.Prenom + " " + s.Nom }
