package model

import "gorm.io/gorm"

// Teacher 教师表，对应 professeurs（与 users 1:1）
type Teacher struct {
	TeacherID  string `gorm:"type:char(36);primaryKey"              json:"teacher_id"`
	UserID     string `gorm:"type:char(36);not null;uniqueIndex"    json:"user_id"`
	Nom        string `gorm:"type:varchar(100);not null"            json:"nom"`
	Prenom     string `gorm:"type:varchar(100);not null"            json:"prenom"`
	Email      string `gorm:"type:varchar(255);not null"            json:"email"`
	Telephone  string `gorm:"type:varchar(30);not null"             json:"telephone"`
	Specialite string `gorm:"type:varchar(100);not null"            json:"specialite"`
	BaseModel
}

// TableName 指定表名
func (Teacher) TableName() string { return "professeurs" }

// BeforeCreate 生成主键
func (t *Teacher) BeforeCreate(*gorm.DB) error {
	ensureID(&t.TeacherID)
	return nil
}

// FullName 展示用姓名
func (t *Teacher) FullName() string { return t.Prenom + " " + t.Nom }
