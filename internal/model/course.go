package model

import "gorm.io/gorm"

// Course 课程表，对应 cours
// Jour 为周内第几天（0 = 周一），HeureDebut 为当日第几节，Duree 为连续节数
type Course struct {
	CourseID   string `gorm:"type:char(36);primaryKey"    json:"course_id"`
	ClassID    string `gorm:"type:char(36);not null"      json:"class_id"`
	SubjectID  string `gorm:"type:char(36);not null"      json:"subject_id"`
	TeacherID  string `gorm:"type:char(36);not null"      json:"teacher_id"`
	TermID     string `gorm:"type:char(36);not null"      json:"term_id"`
	Salle      string `gorm:"type:varchar(50);not null"   json:"salle"`
	Jour       int    `gorm:"type:smallint;not null"      json:"jour"`
	HeureDebut int    `gorm:"type:smallint;not null"      json:"heure_debut"`
	Duree      int    `gorm:"type:smallint;not null"      json:"duree"`
	BaseModel

	// 关联
	Class   *Class   `gorm:"foreignKey:ClassID;references:ClassID"       json:"classe,omitempty"`
	Subject *Subject `gorm:"foreignKey:SubjectID;references:SubjectID"   json:"matiere,omitempty"`
	Teacher *Teacher `gorm:"foreignKey:TeacherID;references:TeacherID"   json:"professeur,omitempty"`
}

// TableName 指定表名
func (Course) TableName() string { return "cours" }

// BeforeCreate 生成主键
func (c *Course) BeforeCreate(*gorm.DB) error {
	ensureID(&c.CourseID)
	return nil
}

// End 结束节次（不含）
func (c *Course) End() int { return c.HeureDebut + c.Duree }
