package repository

import (
	"context"

	"gorm.io/gorm"

	"edusen/backend/internal/model"
)

// GradeFilter 成绩筛选条件
type GradeFilter struct {
	StudentID string
	SubjectID string
	TermID    string
	ClassID   string // 通过 eleves.class_id 过滤
}

// GradeRepository 成绩数据访问接口
type GradeRepository interface {
	Create(ctx context.Context, grade *model.Grade) error
	GetByID(ctx context.Context, id string) (*model.Grade, error)
	CountEvaluations(ctx context.Context, studentID, subjectID, termID string) (map[string]int64, error)
	List(ctx context.Context, filter GradeFilter, offset, limit int) ([]model.Grade, int64, error)
	ListAll(ctx context.Context, filter GradeFilter) ([]model.Grade, error)
	Update(ctx context.Context, grade *model.Grade) error
	Delete(ctx context.Context, id string) error
	DeleteByStudent(ctx context.Context, studentID string) error
	CountBySubject(ctx context.Context, subjectID string) (int64, error)
	CountByTerm(ctx context.Context, termID string) (int64, error)
}

type gradeRepo struct {
	db *gorm.DB
}

// NewGradeRepo 创建 GradeRepository 实例
func NewGradeRepo(db *gorm.DB) GradeRepository {
	return &gradeRepo{db: db}
}

func (r *gradeRepo) Create(ctx context.Context, grade *model.Grade) error {
	return r.db.WithContext(ctx).Omit("Subject").Create(grade).Error
}

func (r *gradeRepo) GetByID(ctx context.Context, id string) (*model.Grade, error) {
	var grade model.Grade
	err := r.db.WithContext(ctx).
		Preload("Subject").
		Where("grade_id = ?", id).
		First(&grade).Error
	if err != nil {
		return nil, err
	}
	return &grade, nil
}

// CountEvaluations 统计某学生某科某学期各类型的评估数
func (r *gradeRepo) CountEvaluations(ctx context.Context, studentID, subjectID, termID string) (map[string]int64, error) {
	var rows []struct {
		Type  string
		Total int64
	}
	err := r.db.WithContext(ctx).
		Model(&model.Grade{}).
		Select("type, COUNT(*) AS total").
		Where("student_id = ? AND subject_id = ? AND term_id = ?", studentID, subjectID, termID).
		Group("type").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Type] = row.Total
	}
	return counts, nil
}

func (r *gradeRepo) List(ctx context.Context, filter GradeFilter, offset, limit int) ([]model.Grade, int64, error) {
	var grades []model.Grade
	var total int64

	db := r.applyFilter(r.db.WithContext(ctx).Model(&model.Grade{}), filter)
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Preload("Subject").
		Offset(offset).Limit(limit).
		Order("notes.created_at DESC").
		Find(&grades).Error; err != nil {
		return nil, 0, err
	}

	return grades, total, nil
}

// ListAll 不分页查询（平均分、成绩单计算用）
func (r *gradeRepo) ListAll(ctx context.Context, filter GradeFilter) ([]model.Grade, error) {
	var grades []model.Grade
	err := r.applyFilter(r.db.WithContext(ctx).Model(&model.Grade{}), filter).
		Find(&grades).Error
	return grades, err
}

func (r *gradeRepo) Update(ctx context.Context, grade *model.Grade) error {
	return r.db.WithContext(ctx).Omit("Subject").Save(grade).Error
}

func (r *gradeRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("grade_id = ?", id).
		Delete(&model.Grade{}).Error
}

func (r *gradeRepo) DeleteByStudent(ctx context.Context, studentID string) error {
	return r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Delete(&model.Grade{}).Error
}

func (r *gradeRepo) CountBySubject(ctx context.Context, subjectID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Grade{}).
		Where("subject_id = ?", subjectID).
		Count(&count).Error
	return count, err
}

func (r *gradeRepo) CountByTerm(ctx context.Context, termID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Grade{}).
		Where("term_id = ?", termID).
		Count(&count).Error
	return count, err
}

func (r *gradeRepo) applyFilter(db *gorm.DB, filter GradeFilter) *gorm.DB {
	if filter.StudentID != "" {
		db = db.Where("notes.student_id = ?", filter.StudentID)
	}
	if filter.SubjectID != "" {
		db = db.Where("notes.subject_id = ?", filter.SubjectID)
	}
	if filter.TermID != "" {
		db = db.Where("notes.term_id = ?", filter.TermID)
	}
	if filter.ClassID != "" {
		db = db.Joins("JOIN eleves ON eleves.student_id = notes.student_id").
			Where("eleves.class_id = ?", filter.ClassID)
	}
	return db
}
