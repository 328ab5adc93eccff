package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"edusen/backend/internal/model"
)

// CourseFilter 课程筛选条件（空值表示不过滤）
type CourseFilter struct {
	TermID    string
	ClassID   string
	TeacherID string
	SubjectID string
	Salle     string
	Jour      *int
}

// CourseRepository 课程数据访问接口
type CourseRepository interface {
	Create(ctx context.Context, course *model.Course) error
	GetByID(ctx context.Context, id string) (*model.Course, error)
	List(ctx context.Context, filter CourseFilter) ([]model.Course, error)
	ListByTermDay(ctx context.Context, termID string, jour int) ([]model.Course, error)
	Update(ctx context.Context, course *model.Course) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context, filter CourseFilter) (int64, error)
}

type courseRepo struct {
	db *gorm.DB
}

// NewCourseRepo 创建 CourseRepository 实例
func NewCourseRepo(db *gorm.DB) CourseRepository {
	return &courseRepo{db: db}
}

func (r *courseRepo) Create(ctx context.Context, course *model.Course) error {
	return r.db.WithContext(ctx).Omit("Class", "Subject", "Teacher").Create(course).Error
}

func (r *courseRepo) GetByID(ctx context.Context, id string) (*model.Course, error) {
	var course model.Course
	err := r.db.WithContext(ctx).
		Preload("Class").
		Preload("Subject").
		Preload("Teacher").
		Where("course_id = ?", id).
		First(&course).Error
	if err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *courseRepo) List(ctx context.Context, filter CourseFilter) ([]model.Course, error) {
	var courses []model.Course
	err := r.applyFilter(r.db.WithContext(ctx), filter).
		Preload("Class").
		Preload("Subject").
		Preload("Teacher").
		Order("jour ASC, heure_debut ASC").
		Find(&courses).Error
	return courses, err
}

// ListByTermDay 冲突检测候选集：同学期同一天的全部课程
func (r *courseRepo) ListByTermDay(ctx context.Context, termID string, jour int) ([]model.Course, error) {
	var courses []model.Course
	err := r.db.WithContext(ctx).
		Preload("Class").
		Preload("Subject").
		Preload("Teacher").
		Where("term_id = ? AND jour = ?", termID, jour).
		Order("heure_debut ASC").
		Find(&courses).Error
	return courses, err
}

func (r *courseRepo) Update(ctx context.Context, course *model.Course) error {
	return r.db.WithContext(ctx).Omit("Class", "Subject", "Teacher").Save(course).Error
}

func (r *courseRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("course_id = ?", id).
		Delete(&model.Course{}).Error
}

func (r *courseRepo) Count(ctx context.Context, filter CourseFilter) (int64, error) {
	var count int64
	err := r.applyFilter(r.db.WithContext(ctx).Model(&model.Course{}), filter).
		Count(&count).Error
	return count, err
}

func (r *courseRepo) applyFilter(db *gorm.DB, filter CourseFilter) *gorm.DB {
	if filter.TermID != "" {
		db = db.Where("term_id = ?", filter.TermID)
	}
	if filter.ClassID != "" {
		db = db.Where("class_id = ?", filter.ClassID)
	}
	if filter.TeacherID != "" {
		db = db.Where("teacher_id = ?", filter.TeacherID)
	}
	if filter.SubjectID != "" {
		db = db.Where("subject_id = ?", filter.SubjectID)
	}
	if filter.Salle != "" {
		// 教室名不区分大小写，与冲突检测的比较规则一致
		db = db.Where("LOWER(TRIM(salle)) = LOWER(?)", strings.TrimSpace(filter.Salle))
	}
	if filter.Jour != nil {
		db = db.Where("jour = ?", *filter.Jour)
	}
	return db
}
