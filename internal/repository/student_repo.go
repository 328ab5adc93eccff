package repository

import (
	"context"

	"gorm.io/gorm"

	"edusen/backend/internal/model"
)

// StudentFilter 学生筛选条件
type StudentFilter struct {
	ClassID string
	Sexe    string
	Keyword string // 姓、名或学号子串
}

// StudentRepository 学生数据访问接口
type StudentRepository interface {
	Create(ctx context.Context, student *model.Student) error
	CreateBatch(ctx context.Context, students []model.Student) error
	GetByID(ctx context.Context, id string) (*model.Student, error)
	GetByUserID(ctx context.Context, userID string) (*model.Student, error)
	List(ctx context.Context, filter StudentFilter, offset, limit int) ([]model.Student, int64, error)
	ListByClass(ctx context.Context, classID string) ([]model.Student, error)
	Update(ctx context.Context, student *model.Student) error
	Delete(ctx context.Context, id string) error
	CountByClass(ctx context.Context, classID string) (int64, error)
	ExistingMatricules(ctx context.Context, matricules []string, excludeID string) ([]string, error)
}

type studentRepo struct {
	db *gorm.DB
}

// NewStudentRepo 创建 StudentRepository 实例
func NewStudentRepo(db *gorm.DB) StudentRepository {
	return &studentRepo{db: db}
}

func (r *studentRepo) Create(ctx context.Context, student *model.Student) error {
	return r.db.WithContext(ctx).Create(student).Error
}

// CreateBatch 批量插入，每批 100 条
func (r *studentRepo) CreateBatch(ctx context.Context, students []model.Student) error {
	if len(students) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(students, 100).Error
}

func (r *studentRepo) GetByID(ctx context.Context, id string) (*model.Student, error) {
	var student model.Student
	err := r.db.WithContext(ctx).
		Preload("Class").
		Where("student_id = ?", id).
		First(&student).Error
	if err != nil {
		return nil, err
	}
	return &student, nil
}

func (r *studentRepo) GetByUserID(ctx context.Context, userID string) (*model.Student, error) {
	var student model.Student
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&student).Error
	if err != nil {
		return nil, err
	}
	return &student, nil
}

func (r *studentRepo) List(ctx context.Context, filter StudentFilter, offset, limit int) ([]model.Student, int64, error) {
	var students []model.Student
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Student{})
	if filter.ClassID != "" {
		db = db.Where("class_id = ?", filter.ClassID)
	}
	if filter.Sexe != "" {
		db = db.Where("sexe = ?", filter.Sexe)
	}
	if filter.Keyword != "" {
		like := "%" + filter.Keyword + "%"
		db = db.Where("nom LIKE ? OR prenom LIKE ? OR matricule LIKE ?", like, like, like)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Preload("Class").
		Offset(offset).Limit(limit).
		Order("nom ASC, prenom ASC").
		Find(&students).Error; err != nil {
		return nil, 0, err
	}

	return students, total, nil
}

func (r *studentRepo) ListByClass(ctx context.Context, classID string) ([]model.Student, error) {
	var students []model.Student
	err := r.db.WithContext(ctx).
		Where("class_id = ?", classID).
		Order("nom ASC, prenom ASC").
		Find(&students).Error
	return students, err
}

func (r *studentRepo) Update(ctx context.Context, student *model.Student) error {
	return r.db.WithContext(ctx).Omit("Class").Save(student).Error
}

func (r *studentRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("student_id = ?", id).
		Delete(&model.Student{}).Error
}

func (r *studentRepo) CountByClass(ctx context.Context, classID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Student{}).
		Where("class_id = ?", classID).
		Count(&count).Error
	return count, err
}

// ExistingMatricules 返回给定学号中已存在的部分
func (r *studentRepo) ExistingMatricules(ctx context.Context, matricules []string, excludeID string) ([]string, error) {
	var found []string
	if len(matricules) == 0 {
		return found, nil
	}
	db := r.db.WithContext(ctx).
		Model(&model.Student{}).
		Where("matricule IN ?", matricules)
	if excludeID != "" {
		db = db.Where("student_id <> ?", excludeID)
	}
	err := db.Pluck("matricule", &found).Error
	return found, err
}
