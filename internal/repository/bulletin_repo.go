package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"edusen/backend/internal/model"
)

// BulletinFilter 成绩单筛选条件
type BulletinFilter struct {
	StudentID string
	ClassID   string
	TermID    string
}

// BulletinRepository 成绩单数据访问接口
type BulletinRepository interface {
	Upsert(ctx context.Context, bulletin *model.Bulletin) error
	GetByID(ctx context.Context, id string) (*model.Bulletin, error)
	GetByStudentTerm(ctx context.Context, studentID, termID string) (*model.Bulletin, error)
	List(ctx context.Context, filter BulletinFilter, offset, limit int) ([]model.Bulletin, int64, error)
	ListByClassTerm(ctx context.Context, classID, termID string) ([]model.Bulletin, error)
	UpdateAppreciation(ctx context.Context, id, appreciation, updatedBy string) error
	Delete(ctx context.Context, id string) error
	DeleteByStudent(ctx context.Context, studentID string) error
}

type bulletinRepo struct {
	db *gorm.DB
}

// NewBulletinRepo 创建 BulletinRepository 实例
func NewBulletinRepo(db *gorm.DB) BulletinRepository {
	return &bulletinRepo{db: db}
}

// Upsert 按 (student_id, term_id) 插入或覆盖
// 冲突时保留原 bulletin_id，调用方需重新查询获取；
// 评语整列覆盖，保留人工评语由调用方在写入前决定
func (r *bulletinRepo) Upsert(ctx context.Context, bulletin *model.Bulletin) error {
	return r.db.WithContext(ctx).
		Omit("Student").
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "student_id"}, {Name: "term_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"class_id", "moyenne_generale", "rang", "effectif",
				"appreciation", "appreciation_manuelle",
				"complet", "lignes", "generated_at", "updated_at", "updated_by",
			}),
		}).
		Create(bulletin).Error
}

func (r *bulletinRepo) GetByID(ctx context.Context, id string) (*model.Bulletin, error) {
	var bulletin model.Bulletin
	err := r.db.WithContext(ctx).
		Preload("Student").
		Where("bulletin_id = ?", id).
		First(&bulletin).Error
	if err != nil {
		return nil, err
	}
	return &bulletin, nil
}

func (r *bulletinRepo) GetByStudentTerm(ctx context.Context, studentID, termID string) (*model.Bulletin, error) {
	var bulletin model.Bulletin
	err := r.db.WithContext(ctx).
		Preload("Student").
		Where("student_id = ? AND term_id = ?", studentID, termID).
		First(&bulletin).Error
	if err != nil {
		return nil, err
	}
	return &bulletin, nil
}

func (r *bulletinRepo) List(ctx context.Context, filter BulletinFilter, offset, limit int) ([]model.Bulletin, int64, error) {
	var bulletins []model.Bulletin
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Bulletin{})
	if filter.StudentID != "" {
		db = db.Where("student_id = ?", filter.StudentID)
	}
	if filter.ClassID != "" {
		db = db.Where("class_id = ?", filter.ClassID)
	}
	if filter.TermID != "" {
		db = db.Where("term_id = ?", filter.TermID)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Preload("Student").
		Offset(offset).Limit(limit).
		Order("generated_at DESC, rang ASC").
		Find(&bulletins).Error; err != nil {
		return nil, 0, err
	}

	return bulletins, total, nil
}

func (r *bulletinRepo) ListByClassTerm(ctx context.Context, classID, termID string) ([]model.Bulletin, error) {
	var bulletins []model.Bulletin
	err := r.db.WithContext(ctx).
		Preload("Student").
		Where("class_id = ? AND term_id = ?", classID, termID).
		Order("rang ASC").
		Find(&bulletins).Error
	return bulletins, err
}

func (r *bulletinRepo) UpdateAppreciation(ctx context.Context, id, appreciation, updatedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.Bulletin{}).
		Where("bulletin_id = ?", id).
		Updates(map[string]interface{}{
			"appreciation":          appreciation,
			"appreciation_manuelle": true,
			"updated_by":            updatedBy,
		}).Error
}

func (r *bulletinRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("bulletin_id = ?", id).
		Delete(&model.Bulletin{}).Error
}

func (r *bulletinRepo) DeleteByStudent(ctx context.Context, studentID string) error {
	return r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Delete(&model.Bulletin{}).Error
}
