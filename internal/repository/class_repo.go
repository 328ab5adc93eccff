package repository

import (
	"context"

	"gorm.io/gorm"

	"edusen/backend/internal/model"
)

// ClassRepository 班级数据访问接口
type ClassRepository interface {
	Create(ctx context.Context, class *model.Class) error
	GetByID(ctx context.Context, id string) (*model.Class, error)
	ListByNom(ctx context.Context, nom string) ([]model.Class, error)
	List(ctx context.Context, anneeScolaire string) ([]model.Class, error)
	Update(ctx context.Context, class *model.Class) error
	Delete(ctx context.Context, id string) error
	ExistsByNom(ctx context.Context, nom, anneeScolaire, excludeID string) (bool, error)
}

type classRepo struct {
	db *gorm.DB
}

// NewClassRepo 创建 ClassRepository 实例
func NewClassRepo(db *gorm.DB) ClassRepository {
	return &classRepo{db: db}
}

func (r *classRepo) Create(ctx context.Context, class *model.Class) error {
	return r.db.WithContext(ctx).Create(class).Error
}

func (r *classRepo) GetByID(ctx context.Context, id string) (*model.Class, error) {
	var class model.Class
	err := r.db.WithContext(ctx).
		Where("class_id = ?", id).
		First(&class).Error
	if err != nil {
		return nil, err
	}
	return &class, nil
}

// ListByNom 按名称查询，学年最新的排在前面
func (r *classRepo) ListByNom(ctx context.Context, nom string) ([]model.Class, error) {
	var classes []model.Class
	err := r.db.WithContext(ctx).
		Where("nom = ?", nom).
		Order("annee_scolaire DESC").
		Find(&classes).Error
	return classes, err
}

func (r *classRepo) List(ctx context.Context, anneeScolaire string) ([]model.Class, error) {
	var classes []model.Class
	db := r.db.WithContext(ctx)
	if anneeScolaire != "" {
		db = db.Where("annee_scolaire = ?", anneeScolaire)
	}
	err := db.Order("annee_scolaire DESC, niveau ASC, nom ASC").Find(&classes).Error
	return classes, err
}

func (r *classRepo) Update(ctx context.Context, class *model.Class) error {
	return r.db.WithContext(ctx).Save(class).Error
}

func (r *classRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("class_id = ?", id).
		Delete(&model.Class{}).Error
}

func (r *classRepo) ExistsByNom(ctx context.Context, nom, anneeScolaire, excludeID string) (bool, error) {
	var count int64
	db := r.db.WithContext(ctx).
		Model(&model.Class{}).
		Where("nom = ? AND annee_scolaire = ?", nom, anneeScolaire)
	if excludeID != "" {
		db = db.Where("class_id <> ?", excludeID)
	}
	err := db.Count(&count).Error
	return count > 0, err
}
