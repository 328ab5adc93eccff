package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"edusen/backend/internal/model"
)

// TermRepository 学期数据访问接口
type TermRepository interface {
	Create(ctx context.Context, term *model.Term) error
	GetByID(ctx context.Context, id string) (*model.Term, error)
	GetCurrent(ctx context.Context) (*model.Term, error)
	List(ctx context.Context) ([]model.Term, error)
	Update(ctx context.Context, term *model.Term) error
	Delete(ctx context.Context, id string) error
	ClearActive(ctx context.Context) error
	SetActive(ctx context.Context, id string) error
	// LockForUpdate 对学期行加排他锁，仅在事务内有效
	LockForUpdate(ctx context.Context, id string) error
}

type termRepo struct {
	db *gorm.DB
}

// NewTermRepo 创建 TermRepository 实例
func NewTermRepo(db *gorm.DB) TermRepository {
	return &termRepo{db: db}
}

func (r *termRepo) Create(ctx context.Context, term *model.Term) error {
	return r.db.WithContext(ctx).Create(term).Error
}

func (r *termRepo) GetByID(ctx context.Context, id string) (*model.Term, error) {
	var term model.Term
	err := r.db.WithContext(ctx).
		Where("term_id = ?", id).
		First(&term).Error
	if err != nil {
		return nil, err
	}
	return &term, nil
}

func (r *termRepo) GetCurrent(ctx context.Context) (*model.Term, error) {
	var term model.Term
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		First(&term).Error
	if err != nil {
		return nil, err
	}
	return &term, nil
}

func (r *termRepo) List(ctx context.Context) ([]model.Term, error) {
	var terms []model.Term
	err := r.db.WithContext(ctx).
		Order("start_date DESC").
		Find(&terms).Error
	return terms, err
}

func (r *termRepo) Update(ctx context.Context, term *model.Term) error {
	return r.db.WithContext(ctx).Save(term).Error
}

func (r *termRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("term_id = ?", id).
		Delete(&model.Term{}).Error
}

// ClearActive 将所有学期的 is_active 设为 false
func (r *termRepo) ClearActive(ctx context.Context) error {
	return r.db.WithContext(ctx).
		Model(&model.Term{}).
		Where("is_active = ?", true).
		Update("is_active", false).Error
}

func (r *termRepo) SetActive(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Model(&model.Term{}).
		Where("term_id = ?", id).
		Update("is_active", true).Error
}

// LockForUpdate 同一学期的课程写入经此串行化，冲突检测读到的是已提交的最新课表
func (r *termRepo) LockForUpdate(ctx context.Context, id string) error {
	var term model.Term
	return r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("term_id").
		Where("term_id = ?", id).
		First(&term).Error
}
