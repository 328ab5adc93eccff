package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// Repository 所有 Repository 的聚合入口
type Repository struct {
	db *gorm.DB

	User         UserRepository
	Class        ClassRepository
	Subject      SubjectRepository
	Term         TermRepository
	Student      StudentRepository
	Teacher      TeacherRepository
	Course       CourseRepository
	Grade        GradeRepository
	Bulletin     BulletinRepository
	Notification NotificationRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:           db,
		User:         NewUserRepo(db),
		Class:        NewClassRepo(db),
		Subject:      NewSubjectRepo(db),
		Term:         NewTermRepo(db),
		Student:      NewStudentRepo(db),
		Teacher:      NewTeacherRepo(db),
		Course:       NewCourseRepo(db),
		Grade:        NewGradeRepo(db),
		Bulletin:     NewBulletinRepo(db),
		Notification: NewNotificationRepo(db),
	}
}

// ── 事务 ──

// BeginTx 开启事务
func (r *Repository) BeginTx(ctx context.Context) (*gorm.DB, error) {
	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, fmt.Errorf("开启事务失败: %w", tx.Error)
	}
	return tx, nil
}

// WithTx 返回绑定到事务的 Repository
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return NewRepository(tx)
}

// Transaction 在同一事务中执行 fn，fn 返回错误或 panic 时回滚
// 未绑定数据库（单元测试中手动组装的聚合）时直接执行 fn
func (r *Repository) Transaction(ctx context.Context, fn func(tx *Repository) error) (err error) {
	if r.db == nil {
		return fn(r)
	}

	tx, err := r.BeginTx(ctx)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err = fn(r.WithTx(tx)); err != nil {
		tx.Rollback()
		return err
	}

	if err = tx.Commit().Error; err != nil {
		return fmt.Errorf("提交事务失败: %w", err)
	}
	return nil
}

// Ping 检查数据库连接
func (r *Repository) Ping(ctx context.Context) error {
	if r.db == nil {
		return nil
	}
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
