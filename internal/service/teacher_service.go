package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"edusen/backend/internal/dto"
	"edusen/backend/internal/model"
	"edusen/backend/internal/repository"
)

// ── 教师模块业务错误 ──

var (
	ErrTeacherNotFound   = errors.New("教师不存在")
	ErrTeacherHasCourses = errors.New("教师仍有课程安排，无法删除")
)

// TeacherService 教师业务接口
type TeacherService interface {
	Create(ctx context.Context, req *dto.CreateTeacherRequest, callerID string) (*dto.TeacherResponse, error)
	GetByID(ctx context.Context, id string) (*dto.TeacherResponse, error)
	List(ctx context.Context, req *dto.TeacherListRequest) ([]dto.TeacherResponse, int64, error)
	Update(ctx context.Context, id string, req *dto.UpdateTeacherRequest, callerID string) (*dto.TeacherResponse, error)
	Delete(ctx context.Context, id string) error
	ListCourses(ctx context.Context, id, termID string) ([]dto.CourseResponse, error)
}

type teacherService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewTeacherService 创建 TeacherService 实例
func NewTeacherService(repo *repository.Repository, logger *zap.Logger) TeacherService {
	return &teacherService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

// Create 同一事务内创建 professeur 账号与教师档案
func (s *teacherService) Create(ctx context.Context, req *dto.CreateTeacherRequest, callerID string) (*dto.TeacherResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := s.repo.User.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("检查邮箱失败", zap.Error(err))
		return nil, err
	}

	hash, err := hashPassword(req.Password)
	if err != nil {
		s.logger.Error("密码哈希失败", zap.Error(err))
		return nil, err
	}

	user := &model.User{
		UserID:       model.NewID(),
		Email:        email,
		PasswordHash: hash,
		Role:         model.RoleProfesseur,
		Nom:          req.Nom,
		Prenom:       req.Prenom,
		IsActive:     true,
		BaseModel:    model.BaseModel{CreatedBy: &callerID, UpdatedBy: &callerID},
	}
	teacher := &model.Teacher{
		UserID:     user.UserID,
		Nom:        req.Nom,
		Prenom:     req.Prenom,
		Email:      email,
		Telephone:  req.Telephone,
		Specialite: req.Specialite,
		BaseModel:  model.BaseModel{CreatedBy: &callerID, UpdatedBy: &callerID},
	}

	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if err := tx.User.Create(ctx, user); err != nil {
			return fmt.Errorf("创建教师账号失败: %w", duplicateAs(err, ErrEmailExists))
		}
		if err := tx.Teacher.Create(ctx, teacher); err != nil {
			return fmt.Errorf("创建教师档案失败: %w", duplicateAs(err, ErrEmailExists))
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrEmailExists) {
			return nil, ErrEmailExists
		}
		s.logger.Error("创建教师失败", zap.String("email", email), zap.Error(err))
		return nil, err
	}

	s.logger.Info("教师已创建", zap.String("teacher_id", teacher.TeacherID), zap.String("user_id", user.UserID))
	return toTeacherResponse(teacher), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *teacherService) GetByID(ctx context.Context, id string) (*dto.TeacherResponse, error) {
	teacher, err := s.getTeacher(ctx, id)
	if err != nil {
		return nil, err
	}
	return toTeacherResponse(teacher), nil
}

// ────────────────────── List ──────────────────────

func (s *teacherService) List(ctx context.Context, req *dto.TeacherListRequest) ([]dto.TeacherResponse, int64, error) {
	teachers, total, err := s.repo.Teacher.List(ctx, strings.TrimSpace(req.Q), req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询教师列表失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.TeacherResponse, 0, len(teachers))
	for i := range teachers {
		result = append(result, *toTeacherResponse(&teachers[i]))
	}
	return result, total, nil
}

// ────────────────────── Update ──────────────────────

// Update 更新教师档案，姓名与邮箱同步到账号
func (s *teacherService) Update(ctx context.Context, id string, req *dto.UpdateTeacherRequest, callerID string) (*dto.TeacherResponse, error) {
	teacher, err := s.getTeacher(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		if email != teacher.Email {
			if other, err := s.repo.User.GetByEmail(ctx, email); err == nil && other.UserID != teacher.UserID {
				return nil, ErrEmailExists
			} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				s.logger.Error("检查邮箱失败", zap.Error(err))
				return nil, err
			}
			teacher.Email = email
		}
	}
	if req.Nom != nil {
		teacher.Nom = *req.Nom
	}
	if req.Prenom != nil {
		teacher.Prenom = *req.Prenom
	}
	if req.Telephone != nil {
		teacher.Telephone = *req.Telephone
	}
	if req.Specialite != nil {
		teacher.Specialite = *req.Specialite
	}
	teacher.UpdatedBy = &callerID

	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if err := tx.Teacher.Update(ctx, teacher); err != nil {
			return fmt.Errorf("更新教师档案失败: %w", duplicateAs(err, ErrEmailExists))
		}
		user, err := tx.User.GetByID(ctx, teacher.UserID)
		if err != nil {
			return fmt.Errorf("查询教师账号失败: %w", err)
		}
		user.Email = teacher.Email
		user.Nom, user.Prenom = teacher.Nom, teacher.Prenom
		user.UpdatedBy = &callerID
		if err := tx.User.Update(ctx, user); err != nil {
			return fmt.Errorf("同步教师账号失败: %w", duplicateAs(err, ErrEmailExists))
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrEmailExists) {
			return nil, ErrEmailExists
		}
		s.logger.Error("更新教师失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return toTeacherResponse(teacher), nil
}

// ────────────────────── Delete ──────────────────────

// Delete 删除教师档案并级联删除其账号（同一事务）
func (s *teacherService) Delete(ctx context.Context, id string) error {
	teacher, err := s.getTeacher(ctx, id)
	if err != nil {
		return err
	}

	courses, err := s.repo.Course.Count(ctx, repository.CourseFilter{TeacherID: id})
	if err != nil {
		s.logger.Error("统计教师课程失败", zap.String("id", id), zap.Error(err))
		return err
	}
	if courses > 0 {
		return ErrTeacherHasCourses
	}

	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if err := tx.Teacher.Delete(ctx, id); err != nil {
			return fmt.Errorf("删除教师档案失败: %w", err)
		}
		if err := tx.User.Delete(ctx, teacher.UserID); err != nil {
			return fmt.Errorf("删除教师账号失败: %w", err)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("删除教师失败", zap.String("id", id), zap.Error(err))
		return err
	}

	s.logger.Info("教师已删除", zap.String("teacher_id", id), zap.String("user_id", teacher.UserID))
	return nil
}

// ────────────────────── ListCourses ──────────────────────

func (s *teacherService) ListCourses(ctx context.Context, id, termID string) ([]dto.CourseResponse, error) {
	if _, err := s.getTeacher(ctx, id); err != nil {
		return nil, err
	}

	term, err := resolveTerm(ctx, s.repo, termID)
	if err != nil {
		return nil, err
	}

	courses, err := s.repo.Course.List(ctx, repository.CourseFilter{TeacherID: id, TermID: term.TermID})
	if err != nil {
		s.logger.Error("查询教师课程失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	result := make([]dto.CourseResponse, 0, len(courses))
	for i := range courses {
		result = append(result, toCourseResponse(&courses[i]))
	}
	return result, nil
}

func (s *teacherService) getTeacher(ctx context.Context, id string) (*model.Teacher, error) {
	teacher, err := s.repo.Teacher.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTeacherNotFound
		}
		s.logger.Error("查询教师失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return teacher, nil
}

func toTeacherResponse(t *model.Teacher) *dto.TeacherResponse {
	return &dto.TeacherResponse{
		ID:         t.TeacherID,
		UserID:     t.UserID,
		Nom:        t.Nom,
		Prenom:     t.Prenom,
		Email:      t.Email,
		Telephone:  t.Telephone,
		Specialite: t.Specialite,
		CreatedAt:  formatTime(t.CreatedAt),
		UpdatedAt:  formatTime(t.UpdatedAt),
	}
}
