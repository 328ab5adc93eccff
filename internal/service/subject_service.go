package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"edusen/backend/internal/dto"
	"edusen/backend/internal/model"
	"edusen/backend/internal/repository"
)

// ── 科目模块业务错误 ──

var (
	ErrSubjectNotFound   = errors.New("科目不存在")
	ErrSubjectNameExists = errors.New("科目名称已存在")
	ErrSubjectInUse      = errors.New("科目下仍有课程或成绩，无法删除")
)

const defaultCoefficient = 1.0

// SubjectService 科目业务接口
type SubjectService interface {
	Create(ctx context.Context, req *dto.CreateSubjectRequest, callerID string) (*dto.SubjectResponse, error)
	GetByID(ctx context.Context, id string) (*dto.SubjectResponse, error)
	List(ctx context.Context) ([]dto.SubjectResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateSubjectRequest, callerID string) (*dto.SubjectResponse, error)
	Delete(ctx context.Context, id string) error
}

type subjectService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewSubjectService 创建 SubjectService 实例
func NewSubjectService(repo *repository.Repository, logger *zap.Logger) SubjectService {
	return &subjectService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *subjectService) Create(ctx context.Context, req *dto.CreateSubjectRequest, callerID string) (*dto.SubjectResponse, error) {
	exists, err := s.repo.Subject.ExistsByNom(ctx, req.Nom, "")
	if err != nil {
		s.logger.Error("检查科目名称失败", zap.Error(err))
		return nil, err
	}
	if exists {
		return nil, ErrSubjectNameExists
	}

	coef := req.Coefficient
	if coef <= 0 {
		coef = defaultCoefficient
	}

	subject := &model.Subject{
		Nom:         req.Nom,
		Code:        req.Code,
		Coefficient: coef,
		BaseModel:   model.BaseModel{CreatedBy: &callerID, UpdatedBy: &callerID},
	}
	if err := s.repo.Subject.Create(ctx, subject); err != nil {
		s.logger.Error("创建科目失败", zap.Error(err))
		return nil, err
	}
	return toSubjectResponse(subject), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *subjectService) GetByID(ctx context.Context, id string) (*dto.SubjectResponse, error) {
	subject, err := s.getSubject(ctx, id)
	if err != nil {
		return nil, err
	}
	return toSubjectResponse(subject), nil
}

// ────────────────────── List ──────────────────────

func (s *subjectService) List(ctx context.Context) ([]dto.SubjectResponse, error) {
	subjects, err := s.repo.Subject.List(ctx)
	if err != nil {
		s.logger.Error("查询科目列表失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.SubjectResponse, 0, len(subjects))
	for i := range subjects {
		result = append(result, *toSubjectResponse(&subjects[i]))
	}
	return result, nil
}

// ────────────────────── Update ──────────────────────

func (s *subjectService) Update(ctx context.Context, id string, req *dto.UpdateSubjectRequest, callerID string) (*dto.SubjectResponse, error) {
	subject, err := s.getSubject(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Nom != nil && *req.Nom != subject.Nom {
		exists, err := s.repo.Subject.ExistsByNom(ctx, *req.Nom, id)
		if err != nil {
			s.logger.Error("检查科目名称失败", zap.Error(err))
			return nil, err
		}
		if exists {
			return nil, ErrSubjectNameExists
		}
		subject.Nom = *req.Nom
	}
	if req.Code != nil {
		subject.Code = *req.Code
	}
	if req.Coefficient != nil {
		subject.Coefficient = *req.Coefficient
	}

	subject.UpdatedBy = &callerID
	if err := s.repo.Subject.Update(ctx, subject); err != nil {
		s.logger.Error("更新科目失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toSubjectResponse(subject), nil
}

// ────────────────────── Delete ──────────────────────

func (s *subjectService) Delete(ctx context.Context, id string) error {
	if _, err := s.getSubject(ctx, id); err != nil {
		return err
	}

	courses, err := s.repo.Course.Count(ctx, repository.CourseFilter{SubjectID: id})
	if err != nil {
		s.logger.Error("统计科目课程失败", zap.String("id", id), zap.Error(err))
		return err
	}
	grades, err := s.repo.Grade.CountBySubject(ctx, id)
	if err != nil {
		s.logger.Error("统计科目成绩失败", zap.String("id", id), zap.Error(err))
		return err
	}
	if courses > 0 || grades > 0 {
		return ErrSubjectInUse
	}

	if err := s.repo.Subject.Delete(ctx, id); err != nil {
		s.logger.Error("删除科目失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

func (s *subjectService) getSubject(ctx context.Context, id string) (*model.Subject, error) {
	subject, err := s.repo.Subject.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubjectNotFound
		}
		s.logger.Error("查询科目失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return subject, nil
}

func toSubjectResponse(m *model.Subject) *dto.SubjectResponse {
	return &dto.SubjectResponse{
		ID:          m.SubjectID,
		Nom:         m.Nom,
		Code:        m.Code,
		Coefficient: m.Coefficient,
	}
}
