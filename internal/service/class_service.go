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

// ── 班级模块业务错误 ──

var (
	ErrClassNotFound   = errors.New("班级不存在")
	ErrClassNameExists = errors.New("该学年已存在同名班级")
	ErrClassInUse      = errors.New("班级下仍有学生或课程，无法删除")
)

// ClassService 班级业务接口
type ClassService interface {
	Create(ctx context.Context, req *dto.CreateClassRequest, callerID string) (*dto.ClassResponse, error)
	GetByID(ctx context.Context, id string) (*dto.ClassResponse, error)
	List(ctx context.Context, anneeScolaire string) ([]dto.ClassResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateClassRequest, callerID string) (*dto.ClassResponse, error)
	Delete(ctx context.Context, id string) error
}

type classService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewClassService 创建 ClassService 实例
func NewClassService(repo *repository.Repository, logger *zap.Logger) ClassService {
	return &classService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *classService) Create(ctx context.Context, req *dto.CreateClassRequest, callerID string) (*dto.ClassResponse, error) {
	exists, err := s.repo.Class.ExistsByNom(ctx, req.Nom, req.AnneeScolaire, "")
	if err != nil {
		s.logger.Error("检查班级名称失败", zap.Error(err))
		return nil, err
	}
	if exists {
		return nil, ErrClassNameExists
	}

	class := &model.Class{
		Nom:           req.Nom,
		Niveau:        req.Niveau,
		AnneeScolaire: req.AnneeScolaire,
		Capacite:      req.Capacite,
		BaseModel:     model.BaseModel{CreatedBy: &callerID, UpdatedBy: &callerID},
	}
	if err := s.repo.Class.Create(ctx, class); err != nil {
		s.logger.Error("创建班级失败", zap.Error(err))
		return nil, err
	}

	return toClassResponse(class, 0), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *classService) GetByID(ctx context.Context, id string) (*dto.ClassResponse, error) {
	class, err := s.getClass(ctx, id)
	if err != nil {
		return nil, err
	}

	effectif, err := s.repo.Student.CountByClass(ctx, id)
	if err != nil {
		s.logger.Error("统计班级人数失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toClassResponse(class, effectif), nil
}

// ────────────────────── List ──────────────────────

func (s *classService) List(ctx context.Context, anneeScolaire string) ([]dto.ClassResponse, error) {
	classes, err := s.repo.Class.List(ctx, anneeScolaire)
	if err != nil {
		s.logger.Error("查询班级列表失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.ClassResponse, 0, len(classes))
	for i := range classes {
		effectif, err := s.repo.Student.CountByClass(ctx, classes[i].ClassID)
		if err != nil {
			s.logger.Error("统计班级人数失败", zap.String("id", classes[i].ClassID), zap.Error(err))
			return nil, err
		}
		result = append(result, *toClassResponse(&classes[i], effectif))
	}
	return result, nil
}

// ────────────────────── Update ──────────────────────

func (s *classService) Update(ctx context.Context, id string, req *dto.UpdateClassRequest, callerID string) (*dto.ClassResponse, error) {
	class, err := s.getClass(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Nom != nil {
		class.Nom = *req.Nom
	}
	if req.Niveau != nil {
		class.Niveau = *req.Niveau
	}
	if req.AnneeScolaire != nil {
		class.AnneeScolaire = *req.AnneeScolaire
	}
	if req.Capacite != nil {
		class.Capacite = *req.Capacite
	}

	if req.Nom != nil || req.AnneeScolaire != nil {
		exists, err := s.repo.Class.ExistsByNom(ctx, class.Nom, class.AnneeScolaire, id)
		if err != nil {
			s.logger.Error("检查班级名称失败", zap.Error(err))
			return nil, err
		}
		if exists {
			return nil, ErrClassNameExists
		}
	}

	class.UpdatedBy = &callerID
	if err := s.repo.Class.Update(ctx, class); err != nil {
		s.logger.Error("更新班级失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return s.GetByID(ctx, id)
}

// ────────────────────── Delete ──────────────────────

func (s *classService) Delete(ctx context.Context, id string) error {
	if _, err := s.getClass(ctx, id); err != nil {
		return err
	}

	students, err := s.repo.Student.CountByClass(ctx, id)
	if err != nil {
		s.logger.Error("统计班级人数失败", zap.String("id", id), zap.Error(err))
		return err
	}
	courses, err := s.repo.Course.Count(ctx, repository.CourseFilter{ClassID: id})
	if err != nil {
		s.logger.Error("统计班级课程失败", zap.String("id", id), zap.Error(err))
		return err
	}
	if students > 0 || courses > 0 {
		return ErrClassInUse
	}

	if err := s.repo.Class.Delete(ctx, id); err != nil {
		s.logger.Error("删除班级失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

func (s *classService) getClass(ctx context.Context, id string) (*model.Class, error) {
	class, err := s.repo.Class.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClassNotFound
		}
		s.logger.Error("查询班级失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return class, nil
}

func toClassResponse(c *model.Class, effectif int64) *dto.ClassResponse {
	return &dto.ClassResponse{
		ID:            c.ClassID,
		Nom:           c.Nom,
		Niveau:        c.Niveau,
		AnneeScolaire: c.AnneeScolaire,
		Capacite:      c.Capacite,
		Effectif:      effectif,
	}
}
