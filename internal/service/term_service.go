package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"edusen/backend/internal/dto"
	"edusen/backend/internal/model"
	"edusen/backend/internal/repository"
)

// ── 学期模块业务错误 ──

var (
	ErrTermNotFound    = errors.New("学期不存在")
	ErrNoActiveTerm    = errors.New("当前没有激活的学期")
	ErrTermDateInvalid = errors.New("学期结束日期必须晚于开始日期")
	ErrTermInUse       = errors.New("学期下仍有课程或成绩，无法删除")
)

// TermService 学期业务接口
type TermService interface {
	Create(ctx context.Context, req *dto.CreateTermRequest, callerID string) (*dto.TermResponse, error)
	GetByID(ctx context.Context, id string) (*dto.TermResponse, error)
	GetCurrent(ctx context.Context) (*dto.TermResponse, error)
	List(ctx context.Context) ([]dto.TermResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateTermRequest, callerID string) (*dto.TermResponse, error)
	Activate(ctx context.Context, id string, callerID string) error
	Delete(ctx context.Context, id string) error
}

type termService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewTermService 创建 TermService 实例
func NewTermService(repo *repository.Repository, logger *zap.Logger) TermService {
	return &termService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *termService) Create(ctx context.Context, req *dto.CreateTermRequest, callerID string) (*dto.TermResponse, error) {
	start, end, err := parseTermDates(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	term := &model.Term{
		Nom:           req.Nom,
		AnneeScolaire: req.AnneeScolaire,
		StartDate:     start,
		EndDate:       end,
		BaseModel:     model.BaseModel{CreatedBy: &callerID, UpdatedBy: &callerID},
	}
	if err := s.repo.Term.Create(ctx, term); err != nil {
		s.logger.Error("创建学期失败", zap.Error(err))
		return nil, err
	}

	return toTermResponse(term), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *termService) GetByID(ctx context.Context, id string) (*dto.TermResponse, error) {
	term, err := s.repo.Term.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTermNotFound
		}
		s.logger.Error("查询学期失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toTermResponse(term), nil
}

// ────────────────────── GetCurrent ──────────────────────

func (s *termService) GetCurrent(ctx context.Context) (*dto.TermResponse, error) {
	term, err := resolveTerm(ctx, s.repo, "")
	if err != nil {
		if !errors.Is(err, ErrNoActiveTerm) {
			s.logger.Error("查询当前学期失败", zap.Error(err))
		}
		return nil, err
	}
	return toTermResponse(term), nil
}

// ────────────────────── List ──────────────────────

func (s *termService) List(ctx context.Context) ([]dto.TermResponse, error) {
	terms, err := s.repo.Term.List(ctx)
	if err != nil {
		s.logger.Error("查询学期列表失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.TermResponse, 0, len(terms))
	for i := range terms {
		result = append(result, *toTermResponse(&terms[i]))
	}
	return result, nil
}

// ────────────────────── Update ──────────────────────

func (s *termService) Update(ctx context.Context, id string, req *dto.UpdateTermRequest, callerID string) (*dto.TermResponse, error) {
	term, err := s.repo.Term.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTermNotFound
		}
		s.logger.Error("查询学期失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	if req.Nom != nil {
		term.Nom = *req.Nom
	}
	if req.AnneeScolaire != nil {
		term.AnneeScolaire = *req.AnneeScolaire
	}

	startStr, endStr := term.StartDate.Format(dateLayout), term.EndDate.Format(dateLayout)
	if req.StartDate != nil {
		startStr = *req.StartDate
	}
	if req.EndDate != nil {
		endStr = *req.EndDate
	}
	start, end, err := parseTermDates(startStr, endStr)
	if err != nil {
		return nil, err
	}
	term.StartDate, term.EndDate = start, end
	term.UpdatedBy = &callerID

	if err := s.repo.Term.Update(ctx, term); err != nil {
		s.logger.Error("更新学期失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toTermResponse(term), nil
}

// ────────────────────── Activate ──────────────────────

// Activate 清除原激活学期并激活指定学期（同一事务）
func (s *termService) Activate(ctx context.Context, id string, callerID string) error {
	if _, err := s.repo.Term.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTermNotFound
		}
		s.logger.Error("查询学期失败", zap.String("id", id), zap.Error(err))
		return err
	}

	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if err := tx.Term.ClearActive(ctx); err != nil {
			return err
		}
		return tx.Term.SetActive(ctx, id)
	})
	if err != nil {
		s.logger.Error("激活学期失败", zap.String("id", id), zap.Error(err))
		return err
	}

	s.logger.Info("学期已激活", zap.String("term_id", id), zap.String("by", callerID))
	return nil
}

// ────────────────────── Delete ──────────────────────

func (s *termService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.Term.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTermNotFound
		}
		s.logger.Error("查询学期失败", zap.String("id", id), zap.Error(err))
		return err
	}

	courses, err := s.repo.Course.Count(ctx, repository.CourseFilter{TermID: id})
	if err != nil {
		s.logger.Error("统计学期课程失败", zap.String("id", id), zap.Error(err))
		return err
	}
	grades, err := s.repo.Grade.CountByTerm(ctx, id)
	if err != nil {
		s.logger.Error("统计学期成绩失败", zap.String("id", id), zap.Error(err))
		return err
	}
	if courses > 0 || grades > 0 {
		return ErrTermInUse
	}

	if err := s.repo.Term.Delete(ctx, id); err != nil {
		s.logger.Error("删除学期失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ── 辅助 ──

// resolveTerm termID 为空时取当前学期
func resolveTerm(ctx context.Context, repo *repository.Repository, termID string) (*model.Term, error) {
	if termID == "" {
		term, err := repo.Term.GetCurrent(ctx)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrNoActiveTerm
			}
			return nil, err
		}
		return term, nil
	}

	term, err := repo.Term.GetByID(ctx, termID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTermNotFound
		}
		return nil, err
	}
	return term, nil
}

func parseTermDates(startStr, endStr string) (start, end time.Time, err error) {
	start, err = parseDate(startStr)
	if err != nil {
		return start, end, ErrTermDateInvalid
	}
	end, err = parseDate(endStr)
	if err != nil {
		return start, end, ErrTermDateInvalid
	}
	if !end.After(start) {
		return start, end, ErrTermDateInvalid
	}
	return start, end, nil
}

func toTermResponse(t *model.Term) *dto.TermResponse {
	return &dto.TermResponse{
		ID:            t.TermID,
		Nom:           t.Nom,
		AnneeScolaire: t.AnneeScolaire,
		StartDate:     t.StartDate.Format(dateLayout),
		EndDate:       t.EndDate.Format(dateLayout),
		IsActive:      t.IsActive,
		CreatedAt:     formatTime(t.CreatedAt),
		UpdatedAt:     formatTime(t.UpdatedAt),
	}
}
