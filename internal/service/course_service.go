package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"edusen/backend/config"
	"edusen/backend/internal/dto"
	"edusen/backend/internal/model"
	"edusen/backend/internal/repository"
)

// ── 课程模块业务错误 ──

var (
	ErrCourseNotFound   = errors.New("课程不存在")
	ErrCourseOutOfRange = errors.New("课程时间超出课表范围")
)

// CourseService 课程业务接口
type CourseService interface {
	Create(ctx context.Context, req *dto.CreateCourseRequest, callerID string) (*dto.CourseResponse, error)
	GetByID(ctx context.Context, id string) (*dto.CourseResponse, error)
	List(ctx context.Context, req *dto.CourseListRequest) ([]dto.CourseResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateCourseRequest, callerID string) (*dto.CourseResponse, error)
	Delete(ctx context.Context, id string) error
	// Check 仅检测冲突，不写入；excludeID 为更新场景下的课程自身
	Check(ctx context.Context, req *dto.CreateCourseRequest, excludeID string) (*dto.CheckCourseResponse, error)
}

type courseService struct {
	grid     *config.TimetableConfig
	repo     *repository.Repository
	notifier NotificationService
	logger   *zap.Logger
}

// NewCourseService 创建 CourseService 实例
func NewCourseService(
	grid *config.TimetableConfig,
	repo *repository.Repository,
	notifier NotificationService,
	logger *zap.Logger,
) CourseService {
	return &courseService{grid: grid, repo: repo, notifier: notifier, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *courseService) Create(ctx context.Context, req *dto.CreateCourseRequest, callerID string) (*dto.CourseResponse, error) {
	term, err := resolveTerm(ctx, s.repo, req.TermID)
	if err != nil {
		return nil, err
	}

	candidate := &model.Course{
		ClassID:    req.ClasseID,
		SubjectID:  req.MatiereID,
		TeacherID:  req.ProfesseurID,
		TermID:     term.TermID,
		Salle:      strings.TrimSpace(req.Salle),
		Jour:       derefInt(req.Jour),
		HeureDebut: derefInt(req.HeureDebut),
		Duree:      req.Duree,
		BaseModel:  model.BaseModel{CreatedBy: &callerID, UpdatedBy: &callerID},
	}

	if err := s.validate(ctx, candidate); err != nil {
		return nil, err
	}

	// 先锁学期行，再做冲突检测与写入
	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if err := s.detectConflicts(ctx, tx, candidate); err != nil {
			return err
		}
		return tx.Course.Create(ctx, candidate)
	})
	if err != nil {
		if errors.Is(err, ErrCourseConflict) {
			return nil, err
		}
		s.logger.Error("创建课程失败", zap.Error(err))
		return nil, err
	}

	course, err := s.getCourse(ctx, candidate.CourseID)
	if err != nil {
		return nil, err
	}
	s.notifyTeacher(ctx, course, "Nouveau cours")

	resp := toCourseResponse(course)
	return &resp, nil
}

// ────────────────────── GetByID ──────────────────────

func (s *courseService) GetByID(ctx context.Context, id string) (*dto.CourseResponse, error) {
	course, err := s.getCourse(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toCourseResponse(course)
	return &resp, nil
}

// ────────────────────── List ──────────────────────

func (s *courseService) List(ctx context.Context, req *dto.CourseListRequest) ([]dto.CourseResponse, error) {
	courses, err := s.repo.Course.List(ctx, repository.CourseFilter{
		TermID:    req.TermID,
		ClassID:   req.ClasseID,
		TeacherID: req.ProfesseurID,
		Salle:     req.Salle,
		Jour:      req.Jour,
	})
	if err != nil {
		s.logger.Error("查询课程列表失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.CourseResponse, 0, len(courses))
	for i := range courses {
		result = append(result, toCourseResponse(&courses[i]))
	}
	return result, nil
}

// ────────────────────── Update ──────────────────────

func (s *courseService) Update(ctx context.Context, id string, req *dto.UpdateCourseRequest, callerID string) (*dto.CourseResponse, error) {
	course, err := s.getCourse(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.ClasseID != nil {
		course.ClassID = *req.ClasseID
	}
	if req.MatiereID != nil {
		course.SubjectID = *req.MatiereID
	}
	if req.ProfesseurID != nil {
		course.TeacherID = *req.ProfesseurID
	}
	if req.Salle != nil {
		course.Salle = strings.TrimSpace(*req.Salle)
	}
	if req.Jour != nil {
		course.Jour = *req.Jour
	}
	if req.HeureDebut != nil {
		course.HeureDebut = *req.HeureDebut
	}
	if req.Duree != nil {
		course.Duree = *req.Duree
	}
	course.UpdatedBy = &callerID
	course.Class, course.Subject, course.Teacher = nil, nil, nil

	if err := s.validate(ctx, course); err != nil {
		return nil, err
	}

	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if err := s.detectConflicts(ctx, tx, course); err != nil {
			return err
		}
		return tx.Course.Update(ctx, course)
	})
	if err != nil {
		if errors.Is(err, ErrCourseConflict) {
			return nil, err
		}
		s.logger.Error("更新课程失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	updated, err := s.getCourse(ctx, id)
	if err != nil {
		return nil, err
	}
	s.notifyTeacher(ctx, updated, "Cours modifié")

	resp := toCourseResponse(updated)
	return &resp, nil
}

// ────────────────────── Delete ──────────────────────

func (s *courseService) Delete(ctx context.Context, id string) error {
	if _, err := s.getCourse(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Course.Delete(ctx, id); err != nil {
		s.logger.Error("删除课程失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── Check ──────────────────────

func (s *courseService) Check(ctx context.Context, req *dto.CreateCourseRequest, excludeID string) (*dto.CheckCourseResponse, error) {
	term, err := resolveTerm(ctx, s.repo, req.TermID)
	if err != nil {
		return nil, err
	}

	candidate := &model.Course{
		CourseID:   excludeID,
		ClassID:    req.ClasseID,
		SubjectID:  req.MatiereID,
		TeacherID:  req.ProfesseurID,
		TermID:     term.TermID,
		Salle:      strings.TrimSpace(req.Salle),
		Jour:       derefInt(req.Jour),
		HeureDebut: derefInt(req.HeureDebut),
		Duree:      req.Duree,
	}
	if err := s.checkBounds(candidate); err != nil {
		return nil, err
	}

	existing, err := s.repo.Course.ListByTermDay(ctx, candidate.TermID, candidate.Jour)
	if err != nil {
		s.logger.Error("查询同日课程失败", zap.Error(err))
		return nil, err
	}

	conflicts := FindConflicts(candidate, existing)
	return &dto.CheckCourseResponse{
		Conflict:  len(conflicts) > 0,
		Conflicts: ToConflictItems(conflicts),
	}, nil
}

// ── 内部方法 ──

// validate 引用存在性与课表范围
func (s *courseService) validate(ctx context.Context, c *model.Course) error {
	if err := s.checkBounds(c); err != nil {
		return err
	}

	if _, err := s.repo.Class.GetByID(ctx, c.ClassID); err != nil {
		return s.notFound(err, ErrClassNotFound, "class_id", c.ClassID)
	}
	if _, err := s.repo.Subject.GetByID(ctx, c.SubjectID); err != nil {
		return s.notFound(err, ErrSubjectNotFound, "subject_id", c.SubjectID)
	}
	if _, err := s.repo.Teacher.GetByID(ctx, c.TeacherID); err != nil {
		return s.notFound(err, ErrTeacherNotFound, "teacher_id", c.TeacherID)
	}
	return nil
}

func (s *courseService) checkBounds(c *model.Course) error {
	if c.Jour < 0 || c.Jour >= s.grid.DaysPerWeek {
		return fmt.Errorf("%w: jour=%d", ErrCourseOutOfRange, c.Jour)
	}
	if c.Duree < 1 || c.HeureDebut < 0 || c.End() > s.grid.SlotsPerDay {
		return fmt.Errorf("%w: %d+%d > %d", ErrCourseOutOfRange, c.HeureDebut, c.Duree, s.grid.SlotsPerDay)
	}
	return nil
}

func (s *courseService) notFound(err, sentinel error, field, id string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	s.logger.Error("查询课程引用失败", zap.String(field, id), zap.Error(err))
	return err
}

// detectConflicts 与同学期同一天的全部课程比较
// 须在事务内调用：学期行锁使并发写入同一学期的请求依次检测
func (s *courseService) detectConflicts(ctx context.Context, repo *repository.Repository, c *model.Course) error {
	if err := repo.Term.LockForUpdate(ctx, c.TermID); err != nil {
		return fmt.Errorf("锁定学期失败: %w", err)
	}
	existing, err := repo.Course.ListByTermDay(ctx, c.TermID, c.Jour)
	if err != nil {
		return fmt.Errorf("查询同日课程失败: %w", err)
	}
	if conflicts := FindConflicts(c, existing); len(conflicts) > 0 {
		return &CourseConflictError{Conflicts: conflicts}
	}
	return nil
}

func (s *courseService) getCourse(ctx context.Context, id string) (*model.Course, error) {
	course, err := s.repo.Course.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		s.logger.Error("查询课程失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return course, nil
}

func (s *courseService) notifyTeacher(ctx context.Context, c *model.Course, titre string) {
	if c.Teacher == nil {
		return
	}
	matiere, classe := "", ""
	if c.Subject != nil {
		matiere = c.Subject.Nom
	}
	if c.Class != nil {
		classe = c.Class.Nom
	}
	msg := fmt.Sprintf("%s - %s, %s, salle %s", matiere, classe, slotLabel(s.grid, c), c.Salle)
	s.notifier.Notify(ctx, c.Teacher.UserID, model.NotificationCours, titre, msg, model.NotificationCours, c.CourseID)
}

// ToConflictItems 转换为响应结构
func ToConflictItems(conflicts []CourseConflict) []dto.CourseConflictItem {
	items := make([]dto.CourseConflictItem, 0, len(conflicts))
	for i := range conflicts {
		items = append(items, dto.CourseConflictItem{
			Dimension: conflicts[i].Dimension,
			Cours:     toCourseResponse(&conflicts[i].Course),
		})
	}
	return items
}

func toCourseResponse(c *model.Course) dto.CourseResponse {
	resp := dto.CourseResponse{
		ID:           c.CourseID,
		ClasseID:     c.ClassID,
		MatiereID:    c.SubjectID,
		ProfesseurID: c.TeacherID,
		TermID:       c.TermID,
		Salle:        c.Salle,
		Jour:         c.Jour,
		HeureDebut:   c.HeureDebut,
		Duree:        c.Duree,
	}
	if c.Class != nil {
		resp.Classe = c.Class.Nom
	}
	if c.Subject != nil {
		resp.Matiere = c.Subject.Nom
	}
	if c.Teacher != nil {
		resp.Professeur = c.Teacher.FullName()
	}
	return resp
}

func derefInt(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}
