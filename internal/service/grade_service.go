package service

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"edusen/backend/internal/dto"
	"edusen/backend/internal/model"
	"edusen/backend/internal/repository"
)

// ── 成绩模块业务错误 ──

var (
	ErrGradeNotFound   = errors.New("成绩不存在")
	ErrGradeTypeExists = errors.New("该学生本学期此科目已有同类型评估")
	ErrGradeForbidden  = errors.New("只能为自己任教的班级与科目录入成绩")
)

// GradeService 成绩业务接口
type GradeService interface {
	Create(ctx context.Context, req *dto.CreateGradeRequest, caller Caller) (*dto.GradeResponse, error)
	GetByID(ctx context.Context, id string, caller Caller) (*dto.GradeResponse, error)
	List(ctx context.Context, req *dto.GradeListRequest, caller Caller) ([]dto.GradeResponse, int64, error)
	Update(ctx context.Context, id string, req *dto.UpdateGradeRequest, caller Caller) (*dto.GradeResponse, error)
	Delete(ctx context.Context, id string, caller Caller) error
	Averages(ctx context.Context, req *dto.AveragesRequest, caller Caller) (*dto.AveragesResponse, error)
}

type gradeService struct {
	repo     *repository.Repository
	notifier NotificationService
	logger   *zap.Logger
}

// NewGradeService 创建 GradeService 实例
func NewGradeService(repo *repository.Repository, notifier NotificationService, logger *zap.Logger) GradeService {
	return &gradeService{repo: repo, notifier: notifier, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *gradeService) Create(ctx context.Context, req *dto.CreateGradeRequest, caller Caller) (*dto.GradeResponse, error) {
	term, err := resolveTerm(ctx, s.repo, req.TermID)
	if err != nil {
		return nil, err
	}
	student, err := s.getStudent(ctx, req.EleveID)
	if err != nil {
		return nil, err
	}
	subject, err := s.repo.Subject.GetByID(ctx, req.MatiereID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubjectNotFound
		}
		s.logger.Error("查询科目失败", zap.String("subject_id", req.MatiereID), zap.Error(err))
		return nil, err
	}

	if err := s.authorize(ctx, caller, student.ClassID, subject.SubjectID, term.TermID); err != nil {
		return nil, err
	}

	// 每种评估类型至多一次，因此至多两次评估
	counts, err := s.repo.Grade.CountEvaluations(ctx, student.StudentID, subject.SubjectID, term.TermID)
	if err != nil {
		s.logger.Error("统计评估次数失败", zap.Error(err))
		return nil, err
	}
	if counts[req.Type] > 0 {
		return nil, ErrGradeTypeExists
	}

	grade := &model.Grade{
		StudentID:   student.StudentID,
		SubjectID:   subject.SubjectID,
		TermID:      term.TermID,
		Type:        req.Type,
		Valeur:      *req.Valeur,
		Commentaire: req.Commentaire,
		BaseModel:   model.BaseModel{CreatedBy: &caller.UserID, UpdatedBy: &caller.UserID},
	}
	if err := s.repo.Grade.Create(ctx, grade); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrGradeTypeExists
		}
		s.logger.Error("录入成绩失败", zap.Error(err))
		return nil, err
	}
	grade.Subject = subject

	if student.UserID != nil {
		msg := fmt.Sprintf("%s (%s) : %.2f/20", subject.Nom, grade.Type, grade.Valeur)
		s.notifier.Notify(ctx, *student.UserID, model.NotificationNote, "Nouvelle note", msg, model.NotificationNote, grade.GradeID)
	}

	resp := toGradeResponse(grade)
	return &resp, nil
}

// ────────────────────── GetByID ──────────────────────

func (s *gradeService) GetByID(ctx context.Context, id string, caller Caller) (*dto.GradeResponse, error) {
	grade, err := s.getGrade(ctx, id)
	if err != nil {
		return nil, err
	}
	if caller.Role == model.RoleEleve && grade.StudentID != caller.ProfileID {
		return nil, ErrGradeNotFound
	}
	resp := toGradeResponse(grade)
	return &resp, nil
}

// ────────────────────── List ──────────────────────

func (s *gradeService) List(ctx context.Context, req *dto.GradeListRequest, caller Caller) ([]dto.GradeResponse, int64, error) {
	filter := repository.GradeFilter{
		StudentID: req.EleveID,
		SubjectID: req.MatiereID,
		TermID:    req.TermID,
		ClassID:   req.ClasseID,
	}
	// 学生只能查看自己的成绩；未关联学生档案的账号看不到任何成绩
	if caller.Role == model.RoleEleve {
		if caller.ProfileID == "" {
			return []dto.GradeResponse{}, 0, nil
		}
		filter.StudentID = caller.ProfileID
	}

	grades, total, err := s.repo.Grade.List(ctx, filter, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询成绩列表失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.GradeResponse, 0, len(grades))
	for i := range grades {
		result = append(result, toGradeResponse(&grades[i]))
	}
	return result, total, nil
}

// ────────────────────── Update ──────────────────────

func (s *gradeService) Update(ctx context.Context, id string, req *dto.UpdateGradeRequest, caller Caller) (*dto.GradeResponse, error) {
	grade, err := s.getGrade(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeGrade(ctx, caller, grade); err != nil {
		return nil, err
	}

	if req.Valeur != nil {
		grade.Valeur = *req.Valeur
	}
	if req.Commentaire != nil {
		grade.Commentaire = *req.Commentaire
	}
	grade.UpdatedBy = &caller.UserID

	if err := s.repo.Grade.Update(ctx, grade); err != nil {
		s.logger.Error("修改成绩失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	resp := toGradeResponse(grade)
	return &resp, nil
}

// ────────────────────── Delete ──────────────────────

func (s *gradeService) Delete(ctx context.Context, id string, caller Caller) error {
	grade, err := s.getGrade(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authorizeGrade(ctx, caller, grade); err != nil {
		return err
	}

	if err := s.repo.Grade.Delete(ctx, id); err != nil {
		s.logger.Error("删除成绩失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── Averages ──────────────────────

func (s *gradeService) Averages(ctx context.Context, req *dto.AveragesRequest, caller Caller) (*dto.AveragesResponse, error) {
	if caller.Role == model.RoleEleve && req.EleveID != caller.ProfileID {
		return nil, ErrStudentNotFound
	}

	student, err := s.getStudent(ctx, req.EleveID)
	if err != nil {
		return nil, err
	}
	term, err := resolveTerm(ctx, s.repo, req.TermID)
	if err != nil {
		return nil, err
	}

	grades, err := s.repo.Grade.ListAll(ctx, repository.GradeFilter{StudentID: student.StudentID, TermID: term.TermID})
	if err != nil {
		s.logger.Error("查询学生成绩失败", zap.String("student_id", student.StudentID), zap.Error(err))
		return nil, err
	}
	subjects, err := s.subjectIndex(ctx)
	if err != nil {
		return nil, err
	}

	scores := GroupScores(grades)[student.StudentID]
	lines, overall, complet := computeAverages(subjects, subjectIDs(scores), scores)

	resp := &dto.AveragesResponse{
		EleveID:         student.StudentID,
		TermID:          term.TermID,
		Matieres:        make([]dto.SubjectAverageResponse, 0, len(lines)),
		MoyenneGenerale: overall,
		Complet:         complet,
	}
	for _, l := range lines {
		resp.Matieres = append(resp.Matieres, dto.SubjectAverageResponse{
			MatiereID:   l.SubjectID,
			Matiere:     l.Matiere,
			Coefficient: l.Coefficient,
			Devoir:      l.Devoir,
			Composition: l.Composition,
			Moyenne:     l.Moyenne,
			Complet:     l.Moyenne != nil,
		})
	}
	return resp, nil
}

// ── 平均分计算（成绩单共用） ──

// computeAverages 为指定科目生成单科行，并计算加权总平均
// 仅评估齐全的科目计入总平均；无齐全科目时返回 (0, false)
func computeAverages(subjects map[string]model.Subject, ids []string, scores map[string]*SubjectScores) ([]model.BulletinLine, float64, bool) {
	lines := make([]model.BulletinLine, 0, len(ids))
	entries := make([]WeightedEntry, 0, len(ids))
	allComplete := len(ids) > 0

	for _, id := range ids {
		subj, ok := subjects[id]
		if !ok {
			continue
		}
		line := model.BulletinLine{
			SubjectID:   id,
			Matiere:     subj.Nom,
			Coefficient: subj.Coefficient,
		}
		if sc := scores[id]; sc != nil {
			line.Devoir, line.Composition = sc.Devoir, sc.Composition
			if avg, ok := sc.Average(); ok {
				v := Round2(avg)
				line.Moyenne = &v
				line.Appreciation = Remark(avg)
				entries = append(entries, WeightedEntry{Average: avg, Coefficient: subj.Coefficient})
			}
		}
		if line.Moyenne == nil {
			allComplete = false
		}
		lines = append(lines, line)
	}

	sort.Slice(lines, func(i, j int) bool { return lines[i].Matiere < lines[j].Matiere })

	overall, ok := WeightedAverage(entries)
	if !ok {
		return lines, 0, false
	}
	return lines, Round2(overall), allComplete
}

func subjectIDs(scores map[string]*SubjectScores) []string {
	ids := make([]string, 0, len(scores))
	for id := range scores {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ── 内部方法 ──

// authorize 教师只能操作本学期自己任教的 (班级, 科目)
func (s *gradeService) authorize(ctx context.Context, caller Caller, classID, subjectID, termID string) error {
	switch caller.Role {
	case model.RoleAdmin:
		return nil
	case model.RoleProfesseur:
		if caller.ProfileID == "" {
			return ErrGradeForbidden
		}
		n, err := s.repo.Course.Count(ctx, repository.CourseFilter{
			TeacherID: caller.ProfileID,
			ClassID:   classID,
			SubjectID: subjectID,
			TermID:    termID,
		})
		if err != nil {
			s.logger.Error("校验任教关系失败", zap.String("teacher_id", caller.ProfileID), zap.Error(err))
			return err
		}
		if n == 0 {
			return ErrGradeForbidden
		}
		return nil
	default:
		return ErrGradeForbidden
	}
}

func (s *gradeService) authorizeGrade(ctx context.Context, caller Caller, grade *model.Grade) error {
	if caller.IsAdmin() {
		return nil
	}
	student, err := s.getStudent(ctx, grade.StudentID)
	if err != nil {
		return err
	}
	return s.authorize(ctx, caller, student.ClassID, grade.SubjectID, grade.TermID)
}

func (s *gradeService) getGrade(ctx context.Context, id string) (*model.Grade, error) {
	grade, err := s.repo.Grade.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGradeNotFound
		}
		s.logger.Error("查询成绩失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return grade, nil
}

func (s *gradeService) getStudent(ctx context.Context, id string) (*model.Student, error) {
	student, err := s.repo.Student.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		s.logger.Error("查询学生失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return student, nil
}

func (s *gradeService) subjectIndex(ctx context.Context) (map[string]model.Subject, error) {
	return loadSubjectIndex(ctx, s.repo, s.logger)
}

func loadSubjectIndex(ctx context.Context, repo *repository.Repository, logger *zap.Logger) (map[string]model.Subject, error) {
	subjects, err := repo.Subject.List(ctx)
	if err != nil {
		logger.Error("查询科目列表失败", zap.Error(err))
		return nil, err
	}
	index := make(map[string]model.Subject, len(subjects))
	for _, sub := range subjects {
		index[sub.SubjectID] = sub
	}
	return index, nil
}

func toGradeResponse(g *model.Grade) dto.GradeResponse {
	resp := dto.GradeResponse{
		ID:          g.GradeID,
		EleveID:     g.StudentID,
		MatiereID:   g.SubjectID,
		TermID:      g.TermID,
		Type:        g.Type,
		Valeur:      g.Valeur,
		Commentaire: g.Commentaire,
		CreatedAt:   formatTime(g.CreatedAt),
		UpdatedAt:   formatTime(g.UpdatedAt),
	}
	if g.Subject != nil {
		resp.Matiere = g.Subject.Nom
	}
	return resp
}
