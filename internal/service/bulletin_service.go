package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"edusen/backend/internal/dto"
	"edusen/backend/internal/model"
	"edusen/backend/internal/repository"
)

// ── 成绩单模块业务错误 ──

var (
	ErrBulletinNotFound   = errors.New("成绩单不存在")
	ErrBulletinNoStudents = errors.New("班级中没有学生")
	ErrBulletinEmpty      = errors.New("该班级本学期尚未生成成绩单")
	ErrExportGenerateFail = errors.New("生成 Excel 文件失败")
)

// BulletinService 成绩单业务接口
type BulletinService interface {
	Generate(ctx context.Context, req *dto.GenerateBulletinRequest, callerID string) (*dto.GenerateBulletinResponse, error)
	GetByID(ctx context.Context, id string, caller Caller) (*dto.BulletinResponse, error)
	List(ctx context.Context, req *dto.BulletinListRequest, caller Caller) ([]dto.BulletinResponse, int64, error)
	UpdateAppreciation(ctx context.Context, id string, req *dto.UpdateBulletinRequest, callerID string) (*dto.BulletinResponse, error)
	Delete(ctx context.Context, id string) error
	// ExportXLSX 导出班级成绩单，返回文件内容与建议文件名
	ExportXLSX(ctx context.Context, req *dto.ExportBulletinRequest) (*bytes.Buffer, string, error)
}

type bulletinService struct {
	repo     *repository.Repository
	notifier NotificationService
	logger   *zap.Logger
}

// NewBulletinService 创建 BulletinService 实例
func NewBulletinService(repo *repository.Repository, notifier NotificationService, logger *zap.Logger) BulletinService {
	return &bulletinService{repo: repo, notifier: notifier, logger: logger}
}

// ════════════════════════════════════════════════════════════
// Generate 计算并写入成绩单
// ════════════════════════════════════════════════════════════
//
// 计算范围始终为整个班级（排名与班级平均需要全班数据），
// 指定 eleve_id 时只写入该生的成绩单。
//
//   - 单科平均 = (devoir + composition) / 2，缺任一项则该科不完整
//   - 班级单科平均 = 全班该科完整平均的算术平均
//   - 总平均 = 完整科目按系数加权
//   - 排名：总平均降序，并列同名次；无完整科目的学生不参与排名（rang = 0）

func (s *bulletinService) Generate(ctx context.Context, req *dto.GenerateBulletinRequest, callerID string) (*dto.GenerateBulletinResponse, error) {
	term, err := resolveTerm(ctx, s.repo, req.TermID)
	if err != nil {
		return nil, err
	}

	classID := req.ClasseID
	onlyStudent := ""
	if req.EleveID != "" {
		student, err := s.repo.Student.GetByID(ctx, req.EleveID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrStudentNotFound
			}
			s.logger.Error("查询学生失败", zap.String("id", req.EleveID), zap.Error(err))
			return nil, err
		}
		classID, onlyStudent = student.ClassID, student.StudentID
	} else if _, err := s.repo.Class.GetByID(ctx, classID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClassNotFound
		}
		s.logger.Error("查询班级失败", zap.String("id", classID), zap.Error(err))
		return nil, err
	}

	bulletins, err := s.compute(ctx, classID, term.TermID, callerID)
	if err != nil {
		return nil, err
	}
	if onlyStudent != "" {
		bulletins = filterBulletins(bulletins, onlyStudent)
	}

	// 全部写入在同一事务内
	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		for i := range bulletins {
			if err := keepManualAppreciation(ctx, tx, &bulletins[i]); err != nil {
				return err
			}
			if err := tx.Bulletin.Upsert(ctx, &bulletins[i]); err != nil {
				return fmt.Errorf("写入成绩单失败: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		s.logger.Error("生成成绩单失败",
			zap.String("class_id", classID),
			zap.String("term_id", term.TermID),
			zap.Error(err),
		)
		return nil, err
	}

	resp := &dto.GenerateBulletinResponse{Bulletins: make([]dto.BulletinResponse, 0, len(bulletins))}
	for i := range bulletins {
		// 冲突更新时保留原主键，需重新读取
		saved, err := s.repo.Bulletin.GetByStudentTerm(ctx, bulletins[i].StudentID, term.TermID)
		if err != nil {
			s.logger.Error("读取成绩单失败", zap.String("student_id", bulletins[i].StudentID), zap.Error(err))
			return nil, err
		}
		resp.Bulletins = append(resp.Bulletins, toBulletinResponse(saved))

		if saved.Student != nil && saved.Student.UserID != nil {
			msg := fmt.Sprintf("%s : moyenne %.2f/20", term.Nom, saved.MoyenneGenerale)
			s.notifier.Notify(ctx, *saved.Student.UserID, model.NotificationBulletin,
				"Bulletin disponible", msg, model.NotificationBulletin, saved.BulletinID)
		}
	}
	resp.Generated = len(resp.Bulletins)

	s.logger.Info("成绩单已生成",
		zap.String("class_id", classID),
		zap.String("term_id", term.TermID),
		zap.Int("count", resp.Generated),
	)
	return resp, nil
}

// keepManualAppreciation 已有成绩单的评语经人工修改时沿用，否则使用本次计算的评语
func keepManualAppreciation(ctx context.Context, repo *repository.Repository, b *model.Bulletin) error {
	existing, err := repo.Bulletin.GetByStudentTerm(ctx, b.StudentID, b.TermID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return fmt.Errorf("查询已有成绩单失败: %w", err)
	}
	if existing.AppreciationManuelle {
		b.Appreciation = existing.Appreciation
		b.AppreciationManuelle = true
	}
	return nil
}

// compute 计算全班成绩单（不写库）
func (s *bulletinService) compute(ctx context.Context, classID, termID, callerID string) ([]model.Bulletin, error) {
	students, err := s.repo.Student.ListByClass(ctx, classID)
	if err != nil {
		s.logger.Error("查询班级学生失败", zap.String("class_id", classID), zap.Error(err))
		return nil, err
	}
	if len(students) == 0 {
		return nil, ErrBulletinNoStudents
	}

	grades, err := s.repo.Grade.ListAll(ctx, repository.GradeFilter{ClassID: classID, TermID: termID})
	if err != nil {
		s.logger.Error("查询班级成绩失败", zap.String("class_id", classID), zap.Error(err))
		return nil, err
	}
	courses, err := s.repo.Course.List(ctx, repository.CourseFilter{ClassID: classID, TermID: termID})
	if err != nil {
		s.logger.Error("查询班级课程失败", zap.String("class_id", classID), zap.Error(err))
		return nil, err
	}
	subjects, err := loadSubjectIndex(ctx, s.repo, s.logger)
	if err != nil {
		return nil, err
	}

	// 科目集合：本学期开设的课程 ∪ 有成绩的科目
	teacherBySubject := make(map[string]string)
	subjectSet := make(map[string]bool)
	for i := range courses {
		c := courses[i]
		subjectSet[c.SubjectID] = true
		if _, ok := teacherBySubject[c.SubjectID]; !ok && c.Teacher != nil {
			teacherBySubject[c.SubjectID] = c.Teacher.FullName()
		}
	}
	grouped := GroupScores(grades)
	for _, bySubject := range grouped {
		for id := range bySubject {
			subjectSet[id] = true
		}
	}
	ids := make([]string, 0, len(subjectSet))
	for id := range subjectSet {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	classAverages := classSubjectAverages(students, grouped)

	now := time.Now()
	averages := make(map[string]float64)
	bulletins := make([]model.Bulletin, 0, len(students))
	for _, st := range students {
		lines, overall, complet := computeAverages(subjects, ids, grouped[st.StudentID])

		hasAverage := false
		for i := range lines {
			if avg, ok := classAverages[lines[i].SubjectID]; ok {
				v := avg
				lines[i].MoyenneClasse = &v
			}
			lines[i].Professeur = teacherBySubject[lines[i].SubjectID]
			if lines[i].Moyenne != nil {
				hasAverage = true
			}
		}

		b := model.Bulletin{
			BulletinID:      model.NewID(),
			StudentID:       st.StudentID,
			ClassID:         classID,
			TermID:          termID,
			MoyenneGenerale: overall,
			Effectif:        len(students),
			Complet:         complet,
			Lignes:          datatypes.NewJSONType(lines),
			GeneratedAt:     now,
			BaseModel:       model.BaseModel{CreatedBy: &callerID, UpdatedBy: &callerID},
		}
		if hasAverage {
			b.Appreciation = Remark(overall)
			averages[st.StudentID] = overall
		}
		bulletins = append(bulletins, b)
	}

	ranks := Rank(averages)
	for i := range bulletins {
		bulletins[i].Rang = ranks[bulletins[i].StudentID]
	}
	return bulletins, nil
}

// classSubjectAverages 班级各科平均（仅统计评估齐全的学生）
func classSubjectAverages(students []model.Student, grouped map[string]map[string]*SubjectScores) map[string]float64 {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, st := range students {
		for id, sc := range grouped[st.StudentID] {
			if avg, ok := sc.Average(); ok {
				sums[id] += avg
				counts[id]++
			}
		}
	}
	out := make(map[string]float64, len(sums))
	for id, sum := range sums {
		out[id] = Round2(sum / float64(counts[id]))
	}
	return out
}

func filterBulletins(list []model.Bulletin, studentID string) []model.Bulletin {
	for i := range list {
		if list[i].StudentID == studentID {
			return list[i : i+1]
		}
	}
	return nil
}

// ────────────────────── GetByID ──────────────────────

func (s *bulletinService) GetByID(ctx context.Context, id string, caller Caller) (*dto.BulletinResponse, error) {
	b, err := s.getBulletin(ctx, id)
	if err != nil {
		return nil, err
	}
	if caller.Role == model.RoleEleve && b.StudentID != caller.ProfileID {
		return nil, ErrBulletinNotFound
	}
	resp := toBulletinResponse(b)
	return &resp, nil
}

// ────────────────────── List ──────────────────────

func (s *bulletinService) List(ctx context.Context, req *dto.BulletinListRequest, caller Caller) ([]dto.BulletinResponse, int64, error) {
	filter := repository.BulletinFilter{
		StudentID: req.EleveID,
		ClassID:   req.ClasseID,
		TermID:    req.TermID,
	}
	if caller.Role == model.RoleEleve {
		if caller.ProfileID == "" {
			return []dto.BulletinResponse{}, 0, nil
		}
		filter.StudentID = caller.ProfileID
	}

	list, total, err := s.repo.Bulletin.List(ctx, filter, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询成绩单列表失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.BulletinResponse, 0, len(list))
	for i := range list {
		result = append(result, toBulletinResponse(&list[i]))
	}
	return result, total, nil
}

// ────────────────────── UpdateAppreciation ──────────────────────

func (s *bulletinService) UpdateAppreciation(ctx context.Context, id string, req *dto.UpdateBulletinRequest, callerID string) (*dto.BulletinResponse, error) {
	if _, err := s.getBulletin(ctx, id); err != nil {
		return nil, err
	}
	if err := s.repo.Bulletin.UpdateAppreciation(ctx, id, req.Appreciation, callerID); err != nil {
		s.logger.Error("修改成绩单评语失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	b, err := s.getBulletin(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toBulletinResponse(b)
	return &resp, nil
}

// ────────────────────── Delete ──────────────────────

func (s *bulletinService) Delete(ctx context.Context, id string) error {
	if _, err := s.getBulletin(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Bulletin.Delete(ctx, id); err != nil {
		s.logger.Error("删除成绩单失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ════════════════════════════════════════════════════════════
// ExportXLSX 班级成绩单导出
// ════════════════════════════════════════════════════════════
//
// Sheet "Bulletins"：每行一名学生，按名次排序
//   列：Rang | Matricule | Élève | <每科平均> | Moyenne | Appréciation

func (s *bulletinService) ExportXLSX(ctx context.Context, req *dto.ExportBulletinRequest) (*bytes.Buffer, string, error) {
	class, err := s.repo.Class.GetByID(ctx, req.ClasseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrClassNotFound
		}
		s.logger.Error("查询班级失败", zap.String("id", req.ClasseID), zap.Error(err))
		return nil, "", err
	}
	term, err := resolveTerm(ctx, s.repo, req.TermID)
	if err != nil {
		return nil, "", err
	}

	list, err := s.repo.Bulletin.ListByClassTerm(ctx, class.ClassID, term.TermID)
	if err != nil {
		s.logger.Error("查询班级成绩单失败", zap.String("class_id", class.ClassID), zap.Error(err))
		return nil, "", err
	}
	if len(list) == 0 {
		return nil, "", ErrBulletinEmpty
	}

	// 表头科目：所有成绩单中出现过的科目
	type subjectCol struct{ id, name string }
	var cols []subjectCol
	seen := make(map[string]bool)
	for i := range list {
		for _, l := range list[i].Lignes.Data() {
			if !seen[l.SubjectID] {
				seen[l.SubjectID] = true
				cols = append(cols, subjectCol{id: l.SubjectID, name: l.Matiere})
			}
		}
	}
	sort.Slice(cols, func(i, j int) bool { return cols[i].name < cols[j].name })

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Bulletins"
	idx, err := f.NewSheet(sheet)
	if err != nil {
		s.logger.Error("创建工作表失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}
	f.SetActiveSheet(idx)
	_ = f.DeleteSheet("Sheet1")

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	lastCol := colName(4 + len(cols))
	_ = f.SetCellValue(sheet, "A1", fmt.Sprintf("%s - %s (%s)", class.Nom, term.Nom, term.AnneeScolaire))
	_ = f.MergeCell(sheet, "A1", cell(lastCol, 1))
	_ = f.SetCellStyle(sheet, "A1", "A1", headerStyle)

	header := []string{"Rang", "Matricule", "Élève"}
	for _, c := range cols {
		header = append(header, c.name)
	}
	header = append(header, "Moyenne", "Appréciation")
	for i, h := range header {
		_ = f.SetCellValue(sheet, cell(colName(i), 2), h)
	}
	_ = f.SetCellStyle(sheet, "A2", cell(lastCol, 2), headerStyle)

	_ = f.SetColWidth(sheet, "A", "A", 8)
	_ = f.SetColWidth(sheet, "B", "B", 14)
	_ = f.SetColWidth(sheet, "C", "C", 28)

	row := 3
	for i := range list {
		b := list[i]
		rang := "-"
		if b.Rang > 0 {
			rang = fmt.Sprintf("%d", b.Rang)
		}
		_ = f.SetCellValue(sheet, cell("A", row), rang)
		if b.Student != nil {
			_ = f.SetCellValue(sheet, cell("B", row), b.Student.Matricule)
			_ = f.SetCellValue(sheet, cell("C", row), b.Student.FullName())
		}

		bySubject := make(map[string]model.BulletinLine)
		for _, l := range b.Lignes.Data() {
			bySubject[l.SubjectID] = l
		}
		for j, c := range cols {
			value := "-"
			if l, ok := bySubject[c.id]; ok && l.Moyenne != nil {
				value = fmt.Sprintf("%.2f", *l.Moyenne)
			}
			_ = f.SetCellValue(sheet, cell(colName(3+j), row), value)
		}
		_ = f.SetCellValue(sheet, cell(colName(3+len(cols)), row), b.MoyenneGenerale)
		_ = f.SetCellValue(sheet, cell(lastCol, row), b.Appreciation)
		row++
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("bulletins_%s_%s.xlsx", class.Nom, term.Nom)
	return buf, filename, nil
}

// ── 内部方法 ──

func (s *bulletinService) getBulletin(ctx context.Context, id string) (*model.Bulletin, error) {
	b, err := s.repo.Bulletin.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBulletinNotFound
		}
		s.logger.Error("查询成绩单失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return b, nil
}

func toBulletinResponse(b *model.Bulletin) dto.BulletinResponse {
	lines := b.Lignes.Data()
	resp := dto.BulletinResponse{
		ID:                   b.BulletinID,
		EleveID:              b.StudentID,
		ClasseID:             b.ClassID,
		TermID:               b.TermID,
		MoyenneGenerale:      b.MoyenneGenerale,
		Rang:                 b.Rang,
		Effectif:             b.Effectif,
		Appreciation:         b.Appreciation,
		AppreciationManuelle: b.AppreciationManuelle,
		Complet:              b.Complet,
		Lignes:               make([]dto.BulletinLineResponse, 0, len(lines)),
		GeneratedAt:          formatTime(b.GeneratedAt),
	}
	if b.Student != nil {
		resp.Eleve = b.Student.FullName()
		resp.Matricule = b.Student.Matricule
	}
	for _, l := range lines {
		resp.Lignes = append(resp.Lignes, dto.BulletinLineResponse{
			MatiereID:     l.SubjectID,
			Matiere:       l.Matiere,
			Coefficient:   l.Coefficient,
			Devoir:        l.Devoir,
			Composition:   l.Composition,
			Moyenne:       l.Moyenne,
			MoyenneClasse: l.MoyenneClasse,
			Professeur:    l.Professeur,
			Appreciation:  l.Appreciation,
		})
	}
	return resp
}

// ── Excel 辅助 ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
