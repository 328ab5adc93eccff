package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"edusen/backend/internal/dto"
	"edusen/backend/internal/model"
	"edusen/backend/internal/repository"
)

// ── 学生模块业务错误 ──

var (
	ErrStudentNotFound      = errors.New("学生不存在")
	ErrMatriculeExists      = errors.New("学号已存在")
	ErrStudentEmailRequired = errors.New("创建学生账号时邮箱必填")
	ErrImportNoData         = errors.New("导入文件中没有数据")
	ErrImportBadHeader      = errors.New("导入文件表头缺少必填列")
	ErrImportTooManyRows    = errors.New("导入行数超过上限")
	ErrImportFileUnreadable = errors.New("无法解析 Excel 文件")
)

const maxImportRows = 1000

// 导入文件中出生日期允许的格式
var birthDateLayouts = []string{"2006-01-02", "02/01/2006", "01-02-06"}

// StudentService 学生业务接口
type StudentService interface {
	Create(ctx context.Context, req *dto.CreateStudentRequest, callerID string) (*dto.StudentResponse, error)
	GetByID(ctx context.Context, id string) (*dto.StudentResponse, error)
	List(ctx context.Context, req *dto.StudentFilterRequest) ([]dto.StudentResponse, int64, error)
	Update(ctx context.Context, id string, req *dto.UpdateStudentRequest, callerID string) (*dto.StudentResponse, error)
	Delete(ctx context.Context, id string) error
	ParseImportFile(reader io.Reader) ([]ImportStudentRow, error)
	Import(ctx context.Context, rows []ImportStudentRow, callerID string) (*dto.ImportResponse, error)
}

// ImportStudentRow Excel 导入解析后的单行数据
type ImportStudentRow struct {
	Row           int
	Matricule     string
	Nom           string
	Prenom        string
	Sexe          string
	DateNaissance string
	Classe        string
}

type studentService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewStudentService 创建 StudentService 实例
func NewStudentService(repo *repository.Repository, logger *zap.Logger) StudentService {
	return &studentService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *studentService) Create(ctx context.Context, req *dto.CreateStudentRequest, callerID string) (*dto.StudentResponse, error) {
	if err := s.checkMatricule(ctx, req.Matricule, ""); err != nil {
		return nil, err
	}
	if err := s.checkClass(ctx, req.ClasseID); err != nil {
		return nil, err
	}

	student := &model.Student{
		Matricule:       req.Matricule,
		Nom:             req.Nom,
		Prenom:          req.Prenom,
		Sexe:            req.Sexe,
		Adresse:         req.Adresse,
		Telephone:       req.Telephone,
		Email:           req.Email,
		NomParent:       req.NomParent,
		TelephoneParent: req.TelephoneParent,
		ClassID:         req.ClasseID,
		BaseModel:       model.BaseModel{CreatedBy: &callerID, UpdatedBy: &callerID},
	}
	if req.DateNaissance != "" {
		d, err := parseDate(req.DateNaissance)
		if err != nil {
			return nil, fmt.Errorf("出生日期格式错误: %w", err)
		}
		student.DateNaissance = &d
	}

	// 需要账号时先校验邮箱
	var user *model.User
	if req.Password != "" {
		if req.Email == "" {
			return nil, ErrStudentEmailRequired
		}
		if _, err := s.repo.User.GetByEmail(ctx, req.Email); err == nil {
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
		user = &model.User{
			UserID:       model.NewID(),
			Email:        req.Email,
			PasswordHash: hash,
			Role:         model.RoleEleve,
			Nom:          req.Nom,
			Prenom:       req.Prenom,
			IsActive:     true,
			BaseModel:    model.BaseModel{CreatedBy: &callerID, UpdatedBy: &callerID},
		}
		student.UserID = &user.UserID
	}

	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if user != nil {
			if err := tx.User.Create(ctx, user); err != nil {
				return fmt.Errorf("创建学生账号失败: %w", duplicateAs(err, ErrEmailExists))
			}
		}
		if err := tx.Student.Create(ctx, student); err != nil {
			return fmt.Errorf("创建学生失败: %w", duplicateAs(err, ErrMatriculeExists))
		}
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrEmailExists):
			return nil, ErrEmailExists
		case errors.Is(err, ErrMatriculeExists):
			return nil, ErrMatriculeExists
		}
		s.logger.Error("创建学生失败", zap.String("matricule", req.Matricule), zap.Error(err))
		return nil, err
	}

	s.logger.Info("学生已创建",
		zap.String("student_id", student.StudentID),
		zap.Bool("with_account", user != nil),
	)
	return s.GetByID(ctx, student.StudentID)
}

// ────────────────────── GetByID ──────────────────────

func (s *studentService) GetByID(ctx context.Context, id string) (*dto.StudentResponse, error) {
	student, err := s.getStudent(ctx, id)
	if err != nil {
		return nil, err
	}
	return toStudentResponse(student), nil
}

// ────────────────────── List / Filter ──────────────────────

func (s *studentService) List(ctx context.Context, req *dto.StudentFilterRequest) ([]dto.StudentResponse, int64, error) {
	filter := repository.StudentFilter{
		ClassID: req.ClasseID,
		Sexe:    req.Sexe,
		Keyword: strings.TrimSpace(req.Q),
	}
	students, total, err := s.repo.Student.List(ctx, filter, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询学生列表失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.StudentResponse, 0, len(students))
	for i := range students {
		result = append(result, *toStudentResponse(&students[i]))
	}
	return result, total, nil
}

// ────────────────────── Update ──────────────────────

func (s *studentService) Update(ctx context.Context, id string, req *dto.UpdateStudentRequest, callerID string) (*dto.StudentResponse, error) {
	student, err := s.getStudent(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Matricule != nil && *req.Matricule != student.Matricule {
		if err := s.checkMatricule(ctx, *req.Matricule, id); err != nil {
			return nil, err
		}
		student.Matricule = *req.Matricule
	}
	if req.ClasseID != nil && *req.ClasseID != student.ClassID {
		if err := s.checkClass(ctx, *req.ClasseID); err != nil {
			return nil, err
		}
		student.ClassID = *req.ClasseID
	}
	if req.DateNaissance != nil {
		d, err := parseDate(*req.DateNaissance)
		if err != nil {
			return nil, fmt.Errorf("出生日期格式错误: %w", err)
		}
		student.DateNaissance = &d
	}
	if req.Nom != nil {
		student.Nom = *req.Nom
	}
	if req.Prenom != nil {
		student.Prenom = *req.Prenom
	}
	if req.Sexe != nil {
		student.Sexe = *req.Sexe
	}
	if req.Adresse != nil {
		student.Adresse = *req.Adresse
	}
	if req.Telephone != nil {
		student.Telephone = *req.Telephone
	}
	if req.NomParent != nil {
		student.NomParent = *req.NomParent
	}
	if req.TelephoneParent != nil {
		student.TelephoneParent = *req.TelephoneParent
	}

	emailChanged := req.Email != nil && *req.Email != student.Email
	if emailChanged {
		student.Email = *req.Email
	}
	student.UpdatedBy = &callerID
	student.Class = nil

	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if err := tx.Student.Update(ctx, student); err != nil {
			return duplicateAs(err, ErrMatriculeExists)
		}
		// 有账号时同步邮箱与姓名
		if student.UserID == nil {
			return nil
		}
		user, err := tx.User.GetByID(ctx, *student.UserID)
		if err != nil {
			return err
		}
		if emailChanged {
			if other, err := tx.User.GetByEmail(ctx, student.Email); err == nil && other.UserID != user.UserID {
				return ErrEmailExists
			}
			user.Email = student.Email
		}
		user.Nom, user.Prenom = student.Nom, student.Prenom
		user.UpdatedBy = &callerID
		return duplicateAs(tx.User.Update(ctx, user), ErrEmailExists)
	})
	if err != nil {
		if errors.Is(err, ErrEmailExists) || errors.Is(err, ErrMatriculeExists) {
			return nil, err
		}
		s.logger.Error("更新学生失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return s.GetByID(ctx, id)
}

// ────────────────────── Delete ──────────────────────

// Delete 删除学生及其成绩、成绩单与账号（同一事务）
func (s *studentService) Delete(ctx context.Context, id string) error {
	student, err := s.getStudent(ctx, id)
	if err != nil {
		return err
	}

	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if err := tx.Grade.DeleteByStudent(ctx, id); err != nil {
			return fmt.Errorf("删除学生成绩失败: %w", err)
		}
		if err := tx.Bulletin.DeleteByStudent(ctx, id); err != nil {
			return fmt.Errorf("删除学生成绩单失败: %w", err)
		}
		if err := tx.Student.Delete(ctx, id); err != nil {
			return fmt.Errorf("删除学生失败: %w", err)
		}
		if student.UserID != nil {
			if err := tx.User.Delete(ctx, *student.UserID); err != nil {
				return fmt.Errorf("删除学生账号失败: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		s.logger.Error("删除学生失败", zap.String("id", id), zap.Error(err))
		return err
	}

	s.logger.Info("学生已删除", zap.String("student_id", id))
	return nil
}

// ────────────────────── ParseImportFile ──────────────────────

// ParseImportFile 解析导入文件，列顺序不限
// 表头：matricule, nom, prenom, sexe, date_naissance, classe
func (s *studentService) ParseImportFile(reader io.Reader) ([]ImportStudentRow, error) {
	f, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImportFileUnreadable, err)
	}
	defer f.Close()

	sheetRows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImportFileUnreadable, err)
	}
	if len(sheetRows) < 2 {
		return nil, ErrImportNoData
	}

	col := importHeaderIndex(sheetRows[0])
	for _, required := range []string{"matricule", "nom", "prenom", "sexe", "classe"} {
		if col[required] < 0 {
			return nil, ErrImportBadHeader
		}
	}

	value := func(row []string, key string) string {
		idx := col[key]
		if idx < 0 || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	var rows []ImportStudentRow
	for i := 1; i < len(sheetRows); i++ {
		r := sheetRows[i]
		item := ImportStudentRow{
			Row:           i + 1,
			Matricule:     value(r, "matricule"),
			Nom:           value(r, "nom"),
			Prenom:        value(r, "prenom"),
			Sexe:          strings.ToUpper(value(r, "sexe")),
			DateNaissance: value(r, "date_naissance"),
			Classe:        value(r, "classe"),
		}
		if item.Matricule == "" && item.Nom == "" && item.Prenom == "" && item.Classe == "" {
			continue
		}
		rows = append(rows, item)
	}

	if len(rows) == 0 {
		return nil, ErrImportNoData
	}
	if len(rows) > maxImportRows {
		return nil, ErrImportTooManyRows
	}
	return rows, nil
}

func importHeaderIndex(header []string) map[string]int {
	idx := map[string]int{
		"matricule": -1, "nom": -1, "prenom": -1,
		"sexe": -1, "date_naissance": -1, "classe": -1,
	}
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(h))
		key = strings.ReplaceAll(key, " ", "_")
		switch key {
		case "prénom":
			key = "prenom"
		case "date_de_naissance":
			key = "date_naissance"
		case "classe_nom":
			key = "classe"
		}
		if _, ok := idx[key]; ok {
			idx[key] = i
		}
	}
	return idx
}

// ────────────────────── Import ──────────────────────

// Import 先整体校验，再将合法行在同一事务中写入
func (s *studentService) Import(ctx context.Context, rows []ImportStudentRow, callerID string) (*dto.ImportResponse, error) {
	resp := &dto.ImportResponse{Total: len(rows)}
	fail := func(row int, reason string) {
		resp.Failed++
		resp.Errors = append(resp.Errors, dto.ImportRowError{Row: row, Reason: reason})
	}

	// 已存在的学号
	matricules := make([]string, 0, len(rows))
	for _, r := range rows {
		if r.Matricule != "" {
			matricules = append(matricules, r.Matricule)
		}
	}
	existing, err := s.repo.Student.ExistingMatricules(ctx, matricules, "")
	if err != nil {
		s.logger.Error("查询已存在学号失败", zap.Error(err))
		return nil, err
	}
	taken := make(map[string]bool, len(existing))
	for _, m := range existing {
		taken[m] = true
	}

	classCache := make(map[string]string) // 班级名 → class_id
	var valid []model.Student

	for _, r := range rows {
		if r.Matricule == "" || r.Nom == "" || r.Prenom == "" || r.Classe == "" {
			fail(r.Row, "必填字段为空")
			continue
		}
		if r.Sexe != "M" && r.Sexe != "F" {
			fail(r.Row, fmt.Sprintf("性别无效: %s", r.Sexe))
			continue
		}
		if taken[r.Matricule] {
			fail(r.Row, fmt.Sprintf("学号已存在: %s", r.Matricule))
			continue
		}

		var birth *time.Time
		if r.DateNaissance != "" {
			d, ok := parseBirthDate(r.DateNaissance)
			if !ok {
				fail(r.Row, fmt.Sprintf("出生日期格式错误: %s", r.DateNaissance))
				continue
			}
			birth = &d
		}

		classID, ok := classCache[r.Classe]
		if !ok {
			classID, err = s.lookupClass(ctx, r.Classe)
			if err != nil {
				return nil, err
			}
			classCache[r.Classe] = classID
		}
		if classID == "" {
			fail(r.Row, fmt.Sprintf("班级不存在: %s", r.Classe))
			continue
		}

		taken[r.Matricule] = true
		valid = append(valid, model.Student{
			StudentID:     model.NewID(),
			Matricule:     r.Matricule,
			Nom:           r.Nom,
			Prenom:        r.Prenom,
			Sexe:          r.Sexe,
			DateNaissance: birth,
			ClassID:       classID,
			BaseModel:     model.BaseModel{CreatedBy: &callerID, UpdatedBy: &callerID},
		})
	}

	if len(valid) > 0 {
		err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
			return duplicateAs(tx.Student.CreateBatch(ctx, valid), ErrMatriculeExists)
		})
		if errors.Is(err, ErrMatriculeExists) {
			return nil, err
		}
		if err != nil {
			s.logger.Error("批量导入学生失败", zap.Int("count", len(valid)), zap.Error(err))
			return nil, err
		}
	}
	resp.Success = len(valid)

	s.logger.Info("学生导入完成",
		zap.Int("total", resp.Total),
		zap.Int("success", resp.Success),
		zap.Int("failed", resp.Failed),
	)
	return resp, nil
}

// lookupClass 按名称查找班级，同名时取最新学年；不存在返回空串
func (s *studentService) lookupClass(ctx context.Context, nom string) (string, error) {
	classes, err := s.repo.Class.ListByNom(ctx, nom)
	if err != nil {
		s.logger.Error("按名称查询班级失败", zap.String("nom", nom), zap.Error(err))
		return "", err
	}
	var best *model.Class
	for i := range classes {
		if best == nil || classes[i].AnneeScolaire > best.AnneeScolaire {
			best = &classes[i]
		}
	}
	if best == nil {
		return "", nil
	}
	return best.ClassID, nil
}

func parseBirthDate(s string) (time.Time, bool) {
	for _, layout := range birthDateLayouts {
		if d, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return d, true
		}
	}
	return time.Time{}, false
}

// ── 内部方法 ──

func (s *studentService) getStudent(ctx context.Context, id string) (*model.Student, error) {
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

func (s *studentService) checkMatricule(ctx context.Context, matricule, excludeID string) error {
	existing, err := s.repo.Student.ExistingMatricules(ctx, []string{matricule}, excludeID)
	if err != nil {
		s.logger.Error("检查学号失败", zap.Error(err))
		return err
	}
	if len(existing) > 0 {
		return ErrMatriculeExists
	}
	return nil
}

func (s *studentService) checkClass(ctx context.Context, classID string) error {
	if _, err := s.repo.Class.GetByID(ctx, classID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrClassNotFound
		}
		s.logger.Error("查询班级失败", zap.String("class_id", classID), zap.Error(err))
		return err
	}
	return nil
}

func toStudentResponse(st *model.Student) *dto.StudentResponse {
	resp := &dto.StudentResponse{
		ID:              st.StudentID,
		Matricule:       st.Matricule,
		Nom:             st.Nom,
		Prenom:          st.Prenom,
		Sexe:            st.Sexe,
		Adresse:         st.Adresse,
		Telephone:       st.Telephone,
		Email:           st.Email,
		NomParent:       st.NomParent,
		TelephoneParent: st.TelephoneParent,
		ClasseID:        st.ClassID,
		CreatedAt:       formatTime(st.CreatedAt),
		UpdatedAt:       formatTime(st.UpdatedAt),
	}
	if st.DateNaissance != nil {
		resp.DateNaissance = st.DateNaissance.Format(dateLayout)
	}
	if st.Class != nil {
		resp.Classe = st.Class.Nom
	}
	if st.UserID != nil {
		resp.UserID = *st.UserID
	}
	return resp
}
