package service

import (
	"context"
	"errors"
	"testing"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"edusen/backend/internal/dto"
	"edusen/backend/internal/model"
)

func setupTestBulletinService(t *testing.T) (BulletinService, *school) {
	t.Helper()
	s := newSchool(t)
	return NewBulletinService(s.repo, s.notifier(), zap.NewNop()), s
}

// seedClassGrades Ndiaye 与 Sow 总平均 14（并列），Fall 仅数学完整（15）
func seedClassGrades(s *school) {
	for _, id := range []string{"el-Ndiaye", "el-Sow"} {
		s.addGrade(id, "sub-maths", model.GradeTypeDevoir, 14)
		s.addGrade(id, "sub-maths", model.GradeTypeComposition, 16)
		s.addGrade(id, "sub-fr", model.GradeTypeDevoir, 10)
		s.addGrade(id, "sub-fr", model.GradeTypeComposition, 12)
	}
	s.addGrade("el-Fall", "sub-maths", model.GradeTypeDevoir, 15)
	s.addGrade("el-Fall", "sub-maths", model.GradeTypeComposition, 15)
	s.addGrade("el-Fall", "sub-fr", model.GradeTypeDevoir, 8)
	s.addCourse("c-1", "sub-maths", 0, 0, 2, "S1")
}

func byStudent(list []dto.BulletinResponse) map[string]dto.BulletinResponse {
	out := make(map[string]dto.BulletinResponse, len(list))
	for _, b := range list {
		out[b.EleveID] = b
	}
	return out
}

// ── Generate ──

func TestBulletinService_Generate_Class(t *testing.T) {
	svc, s := setupTestBulletinService(t)
	seedClassGrades(s)

	resp, err := svc.Generate(context.Background(), &dto.GenerateBulletinRequest{ClasseID: "class-6a"}, "admin-1")
	if err != nil {
		t.Fatalf("Generate 应成功: %v", err)
	}
	if resp.Generated != 3 {
		t.Fatalf("期望生成 3 份，实际 %d", resp.Generated)
	}

	got := byStudent(resp.Bulletins)
	tests := []struct {
		id      string
		avg     float64
		rang    int
		complet bool
	}{
		{"el-Fall", 15, 1, false},
		{"el-Ndiaye", 14, 2, true},
		{"el-Sow", 14, 2, true},
	}
	for _, tt := range tests {
		b := got[tt.id]
		if b.MoyenneGenerale != tt.avg || b.Rang != tt.rang || b.Complet != tt.complet {
			t.Errorf("%s 期望 (%v, %d, %v)，实际 (%v, %d, %v)",
				tt.id, tt.avg, tt.rang, tt.complet, b.MoyenneGenerale, b.Rang, b.Complet)
		}
		if b.Effectif != 3 {
			t.Errorf("%s 期望 effectif=3，实际 %d", tt.id, b.Effectif)
		}
	}

	if got["el-Ndiaye"].Appreciation != "Bien" {
		t.Errorf("期望评语 Bien，实际 %s", got["el-Ndiaye"].Appreciation)
	}

	for _, l := range got["el-Fall"].Lignes {
		switch l.MatiereID {
		case "sub-maths":
			if l.MoyenneClasse == nil || *l.MoyenneClasse != 15 {
				t.Errorf("数学班级平均期望 15，实际 %v", l.MoyenneClasse)
			}
			if l.Professeur != "Awa Diop" {
				t.Errorf("数学教师期望 Awa Diop，实际 %q", l.Professeur)
			}
		case "sub-fr":
			if l.Moyenne != nil {
				t.Error("法语评估不完整，不应有平均分")
			}
			if l.MoyenneClasse == nil || *l.MoyenneClasse != 11 {
				t.Errorf("法语班级平均期望 11，实际 %v", l.MoyenneClasse)
			}
		}
	}

	if len(s.pub.events) != 3 {
		t.Errorf("期望推送 3 条成绩单通知，实际 %d", len(s.pub.events))
	}
}

func TestBulletinService_Generate_NoCompleteSubject(t *testing.T) {
	svc, s := setupTestBulletinService(t)
	s.addGrade("el-Ndiaye", "sub-maths", model.GradeTypeDevoir, 12)
	s.addGrade("el-Ndiaye", "sub-maths", model.GradeTypeComposition, 12)

	resp, err := svc.Generate(context.Background(), &dto.GenerateBulletinRequest{ClasseID: "class-6a"}, "admin-1")
	if err != nil {
		t.Fatalf("Generate 应成功: %v", err)
	}
	got := byStudent(resp.Bulletins)
	if got["el-Fall"].Rang != 0 || got["el-Fall"].MoyenneGenerale != 0 {
		t.Errorf("无完整科目的学生不参与排名，实际 %+v", got["el-Fall"])
	}
	if got["el-Ndiaye"].Rang != 1 {
		t.Errorf("期望 Ndiaye 排名 1，实际 %d", got["el-Ndiaye"].Rang)
	}
}

func TestBulletinService_Generate_SingleStudent(t *testing.T) {
	svc, s := setupTestBulletinService(t)
	seedClassGrades(s)

	resp, err := svc.Generate(context.Background(), &dto.GenerateBulletinRequest{EleveID: "el-Sow"}, "admin-1")
	if err != nil {
		t.Fatalf("Generate 应成功: %v", err)
	}
	if resp.Generated != 1 || resp.Bulletins[0].Rang != 2 {
		t.Errorf("单个学生仍按全班排名，实际 %+v", resp.Bulletins)
	}
	if len(s.db.bulletins) != 1 {
		t.Errorf("只应写入一份成绩单，实际 %d", len(s.db.bulletins))
	}
}

func TestBulletinService_Generate_Errors(t *testing.T) {
	svc, s := setupTestBulletinService(t)
	ctx := context.Background()

	if _, err := svc.Generate(ctx, &dto.GenerateBulletinRequest{EleveID: "missing"}, "admin-1"); !errors.Is(err, ErrStudentNotFound) {
		t.Errorf("期望 ErrStudentNotFound，实际 %v", err)
	}
	if _, err := svc.Generate(ctx, &dto.GenerateBulletinRequest{ClasseID: "missing"}, "admin-1"); !errors.Is(err, ErrClassNotFound) {
		t.Errorf("期望 ErrClassNotFound，实际 %v", err)
	}
	s.db.classes["class-empty"] = &model.Class{ClassID: "class-empty", Nom: "3eC"}
	if _, err := svc.Generate(ctx, &dto.GenerateBulletinRequest{ClasseID: "class-empty"}, "admin-1"); !errors.Is(err, ErrBulletinNoStudents) {
		t.Errorf("期望 ErrBulletinNoStudents，实际 %v", err)
	}
}

func TestBulletinService_Regenerate_KeepsAppreciation(t *testing.T) {
	svc, s := setupTestBulletinService(t)
	seedClassGrades(s)
	ctx := context.Background()

	first, err := svc.Generate(ctx, &dto.GenerateBulletinRequest{ClasseID: "class-6a"}, "admin-1")
	if err != nil {
		t.Fatalf("Generate 应成功: %v", err)
	}
	id := byStudent(first.Bulletins)["el-Ndiaye"].ID

	if _, err := svc.UpdateAppreciation(ctx, id, &dto.UpdateBulletinRequest{Appreciation: "Bon travail"}, "admin-1"); err != nil {
		t.Fatalf("UpdateAppreciation 应成功: %v", err)
	}

	second, err := svc.Generate(ctx, &dto.GenerateBulletinRequest{ClasseID: "class-6a"}, "admin-1")
	if err != nil {
		t.Fatalf("重新生成应成功: %v", err)
	}
	b := byStudent(second.Bulletins)["el-Ndiaye"]
	if b.ID != id {
		t.Errorf("重新生成应保留主键，期望 %s，实际 %s", id, b.ID)
	}
	if b.Appreciation != "Bon travail" {
		t.Errorf("重新生成应保留人工评语，实际 %q", b.Appreciation)
	}
	if len(s.db.bulletins) != 3 {
		t.Errorf("每人每学期仅一份成绩单，实际 %d", len(s.db.bulletins))
	}
}

func TestBulletinService_Regenerate_RefreshesAutoAppreciation(t *testing.T) {
	svc, s := setupTestBulletinService(t)
	s.addGrade("el-Fall", "sub-maths", model.GradeTypeDevoir, 4)
	s.addGrade("el-Fall", "sub-maths", model.GradeTypeComposition, 4)
	ctx := context.Background()

	first, err := svc.Generate(ctx, &dto.GenerateBulletinRequest{ClasseID: "class-6a"}, "admin-1")
	if err != nil {
		t.Fatalf("Generate 应成功: %v", err)
	}
	got := byStudent(first.Bulletins)
	if got["el-Fall"].Appreciation != "Insuffisant" {
		t.Fatalf("期望首次评语 Insuffisant，实际 %q", got["el-Fall"].Appreciation)
	}
	if got["el-Ndiaye"].Appreciation != "" {
		t.Fatalf("无完整科目时评语应为空，实际 %q", got["el-Ndiaye"].Appreciation)
	}

	// 成绩修改后重新生成
	for _, g := range s.db.grades {
		if g.StudentID == "el-Fall" {
			g.Valeur = 18
		}
	}
	s.addGrade("el-Ndiaye", "sub-fr", model.GradeTypeDevoir, 12)
	s.addGrade("el-Ndiaye", "sub-fr", model.GradeTypeComposition, 13)

	second, err := svc.Generate(ctx, &dto.GenerateBulletinRequest{ClasseID: "class-6a"}, "admin-1")
	if err != nil {
		t.Fatalf("重新生成应成功: %v", err)
	}
	got = byStudent(second.Bulletins)
	tests := []struct {
		id   string
		avg  float64
		want string
	}{
		{"el-Fall", 18, "Très bien"},
		{"el-Ndiaye", 12.5, "Assez bien"},
	}
	for _, tt := range tests {
		b := got[tt.id]
		if b.MoyenneGenerale != tt.avg {
			t.Errorf("%s: 期望总平均 %.2f，实际 %.2f", tt.id, tt.avg, b.MoyenneGenerale)
		}
		if b.Appreciation != tt.want {
			t.Errorf("%s: 自动评语应随总平均刷新，期望 %q，实际 %q", tt.id, tt.want, b.Appreciation)
		}
		if b.AppreciationManuelle {
			t.Errorf("%s: 自动评语不应标记为人工", tt.id)
		}
	}
}

func TestBulletinService_Regenerate_ManualAppreciationSurvivesGradeChange(t *testing.T) {
	svc, s := setupTestBulletinService(t)
	s.addGrade("el-Fall", "sub-maths", model.GradeTypeDevoir, 4)
	s.addGrade("el-Fall", "sub-maths", model.GradeTypeComposition, 4)
	ctx := context.Background()

	first, err := svc.Generate(ctx, &dto.GenerateBulletinRequest{EleveID: "el-Fall"}, "admin-1")
	if err != nil {
		t.Fatalf("Generate 应成功: %v", err)
	}
	id := first.Bulletins[0].ID
	if _, err := svc.UpdateAppreciation(ctx, id, &dto.UpdateBulletinRequest{Appreciation: "Doit se ressaisir"}, "admin-1"); err != nil {
		t.Fatalf("UpdateAppreciation 应成功: %v", err)
	}

	for _, g := range s.db.grades {
		g.Valeur = 18
	}
	second, err := svc.Generate(ctx, &dto.GenerateBulletinRequest{EleveID: "el-Fall"}, "admin-1")
	if err != nil {
		t.Fatalf("重新生成应成功: %v", err)
	}
	b := second.Bulletins[0]
	if b.MoyenneGenerale != 18 {
		t.Errorf("期望总平均 18，实际 %.2f", b.MoyenneGenerale)
	}
	if b.Appreciation != "Doit se ressaisir" || !b.AppreciationManuelle {
		t.Errorf("人工评语应保留，实际 %q (manuelle=%v)", b.Appreciation, b.AppreciationManuelle)
	}
}

// ── GetByID / List ──

func TestBulletinService_StudentVisibility(t *testing.T) {
	svc, s := setupTestBulletinService(t)
	seedClassGrades(s)
	ctx := context.Background()

	resp, err := svc.Generate(ctx, &dto.GenerateBulletinRequest{ClasseID: "class-6a"}, "admin-1")
	if err != nil {
		t.Fatalf("Generate 应成功: %v", err)
	}
	other := byStudent(resp.Bulletins)["el-Ndiaye"].ID

	eleve := Caller{UserID: "user-el-Sow", Role: model.RoleEleve, ProfileID: "el-Sow"}
	if _, err := svc.GetByID(ctx, other, eleve); !errors.Is(err, ErrBulletinNotFound) {
		t.Errorf("学生不能查看他人成绩单，实际 %v", err)
	}
	list, total, err := svc.List(ctx, &dto.BulletinListRequest{ClasseID: "class-6a"}, eleve)
	if err != nil {
		t.Fatalf("List 应成功: %v", err)
	}
	if total != 1 || list[0].EleveID != "el-Sow" {
		t.Errorf("学生只能看到自己的成绩单，实际 %+v", list)
	}

	orphan := Caller{UserID: "user-orphan", Role: model.RoleEleve}
	list, total, err = svc.List(ctx, &dto.BulletinListRequest{}, orphan)
	if err != nil {
		t.Fatalf("List 应成功: %v", err)
	}
	if total != 0 || len(list) != 0 {
		t.Errorf("无档案的学生账号不应看到任何成绩单，实际 total=%d", total)
	}
}

// ── ExportXLSX ──

func TestBulletinService_ExportXLSX(t *testing.T) {
	svc, s := setupTestBulletinService(t)
	seedClassGrades(s)
	ctx := context.Background()

	if _, _, err := svc.ExportXLSX(ctx, &dto.ExportBulletinRequest{ClasseID: "class-6a"}); !errors.Is(err, ErrBulletinEmpty) {
		t.Errorf("未生成时期望 ErrBulletinEmpty，实际 %v", err)
	}

	if _, err := svc.Generate(ctx, &dto.GenerateBulletinRequest{ClasseID: "class-6a"}, "admin-1"); err != nil {
		t.Fatalf("Generate 应成功: %v", err)
	}
	buf, filename, err := svc.ExportXLSX(ctx, &dto.ExportBulletinRequest{ClasseID: "class-6a"})
	if err != nil {
		t.Fatalf("ExportXLSX 应成功: %v", err)
	}
	if filename != "bulletins_6eA_Semestre 1.xlsx" {
		t.Errorf("文件名不正确: %s", filename)
	}

	f, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatalf("导出文件无法解析: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Bulletins")
	if err != nil {
		t.Fatalf("读取工作表失败: %v", err)
	}
	if len(rows) != 5 {
		t.Fatalf("期望 1 行标题 + 1 行表头 + 3 行数据，实际 %d", len(rows))
	}
	header := rows[1]
	want := []string{"Rang", "Matricule", "Élève", "Français", "Mathématiques", "Moyenne", "Appréciation"}
	if len(header) != len(want) {
		t.Fatalf("表头列数不正确: %v", header)
	}
	for i := range want {
		if header[i] != want[i] {
			t.Errorf("第 %d 列期望 %s，实际 %s", i, want[i], header[i])
		}
	}
	if rows[2][0] != "1" || rows[2][1] != "M002" {
		t.Errorf("第一行应为排名第一的 Fall，实际 %v", rows[2])
	}
}
