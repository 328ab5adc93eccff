package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"edusen/backend/internal/dto"
	"edusen/backend/internal/model"
)

func TestClassService_CreateAndGet(t *testing.T) {
	s := newSchool(t)
	svc := NewClassService(s.repo, zap.NewNop())
	ctx := context.Background()

	if _, err := svc.Create(ctx, &dto.CreateClassRequest{Nom: "6eA", Niveau: "6e", AnneeScolaire: "2025-2026"}, "admin-1"); !errors.Is(err, ErrClassNameExists) {
		t.Errorf("同学年同名班级期望 ErrClassNameExists，实际 %v", err)
	}
	// 不同学年允许同名
	if _, err := svc.Create(ctx, &dto.CreateClassRequest{Nom: "6eA", Niveau: "6e", AnneeScolaire: "2026-2027"}, "admin-1"); err != nil {
		t.Errorf("不同学年应允许同名: %v", err)
	}

	got, err := svc.GetByID(ctx, "class-6a")
	if err != nil {
		t.Fatalf("GetByID 应成功: %v", err)
	}
	if got.Effectif != 3 {
		t.Errorf("期望 effectif=3，实际 %d", got.Effectif)
	}
}

func TestClassService_Delete_InUse(t *testing.T) {
	s := newSchool(t)
	svc := NewClassService(s.repo, zap.NewNop())
	ctx := context.Background()

	if err := svc.Delete(ctx, "class-6a"); !errors.Is(err, ErrClassInUse) {
		t.Errorf("有学生时期望 ErrClassInUse，实际 %v", err)
	}

	s.db.classes["class-5b"] = &model.Class{ClassID: "class-5b", Nom: "5eB", AnneeScolaire: "2025-2026"}
	if err := svc.Delete(ctx, "class-5b"); err != nil {
		t.Errorf("空班级应可删除: %v", err)
	}
	if err := svc.Delete(ctx, "class-5b"); !errors.Is(err, ErrClassNotFound) {
		t.Errorf("期望 ErrClassNotFound，实际 %v", err)
	}
}

func TestSubjectService_DefaultCoefficient(t *testing.T) {
	s := newSchool(t)
	svc := NewSubjectService(s.repo, zap.NewNop())

	resp, err := svc.Create(context.Background(), &dto.CreateSubjectRequest{Nom: "Histoire-Géographie", Code: "HG"}, "admin-1")
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if resp.Coefficient != 1 {
		t.Errorf("期望默认系数 1，实际 %v", resp.Coefficient)
	}
	if _, err := svc.Create(context.Background(), &dto.CreateSubjectRequest{Nom: "Français"}, "admin-1"); !errors.Is(err, ErrSubjectNameExists) {
		t.Errorf("期望 ErrSubjectNameExists，实际 %v", err)
	}
}

func TestSubjectService_Delete_InUse(t *testing.T) {
	s := newSchool(t)
	svc := NewSubjectService(s.repo, zap.NewNop())
	ctx := context.Background()

	s.addCourse("c-1", s.maths.SubjectID, 0, 0, 1, "S1")
	s.addGrade("el-Fall", s.francais.SubjectID, model.GradeTypeDevoir, 10)

	for _, id := range []string{"sub-maths", "sub-fr"} {
		if err := svc.Delete(ctx, id); !errors.Is(err, ErrSubjectInUse) {
			t.Errorf("%s 期望 ErrSubjectInUse，实际 %v", id, err)
		}
	}

	s.db.subjects["sub-eps"] = &model.Subject{SubjectID: "sub-eps", Nom: "EPS", Coefficient: 1}
	if err := svc.Delete(ctx, "sub-eps"); err != nil {
		t.Errorf("未使用的科目应可删除: %v", err)
	}
}
