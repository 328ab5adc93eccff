package service

import (
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"edusen/backend/config"
	"edusen/backend/internal/model"
	"edusen/backend/internal/repository"
)

// school 测试用的最小学校数据
type school struct {
	repo *repository.Repository
	db   *memDB
	pub  *mockPublisher

	term     *model.Term
	class    *model.Class
	maths    *model.Subject // 系数 3
	francais *model.Subject // 系数 1
	teacher  *model.Teacher
	students []*model.Student
}

func testGrid() *config.TimetableConfig {
	return &config.TimetableConfig{DaysPerWeek: 6, SlotsPerDay: 10, FirstSlotHour: 8, SlotMinutes: 60}
}

func mustHash(t *testing.T, pw string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt 失败: %v", err)
	}
	return string(h)
}

// newSchool 一个激活学期、一个班级、两门科目、一名教师、三名有账号的学生
func newSchool(t *testing.T) *school {
	t.Helper()
	repo, db := newTestRepo()
	s := &school{repo: repo, db: db, pub: &mockPublisher{}}

	s.term = &model.Term{
		TermID:        "term-1",
		Nom:           "Semestre 1",
		AnneeScolaire: "2025-2026",
		StartDate:     time.Date(2025, 10, 1, 0, 0, 0, 0, time.Local), // 周三
		EndDate:       time.Date(2026, 2, 15, 0, 0, 0, 0, time.Local),
		IsActive:      true,
	}
	db.terms[s.term.TermID] = s.term

	s.class = &model.Class{ClassID: "class-6a", Nom: "6eA", Niveau: "6e", AnneeScolaire: "2025-2026", Capacite: 40}
	db.classes[s.class.ClassID] = s.class

	s.maths = &model.Subject{SubjectID: "sub-maths", Nom: "Mathématiques", Code: "MATH", Coefficient: 3}
	s.francais = &model.Subject{SubjectID: "sub-fr", Nom: "Français", Code: "FR", Coefficient: 1}
	db.subjects[s.maths.SubjectID] = s.maths
	db.subjects[s.francais.SubjectID] = s.francais

	db.users["user-prof"] = &model.User{
		UserID: "user-prof", Email: "diop@ecole.sn", PasswordHash: mustHash(t, "password123"),
		Role: model.RoleProfesseur, Nom: "Diop", Prenom: "Awa", IsActive: true,
	}
	s.teacher = &model.Teacher{TeacherID: "prof-1", UserID: "user-prof", Nom: "Diop", Prenom: "Awa", Email: "diop@ecole.sn"}
	db.teachers[s.teacher.TeacherID] = s.teacher

	for i, name := range []string{"Ndiaye", "Fall", "Sow"} {
		userID := "user-el-" + name
		db.users[userID] = &model.User{
			UserID: userID, Email: strings.ToLower(name) + "@eleve.sn", PasswordHash: "x",
			Role: model.RoleEleve, Nom: name, Prenom: "Eleve", IsActive: true,
		}
		st := &model.Student{
			StudentID: "el-" + name,
			Matricule: "M00" + string(rune('1'+i)),
			Nom:       name,
			Prenom:    "Eleve",
			Sexe:      "M",
			ClassID:   s.class.ClassID,
			UserID:    &userID,
		}
		db.students[st.StudentID] = st
		s.students = append(s.students, st)
	}
	return s
}

func (s *school) notifier() NotificationService {
	return NewNotificationService(s.repo, s.pub, zap.NewNop())
}

// addCourse 直接写入课程
func (s *school) addCourse(id, subjectID string, jour, start, duree int, salle string) *model.Course {
	c := &model.Course{
		CourseID: id, ClassID: s.class.ClassID, SubjectID: subjectID, TeacherID: s.teacher.TeacherID,
		TermID: s.term.TermID, Salle: salle, Jour: jour, HeureDebut: start, Duree: duree,
	}
	s.db.courses[id] = c
	return c
}

// addGrade 直接写入成绩
func (s *school) addGrade(studentID, subjectID, typ string, valeur float64) {
	g := &model.Grade{
		GradeID: model.NewID(), StudentID: studentID, SubjectID: subjectID,
		TermID: s.term.TermID, Type: typ, Valeur: valeur,
	}
	s.db.grades[g.GradeID] = g
}

func ptr[T any](v T) *T { return &v }
