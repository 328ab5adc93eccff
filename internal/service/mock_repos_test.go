package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"edusen/backend/internal/model"
	"edusen/backend/internal/repository"
)

// ── 内存数据集 ──
// 所有 mock repository 共享同一份数据，以便模拟预加载与联表过滤

type memDB struct {
	users         map[string]*model.User
	classes       map[string]*model.Class
	subjects      map[string]*model.Subject
	terms         map[string]*model.Term
	students      map[string]*model.Student
	teachers      map[string]*model.Teacher
	courses       map[string]*model.Course
	grades        map[string]*model.Grade
	bulletins     map[string]*model.Bulletin
	notifications map[string]*model.Notification

	// 已加锁的学期 ID（按调用顺序）
	termLocks []string

	// 按 "User.Delete" 这样的键注入错误
	fail map[string]error
}

func newMemDB() *memDB {
	return &memDB{
		users:         make(map[string]*model.User),
		classes:       make(map[string]*model.Class),
		subjects:      make(map[string]*model.Subject),
		terms:         make(map[string]*model.Term),
		students:      make(map[string]*model.Student),
		teachers:      make(map[string]*model.Teacher),
		courses:       make(map[string]*model.Course),
		grades:        make(map[string]*model.Grade),
		bulletins:     make(map[string]*model.Bulletin),
		notifications: make(map[string]*model.Notification),
		fail:          make(map[string]error),
	}
}

// newTestRepo 组装未绑定数据库的 Repository
func newTestRepo() (*repository.Repository, *memDB) {
	db := newMemDB()
	return &repository.Repository{
		User:         &mockUserRepo{db},
		Class:        &mockClassRepo{db},
		Subject:      &mockSubjectRepo{db},
		Term:         &mockTermRepo{db},
		Student:      &mockStudentRepo{db},
		Teacher:      &mockTeacherRepo{db},
		Course:       &mockCourseRepo{db},
		Grade:        &mockGradeRepo{db},
		Bulletin:     &mockBulletinRepo{db},
		Notification: &mockNotificationRepo{db},
	}, db
}

func fillID(id *string) {
	if *id == "" {
		*id = model.NewID()
	}
}

func paginate[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := offset + limit
	if limit <= 0 || end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

// ── Mock UserRepository ──

type mockUserRepo struct{ db *memDB }

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if err := m.db.fail["User.Create"]; err != nil {
		return err
	}
	for _, u := range m.db.users {
		if u.Email == user.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	fillID(&user.UserID)
	c := *user
	m.db.users[user.UserID] = &c
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.db.users[id]; ok {
		c := *u
		return &c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.db.users {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	if err := m.db.fail["User.Update"]; err != nil {
		return err
	}
	c := *user
	m.db.users[user.UserID] = &c
	return nil
}

func (m *mockUserRepo) UpdateLastLogin(_ context.Context, id string, at time.Time) error {
	if u, ok := m.db.users[id]; ok {
		u.LastLoginAt = &at
	}
	return nil
}

func (m *mockUserRepo) Delete(_ context.Context, id string) error {
	if err := m.db.fail["User.Delete"]; err != nil {
		return err
	}
	delete(m.db.users, id)
	return nil
}

func (m *mockUserRepo) ListActiveIDsByRole(_ context.Context, role string) ([]string, error) {
	var ids []string
	for _, u := range m.db.users {
		if u.Role == role && u.IsActive {
			ids = append(ids, u.UserID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// ── Mock ClassRepository ──

type mockClassRepo struct{ db *memDB }

func (m *mockClassRepo) Create(_ context.Context, class *model.Class) error {
	fillID(&class.ClassID)
	c := *class
	m.db.classes[class.ClassID] = &c
	return nil
}

func (m *mockClassRepo) GetByID(_ context.Context, id string) (*model.Class, error) {
	if c, ok := m.db.classes[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockClassRepo) ListByNom(_ context.Context, nom string) ([]model.Class, error) {
	var out []model.Class
	for _, c := range m.db.classes {
		if c.Nom == nom {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (m *mockClassRepo) List(_ context.Context, annee string) ([]model.Class, error) {
	var out []model.Class
	for _, c := range m.db.classes {
		if annee == "" || c.AnneeScolaire == annee {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Nom < out[j].Nom })
	return out, nil
}

func (m *mockClassRepo) Update(_ context.Context, class *model.Class) error {
	c := *class
	m.db.classes[class.ClassID] = &c
	return nil
}

func (m *mockClassRepo) Delete(_ context.Context, id string) error {
	delete(m.db.classes, id)
	return nil
}

func (m *mockClassRepo) ExistsByNom(_ context.Context, nom, annee, excludeID string) (bool, error) {
	for _, c := range m.db.classes {
		if c.Nom == nom && c.AnneeScolaire == annee && c.ClassID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

// ── Mock SubjectRepository ──

type mockSubjectRepo struct{ db *memDB }

func (m *mockSubjectRepo) Create(_ context.Context, subject *model.Subject) error {
	fillID(&subject.SubjectID)
	c := *subject
	m.db.subjects[subject.SubjectID] = &c
	return nil
}

func (m *mockSubjectRepo) GetByID(_ context.Context, id string) (*model.Subject, error) {
	if s, ok := m.db.subjects[id]; ok {
		c := *s
		return &c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSubjectRepo) List(_ context.Context) ([]model.Subject, error) {
	var out []model.Subject
	for _, s := range m.db.subjects {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Nom < out[j].Nom })
	return out, nil
}

func (m *mockSubjectRepo) Update(_ context.Context, subject *model.Subject) error {
	c := *subject
	m.db.subjects[subject.SubjectID] = &c
	return nil
}

func (m *mockSubjectRepo) Delete(_ context.Context, id string) error {
	delete(m.db.subjects, id)
	return nil
}

func (m *mockSubjectRepo) ExistsByNom(_ context.Context, nom, excludeID string) (bool, error) {
	for _, s := range m.db.subjects {
		if s.Nom == nom && s.SubjectID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

// ── Mock TermRepository ──

type mockTermRepo struct{ db *memDB }

func (m *mockTermRepo) Create(_ context.Context, term *model.Term) error {
	fillID(&term.TermID)
	c := *term
	m.db.terms[term.TermID] = &c
	return nil
}

func (m *mockTermRepo) LockForUpdate(_ context.Context, id string) error {
	if _, ok := m.db.terms[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	m.db.termLocks = append(m.db.termLocks, id)
	return nil
}

func (m *mockTermRepo) GetByID(_ context.Context, id string) (*model.Term, error) {
	if t, ok := m.db.terms[id]; ok {
		c := *t
		return &c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTermRepo) GetCurrent(_ context.Context) (*model.Term, error) {
	for _, t := range m.db.terms {
		if t.IsActive {
			c := *t
			return &c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTermRepo) List(_ context.Context) ([]model.Term, error) {
	var out []model.Term
	for _, t := range m.db.terms {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.After(out[j].StartDate) })
	return out, nil
}

func (m *mockTermRepo) Update(_ context.Context, term *model.Term) error {
	c := *term
	m.db.terms[term.TermID] = &c
	return nil
}

func (m *mockTermRepo) Delete(_ context.Context, id string) error {
	delete(m.db.terms, id)
	return nil
}

func (m *mockTermRepo) ClearActive(_ context.Context) error {
	for _, t := range m.db.terms {
		t.IsActive = false
	}
	return nil
}

func (m *mockTermRepo) SetActive(_ context.Context, id string) error {
	if t, ok := m.db.terms[id]; ok {
		t.IsActive = true
	}
	return nil
}

// ── Mock StudentRepository ──

type mockStudentRepo struct{ db *memDB }

func (m *mockStudentRepo) withClass(s *model.Student) model.Student {
	c := *s
	if cl, ok := m.db.classes[s.ClassID]; ok {
		cp := *cl
		c.Class = &cp
	}
	return c
}

func (m *mockStudentRepo) Create(_ context.Context, student *model.Student) error {
	if err := m.db.fail["Student.Create"]; err != nil {
		return err
	}
	fillID(&student.StudentID)
	c := *student
	c.Class = nil
	m.db.students[student.StudentID] = &c
	return nil
}

func (m *mockStudentRepo) CreateBatch(ctx context.Context, students []model.Student) error {
	for i := range students {
		if err := m.Create(ctx, &students[i]); err != nil {
			return err
		}
	}
	return nil
}

func (m *mockStudentRepo) GetByID(_ context.Context, id string) (*model.Student, error) {
	if s, ok := m.db.students[id]; ok {
		c := m.withClass(s)
		return &c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStudentRepo) GetByUserID(_ context.Context, userID string) (*model.Student, error) {
	for _, s := range m.db.students {
		if s.UserID != nil && *s.UserID == userID {
			c := m.withClass(s)
			return &c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStudentRepo) List(_ context.Context, f repository.StudentFilter, offset, limit int) ([]model.Student, int64, error) {
	var out []model.Student
	kw := strings.ToLower(f.Keyword)
	for _, s := range m.db.students {
		if f.ClassID != "" && s.ClassID != f.ClassID {
			continue
		}
		if f.Sexe != "" && s.Sexe != f.Sexe {
			continue
		}
		if kw != "" && !strings.Contains(strings.ToLower(s.Nom+" "+s.Prenom+" "+s.Matricule), kw) {
			continue
		}
		out = append(out, m.withClass(s))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Matricule < out[j].Matricule })
	return paginate(out, offset, limit), int64(len(out)), nil
}

func (m *mockStudentRepo) ListByClass(_ context.Context, classID string) ([]model.Student, error) {
	var out []model.Student
	for _, s := range m.db.students {
		if s.ClassID == classID {
			out = append(out, m.withClass(s))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Matricule < out[j].Matricule })
	return out, nil
}

func (m *mockStudentRepo) Update(_ context.Context, student *model.Student) error {
	c := *student
	c.Class = nil
	m.db.students[student.StudentID] = &c
	return nil
}

func (m *mockStudentRepo) Delete(_ context.Context, id string) error {
	delete(m.db.students, id)
	return nil
}

func (m *mockStudentRepo) CountByClass(_ context.Context, classID string) (int64, error) {
	var n int64
	for _, s := range m.db.students {
		if s.ClassID == classID {
			n++
		}
	}
	return n, nil
}

func (m *mockStudentRepo) ExistingMatricules(_ context.Context, matricules []string, excludeID string) ([]string, error) {
	want := make(map[string]bool, len(matricules))
	for _, mat := range matricules {
		want[mat] = true
	}
	var out []string
	for _, s := range m.db.students {
		if want[s.Matricule] && s.StudentID != excludeID {
			out = append(out, s.Matricule)
		}
	}
	return out, nil
}

// ── Mock TeacherRepository ──

type mockTeacherRepo struct{ db *memDB }

func (m *mockTeacherRepo) Create(_ context.Context, teacher *model.Teacher) error {
	if err := m.db.fail["Teacher.Create"]; err != nil {
		return err
	}
	fillID(&teacher.TeacherID)
	c := *teacher
	m.db.teachers[teacher.TeacherID] = &c
	return nil
}

func (m *mockTeacherRepo) GetByID(_ context.Context, id string) (*model.Teacher, error) {
	if t, ok := m.db.teachers[id]; ok {
		c := *t
		return &c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTeacherRepo) GetByUserID(_ context.Context, userID string) (*model.Teacher, error) {
	for _, t := range m.db.teachers {
		if t.UserID == userID {
			c := *t
			return &c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTeacherRepo) List(_ context.Context, keyword string, offset, limit int) ([]model.Teacher, int64, error) {
	var out []model.Teacher
	kw := strings.ToLower(keyword)
	for _, t := range m.db.teachers {
		if kw != "" && !strings.Contains(strings.ToLower(t.Nom+" "+t.Prenom+" "+t.Email), kw) {
			continue
		}
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Nom < out[j].Nom })
	return paginate(out, offset, limit), int64(len(out)), nil
}

func (m *mockTeacherRepo) Update(_ context.Context, teacher *model.Teacher) error {
	c := *teacher
	m.db.teachers[teacher.TeacherID] = &c
	return nil
}

func (m *mockTeacherRepo) Delete(_ context.Context, id string) error {
	delete(m.db.teachers, id)
	return nil
}

// ── Mock CourseRepository ──

type mockCourseRepo struct{ db *memDB }

// preload 模拟 Preload("Class", "Subject", "Teacher")
func (m *mockCourseRepo) preload(c *model.Course) model.Course {
	out := *c
	if v, ok := m.db.classes[c.ClassID]; ok {
		cp := *v
		out.Class = &cp
	}
	if v, ok := m.db.subjects[c.SubjectID]; ok {
		cp := *v
		out.Subject = &cp
	}
	if v, ok := m.db.teachers[c.TeacherID]; ok {
		cp := *v
		out.Teacher = &cp
	}
	return out
}

func (m *mockCourseRepo) match(c *model.Course, f repository.CourseFilter) bool {
	return (f.TermID == "" || c.TermID == f.TermID) &&
		(f.ClassID == "" || c.ClassID == f.ClassID) &&
		(f.TeacherID == "" || c.TeacherID == f.TeacherID) &&
		(f.SubjectID == "" || c.SubjectID == f.SubjectID) &&
		(f.Salle == "" || strings.EqualFold(strings.TrimSpace(c.Salle), strings.TrimSpace(f.Salle))) &&
		(f.Jour == nil || c.Jour == *f.Jour)
}

func (m *mockCourseRepo) Create(_ context.Context, course *model.Course) error {
	fillID(&course.CourseID)
	c := *course
	c.Class, c.Subject, c.Teacher = nil, nil, nil
	m.db.courses[course.CourseID] = &c
	return nil
}

func (m *mockCourseRepo) GetByID(_ context.Context, id string) (*model.Course, error) {
	if c, ok := m.db.courses[id]; ok {
		out := m.preload(c)
		return &out, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCourseRepo) List(_ context.Context, f repository.CourseFilter) ([]model.Course, error) {
	var out []model.Course
	for _, c := range m.db.courses {
		if m.match(c, f) {
			out = append(out, m.preload(c))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Jour != out[j].Jour {
			return out[i].Jour < out[j].Jour
		}
		return out[i].HeureDebut < out[j].HeureDebut
	})
	return out, nil
}

func (m *mockCourseRepo) ListByTermDay(ctx context.Context, termID string, jour int) ([]model.Course, error) {
	return m.List(ctx, repository.CourseFilter{TermID: termID, Jour: &jour})
}

func (m *mockCourseRepo) Update(_ context.Context, course *model.Course) error {
	c := *course
	c.Class, c.Subject, c.Teacher = nil, nil, nil
	m.db.courses[course.CourseID] = &c
	return nil
}

func (m *mockCourseRepo) Delete(_ context.Context, id string) error {
	delete(m.db.courses, id)
	return nil
}

func (m *mockCourseRepo) Count(_ context.Context, f repository.CourseFilter) (int64, error) {
	var n int64
	for _, c := range m.db.courses {
		if m.match(c, f) {
			n++
		}
	}
	return n, nil
}

// ── Mock GradeRepository ──

type mockGradeRepo struct{ db *memDB }

func (m *mockGradeRepo) match(g *model.Grade, f repository.GradeFilter) bool {
	if f.StudentID != "" && g.StudentID != f.StudentID {
		return false
	}
	if f.SubjectID != "" && g.SubjectID != f.SubjectID {
		return false
	}
	if f.TermID != "" && g.TermID != f.TermID {
		return false
	}
	if f.ClassID != "" {
		st, ok := m.db.students[g.StudentID]
		if !ok || st.ClassID != f.ClassID {
			return false
		}
	}
	return true
}

func (m *mockGradeRepo) withSubject(g *model.Grade) model.Grade {
	c := *g
	if s, ok := m.db.subjects[g.SubjectID]; ok {
		cp := *s
		c.Subject = &cp
	}
	return c
}

// Create 模拟唯一键 (student, subject, term, type)
func (m *mockGradeRepo) Create(_ context.Context, grade *model.Grade) error {
	for _, g := range m.db.grades {
		if g.StudentID == grade.StudentID && g.SubjectID == grade.SubjectID &&
			g.TermID == grade.TermID && g.Type == grade.Type {
			return gorm.ErrDuplicatedKey
		}
	}
	fillID(&grade.GradeID)
	c := *grade
	c.Subject = nil
	m.db.grades[grade.GradeID] = &c
	return nil
}

func (m *mockGradeRepo) GetByID(_ context.Context, id string) (*model.Grade, error) {
	if g, ok := m.db.grades[id]; ok {
		c := m.withSubject(g)
		return &c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockGradeRepo) CountEvaluations(_ context.Context, studentID, subjectID, termID string) (map[string]int64, error) {
	counts := make(map[string]int64)
	for _, g := range m.db.grades {
		if g.StudentID == studentID && g.SubjectID == subjectID && g.TermID == termID {
			counts[g.Type]++
		}
	}
	return counts, nil
}

func (m *mockGradeRepo) List(ctx context.Context, f repository.GradeFilter, offset, limit int) ([]model.Grade, int64, error) {
	all, _ := m.ListAll(ctx, f)
	for i := range all {
		all[i] = m.withSubject(&all[i])
	}
	return paginate(all, offset, limit), int64(len(all)), nil
}

func (m *mockGradeRepo) ListAll(_ context.Context, f repository.GradeFilter) ([]model.Grade, error) {
	var out []model.Grade
	for _, g := range m.db.grades {
		if m.match(g, f) {
			out = append(out, *g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GradeID < out[j].GradeID })
	return out, nil
}

func (m *mockGradeRepo) Update(_ context.Context, grade *model.Grade) error {
	c := *grade
	c.Subject = nil
	m.db.grades[grade.GradeID] = &c
	return nil
}

func (m *mockGradeRepo) Delete(_ context.Context, id string) error {
	delete(m.db.grades, id)
	return nil
}

func (m *mockGradeRepo) DeleteByStudent(_ context.Context, studentID string) error {
	for id, g := range m.db.grades {
		if g.StudentID == studentID {
			delete(m.db.grades, id)
		}
	}
	return nil
}

func (m *mockGradeRepo) CountBySubject(_ context.Context, subjectID string) (int64, error) {
	var n int64
	for _, g := range m.db.grades {
		if g.SubjectID == subjectID {
			n++
		}
	}
	return n, nil
}

func (m *mockGradeRepo) CountByTerm(_ context.Context, termID string) (int64, error) {
	var n int64
	for _, g := range m.db.grades {
		if g.TermID == termID {
			n++
		}
	}
	return n, nil
}

// ── Mock BulletinRepository ──

type mockBulletinRepo struct{ db *memDB }

func (m *mockBulletinRepo) withStudent(b *model.Bulletin) model.Bulletin {
	c := *b
	if s, ok := m.db.students[b.StudentID]; ok {
		cp := *s
		c.Student = &cp
	}
	return c
}

// Upsert 冲突时保留原主键，其余列整体覆盖
func (m *mockBulletinRepo) Upsert(_ context.Context, b *model.Bulletin) error {
	for _, old := range m.db.bulletins {
		if old.StudentID == b.StudentID && old.TermID == b.TermID {
			id := old.BulletinID
			*old = *b
			old.BulletinID, old.Student = id, nil
			return nil
		}
	}
	fillID(&b.BulletinID)
	c := *b
	c.Student = nil
	m.db.bulletins[b.BulletinID] = &c
	return nil
}

func (m *mockBulletinRepo) GetByID(_ context.Context, id string) (*model.Bulletin, error) {
	if b, ok := m.db.bulletins[id]; ok {
		c := m.withStudent(b)
		return &c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockBulletinRepo) GetByStudentTerm(_ context.Context, studentID, termID string) (*model.Bulletin, error) {
	for _, b := range m.db.bulletins {
		if b.StudentID == studentID && b.TermID == termID {
			c := m.withStudent(b)
			return &c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockBulletinRepo) List(_ context.Context, f repository.BulletinFilter, offset, limit int) ([]model.Bulletin, int64, error) {
	var out []model.Bulletin
	for _, b := range m.db.bulletins {
		if (f.StudentID == "" || b.StudentID == f.StudentID) &&
			(f.ClassID == "" || b.ClassID == f.ClassID) &&
			(f.TermID == "" || b.TermID == f.TermID) {
			out = append(out, m.withStudent(b))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Rang < out[j].Rang })
	return paginate(out, offset, limit), int64(len(out)), nil
}

func (m *mockBulletinRepo) ListByClassTerm(ctx context.Context, classID, termID string) ([]model.Bulletin, error) {
	out, _, err := m.List(ctx, repository.BulletinFilter{ClassID: classID, TermID: termID}, 0, 0)
	return out, err
}

func (m *mockBulletinRepo) UpdateAppreciation(_ context.Context, id, appreciation, updatedBy string) error {
	if b, ok := m.db.bulletins[id]; ok {
		b.Appreciation = appreciation
		b.AppreciationManuelle = true
		b.UpdatedBy = &updatedBy
	}
	return nil
}

func (m *mockBulletinRepo) Delete(_ context.Context, id string) error {
	delete(m.db.bulletins, id)
	return nil
}

func (m *mockBulletinRepo) DeleteByStudent(_ context.Context, studentID string) error {
	for id, b := range m.db.bulletins {
		if b.StudentID == studentID {
			delete(m.db.bulletins, id)
		}
	}
	return nil
}

// ── Mock NotificationRepository ──

type mockNotificationRepo struct{ db *memDB }

func (m *mockNotificationRepo) Create(_ context.Context, n *model.Notification) error {
	if err := m.db.fail["Notification.Create"]; err != nil {
		return err
	}
	fillID(&n.NotificationID)
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	c := *n
	m.db.notifications[n.NotificationID] = &c
	return nil
}

func (m *mockNotificationRepo) CreateBatch(ctx context.Context, list []model.Notification) error {
	for i := range list {
		if err := m.Create(ctx, &list[i]); err != nil {
			return err
		}
	}
	return nil
}

func (m *mockNotificationRepo) GetByID(_ context.Context, id string) (*model.Notification, error) {
	if n, ok := m.db.notifications[id]; ok {
		c := *n
		return &c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockNotificationRepo) List(_ context.Context, f repository.NotificationFilter, offset, limit int) ([]model.Notification, int64, error) {
	var out []model.Notification
	for _, n := range m.db.notifications {
		if f.UserID != "" && n.UserID != f.UserID {
			continue
		}
		if f.Type != "" && n.Type != f.Type {
			continue
		}
		if f.IsRead != nil && n.IsRead != *f.IsRead {
			continue
		}
		out = append(out, *n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return paginate(out, offset, limit), int64(len(out)), nil
}

func (m *mockNotificationRepo) CountUnread(_ context.Context, userID string) (int64, error) {
	var count int64
	for _, n := range m.db.notifications {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (m *mockNotificationRepo) MarkRead(_ context.Context, id string, at time.Time) error {
	if n, ok := m.db.notifications[id]; ok {
		n.IsRead = true
		n.ReadAt = &at
	}
	return nil
}

func (m *mockNotificationRepo) MarkAllRead(_ context.Context, userID string, at time.Time) (int64, error) {
	var count int64
	for _, n := range m.db.notifications {
		if n.UserID == userID && !n.IsRead {
			n.IsRead = true
			n.ReadAt = &at
			count++
		}
	}
	return count, nil
}

func (m *mockNotificationRepo) Delete(_ context.Context, id string) error {
	delete(m.db.notifications, id)
	return nil
}

// ── Mock Publisher ──

type publishedEvent struct {
	UserID    string
	EventType string
	Payload   interface{}
}

type mockPublisher struct {
	events []publishedEvent
}

func (p *mockPublisher) Publish(userID, eventType string, payload interface{}) {
	p.events = append(p.events, publishedEvent{UserID: userID, EventType: eventType, Payload: payload})
}
