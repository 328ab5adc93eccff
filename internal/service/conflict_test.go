package service

import (
	"errors"
	"testing"

	"edusen/backend/internal/model"
)

func slot(jour int, salle string, start, duree int) model.Course {
	return model.Course{Jour: jour, Salle: salle, HeureDebut: start, Duree: duree, TeacherID: "t-" + salle, ClassID: "c-" + salle}
}

func TestHasRoomConflict(t *testing.T) {
	tests := []struct {
		name      string
		candidate model.Course
		existing  []model.Course
		want      bool
	}{
		{"区间相交", slot(0, "S1", 1, 2), []model.Course{slot(0, "S1", 2, 1)}, true},
		{"首尾相接不冲突", slot(0, "S1", 1, 1), []model.Course{slot(0, "S1", 2, 1)}, false},
		{"不同教室", slot(0, "S1", 1, 2), []model.Course{slot(0, "S2", 1, 2)}, false},
		{"不同天", slot(1, "S1", 1, 2), []model.Course{slot(0, "S1", 1, 2)}, false},
		{"完全包含", slot(0, "S1", 2, 1), []model.Course{slot(0, "S1", 0, 5)}, true},
		{"教室名忽略大小写与空白", slot(0, " s1 ", 3, 1), []model.Course{slot(0, "S1", 3, 1)}, true},
		{"空集合", slot(0, "S1", 1, 2), nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HasRoomConflict(&tt.candidate, tt.existing); got != tt.want {
				t.Errorf("HasRoomConflict = %v，期望 %v", got, tt.want)
			}
		})
	}
}

func TestHasTeacherConflict(t *testing.T) {
	existing := []model.Course{{Jour: 2, Salle: "S1", HeureDebut: 3, Duree: 2, TeacherID: "prof-1", ClassID: "6A"}}

	sameTeacher := model.Course{Jour: 2, Salle: "S9", HeureDebut: 4, Duree: 1, TeacherID: "prof-1", ClassID: "5B"}
	if !HasTeacherConflict(&sameTeacher, existing) {
		t.Error("同一教师时间重叠应冲突")
	}
	if HasRoomConflict(&sameTeacher, existing) {
		t.Error("不同教室不应判定教室冲突")
	}

	other := model.Course{Jour: 2, Salle: "S9", HeureDebut: 4, Duree: 1, TeacherID: "prof-2", ClassID: "5B"}
	if HasTeacherConflict(&other, existing) {
		t.Error("不同教师不应冲突")
	}

	later := model.Course{Jour: 2, Salle: "S9", HeureDebut: 5, Duree: 1, TeacherID: "prof-1", ClassID: "5B"}
	if HasTeacherConflict(&later, existing) {
		t.Error("紧接其后的课程不应冲突")
	}
}

func TestHasClassConflict(t *testing.T) {
	existing := []model.Course{{Jour: 0, Salle: "S1", HeureDebut: 0, Duree: 2, TeacherID: "prof-1", ClassID: "6A"}}
	c := model.Course{Jour: 0, Salle: "S2", HeureDebut: 1, Duree: 1, TeacherID: "prof-2", ClassID: "6A"}
	if !HasClassConflict(&c, existing) {
		t.Error("同一班级时间重叠应冲突")
	}
}

// 性质：冲突 ⇔ 存在同日同教室且区间相交的课程
func TestHasRoomConflict_MatchesDefinition(t *testing.T) {
	rooms := []string{"S1", "S2"}
	for jour := 0; jour < 2; jour++ {
		for start := 0; start < 5; start++ {
			for duree := 1; duree <= 3; duree++ {
				for _, room := range rooms {
					c := slot(jour, room, start, duree)
					existing := []model.Course{slot(0, "S1", 2, 2)}
					e := existing[0]
					want := c.Jour == e.Jour && c.Salle == e.Salle &&
						c.HeureDebut < e.HeureDebut+e.Duree && e.HeureDebut < c.HeureDebut+c.Duree
					if got := HasRoomConflict(&c, existing); got != want {
						t.Fatalf("jour=%d room=%s start=%d duree=%d: got %v want %v", jour, room, start, duree, got, want)
					}
				}
			}
		}
	}
}

func TestFindConflicts(t *testing.T) {
	existing := []model.Course{
		{CourseID: "c1", Jour: 0, Salle: "S1", HeureDebut: 1, Duree: 2, TeacherID: "p1", ClassID: "6A"},
		{CourseID: "c2", Jour: 0, Salle: "S2", HeureDebut: 2, Duree: 1, TeacherID: "p2", ClassID: "5B"},
		{CourseID: "c3", Jour: 0, Salle: "S3", HeureDebut: 5, Duree: 1, TeacherID: "p1", ClassID: "6A"},
	}

	candidate := model.Course{Jour: 0, Salle: "S1", HeureDebut: 2, Duree: 1, TeacherID: "p2", ClassID: "4C"}
	conflicts := FindConflicts(&candidate, existing)

	dims := map[string]string{}
	for _, c := range conflicts {
		dims[c.Course.CourseID+"/"+c.Dimension] = c.Dimension
	}
	if len(conflicts) != 2 {
		t.Fatalf("期望 2 条冲突，实际 %d: %v", len(conflicts), dims)
	}
	if _, ok := dims["c1/salle"]; !ok {
		t.Error("缺少 c1 教室冲突")
	}
	if _, ok := dims["c2/professeur"]; !ok {
		t.Error("缺少 c2 教师冲突")
	}

	// 更新场景跳过自身
	self := existing[0]
	if got := FindConflicts(&self, existing); len(got) != 0 {
		t.Errorf("更新自身不应冲突，实际 %d 条", len(got))
	}

	err := error(&CourseConflictError{Conflicts: conflicts})
	if !errors.Is(err, ErrCourseConflict) {
		t.Error("CourseConflictError 应满足 errors.Is(ErrCourseConflict)")
	}
	var ce *CourseConflictError
	if !errors.As(err, &ce) || len(ce.Conflicts) != 2 {
		t.Error("errors.As 应取回冲突列表")
	}
}
