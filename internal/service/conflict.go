package service

import (
	"errors"
	"fmt"
	"strings"

	"edusen/backend/internal/model"
)

// 冲突维度
const (
	ConflictSalle      = "salle"
	ConflictProfesseur = "professeur"
	ConflictClasse     = "classe"
)

// ErrCourseConflict 课程时间冲突（errors.Is 判定用）
var ErrCourseConflict = errors.New("课程时间冲突")

// CourseConflict 单条冲突
type CourseConflict struct {
	Dimension string
	Course    model.Course
}

// CourseConflictError 携带全部冲突课程的错误
type CourseConflictError struct {
	Conflicts []CourseConflict
}

func (e *CourseConflictError) Error() string {
	parts := make([]string, 0, len(e.Conflicts))
	for _, c := range e.Conflicts {
		parts = append(parts, fmt.Sprintf("%s(jour=%d, %d-%d)",
			c.Dimension, c.Course.Jour, c.Course.HeureDebut, c.Course.End()))
	}
	return ErrCourseConflict.Error() + ": " + strings.Join(parts, ", ")
}

// Is 使 errors.Is(err, ErrCourseConflict) 成立
func (e *CourseConflictError) Is(target error) bool {
	return target == ErrCourseConflict
}

// overlaps 同一天且半开区间 [start, start+duree) 相交
func overlaps(a, b *model.Course) bool {
	return a.Jour == b.Jour &&
		a.HeureDebut < b.HeureDebut+b.Duree &&
		b.HeureDebut < a.HeureDebut+a.Duree
}

func sameRoom(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// HasRoomConflict 候选课程与已有课程是否在同一教室时间重叠
func HasRoomConflict(candidate *model.Course, existing []model.Course) bool {
	for i := range existing {
		if sameRoom(candidate.Salle, existing[i].Salle) && overlaps(candidate, &existing[i]) {
			return true
		}
	}
	return false
}

// HasTeacherConflict 候选课程与已有课程是否由同一教师在重叠时间授课
func HasTeacherConflict(candidate *model.Course, existing []model.Course) bool {
	for i := range existing {
		if candidate.TeacherID == existing[i].TeacherID && overlaps(candidate, &existing[i]) {
			return true
		}
	}
	return false
}

// HasClassConflict 候选课程与已有课程是否为同一班级在重叠时间上课
func HasClassConflict(candidate *model.Course, existing []model.Course) bool {
	for i := range existing {
		if candidate.ClassID == existing[i].ClassID && overlaps(candidate, &existing[i]) {
			return true
		}
	}
	return false
}

// FindConflicts 列出全部冲突，跳过候选课程自身（更新场景）
// 同一门已有课程在多个维度冲突时按维度各记一条
func FindConflicts(candidate *model.Course, existing []model.Course) []CourseConflict {
	var conflicts []CourseConflict
	for i := range existing {
		e := existing[i]
		if candidate.CourseID != "" && e.CourseID == candidate.CourseID {
			continue
		}
		one := []model.Course{e}
		if HasRoomConflict(candidate, one) {
			conflicts = append(conflicts, CourseConflict{Dimension: ConflictSalle, Course: e})
		}
		if HasTeacherConflict(candidate, one) {
			conflicts = append(conflicts, CourseConflict{Dimension: ConflictProfesseur, Course: e})
		}
		if HasClassConflict(candidate, one) {
			conflicts = append(conflicts, CourseConflict{Dimension: ConflictClasse, Course: e})
		}
	}
	return conflicts
}
