package dto

import "errors"

// ── 课表模块 DTO ──

// TimetableRequest 课表查询参数（classe_id / professeur_id / salle 三选一）
type TimetableRequest struct {
	TermID       string `form:"term_id"       binding:"omitempty,uuid"`
	ClasseID     string `form:"classe_id"     binding:"omitempty,uuid"`
	ProfesseurID string `form:"professeur_id" binding:"omitempty,uuid"`
	Salle        string `form:"salle"         binding:"omitempty,max=50"`
}

// Validate 校验选择器
func (r *TimetableRequest) Validate() error {
	n := 0
	for _, s := range []string{r.ClasseID, r.ProfesseurID, r.Salle} {
		if s != "" {
			n++
		}
	}
	if n != 1 {
		return errors.New("classe_id、professeur_id、salle 必须且只能指定一个")
	}
	return nil
}

// TimetableResponse 周课表
type TimetableResponse struct {
	TermID string         `json:"term_id"`
	Titre  string         `json:"titre"`
	Jours  []TimetableDay `json:"jours"`
}

// TimetableDay 一天的课表
type TimetableDay struct {
	Jour     int             `json:"jour"`
	Nom      string          `json:"nom"`
	Creneaux []TimetableSlot `json:"creneaux"`
}

// TimetableSlot 一节课的格子
type TimetableSlot struct {
	Index int              `json:"index"`
	Debut string           `json:"debut"` // "08:00"
	Fin   string           `json:"fin"`
	Cours []CourseResponse `json:"cours"`
}
