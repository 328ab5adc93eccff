package dto

// ── 课程模块 DTO ──

// CreateCourseRequest 创建课程请求
// TermID 为空时使用当前学期
type CreateCourseRequest struct {
	ClasseID     string `json:"classe_id"     binding:"required,uuid"`
	MatiereID    string `json:"matiere_id"    binding:"required,uuid"`
	ProfesseurID string `json:"professeur_id" binding:"required,uuid"`
	TermID       string `json:"term_id"       binding:"omitempty,uuid"`
	Salle        string `json:"salle"         binding:"required,max=50"`
	Jour         *int   `json:"jour"          binding:"required,weekday"`
	HeureDebut   *int   `json:"heure_debut"   binding:"required,min=0"`
	Duree        int    `json:"duree"         binding:"required,min=1"`
}

// UpdateCourseRequest 更新课程请求（仅更新非空字段）
type UpdateCourseRequest struct {
	ClasseID     *string `json:"classe_id"     binding:"omitempty,uuid"`
	MatiereID    *string `json:"matiere_id"    binding:"omitempty,uuid"`
	ProfesseurID *string `json:"professeur_id" binding:"omitempty,uuid"`
	Salle        *string `json:"salle"         binding:"omitempty,max=50"`
	Jour         *int    `json:"jour"          binding:"omitempty,weekday"`
	HeureDebut   *int    `json:"heure_debut"   binding:"omitempty,min=0"`
	Duree        *int    `json:"duree"         binding:"omitempty,min=1"`
}

// CourseListRequest 课程查询参数
type CourseListRequest struct {
	TermID       string `form:"term_id"       binding:"omitempty,uuid"`
	ClasseID     string `form:"classe_id"     binding:"omitempty,uuid"`
	ProfesseurID string `form:"professeur_id" binding:"omitempty,uuid"`
	Salle        string `form:"salle"         binding:"omitempty,max=50"`
	Jour         *int   `form:"jour"          binding:"omitempty,weekday"`
}

// CourseResponse 课程信息响应
type CourseResponse struct {
	ID           string `json:"id"`
	ClasseID     string `json:"classe_id"`
	Classe       string `json:"classe,omitempty"`
	MatiereID    string `json:"matiere_id"`
	Matiere      string `json:"matiere,omitempty"`
	ProfesseurID string `json:"professeur_id"`
	Professeur   string `json:"professeur,omitempty"`
	TermID       string `json:"term_id"`
	Salle        string `json:"salle"`
	Jour         int    `json:"jour"`
	HeureDebut   int    `json:"heure_debut"`
	Duree        int    `json:"duree"`
}

// CourseConflictItem 单条冲突（维度：salle | professeur | classe）
type CourseConflictItem struct {
	Dimension string         `json:"dimension"`
	Cours     CourseResponse `json:"cours"`
}

// CheckCourseResponse 冲突预检结果
type CheckCourseResponse struct {
	Conflict  bool                 `json:"conflict"`
	Conflicts []CourseConflictItem `json:"conflicts"`
}
