package dto

// ── 成绩模块 DTO ──

// CreateGradeRequest 录入成绩请求
// TermID 为空时使用当前学期
type CreateGradeRequest struct {
	EleveID     string   `json:"eleve_id"    binding:"required,uuid"`
	MatiereID   string   `json:"matiere_id"  binding:"required,uuid"`
	TermID      string   `json:"term_id"     binding:"omitempty,uuid"`
	Type        string   `json:"type"        binding:"required,oneof=devoir composition"`
	Valeur      *float64 `json:"valeur"      binding:"required,score"`
	Commentaire string   `json:"commentaire" binding:"omitempty,max=255"`
}

// UpdateGradeRequest 修改成绩请求
type UpdateGradeRequest struct {
	Valeur      *float64 `json:"valeur"      binding:"omitempty,score"`
	Commentaire *string  `json:"commentaire" binding:"omitempty,max=255"`
}

// GradeListRequest 成绩查询参数
type GradeListRequest struct {
	PaginationRequest
	EleveID   string `form:"eleve_id"   binding:"omitempty,uuid"`
	MatiereID string `form:"matiere_id" binding:"omitempty,uuid"`
	TermID    string `form:"term_id"    binding:"omitempty,uuid"`
	ClasseID  string `form:"classe_id"  binding:"omitempty,uuid"`
}

// GradeResponse 成绩响应
type GradeResponse struct {
	ID          string  `json:"id"`
	EleveID     string  `json:"eleve_id"`
	MatiereID   string  `json:"matiere_id"`
	Matiere     string  `json:"matiere,omitempty"`
	TermID      string  `json:"term_id"`
	Type        string  `json:"type"`
	Valeur      float64 `json:"valeur"`
	Commentaire string  `json:"commentaire"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

// AveragesRequest 平均分查询参数
type AveragesRequest struct {
	EleveID string `form:"eleve_id" binding:"required,uuid"`
	TermID  string `form:"term_id"  binding:"omitempty,uuid"`
}

// SubjectAverageResponse 单科平均分
// Moyenne 为空表示评估不完整
type SubjectAverageResponse struct {
	MatiereID   string   `json:"matiere_id"`
	Matiere     string   `json:"matiere"`
	Coefficient float64  `json:"coefficient"`
	Devoir      *float64 `json:"devoir,omitempty"`
	Composition *float64 `json:"composition,omitempty"`
	Moyenne     *float64 `json:"moyenne,omitempty"`
	Complet     bool     `json:"complet"`
}

// AveragesResponse 学生学期平均分
type AveragesResponse struct {
	EleveID         string                   `json:"eleve_id"`
	TermID          string                   `json:"term_id"`
	Matieres        []SubjectAverageResponse `json:"matieres"`
	MoyenneGenerale float64                  `json:"moyenne_generale"`
	Complet         bool                     `json:"complet"`
}
