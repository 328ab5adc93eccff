package dto

import "errors"

// ── 成绩单模块 DTO ──

// GenerateBulletinRequest 生成成绩单请求（eleve_id 与 classe_id 二选一）
type GenerateBulletinRequest struct {
	EleveID  string `json:"eleve_id"  binding:"omitempty,uuid"`
	ClasseID string `json:"classe_id" binding:"omitempty,uuid"`
	TermID   string `json:"term_id"   binding:"omitempty,uuid"`
}

// Validate 校验 eleve_id 与 classe_id 互斥
func (r *GenerateBulletinRequest) Validate() error {
	if (r.EleveID == "") == (r.ClasseID == "") {
		return errors.New("eleve_id 与 classe_id 必须且只能指定一个")
	}
	return nil
}

// BulletinListRequest 成绩单查询参数
type BulletinListRequest struct {
	PaginationRequest
	EleveID  string `form:"eleve_id"  binding:"omitempty,uuid"`
	ClasseID string `form:"classe_id" binding:"omitempty,uuid"`
	TermID   string `form:"term_id"   binding:"omitempty,uuid"`
}

// UpdateBulletinRequest 修改评语请求
type UpdateBulletinRequest struct {
	Appreciation string `json:"appreciation" binding:"required,max=255"`
}

// ExportBulletinRequest 导出班级成绩单参数
type ExportBulletinRequest struct {
	ClasseID string `form:"classe_id" binding:"required,uuid"`
	TermID   string `form:"term_id"   binding:"omitempty,uuid"`
}

// BulletinLineResponse 成绩单单科行
type BulletinLineResponse struct {
	MatiereID     string   `json:"matiere_id"`
	Matiere       string   `json:"matiere"`
	Coefficient   float64  `json:"coefficient"`
	Devoir        *float64 `json:"devoir,omitempty"`
	Composition   *float64 `json:"composition,omitempty"`
	Moyenne       *float64 `json:"moyenne,omitempty"`
	MoyenneClasse *float64 `json:"moyenne_classe,omitempty"`
	Professeur    string   `json:"professeur"`
	Appreciation  string   `json:"appreciation"`
}

// BulletinResponse 成绩单响应
type BulletinResponse struct {
	ID                   string                 `json:"id"`
	EleveID              string                 `json:"eleve_id"`
	Eleve                string                 `json:"eleve,omitempty"`
	Matricule            string                 `json:"matricule,omitempty"`
	ClasseID             string                 `json:"classe_id"`
	TermID               string                 `json:"term_id"`
	MoyenneGenerale      float64                `json:"moyenne_generale"`
	Rang                 int                    `json:"rang"`
	Effectif             int                    `json:"effectif"`
	Appreciation         string                 `json:"appreciation"`
	AppreciationManuelle bool                   `json:"appreciation_manuelle"`
	Complet              bool                   `json:"complet"`
	Lignes               []BulletinLineResponse `json:"lignes"`
	GeneratedAt          string                 `json:"generated_at"`
}

// GenerateBulletinResponse 生成结果
type GenerateBulletinResponse struct {
	Generated int                `json:"generated"`
	Bulletins []BulletinResponse `json:"bulletins"`
}
