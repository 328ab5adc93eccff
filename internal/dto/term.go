package dto

// ── 学期模块 DTO ──

// CreateTermRequest 创建学期请求
type CreateTermRequest struct {
	Nom           string `json:"nom"            binding:"required,max=100"`
	AnneeScolaire string `json:"annee_scolaire" binding:"required,annee"`
	StartDate     string `json:"start_date"     binding:"required,datetime=2006-01-02"` // "2025-10-01"
	EndDate       string `json:"end_date"       binding:"required,datetime=2006-01-02"` // "2026-02-15"
}

// UpdateTermRequest 更新学期请求
type UpdateTermRequest struct {
	Nom           *string `json:"nom"            binding:"omitempty,max=100"`
	AnneeScolaire *string `json:"annee_scolaire" binding:"omitempty,annee"`
	StartDate     *string `json:"start_date"     binding:"omitempty,datetime=2006-01-02"`
	EndDate       *string `json:"end_date"       binding:"omitempty,datetime=2006-01-02"`
}

// TermResponse 学期信息响应
type TermResponse struct {
	ID            string `json:"id"`
	Nom           string `json:"nom"`
	AnneeScolaire string `json:"annee_scolaire"`
	StartDate     string `json:"start_date"`
	EndDate       string `json:"end_date"`
	IsActive      bool   `json:"is_active"`
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at"`
}
