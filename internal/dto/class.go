package dto

// ── 班级模块 DTO ──

// CreateClassRequest 创建班级请求
type CreateClassRequest struct {
	Nom           string `json:"nom"            binding:"required,max=50"`
	Niveau        string `json:"niveau"         binding:"required,max=50"`
	AnneeScolaire string `json:"annee_scolaire" binding:"required,annee"`
	Capacite      int    `json:"capacite"       binding:"omitempty,min=0,max=500"`
}

// UpdateClassRequest 更新班级请求
type UpdateClassRequest struct {
	Nom           *string `json:"nom"            binding:"omitempty,max=50"`
	Niveau        *string `json:"niveau"         binding:"omitempty,max=50"`
	AnneeScolaire *string `json:"annee_scolaire" binding:"omitempty,annee"`
	Capacite      *int    `json:"capacite"       binding:"omitempty,min=0,max=500"`
}

// ClassResponse 班级信息响应
type ClassResponse struct {
	ID            string `json:"id"`
	Nom           string `json:"nom"`
	Niveau        string `json:"niveau"`
	AnneeScolaire string `json:"annee_scolaire"`
	Capacite      int    `json:"capacite"`
	Effectif      int64  `json:"effectif"`
}
