package dto

// ── 教师模块 DTO ──

// CreateTeacherRequest 创建教师请求（同时创建 professeur 账号）
type CreateTeacherRequest struct {
	Nom        string `json:"nom"        binding:"required,max=100"`
	Prenom     string `json:"prenom"     binding:"required,max=100"`
	Email      string `json:"email"      binding:"required,email"`
	Password   string `json:"password"   binding:"required,min=8,max=64"`
	Telephone  string `json:"telephone"  binding:"omitempty,max=30"`
	Specialite string `json:"specialite" binding:"omitempty,max=100"`
}

// UpdateTeacherRequest 更新教师请求
type UpdateTeacherRequest struct {
	Nom        *string `json:"nom"        binding:"omitempty,max=100"`
	Prenom     *string `json:"prenom"     binding:"omitempty,max=100"`
	Email      *string `json:"email"      binding:"omitempty,email"`
	Telephone  *string `json:"telephone"  binding:"omitempty,max=30"`
	Specialite *string `json:"specialite" binding:"omitempty,max=100"`
}

// TeacherResponse 教师信息响应
type TeacherResponse struct {
	ID         string `json:"id"`
	UserID     string `json:"user_id"`
	Nom        string `json:"nom"`
	Prenom     string `json:"prenom"`
	Email      string `json:"email"`
	Telephone  string `json:"telephone"`
	Specialite string `json:"specialite"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
}

// TeacherListRequest 教师列表参数
type TeacherListRequest struct {
	PaginationRequest
	Q string `form:"q" binding:"omitempty,max=50"`
}
