package dto

// ── 科目模块 DTO ──

// CreateSubjectRequest 创建科目请求
type CreateSubjectRequest struct {
	Nom         string  `json:"nom"         binding:"required,max=100"`
	Code        string  `json:"code"        binding:"omitempty,max=20"`
	Coefficient float64 `json:"coefficient" binding:"omitempty,gt=0,lte=20"`
}

// UpdateSubjectRequest 更新科目请求
type UpdateSubjectRequest struct {
	Nom         *string  `json:"nom"         binding:"omitempty,max=100"`
	Code        *string  `json:"code"        binding:"omitempty,max=20"`
	Coefficient *float64 `json:"coefficient" binding:"omitempty,gt=0,lte=20"`
}

// SubjectResponse 科目信息响应
type SubjectResponse struct {
	ID          string  `json:"id"`
	Nom         string  `json:"nom"`
	Code        string  `json:"code"`
	Coefficient float64 `json:"coefficient"`
}
