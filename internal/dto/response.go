package dto

// ── 用户信息 ──

// UserResponse 用户信息响应（脱敏）
// ProfileID 为教师或学生档案 ID，管理员为空
type UserResponse struct {
	ID          string  `json:"id"`
	Email       string  `json:"email"`
	Role        string  `json:"role"`
	Nom         string  `json:"nom"`
	Prenom      string  `json:"prenom"`
	IsActive    bool    `json:"is_active"`
	ProfileID   string  `json:"profile_id,omitempty"`
	LastLoginAt *string `json:"last_login_at,omitempty"`
}

// ── 分页请求 ──

// PaginationRequest 通用分页参数
type PaginationRequest struct {
	Page     int `form:"page"      binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// GetPage 获取页码（含默认值）
func (p *PaginationRequest) GetPage() int {
	if p.Page <= 0 {
		return 1
	}
	return p.Page
}

// GetPageSize 获取每页数量（含默认值）
func (p *PaginationRequest) GetPageSize() int {
	if p.PageSize <= 0 {
		return 20
	}
	return p.PageSize
}

// GetOffset 计算偏移量
func (p *PaginationRequest) GetOffset() int {
	return (p.GetPage() - 1) * p.GetPageSize()
}

// ── 导入结果 ──

// ImportResponse 批量导入结果
type ImportResponse struct {
	Total   int              `json:"total"`
	Success int              `json:"success"`
	Failed  int              `json:"failed"`
	Errors  []ImportRowError `json:"errors,omitempty"`
}

// ImportRowError 导入错误详情（行号从 2 开始，第 1 行为表头）
type ImportRowError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}
