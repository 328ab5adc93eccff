package dto

import "errors"

// ── 通知模块 DTO ──

// NotificationFilterRequest 通知筛选参数
// 非管理员的 UserID 会被强制为本人
type NotificationFilterRequest struct {
	PaginationRequest
	Type   string `form:"type"    binding:"omitempty,oneof=info alerte note bulletin cours"`
	IsRead *bool  `form:"is_read"`
	UserID string `form:"user_id" binding:"omitempty,uuid"`
}

// CreateNotificationRequest 发送通知请求（user_id 与 role 二选一）
type CreateNotificationRequest struct {
	UserID  string `json:"user_id" binding:"omitempty,uuid"`
	Role    string `json:"role"    binding:"omitempty,oneof=admin professeur eleve"`
	Titre   string `json:"titre"   binding:"required,max=200"`
	Message string `json:"message" binding:"required,max=5000"`
	Type    string `json:"type"    binding:"omitempty,oneof=info alerte note bulletin cours"`
}

// Validate 校验 user_id 与 role 互斥
func (r *CreateNotificationRequest) Validate() error {
	if (r.UserID == "") == (r.Role == "") {
		return errors.New("user_id 与 role 必须且只能指定一个")
	}
	return nil
}

// NotificationResponse 通知响应
type NotificationResponse struct {
	ID          string  `json:"id"`
	UserID      string  `json:"user_id"`
	Titre       string  `json:"titre"`
	Message     string  `json:"message"`
	Type        string  `json:"type"`
	IsRead      bool    `json:"is_read"`
	ReadAt      *string `json:"read_at,omitempty"`
	RelatedType *string `json:"related_type,omitempty"`
	RelatedID   *string `json:"related_id,omitempty"`
	CreatedAt   string  `json:"created_at"`
}

// SendNotificationResponse 发送结果
type SendNotificationResponse struct {
	Sent int `json:"sent"`
}

// UnreadCountResponse 未读数
type UnreadCountResponse struct {
	Count int64 `json:"count"`
}
