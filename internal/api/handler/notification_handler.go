package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"edusen/backend/internal/dto"
	"edusen/backend/internal/service"
	"edusen/backend/pkg/response"
)

// Streamer 接管已升级的 websocket 连接，直到连接关闭
type Streamer interface {
	Serve(conn *websocket.Conn, userID string)
}

// NotificationHandler 通知模块 HTTP 处理器
type NotificationHandler struct {
	notificationSvc service.NotificationService
	streamer        Streamer
	upgrader        websocket.Upgrader
	logger          *zap.Logger
}

// NewNotificationHandler 创建 NotificationHandler
func NewNotificationHandler(
	notificationSvc service.NotificationService,
	streamer Streamer,
	upgrader websocket.Upgrader,
	logger *zap.Logger,
) *NotificationHandler {
	return &NotificationHandler{
		notificationSvc: notificationSvc,
		streamer:        streamer,
		upgrader:        upgrader,
		logger:          logger,
	}
}

// ListNotifications 当前用户的通知（最新在前）
// GET /api/notifications
func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	var req dto.PaginationRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	list, total, err := h.notificationSvc.List(c.Request.Context(), userID, &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// FilterNotifications 按类型、已读状态筛选；非管理员只能查看本人
// GET /api/notifications/filter
func (h *NotificationHandler) FilterNotifications(c *gin.Context) {
	var req dto.NotificationFilterRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	role, ok := MustGetRole(c)
	if !ok {
		return
	}

	list, total, err := h.notificationSvc.Filter(c.Request.Context(), userID, role, &req)
	if err != nil {
		h.handleNotificationError(c, err)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// UnreadCount 未读数
// GET /api/notifications/unread-count
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	count, err := h.notificationSvc.UnreadCount(c.Request.Context(), userID)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, dto.UnreadCountResponse{Count: count})
}

// SendNotification 管理员发送通知（指定用户或角色）
// POST /api/notifications
func (h *NotificationHandler) SendNotification(c *gin.Context) {
	var req dto.CreateNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}
	if err := req.Validate(); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, 10001, "参数校验失败", err.Error())
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.notificationSvc.Send(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleNotificationError(c, err)
		return
	}

	response.Created(c, result)
}

// MarkRead 标记已读
// PUT /api/notifications/:id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.notificationSvc.MarkRead(c.Request.Context(), c.Param("id"), userID); err != nil {
		h.handleNotificationError(c, err)
		return
	}

	response.OK(c, nil)
}

// MarkAllRead 全部标记已读
// PUT /api/notifications/read-all
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	n, err := h.notificationSvc.MarkAllRead(c.Request.Context(), userID)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"updated": n})
}

// DeleteNotification 删除通知（本人或管理员）
// DELETE /api/notifications/:id
func (h *NotificationHandler) DeleteNotification(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	role, ok := MustGetRole(c)
	if !ok {
		return
	}

	if err := h.notificationSvc.Delete(c.Request.Context(), c.Param("id"), userID, role); err != nil {
		h.handleNotificationError(c, err)
		return
	}

	response.OK(c, nil)
}

// Stream 升级为 websocket，推送新通知
// GET /api/notifications/ws
func (h *NotificationHandler) Stream(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade 失败时已写入 HTTP 错误响应
		h.logger.Warn("websocket 升级失败", zap.String("user_id", userID), zap.Error(err))
		return
	}

	h.streamer.Serve(conn, userID)
}

// handleNotificationError 统一处理通知模块业务错误
func (h *NotificationHandler) handleNotificationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotificationNotFound):
		response.NotFound(c, 20001, "通知不存在")
	case errors.Is(err, service.ErrNotificationForbidden):
		response.Forbidden(c, 20002, "无权操作该通知")
	case errors.Is(err, service.ErrNoRecipients):
		response.BadRequest(c, 20003, "没有符合条件的接收人")
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, 20004, "接收用户不存在")
	default:
		response.InternalError(c)
	}
}
