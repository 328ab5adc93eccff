package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"edusen/backend/internal/dto"
	"edusen/backend/internal/model"
	"edusen/backend/internal/repository"
)

// ── 通知模块业务错误 ──

var (
	ErrNotificationNotFound  = errors.New("通知不存在")
	ErrNotificationForbidden = errors.New("无权操作该通知")
	ErrNoRecipients          = errors.New("没有符合条件的接收人")
)

// EventNotification 推送给在线用户的事件类型
const EventNotification = "notification"

// Publisher 实时推送通道（websocket hub 实现）
type Publisher interface {
	Publish(userID, eventType string, payload interface{})
}

// NotificationService 通知业务接口
type NotificationService interface {
	// Notify 供其他业务模块调用，失败只记录日志
	Notify(ctx context.Context, userID, typ, titre, message, relatedType, relatedID string)
	List(ctx context.Context, userID string, req *dto.PaginationRequest) ([]dto.NotificationResponse, int64, error)
	Filter(ctx context.Context, callerID, callerRole string, req *dto.NotificationFilterRequest) ([]dto.NotificationResponse, int64, error)
	UnreadCount(ctx context.Context, userID string) (int64, error)
	Send(ctx context.Context, req *dto.CreateNotificationRequest, callerID string) (*dto.SendNotificationResponse, error)
	MarkRead(ctx context.Context, id, userID string) error
	MarkAllRead(ctx context.Context, userID string) (int64, error)
	Delete(ctx context.Context, id, callerID, callerRole string) error
}

type notificationService struct {
	repo      *repository.Repository
	publisher Publisher // 可为 nil
	logger    *zap.Logger
}

// NewNotificationService 创建 NotificationService 实例
func NewNotificationService(repo *repository.Repository, publisher Publisher, logger *zap.Logger) NotificationService {
	return &notificationService{repo: repo, publisher: publisher, logger: logger}
}

// ────────────────────── Notify ──────────────────────

func (s *notificationService) Notify(ctx context.Context, userID, typ, titre, message, relatedType, relatedID string) {
	if userID == "" {
		return
	}

	n := &model.Notification{
		UserID:  userID,
		Titre:   titre,
		Message: message,
		Type:    typ,
	}
	if relatedType != "" {
		n.RelatedType = &relatedType
	}
	if relatedID != "" {
		n.RelatedID = &relatedID
	}

	if err := s.repo.Notification.Create(ctx, n); err != nil {
		s.logger.Warn("写入通知失败",
			zap.String("user_id", userID),
			zap.String("type", typ),
			zap.Error(err),
		)
		return
	}
	s.push(n)
}

// ────────────────────── List ──────────────────────

func (s *notificationService) List(ctx context.Context, userID string, req *dto.PaginationRequest) ([]dto.NotificationResponse, int64, error) {
	return s.list(ctx, repository.NotificationFilter{UserID: userID}, req)
}

// ────────────────────── Filter ──────────────────────

func (s *notificationService) Filter(ctx context.Context, callerID, callerRole string, req *dto.NotificationFilterRequest) ([]dto.NotificationResponse, int64, error) {
	filter := repository.NotificationFilter{
		UserID: req.UserID,
		Type:   req.Type,
		IsRead: req.IsRead,
	}
	// 非管理员只能查看自己的通知
	if callerRole != model.RoleAdmin || filter.UserID == "" {
		filter.UserID = callerID
	}
	return s.list(ctx, filter, &req.PaginationRequest)
}

// ────────────────────── UnreadCount ──────────────────────

func (s *notificationService) UnreadCount(ctx context.Context, userID string) (int64, error) {
	count, err := s.repo.Notification.CountUnread(ctx, userID)
	if err != nil {
		s.logger.Error("统计未读通知失败", zap.String("user_id", userID), zap.Error(err))
		return 0, err
	}
	return count, nil
}

// ────────────────────── Send ──────────────────────

func (s *notificationService) Send(ctx context.Context, req *dto.CreateNotificationRequest, callerID string) (*dto.SendNotificationResponse, error) {
	var recipients []string
	if req.UserID != "" {
		if _, err := s.repo.User.GetByID(ctx, req.UserID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrUserNotFound
			}
			s.logger.Error("查询用户失败", zap.String("user_id", req.UserID), zap.Error(err))
			return nil, err
		}
		recipients = []string{req.UserID}
	} else {
		ids, err := s.repo.User.ListActiveIDsByRole(ctx, req.Role)
		if err != nil {
			s.logger.Error("查询角色用户失败", zap.String("role", req.Role), zap.Error(err))
			return nil, err
		}
		recipients = ids
	}
	if len(recipients) == 0 {
		return nil, ErrNoRecipients
	}

	typ := req.Type
	if typ == "" {
		typ = model.NotificationInfo
	}

	list := make([]model.Notification, 0, len(recipients))
	for _, uid := range recipients {
		list = append(list, model.Notification{
			NotificationID: model.NewID(),
			UserID:         uid,
			Titre:          req.Titre,
			Message:        req.Message,
			Type:           typ,
			BaseModel:      model.BaseModel{CreatedBy: &callerID, UpdatedBy: &callerID},
		})
	}
	if err := s.repo.Notification.CreateBatch(ctx, list); err != nil {
		s.logger.Error("批量写入通知失败", zap.Int("count", len(list)), zap.Error(err))
		return nil, err
	}

	for i := range list {
		s.push(&list[i])
	}

	s.logger.Info("通知已发送",
		zap.String("by", callerID),
		zap.String("role", req.Role),
		zap.Int("count", len(list)),
	)
	return &dto.SendNotificationResponse{Sent: len(list)}, nil
}

// ────────────────────── MarkRead ──────────────────────

func (s *notificationService) MarkRead(ctx context.Context, id, userID string) error {
	n, err := s.get(ctx, id)
	if err != nil {
		return err
	}
	if n.UserID != userID {
		return ErrNotificationForbidden
	}
	if n.IsRead {
		return nil
	}

	if err := s.repo.Notification.MarkRead(ctx, id, time.Now()); err != nil {
		s.logger.Error("标记通知已读失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── MarkAllRead ──────────────────────

func (s *notificationService) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	n, err := s.repo.Notification.MarkAllRead(ctx, userID, time.Now())
	if err != nil {
		s.logger.Error("全部标记已读失败", zap.String("user_id", userID), zap.Error(err))
		return 0, err
	}
	return n, nil
}

// ────────────────────── Delete ──────────────────────

func (s *notificationService) Delete(ctx context.Context, id, callerID, callerRole string) error {
	n, err := s.get(ctx, id)
	if err != nil {
		return err
	}
	if n.UserID != callerID && callerRole != model.RoleAdmin {
		return ErrNotificationForbidden
	}

	if err := s.repo.Notification.Delete(ctx, id); err != nil {
		s.logger.Error("删除通知失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ── 内部方法 ──

func (s *notificationService) get(ctx context.Context, id string) (*model.Notification, error) {
	n, err := s.repo.Notification.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotificationNotFound
		}
		s.logger.Error("查询通知失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return n, nil
}

func (s *notificationService) list(ctx context.Context, filter repository.NotificationFilter, page *dto.PaginationRequest) ([]dto.NotificationResponse, int64, error) {
	items, total, err := s.repo.Notification.List(ctx, filter, page.GetOffset(), page.GetPageSize())
	if err != nil {
		s.logger.Error("查询通知列表失败", zap.String("user_id", filter.UserID), zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.NotificationResponse, 0, len(items))
	for i := range items {
		result = append(result, toNotificationResponse(&items[i]))
	}
	return result, total, nil
}

func (s *notificationService) push(n *model.Notification) {
	if s.publisher == nil {
		return
	}
	s.publisher.Publish(n.UserID, EventNotification, toNotificationResponse(n))
}

func toNotificationResponse(n *model.Notification) dto.NotificationResponse {
	return dto.NotificationResponse{
		ID:          n.NotificationID,
		UserID:      n.UserID,
		Titre:       n.Titre,
		Message:     n.Message,
		Type:        n.Type,
		IsRead:      n.IsRead,
		ReadAt:      formatTimePtr(n.ReadAt),
		RelatedType: n.RelatedType,
		RelatedID:   n.RelatedID,
		CreatedAt:   formatTime(n.CreatedAt),
	}
}
