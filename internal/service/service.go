package service

import (
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"edusen/backend/config"
	"edusen/backend/internal/dto"
	"edusen/backend/internal/model"
	"edusen/backend/internal/repository"
	"edusen/backend/pkg/jwt"
	"edusen/backend/pkg/redis"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Auth         AuthService
	Student      StudentService
	Teacher      TeacherService
	Class        ClassService
	Subject      SubjectService
	Term         TermService
	Course       CourseService
	Grade        GradeService
	Bulletin     BulletinService
	Notification NotificationService
	Timetable    TimetableService
}

// NewService 创建 Service 聚合
// publisher 为 nil 时通知只落库不推送
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	rdb *redis.Client,
	publisher Publisher,
	logger *zap.Logger,
) *Service {
	notifier := NewNotificationService(repo, publisher, logger)
	return &Service{
		Auth:         NewAuthService(cfg, repo, jwtMgr, rdb, logger),
		Student:      NewStudentService(repo, logger),
		Teacher:      NewTeacherService(repo, logger),
		Class:        NewClassService(repo, logger),
		Subject:      NewSubjectService(repo, logger),
		Term:         NewTermService(repo, logger),
		Course:       NewCourseService(&cfg.Timetable, repo, notifier, logger),
		Grade:        NewGradeService(repo, notifier, logger),
		Bulletin:     NewBulletinService(repo, notifier, logger),
		Notification: notifier,
		Timetable:    NewTimetableService(&cfg.Timetable, repo, logger),
	}
}

// Caller 当前请求的操作者
// ProfileID 为教师或学生档案 ID
type Caller struct {
	UserID    string
	Role      string
	ProfileID string
}

// IsAdmin 是否管理员
func (c Caller) IsAdmin() bool { return c.Role == model.RoleAdmin }

// ── 通用辅助 ──

const (
	dateLayout     = "2006-01-02"
	datetimeLayout = time.RFC3339
)

func formatTime(t time.Time) string { return t.Format(datetimeLayout) }

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatTime(*t)
	return &s
}

// duplicateAs 唯一约束冲突转换为对应的业务错误
// 预检查与写入之间存在并发窗口，最终以数据库约束为准
func duplicateAs(err, sentinel error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return sentinel
	}
	return err
}

func parseDate(s string) (time.Time, error) {
	return time.ParseInLocation(dateLayout, s, time.Local)
}

func toUserResponse(u *model.User, profileID string) dto.UserResponse {
	return dto.UserResponse{
		ID:          u.UserID,
		Email:       u.Email,
		Role:        u.Role,
		Nom:         u.Nom,
		Prenom:      u.Prenom,
		IsActive:    u.IsActive,
		ProfileID:   profileID,
		LastLoginAt: formatTimePtr(u.LastLoginAt),
	}
}
