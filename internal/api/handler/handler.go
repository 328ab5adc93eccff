package handler

import (
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"edusen/backend/internal/service"
)

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth         *AuthHandler
	Student      *StudentHandler
	Teacher      *TeacherHandler
	Class        *ClassHandler
	Term         *TermHandler
	Course       *CourseHandler
	Grade        *GradeHandler
	Bulletin     *BulletinHandler
	Notification *NotificationHandler
	Timetable    *TimetableHandler
	Health       *HealthHandler
}

// Deps Handler 层除 Service 外的依赖
type Deps struct {
	Streamer Streamer
	Upgrader websocket.Upgrader
	DB       Pinger
	Cache    Pinger
	Online   OnlineCounter
	Logger   *zap.Logger
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service, deps Deps) *Handler {
	return &Handler{
		Auth:         NewAuthHandler(svc.Auth),
		Student:      NewStudentHandler(svc.Student),
		Teacher:      NewTeacherHandler(svc.Teacher),
		Class:        NewClassHandler(svc.Class, svc.Subject),
		Term:         NewTermHandler(svc.Term),
		Course:       NewCourseHandler(svc.Course),
		Grade:        NewGradeHandler(svc.Grade),
		Bulletin:     NewBulletinHandler(svc.Bulletin),
		Notification: NewNotificationHandler(svc.Notification, deps.Streamer, deps.Upgrader, deps.Logger),
		Timetable:    NewTimetableHandler(svc.Timetable),
		Health:       NewHealthHandler(deps.DB, deps.Cache, deps.Online),
	}
}
