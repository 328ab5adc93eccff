package router

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"edusen/backend/config"
	"edusen/backend/internal/api/handler"
	"edusen/backend/internal/api/middleware"
	"edusen/backend/internal/dto"
	"edusen/backend/internal/model"
	"edusen/backend/pkg/jwt"
	"edusen/backend/pkg/redis"
)

const (
	admin      = model.RoleAdmin
	professeur = model.RoleProfesseur
)

// Setup 初始化并返回 Gin 路由引擎
// rdb 为 nil 时 Token 黑名单与登录限流降级
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) (*gin.Engine, error) {
	gin.SetMode(gin.ReleaseMode)

	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil, fmt.Errorf("gin 校验引擎类型不符")
	}
	if err := dto.RegisterValidators(v); err != nil {
		return nil, fmt.Errorf("注册自定义校验失败: %w", err)
	}

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(cfg.Server.BodyLimit))

	// ── 健康检查 ──
	r.GET("/health", h.Health.Health)

	api := r.Group("/api")
	{
		// 认证模块（无需认证）
		auth := api.Group("/auth")
		{
			auth.POST("/login",
				middleware.RateLimit(rdb, cfg.RateLimit.LoginLimit, cfg.RateLimit.LoginWindow, logger),
				h.Auth.Login)
			auth.POST("/refresh", h.Auth.RefreshToken)
		}

		// 需要认证的路由
		authorized := api.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, rdb, logger))
		{
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.GetCurrentUser)
			authorized.PUT("/auth/password", h.Auth.ChangePassword)

			// 学生模块
			eleves := authorized.Group("/eleves")
			{
				eleves.GET("", middleware.RoleAuth(admin, professeur), h.Student.ListStudents)
				eleves.GET("/filter", middleware.RoleAuth(admin, professeur), h.Student.FilterStudents)
				eleves.GET("/:id", middleware.RoleAuth(admin, professeur), h.Student.GetStudent)
				eleves.POST("", middleware.RoleAuth(admin), h.Student.CreateStudent)
				eleves.POST("/import", middleware.RoleAuth(admin), h.Student.ImportStudents)
				eleves.PUT("/:id", middleware.RoleAuth(admin), h.Student.UpdateStudent)
				eleves.DELETE("/:id", middleware.RoleAuth(admin), h.Student.DeleteStudent)
			}

			// 教师模块
			profs := authorized.Group("/professeur")
			{
				profs.GET("", middleware.RoleAuth(admin, professeur), h.Teacher.ListTeachers)
				profs.GET("/:id", middleware.RoleAuth(admin, professeur), h.Teacher.GetTeacher)
				profs.GET("/:id/cours", middleware.RoleAuth(admin, professeur), h.Teacher.ListTeacherCourses)
				profs.POST("", middleware.RoleAuth(admin), h.Teacher.CreateTeacher)
				profs.PUT("/:id", middleware.RoleAuth(admin), h.Teacher.UpdateTeacher)
				profs.DELETE("/:id", middleware.RoleAuth(admin), h.Teacher.DeleteTeacher)
			}

			// 班级模块
			classes := authorized.Group("/classes")
			{
				classes.GET("", h.Class.ListClasses)
				classes.GET("/:id", h.Class.GetClass)
				classes.POST("", middleware.RoleAuth(admin), h.Class.CreateClass)
				classes.PUT("/:id", middleware.RoleAuth(admin), h.Class.UpdateClass)
				classes.DELETE("/:id", middleware.RoleAuth(admin), h.Class.DeleteClass)
			}

			// 科目模块
			matieres := authorized.Group("/matieres")
			{
				matieres.GET("", h.Class.ListSubjects)
				matieres.GET("/:id", h.Class.GetSubject)
				matieres.POST("", middleware.RoleAuth(admin), h.Class.CreateSubject)
				matieres.PUT("/:id", middleware.RoleAuth(admin), h.Class.UpdateSubject)
				matieres.DELETE("/:id", middleware.RoleAuth(admin), h.Class.DeleteSubject)
			}

			// 学期模块
			semestres := authorized.Group("/semestres")
			{
				semestres.GET("", h.Term.ListTerms)
				semestres.GET("/current", h.Term.GetCurrentTerm)
				semestres.GET("/:id", h.Term.GetTerm)
				semestres.POST("", middleware.RoleAuth(admin), h.Term.CreateTerm)
				semestres.PUT("/:id", middleware.RoleAuth(admin), h.Term.UpdateTerm)
				semestres.PUT("/:id/activate", middleware.RoleAuth(admin), h.Term.ActivateTerm)
				semestres.DELETE("/:id", middleware.RoleAuth(admin), h.Term.DeleteTerm)
			}

			// 课程模块
			cours := authorized.Group("/cours")
			{
				cours.GET("", h.Course.ListCourses)
				cours.GET("/:id", h.Course.GetCourse)
				cours.POST("", middleware.RoleAuth(admin), h.Course.CreateCourse)
				cours.POST("/check", middleware.RoleAuth(admin), h.Course.CheckCourse)
				cours.PUT("/:id", middleware.RoleAuth(admin), h.Course.UpdateCourse)
				cours.DELETE("/:id", middleware.RoleAuth(admin), h.Course.DeleteCourse)
			}

			// 成绩模块（学生只读本人，教师权限在 Service 层校验）
			notes := authorized.Group("/notes")
			{
				notes.GET("", h.Grade.ListGrades)
				notes.GET("/moyennes", h.Grade.GetAverages)
				notes.GET("/:id", h.Grade.GetGrade)
				notes.POST("", middleware.RoleAuth(admin, professeur), h.Grade.CreateGrade)
				notes.PUT("/:id", middleware.RoleAuth(admin, professeur), h.Grade.UpdateGrade)
				notes.DELETE("/:id", middleware.RoleAuth(admin, professeur), h.Grade.DeleteGrade)
			}

			// 成绩单模块
			bulletins := authorized.Group("/bulletins")
			{
				bulletins.GET("", h.Bulletin.ListBulletins)
				bulletins.GET("/export", middleware.RoleAuth(admin, professeur), h.Bulletin.ExportBulletins)
				bulletins.GET("/:id", h.Bulletin.GetBulletin)
				bulletins.POST("/generate", middleware.RoleAuth(admin), h.Bulletin.GenerateBulletins)
				bulletins.PUT("/:id", middleware.RoleAuth(admin), h.Bulletin.UpdateBulletin)
				bulletins.DELETE("/:id", middleware.RoleAuth(admin), h.Bulletin.DeleteBulletin)
			}

			// 通知模块
			notifications := authorized.Group("/notifications")
			{
				notifications.GET("", h.Notification.ListNotifications)
				notifications.GET("/filter", h.Notification.FilterNotifications)
				notifications.GET("/unread-count", h.Notification.UnreadCount)
				notifications.GET("/ws", h.Notification.Stream)
				notifications.POST("", middleware.RoleAuth(admin), h.Notification.SendNotification)
				notifications.PUT("/read-all", h.Notification.MarkAllRead)
				notifications.PUT("/:id/read", h.Notification.MarkRead)
				notifications.DELETE("/:id", h.Notification.DeleteNotification)
			}

			// 课表模块
			edt := authorized.Group("/emploi-du-temps")
			{
				edt.GET("", h.Timetable.GetTimetable)
				edt.GET("/export.ics", h.Timetable.ExportICS)
				edt.GET("/export.xlsx", h.Timetable.ExportXLSX)
			}
		}
	}

	return r, nil
}
