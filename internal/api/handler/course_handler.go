package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"edusen/backend/internal/dto"
	"edusen/backend/internal/service"
	"edusen/backend/pkg/response"
)

// CourseHandler 课程模块 HTTP 处理器
type CourseHandler struct {
	courseSvc service.CourseService
}

// NewCourseHandler 创建 CourseHandler
func NewCourseHandler(courseSvc service.CourseService) *CourseHandler {
	return &CourseHandler{courseSvc: courseSvc}
}

// ListCourses 课程列表
// GET /api/cours
func (h *CourseHandler) ListCourses(c *gin.Context) {
	var req dto.CourseListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	list, err := h.courseSvc.List(c.Request.Context(), &req)
	if err != nil {
		h.handleCourseError(c, err)
		return
	}

	response.OK(c, gin.H{"list": list})
}

// GetCourse 课程详情
// GET /api/cours/:id
func (h *CourseHandler) GetCourse(c *gin.Context) {
	course, err := h.courseSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleCourseError(c, err)
		return
	}

	response.OK(c, course)
}

// CreateCourse 创建课程（冲突时返回 409 与冲突列表）
// POST /api/cours
func (h *CourseHandler) CreateCourse(c *gin.Context) {
	var req dto.CreateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	course, err := h.courseSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleCourseError(c, err)
		return
	}

	response.Created(c, course)
}

// UpdateCourse 更新课程
// PUT /api/cours/:id
func (h *CourseHandler) UpdateCourse(c *gin.Context) {
	var req dto.UpdateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	course, err := h.courseSvc.Update(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		h.handleCourseError(c, err)
		return
	}

	response.OK(c, course)
}

// DeleteCourse 删除课程
// DELETE /api/cours/:id
func (h *CourseHandler) DeleteCourse(c *gin.Context) {
	if err := h.courseSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.handleCourseError(c, err)
		return
	}

	response.OK(c, nil)
}

// CheckCourse 冲突预检，不写入
// POST /api/cours/check?exclude_id=
func (h *CourseHandler) CheckCourse(c *gin.Context) {
	var req dto.CreateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.courseSvc.Check(c.Request.Context(), &req, c.Query("exclude_id"))
	if err != nil {
		h.handleCourseError(c, err)
		return
	}

	response.OK(c, result)
}

// handleCourseError 统一处理课程模块业务错误
func (h *CourseHandler) handleCourseError(c *gin.Context, err error) {
	var conflictErr *service.CourseConflictError
	if errors.As(err, &conflictErr) {
		response.ErrorWithData(c, http.StatusConflict, 17002, "课程时间冲突",
			gin.H{"conflicts": service.ToConflictItems(conflictErr.Conflicts)})
		return
	}
	if handleTermError(c, err) {
		return
	}
	switch {
	case errors.Is(err, service.ErrCourseNotFound):
		response.NotFound(c, 17001, "课程不存在")
	case errors.Is(err, service.ErrCourseOutOfRange):
		response.BadRequest(c, 17003, "课程时间超出课表范围")
	case errors.Is(err, service.ErrClassNotFound):
		response.BadRequest(c, 17004, "班级不存在")
	case errors.Is(err, service.ErrSubjectNotFound):
		response.BadRequest(c, 17004, "科目不存在")
	case errors.Is(err, service.ErrTeacherNotFound):
		response.BadRequest(c, 17004, "教师不存在")
	default:
		response.InternalError(c)
	}
}
