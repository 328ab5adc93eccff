package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"edusen/backend/internal/dto"
	"edusen/backend/internal/service"
	"edusen/backend/pkg/response"
)

// TeacherHandler 教师模块 HTTP 处理器
type TeacherHandler struct {
	teacherSvc service.TeacherService
}

// NewTeacherHandler 创建 TeacherHandler
func NewTeacherHandler(teacherSvc service.TeacherService) *TeacherHandler {
	return &TeacherHandler{teacherSvc: teacherSvc}
}

// ListTeachers 教师列表
// GET /api/professeur
func (h *TeacherHandler) ListTeachers(c *gin.Context) {
	var req dto.TeacherListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	list, total, err := h.teacherSvc.List(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// GetTeacher 教师详情
// GET /api/professeur/:id
func (h *TeacherHandler) GetTeacher(c *gin.Context) {
	teacher, err := h.teacherSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleTeacherError(c, err)
		return
	}

	response.OK(c, teacher)
}

// CreateTeacher 创建教师及其账号
// POST /api/professeur
func (h *TeacherHandler) CreateTeacher(c *gin.Context) {
	var req dto.CreateTeacherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	teacher, err := h.teacherSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleTeacherError(c, err)
		return
	}

	response.Created(c, teacher)
}

// UpdateTeacher 更新教师
// PUT /api/professeur/:id
func (h *TeacherHandler) UpdateTeacher(c *gin.Context) {
	var req dto.UpdateTeacherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	teacher, err := h.teacherSvc.Update(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		h.handleTeacherError(c, err)
		return
	}

	response.OK(c, teacher)
}

// DeleteTeacher 删除教师及其账号
// DELETE /api/professeur/:id
func (h *TeacherHandler) DeleteTeacher(c *gin.Context) {
	if err := h.teacherSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.handleTeacherError(c, err)
		return
	}

	response.OK(c, nil)
}

// ListTeacherCourses 教师某学期的课程
// GET /api/professeur/:id/cours?term_id=
func (h *TeacherHandler) ListTeacherCourses(c *gin.Context) {
	courses, err := h.teacherSvc.ListCourses(c.Request.Context(), c.Param("id"), c.Query("term_id"))
	if err != nil {
		h.handleTeacherError(c, err)
		return
	}

	response.OK(c, gin.H{"list": courses})
}

// handleTeacherError 统一处理教师模块业务错误
func (h *TeacherHandler) handleTeacherError(c *gin.Context, err error) {
	if handleTermError(c, err) {
		return
	}
	switch {
	case errors.Is(err, service.ErrTeacherNotFound):
		response.NotFound(c, 13001, "教师不存在")
	case errors.Is(err, service.ErrEmailExists):
		response.Conflict(c, 13002, "邮箱已被使用")
	case errors.Is(err, service.ErrTeacherHasCourses):
		response.Conflict(c, 13003, "教师仍有课程安排，无法删除")
	default:
		response.InternalError(c)
	}
}
