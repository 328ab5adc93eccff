package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"edusen/backend/internal/dto"
	"edusen/backend/internal/service"
	"edusen/backend/pkg/response"
)

// ClassHandler 班级与科目 HTTP 处理器
type ClassHandler struct {
	classSvc   service.ClassService
	subjectSvc service.SubjectService
}

// NewClassHandler 创建 ClassHandler
func NewClassHandler(classSvc service.ClassService, subjectSvc service.SubjectService) *ClassHandler {
	return &ClassHandler{classSvc: classSvc, subjectSvc: subjectSvc}
}

// ────────────────────── 班级 ──────────────────────

// ListClasses 班级列表
// GET /api/classes?annee_scolaire=
func (h *ClassHandler) ListClasses(c *gin.Context) {
	list, err := h.classSvc.List(c.Request.Context(), c.Query("annee_scolaire"))
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"list": list})
}

// GetClass 班级详情
// GET /api/classes/:id
func (h *ClassHandler) GetClass(c *gin.Context) {
	class, err := h.classSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleClassError(c, err)
		return
	}

	response.OK(c, class)
}

// CreateClass 创建班级
// POST /api/classes
func (h *ClassHandler) CreateClass(c *gin.Context) {
	var req dto.CreateClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	class, err := h.classSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleClassError(c, err)
		return
	}

	response.Created(c, class)
}

// UpdateClass 更新班级
// PUT /api/classes/:id
func (h *ClassHandler) UpdateClass(c *gin.Context) {
	var req dto.UpdateClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	class, err := h.classSvc.Update(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		h.handleClassError(c, err)
		return
	}

	response.OK(c, class)
}

// DeleteClass 删除班级
// DELETE /api/classes/:id
func (h *ClassHandler) DeleteClass(c *gin.Context) {
	if err := h.classSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.handleClassError(c, err)
		return
	}

	response.OK(c, nil)
}

func (h *ClassHandler) handleClassError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrClassNotFound):
		response.NotFound(c, 14001, "班级不存在")
	case errors.Is(err, service.ErrClassNameExists):
		response.Conflict(c, 14002, "该学年已存在同名班级")
	case errors.Is(err, service.ErrClassInUse):
		response.Conflict(c, 14003, "班级下仍有学生或课程，无法删除")
	default:
		response.InternalError(c)
	}
}

// ────────────────────── 科目 ──────────────────────

// ListSubjects 科目列表
// GET /api/matieres
func (h *ClassHandler) ListSubjects(c *gin.Context) {
	list, err := h.subjectSvc.List(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"list": list})
}

// GetSubject 科目详情
// GET /api/matieres/:id
func (h *ClassHandler) GetSubject(c *gin.Context) {
	subject, err := h.subjectSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleSubjectError(c, err)
		return
	}

	response.OK(c, subject)
}

// CreateSubject 创建科目
// POST /api/matieres
func (h *ClassHandler) CreateSubject(c *gin.Context) {
	var req dto.CreateSubjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	subject, err := h.subjectSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleSubjectError(c, err)
		return
	}

	response.Created(c, subject)
}

// UpdateSubject 更新科目
// PUT /api/matieres/:id
func (h *ClassHandler) UpdateSubject(c *gin.Context) {
	var req dto.UpdateSubjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	subject, err := h.subjectSvc.Update(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		h.handleSubjectError(c, err)
		return
	}

	response.OK(c, subject)
}

// DeleteSubject 删除科目
// DELETE /api/matieres/:id
func (h *ClassHandler) DeleteSubject(c *gin.Context) {
	if err := h.subjectSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.handleSubjectError(c, err)
		return
	}

	response.OK(c, nil)
}

func (h *ClassHandler) handleSubjectError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSubjectNotFound):
		response.NotFound(c, 15001, "科目不存在")
	case errors.Is(err, service.ErrSubjectNameExists):
		response.Conflict(c, 15002, "科目名称已存在")
	case errors.Is(err, service.ErrSubjectInUse):
		response.Conflict(c, 15003, "科目下仍有课程或成绩，无法删除")
	default:
		response.InternalError(c)
	}
}
