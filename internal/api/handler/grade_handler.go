package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"edusen/backend/internal/dto"
	"edusen/backend/internal/service"
	"edusen/backend/pkg/response"
)

// GradeHandler 成绩模块 HTTP 处理器
type GradeHandler struct {
	gradeSvc service.GradeService
}

// NewGradeHandler 创建 GradeHandler
func NewGradeHandler(gradeSvc service.GradeService) *GradeHandler {
	return &GradeHandler{gradeSvc: gradeSvc}
}

// ListGrades 成绩列表（学生只能看到自己的成绩）
// GET /api/notes
func (h *GradeHandler) ListGrades(c *gin.Context) {
	var req dto.GradeListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	list, total, err := h.gradeSvc.List(c.Request.Context(), &req, caller)
	if err != nil {
		h.handleGradeError(c, err)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// GetGrade 成绩详情
// GET /api/notes/:id
func (h *GradeHandler) GetGrade(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	grade, err := h.gradeSvc.GetByID(c.Request.Context(), c.Param("id"), caller)
	if err != nil {
		h.handleGradeError(c, err)
		return
	}

	response.OK(c, grade)
}

// CreateGrade 录入成绩
// POST /api/notes
func (h *GradeHandler) CreateGrade(c *gin.Context) {
	var req dto.CreateGradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	grade, err := h.gradeSvc.Create(c.Request.Context(), &req, caller)
	if err != nil {
		h.handleGradeError(c, err)
		return
	}

	response.Created(c, grade)
}

// UpdateGrade 修改成绩
// PUT /api/notes/:id
func (h *GradeHandler) UpdateGrade(c *gin.Context) {
	var req dto.UpdateGradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	grade, err := h.gradeSvc.Update(c.Request.Context(), c.Param("id"), &req, caller)
	if err != nil {
		h.handleGradeError(c, err)
		return
	}

	response.OK(c, grade)
}

// DeleteGrade 删除成绩
// DELETE /api/notes/:id
func (h *GradeHandler) DeleteGrade(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	if err := h.gradeSvc.Delete(c.Request.Context(), c.Param("id"), caller); err != nil {
		h.handleGradeError(c, err)
		return
	}

	response.OK(c, nil)
}

// GetAverages 学生学期平均分
// GET /api/notes/moyennes?eleve_id=&term_id=
func (h *GradeHandler) GetAverages(c *gin.Context) {
	var req dto.AveragesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	result, err := h.gradeSvc.Averages(c.Request.Context(), &req, caller)
	if err != nil {
		h.handleGradeError(c, err)
		return
	}

	response.OK(c, result)
}

// handleGradeError 统一处理成绩模块业务错误
func (h *GradeHandler) handleGradeError(c *gin.Context, err error) {
	if handleTermError(c, err) {
		return
	}
	switch {
	case errors.Is(err, service.ErrGradeNotFound):
		response.NotFound(c, 18001, "成绩不存在")
	case errors.Is(err, service.ErrGradeTypeExists):
		response.Conflict(c, 18002, "该学生本学期此科目已有同类型评估")
	case errors.Is(err, service.ErrGradeForbidden):
		response.Forbidden(c, 18003, "只能为自己任教的班级与科目录入成绩")
	case errors.Is(err, service.ErrStudentNotFound):
		response.NotFound(c, 18004, "学生不存在")
	case errors.Is(err, service.ErrSubjectNotFound):
		response.NotFound(c, 18005, "科目不存在")
	default:
		response.InternalError(c)
	}
}
