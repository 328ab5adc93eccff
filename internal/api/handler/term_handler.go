package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"edusen/backend/internal/dto"
	"edusen/backend/internal/service"
	"edusen/backend/pkg/response"
)

// TermHandler 学期模块 HTTP 处理器
type TermHandler struct {
	termSvc service.TermService
}

// NewTermHandler 创建 TermHandler
func NewTermHandler(termSvc service.TermService) *TermHandler {
	return &TermHandler{termSvc: termSvc}
}

// ListTerms 获取学期列表
// GET /api/semestres
func (h *TermHandler) ListTerms(c *gin.Context) {
	terms, err := h.termSvc.List(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"list": terms})
}

// GetTerm 获取学期详情
// GET /api/semestres/:id
func (h *TermHandler) GetTerm(c *gin.Context) {
	term, err := h.termSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleTermError(c, err)
		return
	}

	response.OK(c, term)
}

// GetCurrentTerm 获取当前学期
// GET /api/semestres/current
func (h *TermHandler) GetCurrentTerm(c *gin.Context) {
	term, err := h.termSvc.GetCurrent(c.Request.Context())
	if err != nil {
		h.handleTermError(c, err)
		return
	}

	response.OK(c, term)
}

// CreateTerm 创建学期
// POST /api/semestres
func (h *TermHandler) CreateTerm(c *gin.Context) {
	var req dto.CreateTermRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	term, err := h.termSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleTermError(c, err)
		return
	}

	response.Created(c, term)
}

// UpdateTerm 更新学期
// PUT /api/semestres/:id
func (h *TermHandler) UpdateTerm(c *gin.Context) {
	var req dto.UpdateTermRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	term, err := h.termSvc.Update(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		h.handleTermError(c, err)
		return
	}

	response.OK(c, term)
}

// ActivateTerm 激活学期（设为当前学期）
// PUT /api/semestres/:id/activate
func (h *TermHandler) ActivateTerm(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.termSvc.Activate(c.Request.Context(), c.Param("id"), callerID); err != nil {
		h.handleTermError(c, err)
		return
	}

	response.OK(c, nil)
}

// DeleteTerm 删除学期
// DELETE /api/semestres/:id
func (h *TermHandler) DeleteTerm(c *gin.Context) {
	if err := h.termSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.handleTermError(c, err)
		return
	}

	response.OK(c, nil)
}

// handleTermError 统一处理学期模块业务错误
func (h *TermHandler) handleTermError(c *gin.Context, err error) {
	if handleTermError(c, err) {
		return
	}
	switch {
	case errors.Is(err, service.ErrTermDateInvalid):
		response.BadRequest(c, 16002, "学期日期无效：结束日期必须晚于开始日期")
	case errors.Is(err, service.ErrTermInUse):
		response.Conflict(c, 16003, "学期下仍有课程或成绩，无法删除")
	default:
		response.InternalError(c)
	}
}
