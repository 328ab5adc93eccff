package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"edusen/backend/internal/dto"
	"edusen/backend/internal/service"
	"edusen/backend/pkg/response"
)

// BulletinHandler 成绩单模块 HTTP 处理器
type BulletinHandler struct {
	bulletinSvc service.BulletinService
}

// NewBulletinHandler 创建 BulletinHandler
func NewBulletinHandler(bulletinSvc service.BulletinService) *BulletinHandler {
	return &BulletinHandler{bulletinSvc: bulletinSvc}
}

// GenerateBulletins 生成成绩单（单个学生或整个班级）
// POST /api/bulletins/generate
func (h *BulletinHandler) GenerateBulletins(c *gin.Context) {
	var req dto.GenerateBulletinRequest
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

	result, err := h.bulletinSvc.Generate(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleBulletinError(c, err)
		return
	}

	response.OK(c, result)
}

// ListBulletins 成绩单列表
// GET /api/bulletins
func (h *BulletinHandler) ListBulletins(c *gin.Context) {
	var req dto.BulletinListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	list, total, err := h.bulletinSvc.List(c.Request.Context(), &req, caller)
	if err != nil {
		h.handleBulletinError(c, err)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// GetBulletin 成绩单详情
// GET /api/bulletins/:id
func (h *BulletinHandler) GetBulletin(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	bulletin, err := h.bulletinSvc.GetByID(c.Request.Context(), c.Param("id"), caller)
	if err != nil {
		h.handleBulletinError(c, err)
		return
	}

	response.OK(c, bulletin)
}

// UpdateBulletin 修改评语
// PUT /api/bulletins/:id
func (h *BulletinHandler) UpdateBulletin(c *gin.Context) {
	var req dto.UpdateBulletinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	bulletin, err := h.bulletinSvc.UpdateAppreciation(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		h.handleBulletinError(c, err)
		return
	}

	response.OK(c, bulletin)
}

// DeleteBulletin 删除成绩单
// DELETE /api/bulletins/:id
func (h *BulletinHandler) DeleteBulletin(c *gin.Context) {
	if err := h.bulletinSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.handleBulletinError(c, err)
		return
	}

	response.OK(c, nil)
}

// ExportBulletins 导出班级成绩单 Excel
// GET /api/bulletins/export?classe_id=&term_id=
func (h *BulletinHandler) ExportBulletins(c *gin.Context) {
	var req dto.ExportBulletinRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	buf, filename, err := h.bulletinSvc.ExportXLSX(c.Request.Context(), &req)
	if err != nil {
		h.handleBulletinError(c, err)
		return
	}

	sendAttachment(c, filename, mimeXLSX, buf.Bytes())
}

// handleBulletinError 统一处理成绩单模块业务错误
func (h *BulletinHandler) handleBulletinError(c *gin.Context, err error) {
	if handleTermError(c, err) {
		return
	}
	switch {
	case errors.Is(err, service.ErrBulletinNotFound):
		response.NotFound(c, 19001, "成绩单不存在")
	case errors.Is(err, service.ErrBulletinNoStudents):
		response.BadRequest(c, 19002, "班级中没有学生")
	case errors.Is(err, service.ErrStudentNotFound):
		response.NotFound(c, 19003, "学生不存在")
	case errors.Is(err, service.ErrClassNotFound):
		response.NotFound(c, 19004, "班级不存在")
	case errors.Is(err, service.ErrBulletinEmpty):
		response.NotFound(c, 21001, "该班级本学期尚未生成成绩单")
	case errors.Is(err, service.ErrExportGenerateFail):
		response.Error(c, http.StatusInternalServerError, 21002, "生成 Excel 文件失败")
	default:
		response.InternalError(c)
	}
}
