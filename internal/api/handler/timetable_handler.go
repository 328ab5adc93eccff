package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"edusen/backend/internal/dto"
	"edusen/backend/internal/service"
	"edusen/backend/pkg/response"
)

// TimetableHandler 课表模块 HTTP 处理器
type TimetableHandler struct {
	timetableSvc service.TimetableService
}

// NewTimetableHandler 创建 TimetableHandler
func NewTimetableHandler(timetableSvc service.TimetableService) *TimetableHandler {
	return &TimetableHandler{timetableSvc: timetableSvc}
}

// bindSelector 绑定并校验 classe_id / professeur_id / salle 选择器
func bindSelector(c *gin.Context) (*dto.TimetableRequest, bool) {
	var req dto.TimetableRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return nil, false
	}
	if err := req.Validate(); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, 10001, "参数校验失败", err.Error())
		return nil, false
	}
	return &req, true
}

// GetTimetable 周课表
// GET /api/emploi-du-temps
func (h *TimetableHandler) GetTimetable(c *gin.Context) {
	req, ok := bindSelector(c)
	if !ok {
		return
	}

	grid, err := h.timetableSvc.Grid(c.Request.Context(), req)
	if err != nil {
		h.handleTimetableError(c, err)
		return
	}

	response.OK(c, grid)
}

// ExportICS 导出 iCalendar
// GET /api/emploi-du-temps/export.ics
func (h *TimetableHandler) ExportICS(c *gin.Context) {
	req, ok := bindSelector(c)
	if !ok {
		return
	}

	data, filename, err := h.timetableSvc.ExportICS(c.Request.Context(), req)
	if err != nil {
		h.handleTimetableError(c, err)
		return
	}

	sendAttachment(c, filename, mimeICS, data)
}

// ExportXLSX 导出 Excel 课表
// GET /api/emploi-du-temps/export.xlsx
func (h *TimetableHandler) ExportXLSX(c *gin.Context) {
	req, ok := bindSelector(c)
	if !ok {
		return
	}

	buf, filename, err := h.timetableSvc.ExportXLSX(c.Request.Context(), req)
	if err != nil {
		h.handleTimetableError(c, err)
		return
	}

	sendAttachment(c, filename, mimeXLSX, buf.Bytes())
}

func (h *TimetableHandler) handleTimetableError(c *gin.Context, err error) {
	if handleTermError(c, err) {
		return
	}
	switch {
	case errors.Is(err, service.ErrClassNotFound):
		response.NotFound(c, 14001, "班级不存在")
	case errors.Is(err, service.ErrTeacherNotFound):
		response.NotFound(c, 13001, "教师不存在")
	case errors.Is(err, service.ErrExportGenerateFail):
		response.Error(c, http.StatusInternalServerError, 21002, "生成导出文件失败")
	default:
		response.InternalError(c)
	}
}
