package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"edusen/backend/internal/dto"
	"edusen/backend/internal/service"
	"edusen/backend/pkg/response"
)

// maxImportFileSize 导入文件大小上限
const maxImportFileSize = 5 << 20

// StudentHandler 学生模块 HTTP 处理器
type StudentHandler struct {
	studentSvc service.StudentService
}

// NewStudentHandler 创建 StudentHandler
func NewStudentHandler(studentSvc service.StudentService) *StudentHandler {
	return &StudentHandler{studentSvc: studentSvc}
}

// ListStudents 学生列表
// GET /api/eleves
func (h *StudentHandler) ListStudents(c *gin.Context) {
	var req dto.StudentFilterRequest
	if err := c.ShouldBindQuery(&req.PaginationRequest); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}
	h.list(c, &req)
}

// FilterStudents 按班级、性别、姓名/学号筛选
// GET /api/eleves/filter
func (h *StudentHandler) FilterStudents(c *gin.Context) {
	var req dto.StudentFilterRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}
	h.list(c, &req)
}

func (h *StudentHandler) list(c *gin.Context, req *dto.StudentFilterRequest) {
	list, total, err := h.studentSvc.List(c.Request.Context(), req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// GetStudent 学生详情
// GET /api/eleves/:id
func (h *StudentHandler) GetStudent(c *gin.Context) {
	student, err := h.studentSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleStudentError(c, err)
		return
	}

	response.OK(c, student)
}

// CreateStudent 创建学生
// POST /api/eleves
func (h *StudentHandler) CreateStudent(c *gin.Context) {
	var req dto.CreateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	student, err := h.studentSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleStudentError(c, err)
		return
	}

	response.Created(c, student)
}

// UpdateStudent 更新学生
// PUT /api/eleves/:id
func (h *StudentHandler) UpdateStudent(c *gin.Context) {
	var req dto.UpdateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	student, err := h.studentSvc.Update(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		h.handleStudentError(c, err)
		return
	}

	response.OK(c, student)
}

// DeleteStudent 删除学生（级联成绩、成绩单与账号）
// DELETE /api/eleves/:id
func (h *StudentHandler) DeleteStudent(c *gin.Context) {
	if err := h.studentSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.handleStudentError(c, err)
		return
	}

	response.OK(c, nil)
}

// ImportStudents 从 Excel 批量导入学生
// POST /api/eleves/import (multipart, 字段 file)
func (h *StudentHandler) ImportStudents(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, 12101, "请上传 Excel 文件（字段 file）")
		return
	}
	if fh.Size > maxImportFileSize {
		response.Error(c, http.StatusRequestEntityTooLarge, 12102, "导入文件不能超过 5MB")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	f, err := fh.Open()
	if err != nil {
		response.BadRequest(c, 12103, "无法读取上传文件")
		return
	}
	defer f.Close()

	rows, err := h.studentSvc.ParseImportFile(f)
	if err != nil {
		h.handleStudentError(c, err)
		return
	}

	result, err := h.studentSvc.Import(c.Request.Context(), rows, callerID)
	if err != nil {
		h.handleStudentError(c, err)
		return
	}

	response.OK(c, result)
}

// handleStudentError 统一处理学生模块业务错误
func (h *StudentHandler) handleStudentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrStudentNotFound):
		response.NotFound(c, 12001, "学生不存在")
	case errors.Is(err, service.ErrMatriculeExists):
		response.Conflict(c, 12002, "学号已存在")
	case errors.Is(err, service.ErrStudentEmailRequired):
		response.BadRequest(c, 12003, "创建学生账号时邮箱必填")
	case errors.Is(err, service.ErrEmailExists):
		response.Conflict(c, 12004, "邮箱已被使用")
	case errors.Is(err, service.ErrClassNotFound):
		response.BadRequest(c, 12005, "班级不存在")
	case errors.Is(err, service.ErrImportFileUnreadable):
		response.BadRequest(c, 12104, "无法解析 Excel 文件")
	case errors.Is(err, service.ErrImportNoData):
		response.BadRequest(c, 12105, "导入文件中没有数据")
	case errors.Is(err, service.ErrImportBadHeader):
		response.BadRequest(c, 12106, "表头缺少必填列（matricule、nom、prenom、sexe、classe）")
	case errors.Is(err, service.ErrImportTooManyRows):
		response.BadRequest(c, 12107, "导入行数超过上限")
	default:
		response.InternalError(c)
	}
}
