package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"result-generator/backend/internal/api/middleware"
	"result-generator/backend/internal/dto"
	"result-generator/backend/internal/service"
	"result-generator/backend/pkg/response"
)

// StudentHandler 学生档案 HTTP 处理器
type StudentHandler struct {
	studentSvc service.StudentService
	importSvc  service.ImportService
}

// NewStudentHandler 创建 StudentHandler
func NewStudentHandler(studentSvc service.StudentService, importSvc service.ImportService) *StudentHandler {
	return &StudentHandler{studentSvc: studentSvc, importSvc: importSvc}
}

// Create 新建学生（同时创建空成绩记录）
// POST /api/v1/students
func (h *StudentHandler) Create(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CreateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	student, err := h.studentSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		handleStudentError(c, err)
		return
	}
	response.Created(c, student)
}

// List 学生列表
// GET /api/v1/students
func (h *StudentHandler) List(c *gin.Context) {
	var req dto.StudentListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindError(c, err)
		return
	}

	list, total, err := h.studentSvc.List(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// NextAdmission 预览下一个学籍号
// GET /api/v1/students/next-admission?class=5
func (h *StudentHandler) NextAdmission(c *gin.Context) {
	var req dto.NextAdmissionRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindError(c, err)
		return
	}

	admission, err := h.studentSvc.NextAdmission(c.Request.Context(), req.Class)
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, dto.NextAdmissionResponse{Admission: admission})
}

// ListByClass 班级学生
// GET /api/v1/students/class/:className?section=A
func (h *StudentHandler) ListByClass(c *gin.Context) {
	var req dto.ClassResultsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindError(c, err)
		return
	}

	list, err := h.studentSvc.ListByClass(c.Request.Context(), c.Param("className"), req.Section)
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, list)
}

// Get 学生详情
// GET /api/v1/students/:id
func (h *StudentHandler) Get(c *gin.Context) {
	student, err := h.studentSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleStudentError(c, err)
		return
	}
	response.OK(c, student)
}

// Update 更新学生（班级变化时同步成绩记录）
// PUT /api/v1/students/:id
func (h *StudentHandler) Update(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	student, err := h.studentSvc.Update(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		handleStudentError(c, err)
		return
	}
	response.OK(c, student)
}

// Delete 删除学生及成绩
// DELETE /api/v1/students/:id
func (h *StudentHandler) Delete(c *gin.Context) {
	if err := h.studentSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		handleStudentError(c, err)
		return
	}
	response.OKWithMessage(c, "Student deleted", nil)
}

// Import 从 Excel 批量导入学生
// POST /api/v1/students/import (multipart, 字段 file)
func (h *StudentHandler) Import(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	file, _, err := c.Request.FormFile("file")
	if err != nil {
		if middleware.IsBodyTooLarge(err) {
			bindError(c, err)
			return
		}
		response.BadRequest(c, 13010, "Please upload an .xlsx file in field 'file'")
		return
	}
	defer file.Close()

	rows, err := h.importSvc.ParseImportFile(file)
	if err != nil {
		handleStudentError(c, err)
		return
	}

	resp, err := h.importSvc.ImportStudents(c.Request.Context(), rows, callerID)
	if err != nil {
		handleStudentError(c, err)
		return
	}
	response.OK(c, resp)
}

func handleStudentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrStudentNotFound):
		response.NotFound(c, 13001, "Student not found")
	case errors.Is(err, service.ErrAdmissionExists):
		response.BadRequest(c, 13002, "Admission number already exists")
	case errors.Is(err, service.ErrInvalidDOB):
		response.BadRequest(c, 13003, "Date of birth must be YYYY-MM-DD")
	case errors.Is(err, service.ErrImportBadFile):
		response.BadRequest(c, 13011, "File is not a readable .xlsx workbook")
	case errors.Is(err, service.ErrImportBadHeader):
		response.BadRequest(c, 13012, "Header must contain name, roll, class and section columns")
	case errors.Is(err, service.ErrImportNoData):
		response.BadRequest(c, 13013, "Workbook has no data rows")
	case errors.Is(err, service.ErrImportTooManyRows):
		response.BadRequest(c, 13014, "Too many rows in one import")
	default:
		response.InternalError(c)
	}
}
