package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"result-generator/backend/internal/marksheet"
	"result-generator/backend/internal/service"
	pkgerrors "result-generator/backend/pkg/errors"
	"result-generator/backend/pkg/response"
)

// MarksheetHandler 成绩单下载 HTTP 处理器
type MarksheetHandler struct {
	marksheetSvc service.MarksheetService
	logger       *zap.Logger
}

// NewMarksheetHandler 创建 MarksheetHandler
func NewMarksheetHandler(marksheetSvc service.MarksheetService, logger *zap.Logger) *MarksheetHandler {
	return &MarksheetHandler{marksheetSvc: marksheetSvc, logger: logger}
}

// Download 生成并流式输出成绩单 PDF
// GET /api/v1/results/:studentId/marksheet
func (h *MarksheetHandler) Download(c *gin.Context) {
	studentID := c.Param("studentId")

	// 1. 先加载数据，NotFound 时返回 JSON 错误
	ms, err := h.marksheetSvc.Prepare(c.Request.Context(), studentID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrStudentNotFound):
			response.NotFound(c, 16001, "Student not found")
		case errors.Is(err, service.ErrResultNotFound):
			response.NotFound(c, 16002, "Result not found")
		default:
			response.InternalError(c)
		}
		return
	}

	// 2. 设置下载响应头后直接写入连接
	c.Header("Content-Type", marksheet.ContentType)
	c.Header("Content-Disposition", "attachment; filename="+ms.Filename)
	c.Status(http.StatusOK)

	if err := h.marksheetSvc.Render(c.Request.Context(), ms, c.Writer); err != nil {
		if errors.Is(err, pkgerrors.ErrRenderAborted) {
			h.logger.Warn("客户端断开，成绩单生成中止", zap.String("student_id", studentID), zap.Error(err))
			c.Abort()
			return
		}
		if !c.Writer.Written() {
			c.Writer.Header().Del("Content-Type")
			c.Writer.Header().Del("Content-Disposition")
			response.InternalError(c)
		}
		c.Abort()
	}
}
