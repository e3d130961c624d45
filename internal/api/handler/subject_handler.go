package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"result-generator/backend/internal/dto"
	"result-generator/backend/internal/service"
	"result-generator/backend/pkg/response"
)

// SubjectHandler 班级科目配置 HTTP 处理器
type SubjectHandler struct {
	subjectSvc service.SubjectService
}

// NewSubjectHandler 创建 SubjectHandler
func NewSubjectHandler(subjectSvc service.SubjectService) *SubjectHandler {
	return &SubjectHandler{subjectSvc: subjectSvc}
}

// Upsert 设置班级科目
// POST /api/v1/subjects
func (h *SubjectHandler) Upsert(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.UpsertSubjectsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	resp, err := h.subjectSvc.Upsert(c.Request.Context(), &req, callerID)
	if err != nil {
		if errors.Is(err, service.ErrEmptySubjects) {
			response.BadRequest(c, 15001, "Subject list is empty")
			return
		}
		response.InternalError(c)
		return
	}
	response.OK(c, resp)
}

// ListAll 全部班级科目配置
// GET /api/v1/subjects
func (h *SubjectHandler) ListAll(c *gin.Context) {
	list, err := h.subjectSvc.ListAll(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, list)
}

// GetByClass 某班级科目（未配置时返回默认）
// GET /api/v1/subjects/:className
func (h *SubjectHandler) GetByClass(c *gin.Context) {
	resp, err := h.subjectSvc.GetByClass(c.Request.Context(), c.Param("className"))
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, resp)
}
