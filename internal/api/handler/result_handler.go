package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"result-generator/backend/internal/dto"
	"result-generator/backend/internal/service"
	"result-generator/backend/pkg/response"
)

// ResultHandler 成绩模块 HTTP 处理器
type ResultHandler struct {
	resultSvc service.ResultService
}

// NewResultHandler 创建 ResultHandler
func NewResultHandler(resultSvc service.ResultService) *ResultHandler {
	return &ResultHandler{resultSvc: resultSvc}
}

// SaveMarks 保存某一学期分数
// POST /api/v1/results/:studentId/marks
func (h *ResultHandler) SaveMarks(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.SaveMarksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.resultSvc.SaveMarks(c.Request.Context(), c.Param("studentId"), &req, callerID)
	if err != nil {
		handleResultError(c, err)
		return
	}
	response.OK(c, result)
}

// UpdateCoScholastic 更新非学科评价
// PUT /api/v1/results/:studentId/co-scholastic
func (h *ResultHandler) UpdateCoScholastic(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CoScholasticPatch
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.resultSvc.UpdateCoScholastic(c.Request.Context(), c.Param("studentId"), &req, callerID)
	if err != nil {
		handleResultError(c, err)
		return
	}
	response.OK(c, result)
}

// Calculate 手动重算
// POST /api/v1/results/:studentId/calculate
func (h *ResultHandler) Calculate(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	calc, err := h.resultSvc.Recalculate(c.Request.Context(), c.Param("studentId"), callerID)
	if err != nil {
		handleResultError(c, err)
		return
	}
	response.OK(c, calc)
}

// Get 成绩详情
// GET /api/v1/results/:studentId
func (h *ResultHandler) Get(c *gin.Context) {
	result, err := h.resultSvc.Get(c.Request.Context(), c.Param("studentId"))
	if err != nil {
		handleResultError(c, err)
		return
	}
	response.OK(c, result)
}

// ListByClass 班级成绩排名
// GET /api/v1/results/class/:className?section=A
func (h *ResultHandler) ListByClass(c *gin.Context) {
	var req dto.ClassResultsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindError(c, err)
		return
	}

	resp, err := h.resultSvc.ListByClass(c.Request.Context(), c.Param("className"), req.Section)
	if err != nil {
		handleResultError(c, err)
		return
	}
	response.OK(c, resp)
}

func handleResultError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrStudentNotFound):
		response.NotFound(c, 14001, "Student not found")
	case errors.Is(err, service.ErrResultNotFound):
		response.NotFound(c, 14002, "Result not found")
	case errors.Is(err, service.ErrInvalidTerm):
		response.BadRequest(c, 14003, "Term must be term1 or term2")
	case errors.Is(err, service.ErrDuplicateSubject):
		response.BadRequest(c, 14004, "Each subject may appear only once per term")
	default:
		response.InternalError(c)
	}
}
