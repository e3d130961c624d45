package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"result-generator/backend/internal/dto"
	"result-generator/backend/internal/service"
	"result-generator/backend/pkg/response"
)

// UserHandler 账号管理 HTTP 处理器
type UserHandler struct {
	userSvc service.UserService
}

// NewUserHandler 创建 UserHandler
func NewUserHandler(userSvc service.UserService) *UserHandler {
	return &UserHandler{userSvc: userSvc}
}

// ListUsers 账号列表（管理员）
// GET /api/v1/users
func (h *UserHandler) ListUsers(c *gin.Context) {
	var req dto.UserListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindError(c, err)
		return
	}

	users, total, err := h.userSvc.List(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, users, total, req.GetPage(), req.GetPageSize())
}

// SetActive 启用/停用账号
// PUT /api/v1/users/:id/active
func (h *UserHandler) SetActive(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.SetUserActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	if err := h.userSvc.SetActive(c.Request.Context(), c.Param("id"), *req.IsActive, callerID); err != nil {
		handleUserError(c, err)
		return
	}
	response.OK(c, nil)
}

// ResetPassword 重置密码
// POST /api/v1/users/:id/reset-password
func (h *UserHandler) ResetPassword(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	resp, err := h.userSvc.ResetPassword(c.Request.Context(), c.Param("id"), callerID)
	if err != nil {
		handleUserError(c, err)
		return
	}
	response.OK(c, resp)
}

func handleUserError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, 12001, "User not found")
	case errors.Is(err, service.ErrUserSelfDeactivate):
		response.BadRequest(c, 12002, "You cannot deactivate your own account")
	case errors.Is(err, service.ErrLastAdmin):
		response.BadRequest(c, 12003, "At least one active admin is required")
	default:
		response.InternalError(c)
	}
}

