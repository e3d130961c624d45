package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"result-generator/backend/internal/api/middleware"
	"result-generator/backend/pkg/jwt"
	"result-generator/backend/pkg/response"
)

// MustGetUserID 从 Gin 上下文中安全提取 user_id。
// 如果 JWT 中间件未正确注入 user_id，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetUserID(c *gin.Context) (string, bool) {
	s := c.GetString(middleware.CtxUserID)
	if s == "" {
		response.Unauthorized(c, 10002, "Unauthenticated")
		return "", false
	}
	return s, true
}

// MustGetClaims 提取当前 Access Token 的声明（登出时用于吊销）
func MustGetClaims(c *gin.Context) (*jwt.Claims, bool) {
	v, exists := c.Get(middleware.CtxClaims)
	if !exists {
		response.Unauthorized(c, 10002, "Unauthenticated")
		return nil, false
	}
	claims, ok := v.(*jwt.Claims)
	if !ok || claims == nil {
		response.Unauthorized(c, 10002, "Unauthenticated")
		return nil, false
	}
	return claims, true
}

// bindError 参数绑定失败统一响应，超出请求体上限时返回 413
func bindError(c *gin.Context, err error) {
	if middleware.IsBodyTooLarge(err) {
		response.Error(c, http.StatusRequestEntityTooLarge, 10005, "Request body too large")
		return
	}
	response.ValidationFailed(c, err)
}
