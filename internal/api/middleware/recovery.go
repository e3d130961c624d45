package middleware

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"result-generator/backend/pkg/response"
)

// Recovery panic 恢复，记录堆栈并返回统一 500 响应
func Recovery(logger *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.Error("请求处理 panic",
			zap.Any("panic", recovered),
			zap.String("path", c.Request.URL.Path),
			zap.String("request_id", c.GetString(requestIDKey)),
			zap.Stack("stack"),
		)
		if !c.Writer.Written() {
			// 下载接口可能已设置文件响应头
			c.Writer.Header().Del("Content-Type")
			c.Writer.Header().Del("Content-Disposition")
			response.InternalError(c)
		}
		c.Abort()
	})
}
