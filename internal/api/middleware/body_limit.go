package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// BodyLimit 请求体大小限制
// multipart 上传（学生导入）使用 uploadLimit，其余请求使用 jsonLimit
func BodyLimit(jsonLimit, uploadLimit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body == nil {
			c.Next()
			return
		}

		limit := jsonLimit
		if strings.HasPrefix(c.ContentType(), "multipart/") {
			limit = uploadLimit
		}
		if limit > 0 {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		}
		c.Next()
	}
}

// IsBodyTooLarge 判断读取请求体的错误是否由大小限制触发
func IsBodyTooLarge(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe)
}
