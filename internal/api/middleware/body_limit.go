package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"edusen/backend/pkg/response"
)

// BodyLimit 请求体大小限制
// Content-Length 已知且超限时直接返回 413；未知长度的请求体由 MaxBytesReader 截断，
// 读取超限时绑定失败，由 handler 按参数错误处理
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxBytes <= 0 || c.Request.Body == nil {
			c.Next()
			return
		}

		if c.Request.ContentLength > maxBytes {
			response.Error(c, http.StatusRequestEntityTooLarge, 10005, "请求体过大")
			c.Abort()
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
