package middleware

import (
	"CopilotHub/internal/pkg/logger"

	"github.com/gin-gonic/gin"
)

// TraceMiddleware 沿用上游 trace id，缺失时生成，并回写到响应头
func TraceMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := c.GetHeader(logger.TraceHeader)
		if traceID == "" {
			traceID = logger.NewTraceID("")
		}

		c.Set(logger.TraceIDKey, traceID)
		c.Request = c.Request.WithContext(logger.WithTraceID(c.Request.Context(), traceID))
		c.Header(logger.TraceHeader, traceID)
		c.Next()
	}
}
