package middleware

import (
	"CopilotHub/internal/pkg/consts"
	"CopilotHub/internal/pkg/security"

	"github.com/gin-gonic/gin"
)

// AuthOptionalMiddleware 匿名访问时 UID 为 0，Token 无效按匿名处理
func AuthOptionalMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(consts.UserIDKey, uint64(0))
		if token, ok := bearerToken(c); ok {
			if claims, err := security.ValidateToken(token); err == nil {
				bindIdentity(c, claims)
			}
		}
		c.Next()
	}
}
