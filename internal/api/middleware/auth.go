package middleware

import (
	"CopilotHub/internal/pkg/consts"
	"CopilotHub/internal/pkg/redis"
	"CopilotHub/internal/pkg/response"
	"CopilotHub/internal/pkg/security"
	"context"
	"strings"

	"github.com/gin-gonic/gin"
)

const bearerPrefix = "Bearer "

func bearerToken(c *gin.Context) (string, bool) {
	token, ok := strings.CutPrefix(c.GetHeader("Authorization"), bearerPrefix)
	return token, ok && token != ""
}

// bindIdentity 写入 gin.Context 与 request ctx，供 handler 与 service 读取
func bindIdentity(c *gin.Context, claims *security.UserClaims) {
	c.Set(consts.UserIDKey, claims.UserID)
	c.Set(consts.RolesKey, claims.Roles)
	c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), consts.UserIDKey, claims.UserID))
}

// AuthMiddleware 必须登录，用户系统注销的 Token 签名会写入 Redis
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			response.Fail(c, response.Unauthorized, "Token 缺失或格式错误")
			c.Abort()
			return
		}

		signature, err := security.ExtractSignature(token)
		if err != nil {
			response.Fail(c, response.Unauthorized, "Token 缺失或格式错误")
			c.Abort()
			return
		}

		revoked, err := redis.GetValue(c.Request.Context(), signature)
		if err != nil {
			response.Fail(c, response.InternalServerError, "未知错误")
			c.Abort()
			return
		}
		if revoked != "" {
			response.Fail(c, response.Unauthorized, "Token 无效或已过期")
			c.Abort()
			return
		}

		claims, err := security.ValidateToken(token)
		if err != nil {
			response.Fail(c, response.Unauthorized, "Token 无效或已过期")
			c.Abort()
			return
		}

		bindIdentity(c, claims)
		c.Next()
	}
}
