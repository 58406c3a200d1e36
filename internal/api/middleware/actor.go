package middleware

import (
	"CopilotHub/internal/pkg/consts"
	"strconv"

	"github.com/gin-gonic/gin"
)

// ActorMiddleware 标识本次访问者：登录用户为用户 ID，匿名访问为客户端 IP
func ActorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := c.ClientIP()
		if uid := c.GetUint64(consts.UserIDKey); uid > 0 {
			actor = strconv.FormatUint(uid, 10)
		}
		c.Set(consts.ActorKey, actor)
		c.Next()
	}
}
