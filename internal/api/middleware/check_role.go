package middleware

import (
	"CopilotHub/internal/pkg/consts"
	"CopilotHub/internal/pkg/response"
	"slices"

	"github.com/gin-gonic/gin"
)

// CheckRoles 当前用户至少持有 requiredRoles 中的一个
func CheckRoles(requiredRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		roles := c.GetStringSlice(consts.RolesKey)
		if !slices.ContainsFunc(requiredRoles, func(r string) bool { return slices.Contains(roles, r) }) {
			response.Fail(c, response.Forbidden, "权限不足")
			c.Abort()
			return
		}
		c.Next()
	}
}
