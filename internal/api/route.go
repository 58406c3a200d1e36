package api

import (
	"CopilotHub/internal/api/middleware"
	"CopilotHub/internal/pkg/consts"
	"CopilotHub/internal/pkg/logger"
	"net/http"

	"github.com/gin-gonic/gin"
)

func SetupRouter(group *HandlersGroup) *gin.Engine {
	r := gin.New()
	_ = r.SetTrustedProxies([]string{"localhost"})

	// TraceId & Logger & CORS
	r.Use(middleware.TraceMiddleware())
	r.Use(middleware.AuditMiddleware())
	r.Use(middleware.CORSMiddleware())
	logger.SetupGin(r)

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/ping", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"Code":    200,
				"Message": "pong",
				"Data":    nil,
			})
		})

		copilotGroup := apiGroup.Group("/copilot")
		{
			// 匿名可访问，浏览与评分按 IP 计
			actorGroup := copilotGroup.Group("")
			actorGroup.Use(middleware.AuthOptionalMiddleware(), middleware.ActorMiddleware())
			{
				actorGroup.GET("/get/:id", group.CopilotHandler.GetCopilot)
				actorGroup.GET("/query", group.CopilotHandler.QueryCopilots)
				actorGroup.POST("/rating", group.CopilotHandler.RateCopilot)
			}

			authGroup := copilotGroup.Group("")
			authGroup.Use(middleware.AuthMiddleware())
			{
				authGroup.POST("/upload", group.CopilotHandler.UploadCopilot)
				authGroup.POST("/update", group.CopilotHandler.UpdateCopilot)
				authGroup.POST("/delete", group.CopilotHandler.DeleteCopilot)
			}
		}

		adminGroup := apiGroup.Group("/admin")
		adminGroup.Use(middleware.AuthMiddleware(), middleware.CheckRoles(consts.RoleAdmin))
		{
			adminGroup.POST("/score/refresh", group.AdminHandler.RefreshScore)
		}
	}

	return r
}
