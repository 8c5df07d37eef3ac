package router

import (
	"github.com/gin-gonic/gin"

	"github.com/ashwinyue/aria/internal/handler"
	"github.com/ashwinyue/aria/internal/middleware"
	"github.com/ashwinyue/aria/internal/service"
)

// SetupRouter 设置路由
func SetupRouter(h *handler.Handlers, svc *service.Services) *gin.Engine {
	r := gin.New()

	// 中间件
	r.Use(middleware.RecoveryMiddleware())
	r.Use(middleware.LoggingMiddleware())
	r.Use(middleware.CORSMiddleware())

	// 健康检查
	r.GET("/health", h.System.Health)

	// 认证（无需登录）
	r.POST("/signup", h.Auth.Signup)
	r.POST("/login", h.Auth.Login)
	r.GET("/validate", h.Auth.ValidateToken)

	// API v1
	v1 := r.Group("/api/v1")
	v1.Use(middleware.AuthMiddleware(svc.Auth))
	{
		// 对话生命周期
		ai := v1.Group("/ai/mental_health")
		{
			ai.GET("/welcome/:user_id", h.Chat.Welcome)
			ai.POST("/finalize/:user_id/:chat_id", h.Chat.Finalize)
			ai.DELETE("/user_data/:user_id", h.Chat.EraseUserData)
			ai.POST("/:user_id/:chat_id", h.Chat.SendMessage)
		}

		// 签到
		checkIns := v1.Group("/check_ins")
		{
			checkIns.POST("", h.CheckIn.Create)
			checkIns.GET("/:user_id", h.CheckIn.List)
			checkIns.POST("/:user_id/:id/complete", h.CheckIn.Complete)
			checkIns.DELETE("/:user_id/:id", h.CheckIn.Delete)
		}

		// 资料入库
		materials := v1.Group("/materials")
		{
			materials.POST("/upload", h.Material.Upload)
			materials.POST("/ingest_dir", h.Material.IngestDir)
		}

		// 系统
		v1.GET("/system/info", h.System.Info)
	}

	return r
}
