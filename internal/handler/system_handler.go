package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/ashwinyue/aria/internal/service"
)

// SystemHandler 系统处理器
type SystemHandler struct {
	svc *service.Services
}

// NewSystemHandler 创建系统处理器
func NewSystemHandler(svc *service.Services) *SystemHandler {
	return &SystemHandler{svc: svc}
}

// Health 健康检查
// GET /health
func (h *SystemHandler) Health(c *gin.Context) {
	c.JSON(200, gin.H{
		"status":  "ok",
		"name":    h.svc.Config.App.Name,
		"version": h.svc.Config.App.Version,
	})
}

// Info 系统信息
// GET /api/v1/system/info
func (h *SystemHandler) Info(c *gin.Context) {
	success(c, gin.H{
		"name":        h.svc.Config.App.Name,
		"version":     h.svc.Config.App.Version,
		"environment": h.svc.Config.App.Environment,
		"provider":    h.svc.Config.AI.Provider,
		"tools":       len(h.svc.AllTools),
	})
}
