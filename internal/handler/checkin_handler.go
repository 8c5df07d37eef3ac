package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ashwinyue/aria/internal/service"
	"github.com/ashwinyue/aria/internal/service/checkin"
)

// CheckInHandler 签到处理器
type CheckInHandler struct {
	svc *service.Services
}

// NewCheckInHandler 创建签到处理器
func NewCheckInHandler(svc *service.Services) *CheckInHandler {
	return &CheckInHandler{svc: svc}
}

// getCheckInID 解析路径中的签到ID
func getCheckInID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		badRequest(c, "invalid check-in id")
		return 0, false
	}
	return uint(id), true
}

// Create 创建签到计划
func (h *CheckInHandler) Create(c *gin.Context) {
	var req checkin.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid parameters: "+err.Error())
		return
	}

	result, err := h.svc.CheckIn.Create(c.Request.Context(), &req)
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	created(c, result)
}

// List 列出用户的签到计划
func (h *CheckInHandler) List(c *gin.Context) {
	userID := c.Param("user_id")

	checkIns, err := h.svc.CheckIn.List(c.Request.Context(), userID)
	if err != nil {
		errorResponse(c, err)
		return
	}

	success(c, gin.H{"check_ins": checkIns})
}

// Complete 完成签到，周期性计划会自动排下一次
func (h *CheckInHandler) Complete(c *gin.Context) {
	id, ok := getCheckInID(c)
	if !ok {
		return
	}
	userID := c.Param("user_id")

	result, err := h.svc.CheckIn.Complete(c.Request.Context(), id, userID)
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	success(c, result)
}

// Delete 删除签到计划
func (h *CheckInHandler) Delete(c *gin.Context) {
	id, ok := getCheckInID(c)
	if !ok {
		return
	}
	userID := c.Param("user_id")

	if err := h.svc.CheckIn.Delete(c.Request.Context(), id, userID); err != nil {
		badRequest(c, err.Error())
		return
	}

	success(c, gin.H{"message": "check-in deleted"})
}
