package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ashwinyue/aria/internal/service"
)

// ChatHandler 对话处理器
type ChatHandler struct {
	svc *service.Services
}

// NewChatHandler 创建对话处理器
func NewChatHandler(svc *service.Services) *ChatHandler {
	return &ChatHandler{svc: svc}
}

// SendMessageRequest 发送消息请求
// turn_id 缺省时由服务端根据已有回合推导
type SendMessageRequest struct {
	Prompt string `json:"prompt" binding:"required"`
	TurnID *int   `json:"turn_id"`
}

// getChatID 解析路径中的 chat_id
func getChatID(c *gin.Context) (int, bool) {
	chatID, err := strconv.Atoi(c.Param("chat_id"))
	if err != nil || chatID < 0 {
		badRequest(c, "invalid chat_id")
		return 0, false
	}
	return chatID, true
}

// Welcome 开始新对话并返回欢迎语
func (h *ChatHandler) Welcome(c *gin.Context) {
	userID := c.Param("user_id")

	result, err := h.svc.Lifecycle.GetWelcome(c.Request.Context(), userID)
	if err != nil {
		errorResponse(c, err)
		return
	}

	success(c, result)
}

// SendMessage 发送一条用户消息并返回助手回复
func (h *ChatHandler) SendMessage(c *gin.Context) {
	userID := c.Param("user_id")
	chatID, ok := getChatID(c)
	if !ok {
		return
	}

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid parameters: "+err.Error())
		return
	}

	turnID := -1
	if req.TurnID != nil {
		turnID = *req.TurnID
	}

	reply, err := h.svc.Lifecycle.SendMessage(c.Request.Context(), userID, chatID, req.Prompt, turnID)
	if err != nil {
		errorResponse(c, err)
		return
	}

	success(c, gin.H{"message": reply, "chat_id": chatID})
}

// Finalize 结束对话，生成摘要并更新用户档案
func (h *ChatHandler) Finalize(c *gin.Context) {
	userID := c.Param("user_id")
	chatID, ok := getChatID(c)
	if !ok {
		return
	}

	if err := h.svc.Lifecycle.FinalizeChat(c.Request.Context(), userID, chatID); err != nil {
		errorResponse(c, err)
		return
	}

	success(c, gin.H{"message": "chat finalized"})
}

// EraseUserData 删除用户的全部数据
func (h *ChatHandler) EraseUserData(c *gin.Context) {
	userID := c.Param("user_id")

	if err := h.svc.Lifecycle.EraseUserData(c.Request.Context(), userID); err != nil {
		errorResponse(c, err)
		return
	}

	success(c, gin.H{"message": "user data erased"})
}
