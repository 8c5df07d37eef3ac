package handler

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ashwinyue/aria/internal/service"
	"github.com/ashwinyue/aria/internal/service/auth"
)

// AuthHandler 认证处理器
type AuthHandler struct {
	svc *service.Services
}

// NewAuthHandler 创建认证处理器
func NewAuthHandler(svc *service.Services) *AuthHandler {
	return &AuthHandler{svc: svc}
}

// Signup 用户注册
func (h *AuthHandler) Signup(c *gin.Context) {
	var req auth.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid parameters: "+err.Error())
		return
	}

	user, err := h.svc.Auth.Signup(c.Request.Context(), &req)
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	created(c, gin.H{"user_id": user.ID, "username": user.Username})
}

// Login 用户登录
func (h *AuthHandler) Login(c *gin.Context) {
	var req auth.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid parameters: "+err.Error())
		return
	}

	resp, err := h.svc.Auth.Login(c.Request.Context(), &req)
	if err != nil {
		c.JSON(401, Response{Code: -1, Message: err.Error()})
		return
	}

	success(c, resp)
}

// ValidateToken 验证令牌
func (h *AuthHandler) ValidateToken(c *gin.Context) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		badRequest(c, "Missing Authorization header")
		return
	}

	tokenParts := strings.Split(authHeader, " ")
	if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
		badRequest(c, "Invalid Authorization header format")
		return
	}

	userID, err := h.svc.Auth.ValidateToken(c.Request.Context(), tokenParts[1])
	if err != nil {
		badRequest(c, "Invalid or expired token")
		return
	}

	success(c, gin.H{"user_id": userID})
}
