package handler

import (
	"github.com/ashwinyue/aria/internal/service"
)

// Handlers 处理器集合
type Handlers struct {
	Chat     *ChatHandler
	Auth     *AuthHandler
	CheckIn  *CheckInHandler
	Material *MaterialHandler
	System   *SystemHandler
}

// NewHandlers 创建所有处理器
func NewHandlers(svc *service.Services) *Handlers {
	return &Handlers{
		Chat:     NewChatHandler(svc),
		Auth:     NewAuthHandler(svc),
		CheckIn:  NewCheckInHandler(svc),
		Material: NewMaterialHandler(svc),
		System:   NewSystemHandler(svc),
	}
}
