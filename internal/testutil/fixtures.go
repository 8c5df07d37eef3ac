// Package testutil 提供测试辅助工具
package testutil

import (
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/ashwinyue/aria/internal/model"
)

// UserFixture 创建带有效密码哈希的测试用户
func UserFixture(t *testing.T, username, password string) *model.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return &model.User{
		ID:           "user-" + username,
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: string(hash),
	}
}

// TurnFixture 创建测试对话回合
func TurnFixture(userID string, chatID, turnID int, human, ai string) *model.ChatTurn {
	return &model.ChatTurn{
		UserID:       userID,
		ChatID:       chatID,
		TurnID:       turnID,
		HumanMessage: human,
		AIMessage:    ai,
		Timestamp:    time.Now(),
	}
}
