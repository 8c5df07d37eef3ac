// Package session 维护活跃对话的内存与 Redis 两级缓存
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/redis/go-redis/v9"
)

const (
	// 会话在 Redis 中的过期时间（24小时）
	sessionTTL = 24 * time.Hour
	// Redis key 前缀
	sessionKeyPrefix = "aria:session:"
)

// Manager 会话管理器
// 以内存为主，Redis 作为跨实例共享的后备存储
type Manager struct {
	mu     sync.RWMutex
	memory map[string]*Session
	redis  *redis.Client
}

// Session 一次对话的缓存状态
type Session struct {
	UserID    string
	ChatID    int
	Messages  []*schema.Message
	CreatedAt time.Time
	UpdatedAt time.Time
}

// sessionData 会话数据（用于 Redis 存储）
type sessionData struct {
	UserID    string        `json:"user_id"`
	ChatID    int           `json:"chat_id"`
	Messages  []messageData `json:"messages"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// messageData 消息数据（用于 Redis 存储）
type messageData struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// roleToSchema 将字符串角色转换为 schema.RoleType
func roleToSchema(role string) schema.RoleType {
	switch role {
	case "system":
		return schema.System
	case "assistant":
		return schema.Assistant
	case "user":
		return schema.User
	default:
		return schema.User
	}
}

// NewManager 创建会话管理器，redisClient 可以为 nil
func NewManager(redisClient *redis.Client) *Manager {
	return &Manager{
		memory: make(map[string]*Session),
		redis:  redisClient,
	}
}

// sessionKey 对话的缓存键
func sessionKey(userID string, chatID int) string {
	return fmt.Sprintf("%s:%d", userID, chatID)
}

// Get 获取会话，不存在时创建
func (m *Manager) Get(ctx context.Context, userID string, chatID int) (*Session, error) {
	key := sessionKey(userID, chatID)

	m.mu.RLock()
	sess, ok := m.memory[key]
	m.mu.RUnlock()

	if ok {
		return sess, nil
	}

	// 从 Redis 加载
	if m.redis != nil {
		if sess := m.loadFromRedis(ctx, key); sess != nil {
			m.mu.Lock()
			m.memory[key] = sess
			m.mu.Unlock()
			return sess, nil
		}
	}

	// 创建新会话
	sess = &Session{
		UserID:    userID,
		ChatID:    chatID,
		Messages:  []*schema.Message{},
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	m.mu.Lock()
	m.memory[key] = sess
	m.mu.Unlock()

	return sess, nil
}

// Append 追加消息
func (m *Manager) Append(ctx context.Context, userID string, chatID int, msgs ...*schema.Message) error {
	sess, err := m.Get(ctx, userID, chatID)
	if err != nil {
		return err
	}

	m.mu.Lock()
	sess.Messages = append(sess.Messages, msgs...)
	sess.UpdatedAt = time.Now()
	m.mu.Unlock()

	// 同步到 Redis
	if m.redis != nil {
		if err := m.saveToRedis(ctx, sess); err != nil {
			// 记录错误但不影响主流程
			log.Printf("warning: failed to save session to redis: %v", err)
		}
	}

	return nil
}

// GetHistory 获取缓存中的历史消息
func (m *Manager) GetHistory(ctx context.Context, userID string, chatID int) ([]*schema.Message, error) {
	sess, err := m.Get(ctx, userID, chatID)
	if err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*schema.Message{}, sess.Messages...), nil
}

// Clear 清空一次对话的缓存
func (m *Manager) Clear(ctx context.Context, userID string, chatID int) error {
	key := sessionKey(userID, chatID)

	m.mu.Lock()
	delete(m.memory, key)
	m.mu.Unlock()

	if m.redis != nil {
		if err := m.redis.Del(ctx, sessionKeyPrefix+key).Err(); err != nil {
			log.Printf("warning: failed to delete session from redis: %v", err)
		}
	}

	return nil
}

// ClearUser 清空用户的全部会话缓存
func (m *Manager) ClearUser(ctx context.Context, userID string) error {
	m.mu.Lock()
	for key, sess := range m.memory {
		if sess.UserID == userID {
			delete(m.memory, key)
		}
	}
	m.mu.Unlock()

	if m.redis != nil {
		pattern := sessionKeyPrefix + userID + ":*"
		iter := m.redis.Scan(ctx, 0, pattern, 0).Iterator()
		for iter.Next(ctx) {
			if err := m.redis.Del(ctx, iter.Val()).Err(); err != nil {
				log.Printf("warning: failed to delete session from redis: %v", err)
			}
		}
		if err := iter.Err(); err != nil {
			return err
		}
	}

	return nil
}

// loadFromRedis 从 Redis 加载会话
func (m *Manager) loadFromRedis(ctx context.Context, key string) *Session {
	data, err := m.redis.Get(ctx, sessionKeyPrefix+key).Result()
	if err != nil {
		return nil
	}

	var sd sessionData
	if err := json.Unmarshal([]byte(data), &sd); err != nil {
		return nil
	}

	messages := make([]*schema.Message, len(sd.Messages))
	for i, md := range sd.Messages {
		messages[i] = &schema.Message{
			Role:    roleToSchema(md.Role),
			Content: md.Content,
		}
	}

	return &Session{
		UserID:    sd.UserID,
		ChatID:    sd.ChatID,
		Messages:  messages,
		CreatedAt: sd.CreatedAt,
		UpdatedAt: sd.UpdatedAt,
	}
}

// saveToRedis 保存会话到 Redis
func (m *Manager) saveToRedis(ctx context.Context, sess *Session) error {
	m.mu.RLock()
	messages := make([]messageData, len(sess.Messages))
	for i, msg := range sess.Messages {
		messages[i] = messageData{
			Role:    string(msg.Role),
			Content: msg.Content,
		}
	}
	sd := sessionData{
		UserID:    sess.UserID,
		ChatID:    sess.ChatID,
		Messages:  messages,
		CreatedAt: sess.CreatedAt,
		UpdatedAt: sess.UpdatedAt,
	}
	m.mu.RUnlock()

	data, err := json.Marshal(sd)
	if err != nil {
		return err
	}

	return m.redis.Set(ctx, sessionKeyPrefix+sessionKey(sess.UserID, sess.ChatID), data, sessionTTL).Err()
}
