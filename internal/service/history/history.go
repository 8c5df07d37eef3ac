// Package history 组装对话历史并裁剪到模型上下文窗口内
package history

import (
	"context"

	"github.com/cloudwego/eino/schema"

	"github.com/ashwinyue/aria/internal/config"
	"github.com/ashwinyue/aria/internal/model"
	"github.com/ashwinyue/aria/internal/repository"
)

// MessageCache 当前对话的消息缓存，读不到时回落到轮次仓库
type MessageCache interface {
	GetHistory(ctx context.Context, userID string, chatID int) ([]*schema.Message, error)
}

// Assembler 历史组装器
// 从轮次仓库读取最近的对话记录，转换为模型消息并裁剪
type Assembler struct {
	turns            repository.TurnStore
	cache            MessageCache
	historyLimit     int
	maxContextTokens int
}

// NewAssembler 创建历史组装器，cache 可以为 nil
func NewAssembler(turns repository.TurnStore, cache MessageCache, cfg *config.SessionConfig) *Assembler {
	return &Assembler{
		turns:            turns,
		cache:            cache,
		historyLimit:     cfg.HistoryLimit,
		maxContextTokens: cfg.MaxContextTokens,
	}
}

// Assemble 组装指定范围的对话历史
// current 范围优先读会话缓存，未命中再查轮次仓库；
// 返回时间升序的消息列表，总 token 预算为上下文窗口的一半
func (a *Assembler) Assemble(ctx context.Context, userID string, chatID int, scope repository.Scope) ([]*schema.Message, error) {
	if scope == repository.ScopeCurrent && a.cache != nil {
		if cached, err := a.cache.GetHistory(ctx, userID, chatID); err == nil && len(cached) > 0 {
			return Trim(cached, a.maxContextTokens/2), nil
		}
	}

	turns, err := a.turns.Query(userID, chatID, scope, a.historyLimit)
	if err != nil {
		return nil, err
	}

	return Trim(turnsToMessages(turns), a.maxContextTokens/2), nil
}

// AssembleAll 组装当前对话的全部轮次，不限量也不裁剪
// 收尾归档时摘要必须覆盖整个对话，因此不走缓存，直接以仓库为准
func (a *Assembler) AssembleAll(ctx context.Context, userID string, chatID int) ([]*schema.Message, error) {
	turns, err := a.turns.Query(userID, chatID, repository.ScopeCurrent, 0)
	if err != nil {
		return nil, err
	}
	return turnsToMessages(turns), nil
}

// turnsToMessages 将轮次记录转换为模型消息
func turnsToMessages(turns []*model.ChatTurn) []*schema.Message {
	messages := make([]*schema.Message, 0, len(turns)*2)
	for _, turn := range turns {
		// 欢迎轮次没有用户消息，摘要失败时可能没有 AI 消息
		if turn.HumanMessage != "" {
			messages = append(messages, schema.UserMessage(turn.HumanMessage))
		}
		if turn.AIMessage != "" {
			messages = append(messages, schema.AssistantMessage(turn.AIMessage, nil))
		}
	}
	return messages
}

// Trim 从最旧的消息开始丢弃，直到总 token 数不超过预算
// 裁剪后不会以孤立的 assistant 消息开头
func Trim(messages []*schema.Message, budget int) []*schema.Message {
	if budget <= 0 {
		return messages
	}

	total := EstimateTokens(messages)
	start := 0
	for start < len(messages) && total > budget {
		total -= estimateMessageTokens(messages[start])
		start++
	}

	// 丢掉用户消息后紧跟的回复也一并丢掉，保持问答成对
	// 未发生裁剪时保留开头的欢迎消息
	for start > 0 && start < len(messages) && messages[start].Role == schema.Assistant {
		total -= estimateMessageTokens(messages[start])
		start++
	}

	return messages[start:]
}

// EstimateTokens 估算消息列表的总 token 数
func EstimateTokens(messages []*schema.Message) int {
	total := 0
	for _, msg := range messages {
		total += estimateMessageTokens(msg)
	}
	return total
}

// estimateMessageTokens 粗略估算单条消息的 token 数，约 4 字符一个 token
func estimateMessageTokens(msg *schema.Message) int {
	n := len(msg.Content) / 4
	if n == 0 {
		n = 1
	}
	return n
}
