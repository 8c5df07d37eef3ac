package history

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	ecomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/kaptinlin/jsonrepair"

	"github.com/ashwinyue/aria/internal/model"
)

// moodContextTokens 情绪分类只看最近的少量对话
const moodContextTokens = 65

// Summarizer 对话收尾时的摘要、情绪分类与关注点提取
type Summarizer struct {
	chatModel ecomodel.BaseChatModel
}

// NewSummarizer 创建摘要器
func NewSummarizer(chatModel ecomodel.BaseChatModel) *Summarizer {
	return &Summarizer{chatModel: chatModel}
}

// Summarize 生成对话摘要
func (s *Summarizer) Summarize(ctx context.Context, messages []*schema.Message) (string, error) {
	if len(messages) == 0 {
		return "", nil
	}

	prompt := []*schema.Message{
		schema.SystemMessage("你是一名心理咨询记录员。请用第三人称简要总结下面这段心理支持对话，" +
			"包括用户的状态、谈到的话题和取得的进展。只输出摘要本身。"),
		schema.UserMessage(renderTranscript(messages)),
	}

	resp, err := s.chatModel.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("summarize conversation: %w", err)
	}
	return strings.TrimSpace(resp.Content), nil
}

// ClassifyMood 根据最近的对话判断用户情绪
// 返回单个形容词；无法判断时返回 nil
func (s *Summarizer) ClassifyMood(ctx context.Context, messages []*schema.Message) (*string, error) {
	window := Trim(messages, moodContextTokens)
	if len(window) == 0 {
		return nil, nil
	}

	prompt := []*schema.Message{
		schema.SystemMessage("根据下面的对话判断用户当前的情绪。" +
			"只回答一个描述情绪的形容词（如 anxious、hopeful、calm）。无法判断时回答 None。"),
		schema.UserMessage(renderTranscript(window)),
	}

	resp, err := s.chatModel.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("classify mood: %w", err)
	}

	mood := strings.TrimSpace(strings.Trim(resp.Content, `"'.`))
	if mood == "" || strings.EqualFold(mood, "none") {
		return nil, nil
	}
	// 只取第一个词，防止模型输出整句
	if i := strings.IndexAny(mood, " \n\t"); i > 0 {
		mood = mood[:i]
	}
	return &mood, nil
}

// ExtractConcerns 从对话中提取心理健康关注点的变化
// existing 为旅程中已记录的关注点，用于对齐标签
func (s *Summarizer) ExtractConcerns(ctx context.Context, messages []*schema.Message, existing []model.MentalHealthConcern) ([]model.ConcernProgress, error) {
	if len(messages) == 0 {
		return nil, nil
	}

	labels := make([]string, 0, len(existing))
	for _, c := range existing {
		labels = append(labels, c.Label)
	}

	prompt := []*schema.Message{
		schema.SystemMessage(fmt.Sprintf(`分析下面的心理支持对话，找出用户关注点的变化。
已记录的关注点标签：%s
输出 JSON 数组，每项形如 {"label": "anxiety", "delta": -1}，
delta 为严重程度变化（-2 到 2）。没有变化时输出 []。只输出 JSON。`,
			strings.Join(labels, ", "))),
		schema.UserMessage(renderTranscript(messages)),
	}

	resp, err := s.chatModel.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("extract concerns: %w", err)
	}

	var progress []model.ConcernProgress
	if err := json.Unmarshal([]byte(repairJSONArray(resp.Content)), &progress); err != nil {
		return nil, fmt.Errorf("parse concerns output: %w", err)
	}
	return progress, nil
}

// renderTranscript 将消息渲染为纯文本对话记录
func renderTranscript(messages []*schema.Message) string {
	var b strings.Builder
	for _, msg := range messages {
		switch msg.Role {
		case schema.User:
			b.WriteString("用户：")
		case schema.Assistant:
			b.WriteString("助手：")
		default:
			continue
		}
		b.WriteString(msg.Content)
		b.WriteString("\n")
	}
	return b.String()
}

// repairJSONArray 修复模型输出的 JSON 数组
// 策略：先尝试快速路径，再提取数组区域，最后用 jsonrepair 强力修复
func repairJSONArray(input string) string {
	s := strings.TrimSpace(input)

	// 快速路径：已经是有效的 JSON 数组
	if strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]") && json.Valid([]byte(s)) {
		return s
	}

	// 移除常见的 LLM 生成伪影
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)

	// 尝试提取数组区域
	i := strings.IndexByte(s, '[')
	j := strings.LastIndexByte(s, ']')
	if i >= 0 && j >= i {
		sub := s[i : j+1]
		if json.Valid([]byte(sub)) {
			return sub
		}
		s = sub
	}

	out, err := jsonrepair.JSONRepair(s)
	if err != nil {
		return s // 修复失败，返回原值
	}
	return out
}
