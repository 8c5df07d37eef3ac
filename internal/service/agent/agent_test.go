package agent

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/cloudwego/eino/components/retriever"
	"github.com/cloudwego/eino/schema"
)

// ========== Mocks ==========

type mockInvoker struct {
	answer          string
	err             error
	lastInstruction string
	lastMessages    []*schema.Message
}

func (m *mockInvoker) Invoke(ctx context.Context, instruction string, messages []*schema.Message) (string, error) {
	m.lastInstruction = instruction
	m.lastMessages = messages
	return m.answer, m.err
}

type mockRetriever struct {
	docs      []*schema.Document
	err       error
	lastQuery string
}

func (m *mockRetriever) Retrieve(ctx context.Context, query string, opts ...retriever.Option) ([]*schema.Document, error) {
	m.lastQuery = query
	if m.err != nil {
		return nil, m.err
	}
	return m.docs, nil
}

func testConfig() Config {
	return Config{
		Name:         "aria",
		SystemPrompt: "你是心理支持助手 Aria。",
		TopK:         3,
	}
}

// ========== Respond 测试 ==========

func TestOrchestrator_Respond(t *testing.T) {
	invoker := &mockInvoker{answer: "听起来你最近很辛苦。"}
	o := NewOrchestratorWithInvoker(testConfig(), invoker, nil)

	history := []*schema.Message{
		schema.AssistantMessage("你好", nil),
	}
	answer, err := o.Respond(context.Background(), "我睡不着", history)

	if err != nil {
		t.Fatalf("Respond() error = %v", err)
	}
	if answer != "听起来你最近很辛苦。" {
		t.Errorf("Respond() = %q", answer)
	}

	// 历史在前，本轮用户消息在最后
	if len(invoker.lastMessages) != 2 {
		t.Fatalf("invoker got %d messages, want 2", len(invoker.lastMessages))
	}
	last := invoker.lastMessages[len(invoker.lastMessages)-1]
	if last.Role != schema.User || last.Content != "我睡不着" {
		t.Errorf("last message = %v %q", last.Role, last.Content)
	}
	if invoker.lastInstruction != "你是心理支持助手 Aria。" {
		t.Errorf("instruction = %q", invoker.lastInstruction)
	}
}

func TestOrchestrator_RespondWithRetrieval(t *testing.T) {
	ret := &mockRetriever{
		docs: []*schema.Document{
			{Content: "渐进式肌肉放松有助于入睡", MetaData: map[string]interface{}{"source": "cbt-handbook"}},
		},
	}
	invoker := &mockInvoker{answer: "可以试试渐进式肌肉放松。"}
	o := NewOrchestratorWithInvoker(testConfig(), invoker, ret)

	_, err := o.Respond(context.Background(), "我睡不着", nil)
	if err != nil {
		t.Fatalf("Respond() error = %v", err)
	}

	if ret.lastQuery != "我睡不着" {
		t.Errorf("retriever query = %q", ret.lastQuery)
	}
	if !strings.Contains(invoker.lastInstruction, "参考资料") {
		t.Errorf("instruction missing retrieval context: %q", invoker.lastInstruction)
	}
	if !strings.Contains(invoker.lastInstruction, "渐进式肌肉放松有助于入睡") {
		t.Errorf("instruction missing doc content: %q", invoker.lastInstruction)
	}
}

func TestOrchestrator_RespondRetrieverFailure(t *testing.T) {
	ret := &mockRetriever{err: errors.New("es unavailable")}
	invoker := &mockInvoker{answer: "我在听。"}
	o := NewOrchestratorWithInvoker(testConfig(), invoker, ret)

	// 检索失败不应阻断对话
	answer, err := o.Respond(context.Background(), "你好", nil)
	if err != nil {
		t.Fatalf("Respond() error = %v", err)
	}
	if answer != "我在听。" {
		t.Errorf("Respond() = %q", answer)
	}
	if strings.Contains(invoker.lastInstruction, "参考资料") {
		t.Errorf("instruction should not contain retrieval context on failure")
	}
}

func TestOrchestrator_RespondNoReply(t *testing.T) {
	o := NewOrchestratorWithInvoker(testConfig(), &mockInvoker{answer: ""}, nil)

	_, err := o.Respond(context.Background(), "你好", nil)
	if !errors.Is(err, ErrNoReply) {
		t.Fatalf("Respond() error = %v, want ErrNoReply", err)
	}
}

func TestOrchestrator_RespondInvokerError(t *testing.T) {
	invokeErr := errors.New("model unavailable")
	o := NewOrchestratorWithInvoker(testConfig(), &mockInvoker{err: invokeErr}, nil)

	_, err := o.Respond(context.Background(), "你好", nil)
	if !errors.Is(err, invokeErr) {
		t.Fatalf("Respond() error = %v, want %v", err, invokeErr)
	}
}

// ========== formatDocs 测试 ==========

func TestFormatDocs(t *testing.T) {
	docs := []*schema.Document{
		{
			Content: "焦虑管理技巧",
			MetaData: map[string]interface{}{
				"source":        "handbook",
				"contentVector": []float64{0.1, 0.2},
				"_embedding":    []float64{0.3},
			},
		},
		{Content: "呼吸练习"},
	}

	out := formatDocs(docs)
	lines := strings.Split(out, "\n")

	if len(lines) != 2 {
		t.Fatalf("formatDocs() produced %d lines, want 2", len(lines))
	}
	if !strings.Contains(lines[0], "焦虑管理技巧") || !strings.Contains(lines[0], "handbook") {
		t.Errorf("lines[0] = %q", lines[0])
	}
	if strings.Contains(out, "Vector") || strings.Contains(out, "embedding") {
		t.Errorf("vector metadata leaked into prompt: %q", out)
	}
	if !strings.Contains(lines[1], "呼吸练习") {
		t.Errorf("lines[1] = %q", lines[1])
	}
}

func TestFormatDocsEmpty(t *testing.T) {
	if out := formatDocs(nil); out != "" {
		t.Errorf("formatDocs(nil) = %q, want empty", out)
	}
}
