package session

import (
	"context"
	"sync"
	"testing"

	"github.com/cloudwego/eino/schema"
)

func TestManager_GetCreatesSession(t *testing.T) {
	m := NewManager(nil)

	sess, err := m.Get(context.Background(), "user1", 0)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if sess.UserID != "user1" || sess.ChatID != 0 {
		t.Errorf("session identity = %s/%d", sess.UserID, sess.ChatID)
	}
	if len(sess.Messages) != 0 {
		t.Errorf("new session has %d messages", len(sess.Messages))
	}
}

func TestManager_AppendAndGetHistory(t *testing.T) {
	m := NewManager(nil)
	ctx := context.Background()

	err := m.Append(ctx, "user1", 0,
		schema.UserMessage("你好"),
		schema.AssistantMessage("你好，我在听", nil),
	)
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	history, err := m.GetHistory(ctx, "user1", 0)
	if err != nil {
		t.Fatalf("GetHistory() error = %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("GetHistory() returned %d messages, want 2", len(history))
	}
	if history[0].Content != "你好" {
		t.Errorf("history[0].Content = %q", history[0].Content)
	}
}

func TestManager_SessionsAreIsolated(t *testing.T) {
	m := NewManager(nil)
	ctx := context.Background()

	_ = m.Append(ctx, "user1", 0, schema.UserMessage("对话0"))
	_ = m.Append(ctx, "user1", 1, schema.UserMessage("对话1"))
	_ = m.Append(ctx, "user2", 0, schema.UserMessage("别的用户"))

	h, _ := m.GetHistory(ctx, "user1", 0)
	if len(h) != 1 || h[0].Content != "对话0" {
		t.Errorf("user1/0 history = %v", h)
	}
	h, _ = m.GetHistory(ctx, "user1", 1)
	if len(h) != 1 || h[0].Content != "对话1" {
		t.Errorf("user1/1 history = %v", h)
	}
}

func TestManager_Clear(t *testing.T) {
	m := NewManager(nil)
	ctx := context.Background()

	_ = m.Append(ctx, "user1", 0, schema.UserMessage("你好"))
	_ = m.Clear(ctx, "user1", 0)

	history, _ := m.GetHistory(ctx, "user1", 0)
	if len(history) != 0 {
		t.Errorf("history after Clear() has %d messages", len(history))
	}
}

func TestManager_ClearUser(t *testing.T) {
	m := NewManager(nil)
	ctx := context.Background()

	_ = m.Append(ctx, "user1", 0, schema.UserMessage("a"))
	_ = m.Append(ctx, "user1", 1, schema.UserMessage("b"))
	_ = m.Append(ctx, "user2", 0, schema.UserMessage("c"))

	if err := m.ClearUser(ctx, "user1"); err != nil {
		t.Fatalf("ClearUser() error = %v", err)
	}

	if h, _ := m.GetHistory(ctx, "user1", 0); len(h) != 0 {
		t.Errorf("user1/0 not cleared")
	}
	if h, _ := m.GetHistory(ctx, "user1", 1); len(h) != 0 {
		t.Errorf("user1/1 not cleared")
	}
	// 其他用户不受影响
	if h, _ := m.GetHistory(ctx, "user2", 0); len(h) != 1 {
		t.Errorf("user2/0 was cleared")
	}
}

func TestManager_ConcurrentAppend(t *testing.T) {
	m := NewManager(nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = m.Append(ctx, "user1", 0, schema.UserMessage("msg"))
		}()
	}
	wg.Wait()

	history, _ := m.GetHistory(ctx, "user1", 0)
	if len(history) != 20 {
		t.Errorf("history has %d messages, want 20", len(history))
	}
}
