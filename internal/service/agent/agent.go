// Package agent 封装心理支持对话的编排逻辑
// 参考 eino-examples，直接使用 eino ADK，不做额外封装
package agent

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/cloudwego/eino/adk"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/retriever"
	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
)

// ErrNoReply 模型没有产生任何回复
var ErrNoReply = errors.New("agent produced no reply")

// Config 编排器配置
type Config struct {
	Name          string
	Description   string
	SystemPrompt  string
	ToolNames     []string
	TopK          int
	MaxIterations int
}

// Invoker 执行一次模型调用，返回助手的最终回复
// 接口抽象使编排逻辑可以脱离真实模型进行测试
type Invoker interface {
	Invoke(ctx context.Context, instruction string, messages []*schema.Message) (string, error)
}

// Orchestrator 对话编排器
// 负责组合系统提示词、检索上下文和历史消息，并调用模型
type Orchestrator struct {
	cfg       Config
	invoker   Invoker
	retriever retriever.Retriever
}

// NewOrchestrator 创建编排器
// 工具在构建时按名称解析，未知的工具名直接报错
func NewOrchestrator(cfg Config, chatModel model.ToolCallingChatModel, ret retriever.Retriever, allTools []tool.BaseTool) (*Orchestrator, error) {
	selected, err := resolveTools(context.Background(), cfg.ToolNames, allTools)
	if err != nil {
		return nil, err
	}

	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = 10
	}
	if cfg.TopK <= 0 {
		cfg.TopK = 3
	}

	return &Orchestrator{
		cfg: cfg,
		invoker: &adkInvoker{
			name:          cfg.Name,
			description:   cfg.Description,
			chatModel:     chatModel,
			tools:         selected,
			maxIterations: cfg.MaxIterations,
		},
		retriever: ret,
	}, nil
}

// NewOrchestratorWithInvoker 使用自定义 Invoker 创建编排器，供测试注入
func NewOrchestratorWithInvoker(cfg Config, invoker Invoker, ret retriever.Retriever) *Orchestrator {
	if cfg.TopK <= 0 {
		cfg.TopK = 3
	}
	return &Orchestrator{cfg: cfg, invoker: invoker, retriever: ret}
}

// Respond 生成对用户消息的回复
// history 为已裁剪的对话历史，query 为本轮用户输入
func (o *Orchestrator) Respond(ctx context.Context, query string, history []*schema.Message) (string, error) {
	instruction := o.composeInstruction(ctx, query)

	messages := make([]*schema.Message, 0, len(history)+1)
	messages = append(messages, history...)
	messages = append(messages, schema.UserMessage(query))

	answer, err := o.invoker.Invoke(ctx, instruction, messages)
	if err != nil {
		return "", err
	}
	if answer == "" {
		return "", ErrNoReply
	}
	return answer, nil
}

// composeInstruction 组合系统提示词与检索到的参考资料
// 检索失败只记录日志，不影响对话
func (o *Orchestrator) composeInstruction(ctx context.Context, query string) string {
	instruction := o.cfg.SystemPrompt

	if o.retriever == nil {
		return instruction
	}

	docs, err := o.retriever.Retrieve(ctx, query, retriever.WithTopK(o.cfg.TopK))
	if err != nil {
		log.Printf("retrieve context failed: %v", err)
		return instruction
	}
	if len(docs) == 0 {
		return instruction
	}

	return instruction + "\n\n参考资料：\n" + formatDocs(docs)
}

// ========== ADK Invoker ==========

// adkInvoker 基于 eino ADK 的模型调用实现
// 每次调用都用组合后的指令重建 Agent
type adkInvoker struct {
	name          string
	description   string
	chatModel     model.ToolCallingChatModel
	tools         []tool.BaseTool
	maxIterations int
}

func (i *adkInvoker) Invoke(ctx context.Context, instruction string, messages []*schema.Message) (string, error) {
	agentCfg := &adk.ChatModelAgentConfig{
		Name:          i.name,
		Description:   i.description,
		Instruction:   instruction,
		Model:         i.chatModel,
		MaxIterations: i.maxIterations,
	}
	if len(i.tools) > 0 {
		agentCfg.ToolsConfig = adk.ToolsConfig{
			ToolsNodeConfig: compose.ToolsNodeConfig{
				Tools: i.tools,
			},
		}
	}

	einoAgent, err := adk.NewChatModelAgent(ctx, agentCfg)
	if err != nil {
		return "", fmt.Errorf("failed to create agent: %w", err)
	}

	input := make([]adk.Message, 0, len(messages))
	for _, msg := range messages {
		input = append(input, msg)
	}

	iter := einoAgent.Run(ctx, &adk.AgentInput{
		Messages:        input,
		EnableStreaming: false,
	})

	// 收集最后一条助手消息
	var result string
	for {
		event, ok := iter.Next()
		if !ok {
			break
		}

		if event.Err != nil {
			if event.Err == io.EOF {
				break
			}
			return "", fmt.Errorf("agent event error: %w", event.Err)
		}

		if event.Output != nil && event.Output.MessageOutput != nil {
			msg, err := event.Output.MessageOutput.GetMessage()
			if err != nil {
				continue
			}
			if msg.Role == schema.Assistant {
				result = msg.Content
			}
		}
	}

	return result, nil
}

// resolveTools 根据名称解析工具
func resolveTools(ctx context.Context, names []string, allTools []tool.BaseTool) ([]tool.BaseTool, error) {
	if len(names) == 0 {
		return allTools, nil
	}

	toolMap := make(map[string]tool.BaseTool)
	for _, t := range allTools {
		info, err := t.Info(ctx)
		if err != nil {
			continue
		}
		toolMap[info.Name] = t
	}

	result := make([]tool.BaseTool, 0, len(names))
	for _, name := range names {
		t, ok := toolMap[name]
		if !ok {
			return nil, fmt.Errorf("tool not found: %s", name)
		}
		result = append(result, t)
	}

	return result, nil
}
