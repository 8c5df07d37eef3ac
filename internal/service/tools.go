package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/cloudwego/eino-ext/components/retriever/es8"
	duckduckgo "github.com/cloudwego/eino-ext/components/tool/duckduckgo/v2"
	wikipediatool "github.com/cloudwego/eino-ext/components/tool/wikipedia"
	"github.com/cloudwego/eino/components/retriever"
	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"
)

// newTools 初始化 Agent 可用的全部工具
func newTools(ctx context.Context, materialRetriever *es8.Retriever) []tool.BaseTool {
	tools := []tool.BaseTool{}

	// 网络搜索 (eino-ext duckduckgo)
	tools = append(tools, newWebSearchTool(ctx))

	// Wikipedia 搜索 (eino-ext wikipedia)
	wikiTool, err := wikipediatool.NewTool(ctx, &wikipediatool.Config{
		Language: "en",
		TopK:     3,
	})
	if err != nil {
		log.Printf("Warning: failed to create wikipedia tool: %v", err)
	} else {
		tools = append(tools, wikiTool)
	}

	// 资料库搜索
	if materialRetriever != nil {
		tools = append(tools, newMaterialSearchTool(materialRetriever))
	}

	return tools
}

// newWebSearchTool 创建网络搜索工具
func newWebSearchTool(ctx context.Context) tool.InvokableTool {
	searchTool, err := duckduckgo.NewTextSearchTool(ctx, &duckduckgo.Config{
		ToolName:   "web_search",
		ToolDesc:   "Search the web for current information, such as local support groups or mental health services.",
		MaxResults: 10,
	})
	if err != nil {
		log.Printf("Warning: failed to create web search tool: %v", err)
		return &stubTool{name: "web_search"}
	}

	return searchTool
}

// MaterialSearchTool 心理健康资料库搜索工具
type MaterialSearchTool struct {
	retriever *es8.Retriever
}

// newMaterialSearchTool 创建资料库搜索工具
func newMaterialSearchTool(r *es8.Retriever) tool.InvokableTool {
	return &MaterialSearchTool{retriever: r}
}

func (t *MaterialSearchTool) Info(ctx context.Context) (*schema.ToolInfo, error) {
	return &schema.ToolInfo{
		Name: "material_search",
		Desc: "Searches the mental health material library (CBT handbooks, coping techniques) for relevant guidance.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"query": {
				Type:     schema.String,
				Desc:     "The search query",
				Required: true,
			},
			"top_k": {
				Type: schema.Integer,
				Desc: "Number of results (optional, default 3)",
			},
		}),
	}, nil
}

func (t *MaterialSearchTool) InvokableRun(ctx context.Context, argumentsInJSON string, opts ...tool.Option) (string, error) {
	var input struct {
		Query string `json:"query"`
		TopK  int    `json:"top_k"`
	}
	if err := json.Unmarshal([]byte(argumentsInJSON), &input); err != nil {
		return "", fmt.Errorf("failed to parse arguments: %w", err)
	}

	if input.Query == "" {
		return "", fmt.Errorf("query is required")
	}
	if input.TopK <= 0 {
		input.TopK = 3
	}

	docs, err := t.retriever.Retrieve(ctx, input.Query, retriever.WithTopK(input.TopK))
	if err != nil {
		return "", fmt.Errorf("retriever failed: %w", err)
	}

	results := make([]map[string]interface{}, 0, len(docs))
	for _, doc := range docs {
		result := map[string]interface{}{
			"content": doc.Content,
			"score":   doc.Score(),
		}
		if doc.MetaData != nil {
			if title, ok := doc.MetaData["title"].(string); ok {
				result["title"] = title
			}
		}
		results = append(results, result)
	}

	output, _ := json.MarshalIndent(map[string]interface{}{
		"results": results,
		"total":   len(results),
		"query":   input.Query,
	}, "", "  ")

	return string(output), nil
}

// stubTool 占位工具
type stubTool struct {
	name string
}

func (t *stubTool) Info(ctx context.Context) (*schema.ToolInfo, error) {
	return &schema.ToolInfo{
		Name: t.name,
		Desc: t.name + " (unavailable)",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"query": {
				Type:     schema.String,
				Desc:     "The query string",
				Required: true,
			},
		}),
	}, nil
}

func (t *stubTool) InvokableRun(ctx context.Context, argumentsInJSON string, opts ...tool.Option) (string, error) {
	return fmt.Sprintf(`{"error":"%s is not available"}`, t.name), nil
}
