package agent

import (
	"encoding/json"
	"strings"

	"github.com/cloudwego/eino/schema"
)

// formatDocs 将检索到的文档渲染为提示词片段
// 每个文档一行 JSON，向量字段不进入提示词
func formatDocs(docs []*schema.Document) string {
	lines := make([]string, 0, len(docs))
	for _, doc := range docs {
		entry := map[string]interface{}{
			"content": doc.Content,
		}
		for k, v := range doc.MetaData {
			if isVectorKey(k) {
				continue
			}
			entry[k] = v
		}

		data, err := json.Marshal(entry)
		if err != nil {
			continue
		}
		lines = append(lines, string(data))
	}
	return strings.Join(lines, "\n")
}

// isVectorKey 判断元数据键是否为向量或嵌入字段
func isVectorKey(key string) bool {
	k := strings.ToLower(key)
	return strings.Contains(k, "vector") || strings.Contains(k, "embedding")
}
