// ES8 索引器，使用 eino-ext 官方组件
package material

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/cloudwego/eino-ext/components/indexer/es8"
	"github.com/cloudwego/eino/components/embedding"
	"github.com/cloudwego/eino/schema"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/ashwinyue/aria/internal/config"
)

// NewES8Indexer 创建 ES8 索引器并确保索引存在
func NewES8Indexer(ctx context.Context, cfg *config.Config, embedder embedding.Embedder) (Indexer, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.Elastic.Host},
		Username:  cfg.Elastic.Username,
		Password:  cfg.Elastic.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create ES client: %w", err)
	}

	indexName := cfg.Elastic.IndexPrefix + "_materials"

	if err := ensureESIndex(ctx, client, indexName, cfg.AI.Embedding.Dimensions); err != nil {
		return nil, fmt.Errorf("failed to ensure index: %w", err)
	}

	indexer, err := es8.NewIndexer(ctx, &es8.IndexerConfig{
		Client:    client,
		Index:     indexName,
		BatchSize: 10,
		Embedding: embedder,
		DocumentToFields: func(ctx context.Context, doc *schema.Document) (map[string]es8.FieldValue, error) {
			return documentToESFields(doc), nil
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create ES8 indexer: %w", err)
	}

	return indexer, nil
}

// documentToESFields 将 Eino Document 转换为 ES 字段
func documentToESFields(doc *schema.Document) map[string]es8.FieldValue {
	fields := make(map[string]es8.FieldValue)

	// 内容字段需要向量化
	fields["content"] = es8.FieldValue{
		Value:    doc.Content,
		EmbedKey: "content_vector",
	}

	for k, v := range doc.MetaData {
		fields[k] = es8.FieldValue{Value: v}
	}

	return fields
}

// ensureESIndex 确保 ES 索引存在（如不存在则创建）
func ensureESIndex(ctx context.Context, client *elasticsearch.Client, indexName string, dimensions int) error {
	res, err := client.Indices.Exists([]string{indexName})
	if err != nil {
		return fmt.Errorf("failed to check index existence: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == 200 {
		return nil
	}

	if dimensions == 0 {
		dimensions = 1536
	}

	mapping := map[string]interface{}{
		"mappings": map[string]interface{}{
			"properties": map[string]interface{}{
				"content": map[string]interface{}{
					"type": "text",
				},
				"content_vector": map[string]interface{}{
					"type":       "dense_vector",
					"dims":       dimensions,
					"index":      true,
					"similarity": "cosine",
				},
				"source": map[string]interface{}{
					"type": "keyword",
				},
				"title": map[string]interface{}{
					"type": "keyword",
				},
				"chunk_index": map[string]interface{}{
					"type": "integer",
				},
			},
		},
		"settings": map[string]interface{}{
			"number_of_shards":   1,
			"number_of_replicas": 0,
		},
	}

	mappingData, err := json.Marshal(mapping)
	if err != nil {
		return fmt.Errorf("failed to marshal mapping: %w", err)
	}

	req := esapi.IndicesCreateRequest{
		Index: indexName,
		Body:  bytes.NewReader(mappingData),
	}

	res, err = req.Do(ctx, client)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("failed to create index: %s", res.String())
	}

	log.Printf("index %s created with %d dimensions", indexName, dimensions)
	return nil
}
