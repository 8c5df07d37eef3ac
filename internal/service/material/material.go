// Package material 负责心理健康资料的入库
// 解析 PDF 手册、分块、向量化并索引到 Elasticsearch，供对话时检索
package material

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/cloudwego/eino-ext/components/document/parser/pdf"
	"github.com/cloudwego/eino-ext/components/document/transformer/splitter/recursive"
	einoparser "github.com/cloudwego/eino/components/document/parser"
	"github.com/cloudwego/eino/components/embedding"
	"github.com/cloudwego/eino/components/indexer"
	"github.com/cloudwego/eino/schema"
	"github.com/google/uuid"

	"github.com/ashwinyue/aria/internal/config"
)

// Indexer 文档索引能力
type Indexer interface {
	Store(ctx context.Context, docs []*schema.Document, opts ...indexer.Option) ([]string, error)
}

// Service 资料入库服务
type Service struct {
	cfg      *config.Config
	embedder embedding.Embedder
	indexer  Indexer
}

// NewService 创建资料服务
func NewService(cfg *config.Config, embedder embedding.Embedder, indexer Indexer) *Service {
	return &Service{
		cfg:      cfg,
		embedder: embedder,
		indexer:  indexer,
	}
}

// IngestResult 入库结果
type IngestResult struct {
	Source   string        `json:"source"`
	Chunks   int           `json:"chunks"`
	Duration time.Duration `json:"duration"`
}

// IngestFile 入库一个资料文件
func (s *Service) IngestFile(ctx context.Context, path, title string) (*IngestResult, error) {
	if s.indexer == nil {
		return nil, fmt.Errorf("indexer not configured")
	}

	startTime := time.Now()

	docs, err := s.parseFile(ctx, path, title)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("no content parsed from %s", path)
	}

	chunks, err := s.splitDocuments(ctx, docs)
	if err != nil {
		return nil, fmt.Errorf("split %s: %w", path, err)
	}

	if _, err := s.indexer.Store(ctx, chunks); err != nil {
		return nil, fmt.Errorf("index %s: %w", path, err)
	}

	return &IngestResult{
		Source:   filepath.Base(path),
		Chunks:   len(chunks),
		Duration: time.Since(startTime),
	}, nil
}

// IngestDir 入库目录下的全部 PDF 资料
func (s *Service) IngestDir(ctx context.Context, dir string) ([]*IngestResult, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", dir, err)
	}

	var results []*IngestResult
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".pdf" {
			continue
		}
		result, err := s.IngestFile(ctx, filepath.Join(dir, entry.Name()), entry.Name())
		if err != nil {
			return results, err
		}
		results = append(results, result)
	}
	return results, nil
}

// parseFile 解析资料文件
func (s *Service) parseFile(ctx context.Context, path, title string) ([]*schema.Document, error) {
	fileParser, err := s.newParser(ctx, path)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	docs, err := fileParser.Parse(ctx, file)
	if err != nil {
		return nil, fmt.Errorf("parser failed: %w", err)
	}

	for _, d := range docs {
		if d.MetaData == nil {
			d.MetaData = make(map[string]any)
		}
		d.MetaData["source"] = filepath.Base(path)
		d.MetaData["title"] = title
	}

	return docs, nil
}

// newParser 创建解析器
func (s *Service) newParser(ctx context.Context, path string) (einoparser.Parser, error) {
	switch filepath.Ext(path) {
	case ".pdf":
		return pdf.NewPDFParser(ctx, &pdf.Config{ToPages: false})
	case ".txt", ".md":
		return &textParser{}, nil
	default:
		return nil, fmt.Errorf("unsupported file type: %s", filepath.Ext(path))
	}
}

// textParser 纯文本解析器
type textParser struct{}

func (p *textParser) Parse(_ context.Context, reader io.Reader, opts ...einoparser.Option) ([]*schema.Document, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read: %w", err)
	}
	if len(content) == 0 {
		return []*schema.Document{}, nil
	}
	return []*schema.Document{
		{Content: string(content), MetaData: make(map[string]any)},
	}, nil
}

// splitDocuments 分块
func (s *Service) splitDocuments(ctx context.Context, docs []*schema.Document) ([]*schema.Document, error) {
	splitter, err := recursive.NewSplitter(ctx, &recursive.Config{
		ChunkSize:   512,
		OverlapSize: 50,
		Separators:  []string{"\n\n", "\n", ". ", "。", "? ", "？", "! ", "！", ", ", "，", " ", ""},
		KeepType:    recursive.KeepTypeNone,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create splitter: %w", err)
	}

	chunks, err := splitter.Transform(ctx, docs)
	if err != nil {
		return nil, fmt.Errorf("splitter failed: %w", err)
	}

	for i, chunk := range chunks {
		chunk.ID = uuid.New().String()
		if chunk.MetaData == nil {
			chunk.MetaData = make(map[string]any)
		}
		chunk.MetaData["chunk_index"] = i
	}

	return chunks, nil
}
