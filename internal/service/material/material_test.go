package material

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/cloudwego/eino/components/indexer"
	"github.com/cloudwego/eino/schema"

	"github.com/ashwinyue/aria/internal/config"
)

// ========== Mock Indexer ==========

type mockIndexer struct {
	stored []*schema.Document
	err    error
}

func (m *mockIndexer) Store(ctx context.Context, docs []*schema.Document, opts ...indexer.Option) ([]string, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.stored = append(m.stored, docs...)
	ids := make([]string, len(docs))
	for i, d := range docs {
		ids[i] = d.ID
	}
	return ids, nil
}

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestService_IngestTextFile(t *testing.T) {
	indexer := &mockIndexer{}
	s := NewService(&config.Config{}, nil, indexer)

	path := writeTempFile(t, "cbt-notes.txt", "认知行为疗法帮助人们识别并改变消极的思维模式。\n\n呼吸练习是缓解焦虑的常用技巧。")

	result, err := s.IngestFile(context.Background(), path, "CBT 笔记")
	if err != nil {
		t.Fatalf("IngestFile() error = %v", err)
	}

	if result.Chunks == 0 {
		t.Fatal("no chunks produced")
	}
	if len(indexer.stored) != result.Chunks {
		t.Errorf("stored = %d, result.Chunks = %d", len(indexer.stored), result.Chunks)
	}

	// 每个分块携带来源元数据和编号
	for _, doc := range indexer.stored {
		if doc.ID == "" {
			t.Error("chunk missing ID")
		}
		if doc.MetaData["source"] != "cbt-notes.txt" {
			t.Errorf("source = %v", doc.MetaData["source"])
		}
		if doc.MetaData["title"] != "CBT 笔记" {
			t.Errorf("title = %v", doc.MetaData["title"])
		}
		if _, ok := doc.MetaData["chunk_index"]; !ok {
			t.Error("chunk missing chunk_index")
		}
	}
}

func TestService_IngestUnsupportedType(t *testing.T) {
	s := NewService(&config.Config{}, nil, &mockIndexer{})

	path := writeTempFile(t, "notes.docx", "data")
	if _, err := s.IngestFile(context.Background(), path, "notes"); err == nil {
		t.Fatal("IngestFile() expected error for unsupported type")
	}
}

func TestService_IngestNoIndexer(t *testing.T) {
	s := NewService(&config.Config{}, nil, nil)

	if _, err := s.IngestFile(context.Background(), "whatever.txt", ""); err == nil {
		t.Fatal("IngestFile() expected error without indexer")
	}
}

func TestService_IngestDirSkipsNonPDF(t *testing.T) {
	indexer := &mockIndexer{}
	s := NewService(&config.Config{}, nil, indexer)

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("text"), 0o644); err != nil {
		t.Fatal(err)
	}

	results, err := s.IngestDir(context.Background(), dir)
	if err != nil {
		t.Fatalf("IngestDir() error = %v", err)
	}
	if len(results) != 0 {
		t.Errorf("results = %d, want 0 (no PDFs)", len(results))
	}
}
