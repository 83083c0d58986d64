package content

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"pancasila-learning-service/internal/domain"
)

// CorpusLoader fetches the full content document from a backing source
// (JSON file, Postgres, etc).
type CorpusLoader interface {
	LoadCorpus(ctx context.Context) (domain.Corpus, error)
}

// FileLoader reads the corpus from a static JSON document, the original
// content-source layout.
type FileLoader struct {
	path string
}

func NewFileLoader(path string) *FileLoader {
	return &FileLoader{path: path}
}

func (l *FileLoader) LoadCorpus(_ context.Context) (domain.Corpus, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return domain.Corpus{}, fmt.Errorf("read corpus: %w", err)
	}
	var corpus domain.Corpus
	if err := json.Unmarshal(data, &corpus); err != nil {
		return domain.Corpus{}, fmt.Errorf("decode corpus: %w", err)
	}
	return corpus, nil
}

// StaticLoader serves a corpus held in memory (tests and demo mode).
type StaticLoader struct {
	corpus domain.Corpus
}

func NewStaticLoader(corpus domain.Corpus) *StaticLoader {
	return &StaticLoader{corpus: corpus}
}

func (l *StaticLoader) LoadCorpus(_ context.Context) (domain.Corpus, error) {
	return l.corpus, nil
}
