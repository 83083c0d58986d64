package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"pancasila-learning-service/internal/domain"
)

// CorpusLoader reads the content corpus from Postgres JSONB tables. It
// serves both the startup full-corpus load and per-chapter cache refills.
type CorpusLoader struct {
	pool *pgxpool.Pool
}

func NewCorpusLoader(pool *pgxpool.Pool) *CorpusLoader {
	return &CorpusLoader{pool: pool}
}

// LoadCorpus fetches every chapter (in corpus order) and the legal
// reference list.
func (l *CorpusLoader) LoadCorpus(ctx context.Context) (domain.Corpus, error) {
	rows, err := l.pool.Query(ctx, `SELECT data FROM chapters ORDER BY position`)
	if err != nil {
		return domain.Corpus{}, fmt.Errorf("load chapters: %w", err)
	}
	defer rows.Close()

	var corpus domain.Corpus
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return domain.Corpus{}, fmt.Errorf("scan chapter: %w", err)
		}
		var chapter domain.Chapter
		if err := json.Unmarshal(raw, &chapter); err != nil {
			return domain.Corpus{}, fmt.Errorf("unmarshal chapter: %w", err)
		}
		corpus.Chapters = append(corpus.Chapters, chapter)
	}
	if err := rows.Err(); err != nil {
		return domain.Corpus{}, fmt.Errorf("iterate chapters: %w", err)
	}

	refs, err := l.loadReferences(ctx)
	if err != nil {
		return domain.Corpus{}, err
	}
	corpus.References = refs
	return corpus, nil
}

// LoadChapter fetches a single chapter's JSONB document.
func (l *CorpusLoader) LoadChapter(ctx context.Context, chapterID string) (domain.Chapter, error) {
	var raw []byte
	err := l.pool.QueryRow(ctx, `SELECT data FROM chapters WHERE id=$1`, chapterID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Chapter{}, domain.ErrChapterNotFound
	}
	if err != nil {
		return domain.Chapter{}, fmt.Errorf("load chapter: %w", err)
	}
	var chapter domain.Chapter
	if err := json.Unmarshal(raw, &chapter); err != nil {
		return domain.Chapter{}, fmt.Errorf("unmarshal chapter: %w", err)
	}
	return chapter, nil
}

func (l *CorpusLoader) loadReferences(ctx context.Context) ([]domain.LegalReference, error) {
	rows, err := l.pool.Query(ctx, `SELECT data FROM legal_references ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("load references: %w", err)
	}
	defer rows.Close()

	var refs []domain.LegalReference
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan reference: %w", err)
		}
		var ref domain.LegalReference
		if err := json.Unmarshal(raw, &ref); err != nil {
			return nil, fmt.Errorf("unmarshal reference: %w", err)
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}
