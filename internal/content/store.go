package content

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"pancasila-learning-service/internal/domain"
)

// minSearchRunes is the shortest keyword the reference search accepts.
const minSearchRunes = 2

// Store is the read-only in-memory representation of the lesson corpus,
// loaded exactly once at startup. A load failure is fatal to initialization;
// there is no reload path.
type Store struct {
	ordered    []domain.Chapter
	byID       map[string]domain.Chapter
	references []domain.LegalReference
}

// NewStore loads the corpus through the given loader and validates it.
func NewStore(ctx context.Context, loader CorpusLoader) (*Store, error) {
	corpus, err := loader.LoadCorpus(ctx)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]domain.Chapter, len(corpus.Chapters))
	for _, chapter := range corpus.Chapters {
		if chapter.ID == "" {
			return nil, fmt.Errorf("corpus chapter %q has no id", chapter.Title)
		}
		if _, dup := byID[chapter.ID]; dup {
			return nil, fmt.Errorf("corpus has duplicate chapter id %q", chapter.ID)
		}
		for _, section := range chapter.Sections {
			if !section.Type.Valid() {
				return nil, fmt.Errorf("chapter %s: unknown section type %q", chapter.ID, section.Type)
			}
		}
		for i, question := range chapter.Quiz {
			if len(question.Options) < 2 {
				return nil, fmt.Errorf("chapter %s question %d: needs at least 2 options", chapter.ID, i)
			}
			if question.Answer < 0 || question.Answer >= len(question.Options) {
				return nil, fmt.Errorf("chapter %s question %d: answer index out of range", chapter.ID, i)
			}
		}
		byID[chapter.ID] = chapter
	}

	return &Store{
		ordered:    corpus.Chapters,
		byID:       byID,
		references: corpus.References,
	}, nil
}

// GetChapter returns a chapter by id.
func (s *Store) GetChapter(_ context.Context, chapterID string) (domain.Chapter, error) {
	chapter, ok := s.byID[chapterID]
	if !ok {
		return domain.Chapter{}, domain.ErrChapterNotFound
	}
	return chapter, nil
}

// Chapters lists chapter summaries in corpus order.
func (s *Store) Chapters(_ context.Context) ([]domain.ChapterSummary, error) {
	summaries := make([]domain.ChapterSummary, 0, len(s.ordered))
	for _, chapter := range s.ordered {
		summaries = append(summaries, domain.ChapterSummary{
			ID:    chapter.ID,
			Title: chapter.Title,
			Icon:  chapter.Icon,
		})
	}
	return summaries, nil
}

// SearchReferences runs a case-insensitive substring match over the legal
// reference list (label, body and keyword tags). Keywords shorter than two
// runes return no results. Linear scan, no index; the list is small.
func (s *Store) SearchReferences(keyword string) []domain.LegalReference {
	keyword = strings.ToLower(strings.TrimSpace(keyword))
	if utf8.RuneCountInString(keyword) < minSearchRunes {
		return nil
	}

	var matches []domain.LegalReference
	for _, ref := range s.references {
		if referenceMatches(ref, keyword) {
			matches = append(matches, ref)
		}
	}
	return matches
}

func referenceMatches(ref domain.LegalReference, keyword string) bool {
	if strings.Contains(strings.ToLower(ref.Label), keyword) {
		return true
	}
	if strings.Contains(strings.ToLower(ref.Body), keyword) {
		return true
	}
	for _, tag := range ref.Keywords {
		if strings.Contains(strings.ToLower(tag), keyword) {
			return true
		}
	}
	return false
}
