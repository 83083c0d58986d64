package app

import (
	"context"

	"pancasila-learning-service/internal/domain"
	"pancasila-learning-service/internal/progress"
)

// ChapterCatalog lists the chapters of the loaded corpus in order.
type ChapterCatalog interface {
	Chapters(ctx context.Context) ([]domain.ChapterSummary, error)
}

// ReferenceSearcher filters the legal reference list by keyword.
type ReferenceSearcher interface {
	SearchReferences(keyword string) []domain.LegalReference
}

// ChapterProgress is one dashboard card: a chapter and its completion.
type ChapterProgress struct {
	domain.ChapterSummary
	CompletionPercent int  `json:"completionPercent"`
	Done              bool `json:"done"`
}

// LearningService bundles the read-side use cases around the corpus and the
// progress ledger: the dashboard, reading-progress updates, reference search
// and the theme preference.
type LearningService struct {
	catalog ChapterCatalog
	refs    ReferenceSearcher
	ledger  *progress.Ledger
}

func NewLearningService(catalog ChapterCatalog, refs ReferenceSearcher, ledger *progress.Ledger) *LearningService {
	return &LearningService{catalog: catalog, refs: refs, ledger: ledger}
}

// Dashboard derives the completion percentage for every chapter.
func (s *LearningService) Dashboard(ctx context.Context) ([]ChapterProgress, error) {
	summaries, err := s.catalog.Chapters(ctx)
	if err != nil {
		return nil, err
	}

	cards := make([]ChapterProgress, 0, len(summaries))
	for _, summary := range summaries {
		percent, err := s.ledger.CompletionPercent(ctx, summary.ID)
		if err != nil {
			return nil, err
		}
		cards = append(cards, ChapterProgress{
			ChapterSummary:    summary,
			CompletionPercent: percent,
			Done:              percent == 100,
		})
	}
	return cards, nil
}

// RecordReading forwards a lesson-page view to the ledger.
func (s *LearningService) RecordReading(ctx context.Context, chapterID string, pageIndex, totalPages int) error {
	return s.ledger.RecordReadingProgress(ctx, chapterID, pageIndex, totalPages)
}

// Search runs the keyword filter over the legal reference list.
func (s *LearningService) Search(keyword string) []domain.LegalReference {
	return s.refs.SearchReferences(keyword)
}

// Theme returns the stored display preference.
func (s *LearningService) Theme(ctx context.Context) (domain.Theme, error) {
	return s.ledger.Theme(ctx)
}

// SetTheme persists the display preference.
func (s *LearningService) SetTheme(ctx context.Context, theme domain.Theme) error {
	return s.ledger.SetTheme(ctx, theme)
}
