package progress

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"pancasila-learning-service/internal/domain"
)

// Storage keys, kept byte-compatible with the original browser blob.
const (
	progressKey = "pancasila_progress"
	themeKey    = "pancasila_theme"
)

// readingWeight caps reading-only completion at 90%; the last 10% is earned
// by taking the quiz.
const readingWeight = 90

// KeyValueStore abstracts the device-local persistence backend so the ledger
// is testable without a real store (in-memory in tests, Redis in production).
type KeyValueStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// Ledger owns the persisted per-chapter progress records and the completion
// percentage derivation. All records live in a single namespaced JSON blob
// which is read-modify-written on every mutation; concurrent writers are not
// coordinated and the last write wins.
type Ledger struct {
	store KeyValueStore
}

func NewLedger(store KeyValueStore) *Ledger {
	return &Ledger{store: store}
}

// RecordReadingProgress bumps the highest page reached for a chapter. Invalid
// input (negative page, or page beyond totalPages) is a silent no-op. The
// stored page index never decreases; maxPage is always refreshed so the
// content corpus stays the source of truth for the page count.
func (l *Ledger) RecordReadingProgress(ctx context.Context, chapterID string, pageIndex, totalPages int) error {
	if pageIndex < 0 || totalPages < 1 || pageIndex >= totalPages {
		return nil
	}

	records, err := l.load(ctx)
	if err != nil {
		return err
	}

	record := records[chapterID]
	if pageIndex > record.LastPage {
		record.LastPage = pageIndex
	}
	record.MaxPage = totalPages
	records[chapterID] = record

	return l.save(ctx, records)
}

// RecordQuizScore stores the final percentage of a completed attempt. A later
// attempt overwrites the previous one; no history is retained.
func (l *Ledger) RecordQuizScore(ctx context.Context, chapterID string, score int) error {
	if score < 0 || score > 100 {
		return domain.ErrInvalidScore
	}

	records, err := l.load(ctx)
	if err != nil {
		return err
	}

	record := records[chapterID]
	record.QuizScore = &score
	records[chapterID] = record

	return l.save(ctx, records)
}

// CompletionPercent derives the dashboard percentage for a chapter. A
// recorded quiz score dominates reading progress regardless of its value:
// both passing and failing the quiz count as done. Without a quiz score the
// percentage is round(((lastPage+1)/maxPage)*90), so reading alone tops out
// at 90.
func (l *Ledger) CompletionPercent(ctx context.Context, chapterID string) (int, error) {
	records, err := l.load(ctx)
	if err != nil {
		return 0, err
	}

	record, ok := records[chapterID]
	if !ok {
		return 0, nil
	}
	if record.QuizScore != nil {
		return 100, nil
	}
	if record.MaxPage <= 0 {
		return 0, nil
	}
	return int(math.Round(float64(record.LastPage+1) / float64(record.MaxPage) * readingWeight)), nil
}

// Record returns the raw stored record for a chapter, if any.
func (l *Ledger) Record(ctx context.Context, chapterID string) (domain.ProgressRecord, bool, error) {
	records, err := l.load(ctx)
	if err != nil {
		return domain.ProgressRecord{}, false, err
	}
	record, ok := records[chapterID]
	return record, ok, nil
}

// Reset clears all persisted progress records.
func (l *Ledger) Reset(ctx context.Context) error {
	return l.save(ctx, map[string]domain.ProgressRecord{})
}

// SetTheme persists the display preference under its own key, independent of
// the progress blob.
func (l *Ledger) SetTheme(ctx context.Context, theme domain.Theme) error {
	if theme != domain.ThemeLight && theme != domain.ThemeDark {
		return domain.ErrInvalidTheme
	}
	return l.store.Set(ctx, themeKey, string(theme))
}

// Theme returns the stored preference, defaulting to light.
func (l *Ledger) Theme(ctx context.Context) (domain.Theme, error) {
	raw, ok, err := l.store.Get(ctx, themeKey)
	if err != nil {
		return domain.ThemeLight, err
	}
	if !ok || domain.Theme(raw) != domain.ThemeDark {
		return domain.ThemeLight, nil
	}
	return domain.ThemeDark, nil
}

func (l *Ledger) load(ctx context.Context) (map[string]domain.ProgressRecord, error) {
	raw, ok, err := l.store.Get(ctx, progressKey)
	if err != nil {
		return nil, fmt.Errorf("load progress: %w", err)
	}
	records := make(map[string]domain.ProgressRecord)
	if !ok || raw == "" {
		return records, nil
	}
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		return nil, fmt.Errorf("decode progress: %w", err)
	}
	return records, nil
}

func (l *Ledger) save(ctx context.Context, records map[string]domain.ProgressRecord) error {
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode progress: %w", err)
	}
	if err := l.store.Set(ctx, progressKey, string(data)); err != nil {
		return fmt.Errorf("save progress: %w", err)
	}
	return nil
}
