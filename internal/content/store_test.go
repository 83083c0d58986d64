package content

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"pancasila-learning-service/internal/domain"
)

func sampleCorpus() domain.Corpus {
	return domain.Corpus{
		Chapters: []domain.Chapter{
			{
				ID:    "1",
				Title: "Sejarah Pancasila",
				Icon:  "assets/img/bab1.png",
				Sections: []domain.Section{
					{Type: domain.SectionText, Title: "Pengantar", Body: "Latar belakang."},
					{Type: domain.SectionQuote, Title: "Definisi", Body: "Kutipan.", Source: "BPUPKI"},
				},
				Quiz: []domain.Question{
					{Prompt: "Kapan?", Options: []string{"1944", "1945"}, Answer: 1},
				},
			},
		},
		References: []domain.LegalReference{
			{Label: "Pasal 1 Ayat 1", Body: "Negara Indonesia ialah Negara Kesatuan.", Keywords: []string{"negara", "kesatuan"}},
			{Label: "Pasal 27", Body: "Segala warga negara bersamaan kedudukannya.", Keywords: []string{"hukum"}},
		},
	}
}

func TestStoreLoadsAndServesChapters(t *testing.T) {
	ctx := context.Background()
	store, err := NewStore(ctx, NewStaticLoader(sampleCorpus()))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	chapter, err := store.GetChapter(ctx, "1")
	if err != nil {
		t.Fatalf("get chapter: %v", err)
	}
	if chapter.Label() != "Bab 1: Sejarah Pancasila" {
		t.Fatalf("unexpected label %q", chapter.Label())
	}

	if _, err := store.GetChapter(ctx, "99"); err != domain.ErrChapterNotFound {
		t.Fatalf("expected ErrChapterNotFound, got %v", err)
	}

	summaries, err := store.Chapters(ctx)
	if err != nil {
		t.Fatalf("chapters: %v", err)
	}
	if len(summaries) != 1 || summaries[0].ID != "1" {
		t.Fatalf("unexpected summaries %+v", summaries)
	}
}

func TestStoreRejectsInvalidCorpus(t *testing.T) {
	ctx := context.Background()

	bad := sampleCorpus()
	bad.Chapters[0].Quiz[0].Answer = 5
	if _, err := NewStore(ctx, NewStaticLoader(bad)); err == nil {
		t.Fatalf("expected error for out-of-range answer index")
	}

	bad = sampleCorpus()
	bad.Chapters[0].Sections[0].Type = "marquee"
	if _, err := NewStore(ctx, NewStaticLoader(bad)); err == nil {
		t.Fatalf("expected error for unknown section type")
	}
}

func TestSearchReferences(t *testing.T) {
	store, err := NewStore(context.Background(), NewStaticLoader(sampleCorpus()))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	if got := store.SearchReferences("k"); got != nil {
		t.Fatalf("expected nil for too-short keyword, got %+v", got)
	}
	if got := store.SearchReferences("kesatuan"); len(got) != 1 || got[0].Label != "Pasal 1 Ayat 1" {
		t.Fatalf("expected tag match, got %+v", got)
	}
	if got := store.SearchReferences("PASAL"); len(got) != 2 {
		t.Fatalf("expected case-insensitive label match on both entries, got %+v", got)
	}
	if got := store.SearchReferences("mahkamah"); len(got) != 0 {
		t.Fatalf("expected no match, got %+v", got)
	}
}

func TestFileLoader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	data, err := json.Marshal(sampleCorpus())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	store, err := NewStore(context.Background(), NewFileLoader(path))
	if err != nil {
		t.Fatalf("load from file: %v", err)
	}
	if _, err := store.GetChapter(context.Background(), "1"); err != nil {
		t.Fatalf("get chapter: %v", err)
	}

	if _, err := NewStore(context.Background(), NewFileLoader(filepath.Join(t.TempDir(), "missing.json"))); err == nil {
		t.Fatalf("expected fatal error for missing corpus file")
	}
}
