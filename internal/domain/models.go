package domain

import "time"

// SectionType enumerates the closed vocabulary of lesson section shapes.
type SectionType string

const (
	SectionText         SectionType = "text"
	SectionQuote        SectionType = "quote"
	SectionList         SectionType = "list"
	SectionConceptTable SectionType = "concept-table"
	SectionHighlight    SectionType = "highlight"
	SectionVideo        SectionType = "video"
	SectionCaseStudy    SectionType = "case-study"
)

// Valid reports whether the section type belongs to the known vocabulary.
func (t SectionType) Valid() bool {
	switch t {
	case SectionText, SectionQuote, SectionList, SectionConceptTable,
		SectionHighlight, SectionVideo, SectionCaseStudy:
		return true
	}
	return false
}

// ConceptRow is one row of a concept table (e.g., a principle and its meaning).
type ConceptRow struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Section is one lesson page. Which fields are populated depends on Type.
type Section struct {
	Type        SectionType  `json:"type"`
	Title       string       `json:"title"`
	Body        string       `json:"body,omitempty"`
	Source      string       `json:"source,omitempty"`
	Items       []string     `json:"items,omitempty"`
	Rows        []ConceptRow `json:"rows,omitempty"`
	VideoURL    string       `json:"videoUrl,omitempty"`
	Description string       `json:"description,omitempty"`

	// Case-study fields.
	Scenario         string   `json:"scenario,omitempty"`
	CriticalQuestion string   `json:"criticalQuestion,omitempty"`
	Decisions        []string `json:"decisions,omitempty"`
	Feedback         []string `json:"feedback,omitempty"`
}

// Question models an MCQ question; Answer is the index of the correct option.
type Question struct {
	Prompt  string   `json:"prompt"`
	Options []string `json:"options"`
	Answer  int      `json:"answer"`
}

// Chapter is a content unit: ordered lesson sections plus a quiz.
type Chapter struct {
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	Icon       string     `json:"icon"`
	Competency string     `json:"competency"`
	Sections   []Section  `json:"sections"`
	Quiz       []Question `json:"quiz"`
}

// Label is the display form used on certificates, e.g. "Bab 1: Pancasila".
func (c Chapter) Label() string {
	return "Bab " + c.ID + ": " + c.Title
}

// ChapterSummary is the dashboard-facing view of a chapter.
type ChapterSummary struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Icon  string `json:"icon"`
}

// LegalReference is one entry of the searchable legal/reference list.
type LegalReference struct {
	Label    string   `json:"label"`
	Body     string   `json:"body"`
	Keywords []string `json:"keywords"`
}

// Corpus is the full content document loaded once at startup.
type Corpus struct {
	Chapters   []Chapter        `json:"chapters"`
	References []LegalReference `json:"references"`
}

// ProgressRecord is the persisted per-chapter progress entry. The JSON layout
// matches the original storage blob: {lastPage, maxPage, quizScore|null}.
type ProgressRecord struct {
	LastPage  int  `json:"lastPage"`
	MaxPage   int  `json:"maxPage"`
	QuizScore *int `json:"quizScore"`
}

// CertificateStatus is the pass/fail predicate of an issued certificate.
type CertificateStatus string

const (
	StatusPassed    CertificateStatus = "PASSED"
	StatusNotPassed CertificateStatus = "NOT_PASSED"
)

// Certificate is the issued completion artifact. It is derived, never stored;
// rendering and sharing are the client's concern.
type Certificate struct {
	StudentName   string            `json:"studentName"`
	ChapterLabel  string            `json:"chapterLabel"`
	Score         int               `json:"score"`
	CertificateID string            `json:"certificateId"`
	IssuedAt      time.Time         `json:"issuedAt"`
	IssuedAtLong  string            `json:"issuedAtLong"`
	IssuedAtShort string            `json:"issuedAtShort"`
	Status        CertificateStatus `json:"status"`
}

// Theme is the persisted display preference.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)
