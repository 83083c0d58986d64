package cert

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"pancasila-learning-service/internal/domain"
)

const (
	// PassingThreshold is the minimum score (KKM) for a PASSED certificate.
	PassingThreshold = 70

	idPrefix   = "PAN"
	idAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	tokenLen   = 4

	fallbackName  = "Siswa Tanpa Nama"
	fallbackLabel = "Materi Umum"
)

// Indonesian calendar names used for the display renderings of IssuedAt.
var (
	weekdaysID = [...]string{"Minggu", "Senin", "Selasa", "Rabu", "Kamis", "Jumat", "Sabtu"}
	monthsID   = [...]string{"Januari", "Februari", "Maret", "April", "Mei", "Juni",
		"Juli", "Agustus", "September", "Oktober", "November", "Desember"}
)

// Issuer produces completion certificates. Aside from its clock and random
// source it holds no state; Issue never fails.
type Issuer struct {
	now func() time.Time
	rnd *rand.Rand
}

func NewIssuer() *Issuer {
	return NewIssuerWithSources(time.Now, rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewIssuerWithSources allows deterministic clocks and tokens in tests.
func NewIssuerWithSources(now func() time.Time, rnd *rand.Rand) *Issuer {
	return &Issuer{now: now, rnd: rnd}
}

// Issue builds a certificate for a completed attempt. Scores outside [0,100]
// are clamped; blank names and labels fall back to placeholders. Certificate
// IDs carry no uniqueness guarantee beyond the random token.
func (i *Issuer) Issue(studentName, chapterLabel string, score int) domain.Certificate {
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	if strings.TrimSpace(studentName) == "" {
		studentName = fallbackName
	}
	if strings.TrimSpace(chapterLabel) == "" {
		chapterLabel = fallbackLabel
	}

	status := domain.StatusNotPassed
	if score >= PassingThreshold {
		status = domain.StatusPassed
	}

	issuedAt := i.now()
	return domain.Certificate{
		StudentName:   studentName,
		ChapterLabel:  chapterLabel,
		Score:         score,
		CertificateID: i.generateID(issuedAt),
		IssuedAt:      issuedAt,
		IssuedAtLong:  formatLong(issuedAt),
		IssuedAtShort: formatShort(issuedAt),
		Status:        status,
	}
}

// generateID builds an ID of the form PAN-2025-X7B9.
func (i *Issuer) generateID(now time.Time) string {
	token := make([]byte, tokenLen)
	for idx := range token {
		token[idx] = idAlphabet[i.rnd.Intn(len(idAlphabet))]
	}
	return fmt.Sprintf("%s-%d-%s", idPrefix, now.Year(), token)
}

// formatLong renders e.g. "Kamis, 28 November 2025".
func formatLong(t time.Time) string {
	return fmt.Sprintf("%s, %d %s %d", weekdaysID[t.Weekday()], t.Day(), monthsID[t.Month()-1], t.Year())
}

// formatShort renders e.g. "28 November 2025".
func formatShort(t time.Time) string {
	return fmt.Sprintf("%d %s %d", t.Day(), monthsID[t.Month()-1], t.Year())
}
