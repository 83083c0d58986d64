package cert

import (
	"math/rand"
	"regexp"
	"testing"
	"time"

	"pancasila-learning-service/internal/domain"
)

func fixedClock() time.Time {
	// Friday, 28 November 2025.
	return time.Date(2025, time.November, 28, 10, 30, 0, 0, time.UTC)
}

func newTestIssuer() *Issuer {
	return NewIssuerWithSources(fixedClock, rand.New(rand.NewSource(1)))
}

func TestIssueStatusThreshold(t *testing.T) {
	issuer := newTestIssuer()

	passed := issuer.Issue("Ani", "Bab 1: Demo", 70)
	if passed.Status != domain.StatusPassed {
		t.Fatalf("expected PASSED at threshold, got %s", passed.Status)
	}

	failed := issuer.Issue("Ani", "Bab 1: Demo", 69)
	if failed.Status != domain.StatusNotPassed {
		t.Fatalf("expected NOT_PASSED below threshold, got %s", failed.Status)
	}
}

func TestIssueCertificateIDFormat(t *testing.T) {
	issuer := newTestIssuer()
	record := issuer.Issue("Ani", "Bab 1: Demo", 80)

	pattern := regexp.MustCompile(`^PAN-\d{4}-[A-Z0-9]{4}$`)
	if !pattern.MatchString(record.CertificateID) {
		t.Fatalf("unexpected certificate id %q", record.CertificateID)
	}
	if record.CertificateID[:8] != "PAN-2025" {
		t.Fatalf("expected issue year in id, got %q", record.CertificateID)
	}
}

func TestIssueFreshIDPerCall(t *testing.T) {
	issuer := newTestIssuer()
	first := issuer.Issue("Ani", "Bab 1: Demo", 80)
	second := issuer.Issue("Ani", "Bab 1: Demo", 80)
	if first.CertificateID == second.CertificateID {
		t.Fatalf("expected distinct ids, both were %q", first.CertificateID)
	}
}

func TestIssueClampsScore(t *testing.T) {
	issuer := newTestIssuer()

	if got := issuer.Issue("Ani", "Bab 1: Demo", 150).Score; got != 100 {
		t.Fatalf("expected clamp to 100, got %d", got)
	}
	if got := issuer.Issue("Ani", "Bab 1: Demo", -5).Score; got != 0 {
		t.Fatalf("expected clamp to 0, got %d", got)
	}
}

func TestIssuePlaceholders(t *testing.T) {
	issuer := newTestIssuer()

	record := issuer.Issue("   ", "", 90)
	if record.StudentName != "Siswa Tanpa Nama" {
		t.Fatalf("expected placeholder name, got %q", record.StudentName)
	}
	if record.ChapterLabel != "Materi Umum" {
		t.Fatalf("expected placeholder label, got %q", record.ChapterLabel)
	}
}

func TestIssueIndonesianDates(t *testing.T) {
	issuer := newTestIssuer()
	record := issuer.Issue("Ani", "Bab 1: Demo", 80)

	if record.IssuedAtLong != "Jumat, 28 November 2025" {
		t.Fatalf("unexpected long date %q", record.IssuedAtLong)
	}
	if record.IssuedAtShort != "28 November 2025" {
		t.Fatalf("unexpected short date %q", record.IssuedAtShort)
	}
}
