package services

import (
	"strings"
	"testing"
	"time"

	"github.com/dupewatch/go-dupewatch/internal/domain"
)

func occAt(name string, at time.Time) domain.Occurrence {
	return domain.Occurrence{SenderName: name, RawText: "the text", OccurredAt: at}
}

func TestComposeReport_TwoOccurrences(t *testing.T) {
	t0 := time.Date(2026, 2, 22, 10, 21, 23, 0, time.UTC)
	got := ComposeReport([]domain.Occurrence{occAt("Alice", t0), occAt("Bob", t0.Add(time.Minute))}, time.UTC, 4)

	want := "⚠️ Duplicate message detected\n" +
		"Text: the text\n" +
		"Alice : 2026/02/22 10:21:23 (first)\n" +
		"Bob : 2026/02/22 10:22:23 (this time)"
	if got != want {
		t.Fatalf("report mismatch:\n%q\nwant\n%q", got, want)
	}
}

func TestComposeReport_TimezoneRendering(t *testing.T) {
	jakarta, err := time.LoadLocation("Asia/Jakarta")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	t0 := time.Date(2026, 2, 22, 3, 21, 23, 0, time.UTC) // 10:21:23 WIB
	got := ComposeReport([]domain.Occurrence{occAt("Alice", t0), occAt("Bob", t0.Add(time.Minute))}, jakarta, 4)
	if !strings.Contains(got, "Alice : 2026/02/22 10:21:23 (first)") {
		t.Fatalf("timestamps should render in the configured zone:\n%s", got)
	}
}

func TestComposeReport_OrdinalLabels(t *testing.T) {
	t0 := time.Date(2026, 2, 22, 10, 0, 0, 0, time.UTC)
	occs := []domain.Occurrence{
		occAt("A", t0),
		occAt("B", t0.Add(1*time.Minute)),
		occAt("C", t0.Add(2*time.Minute)),
		occAt("D", t0.Add(3*time.Minute)),
	}
	got := ComposeReport(occs, time.UTC, 10)
	for _, want := range []string{"(first)", "(second)", "(third)", "(this time)"} {
		if !strings.Contains(got, want) {
			t.Errorf("missing label %s in:\n%s", want, got)
		}
	}
}

func TestComposeReport_ElisionShape(t *testing.T) {
	t0 := time.Date(2026, 2, 22, 10, 0, 0, 0, time.UTC)
	occs := make([]domain.Occurrence, 0, 7)
	names := []string{"A", "B", "C", "D", "E", "F", "G"}
	for i, n := range names {
		occs = append(occs, occAt(n, t0.Add(time.Duration(i)*time.Minute)))
	}

	got := ComposeReport(occs, time.UTC, 4)
	lines := strings.Split(got, "\n")
	// header + text + first + marker + last two
	if len(lines) != 6 {
		t.Fatalf("elided report should have 6 lines, got %d:\n%s", len(lines), got)
	}
	if !strings.HasSuffix(lines[2], "(first)") || lines[3] != "…" {
		t.Fatalf("expected first entry then elision marker:\n%s", got)
	}
	if !strings.HasSuffix(lines[4], "(sixth)") || !strings.HasSuffix(lines[5], "(this time)") {
		t.Fatalf("last two entries must be shown in full:\n%s", got)
	}
}

func TestComposeReport_NoElisionAtThreshold(t *testing.T) {
	t0 := time.Date(2026, 2, 22, 10, 0, 0, 0, time.UTC)
	occs := []domain.Occurrence{
		occAt("A", t0), occAt("B", t0.Add(time.Minute)),
		occAt("C", t0.Add(2 * time.Minute)), occAt("D", t0.Add(3 * time.Minute)),
	}
	got := ComposeReport(occs, time.UTC, 4)
	if strings.Contains(got, "…") {
		t.Fatalf("history at the threshold should not be elided:\n%s", got)
	}
}

func TestComposeReport_ShortHistory(t *testing.T) {
	if got := ComposeReport(nil, time.UTC, 4); got != "" {
		t.Fatalf("empty history should compose nothing, got %q", got)
	}
	if got := ComposeReport([]domain.Occurrence{occAt("A", time.Now())}, time.UTC, 4); got != "" {
		t.Fatalf("single occurrence should compose nothing, got %q", got)
	}
}

func TestOrdinal_SuffixFallback(t *testing.T) {
	cases := map[int]string{2: "second", 10: "tenth", 11: "11th", 12: "12th", 13: "13th", 21: "21st", 22: "22nd", 23: "23rd", 101: "101st"}
	for n, want := range cases {
		if got := ordinal(n); got != want {
			t.Errorf("ordinal(%d) = %q, want %q", n, got, want)
		}
	}
}
