// Package services holds the duplicate detection business logic.
//
// This file renders the human-readable duplicate notice from an ordered
// occurrence history. Composition is a pure function over the occurrence
// slice: no clocks, no storage, no side effects, which keeps the formatting
// (including middle-entry elision for long histories) trivially testable.
package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/dupewatch/go-dupewatch/internal/domain"
)

const (
	// reportTimeLayout renders timestamps as 2026/02/22 10:21:23.
	reportTimeLayout = "2006/01/02 15:04:05"

	// defaultElideThreshold is the history length above which middle report
	// lines collapse into an ellipsis.
	defaultElideThreshold = 4

	elisionMarker = "…"
)

// ComposeReport builds the duplicate notice for a history of at least two
// occurrences, oldest first (the just-recorded occurrence last). The notice
// flags the duplication, echoes the text as it was first submitted, and lists
// who posted it and when: the first occurrence labeled "first", the last
// "this time", intermediates by ordinal. Histories longer than elideThreshold
// keep the first entry and the last two, eliding the middle.
func ComposeReport(occs []domain.Occurrence, loc *time.Location, elideThreshold int) string {
	if len(occs) < 2 {
		return ""
	}
	if loc == nil {
		loc = time.UTC
	}
	if elideThreshold <= 0 {
		elideThreshold = defaultElideThreshold
	}

	lines := make([]string, 0, len(occs))
	for i, occ := range occs {
		lines = append(lines, fmt.Sprintf("%s : %s (%s)",
			occ.SenderName,
			occ.OccurredAt.In(loc).Format(reportTimeLayout),
			positionLabel(i, len(occs)),
		))
	}

	var b strings.Builder
	b.WriteString("⚠️ Duplicate message detected\n")
	b.WriteString("Text: ")
	b.WriteString(occs[0].RawText)
	b.WriteByte('\n')
	b.WriteString(strings.Join(elideMiddle(lines, elideThreshold), "\n"))
	return b.String()
}

// positionLabel names an occurrence by its position in the history: "first"
// for the oldest, "this time" for the newest, ordinals in between.
func positionLabel(i, total int) string {
	switch {
	case i == 0:
		return "first"
	case i == total-1:
		return "this time"
	default:
		return ordinal(i + 1)
	}
}

// ordinal renders 2 → "second", 3 → "third", …, falling back to the numeric
// suffix form ("11th", "23rd") beyond tenth.
func ordinal(n int) string {
	words := map[int]string{
		2: "second", 3: "third", 4: "fourth", 5: "fifth",
		6: "sixth", 7: "seventh", 8: "eighth", 9: "ninth", 10: "tenth",
	}
	if w, ok := words[n]; ok {
		return w
	}
	suffix := "th"
	if n%100 < 11 || n%100 > 13 {
		switch n % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return fmt.Sprintf("%d%s", n, suffix)
}

// elideMiddle bounds the report size: when there are more lines than
// threshold it keeps the first line and the final two, replacing everything
// between with a single elision marker.
func elideMiddle(lines []string, threshold int) []string {
	if len(lines) <= threshold {
		return lines
	}
	out := make([]string, 0, 4)
	out = append(out, lines[0], elisionMarker)
	out = append(out, lines[len(lines)-2:]...)
	return out
}
