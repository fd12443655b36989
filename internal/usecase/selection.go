package usecase

import (
	"strings"
	"time"

	"github.com/sportsdesk/cricketwire/internal/domain/match"
)

// SelectionCriteria filters a fetched match list down to the subset worth
// collecting. Every predicate is independently toggleable through its zero
// value; active predicates AND together.
type SelectionCriteria struct {
	// TournamentMarkers keeps matches whose series or title contains any
	// marker, case-insensitive. Empty keeps everything.
	TournamentMarkers []string
	// WarmupMarkers drops matches whose series or title contains any marker.
	// Empty drops nothing.
	WarmupMarkers []string
	// TargetDate keeps matches starting on this calendar date. A start date
	// that fails to parse never matches.
	TargetDate string
	// FixtureName keeps matches whose title contains this substring,
	// case-insensitive. Empty keeps everything.
	FixtureName string
	// CompletedOnly keeps matches whose record is marked completed.
	CompletedOnly bool
	// Processed drops matches whose id is already in the set.
	Processed map[string]struct{}
}

var startDateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z",
}

// SelectMatches returns the order-preserving subsequence of records that
// satisfy every active predicate. Predicates run cheapest first so a full
// list scan stays inexpensive.
func SelectMatches(records []match.Record, criteria SelectionCriteria) []match.Record {
	out := make([]match.Record, 0, len(records))
	for _, record := range records {
		if !matchesCriteria(record, criteria) {
			continue
		}
		out = append(out, record)
	}
	return out
}

func matchesCriteria(record match.Record, criteria SelectionCriteria) bool {
	if criteria.Processed != nil {
		if _, done := criteria.Processed[record.MatchID]; done {
			return false
		}
	}
	if criteria.CompletedOnly && !record.IsCompleted {
		return false
	}
	if criteria.FixtureName != "" && !containsFold(record.Title, criteria.FixtureName) {
		return false
	}

	haystack := record.Series + " " + record.Title
	if len(criteria.WarmupMarkers) > 0 && containsAnyFold(haystack, criteria.WarmupMarkers) {
		return false
	}
	if len(criteria.TournamentMarkers) > 0 && !containsAnyFold(haystack, criteria.TournamentMarkers) {
		return false
	}

	if criteria.TargetDate != "" && !sameCalendarDate(record.StartDate, criteria.TargetDate) {
		return false
	}
	return true
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func containsAnyFold(haystack string, needles []string) bool {
	lowered := strings.ToLower(haystack)
	for _, needle := range needles {
		needle = strings.TrimSpace(needle)
		if needle == "" {
			continue
		}
		if strings.Contains(lowered, strings.ToLower(needle)) {
			return true
		}
	}
	return false
}

func sameCalendarDate(left, right string) bool {
	a, ok := parseCalendarDate(left)
	if !ok {
		return false
	}
	b, ok := parseCalendarDate(right)
	if !ok {
		return false
	}
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

func parseCalendarDate(raw string) (time.Time, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return time.Time{}, false
	}
	for _, layout := range startDateLayouts {
		if parsed, err := time.Parse(layout, trimmed); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}
