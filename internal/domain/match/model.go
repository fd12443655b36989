package match

import "strings"

// completionMarkers are the status fragments that mark a match as decided.
// "no result" and "abandoned" count as completed on purpose: a downstream
// completed-match filter runs again before publishing, so a false positive
// only costs one extra detail fetch.
var completionMarkers = []string{"won", "tied", "abandoned", "no result"}

// nonPlayerRowMarkers flag scorecard rows that look like batting entries but
// describe no batter (summary and filler lines in scraped tables).
var nonPlayerRowMarkers = []string{"extras", "total", "did not bat", "fall of wickets", "yet to bat"}

// Record is the canonical shape every source payload collapses into. It is
// built once per (match, detail) pair and serialized verbatim; nothing
// mutates it after construction.
type Record struct {
	MatchID       string    `json:"match_id"`
	Title         string    `json:"title"`
	Series        string    `json:"series"`
	MatchType     string    `json:"match_type,omitempty"`
	Venue         string    `json:"venue"`
	City          string    `json:"city,omitempty"`
	StartDate     string    `json:"start_date"`
	Status        string    `json:"status"`
	IsCompleted   bool      `json:"is_completed"`
	Toss          Toss      `json:"toss"`
	Teams         []Team    `json:"teams"`
	Innings       []Innings `json:"innings"`
	PlayerOfMatch string    `json:"player_of_match"`
}

type Toss struct {
	Winner   string `json:"winner,omitempty"`
	Decision string `json:"decision,omitempty"`
}

func (t Toss) IsZero() bool {
	return t.Winner == "" && t.Decision == ""
}

type Team struct {
	Name      string `json:"name"`
	ShortName string `json:"short_name,omitempty"`
}

// Innings keeps batting and bowling rows in source order. Batting order is
// crease order; re-sorting it would corrupt the scorecard.
type Innings struct {
	Team          string         `json:"team"`
	Runs          int            `json:"runs"`
	Wickets       int            `json:"wickets"`
	Overs         float64        `json:"overs"`
	Extras        int            `json:"extras,omitempty"`
	Batting       []BattingEntry `json:"batting"`
	Bowling       []BowlingEntry `json:"bowling"`
	FallOfWickets []any          `json:"fall_of_wickets,omitempty"`
}

type BattingEntry struct {
	Name       string  `json:"name"`
	Runs       int     `json:"runs"`
	Balls      int     `json:"balls"`
	Fours      int     `json:"fours"`
	Sixes      int     `json:"sixes"`
	StrikeRate float64 `json:"strike_rate"`
	Dismissal  string  `json:"dismissal"`
}

type BowlingEntry struct {
	Name    string  `json:"name"`
	Overs   float64 `json:"overs"`
	Maidens int     `json:"maidens"`
	Runs    int     `json:"runs"`
	Wickets int     `json:"wickets"`
	Economy float64 `json:"economy"`
}

// DailySummary aggregates one run's records, in selection order.
type DailySummary struct {
	Date         string   `json:"date"`
	RunTime      string   `json:"run_time"`
	TotalMatches int      `json:"total_matches"`
	Matches      []Record `json:"matches"`
}

// IsCompletedStatus reports whether status text or an explicit ended flag
// marks the match as decided.
func IsCompletedStatus(status string, ended bool) bool {
	if ended {
		return true
	}
	lowered := strings.ToLower(status)
	for _, marker := range completionMarkers {
		if strings.Contains(lowered, marker) {
			return true
		}
	}
	return false
}

// IsNonPlayerRow reports whether a batting-row name is a scorecard filler
// line rather than a batter.
func IsNonPlayerRow(name string) bool {
	lowered := strings.ToLower(strings.TrimSpace(name))
	if lowered == "" {
		return true
	}
	for _, marker := range nonPlayerRowMarkers {
		if strings.Contains(lowered, marker) {
			return true
		}
	}
	return false
}

// SortBowlingForDisplay returns a copy ordered by descending wickets, then
// ascending economy. Display helper only; the canonical record keeps source
// order.
func SortBowlingForDisplay(entries []BowlingEntry) []BowlingEntry {
	out := make([]BowlingEntry, len(entries))
	copy(out, entries)
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && bowlingDisplayLess(out[j], out[j-1]); j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

func bowlingDisplayLess(left, right BowlingEntry) bool {
	if left.Wickets != right.Wickets {
		return left.Wickets > right.Wickets
	}
	return left.Economy < right.Economy
}
