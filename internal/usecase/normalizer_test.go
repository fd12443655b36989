package usecase

import (
	"errors"
	"testing"
)

func cricapiSummary() map[string]any {
	return map[string]any{
		"id":         "c1",
		"name":       "India vs Australia, Final",
		"series":     "ICC Cricket World Cup",
		"status":     "India won by 6 wickets",
		"matchEnded": true,
		"date":       "2023-11-19",
		"venue":      "Narendra Modi Stadium",
		"matchType":  "odi",
		"teams":      []any{"India", "Australia"},
	}
}

func cricapiDetail() map[string]any {
	return map[string]any{
		"tossResults": map[string]any{
			"tossWinner":   "Australia",
			"tossDecision": "bowl",
		},
		"playerOfMatch": "V Kohli",
		"scorecard": []any{
			map[string]any{
				"inningsTeamName": "India",
				"inningsRuns":     float64(240),
				"inningsWickets":  float64(10),
				"inningsOvers":    float64(50),
				"batting": []any{
					map[string]any{
						"batsmanName":      "R Sharma",
						"runs":             float64(47),
						"balls":            float64(31),
						"fours":            float64(4),
						"sixes":            float64(3),
						"strikeRate":       float64(151.61),
						"dismissal-wicket": "c Head b Maxwell",
					},
					map[string]any{
						"batsmanName":      "S Iyer",
						"dismissal-wicket": "DNB",
					},
				},
				"bowling": []any{
					map[string]any{
						"bowlerName": "M Starc",
						"overs":      float64(10),
						"maidens":    float64(0),
						"runs":       float64(55),
						"wickets":    float64(3),
						"economy":    float64(5.5),
					},
				},
			},
		},
	}
}

func TestNormalizeMatchCricAPIShape(t *testing.T) {
	t.Parallel()

	record, err := NormalizeMatch(cricapiSummary(), cricapiDetail())
	if err != nil {
		t.Fatalf("NormalizeMatch error: %v", err)
	}

	if record.MatchID != "c1" {
		t.Fatalf("match id: got %q", record.MatchID)
	}
	if !record.IsCompleted {
		t.Fatalf("expected completed record")
	}
	if record.Toss.Winner != "Australia" || record.Toss.Decision != "bowl" {
		t.Fatalf("toss: %+v", record.Toss)
	}
	if record.PlayerOfMatch != "V Kohli" {
		t.Fatalf("player of match: got %q", record.PlayerOfMatch)
	}
	if len(record.Teams) != 2 || record.Teams[0].Name != "India" {
		t.Fatalf("teams: %+v", record.Teams)
	}
	if len(record.Innings) != 1 {
		t.Fatalf("innings: %+v", record.Innings)
	}

	innings := record.Innings[0]
	if innings.Team != "India" || innings.Runs != 240 || innings.Wickets != 10 || innings.Overs != 50 {
		t.Fatalf("innings header: %+v", innings)
	}
	if len(innings.Batting) != 1 {
		t.Fatalf("expected DNB row to be dropped: %+v", innings.Batting)
	}
	if innings.Batting[0].Name != "R Sharma" || innings.Batting[0].Runs != 47 {
		t.Fatalf("batting row: %+v", innings.Batting[0])
	}
	if len(innings.Bowling) != 1 || innings.Bowling[0].Wickets != 3 {
		t.Fatalf("bowling row: %+v", innings.Bowling)
	}
}

func TestNormalizeMatchESPNNestedDetail(t *testing.T) {
	t.Parallel()

	summary := map[string]any{
		"objectId":   float64(1384439),
		"title":      "Final",
		"subTitle":   "ICC Cricket World Cup",
		"statusText": "Australia won by 6 wickets",
		"startDate":  "2023-11-19T08:30:00Z",
		"ground":     map[string]any{"longName": "Narendra Modi Stadium", "town": map[string]any{"name": "Ahmedabad"}},
		"teams": []any{
			map[string]any{"team": map[string]any{"longName": "India"}, "abbreviation": "IND"},
			map[string]any{"team": map[string]any{"longName": "Australia"}, "abbreviation": "AUS"},
		},
	}

	// detail nested under data.content.match, the other known ESPN layout
	detail := map[string]any{
		"data": map[string]any{
			"content": map[string]any{
				"match": map[string]any{
					"tossResults": map[string]any{
						"winningTeam": map[string]any{"longName": "Australia"},
						"decision":    "bowl",
					},
					"innings": []any{
						map[string]any{
							"team":    map[string]any{"longName": "India"},
							"runs":    float64(240),
							"wickets": float64(10),
							"overs":   float64(50),
							"batsmen": []any{
								map[string]any{
									"player":        map[string]any{"longName": "KL Rahul"},
									"runs":          float64(66),
									"balls":         float64(107),
									"dismissalText": "c Inglis b Starc",
								},
							},
							"bowlers": []any{
								map[string]any{
									"player":      map[string]any{"longName": "M Starc"},
									"overs":       float64(10),
									"conceded":    float64(55),
									"wickets":     float64(3),
									"economyRate": float64(5.5),
								},
							},
						},
					},
					"awards": []any{
						map[string]any{
							"awardType": "player of the series",
							"player":    map[string]any{"longName": "V Kohli"},
						},
						map[string]any{
							"awardType": "player of the match",
							"player":    map[string]any{"longName": "T Head"},
						},
					},
				},
			},
		},
	}

	record, err := NormalizeMatch(summary, detail)
	if err != nil {
		t.Fatalf("NormalizeMatch error: %v", err)
	}

	if record.MatchID != "1384439" {
		t.Fatalf("numeric id should stringify, got %q", record.MatchID)
	}
	if record.Venue != "Narendra Modi Stadium" || record.City != "Ahmedabad" {
		t.Fatalf("venue/city: %q / %q", record.Venue, record.City)
	}
	if record.Teams[1].ShortName != "AUS" {
		t.Fatalf("teams: %+v", record.Teams)
	}
	if record.Toss.Winner != "Australia" {
		t.Fatalf("toss: %+v", record.Toss)
	}
	if record.PlayerOfMatch != "T Head" {
		t.Fatalf("award filter must take the exact player-of-the-match token, got %q", record.PlayerOfMatch)
	}
	if len(record.Innings) != 1 || record.Innings[0].Bowling[0].Runs != 55 {
		t.Fatalf("innings: %+v", record.Innings)
	}
}

func TestNormalizeMatchSportMonksScoreboards(t *testing.T) {
	t.Parallel()

	summary := map[string]any{
		"id":          float64(777),
		"note":        "West Indies won by 8 wickets",
		"status":      "Finished",
		"starting_at": "2023-07-01T14:00:00Z",
		"localteam":   map[string]any{"name": "West Indies", "code": "WI"},
		"visitorteam": map[string]any{"name": "Ireland", "code": "IRE"},
	}

	detail := map[string]any{
		"scoreboards": []any{
			map[string]any{"scoreboard": "S1", "type": "total", "team": map[string]any{"name": "Ireland"}, "total": float64(152), "wickets": float64(9), "overs": float64(20)},
			map[string]any{"scoreboard": "S1", "type": "extra", "total": float64(11)},
			map[string]any{"scoreboard": "S2", "type": "total", "team": map[string]any{"name": "West Indies"}, "total": float64(153), "wickets": float64(2), "overs": float64(17.3)},
		},
		"batting": []any{
			map[string]any{"scoreboard": "S1", "player_name": "P Stirling", "score": float64(41), "ball": float64(32), "four_x": float64(5), "six_x": float64(1), "rate": float64(128.12)},
			map[string]any{"scoreboard": "S2", "player_name": "B King", "score": float64(77), "ball": float64(43)},
		},
		"bowling": []any{
			map[string]any{"scoreboard": "S1", "player_name": "A Hosein", "overs": float64(4), "medians": float64(1), "runs": float64(21), "wickets": float64(2), "rate": float64(5.25)},
		},
	}

	record, err := NormalizeMatch(summary, detail)
	if err != nil {
		t.Fatalf("NormalizeMatch error: %v", err)
	}

	if record.MatchID != "777" {
		t.Fatalf("match id: %q", record.MatchID)
	}
	if !record.IsCompleted {
		t.Fatalf("note with won should mark completion: %+v", record)
	}
	if len(record.Teams) != 2 || record.Teams[0].ShortName != "WI" {
		t.Fatalf("relation teams: %+v", record.Teams)
	}
	if len(record.Innings) != 2 {
		t.Fatalf("extra scoreboard rows must not become innings: %+v", record.Innings)
	}
	first := record.Innings[0]
	if first.Team != "Ireland" || first.Runs != 152 || len(first.Batting) != 1 {
		t.Fatalf("first innings: %+v", first)
	}
	if first.Batting[0].Name != "P Stirling" || first.Batting[0].Fours != 5 || first.Batting[0].Dismissal != "not out" {
		t.Fatalf("grouped batting row: %+v", first.Batting[0])
	}
	if len(first.Bowling) != 1 || first.Bowling[0].Maidens != 1 {
		t.Fatalf("medians must map to maidens: %+v", first.Bowling)
	}
	if len(record.Innings[1].Batting) != 1 || record.Innings[1].Batting[0].Name != "B King" {
		t.Fatalf("second innings grouping: %+v", record.Innings[1])
	}
}

func TestNormalizeMatchBowlerRowShapesAreEquivalent(t *testing.T) {
	t.Parallel()

	shapes := []map[string]any{
		{"bowlerName": "X", "wickets": float64(3)},
		{"name": "X", "w": float64(3)},
		{"bowler": "X", "wickets": "3"},
	}
	for _, shape := range shapes {
		detail := map[string]any{
			"innings": []any{
				map[string]any{"team": "A", "bowling": []any{shape}},
			},
		}
		record, err := NormalizeMatch(map[string]any{"id": "m1"}, detail)
		if err != nil {
			t.Fatalf("NormalizeMatch error: %v", err)
		}
		row := record.Innings[0].Bowling[0]
		if row.Name != "X" || row.Wickets != 3 {
			t.Fatalf("shape %v resolved to %+v", shape, row)
		}
	}
}

func TestNormalizeMatchExcludesFillerBattingRows(t *testing.T) {
	t.Parallel()

	detail := map[string]any{
		"innings": []any{
			map[string]any{
				"team": "A",
				"batting": []any{
					map[string]any{"name": "", "runs": float64(10)},
					map[string]any{"name": "Extras (b 4, lb 2)", "runs": float64(6)},
					map[string]any{"name": "TOTAL", "runs": float64(250)},
					map[string]any{"name": "Did not bat: R Jadeja"},
					map[string]any{"name": "J Root", "runs": float64(118)},
				},
			},
		},
	}

	record, err := NormalizeMatch(map[string]any{"id": "m2"}, detail)
	if err != nil {
		t.Fatalf("NormalizeMatch error: %v", err)
	}
	batting := record.Innings[0].Batting
	if len(batting) != 1 || batting[0].Name != "J Root" {
		t.Fatalf("filler rows leaked: %+v", batting)
	}
}

func TestNormalizeMatchNilDetailYieldsLesserRecord(t *testing.T) {
	t.Parallel()

	record, err := NormalizeMatch(cricapiSummary(), nil)
	if err != nil {
		t.Fatalf("NormalizeMatch error: %v", err)
	}
	if len(record.Innings) != 0 {
		t.Fatalf("expected empty innings: %+v", record.Innings)
	}
	if !record.Toss.IsZero() {
		t.Fatalf("expected empty toss: %+v", record.Toss)
	}
	if record.MatchID != "c1" || !record.IsCompleted {
		t.Fatalf("summary fields must survive: %+v", record)
	}
}

func TestNormalizeMatchPartialTossStaysEmpty(t *testing.T) {
	t.Parallel()

	summary := map[string]any{"id": "m1", "name": "A vs B", "status": "A won"}

	record, err := NormalizeMatch(summary, map[string]any{
		"tossResults": map[string]any{"tossWinner": "Australia"},
	})
	if err != nil {
		t.Fatalf("NormalizeMatch error: %v", err)
	}
	if !record.Toss.IsZero() {
		t.Fatalf("toss without a decision must stay empty: %+v", record.Toss)
	}

	record, err = NormalizeMatch(summary, map[string]any{
		"toss": map[string]any{"decision": "bat"},
	})
	if err != nil {
		t.Fatalf("NormalizeMatch error: %v", err)
	}
	if !record.Toss.IsZero() {
		t.Fatalf("toss without a winner must stay empty: %+v", record.Toss)
	}
}

func TestNormalizeMatchMissingIdentifier(t *testing.T) {
	t.Parallel()

	_, err := NormalizeMatch(map[string]any{"name": "A vs B"}, nil)
	if !errors.Is(err, ErrMissingIdentifier) {
		t.Fatalf("expected ErrMissingIdentifier, got %v", err)
	}

	_, err = NormalizeMatch(map[string]any{"id": "  "}, nil)
	if !errors.Is(err, ErrMissingIdentifier) {
		t.Fatalf("expected blank id to be missing, got %v", err)
	}
}

func TestNormalizeMatchHostileDetailNeverPanics(t *testing.T) {
	t.Parallel()

	detail := map[string]any{
		"scorecard": []any{
			"not an object",
			map[string]any{"batting": "not a list"},
			map[string]any{"batting": []any{float64(5), nil}},
		},
		"awards": []any{nil, "x"},
	}
	record, err := NormalizeMatch(map[string]any{"id": "m3"}, detail)
	if err != nil {
		t.Fatalf("NormalizeMatch error: %v", err)
	}
	if len(record.Innings) != 2 {
		t.Fatalf("malformed innings entries should be dropped, not fatal: %+v", record.Innings)
	}
}
