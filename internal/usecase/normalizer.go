package usecase

import (
	"fmt"
	"strings"

	"github.com/sportsdesk/cricketwire/internal/domain/match"
	"github.com/sportsdesk/cricketwire/internal/platform/fieldpath"
)

// Candidate key-paths per canonical field, in priority order across every
// provider shape we ingest. Supporting a new provider is mostly appending
// paths to these tables.
var (
	matchIDPaths   = []string{"id", "objectId", "match_id", "matchId"}
	titlePaths     = []string{"name", "title"}
	seriesPaths    = []string{"series", "subTitle", "league.name", "league.data.name", "tournament"}
	matchTypePaths = []string{"matchType", "format", "type"}
	venuePaths     = []string{"venue", "ground.longName", "ground.name", "venue.name", "venue.data.name"}
	cityPaths      = []string{"ground.town.name", "ground.city.name", "city", "town", "venue.city", "venue.data.city"}
	startDatePaths = []string{"date", "startDate", "starting_at", "startTime", "dateTimeGMT"}
	statusPaths    = []string{"status", "statusText", "note", "result"}
	endedFlagPaths = []string{"matchEnded", "ended", "finished"}

	tossWinnerPaths = []string{
		"tossResults.tossWinner",
		"tossResults.winningTeam.longName",
		"tossResults.winningTeam.name",
		"toss.winner",
		"toss_won_team.name",
		"toss_won_team.data.name",
	}
	tossDecisionPaths = []string{"tossResults.tossDecision", "tossResults.decision", "toss.decision", "elected"}

	playerOfMatchPaths = []string{"playerOfMatch", "player_of_match", "man_of_match", "playerOfTheMatch"}

	teamNamePaths  = []string{"team.longName", "team.name", "name", "longName"}
	teamShortPaths = []string{"abbreviation", "team.abbreviation", "code", "short_code"}

	inningsTeamPaths    = []string{"inningsTeamName", "team.longName", "team.name", "team.data.name", "team"}
	inningsRunsPaths    = []string{"inningsRuns", "runs", "total", "score"}
	inningsWicketsPaths = []string{"inningsWickets", "wickets"}
	inningsOversPaths   = []string{"inningsOvers", "overs"}
	inningsExtrasPaths  = []string{"inningsExtras", "extras"}
	battingListPaths    = []string{"batting", "batsmen"}
	bowlingListPaths    = []string{"bowling", "bowlers"}
	fallOfWicketPaths   = []string{"fallOfWickets", "fall_of_wickets", "fow"}

	batterNamePaths = []string{"batsmanName", "player.longName", "player.name", "name", "batsman", "player_name"}
	batterRunsPaths = []string{"runs", "r", "score"}
	ballsPaths      = []string{"balls", "b", "ball"}
	foursPaths      = []string{"fours", "4s", "four_x"}
	sixesPaths      = []string{"sixes", "6s", "six_x"}
	strikeRatePaths = []string{"strikeRate", "strike_rate", "sr", "rate"}
	dismissalPaths  = []string{"dismissal-wicket", "dismissalText", "dismissal", "howOut", "how_out"}

	bowlerNamePaths  = []string{"bowlerName", "player.longName", "player.name", "name", "bowler", "player_name"}
	bowlerOversPaths = []string{"overs", "o"}
	maidensPaths     = []string{"maidens", "m", "medians"}
	concededPaths    = []string{"conceded", "runs", "r"}
	wicketsPaths     = []string{"wickets", "w"}
	economyPaths     = []string{"economy", "economyRate", "econ", "rate"}
)

// Top-level keys that can hold the innings list, tried in order. The ESPN
// consumer API nests the match under data.match or data.content.match
// depending on the page the payload was captured from.
var inningsContainerKeys = []string{"scorecard", "innings", "match.innings", "content.match.innings", "scoreboards"}

var detailRootPaths = []string{"data.match", "data.content.match", "match", "content.match"}

const playerOfMatchAward = "player of the match"

// NormalizeMatch collapses one provider's (summary, detail) payload pair into
// the canonical record. detail may be nil; the result is then a valid lesser
// record with no innings and no toss. The only fatal condition is a summary
// that yields no match id.
func NormalizeMatch(summary, detail map[string]any) (match.Record, error) {
	matchID := fieldpath.String(summary, matchIDPaths, "")
	if matchID == "" {
		return match.Record{}, fmt.Errorf("%w: no candidate id field in summary", ErrMissingIdentifier)
	}

	detailRoot := any(detail)
	if detail != nil {
		if nested := fieldpath.Child(detail, detailRootPaths); nested != nil {
			detailRoot = nested
		}
	}

	teams := normalizeTeams(summary, detailRoot)

	title := fieldpath.String(summary, titlePaths, "")
	if title == "" && len(teams) == 2 {
		title = teams[0].Name + " vs " + teams[1].Name
	}

	status := fieldpath.String(summary, statusPaths, "")
	if status == "" {
		status = fieldpath.String(detailRoot, statusPaths, "")
	}
	ended := fieldpath.Bool(summary, endedFlagPaths, false)

	record := match.Record{
		MatchID:     matchID,
		Title:       title,
		Series:      fieldpath.String(summary, seriesPaths, ""),
		MatchType:   fieldpath.String(summary, matchTypePaths, ""),
		Venue:       fieldpath.String(summary, venuePaths, ""),
		City:        fieldpath.String(summary, cityPaths, ""),
		StartDate:   fieldpath.String(summary, startDatePaths, ""),
		Status:      status,
		IsCompleted: match.IsCompletedStatus(status, ended),
		Teams:       teams,
		Innings:     []match.Innings{},
	}

	if detail == nil {
		return record, nil
	}

	tossWinner := fieldpath.String(detailRoot, tossWinnerPaths, "")
	tossDecision := fieldpath.String(detailRoot, tossDecisionPaths, "")
	if tossWinner != "" && tossDecision != "" {
		record.Toss = match.Toss{Winner: tossWinner, Decision: tossDecision}
	}
	record.PlayerOfMatch = resolvePlayerOfMatch(detailRoot)
	record.Innings = normalizeInnings(detailRoot)

	return record, nil
}

func normalizeTeams(summary map[string]any, detailRoot any) []match.Team {
	list := fieldpath.List(summary, []string{"teams"})
	if list == nil {
		list = fieldpath.List(detailRoot, []string{"teams"})
	}
	if list != nil {
		out := make([]match.Team, 0, len(list))
		for _, item := range list {
			switch typed := item.(type) {
			case string:
				if name := strings.TrimSpace(typed); name != "" {
					out = append(out, match.Team{Name: name})
				}
			case map[string]any:
				name := fieldpath.String(typed, teamNamePaths, "")
				if name == "" {
					continue
				}
				out = append(out, match.Team{
					Name:      name,
					ShortName: fieldpath.String(typed, teamShortPaths, ""),
				})
			}
		}
		return out
	}

	// SportMonks fixtures carry the sides as localteam/visitorteam relations.
	out := make([]match.Team, 0, 2)
	for _, key := range []string{"localteam", "visitorteam"} {
		node := fieldpath.Child(summary, []string{key + ".data", key})
		if node == nil {
			node = fieldpath.Child(detailRoot, []string{key + ".data", key})
		}
		if node == nil {
			continue
		}
		name := fieldpath.String(node, []string{"name"}, "")
		if name == "" {
			continue
		}
		out = append(out, match.Team{
			Name:      name,
			ShortName: fieldpath.String(node, []string{"code", "short_code"}, ""),
		})
	}
	return out
}

func resolvePlayerOfMatch(detailRoot any) string {
	if name := fieldpath.String(detailRoot, playerOfMatchPaths, ""); name != "" {
		return name
	}

	for _, award := range fieldpath.List(detailRoot, []string{"awards"}) {
		node, ok := award.(map[string]any)
		if !ok {
			continue
		}
		if fieldpath.String(node, []string{"awardType", "type"}, "") != playerOfMatchAward {
			continue
		}
		if name := fieldpath.String(node, []string{"player.longName", "player.name", "playerName"}, ""); name != "" {
			return name
		}
	}
	return ""
}

func normalizeInnings(detailRoot any) []match.Innings {
	for _, key := range inningsContainerKeys {
		list := fieldpath.List(detailRoot, []string{key})
		if list == nil {
			continue
		}
		if key == "scoreboards" {
			return normalizeScoreboardInnings(detailRoot, list)
		}
		out := make([]match.Innings, 0, len(list))
		for _, item := range list {
			node, ok := item.(map[string]any)
			if !ok {
				continue
			}
			out = append(out, match.Innings{
				Team:          fieldpath.String(node, inningsTeamPaths, ""),
				Runs:          fieldpath.Int(node, inningsRunsPaths, 0),
				Wickets:       fieldpath.Int(node, inningsWicketsPaths, 0),
				Overs:         fieldpath.Float(node, inningsOversPaths, 0),
				Extras:        fieldpath.Int(node, inningsExtrasPaths, 0),
				Batting:       normalizeBatting(fieldpath.List(node, battingListPaths)),
				Bowling:       normalizeBowling(fieldpath.List(node, bowlingListPaths)),
				FallOfWickets: fieldpath.List(node, fallOfWicketPaths),
			})
		}
		return out
	}
	return []match.Innings{}
}

// normalizeScoreboardInnings handles the SportMonks layout where batting and
// bowling are flat fixture-level lists tied to a scoreboard code (S1, S2).
func normalizeScoreboardInnings(detailRoot any, scoreboards []any) []match.Innings {
	batting := fieldpath.List(detailRoot, []string{"batting", "batting.data"})
	bowling := fieldpath.List(detailRoot, []string{"bowling", "bowling.data"})

	out := make([]match.Innings, 0, len(scoreboards))
	for _, item := range scoreboards {
		node, ok := item.(map[string]any)
		if !ok {
			continue
		}
		// scoreboards mix total and extra rows per innings code
		if kind := fieldpath.String(node, []string{"type"}, ""); kind != "" && !strings.EqualFold(kind, "total") {
			continue
		}
		code := fieldpath.String(node, []string{"scoreboard"}, "")
		out = append(out, match.Innings{
			Team:    fieldpath.String(node, inningsTeamPaths, ""),
			Runs:    fieldpath.Int(node, []string{"total", "runs"}, 0),
			Wickets: fieldpath.Int(node, inningsWicketsPaths, 0),
			Overs:   fieldpath.Float(node, inningsOversPaths, 0),
			Batting: normalizeBatting(rowsForScoreboard(batting, code)),
			Bowling: normalizeBowling(rowsForScoreboard(bowling, code)),
		})
	}
	return out
}

func rowsForScoreboard(rows []any, code string) []any {
	if code == "" {
		return rows
	}
	out := make([]any, 0, len(rows))
	for _, row := range rows {
		node, ok := row.(map[string]any)
		if !ok {
			continue
		}
		rowCode := fieldpath.String(node, []string{"scoreboard"}, "")
		if rowCode == "" || rowCode == code {
			out = append(out, row)
		}
	}
	return out
}

func normalizeBatting(rows []any) []match.BattingEntry {
	out := make([]match.BattingEntry, 0, len(rows))
	for _, row := range rows {
		node, ok := row.(map[string]any)
		if !ok {
			continue
		}
		name := fieldpath.String(node, batterNamePaths, "")
		if match.IsNonPlayerRow(name) {
			continue
		}
		dismissal := fieldpath.String(node, dismissalPaths, "not out")
		if strings.EqualFold(dismissal, "dnb") {
			continue
		}
		out = append(out, match.BattingEntry{
			Name:       name,
			Runs:       fieldpath.Int(node, batterRunsPaths, 0),
			Balls:      fieldpath.Int(node, ballsPaths, 0),
			Fours:      fieldpath.Int(node, foursPaths, 0),
			Sixes:      fieldpath.Int(node, sixesPaths, 0),
			StrikeRate: fieldpath.Float(node, strikeRatePaths, 0),
			Dismissal:  dismissal,
		})
	}
	return out
}

func normalizeBowling(rows []any) []match.BowlingEntry {
	out := make([]match.BowlingEntry, 0, len(rows))
	for _, row := range rows {
		node, ok := row.(map[string]any)
		if !ok {
			continue
		}
		name := fieldpath.String(node, bowlerNamePaths, "")
		if name == "" {
			continue
		}
		out = append(out, match.BowlingEntry{
			Name:    name,
			Overs:   fieldpath.Float(node, bowlerOversPaths, 0),
			Maidens: fieldpath.Int(node, maidensPaths, 0),
			Runs:    fieldpath.Int(node, concededPaths, 0),
			Wickets: fieldpath.Int(node, wicketsPaths, 0),
			Economy: fieldpath.Float(node, economyPaths, 0),
		})
	}
	return out
}
