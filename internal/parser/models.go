package parser

import (
	"sort"
	"strconv"
	"strings"
)

// SeasonName is the closed set of season names a report header can carry.
type SeasonName string

const (
	SeasonSpring     SeasonName = "Spring"
	SeasonSummer     SeasonName = "Summer"
	SeasonFall       SeasonName = "Fall"
	SeasonFallWinter SeasonName = "Fall/Winter"
)

// ParseSeasonName maps a header token (any case) to its canonical name.
func ParseSeasonName(s string) (SeasonName, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "spring":
		return SeasonSpring, true
	case "summer":
		return SeasonSummer, true
	case "fall":
		return SeasonFall, true
	case "fall/winter", "fall-winter":
		return SeasonFallWinter, true
	}
	return "", false
}

func (s SeasonName) order() int {
	switch s {
	case SeasonSpring:
		return 1
	case SeasonSummer:
		return 2
	case SeasonFall:
		return 3
	case SeasonFallWinter:
		return 4
	}
	return 0
}

// LeagueTier is the competitive level, normalized to C or Rec.
type LeagueTier string

const (
	TierC   LeagueTier = "C"
	TierRec LeagueTier = "Rec"
)

// ParseLeagueTier accepts "c" / "rec" in any case.
func ParseLeagueTier(s string) (LeagueTier, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "c":
		return TierC, true
	case "rec":
		return TierRec, true
	}
	return "", false
}

func (t LeagueTier) order() int {
	switch t {
	case TierRec:
		return 1
	case TierC:
		return 2
	}
	return 0
}

// Decimal is a parsed decimal stat (GAA, save percentage). The value is kept
// exactly as read; it always renders with a decimal point in JSON.
type Decimal float64

// MarshalJSON keeps the float/int distinction: 2 renders as 2.0.
func (d Decimal) MarshalJSON() ([]byte, error) {
	s := strconv.FormatFloat(float64(d), 'f', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return []byte(s), nil
}

// Metadata is what the header region of a chunk tells us about the season.
type Metadata struct {
	Year   *int
	Season *SeasonName
	Level  *LeagueTier
}

// StandingsRow is one team line from a standings table.
type StandingsRow struct {
	TeamName         string `json:"team_name"`
	Points           int    `json:"points"`
	Wins             int    `json:"wins"`
	Losses           int    `json:"losses"`
	Ties             int    `json:"ties"`
	GamesPlayed      int    `json:"games_played"`
	OTL              int    `json:"otl"`
	GoalsFor         int    `json:"goals_for"`
	GoalsAgainst     int    `json:"goals_against"`
	GoalDifferential int    `json:"goal_differential"`
}

// PlayerRow is one skater line from a player stats table. Number is either
// digits or GoalieJersey.
type PlayerRow struct {
	Name           string `json:"name"`
	Number         string `json:"number"`
	GamesPlayed    int    `json:"games_played"`
	Goals          int    `json:"goals"`
	Assists        int    `json:"assists"`
	Points         int    `json:"points"`
	PenaltyMinutes int    `json:"penalty_minutes"`
}

// GoalieRow is one line from a goalie stats table. No consistency checks are
// applied between the counts.
type GoalieRow struct {
	Name           string  `json:"name"`
	Number         string  `json:"number"`
	GamesPlayed    int     `json:"games_played"`
	Wins           int     `json:"wins"`
	Losses         int     `json:"losses"`
	OTLosses       int     `json:"ot_losses"`
	Saves          int     `json:"saves"`
	GoalsAgainst   int     `json:"goals_against"`
	GAA            Decimal `json:"gaa"`
	SavePercentage Decimal `json:"save_percentage"`
	Shutouts       int     `json:"shutouts"`
}

// SeasonRecord is everything recovered from one season chunk.
type SeasonRecord struct {
	Label     string         `json:"-"`
	Year      *int           `json:"year"`
	Season    *SeasonName    `json:"season"`
	Level     *LeagueTier    `json:"level"`
	Standings []StandingsRow `json:"standings"`
	Players   []PlayerRow    `json:"players"`
	Goalies   []GoalieRow    `json:"goalies"`
}

// Empty reports whether none of the three tables has a row.
func (r *SeasonRecord) Empty() bool {
	return len(r.Standings) == 0 && len(r.Players) == 0 && len(r.Goalies) == 0
}

// Seasons maps a canonical season label to its record.
type Seasons map[string]*SeasonRecord

// Labels returns the labels in chronological order: year, season, tier, label.
// Records with unknown metadata sort first.
func (s Seasons) Labels() []string {
	labels := make([]string, 0, len(s))
	for label := range s {
		labels = append(labels, label)
	}
	sort.Slice(labels, func(i, j int) bool {
		a, b := s[labels[i]], s[labels[j]]
		if ay, by := intOr(a.Year), intOr(b.Year); ay != by {
			return ay < by
		}
		if ao, bo := seasonOrder(a.Season), seasonOrder(b.Season); ao != bo {
			return ao < bo
		}
		if ao, bo := tierOrder(a.Level), tierOrder(b.Level); ao != bo {
			return ao < bo
		}
		return labels[i] < labels[j]
	})
	return labels
}

// Find returns the season with the given year, season name and tier.
func (s Seasons) Find(year int, season SeasonName, level LeagueTier) (*SeasonRecord, bool) {
	for _, label := range s.Labels() {
		rec := s[label]
		if rec.Year != nil && *rec.Year == year &&
			rec.Season != nil && *rec.Season == season &&
			rec.Level != nil && *rec.Level == level {
			return rec, true
		}
	}
	return nil, false
}

// Merge copies other into s; records in other replace same-labelled ones.
func (s Seasons) Merge(other Seasons) {
	for label, rec := range other {
		s[label] = rec
	}
}

func intOr(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

func seasonOrder(p *SeasonName) int {
	if p == nil {
		return 0
	}
	return p.order()
}

func tierOrder(p *LeagueTier) int {
	if p == nil {
		return 0
	}
	return p.order()
}
