package parser

import (
	"regexp"
	"strconv"
	"strings"
)

// GoalieJersey is the jersey token player tables use for goalie entries.
const GoalieJersey = "G"

// RejectReason says why a candidate line was dropped from its table.
type RejectReason string

const (
	// RejectShape: the line does not have the section's positional layout.
	RejectShape RejectReason = "shape"
	// RejectNumber: the layout matched but a number failed to convert.
	RejectNumber RejectReason = "number"
)

// Rejection records one dropped line.
type Rejection struct {
	Section Section
	Line    string
	Reason  RejectReason
}

var (
	standingsRowPattern = regexp.MustCompile(
		`^([^0-9]+?) (\d+) (\d+) (\d+) (\d+) (\d+) (\d+) (\d+) (\d+) (-?\d+)$`)
	playerRowPattern = regexp.MustCompile(
		`^\d+ ([^0-9]+?) (\d+|` + GoalieJersey + `) (\d+) (\d+) (\d+) (\d+) (\d+)$`)
	goalieRowPattern = regexp.MustCompile(
		`^\d+ ([^0-9]+?) (\S+) (\d+) (\d+) (\d+) (\d+) (\d+) (\d+) ([0-9.]+) ([0-9.]+) (\d+)$`)
)

var (
	standingsNoise = []string{"PTS", "Print"}
	statsNoise     = []string{"Games Played", "Player"}
)

// numbers converts matched fields and remembers the first failure.
type numbers struct {
	err error
}

func (n *numbers) int(s string) int {
	v, err := strconv.Atoi(s)
	if err != nil && n.err == nil {
		n.err = err
	}
	return v
}

func (n *numbers) decimal(s string) Decimal {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil && n.err == nil {
		n.err = err
	}
	return Decimal(v)
}

// rowFunc turns the submatches of a row pattern into a row.
type rowFunc[T any] func(m []string, n *numbers) T

// parseTable keeps every line that matches re and converts cleanly. Blank and
// noise lines are skipped silently; other misses become rejections.
func parseTable[T any](body string, section Section, noise []string, re *regexp.Regexp, build rowFunc[T]) ([]T, []Rejection) {
	rows := []T{}
	var rejected []Rejection

	for _, raw := range strings.Split(body, "\n") {
		line := Normalize(raw)
		if line == "" || containsAny(line, noise) {
			continue
		}

		m := re.FindStringSubmatch(line)
		if m == nil {
			rejected = append(rejected, Rejection{Section: section, Line: line, Reason: RejectShape})
			continue
		}

		var n numbers
		row := build(m, &n)
		if n.err != nil {
			rejected = append(rejected, Rejection{Section: section, Line: line, Reason: RejectNumber})
			continue
		}
		rows = append(rows, row)
	}

	return rows, rejected
}

func containsAny(line string, tokens []string) bool {
	for _, t := range tokens {
		if strings.Contains(line, t) {
			return true
		}
	}
	return false
}

// ParseStandings parses a located standings body.
func ParseStandings(body string) ([]StandingsRow, []Rejection) {
	return parseTable(body, SectionStandings, standingsNoise, standingsRowPattern,
		func(m []string, n *numbers) StandingsRow {
			return StandingsRow{
				TeamName:         strings.TrimSpace(m[1]),
				Points:           n.int(m[2]),
				Wins:             n.int(m[3]),
				Losses:           n.int(m[4]),
				Ties:             n.int(m[5]),
				GamesPlayed:      n.int(m[6]),
				OTL:              n.int(m[7]),
				GoalsFor:         n.int(m[8]),
				GoalsAgainst:     n.int(m[9]),
				GoalDifferential: n.int(m[10]),
			}
		})
}

// ParsePlayers parses a located player stats body. The leading ordinal is
// discarded.
func ParsePlayers(body string) ([]PlayerRow, []Rejection) {
	return parseTable(body, SectionPlayers, statsNoise, playerRowPattern,
		func(m []string, n *numbers) PlayerRow {
			return PlayerRow{
				Name:           strings.TrimSpace(m[1]),
				Number:         m[2],
				GamesPlayed:    n.int(m[3]),
				Goals:          n.int(m[4]),
				Assists:        n.int(m[5]),
				Points:         n.int(m[6]),
				PenaltyMinutes: n.int(m[7]),
			}
		})
}

// ParseGoalies parses a located goalie stats body. Save percentage is kept on
// whatever scale the source uses.
func ParseGoalies(body string) ([]GoalieRow, []Rejection) {
	return parseTable(body, SectionGoalies, statsNoise, goalieRowPattern,
		func(m []string, n *numbers) GoalieRow {
			return GoalieRow{
				Name:           strings.TrimSpace(m[1]),
				Number:         m[2],
				GamesPlayed:    n.int(m[3]),
				Wins:           n.int(m[4]),
				Losses:         n.int(m[5]),
				OTLosses:       n.int(m[6]),
				Saves:          n.int(m[7]),
				GoalsAgainst:   n.int(m[8]),
				GAA:            n.decimal(m[9]),
				SavePercentage: n.decimal(m[10]),
				Shutouts:       n.int(m[11]),
			}
		})
}
