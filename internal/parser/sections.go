package parser

import (
	"regexp"
	"strings"
)

// Section names one of the three tables a chunk may hold.
type Section string

const (
	SectionStandings Section = "standings"
	SectionPlayers   Section = "players"
	SectionGoalies   Section = "goalies"
)

// DefaultStandingsTerminators returns the marker words that end a standings
// table when they start a line.
func DefaultStandingsTerminators() []string {
	return []string{"Suomi"}
}

// blankLine matches a line break followed by a whitespace-only line.
const blankLine = `\n[ \t]*\n`

// locator isolates one section. Anchors are tried in order and the first
// that matches wins; group 1 of each anchor is the section body.
type locator struct {
	section Section
	anchors []*regexp.Regexp
}

func (l locator) locate(chunk string) (string, bool) {
	for _, re := range l.anchors {
		if m := re.FindStringSubmatch(chunk); m != nil {
			return m[1], true
		}
	}
	return "", false
}

func newStandingsLocator(terminators []string) locator {
	stop := blankLine
	for _, t := range terminators {
		if t = strings.TrimSpace(t); t != "" {
			stop += `|\n` + regexp.QuoteMeta(t)
		}
	}
	tail := `[^\n]*\n(.*?)(?:` + stop + `|$)`
	return locator{
		section: SectionStandings,
		anchors: []*regexp.Regexp{
			regexp.MustCompile(`(?s)(?:Calendar Sync|Standings)` + tail),
			regexp.MustCompile(`(?s)PTS\s+W\s+L\s+T\s+GP\s+OTL\s+PF\s+PA\s+PD` + tail),
		},
	}
}

var (
	playersLocator = locator{
		section: SectionPlayers,
		anchors: []*regexp.Regexp{
			regexp.MustCompile(`(?s)Player Stats[ \t]*\n(.*?)(?:` + blankLine + `|Goalie Stats|$)`),
		},
	}
	goaliesLocator = locator{
		section: SectionGoalies,
		anchors: []*regexp.Regexp{
			regexp.MustCompile(`(?s)Goalie Stats[ \t]*\n(.*?)(?:` + blankLine + `|$)`),
		},
	}
)

// LocateStandings returns the standings body of a chunk using the default
// terminators.
func LocateStandings(chunk string) (string, bool) {
	return newStandingsLocator(DefaultStandingsTerminators()).locate(normalizeNewlines(chunk))
}

// LocatePlayers returns the body following a "Player Stats" line.
func LocatePlayers(chunk string) (string, bool) {
	return playersLocator.locate(normalizeNewlines(chunk))
}

// LocateGoalies returns the body following a "Goalie Stats" line.
func LocateGoalies(chunk string) (string, bool) {
	return goaliesLocator.locate(normalizeNewlines(chunk))
}
