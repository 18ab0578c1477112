package parser

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// report is a two-season URL-delimited export with tabbed columns, one noise
// line in the standings and a trailing page that carries no season.
var report = strings.Join([]string{
	"https://stats.example.com/league/fall-2023-c",
	"Fall 2023 C League Standings",
	"Calendar Sync",
	"PTS\tW\tL\tT\tGP\tOTL\tPF\tPA\tPD",
	"Lahti Lions\t16\t8\t2\t0\t10\t0\t45\t20\t25",
	"Ice Dogs\t12\t6\t4\t0\t10\t0\t30\t35\t-5",
	"Print",
	"",
	"Player Stats",
	"#\tPlayer\t#\tGP\tG\tA\tPTS\tPIM",
	"1\tMikko Lahti\t12\t10\t8\t5\t13\t2",
	"2\tJari Virtanen\tG\t10\t0\t1\t1\t0",
	"",
	"Goalie Stats",
	"#\tPlayer\t#\tGP\tW\tL\tOTL\tSV\tGA\tGAA\tSV%\tSO",
	"1\tJari Virtanen\t30\t10\t8\t2\t0\t250\t20\t2.00\t.926\t1",
	"https://stats.example.com/league/spring-2024-rec",
	"Spring 2024 Rec League Standings",
	"PTS W L T GP OTL PF PA PD",
	"Kiekko Kings 9 4 5 1 10 0 30 33 -3",
	"",
	"https://stats.example.com/about",
	"About this league",
	"Contact the board for schedules.",
}, "\n") + "\n"

type recorder struct {
	segmented []int
	dropped   []DropReason
	rejected  []Rejection
	assembled []string
	replaced  []bool
}

func (r *recorder) OnChunkSegmented(index int, _ string) {
	r.segmented = append(r.segmented, index)
}

func (r *recorder) OnSeasonDropped(_ int, _ string, reason DropReason) {
	r.dropped = append(r.dropped, reason)
}

func (r *recorder) OnRowRejected(_ string, rej Rejection) {
	r.rejected = append(r.rejected, rej)
}

func (r *recorder) OnSeasonAssembled(_ int, rec *SeasonRecord, replaced bool) {
	r.assembled = append(r.assembled, rec.Label)
	r.replaced = append(r.replaced, replaced)
}

func TestParse_SingleStandingsLine(t *testing.T) {
	seasons := Parse("Fall 2023 C League Standings\nTeam A 10 5 0 0 5 0 20 10 10\n")

	require.Len(t, seasons, 1)
	rec := seasons["Fall 2023 C League"]
	require.NotNil(t, rec)

	require.NotNil(t, rec.Year)
	assert.Equal(t, 2023, *rec.Year)
	require.NotNil(t, rec.Season)
	assert.Equal(t, SeasonFall, *rec.Season)
	require.NotNil(t, rec.Level)
	assert.Equal(t, TierC, *rec.Level)

	assert.Equal(t, []StandingsRow{{
		TeamName: "Team A", Points: 10, Wins: 5, Losses: 0, Ties: 0, GamesPlayed: 5,
		OTL: 0, GoalsFor: 20, GoalsAgainst: 10, GoalDifferential: 10,
	}}, rec.Standings)
	assert.Empty(t, rec.Players)
	assert.Empty(t, rec.Goalies)
}

func TestParse_Report(t *testing.T) {
	rec := &recorder{}
	seasons := New(Options{Observer: rec}).Parse(report)

	require.Len(t, seasons, 2)
	assert.Equal(t, []string{"Fall 2023 C League", "Spring 2024 Rec League"}, seasons.Labels())

	fall := seasons["Fall 2023 C League"]
	require.NotNil(t, fall)
	assert.Equal(t, []StandingsRow{
		{TeamName: "Lahti Lions", Points: 16, Wins: 8, Losses: 2, GamesPlayed: 10, GoalsFor: 45, GoalsAgainst: 20, GoalDifferential: 25},
		{TeamName: "Ice Dogs", Points: 12, Wins: 6, Losses: 4, GamesPlayed: 10, GoalsFor: 30, GoalsAgainst: 35, GoalDifferential: -5},
	}, fall.Standings)
	assert.Equal(t, []PlayerRow{
		{Name: "Mikko Lahti", Number: "12", GamesPlayed: 10, Goals: 8, Assists: 5, Points: 13, PenaltyMinutes: 2},
		{Name: "Jari Virtanen", Number: GoalieJersey, GamesPlayed: 10, Goals: 0, Assists: 1, Points: 1},
	}, fall.Players)
	assert.Equal(t, []GoalieRow{
		{Name: "Jari Virtanen", Number: "30", GamesPlayed: 10, Wins: 8, Losses: 2, Saves: 250,
			GoalsAgainst: 20, GAA: 2.0, SavePercentage: 0.926, Shutouts: 1},
	}, fall.Goalies)

	spring := seasons["Spring 2024 Rec League"]
	require.NotNil(t, spring)
	require.NotNil(t, spring.Level)
	assert.Equal(t, TierRec, *spring.Level)
	require.Len(t, spring.Standings, 1)
	assert.Equal(t, -3, spring.Standings[0].GoalDifferential)

	assert.Equal(t, []int{0, 1, 2}, rec.segmented)
	assert.Equal(t, []DropReason{DropUnknownSeason}, rec.dropped)
	assert.Equal(t, []string{"Fall 2023 C League", "Spring 2024 Rec League"}, rec.assembled)
	assert.Equal(t, []Rejection{{Section: SectionStandings, Line: "Calendar Sync", Reason: RejectShape}}, rec.rejected)
}

func TestParse_GoaliesWithoutPlayers(t *testing.T) {
	seasons := Parse("Summer 2022 Rec League\nGoalie Stats\n1 Pekka Koskinen 1 12 10 2 0 300 25 2.08 0.923 2\n")

	rec := seasons["Summer 2022 Rec League"]
	require.NotNil(t, rec)
	assert.Empty(t, rec.Standings)
	assert.Empty(t, rec.Players)
	require.Len(t, rec.Goalies, 1)
	assert.Equal(t, Decimal(2.08), rec.Goalies[0].GAA)
}

func TestParse_DropsChunks(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		reason DropReason
	}{
		{"no header", "Some page\nTeam A 10 5 0 0 5 0 20 10 10\n", DropUnknownSeason},
		{"header but no tables", "Fall 2023 C League\nNothing posted yet.\n", DropEmptySeason},
		{"tables with no valid rows", "Fall 2023 C League Standings\nTeam A 10 5 0\n", DropEmptySeason},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recorder{}
			seasons := New(Options{Observer: rec}).Parse(tt.input)
			assert.Empty(t, seasons)
			assert.Equal(t, []DropReason{tt.reason}, rec.dropped)
		})
	}
}

func TestParse_DuplicateLabelLastWins(t *testing.T) {
	input := "https://a.example.com/1\n" +
		"Fall 2023 C League Standings\nFirst Team 1 1 0 0 1 0 3 1 2\n" +
		"https://a.example.com/2\n" +
		"Fall 2023 C League Standings\nSecond Team 2 1 0 0 1 0 4 1 3\n"

	for _, workers := range []int{1, 4} {
		rec := &recorder{}
		seasons := New(Options{Workers: workers, Observer: rec}).Parse(input)

		require.Len(t, seasons, 1)
		assert.Equal(t, "Second Team", seasons["Fall 2023 C League"].Standings[0].TeamName)
		assert.Equal(t, []bool{false, true}, rec.replaced)
	}
}

func TestParse_Idempotent(t *testing.T) {
	first, err := json.Marshal(Parse(report))
	require.NoError(t, err)
	second, err := json.Marshal(Parse(report))
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
}

func TestParse_ParallelMatchesSequential(t *testing.T) {
	sequential := New(Options{Workers: 1}).Parse(report)
	parallel := New(Options{Workers: 8}).Parse(report)
	assert.Equal(t, sequential, parallel)
}

func TestParse_HeaderStrategy(t *testing.T) {
	input := "Exported from the league site\n\n" +
		"Fall 2023 C League\nStandings\nTeam A 10 5 0 0 5 0 20 10 10\n\n" +
		"Spring 2024 Rec League\nStandings\nTeam B 3 1 2 1 4 0 9 12 -3\n"

	seasons := New(Options{Strategy: StrategyHeader}).Parse(input)
	assert.Equal(t, []string{"Fall 2023 C League", "Spring 2024 Rec League"}, seasons.Labels())

	// URL strategy sees one chunk and keeps only the first header.
	single := New(Options{Strategy: StrategyURL}).Parse(input)
	assert.Len(t, single, 1)
}

func TestParse_HeaderStrategySplitYear(t *testing.T) {
	input := "Fall 2023 C League Standings\nTeam A 10 5 0 0 5 0 20 10 10\n\n" +
		"Fall/Winter 2022/23 CC/C League Standings\nTeam B 8 4 4 0 8 0 20 22 -2\n"

	seasons := New(Options{Strategy: StrategyHeader}).Parse(input)
	require.Equal(t, []string{"Fall 2023 C League", "Fall/Winter 2022/23 CC/C League"}, seasons.Labels())

	first := seasons["Fall 2023 C League"]
	require.Len(t, first.Standings, 1)
	assert.Equal(t, "Team A", first.Standings[0].TeamName)

	split := seasons["Fall/Winter 2022/23 CC/C League"]
	require.Len(t, split.Standings, 1)
	assert.Equal(t, "Team B", split.Standings[0].TeamName)
	require.NotNil(t, split.Year)
	assert.Equal(t, 2022, *split.Year)
}

func TestParse_StandingsTerminators(t *testing.T) {
	input := "Fall 2023 C League Standings\n" +
		"Team A 10 5 0 0 5 0 20 10 10\n" +
		"Suomi Sarja\n" +
		"Team B 8 4 4 0 8 0 20 22 -2\n"

	tests := []struct {
		name        string
		terminators []string
		teams       []string
	}{
		{name: "nil uses defaults", terminators: nil, teams: []string{"Team A"}},
		{name: "empty disables", terminators: []string{}, teams: []string{"Team A", "Team B"}},
		{name: "custom", terminators: []string{"Team B"}, teams: []string{"Team A"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seasons := New(Options{StandingsTerminators: tt.terminators}).Parse(input)
			rec := seasons["Fall 2023 C League"]
			require.NotNil(t, rec)

			var teams []string
			for _, row := range rec.Standings {
				teams = append(teams, row.TeamName)
			}
			assert.Equal(t, tt.teams, teams)
		})
	}
}

func TestParse_CRLF(t *testing.T) {
	seasons := Parse("Fall 2023 C League Standings\r\nTeam A 10 5 0 0 5 0 20 10 10\r\n")
	require.Contains(t, seasons, "Fall 2023 C League")
	assert.Len(t, seasons["Fall 2023 C League"].Standings, 1)
}

func TestParseContext_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, workers := range []int{1, 4} {
		_, err := New(Options{Workers: workers}).ParseContext(ctx, report)
		assert.ErrorIs(t, err, context.Canceled)
	}
}

func TestParser_Fingerprint(t *testing.T) {
	a := New(DefaultOptions())
	b := New(Options{Workers: 6})
	c := New(Options{Strategy: StrategyHeader})

	assert.Equal(t, a.Fingerprint(), b.Fingerprint())
	assert.NotEqual(t, a.Fingerprint(), c.Fingerprint())
}

func TestSeasonRecord_JSON(t *testing.T) {
	rec := Parse(report)["Fall 2023 C League"]
	require.NotNil(t, rec)

	out, err := json.Marshal(rec)
	require.NoError(t, err)

	s := string(out)
	assert.Contains(t, s, `"year":2023`)
	assert.Contains(t, s, `"season":"Fall"`)
	assert.Contains(t, s, `"level":"C"`)
	assert.Contains(t, s, `"gaa":2.0`)
	assert.Contains(t, s, `"save_percentage":0.926`)
	assert.Contains(t, s, `"goal_differential":-5`)
	assert.NotContains(t, s, "Label")
}
