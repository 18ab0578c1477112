package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStandings(t *testing.T) {
	body := strings.Join([]string{
		"PTS W L T GP OTL PF PA PD",
		"Lahti Lions\t16\t8\t2\t0\t10\t0\t45\t20\t25",
		"",
		"Ice Dogs 12 6 4 0 10 0 30 35 -5",
		"Long Wrapped Team",
		"Kiekko Kings 9 4 5 1 10 0 30 33",
		"Big Numbers 99999999999999999999 6 4 0 10 0 30 35 1",
		"Puck Hogs 8 4 6 0 10 0 28 30 -2 extra",
		"Print",
		"North Stars 4 2 8 0 10 0 20 40 -20",
	}, "\n")

	rows, rejected := ParseStandings(body)

	require.Len(t, rows, 3)
	assert.Equal(t, "Lahti Lions", rows[0].TeamName)
	assert.Equal(t, 25, rows[0].GoalDifferential)
	assert.Equal(t, StandingsRow{
		TeamName: "Ice Dogs", Points: 12, Wins: 6, Losses: 4, Ties: 0, GamesPlayed: 10,
		OTL: 0, GoalsFor: 30, GoalsAgainst: 35, GoalDifferential: -5,
	}, rows[1])
	assert.Equal(t, -20, rows[2].GoalDifferential)

	assert.Equal(t, []Rejection{
		{Section: SectionStandings, Line: "Long Wrapped Team", Reason: RejectShape},
		{Section: SectionStandings, Line: "Kiekko Kings 9 4 5 1 10 0 30 33", Reason: RejectShape},
		{Section: SectionStandings, Line: "Big Numbers 99999999999999999999 6 4 0 10 0 30 35 1", Reason: RejectNumber},
		{Section: SectionStandings, Line: "Puck Hogs 8 4 6 0 10 0 28 30 -2 extra", Reason: RejectShape},
	}, rejected)
}

func TestParseStandings_EmptyBody(t *testing.T) {
	rows, rejected := ParseStandings("")
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
	assert.Empty(t, rejected)
}

func TestParsePlayers(t *testing.T) {
	tests := []struct {
		name string
		line string
		want *PlayerRow
	}{
		{
			name: "numbered skater",
			line: "1\tMikko Lahti\t12\t10\t8\t5\t13\t2",
			want: &PlayerRow{Name: "Mikko Lahti", Number: "12", GamesPlayed: 10, Goals: 8, Assists: 5, Points: 13, PenaltyMinutes: 2},
		},
		{
			name: "goalie sentinel",
			line: "2 Jari Virtanen G 10 0 1 1 0",
			want: &PlayerRow{Name: "Jari Virtanen", Number: "G", GamesPlayed: 10, Assists: 1, Points: 1},
		},
		{
			name: "hyphenated name",
			line: "3 Anna-Liisa Mäki 7 9 3 4 7 0",
			want: &PlayerRow{Name: "Anna-Liisa Mäki", Number: "7", GamesPlayed: 9, Goals: 3, Assists: 4, Points: 7},
		},
		{name: "missing ordinal", line: "Mikko Lahti 12 10 8 5 13 2"},
		{name: "missing column", line: "4 Matti Nieminen 10 1 2 3"},
		{name: "letter jersey other than G", line: "5 Matti Nieminen X 10 1 2 3 0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, rejected := ParsePlayers(tt.line)
			if tt.want == nil {
				assert.Empty(t, rows)
				require.Len(t, rejected, 1)
				assert.Equal(t, RejectShape, rejected[0].Reason)
				assert.Equal(t, SectionPlayers, rejected[0].Section)
				return
			}
			require.Len(t, rows, 1)
			assert.Equal(t, *tt.want, rows[0])
			assert.Empty(t, rejected)
		})
	}
}

func TestParsePlayers_SkipsHeaders(t *testing.T) {
	body := "# Player # GP G A PTS PIM\nGames Played leaders\n\n1 Mikko Lahti 12 10 8 5 13 2\n"
	rows, rejected := ParsePlayers(body)
	assert.Len(t, rows, 1)
	assert.Empty(t, rejected)
}

func TestParseGoalies(t *testing.T) {
	body := strings.Join([]string{
		"# Player # GP W L OTL SV GA GAA SV% SO",
		"1\tJari Virtanen\t30\t10\t8\t2\t0\t250\t20\t2.00\t.926\t1",
		// More decisions than games: kept exactly as written.
		"2 Pekka Koskinen G 5 8 2 1 120 10 2.50 92.6 0",
		"3 Bad Decimal 1 1 1 0 0 10 2 1.2.3 .900 0",
		"4 Short Line 1 1 1 0 0 10 2 1.00",
	}, "\n")

	rows, rejected := ParseGoalies(body)

	require.Len(t, rows, 2)
	assert.Equal(t, GoalieRow{
		Name: "Jari Virtanen", Number: "30", GamesPlayed: 10, Wins: 8, Losses: 2, OTLosses: 0,
		Saves: 250, GoalsAgainst: 20, GAA: 2.0, SavePercentage: 0.926, Shutouts: 1,
	}, rows[0])
	assert.Equal(t, GoalieRow{
		Name: "Pekka Koskinen", Number: "G", GamesPlayed: 5, Wins: 8, Losses: 2, OTLosses: 1,
		Saves: 120, GoalsAgainst: 10, GAA: 2.5, SavePercentage: 92.6, Shutouts: 0,
	}, rows[1])

	require.Len(t, rejected, 2)
	assert.Equal(t, RejectNumber, rejected[0].Reason)
	assert.Equal(t, RejectShape, rejected[1].Reason)
}
