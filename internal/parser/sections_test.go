package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocateStandings(t *testing.T) {
	tests := []struct {
		name  string
		chunk string
		want  string
		found bool
	}{
		{
			name:  "standings anchor to blank line",
			chunk: "Fall 2023 C League Standings\nTeam A 1 1 0 0 1 0 2 1 1\n\nPlayer Stats\n",
			want:  "Team A 1 1 0 0 1 0 2 1 1", found: true,
		},
		{
			name:  "calendar sync anchor",
			chunk: "Fall 2023 C League\nCalendar Sync\nTeam A 1 1 0 0 1 0 2 1 1\n",
			want:  "Team A 1 1 0 0 1 0 2 1 1\n", found: true,
		},
		{
			name:  "column header fallback",
			chunk: "Fall 2023 C League\nPTS\tW\tL\tT\tGP\tOTL\tPF\tPA\tPD\nTeam A 1 1 0 0 1 0 2 1 1\n",
			want:  "Team A 1 1 0 0 1 0 2 1 1\n", found: true,
		},
		{
			name:  "terminator marker",
			chunk: "Standings\nTeam A 1 1 0 0 1 0 2 1 1\nSuomi Poikas schedule\nTeam B 1 1 0 0 1 0 2 1 1\n",
			want:  "Team A 1 1 0 0 1 0 2 1 1", found: true,
		},
		{
			name:  "whitespace-only line ends the table",
			chunk: "Standings\nTeam A 1 1 0 0 1 0 2 1 1\n \t\nTeam B 1 1 0 0 1 0 2 1 1\n",
			want:  "Team A 1 1 0 0 1 0 2 1 1", found: true,
		},
		{
			name:  "no anchor",
			chunk: "Fall 2023 C League\nTeam A 1 1 0 0 1 0 2 1 1\n",
			found: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := LocateStandings(tt.chunk)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLocateStandings_CustomTerminators(t *testing.T) {
	chunk := "Standings\nTeam A 1 1 0 0 1 0 2 1 1\nSchedule\nTeam B 1 1 0 0 1 0 2 1 1\n"

	got, ok := newStandingsLocator([]string{"Schedule"}).locate(chunk)
	require.True(t, ok)
	assert.Equal(t, "Team A 1 1 0 0 1 0 2 1 1", got)

	got, ok = newStandingsLocator(nil).locate(chunk)
	require.True(t, ok)
	assert.Contains(t, got, "Team B")
}

func TestDefaultStandingsTerminators_FreshCopy(t *testing.T) {
	got := DefaultStandingsTerminators()
	got[0] = "Schedule"

	assert.Equal(t, []string{"Suomi"}, DefaultStandingsTerminators())
}

func TestLocateStandings_NoTerminators(t *testing.T) {
	chunk := "Standings\nTeam A 1 1 0 0 1 0 2 1 1\nSuomi\nTeam B 1 1 0 0 1 0 2 1 1\n"

	got, ok := newStandingsLocator([]string{}).locate(chunk)
	require.True(t, ok)
	assert.Contains(t, got, "Team B")
}

func TestLocatePlayers(t *testing.T) {
	got, ok := LocatePlayers("Player Stats\n1 A B 1 1 1 1 1 1\nGoalie Stats\n1 C D 1 1 1 1 1 1 1.0 0.9 0\n")
	require.True(t, ok)
	assert.Contains(t, got, "1 A B")
	assert.NotContains(t, got, "Goalie")

	got, ok = LocatePlayers("Player Stats \n1 A B 1 1 1 1 1 1\n\nSomething else\n")
	require.True(t, ok)
	assert.Equal(t, "1 A B 1 1 1 1 1 1", got)

	_, ok = LocatePlayers("Goalie Stats\n1 C D 1 1 1 1 1 1 1.0 0.9 0\n")
	assert.False(t, ok)
}

func TestLocateGoalies(t *testing.T) {
	got, ok := LocateGoalies("Player Stats\n\nGoalie Stats\n1 C D 1 1 1 1 1 1 1.0 0.9 0\n\ntrailer\n")
	require.True(t, ok)
	assert.Equal(t, "1 C D 1 1 1 1 1 1 1.0 0.9 0", got)

	got, ok = LocateGoalies("Goalie Stats\n1 C D 1 1 1 1 1 1 1.0 0.9 0")
	require.True(t, ok)
	assert.Equal(t, "1 C D 1 1 1 1 1 1 1.0 0.9 0", got)

	_, ok = LocateGoalies("Fall 2023 C League\n")
	assert.False(t, ok)
}
