package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractMetadata(t *testing.T) {
	tests := []struct {
		name   string
		chunk  string
		label  string
		year   int
		season SeasonName
		level  LeagueTier
	}{
		{
			name:  "line-start header with trailing words",
			chunk: "Fall 2023 C League Standings\nTeam A 10 5 0 0 5 0 20 10 10",
			label: "Fall 2023 C League", year: 2023, season: SeasonFall, level: TierC,
		},
		{
			name:  "permissive pattern beats the greedy one",
			chunk: "Fall 2023 C League Playoffs Rec League\n",
			label: "Fall 2023 C League", year: 2023, season: SeasonFall, level: TierC,
		},
		{
			name:  "mid-line header",
			chunk: "Results: Summer 2022 Rec League\n",
			label: "Summer 2022 Rec League", year: 2022, season: SeasonSummer, level: TierRec,
		},
		{
			name:  "split-year header",
			chunk: "Welcome to Fall/Winter season 2022/23 CC/C League\n",
			label: "Fall/Winter season 2022/23 CC/C League", year: 2022, season: SeasonFallWinter, level: TierC,
		},
		{
			name:  "year before season",
			chunk: "Archive 2021 Spring C/CC League\n",
			label: "2021 Spring C/CC League", year: 2021, season: SeasonSpring, level: TierC,
		},
		{
			name:  "lower case",
			chunk: "spring 2024 rec league\n",
			label: "spring 2024 rec league", year: 2024, season: SeasonSpring, level: TierRec,
		},
		{
			name:  "tier outside the header",
			chunk: "Fall 2021\nStandings\n\nMVIA CC League results\n",
			label: "Fall 2021", year: 2021, season: SeasonFall, level: TierC,
		},
		{
			name:  "whitespace collapsed in label",
			chunk: "Spring\t2020\t\tRec League\n",
			label: "Spring 2020 Rec League", year: 2020, season: SeasonSpring, level: TierRec,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractMetadata(tt.chunk, nil)
			require.True(t, got.Matched)
			assert.Equal(t, tt.label, got.Label)
			require.NotNil(t, got.Metadata.Year)
			assert.Equal(t, tt.year, *got.Metadata.Year)
			require.NotNil(t, got.Metadata.Season)
			assert.Equal(t, tt.season, *got.Metadata.Season)
			require.NotNil(t, got.Metadata.Level)
			assert.Equal(t, tt.level, *got.Metadata.Level)
		})
	}
}

func TestExtractMetadata_NoTier(t *testing.T) {
	got := ExtractMetadata("Spring 2021\nStandings\n", nil)
	require.True(t, got.Matched)
	assert.Equal(t, "Spring 2021", got.Label)
	assert.Nil(t, got.Metadata.Level)
}

func TestExtractMetadata_Unknown(t *testing.T) {
	for _, chunk := range []string{"", "Player Stats\n1 A 1 1 1 1 1 1\n", "Winter 2023 C League", "Fall 1999 C League"} {
		got := ExtractMetadata(chunk, nil)
		assert.False(t, got.Matched, chunk)
		assert.Equal(t, UnknownSeason, got.Label)
		assert.Equal(t, Metadata{}, got.Metadata)
	}
}

func TestExtractMetadata_CustomKeywords(t *testing.T) {
	keywords := []TierKeyword{
		{Keyword: "Premier Division", Tier: TierC},
		{Keyword: "Social Division", Tier: TierRec},
	}

	got := ExtractMetadata("Fall 2023 Social Division\n", keywords)
	require.True(t, got.Matched)
	assert.Equal(t, "Fall 2023", got.Label)
	require.NotNil(t, got.Metadata.Level)
	assert.Equal(t, TierRec, *got.Metadata.Level)

	// Default phrases are not known to a custom table.
	got = ExtractMetadata("Fall 2023 C League\n", keywords)
	assert.Nil(t, got.Metadata.Level)
}

func TestTierMatcher_LongestAtSamePosition(t *testing.T) {
	m := newTierMatcher([]TierKeyword{
		{Keyword: "C League", Tier: TierC},
		{Keyword: "C League Reserve", Tier: TierRec},
	})
	tier, ok := m.find("Fall 2023 C League Reserve")
	require.True(t, ok)
	assert.Equal(t, TierRec, tier)
}
