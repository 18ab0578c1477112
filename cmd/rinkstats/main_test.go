package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePairs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    []pair
		wantErr bool
	}{
		{name: "defaults", args: nil, want: defaultPairs},
		{name: "explicit output", args: []string{"c.txt:out/c.json"}, want: []pair{{"c.txt", "out/c.json"}}},
		{name: "derived output", args: []string{"data/rec.txt"}, want: []pair{{"data/rec.txt", "data/rec.json"}}},
		{name: "historical name", args: []string{"data/historical-stats-c.txt"}, want: []pair{{"data/historical-stats-c.txt", "data/hockey_stats_c.json"}}},
		{name: "saved page", args: []string{"page.html"}, want: []pair{{"page.html", "page.json"}}},
		{
			name: "url with output",
			args: []string{"https://example.org:8443/seasons/2023/fall/c:fall.json"},
			want: []pair{{"https://example.org:8443/seasons/2023/fall/c", "fall.json"}},
		},
		{name: "url without output", args: []string{"https://example.org:8443/seasons"}, wantErr: true},
		{name: "empty input", args: []string{":out.json"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parsePairs(tt.args)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNeedsBrowser(t *testing.T) {
	assert.False(t, needsBrowser(defaultPairs))
	assert.True(t, needsBrowser([]pair{{in: "c.txt"}, {in: "https://example.org"}}))
}
