package parser

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// UnknownSeason is the label returned when no header pattern matches a chunk.
const UnknownSeason = "Unknown Season"

// seasonAlternation lists Fall/Winter ahead of Fall so the longer name wins.
const seasonAlternation = `Fall/Winter|Fall|Spring|Summer`

var (
	yearPattern   = regexp.MustCompile(`20\d{2}`)
	seasonPattern = regexp.MustCompile(`(?i)` + seasonAlternation)
)

// TierKeyword maps a literal header phrase such as "CC/C League" to a tier.
type TierKeyword struct {
	Keyword string
	Tier    LeagueTier
}

// DefaultTierKeywords covers every tier phrase seen across report exports.
func DefaultTierKeywords() []TierKeyword {
	return []TierKeyword{
		{Keyword: "C League", Tier: TierC},
		{Keyword: "CC/C League", Tier: TierC},
		{Keyword: "C/CC League", Tier: TierC},
		{Keyword: "CC League", Tier: TierC},
		{Keyword: "Rec League", Tier: TierRec},
	}
}

// tierMatcher finds the leftmost tier keyword in a text. At equal positions
// the longest keyword wins.
type tierMatcher struct {
	alternation string
	re          *regexp.Regexp
	tiers       map[string]LeagueTier
}

func newTierMatcher(keywords []TierKeyword) *tierMatcher {
	if len(keywords) == 0 {
		keywords = DefaultTierKeywords()
	}

	sorted := make([]TierKeyword, len(keywords))
	copy(sorted, keywords)
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i].Keyword) > len(sorted[j].Keyword)
	})

	tiers := make(map[string]LeagueTier, len(sorted))
	quoted := make([]string, 0, len(sorted))
	for _, kw := range sorted {
		key := strings.ToLower(Normalize(kw.Keyword))
		if key == "" {
			continue
		}
		if _, dup := tiers[key]; dup {
			continue
		}
		tiers[key] = kw.Tier
		// Keyword spaces match any whitespace run in the source.
		quoted = append(quoted, strings.ReplaceAll(regexp.QuoteMeta(key), " ", `\s+`))
	}

	if len(quoted) == 0 {
		return newTierMatcher(nil)
	}

	alternation := strings.Join(quoted, "|")
	return &tierMatcher{
		alternation: alternation,
		re:          regexp.MustCompile(`(?i)(?:` + alternation + `)`),
		tiers:       tiers,
	}
}

func (m *tierMatcher) find(text string) (LeagueTier, bool) {
	found := m.re.FindString(text)
	if found == "" {
		return "", false
	}
	tier, ok := m.tiers[strings.ToLower(Normalize(found))]
	return tier, ok
}

// MetadataMatch is the outcome of header extraction. When Matched is false
// the label is UnknownSeason and Metadata is empty.
type MetadataMatch struct {
	Matched  bool
	Label    string
	Metadata Metadata
}

type headerPattern struct {
	name string
	re   *regexp.Regexp
}

type metadataExtractor struct {
	patterns []headerPattern
	tiers    *tierMatcher
}

func newMetadataExtractor(tiers *tierMatcher) *metadataExtractor {
	season := `(` + seasonAlternation + `)`
	tier := `(` + tiers.alternation + `)`
	return &metadataExtractor{
		tiers: tiers,
		// Ordered from most permissive to most specific; the first hit wins.
		patterns: []headerPattern{
			{name: "line-start", re: regexp.MustCompile(`(?im)^` + season + `\s+(20\d{2})\s*(?:.*?League)?`)},
			{name: "season-year-tier", re: regexp.MustCompile(`(?i)` + season + `\s+(20\d{2})\s+` + tier)},
			{name: "season-year-loose", re: regexp.MustCompile(`(?i)` + season + `.+?(20\d{2})(?:/\d{2})?.*` + tier)},
			{name: "year-season", re: regexp.MustCompile(`(?i)(20\d{2}).+` + season + `.*` + tier)},
		},
	}
}

func (e *metadataExtractor) extract(chunk string) MetadataMatch {
	for _, p := range e.patterns {
		found := p.re.FindString(chunk)
		if found == "" {
			continue
		}
		label := Normalize(found)
		return MetadataMatch{
			Matched:  true,
			Label:    label,
			Metadata: e.metadata(label, chunk),
		}
	}
	return MetadataMatch{Label: UnknownSeason}
}

// metadata reads year and season from the matched header, and the tier from
// the whole chunk since some headers omit it.
func (e *metadataExtractor) metadata(label, chunk string) Metadata {
	var md Metadata

	if y := yearPattern.FindString(label); y != "" {
		if year, err := strconv.Atoi(y); err == nil {
			md.Year = &year
		}
	}

	if s := seasonPattern.FindString(label); s != "" {
		if season, ok := ParseSeasonName(s); ok {
			md.Season = &season
		}
	}

	if tier, ok := e.tiers.find(chunk); ok {
		md.Level = &tier
	}

	return md
}

// ExtractMetadata derives the season label and metadata from a chunk using
// the given tier keywords (nil selects DefaultTierKeywords).
func ExtractMetadata(chunk string, keywords []TierKeyword) MetadataMatch {
	return newMetadataExtractor(newTierMatcher(keywords)).extract(normalizeNewlines(chunk))
}
