package parser

import (
	"fmt"
	"iter"
	"regexp"
	"strings"
)

// Strategy selects how a report is split into season chunks.
type Strategy string

const (
	// StrategyURL splits on lines holding nothing but a hyperlink.
	StrategyURL Strategy = "url"
	// StrategyHeader splits at the paragraph holding each season header.
	StrategyHeader Strategy = "header"
)

// ParseStrategy validates a strategy name.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(s))) {
	case StrategyURL, "":
		return StrategyURL, nil
	case StrategyHeader:
		return StrategyHeader, nil
	}
	return "", fmt.Errorf("unknown segment strategy %q (want url or header)", s)
}

var urlLinePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9+.-]*://\S+$`)

type segmenter struct {
	strategy Strategy
	header   *regexp.Regexp
}

func newSegmenter(strategy Strategy, tiers *tierMatcher) *segmenter {
	return &segmenter{
		strategy: strategy,
		header: regexp.MustCompile(`(?i)^\s*(?:` + seasonAlternation + `)\s+20\d{2}(?:/\d{2})?\s+(?:` +
			tiers.alternation + `)`),
	}
}

func (s *segmenter) chunks(text string) iter.Seq[string] {
	if s.strategy == StrategyHeader {
		return s.byHeader(text)
	}
	return s.byURL(text)
}

func (s *segmenter) byURL(text string) iter.Seq[string] {
	return func(yield func(string) bool) {
		var b strings.Builder
		flush := func() bool {
			chunk := b.String()
			b.Reset()
			if strings.TrimSpace(chunk) == "" {
				return true
			}
			return yield(chunk)
		}

		for _, line := range strings.Split(text, "\n") {
			if urlLinePattern.MatchString(strings.TrimSpace(line)) {
				if !flush() {
					return
				}
				continue
			}
			b.WriteString(line)
			b.WriteByte('\n')
		}
		flush()
	}
}

func (s *segmenter) byHeader(text string) iter.Seq[string] {
	return func(yield func(string) bool) {
		lines := strings.Split(text, "\n")

		// Each chunk starts at the first line of its header's paragraph. When
		// that paragraph also holds the previous header, it starts at the
		// header line itself.
		var starts []int
		prev := -1
		for i, line := range lines {
			if !s.header.MatchString(line) {
				continue
			}
			start := i
			for start > 0 && strings.TrimSpace(lines[start-1]) != "" {
				start--
			}
			if start <= prev {
				start = i
			}
			starts = append(starts, start)
			prev = i
		}

		if len(starts) == 0 || starts[0] > 0 {
			starts = append([]int{0}, starts...)
		}

		for n, start := range starts {
			end := len(lines)
			if n+1 < len(starts) {
				end = starts[n+1]
			}
			chunk := strings.Join(lines[start:end], "\n")
			if strings.TrimSpace(chunk) == "" {
				continue
			}
			if !yield(chunk) {
				return
			}
		}
	}
}

// Chunks lazily segments text into season chunks. keywords feeds the header
// strategy; nil selects DefaultTierKeywords.
func Chunks(text string, strategy Strategy, keywords []TierKeyword) iter.Seq[string] {
	return newSegmenter(strategy, newTierMatcher(keywords)).chunks(normalizeNewlines(text))
}

// Segment collects Chunks into a slice.
func Segment(text string, strategy Strategy, keywords []TierKeyword) []string {
	var out []string
	for chunk := range Chunks(text, strategy, keywords) {
		out = append(out, chunk)
	}
	return out
}
