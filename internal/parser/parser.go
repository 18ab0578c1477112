// Package parser turns copy-pasted league report text into season records.
//
// A report is segmented into per-season chunks, each chunk's header yields a
// label and metadata, and the standings, player stats and goalie stats tables
// are located and parsed positionally. Malformed lines, empty seasons and
// chunks without a recognizable header are dropped rather than reported as
// errors.
package parser

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"
)

// Options configures a Parser. The zero value is usable; see DefaultOptions.
type Options struct {
	Strategy     Strategy
	TierKeywords []TierKeyword
	// StandingsTerminators nil selects DefaultStandingsTerminators; an empty
	// non-nil slice ends standings only at a blank line or the chunk end.
	StandingsTerminators []string
	// Workers > 1 parses chunks concurrently. Results are identical to a
	// sequential run.
	Workers  int
	Observer Observer
}

// DefaultOptions returns URL segmentation, the default tier keywords and
// terminators, and sequential parsing.
func DefaultOptions() Options {
	return Options{
		Strategy:             StrategyURL,
		TierKeywords:         DefaultTierKeywords(),
		StandingsTerminators: DefaultStandingsTerminators(),
		Workers:              1,
		Observer:             NopObserver{},
	}
}

// Parser holds compiled patterns for one set of Options. It is safe for
// concurrent use.
type Parser struct {
	opts      Options
	segmenter *segmenter
	metadata  *metadataExtractor
	standings locator
}

// New compiles a Parser.
func New(opts Options) *Parser {
	if opts.Strategy == "" {
		opts.Strategy = StrategyURL
	}
	if len(opts.TierKeywords) == 0 {
		opts.TierKeywords = DefaultTierKeywords()
	}
	if opts.StandingsTerminators == nil {
		opts.StandingsTerminators = DefaultStandingsTerminators()
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.Observer == nil {
		opts.Observer = NopObserver{}
	}

	tiers := newTierMatcher(opts.TierKeywords)
	return &Parser{
		opts:      opts,
		segmenter: newSegmenter(opts.Strategy, tiers),
		metadata:  newMetadataExtractor(tiers),
		standings: newStandingsLocator(opts.StandingsTerminators),
	}
}

// Options returns the effective options.
func (p *Parser) Options() Options {
	return p.opts
}

// Fingerprint identifies the options that influence parse output. Workers
// and Observer are excluded since they never change the result.
func (p *Parser) Fingerprint() string {
	var b strings.Builder
	fmt.Fprintf(&b, "strategy=%s;tiers=", p.opts.Strategy)
	for _, kw := range p.opts.TierKeywords {
		fmt.Fprintf(&b, "%s:%s,", kw.Keyword, kw.Tier)
	}
	b.WriteString(";terminators=")
	b.WriteString(strings.Join(p.opts.StandingsTerminators, ","))
	return b.String()
}

// ChunkResult is the outcome of parsing one chunk. Record is nil when the
// chunk was dropped.
type ChunkResult struct {
	Label      string
	Record     *SeasonRecord
	Dropped    DropReason
	Rejections []Rejection
}

// ParseChunk extracts one season from a chunk.
func (p *Parser) ParseChunk(chunk string) ChunkResult {
	chunk = normalizeNewlines(chunk)

	meta := p.metadata.extract(chunk)
	if !meta.Matched {
		return ChunkResult{Label: meta.Label, Dropped: DropUnknownSeason}
	}

	rec := &SeasonRecord{
		Label:     meta.Label,
		Year:      meta.Metadata.Year,
		Season:    meta.Metadata.Season,
		Level:     meta.Metadata.Level,
		Standings: []StandingsRow{},
		Players:   []PlayerRow{},
		Goalies:   []GoalieRow{},
	}
	var rejected []Rejection

	if body, ok := p.standings.locate(chunk); ok {
		rows, rej := ParseStandings(body)
		rec.Standings = rows
		rejected = append(rejected, rej...)
	}
	if body, ok := playersLocator.locate(chunk); ok {
		rows, rej := ParsePlayers(body)
		rec.Players = rows
		rejected = append(rejected, rej...)
	}
	if body, ok := goaliesLocator.locate(chunk); ok {
		rows, rej := ParseGoalies(body)
		rec.Goalies = rows
		rejected = append(rejected, rej...)
	}

	result := ChunkResult{Label: meta.Label, Record: rec, Rejections: rejected}
	if rec.Empty() {
		result.Record = nil
		result.Dropped = DropEmptySeason
	}
	return result
}

// Parse runs the whole pipeline over a report.
func (p *Parser) Parse(text string) Seasons {
	seasons, _ := p.ParseContext(context.Background(), text)
	return seasons
}

// ParseContext is Parse with cancellation; the only error it returns is the
// context's.
func (p *Parser) ParseContext(ctx context.Context, text string) (Seasons, error) {
	text = normalizeNewlines(text)
	asm := newAssembler(p.opts.Observer)

	if p.opts.Workers <= 1 {
		index := 0
		for chunk := range p.segmenter.chunks(text) {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			asm.segmented(index, chunk)
			asm.add(index, p.ParseChunk(chunk))
			index++
		}
		return asm.seasons, nil
	}

	var chunks []string
	for chunk := range p.segmenter.chunks(text) {
		chunks = append(chunks, chunk)
	}

	results := make([]ChunkResult, len(chunks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.Workers)
	for i, chunk := range chunks {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = p.ParseChunk(chunk)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Merge in chunk order so last-write-wins does not depend on scheduling.
	for i, chunk := range chunks {
		asm.segmented(i, chunk)
		asm.add(i, results[i])
	}
	return asm.seasons, nil
}

// Parse parses text with DefaultOptions.
func Parse(text string) Seasons {
	return New(DefaultOptions()).Parse(text)
}

type assembler struct {
	observer Observer
	seasons  Seasons
}

func newAssembler(observer Observer) *assembler {
	return &assembler{observer: observer, seasons: Seasons{}}
}

func (a *assembler) segmented(index int, chunk string) {
	a.observer.OnChunkSegmented(index, chunk)
}

func (a *assembler) add(index int, res ChunkResult) {
	for _, r := range res.Rejections {
		a.observer.OnRowRejected(res.Label, r)
	}
	if res.Record == nil {
		a.observer.OnSeasonDropped(index, res.Label, res.Dropped)
		return
	}
	_, replaced := a.seasons[res.Label]
	a.seasons[res.Label] = res.Record
	a.observer.OnSeasonAssembled(index, res.Record, replaced)
}
