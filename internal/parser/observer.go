package parser

import (
	"log"
)

// DropReason says why a chunk produced no season.
type DropReason string

const (
	// DropUnknownSeason: no header pattern matched the chunk.
	DropUnknownSeason DropReason = "unknown_season"
	// DropEmptySeason: the header matched but every table came back empty.
	DropEmptySeason DropReason = "empty_season"
)

// Observer receives pipeline events. Calls are made serially in chunk order,
// even when chunks are parsed concurrently.
type Observer interface {
	OnChunkSegmented(index int, chunk string)
	OnSeasonDropped(index int, label string, reason DropReason)
	OnRowRejected(label string, rejection Rejection)
	OnSeasonAssembled(index int, record *SeasonRecord, replaced bool)
}

// NopObserver ignores every event.
type NopObserver struct{}

func (NopObserver) OnChunkSegmented(int, string) {}
func (NopObserver) OnSeasonDropped(int, string, DropReason) {}
func (NopObserver) OnRowRejected(string, Rejection) {}
func (NopObserver) OnSeasonAssembled(int, *SeasonRecord, bool) {}

// LogObserver writes events to a logger. Per-chunk and per-row events are
// only written when Verbose is set.
type LogObserver struct {
	logger  *log.Logger
	Verbose bool
}

// NewLogObserver creates a LogObserver; a nil logger gets a "[parser] " default.
func NewLogObserver(logger *log.Logger, verbose bool) *LogObserver {
	if logger == nil {
		logger = log.New(log.Writer(), "[parser] ", log.LstdFlags)
	}
	return &LogObserver{logger: logger, Verbose: verbose}
}

func (o *LogObserver) OnChunkSegmented(index int, chunk string) {
	if o.Verbose {
		o.logger.Printf("chunk %d: %d bytes", index, len(chunk))
	}
}

func (o *LogObserver) OnSeasonDropped(index int, label string, reason DropReason) {
	o.logger.Printf("Skipping chunk %d (%s): %s", index, label, reason)
}

func (o *LogObserver) OnRowRejected(label string, r Rejection) {
	if o.Verbose {
		o.logger.Printf("%s: dropped %s line (%s): %q", label, r.Section, r.Reason, r.Line)
	}
}

func (o *LogObserver) OnSeasonAssembled(index int, rec *SeasonRecord, replaced bool) {
	if replaced {
		o.logger.Printf("⚠️  chunk %d replaces earlier season %q", index, rec.Label)
	}
	o.logger.Printf("✓ %s: %d standings, %d players, %d goalies",
		rec.Label, len(rec.Standings), len(rec.Players), len(rec.Goalies))
}
