package publisher

import (
	"context"
	"errors"
	"time"

	"github.com/fortuna/rinkstats/internal/parser"
)

// EventSeasonParsed is the type of every event emitted after an ingest.
const EventSeasonParsed = "season.parsed"

// SeasonEvent announces one season produced by an ingest run
type SeasonEvent struct {
	Type     string             `json:"type"`
	Source   string             `json:"source"`
	Label    string             `json:"label"`
	Year     *int               `json:"year"`
	Season   *parser.SeasonName `json:"season"`
	Level    *parser.LeagueTier `json:"level"`
	Teams    int                `json:"teams"`
	Players  int                `json:"players"`
	Goalies  int                `json:"goalies"`
	ParsedAt time.Time          `json:"parsed_at"`
}

// NewSeasonEvent summarizes a record for publishing
func NewSeasonEvent(source string, rec *parser.SeasonRecord, at time.Time) SeasonEvent {
	return SeasonEvent{
		Type:     EventSeasonParsed,
		Source:   source,
		Label:    rec.Label,
		Year:     rec.Year,
		Season:   rec.Season,
		Level:    rec.Level,
		Teams:    len(rec.Standings),
		Players:  len(rec.Players),
		Goalies:  len(rec.Goalies),
		ParsedAt: at,
	}
}

// Publisher delivers season events
type Publisher interface {
	PublishSeasonParsed(ctx context.Context, event SeasonEvent) error
}

// Fanout delivers each event to every publisher, collecting all failures
type Fanout []Publisher

// PublishSeasonParsed implements Publisher
func (f Fanout) PublishSeasonParsed(ctx context.Context, event SeasonEvent) error {
	var errs []error
	for _, p := range f {
		if p == nil {
			continue
		}
		if err := p.PublishSeasonParsed(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
