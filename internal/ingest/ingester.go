package ingest

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/fortuna/rinkstats/internal/cache"
	"github.com/fortuna/rinkstats/internal/parser"
	"github.com/fortuna/rinkstats/internal/publisher"
)

// SeasonSaver persists parsed seasons. repository.SeasonRepository
// implements it.
type SeasonSaver interface {
	SaveAll(ctx context.Context, seasons parser.Seasons) error
}

// Ingester runs read, parse, cache, persist and publish for one source. The
// cache, saver and publisher are optional.
type Ingester struct {
	results   *cache.ResultCache
	saver     SeasonSaver
	publisher publisher.Publisher
	logger    *log.Logger
	now       func() time.Time
}

// NewIngester creates an Ingester. A nil logger gets an "[ingest] " default.
func NewIngester(results *cache.ResultCache, saver SeasonSaver, pub publisher.Publisher, logger *log.Logger) *Ingester {
	if logger == nil {
		logger = log.New(log.Writer(), "[ingest] ", log.LstdFlags)
	}
	return &Ingester{
		results:   results,
		saver:     saver,
		publisher: pub,
		logger:    logger,
		now:       time.Now,
	}
}

// Ingest reads src and parses it with opts. Only an unreadable source or a
// cancelled context fail the call; cache, store and publish problems are
// logged and the seasons are still returned. A cache hit means the same
// input was already ingested, so nothing is stored or published again.
func (i *Ingester) Ingest(ctx context.Context, src Source, opts parser.Options) (parser.Seasons, error) {
	text, err := src.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", src.Name(), err)
	}

	if opts.Observer == nil {
		opts.Observer = parser.NewLogObserver(i.logger, false)
	}
	p := parser.New(opts)
	fingerprint := p.Fingerprint()

	if i.results != nil {
		cached, ok, err := i.results.Get(ctx, fingerprint, text)
		if err != nil {
			i.logger.Printf("⚠️  cache lookup for %s failed: %v", src.Name(), err)
		} else if ok {
			i.logger.Printf("✓ %s: %d seasons (cached)", src.Name(), len(cached))
			return cached, nil
		}
	}

	seasons, err := p.ParseContext(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", src.Name(), err)
	}

	if i.results != nil {
		if err := i.results.Put(ctx, fingerprint, text, seasons); err != nil {
			i.logger.Printf("⚠️  caching %s failed: %v", src.Name(), err)
		}
	}

	if i.saver != nil {
		if err := i.saver.SaveAll(ctx, seasons); err != nil {
			i.logger.Printf("⚠️  storing seasons from %s failed: %v", src.Name(), err)
		}
	}

	if i.publisher != nil {
		at := i.now()
		for _, label := range seasons.Labels() {
			event := publisher.NewSeasonEvent(src.Name(), seasons[label], at)
			if err := i.publisher.PublishSeasonParsed(ctx, event); err != nil {
				i.logger.Printf("⚠️  publishing %q failed: %v", label, err)
			}
		}
	}

	i.logger.Printf("✓ %s: %d seasons", src.Name(), len(seasons))
	return seasons, nil
}
