package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/fortuna/rinkstats/internal/ingest"
	"github.com/fortuna/rinkstats/internal/parser"
)

// Ingestor runs one ingest. ingest.Ingester implements it.
type Ingestor interface {
	Ingest(ctx context.Context, src ingest.Source, opts parser.Options) (parser.Seasons, error)
}

// Orchestrator periodically re-ingests the configured report sources
type Orchestrator struct {
	ingestor Ingestor
	sources  []ingest.Source
	opts     parser.Options
	config   *Config
	logger   *log.Logger
	cancel   context.CancelFunc

	mu      sync.Mutex
	lastRun time.Time
	runs    int
	failed  map[string]error
}

// Config holds scheduler configuration
type Config struct {
	RefreshInterval      time.Duration // Default: 6h
	MaxRetries           int           // Default: 3
	RetryDelay           time.Duration // Default: 5s
	MaxConsecutiveErrors int           // Default: 5
	ErrorBackoff         time.Duration // Default: 1m, extra wait after repeated failures
}

// DefaultConfig returns default scheduler configuration
func DefaultConfig() *Config {
	return &Config{
		RefreshInterval:      6 * time.Hour,
		MaxRetries:           3,
		RetryDelay:           5 * time.Second,
		MaxConsecutiveErrors: 5,
		ErrorBackoff:         time.Minute,
	}
}

// NewOrchestrator creates a new scheduler orchestrator
func NewOrchestrator(ingestor Ingestor, sources []ingest.Source, opts parser.Options, config *Config, logger *log.Logger) (*Orchestrator, error) {
	if ingestor == nil {
		return nil, errors.New("scheduler needs an ingestor")
	}
	if len(sources) == 0 {
		return nil, errors.New("scheduler needs at least one report source")
	}
	if config == nil {
		config = DefaultConfig()
	}
	if config.MaxRetries < 1 {
		config.MaxRetries = 1
	}
	if logger == nil {
		logger = log.New(log.Writer(), "[scheduler] ", log.LstdFlags)
	}

	return &Orchestrator{
		ingestor: ingestor,
		sources:  sources,
		opts:     opts,
		config:   config,
		logger:   logger,
		failed:   map[string]error{},
	}, nil
}

// Start runs the refresh loop and blocks until ctx is cancelled or Stop is
// called
func (o *Orchestrator) Start(ctx context.Context) {
	o.logger.Printf("Refreshing %d report sources every %v", len(o.sources), o.config.RefreshInterval)

	ctx, cancel := context.WithCancel(ctx)
	o.mu.Lock()
	o.cancel = cancel
	o.mu.Unlock()

	ticker := time.NewTicker(o.config.RefreshInterval)
	defer ticker.Stop()

	consecutiveErrors := 0

	// Run immediately on start
	o.refresh(ctx, &consecutiveErrors)

	for {
		select {
		case <-ctx.Done():
			o.logger.Println("→ Refresh loop stopped")
			return
		case <-ticker.C:
			o.refresh(ctx, &consecutiveErrors)
		}
	}
}

func (o *Orchestrator) refresh(ctx context.Context, consecutiveErrors *int) {
	if err := o.RefreshAll(ctx); err == nil {
		*consecutiveErrors = 0
		return
	}
	if ctx.Err() != nil {
		return
	}

	*consecutiveErrors++
	if *consecutiveErrors >= o.config.MaxConsecutiveErrors {
		o.logger.Printf("⚠️  %d refreshes in a row had failures, backing off %v", *consecutiveErrors, o.config.ErrorBackoff)
		select {
		case <-ctx.Done():
		case <-time.After(o.config.ErrorBackoff):
		}
	}
}

// RefreshAll ingests every source once, retrying each. The returned error
// joins the failures of all sources.
func (o *Orchestrator) RefreshAll(ctx context.Context) error {
	start := time.Now()
	var errs []error
	total := 0

	for _, src := range o.sources {
		seasons, err := o.ingestWithRetry(ctx, src)

		o.mu.Lock()
		if err != nil {
			o.failed[src.Name()] = err
		} else {
			delete(o.failed, src.Name())
		}
		o.mu.Unlock()

		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			errs = append(errs, fmt.Errorf("%s: %w", src.Name(), err))
			continue
		}
		total += len(seasons)
	}

	o.mu.Lock()
	o.lastRun = time.Now()
	o.runs++
	o.mu.Unlock()

	if len(errs) > 0 {
		o.logger.Printf("❌ Refresh finished with %d failed sources in %v", len(errs), time.Since(start).Round(time.Millisecond))
		return errors.Join(errs...)
	}
	o.logger.Printf("✓ Refreshed %d seasons from %d sources in %v", total, len(o.sources), time.Since(start).Round(time.Millisecond))
	return nil
}

func (o *Orchestrator) ingestWithRetry(ctx context.Context, src ingest.Source) (parser.Seasons, error) {
	var (
		seasons parser.Seasons
		err     error
	)

	for attempt := 1; attempt <= o.config.MaxRetries; attempt++ {
		seasons, err = o.ingestor.Ingest(ctx, src, o.opts)
		if err == nil {
			return seasons, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		o.logger.Printf("  ⚠️  %s attempt %d/%d failed: %v", src.Name(), attempt, o.config.MaxRetries, err)

		if attempt < o.config.MaxRetries {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(o.config.RetryDelay):
			}
		}
	}
	return nil, err
}

// Stop gracefully stops the scheduler
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	cancel := o.cancel
	o.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	o.logger.Println("✓ Scheduler stopped")
}

// GetStatus returns current scheduler status
func (o *Orchestrator) GetStatus() map[string]interface{} {
	o.mu.Lock()
	defer o.mu.Unlock()

	failing := make([]string, 0, len(o.failed))
	for _, src := range o.sources {
		if _, ok := o.failed[src.Name()]; ok {
			failing = append(failing, src.Name())
		}
	}

	status := map[string]interface{}{
		"sources":          len(o.sources),
		"refresh_interval": o.config.RefreshInterval.String(),
		"runs":             o.runs,
		"failing_sources":  failing,
	}
	if !o.lastRun.IsZero() {
		status["last_run"] = o.lastRun.Format(time.RFC3339)
	}
	return status
}
