package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fortuna/rinkstats/internal/cache"
	"github.com/fortuna/rinkstats/internal/config"
	"github.com/fortuna/rinkstats/internal/export"
	"github.com/fortuna/rinkstats/internal/ingest"
	"github.com/fortuna/rinkstats/internal/ingest/browser"
	"github.com/fortuna/rinkstats/internal/parser"
	"github.com/fortuna/rinkstats/internal/publisher"
	"github.com/fortuna/rinkstats/internal/store"
	"github.com/fortuna/rinkstats/internal/store/repository"
)

const (
	appName    = "rinkstats"
	appVersion = "1.0.0"
)

// defaultPairs are the league's two historical exports.
var defaultPairs = []pair{
	{in: "historical-stats-c.txt", out: "hockey_stats_c.json"},
	{in: "historical-stats-rec.txt", out: "hockey_stats_rec.json"},
}

type pair struct {
	in  string
	out string
}

func main() {
	log.Printf("=== %s v%s ===", appName, appVersion)

	defaults := config.DefaultConfig()
	var (
		dsn         = flag.String("dsn", "", "PostgreSQL DSN; store parsed seasons when set")
		redisURL    = flag.String("redis", "", "Redis URL; cache results and publish season events when set")
		strategy    = flag.String("strategy", getEnv("PARSE_STRATEGY", string(parser.StrategyURL)), "Segmentation strategy (url or header)")
		workers     = flag.Int("workers", defaults.Workers, "Chunks parsed concurrently")
		tiers       = flag.String("tiers", os.Getenv("TIER_KEYWORDS"), "Tier keywords, e.g. \"C League=C,Rec League=Rec\"")
		terminators = flag.String("terminators", strings.Join(defaults.StandingsTerminators, ","), "Words that end a standings table (empty disables)")
		ascii       = flag.Bool("ascii", true, "Escape non-ASCII characters in the JSON output")
		flushCache  = flag.Bool("flush-cache", false, "Drop cached parse results first (needs -redis)")
		verbose     = flag.Bool("v", false, "Log every chunk and dropped line")
	)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] [input[:output.json] ...]\n\n", appName)
		fmt.Fprintf(flag.CommandLine.Output(), "With no inputs, converts %s and %s.\n\n", defaultPairs[0].in, defaultPairs[1].in)
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg := defaults
	s, err := parser.ParseStrategy(*strategy)
	if err != nil {
		log.Fatalf("invalid -strategy: %v", err)
	}
	cfg.Strategy = s
	cfg.Workers = *workers
	if *tiers != "" {
		if cfg.TierKeywords, err = config.ParseTierKeywords(*tiers); err != nil {
			log.Fatalf("invalid -tiers: %v", err)
		}
	}
	cfg.StandingsTerminators = config.TerminatorList(*terminators)
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	pairs, err := parsePairs(flag.Args())
	if err != nil {
		log.Fatalf("%v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		results *cache.ResultCache
		saver   ingest.SeasonSaver
		pub     publisher.Publisher
	)

	if *dsn != "" {
		db, err := store.NewDatabase(ctx, *dsn)
		if err != nil {
			log.Fatalf("connect database: %v", err)
		}
		defer db.Close()
		if err := db.RunMigrations(ctx); err != nil {
			log.Fatalf("run migrations: %v", err)
		}
		saver = repository.NewSeasonRepository(db)
		log.Println("✓ Connected to database")
	}

	if *redisURL != "" {
		rc, err := cache.NewRedisCache(ctx, *redisURL)
		if err != nil {
			log.Fatalf("connect redis: %v", err)
		}
		defer rc.Close()
		if *flushCache {
			n, err := rc.DeletePrefix(ctx, cache.KeyPrefix)
			if err != nil {
				log.Fatalf("flush cache: %v", err)
			}
			log.Printf("✓ Dropped %d cached results", n)
		}
		results = cache.NewResultCache(rc, defaults.CacheTTL)
		pub = publisher.NewRedisStreamPublisher(rc.Client())
		log.Println("✓ Connected to Redis")
	}

	if *flushCache && *redisURL == "" {
		log.Printf("⚠️  -flush-cache ignored without -redis")
	}

	var fetcher ingest.Fetcher
	if needsBrowser(pairs) {
		client, err := browser.NewClient()
		if err != nil {
			log.Fatalf("start browser: %v", err)
		}
		defer client.Close()
		fetcher = client
	}

	ingester := ingest.NewIngester(results, saver, pub, log.New(log.Writer(), "[ingest] ", log.LstdFlags))
	opts := cfg.ParserOptions()
	opts.Observer = parser.NewLogObserver(nil, *verbose)

	for _, p := range pairs {
		start := time.Now()
		seasons, err := ingester.Ingest(ctx, ingest.SourceFor(p.in, fetcher), opts)
		if err != nil {
			log.Fatalf("%v", err)
		}
		if err := export.WriteFile(p.out, seasons, export.Options{ASCII: *ascii}); err != nil {
			log.Fatalf("%v", err)
		}
		log.Printf("Processed %d seasons in %v", len(seasons), time.Since(start).Round(time.Millisecond))
		log.Printf("✓ Data saved to %s", p.out)
	}
}

// parsePairs reads "input[:output.json]" arguments. The output defaults to
// the input's base name with a .json extension; URL inputs need an explicit
// output.
func parsePairs(args []string) ([]pair, error) {
	if len(args) == 0 {
		return defaultPairs, nil
	}

	pairs := make([]pair, 0, len(args))
	for _, arg := range args {
		p := pair{in: arg}
		if i := strings.LastIndex(arg, ":"); i >= 0 && strings.HasSuffix(strings.ToLower(arg[i+1:]), ".json") {
			p.in, p.out = arg[:i], arg[i+1:]
		}
		if p.in == "" {
			return nil, fmt.Errorf("empty input in %q", arg)
		}
		if p.out == "" {
			if isURL(p.in) {
				return nil, fmt.Errorf("URL input %q needs an output, e.g. %s:seasons.json", p.in, p.in)
			}
			p.out = defaultOutput(p.in)
		}
		pairs = append(pairs, p)
	}
	return pairs, nil
}

func defaultOutput(in string) string {
	for _, p := range defaultPairs {
		if filepath.Base(in) == p.in {
			return filepath.Join(filepath.Dir(in), p.out)
		}
	}
	return strings.TrimSuffix(in, filepath.Ext(in)) + ".json"
}

func needsBrowser(pairs []pair) bool {
	for _, p := range pairs {
		if isURL(p.in) {
			return true
		}
	}
	return false
}

func isURL(s string) bool {
	_, ok := ingest.SourceFor(s, nil).(ingest.URLSource)
	return ok
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
