package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fortuna/rinkstats/internal/api/rest"
	"github.com/fortuna/rinkstats/internal/api/websocket"
	"github.com/fortuna/rinkstats/internal/cache"
	"github.com/fortuna/rinkstats/internal/config"
	"github.com/fortuna/rinkstats/internal/ingest"
	"github.com/fortuna/rinkstats/internal/ingest/browser"
	"github.com/fortuna/rinkstats/internal/publisher"
	"github.com/fortuna/rinkstats/internal/scheduler"
	"github.com/fortuna/rinkstats/internal/store"
	"github.com/fortuna/rinkstats/internal/store/repository"
)

const (
	serviceName    = "rinkstats"
	serviceVersion = "1.0.0"

	maxRetries = 30
	retryDelay = 2 * time.Second
)

func main() {
	log.Printf("Starting %s v%s - League Stats Service", serviceName, serviceVersion)

	if err := config.LoadEnvFile(".env"); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db := connect("database", func() (*store.Database, error) { return store.NewDatabase(ctx, cfg.DSN) })
	defer db.Close()
	log.Println("✓ Connected to database")

	if err := db.RunMigrations(ctx); err != nil {
		log.Fatalf("Failed to run database migrations: %v", err)
	}
	log.Println("✓ Database migrations applied")

	redisCache := connect("Redis", func() (*cache.RedisCache, error) { return cache.NewRedisCache(ctx, cfg.RedisURL) })
	defer redisCache.Close()
	log.Println("✓ Connected to Redis")

	redisPublisher := connect("Redis publisher", func() (*publisher.RedisPublisher, error) {
		return publisher.NewRedisPublisher(cfg.RedisURL)
	})
	defer redisPublisher.Close()
	log.Println("✓ Redis publisher initialized")

	wsServer := websocket.NewServer()
	seasons := repository.NewSeasonRepository(db)
	ingester := ingest.NewIngester(
		cache.NewResultCache(redisCache, cfg.CacheTTL),
		seasons,
		publisher.Fanout{redisPublisher, wsServer},
		nil,
	)

	var sched *scheduler.Orchestrator
	if cfg.EnableScheduler {
		client, err := browser.NewClient()
		if err != nil {
			log.Fatalf("Failed to start browser: %v", err)
		}
		defer client.Close()

		sources := make([]ingest.Source, len(cfg.ReportSources))
		for i, ref := range cfg.ReportSources {
			sources[i] = ingest.SourceFor(ref, client)
		}

		schedulerConfig := scheduler.DefaultConfig()
		schedulerConfig.RefreshInterval = cfg.RefreshInterval
		sched, err = scheduler.NewOrchestrator(ingester, sources, cfg.ParserOptions(), schedulerConfig, nil)
		if err != nil {
			log.Fatalf("Failed to create scheduler: %v", err)
		}

		go sched.Start(ctx)
		log.Println("✓ Scheduler started")
	}

	handler := rest.NewHandler(seasons, ingester, cfg.ParserOptions(), serviceVersion)
	handler.AddHealthCheck("database", db)
	handler.AddHealthCheck("redis", redisCache)
	restServer := rest.NewServer(cfg.RESTPort, handler)
	go func() {
		log.Printf("Starting REST API server on port %s", cfg.RESTPort)
		if err := restServer.Start(); err != nil {
			log.Printf("REST server error: %v", err)
		}
	}()

	go func() {
		log.Printf("Starting WebSocket server on port %s", cfg.WSPort)
		if err := wsServer.Start(cfg.WSPort); err != nil {
			log.Printf("WebSocket server error: %v", err)
		}
	}()

	log.Printf("✓ %s v%s started successfully", serviceName, serviceVersion)
	log.Printf("  REST API: http://0.0.0.0:%s", cfg.RESTPort)
	log.Printf("  WebSocket: ws://0.0.0.0:%s/ws/seasons", cfg.WSPort)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Println("Shutting down gracefully...")

	cancel()
	if sched != nil {
		sched.Stop()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := restServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("REST API server shutdown error: %v", err)
	}
	if err := wsServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("WebSocket server shutdown error: %v", err)
	}

	log.Printf("%s stopped", serviceName)
}

// connect retries open until it succeeds or maxRetries is reached.
func connect[T any](name string, open func() (T, error)) T {
	log.Printf("Connecting to %s...", name)
	for i := 0; ; i++ {
		conn, err := open()
		if err == nil {
			return conn
		}
		if i == maxRetries-1 {
			log.Fatalf("Failed to connect to %s after %d attempts: %v", name, maxRetries, err)
		}
		log.Printf("%s connection attempt %d/%d failed: %v (retrying in %v)", name, i+1, maxRetries, err, retryDelay)
		time.Sleep(retryDelay)
	}
}
