package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/Adithya-Monish-Kumar-K/cosine-scorer/internal/indexer/consumer"
	"github.com/Adithya-Monish-Kumar-K/cosine-scorer/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/cosine-scorer/internal/searcher/handler"
	"github.com/Adithya-Monish-Kumar-K/cosine-scorer/internal/stats"
	"github.com/Adithya-Monish-Kumar-K/cosine-scorer/internal/stats/cache"
	"github.com/Adithya-Monish-Kumar-K/cosine-scorer/internal/stats/pgstats"
	"github.com/Adithya-Monish-Kumar-K/cosine-scorer/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/cosine-scorer/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/cosine-scorer/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/cosine-scorer/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/cosine-scorer/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/cosine-scorer/pkg/middleware"
	"github.com/Adithya-Monish-Kumar-K/cosine-scorer/pkg/postgres"
	pkgredis "github.com/Adithya-Monish-Kumar-K/cosine-scorer/pkg/redis"
	"golang.org/x/sync/errgroup"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting scoring service",
		"port", cfg.Server.Port,
		"stats_backend", cfg.Scoring.StatsBackend,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	checker := health.NewChecker()
	m := metrics.New()

	var store stats.Store
	switch cfg.Scoring.StatsBackend {
	case config.BackendPostgres:
		db, err := postgres.New(cfg.Postgres)
		if err != nil {
			slog.Error("failed to connect to postgres", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		pg := pgstats.New(db)
		if err := pg.Migrate(ctx); err != nil {
			slog.Error("failed to migrate term statistics schema", "error", err)
			os.Exit(1)
		}
		checker.RegisterPing("postgres", true, db.Ping)
		store = pg
	default:
		mem := index.NewMemoryIndex()
		checker.Register("memory_index", func(ctx context.Context) health.ComponentHealth {
			return health.ComponentHealth{
				Status:  health.StatusUp,
				Message: fmt.Sprintf("%d documents, %d fields, %d bytes",
					mem.TotalDocs(), len(mem.Fields()), mem.Size()),
			}
		})
		store = mem
	}

	var statsCache *cache.StatsCache
	if cfg.Scoring.CacheEnabled {
		redisClient, err := pkgredis.NewClient(cfg.Redis)
		if err != nil {
			slog.Warn("redis unavailable, term statistics caching disabled", "error", err)
		} else {
			defer redisClient.Close()
			statsCache = cache.New(store, redisClient, cfg.Redis.CacheTTL, m)
			checker.RegisterPing("redis", false, redisClient.Ping)
			slog.Info("term statistics cache enabled",
				"addr", cfg.Redis.Addr,
				"ttl", cfg.Redis.CacheTTL,
			)
		}
	}

	if cfg.Metrics.Enabled {
		shutdownMetrics := metrics.StartServer(cfg.Metrics.Port)
		defer func() {
			if err := shutdownMetrics(context.Background()); err != nil {
				slog.Error("metrics server shutdown error", "error", err)
			}
		}()
	}

	h := handler.New(store, statsCache, m, cfg.Scoring)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/score", h.Score)
	mux.HandleFunc("POST /api/v1/score/explain", h.Explain)
	mux.HandleFunc("POST /api/v1/documents", h.IndexDocument)
	mux.HandleFunc("DELETE /api/v1/documents/{id}", h.DeleteDocument)
	mux.HandleFunc("GET /api/v1/cache/stats", h.CacheStats)
	mux.HandleFunc("POST /api/v1/cache/invalidate", h.CacheInvalidate)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())
	mux.Handle("GET /metrics", metrics.Handler())

	var chain http.Handler = mux
	chain = middleware.Timeout(cfg.Server.WriteTimeout)(chain)
	chain = middleware.Metrics(m)(chain)
	chain = middleware.RequestID(chain)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      chain,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	if cfg.Kafka.Enabled {
		kafkaConsumer := kafka.NewConsumer(
			cfg.Kafka,
			cfg.Kafka.Topics.DocumentIngest,
			consumer.HandleMessage(store, m),
		)
		indexConsumer := consumer.New(kafkaConsumer)
		slog.Info("consuming document events",
			"topic", cfg.Kafka.Topics.DocumentIngest,
			"group", cfg.Kafka.ConsumerGroup,
		)
		g.Go(func() error {
			return indexConsumer.Start(gctx)
		})
	}

	g.Go(func() error {
		slog.Info("scoring service listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		slog.Error("scoring service error", "error", err)
		os.Exit(1)
	}

	slog.Info("scoring service stopped")
}
