package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Adithya-Monish-Kumar-K/cosine-scorer/internal/indexer/consumer"
	"github.com/Adithya-Monish-Kumar-K/cosine-scorer/internal/stats/pgstats"
	"github.com/Adithya-Monish-Kumar-K/cosine-scorer/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/cosine-scorer/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/cosine-scorer/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/cosine-scorer/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/cosine-scorer/pkg/postgres"
)

// The indexer writes document events into the shared PostgreSQL term
// statistics tables so any number of scorer replicas can read them.
func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting indexer service", "topic", cfg.Kafka.Topics.DocumentIngest)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.New(cfg.Postgres)
	if err != nil {
		slog.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	store := pgstats.New(db)
	if err := store.Migrate(ctx); err != nil {
		slog.Error("failed to migrate term statistics schema", "error", err)
		os.Exit(1)
	}

	m := metrics.New()
	if cfg.Metrics.Enabled {
		shutdownMetrics := metrics.StartServer(cfg.Metrics.Port)
		defer func() {
			if err := shutdownMetrics(context.Background()); err != nil {
				slog.Error("metrics server shutdown error", "error", err)
			}
		}()
	}

	kafkaConsumer := kafka.NewConsumer(
		cfg.Kafka,
		cfg.Kafka.Topics.DocumentIngest,
		consumer.HandleMessage(store, m),
	)
	indexConsumer := consumer.New(kafkaConsumer)

	slog.Info("indexer service ready, consuming from kafka",
		"topic", cfg.Kafka.Topics.DocumentIngest,
		"group", cfg.Kafka.ConsumerGroup,
	)

	// A failed event stops the consumer uncommitted; exiting non-zero lets
	// the supervisor restart the worker and the group redeliver it.
	if err := indexConsumer.Start(ctx); err != nil {
		slog.Error("consumer error", "error", err)
		stop()
		db.Close()
		os.Exit(1)
	}

	slog.Info("indexer service stopped")
}
