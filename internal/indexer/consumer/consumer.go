// Package consumer reads document events from Kafka and indexes them into
// the configured term-statistics store.
package consumer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Adithya-Monish-Kumar-K/cosine-scorer/internal/ingestion"
	"github.com/Adithya-Monish-Kumar-K/cosine-scorer/internal/stats"
	"github.com/Adithya-Monish-Kumar-K/cosine-scorer/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/cosine-scorer/pkg/metrics"
)

// IndexConsumer wraps a Kafka consumer to drive the indexing pipeline.
type IndexConsumer struct {
	consumer *kafka.Consumer
	logger   *slog.Logger
}

// New creates an IndexConsumer backed by the given Kafka consumer.
func New(kafkaConsumer *kafka.Consumer) *IndexConsumer {
	return &IndexConsumer{
		consumer: kafkaConsumer,
		logger:   slog.Default().With("component", "index-consumer"),
	}
}

// Start begins consuming Kafka messages. It blocks until ctx is cancelled.
func (ic *IndexConsumer) Start(ctx context.Context) error {
	ic.logger.Info("index consumer starting")
	return ic.consumer.Start(ctx)
}

// HandleMessage returns a Kafka MessageHandler that indexes every document
// event into idx. Undecodable or invalid events are logged and skipped so
// they do not block the partition; indexing failures are returned and the
// message stays uncommitted. m may be nil.
func HandleMessage(idx stats.Indexer, m *metrics.Metrics) kafka.MessageHandler {
	logger := slog.Default().With("component", "index-consumer")
	record := func(status string) {
		if m != nil {
			m.DocsIndexedTotal.WithLabelValues("kafka", status).Inc()
		}
	}
	return func(ctx context.Context, key []byte, value []byte) error {
		event, err := kafka.DecodeJSON[ingestion.DocumentEvent](value)
		if err != nil {
			logger.Error("failed to decode document event",
				"error", err,
				"key", string(key),
			)
			record("skipped")
			return nil
		}
		if err := event.Validate(); err != nil {
			logger.Warn("dropping invalid document event",
				"error", err,
				"key", string(key),
			)
			record("skipped")
			return nil
		}
		if err := idx.IndexDocument(ctx, event.DocumentID, event.Fields); err != nil {
			record("failed")
			return fmt.Errorf("indexing document %s: %w", event.DocumentID, err)
		}
		record("indexed")
		logger.Debug("document indexed",
			"doc_id", event.DocumentID,
			"fields", len(event.Fields),
		)
		return nil
	}
}
