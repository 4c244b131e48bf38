package main

import (
	"fmt"
	"time"

	"github.com/Adithya-Monish-Kumar-K/cosine-scorer/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/cosine-scorer/pkg/kafka"
	"github.com/spf13/cobra"
)

const ingestBatchSize = 100

func newIngestCommand(root *rootOptions) *cobra.Command {
	var corpus string
	var brokers []string

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Publish a JSONL corpus to the document ingest topic",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(root.configPath)
			if err != nil {
				return err
			}
			if len(brokers) > 0 {
				cfg.Kafka.Brokers = brokers
			}
			events, err := readCorpus(corpus)
			if err != nil {
				return err
			}

			producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.DocumentIngest)
			defer producer.Close()

			now := time.Now().UTC()
			batch := make([]kafka.Event, 0, ingestBatchSize)
			flush := func() error {
				if len(batch) == 0 {
					return nil
				}
				if err := producer.PublishBatch(cmd.Context(), batch); err != nil {
					return err
				}
				batch = batch[:0]
				return nil
			}
			for _, event := range events {
				event.IngestedAt = now
				batch = append(batch, kafka.Event{Key: event.DocumentID, Value: event})
				if len(batch) == ingestBatchSize {
					if err := flush(); err != nil {
						return err
					}
				}
			}
			if err := flush(); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Published %d documents to %s\n",
				len(events), cfg.Kafka.Topics.DocumentIngest)
			return nil
		},
	}

	cmd.Flags().StringVar(&corpus, "corpus", "", "JSONL corpus of documents")
	cmd.Flags().StringSliceVar(&brokers, "brokers", nil, "Kafka brokers (overrides config)")
	_ = cmd.MarkFlagRequired("corpus")
	return cmd
}
