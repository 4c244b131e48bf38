package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/cosine-scorer/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/cosine-scorer/internal/ingestion"
)

const maxLineBytes = 4 << 20

// readCorpus reads one DocumentEvent per line. Blank lines are skipped.
func readCorpus(path string) ([]ingestion.DocumentEvent, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening corpus: %w", err)
	}
	defer f.Close()

	var events []ingestion.DocumentEvent
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)
	line := 0
	for scanner.Scan() {
		line++
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" {
			continue
		}
		var event ingestion.DocumentEvent
		if err := json.Unmarshal([]byte(raw), &event); err != nil {
			return nil, fmt.Errorf("%s:%d: %w", path, line, err)
		}
		if err := event.Validate(); err != nil {
			return nil, fmt.Errorf("%s:%d: %w", path, line, err)
		}
		events = append(events, event)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading corpus: %w", err)
	}
	return events, nil
}

// loadCorpus indexes the corpus file into a fresh memory index.
func loadCorpus(ctx context.Context, path string) (*index.MemoryIndex, error) {
	events, err := readCorpus(path)
	if err != nil {
		return nil, err
	}
	idx := index.NewMemoryIndex()
	for _, event := range events {
		if err := idx.IndexDocument(ctx, event.DocumentID, event.Fields); err != nil {
			return nil, fmt.Errorf("indexing %s: %w", event.DocumentID, err)
		}
	}
	return idx, nil
}
