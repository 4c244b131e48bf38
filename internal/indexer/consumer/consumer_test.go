package consumer

import (
	"context"
	"errors"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/cosine-scorer/internal/indexer/index"
)

type failingIndexer struct{}

func (failingIndexer) IndexDocument(context.Context, string, map[string]string) error {
	return errors.New("store offline")
}

func TestHandleMessageIndexes(t *testing.T) {
	idx := index.NewMemoryIndex()
	handle := HandleMessage(idx, nil)
	value := []byte(`{"document_id":"d1","fields":{"body":"cat cat dog"}}`)
	if err := handle(context.Background(), []byte("d1"), value); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	ts, err := idx.TermStats(context.Background(), "body", "cat", "d1")
	if err != nil {
		t.Fatal(err)
	}
	if ts.TermFreq != 2 || ts.DocCount != 1 {
		t.Errorf("TermStats() = %+v", ts)
	}
}

func TestHandleMessageSkipsBadEvents(t *testing.T) {
	idx := index.NewMemoryIndex()
	handle := HandleMessage(idx, nil)
	for _, value := range []string{
		`not json`,
		`{"fields":{"body":"cat"}}`,
		`{"document_id":"d1"}`,
	} {
		if err := handle(context.Background(), nil, []byte(value)); err != nil {
			t.Errorf("handler(%s) error = %v, want nil (skip)", value, err)
		}
	}
	if idx.TotalDocs() != 0 {
		t.Errorf("TotalDocs() = %d, want 0", idx.TotalDocs())
	}
}

func TestHandleMessageReturnsIndexError(t *testing.T) {
	handle := HandleMessage(failingIndexer{}, nil)
	err := handle(context.Background(), nil, []byte(`{"document_id":"d1","fields":{"body":"cat"}}`))
	if err == nil {
		t.Error("handler swallowed index failure")
	}
}
