// Package stats defines the term-statistics providers the scorer reads from
// and the adapter that binds a provider to the document being scored.
package stats

import (
	"context"

	"github.com/Adithya-Monish-Kumar-K/cosine-scorer/internal/scoring/cosine"
)

// Source resolves term statistics for any document in the corpus.
type Source interface {
	TermStats(ctx context.Context, field, term, docID string) (cosine.TermStats, error)
}

// CandidateSource lists documents whose field contains at least one of the
// given terms.
type CandidateSource interface {
	Candidates(ctx context.Context, field string, terms []string) ([]string, error)
}

// Indexer stores a document's analyzed fields.
type Indexer interface {
	IndexDocument(ctx context.Context, docID string, fields map[string]string) error
}

// Deleter removes a document and reports whether it existed.
type Deleter interface {
	DeleteDocument(ctx context.Context, docID string) (bool, error)
}

// Store is a full backend: indexing, candidate retrieval and statistics.
type Store interface {
	Source
	CandidateSource
	Indexer
	Deleter
}

// ForDocument binds src to docID so the scorer can look terms up without
// knowing which document it is scoring.
func ForDocument(ctx context.Context, src Source, docID string) cosine.StatsLookup {
	return cosine.StatsLookupFunc(func(field, term string) (cosine.TermStats, error) {
		return src.TermStats(ctx, field, term, docID)
	})
}
