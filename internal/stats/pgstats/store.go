// Package pgstats keeps field postings in PostgreSQL and answers term
// statistics from them, so several scorer instances can share one corpus.
package pgstats

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sort"

	"github.com/Adithya-Monish-Kumar-K/cosine-scorer/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/cosine-scorer/internal/scoring/cosine"
	"github.com/Adithya-Monish-Kumar-K/cosine-scorer/pkg/postgres"
	"github.com/lib/pq"
)

// Schema creates the postings table. A document belongs to a field's
// statistics scope when it has at least one row for that field.
var Schema = []string{
	`CREATE TABLE IF NOT EXISTS field_postings (
	    field     TEXT    NOT NULL,
	    term      TEXT    NOT NULL,
	    doc_id    TEXT    NOT NULL,
	    frequency INTEGER NOT NULL CHECK (frequency > 0),
	    PRIMARY KEY (field, term, doc_id)
	)`,
	`CREATE INDEX IF NOT EXISTS field_postings_doc_idx ON field_postings (doc_id)`,
	`CREATE INDEX IF NOT EXISTS field_postings_field_doc_idx ON field_postings (field, doc_id)`,
}

const termStatsQuery = `
SELECT
    (SELECT COUNT(*) FROM field_postings WHERE field = $1 AND term = $2),
    COALESCE((SELECT frequency FROM field_postings WHERE field = $1 AND term = $2 AND doc_id = $3), 0),
    (SELECT COUNT(DISTINCT doc_id) FROM field_postings WHERE field = $1)`

const candidatesQuery = `
SELECT DISTINCT doc_id FROM field_postings
WHERE field = $1 AND term = ANY($2)
ORDER BY doc_id`

type Store struct {
	db     *postgres.Client
	logger *slog.Logger
}

func New(db *postgres.Client) *Store {
	return &Store{
		db:     db,
		logger: slog.Default().With("component", "pg-stats"),
	}
}

// Migrate creates the schema if it does not exist.
func (s *Store) Migrate(ctx context.Context) error {
	if err := s.db.Exec(ctx, Schema...); err != nil {
		return fmt.Errorf("migrating field_postings: %w", err)
	}
	return nil
}

// IndexDocument replaces every posting of docID in one transaction.
func (s *Store) IndexDocument(ctx context.Context, docID string, fields map[string]string) error {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	rows := 0
	err := s.db.InTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM field_postings WHERE doc_id = $1`, docID); err != nil {
			return fmt.Errorf("deleting old postings: %w", err)
		}
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO field_postings (field, term, doc_id, frequency) VALUES ($1, $2, $3, $4)`)
		if err != nil {
			return fmt.Errorf("preparing insert: %w", err)
		}
		defer stmt.Close()
		for _, name := range names {
			freqs, _ := tokenizer.Frequencies(fields[name])
			for term, freq := range freqs {
				if _, err := stmt.ExecContext(ctx, name, term, docID, freq); err != nil {
					return fmt.Errorf("inserting posting %s/%s: %w", name, term, err)
				}
				rows++
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("indexing document %s: %w", docID, err)
	}
	s.logger.Debug("document indexed", "doc_id", docID, "postings", rows)
	return nil
}

// DeleteDocument removes all postings of docID and reports whether any
// existed.
func (s *Store) DeleteDocument(ctx context.Context, docID string) (bool, error) {
	res, err := s.db.DB.ExecContext(ctx, `DELETE FROM field_postings WHERE doc_id = $1`, docID)
	if err != nil {
		return false, fmt.Errorf("deleting document %s: %w", docID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("deleting document %s: %w", docID, err)
	}
	return n > 0, nil
}

func (s *Store) TermStats(ctx context.Context, field, term, docID string) (cosine.TermStats, error) {
	var ts cosine.TermStats
	err := s.db.DB.QueryRowContext(ctx, termStatsQuery, field, term, docID).
		Scan(&ts.DocFreq, &ts.TermFreq, &ts.DocCount)
	if err != nil {
		return cosine.TermStats{}, fmt.Errorf("querying term stats: %w", err)
	}
	return ts, nil
}

func (s *Store) Candidates(ctx context.Context, field string, terms []string) ([]string, error) {
	rows, err := s.db.DB.QueryContext(ctx, candidatesQuery, field, pq.Array(terms))
	if err != nil {
		return nil, fmt.Errorf("querying candidates: %w", err)
	}
	defer rows.Close()
	result := make([]string, 0)
	for rows.Next() {
		var docID string
		if err := rows.Scan(&docID); err != nil {
			return nil, fmt.Errorf("scanning candidate: %w", err)
		}
		result = append(result, docID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating candidates: %w", err)
	}
	return result, nil
}
