// Package cosine scores a document against a weighted query term vector
// using cosine similarity over TF-IDF weights on a single field.
//
// The numerator multiplies each document tf-idf by weight*idf, so idf enters
// it squared. Existing score outputs depend on that form and it is kept as is.
package cosine

import (
	"math"

	apperrors "github.com/Adithya-Monish-Kumar-K/cosine-scorer/pkg/errors"
)

// TermStats holds the statistics of one term in one field for the document
// being scored.
type TermStats struct {
	DocFreq  int64 `json:"doc_freq"`
	TermFreq int64 `json:"term_freq"`
	DocCount int64 `json:"doc_count"`
}

// StatsLookup resolves term statistics for the current document.
type StatsLookup interface {
	Lookup(field, term string) (TermStats, error)
}

// StatsLookupFunc adapts a function to StatsLookup.
type StatsLookupFunc func(field, term string) (TermStats, error)

func (f StatsLookupFunc) Lookup(field, term string) (TermStats, error) {
	return f(field, term)
}

// Scorer is an immutable query vector bound to one field. It is safe to
// call Score concurrently as long as each StatsLookup is.
type Scorer struct {
	field   string
	terms   []string
	weights []float64
}

// New validates p and builds a Scorer. Missing or mismatched weights are
// replaced by a uniform 1.0 vector sized to the terms.
func New(p Params) (*Scorer, error) {
	if p.Field == "" {
		return nil, apperrors.Configf("cannot initialize %s: field parameter missing", ScriptName)
	}
	if p.Terms == nil {
		return nil, apperrors.Configf("cannot initialize %s: terms parameter missing", ScriptName)
	}
	terms := make([]string, len(p.Terms))
	copy(terms, p.Terms)

	weights := make([]float64, len(terms))
	if len(p.Weights) == len(terms) && p.Weights != nil {
		copy(weights, p.Weights)
	} else {
		for i := range weights {
			weights[i] = 1.0
		}
	}
	return &Scorer{field: p.Field, terms: terms, weights: weights}, nil
}

// NewFromMap parses raw parameters and builds a Scorer.
func NewFromMap(raw map[string]any) (*Scorer, error) {
	p, err := ParseParams(raw)
	if err != nil {
		return nil, err
	}
	return New(p)
}

func (s *Scorer) Field() string { return s.field }

func (s *Scorer) Terms() []string {
	out := make([]string, len(s.terms))
	copy(out, s.terms)
	return out
}

func (s *Scorer) Weights() []float64 {
	out := make([]float64, len(s.weights))
	copy(out, s.weights)
	return out
}

// Len returns the number of query terms, repeats included.
func (s *Scorer) Len() int { return len(s.terms) }

// IDF returns ln((docCount+2)/(docFreq+1)).
func IDF(docFreq, docCount int64) float64 {
	return math.Log((float64(docCount) + 2.0) / (float64(docFreq) + 1.0))
}

// Score computes the similarity of the current document. Degenerate inputs
// (empty query, no matching terms) produce NaN or Inf rather than an error.
func (s *Scorer) Score(lookup StatsLookup) (float64, error) {
	var acc accumulator
	for i, term := range s.terms {
		stats, err := lookup.Lookup(s.field, term)
		if err != nil {
			return 0, apperrors.Lookup(s.field, term, err)
		}
		acc.add(stats, s.weights[i])
	}
	return acc.result(), nil
}

// TermContribution is one query term's share of a score.
type TermContribution struct {
	Term      string    `json:"term"`
	Weight    float64   `json:"weight"`
	Stats     TermStats `json:"stats"`
	IDF       float64   `json:"idf"`
	Matched   bool      `json:"matched"`
	Numerator float64   `json:"numerator"`
	DocNorm   float64   `json:"doc_norm"`
	QueryNorm float64   `json:"query_norm"`
}

// Explanation breaks a score down per term.
type Explanation struct {
	Field     string             `json:"field"`
	Score     float64            `json:"score"`
	Numerator float64            `json:"numerator"`
	DocNorm   float64            `json:"doc_norm"`
	QueryNorm float64            `json:"query_norm"`
	Terms     []TermContribution `json:"terms"`
}

// Explain runs the same computation as Score and records every term's
// contribution to the three accumulators. The sums are squared norms.
func (s *Scorer) Explain(lookup StatsLookup) (*Explanation, error) {
	var acc accumulator
	exp := &Explanation{
		Field: s.field,
		Terms: make([]TermContribution, 0, len(s.terms)),
	}
	for i, term := range s.terms {
		stats, err := lookup.Lookup(s.field, term)
		if err != nil {
			return nil, apperrors.Lookup(s.field, term, err)
		}
		c := acc.add(stats, s.weights[i])
		c.Term = term
		exp.Terms = append(exp.Terms, c)
	}
	exp.Numerator = acc.numerator
	exp.DocNorm = acc.docNorm
	exp.QueryNorm = acc.queryNorm
	exp.Score = acc.result()
	return exp, nil
}

type accumulator struct {
	numerator float64
	docNorm   float64
	queryNorm float64
}

func (a *accumulator) add(stats TermStats, weight float64) TermContribution {
	idf := IDF(stats.DocFreq, stats.DocCount)
	c := TermContribution{
		Weight: weight,
		Stats:  stats,
		IDF:    idf,
	}
	// Absent terms still count towards the query norm.
	if stats.DocFreq != 0 && stats.TermFreq != 0 {
		tfidf := float64(stats.TermFreq) * idf
		c.Matched = true
		c.Numerator = tfidf * weight * idf
		c.DocNorm = tfidf * tfidf
		a.numerator += c.Numerator
		a.docNorm += c.DocNorm
	}
	q := weight * idf
	c.QueryNorm = q * q
	a.queryNorm += c.QueryNorm
	return c
}

func (a *accumulator) result() float64 {
	return a.numerator / (math.Sqrt(a.docNorm) * math.Sqrt(a.queryNorm))
}
