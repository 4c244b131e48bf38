package main

import (
	"fmt"
	"math"
	"strconv"

	"github.com/Adithya-Monish-Kumar-K/cosine-scorer/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/cosine-scorer/internal/scoring/cosine"
	"github.com/spf13/cobra"
)

type queryFlags struct {
	corpus  string
	field   string
	terms   []string
	weights []float64
	analyze bool
}

func (q *queryFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&q.corpus, "corpus", "", "JSONL corpus of documents")
	cmd.Flags().StringVar(&q.field, "field", "", "Field to score")
	cmd.Flags().StringSliceVar(&q.terms, "terms", nil, "Query terms (comma separated)")
	cmd.Flags().Float64SliceVar(&q.weights, "weights", nil, "Per-term weights, aligned with --terms")
	cmd.Flags().BoolVar(&q.analyze, "analyze", false, "Run query terms through the index analyzer")
	_ = cmd.MarkFlagRequired("corpus")
}

// scorer builds a cosine scorer from the flags. An unset --terms flag is an
// absent parameter, not an empty query.
func (q *queryFlags) scorer(cmd *cobra.Command) (*cosine.Scorer, error) {
	params := cosine.Params{Field: q.field, Weights: q.weights}
	if cmd.Flags().Changed("terms") {
		params.Terms = make([]string, len(q.terms))
		for i, term := range q.terms {
			if q.analyze {
				term = tokenizer.Normalize(term)
			}
			params.Terms[i] = term
		}
	}
	return cosine.New(params)
}

func formatFloat(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Sprint(v)
	}
	return strconv.FormatFloat(v, 'f', 6, 64)
}
