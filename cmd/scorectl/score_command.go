package main

import (
	"fmt"
	"strconv"

	"github.com/Adithya-Monish-Kumar-K/cosine-scorer/internal/searcher/ranker"
	"github.com/Adithya-Monish-Kumar-K/cosine-scorer/internal/stats"
	"github.com/spf13/cobra"
)

type scoreOutput struct {
	Field   string             `json:"field"`
	Terms   []string           `json:"terms"`
	Weights []float64          `json:"weights"`
	Results []ranker.ScoredDoc `json:"results"`
}

func newScoreCommand(root *rootOptions) *cobra.Command {
	var q queryFlags
	var limit int
	var docIDs []string

	cmd := &cobra.Command{
		Use:   "score",
		Short: "Rank corpus documents by cosine similarity",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			scorer, err := q.scorer(cmd)
			if err != nil {
				return err
			}
			idx, err := loadCorpus(ctx, q.corpus)
			if err != nil {
				return err
			}

			candidates := docIDs
			if len(candidates) == 0 {
				candidates, err = idx.Candidates(ctx, scorer.Field(), scorer.Terms())
				if err != nil {
					return err
				}
			}
			results, err := ranker.Rank(candidates, func(docID string) (float64, error) {
				return scorer.Score(stats.ForDocument(ctx, idx, docID))
			}, limit)
			if err != nil {
				return err
			}

			if root.jsonOutput {
				return writeJSON(cmd, scoreOutput{
					Field:   scorer.Field(),
					Terms:   scorer.Terms(),
					Weights: scorer.Weights(),
					Results: results,
				})
			}
			if len(results) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No matching documents")
				return nil
			}
			rows := make([][]string, 0, len(results))
			for i, r := range results {
				rows = append(rows, []string{strconv.Itoa(i + 1), r.DocID, formatFloat(r.Score)})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Rank", "Document", "Score"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignRight},
			))
			return nil
		},
	}

	q.register(cmd)
	cmd.Flags().IntVar(&limit, "limit", 10, "Maximum results (0 for all)")
	cmd.Flags().StringSliceVar(&docIDs, "docs", nil, "Score only these document IDs")
	return cmd
}
