package main

import (
	"fmt"
	"strconv"

	"github.com/Adithya-Monish-Kumar-K/cosine-scorer/internal/searcher/handler"
	"github.com/Adithya-Monish-Kumar-K/cosine-scorer/internal/stats"
	"github.com/spf13/cobra"
)

func newExplainCommand(root *rootOptions) *cobra.Command {
	var q queryFlags
	var docID string

	cmd := &cobra.Command{
		Use:   "explain",
		Short: "Show the per-term breakdown of one document's score",
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
			exp, err := scorer.Explain(stats.ForDocument(ctx, idx, docID))
			if err != nil {
				return err
			}

			if root.jsonOutput {
				return writeJSON(cmd, handler.NewExplainResponse(docID, exp))
			}

			rows := make([][]string, 0, len(exp.Terms))
			for _, t := range exp.Terms {
				rows = append(rows, []string{
					t.Term,
					formatFloat(t.Weight),
					strconv.FormatInt(t.Stats.DocFreq, 10),
					strconv.FormatInt(t.Stats.TermFreq, 10),
					formatFloat(t.IDF),
					strconv.FormatBool(t.Matched),
				})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(
				[]string{"Term", "Weight", "DF", "TF", "IDF", "Matched"},
				rows,
				[]columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignRight, alignLeft},
			))
			fmt.Fprintf(out, "Document: %s  Field: %s\n", docID, exp.Field)
			fmt.Fprintf(out, "Score: %s\n", formatFloat(exp.Score))
			return nil
		},
	}

	q.register(cmd)
	cmd.Flags().StringVar(&docID, "doc", "", "Document ID to explain")
	_ = cmd.MarkFlagRequired("doc")
	return cmd
}
