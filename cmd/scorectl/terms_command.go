package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

type termRow struct {
	Field    string `json:"field"`
	Term     string `json:"term"`
	DocFreq  int    `json:"doc_freq"`
	DocCount int    `json:"doc_count"`
}

func newTermsCommand(root *rootOptions) *cobra.Command {
	var corpus, field, term string

	cmd := &cobra.Command{
		Use:   "terms",
		Short: "List indexed terms, or the postings of one term",
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := loadCorpus(cmd.Context(), corpus)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if term != "" {
				if field == "" {
					return fmt.Errorf("--term requires --field")
				}
				postings := idx.Search(field, term)
				if root.jsonOutput {
					return writeJSON(cmd, postings)
				}
				rows := make([][]string, 0, len(postings))
				for _, p := range postings {
					rows = append(rows, []string{p.DocID, strconv.Itoa(p.Frequency)})
				}
				fmt.Fprintln(out, renderTable([]string{"Document", "TF"}, rows, []columnAlignment{alignLeft, alignRight}))
				return nil
			}

			var entries []termRow
			for _, e := range idx.Snapshot() {
				if field != "" && e.Field != field {
					continue
				}
				entries = append(entries, termRow{
					Field:    e.Field,
					Term:     e.Term,
					DocFreq:  len(e.Postings),
					DocCount: idx.DocCount(e.Field),
				})
			}
			if root.jsonOutput {
				return writeJSON(cmd, entries)
			}
			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				rows = append(rows, []string{e.Field, e.Term, strconv.Itoa(e.DocFreq), strconv.Itoa(e.DocCount)})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Field", "Term", "DF", "Docs"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight},
			))
			return nil
		},
	}

	cmd.Flags().StringVar(&corpus, "corpus", "", "JSONL corpus of documents")
	cmd.Flags().StringVar(&field, "field", "", "Restrict to one field")
	cmd.Flags().StringVar(&term, "term", "", "Show postings for this term")
	_ = cmd.MarkFlagRequired("corpus")
	return cmd
}
