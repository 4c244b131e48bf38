package main

import (
	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
	jsonOutput bool
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "scorectl",
		Short:         "Cosine similarity scoring tools",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().BoolVar(&opts.jsonOutput, "json", false, "Emit JSON instead of a table")

	rootCmd.AddCommand(newScoreCommand(opts))
	rootCmd.AddCommand(newExplainCommand(opts))
	rootCmd.AddCommand(newTermsCommand(opts))
	rootCmd.AddCommand(newIngestCommand(opts))

	return rootCmd
}
