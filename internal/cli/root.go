// Package cli handles the command-line interface logic
// using the Cobra library.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/BartekS5/gaexport/internal/etl"
)

type ExportOptions struct {
	ConfigFile string
	OutputDir  string
	FileName   string
	DryRun     bool
}

func NewRootCmd() *cobra.Command {
	opts := &ExportOptions{}

	rootCmd := &cobra.Command{
		Use:   "gaexport",
		Short: "gaexport - load Google Analytics client/application ids into BigQuery",
		Long: `gaexport extracts client id / application id pairs from the Google Analytics
Reporting API v4 or from the GA360 BigQuery export, writes them to a CSV file
and appends that file to a BigQuery table, creating the table on first use.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd.Context(), opts)
		},
	}

	rootCmd.Flags().StringVarP(&opts.ConfigFile, "conf-file-path", "c", "", "Path to the YAML config file")
	rootCmd.Flags().StringVarP(&opts.OutputDir, "output-dir-path", "o", "", "Directory the CSV file is written to")
	rootCmd.Flags().StringVar(&opts.FileName, "file-name", etl.DefaultFileName, "Name of the CSV file")
	rootCmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Write the CSV file but skip table creation and loading")

	rootCmd.MarkFlagRequired("conf-file-path")
	rootCmd.MarkFlagRequired("output-dir-path")

	return rootCmd
}
