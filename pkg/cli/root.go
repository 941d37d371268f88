// Package cli implements the dataprobe command-line interface.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
)

// Execute runs the CLI.
func Execute() int {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		output, _ := rootCmd.PersistentFlags().GetString("output")
		if output == "json" {
			_ = printJSON(os.Stdout, map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	var (
		warehouse string
		metaDB    string
		suiteDir  string
		output    string
	)

	rootCmd := &cobra.Command{
		Use:           "dataprobe",
		Short:         "Data quality test suite runner",
		Long:          "Command-line interface for running declarative data quality suites against a warehouse.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Precedence: flag > env > default
			if !cmd.Flags().Changed("warehouse") {
				if v := os.Getenv("DATAPROBE_WAREHOUSE"); v != "" {
					warehouse = v
				}
			}
			if !cmd.Flags().Changed("meta-db") {
				if v := os.Getenv("DATAPROBE_META_DB"); v != "" {
					metaDB = v
				}
			}
			if !cmd.Flags().Changed("suite-dir") {
				if v := os.Getenv("DATAPROBE_SUITE_DIR"); v != "" {
					suiteDir = v
				}
			}
			return validateOutputFormat(output)
		},
	}

	rootCmd.PersistentFlags().StringVar(&warehouse, "warehouse", "warehouse.duckdb", "Warehouse database path")
	rootCmd.PersistentFlags().StringVar(&metaDB, "meta-db", "dataprobe_meta.sqlite", "Result metastore path")
	rootCmd.PersistentFlags().StringVar(&suiteDir, "suite-dir", "suites", "Directory of suite definition files")
	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", "table", "Output format (table, json)")

	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newValidateCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}
