package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"dataprobe/internal/db"
	"dataprobe/internal/domain"
	"dataprobe/internal/report"
	"dataprobe/internal/repository"
)

// exportRun is a hook so tests can capture exports without touching disk.
var exportRun = func(path string, run *domain.SuiteRun) error {
	return report.WriteRunReport(path, run)
}

func newExportCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export <run-id>",
		Short: "Export a persisted suite run as an XLSX report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			metaDB, err := db.OpenReader(rootFlag(cmd, "meta-db"), 0)
			if err != nil {
				return err
			}
			defer metaDB.Close()

			run, err := repository.NewResultRepo(metaDB).GetRun(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if err := exportRun(out, run); err != nil {
				return err
			}
			if getOutputFormat(cmd) == "json" {
				return printJSON(os.Stdout, map[string]string{
					"run_id": run.ID,
					"path":   out,
				})
			}
			fmt.Fprintf(os.Stdout, "Wrote report for run %s to %s\n", run.ID, out)
			return nil
		},
	}

	cmd.Flags().StringVar(&out, "out", "report.xlsx", "Output file path")
	return cmd
}
