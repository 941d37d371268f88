package cli

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"dataprobe/internal/db"
	"dataprobe/internal/declarative"
	"dataprobe/internal/domain"
	"dataprobe/internal/repository"
	"dataprobe/internal/service"
	"dataprobe/internal/validation"
)

// warehouseDriver is the database/sql driver used for the warehouse
// connection. Tests override it.
var warehouseDriver = "duckdb"

func newRunCmd() *cobra.Command {
	var (
		parallelism int
		exportPath  string
	)

	cmd := &cobra.Command{
		Use:   "run [suite-name...]",
		Short: "Run data quality suites against the warehouse",
		Long:  "Loads suite definitions, runs their test cases against the warehouse, persists results to the metastore, and prints a summary.",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: slog.LevelWarn,
			}))

			suites, err := declarative.LoadDirectory(rootFlag(cmd, "suite-dir"))
			if err != nil {
				return err
			}
			suites, err = selectSuites(suites, args)
			if err != nil {
				return err
			}

			warehouse, err := sql.Open(warehouseDriver, rootFlag(cmd, "warehouse"))
			if err != nil {
				return fmt.Errorf("open warehouse: %w", err)
			}
			defer warehouse.Close()

			metaDB, err := db.OpenWriter(rootFlag(cmd, "meta-db"))
			if err != nil {
				return err
			}
			defer metaDB.Close()
			if err := db.RunMigrations(metaDB); err != nil {
				return err
			}

			registry := validation.NewRegistry(logger)
			svc := service.NewSuiteService(warehouse, registry, repository.NewResultRepo(metaDB), logger, parallelism)

			var runs []*domain.SuiteRun
			failed := false
			for i := range suites {
				run, err := svc.RunSuite(cmd.Context(), &suites[i])
				if err != nil {
					return fmt.Errorf("run suite %s: %w", suites[i].Name, err)
				}
				runs = append(runs, run)
				if run.Status != domain.StatusSuccess {
					failed = true
				}
				if exportPath != "" {
					if err := exportRun(exportPath, run); err != nil {
						return err
					}
				}
			}

			if getOutputFormat(cmd) == "json" {
				if err := printJSON(os.Stdout, runs); err != nil {
					return err
				}
			} else {
				for _, run := range runs {
					printRunTable(run)
				}
			}

			if failed {
				return fmt.Errorf("one or more suites did not succeed")
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&parallelism, "parallelism", 4, "Maximum concurrent test cases per suite")
	cmd.Flags().StringVar(&exportPath, "export", "", "Write an XLSX report per run to this path")
	return cmd
}

func selectSuites(suites []domain.TestSuite, names []string) ([]domain.TestSuite, error) {
	if len(names) == 0 {
		return suites, nil
	}
	byName := make(map[string]domain.TestSuite, len(suites))
	for _, s := range suites {
		byName[s.Name] = s
	}
	selected := make([]domain.TestSuite, 0, len(names))
	for _, name := range names {
		s, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("suite %q not found", name)
		}
		selected = append(selected, s)
	}
	return selected, nil
}

func printRunTable(run *domain.SuiteRun) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle(fmt.Sprintf("%s: %s (%s)", run.SuiteName, run.Status, run.FinishedAt.Sub(run.StartedAt)))

	t.AppendHeader(table.Row{"Test Case", "Status", "Result"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Test Case", WidthMax: 40},
		{Name: "Status", Align: text.AlignCenter},
		{Name: "Result", WidthMax: 80},
	})

	for _, cr := range run.Results {
		t.AppendRow(table.Row{cr.TestCase, statusGlyph(cr.Result.Status), cr.Result.Result})
	}
	t.Render()
}

func statusGlyph(status domain.TestCaseStatus) string {
	switch status {
	case domain.StatusSuccess:
		return "✓ " + string(status)
	case domain.StatusFailed:
		return "✗ " + string(status)
	default:
		return "⚠ " + string(status)
	}
}
