package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"dataprobe/internal/declarative"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate suite definition files without running them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dir := rootFlag(cmd, "suite-dir")
			suites, err := declarative.LoadDirectory(dir)
			if err != nil {
				return err
			}

			if getOutputFormat(cmd) == "json" {
				summary := make([]map[string]interface{}, 0, len(suites))
				for _, s := range suites {
					summary = append(summary, map[string]interface{}{
						"name":      s.Name,
						"testCases": len(s.Cases),
						"schedule":  s.Schedule,
					})
				}
				return printJSON(os.Stdout, summary)
			}

			fmt.Fprintf(os.Stdout, "Validated %d suite(s) in %s\n", len(suites), dir)
			for _, s := range suites {
				fmt.Fprintf(os.Stdout, "  %s: %d test case(s)\n", s.Name, len(s.Cases))
			}
			return nil
		},
	}
}
