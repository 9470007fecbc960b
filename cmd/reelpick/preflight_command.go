package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"reelpick/internal/preflight"
)

func newPreflightCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "preflight [output-dir]",
		Short: "Check external tools, the judge endpoint, and disk space",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			outputDir := "."
			if len(args) == 1 {
				outputDir = args[0]
			}

			results := preflight.RunAll(cmd.Context(), cfg, outputDir)

			out := cmd.OutOrStdout()
			if !useTables(ctx, out) {
				if err := writeJSON(out, results); err != nil {
					return err
				}
			} else {
				rows := make([][]string, 0, len(results))
				for _, result := range results {
					status := "ok"
					if !result.Passed {
						status = "FAIL"
					}
					rows = append(rows, []string{result.Name, status, result.Detail})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Check", "Status", "Detail"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft},
				))
			}

			if !preflight.AllPassed(results) {
				return fmt.Errorf("preflight failed")
			}
			return nil
		},
	}
}
