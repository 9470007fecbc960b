package main

import (
	"fmt"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"reelpick/internal/outputs"
	"reelpick/internal/pipeline"
)

func newPhotosCommand(ctx *commandContext) *cobra.Command {
	var targetCount int

	cmd := &cobra.Command{
		Use:   "photos <input-dir> <output-dir>",
		Short: "Score and select the best photos from a directory",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			runCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			runner := pipeline.NewPhotoRunner(cfg, ctx.newJudgeClient(cfg), logger)
			manifest, err := runner.Run(runCtx, pipeline.PhotoRequest{
				InputDir:    args[0],
				OutputDir:   args[1],
				TargetCount: targetCount,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if !useTables(ctx, out) {
				return writeJSON(out, manifest)
			}

			rows := make([][]string, 0, len(manifest.Items))
			rank := 0
			for _, item := range manifest.Items {
				if !item.Selected {
					continue
				}
				rank++
				scoreText := "-"
				if item.Score != nil {
					scoreText = fmt.Sprintf("%.3f", *item.Score)
				}
				rows = append(rows, []string{
					strconv.Itoa(rank),
					filepath.Base(item.Path),
					scoreText,
					yesNo(item.FromCache),
				})
			}
			if len(rows) > 0 {
				fmt.Fprintln(out, renderTable(
					[]string{"Rank", "Photo", "Score", "Cached"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignRight, alignLeft},
				))
			}
			fmt.Fprintf(out, "Selected %d of %d photos (%d duplicates removed, %d errors)\n",
				manifest.SelectedCount, manifest.TotalItems, manifest.RemovedDuplicates, manifest.ErrorCount)
			fmt.Fprintf(out, "Manifest: %s\n", outputs.NewPhotoPaths(args[1]).Manifest())
			return nil
		},
	}

	cmd.Flags().IntVarP(&targetCount, "count", "n", 10, "Number of photos to select")
	return cmd
}
