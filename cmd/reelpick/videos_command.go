package main

import (
	"fmt"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"reelpick/internal/media"
	"reelpick/internal/outputs"
	"reelpick/internal/pipeline"
)

func newVideosCommand(ctx *commandContext) *cobra.Command {
	var keepTemp bool

	cmd := &cobra.Command{
		Use:   "videos <input-dir> <output-dir>",
		Short: "Build a highlight digest for each video in a directory",
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

			tool := media.New(cfg.Video.UseHWAccel)
			if err := tool.CheckBinaries(); err != nil {
				return err
			}

			runner := pipeline.NewVideoRunner(cfg, ctx.newJudgeClient(cfg), tool, logger)
			manifest, err := runner.Run(runCtx, pipeline.VideoRequest{
				InputDir:  args[0],
				OutputDir: args[1],
				Keep:      keepTemp,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if !useTables(ctx, out) {
				return writeJSON(out, manifest)
			}

			rows := make([][]string, 0, len(manifest.Sources))
			failures := 0
			for _, source := range manifest.Sources {
				status := "ok"
				if source.Error != "" {
					status = "failed"
					failures++
				}
				rows = append(rows, []string{
					filepath.Base(source.Source),
					strconv.Itoa(len(source.SelectedClips)),
					strconv.Itoa(source.TotalClips),
					fmt.Sprintf("%.1fs", source.TotalSelectedSeconds),
					strconv.Itoa(source.RemovedDuplicates),
					status,
				})
			}
			if len(rows) > 0 {
				fmt.Fprintln(out, renderTable(
					[]string{"Source", "Selected", "Clips", "Duration", "Dupes", "Status"},
					rows,
					[]columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignRight, alignLeft},
				))
			}
			fmt.Fprintf(out, "Processed %d sources (%d failed)\n", len(manifest.Sources), failures)
			fmt.Fprintf(out, "Manifest: %s\n", outputs.NewVideoPaths(args[1]).Manifest())
			return nil
		},
	}

	cmd.Flags().BoolVar(&keepTemp, "keep", false, "Keep the temp working directory after the run")
	return cmd
}
