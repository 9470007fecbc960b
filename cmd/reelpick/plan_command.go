package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"reelpick/internal/outputs"
	"reelpick/internal/plan"
)

func newPlanCommand(ctx *commandContext) *cobra.Command {
	planCmd := &cobra.Command{
		Use:   "plan",
		Short: "Preview a run without scoring or writing outputs",
	}

	planCmd.AddCommand(newPlanPhotosCommand(ctx))
	planCmd.AddCommand(newPlanVideosCommand(ctx))

	return planCmd
}

func newPlanPhotosCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "photos <input-dir> <output-dir>",
		Short: "Preview which photos a run would score or skip",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			paths := outputs.NewPhotoPaths(args[1])
			result, err := plan.BuildPhoto(cmd.Context(), args[0], paths)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if !useTables(ctx, out) {
				return writeJSON(out, result)
			}

			rows := make([][]string, 0, len(result.FilesToProcess)+len(result.FilesToSkip)+len(result.Unreadable))
			for _, path := range result.FilesToProcess {
				rows = append(rows, []string{filepath.Base(path), "score"})
			}
			for _, path := range result.FilesToSkip {
				rows = append(rows, []string{filepath.Base(path), "cached"})
			}
			for _, path := range result.Unreadable {
				rows = append(rows, []string{filepath.Base(path), "unreadable"})
			}
			if len(rows) == 0 {
				fmt.Fprintln(out, "No images found")
				return nil
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Photo", "Action"},
				rows,
				[]columnAlignment{alignLeft, alignLeft},
			))
			fmt.Fprintf(out, "%d to score, %d cached, %d unreadable\n",
				len(result.FilesToProcess), len(result.FilesToSkip), len(result.Unreadable))
			printOutputPaths(out, result.OutputPaths)
			return nil
		},
	}
}

func newPlanVideosCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "videos <input-dir> <output-dir>",
		Short: "Preview the artifacts a video run would produce",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			paths := outputs.NewVideoPaths(args[1])
			result, err := plan.BuildVideo(args[0], paths, cfg.Video.ConcatInDigestFolder)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if !useTables(ctx, out) {
				return writeJSON(out, result)
			}

			if len(result.FilesToProcess) == 0 {
				fmt.Fprintln(out, "No videos found")
				return nil
			}
			rows := make([][]string, 0, len(result.FilesToProcess))
			for i, path := range result.FilesToProcess {
				rows = append(rows, []string{strconv.Itoa(i + 1), filepath.Base(path)})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"#", "Source"},
				rows,
				[]columnAlignment{alignRight, alignLeft},
			))
			printOutputPaths(out, result.OutputPaths)
			return nil
		},
	}
}

func printOutputPaths(out io.Writer, paths []string) {
	fmt.Fprintln(out, "Would create:")
	for _, path := range paths {
		fmt.Fprintf(out, "  %s\n", path)
	}
}
