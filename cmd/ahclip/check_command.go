package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"ahclip/internal/preflight"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	var manifest string
	cmd := &cobra.Command{
		Use:   "check [input_dir [output_dir]]",
		Short: "Verify ffmpeg, ffprobe, and the directories a run will use",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			targets := preflight.Targets{Manifest: strings.TrimSpace(manifest)}
			if len(args) > 0 {
				targets.InputDir = args[0]
			}
			if len(args) > 1 {
				targets.OutputDir = args[1]
			}

			results := preflight.RunAll(cmd.Context(), cfg, targets)
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			for _, line := range renderSectionHeader("ahclip preflight", colorize) {
				fmt.Fprintln(out, line)
			}
			configPath, exists := ctx.configSource()
			if !exists {
				configPath = "defaults (no file at " + configPath + ")"
			}
			fmt.Fprintln(out, renderStatusLine("Config", statusInfo, configPath, colorize))
			for _, line := range preflightLines(results, colorize) {
				fmt.Fprintln(out, line)
			}

			if blocking := preflight.Blocking(results); len(blocking) > 0 {
				return fmt.Errorf("preflight failed: %d required check(s) did not pass", len(blocking))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&manifest, "manifest", "m", "", "Manifest to load with the configured columns")
	return cmd
}
