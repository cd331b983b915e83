package main

import (
	"github.com/spf13/cobra"
)

const rootLong = `ahclip reads a manifest of subjects and start offsets, finds each
"Study NNN" recording in the input directory, normalizes it to a cached WAV,
and writes the annotated window to "ah Study NNNN <duration> sec.wav" in the
output directory.

A first argument matching a subcommand name (plan, check, history, config)
selects that subcommand. Put "--" before the paths to use such a manifest.`

const rootExample = `  ahclip ah.csv recordings/ clips/ -d 2.5
  ahclip -d 2.5 -- plan recordings/ clips/   # manifest file named "plan"`

// rootArgs accepts either nothing (print help) or the three positional paths.
func rootArgs(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return nil
	}
	return cobra.ExactArgs(3)(cmd, args)
}

func newRootCommand() *cobra.Command {
	var configPath, logLevel, logFormat string
	ctx := newCommandContext(&configPath, &logLevel, &logFormat)
	run := &runFlags{}

	root := &cobra.Command{
		Use:           "ahclip <manifest> <input_dir> <output_dir>",
		Short:         "Cut annotated clips from study recordings",
		Long:          rootLong,
		Example:       rootExample,
		Args:          rootArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			return runExtraction(cmd, ctx, run, args)
		},
	}

	persistent := root.PersistentFlags()
	persistent.StringVarP(&configPath, "config", "c", "", "Configuration file path")
	persistent.StringVar(&logLevel, "log-level", "", "Override logging.level (debug, info, warn, error)")
	persistent.StringVar(&logFormat, "log-format", "", "Override logging.format (console, json)")
	run.register(root, true)

	root.AddCommand(
		newPlanCommand(ctx),
		newCheckCommand(ctx),
		newHistoryCommand(ctx),
		newConfigCommand(ctx),
	)
	return root
}
