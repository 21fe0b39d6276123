package main

import (
	"log/slog"

	"github.com/spf13/cobra"
)

var version = "dev"

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "safegrade",
		Short: "safegrade - grade model answers against live NHTSA safety data",
		Long: `safegrade evaluates free-text model answers about vehicle recalls,
complaints, and crash-test ratings by checking them against current
NHTSA ground truth.

It can generate labeled question corpora, run full evaluations against
a model endpoint, grade single answers, and query the NHTSA API
directly.`,
		Version:      version,
		SilenceUsage: true,
	}

	debugLogging := cmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if *debugLogging {
			slog.SetLogLoggerLevel(slog.LevelDebug)
		}
	}

	// Add subcommands
	cmd.AddCommand(newEvaluateCommand())
	cmd.AddCommand(newGradeCommand())
	cmd.AddCommand(newGenerateCommand())
	cmd.AddCommand(newProbeCommand())
	cmd.AddCommand(newInitCommand())

	return cmd
}

func execute() error {
	rootCmd := newRootCommand()
	return rootCmd.Execute()
}
