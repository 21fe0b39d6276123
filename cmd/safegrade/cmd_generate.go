package main

import (
	"fmt"

	"github.com/spboyer/safegrade/internal/dataset"
	"github.com/spboyer/safegrade/internal/generate"
	"github.com/spf13/cobra"
)

type generateOptions struct {
	outputPath     string
	validationPath string
	seed           int64
	validationSeed int64
	rosterPath     string
}

func newGenerateCommand() *cobra.Command {
	var opts generateOptions

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate labeled training and validation corpora",
		Long: `Generate question corpora covering every query type: recalls, recall
counts, complaints (plain and component-filtered), complaint counts,
safety ratings (overall and field-specific), safety features, and
vehicle comparisons.

Questions are rendered from templates over a built-in vehicle roster;
pass --roster to use your own CSV (columns: make,model,years with
years separated by "|").

The validation set uses a different seed so the two corpora don't
overlap.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return generateCommandE(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.outputPath, "output", "o", "training.jsonl", "Training corpus output path")
	cmd.Flags().StringVar(&opts.validationPath, "validation", "", "Also write a validation corpus to this path")
	cmd.Flags().Int64Var(&opts.seed, "seed", 42, "Random seed for the training corpus")
	cmd.Flags().Int64Var(&opts.validationSeed, "validation-seed", 99, "Random seed for the validation corpus")
	cmd.Flags().StringVar(&opts.rosterPath, "roster", "", "CSV vehicle roster to generate from")

	return cmd
}

func generateCommandE(cmd *cobra.Command, opts generateOptions) error {
	out := cmd.OutOrStdout()

	var roster []dataset.RosterEntry

	if opts.rosterPath != "" {
		entries, err := dataset.LoadRoster(opts.rosterPath)
		if err != nil {
			return err
		}
		roster = entries
	}

	training := generate.New(opts.seed, roster).Generate(generate.TrainingCounts)
	if err := dataset.WriteExamples(opts.outputPath, training); err != nil {
		return err
	}

	fmt.Fprintf(out, "Wrote %d training examples to %s\n", len(training), opts.outputPath)
	fmt.Fprint(out, formatBreakdown(generate.Breakdown(training)))

	if opts.validationPath == "" {
		return nil
	}

	validationSet := generate.New(opts.validationSeed, roster).Generate(generate.ValidationCounts)
	if err := dataset.WriteExamples(opts.validationPath, validationSet); err != nil {
		return err
	}

	fmt.Fprintf(out, "\nWrote %d validation examples to %s\n", len(validationSet), opts.validationPath)
	fmt.Fprint(out, formatBreakdown(generate.Breakdown(validationSet)))

	return nil
}
