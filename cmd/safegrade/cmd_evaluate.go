package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spboyer/safegrade/internal/archive"
	"github.com/spboyer/safegrade/internal/config"
	"github.com/spboyer/safegrade/internal/dataset"
	"github.com/spboyer/safegrade/internal/evaluation"
	"github.com/spboyer/safegrade/internal/execution"
	"github.com/spboyer/safegrade/internal/models"
	"github.com/spboyer/safegrade/internal/nhtsa"
	"github.com/spboyer/safegrade/internal/reporting"
	"github.com/spboyer/safegrade/internal/validation"
	"github.com/spf13/cobra"
)

type evaluateOptions struct {
	samples        int
	verbose        bool
	outputPath     string
	junitPath      string
	upload         bool
	container      string
	compareBase    string
	dryRun         bool
	skipValidation bool
}

func newEvaluateCommand() *cobra.Command {
	var opts evaluateOptions

	cmd := &cobra.Command{
		Use:   "evaluate <eval.yaml>",
		Short: "Run a model evaluation against a validation corpus",
		Long: `Run a model evaluation from a spec file.

The spec defines the engine, model, corpus paths, and run settings.
Each corpus question is sent to the model, the answer is graded against
live NHTSA data, and the run is summarized with per-query-type stats.

With --compare, the corpus is run twice: once with the named base model
and once with the spec's model, reporting the improvement.

With --dry-run the mock engine answers instead of a real model, which
exercises corpus loading and grading without spending tokens.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return evaluateCommandE(cmd, args[0], opts)
		},
	}

	cmd.Flags().IntVar(&opts.samples, "samples", 0, "Limit evaluation to the first N examples (0 = spec setting)")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Print per-example results")
	cmd.Flags().StringVarP(&opts.outputPath, "output", "o", "", "Output JSON file for results")
	cmd.Flags().StringVar(&opts.junitPath, "junit", "", "Write JUnit XML results to this path")
	cmd.Flags().BoolVar(&opts.upload, "upload", false, "Upload the outcome JSON to Azure Blob Storage")
	cmd.Flags().StringVar(&opts.container, "container", "", "Blob container for --upload (default "+archive.DefaultContainer+")")
	cmd.Flags().StringVar(&opts.compareBase, "compare", "", "Base model to compare the spec's model against")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Use the mock engine instead of a real model")
	cmd.Flags().BoolVar(&opts.skipValidation, "skip-validation", false, "Skip corpus schema validation")

	return cmd
}

func evaluateCommandE(cmd *cobra.Command, specPath string, opts evaluateOptions) error {
	out := cmd.OutOrStdout()

	spec, err := config.Load(specPath)
	if err != nil {
		return err
	}

	corpusPath := spec.Corpus.Validation
	if corpusPath == "" {
		corpusPath = spec.Corpus.Training
	}
	if !filepath.IsAbs(corpusPath) {
		corpusPath = filepath.Join(filepath.Dir(specPath), corpusPath)
	}

	if !opts.skipValidation {
		if err := checkCorpus(cmd, corpusPath); err != nil {
			return err
		}
	}

	examples, err := dataset.LoadExamples(corpusPath, 0)
	if err != nil {
		return err
	}

	provider := nhtsa.NewProvider(nhtsa.NewClient(nhtsa.WithCache(nhtsa.NewCache(spec.Run.CacheDir))))

	engineType := spec.Run.EngineType
	if opts.dryRun {
		engineType = config.EngineMock
	}

	samples := spec.Run.Samples
	if opts.samples > 0 {
		samples = opts.samples
	}

	runModel := func(modelID string) (*models.EvaluationOutcome, error) {
		engine, err := execution.New(engineType, modelID)
		if err != nil {
			return nil, err
		}

		if err := engine.Initialize(cmd.Context()); err != nil {
			return nil, err
		}
		defer engine.Shutdown(cmd.Context()) //nolint:errcheck

		runner := evaluation.NewRunner(engine, provider,
			evaluation.WithModelID(modelID),
			evaluation.WithEngineType(engineType),
			evaluation.WithTimeout(spec.Timeout()),
			evaluation.WithWorkers(spec.Run.Workers),
			evaluation.WithSampleLimit(samples),
			evaluation.WithPassThreshold(spec.Run.PassThreshold),
		)
		runner.OnProgress(newProgressPrinter(out, opts.verbose))

		return runner.Run(cmd.Context(), examples, filepath.Base(corpusPath))
	}

	if opts.compareBase != "" {
		return evaluateCompare(cmd, opts, runModel, spec.Run.ModelID)
	}

	outcome, err := runModel(spec.Run.ModelID)
	if err != nil {
		return err
	}

	fmt.Fprintln(out)
	fmt.Fprint(out, reporting.FormatSummaryReport(outcome))

	if err := writeResults(cmd, opts, outcome); err != nil {
		return err
	}

	if opts.dryRun {
		return nil
	}

	threshold := spec.Run.PassThreshold
	if threshold == 0 {
		threshold = models.PassThreshold
	}

	if outcome.Digest.AvgScore < threshold {
		return &EvalFailureError{
			Message: fmt.Sprintf("average score %.2f is below the pass threshold %.2f", outcome.Digest.AvgScore, threshold),
		}
	}

	return nil
}

func evaluateCompare(cmd *cobra.Command, opts evaluateOptions, runModel func(string) (*models.EvaluationOutcome, error), candidateModel string) error {
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "Evaluating base model %s...\n", opts.compareBase)
	base, err := runModel(opts.compareBase)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Evaluating candidate model %s...\n", candidateModel)
	candidate, err := runModel(candidateModel)
	if err != nil {
		return err
	}

	comparison := evaluation.Compare(base, candidate)

	fmt.Fprintln(out)
	fmt.Fprint(out, reporting.FormatComparisonReport(comparison))
	fmt.Fprintf(out, "Normalized gain: %.2f\n", evaluation.NormalizedGain(comparison))

	if opts.outputPath != "" {
		if err := writeJSONFile(opts.outputPath, comparison); err != nil {
			return err
		}
		fmt.Fprintf(out, "\nResults written to %s\n", opts.outputPath)
	}

	return nil
}

func checkCorpus(cmd *cobra.Command, corpusPath string) error {
	lineErrs, err := validation.ValidateCorpusFile(corpusPath)
	if err != nil {
		return err
	}
	if len(lineErrs) == 0 {
		return nil
	}

	lines := make([]int, 0, len(lineErrs))
	for line := range lineErrs {
		lines = append(lines, line)
	}
	sort.Ints(lines)

	for _, line := range lines {
		for _, msg := range lineErrs[line] {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s:%d: %s\n", corpusPath, line, msg)
		}
	}

	return fmt.Errorf("corpus %s has %d invalid records", corpusPath, len(lineErrs))
}

func writeResults(cmd *cobra.Command, opts evaluateOptions, outcome *models.EvaluationOutcome) error {
	out := cmd.OutOrStdout()

	if opts.outputPath != "" {
		if err := writeJSONFile(opts.outputPath, outcome); err != nil {
			return err
		}
		fmt.Fprintf(out, "\nResults written to %s\n", opts.outputPath)
	}

	if opts.junitPath != "" {
		if err := reporting.WriteJUnitXML(outcome, opts.junitPath); err != nil {
			return err
		}
		fmt.Fprintf(out, "JUnit results written to %s\n", opts.junitPath)
	}

	if opts.upload {
		uploader, err := archive.NewUploaderFromEnv(opts.container)
		if err != nil {
			return err
		}

		name, err := uploader.UploadOutcome(cmd.Context(), outcome)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Outcome uploaded as %s\n", name)
	}

	return nil
}

func writeJSONFile(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling results: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}
