package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spboyer/safegrade/internal/config"
	"github.com/spf13/cobra"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

func newInitCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize an evaluation spec",
		Long: `Initialize a new evaluation with a guided wizard.

Creates an eval.yaml spec file in the target directory. If no directory
is specified, the current directory is used.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return initCommandE(cmd, args)
		},
	}

	return cmd
}

func initCommandE(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	spec, err := runSpecWizard(cmd.InOrStdin(), cmd.OutOrStdout())
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(spec)
	if err != nil {
		return fmt.Errorf("failed to render eval.yaml: %w", err)
	}

	specPath := filepath.Join(dir, "eval.yaml")
	if _, err := os.Stat(specPath); err == nil {
		return fmt.Errorf("%s already exists", specPath)
	}

	if err := os.WriteFile(specPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write eval.yaml: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created %s\n", specPath)
	fmt.Fprintf(out, "\nNext steps:\n")
	fmt.Fprintf(out, "  safegrade generate -o %s --validation %s\n", spec.Corpus.Training, spec.Corpus.Validation)
	fmt.Fprintf(out, "  safegrade evaluate %s\n", specPath)

	return nil
}

// runSpecWizard collects the evaluation settings interactively.
func runSpecWizard(in io.Reader, out io.Writer) (*config.EvalSpec, error) {
	var (
		name       = "nhtsa-eval"
		engineType = config.EngineAzure
		modelID    string
		training   = "data/training.jsonl"
		validation = "data/validation.jsonl"
		timeoutRaw = "60"
	)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Evaluation name").
				Value(&name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("name is required")
					}
					return nil
				}),
			huh.NewSelect[string]().
				Title("Engine").
				Description("Where model answers come from").
				Options(
					huh.NewOption("Azure OpenAI", config.EngineAzure),
					huh.NewOption("GitHub Copilot", config.EngineCopilot),
					huh.NewOption("Mock (dry runs)", config.EngineMock),
				).
				Value(&engineType),
			huh.NewInput().
				Title("Model").
				Description("Deployment or model name; may be blank for the mock engine").
				Placeholder("gpt-4o-mini").
				Value(&modelID),
			huh.NewInput().
				Title("Training corpus path").
				Value(&training),
			huh.NewInput().
				Title("Validation corpus path").
				Value(&validation),
			huh.NewInput().
				Title("Per-question timeout (seconds)").
				Value(&timeoutRaw).
				Validate(func(s string) error {
					n, err := strconv.Atoi(strings.TrimSpace(s))
					if err != nil || n < 1 {
						return fmt.Errorf("enter a positive whole number")
					}
					return nil
				}),
		),
	).
		WithInput(in).
		WithOutput(out)

	// Use accessible mode for non-TTY input (e.g., tests, piped input).
	if f, ok := in.(*os.File); !ok || !term.IsTerminal(int(f.Fd())) {
		form = form.WithAccessible(true)
	}

	if err := form.Run(); err != nil {
		return nil, fmt.Errorf("wizard failed: %w", err)
	}

	timeoutSec, err := strconv.Atoi(strings.TrimSpace(timeoutRaw))
	if err != nil {
		return nil, fmt.Errorf("invalid timeout: %w", err)
	}

	spec := &config.EvalSpec{
		Name: strings.TrimSpace(name),
		Run: config.Run{
			EngineType:    engineType,
			ModelID:       strings.TrimSpace(modelID),
			TimeoutSec:    timeoutSec,
			PassThreshold: 0.7,
			CacheDir:      ".nhtsa-cache",
		},
		Corpus: config.Corpus{
			Training:   strings.TrimSpace(training),
			Validation: strings.TrimSpace(validation),
		},
	}

	if err := spec.Validate(); err != nil {
		return nil, err
	}

	return spec, nil
}
