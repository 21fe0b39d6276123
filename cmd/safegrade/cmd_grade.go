package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spboyer/safegrade/internal/grading"
	"github.com/spboyer/safegrade/internal/models"
	"github.com/spboyer/safegrade/internal/nhtsa"
	"github.com/spf13/cobra"
)

type gradeOptions struct {
	queryJSON   string
	queryType   string
	vehicleMake string
	model       string
	year        string
	component   string
	ratingField string
	feature     string

	answer    string
	truthPath string
	cacheDir  string
}

func newGradeCommand() *cobra.Command {
	var opts gradeOptions

	cmd := &cobra.Command{
		Use:   "grade",
		Short: "Grade one answer against NHTSA ground truth",
		Long: `Grade a single free-text answer for a query.

The query can be given as flags (--type, --make, --model, --year, ...)
or as a JSON object via --query, using the same keys as corpus records.
The answer comes from --answer or stdin.

Ground truth is fetched live from the NHTSA API unless --truth points
to a JSON file with the prepared records.`,
		Args: cobra.NoArgs,
		Example: `  safegrade grade --type recalls --make Honda --model Civic --year 2022 \
      --answer "Yes, there are 2 recalls."

  echo "It earned a 5-star rating." | safegrade grade \
      --query '{"query_type":"safety_rating","make":"Toyota","model":"Camry","year":"2023"}'`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return gradeCommandE(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.queryJSON, "query", "", "Query as a JSON object (overrides the individual flags)")
	cmd.Flags().StringVar(&opts.queryType, "type", "", "Query type, e.g. recalls, complaints, safety_rating")
	cmd.Flags().StringVar(&opts.vehicleMake, "make", "", "Vehicle make")
	cmd.Flags().StringVar(&opts.model, "model", "", "Vehicle model")
	cmd.Flags().StringVar(&opts.year, "year", "", "Model year")
	cmd.Flags().StringVar(&opts.component, "component", "", "Component filter for complaint queries")
	cmd.Flags().StringVar(&opts.ratingField, "rating-field", "", "Rating field for safety_rating queries")
	cmd.Flags().StringVar(&opts.feature, "feature", "", "Feature field for safety_features queries")
	cmd.Flags().StringVar(&opts.answer, "answer", "", "Answer text (default: read from stdin)")
	cmd.Flags().StringVar(&opts.truthPath, "truth", "", "JSON file with prepared ground truth instead of a live lookup")
	cmd.Flags().StringVar(&opts.cacheDir, "cache-dir", "", "Cache API payloads in this directory")

	return cmd
}

func gradeCommandE(cmd *cobra.Command, opts gradeOptions) error {
	query, err := buildQuery(opts)
	if err != nil {
		return err
	}

	answer := opts.answer
	if answer == "" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("reading answer from stdin: %w", err)
		}
		answer = strings.TrimSpace(string(data))
	}
	if answer == "" {
		return fmt.Errorf("no answer given: pass --answer or pipe text to stdin")
	}

	truth, err := loadTruth(cmd, opts, query)
	if err != nil {
		return err
	}

	score := grading.Grade(query, truth, answer)

	verdict := "PASS"
	if score < models.PassThreshold {
		verdict = "FAIL"
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Score: %.2f (%s, threshold %.2f)\n", score, verdict, models.PassThreshold)

	return nil
}

func buildQuery(opts gradeOptions) (*models.Query, error) {
	if opts.queryJSON != "" {
		var record map[string]any
		if err := json.Unmarshal([]byte(opts.queryJSON), &record); err != nil {
			return nil, fmt.Errorf("parsing --query: %w", err)
		}
		return models.DecodeQuery(record)
	}

	query := &models.Query{
		Type:            models.QueryType(opts.queryType),
		Make:            opts.vehicleMake,
		Model:           opts.model,
		Year:            opts.year,
		ComponentFilter: opts.component,
		RatingField:     opts.ratingField,
		Feature:         opts.feature,
	}

	if err := query.Validate(); err != nil {
		return nil, err
	}

	return query, nil
}

func loadTruth(cmd *cobra.Command, opts gradeOptions, query *models.Query) (*models.GroundTruth, error) {
	if opts.truthPath != "" {
		data, err := os.ReadFile(opts.truthPath)
		if err != nil {
			return nil, err
		}

		var truth models.GroundTruth
		if err := json.Unmarshal(data, &truth); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", opts.truthPath, err)
		}

		return &truth, nil
	}

	provider := nhtsa.NewProvider(nhtsa.NewClient(nhtsa.WithCache(nhtsa.NewCache(opts.cacheDir))))

	return nhtsa.ResolveGroundTruth(cmd.Context(), provider, query), nil
}
