package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/spboyer/safegrade/internal/models"
	"github.com/spboyer/safegrade/internal/nhtsa"
	"github.com/spf13/cobra"
)

type probeOptions struct {
	make     string
	model    string
	year     string
	cacheDir string
}

func (o *probeOptions) client() *nhtsa.Client {
	return nhtsa.NewClient(nhtsa.WithCache(nhtsa.NewCache(o.cacheDir)))
}

func newProbeCommand() *cobra.Command {
	var opts probeOptions

	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Query the NHTSA API directly",
		Long: `Query NHTSA endpoints for a vehicle without grading anything.

Useful for checking what ground truth an evaluation will grade against.`,
	}

	cmd.PersistentFlags().StringVar(&opts.cacheDir, "cache-dir", "", "Cache API payloads in this directory")

	cmd.AddCommand(newProbeRecallsCommand(&opts))
	cmd.AddCommand(newProbeComplaintsCommand(&opts))
	cmd.AddCommand(newProbeRatingCommand(&opts))
	cmd.AddCommand(newProbeCampaignCommand(&opts))
	cmd.AddCommand(newProbeMakesCommand(&opts))
	cmd.AddCommand(newProbeModelsCommand(&opts))

	return cmd
}

func addVehicleFlags(cmd *cobra.Command, opts *probeOptions) {
	cmd.Flags().StringVar(&opts.make, "make", "", "Vehicle make, e.g. Honda")
	cmd.Flags().StringVar(&opts.model, "model", "", "Vehicle model, e.g. Civic")
	cmd.Flags().StringVar(&opts.year, "year", "", "Model year, e.g. 2022")

	cmd.MarkFlagRequired("make")  //nolint:errcheck
	cmd.MarkFlagRequired("model") //nolint:errcheck
	cmd.MarkFlagRequired("year")  //nolint:errcheck
}

func newProbeRecallsCommand(opts *probeOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recalls",
		Short: "List recalls for a vehicle",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := opts.client().Recalls(cmd.Context(), opts.make, opts.model, opts.year)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%d recall(s) for %s %s %s\n", resp.Count, opts.year, opts.make, opts.model)

			for _, rec := range resp.Results {
				fmt.Fprintf(out, "\n%s %s\n", padRight(rec.NHTSACampaignNumber, 12), rec.Component)
				fmt.Fprintf(out, "  %s\n", truncate(rec.Summary, 120))
			}

			return nil
		},
	}

	addVehicleFlags(cmd, opts)
	return cmd
}

func newProbeComplaintsCommand(opts *probeOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "complaints",
		Short: "List owner complaints for a vehicle",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := opts.client().Complaints(cmd.Context(), opts.make, opts.model, opts.year)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%d complaint(s) for %s %s %s\n", resp.Count, opts.year, opts.make, opts.model)

			byComponent := map[string]int{}
			for _, c := range resp.Results {
				byComponent[c.Components]++
			}

			if len(byComponent) > 0 {
				fmt.Fprintln(out, "\nBy component:")
				fmt.Fprint(out, formatComponentCounts(byComponent))
			}

			return nil
		},
	}

	addVehicleFlags(cmd, opts)
	return cmd
}

func newProbeRatingCommand(opts *probeOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rating",
		Short: "Show safety ratings for a vehicle",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client := opts.client()
			out := cmd.OutOrStdout()

			summaries, err := client.RatingSummaries(cmd.Context(), opts.make, opts.model, opts.year)
			if err != nil {
				return err
			}

			if len(summaries.Results) == 0 {
				fmt.Fprintf(out, "No safety ratings for %s %s %s\n", opts.year, opts.make, opts.model)
				return nil
			}

			for _, summary := range summaries.Results {
				detail, err := client.RatingByVehicleID(cmd.Context(), summary.VehicleID)
				if err != nil {
					return err
				}

				fmt.Fprintf(out, "%s (VehicleId %d)\n", summary.VehicleDescription, summary.VehicleID)

				for _, rating := range detail.Results {
					printRatingFields(out, rating)
				}
			}

			return nil
		},
	}

	addVehicleFlags(cmd, opts)
	return cmd
}

func newProbeCampaignCommand(opts *probeOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "campaign <campaign-number>",
		Short: "Look up one recall campaign",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := opts.client().RecallByCampaign(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()

			if len(resp.Results) == 0 {
				fmt.Fprintf(out, "No recall found for campaign %s\n", args[0])
				return nil
			}

			for _, rec := range resp.Results {
				fmt.Fprintf(out, "%s — %s\n", rec.NHTSACampaignNumber, rec.Component)
				fmt.Fprintf(out, "Summary:     %s\n", rec.Summary)
				fmt.Fprintf(out, "Consequence: %s\n", rec.Consequence)
				fmt.Fprintf(out, "Remedy:      %s\n", rec.Remedy)
			}

			return nil
		},
	}

	return cmd
}

func newProbeMakesCommand(opts *probeOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "makes",
		Short: "List makes with recall data for a model year",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := opts.client().Makes(cmd.Context(), opts.year)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%d make(s) for %s:\n", resp.Count, opts.year)
			for _, entry := range resp.Results {
				fmt.Fprintf(out, "  %s\n", entry.Make)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&opts.year, "year", "", "Model year, e.g. 2022")
	cmd.MarkFlagRequired("year") //nolint:errcheck

	return cmd
}

func newProbeModelsCommand(opts *probeOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "models",
		Short: "List models with recall data for a make and model year",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := opts.client().Models(cmd.Context(), opts.year, opts.make)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%d model(s) for %s %s:\n", resp.Count, opts.year, opts.make)
			for _, entry := range resp.Results {
				fmt.Fprintf(out, "  %s\n", entry.Model)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&opts.make, "make", "", "Vehicle make, e.g. Honda")
	cmd.Flags().StringVar(&opts.year, "year", "", "Model year, e.g. 2022")
	cmd.MarkFlagRequired("make") //nolint:errcheck
	cmd.MarkFlagRequired("year") //nolint:errcheck

	return cmd
}

func printRatingFields(out io.Writer, rating models.SafetyRating) {
	fields := []string{
		"OverallRating",
		"OverallFrontCrashRating",
		"OverallSideCrashRating",
		"RolloverRating",
		"NHTSAForwardCollisionWarning",
		"NHTSALaneDepartureWarning",
		"NHTSAElectronicStabilityControl",
	}

	for _, field := range fields {
		value := rating.Value(field, "")
		if value == "" {
			continue
		}
		fmt.Fprintf(out, "  %s %s\n", padRight(field, 34), value)
	}
}

func formatComponentCounts(byComponent map[string]int) string {
	components := make([]string, 0, len(byComponent))
	for component := range byComponent {
		components = append(components, component)
	}
	sort.Slice(components, func(i, j int) bool {
		if byComponent[components[i]] != byComponent[components[j]] {
			return byComponent[components[i]] > byComponent[components[j]]
		}
		return components[i] < components[j]
	})

	var b strings.Builder
	for _, component := range components {
		b.WriteString(fmt.Sprintf("  %s %d\n", padRight(component, 30), byComponent[component]))
	}
	return b.String()
}

func truncate(s string, width int) string {
	return runewidth.Truncate(s, width, "…")
}
