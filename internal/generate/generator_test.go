package generate

import (
	"strings"
	"testing"

	"github.com/spboyer/safegrade/internal/dataset"
	"github.com/spboyer/safegrade/internal/models"
	"github.com/stretchr/testify/require"
)

func TestGenerateTrainingMix(t *testing.T) {
	g := New(42, nil)
	examples := g.Generate(TrainingCounts)

	total := TrainingCounts.Recalls + TrainingCounts.RecallCounts +
		TrainingCounts.Complaints + TrainingCounts.ComponentIssues +
		TrainingCounts.ComplaintCounts + TrainingCounts.Ratings +
		TrainingCounts.SpecificRatings + TrainingCounts.Features +
		TrainingCounts.Comparisons
	require.Len(t, examples, total)

	byType := Breakdown(examples)
	require.Equal(t, TrainingCounts.Recalls, byType[models.QueryRecalls])
	require.Equal(t, TrainingCounts.RecallCounts, byType[models.QueryRecallCount])
	require.Equal(t, TrainingCounts.Complaints+TrainingCounts.ComponentIssues, byType[models.QueryComplaints])
	require.Equal(t, TrainingCounts.ComplaintCounts, byType[models.QueryComplaintCount])
	require.Equal(t, TrainingCounts.Ratings+TrainingCounts.SpecificRatings, byType[models.QuerySafetyRating])
	require.Equal(t, TrainingCounts.Features, byType[models.QuerySafetyFeatures])
	require.Equal(t, TrainingCounts.Comparisons, byType[models.QueryComparison])
}

func TestGenerateExampleShape(t *testing.T) {
	g := New(1, nil)

	for _, ex := range g.Generate(ValidationCounts) {
		require.Len(t, ex.Messages, 2)
		require.Equal(t, "system", ex.Messages[0].Role)
		require.Equal(t, SystemPrompt, ex.Messages[0].Content)
		require.Equal(t, "user", ex.Messages[1].Role)
		require.NotEmpty(t, ex.Messages[1].Content)
		require.NoError(t, ex.Query.Validate())

		switch ex.Query.Type {
		case models.QueryComparison:
			require.Len(t, ex.Query.Vehicles, 2)
			a, b := ex.Query.Vehicles[0], ex.Query.Vehicles[1]
			require.Equal(t, a.Year, b.Year)
			require.False(t, a.Make == b.Make && a.Model == b.Model)
		default:
			require.NotEmpty(t, ex.Query.Make)
			require.NotEmpty(t, ex.Query.Model)
			require.NotEmpty(t, ex.Query.Year)
		}
	}
}

func TestGenerateDeterministic(t *testing.T) {
	first := New(7, nil).Generate(ValidationCounts)
	second := New(7, nil).Generate(ValidationCounts)

	require.Equal(t, len(first), len(second))

	for i := range first {
		require.Equal(t, first[i].Question(), second[i].Question())
		require.Equal(t, first[i].Query.Type, second[i].Query.Type)
	}
}

func TestGenerateCustomRoster(t *testing.T) {
	roster := []dataset.RosterEntry{
		{Make: "Rivian", Model: "R1T", Years: []string{"2022", "2023"}},
		{Make: "Lucid", Model: "Air", Years: []string{"2022", "2023"}},
	}

	g := New(3, roster)
	examples := g.Generate(Counts{Recalls: 5, Comparisons: 3})

	require.Len(t, examples, 8)

	for _, ex := range examples {
		text := ex.Question()
		require.True(t,
			strings.Contains(text, "Rivian") || strings.Contains(text, "Lucid"),
			"question should mention a roster vehicle: %s", text)
	}
}

func TestGenerateComparisonSingleModelRoster(t *testing.T) {
	// One model split across year-range rows: enough entries for the old
	// pair guard, but no contrasting vehicle to compare against.
	roster := []dataset.RosterEntry{
		{Make: "Honda", Model: "Accord", Years: []string{"2022", "2023"}},
		{Make: "Honda", Model: "Accord", Years: []string{"2024", "2025"}},
	}

	g := New(5, roster)
	examples := g.Generate(Counts{Recalls: 4, Comparisons: 6})

	byType := Breakdown(examples)
	require.Equal(t, 4, byType[models.QueryRecalls])
	require.Zero(t, byType[models.QueryComparison])
	require.Len(t, examples, 4)
}

func TestGenerateComponentFilterUppercase(t *testing.T) {
	g := New(11, nil)

	var sawFilter bool

	for _, ex := range g.Generate(Counts{ComponentIssues: 20}) {
		require.Equal(t, models.QueryComplaints, ex.Query.Type)
		require.NotEmpty(t, ex.Query.ComponentFilter)
		require.Equal(t, strings.ToUpper(ex.Query.ComponentFilter), ex.Query.ComponentFilter)
		sawFilter = true
	}

	require.True(t, sawFilter)
}
