package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spboyer/safegrade/internal/models"
	"github.com/stretchr/testify/require"
)

func TestProbeRequiresVehicleFlags(t *testing.T) {
	for _, sub := range []string{"recalls", "complaints", "rating"} {
		t.Run(sub, func(t *testing.T) {
			cmd := newProbeCommand()
			cmd.SetOut(&bytes.Buffer{})
			cmd.SetErr(&bytes.Buffer{})
			cmd.SetArgs([]string{sub})

			err := cmd.Execute()
			require.Error(t, err)
			require.Contains(t, err.Error(), "required flag")
		})
	}

	t.Run("makes", func(t *testing.T) {
		cmd := newProbeCommand()
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs([]string{"makes"})
		require.ErrorContains(t, cmd.Execute(), "year")
	})
}

func TestProbeCampaignRequiresArg(t *testing.T) {
	cmd := newProbeCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"campaign"})
	require.Error(t, cmd.Execute())
}

func TestPrintRatingFields(t *testing.T) {
	var out bytes.Buffer
	printRatingFields(&out, models.SafetyRating{
		"OverallRating":                "5",
		"RolloverRating":               float64(4),
		"NHTSAForwardCollisionWarning": "Standard",
		"VehiclePicture":               "http://example.com/pic.jpg",
	})

	got := out.String()
	require.Contains(t, got, "OverallRating")
	require.Contains(t, got, "5")
	require.Contains(t, got, "RolloverRating")
	require.Contains(t, got, "Standard")
	// Only the known rating and feature fields are printed.
	require.NotContains(t, got, "VehiclePicture")
	require.NotContains(t, got, "OverallSideCrashRating")
}

func TestFormatComponentCounts(t *testing.T) {
	got := formatComponentCounts(map[string]int{
		"AIR BAGS":          3,
		"SERVICE BRAKES":    7,
		"ELECTRICAL SYSTEM": 3,
	})

	lines := strings.Split(strings.TrimSuffix(got, "\n"), "\n")
	require.Len(t, lines, 3)
	// Highest count first, ties broken alphabetically.
	require.Contains(t, lines[0], "SERVICE BRAKES")
	require.Contains(t, lines[1], "AIR BAGS")
	require.Contains(t, lines[2], "ELECTRICAL SYSTEM")
}

func TestTruncate(t *testing.T) {
	require.Equal(t, "short", truncate("short", 10))
	require.Equal(t, "exact", truncate("exact", 5))
	require.Equal(t, "long…", truncate("longer than that", 5))
}
