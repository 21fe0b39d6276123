package statistics

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMean(t *testing.T) {
	require.Equal(t, 0.0, Mean(nil))
	require.Equal(t, 0.5, Mean([]float64{0.0, 1.0}))
	require.InDelta(t, 0.7, Mean([]float64{0.7, 0.7, 0.7}), 1e-12)
}

func TestStdDev(t *testing.T) {
	require.Equal(t, 0.0, StdDev(nil))
	require.Equal(t, 0.0, StdDev([]float64{0.9}))
	require.InDelta(t, 0.5, StdDev([]float64{0.0, 1.0}), 1e-12)
	require.Equal(t, 0.0, StdDev([]float64{0.8, 0.8, 0.8}))
}

func TestPassRate(t *testing.T) {
	require.Equal(t, 0.0, PassRate(nil, 0.7))
	require.InDelta(t, 0.5, PassRate([]float64{1.0, 0.5, 0.7, 0.0}, 0.7), 1e-12)
	// threshold is inclusive
	require.Equal(t, 1.0, PassRate([]float64{0.7}, 0.7))
}

func TestBootstrapCI(t *testing.T) {
	t.Run("degenerate for small samples", func(t *testing.T) {
		ci := BootstrapCI([]float64{0.8}, 0.95)
		require.Equal(t, 0.8, ci.Lower)
		require.Equal(t, 0.8, ci.Upper)
		require.Equal(t, 0, ci.NumBootstraps)
	})

	t.Run("bounds bracket the mean", func(t *testing.T) {
		scores := []float64{0.0, 0.5, 0.7, 0.8, 0.8, 0.9, 1.0, 1.0, 0.3, 0.6}
		ci := BootstrapCIWithSeed(scores, 0.95, 42)
		require.LessOrEqual(t, ci.Lower, ci.Mean)
		require.GreaterOrEqual(t, ci.Upper, ci.Mean)
		require.Equal(t, DefaultBootstrapIterations, ci.NumBootstraps)
	})

	t.Run("seeded runs are reproducible", func(t *testing.T) {
		scores := []float64{0.2, 0.4, 0.6, 0.8, 1.0}
		a := BootstrapCIWithSeed(scores, 0.95, 7)
		b := BootstrapCIWithSeed(scores, 0.95, 7)
		require.Equal(t, a, b)
	})
}

func TestImprovement(t *testing.T) {
	require.Equal(t, 0.0, Improvement(1.0, 1.0))
	require.Equal(t, 1.0, Improvement(0.5, 1.0))
	require.Equal(t, 0.0, Improvement(0.6, 0.6))
	require.InDelta(t, 0.5, Improvement(0.6, 0.8), 1e-12)
}
