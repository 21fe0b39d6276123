package evaluation

import (
	"github.com/spboyer/safegrade/internal/models"
	"github.com/spboyer/safegrade/internal/statistics"
)

// Compare pairs a base-model run with a candidate run over the same
// corpus.
func Compare(base, candidate *models.EvaluationOutcome) *models.ComparisonOutcome {
	return &models.ComparisonOutcome{
		Base:        base,
		Candidate:   candidate,
		Improvement: candidate.Digest.AvgScore - base.Digest.AvgScore,
	}
}

// NormalizedGain reports what fraction of the base model's remaining
// headroom the candidate captured.
func NormalizedGain(c *models.ComparisonOutcome) float64 {
	return statistics.Improvement(c.Base.Digest.AvgScore, c.Candidate.Digest.AvgScore)
}
