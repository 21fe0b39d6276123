package reporting

import (
	"fmt"
	"strings"
	"time"

	"github.com/spboyer/safegrade/internal/models"
)

// InterpretScore returns a plain-language verdict for an average score (0–1).
func InterpretScore(score float64) string {
	switch {
	case score >= 0.8:
		return "Excellent performance"
	case score >= 0.7:
		return "Good performance - meets threshold"
	case score >= 0.5:
		return "Moderate performance - needs improvement"
	default:
		return "Poor performance - check model and training data"
	}
}

// InterpretPassRate returns a human-readable explanation of a pass rate (0–1).
func InterpretPassRate(rate float64) string {
	pct := rate * 100
	switch {
	case pct >= 100:
		return fmt.Sprintf("All examples passed (%.0f%%)", pct)
	case pct >= 80:
		return fmt.Sprintf("Most examples passed (%.0f%%)", pct)
	case pct >= 50:
		return fmt.Sprintf("About half the examples passed (%.0f%%)", pct)
	default:
		return fmt.Sprintf("Few examples passed (%.0f%%)", pct)
	}
}

// FormatSummaryReport produces a plain-language report from an EvaluationOutcome.
func FormatSummaryReport(outcome *models.EvaluationOutcome) string {
	var b strings.Builder

	d := outcome.Digest
	duration := time.Duration(outcome.DurationMs) * time.Millisecond

	b.WriteString("=== Evaluation Summary ===\n\n")
	b.WriteString(fmt.Sprintf("Model:         %s (%s)\n", outcome.ModelID, outcome.EngineType))
	b.WriteString(fmt.Sprintf("Corpus:        %s\n", outcome.Corpus))
	b.WriteString(fmt.Sprintf("Average Score: %.2f — %s\n", d.AvgScore, InterpretScore(d.AvgScore)))
	b.WriteString(fmt.Sprintf("Pass Rate:     %s\n", InterpretPassRate(d.PassRate)))
	b.WriteString(fmt.Sprintf("Duration:      %v\n", duration))

	if d.TotalExamples > 0 {
		failed := d.TotalExamples - d.Passed - d.Errors
		if failed < 0 {
			failed = 0
		}
		b.WriteString(fmt.Sprintf("Examples:      %d passed, %d failed, %d errors out of %d total\n",
			d.Passed, failed, d.Errors, d.TotalExamples))
	}

	if d.ScoreCIUpper > 0 {
		b.WriteString(fmt.Sprintf("95%% CI:        [%.2f, %.2f]\n", d.ScoreCILower, d.ScoreCIUpper))
	}

	if len(d.ByType) > 0 {
		b.WriteString("\nBy query type:\n")
		for _, td := range d.ByType {
			b.WriteString(fmt.Sprintf("  %-16s %.2f avg (%.0f%% pass rate, n=%d)\n",
				td.QueryType, td.AvgScore, td.PassRate*100, td.Count))
		}
	}

	return b.String()
}

// FormatComparisonReport summarizes a base vs candidate run.
func FormatComparisonReport(c *models.ComparisonOutcome) string {
	var b strings.Builder

	b.WriteString("=== Model Comparison ===\n\n")
	b.WriteString(fmt.Sprintf("Base (%s):      %.2f avg, %s\n",
		c.Base.ModelID, c.Base.Digest.AvgScore, InterpretPassRate(c.Base.Digest.PassRate)))
	b.WriteString(fmt.Sprintf("Candidate (%s): %.2f avg, %s\n",
		c.Candidate.ModelID, c.Candidate.Digest.AvgScore, InterpretPassRate(c.Candidate.Digest.PassRate)))

	if c.Base.Digest.AvgScore > 0 {
		b.WriteString(fmt.Sprintf("\nImprovement: %+.2f (%+.1f%%)\n",
			c.Improvement, c.Improvement/c.Base.Digest.AvgScore*100))
	} else {
		b.WriteString(fmt.Sprintf("\nImprovement: %+.2f\n", c.Improvement))
	}

	return b.String()
}
