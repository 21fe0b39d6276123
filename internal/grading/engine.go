// Package grading scores free-text answers about vehicle safety against
// ground truth resolved from the NHTSA database. The engine is a pure
// function: no I/O, no state, and a defined score in [0, 1] for every
// reachable input, including empty answers and absent ground truth.
package grading

import (
	"math"
	"strconv"
	"strings"

	"github.com/spboyer/safegrade/internal/models"
)

// NeutralScore is returned when correctness cannot be judged: unknown query
// types and unavailable safety ratings. Callers must not treat it as an
// engine failure.
const NeutralScore = 0.5

// Phrase vocabularies are a grading contract, not a tuning surface: the
// corpora and the regression tests pin their behavior.
var (
	recallNegative = []string{"no recall", "none", "0 recall"}

	complaintNegative = []string{
		"no complaints", "no issues", "no problems", "none reported",
		"no reported", "haven't been filed", "have not been filed",
		"0 complaints", "zero complaints", "none filed", "no filed",
	}
	complaintAffirmative = []string{
		"complaint", "issue", "problem", "reported", "filed", "owners report",
	}

	featureNegative = []string{
		"not standard", "not included", "not equipped", "not available",
		"optional", "is not", "does not have", "doesn't have",
	}
	featureAffirmative = []string{"yes", "standard", "included", "equipped", "available"}
)

// Grade maps a candidate answer to a score in [0, 1] for the given query and
// ground truth. Missing answer text behaves as empty text; nil ground-truth
// pieces behave as "nothing on record" (zero counts, no rating).
func Grade(q *models.Query, truth *models.GroundTruth, answer string) float64 {
	if q == nil {
		return NeutralScore
	}
	if truth == nil {
		truth = &models.GroundTruth{}
	}
	text := strings.ToLower(answer)

	switch q.Type {
	case models.QueryRecalls:
		return gradeRecalls(truth.Recalls, text)
	case models.QueryRecallCount:
		return gradeRecallCount(truth.Recalls, text)
	case models.QueryComplaints:
		return gradeComplaints(q, truth.Complaints, text)
	case models.QueryComplaintCount:
		return gradeComplaintCount(truth.Complaints, text)
	case models.QuerySafetyRating:
		return gradeSafetyRating(q, truth.Rating, text)
	case models.QuerySafetyFeatures:
		return gradeSafetyFeatures(q, truth.Rating, text)
	case models.QueryComparison:
		return gradeComparison(q, truth.VehicleRatings, text)
	default:
		// Unknown query types stay neutral so newer generators don't break
		// older grading runs.
		return NeutralScore
	}
}

func gradeRecalls(rec *models.RecallRecord, text string) float64 {
	if rec == nil {
		rec = &models.RecallRecord{}
	}
	hasRecalls := rec.Count > 0

	affirmative := []string{"yes", "recall", "found", strconv.Itoa(rec.Count)}
	st := detectStance(text, affirmative, recallNegative)

	switch {
	case hasRecalls && st.saysYes:
		// Base credit for the right direction, bonus for naming campaigns.
		if len(rec.CampaignIDs) == 0 {
			return 0.7
		}
		mentioned := 0
		for _, id := range rec.CampaignIDs {
			if id != "" && strings.Contains(text, strings.ToLower(id)) {
				mentioned++
			}
		}
		bonus := 0.3 * float64(mentioned) / float64(len(rec.CampaignIDs))
		return math.Min(1.0, 0.7+bonus)
	case !hasRecalls && st.saysNo:
		return 1.0
	default:
		return 0.0
	}
}

func gradeRecallCount(rec *models.RecallRecord, text string) float64 {
	count := 0
	if rec != nil {
		count = rec.Count
	}
	if strings.Contains(text, strconv.Itoa(count)) {
		return 1.0
	}
	nums := extractNumbers(text)
	if len(nums) == 0 {
		return 0.0
	}
	closest := nums[0]
	for _, n := range nums[1:] {
		if n < closest {
			closest = n
		}
	}
	if abs(closest-count) <= 1 {
		return 0.8
	}
	return 0.0
}

func gradeComplaints(q *models.Query, comp *models.ComplaintRecord, text string) float64 {
	count := 0
	if comp != nil {
		count = comp.Count
	}
	hasComplaints := count > 0

	// Naming the specific component outranks the general presence check.
	if q.ComponentFilter != "" && strings.Contains(text, strings.ToLower(q.ComponentFilter)) {
		return 1.0
	}

	st := detectStance(text, complaintAffirmative, complaintNegative)
	switch {
	case hasComplaints && st.saysYes:
		// Existence without specifics is only partial credit.
		return 0.8
	case !hasComplaints && st.saysNo:
		return 1.0
	case hasComplaints && st.saysNo:
		return 0.0 // false denial
	case !hasComplaints && st.saysYes:
		return 0.0 // false claim
	default:
		return NeutralScore
	}
}

// complaintCountTolerance is deliberately wide: complaint totals drift as new
// reports get filed between corpus generation and grading.
const complaintCountTolerance = 20

func gradeComplaintCount(comp *models.ComplaintRecord, text string) float64 {
	count := 0
	if comp != nil {
		count = comp.Count
	}
	if strings.Contains(text, strconv.Itoa(count)) {
		return 1.0
	}
	for _, n := range extractNumbers(text) {
		if abs(n-count) <= complaintCountTolerance {
			return 0.9
		}
	}
	return 0.0
}

func gradeSafetyRating(q *models.Query, rating models.SafetyRating, text string) float64 {
	if rating == nil {
		return NeutralScore // no published rating, cannot verify
	}
	expected := strings.ToLower(rating.Value(q.EffectiveRatingField(), "Not Rated"))
	if containsAny(text, []string{expected, expected + "-star", expected + " star"}) {
		return 1.0
	}
	return 0.0
}

func gradeSafetyFeatures(q *models.Query, rating models.SafetyRating, text string) float64 {
	if rating == nil {
		return NeutralScore
	}
	value := rating.Value(q.Feature, "Not Rated")
	isStandard := strings.EqualFold(value, "standard")

	st := detectStance(text, featureAffirmative, featureNegative)
	switch {
	case isStandard && st.saysYes:
		return 1.0
	case !isStandard && st.saysNo:
		return 1.0
	case isStandard && st.saysNo:
		return 0.0
	case !isStandard && st.saysYes:
		return 0.0
	default:
		// Ground truth IS known here, so an ambiguous answer is weak, not
		// neutral. Distinct from the 0.5 unverifiable case above.
		return 0.3
	}
}

func gradeComparison(q *models.Query, ratings []models.SafetyRating, text string) float64 {
	n := len(q.Vehicles)
	if n == 0 {
		return 0.0
	}
	field := q.EffectiveRatingField()
	share := 1.0 / float64(n)

	score := 0.0
	for i := range q.Vehicles {
		if i >= len(ratings) || ratings[i] == nil {
			continue
		}
		expected := strings.ToLower(ratings[i].Value(field, ""))
		if expected == "" {
			// An empty expected value would substring-match any answer.
			continue
		}
		if strings.Contains(text, expected) {
			score += share
		}
	}
	return math.Min(1.0, score)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
