package grading

import (
	"regexp"
	"strconv"
	"strings"
)

var digitRuns = regexp.MustCompile(`\d+`)

// extractNumbers returns every contiguous digit run in text as a base-10
// integer, in order of appearance. Runs too large for an int are skipped.
func extractNumbers(text string) []int {
	matches := digitRuns.FindAllString(text, -1)
	nums := make([]int, 0, len(matches))
	for _, m := range matches {
		n, err := strconv.Atoi(m)
		if err != nil {
			continue
		}
		nums = append(nums, n)
	}
	return nums
}

// containsAny reports whether any of the phrases occurs in text. The caller
// lowercases text once; phrases are lowercased here so ground-truth tokens
// match case-insensitively.
func containsAny(text string, phrases []string) bool {
	for _, p := range phrases {
		if p == "" {
			continue
		}
		if strings.Contains(text, strings.ToLower(p)) {
			return true
		}
	}
	return false
}

// stance classifies whether free text asserts or denies a condition.
type stance struct {
	saysNo  bool
	saysYes bool
}

// detectStance applies the negation-priority rule: a text that hits any
// negative phrase is negative, full stop. Affirmative only counts when no
// negative phrase occurs, so "No recalls have been found" never reads as a
// yes even though "found" is an affirmative token.
func detectStance(text string, affirmative, negative []string) stance {
	s := stance{saysNo: containsAny(text, negative)}
	s.saysYes = !s.saysNo && containsAny(text, affirmative)
	return s
}
