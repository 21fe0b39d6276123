package models

import "time"

// PassThreshold is the score at or above which an example counts as passed.
// 0.7 matches the fine-tuning reward threshold the corpora were built for.
const PassThreshold = 0.7

// ExampleOutcome is the graded result of one validation example.
type ExampleOutcome struct {
	Index     int       `json:"index"`
	QueryType QueryType `json:"query_type"`
	Question  string    `json:"question,omitempty"`
	Answer    string    `json:"answer,omitempty"`
	Score     float64   `json:"score"`
	Passed    bool      `json:"passed"`
	ErrorMsg  string    `json:"error,omitempty"`
}

// TypeDigest aggregates scores for one query type.
type TypeDigest struct {
	QueryType QueryType `json:"query_type"`
	Count     int       `json:"count"`
	AvgScore  float64   `json:"avg_score"`
	PassRate  float64   `json:"pass_rate"`
}

// EvaluationDigest summarizes a whole evaluation run.
type EvaluationDigest struct {
	TotalExamples int          `json:"total_examples"`
	Passed        int          `json:"passed"`
	Errors        int          `json:"errors"`
	AvgScore      float64      `json:"avg_score"`
	PassRate      float64      `json:"pass_rate"`
	StdDev        float64      `json:"std_dev"`
	ByType        []TypeDigest `json:"by_type,omitempty"`

	// Confidence bounds on AvgScore from bootstrap resampling, populated when
	// enough examples were graded.
	ScoreCILower float64 `json:"score_ci_lower,omitempty"`
	ScoreCIUpper float64 `json:"score_ci_upper,omitempty"`
}

// EvaluationOutcome is the complete result of grading one model against one
// validation corpus.
type EvaluationOutcome struct {
	ModelID    string           `json:"model_id"`
	EngineType string           `json:"engine_type"`
	Corpus     string           `json:"corpus"`
	Timestamp  time.Time        `json:"timestamp"`
	Digest     EvaluationDigest `json:"summary"`
	Examples   []ExampleOutcome `json:"examples"`
	DurationMs int64            `json:"duration_ms"`
}

// ComparisonOutcome holds the paired results of a base vs fine-tuned run.
type ComparisonOutcome struct {
	Base      *EvaluationOutcome `json:"base"`
	Candidate *EvaluationOutcome `json:"candidate"`

	// Improvement is candidate average score minus base average score.
	Improvement float64 `json:"improvement"`
}
