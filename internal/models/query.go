package models

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"
)

// QueryType identifies the kind of question an example asks (e.g. recalls,
// complaint_count). The grading engine dispatches on it.
type QueryType string

const (
	QueryRecalls        QueryType = "recalls"
	QueryRecallCount    QueryType = "recall_count"
	QueryComplaints     QueryType = "complaints"
	QueryComplaintCount QueryType = "complaint_count"
	QuerySafetyRating   QueryType = "safety_rating"
	QuerySafetyFeatures QueryType = "safety_features"
	QueryComparison     QueryType = "comparison"
)

// DefaultRatingField is used when a rating query does not name a field.
const DefaultRatingField = "OverallRating"

// Vehicle identifies one make/model/year triple. Year is a string because the
// NHTSA API and the corpora both carry it that way.
type Vehicle struct {
	Make  string `json:"make" mapstructure:"make"`
	Model string `json:"model" mapstructure:"model"`
	Year  string `json:"year" mapstructure:"year"`
}

func (v Vehicle) String() string {
	return fmt.Sprintf("%s %s %s", v.Year, v.Make, v.Model)
}

// Query is one tagged unit of work for the grading engine: a query type plus
// vehicle identity and type-specific parameters. Only Type is always present.
type Query struct {
	Type QueryType `json:"query_type" mapstructure:"query_type"`

	Make  string `json:"make,omitempty" mapstructure:"make"`
	Model string `json:"model,omitempty" mapstructure:"model"`
	Year  string `json:"year,omitempty" mapstructure:"year"`

	// ComponentFilter narrows a complaints query to one component (e.g. "BRAKES").
	ComponentFilter string `json:"component_filter,omitempty" mapstructure:"component_filter"`

	// RatingField selects a safety-rating attribute; empty means [DefaultRatingField].
	RatingField string `json:"rating_field,omitempty" mapstructure:"rating_field"`

	// Feature selects a safety-feature attribute for safety_features queries.
	Feature string `json:"feature,omitempty" mapstructure:"feature"`

	// Vehicles is the ordered comparison set. Used only by [QueryComparison].
	Vehicles []Vehicle `json:"vehicles,omitempty" mapstructure:"vehicles"`
}

// Vehicle returns the primary vehicle identity of the query.
func (q *Query) Vehicle() Vehicle {
	return Vehicle{Make: q.Make, Model: q.Model, Year: q.Year}
}

// EffectiveRatingField returns RatingField, or the overall-rating default.
func (q *Query) EffectiveRatingField() string {
	if q.RatingField == "" {
		return DefaultRatingField
	}
	return q.RatingField
}

// knownRatingFields are the NHTSA rating attributes the generators emit. The
// ground-truth mapping is schema-loose, so these exist only to catch typos at
// the construction boundary, not to constrain lookups.
var knownRatingFields = map[string]bool{
	"OverallRating":           true,
	"OverallFrontCrashRating": true,
	"OverallSideCrashRating":  true,
	"RolloverRating":          true,
}

var knownFeatures = map[string]bool{
	"NHTSAForwardCollisionWarning":    true,
	"NHTSALaneDepartureWarning":       true,
	"NHTSAElectronicStabilityControl": true,
}

// Validate checks structural requirements for the query. Unknown query types
// are deliberately NOT an error here: the engine grades them neutrally so new
// generator types don't break existing runs.
func (q *Query) Validate() error {
	if q.Type == "" {
		return fmt.Errorf("query_type is required")
	}
	if q.RatingField != "" && !knownRatingFields[q.RatingField] {
		return fmt.Errorf("unknown rating_field %q", q.RatingField)
	}
	if q.Feature != "" && !knownFeatures[q.Feature] {
		return fmt.Errorf("unknown feature %q", q.Feature)
	}
	if q.Type == QueryComparison && len(q.Vehicles) == 0 {
		return fmt.Errorf("comparison query has no vehicles")
	}
	return nil
}

// DecodeQuery builds a Query from a loosely-typed record, e.g. one JSONL
// corpus object already parsed into a map.
func DecodeQuery(record map[string]any) (*Query, error) {
	var q Query
	if err := mapstructure.Decode(record, &q); err != nil {
		return nil, fmt.Errorf("decode query: %w", err)
	}
	if err := q.Validate(); err != nil {
		return nil, err
	}
	return &q, nil
}
