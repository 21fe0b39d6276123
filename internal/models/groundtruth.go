package models

import (
	"fmt"
	"math"
)

// RecallRecord is the resolved recall facts for one vehicle.
type RecallRecord struct {
	Count       int      `json:"count"`
	CampaignIDs []string `json:"campaign_ids"`
}

// ComplaintRecord is the resolved complaint facts for one vehicle.
type ComplaintRecord struct {
	Count int `json:"count"`
}

// SafetyRating maps NHTSA rating/feature field names to their values. Values
// are small integers (star counts) or categorical strings ("Standard",
// "Optional", "Not Rated"). A nil map means no rating exists for the
// vehicle/year.
type SafetyRating map[string]any

// Value returns the string form of a rating field, or fallback when the field
// is absent. JSON decoding turns numbers into float64, so integral floats are
// rendered without a fractional part ("5", not "5e+00").
func (r SafetyRating) Value(field, fallback string) string {
	if r == nil {
		return fallback
	}
	v, ok := r[field]
	if !ok || v == nil {
		return fallback
	}
	switch t := v.(type) {
	case string:
		return t
	case float64:
		if t == math.Trunc(t) {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprintf("%v", t)
	case int:
		return fmt.Sprintf("%d", t)
	default:
		return fmt.Sprintf("%v", t)
	}
}

// GroundTruth bundles the facts a single grading call can consult. Only the
// slices relevant to the query type need to be populated; the engine treats
// nil pieces as "unavailable".
type GroundTruth struct {
	Recalls    *RecallRecord    `json:"recalls,omitempty"`
	Complaints *ComplaintRecord `json:"complaints,omitempty"`

	// Rating is the safety rating for the query's primary vehicle.
	Rating SafetyRating `json:"rating,omitempty"`

	// VehicleRatings is index-aligned with Query.Vehicles for comparison
	// queries. A nil entry means that vehicle has no published rating.
	VehicleRatings []SafetyRating `json:"vehicle_ratings,omitempty"`
}
