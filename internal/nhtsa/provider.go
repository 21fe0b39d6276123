package nhtsa

import (
	"context"
	"log/slog"

	"github.com/spboyer/safegrade/internal/models"
)

// Provider resolves ground truth for grading. Implementations must absorb
// transport failures into the documented default shapes: the grading engine
// has no failure path, so a lookup error must surface as "nothing on record"
// (or an absent rating), never as an error.
type Provider interface {
	FetchRecalls(ctx context.Context, make, model, year string) *models.RecallRecord
	FetchComplaints(ctx context.Context, make, model, year string) *models.ComplaintRecord
	FetchSafetyRating(ctx context.Context, make, model, year string) models.SafetyRating
}

// APIProvider is the live [Provider] backed by a [Client].
type APIProvider struct {
	client *Client
}

// NewProvider wraps an API client in the failure-absorbing Provider contract.
func NewProvider(client *Client) *APIProvider {
	return &APIProvider{client: client}
}

// FetchRecalls returns the recall record for a vehicle, or a zero record on
// any lookup failure.
func (p *APIProvider) FetchRecalls(ctx context.Context, make, model, year string) *models.RecallRecord {
	resp, err := p.client.Recalls(ctx, make, model, year)
	if err != nil {
		slog.Debug("recall lookup failed, defaulting to zero record",
			"make", make, "model", model, "year", year, "error", err)
		return &models.RecallRecord{CampaignIDs: []string{}}
	}
	return &models.RecallRecord{
		Count:       resp.Count,
		CampaignIDs: resp.CampaignIDs(),
	}
}

// FetchComplaints returns the complaint record for a vehicle, or a zero
// record on any lookup failure.
func (p *APIProvider) FetchComplaints(ctx context.Context, make, model, year string) *models.ComplaintRecord {
	resp, err := p.client.Complaints(ctx, make, model, year)
	if err != nil {
		slog.Debug("complaint lookup failed, defaulting to zero record",
			"make", make, "model", model, "year", year, "error", err)
		return &models.ComplaintRecord{}
	}
	return &models.ComplaintRecord{Count: resp.Count}
}

// FetchSafetyRating returns the rating attribute map for a vehicle, or nil
// when the vehicle has no published rating or the lookup fails.
func (p *APIProvider) FetchSafetyRating(ctx context.Context, make, model, year string) models.SafetyRating {
	summaries, err := p.client.RatingSummaries(ctx, make, model, year)
	if err != nil {
		slog.Debug("rating summary lookup failed",
			"make", make, "model", model, "year", year, "error", err)
		return nil
	}
	if summaries.Count == 0 || len(summaries.Results) == 0 {
		return nil
	}

	detail, err := p.client.RatingByVehicleID(ctx, summaries.Results[0].VehicleID)
	if err != nil {
		slog.Debug("rating detail lookup failed",
			"vehicle_id", summaries.Results[0].VehicleID, "error", err)
		return nil
	}
	if len(detail.Results) == 0 {
		return nil
	}
	return detail.Results[0]
}

// ResolveGroundTruth gathers exactly the records the query type needs. The
// grading engine itself never does I/O; this is the seam where the caller
// captures ground truth before grading.
func ResolveGroundTruth(ctx context.Context, p Provider, q *models.Query) *models.GroundTruth {
	truth := &models.GroundTruth{}
	if q == nil {
		return truth
	}

	switch q.Type {
	case models.QueryRecalls, models.QueryRecallCount:
		truth.Recalls = p.FetchRecalls(ctx, q.Make, q.Model, q.Year)
	case models.QueryComplaints, models.QueryComplaintCount:
		truth.Complaints = p.FetchComplaints(ctx, q.Make, q.Model, q.Year)
	case models.QuerySafetyRating, models.QuerySafetyFeatures:
		truth.Rating = p.FetchSafetyRating(ctx, q.Make, q.Model, q.Year)
	case models.QueryComparison:
		truth.VehicleRatings = make([]models.SafetyRating, len(q.Vehicles))
		for i, v := range q.Vehicles {
			truth.VehicleRatings[i] = p.FetchSafetyRating(ctx, v.Make, v.Model, v.Year)
		}
	}
	return truth
}
