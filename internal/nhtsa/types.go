package nhtsa

import "github.com/spboyer/safegrade/internal/models"

// RecallResponse is the shape of /recalls/recallsByVehicle and
// /recalls/campaignNumber payloads.
type RecallResponse struct {
	Count   int      `json:"Count"`
	Results []Recall `json:"results"`
}

// Recall is a single recall entry. Only the fields the grader and the probe
// command consume are mapped; the API carries many more.
type Recall struct {
	NHTSACampaignNumber string `json:"NHTSACampaignNumber"`
	Component           string `json:"Component"`
	Summary             string `json:"Summary"`
	Consequence         string `json:"Consequence"`
	Remedy              string `json:"Remedy"`
	ReportReceivedDate  string `json:"ReportReceivedDate"`
}

// CampaignIDs returns the ordered campaign numbers of the recall set.
func (r *RecallResponse) CampaignIDs() []string {
	ids := make([]string, 0, len(r.Results))
	for _, rec := range r.Results {
		if rec.NHTSACampaignNumber != "" {
			ids = append(ids, rec.NHTSACampaignNumber)
		}
	}
	return ids
}

// ComplaintResponse is the shape of /complaints/complaintsByVehicle payloads.
// Note the lowercase "count": the complaints endpoint disagrees with the
// recalls endpoint on casing.
type ComplaintResponse struct {
	Count   int         `json:"count"`
	Results []Complaint `json:"results"`
}

// Complaint is a single owner complaint entry.
type Complaint struct {
	ODINumber  int    `json:"odiNumber"`
	Components string `json:"components"`
	Summary    string `json:"summary"`
	DateFiled  string `json:"dateComplaintFiled"`
	Crash      bool   `json:"crash"`
	Fire       bool   `json:"fire"`
}

// RatingSummaryResponse is the first hop of the two-step safety rating
// lookup: /SafetyRatings/modelyear/{year}/make/{make}/model/{model}.
type RatingSummaryResponse struct {
	Count   int             `json:"Count"`
	Results []RatingSummary `json:"Results"`
}

type RatingSummary struct {
	VehicleID          int    `json:"VehicleId"`
	VehicleDescription string `json:"VehicleDescription"`
}

// RatingDetailResponse is the second hop: /SafetyRatings/VehicleId/{id}.
// Each result is kept schema-loose because the rating attributes (star
// ratings, feature availability) vary by model year.
type RatingDetailResponse struct {
	Count   int                   `json:"Count"`
	Results []models.SafetyRating `json:"Results"`
}

// VehicleListResponse is the shape of the /products/vehicle/{makes,models}
// listing endpoints.
type VehicleListResponse struct {
	Count   int            `json:"count"`
	Results []VehicleEntry `json:"results"`
}

type VehicleEntry struct {
	Make  string `json:"make"`
	Model string `json:"model"`
}
