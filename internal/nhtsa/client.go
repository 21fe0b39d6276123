// Package nhtsa talks to the public NHTSA API (api.nhtsa.gov) and resolves
// its responses into the normalized ground-truth records the grading engine
// consumes.
package nhtsa

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// DefaultBaseURL is the production NHTSA API endpoint.
const DefaultBaseURL = "https://api.nhtsa.gov"

const defaultTimeout = 15 * time.Second

// Client is a minimal NHTSA API client. All methods are safe for concurrent
// use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	cache      *Cache
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithBaseURL points the client at a different endpoint (tests use httptest).
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) { c.baseURL = baseURL }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

// WithCache enables the zstd payload cache.
func WithCache(cache *Cache) ClientOption {
	return func(c *Client) { c.cache = cache }
}

// NewClient creates an NHTSA API client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// getJSON fetches path?query and decodes the JSON payload into out,
// consulting the cache first.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	if data, ok := c.cache.Get(u); ok {
		slog.Debug("nhtsa cache hit", "url", u)
		return json.Unmarshal(data, out)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("nhtsa: building request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("nhtsa: %s: %w", path, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("nhtsa: %s returned HTTP %d", path, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("nhtsa: reading %s: %w", path, err)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("nhtsa: decoding %s: %w", path, err)
	}

	if err := c.cache.Put(u, data); err != nil {
		slog.Debug("nhtsa cache write failed", "url", u, "error", err)
	}
	return nil
}

// Recalls fetches the recall set for one vehicle.
func (c *Client) Recalls(ctx context.Context, make, model, year string) (*RecallResponse, error) {
	q := url.Values{}
	q.Set("make", make)
	q.Set("model", model)
	q.Set("modelYear", year)

	var out RecallResponse
	if err := c.getJSON(ctx, "/recalls/recallsByVehicle", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RecallByCampaign fetches recall details for one NHTSA campaign number.
func (c *Client) RecallByCampaign(ctx context.Context, campaign string) (*RecallResponse, error) {
	q := url.Values{}
	q.Set("campaignNumber", campaign)

	var out RecallResponse
	if err := c.getJSON(ctx, "/recalls/campaignNumber", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Complaints fetches the owner-complaint set for one vehicle.
func (c *Client) Complaints(ctx context.Context, make, model, year string) (*ComplaintResponse, error) {
	q := url.Values{}
	q.Set("make", make)
	q.Set("model", model)
	q.Set("modelYear", year)

	var out ComplaintResponse
	if err := c.getJSON(ctx, "/complaints/complaintsByVehicle", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RatingSummaries lists the rated variants of a vehicle. Safety ratings need
// a second hop through [Client.RatingByVehicleID] with a returned VehicleId.
func (c *Client) RatingSummaries(ctx context.Context, make, model, year string) (*RatingSummaryResponse, error) {
	path := fmt.Sprintf("/SafetyRatings/modelyear/%s/make/%s/model/%s",
		url.PathEscape(year), url.PathEscape(make), url.PathEscape(model))

	var out RatingSummaryResponse
	if err := c.getJSON(ctx, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RatingByVehicleID fetches the full rating attribute set for one rated
// vehicle variant.
func (c *Client) RatingByVehicleID(ctx context.Context, vehicleID int) (*RatingDetailResponse, error) {
	var out RatingDetailResponse
	if err := c.getJSON(ctx, "/SafetyRatings/VehicleId/"+strconv.Itoa(vehicleID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Makes lists vehicle makes with recall data for a model year.
func (c *Client) Makes(ctx context.Context, year string) (*VehicleListResponse, error) {
	q := url.Values{}
	q.Set("modelYear", year)
	q.Set("issueType", "r")

	var out VehicleListResponse
	if err := c.getJSON(ctx, "/products/vehicle/makes", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Models lists models with recall data for a model year and make.
func (c *Client) Models(ctx context.Context, year, make string) (*VehicleListResponse, error) {
	q := url.Values{}
	q.Set("modelYear", year)
	q.Set("make", make)
	q.Set("issueType", "r")

	var out VehicleListResponse
	if err := c.getJSON(ctx, "/products/vehicle/models", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
