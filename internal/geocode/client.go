// Package geocode turns free-text address input into ranked suggestions and
// normalized address/coordinate results, using a Nominatim-compatible search
// endpoint. Saved territories and an optional device position bias and filter
// the results; network failures degrade to empty results rather than errors.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/nolanv/doorstep/internal/domain"
)

// Candidate is one geocoding result with its structured address breakdown.
type Candidate struct {
	DisplayName string
	Location    domain.LatLng
	Address     Address
}

// Address is the structured breakdown a Nominatim-style service returns.
// Exactly one of City/Town/Village is usually set; Locality folds them.
type Address struct {
	HouseNumber string `json:"house_number"`
	Road        string `json:"road"`
	City        string `json:"city"`
	Town        string `json:"town"`
	Village     string `json:"village"`
	County      string `json:"county"`
	State       string `json:"state"`
	Postcode    string `json:"postcode"`
}

// Locality returns the first of city, town, village that is set.
func (a Address) Locality() string {
	if a.City != "" {
		return a.City
	}
	if a.Town != "" {
		return a.Town
	}
	return a.Village
}

// SearchRequest describes one free-text search against the geocoding service.
type SearchRequest struct {
	Query       string
	Limit       int
	CountryCode string
	// Viewbox, when set, biases results toward the box. Bounded additionally
	// restricts results to it.
	Viewbox *domain.BoundingBox
	Bounded bool
}

// Searcher is the client-side interface the resolution pipelines depend on.
type Searcher interface {
	Search(ctx context.Context, req SearchRequest) ([]Candidate, error)
}

// Client talks to a Nominatim-compatible /search endpoint over HTTP GET.
// The user agent identifies this application to the rate-limited public
// service, per its usage policy.
type Client struct {
	baseURL   string
	userAgent string
	http      *http.Client
}

// NewClient constructs a Client for the given base URL (no trailing /search).
// Pass nil for httpClient to use a default with a conservative timeout.
func NewClient(baseURL, userAgent string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{baseURL: baseURL, userAgent: userAgent, http: httpClient}
}

// searchResult is the wire shape of one candidate. Latitude and longitude
// arrive as numeric strings.
type searchResult struct {
	DisplayName string  `json:"display_name"`
	Lat         string  `json:"lat"`
	Lon         string  `json:"lon"`
	Address     Address `json:"address"`
}

// Search issues one GET /search request and parses the candidate list.
// Candidates with unparsable coordinates are dropped silently.
func (c *Client) Search(ctx context.Context, req SearchRequest) ([]Candidate, error) {
	q := url.Values{}
	q.Set("q", req.Query)
	q.Set("format", "jsonv2")
	q.Set("addressdetails", "1")
	q.Set("namedetails", "1")
	q.Set("limit", strconv.Itoa(req.Limit))
	if req.CountryCode != "" {
		q.Set("countrycodes", req.CountryCode)
	}
	if req.Viewbox != nil {
		// Nominatim viewbox order is left,top,right,bottom.
		q.Set("viewbox", fmt.Sprintf("%f,%f,%f,%f",
			req.Viewbox.MinLon, req.Viewbox.MaxLat, req.Viewbox.MaxLon, req.Viewbox.MinLat))
		if req.Bounded {
			q.Set("bounded", "1")
		}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("geocode.Client.Search: build request: %w", err)
	}
	httpReq.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("geocode.Client.Search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocode.Client.Search: unexpected status %d", resp.StatusCode)
	}

	var results []searchResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("geocode.Client.Search: decode: %w", err)
	}

	candidates := make([]Candidate, 0, len(results))
	for _, r := range results {
		lat, latErr := strconv.ParseFloat(r.Lat, 64)
		lon, lonErr := strconv.ParseFloat(r.Lon, 64)
		if latErr != nil || lonErr != nil {
			continue
		}
		candidates = append(candidates, Candidate{
			DisplayName: r.DisplayName,
			Location:    domain.LatLng{Lat: lat, Lng: lon},
			Address:     r.Address,
		})
	}
	return candidates, nil
}
