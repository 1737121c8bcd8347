// Package places implements domain.Geocoder against an Amazon Location
// Service place-index REST API.
package places

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/couchcryptid/geocode-proxy-service/internal/domain"
	"github.com/couchcryptid/geocode-proxy-service/internal/observability"
)

// Client performs single-row lookups against provider-specific place indexes.
type Client struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a place-index client.
func NewClient(baseURL, apiKey string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: strings.TrimRight(baseURL, "/"),
		metrics: metrics,
		logger:  logger,
	}
}

// ForwardGeocode searches the index for the best match of a free-text address.
func (c *Client) ForwardGeocode(ctx context.Context, indexID, address string) (domain.Place, error) {
	body := searchTextRequest{Text: address, MaxResults: 1}
	u := fmt.Sprintf("%s/places/v0/indexes/%s/search/text", c.baseURL, url.PathEscape(indexID))
	return c.doRequest(ctx, u, body, "forward")
}

// ReverseGeocode searches the index for the place nearest to a coordinate.
func (c *Client) ReverseGeocode(ctx context.Context, indexID string, lon, lat float64) (domain.Place, error) {
	body := searchPositionRequest{Position: []float64{lon, lat}, MaxResults: 1}
	u := fmt.Sprintf("%s/places/v0/indexes/%s/search/position", c.baseURL, url.PathEscape(indexID))
	return c.doRequest(ctx, u, body, "reverse")
}

func (c *Client) doRequest(ctx context.Context, fullURL string, payload any, method string) (domain.Place, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return domain.Place{}, fmt.Errorf("encode request: %w", err)
	}

	if c.apiKey != "" {
		fullURL += "?key=" + url.QueryEscape(c.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fullURL, bytes.NewReader(encoded))
	if err != nil {
		return domain.Place{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.BackendDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.BackendCalls.WithLabelValues(method, "error").Inc()
		return domain.Place{}, fmt.Errorf("%s geocode request: %w", method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		c.metrics.BackendCalls.WithLabelValues(method, "error").Inc()
		return domain.Place{}, &domain.BackendError{
			Status:  resp.StatusCode,
			Message: strings.TrimSpace(string(body)),
		}
	}

	var searchResp searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&searchResp); err != nil {
		c.metrics.BackendCalls.WithLabelValues(method, "error").Inc()
		return domain.Place{}, fmt.Errorf("decode response: %w", err)
	}

	if len(searchResp.Results) == 0 {
		c.metrics.BackendCalls.WithLabelValues(method, "no_match").Inc()
		return domain.Place{}, nil
	}

	c.metrics.BackendCalls.WithLabelValues(method, "match").Inc()

	p := searchResp.Results[0].Place
	place := domain.Place{
		Label: p.Label,
		Found: true,
	}
	if len(p.Geometry.Point) == 2 {
		place.Lon = p.Geometry.Point[0]
		place.Lat = p.Geometry.Point[1]
	}
	return place, nil
}

// Place-index API request/response types.

type searchTextRequest struct {
	Text       string `json:"Text"`
	MaxResults int    `json:"MaxResults"`
}

type searchPositionRequest struct {
	Position   []float64 `json:"Position"` // [lon, lat]
	MaxResults int       `json:"MaxResults"`
}

type searchResponse struct {
	Results []searchResult `json:"Results"`
}

type searchResult struct {
	Place placeDetail `json:"Place"`
}

type placeDetail struct {
	Label    string   `json:"Label"`
	Geometry geometry `json:"Geometry"`
}

type geometry struct {
	Point []float64 `json:"Point"` // [lon, lat]
}
