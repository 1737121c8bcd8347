// Package configstore resolves provider place-index identifiers from an
// externally managed configuration document.
package configstore

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client fetches the provider index map from the configuration store. The
// document is a flat JSON object keyed by provider name:
//
//	{"here": "explore.place.Here", "esri": "explore.place.Esri"}
type Client struct {
	baseURL     string
	application string
	environment string
	profile     string
	httpClient  *http.Client
	logger      *slog.Logger
}

// NewClient creates a configuration store client for one
// application/environment/profile document.
func NewClient(baseURL, application, environment, profile string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		application: application,
		environment: environment,
		profile:     profile,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// FetchIndexMap retrieves and parses the current index map document.
func (c *Client) FetchIndexMap(ctx context.Context) (map[string]string, error) {
	u := fmt.Sprintf("%s/applications/%s/environments/%s/configurations/%s",
		c.baseURL,
		url.PathEscape(c.application),
		url.PathEscape(c.environment),
		url.PathEscape(c.profile),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch index map: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("config store: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var indexes map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&indexes); err != nil {
		return nil, fmt.Errorf("decode index map: %w", err)
	}

	// Keys are matched case-insensitively against provider names.
	normalized := make(map[string]string, len(indexes))
	for k, v := range indexes {
		normalized[strings.ToLower(k)] = v
	}

	c.logger.Debug("fetched provider index map", "providers", len(normalized))
	return normalized, nil
}
