// Package secrets fetches warehouse credentials from the secret store.
package secrets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Credentials authenticate the provisioner against the warehouse.
type Credentials struct {
	Account  string `json:"account"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// Client reads one named secret over HTTP.
type Client struct {
	baseURL    string
	secretName string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a secret store client for the named secret.
func NewClient(baseURL, secretName string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		secretName: secretName,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// FetchCredentials retrieves and validates the warehouse credentials.
func (c *Client) FetchCredentials(ctx context.Context) (Credentials, error) {
	u := fmt.Sprintf("%s/secrets/%s", c.baseURL, url.PathEscape(c.secretName))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Credentials{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Credentials{}, fmt.Errorf("fetch secret: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body) //nolint:errcheck
		return Credentials{}, fmt.Errorf("secret store: status %d", resp.StatusCode)
	}

	var creds Credentials
	if err := json.NewDecoder(resp.Body).Decode(&creds); err != nil {
		return Credentials{}, fmt.Errorf("decode secret: %w", err)
	}

	if creds.Account == "" || creds.Username == "" || creds.Password == "" {
		return Credentials{}, errors.New("secret is missing account, username, or password")
	}
	return creds, nil
}
