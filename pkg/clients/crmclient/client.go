package crmclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"golang.org/x/oauth2"
)

const defaultPageSize = 100

// Client is a thin wrapper around the CRM's REST API. It only covers the
// read surface the allocator needs: the adviser roster, capacity-consuming
// meetings and the open deal pipeline.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a CRM client authenticating every request with the
// given API token.
func NewClient(ctx context.Context, baseURL, apiToken string) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("crm base url is required")
	}
	if apiToken == "" {
		return nil, fmt.Errorf("crm api token is required")
	}

	tokenSource := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: apiToken})

	return &Client{
		baseURL:    baseURL,
		httpClient: oauth2.NewClient(ctx, tokenSource),
	}, nil
}

// getJSON issues a GET against the CRM and decodes the response body into
// out. Non-200 responses surface the status and body in the error.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out interface{}) error {
	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create crm request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call crm: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("crm request %s failed with status %d: %s", path, resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode crm response: %w", err)
	}

	return nil
}
