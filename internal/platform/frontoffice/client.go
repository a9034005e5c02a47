// Package frontoffice is the REST client for the backing front-office data
// service: rosters, prospect lists, salary-cap figures, and trade
// validation.
package frontoffice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/scorewire/warroom/internal/domain"
)

// Client talks to the front-office data service.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a front-office client. baseURL is the API root, e.g.
// "https://frontoffice.internal/api/v1".
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// Roster returns the rosterable players for the team.
func (c *Client) Roster(ctx context.Context, team domain.Team) ([]domain.Player, error) {
	path := fmt.Sprintf("/teams/%s/roster?sport=%s",
		url.PathEscape(team.Key), url.QueryEscape(string(team.Sport)))

	body, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, fmt.Errorf("frontoffice: roster %s: %w", team.Key, err)
	}

	var resp struct {
		Players []domain.Player `json:"players"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("frontoffice: decode roster: %w", err)
	}
	return resp.Players, nil
}

// Prospects returns the team's prospect list.
func (c *Client) Prospects(ctx context.Context, team domain.Team) ([]domain.Prospect, error) {
	path := fmt.Sprintf("/teams/%s/prospects?sport=%s",
		url.PathEscape(team.Key), url.QueryEscape(string(team.Sport)))

	body, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, fmt.Errorf("frontoffice: prospects %s: %w", team.Key, err)
	}

	var resp struct {
		Prospects []domain.Prospect `json:"prospects"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("frontoffice: decode prospects: %w", err)
	}
	return resp.Prospects, nil
}

// CapSummary returns salary-cap summary figures for the team.
func (c *Client) CapSummary(ctx context.Context, team domain.Team) (domain.CapSummary, error) {
	path := fmt.Sprintf("/teams/%s/cap?sport=%s",
		url.PathEscape(team.Key), url.QueryEscape(string(team.Sport)))

	body, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return domain.CapSummary{}, fmt.Errorf("frontoffice: cap %s: %w", team.Key, err)
	}

	var summary domain.CapSummary
	if err := json.Unmarshal(body, &summary); err != nil {
		return domain.CapSummary{}, fmt.Errorf("frontoffice: decode cap summary: %w", err)
	}
	return summary, nil
}

// ValidateTrade asks the front-office service whether the pending trade is
// legal. Transport errors are returned as-is; the engine's scheduler owns
// the fail-open policy.
func (c *Client) ValidateTrade(ctx context.Context, req domain.ValidationRequest) (domain.ValidationResult, error) {
	body, err := c.doRequest(ctx, http.MethodPost, "/trades/validate", req)
	if err != nil {
		return domain.ValidationResult{}, fmt.Errorf("frontoffice: validate trade: %w", err)
	}

	var result domain.ValidationResult
	if err := json.Unmarshal(body, &result); err != nil {
		return domain.ValidationResult{}, fmt.Errorf("frontoffice: decode validation result: %w", err)
	}
	return result, nil
}

// doRequest builds, sends, and reads an HTTP request against the
// front-office API.
func (c *Client) doRequest(ctx context.Context, method, path string, reqBody any) ([]byte, error) {
	var bodyReader io.Reader
	if reqBody != nil {
		jsonBody, err := json.Marshal(reqBody)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if err := checkStatus(resp.StatusCode, respBody); err != nil {
		return nil, err
	}
	return respBody, nil
}

// checkStatus maps non-2xx HTTP status codes to errors.
func checkStatus(statusCode int, body []byte) error {
	if statusCode >= 200 && statusCode < 300 {
		return nil
	}

	var apiErr struct {
		Error string `json:"error"`
	}
	_ = json.Unmarshal(body, &apiErr)

	switch statusCode {
	case http.StatusNotFound:
		return fmt.Errorf("not found: %s: %w", apiErr.Error, domain.ErrNotFound)
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("unauthorized: %s: %w", apiErr.Error, domain.ErrUnauthorized)
	default:
		return fmt.Errorf("HTTP %d: %s", statusCode, apiErr.Error)
	}
}

// Compile-time interface checks.
var (
	_ domain.RosterProvider = (*Client)(nil)
	_ domain.CapProvider    = (*Client)(nil)
	_ domain.TradeValidator = (*Client)(nil)
)
