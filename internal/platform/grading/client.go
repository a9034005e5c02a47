// Package grading is the client for the trade-grading service. Submissions
// go to the primary endpoint first and fall back to the legacy endpoint when
// the primary signals it explicitly or is unavailable.
package grading

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/scorewire/warroom/internal/domain"
)

// Client submits grade requests.
type Client struct {
	primaryURL string
	legacyURL  string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a grading client. primaryURL and legacyURL are full
// endpoint URLs; legacyURL may be empty to disable the fallback.
func NewClient(primaryURL, legacyURL, apiKey string) *Client {
	return &Client{
		primaryURL: primaryURL,
		legacyURL:  legacyURL,
		apiKey:     apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// errorBody is the grading service's failure envelope. FallbackToLegacy is
// the explicit signal that the same payload should be resubmitted to the
// legacy endpoint.
type errorBody struct {
	Error            string `json:"error"`
	FallbackToLegacy bool   `json:"fallback_to_legacy"`
}

// Grade submits the request to the primary endpoint. On a failure that
// carries the legacy signal, or on a 503, the identical payload is
// resubmitted to the legacy endpoint. The first successful result wins;
// otherwise the final error is returned.
func (c *Client) Grade(ctx context.Context, req domain.GradeRequest) (domain.GradeResult, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return domain.GradeResult{}, fmt.Errorf("grading: marshal request: %w", err)
	}

	result, fallback, err := c.post(ctx, c.primaryURL, payload)
	if err == nil {
		return result, nil
	}
	if !fallback || c.legacyURL == "" {
		return domain.GradeResult{}, fmt.Errorf("grading: primary: %w", err)
	}

	result, _, legacyErr := c.post(ctx, c.legacyURL, payload)
	if legacyErr != nil {
		return domain.GradeResult{}, fmt.Errorf("grading: legacy (after primary: %v): %w", err, legacyErr)
	}
	return result, nil
}

// post submits the payload to one endpoint. fallback reports whether the
// failure is one the legacy endpoint should absorb.
func (c *Client) post(ctx context.Context, endpoint string, payload []byte) (domain.GradeResult, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return domain.GradeResult{}, false, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.GradeResult{}, false, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.GradeResult{}, false, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var eb errorBody
		_ = json.Unmarshal(body, &eb)

		fallback := eb.FallbackToLegacy || resp.StatusCode == http.StatusServiceUnavailable
		switch resp.StatusCode {
		case http.StatusBadRequest, http.StatusUnprocessableEntity:
			// Business-rule rejection: the user can adjust and resubmit.
			return domain.GradeResult{}, fallback, fmt.Errorf("HTTP %d: %s: %w", resp.StatusCode, eb.Error, domain.ErrGradeRejected)
		default:
			return domain.GradeResult{}, fallback, fmt.Errorf("HTTP %d: %s", resp.StatusCode, eb.Error)
		}
	}

	var result domain.GradeResult
	if err := json.Unmarshal(body, &result); err != nil {
		return domain.GradeResult{}, false, fmt.Errorf("decode grade result: %w", err)
	}
	return result, false, nil
}

// Compile-time interface check.
var _ domain.Grader = (*Client)(nil)
