// Package fetch retrieves CBSO registry payloads through a cache so a rerun
// never hits the registry for documents it already holds.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"cbso/internal/platform/config"
	dErrors "cbso/pkg/domain-errors"
)

const (
	acceptJSON     = "application/json"
	acceptJSONXBRL = "application/x.jsonxbrl"
)

// Client talks to the authentic CBSO endpoints.
type Client struct {
	baseURL         string
	subscriptionKey string
	http            *http.Client
}

// NewClient builds a registry client. A nil httpClient gets a sane default.
func NewClient(cfg config.CBSOConfig, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL:         cfg.BaseURL,
		subscriptionKey: cfg.SubscriptionKey,
		http:            httpClient,
	}
}

// References fetches the filing reference list for one enterprise number.
func (c *Client) References(ctx context.Context, enterpriseID string) ([]byte, error) {
	url := fmt.Sprintf("%s/authentic/legalEntity/%s/references", c.baseURL, enterpriseID)
	return c.get(ctx, url, acceptJSON)
}

// AccountingData fetches the filed document for one reference number.
func (c *Client) AccountingData(ctx context.Context, filingID string) ([]byte, error) {
	url := fmt.Sprintf("%s/authentic/deposit/%s/accountingData", c.baseURL, filingID)
	return c.get(ctx, url, acceptJSONXBRL)
}

func (c *Client) get(ctx context.Context, url, accept string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request %s: %w", url, err)
	}
	req.Header.Set("X-Request-Id", uuid.NewString())
	req.Header.Set("NBB-CBSO-Subscription-Key", c.subscriptionKey)
	req.Header.Set("Accept", accept)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "registry request failed")
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, dErrors.Newf(dErrors.CodeNotFound, "registry has no document at %s", url)
	case resp.StatusCode >= 300:
		return nil, dErrors.Newf(dErrors.CodeUnavailable, "registry returned %d for %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "read registry response")
	}
	return body, nil
}
