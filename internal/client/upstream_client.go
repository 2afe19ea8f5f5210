package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"leadawaker/internal/ingest"
)

const (
	maxResponseBody = 16 << 20
	maxErrorBody    = 256
)

// UpstreamClient pulls raw lead and campaign rows from the automation
// backend. Rows come back un-normalised; see package ingest.
type UpstreamClient struct {
	baseURL string
	token   string
	client  *http.Client
}

func NewUpstreamClient(baseURL, token string) *UpstreamClient {
	return &UpstreamClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *UpstreamClient) FetchLeads(ctx context.Context, accountID int) ([]ingest.Record, error) {
	return c.fetch(ctx, "/api/leads", accountID)
}

func (c *UpstreamClient) FetchCampaigns(ctx context.Context, accountID int) ([]ingest.Record, error) {
	return c.fetch(ctx, "/api/campaigns", accountID)
}

func (c *UpstreamClient) fetch(ctx context.Context, path string, accountID int) ([]ingest.Record, error) {
	q := url.Values{}
	q.Set("accountId", strconv.Itoa(accountID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody+1))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d body=%q", resp.StatusCode, snippet(body))
	}
	if len(body) > maxResponseBody {
		return nil, fmt.Errorf("response exceeds %d bytes", maxResponseBody)
	}

	records, err := ingest.DecodeList(body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode json: %w body=%q", err, snippet(body))
	}
	return records, nil
}

// snippet truncates a body for error messages.
func snippet(body []byte) string {
	if len(body) <= maxErrorBody {
		return string(body)
	}
	return string(body[:maxErrorBody]) + "..."
}
