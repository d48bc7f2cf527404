package report

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"foxie/internal/logging"
)

// Client fetches logs from a dps.report compatible service.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// NewClient returns a client for baseURL using the given request timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: timeout},
	}
}

// FetchBySlug downloads and parses the JSON of a report.
func (c *Client) FetchBySlug(ctx context.Context, slug string) (*Log, error) {
	log := logging.FromContext(ctx)
	endpoint := c.BaseURL + "/getJson?permalink=" + url.QueryEscape(slug)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	hc := c.HTTP
	if hc == nil {
		hc = http.DefaultClient
	}
	started := time.Now()
	resp, err := hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: status %d", ErrFetch, resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	log.Info("fetched report", "slug", slug, "bytes", len(data), "elapsed", time.Since(started))
	return parseBytes(data)
}
