package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	appconfig "github.com/tigerroll/standlake/internal/config"
	"github.com/tigerroll/standlake/pkg/util/exception"
)

// Client calls the upstream standings endpoint.
type Client struct {
	cfg        appconfig.FetchConfig
	httpClient *http.Client
}

// NewClient creates a Client from the fetch configuration.
func NewClient(cfg appconfig.FetchConfig) *Client {
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
	}
}

// Get requests the standings for the configured league and season and
// returns the status code alongside the raw body. Callers decide what each
// status means; only transport-level failures surface as errors.
func (c *Client) Get(ctx context.Context) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.Endpoint, nil)
	if err != nil {
		return 0, nil, exception.NewStageError("fetch", "failed to build standings request", err, false)
	}

	q := req.URL.Query()
	q.Set("league", strconv.Itoa(c.cfg.League))
	q.Set("season", strconv.Itoa(c.cfg.Season))
	req.URL.RawQuery = q.Encode()

	req.Header.Set("x-rapidapi-key", c.cfg.APIKey)
	req.Header.Set("x-rapidapi-host", c.cfg.Host)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, exception.NewStageError("fetch", "standings request failed", err, true)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, exception.NewStageError("fetch",
			fmt.Sprintf("failed to read standings response body (status %d)", resp.StatusCode), err, true)
	}

	return resp.StatusCode, body, nil
}
