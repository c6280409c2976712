// Package climate implements domain.DataSource against the gridded crop
// climate data service: an HTTP API serving the trained per-pixel
// regression tables and the reference daily climate fields as JSON arrays.
package climate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"time"

	"github.com/agroclim/yield-emulator/internal/domain"
	"github.com/agroclim/yield-emulator/internal/observability"
)

// Client fetches dataset arrays over HTTP. Each call issues a single
// synchronous request; failures are returned to the caller without retries.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewClient creates a data service client. Pass nil metrics to disable
// fetch instrumentation.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger:  logger,
		metrics: metrics,
	}
}

// GridLatitudes fetches the sorted latitude axis of the 0.5-degree grid.
func (c *Client) GridLatitudes(ctx context.Context) ([]float64, error) {
	return c.fetchValues(ctx, "grid/latitudes", "grid_latitudes")
}

// GridLongitudes fetches the sorted longitude axis of the 0.5-degree grid.
func (c *Client) GridLongitudes(ctx context.Context) ([]float64, error) {
	return c.fetchValues(ctx, "grid/longitudes", "grid_longitudes")
}

// Coefficients fetches the 21 trained polynomial coefficients per pixel.
func (c *Client) Coefficients(ctx context.Context, crop string) ([][]float64, error) {
	var resp pixelFloatsResponse
	path := fmt.Sprintf("crops/%s/coefficients", url.PathEscape(crop))
	if err := c.get(ctx, path, "coefficients", &resp); err != nil {
		return nil, err
	}
	return resp.Pixels, nil
}

// Indicators fetches the five selected indicator ids per pixel.
func (c *Client) Indicators(ctx context.Context, crop string) ([][]int, error) {
	var resp pixelIntsResponse
	path := fmt.Sprintf("crops/%s/indicators", url.PathEscape(crop))
	if err := c.get(ctx, path, "indicators", &resp); err != nil {
		return nil, err
	}
	return resp.Pixels, nil
}

// PlantingDay fetches the per-pixel planting day of year. JSON nulls mark
// ocean/no-data cells and decode to NaN.
func (c *Client) PlantingDay(ctx context.Context, crop string) ([]float64, error) {
	path := fmt.Sprintf("crops/%s/planting-day", url.PathEscape(crop))
	return c.fetchValues(ctx, path, "planting_day")
}

// SeasonLength fetches the per-pixel growing season length in days.
func (c *Client) SeasonLength(ctx context.Context, crop string) ([]float64, error) {
	path := fmt.Sprintf("crops/%s/season-length", url.PathEscape(crop))
	return c.fetchValues(ctx, path, "season_length")
}

// ReferenceDailySeries fetches one year of a daily climate variable for
// every pixel.
func (c *Client) ReferenceDailySeries(ctx context.Context, variable string, year int) ([][]float64, error) {
	var resp pixelFloatsResponse
	path := fmt.Sprintf("climate/%s/%d", url.PathEscape(variable), year)
	if err := c.get(ctx, path, "daily_series", &resp); err != nil {
		return nil, err
	}
	return resp.Pixels, nil
}

// YearRange fetches the closed interval of years the reference dataset covers.
func (c *Client) YearRange(ctx context.Context) (int, int, error) {
	var resp yearRangeResponse
	if err := c.get(ctx, "years", "year_range", &resp); err != nil {
		return 0, 0, err
	}
	return resp.First, resp.Last, nil
}

// fetchValues fetches a flat array endpoint, mapping JSON nulls to NaN.
func (c *Client) fetchValues(ctx context.Context, path, resource string) ([]float64, error) {
	var resp valuesResponse
	if err := c.get(ctx, path, resource, &resp); err != nil {
		return nil, err
	}
	values := make([]float64, len(resp.Values))
	for i, v := range resp.Values {
		if v == nil {
			values[i] = math.NaN()
			continue
		}
		values[i] = *v
	}
	return values, nil
}

func (c *Client) get(ctx context.Context, path, resource string, out any) error {
	fullURL := c.baseURL + "/" + path

	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", resource, err)
	}
	defer resp.Body.Close()

	if c.metrics != nil {
		c.metrics.DatasetFetchDuration.WithLabelValues(resource).Observe(time.Since(start).Seconds())
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("data service error: %s: status %d: %s", resource, resp.StatusCode, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", resource, err)
	}
	return nil
}

// Data service response types.

type valuesResponse struct {
	Values []*float64 `json:"values"` // null = ocean/no-data
}

type pixelFloatsResponse struct {
	Pixels [][]float64 `json:"pixels"`
}

type pixelIntsResponse struct {
	Pixels [][]int `json:"pixels"`
}

type yearRangeResponse struct {
	First int `json:"first"`
	Last  int `json:"last"`
}

var _ domain.DataSource = (*Client)(nil)
