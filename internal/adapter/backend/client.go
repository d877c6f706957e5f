package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/couchcryptid/volunteer-map-page/internal/domain"
	"github.com/couchcryptid/volunteer-map-page/internal/observability"
)

const (
	endpointTime      = "time"
	endpointLocations = "locations"
)

// ErrUnexpectedStatus is returned for any non-2xx backend response.
var ErrUnexpectedStatus = errors.New("unexpected backend status")

// StatusError carries the status code of a rejected response.
type StatusError struct {
	Endpoint string
	Code     int
	Body     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: status %d: %s", e.Endpoint, e.Code, e.Body)
}

func (e *StatusError) Unwrap() error { return ErrUnexpectedStatus }

// Client reads the volunteer backend's /time and /getVolunteerLocations
// endpoints. It implements mapview.LocationSource and page.TimeSource.
type Client struct {
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a backend client rooted at baseURL.
func NewClient(baseURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: strings.TrimRight(baseURL, "/"),
		metrics: metrics,
		logger:  logger,
	}
}

type timeResponse struct {
	Time *float64 `json:"time"`
}

// FetchTime returns the backend's current time in seconds.
func (c *Client) FetchTime(ctx context.Context) (domain.TimeValue, error) {
	var body timeResponse
	if err := c.getJSON(ctx, "/time", endpointTime, &body); err != nil {
		return 0, err
	}
	if body.Time == nil {
		c.observe(endpointTime, false)
		return 0, errors.New("time: decode response: missing time field")
	}
	c.observe(endpointTime, true)
	return domain.TimeValue(*body.Time), nil
}

// FetchLocations returns the aggregated volunteer locations. A payload that
// decodes but carries unrenderable points is rejected.
func (c *Client) FetchLocations(ctx context.Context) (domain.LocationAggregate, error) {
	var agg domain.LocationAggregate
	if err := c.getJSON(ctx, "/getVolunteerLocations", endpointLocations, &agg); err != nil {
		return domain.LocationAggregate{}, err
	}
	if err := agg.Validate(); err != nil {
		c.observe(endpointLocations, false)
		return domain.LocationAggregate{}, fmt.Errorf("%s: %w", endpointLocations, err)
	}
	if agg.Locations == nil {
		agg.Locations = []domain.CityBucket{}
	}
	c.observe(endpointLocations, true)
	return agg, nil
}

// CheckReadiness reports whether the backend answers /time.
func (c *Client) CheckReadiness(ctx context.Context) error {
	_, err := c.FetchTime(ctx)
	return err
}

// getJSON performs the request and decodes a 2xx body into v. Failures are
// recorded in metrics here; the caller records success.
func (c *Client) getJSON(ctx context.Context, path, endpoint string, v any) error {
	start := time.Now()
	defer func() {
		c.metrics.BackendDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		c.observe(endpoint, false)
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.observe(endpoint, false)
		return fmt.Errorf("%s request: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.observe(endpoint, false)
		return &StatusError{Endpoint: endpoint, Code: resp.StatusCode, Body: string(body)}
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		c.observe(endpoint, false)
		return fmt.Errorf("%s: decode response: %w", endpoint, err)
	}
	return nil
}

func (c *Client) observe(endpoint string, ok bool) {
	outcome := "success"
	if !ok {
		outcome = "error"
	}
	c.metrics.BackendRequests.WithLabelValues(endpoint, outcome).Inc()
	if !ok {
		c.logger.Debug("backend request failed", "endpoint", endpoint)
	}
}
