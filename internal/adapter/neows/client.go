package neows

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/couchcryptid/neo-hazard-etl/internal/domain"
	"github.com/couchcryptid/neo-hazard-etl/internal/observability"
)

// DefaultBaseURL is the public NeoWs REST root.
const DefaultBaseURL = "https://api.nasa.gov/neo/rest/v1"

// feedDateLayout is the date format of the feed endpoint's query parameters.
const feedDateLayout = "2006-01-02"

// Client implements domain.OrbitalDataSource using the NASA NeoWs API.
type Client struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a NeoWs client.
func NewClient(baseURL, apiKey string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
		metrics: metrics,
		logger:  logger,
	}
}

// LookupOrbit fetches the orbital elements of one object. An unknown id
// yields empty elements and no error.
func (c *Client) LookupOrbit(ctx context.Context, id string) (domain.OrbitalData, error) {
	u := fmt.Sprintf("%s/neo/%s?%s", c.baseURL, url.PathEscape(id), url.Values{"api_key": {c.apiKey}}.Encode())

	start := time.Now()
	body, err := c.get(ctx, u)
	c.metrics.OrbitAPIDuration.Observe(time.Since(start).Seconds())

	if errors.Is(err, errNotFound) {
		c.metrics.OrbitLookups.WithLabelValues("empty").Inc()
		return domain.OrbitalData{}, nil
	}
	if err != nil {
		c.metrics.OrbitLookups.WithLabelValues("error").Inc()
		return domain.OrbitalData{}, fmt.Errorf("lookup neo %s: %w", id, err)
	}

	var rec domain.NeoRecord
	if err := json.Unmarshal(body, &rec); err != nil {
		c.metrics.OrbitLookups.WithLabelValues("error").Inc()
		return domain.OrbitalData{}, fmt.Errorf("decode lookup response: %w", err)
	}
	if rec.OrbitalData == nil || rec.OrbitalData.IsEmpty() {
		c.metrics.OrbitLookups.WithLabelValues("empty").Inc()
		return domain.OrbitalData{}, nil
	}

	c.metrics.OrbitLookups.WithLabelValues("success").Inc()
	c.logger.Debug("orbital data fetched", "neo_id", id, "orbit_id", rec.OrbitalData.OrbitID)
	return *rec.OrbitalData, nil
}

// FetchFeed returns the raw feed response for the inclusive date range.
// NeoWs limits a feed request to seven days.
func (c *Client) FetchFeed(ctx context.Context, start, end time.Time) ([]byte, error) {
	params := url.Values{
		"start_date": {start.Format(feedDateLayout)},
		"end_date":   {end.Format(feedDateLayout)},
		"api_key":    {c.apiKey},
	}
	body, err := c.get(ctx, c.baseURL+"/feed?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}
	return body, nil
}

var errNotFound = errors.New("not found")

func (c *Client) get(ctx context.Context, fullURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("neows request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, errNotFound
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("neows API error: status %d: %s", resp.StatusCode, body)
	}
	return body, nil
}
