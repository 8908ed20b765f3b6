package neows

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/neo-hazard-etl/internal/domain"
	"github.com/couchcryptid/neo-hazard-etl/internal/observability"
)

const (
	testAPIKey        = "test-key"
	contentTypeJSON   = "application/json"
	headerContentType = "Content-Type"
)

const lookupBody = `{
	"id": "2000433",
	"name": "433 Eros (A898 PA)",
	"estimated_diameter": {"meters": {"estimated_diameter_min": 22108.2, "estimated_diameter_max": 49435.2}},
	"is_potentially_hazardous_asteroid": false,
	"close_approach_data": [],
	"orbital_data": {
		"orbit_id": "659",
		"eccentricity": ".2229512647434284",
		"inclination": "10.82846651399785",
		"semi_major_axis": "1.458120998474684",
		"orbit_class": {"orbit_class_type": "AMO", "orbit_class_description": "Near-Earth asteroid orbits similar to that of 1221 Amor"}
	}
}`

func testClient(baseURL string, timeout time.Duration) *Client {
	return NewClient(baseURL, testAPIKey, timeout,
		observability.NewMetricsForTesting(),
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
}

func TestClient_LookupOrbit_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/neo/2000433", r.URL.Path)
		assert.Equal(t, testAPIKey, r.URL.Query().Get("api_key"))

		w.Header().Set(headerContentType, contentTypeJSON)
		_, _ = w.Write([]byte(lookupBody))
	}))
	defer srv.Close()

	c := testClient(srv.URL, 5*time.Second)
	od, err := c.LookupOrbit(context.Background(), "2000433")
	require.NoError(t, err)

	assert.Equal(t, "659", od.OrbitID)
	assert.Equal(t, domain.NumString(".2229512647434284"), od.Eccentricity)
	assert.Equal(t, domain.NumString("10.82846651399785"), od.Inclination)
	require.NotNil(t, od.OrbitClass)
	assert.Equal(t, "AMO", od.OrbitClass.Type)
	assert.Equal(t, 1.0, testutil.ToFloat64(c.metrics.OrbitLookups.WithLabelValues("success")))
}

func TestClient_LookupOrbit_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := testClient(srv.URL, 5*time.Second)
	od, err := c.LookupOrbit(context.Background(), "0")
	require.NoError(t, err)
	assert.True(t, od.IsEmpty())
	assert.Equal(t, 1.0, testutil.ToFloat64(c.metrics.OrbitLookups.WithLabelValues("empty")))
}

func TestClient_LookupOrbit_NoElements(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set(headerContentType, contentTypeJSON)
		_, _ = w.Write([]byte(`{"id":"54321","name":"anon"}`))
	}))
	defer srv.Close()

	od, err := testClient(srv.URL, 5*time.Second).LookupOrbit(context.Background(), "54321")
	require.NoError(t, err)
	assert.True(t, od.IsEmpty())
}

func TestClient_LookupOrbit_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"code":"API_KEY_INVALID"}}`))
	}))
	defer srv.Close()

	c := testClient(srv.URL, 5*time.Second)
	_, err := c.LookupOrbit(context.Background(), "2000433")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
	assert.Equal(t, 1.0, testutil.ToFloat64(c.metrics.OrbitLookups.WithLabelValues("error")))
}

func TestClient_LookupOrbit_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL, 50*time.Millisecond).LookupOrbit(context.Background(), "2000433")
	require.Error(t, err)
}

func TestClient_FetchFeed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/feed", r.URL.Path)
		assert.Equal(t, "2024-01-15", r.URL.Query().Get("start_date"))
		assert.Equal(t, "2024-01-16", r.URL.Query().Get("end_date"))

		w.Header().Set(headerContentType, contentTypeJSON)
		_, _ = w.Write([]byte(`{"element_count":1,"near_earth_objects":{"2024-01-15":[{"id":"3542519"}]}}`))
	}))
	defer srv.Close()

	day := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	body, err := testClient(srv.URL, 5*time.Second).FetchFeed(context.Background(), day, day.AddDate(0, 0, 1))
	require.NoError(t, err)

	recs, err := domain.DecodeRecords(body)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "3542519", recs[0].ID)
}

func TestClient_WithCacheAndEnrichment(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.Header().Set(headerContentType, contentTypeJSON)
		_, _ = w.Write([]byte(lookupBody))
	}))
	defer srv.Close()

	c := testClient(srv.URL, 5*time.Second)
	src := NewCachedOrbitSource(c, 10, time.Hour, nil, c.metrics)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	rec := domain.NeoRecord{ID: "2000433", Name: "433 Eros"}
	for i := 0; i < 3; i++ {
		enriched := domain.EnrichWithOrbitalData(context.Background(), rec, src, logger)
		require.NotNil(t, enriched.OrbitalData)
	}
	assert.Equal(t, 1, calls)
}
