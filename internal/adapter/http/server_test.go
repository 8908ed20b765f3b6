package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpadapter "github.com/couchcryptid/neo-hazard-etl/internal/adapter/http"
	"github.com/couchcryptid/neo-hazard-etl/internal/domain"
	"github.com/couchcryptid/neo-hazard-etl/internal/observability"
	"github.com/couchcryptid/neo-hazard-etl/internal/pipeline"
)

type mockReadiness struct {
	err error
}

func (m *mockReadiness) CheckReadiness(_ context.Context) error { return m.err }

func newTestServer(readyErr error) *httpadapter.Server {
	return httpadapter.NewServer(":0", &mockReadiness{err: readyErr}, nil, 1, slog.Default())
}

func newAssessServer(policy domain.ValidationPolicy) *httpadapter.Server {
	params := domain.DefaultAssessParams()
	params.Policy = policy
	tfm := pipeline.NewTransformer(nil, params, observability.NewMetricsForTesting(), slog.Default())
	return httpadapter.NewServer(":0", &mockReadiness{}, tfm, 4, slog.Default())
}

func TestHealthzReturns200(t *testing.T) {
	srv := newTestServer(nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestReadyzReturns200WhenReady(t *testing.T) {
	srv := newTestServer(nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ready", body["status"])
}

func TestReadyzReturns503WhenNotReady(t *testing.T) {
	srv := newTestServer(fmt.Errorf("not ready yet"))
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "not ready", body["status"])
	assert.Equal(t, "not ready yet", body["error"])
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

type assessBody struct {
	Assessments []map[string]any `json:"assessments"`
	Errors      []struct {
		ID    string `json:"id"`
		Error string `json:"error"`
	} `json:"errors"`
	Summary domain.BatchSummary `json:"summary"`
}

func postAssess(t *testing.T, srv *httpadapter.Server, body string) (*httptest.ResponseRecorder, assessBody) {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/assess", strings.NewReader(body))
	srv.ServeHTTP(rec, req)

	var out assessBody
	if rec.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec, out
}

func TestAssessFeed(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("..", "..", "..", "data", "mock", "neo_feed_sample.json"))
	require.NoError(t, err)

	rec, out := postAssess(t, newAssessServer(domain.PolicyPermissive), string(data))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, out.Assessments, 9)
	assert.Empty(t, out.Errors)
	assert.NotNil(t, out.Errors, "errors should encode as an empty array")
	assert.Equal(t, 9, out.Summary.Count)
	assert.Equal(t, 1, out.Summary.NonFiniteRisk)

	first := out.Assessments[0]
	for _, key := range []string{"id", "size", "velocity", "missDistance", "impactEnergy", "risk", "confidence",
		"torinoScale", "hazardLevel", "orbit", "moonCollisionData", "assessedAt"} {
		assert.Contains(t, first, key)
	}
}

func TestAssessArrayWithRejectPolicy(t *testing.T) {
	body := `[
		{"id":"1","name":"ok","estimated_diameter":{"meters":{"estimated_diameter_max":120}},
		 "close_approach_data":[{"close_approach_date":"2024-01-15","relative_velocity":{"kilometers_per_second":"12"},"miss_distance":{"astronomical":"0.04"}}]},
		{"id":"2","name":"broken","estimated_diameter":{"meters":{"estimated_diameter_max":"wide"}},
		 "close_approach_data":[{"close_approach_date":"2024-01-15","relative_velocity":{"kilometers_per_second":"12"},"miss_distance":{"astronomical":"0.04"}}]}
	]`

	rec, out := postAssess(t, newAssessServer(domain.PolicyReject), body)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, out.Assessments, 1)
	assert.Equal(t, "1", out.Assessments[0]["id"])
	require.Len(t, out.Errors, 1)
	assert.Equal(t, "2", out.Errors[0].ID)
	assert.Contains(t, out.Errors[0].Error, "estimated_diameter_max")
}

func TestAssessMalformedBody(t *testing.T) {
	rec, _ := postAssess(t, newAssessServer(domain.PolicyPermissive), `{"element_count": 3}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body["error"], "near_earth_objects")
}

func TestAssessRecordWithoutID(t *testing.T) {
	rec, _ := postAssess(t, newAssessServer(domain.PolicyPermissive), `[{"id":"1"},{"name":"anon"}]`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body["error"], "record 1: missing id")
}

// failingReader errors on every read.
type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("connection reset") }

func TestAssessBodyReadErrors(t *testing.T) {
	tests := []struct {
		name string
		body func() *http.Request
		want int
	}{
		{
			name: "oversized body",
			body: func() *http.Request {
				return httptest.NewRequest(http.MethodPost, "/v1/assess", strings.NewReader(strings.Repeat(" ", 10<<20+1)))
			},
			want: http.StatusRequestEntityTooLarge,
		},
		{
			name: "broken body",
			body: func() *http.Request {
				return httptest.NewRequest(http.MethodPost, "/v1/assess", failingReader{})
			},
			want: http.StatusBadRequest,
		},
	}

	srv := newAssessServer(domain.PolicyPermissive)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			srv.ServeHTTP(rec, tt.body())
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestAssessRouteDisabledWithoutAssessor(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/assess", strings.NewReader("[]"))

	newTestServer(nil).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
