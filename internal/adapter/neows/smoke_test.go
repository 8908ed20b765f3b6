//go:build neows

package neows

import (
	"context"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/neo-hazard-etl/internal/domain"
	"github.com/couchcryptid/neo-hazard-etl/internal/observability"
)

// These tests hit the real NeoWs API. NEOWS_API_KEY may be DEMO_KEY.
// Run with: go test -tags=neows ./internal/adapter/neows/ -v -count=1

func smokeClient(t *testing.T) *Client {
	t.Helper()
	key := os.Getenv("NEOWS_API_KEY")
	if key == "" {
		t.Fatal("NEOWS_API_KEY must be set to run smoke tests")
	}
	return NewClient(DefaultBaseURL, key, 15*time.Second,
		observability.NewMetricsForTesting(),
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
}

func TestSmoke_LookupEros(t *testing.T) {
	c := smokeClient(t)

	od, err := c.LookupOrbit(context.Background(), "2000433")
	require.NoError(t, err)

	inc, pe := domain.ParseNumber("inclination", od.Inclination)
	require.Nil(t, pe)
	assert.InDelta(t, 10.8, inc, 0.5, "433 Eros inclination")

	a, pe := domain.ParseNumber("semi_major_axis", od.SemiMajorAxis)
	require.Nil(t, pe)
	assert.InDelta(t, 1.458, a, 0.01)
}

func TestSmoke_FeedDecodesAndAssesses(t *testing.T) {
	c := smokeClient(t)

	day := time.Now().UTC().AddDate(0, 0, -1)
	body, err := c.FetchFeed(context.Background(), day, day)
	require.NoError(t, err)

	recs, err := domain.DecodeRecords(body)
	require.NoError(t, err)
	require.NotEmpty(t, recs)

	for _, rec := range recs {
		a, err := domain.AssessAsteroid(rec, domain.DefaultAssessParams())
		require.NoError(t, err)
		assert.LessOrEqual(t, a.Hazard.TorinoScale, domain.MaxReachableTorino)
	}
}
