package nats

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	natsserver "github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/neo-hazard-etl/internal/config"
	"github.com/couchcryptid/neo-hazard-etl/internal/domain"
	"github.com/couchcryptid/neo-hazard-etl/internal/observability"
)

func startServer(t *testing.T) *natsserver.Server {
	t.Helper()
	ns, err := natsserver.NewServer(&natsserver.Options{Host: "127.0.0.1", Port: -1, NoLog: true, NoSigs: true})
	require.NoError(t, err)

	go ns.Start()
	if !ns.ReadyForConnections(10 * time.Second) {
		t.Fatal("nats server not ready for connections")
	}
	t.Cleanup(ns.Shutdown)
	return ns
}

func testPublisher(t *testing.T, url string, minTorino int) *Publisher {
	t.Helper()
	cfg := &config.Config{
		NATSURL:            url,
		NATSAlertSubject:   "neo.alerts",
		AlertMinTorino:     minTorino,
		TracingServiceName: "neo-hazard-etl-test",
	}
	p, err := Connect(cfg, observability.NewMetricsForTesting(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })
	return p
}

func assessment(id string, torino int, level domain.HazardLevel) domain.EnhancedAsteroid {
	return domain.EnhancedAsteroid{
		Record: domain.NeoRecord{
			ID:   id,
			Name: "(" + id + ")",
			CloseApproachData: []domain.CloseApproach{
				{Date: "2024-01-15"},
			},
		},
		Features: domain.Features{MissDistance: 0.02},
		Risk:     domain.RiskAssessment{Risk: 0.8},
		Hazard:   domain.HazardClassification{TorinoScale: torino, Level: level},
	}
}

func TestPublishAlerts_FiltersAndRoutesByLevel(t *testing.T) {
	ns := startServer(t)
	p := testPublisher(t, ns.ClientURL(), 5)

	sub, err := nats.Connect(ns.ClientURL())
	require.NoError(t, err)
	t.Cleanup(sub.Close)

	msgs := make(chan *nats.Msg, 10)
	_, err = sub.ChanSubscribe("neo.alerts.>", msgs)
	require.NoError(t, err)
	require.NoError(t, sub.Flush())

	batch := []domain.EnhancedAsteroid{
		assessment("1", 1, domain.HazardNormal),
		assessment("2", 5, domain.HazardThreatening),
		assessment("3", 4, domain.HazardAttention),
		assessment("4", 7, domain.HazardThreatening),
	}

	n, err := p.PublishAlerts(context.Background(), batch)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	var got []domain.Alert
	for len(got) < 2 {
		select {
		case m := <-msgs:
			assert.Equal(t, "neo.alerts.threatening", m.Subject)
			var a domain.Alert
			require.NoError(t, json.Unmarshal(m.Data, &a))
			got = append(got, a)
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for alerts")
		}
	}

	assert.Equal(t, "2", got[0].ID)
	assert.Equal(t, "4", got[1].ID)
	assert.Equal(t, 7, got[1].TorinoScale)
	assert.Contains(t, got[1].Message, "on 2024-01-15")
	assert.Equal(t, 2.0, testutil.ToFloat64(p.metrics.AlertsPublished.WithLabelValues("threatening")))

	select {
	case m := <-msgs:
		t.Fatalf("unexpected alert on %s", m.Subject)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestPublishAlerts_NothingQualifies(t *testing.T) {
	ns := startServer(t)
	p := testPublisher(t, ns.ClientURL(), 8)

	n, err := p.PublishAlerts(context.Background(), []domain.EnhancedAsteroid{
		assessment("1", 7, domain.HazardThreatening),
	})
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestConnect_Unreachable(t *testing.T) {
	cfg := &config.Config{NATSURL: "nats://127.0.0.1:1", NATSAlertSubject: "neo.alerts"}
	_, err := Connect(cfg, observability.NewMetricsForTesting(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connect to nats")
}
