package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/couchcryptid/neo-hazard-etl/internal/config"
	"github.com/couchcryptid/neo-hazard-etl/internal/domain"
	"github.com/couchcryptid/neo-hazard-etl/internal/observability"
)

const flushTimeout = 5 * time.Second

// Publisher sends hazard alerts to NATS. It implements pipeline.AlertPublisher.
type Publisher struct {
	conn      *nats.Conn
	subject   string
	minTorino int
	metrics   *observability.Metrics
	logger    *slog.Logger
}

// Connect dials the configured NATS server and returns a publisher that
// alerts on assessments rated at or above cfg.AlertMinTorino.
func Connect(cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) (*Publisher, error) {
	nc, err := nats.Connect(cfg.NATSURL,
		nats.Name(cfg.TracingServiceName),
		nats.ReconnectWait(2*time.Second),
		nats.MaxReconnects(-1),
		nats.ErrorHandler(func(_ *nats.Conn, _ *nats.Subscription, err error) {
			logger.Error("nats error", "error", err)
		}),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("nats reconnected", "url", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}
	return &Publisher{
		conn:      nc,
		subject:   cfg.NATSAlertSubject,
		minTorino: cfg.AlertMinTorino,
		metrics:   metrics,
		logger:    logger,
	}, nil
}

// PublishAlerts publishes one alert per qualifying assessment to
// <subject>.<hazardLevel> and flushes. It returns the number published.
func (p *Publisher) PublishAlerts(ctx context.Context, batch []domain.EnhancedAsteroid) (int, error) {
	published := 0
	for i := range batch {
		if !domain.ShouldAlert(batch[i], p.minTorino) {
			continue
		}
		alert := domain.BuildAlert(batch[i])
		data, err := json.Marshal(alert)
		if err != nil {
			p.metrics.AlertErrors.Inc()
			return published, fmt.Errorf("marshal alert %s: %w", alert.ID, err)
		}
		if err := p.conn.Publish(p.subjectFor(alert.HazardLevel), data); err != nil {
			p.metrics.AlertErrors.Inc()
			return published, fmt.Errorf("publish alert %s: %w", alert.ID, err)
		}
		p.metrics.AlertsPublished.WithLabelValues(string(alert.HazardLevel)).Inc()
		published++
	}

	if published == 0 {
		return 0, nil
	}
	flushCtx, cancel := context.WithTimeout(ctx, flushTimeout)
	defer cancel()
	if err := p.conn.FlushWithContext(flushCtx); err != nil {
		p.metrics.AlertErrors.Inc()
		return published, fmt.Errorf("flush alerts: %w", err)
	}
	p.logger.Debug("alerts published", "count", published)
	return published, nil
}

func (p *Publisher) subjectFor(level domain.HazardLevel) string {
	return p.subject + "." + string(level)
}

// Close drains pending messages and closes the connection.
func (p *Publisher) Close() error {
	return p.conn.Drain()
}
