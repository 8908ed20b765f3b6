package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/storm-data-shared/retry"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/couchcryptid/neo-hazard-etl/internal/domain"
	"github.com/couchcryptid/neo-hazard-etl/internal/observability"
)

// BatchExtractor reads up to batchSize raw events from the source.
type BatchExtractor interface {
	ExtractBatch(ctx context.Context, batchSize int) ([]domain.RawEvent, error)
}

// Transformer converts a raw event into an assessment.
type Transformer interface {
	Transform(ctx context.Context, raw domain.RawEvent) (domain.EnhancedAsteroid, error)
}

// BatchLoader writes multiple assessments to the destination.
type BatchLoader interface {
	LoadBatch(ctx context.Context, batch []domain.EnhancedAsteroid) error
}

// AlertPublisher notifies downstream systems about high-hazard assessments.
type AlertPublisher interface {
	PublishAlerts(ctx context.Context, batch []domain.EnhancedAsteroid) (int, error)
}

const (
	initialBackoff = 200 * time.Millisecond
	maxBackoff     = 5 * time.Second
)

// Pipeline orchestrates the extract-transform-load loop.
type Pipeline struct {
	extractor   BatchExtractor
	transformer Transformer
	loader      BatchLoader
	alerts      AlertPublisher
	logger      *slog.Logger
	metrics     *observability.Metrics
	tracer      trace.Tracer
	ready       atomic.Bool
	batchSize   int
	workers     int
}

// Option customizes a Pipeline.
type Option func(*Pipeline)

// WithAlerts adds an alert stage after each successful load.
func WithAlerts(a AlertPublisher) Option {
	return func(p *Pipeline) { p.alerts = a }
}

// WithWorkers sets how many raw events are transformed concurrently.
func WithWorkers(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.workers = n
		}
	}
}

// New creates a Pipeline with the given stages and observability.
func New(e BatchExtractor, t Transformer, l BatchLoader, logger *slog.Logger, metrics *observability.Metrics, batchSize int, opts ...Option) *Pipeline {
	p := &Pipeline{
		extractor:   e,
		transformer: t,
		loader:      l,
		logger:      logger,
		metrics:     metrics,
		tracer:      otel.Tracer(observability.TracerName),
		batchSize:   batchSize,
		workers:     1,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// CheckReadiness returns nil if the pipeline has loaded at least one batch,
// or an error describing why the service is not yet ready.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("pipeline has not processed any messages yet")
	}
	return nil
}

// Run executes the batch ETL loop until the context is cancelled.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("pipeline started", "batch_size", p.batchSize, "workers", p.workers)
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	backoff := initialBackoff

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("pipeline stopping", "reason", ctx.Err())
			return nil
		default:
		}

		if !p.processBatch(ctx, &backoff) {
			return nil
		}
	}
}

// processBatch runs one extract-transform-load cycle. Returns false if the pipeline should stop.
func (p *Pipeline) processBatch(ctx context.Context, backoff *time.Duration) bool {
	start := time.Now()

	rawBatch, err := p.extractor.ExtractBatch(ctx, p.batchSize)
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		p.logger.Error("extract batch failed", "error", err)
		return p.backoffOrStop(ctx, backoff)
	}

	if len(rawBatch) == 0 {
		return ctx.Err() == nil
	}

	p.metrics.MessagesConsumed.Add(float64(len(rawBatch)))
	p.metrics.BatchSize.Observe(float64(len(rawBatch)))
	*backoff = initialBackoff

	batchID := uuid.NewString()
	ctx, span := p.tracer.Start(ctx, "pipeline.batch", trace.WithAttributes(
		attribute.String("batch_id", batchID),
		attribute.Int("batch.size", len(rawBatch)),
	))
	defer span.End()

	loaded, ok := p.transformAndLoad(ctx, batchID, rawBatch, backoff)
	span.SetAttributes(attribute.Int("batch.loaded", loaded))
	if !ok {
		return false
	}

	if loaded > 0 {
		p.metrics.BatchProcessingDuration.Observe(time.Since(start).Seconds())
		p.ready.Store(true)
	}
	return true
}

// transformAndLoad transforms the batch, loads the successes, publishes
// alerts, and commits offsets. Returns the number of loaded assessments and
// false if the pipeline should stop.
func (p *Pipeline) transformAndLoad(ctx context.Context, batchID string, rawBatch []domain.RawEvent, backoff *time.Duration) (int, bool) {
	results := parallelMap(ctx, rawBatch, p.workers, p.transformer.Transform)

	outBatch := make([]domain.EnhancedAsteroid, 0, len(rawBatch))
	successfulRaws := make([]domain.RawEvent, 0, len(rawBatch))

	for i, r := range results {
		raw := rawBatch[i]
		if r.err != nil {
			p.logger.Warn("transform failed, skipping message",
				"batch_id", batchID,
				"error", r.err,
				"topic", raw.Topic,
				"partition", raw.Partition,
				"offset", raw.Offset,
			)
			p.metrics.TransformErrors.Inc()
			p.commitOffset(ctx, raw)
			continue
		}
		outBatch = append(outBatch, r.value)
		successfulRaws = append(successfulRaws, raw)
	}

	if len(outBatch) == 0 {
		return 0, true
	}

	if err := p.loader.LoadBatch(ctx, outBatch); err != nil {
		p.logger.Error("load batch failed", "batch_id", batchID, "error", err, "batch_size", len(outBatch))
		trace.SpanFromContext(ctx).SetStatus(codes.Error, "load failed")
		return 0, p.backoffOrStop(ctx, backoff)
	}

	p.metrics.MessagesProduced.Add(float64(len(outBatch)))
	p.publishAlerts(ctx, batchID, outBatch)

	for _, raw := range successfulRaws {
		p.commitOffset(ctx, raw)
	}

	s := domain.Summarize(outBatch)
	p.logger.Info("batch loaded",
		"batch_id", batchID,
		"count", s.Count,
		"mean_risk", s.MeanRisk,
		"p90_risk", s.P90Risk,
		"max_torino", s.MaxTorino,
		"observable_moon_impacts", s.ObservableMoonImpacts,
	)

	return len(outBatch), true
}

// publishAlerts is best effort: failures are logged and never block commits.
func (p *Pipeline) publishAlerts(ctx context.Context, batchID string, batch []domain.EnhancedAsteroid) {
	if p.alerts == nil {
		return
	}
	n, err := p.alerts.PublishAlerts(ctx, batch)
	if err != nil {
		p.logger.Warn("publish alerts failed", "batch_id", batchID, "published", n, "error", err)
		return
	}
	if n > 0 {
		p.logger.Info("alerts published", "batch_id", batchID, "count", n)
	}
}

// backoffOrStop checks for context cancellation, sleeps with the current backoff,
// and advances the backoff. Returns false if the pipeline should stop.
func (p *Pipeline) backoffOrStop(ctx context.Context, backoff *time.Duration) bool {
	if ctx.Err() != nil {
		return false
	}
	if !retry.SleepWithContext(ctx, *backoff) {
		return false
	}
	*backoff = retry.NextBackoff(*backoff, maxBackoff)
	return true
}

// commitOffset commits the message offset if a commit function is available.
func (p *Pipeline) commitOffset(ctx context.Context, raw domain.RawEvent) {
	if raw.Commit == nil {
		return
	}
	if err := raw.Commit(ctx); err != nil {
		p.logger.Warn("commit offset failed", "error", err,
			"topic", raw.Topic, "partition", raw.Partition, "offset", raw.Offset)
	}
}
