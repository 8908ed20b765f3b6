package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"

	"github.com/couchcryptid/neo-hazard-etl/internal/domain"
	"github.com/couchcryptid/neo-hazard-etl/internal/observability"
)

// NeoTransformer implements Transformer using the domain assessment chain
// with optional orbital-element enrichment.
type NeoTransformer struct {
	source  domain.OrbitalDataSource
	params  domain.AssessParams
	clock   clockwork.Clock
	metrics *observability.Metrics
	logger  *slog.Logger
}

// TransformerOption configures a NeoTransformer.
type TransformerOption func(*NeoTransformer)

// WithClock sets the time source that stamps assessedAt. Defaults to real time.
func WithClock(c clockwork.Clock) TransformerOption {
	return func(t *NeoTransformer) { t.clock = c }
}

// NewTransformer creates a NeoTransformer. Pass a nil source to disable
// orbital-element lookups.
func NewTransformer(source domain.OrbitalDataSource, params domain.AssessParams, metrics *observability.Metrics, logger *slog.Logger, opts ...TransformerOption) *NeoTransformer {
	t := &NeoTransformer{
		source:  source,
		params:  params,
		clock:   clockwork.NewRealClock(),
		metrics: metrics,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *NeoTransformer) Transform(ctx context.Context, raw domain.RawEvent) (domain.EnhancedAsteroid, error) {
	rec, err := domain.DecodeNeoRecord(raw)
	if err != nil {
		return domain.EnhancedAsteroid{}, err
	}
	return t.Assess(ctx, rec)
}

// Assess enriches and assesses one decoded record.
func (t *NeoTransformer) Assess(ctx context.Context, rec domain.NeoRecord) (domain.EnhancedAsteroid, error) {
	return t.assessAt(ctx, rec, t.clock.Now().UTC())
}

func (t *NeoTransformer) assessAt(ctx context.Context, rec domain.NeoRecord, at time.Time) (domain.EnhancedAsteroid, error) {
	rec = domain.EnrichWithOrbitalData(ctx, rec, t.source, t.logger)

	params := t.params
	params.AssessedAt = at
	a, err := domain.AssessAsteroid(rec, params)
	if err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			t.metrics.ValidationIssues.WithLabelValues(string(t.params.Policy)).Add(float64(len(verr.Issues)))
		}
		return domain.EnhancedAsteroid{}, err
	}

	if n := len(a.ValidationIssues); n > 0 {
		t.metrics.ValidationIssues.WithLabelValues(string(t.params.Policy)).Add(float64(n))
	}
	t.metrics.Assessments.WithLabelValues(string(a.Hazard.Level)).Inc()
	t.metrics.TorinoScale.Observe(float64(a.Hazard.TorinoScale))
	return a, nil
}

// RecordError reports a record that could not be assessed.
type RecordError struct {
	ID    string `json:"id"`
	Error string `json:"error"`
}

// AssessBatch assesses records on up to workers goroutines. Successful
// assessments keep input order and share one assessedAt.
func (t *NeoTransformer) AssessBatch(ctx context.Context, recs []domain.NeoRecord, workers int) ([]domain.EnhancedAsteroid, []RecordError) {
	at := t.clock.Now().UTC()
	results := parallelMap(ctx, recs, workers, func(ctx context.Context, rec domain.NeoRecord) (domain.EnhancedAsteroid, error) {
		return t.assessAt(ctx, rec, at)
	})

	assessed := make([]domain.EnhancedAsteroid, 0, len(recs))
	var failed []RecordError
	for i, r := range results {
		if r.err != nil {
			failed = append(failed, RecordError{ID: recs[i].ID, Error: r.err.Error()})
			continue
		}
		assessed = append(assessed, r.value)
	}
	return assessed, failed
}

type result struct {
	value domain.EnhancedAsteroid
	err   error
}

// parallelMap applies fn to every input with bounded concurrency. Results are
// indexed like the inputs; one failure does not cancel the others.
func parallelMap[T any](ctx context.Context, in []T, workers int, fn func(context.Context, T) (domain.EnhancedAsteroid, error)) []result {
	out := make([]result, len(in))
	if workers < 1 {
		workers = 1
	}

	var g errgroup.Group
	g.SetLimit(workers)
	for i := range in {
		g.Go(func() error {
			v, err := fn(ctx, in[i])
			out[i] = result{value: v, err: err}
			return nil
		})
	}
	_ = g.Wait()
	return out
}
