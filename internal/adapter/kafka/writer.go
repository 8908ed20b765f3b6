package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/neo-hazard-etl/internal/config"
	"github.com/couchcryptid/neo-hazard-etl/internal/domain"
)

// Writer produces assessment documents to a Kafka topic.
// It implements pipeline.BatchLoader.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sink topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// LoadBatch serializes and publishes a batch of assessments in a single
// WriteMessages call. Messages are keyed by object id so every assessment of
// one object lands on the same partition.
func (w *Writer) LoadBatch(ctx context.Context, batch []domain.EnhancedAsteroid) error {
	if len(batch) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(batch))
	for i := range batch {
		msg, err := serializeToMessage(batch[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write assessments: %w", err)
	}
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals an assessment into a Kafka message.
func serializeToMessage(a domain.EnhancedAsteroid) (kafkago.Message, error) {
	data, err := json.Marshal(domain.ToDocument(a))
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize assessment %s: %w", a.Record.ID, err)
	}
	return kafkago.Message{
		Key:   []byte(a.Record.ID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "hazard_level", Value: []byte(a.Hazard.Level)},
			{Key: "torino_scale", Value: []byte(strconv.Itoa(a.Hazard.TorinoScale))},
			{Key: "assessed_at", Value: []byte(a.AssessedAt.Format(time.RFC3339))},
		},
	}, nil
}
