// Package kafka publishes call audit records to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/geocode-proxy-service/internal/config"
	"github.com/couchcryptid/geocode-proxy-service/internal/domain"
	"github.com/couchcryptid/geocode-proxy-service/internal/observability"
	kafkago "github.com/segmentio/kafka-go"
)

const publishTimeout = 5 * time.Second

// Writer produces audit records to the configured audit topic. Publishing is
// best-effort and asynchronous: a slow or unavailable broker must never delay
// or fail a geocoding response.
type Writer struct {
	writer  *kafkago.Writer
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewWriter creates a Kafka producer for the audit topic.
func NewWriter(cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaAuditTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireOne,
	}
	return &Writer{writer: w, metrics: metrics, logger: logger}
}

// RecordCall publishes the record without blocking the caller. The request
// context is deliberately not reused: the response has already been written
// by the time the publish completes.
func (w *Writer) RecordCall(_ context.Context, record domain.CallRecord) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()

		msg, err := serializeRecord(record)
		if err != nil {
			w.metrics.AuditPublishErrors.Inc()
			w.logger.Warn("serialize audit record failed", "error", err)
			return
		}
		if err := w.writer.WriteMessages(ctx, msg); err != nil {
			w.metrics.AuditPublishErrors.Inc()
			w.logger.Warn("publish audit record failed", "error", err)
		}
	}()
}

// Close flushes and closes the underlying producer.
func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeRecord maps a call record onto a Kafka message keyed by function
// name, so one function's calls stay in partition order.
func serializeRecord(record domain.CallRecord) (kafkago.Message, error) {
	value, err := json.Marshal(record)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("marshal audit record: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(record.FunctionName),
		Value: value,
		Headers: []kafkago.Header{
			{Key: "operation", Value: []byte(record.Operation)},
			{Key: "outcome", Value: []byte(record.Outcome)},
		},
	}, nil
}
