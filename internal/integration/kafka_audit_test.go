//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/couchcryptid/geocode-proxy-service/internal/adapter/kafka"
	"github.com/couchcryptid/geocode-proxy-service/internal/config"
	"github.com/couchcryptid/geocode-proxy-service/internal/domain"
	"github.com/couchcryptid/geocode-proxy-service/internal/observability"
	kafkago "github.com/segmentio/kafka-go"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAuditTopic = "test-geocode-call-audit"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startKafka launches a single-node Kafka container and returns its broker address.
func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()

	container, err := tckafka.Run(ctx,
		"confluentinc/confluent-local:7.5.0",
		tckafka.WithClusterID("test-cluster"),
	)
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err, "resolve broker address")
	require.NotEmpty(t, brokers)
	return brokers[0]
}

func createTopic(t *testing.T, broker, topic string) {
	t.Helper()

	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err, "dial broker")
	defer conn.Close() //nolint:errcheck

	require.NoError(t, conn.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

// auditMessage holds a deserialized record read back from the audit topic.
type auditMessage struct {
	Record  domain.CallRecord
	Key     string
	Headers map[string]string
}

func readAudit(ctx context.Context, t *testing.T, consumer *kafkago.Reader) auditMessage {
	t.Helper()
	readCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from audit topic")

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	var record domain.CallRecord
	require.NoError(t, json.Unmarshal(msg.Value, &record), "unmarshal audit record")

	return auditMessage{Record: record, Key: string(msg.Key), Headers: headers}
}

// TestAuditWriterRoundTrip verifies that records published through kafka.Writer
// arrive on the audit topic with the function name as key and the operation and
// outcome as headers.
func TestAuditWriterRoundTrip(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testAuditTopic)

	cfg := &config.Config{
		KafkaBrokers:    []string{broker},
		KafkaAuditTopic: testAuditTopic,
	}

	metrics := observability.NewMetricsForTesting()
	writer := kafka.NewWriter(cfg, metrics, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	handledAt := time.Date(2026, time.March, 14, 9, 30, 0, 0, time.UTC)
	records := []domain.CallRecord{
		{
			FunctionName: "geocode_amazon_location_service_provider_here",
			Operation:    "geocode",
			Provider:     "here",
			Rows:         3,
			Status:       200,
			Outcome:      "ok",
			DurationMS:   142,
			HandledAt:    handledAt,
		},
		{
			FunctionName: "geocode_amazon_location_service_provider_here",
			Operation:    "geocode",
			Provider:     "here",
			Rows:         1,
			Status:       400,
			Outcome:      "invalid_rows",
			DurationMS:   4,
			HandledAt:    handledAt.Add(time.Second),
		},
	}
	for _, record := range records {
		writer.RecordCall(ctx, record)
	}

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testAuditTopic,
		GroupID:     fmt.Sprintf("test-audit-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	received := make([]auditMessage, 0, len(records))
	for len(received) < len(records) {
		received = append(received, readAudit(ctx, t, consumer))
	}

	// Publishing is asynchronous, so match received records by outcome
	// instead of arrival order.
	byOutcome := make(map[string]auditMessage, len(received))
	for _, am := range received {
		byOutcome[am.Record.Outcome] = am
	}
	for _, want := range records {
		am, ok := byOutcome[want.Outcome]
		require.True(t, ok, "missing audit record for outcome %q", want.Outcome)
		assert.Equal(t, want.FunctionName, am.Key)
		assert.Equal(t, want.Operation, am.Headers["operation"])
		assert.Equal(t, want.Outcome, am.Headers["outcome"])
		assert.Equal(t, want, am.Record)
	}
}
