//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"

	"github.com/couchcryptid/agri-assist-api/internal/adapter/kafka"
	"github.com/couchcryptid/agri-assist-api/internal/config"
	"github.com/couchcryptid/agri-assist-api/internal/domain"
	"github.com/couchcryptid/agri-assist-api/internal/observability"
	"github.com/couchcryptid/agri-assist-api/internal/pipeline"
	"github.com/couchcryptid/agri-assist-api/internal/store"
)

const testTopic = "test-farmer-submissions"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startKafka runs a single-node broker for the duration of the test.
func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()
	container, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0", tckafka.WithClusterID("agri-assist-test"))
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("terminate kafka container: %v", err)
		}
	})

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

// publishedMessage holds a deserialized message read from the submissions topic.
type publishedMessage struct {
	Submission domain.Submission
	Key        string
	Headers    map[string]string
}

func readPublished(ctx context.Context, t *testing.T, consumer *kafkago.Reader) publishedMessage {
	t.Helper()
	readCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from submissions topic")

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	var sub domain.Submission
	require.NoError(t, json.Unmarshal(msg.Value, &sub), "unmarshal submission message")

	return publishedMessage{Submission: sub, Key: string(msg.Key), Headers: headers}
}

func newConsumer(t *testing.T, broker string) *kafkago.Reader {
	t.Helper()
	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testTopic,
		GroupID:     fmt.Sprintf("test-consumer-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })
	return consumer
}

// TestWriterLoadBatch verifies that kafka.Writer publishes a submission with
// its key and headers intact.
func TestWriterLoadBatch(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	require.NoError(t, kafka.EnsureTopic(ctx, broker, testTopic, 1))
	// A second call must tolerate the existing topic.
	require.NoError(t, kafka.EnsureTopic(ctx, broker, testTopic, 1))

	cfg := &config.Config{KafkaBrokers: []string{broker}, KafkaSubmissionsTopic: testTopic}
	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	at := time.Date(2025, time.June, 1, 6, 30, 0, 0, time.UTC)
	sub := domain.Submission{
		ID:        7,
		Timestamp: at,
		Fields: map[string]json.RawMessage{
			"name": json.RawMessage(`"Sunita"`),
			"crop": json.RawMessage(`"cotton"`),
		},
	}
	require.NoError(t, writer.LoadBatch(ctx, []domain.Submission{sub}))

	pm := readPublished(ctx, t, newConsumer(t, broker))
	assert.Equal(t, "7", pm.Key)
	assert.Equal(t, "7", pm.Headers["submission_id"])
	assert.Equal(t, at.Format(time.RFC3339Nano), pm.Headers["submitted_at"])
	assert.Equal(t, 7, pm.Submission.ID)
	assert.True(t, at.Equal(pm.Submission.Timestamp))
	assert.JSONEq(t, `"Sunita"`, string(pm.Submission.Fields["name"]))
}

// TestPublishingStoreEndToEnd wires the store decorator, pipeline, and writer
// against a real broker and checks every appended submission is published.
func TestPublishingStoreEndToEnd(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker := startKafka(ctx, t)
	require.NoError(t, kafka.EnsureTopic(ctx, broker, testTopic, 3))

	cfg := &config.Config{KafkaBrokers: []string{broker}, KafkaSubmissionsTopic: testTopic}
	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	metrics := observability.NewMetricsForTesting()
	p := pipeline.New(writer, discardLogger(), metrics, 5, 100*time.Millisecond, 100)
	submissions := pipeline.NewPublishingStore(store.NewMemoryStore(), p)

	runCtx, runCancel := context.WithCancel(ctx)
	errCh := make(chan error, 1)
	go func() { errCh <- p.Run(runCtx) }()

	const total = 12
	for i := 0; i < total; i++ {
		_, err := submissions.Append(ctx, map[string]json.RawMessage{
			"farmer": json.RawMessage(strconv.Quote(fmt.Sprintf("farmer-%d", i))),
		})
		require.NoError(t, err)
	}

	consumer := newConsumer(t, broker)
	seen := make(map[int]bool, total)
	for len(seen) < total {
		pm := readPublished(ctx, t, consumer)
		assert.Equal(t, strconv.Itoa(pm.Submission.ID), pm.Key)
		seen[pm.Submission.ID] = true
	}

	runCancel()
	require.NoError(t, <-errCh)

	for id := 1; id <= total; id++ {
		assert.True(t, seen[id], "submission %d not published", id)
	}
}
