// Package kafka publishes farmer submissions to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/agri-assist-api/internal/config"
	"github.com/couchcryptid/agri-assist-api/internal/domain"
)

// Writer produces submission messages to a Kafka topic.
// It implements pipeline.BatchLoader.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured submissions topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSubmissionsTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// LoadBatch serializes the submissions and publishes them in a single
// WriteMessages call.
func (w *Writer) LoadBatch(ctx context.Context, submissions []domain.Submission) error {
	if len(submissions) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(submissions))
	for i := range submissions {
		msg, err := serializeToMessage(submissions[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write %d submissions: %w", len(msgs), err)
	}
	w.logger.Debug("submissions published", "count", len(msgs), "topic", w.writer.Topic)
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a Submission into a Kafka message keyed by its ID.
func serializeToMessage(s domain.Submission) (kafkago.Message, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize submission %d: %w", s.ID, err)
	}
	id := []byte(strconv.Itoa(s.ID))
	return kafkago.Message{
		Key:   id,
		Value: data,
		Headers: []kafkago.Header{
			{Key: "submission_id", Value: id},
			{Key: "submitted_at", Value: []byte(s.Timestamp.Format(time.RFC3339Nano))},
		},
	}, nil
}
