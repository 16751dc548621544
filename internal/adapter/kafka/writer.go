package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/wildfire-dashboard/internal/config"
	"github.com/couchcryptid/wildfire-dashboard/internal/domain"
)

// messageWriter is the subset of *kafkago.Writer used by Writer.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Writer publishes per-state trend coefficients to the sink topic.
// It implements pipeline.TrendPublisher.
type Writer struct {
	writer    messageWriter
	batchSize int
	logger    *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sink topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaSinkTopic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &Writer{writer: w, batchSize: cfg.BatchSize, logger: logger}
}

// PublishTrends writes one message per coefficient, keyed by state so a
// compacted topic keeps only the latest slope per state. Messages are sent in
// chunks of at most batchSize.
func (w *Writer) PublishTrends(ctx context.Context, trends []domain.TrendCoefficient) error {
	if len(trends) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(trends))
	for i := range trends {
		msg, err := serializeToMessage(trends[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}

	size := w.batchSize
	if size <= 0 {
		size = len(msgs)
	}
	for start := 0; start < len(msgs); start += size {
		end := min(start+size, len(msgs))
		if err := w.writer.WriteMessages(ctx, msgs[start:end]...); err != nil {
			return fmt.Errorf("write trend batch [%d:%d]: %w", start, end, err)
		}
	}
	w.logger.Debug("trends published", "count", len(msgs))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a TrendCoefficient into a Kafka message.
func serializeToMessage(tc domain.TrendCoefficient) (kafkago.Message, error) {
	data, err := json.Marshal(tc)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize trend coefficient: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(tc.State),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "state", Value: []byte(tc.State)},
			{Key: "computed_at", Value: []byte(tc.ComputedAt.Format(time.RFC3339))},
		},
	}, nil
}
