package kafka

import (
	"context"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/burn-severity-etl/internal/config"
	"github.com/couchcryptid/burn-severity-etl/internal/domain"
)

// drainTimeout bounds how long ExtractBatch waits for messages beyond the
// first one. Analyses are heavyweight, so there is no point holding a batch
// open waiting for stragglers.
const drainTimeout = 100 * time.Millisecond

// Reader consumes analysis requests from the source topic as part of a
// consumer group. It implements pipeline.BatchExtractor.
type Reader struct {
	reader *kafkago.Reader
	logger *slog.Logger
}

// NewReader creates a Kafka consumer for the configured source topic.
// Offsets are committed explicitly through RawEvent.Commit, never on an
// interval, so a crash can only replay messages, not lose them.
func NewReader(cfg *config.Config, logger *slog.Logger) *Reader {
	r := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     cfg.KafkaBrokers,
		GroupID:     cfg.KafkaGroupID,
		Topic:       cfg.KafkaSourceTopic,
		MinBytes:    1,
		MaxBytes:    10e6,
		StartOffset: kafkago.FirstOffset,
	})
	return &Reader{reader: r, logger: logger}
}

// ExtractBatch blocks for one message, then drains up to batchSize-1 more
// that are already pending. Each event carries a Commit closure bound to its
// own offset.
func (r *Reader) ExtractBatch(ctx context.Context, batchSize int) ([]domain.RawEvent, error) {
	msg, err := r.reader.FetchMessage(ctx)
	if err != nil {
		return nil, err
	}

	events := make([]domain.RawEvent, 0, batchSize)
	events = append(events, r.mapMessage(msg))

	drainCtx, cancel := context.WithTimeout(ctx, drainTimeout)
	defer cancel()
	for len(events) < batchSize {
		msg, err := r.reader.FetchMessage(drainCtx)
		if err != nil {
			break
		}
		events = append(events, r.mapMessage(msg))
	}
	return events, nil
}

func (r *Reader) mapMessage(m kafkago.Message) domain.RawEvent {
	headers := make(map[string]string, len(m.Headers))
	for _, h := range m.Headers {
		headers[h.Key] = string(h.Value)
	}
	return domain.RawEvent{
		Key:       m.Key,
		Value:     m.Value,
		Headers:   headers,
		Topic:     m.Topic,
		Partition: m.Partition,
		Offset:    m.Offset,
		Timestamp: m.Time,
		Commit: func(ctx context.Context) error {
			return r.reader.CommitMessages(ctx, m)
		},
	}
}

func (r *Reader) Close() error {
	return r.reader.Close()
}
