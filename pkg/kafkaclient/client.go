package kafkaclient

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"gndsync/pkg/logging"
)

// KafkaWriter defines the interface for a Kafka message writer.
// This allows for easy mocking in unit tests.
type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaProducer publishes result batches to a single topic.
// It is safe for concurrent use.
type KafkaProducer struct {
	writer KafkaWriter
	topic  string
	logger zerolog.Logger

	mu     sync.Mutex
	closed bool
}

// NewKafkaProducer creates a producer for topic on broker.
func NewKafkaProducer(topic, broker string) (*KafkaProducer, error) {
	if topic == "" || broker == "" {
		return nil, fmt.Errorf("kafka topic and broker are required")
	}
	writer := &kafka.Writer{
		Addr:         kafka.TCP(broker),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		// Batches are flushed one at a time; do not linger waiting for more.
		BatchTimeout: 10 * time.Millisecond,
	}
	return newProducer(writer, topic), nil
}

func newProducer(w KafkaWriter, topic string) *KafkaProducer {
	return &KafkaProducer{writer: w, topic: topic, logger: logging.For("kafka").With().Str("topic", topic).Logger()}
}

// Publish writes one message keyed by key. Headers are attached as-is.
func (kp *KafkaProducer) Publish(ctx context.Context, key string, value []byte, headers map[string]string) error {
	kp.mu.Lock()
	closed := kp.closed
	kp.mu.Unlock()
	if closed {
		return fmt.Errorf("kafka producer for %s is closed", kp.topic)
	}

	msg := kafka.Message{Key: []byte(key), Value: value}
	for k, v := range headers {
		msg.Headers = append(msg.Headers, kafka.Header{Key: k, Value: []byte(v)})
	}
	if err := kp.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish %s to %s: %w", key, kp.topic, err)
	}
	kp.logger.Debug().Str("key", key).Int("bytes", len(value)).Msg("message published")
	return nil
}

// Close flushes pending writes and shuts the producer down. Calling Close more
// than once is a no-op.
func (kp *KafkaProducer) Close() error {
	kp.mu.Lock()
	defer kp.mu.Unlock()
	if kp.closed {
		return nil
	}
	kp.closed = true
	kp.logger.Info().Msg("closing kafka producer")
	return kp.writer.Close()
}
