package output

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
	"github.com/twmb/franz-go/pkg/kgo"
)

// KafkaConfig configures a KafkaSink.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// producer is the part of *kgo.Client the sink uses.
type producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
	Close()
}

// KafkaSink publishes messages to a Kafka or Redpanda topic. Records of a
// stream are keyed by their primary key so that updates to one row land on
// one partition.
type KafkaSink struct {
	client producer
	topic  string
	logger hclog.Logger

	mu   sync.RWMutex
	keys map[string][]string
}

// NewKafkaSink creates a sink publishing to cfg.Topic.
func NewKafkaSink(cfg KafkaConfig, logger hclog.Logger) (*KafkaSink, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("at least one broker is required")
	}
	if cfg.Topic == "" {
		return nil, fmt.Errorf("topic is required")
	}

	client, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),

		// Wait for all in-sync replicas to acknowledge
		kgo.RequiredAcks(kgo.AllISRAcks()),

		kgo.ProducerBatchCompression(kgo.GzipCompression()),

		kgo.RetryBackoffFn(func(tries int) time.Duration {
			backoff := time.Duration(tries) * 100 * time.Millisecond
			if backoff > 60*time.Second {
				backoff = 60 * time.Second
			}
			return backoff
		}),
		kgo.RequestRetries(10),

		kgo.ProducerLinger(10*time.Millisecond),
		kgo.ProducerBatchMaxBytes(1<<20),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka client: %w", err)
	}

	return newKafkaSink(client, cfg.Topic, logger), nil
}

func newKafkaSink(client producer, topic string, logger hclog.Logger) *KafkaSink {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &KafkaSink{
		client: client,
		topic:  topic,
		logger: logger.Named("kafka-sink"),
		keys:   make(map[string][]string),
	}
}

func (s *KafkaSink) Write(ctx context.Context, msg Message) error {
	value, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal %s message: %w", msg.MessageType(), err)
	}

	if m, ok := msg.(*SchemaMessage); ok {
		s.mu.Lock()
		s.keys[m.Stream] = m.KeyProperties
		s.mu.Unlock()
	}

	record := &kgo.Record{
		Topic: s.topic,
		Key:   []byte(s.partitionKey(msg)),
		Value: value,
		Headers: []kgo.RecordHeader{
			{Key: "type", Value: []byte(msg.MessageType())},
		},
	}

	if err := s.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("failed to publish %s message: %w", msg.MessageType(), err)
	}
	return nil
}

// partitionKey keeps messages about the same row, or the same stream, in
// order.
func (s *KafkaSink) partitionKey(msg Message) string {
	switch m := msg.(type) {
	case *SchemaMessage:
		return m.Stream
	case *RecordMessage:
		s.mu.RLock()
		keyProps := s.keys[m.Stream]
		s.mu.RUnlock()

		if len(keyProps) > 0 {
			values := make([]string, 0, len(keyProps))
			complete := true
			for _, p := range keyProps {
				v, ok := m.Record[p]
				if !ok || v == nil {
					complete = false
					break
				}
				values = append(values, fmt.Sprint(v))
			}
			if complete {
				return m.Stream + ":" + strings.Join(values, ":")
			}
		}
		s.logger.Trace("record has no primary key, using random key", "stream", m.Stream)
	case *StateMessage:
		if stream := m.Stream(); stream != "" {
			return stream
		}
	}

	// Fallback: random (no ordering guarantee)
	return uuid.New().String()
}

// Close flushes and closes the client.
func (s *KafkaSink) Close() error {
	s.client.Close()
	return nil
}
