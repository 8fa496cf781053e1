//go:build integration

package output

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/redpanda"
	"github.com/twmb/franz-go/pkg/kgo"
	"github.com/twmb/franz-go/pkg/kmsg"

	"github.com/hashicorp-forge/tap-bamboohr/pkg/fields"
)

// createKafkaTopic creates a Kafka topic for testing.
func createKafkaTopic(t *testing.T, ctx context.Context, brokers string, topicName string) {
	adminClient, err := kgo.NewClient(
		kgo.SeedBrokers(brokers),
	)
	require.NoError(t, err)
	defer adminClient.Close()

	createTopicsReq := kmsg.NewCreateTopicsRequest()
	createTopicsReq.Topics = []kmsg.CreateTopicsRequestTopic{
		{
			Topic:             topicName,
			NumPartitions:     1,
			ReplicationFactor: 1,
		},
	}
	_, err = adminClient.Request(ctx, &createTopicsReq)
	require.NoError(t, err)

	// Wait for topic to be ready
	time.Sleep(1 * time.Second)
}

// TestKafkaSink_PublishToRedpanda publishes a stream to a real Redpanda
// instance and reads it back.
// Run with: go test -tags=integration ./pkg/output
func TestKafkaSink_PublishToRedpanda(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()

	redpandaContainer, err := redpanda.Run(ctx,
		"docker.redpanda.com/redpandadata/redpanda:latest",
	)
	testcontainers.CleanupContainer(t, redpandaContainer)
	require.NoError(t, err)

	brokers, err := redpandaContainer.KafkaSeedBroker(ctx)
	require.NoError(t, err)

	topic := "test.bamboohr"
	createKafkaTopic(t, ctx, brokers, topic)

	sink, err := NewKafkaSink(KafkaConfig{Brokers: []string{brokers}, Topic: topic}, hclog.NewNullLogger())
	require.NoError(t, err)

	now := time.Now()
	schema := fields.NewSchema(fields.Descriptor{Name: "id", Type: fields.TypeString, Required: true})
	require.NoError(t, sink.Write(ctx, NewSchemaMessage("employees", schema, []string{"id"})))
	require.NoError(t, sink.Write(ctx, NewRecordMessage("employees", fields.Record{"id": "42"}, now)))
	require.NoError(t, sink.Write(ctx, NewStateMessage("employees", now, 1)))
	require.NoError(t, sink.Close())

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(brokers),
		kgo.ConsumeTopics(topic),
		kgo.ConsumerGroup("test-consumer"),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	require.NoError(t, err)
	defer consumer.Close()

	fetchCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var received []*kgo.Record
	for len(received) < 3 {
		fetches := consumer.PollFetches(fetchCtx)
		if fetches.IsClientClosed() || fetchCtx.Err() != nil {
			break
		}
		if err := fetches.Err(); err != nil {
			t.Fatalf("fetch error: %v", err)
		}
		fetches.EachRecord(func(record *kgo.Record) {
			received = append(received, record)
		})
	}

	require.Len(t, received, 3, "not every message was received from Redpanda")
	assert.Equal(t, "employees:42", string(received[1].Key))

	var rec RecordMessage
	require.NoError(t, json.Unmarshal(received[1].Value, &rec))
	assert.Equal(t, "employees", rec.Stream)
	assert.Equal(t, "42", rec.Record["id"])
}
