package output

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/hashicorp-forge/tap-bamboohr/pkg/fields"
)

var testSchema = fields.NewSchema(
	fields.Descriptor{Name: "id", Type: fields.TypeString, Required: true},
	fields.Descriptor{Name: "hireDate", Type: fields.TypeDate},
)

func TestMessages_JSON(t *testing.T) {
	extracted := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		msg  Message
		want string
	}{
		{
			name: "schema",
			msg:  NewSchemaMessage("employees", testSchema, []string{"id"}),
			want: `{"type":"SCHEMA","stream":"employees","schema":{"type":"object","properties":{"id":{"type":["string"]},"hireDate":{"type":["string","null"],"format":"date"}},"required":["id"]},"key_properties":["id"]}`,
		},
		{
			name: "schema without keys",
			msg:  NewSchemaMessage("list_fields", fields.NewSchema(), nil),
			want: `{"type":"SCHEMA","stream":"list_fields","schema":{"type":"object","properties":{}},"key_properties":[]}`,
		},
		{
			name: "record",
			msg:  NewRecordMessage("employees", fields.Record{"id": "1"}, extracted),
			want: `{"type":"RECORD","stream":"employees","record":{"id":"1"},"time_extracted":"2024-05-01T12:00:00Z"}`,
		},
		{
			name: "state",
			msg:  NewStateMessage("employees", extracted, 3),
			want: `{"type":"STATE","value":{"bookmarks":{"employees":{"completed_at":"2024-05-01T12:00:00Z","record_count":3}}}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.msg)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(data))
		})
	}
}

func TestJSONLinesSink_ConcurrentWrites(t *testing.T) {
	var buf bytes.Buffer
	sink := NewJSONLinesSink(&buf)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(stream string) {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				rec := fields.Record{"id": fmt.Sprint(j)}
				assert.NoError(t, sink.Write(ctx, NewRecordMessage(stream, rec, time.Now())))
			}
		}(fmt.Sprintf("stream_%d", i))
	}
	wg.Wait()
	require.NoError(t, sink.Close())

	lines := 0
	scanner := bufio.NewScanner(&buf)
	for scanner.Scan() {
		var msg RecordMessage
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &msg), "line %d is not a whole message", lines)
		assert.Equal(t, MessageTypeRecord, msg.Type)
		lines++
	}
	assert.Equal(t, 100, lines)
}

func TestJSONLinesSink_NoHTMLEscaping(t *testing.T) {
	var buf bytes.Buffer
	sink := NewJSONLinesSink(&buf)

	err := sink.Write(context.Background(), NewRecordMessage("employees", fields.Record{"name": "Smith & Sons"}, time.Now()))
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Smith & Sons")
	assert.True(t, strings.HasSuffix(buf.String(), "\n"))
}

func TestCatalog_WriteTo(t *testing.T) {
	var catalog Catalog
	catalog.Add(NewSchemaMessage("employees", testSchema, []string{"id"}))

	var buf bytes.Buffer
	_, err := catalog.WriteTo(&buf)
	require.NoError(t, err)

	var decoded struct {
		Streams []struct {
			TapStreamID   string          `json:"tap_stream_id"`
			Stream        string          `json:"stream"`
			Schema        json.RawMessage `json:"schema"`
			KeyProperties []string        `json:"key_properties"`
		} `json:"streams"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded.Streams, 1)
	assert.Equal(t, "employees", decoded.Streams[0].TapStreamID)
	assert.Equal(t, []string{"id"}, decoded.Streams[0].KeyProperties)
	assert.JSONEq(t, string(testSchema.JSONSchema()), string(decoded.Streams[0].Schema))
}

func TestCatalog_Empty(t *testing.T) {
	var catalog Catalog
	var buf bytes.Buffer
	_, err := catalog.WriteTo(&buf)
	require.NoError(t, err)
	assert.JSONEq(t, `{"streams":[]}`, buf.String())
}

// fakeProducer records produced records in memory.
type fakeProducer struct {
	mu      sync.Mutex
	records []*kgo.Record
	err     error
	closed  bool
}

func (p *fakeProducer) ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults {
	p.mu.Lock()
	defer p.mu.Unlock()

	results := make(kgo.ProduceResults, 0, len(rs))
	for _, r := range rs {
		if p.err == nil {
			p.records = append(p.records, r)
		}
		results = append(results, kgo.ProduceResult{Record: r, Err: p.err})
	}
	return results
}

func (p *fakeProducer) Close() {
	p.closed = true
}

func TestKafkaSink_PartitionKeys(t *testing.T) {
	fake := &fakeProducer{}
	sink := newKafkaSink(fake, "bamboohr", nil)
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, sink.Write(ctx, NewSchemaMessage("list_fields", testSchema, []string{"fieldId", "id"})))
	require.NoError(t, sink.Write(ctx, NewRecordMessage("list_fields", fields.Record{"fieldId": "17", "id": 3}, now)))
	require.NoError(t, sink.Write(ctx, NewRecordMessage("list_fields", fields.Record{"fieldId": "17"}, now)))
	require.NoError(t, sink.Write(ctx, NewStateMessage("list_fields", now, 1)))
	require.NoError(t, sink.Close())

	require.Len(t, fake.records, 4)
	for _, r := range fake.records {
		assert.Equal(t, "bamboohr", r.Topic)
	}
	assert.Equal(t, "list_fields", string(fake.records[0].Key))
	assert.Equal(t, "list_fields:17:3", string(fake.records[1].Key))
	// Incomplete key falls back to a random UUID.
	assert.Len(t, string(fake.records[2].Key), 36)
	assert.Equal(t, "list_fields", string(fake.records[3].Key))

	assert.Equal(t, "type", fake.records[1].Headers[0].Key)
	assert.Equal(t, "RECORD", string(fake.records[1].Headers[0].Value))
	assert.True(t, fake.closed)
}

func TestKafkaSink_ProduceError(t *testing.T) {
	fake := &fakeProducer{err: errors.New("broker unavailable")}
	sink := newKafkaSink(fake, "bamboohr", nil)

	err := sink.Write(context.Background(), NewStateMessage("employees", time.Now(), 0))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker unavailable")
}

func TestNewKafkaSink_Validation(t *testing.T) {
	_, err := NewKafkaSink(KafkaConfig{Topic: "t"}, nil)
	assert.Error(t, err)

	_, err = NewKafkaSink(KafkaConfig{Brokers: []string{"localhost:9092"}}, nil)
	assert.Error(t, err)
}
