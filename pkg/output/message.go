// Package output writes the tap's message stream.
//
// Every stream produces a SCHEMA message, then one RECORD message per row,
// then a STATE message. Messages are newline-delimited JSON objects tagged by
// their "type" field.
package output

import (
	"encoding/json"
	"time"

	"github.com/hashicorp-forge/tap-bamboohr/pkg/fields"
)

// MessageType tags a message.
type MessageType string

const (
	MessageTypeSchema MessageType = "SCHEMA"
	MessageTypeRecord MessageType = "RECORD"
	MessageTypeState  MessageType = "STATE"
)

// Message is one entry of the output stream.
type Message interface {
	MessageType() MessageType
}

// SchemaMessage announces the schema of a stream before its records.
type SchemaMessage struct {
	Type          MessageType     `json:"type"`
	Stream        string          `json:"stream"`
	Schema        json.RawMessage `json:"schema"`
	KeyProperties []string        `json:"key_properties"`
}

// NewSchemaMessage renders schema for stream.
func NewSchemaMessage(stream string, schema fields.Schema, keyProperties []string) *SchemaMessage {
	if keyProperties == nil {
		keyProperties = []string{}
	}
	return &SchemaMessage{
		Type:          MessageTypeSchema,
		Stream:        stream,
		Schema:        schema.JSONSchema(),
		KeyProperties: keyProperties,
	}
}

func (m *SchemaMessage) MessageType() MessageType { return MessageTypeSchema }

// RecordMessage carries one row of a stream.
type RecordMessage struct {
	Type          MessageType   `json:"type"`
	Stream        string        `json:"stream"`
	Record        fields.Record `json:"record"`
	TimeExtracted time.Time     `json:"time_extracted"`
}

// NewRecordMessage wraps rec, stamped with the extraction time.
func NewRecordMessage(stream string, rec fields.Record, extracted time.Time) *RecordMessage {
	return &RecordMessage{
		Type:          MessageTypeRecord,
		Stream:        stream,
		Record:        rec,
		TimeExtracted: extracted.UTC(),
	}
}

func (m *RecordMessage) MessageType() MessageType { return MessageTypeRecord }

// StateMessage records progress. Value is opaque to consumers.
type StateMessage struct {
	Type  MessageType    `json:"type"`
	Value map[string]any `json:"value"`
}

// NewStateMessage records that stream finished at completed.
func NewStateMessage(stream string, completed time.Time, count int) *StateMessage {
	return &StateMessage{
		Type: MessageTypeState,
		Value: map[string]any{
			"bookmarks": map[string]any{
				stream: map[string]any{
					"completed_at": completed.UTC().Format(time.RFC3339),
					"record_count": count,
				},
			},
		},
	}
}

func (m *StateMessage) MessageType() MessageType { return MessageTypeState }

// Stream returns the single stream a state message bookmarks, if any.
func (m *StateMessage) Stream() string {
	bookmarks, _ := m.Value["bookmarks"].(map[string]any)
	if len(bookmarks) != 1 {
		return ""
	}
	for name := range bookmarks {
		return name
	}
	return ""
}
