package output

import (
	"encoding/json"
	"fmt"
	"io"
)

// Catalog lists the streams a tap can extract.
type Catalog struct {
	Streams []CatalogEntry `json:"streams"`
}

// CatalogEntry describes one stream.
type CatalogEntry struct {
	TapStreamID   string          `json:"tap_stream_id"`
	Stream        string          `json:"stream"`
	Schema        json.RawMessage `json:"schema"`
	KeyProperties []string        `json:"key_properties"`
}

// Add appends the stream described by a schema message.
func (c *Catalog) Add(m *SchemaMessage) {
	c.Streams = append(c.Streams, CatalogEntry{
		TapStreamID:   m.Stream,
		Stream:        m.Stream,
		Schema:        m.Schema,
		KeyProperties: m.KeyProperties,
	})
}

// WriteTo writes the catalog as indented JSON.
func (c *Catalog) WriteTo(w io.Writer) (int64, error) {
	if c.Streams == nil {
		c.Streams = []CatalogEntry{}
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return 0, fmt.Errorf("failed to marshal catalog: %w", err)
	}
	data = append(data, '\n')
	n, err := w.Write(data)
	return int64(n), err
}
