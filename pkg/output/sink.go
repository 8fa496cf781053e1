package output

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
)

// Sink receives messages. Implementations must be safe for concurrent use;
// messages of one stream arrive in order from a single goroutine.
type Sink interface {
	Write(ctx context.Context, msg Message) error
	Close() error
}

// JSONLinesSink writes each message as one line of JSON.
type JSONLinesSink struct {
	mu  sync.Mutex
	enc *json.Encoder
}

// NewJSONLinesSink writes to w, normally stdout.
func NewJSONLinesSink(w io.Writer) *JSONLinesSink {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return &JSONLinesSink{enc: enc}
}

func (s *JSONLinesSink) Write(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.enc.Encode(msg); err != nil {
		return fmt.Errorf("failed to write %s message: %w", msg.MessageType(), err)
	}
	return nil
}

func (s *JSONLinesSink) Close() error {
	return nil
}
