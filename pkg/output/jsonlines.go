package output

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Framing selects how JSONLines writes a delivery.
type Framing string

const (
	// FramingRaw writes the body exactly as received plus a newline. A body
	// that contains newlines spans several lines, and an empty body yields
	// an empty line, so the stream is only line-delimited JSON when every
	// body is single-line JSON.
	FramingRaw Framing = "raw"

	// FramingEnvelope writes one envelope object per line. JSON bodies are
	// embedded compacted; anything else is embedded as a JSON string.
	FramingEnvelope Framing = "envelope"
)

type envelope struct {
	ID         uuid.UUID       `json:"id"`
	NodeID     string          `json:"nodeId"`
	ReceivedAt time.Time       `json:"receivedAt"`
	Body       json.RawMessage `json:"body"`
}

// JSONLines writes deliveries and records to w.
type JSONLines struct {
	mu      sync.Mutex
	w       io.Writer
	framing Framing
}

// NewJSONLines returns a sink with raw framing.
func NewJSONLines(w io.Writer) *JSONLines {
	return NewFramedJSONLines(w, FramingRaw)
}

// NewFramedJSONLines returns a sink using framing. An empty framing means
// FramingRaw.
func NewFramedJSONLines(w io.Writer, framing Framing) *JSONLines {
	if framing == "" {
		framing = FramingRaw
	}
	return &JSONLines{w: w, framing: framing}
}

// Emit writes one delivery according to the sink's framing.
func (j *JSONLines) Emit(ctx context.Context, d Delivery) error {
	if j.framing != FramingEnvelope {
		return j.writeLine(d.Body)
	}

	b, err := json.Marshal(envelope{
		ID:         d.ID,
		NodeID:     d.NodeID,
		ReceivedAt: d.ReceivedAt,
		Body:       embedBody(d.Body),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal delivery %s: %w", d.ID, err)
	}
	return j.writeLine(b)
}

func embedBody(body []byte) json.RawMessage {
	if json.Valid(body) {
		var buf bytes.Buffer
		if err := json.Compact(&buf, body); err == nil {
			return buf.Bytes()
		}
	}
	s, _ := json.Marshal(string(body))
	return s
}

// WriteRecord writes r as a JSON object.
func (j *JSONLines) WriteRecord(r Record) error {
	b, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal record %d: %w", r.Item, err)
	}
	return j.writeLine(b)
}

func (j *JSONLines) writeLine(b []byte) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if _, err := j.w.Write(append(b[:len(b):len(b)], '\n')); err != nil {
		return fmt.Errorf("error writing output: %w", err)
	}
	return nil
}
