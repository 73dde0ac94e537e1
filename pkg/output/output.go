// Package output delivers trigger and action records to their consumers.
package output

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Delivery is one inbound webhook payload. Body is kept exactly as received.
type Delivery struct {
	ID         uuid.UUID
	NodeID     string
	ReceivedAt time.Time
	Body       []byte
}

// NewDelivery stamps body with a fresh id and the current time.
func NewDelivery(nodeID string, body []byte) Delivery {
	return Delivery{
		ID:         uuid.New(),
		NodeID:     nodeID,
		ReceivedAt: time.Now().UTC(),
		Body:       body,
	}
}

// Sink receives one call per delivery.
type Sink interface {
	Emit(ctx context.Context, d Delivery) error
}

// Record is one output item of an action node.
type Record struct {
	Item int             `json:"item"`
	JSON json.RawMessage `json:"json"`
}

// Multi fans a delivery out to every sink in order and stops at the first
// failure.
type Multi []Sink

func (m Multi) Emit(ctx context.Context, d Delivery) error {
	for _, s := range m {
		if err := s.Emit(ctx, d); err != nil {
			return err
		}
	}
	return nil
}
