package output

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
)

const DefaultTopic = "dropinblog.deliveries"

const (
	headerDeliveryID = "delivery-id"
	headerReceivedAt = "received-at"
)

// producer is the subset of *kgo.Client the publisher uses.
type producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
	Close()
}

// KafkaConfig holds configuration for the publisher.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// KafkaPublisher publishes deliveries to Kafka/Redpanda.
type KafkaPublisher struct {
	client producer
	topic  string
}

// NewKafkaPublisher creates a publisher with a franz-go client.
func NewKafkaPublisher(cfg KafkaConfig) (*KafkaPublisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("at least one broker is required")
	}

	client, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.RequiredAcks(kgo.AllISRAcks()),
		kgo.ProducerBatchCompression(kgo.GzipCompression()),
		kgo.ProducerLinger(5*time.Millisecond),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka client: %w", err)
	}

	return newKafkaPublisher(client, cfg.Topic), nil
}

func newKafkaPublisher(client producer, topic string) *KafkaPublisher {
	if topic == "" {
		topic = DefaultTopic
	}
	return &KafkaPublisher{client: client, topic: topic}
}

// Emit produces one record keyed by node id so deliveries for a node stay
// ordered. The value is the body as received.
func (p *KafkaPublisher) Emit(ctx context.Context, d Delivery) error {
	record := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(d.NodeID),
		Value: d.Body,
		Headers: []kgo.RecordHeader{
			{Key: headerDeliveryID, Value: []byte(d.ID.String())},
			{Key: headerReceivedAt, Value: []byte(d.ReceivedAt.Format(time.RFC3339Nano))},
		},
	}

	if err := p.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("failed to publish delivery %s: %w", d.ID, err)
	}
	return nil
}

// Close closes the publisher
func (p *KafkaPublisher) Close() {
	p.client.Close()
}
