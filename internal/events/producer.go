package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

// Publisher emits order events. Implementations must be safe for concurrent use.
type Publisher interface {
	PublishOrderCreated(ctx context.Context, ev OrderCreated) error
	Close() error
}

var _ Publisher = (*KafkaPublisher)(nil)

// KafkaPublisher writes order events to a Kafka topic, keyed by order id so
// events for one order always land on the same partition.
type KafkaPublisher struct {
	writer *kafka.Writer
}

// NewKafkaPublisher creates a publisher for the given brokers and topic.
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.LeastBytes{},
			RequiredAcks:           kafka.RequireAll,
			AllowAutoTopicCreation: true,
		},
	}
}

// PublishOrderCreated marshals the event and writes it to the topic.
// An EventID is assigned when the caller left it empty.
func (p *KafkaPublisher) PublishOrderCreated(ctx context.Context, ev OrderCreated) error {
	if ev.EventID == "" {
		ev.EventID = uuid.New().String()
	}

	value, err := json.Marshal(ev)
	if err != nil {
		return errors.Wrap(err, "marshal order created event")
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(fmt.Sprintf("order-%d", ev.OrderID)),
		Value: value,
	})
	if err != nil {
		return errors.Wrapf(err, "write order created event %s", ev.EventID)
	}
	return nil
}

// Close flushes and closes the underlying writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

var _ Publisher = NopPublisher{}

// NopPublisher discards all events. Used when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) PublishOrderCreated(context.Context, OrderCreated) error { return nil }
func (NopPublisher) Close() error                                            { return nil }
