// internal/service/order/infrastructure/event_producer.go
package infrastructure

import (
	"context"
	"encoding/json"
	"time"

	"atlas/internal/pkg/mq"
	"atlas/internal/service/order/domain"

	"github.com/segmentio/kafka-go"
)

// KafkaEventProducer implements port.EventPublisher by writing committed
// ledger entries to the order-events topic, keyed by order ID so a single
// order's events stay in partition order.
type KafkaEventProducer struct {
	writer *kafka.Writer
}

func NewKafkaEventProducer(writer *kafka.Writer) *KafkaEventProducer {
	return &KafkaEventProducer{writer: writer}
}

type eventMessage struct {
	EventID     string    `json:"event_id"`
	OrderID     string    `json:"order_id"`
	EventType   string    `json:"event_type"`
	Description string    `json:"description"`
	OldValue    string    `json:"old_value,omitempty"`
	NewValue    string    `json:"new_value,omitempty"`
	ActorID     int64     `json:"actor_id"`
	CreatedAt   time.Time `json:"created_at"`
}

func (p *KafkaEventProducer) Publish(ctx context.Context, event domain.OrderEvent) error {
	payload, err := json.Marshal(eventMessage{
		EventID:     event.EventID,
		OrderID:     event.OrderID,
		EventType:   string(event.Type),
		Description: event.Description,
		OldValue:    event.OldValue,
		NewValue:    event.NewValue,
		ActorID:     event.ActorID,
		CreatedAt:   event.CreatedAt,
	})
	if err != nil {
		return err
	}
	return mq.ProduceMessage(ctx, p.writer, []byte(event.OrderID), payload)
}
