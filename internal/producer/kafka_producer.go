package producer

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"order-engine/internal/service"

	"github.com/segmentio/kafka-go"
)

// OrderEventProducer publishes order lifecycle events to a Kafka topic.
type OrderEventProducer struct {
	writer *kafka.Writer
}

func NewOrderEventProducer(brokers []string, topic string) *OrderEventProducer {
	return &OrderEventProducer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			RequiredAcks: kafka.RequireAll,
		},
	}
}

type envelope struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

func (p *OrderEventProducer) publish(ctx context.Context, orderID uint, eventType string, payload any) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	value, err := json.Marshal(envelope{Type: eventType, Payload: payload})
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatUint(uint64(orderID), 10)),
		Value: value,
	})
}

func (p *OrderEventProducer) PublishOrderCreated(ctx context.Context, e service.OrderCreatedEvent) error {
	return p.publish(ctx, e.OrderID, "order.created", e)
}

func (p *OrderEventProducer) PublishOrderPayed(ctx context.Context, e service.OrderPayedEvent) error {
	return p.publish(ctx, e.OrderID, "order.payed", e)
}

func (p *OrderEventProducer) PublishOrderCancelled(ctx context.Context, e service.OrderCancelledEvent) error {
	return p.publish(ctx, e.OrderID, "order.cancelled", e)
}

func (p *OrderEventProducer) Close() error {
	return p.writer.Close()
}
