// Package events publishes order lifecycle messages to Kafka.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
)

// OrderPlaced is emitted once per persisted order.
type OrderPlaced struct {
	OrderID      string          `json:"orderId"`
	UserID       string          `json:"userId"`
	RestaurantID string          `json:"restaurantId"`
	FoodItemID   string          `json:"foodItemId"`
	Quantity     int             `json:"quantity"`
	Total        decimal.Decimal `json:"total"`
	PaymentRef   string          `json:"paymentRef"`
	PlacedAt     time.Time       `json:"placedAt"`
}

type Publisher interface {
	PublishOrderPlaced(ctx context.Context, evt OrderPlaced) error
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher keys messages by restaurant so one seller's orders stay ordered.
type KafkaPublisher struct {
	writer messageWriter
}

func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
}

func NewKafkaPublisher(writer messageWriter) *KafkaPublisher {
	return &KafkaPublisher{writer: writer}
}

func (p *KafkaPublisher) PublishOrderPlaced(ctx context.Context, evt OrderPlaced) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("encode order placed: %w", err)
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(evt.RestaurantID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte("order.placed")},
		},
	})
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// Nop drops events. Used when no brokers are configured.
type Nop struct{}

func (Nop) PublishOrderPlaced(context.Context, OrderPlaced) error { return nil }
