package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingWriter struct {
	msgs   []kafka.Message
	closed bool
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *recordingWriter) Close() error {
	w.closed = true
	return nil
}

func TestPublishOrderPlaced(t *testing.T) {
	w := &recordingWriter{}
	p := NewKafkaPublisher(w)

	evt := OrderPlaced{
		OrderID:      "o-1",
		UserID:       "u-1",
		RestaurantID: "r-7",
		FoodItemID:   "f-1",
		Quantity:     2,
		Total:        decimal.RequireFromString("252"),
		PaymentRef:   "pay_1",
		PlacedAt:     time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, p.PublishOrderPlaced(context.Background(), evt))
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, "r-7", string(msg.Key))
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, "order.placed", string(msg.Headers[0].Value))

	var decoded OrderPlaced
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, "o-1", decoded.OrderID)
	assert.True(t, decoded.Total.Equal(evt.Total))

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestNewKafkaWriter(t *testing.T) {
	w := NewKafkaWriter([]string{"localhost:9092"}, "orders.placed")
	assert.Equal(t, "orders.placed", w.Topic)
	assert.Equal(t, "localhost:9092", w.Addr.String())
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = Nop{}
	assert.NoError(t, p.PublishOrderPlaced(context.Background(), OrderPlaced{}))
}
