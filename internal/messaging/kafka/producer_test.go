package kafka

import (
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/backoffice/internal/domain"
)

func newMockedProducer(t *testing.T) (*Producer, *mocks.SyncProducer) {
	t.Helper()

	mockProducer := mocks.NewSyncProducer(t, nil)
	producer := &Producer{
		producer: mockProducer,
		logger:   log.WithField("component", "kafka-producer-test"),
	}
	return producer, mockProducer
}

func expectTopic(t *testing.T, mockProducer *mocks.SyncProducer, topic string) {
	t.Helper()

	mockProducer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		if msg.Topic != topic {
			t.Errorf("expected topic %s, got %s", topic, msg.Topic)
		}
		return nil
	})
}

func TestProducer_PublishOrderEventGoesToOrderTopic(t *testing.T) {
	producer, mockProducer := newMockedProducer(t)

	expectTopic(t, mockProducer, TopicOrderEvents)

	msg := domain.OutboxMessage{
		ID:            "outbox-1",
		AggregateType: "order",
		AggregateID:   "order-123",
		EventType:     string(EventTypeOrderStatusChanged),
		Payload:       []byte(`{"event_type":"order.status_changed","order_id":"order-123","status":"completed"}`),
	}

	if err := producer.Publish(msg); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if err := mockProducer.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestProducer_PublishStockEventGoesToStockTopic(t *testing.T) {
	producer, mockProducer := newMockedProducer(t)

	expectTopic(t, mockProducer, TopicStockEvents)

	msg := domain.OutboxMessage{
		ID:            "outbox-2",
		AggregateType: "stock",
		AggregateID:   "order-123",
		EventType:     string(EventTypeStockDeducted),
		Payload:       []byte(`{"event_type":"stock.deducted","order_id":"order-123","units":3}`),
	}

	if err := producer.Publish(msg); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if err := mockProducer.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestProducer_PublishError(t *testing.T) {
	producer, mockProducer := newMockedProducer(t)

	mockProducer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	msg := domain.OutboxMessage{
		ID:          "outbox-3",
		AggregateID: "order-123",
		EventType:   string(EventTypeOrderCreated),
		Payload:     []byte(`{}`),
	}

	if err := producer.Publish(msg); err == nil {
		t.Fatal("expected error, got nil")
	}

	if err := mockProducer.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestTopicFor(t *testing.T) {
	cases := []struct {
		eventType EventType
		want      string
	}{
		{EventTypeOrderCreated, TopicOrderEvents},
		{EventTypeOrderStatusChanged, TopicOrderEvents},
		{EventTypeOrderCancelled, TopicOrderEvents},
		{EventTypeOrderCompleted, TopicOrderEvents},
		{EventTypeStockDeducted, TopicStockEvents},
		{EventTypeStockRestored, TopicStockEvents},
	}
	for _, tc := range cases {
		if got := TopicFor(tc.eventType); got != tc.want {
			t.Errorf("TopicFor(%s) = %s, want %s", tc.eventType, got, tc.want)
		}
	}
}

func TestNewOrderEvent(t *testing.T) {
	event := NewOrderEvent(EventTypeOrderCompleted, "order-123", "completed", map[string]interface{}{
		"amount_minor": 500,
	})

	if event.EventType != EventTypeOrderCompleted {
		t.Errorf("expected event type %s, got %s", EventTypeOrderCompleted, event.EventType)
	}

	if event.OrderID != "order-123" {
		t.Errorf("expected order id order-123, got %s", event.OrderID)
	}

	if event.Status != "completed" {
		t.Errorf("expected status completed, got %s", event.Status)
	}

	if event.Timestamp.IsZero() {
		t.Error("timestamp should not be zero")
	}

	if time.Since(event.Timestamp) > time.Second {
		t.Error("timestamp should be close to current time")
	}
}

func TestNewStockEvent(t *testing.T) {
	event := NewStockEvent(EventTypeStockRestored, "order-123", 7)

	if event.EventType != EventTypeStockRestored {
		t.Errorf("expected event type %s, got %s", EventTypeStockRestored, event.EventType)
	}

	if event.OrderID != "order-123" {
		t.Errorf("expected order id order-123, got %s", event.OrderID)
	}

	if event.Units != 7 {
		t.Errorf("expected 7 units, got %d", event.Units)
	}

	if event.Timestamp.IsZero() {
		t.Error("timestamp should not be zero")
	}
}
