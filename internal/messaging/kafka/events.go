package kafka

import (
	"strings"
	"time"
)

// EventType определяет тип события
type EventType string

const (
	// Order события
	EventTypeOrderCreated       EventType = "order.created"
	EventTypeOrderStatusChanged EventType = "order.status_changed"
	EventTypeOrderCancelled     EventType = "order.cancelled"
	EventTypeOrderCompleted     EventType = "order.completed"

	// Stock события
	EventTypeStockDeducted EventType = "stock.deducted"
	EventTypeStockRestored EventType = "stock.restored"
)

// Topics для Kafka
const (
	TopicOrderEvents = "backoffice.order.events"
	TopicStockEvents = "backoffice.stock.events"
)

// TopicFor возвращает топик для указанного типа события.
func TopicFor(eventType EventType) string {
	if strings.HasPrefix(string(eventType), "stock.") {
		return TopicStockEvents
	}
	return TopicOrderEvents
}

// OrderEvent представляет событие жизненного цикла заказа
type OrderEvent struct {
	EventType EventType              `json:"event_type"`
	OrderID   string                 `json:"order_id"`
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// NewOrderEvent создает новое событие заказа
func NewOrderEvent(eventType EventType, orderID, status string, metadata map[string]interface{}) *OrderEvent {
	return &OrderEvent{
		EventType: eventType,
		OrderID:   orderID,
		Status:    status,
		Timestamp: time.Now(),
		Metadata:  metadata,
	}
}

// StockEvent представляет событие складского эффекта перехода заказа
type StockEvent struct {
	EventType EventType `json:"event_type"`
	OrderID   string    `json:"order_id"`
	Units     int64     `json:"units"`
	Timestamp time.Time `json:"timestamp"`
}

// NewStockEvent создает новое складское событие
func NewStockEvent(eventType EventType, orderID string, units int64) *StockEvent {
	return &StockEvent{
		EventType: eventType,
		OrderID:   orderID,
		Units:     units,
		Timestamp: time.Now(),
	}
}
