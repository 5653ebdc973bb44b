package models

import "time"

// Event types
const (
	EventTypeOrderCreated = "ORDER_CREATED"
	EventTypeOrderPaid    = "ORDER_PAID"
	EventTypeOrderFailed  = "ORDER_FAILED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// OrderCreatedEvent published when a pending order is written at checkout
type OrderCreatedEvent struct {
	BaseEvent
	OrderID string          `json:"order_id"`
	UserID  string          `json:"user_id"`
	Total   float64         `json:"total"`
	Items   []OrderItemData `json:"items"`
}

// OrderPaidEvent published after the paid transition commits. Consumers load
// the order from the store; the event carries identifiers only.
type OrderPaidEvent struct {
	BaseEvent
	OrderID   string  `json:"order_id"`
	PaymentID string  `json:"payment_id"`
	Total     float64 `json:"total"`
}

// OrderFailedEvent published when a provider notification marks an order failed
type OrderFailedEvent struct {
	BaseEvent
	OrderID        string `json:"order_id"`
	PaymentID      string `json:"payment_id"`
	ProviderStatus string `json:"provider_status"`
}

// OrderItemData represents item data in events
type OrderItemData struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unit_price"`
	Quantity  int     `json:"quantity"`
}
