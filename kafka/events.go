package kafka

import "time"

// StockThresholdCrossedEvent is published when a movement pushes a product
// across its low/out-of-stock threshold
type StockThresholdCrossedEvent struct {
	EventID        string    `json:"event_id"`
	EventType      string    `json:"event_type"`
	ProductKey     string    `json:"product_key"`
	PreviousOnHand int       `json:"previous_on_hand"`
	NewOnHand      int       `json:"new_on_hand"`
	MinQuantity    int       `json:"min_quantity"`
	Crossed        string    `json:"crossed"`
	MovementID     uint      `json:"movement_id"`
	Timestamp      time.Time `json:"timestamp"`
}

// OrderCompletedEvent arrives from the order/marketplace flow; the ledger
// applies it as a sale movement referencing the order id
type OrderCompletedEvent struct {
	EventID    string    `json:"event_id"`
	EventType  string    `json:"event_type"`
	OrderID    string    `json:"order_id"`
	ProductKey string    `json:"product_key"`
	Quantity   int       `json:"quantity"`
	Timestamp  time.Time `json:"timestamp"`
}

// Event types
const (
	EventTypeStockThresholdCrossed = "stock.threshold_crossed"
	EventTypeOrderCompleted        = "order.completed"
)

// Kafka topics
const (
	TopicStockThreshold  = "stock-threshold"
	TopicOrdersCompleted = "orders-completed"
)
