package events

import (
	"encoding/json"
	"time"
)

const (
	EventOrderPlaced    = "OrderPlaced"
	EventOrderCancelled = "OrderCancelled"
)

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // order_id
	Payload       json.RawMessage `json:"payload"`
}

type ItemLine struct {
	ProductID  string `json:"product_id,omitempty"`
	Name       string `json:"name"`
	Qty        int    `json:"qty"`
	PriceCents int    `json:"price_cents"`
}

type OrderPlacedPayload struct {
	OrderID         string     `json:"order_id"`
	CustomerID      string     `json:"customer_id"`
	Name            string     `json:"name"`
	Mobile          string     `json:"mobile"`
	ShippingAddress string     `json:"shipping_address"`
	Items           []ItemLine `json:"items"`
	TotalCents      int        `json:"total_cents"`
}

type OrderCancelledPayload struct {
	OrderID     string     `json:"order_id"`
	CustomerID  string     `json:"customer_id"`
	CancelledBy string     `json:"cancelled_by"`
	Items       []ItemLine `json:"items"`
}
