package order

import "time"

// Item holds the name and unit price copied from the product at order time.
// Frozen: later catalog edits never change what a placed order says.
type Item struct {
	ProductID  string `json:"product_id,omitempty"`
	Name       string `json:"name"`
	Qty        int    `json:"qty"`
	PriceCents int    `json:"price_cents"`
}

type ShippingInfo struct {
	Name    string `json:"name"`
	Mobile  string `json:"mobile"`
	Address string `json:"shipping_address"`
}

type Order struct {
	ID            string        `json:"id"`
	CustomerID    string        `json:"customer_id"`
	Shipping      ShippingInfo  `json:"shipping"`
	Items         []Item        `json:"items"`
	TotalCents    int           `json:"total_cents"`
	PaymentMethod string        `json:"payment_method"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	PaymentProof  string        `json:"payment_proof"` // opaque media-store reference
	Status        Status        `json:"order_status"`
	CancelledBy   string        `json:"cancelled_by,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}
