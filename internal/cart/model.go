package cart

// Item is a cart line joined with the product's current display name and
// price. Qty is counted against the stock ledger: every unit here is held.
type Item struct {
	ProductID  string `json:"product_id"`
	Name       string `json:"name"`
	PriceCents int    `json:"price_cents"`
	Qty        int    `json:"qty"`
}

// Snapshot is what every mutating operation returns for rendering. Its summed
// quantities always match what the ledger has on hold for this customer.
type Snapshot struct {
	CustomerID string `json:"customer_id"`
	Items      []Item `json:"items"`
	TotalCents int    `json:"total_cents"`
}
