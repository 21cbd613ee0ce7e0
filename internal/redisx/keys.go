package redisx

import "time"

const (
	// Cache of an order's status pair: order_status:{order_id} ->
	// {"order_status":"...","payment_status":"..."}
	KeyOrderStatus = "order_status:%s"

	// Snapshot of a customer's cart: cart:{customer_id}
	KeyCartSnapshot = "cart:%s"

	// Dedup for event consumers: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLStatusCache = 5 * time.Minute
	TTLCartCache   = 15 * time.Minute
	TTLDedup       = 48 * time.Hour
)
