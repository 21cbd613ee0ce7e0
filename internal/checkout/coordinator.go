// Package checkout sequences cart, ledger and order lifecycle so each public
// request is one atomic unit from the caller's point of view.
package checkout

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/PoojaKamatchi/keva/internal/cart"
	"github.com/PoojaKamatchi/keva/internal/events"
	kafkax "github.com/PoojaKamatchi/keva/internal/kafka"
	"github.com/PoojaKamatchi/keva/internal/order"
	"github.com/PoojaKamatchi/keva/internal/postgres"
	"github.com/PoojaKamatchi/keva/internal/redisx"
)

// CartSource adapts cart.Store to what the order repo needs during checkout.
type CartSource struct {
	Store *cart.Store
}

func (c CartSource) LineItems(ctx context.Context, q postgres.Querier, customerID string) ([]order.Item, error) {
	lines, err := c.Store.Lines(ctx, q, customerID)
	if err != nil {
		return nil, err
	}
	items := make([]order.Item, 0, len(lines))
	for _, l := range lines {
		items = append(items, order.Item{
			ProductID:  l.ProductID,
			Name:       l.Name,
			Qty:        l.Qty,
			PriceCents: l.PriceCents,
		})
	}
	return items, nil
}

func (c CartSource) TransferClear(ctx context.Context, q postgres.Querier, customerID string) error {
	return c.Store.TransferClear(ctx, q, customerID)
}

// Coordinator is the single entry point the HTTP layer talks to. Cart
// mutations delegate to the store (which drives the ledger itself); checkout
// and cancellation go through the lifecycle. Events and the status cache are
// side effects fired after commit; their failure never rolls anything back.
type Coordinator struct {
	Carts             *cart.Store
	Orders            *order.Lifecycle
	Redis             *redis.Client
	PlacedProducer    *kafkax.Producer
	CancelledProducer *kafkax.Producer
	Service           string
}

func (c *Coordinator) AddToCart(ctx context.Context, customerID, productID string, qty int) (*cart.Snapshot, error) {
	snap, err := c.Carts.Add(ctx, customerID, productID, qty)
	if err != nil {
		return nil, err
	}
	c.cacheCart(ctx, snap)
	return snap, nil
}

func (c *Coordinator) SetCartQuantity(ctx context.Context, customerID, productID string, qty int) (*cart.Snapshot, error) {
	snap, err := c.Carts.SetQuantity(ctx, customerID, productID, qty)
	if err != nil {
		return nil, err
	}
	c.cacheCart(ctx, snap)
	return snap, nil
}

func (c *Coordinator) RemoveFromCart(ctx context.Context, customerID, productID string) (*cart.Snapshot, error) {
	snap, err := c.Carts.Remove(ctx, customerID, productID)
	if err != nil {
		return nil, err
	}
	c.cacheCart(ctx, snap)
	return snap, nil
}

func (c *Coordinator) ClearCart(ctx context.Context, customerID string) (*cart.Snapshot, error) {
	snap, err := c.Carts.Clear(ctx, customerID)
	if err != nil {
		return nil, err
	}
	c.cacheCart(ctx, snap)
	return snap, nil
}

func (c *Coordinator) GetCart(ctx context.Context, customerID string) (*cart.Snapshot, error) {
	if c.Redis != nil {
		key := fmt.Sprintf(redisx.KeyCartSnapshot, customerID)
		if s, err := c.Redis.Get(ctx, key).Result(); err == nil && s != "" {
			var snap cart.Snapshot
			if json.Unmarshal([]byte(s), &snap) == nil {
				return &snap, nil
			}
		}
	}
	snap, err := c.Carts.Get(ctx, customerID)
	if err != nil {
		return nil, err
	}
	c.cacheCart(ctx, snap)
	return snap, nil
}

// Checkout converts the cart into an order. Create and transfer-clear commit
// in one transaction inside the repo; reservation ownership moves to the order
// with no stock arithmetic.
func (c *Coordinator) Checkout(ctx context.Context, customerID string, ship order.ShippingInfo, proofRef string) (*order.Order, error) {
	o, err := c.Orders.Place(ctx, customerID, ship, proofRef)
	if err != nil {
		return nil, err
	}
	c.dropCartCache(ctx, customerID)
	c.cacheStatus(ctx, o)
	c.publishPlaced(o)
	return o, nil
}

func (c *Coordinator) CancelByCustomer(ctx context.Context, orderID, customerID string) (*order.Order, error) {
	o, err := c.Orders.CancelByCustomer(ctx, orderID, customerID)
	if err != nil {
		return nil, err
	}
	c.cacheStatus(ctx, o)
	c.publishCancelled(o)
	return o, nil
}

func (c *Coordinator) CancelByOperator(ctx context.Context, orderID string) (*order.Order, error) {
	o, err := c.Orders.CancelByOperator(ctx, orderID)
	if err != nil {
		return nil, err
	}
	c.cacheStatus(ctx, o)
	c.publishCancelled(o)
	return o, nil
}

func (c *Coordinator) AdvanceStatus(ctx context.Context, orderID string, next order.Status) (*order.Order, error) {
	o, err := c.Orders.Advance(ctx, orderID, next)
	if err != nil {
		return nil, err
	}
	c.cacheStatus(ctx, o)
	return o, nil
}

func (c *Coordinator) SetPaymentStatus(ctx context.Context, orderID string, status order.PaymentStatus) (*order.Order, error) {
	o, err := c.Orders.SetPayment(ctx, orderID, status)
	if err != nil {
		return nil, err
	}
	c.cacheStatus(ctx, o)
	return o, nil
}

func (c *Coordinator) GetOrder(ctx context.Context, orderID string) (*order.Order, error) {
	return c.Orders.Get(ctx, orderID)
}

func (c *Coordinator) ListCustomerOrders(ctx context.Context, customerID string) ([]order.Order, error) {
	return c.Orders.ListByCustomer(ctx, customerID)
}

func (c *Coordinator) ListAllOrders(ctx context.Context) ([]order.Order, error) {
	return c.Orders.ListAll(ctx)
}

// OrderStatus serves status polling from the cache when it can, the repo when
// it must.
func (c *Coordinator) OrderStatus(ctx context.Context, orderID string) (json.RawMessage, error) {
	key := fmt.Sprintf(redisx.KeyOrderStatus, orderID)
	if c.Redis != nil {
		if s, err := c.Redis.Get(ctx, key).Result(); err == nil && s != "" {
			return json.RawMessage(s), nil
		}
	}
	o, err := c.Orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	b := statusBody(o)
	if c.Redis != nil {
		_ = c.Redis.Set(ctx, key, b, redisx.TTLStatusCache).Err()
	}
	return b, nil
}

func (c *Coordinator) cacheCart(ctx context.Context, snap *cart.Snapshot) {
	if c.Redis == nil {
		return
	}
	b, err := json.Marshal(snap)
	if err != nil {
		return
	}
	key := fmt.Sprintf(redisx.KeyCartSnapshot, snap.CustomerID)
	_ = c.Redis.Set(ctx, key, b, redisx.TTLCartCache).Err()
}

func (c *Coordinator) dropCartCache(ctx context.Context, customerID string) {
	if c.Redis == nil {
		return
	}
	_ = c.Redis.Del(ctx, fmt.Sprintf(redisx.KeyCartSnapshot, customerID)).Err()
}

func (c *Coordinator) cacheStatus(ctx context.Context, o *order.Order) {
	if c.Redis == nil {
		return
	}
	key := fmt.Sprintf(redisx.KeyOrderStatus, o.ID)
	_ = c.Redis.Set(ctx, key, statusBody(o), redisx.TTLStatusCache).Err()
}

func statusBody(o *order.Order) []byte {
	b, _ := json.Marshal(map[string]any{
		"order_status":   o.Status,
		"payment_status": o.PaymentStatus,
	})
	return b
}

func (c *Coordinator) publishPlaced(o *order.Order) {
	if c.PlacedProducer == nil {
		return
	}
	ev := events.Envelope{
		EventID:       uuid.NewString(),
		EventType:     events.EventOrderPlaced,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      c.Service,
		CorrelationID: o.ID,
		Payload: kafkax.MustMarshal(events.OrderPlacedPayload{
			OrderID:         o.ID,
			CustomerID:      o.CustomerID,
			Name:            o.Shipping.Name,
			Mobile:          o.Shipping.Mobile,
			ShippingAddress: o.Shipping.Address,
			Items:           toLines(o.Items),
			TotalCents:      o.TotalCents,
		}),
	}
	c.PlacedProducer.Publish(events.PartitionKey(o.ID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(events.EventOrderPlaced)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

func (c *Coordinator) publishCancelled(o *order.Order) {
	if c.CancelledProducer == nil {
		return
	}
	ev := events.Envelope{
		EventID:       uuid.NewString(),
		EventType:     events.EventOrderCancelled,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      c.Service,
		CorrelationID: o.ID,
		Payload: kafkax.MustMarshal(events.OrderCancelledPayload{
			OrderID:     o.ID,
			CustomerID:  o.CustomerID,
			CancelledBy: o.CancelledBy,
			Items:       toLines(o.Items),
		}),
	}
	c.CancelledProducer.Publish(events.PartitionKey(o.ID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(events.EventOrderCancelled)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

func toLines(items []order.Item) []events.ItemLine {
	out := make([]events.ItemLine, 0, len(items))
	for _, it := range items {
		out = append(out, events.ItemLine{
			ProductID:  it.ProductID,
			Name:       it.Name,
			Qty:        it.Qty,
			PriceCents: it.PriceCents,
		})
	}
	return out
}
