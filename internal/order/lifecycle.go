package order

import (
	"context"
	"fmt"
)

// Lifecycle enforces who may move an order where. All state changes go through
// here; the repo underneath guards each one with a compare-and-swap so two
// concurrent transitions on the same order cannot both succeed.
type Lifecycle struct {
	Repo Repository
}

// Place materializes the customer's cart into an order. Stock is already held
// by the cart's reservations, so no ledger call happens on this path.
func (l *Lifecycle) Place(ctx context.Context, customerID string, ship ShippingInfo, proofRef string) (*Order, error) {
	if ship.Name == "" || ship.Mobile == "" || ship.Address == "" {
		return nil, fmt.Errorf("shipping info incomplete")
	}
	if proofRef == "" {
		return nil, fmt.Errorf("payment proof required")
	}
	return l.Repo.CreateFromCart(ctx, customerID, ship, proofRef)
}

// CancelByCustomer cancels the customer's own order, permitted only while it
// is still Processing.
func (l *Lifecycle) CancelByCustomer(ctx context.Context, orderID, customerID string) (*Order, error) {
	o, err := l.Repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.CustomerID != customerID {
		return nil, ErrForbidden
	}
	if o.Status.Terminal() {
		return nil, ErrInvalidTransition
	}
	if o.Status != StatusProcessing {
		return nil, ErrForbidden
	}
	if err := l.Repo.Cancel(ctx, orderID, o.Status, CancelledByCustomer, o.Items); err != nil {
		return nil, err
	}
	return l.Repo.GetByID(ctx, orderID)
}

// CancelByOperator cancels from any non-terminal state.
func (l *Lifecycle) CancelByOperator(ctx context.Context, orderID string) (*Order, error) {
	o, err := l.Repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.Status.Terminal() {
		return nil, ErrInvalidTransition
	}
	if err := l.Repo.Cancel(ctx, orderID, o.Status, CancelledByOperator, o.Items); err != nil {
		return nil, err
	}
	return l.Repo.GetByID(ctx, orderID)
}

// Advance moves the order one step along Processing -> Shipped -> Delivered.
func (l *Lifecycle) Advance(ctx context.Context, orderID string, next Status) (*Order, error) {
	if !next.Valid() {
		return nil, ErrInvalidTransition
	}
	o, err := l.Repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !CanAdvance(o.Status, next) {
		return nil, ErrInvalidTransition
	}
	if err := l.Repo.UpdateStatus(ctx, orderID, o.Status, next); err != nil {
		return nil, err
	}
	return l.Repo.GetByID(ctx, orderID)
}

// SetPayment records the external approver's verdict. Pending is the only
// state it can leave, and it leaves it exactly once.
func (l *Lifecycle) SetPayment(ctx context.Context, orderID string, status PaymentStatus) (*Order, error) {
	o, err := l.Repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !CanSetPayment(o.PaymentStatus, status) {
		return nil, ErrInvalidTransition
	}
	if err := l.Repo.SetPaymentStatus(ctx, orderID, o.PaymentStatus, status); err != nil {
		return nil, err
	}
	return l.Repo.GetByID(ctx, orderID)
}

func (l *Lifecycle) Get(ctx context.Context, orderID string) (*Order, error) {
	return l.Repo.GetByID(ctx, orderID)
}

func (l *Lifecycle) ListByCustomer(ctx context.Context, customerID string) ([]Order, error) {
	return l.Repo.ListByCustomer(ctx, customerID)
}

func (l *Lifecycle) ListAll(ctx context.Context) ([]Order, error) {
	return l.Repo.ListAll(ctx)
}
