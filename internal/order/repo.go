package order

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/PoojaKamatchi/keva/internal/postgres"
	"github.com/PoojaKamatchi/keva/internal/stock"
)

var (
	ErrNotFound = errors.New("order not found")
	// ErrInvalidTransition: the requested state change is not permitted from
	// the order's current state (or a concurrent writer got there first).
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrForbidden: the actor lacks rights for the requested transition.
	ErrForbidden = errors.New("forbidden")
	ErrEmptyCart = errors.New("cart is empty")
)

// Repository is what the lifecycle service drives. Satisfied by Repo.
type Repository interface {
	CreateFromCart(ctx context.Context, customerID string, ship ShippingInfo, proofRef string) (*Order, error)
	GetByID(ctx context.Context, id string) (*Order, error)
	ListByCustomer(ctx context.Context, customerID string) ([]Order, error)
	ListAll(ctx context.Context) ([]Order, error)
	Cancel(ctx context.Context, id string, from Status, by string, items []Item) error
	UpdateStatus(ctx context.Context, id string, from, to Status) error
	SetPaymentStatus(ctx context.Context, id string, from, to PaymentStatus) error
}

// CartLines reads a customer's cart rows inside a transaction. Satisfied by
// cart.Store.
type CartLines interface {
	LineItems(ctx context.Context, q postgres.Querier, customerID string) ([]Item, error)
	TransferClear(ctx context.Context, q postgres.Querier, customerID string) error
}

type Repo struct {
	DB     postgres.Client
	Ledger *stock.Ledger
	Carts  CartLines
}

// CreateFromCart materializes the customer's cart into an order in a single
// transaction: freeze the line items, insert the order, drop the cart rows.
// No stock arithmetic happens here; the cart's reservations transfer to the
// order as-is.
func (r *Repo) CreateFromCart(ctx context.Context, customerID string, ship ShippingInfo, proofRef string) (*Order, error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	items, err := r.Carts.LineItems(ctx, tx, customerID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	total := 0
	for _, it := range items {
		total += it.PriceCents * it.Qty
	}

	id := uuid.NewString()
	if _, err := tx.Exec(ctx, `
		INSERT INTO orders (id, customer_id, name, mobile, shipping_address,
			total_cents, payment_proof, payment_status, order_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		id, customerID, ship.Name, ship.Mobile, ship.Address,
		total, proofRef, string(PaymentPending), string(StatusProcessing)); err != nil {
		return nil, err
	}
	for _, it := range items {
		if _, err := tx.Exec(ctx, `
			INSERT INTO order_items (order_id, product_id, name, qty, price_cents)
			VALUES ($1, $2, $3, $4, $5)`,
			id, it.ProductID, it.Name, it.Qty, it.PriceCents); err != nil {
			return nil, err
		}
	}

	if err := r.Carts.TransferClear(ctx, tx, customerID); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

const orderCols = `id, customer_id, name, mobile, shipping_address, total_cents,
	payment_method, payment_status, payment_proof, order_status,
	COALESCE(cancelled_by, ''), created_at, updated_at`

func (r *Repo) GetByID(ctx context.Context, id string) (*Order, error) {
	o, err := scanOrder(r.DB.QueryRow(ctx, `SELECT `+orderCols+` FROM orders WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if o.Items, err = r.itemsFor(ctx, id); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *Repo) ListByCustomer(ctx context.Context, customerID string) ([]Order, error) {
	return r.list(ctx, `SELECT `+orderCols+` FROM orders WHERE customer_id = $1 ORDER BY created_at DESC`, customerID)
}

func (r *Repo) ListAll(ctx context.Context) ([]Order, error) {
	return r.list(ctx, `SELECT `+orderCols+` FROM orders ORDER BY created_at DESC`)
}

// Cancel flips the order to Cancelled and credits every held unit back, in one
// transaction. The UPDATE is a compare-and-swap on the status the caller saw;
// zero rows means a concurrent transition won and nothing is released.
func (r *Repo) Cancel(ctx context.Context, id string, from Status, by string, items []Item) error {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	ct, err := tx.Exec(ctx, `
		UPDATE orders SET order_status = $3, cancelled_by = $4, updated_at = now()
		WHERE id = $1 AND order_status = $2`,
		id, string(from), string(StatusCancelled), by)
	if err != nil {
		return err
	}
	if ct.RowsAffected() != 1 {
		return ErrInvalidTransition
	}

	for _, it := range items {
		if it.ProductID == "" {
			continue
		}
		if err := r.Ledger.ReleaseIn(ctx, tx, it.ProductID, it.Qty); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *Repo) UpdateStatus(ctx context.Context, id string, from, to Status) error {
	ct, err := r.DB.Exec(ctx, `
		UPDATE orders SET order_status = $3, updated_at = now()
		WHERE id = $1 AND order_status = $2`, id, string(from), string(to))
	if err != nil {
		return err
	}
	if ct.RowsAffected() != 1 {
		return ErrInvalidTransition
	}
	return nil
}

func (r *Repo) SetPaymentStatus(ctx context.Context, id string, from, to PaymentStatus) error {
	ct, err := r.DB.Exec(ctx, `
		UPDATE orders SET payment_status = $3, updated_at = now()
		WHERE id = $1 AND payment_status = $2`, id, string(from), string(to))
	if err != nil {
		return err
	}
	if ct.RowsAffected() != 1 {
		return ErrInvalidTransition
	}
	return nil
}

func (r *Repo) list(ctx context.Context, sql string, args ...any) ([]Order, error) {
	rows, err := r.DB.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	var out []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		out = append(out, *o)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		if out[i].Items, err = r.itemsFor(ctx, out[i].ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *Repo) itemsFor(ctx context.Context, orderID string) ([]Item, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT COALESCE(product_id, ''), name, qty, price_cents
		FROM order_items WHERE order_id = $1`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ProductID, &it.Name, &it.Qty, &it.PriceCents); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func scanOrder(row pgx.Row) (*Order, error) {
	var o Order
	var payment, status string
	err := row.Scan(&o.ID, &o.CustomerID, &o.Shipping.Name, &o.Shipping.Mobile,
		&o.Shipping.Address, &o.TotalCents, &o.PaymentMethod, &payment,
		&o.PaymentProof, &status, &o.CancelledBy, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	o.PaymentStatus = PaymentStatus(payment)
	o.Status = Status(status)
	return &o, nil
}
