// Package cart owns the customer -> line items mapping. Every quantity change
// goes through the stock ledger inside the same transaction as the cart row
// mutation, so a unit is always either available or held, never both.
package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/PoojaKamatchi/keva/internal/postgres"
	"github.com/PoojaKamatchi/keva/internal/stock"
)

var (
	// ErrOutOfStock reports a reservation the ledger could not cover. The
	// cart is unchanged.
	ErrOutOfStock = errors.New("not enough stock")
	// ErrNotFound reports an unknown product reference.
	ErrNotFound = errors.New("product not found")
)

type Store struct {
	DB     postgres.Client
	Ledger *stock.Ledger
}

// Add reserves qty more units and creates or increments the line item.
func (s *Store) Add(ctx context.Context, customerID, productID string, qty int) (*Snapshot, error) {
	if qty < 1 {
		return nil, fmt.Errorf("qty must be at least 1, got %d", qty)
	}

	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := s.reserve(ctx, tx, productID, qty); err != nil {
		return nil, err
	}
	if _, err := tx.Exec(ctx, `
		INSERT INTO cart_items (customer_id, product_id, qty)
		VALUES ($1, $2, $3)
		ON CONFLICT (customer_id, product_id)
		DO UPDATE SET qty = cart_items.qty + EXCLUDED.qty, updated_at = now()`,
		customerID, productID, qty); err != nil {
		return nil, err
	}

	snap, err := s.snapshot(ctx, tx, customerID)
	if err != nil {
		return nil, err
	}
	return snap, tx.Commit(ctx)
}

// SetQuantity moves the line to newQty, reserving or releasing the delta.
// Zero removes the line; an absent line behaves as Add.
func (s *Store) SetQuantity(ctx context.Context, customerID, productID string, newQty int) (*Snapshot, error) {
	if newQty < 0 {
		return nil, fmt.Errorf("qty must not be negative, got %d", newQty)
	}
	if newQty == 0 {
		return s.Remove(ctx, customerID, productID)
	}

	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var current int
	err = tx.QueryRow(ctx, `
		SELECT qty FROM cart_items WHERE customer_id = $1 AND product_id = $2`,
		customerID, productID).Scan(&current)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		current = 0
	case err != nil:
		return nil, err
	}

	delta := newQty - current
	switch {
	case delta > 0:
		if err := s.reserve(ctx, tx, productID, delta); err != nil {
			return nil, err
		}
	case delta < 0:
		if err := s.Ledger.ReleaseIn(ctx, tx, productID, -delta); err != nil {
			return nil, err
		}
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO cart_items (customer_id, product_id, qty)
		VALUES ($1, $2, $3)
		ON CONFLICT (customer_id, product_id)
		DO UPDATE SET qty = EXCLUDED.qty, updated_at = now()`,
		customerID, productID, newQty); err != nil {
		return nil, err
	}

	snap, err := s.snapshot(ctx, tx, customerID)
	if err != nil {
		return nil, err
	}
	return snap, tx.Commit(ctx)
}

// Remove releases the line's units and drops it. Absent line is a no-op.
func (s *Store) Remove(ctx context.Context, customerID, productID string) (*Snapshot, error) {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var current int
	err = tx.QueryRow(ctx, `
		SELECT qty FROM cart_items WHERE customer_id = $1 AND product_id = $2`,
		customerID, productID).Scan(&current)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		// nothing to remove
	case err != nil:
		return nil, err
	default:
		if err := s.Ledger.ReleaseIn(ctx, tx, productID, current); err != nil {
			return nil, err
		}
		if _, err := tx.Exec(ctx, `
			DELETE FROM cart_items WHERE customer_id = $1 AND product_id = $2`,
			customerID, productID); err != nil {
			return nil, err
		}
	}

	snap, err := s.snapshot(ctx, tx, customerID)
	if err != nil {
		return nil, err
	}
	return snap, tx.Commit(ctx)
}

// Clear releases every held unit and empties the cart. Calling it on an empty
// cart changes nothing.
func (s *Store) Clear(ctx context.Context, customerID string) (*Snapshot, error) {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	rows, err := tx.Query(ctx, `
		SELECT product_id, qty FROM cart_items WHERE customer_id = $1`, customerID)
	if err != nil {
		return nil, err
	}
	type line struct {
		pid string
		qty int
	}
	var lines []line
	for rows.Next() {
		var l line
		if err := rows.Scan(&l.pid, &l.qty); err != nil {
			rows.Close()
			return nil, err
		}
		lines = append(lines, l)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, l := range lines {
		if err := s.Ledger.ReleaseIn(ctx, tx, l.pid, l.qty); err != nil {
			return nil, err
		}
	}
	if _, err := tx.Exec(ctx, `
		DELETE FROM cart_items WHERE customer_id = $1`, customerID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &Snapshot{CustomerID: customerID, Items: []Item{}}, nil
}

// TransferClear drops the cart rows without releasing stock: ownership of the
// hold has passed to a newly created order. It runs on the checkout
// transaction so the order insert and the cart drop commit together.
func (s *Store) TransferClear(ctx context.Context, q postgres.Querier, customerID string) error {
	_, err := q.Exec(ctx, `DELETE FROM cart_items WHERE customer_id = $1`, customerID)
	return err
}

// Get returns the cart snapshot without mutating anything. A customer with no
// rows gets an empty snapshot, matching the lazily-created cart.
func (s *Store) Get(ctx context.Context, customerID string) (*Snapshot, error) {
	return s.snapshot(ctx, s.DB, customerID)
}

// Lines returns the raw product/qty pairs, joined with current name and price.
// Checkout uses it inside its own transaction.
func (s *Store) Lines(ctx context.Context, q postgres.Querier, customerID string) ([]Item, error) {
	rows, err := q.Query(ctx, `
		SELECT ci.product_id, p.name_en, p.price_cents, ci.qty
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.customer_id = $1
		ORDER BY ci.created_at`, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ProductID, &it.Name, &it.PriceCents, &it.Qty); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (s *Store) reserve(ctx context.Context, q postgres.Querier, productID string, qty int) error {
	err := s.Ledger.ReserveIn(ctx, q, productID, qty)
	switch {
	case errors.Is(err, stock.ErrInsufficientStock):
		return ErrOutOfStock
	case errors.Is(err, stock.ErrNotFound):
		return ErrNotFound
	}
	return err
}

func (s *Store) snapshot(ctx context.Context, q postgres.Querier, customerID string) (*Snapshot, error) {
	items, err := s.Lines(ctx, q, customerID)
	if err != nil {
		return nil, err
	}
	snap := &Snapshot{CustomerID: customerID, Items: items}
	if snap.Items == nil {
		snap.Items = []Item{}
	}
	for _, it := range items {
		snap.TotalCents += it.PriceCents * it.Qty
	}
	return snap, nil
}
