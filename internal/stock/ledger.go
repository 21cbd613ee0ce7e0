// Package stock owns the available-quantity counter on products. Every hold a
// cart or order takes against stock goes through Reserve, and every unit given
// back goes through Release; no other code touches products.stock.
package stock

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/PoojaKamatchi/keva/internal/postgres"
)

var (
	// ErrInsufficientStock is a business outcome, not a defect. The attempted
	// reservation left the row untouched.
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrNotFound          = errors.New("product not found")
)

type Ledger struct {
	DB postgres.Client
}

// Reserve decrements stock by qty in one conditional statement. The WHERE
// clause carries the availability check, so two concurrent reservations can
// never both pass on the same units.
func (l *Ledger) Reserve(ctx context.Context, productID string, qty int) error {
	return l.ReserveIn(ctx, l.DB, productID, qty)
}

// ReserveIn is Reserve running on the caller's transaction.
func (l *Ledger) ReserveIn(ctx context.Context, q postgres.Querier, productID string, qty int) error {
	if qty <= 0 {
		return fmt.Errorf("reserve %s: qty must be positive, got %d", productID, qty)
	}
	ct, err := q.Exec(ctx, `
		UPDATE products SET stock = stock - $2, updated_at = now()
		WHERE id = $1 AND stock >= $2`, productID, qty)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 1 {
		return nil
	}

	// No row updated: either the product is gone or stock is short.
	var have int
	err = q.QueryRow(ctx, `SELECT stock FROM products WHERE id = $1`, productID).Scan(&have)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return ErrInsufficientStock
}

// Release credits qty back. Each released quantity must correspond to exactly
// one prior successful Reserve; the ledger does not track that pairing itself.
// A product deleted since the reserve makes the credit a no-op.
func (l *Ledger) Release(ctx context.Context, productID string, qty int) error {
	return l.ReleaseIn(ctx, l.DB, productID, qty)
}

// ReleaseIn is Release running on the caller's transaction.
func (l *Ledger) ReleaseIn(ctx context.Context, q postgres.Querier, productID string, qty int) error {
	if qty <= 0 {
		return fmt.Errorf("release %s: qty must be positive, got %d", productID, qty)
	}
	_, err := q.Exec(ctx, `
		UPDATE products SET stock = stock + $2, updated_at = now()
		WHERE id = $1`, productID, qty)
	return err
}
