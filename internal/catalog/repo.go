package catalog

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/PoojaKamatchi/keva/internal/postgres"
)

var ErrNotFound = errors.New("product not found")

// Repo is read-only: stock mutations belong to the stock ledger, everything
// else about products is admin CRUD outside this service's core.
type Repo struct {
	DB postgres.Client
}

const productCols = `id, name_en, name_ta, price_cents, stock, category_id, product_type, created_at, updated_at`

func (r *Repo) List(ctx context.Context) ([]Product, error) {
	rows, err := r.DB.Query(ctx, `SELECT `+productCols+` FROM products ORDER BY name_en`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *Repo) Get(ctx context.Context, id string) (Product, error) {
	row := r.DB.QueryRow(ctx, `SELECT `+productCols+` FROM products WHERE id = $1`, id)
	p, err := scanProduct(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, ErrNotFound
	}
	return p, err
}

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.Name.En, &p.Name.Ta, &p.PriceCents, &p.Stock,
		&p.CategoryID, &p.Type, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}
