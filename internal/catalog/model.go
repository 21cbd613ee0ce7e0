package catalog

import "time"

// Name carries the storefront's two display languages.
type Name struct {
	En string `json:"en"`
	Ta string `json:"ta,omitempty"`
}

type Product struct {
	ID         string    `json:"id"`
	Name       Name      `json:"name"`
	PriceCents int       `json:"price_cents"`
	Stock      int       `json:"stock"`
	CategoryID string    `json:"category_id"`
	Type       string    `json:"type"` // KEVA | ORGANIC
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
