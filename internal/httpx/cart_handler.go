package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/PoojaKamatchi/keva/internal/cart"
)

// CartService is the slice of the coordinator the cart routes need.
type CartService interface {
	AddToCart(ctx context.Context, customerID, productID string, qty int) (*cart.Snapshot, error)
	SetCartQuantity(ctx context.Context, customerID, productID string, qty int) (*cart.Snapshot, error)
	RemoveFromCart(ctx context.Context, customerID, productID string) (*cart.Snapshot, error)
	ClearCart(ctx context.Context, customerID string) (*cart.Snapshot, error)
	GetCart(ctx context.Context, customerID string) (*cart.Snapshot, error)
}

type CartHandler struct {
	Carts CartService
}

func (h *CartHandler) Register(r chi.Router) {
	r.Route("/cart", func(r chi.Router) {
		r.Use(RequireCustomer)
		r.Post("/add", h.add)
		r.Put("/update", h.update)
		r.Delete("/remove/{productID}", h.remove)
		r.Delete("/clear", h.clear)
		r.Get("/", h.get)
	})
}

type cartItemReq struct {
	ProductID string `json:"product_id"`
	Qty       int    `json:"qty"`
}

func (h *CartHandler) add(w http.ResponseWriter, r *http.Request) {
	var req cartItemReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.ProductID == "" || req.Qty < 1 {
		writeError(w, http.StatusBadRequest, "product_id and positive qty required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	snap, err := h.Carts.AddToCart(ctx, CustomerID(ctx), req.ProductID, req.Qty)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *CartHandler) update(w http.ResponseWriter, r *http.Request) {
	var req cartItemReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.ProductID == "" || req.Qty < 0 {
		writeError(w, http.StatusBadRequest, "product_id and non-negative qty required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	snap, err := h.Carts.SetCartQuantity(ctx, CustomerID(ctx), req.ProductID, req.Qty)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *CartHandler) remove(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productID")
	if productID == "" {
		writeError(w, http.StatusBadRequest, "missing product id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	snap, err := h.Carts.RemoveFromCart(ctx, CustomerID(ctx), productID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *CartHandler) clear(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	snap, err := h.Carts.ClearCart(ctx, CustomerID(ctx))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *CartHandler) get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	snap, err := h.Carts.GetCart(ctx, CustomerID(ctx))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}
