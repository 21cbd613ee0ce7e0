package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/PoojaKamatchi/keva/internal/order"
)

// OrderService is the slice of the coordinator the order routes need.
type OrderService interface {
	Checkout(ctx context.Context, customerID string, ship order.ShippingInfo, proofRef string) (*order.Order, error)
	CancelByCustomer(ctx context.Context, orderID, customerID string) (*order.Order, error)
	CancelByOperator(ctx context.Context, orderID string) (*order.Order, error)
	AdvanceStatus(ctx context.Context, orderID string, next order.Status) (*order.Order, error)
	SetPaymentStatus(ctx context.Context, orderID string, status order.PaymentStatus) (*order.Order, error)
	GetOrder(ctx context.Context, orderID string) (*order.Order, error)
	ListCustomerOrders(ctx context.Context, customerID string) ([]order.Order, error)
	ListAllOrders(ctx context.Context) ([]order.Order, error)
}

type OrdersHandler struct {
	Orders OrderService
}

func (h *OrdersHandler) Register(r chi.Router) {
	r.Route("/orders", func(r chi.Router) {
		// customer routes
		r.Group(func(r chi.Router) {
			r.Use(RequireCustomer)
			r.Post("/", h.create)
			r.Get("/my", h.listMine)
			r.Put("/{id}/cancel", h.cancel)
			r.Get("/{id}", h.get)
		})
		// operator routes
		r.Group(func(r chi.Router) {
			r.Use(RequireOperator)
			r.Get("/all", h.listAll)
			r.Put("/{id}/status", h.advance)
			r.Put("/{id}/payment", h.setPayment)
		})
	})
}

type createOrderReq struct {
	Name            string `json:"name"`
	Mobile          string `json:"mobile"`
	ShippingAddress string `json:"shipping_address"`
	ProofRef        string `json:"proof_ref"`
}

func (h *OrdersHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createOrderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Name == "" || req.Mobile == "" || req.ShippingAddress == "" {
		writeError(w, http.StatusBadRequest, "missing shipping info")
		return
	}
	if req.ProofRef == "" {
		writeError(w, http.StatusBadRequest, "payment proof required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	ship := order.ShippingInfo{Name: req.Name, Mobile: req.Mobile, Address: req.ShippingAddress}
	o, err := h.Orders.Checkout(ctx, CustomerID(ctx), ship, req.ProofRef)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, o)
}

func (h *OrdersHandler) listMine(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	out, err := h.Orders.ListCustomerOrders(ctx, CustomerID(ctx))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *OrdersHandler) cancel(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	o, err := h.Orders.CancelByCustomer(ctx, chi.URLParam(r, "id"), CustomerID(ctx))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

// get lets a customer read their own order. Operators use /orders/all.
func (h *OrdersHandler) get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	o, err := h.Orders.GetOrder(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if o.CustomerID != CustomerID(ctx) && r.Header.Get(HeaderUserRole) != RoleOperator {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *OrdersHandler) listAll(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	out, err := h.Orders.ListAllOrders(ctx)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

type advanceReq struct {
	Status string `json:"status"`
}

func (h *OrdersHandler) advance(w http.ResponseWriter, r *http.Request) {
	var req advanceReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	id := chi.URLParam(r, "id")
	// cancellation through the status route maps to the operator cancel path,
	// matching how the admin panel drives it
	var o *order.Order
	var err error
	if order.Status(req.Status) == order.StatusCancelled {
		o, err = h.Orders.CancelByOperator(ctx, id)
	} else {
		o, err = h.Orders.AdvanceStatus(ctx, id, order.Status(req.Status))
	}
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

type paymentReq struct {
	PaymentStatus string `json:"payment_status"`
}

func (h *OrdersHandler) setPayment(w http.ResponseWriter, r *http.Request) {
	var req paymentReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	o, err := h.Orders.SetPaymentStatus(ctx, chi.URLParam(r, "id"), order.PaymentStatus(req.PaymentStatus))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}
