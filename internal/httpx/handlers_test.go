package httpx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PoojaKamatchi/keva/internal/cart"
	"github.com/PoojaKamatchi/keva/internal/catalog"
	"github.com/PoojaKamatchi/keva/internal/order"
)

type fakeCartSvc struct {
	err          error
	lastCustomer string
	lastProduct  string
	lastQty      int
	lastCall     string
}

func (f *fakeCartSvc) snap(customer string) (*cart.Snapshot, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &cart.Snapshot{CustomerID: customer, Items: []cart.Item{}}, nil
}

func (f *fakeCartSvc) AddToCart(_ context.Context, customer, product string, qty int) (*cart.Snapshot, error) {
	f.lastCall, f.lastCustomer, f.lastProduct, f.lastQty = "add", customer, product, qty
	return f.snap(customer)
}

func (f *fakeCartSvc) SetCartQuantity(_ context.Context, customer, product string, qty int) (*cart.Snapshot, error) {
	f.lastCall, f.lastCustomer, f.lastProduct, f.lastQty = "set", customer, product, qty
	return f.snap(customer)
}

func (f *fakeCartSvc) RemoveFromCart(_ context.Context, customer, product string) (*cart.Snapshot, error) {
	f.lastCall, f.lastCustomer, f.lastProduct = "remove", customer, product
	return f.snap(customer)
}

func (f *fakeCartSvc) ClearCart(_ context.Context, customer string) (*cart.Snapshot, error) {
	f.lastCall, f.lastCustomer = "clear", customer
	return f.snap(customer)
}

func (f *fakeCartSvc) GetCart(_ context.Context, customer string) (*cart.Snapshot, error) {
	f.lastCall, f.lastCustomer = "get", customer
	return f.snap(customer)
}

type fakeOrderSvc struct {
	err      error
	order    order.Order
	lastCall string
	lastID   string
}

func (f *fakeOrderSvc) result() (*order.Order, error) {
	if f.err != nil {
		return nil, f.err
	}
	o := f.order
	return &o, nil
}

func (f *fakeOrderSvc) Checkout(_ context.Context, customerID string, _ order.ShippingInfo, _ string) (*order.Order, error) {
	f.lastCall, f.lastID = "checkout", customerID
	return f.result()
}

func (f *fakeOrderSvc) CancelByCustomer(_ context.Context, orderID, _ string) (*order.Order, error) {
	f.lastCall, f.lastID = "cancelByCustomer", orderID
	return f.result()
}

func (f *fakeOrderSvc) CancelByOperator(_ context.Context, orderID string) (*order.Order, error) {
	f.lastCall, f.lastID = "cancelByOperator", orderID
	return f.result()
}

func (f *fakeOrderSvc) AdvanceStatus(_ context.Context, orderID string, _ order.Status) (*order.Order, error) {
	f.lastCall, f.lastID = "advance", orderID
	return f.result()
}

func (f *fakeOrderSvc) SetPaymentStatus(_ context.Context, orderID string, _ order.PaymentStatus) (*order.Order, error) {
	f.lastCall, f.lastID = "setPayment", orderID
	return f.result()
}

func (f *fakeOrderSvc) GetOrder(_ context.Context, orderID string) (*order.Order, error) {
	f.lastCall, f.lastID = "get", orderID
	return f.result()
}

func (f *fakeOrderSvc) ListCustomerOrders(context.Context, string) ([]order.Order, error) {
	f.lastCall = "listMine"
	if f.err != nil {
		return nil, f.err
	}
	return []order.Order{f.order}, nil
}

func (f *fakeOrderSvc) ListAllOrders(context.Context) ([]order.Order, error) {
	f.lastCall = "listAll"
	if f.err != nil {
		return nil, f.err
	}
	return []order.Order{f.order}, nil
}

func cartRouter(svc CartService) *chi.Mux {
	r := chi.NewRouter()
	(&CartHandler{Carts: svc}).Register(r)
	return r
}

func orderRouter(svc OrderService) *chi.Mux {
	r := chi.NewRouter()
	(&OrdersHandler{Orders: svc}).Register(r)
	return r
}

func do(t *testing.T, h http.Handler, method, path, body string, hdr map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

var asAlice = map[string]string{HeaderUserID: "alice"}
var asOperator = map[string]string{HeaderUserID: "ops", HeaderUserRole: RoleOperator}

func TestCartRequiresIdentity(t *testing.T) {
	r := cartRouter(&fakeCartSvc{})
	rec := do(t, r, http.MethodPost, "/cart/add", `{"product_id":"p1","qty":1}`, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCartAdd(t *testing.T) {
	svc := &fakeCartSvc{}
	r := cartRouter(svc)

	rec := do(t, r, http.MethodPost, "/cart/add", `{"product_id":"p1","qty":2}`, asAlice)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "add", svc.lastCall)
	assert.Equal(t, "alice", svc.lastCustomer)
	assert.Equal(t, "p1", svc.lastProduct)
	assert.Equal(t, 2, svc.lastQty)
}

func TestCartAddBadRequests(t *testing.T) {
	svc := &fakeCartSvc{}
	r := cartRouter(svc)

	for name, body := range map[string]string{
		"invalid json": `{`,
		"zero qty":     `{"product_id":"p1","qty":0}`,
		"no product":   `{"qty":1}`,
	} {
		t.Run(name, func(t *testing.T) {
			rec := do(t, r, http.MethodPost, "/cart/add", body, asAlice)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Empty(t, svc.lastCall)
		})
	}
}

func TestCartAddOutOfStock(t *testing.T) {
	r := cartRouter(&fakeCartSvc{err: cart.ErrOutOfStock})
	rec := do(t, r, http.MethodPost, "/cart/add", `{"product_id":"p1","qty":3}`, asAlice)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "not enough stock")
}

func TestCartUpdateZeroRemoves(t *testing.T) {
	svc := &fakeCartSvc{}
	r := cartRouter(svc)
	rec := do(t, r, http.MethodPut, "/cart/update", `{"product_id":"p1","qty":0}`, asAlice)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "set", svc.lastCall)
	assert.Equal(t, 0, svc.lastQty)
}

func TestCartRemoveByPath(t *testing.T) {
	svc := &fakeCartSvc{}
	r := cartRouter(svc)
	rec := do(t, r, http.MethodDelete, "/cart/remove/p7", "", asAlice)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "remove", svc.lastCall)
	assert.Equal(t, "p7", svc.lastProduct)
}

func TestCartUnknownProduct(t *testing.T) {
	r := cartRouter(&fakeCartSvc{err: cart.ErrNotFound})
	rec := do(t, r, http.MethodPost, "/cart/add", `{"product_id":"ghost","qty":1}`, asAlice)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateOrder(t *testing.T) {
	svc := &fakeOrderSvc{order: order.Order{ID: "o1", CustomerID: "alice"}}
	r := orderRouter(svc)

	body := `{"name":"Pooja","mobile":"9876500000","shipping_address":"12 Main St","proof_ref":"img-1"}`
	rec := do(t, r, http.MethodPost, "/orders/", body, asAlice)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "checkout", svc.lastCall)
}

func TestCreateOrderRejectsIncompleteBody(t *testing.T) {
	svc := &fakeOrderSvc{}
	r := orderRouter(svc)

	for name, body := range map[string]string{
		"no proof":    `{"name":"P","mobile":"9","shipping_address":"x"}`,
		"no shipping": `{"proof_ref":"img-1"}`,
		"bad json":    `{`,
	} {
		t.Run(name, func(t *testing.T) {
			rec := do(t, r, http.MethodPost, "/orders/", body, asAlice)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Empty(t, svc.lastCall)
		})
	}
}

func TestCreateOrderEmptyCart(t *testing.T) {
	r := orderRouter(&fakeOrderSvc{err: order.ErrEmptyCart})
	body := `{"name":"P","mobile":"9","shipping_address":"x","proof_ref":"img"}`
	rec := do(t, r, http.MethodPost, "/orders/", body, asAlice)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCancelForbidden(t *testing.T) {
	r := orderRouter(&fakeOrderSvc{err: order.ErrForbidden})
	rec := do(t, r, http.MethodPut, "/orders/o1/cancel", "", asAlice)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCancelConflictWhenTerminal(t *testing.T) {
	r := orderRouter(&fakeOrderSvc{err: order.ErrInvalidTransition})
	rec := do(t, r, http.MethodPut, "/orders/o1/cancel", "", asAlice)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestGetOrderOwnership(t *testing.T) {
	svc := &fakeOrderSvc{order: order.Order{ID: "o1", CustomerID: "alice"}}
	r := orderRouter(svc)

	rec := do(t, r, http.MethodGet, "/orders/o1", "", asAlice)
	assert.Equal(t, http.StatusOK, rec.Code)

	// another customer cannot read it
	rec = do(t, r, http.MethodGet, "/orders/o1", "", map[string]string{HeaderUserID: "bob"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// an operator can
	rec = do(t, r, http.MethodGet, "/orders/o1", "", asOperator)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestOperatorRoutesRequireRole(t *testing.T) {
	svc := &fakeOrderSvc{order: order.Order{ID: "o1"}}
	r := orderRouter(svc)

	rec := do(t, r, http.MethodGet, "/orders/all", "", asAlice)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(t, r, http.MethodGet, "/orders/all", "", asOperator)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "listAll", svc.lastCall)
}

func TestStatusRouteSplitsCancellation(t *testing.T) {
	svc := &fakeOrderSvc{order: order.Order{ID: "o1"}}
	r := orderRouter(svc)

	rec := do(t, r, http.MethodPut, "/orders/o1/status", `{"status":"Shipped"}`, asOperator)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "advance", svc.lastCall)

	rec = do(t, r, http.MethodPut, "/orders/o1/status", `{"status":"Cancelled"}`, asOperator)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "cancelByOperator", svc.lastCall)
	assert.Equal(t, "o1", svc.lastID)
}

func TestSetPayment(t *testing.T) {
	svc := &fakeOrderSvc{order: order.Order{ID: "o1"}}
	r := orderRouter(svc)

	rec := do(t, r, http.MethodPut, "/orders/o1/payment", `{"payment_status":"Approved"}`, asOperator)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "setPayment", svc.lastCall)
}

type fakeCatalog struct {
	products map[string]catalog.Product
}

func (f *fakeCatalog) List(context.Context) ([]catalog.Product, error) {
	var out []catalog.Product
	for _, p := range f.products {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeCatalog) Get(_ context.Context, id string) (catalog.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return catalog.Product{}, catalog.ErrNotFound
	}
	return p, nil
}

func TestCatalogRoutes(t *testing.T) {
	r := chi.NewRouter()
	(&CatalogHandler{Catalog: &fakeCatalog{products: map[string]catalog.Product{
		"p1": {ID: "p1", PriceCents: 250},
	}}}).Register(r)

	rec := do(t, r, http.MethodGet, "/products", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, r, http.MethodGet, "/products/p1", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, r, http.MethodGet, "/products/ghost", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealthz(t *testing.T) {
	r := NewRouter()
	rec := do(t, r, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}
