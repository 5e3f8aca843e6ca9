package httppresentation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	appOrder "github.com/Zhima-Mochi/minishop-orders/internal/application/order"
	"github.com/Zhima-Mochi/minishop-orders/internal/domain/customer"
	domainOrder "github.com/Zhima-Mochi/minishop-orders/internal/domain/order"
	"github.com/Zhima-Mochi/minishop-orders/internal/domain/product"
	"github.com/Zhima-Mochi/minishop-orders/internal/infrastructure/id"
	"github.com/Zhima-Mochi/minishop-orders/internal/infrastructure/memory"
	infraobs "github.com/Zhima-Mochi/minishop-orders/internal/infrastructure/observability"
	"github.com/Zhima-Mochi/minishop-orders/internal/infrastructure/observability/prometrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCreate struct {
	got appOrder.CreateOrderInput
	out *domainOrder.Order
	err error
}

func (s *stubCreate) Execute(_ context.Context, cmd appOrder.CreateOrderInput) (*domainOrder.Order, error) {
	s.got = cmd
	return s.out, s.err
}

type stubGet struct {
	out *domainOrder.Order
	err error
}

func (s *stubGet) Execute(context.Context, appOrder.GetOrderInput) (*domainOrder.Order, error) {
	return s.out, s.err
}

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var body errorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func TestCreateOrder_RequestValidation(t *testing.T) {
	tests := map[string]struct {
		body     string
		wantCode string
	}{
		"malformed json":     {body: `{"customer_id":`, wantCode: "INVALID_JSON"},
		"unknown field":      {body: `{"customer_id":"C1","extra":1}`, wantCode: "INVALID_JSON"},
		"missing customer":   {body: `{"products":[{"id":"P1","quantity":1}]}`, wantCode: "INVALID_REQUEST"},
		"missing product id": {body: `{"customer_id":"C1","products":[{"quantity":1}]}`, wantCode: "INVALID_REQUEST"},
		"zero quantity":      {body: `{"customer_id":"C1","products":[{"id":"P1","quantity":0}]}`, wantCode: "INVALID_REQUEST"},
		"negative quantity":  {body: `{"customer_id":"C1","products":[{"id":"P1","quantity":-2}]}`, wantCode: "INVALID_REQUEST"},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			create := &stubCreate{}
			h := NewHandler(create, &stubGet{}, nil, nil).Router()

			rec := do(t, h, http.MethodPost, "/orders", tc.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tc.wantCode, decodeError(t, rec).Code)
			assert.Empty(t, create.got.CustomerID)
		})
	}
}

func TestCreateOrder_ErrorMapping(t *testing.T) {
	tests := map[string]struct {
		err        error
		wantStatus int
		wantCode   string
	}{
		"customer not found": {
			err: &appOrder.Error{Kind: appOrder.KindCustomerNotFound}, wantStatus: http.StatusNotFound,
			wantCode: "CUSTOMER_NOT_FOUND",
		},
		"products not found": {
			err: &appOrder.Error{Kind: appOrder.KindProductsNotFound}, wantStatus: http.StatusNotFound,
			wantCode: "PRODUCTS_NOT_FOUND",
		},
		"insufficient stock": {
			err: &appOrder.Error{Kind: appOrder.KindInsufficientStock}, wantStatus: http.StatusConflict,
			wantCode: "INSUFFICIENT_STOCK",
		},
		"duplicate product": {
			err: &appOrder.Error{Kind: appOrder.KindDuplicateProduct}, wantStatus: http.StatusBadRequest,
			wantCode: "DUPLICATE_PRODUCT",
		},
		"empty order": {
			err: &appOrder.Error{Kind: appOrder.KindEmptyOrder}, wantStatus: http.StatusBadRequest,
			wantCode: "EMPTY_ORDER",
		},
		"stock update failed": {
			err: &appOrder.Error{Kind: appOrder.KindStockUpdate}, wantStatus: http.StatusInternalServerError,
			wantCode: "STOCK_UPDATE_FAILED",
		},
		"unclassified": {
			err: errors.New("boom"), wantStatus: http.StatusInternalServerError, wantCode: "INTERNAL",
		},
		"canceled": {
			err: context.Canceled, wantStatus: http.StatusServiceUnavailable, wantCode: "CANCELED",
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			h := NewHandler(&stubCreate{err: tc.err}, &stubGet{}, nil, nil).Router()

			rec := do(t, h, http.MethodPost, "/orders", `{"customer_id":"C1","products":[{"id":"P1","quantity":1}]}`)
			assert.Equal(t, tc.wantStatus, rec.Code)
			assert.Equal(t, tc.wantCode, decodeError(t, rec).Code)
		})
	}
}

func TestGetOrder(t *testing.T) {
	o := &domainOrder.Order{
		ID: "O1", CustomerID: "C1",
		Products: []domainOrder.OrderProduct{{ID: "L1", OrderID: "O1", ProductID: "P1", Quantity: 3, Price: 500}},
	}

	t.Run("found", func(t *testing.T) {
		h := NewHandler(&stubCreate{}, &stubGet{out: o}, nil, nil).Router()
		rec := do(t, h, http.MethodGet, "/orders/O1", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var body orderResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		assert.Equal(t, "O1", body.ID)
		assert.Equal(t, int64(1500), body.Total)
		require.Len(t, body.Products, 1)
		assert.Equal(t, int64(500), body.Products[0].Price)
	})

	t.Run("not found", func(t *testing.T) {
		h := NewHandler(&stubCreate{}, &stubGet{err: &appOrder.Error{Kind: appOrder.KindOrderNotFound}}, nil, nil).Router()
		rec := do(t, h, http.MethodGet, "/orders/nope", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "ORDER_NOT_FOUND", decodeError(t, rec).Code)
	})
}

func TestHealth(t *testing.T) {
	tests := map[string]struct {
		store      Pinger
		wantStatus int
	}{
		"no store":          {store: nil, wantStatus: http.StatusOK},
		"store reachable":   {store: stubPinger{}, wantStatus: http.StatusOK},
		"store unreachable": {store: stubPinger{err: errors.New("down")}, wantStatus: http.StatusServiceUnavailable},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			h := NewHandler(&stubCreate{}, &stubGet{}, tc.store, nil).Router()
			rec := do(t, h, http.MethodGet, "/health", "")
			assert.Equal(t, tc.wantStatus, rec.Code)
		})
	}
}

func TestRouter_EchoesRequestID(t *testing.T) {
	h := NewHandler(&stubCreate{}, &stubGet{}, nil, nil).Router()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(headerRequestID, "req-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "req-123", rec.Header().Get(headerRequestID))

	rec = do(t, h, http.MethodGet, "/health", "")
	assert.NotEmpty(t, rec.Header().Get(headerRequestID))
}

func TestRouter_RecordsRouteTemplateMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	counters, histograms := prometrics.Standard(prometrics.NewWithRegisterer(reg, "", ""))
	tel := infraobs.New(nil, nil, counters, histograms)

	h := NewHandler(&stubCreate{}, &stubGet{err: &appOrder.Error{Kind: appOrder.KindOrderNotFound}}, nil, tel).Router()
	do(t, h, http.MethodGet, "/orders/A", "")
	do(t, h, http.MethodGet, "/orders/B", "")

	n, err := testutil.GatherAndCount(reg, "http_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n, "both ids share one route series")
}

func TestCreateOrder_EndToEndWithMemoryStore(t *testing.T) {
	ctx := context.Background()
	customers := memory.NewCustomerRepository()
	products := memory.NewProductRepository()
	orders := memory.NewOrderRepository(id.NewSequence("O1", "L1"))
	require.NoError(t, customers.Add(ctx, &customer.Customer{ID: "C1"}))
	require.NoError(t, products.Add(ctx, &product.Product{ID: "P1", Price: 500, Quantity: 10}))

	create := appOrder.NewCreateOrderUseCase(customers, products, orders, nil, nil, appOrder.Options{})
	get := appOrder.NewGetOrderUseCase(orders, nil)
	h := NewHandler(create, get, nil, nil).Router()

	rec := do(t, h, http.MethodPost, "/orders", `{"customer_id":"C1","products":[{"id":"P1","quantity":3}]}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created orderResponse
	require.NoError(t, json.NewDecoder(bytes.NewReader(rec.Body.Bytes())).Decode(&created))
	assert.Equal(t, "O1", created.ID)
	require.Len(t, created.Products, 1)
	assert.Equal(t, "P1", created.Products[0].ProductID)
	assert.Equal(t, 3, created.Products[0].Quantity)
	assert.Equal(t, int64(500), created.Products[0].Price)

	stock, _ := products.FindAllByID(ctx, []string{"P1"})
	assert.Equal(t, 7, stock[0].Quantity)

	rec = do(t, h, http.MethodGet, "/orders/O1", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodPost, "/orders", `{"customer_id":"C1","products":[{"id":"P9","quantity":1}]}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	body := decodeError(t, rec)
	assert.Equal(t, "PRODUCTS_NOT_FOUND", body.Code)
	assert.Equal(t, []string{"P9"}, body.ProductIDs)

	rec = do(t, h, http.MethodPost, "/orders", `{"customer_id":"C1","products":[{"id":"P1","quantity":50}]}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
}
