package httppresentation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Zhima-Mochi/minishop-orders/internal/application"
	appOrder "github.com/Zhima-Mochi/minishop-orders/internal/application/order"
	domainOrder "github.com/Zhima-Mochi/minishop-orders/internal/domain/order"
	"github.com/Zhima-Mochi/minishop-orders/internal/observability"
	"github.com/Zhima-Mochi/minishop-orders/internal/observability/logctx"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const (
	componentHTTPHandler = "http_server"
	headerRequestID      = "X-Request-ID"
	headerTenantID       = "X-Tenant-ID"
	maxBodyBytes         = 1 << 20
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	createOrder application.UseCase[appOrder.CreateOrderInput, *domainOrder.Order]
	getOrder    application.UseCase[appOrder.GetOrderInput, *domainOrder.Order]
	store       Pinger
	log         observability.Logger
	tel         observability.Observability
}

// NewHandler wires the order use cases to HTTP. store may be nil, in which case /health
// only reports that the process is up.
func NewHandler(
	createOrder application.UseCase[appOrder.CreateOrderInput, *domainOrder.Order],
	getOrder application.UseCase[appOrder.GetOrderInput, *domainOrder.Order],
	store Pinger,
	tel observability.Observability,
) *Handler {
	tel = observability.OrNop(tel)
	return &Handler{
		createOrder: createOrder,
		getOrder:    getOrder,
		store:       store,
		log:         tel.Logger().With(observability.F("component", componentHTTPHandler)),
		tel:         tel,
	}
}

// Router wires Trace → request logger + HTTP metrics → access log → recoverer → handler.
func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(
		h.withTrace,
		ObservabilityMiddleware(
			h.log,
			func(r *http.Request) string { return r.Header.Get(headerRequestID) },
			func(r *http.Request) string { return r.Header.Get(headerTenantID) },
			h.tel,
		),
		h.withAccessLog,
		middleware.Recoverer,
	)

	r.Post("/orders", h.handleCreateOrder)
	r.Get("/orders/{id}", h.handleGetOrder)
	r.Get("/health", h.handleHealth)
	return r
}

type createOrderRequest struct {
	CustomerID string                `json:"customer_id"`
	Products   []orderProductRequest `json:"products"`
}

type orderProductRequest struct {
	ID       string `json:"id"`
	Quantity int    `json:"quantity"`
}

type orderLineResponse struct {
	ID        string `json:"id"`
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Price     int64  `json:"price"`
}

type orderResponse struct {
	ID         string              `json:"id"`
	CustomerID string              `json:"customer_id"`
	Products   []orderLineResponse `json:"products"`
	Total      int64               `json:"total"`
	CreatedAt  time.Time           `json:"created_at"`
	UpdatedAt  time.Time           `json:"updated_at"`
}

type errorResponse struct {
	Error      string   `json:"error"`
	Code       string   `json:"code"`
	ProductIDs []string `json:"product_ids,omitempty"`
	OrderID    string   `json:"order_id,omitempty"`
}

func (h *Handler) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", err)
		return
	}
	if req.CustomerID == "" {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", errors.New("customer_id is required"))
		return
	}

	input := appOrder.CreateOrderInput{
		CustomerID: req.CustomerID,
		Products:   make([]appOrder.ProductInput, 0, len(req.Products)),
	}
	for i, p := range req.Products {
		if p.ID == "" {
			writeError(w, http.StatusBadRequest, "INVALID_REQUEST", fmt.Errorf("products[%d]: id is required", i))
			return
		}
		if p.Quantity <= 0 {
			writeError(w, http.StatusBadRequest, "INVALID_REQUEST", fmt.Errorf("products[%d]: quantity must be positive", i))
			return
		}
		input.Products = append(input.Products, appOrder.ProductInput{ID: p.ID, Quantity: p.Quantity})
	}

	o, err := h.createOrder.Execute(r.Context(), input)
	if err != nil {
		writeUseCaseError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toOrderResponse(o))
}

func (h *Handler) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.getOrder.Execute(r.Context(), appOrder.GetOrderInput{OrderID: chi.URLParam(r, "id")})
	if err != nil {
		writeUseCaseError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(o))
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if h.store != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.store.Ping(ctx); err != nil {
			logctx.FromOr(r.Context(), h.log).Warn("health_store_unreachable",
				observability.F("error", err.Error()),
			)
			writeError(w, http.StatusServiceUnavailable, "STORE_UNAVAILABLE", err)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// withAccessLog writes a single access log after the handler completes.
// It relies on the request-scoped logger already injected by ObservabilityMiddleware.
func (h *Handler) withAccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(lrw, r)

		logctx.FromOr(r.Context(), h.log).Info("http_access",
			observability.F("method", r.Method),
			observability.F("route", routePattern(r)),
			observability.F("path", r.URL.Path),
			observability.F("status", lrw.status),
			observability.F("latency_ms", time.Since(start).Milliseconds()),
		)
	})
}

// withTrace creates a server span for the request using OTel and W3C propagation.
// The span is renamed to the matched route once chi has routed the request.
func (h *Handler) withTrace(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tracer := otel.Tracer("minishop.http")
		parentCtx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

		ctxWithSpan, span := tracer.Start(parentCtx,
			r.Method+" "+r.URL.Path,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.method", r.Method),
				attribute.String("http.target", r.URL.Path),
				attribute.String("http.user_agent", r.UserAgent()),
			),
		)
		defer span.End()

		lrw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		r = r.WithContext(ctxWithSpan)
		next.ServeHTTP(lrw, r)

		route := routePattern(r)
		span.SetName(r.Method + " " + route)
		span.SetAttributes(
			attribute.String("http.route", route),
			attribute.Int("http.status_code", lrw.status),
		)
		if lrw.status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(lrw.status))
		}
	})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	return decoder.Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error(), Code: code})
}

func writeUseCaseError(w http.ResponseWriter, err error) {
	var ucErr *appOrder.Error
	if !errors.As(err, &ucErr) {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			writeError(w, http.StatusServiceUnavailable, "CANCELED", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "INTERNAL", err)
		return
	}

	writeJSON(w, statusForKind(ucErr.Kind), errorResponse{
		Error:      ucErr.Error(),
		Code:       string(ucErr.Kind),
		ProductIDs: ucErr.ProductIDs,
		OrderID:    ucErr.OrderID,
	})
}

func statusForKind(kind appOrder.Kind) int {
	switch kind {
	case appOrder.KindCustomerNotFound, appOrder.KindProductsNotFound, appOrder.KindOrderNotFound:
		return http.StatusNotFound
	case appOrder.KindInsufficientStock:
		return http.StatusConflict
	case appOrder.KindDuplicateProduct, appOrder.KindEmptyOrder:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func toOrderResponse(o *domainOrder.Order) orderResponse {
	lines := make([]orderLineResponse, 0, len(o.Products))
	for _, p := range o.Products {
		lines = append(lines, orderLineResponse{
			ID:        p.ID,
			ProductID: p.ProductID,
			Quantity:  p.Quantity,
			Price:     p.Price,
		})
	}
	return orderResponse{
		ID:         o.ID,
		CustomerID: o.CustomerID,
		Products:   lines,
		Total:      o.Total(),
		CreatedAt:  o.CreatedAt,
		UpdatedAt:  o.UpdatedAt,
	}
}

// routePattern returns the matched chi route template, a low-cardinality label.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unknown"
}
