package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	domcustomer "github.com/Zhima-Mochi/minishop-orders/internal/domain/customer"
	dominventory "github.com/Zhima-Mochi/minishop-orders/internal/domain/inventory"
	domain "github.com/Zhima-Mochi/minishop-orders/internal/domain/order"
	domoutbox "github.com/Zhima-Mochi/minishop-orders/internal/domain/outbox"
	domproduct "github.com/Zhima-Mochi/minishop-orders/internal/domain/product"
	"github.com/Zhima-Mochi/minishop-orders/internal/observability"
	"github.com/Zhima-Mochi/minishop-orders/internal/observability/logctx"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	orderService         = "order-service"
	useCaseOrderCreate   = "order.create"
	spanPrefix           = "UC."
	publishPeer          = "outbox"
	endpointOrderCreated = "order.created"
	endpointStockUpdated = "inventory.stock_updated"
	publishTimeout       = 300 * time.Millisecond
)

// CreateOrderUseCase validates a customer's requested products against the catalog, persists
// the order with a price snapshot per line and writes back the decremented stock.
type CreateOrderUseCase struct {
	customers domcustomer.Repository
	products  domproduct.Repository
	orders    domain.Repository
	publisher domoutbox.Publisher
	tx        Transactor

	duplicates DuplicatePolicy
	allowEmpty bool

	log    observability.Logger
	tracer observability.Tracer
	// RED metrics (supplied via DI; do not instantiate inside methods).
	reqCounter   observability.Counter   // usecase_requests_total{use_case,outcome}
	durHistogram observability.Histogram // usecase_duration_seconds{use_case}

	extCounter   observability.Counter   // external_requests_total{peer,endpoint,outcome}
	extHistogram observability.Histogram // external_request_duration_seconds{peer,endpoint}
}

// NewCreateOrderUseCase wires the dependencies required to execute the use case.
// publisher may be nil.
func NewCreateOrderUseCase(
	customers domcustomer.Repository,
	products domproduct.Repository,
	orders domain.Repository,
	publisher domoutbox.Publisher,
	tel observability.Observability,
	opts Options,
) *CreateOrderUseCase {
	tel = observability.OrNop(tel)
	metrics := tel.Metrics()

	duplicates := opts.Duplicates
	if duplicates == "" {
		duplicates = DuplicateAggregate
	}

	return &CreateOrderUseCase{
		customers:    customers,
		products:     products,
		orders:       orders,
		publisher:    publisher,
		tx:           opts.Transactor,
		duplicates:   duplicates,
		allowEmpty:   opts.AllowEmpty,
		log:          tel.Logger().With(observability.F("service", orderService)),
		tracer:       tel.Tracer(),
		reqCounter:   metrics.Counter(observability.MUsecaseRequests),
		durHistogram: metrics.Histogram(observability.MUsecaseDuration),
		extCounter:   metrics.Counter(observability.MExternalRequests),
		extHistogram: metrics.Histogram(observability.MExternalRequestDuration),
	}
}

type ProductInput struct {
	ID       string
	Quantity int
}

type CreateOrderInput struct {
	CustomerID string
	Products   []ProductInput
}

// Execute performs the order creation flow.
func (uc *CreateOrderUseCase) Execute(ctx context.Context, cmd CreateOrderInput) (_ *domain.Order, err error) {
	logger := logctx.FromOr(ctx, uc.log).With(observability.F("use_case", useCaseOrderCreate))

	var orderID string
	var publishErr error

	ctx, span := uc.tracer.Start(ctx, spanPrefix+"CreateOrder",
		attribute.String("use_case", useCaseOrderCreate),
		attribute.String("order.customer_id", cmd.CustomerID),
		attribute.Int("order.lines", len(cmd.Products)),
	)
	start := time.Now()
	outcome, statusText := "success", "OK"

	defer func() {
		lat := time.Since(start).Seconds()

		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, statusText)
		} else {
			span.SetStatus(codes.Ok, statusText)
		}
		span.End()

		uc.reqCounter.Add(1,
			observability.L("use_case", useCaseOrderCreate),
			observability.L("outcome", outcome),
		)
		uc.durHistogram.Observe(lat,
			observability.L("use_case", useCaseOrderCreate),
		)

		fields := []observability.Field{
			observability.F("outcome", outcome),
			observability.F("status", statusText),
			observability.F("latency_seconds", lat),
			observability.F("customer_id", cmd.CustomerID),
			observability.F("lines", len(cmd.Products)),
		}
		if orderID != "" {
			fields = append(fields, observability.F("order_id", orderID))
		}
		if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
			fields = append(fields,
				observability.F("trace_id", sc.TraceID().String()),
				observability.F("span_id", sc.SpanID().String()),
			)
		}
		if publishErr != nil {
			fields = append(fields, observability.F("event_publish_error", publishErr.Error()))
		}
		if err != nil {
			fields = append(fields, observability.F("error", err.Error()))
		}

		logger.Info("use_case_done", fields...)
	}()

	fail := func(kind Kind, sentinel error, productIDs []string, cause error) error {
		outcome, statusText = "error", string(kind)
		return newError(kind, sentinel, productIDs, cause)
	}

	if err := ctx.Err(); err != nil {
		outcome, statusText = "error", "CONTEXT_CANCELED"
		return nil, err
	}

	customer, repoErr := uc.customers.FindByID(ctx, cmd.CustomerID)
	switch {
	case errors.Is(repoErr, domcustomer.ErrNotFound):
		return nil, fail(KindCustomerNotFound, ErrCustomerNotFound, nil, nil)
	case repoErr != nil:
		return nil, fail(KindRepository, ErrRepository, nil, fmt.Errorf("find customer: %w", repoErr))
	}

	lines := make([]dominventory.Line, 0, len(cmd.Products))
	for _, p := range cmd.Products {
		lines = append(lines, dominventory.Line{ProductID: p.ID, Quantity: p.Quantity})
	}

	if len(lines) == 0 && !uc.allowEmpty {
		return nil, fail(KindEmptyOrder, ErrEmptyOrder, nil, nil)
	}
	if uc.duplicates == DuplicateReject {
		if dups := dominventory.Duplicates(lines); len(dups) > 0 {
			return nil, fail(KindDuplicateProduct, ErrDuplicateProduct, dups, nil)
		}
	}

	ids := distinctIDs(lines)
	found, repoErr := uc.products.FindAllByID(ctx, ids)
	if repoErr != nil {
		return nil, fail(KindRepository, ErrRepository, nil, fmt.Errorf("find products: %w", repoErr))
	}

	catalog := domproduct.Index(found)
	var missing []string
	available := make(map[string]int, len(catalog))
	for _, id := range ids {
		p, ok := catalog[id]
		if !ok {
			missing = append(missing, id)
			continue
		}
		available[id] = p.Quantity
	}
	if len(missing) > 0 {
		return nil, fail(KindProductsNotFound, ErrProductsNotFound, missing, nil)
	}

	ledger, lerr := dominventory.NewLedger(uc.duplicates.mode(), available)
	if lerr != nil {
		outcome, statusText = "error", "LEDGER_INVALID"
		return nil, fmt.Errorf("order: %w", lerr)
	}
	if short := ledger.Shortfalls(lines); len(short) > 0 {
		return nil, fail(KindInsufficientStock, ErrInsufficientStock, short, nil)
	}

	orderLines := make([]domain.Line, 0, len(lines))
	for _, l := range lines {
		orderLines = append(orderLines, domain.Line{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			Price:     catalog[l.ProductID].Price,
		})
	}

	var (
		created  *domain.Order
		levels   []dominventory.Level
		stockErr error
	)
	persist := func(ctx context.Context) error {
		o, err := uc.orders.Create(ctx, domain.CreateParams{Customer: customer, Products: orderLines})
		if err != nil {
			return fmt.Errorf("create order: %w", err)
		}
		created = o
		levels = ledger.Levels(committedLines(o))
		if err := uc.products.UpdateQuantity(ctx, levels); err != nil {
			stockErr = err
			return fmt.Errorf("update stock: %w", err)
		}
		return nil
	}

	if uc.tx != nil {
		if txErr := uc.tx.WithinTx(ctx, persist); txErr != nil {
			return nil, fail(KindRepository, ErrRepository, nil, txErr)
		}
	} else if perr := persist(ctx); perr != nil {
		if stockErr == nil {
			return nil, fail(KindRepository, ErrRepository, nil, perr)
		}
		// No transaction spans both stores, so the order stays persisted with stale stock.
		orderID = created.ID
		logger.Error("stock_update_failed_after_order_created",
			observability.F("order_id", created.ID),
			observability.F("error", stockErr.Error()),
		)
		e := newError(KindStockUpdate, ErrStockUpdate, nil, stockErr)
		e.OrderID = created.ID
		outcome, statusText = "error", string(KindStockUpdate)
		return nil, e
	}
	orderID = created.ID

	span.SetAttributes(
		attribute.String("order.id", created.ID),
		attribute.Int64("order.total", created.Total()),
	)
	span.AddEvent("order.created",
		trace.WithAttributes(attribute.String("order.id", created.ID)),
	)

	if publishErr = uc.publish(ctx, endpointOrderCreated, domain.NewOrderCreatedEvent(created)); publishErr != nil {
		statusText = "EVENT_PUBLISH_FAILED"
	}
	for _, level := range levels {
		previous, _ := ledger.Available(level.ProductID)
		if perr := uc.publish(ctx, endpointStockUpdated, dominventory.NewStockUpdatedEvent(created.ID, previous, level)); perr != nil {
			publishErr = errors.Join(publishErr, perr)
			statusText = "EVENT_PUBLISH_FAILED"
		}
	}

	return created, nil
}

func (uc *CreateOrderUseCase) publish(ctx context.Context, endpoint string, event domoutbox.Event) error {
	if uc.publisher == nil || event == nil {
		return nil
	}

	pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	start := time.Now()
	err := uc.publisher.Publish(pubCtx, event)
	outcome := "success"
	if err != nil {
		outcome = "error"
	} else if pubCtx.Err() != nil {
		outcome = "canceled"
		err = pubCtx.Err()
	}
	cancel()

	uc.extCounter.Add(1,
		observability.L("peer", publishPeer),
		observability.L("endpoint", endpoint),
		observability.L("outcome", outcome),
	)
	uc.extHistogram.Observe(time.Since(start).Seconds(),
		observability.L("peer", publishPeer),
		observability.L("endpoint", endpoint),
	)

	return err
}

// committedLines reads the lines back from the order the store returned, which is what the
// stock update is derived from.
func committedLines(o *domain.Order) []dominventory.Line {
	out := make([]dominventory.Line, 0, len(o.Products))
	for _, p := range o.Products {
		out = append(out, dominventory.Line{ProductID: p.ProductID, Quantity: p.Quantity})
	}
	return out
}

func distinctIDs(lines []dominventory.Line) []string {
	seen := make(map[string]struct{}, len(lines))
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		if _, ok := seen[l.ProductID]; ok {
			continue
		}
		seen[l.ProductID] = struct{}{}
		out = append(out, l.ProductID)
	}
	return out
}
