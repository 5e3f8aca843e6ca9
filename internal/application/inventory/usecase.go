package inventory

import (
	"context"
	"time"

	dominv "github.com/Zhima-Mochi/minishop-orders/internal/domain/inventory"
	"github.com/Zhima-Mochi/minishop-orders/internal/observability"
	"github.com/Zhima-Mochi/minishop-orders/internal/observability/logctx"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	inventoryService    = "inventory-service"
	useCaseStockReport  = "inventory.stock_report"
	inventorySpanName   = "ReportStockLevel"
	spanPrefix          = "UC."
	statusLowStock      = "LOW_STOCK"
	statusOversold      = "OVERSOLD"
	DefaultLowThreshold = 5
)

// StockReport is the outcome of evaluating one stock update.
type StockReport struct {
	ProductID string
	Quantity  int
	Low       bool
	// Oversold is set when the event reports stock below zero.
	Oversold bool
}

// ReportStockLevelUseCase flags products whose stock fell to or below a threshold after an order.
type ReportStockLevelUseCase struct {
	threshold int

	log          observability.Logger
	tracer       observability.Tracer
	reqCounter   observability.Counter
	durHistogram observability.Histogram
	lowCounter   observability.Counter
}

func NewReportStockLevelUseCase(threshold int, tel observability.Observability) *ReportStockLevelUseCase {
	tel = observability.OrNop(tel)
	if threshold < 0 {
		threshold = DefaultLowThreshold
	}
	metrics := tel.Metrics()
	return &ReportStockLevelUseCase{
		threshold:    threshold,
		log:          tel.Logger().With(observability.F("service", inventoryService)),
		tracer:       tel.Tracer(),
		reqCounter:   metrics.Counter(observability.MUsecaseRequests),
		durHistogram: metrics.Histogram(observability.MUsecaseDuration),
		lowCounter:   metrics.Counter(observability.MLowStock),
	}
}

// Execute evaluates a stock update event.
func (uc *ReportStockLevelUseCase) Execute(ctx context.Context, e dominv.StockUpdatedEvent) (_ *StockReport, err error) {
	logger := logctx.FromOr(ctx, uc.log).With(
		observability.F("use_case", useCaseStockReport),
		observability.F("order_id", e.OrderID),
		observability.F("product_id", e.ProductID),
	)

	ctx, span := uc.tracer.Start(ctx, spanPrefix+inventorySpanName,
		attribute.String("use_case", useCaseStockReport),
		attribute.String("product.id", e.ProductID),
		attribute.Int("product.quantity", e.Quantity),
	)
	start := time.Now()
	outcome, statusText := "success", "OK"

	report := &StockReport{
		ProductID: e.ProductID,
		Quantity:  e.Quantity,
		Low:       e.Quantity <= uc.threshold,
		Oversold:  e.Quantity < 0,
	}

	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, statusText)
		} else {
			span.SetStatus(codes.Ok, statusText)
		}
		span.End()

		latency := time.Since(start).Seconds()
		uc.reqCounter.Add(1,
			observability.L("use_case", useCaseStockReport),
			observability.L("outcome", outcome),
		)
		uc.durHistogram.Observe(latency,
			observability.L("use_case", useCaseStockReport),
		)

		fields := []observability.Field{
			observability.F("outcome", outcome),
			observability.F("status", statusText),
			observability.F("latency_seconds", latency),
			observability.F("previous", e.Previous),
			observability.F("quantity", e.Quantity),
		}
		if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
			fields = append(fields,
				observability.F("trace_id", sc.TraceID().String()),
				observability.F("span_id", sc.SpanID().String()),
			)
		}
		logger.Info("use_case_done", fields...)
	}()

	if err := ctx.Err(); err != nil {
		outcome, statusText = "error", "CONTEXT_CANCELED"
		return nil, err
	}

	switch {
	case report.Oversold:
		statusText = statusOversold
		logger.Error("stock_oversold",
			observability.F("quantity", e.Quantity),
		)
	case report.Low:
		statusText = statusLowStock
		logger.Warn("stock_low",
			observability.F("quantity", e.Quantity),
			observability.F("threshold", uc.threshold),
		)
	}
	if report.Low {
		uc.lowCounter.Add(1)
		span.AddEvent("inventory.low_stock",
			trace.WithAttributes(attribute.String("product.id", e.ProductID)),
		)
	}

	return report, nil
}
