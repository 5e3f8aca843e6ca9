package workerpresentation

import (
	"context"

	dominventory "github.com/Zhima-Mochi/minishop-orders/internal/domain/inventory"
	domorder "github.com/Zhima-Mochi/minishop-orders/internal/domain/order"
	domoutbox "github.com/Zhima-Mochi/minishop-orders/internal/domain/outbox"
	"github.com/Zhima-Mochi/minishop-orders/internal/observability"
	"github.com/Zhima-Mochi/minishop-orders/internal/observability/logctx"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
)

// WithEventContext injects a request-scoped logger for background/worker executions.
// Dynamic fields only: trace_id/span_id (if valid), event_id (generated if empty),
// plus caller-provided low-cardinality attributes (e.g. "use_case", "event", "order_id").
func WithEventContext(
	ctx context.Context,
	base observability.Logger,
	tel observability.Observability,
	traceID trace.TraceID,
	spanID trace.SpanID,
	attrs map[string]string,
) context.Context {
	if base == nil {
		base = observability.OrNop(tel).Logger()
	}

	fields := make([]observability.Field, 0, 2+len(attrs))

	evtID := attrs["event_id"]
	if evtID == "" {
		evtID = uuid.NewString()
	}
	fields = append(fields, observability.F("event_id", evtID))

	if traceID.IsValid() {
		fields = append(fields, observability.F("trace_id", traceID.String()))
	}
	if spanID.IsValid() {
		fields = append(fields, observability.F("span_id", spanID.String()))
	}

	for k, v := range attrs {
		if k == "event_id" || v == "" {
			continue
		}
		fields = append(fields, observability.F(k, v))
	}

	return logctx.With(ctx, base.With(fields...))
}

// EventContext adapts WithEventContext to the bus decorator signature. The logger already on
// ctx (if any) is used as the base so bus-level fields are kept.
func EventContext(base observability.Logger, tel observability.Observability) func(context.Context, domoutbox.Event) context.Context {
	return func(ctx context.Context, e domoutbox.Event) context.Context {
		sc := trace.SpanContextFromContext(ctx)
		return WithEventContext(ctx, logctx.FromOr(ctx, base), tel, sc.TraceID(), sc.SpanID(), eventAttrs(e))
	}
}

func eventAttrs(e domoutbox.Event) map[string]string {
	attrs := map[string]string{"event": e.EventName()}
	switch evt := e.(type) {
	case domorder.OrderCreatedEvent:
		attrs["order_id"] = evt.OrderID
	case dominventory.StockUpdatedEvent:
		attrs["order_id"] = evt.OrderID
	}
	return attrs
}
