package workerpresentation

import (
	"context"
	"testing"

	dominventory "github.com/Zhima-Mochi/minishop-orders/internal/domain/inventory"
	"github.com/Zhima-Mochi/minishop-orders/internal/infrastructure/observability/zaplogger"
	"github.com/Zhima-Mochi/minishop-orders/internal/observability/logctx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestWithEventContext_Fields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	base := zaplogger.New(zap.New(core))

	traceID := trace.TraceID{1, 2, 3}
	spanID := trace.SpanID{4, 5, 6}
	ctx := WithEventContext(context.Background(), base, nil, traceID, spanID, map[string]string{
		"event_id": "evt-1",
		"event":    "order.created",
		"empty":    "",
	})

	logger := logctx.From(ctx)
	require.NotNil(t, logger)
	logger.Info("probe")

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "evt-1", fields["event_id"])
	assert.Equal(t, "order.created", fields["event"])
	assert.Equal(t, traceID.String(), fields["trace_id"])
	assert.Equal(t, spanID.String(), fields["span_id"])
	assert.NotContains(t, fields, "empty")
}

func TestWithEventContext_GeneratesEventID(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	ctx := WithEventContext(context.Background(), zaplogger.New(zap.New(core)), nil, trace.TraceID{}, trace.SpanID{}, nil)
	logctx.From(ctx).Info("probe")

	fields := logs.All()[0].ContextMap()
	assert.NotEmpty(t, fields["event_id"])
	assert.NotContains(t, fields, "trace_id")
}

func TestEventContext_TagsOrderID(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	decorate := EventContext(zaplogger.New(zap.New(core)), nil)

	ctx := decorate(context.Background(), dominventory.StockUpdatedEvent{OrderID: "O1", ProductID: "P1"})
	logctx.From(ctx).Info("probe")

	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "O1", fields["order_id"])
	assert.Equal(t, "inventory.stock_updated", fields["event"])
}
