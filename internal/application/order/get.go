package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	domain "github.com/Zhima-Mochi/minishop-orders/internal/domain/order"
	"github.com/Zhima-Mochi/minishop-orders/internal/observability"
	"github.com/Zhima-Mochi/minishop-orders/internal/observability/logctx"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const useCaseOrderGet = "order.get"

// GetOrderUseCase reads back a persisted order with its line items.
type GetOrderUseCase struct {
	orders domain.Repository

	log          observability.Logger
	tracer       observability.Tracer
	reqCounter   observability.Counter
	durHistogram observability.Histogram
}

func NewGetOrderUseCase(orders domain.Repository, tel observability.Observability) *GetOrderUseCase {
	tel = observability.OrNop(tel)
	return &GetOrderUseCase{
		orders:       orders,
		log:          tel.Logger().With(observability.F("service", orderService)),
		tracer:       tel.Tracer(),
		reqCounter:   tel.Metrics().Counter(observability.MUsecaseRequests),
		durHistogram: tel.Metrics().Histogram(observability.MUsecaseDuration),
	}
}

type GetOrderInput struct {
	OrderID string
}

func (uc *GetOrderUseCase) Execute(ctx context.Context, cmd GetOrderInput) (_ *domain.Order, err error) {
	logger := logctx.FromOr(ctx, uc.log).With(
		observability.F("use_case", useCaseOrderGet),
		observability.F("order_id", cmd.OrderID),
	)
	ctx, span := uc.tracer.Start(ctx, spanPrefix+"GetOrder",
		attribute.String("use_case", useCaseOrderGet),
		attribute.String("order.id", cmd.OrderID),
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
			observability.L("use_case", useCaseOrderGet),
			observability.L("outcome", outcome),
		)
		uc.durHistogram.Observe(lat, observability.L("use_case", useCaseOrderGet))

		fields := []observability.Field{
			observability.F("outcome", outcome),
			observability.F("status", statusText),
			observability.F("latency_seconds", lat),
		}
		if err != nil {
			fields = append(fields, observability.F("error", err.Error()))
		}
		logger.Info("use_case_done", fields...)
	}()

	o, repoErr := uc.orders.FindByID(ctx, cmd.OrderID)
	switch {
	case errors.Is(repoErr, domain.ErrNotFound):
		outcome, statusText = "error", string(KindOrderNotFound)
		return nil, newError(KindOrderNotFound, ErrNotFound, nil, nil)
	case repoErr != nil:
		outcome, statusText = "error", string(KindRepository)
		return nil, newError(KindRepository, ErrRepository, nil, fmt.Errorf("find order: %w", repoErr))
	}
	return o, nil
}
