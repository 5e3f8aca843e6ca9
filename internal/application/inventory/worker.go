package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/Zhima-Mochi/minishop-orders/internal/application"
	dominv "github.com/Zhima-Mochi/minishop-orders/internal/domain/inventory"
	domoutbox "github.com/Zhima-Mochi/minishop-orders/internal/domain/outbox"
	"github.com/Zhima-Mochi/minishop-orders/internal/observability"
	"github.com/Zhima-Mochi/minishop-orders/internal/observability/logctx"
)

const workerService = "inventory_worker"

// Worker feeds stock update events from the bus into the stock report use case.
type Worker struct {
	subscriber domoutbox.Subscriber
	useCase    application.UseCase[dominv.StockUpdatedEvent, *StockReport]

	log          observability.Logger
	reqCounter   observability.Counter   // usecase_requests_total{use_case,outcome}
	durHistogram observability.Histogram // usecase_duration_seconds{use_case}
}

func NewWorker(
	subscriber domoutbox.Subscriber,
	useCase application.UseCase[dominv.StockUpdatedEvent, *StockReport],
	tel observability.Observability,
) *Worker {
	tel = observability.OrNop(tel)
	metrics := tel.Metrics()
	return &Worker{
		subscriber:   subscriber,
		useCase:      useCase,
		log:          tel.Logger().With(observability.F("service", workerService)),
		reqCounter:   metrics.Counter(observability.MUsecaseRequests),
		durHistogram: metrics.Histogram(observability.MUsecaseDuration),
	}
}

func (w *Worker) Start() {
	if w.subscriber == nil || w.useCase == nil {
		return
	}
	w.subscriber.Subscribe(dominv.StockUpdatedEvent{}.EventName(), w.handleStockUpdated)
}

func (w *Worker) handleStockUpdated(ctx context.Context, e domoutbox.Event) error {
	const useCase = "inventory.worker.stock_updated"
	evt, ok := e.(dominv.StockUpdatedEvent)
	if !ok {
		w.count(useCase, "ignored")
		return nil
	}

	start := time.Now()
	logger := logctx.FromOr(ctx, w.log).With(
		observability.F("event", e.EventName()),
		observability.F("product_id", evt.ProductID),
	)

	_, err := w.useCase.Execute(logctx.With(ctx, logger), evt)
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	w.observe(useCase, outcome, time.Since(start).Seconds())
	if err != nil {
		return fmt.Errorf("worker: stock report: %w", err)
	}
	return nil
}

func (w *Worker) count(useCase, outcome string) {
	w.reqCounter.Add(1,
		observability.L("use_case", useCase),
		observability.L("outcome", outcome),
	)
}

func (w *Worker) observe(useCase string, outcome string, latencySeconds float64) {
	w.count(useCase, outcome)
	w.durHistogram.Observe(latencySeconds,
		observability.L("use_case", useCase),
	)
}
