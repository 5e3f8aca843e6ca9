package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	appInventory "github.com/Zhima-Mochi/minishop-orders/internal/application/inventory"
	appOrder "github.com/Zhima-Mochi/minishop-orders/internal/application/order"
	"github.com/Zhima-Mochi/minishop-orders/internal/config"
	infraobs "github.com/Zhima-Mochi/minishop-orders/internal/infrastructure/observability"
	"github.com/Zhima-Mochi/minishop-orders/internal/infrastructure/observability/oteltrace"
	"github.com/Zhima-Mochi/minishop-orders/internal/infrastructure/observability/prometrics"
	"github.com/Zhima-Mochi/minishop-orders/internal/infrastructure/observability/zaplogger"
	"github.com/Zhima-Mochi/minishop-orders/internal/infrastructure/outbox"
	"github.com/Zhima-Mochi/minishop-orders/internal/pkg/logging"
	httppresentation "github.com/Zhima-Mochi/minishop-orders/internal/presentation/http"
	workerpresentation "github.com/Zhima-Mochi/minishop-orders/internal/presentation/worker"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// No logger yet; the zap global is a no-op at this point.
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(2)
	}

	baseLogger := logging.MustNewLogger(logging.Options{
		Service: cfg.ServiceName,
		Env:     cfg.Env,
		Level:   cfg.LogLevel,
		File:    cfg.LogFile,
	})
	defer func() { _ = baseLogger.Sync() }()
	zap.ReplaceGlobals(baseLogger)

	systemLogger := logging.WithTrace(baseLogger, logging.SystemTraceID, logging.SystemSpanID)

	if err := run(cfg, baseLogger, systemLogger); err != nil {
		systemLogger.Error("service_failed", zap.Error(err))
		_ = baseLogger.Sync()
		os.Exit(1)
	}
}

func run(cfg config.Config, baseLogger, systemLogger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := oteltrace.Setup(ctx, cfg.ServiceName, cfg.Env, cfg.OTLPEndpoint)
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			systemLogger.Warn("tracer_shutdown_error", zap.Error(err))
		}
	}()

	counters, histograms := prometrics.Standard(prometrics.New("", ""))
	logger := zaplogger.New(baseLogger)
	tel := infraobs.New(oteltrace.New("minishop.orders"), logger, counters, histograms)

	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.close()
	systemLogger.Info("store_opened", zap.String("driver", string(cfg.Driver)))

	if cfg.SeedFile != "" {
		seed, err := config.LoadSeed(cfg.SeedFile)
		if err != nil {
			return err
		}
		if err := st.seed(ctx, seed); err != nil {
			return err
		}
		systemLogger.Info("store_seeded",
			zap.Int("customers", len(seed.Customers)),
			zap.Int("products", len(seed.Products)),
		)
	}

	// In-memory event bus; handlers get an event-scoped logger.
	bus := outbox.NewBus(logger, outbox.WithContext(workerpresentation.EventContext(logger, tel)))
	bus.Start(ctx)
	defer func() {
		drainCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		bus.Stop(drainCtx)
	}()

	createOrder := appOrder.NewCreateOrderUseCase(st.customers, st.products, st.orders, bus, tel, appOrder.Options{
		Duplicates: cfg.Duplicates,
		AllowEmpty: cfg.AllowEmpty,
		Transactor: st.tx,
	})
	getOrder := appOrder.NewGetOrderUseCase(st.orders, tel)

	stockReport := appInventory.NewReportStockLevelUseCase(cfg.LowStockThreshold, tel)
	appInventory.NewWorker(bus, stockReport, tel).Start()

	handler := httppresentation.NewHandler(createOrder, getOrder, st.pinger, tel)
	mux := chi.NewRouter()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Mount("/", handler.Router())

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		systemLogger.Info("http_server_start",
			zap.String("addr", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		systemLogger.Error("http_server_shutdown_error",
			zap.Error(err),
		)
	} else {
		systemLogger.Info("http_server_stopped")
	}
	return nil
}
