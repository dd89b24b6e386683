package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chris/academy-booking-core/pkg/booking"
	"github.com/chris/academy-booking-core/pkg/bootstrap"
	"github.com/chris/academy-booking-core/pkg/cache"
	"github.com/chris/academy-booking-core/pkg/config"
	"github.com/chris/academy-booking-core/pkg/handlers"
	"github.com/chris/academy-booking-core/pkg/handlers/bookings"
	wshandler "github.com/chris/academy-booking-core/pkg/handlers/websockets"
	"github.com/chris/academy-booking-core/pkg/ledger"
	"github.com/chris/academy-booking-core/pkg/logging"
	"github.com/chris/academy-booking-core/pkg/middleware"
	"github.com/chris/academy-booking-core/pkg/payout"
	"github.com/chris/academy-booking-core/pkg/tasks"
	"github.com/chris/academy-booking-core/pkg/websockets"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logger := logging.New(cfg.Env, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := bootstrap.New(ctx, cfg)
	if err != nil {
		logger.Error("failed to build dependencies", "error", err)
		os.Exit(1)
	}
	defer deps.Close()

	bookingCfg, err := cfg.Booking()
	if err != nil {
		logger.Error("invalid booking config", "error", err)
		os.Exit(1)
	}
	gw, err := bootstrap.Gateway(cfg)
	if err != nil {
		logger.Error("failed to configure payment gateway", "error", err)
		os.Exit(1)
	}

	hub := websockets.NewHub()
	publisher, err := deps.Publisher(ctx, cfg, hub)
	if err != nil {
		logger.Error("failed to create websocket publisher", "error", err)
		os.Exit(1)
	}
	dispatcher, err := deps.Dispatcher(cfg, publisher, logger)
	if err != nil {
		logger.Error("failed to configure notifications", "error", err)
		os.Exit(1)
	}

	catalog := cache.NewCatalog(deps.Store, cfg.CatalogCacheTTL)
	executor := tasks.NewExecutor(payout.NewInitiator(deps.Store, catalog, logger), dispatcher, logger)

	// Side effects go to SQS when a queue is configured, otherwise to an in-process pool.
	var submitter tasks.Submitter
	var pool *tasks.Pool
	if cfg.TasksQueueURL != "" {
		submitter = tasks.NewSQSSubmitter(deps.SQS, cfg.TasksQueueURL)
	} else {
		pool = tasks.NewPool(executor, cfg.Pool(), logger)
		submitter = pool
	}

	svc := booking.NewService(booking.Deps{
		Bookings:  deps.Store,
		Catalog:   catalog,
		Gateway:   gw,
		Ledger:    ledger.NewRecorder(deps.Store, logger),
		Tasks:     submitter,
		Publisher: publisher,
	}, bookingCfg, logger)

	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.NewStructuredLogger(logger))
	bookings.NewBookingsHandler(svc, handlers.NewValidator(), cfg.GatewayKeyID).Routes(router)
	router.Handle("/ws", wshandler.NewHandler(deps.Store, hub))
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("starting server", "port", cfg.HTTPPort, "store", cfg.Store)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to stop server", "error", err)
	}
	if pool != nil {
		if err := pool.Shutdown(shutdownCtx); err != nil {
			logger.Error("side-effect tasks were dropped at shutdown", "error", err)
		}
	}
	slog.Info("stopped")
}
