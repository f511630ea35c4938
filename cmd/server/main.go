package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	campaignapp "github.com/potting/backend/internal/application/campaign"
	pottingapp "github.com/potting/backend/internal/application/potting"
	pricingapp "github.com/potting/backend/internal/application/pricing"
	salesapp "github.com/potting/backend/internal/application/sales"
	"github.com/potting/backend/internal/infrastructure/cache"
	"github.com/potting/backend/internal/infrastructure/config"
	"github.com/potting/backend/internal/infrastructure/event"
	"github.com/potting/backend/internal/infrastructure/logger"
	"github.com/potting/backend/internal/infrastructure/persistence"
	"github.com/potting/backend/internal/infrastructure/scheduler"
	"github.com/potting/backend/internal/interfaces/http/handler"
	"github.com/potting/backend/internal/interfaces/http/router"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting Potting Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel,
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh))

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled {
		if err := db.EnableTracing(cfg.Database.DBName); err != nil {
			log.Warn("Failed to enable database tracing", zap.Error(err))
		}
	}

	// Initialize repositories
	campaignRepo := persistence.NewGormCampaignRepository(db.DB)
	confirmationRepo := persistence.NewGormConfirmationRepository(db.DB)
	orderRepo := persistence.NewGormCustomerOrderRepository(db.DB)
	formulaRepo := persistence.NewGormFormulaRepository(db.DB)
	transitRepo := persistence.NewGormTransitOrderRepository(db.DB)
	lotRepo := persistence.NewGormLotRepository(db.DB)
	containerRepo := persistence.NewGormContainerRepository(db.DB)
	parameterRepo := persistence.NewGormParameterRepository(db.DB)
	sequences := persistence.NewGormSequenceGenerator(db.DB, log)
	salesTxScope := persistence.NewGormSalesTransactionScope(db.DB)
	pottingTxScope := persistence.NewGormPottingTransactionScope(db.DB)

	// Business parameters are served from a cached snapshot; Redis backs the
	// snapshot when reachable, otherwise an in-process cache takes over.
	cacheFactory := cache.NewParameterCacheFactory(cfg.Redis,
		cache.WithLogger(log), cache.WithInMemoryFallback(true))
	paramCache, err := cacheFactory.CreateCache()
	if err != nil {
		log.Fatal("Failed to create parameter cache", zap.Error(err))
	}
	params := cache.NewCachedParameterProvider(parameterRepo, paramCache)
	if err := params.Refresh(context.Background()); err != nil {
		log.Warn("Initial parameter refresh failed, serving defaults", zap.Error(err))
	}

	// Initialize application services
	campaignService := campaignapp.NewService(campaignRepo)
	confirmationService := salesapp.NewConfirmationService(confirmationRepo, log)
	orderService := salesapp.NewCustomerOrderService(
		orderRepo, confirmationRepo, transitRepo, lotRepo, salesTxScope, confirmationService, log)
	formulaService := pricingapp.NewFormulaService(formulaRepo, confirmationRepo, sequences, log)
	transitOrderService := pottingapp.NewTransitOrderService(
		transitRepo, lotRepo, orderRepo, formulaRepo, pottingTxScope, sequences, params, log)
	lotService := pottingapp.NewLotService(lotRepo, transitRepo, containerRepo, log)
	containerService := pottingapp.NewContainerService(containerRepo, params, log)

	// Initialize event bus and handlers
	eventBus := event.NewInMemoryEventBus(log)

	// Formula pre-sale installment paid -> transit order payment flag
	formulaPaidHandler := pottingapp.NewFormulaPaidHandler(transitRepo, log)
	eventBus.Subscribe(formulaPaidHandler, formulaPaidHandler.EventTypes()...)

	log.Info("Event handlers registered",
		zap.Strings("formula_paid_events", formulaPaidHandler.EventTypes()),
	)

	// Start event bus
	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Inject event bus into services that publish events
	confirmationService.SetEventPublisher(eventBus)
	formulaService.SetEventPublisher(eventBus)
	transitOrderService.SetEventPublisher(eventBus)
	lotService.SetEventPublisher(eventBus)

	// Background schedulers (if enabled)
	var schedulerStops []func()
	if cfg.Scheduler.Enabled {
		expirationScheduler, err := scheduler.NewExpirationScheduler(
			confirmationService, cfg.Scheduler.ExpirationInterval, log)
		if err != nil {
			log.Fatal("Failed to create expiration scheduler", zap.Error(err))
		}
		schedulerStops = append(schedulerStops,
			startScheduler(expirationScheduler, "expiration", cfg.Scheduler.ShutdownGracePeriod, log))

		reminderScheduler, err := scheduler.NewPaymentReminderScheduler(
			formulaService, cfg.Scheduler.PaymentReminderHour, log)
		if err != nil {
			log.Fatal("Failed to create payment reminder scheduler", zap.Error(err))
		}
		schedulerStops = append(schedulerStops,
			startScheduler(reminderScheduler, "payment_reminder", cfg.Scheduler.ShutdownGracePeriod, log))

		refreshScheduler, err := scheduler.NewParamRefreshScheduler(
			params, cfg.Scheduler.ParamRefreshInterval, log)
		if err != nil {
			log.Fatal("Failed to create parameter refresh scheduler", zap.Error(err))
		}
		schedulerStops = append(schedulerStops,
			startScheduler(refreshScheduler, "param_refresh", cfg.Scheduler.ShutdownGracePeriod, log))

		log.Info("Schedulers started",
			zap.Duration("expiration_interval", cfg.Scheduler.ExpirationInterval),
			zap.Int("payment_reminder_hour", cfg.Scheduler.PaymentReminderHour),
			zap.Duration("param_refresh_interval", cfg.Scheduler.ParamRefreshInterval),
		)
	}

	// Initialize HTTP handlers
	handlers := router.Handlers{
		Campaign:     handler.NewCampaignHandler(campaignService),
		Confirmation: handler.NewConfirmationHandler(confirmationService),
		Order:        handler.NewCustomerOrderHandler(orderService),
		Formula:      handler.NewFormulaHandler(formulaService),
		TransitOrder: handler.NewTransitOrderHandler(transitOrderService),
		Lot:          handler.NewLotHandler(lotService),
		Container:    handler.NewContainerHandler(containerService),
		Parameter:    handler.NewParameterHandler(parameterRepo, params, log),
	}

	engine, err := router.New(cfg, log, handlers)
	if err != nil {
		log.Fatal("Failed to build router", zap.Error(err))
	}

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	for _, stop := range schedulerStops {
		stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

type lifecycle interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// startScheduler starts a scheduler and returns a stop function bounded by the
// configured shutdown grace period.
func startScheduler(s lifecycle, name string, grace time.Duration, log *zap.Logger) func() {
	if err := s.Start(context.Background()); err != nil {
		log.Fatal("Failed to start scheduler", zap.String("scheduler", name), zap.Error(err))
	}
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), grace)
		defer cancel()
		if err := s.Stop(ctx); err != nil {
			log.Error("Error stopping scheduler", zap.String("scheduler", name), zap.Error(err))
		}
	}
}
