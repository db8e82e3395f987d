package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	catalogapp "github.com/atelier/backend/internal/application/catalog"
	integrationapp "github.com/atelier/backend/internal/application/integration"
	partnerapp "github.com/atelier/backend/internal/application/partner"
	salesapp "github.com/atelier/backend/internal/application/sales"
	settingsapp "github.com/atelier/backend/internal/application/settings"
	"github.com/atelier/backend/internal/domain/integration"
	"github.com/atelier/backend/internal/domain/sales"
	"github.com/atelier/backend/internal/domain/settings"
	"github.com/atelier/backend/internal/domain/shared/valueobject"
	"github.com/atelier/backend/internal/infrastructure/auth"
	"github.com/atelier/backend/internal/infrastructure/cache"
	"github.com/atelier/backend/internal/infrastructure/config"
	"github.com/atelier/backend/internal/infrastructure/ecommerce"
	"github.com/atelier/backend/internal/infrastructure/event"
	"github.com/atelier/backend/internal/infrastructure/logger"
	"github.com/atelier/backend/internal/infrastructure/persistence"
	"github.com/atelier/backend/internal/infrastructure/scheduler"
	"github.com/atelier/backend/internal/infrastructure/telemetry"
	"github.com/atelier/backend/internal/interfaces/command"
	"github.com/atelier/backend/internal/interfaces/http/dto"
	"github.com/atelier/backend/internal/interfaces/http/handler"
	"github.com/atelier/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	logCfg := &logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	}
	log, err := logger.New(logCfg)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// Telemetry comes first so the logger can tee into the OTLP bridge
	tel, err := telemetry.Setup(ctx, cfg.Telemetry, version, log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	if tel.Enabled() {
		if log, err = logger.New(logCfg, tel.ZapCore(logger.ParseLevel(cfg.Log.Level))); err != nil {
			panic("Failed to initialize logger: " + err.Error())
		}
	}
	defer func() {
		_ = log.Sync()
	}()

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	log.Info("Starting Atelier Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	// Database
	db, err := persistence.NewDatabase(&cfg.Database, log)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	if err := telemetry.InstrumentDB(db.DB, cfg.Telemetry, string(db.Dialect()), log); err != nil {
		log.Warn("Database tracing disabled", zap.Error(err))
	}
	log.Info("Database connected successfully", zap.String("dialect", string(db.Dialect())))

	// Repositories
	productRepo := persistence.NewGormProductRepository(db)
	categoryRepo := persistence.NewGormCategoryRepository(db)
	attributeRepo := persistence.NewGormAttributeRepository(db)
	termRepo := persistence.NewGormTermRepository(db)
	tagRepo := persistence.NewGormTagRepository(db)
	clientRepo := persistence.NewGormClientRepository(db)
	employeeRepo := persistence.NewGormEmployeeRepository(db)
	quoteRepo := persistence.NewGormQuoteRepository(db)
	invoiceRepo := persistence.NewGormInvoiceRepository(db)
	settingsRepo := persistence.NewGormSettingsRepository(db)
	salesTxScope := persistence.NewGormSalesTransactionScope(db)

	// Metrics and domain events
	metrics, err := telemetry.NewBusinessMetrics(tel.Meter("atelier"))
	if err != nil {
		log.Fatal("Failed to register business metrics", zap.Error(err))
	}
	eventBus := event.NewInMemoryEventBus(log)
	eventBus.Subscribe(metrics, metrics.EventTypes()...)
	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}

	// Application services
	settingsService := settingsapp.NewService(settingsRepo,
		settings.Defaults(cfg.Sales.DefaultTaxRate, valueobject.NewMoney(cfg.Sales.DefaultFiscalValue)), log)

	policy := salesapp.Policy{
		Quote:           sales.QuotePolicy{AllowDirectAccept: cfg.Sales.AllowDirectAccept},
		QuoteValidity:   cfg.Sales.QuoteValidity,
		InvoiceDueAfter: cfg.Sales.InvoiceDueAfter,
	}
	snapshotSource := salesapp.NewCatalogSnapshotSource(clientRepo, productRepo)
	quoteService := salesapp.NewQuoteService(quoteRepo, invoiceRepo, salesTxScope, snapshotSource, settingsService, policy, log)
	quoteService.SetEventPublisher(eventBus)
	invoiceService := salesapp.NewInvoiceService(invoiceRepo, salesTxScope, snapshotSource, settingsService, policy, log)
	invoiceService.SetEventPublisher(eventBus)

	var gateway integration.CatalogGateway
	if cfg.Remote.Configured() {
		woo, err := ecommerce.NewWooClient(&ecommerce.WooConfig{
			BaseURL:         cfg.Remote.BaseURL,
			ConsumerKey:     cfg.Remote.ConsumerKey,
			ConsumerSecret:  cfg.Remote.ConsumerSecret,
			Username:        cfg.Remote.Username,
			AppPassword:     cfg.Remote.AppPassword,
			Timeout:         cfg.Remote.Timeout,
			RateLimit:       cfg.Remote.RateLimit,
			RateBurst:       cfg.Remote.RateBurst,
			GetRetries:      cfg.Remote.GetRetries,
			MaxResponseSize: cfg.Remote.MaxResponse,
		}, log)
		if err != nil {
			log.Fatal("Invalid remote catalog configuration", zap.Error(err))
		}
		gateway = woo
		log.Info("Remote catalog configured", zap.String("base_url", cfg.Remote.BaseURL))
	} else {
		log.Warn("Remote catalog not configured, sync commands are unavailable")
	}
	syncService := integrationapp.NewCatalogSyncService(gateway, attributeRepo, termRepo, tagRepo, productRepo, categoryRepo,
		integrationapp.SyncOptions{PhaseDelay: cfg.Sync.PhaseDelay, PruneRemote: cfg.Sync.PruneRemote}, log)
	syncService.SetRecorder(metrics)

	services := command.Services{
		Quotes:     quoteService,
		Invoices:   invoiceService,
		Products:   catalogapp.NewProductService(productRepo),
		Categories: catalogapp.NewCategoryService(categoryRepo),
		Attributes: catalogapp.NewAttributeService(attributeRepo, termRepo),
		Tags:       catalogapp.NewTagService(tagRepo),
		Sync:       syncService,
		Clients:    partnerapp.NewClientService(clientRepo),
		Employees:  partnerapp.NewEmployeeService(employeeRepo),
		Settings:   settingsService,
		Now:        time.Now,
	}

	// In-flight guard for correlation ids
	inFlight, err := cache.NewInFlightStoreFactory(cfg.Redis,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(true),
	).CreateStore()
	if err != nil {
		log.Fatal("Failed to create in-flight store", zap.Error(err))
	}

	// The authenticator backs logout and /me even when the gate is off
	authenticator := auth.NewAuthenticator(cfg.Auth, auth.NewJWTService(cfg.Auth), auth.NewRevocationList(), log)
	if !cfg.Auth.Enabled {
		log.Warn("Token gate disabled, the API is open")
	}

	// Background jobs
	jobs, err := scheduler.New(scheduler.ConfigFrom(cfg.Scheduler), log)
	if err != nil {
		log.Fatal("Invalid scheduler configuration", zap.Error(err))
	}
	var tickers []*scheduler.Ticker
	if cfg.Scheduler.Enabled {
		if err := jobs.Start(ctx); err != nil {
			log.Fatal("Failed to start scheduler", zap.Error(err))
		}
		tickers = append(tickers,
			scheduler.NewTicker(jobs, scheduler.OverdueSweepTask(invoiceService, metrics, time.Now), cfg.Scheduler.OverdueSweepInterval, log),
			scheduler.NewTicker(jobs, scheduler.QuoteExpiryTask(quoteService, time.Now), cfg.Scheduler.QuoteExpiryInterval, log),
		)
		for _, t := range tickers {
			t.Start(ctx)
		}
		if cfg.Sync.OnStartup && gateway != nil {
			if _, err := jobs.SubmitWithTimeout(scheduler.CatalogSyncTask(syncService), cfg.Sync.StartupTimeout); err != nil {
				log.Warn("Startup catalog sync not scheduled", zap.Error(err))
			}
		}
	}

	// HTTP surface
	validator := dto.NewValidator()
	dispatcher := command.NewDispatcher(validator)
	command.Register(dispatcher, services)

	engine, err := router.New(router.Options{
		ServiceName:    cfg.Telemetry.ServiceName,
		TracingEnabled: tel.Enabled(),
		AuthEnabled:    cfg.Auth.Enabled,
		CORSOrigins:    cfg.HTTP.CORSAllowOrigins,
		TrustedProxies: cfg.HTTP.TrustedProxies,
		MaxBodySize:    cfg.HTTP.MaxBodySize,
		CommandTimeout: cfg.HTTP.CommandTimeout,
		InFlightTTL:    cfg.HTTP.InFlightTTL,
		LoginPerMinute: cfg.Auth.LoginPerMinute,
		LoginBurst:     cfg.Auth.LoginBurst,
	}, router.Deps{
		Logger:        log,
		Validator:     validator,
		Services:      services,
		Dispatcher:    dispatcher,
		Authenticator: authenticator,
		InFlight:      inFlight,
		Health:        handler.NewHealthHandler(db, jobs, version),
	})
	if err != nil {
		log.Fatal("Failed to build router", zap.Error(err))
	}

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
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	for _, t := range tickers {
		t.Stop()
	}
	if err := jobs.Stop(shutdownCtx); err != nil {
		log.Warn("Scheduler did not stop cleanly", zap.Error(err))
	}
	if err := eventBus.Stop(shutdownCtx); err != nil {
		log.Warn("Event bus did not stop cleanly", zap.Error(err))
	}
	stop()
	if err := inFlight.Close(); err != nil {
		log.Warn("Error closing in-flight store", zap.Error(err))
	}
	if err := tel.Shutdown(shutdownCtx); err != nil {
		log.Warn("Error flushing telemetry", zap.Error(err))
	}
	if err := db.Close(); err != nil {
		log.Error("Error closing database", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
