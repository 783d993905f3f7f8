package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	appbilling "github.com/bizbooks/backend/internal/application/billing"
	appcompany "github.com/bizbooks/backend/internal/application/company"
	appidentity "github.com/bizbooks/backend/internal/application/identity"
	"github.com/bizbooks/backend/internal/infrastructure/auth"
	"github.com/bizbooks/backend/internal/infrastructure/cache"
	"github.com/bizbooks/backend/internal/infrastructure/config"
	"github.com/bizbooks/backend/internal/infrastructure/logger"
	"github.com/bizbooks/backend/internal/infrastructure/numbering"
	"github.com/bizbooks/backend/internal/infrastructure/persistence"
	"github.com/bizbooks/backend/internal/infrastructure/telemetry"
	"github.com/bizbooks/backend/internal/interfaces/http/handler"
	"github.com/bizbooks/backend/internal/interfaces/http/middleware"
	"github.com/bizbooks/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

var version = "dev"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting BizBooks Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	// Initialize tracing
	tracerProvider, err := telemetry.NewTracerProvider(context.Background(), telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	defer func() {
		if err := tracerProvider.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	// Initialize database connection
	db, err := persistence.NewDatabase(&cfg.Database)
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
		if err := db.EnableTracing(); err != nil {
			log.Fatal("Failed to enable database tracing", zap.Error(err))
		}
	}

	// Initialize repositories
	companyRepo := persistence.NewGormCompanyRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)
	paymentRepo := persistence.NewGormPaymentRepository(db.DB)
	creditNoteRepo := persistence.NewGormCreditNoteRepository(db.DB)
	quotationRepo := persistence.NewGormQuotationRepository(db.DB)
	proformaRepo := persistence.NewGormProformaRepository(db.DB)
	purchaseOrderRepo := persistence.NewGormPurchaseOrderRepository(db.DB)

	txManager := persistence.NewGormTransactionManager(db.DB)

	// Document numbering
	numberGenerator := numbering.NewGenerator(numbering.Repositories{
		Companies:      companyRepo,
		Invoices:       invoiceRepo,
		Payments:       paymentRepo,
		CreditNotes:    creditNoteRepo,
		Quotations:     quotationRepo,
		Proformas:      proformaRepo,
		PurchaseOrders: purchaseOrderRepo,
	}, log)

	// Idempotency store (redis or in-memory per config)
	idempotencyStore, err := cache.NewIdempotencyStore(cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize idempotency store", zap.Error(err))
	}
	log.Info("Idempotency store initialized", zap.String("backend", cfg.Idempotency.Backend))

	// Initialize application services
	billingCfg := appbilling.Config{
		NumberRetryAttempts: cfg.Billing.NumberRetryAttempts,
		IdempotencyTTL:      cfg.Idempotency.TTL,
	}
	invoiceService := appbilling.NewInvoiceService(invoiceRepo, numberGenerator, txManager, billingCfg, log)
	paymentService := appbilling.NewPaymentService(invoiceRepo, paymentRepo, numberGenerator, txManager, idempotencyStore, billingCfg, log)
	creditNoteService := appbilling.NewCreditNoteService(creditNoteRepo, invoiceRepo, numberGenerator, txManager, billingCfg, log)
	documentService := appbilling.NewDocumentService(quotationRepo, proformaRepo, purchaseOrderRepo, numberGenerator, txManager, billingCfg, log)
	companyService := appcompany.NewService(companyRepo, log)

	jwtService := auth.NewJWTService(cfg.JWT)
	authService := appidentity.NewAuthService(userRepo, jwtService, log)

	// Initialize HTTP handlers
	authHandler := handler.NewAuthHandler(authService)
	companyHandler := handler.NewCompanyHandler(companyService)
	invoiceHandler := handler.NewInvoiceHandler(invoiceService,
		handler.WithOverdueSweep(cfg.Billing.OverdueSweepEnabled))
	paymentHandler := handler.NewPaymentHandler(paymentService)
	creditNoteHandler := handler.NewCreditNoteHandler(creditNoteService)
	documentHandler := handler.NewDocumentHandler(documentService)
	systemHandler := handler.NewSystemHandler(db.DB, version)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	middleware.SetupValidator()

	engine := gin.New()

	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Middleware stack: request ID, panic recovery, request logging, tracing,
	// CORS, body limit, then JWT authentication.
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	if cfg.Telemetry.Enabled {
		engine.Use(otelgin.Middleware(cfg.Telemetry.ServiceName))
	}

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	engine.Use(middleware.CORSWithConfig(corsConfig))

	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	jwtConfig := middleware.JWTMiddlewareConfig{
		JWTService: jwtService,
		SkipPaths: []string{
			"/health",
			"/ready",
			"/api/v1/health",
			"/api/v1/ready",
			"/api/v1/auth/login",
			"/api/v1/auth/refresh",
			"/api/v1/auth/register",
		},
		Logger: log,
	}
	engine.Use(middleware.JWTAuthMiddlewareWithConfig(jwtConfig))

	// Probes outside API versioning for load balancers
	engine.GET("/health", systemHandler.Health)
	engine.GET("/ready", systemHandler.Ready)

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(systemHandler).
		Register(authHandler).
		Register(companyHandler).
		Register(invoiceHandler).
		Register(paymentHandler).
		Register(creditNoteHandler).
		Register(documentHandler)
	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

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

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
