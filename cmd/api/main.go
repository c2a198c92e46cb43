package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ghostpass/config"
	httpHandler "ghostpass/internal/adapter/http/handler"
	"ghostpass/internal/adapter/provider"
	pgStorage "ghostpass/internal/adapter/storage/postgres"
	redisStorage "ghostpass/internal/adapter/storage/redis"
	"ghostpass/internal/core/ports"
	"ghostpass/internal/jobs"
	"ghostpass/internal/service"
	"ghostpass/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Msg("Starting Ghost Pass")

	ctx := context.Background()

	// Initialize PostgreSQL pool
	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()
	log.Info().Msg("PostgreSQL connected")

	// Initialize Redis client
	rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()
	log.Info().Msg("Redis connected")

	// Initialize repositories
	walletRepo := pgStorage.NewWalletRepo(pool)
	ledgerRepo := pgStorage.NewLedgerRepo(pool)
	passRepo := pgStorage.NewPassRepo(pool)
	entryLogRepo := pgStorage.NewEntryLogRepo(pool)
	eventRepo := pgStorage.NewEventRepo(pool)
	revenueRepo := pgStorage.NewRevenueProfileRepo(pool)
	staffRepo := pgStorage.NewStaffRepo(pool)
	payoutRepo := pgStorage.NewPayoutRepo(pool)
	idempotencyRepo := pgStorage.NewIdempotencyRepo(pool)
	auditRepo := pgStorage.NewAuditRepo(pool)
	transactor := pgStorage.NewTransactor(pool)

	// Initialize Redis stores
	idempotencyCache := redisStorage.NewIdempotencyCache(rdb)
	scanGuard := redisStorage.NewScanGuard(rdb)
	rateLimitStore := redisStorage.NewRateLimitStore(rdb)

	// Initialize provider clients
	paymentClient := provider.NewPaymentClient(cfg.Providers.Payment)
	identityClient := provider.NewIdentityClient(cfg.Providers.Identity)
	pushClient := provider.NewPushClient(cfg.Providers.Push)

	// Initialize core services
	hashSvc := service.NewArgon2HashService()
	tokenSvc := service.NewJWTTokenService(cfg.JWT.Secret, cfg.JWT.Expiry, cfg.JWT.Issuer)
	auditSvc := service.NewAuditService(auditRepo, log)

	// Initialize business services
	authSvc := service.NewAuthService(staffRepo, hashSvc, tokenSvc, auditSvc, log)
	ledgerSvc := service.NewLedgerService(walletRepo, ledgerRepo, idempotencyRepo, idempotencyCache, transactor, pushClient, log)
	purchaseSvc := service.NewPurchaseService(
		walletRepo,
		ledgerRepo,
		passRepo,
		eventRepo,
		revenueRepo,
		staffRepo,
		idempotencyRepo,
		idempotencyCache,
		transactor,
		log,
	)
	admissionSvc := service.NewAdmissionService(passRepo, eventRepo, entryLogRepo, scanGuard, transactor, log)
	walletSvc := service.NewWalletService(walletRepo, paymentClient, identityClient, log)
	payoutSvc := service.NewPayoutService(payoutRepo, ledgerRepo, staffRepo, transactor, auditSvc, log)
	reportingSvc := service.NewReportingService(ledgerRepo, walletRepo, entryLogRepo, log)
	venueSvc := service.NewVenueService(eventRepo, revenueRepo, auditSvc, log)

	// Start the pass expiry sweeper
	sweeper := jobs.NewPassSweeper(passRepo, cfg.Jobs.PassExpirySchedule, log)
	if err := sweeper.Start(); err != nil {
		log.Fatal().Err(err).Msg("Failed to start pass sweeper")
	}
	defer sweeper.Stop()

	// Initialize health checkers
	pgHealth := pgStorage.NewHealthCheck(pool)
	redisHealth := redisStorage.NewHealthCheck(rdb)

	// Setup Gin router with all routes
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		AuthSvc:        authSvc,
		WalletSvc:      walletSvc,
		PurchaseSvc:    purchaseSvc,
		AdmissionSvc:   admissionSvc,
		PayoutSvc:      payoutSvc,
		ReportingSvc:   reportingSvc,
		VenueSvc:       venueSvc,
		LedgerSvc:      ledgerSvc,
		PaymentProv:    paymentClient,
		TokenSvc:       tokenSvc,
		GatewayCfg:     cfg.Gateway,
		RateLimitStore: rateLimitStore,
		HealthCheckers: []ports.HealthChecker{pgHealth, redisHealth},
		AuditSvc:       auditSvc,
		Logger:         log,
	})

	// HTTP Server with graceful shutdown
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
