package handler

import (
	"ghostpass/config"
	"ghostpass/internal/adapter/http/middleware"
	redisStore "ghostpass/internal/adapter/storage/redis"
	"ghostpass/internal/core/domain"
	"ghostpass/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	AuthSvc        ports.AuthService
	WalletSvc      ports.WalletService
	PurchaseSvc    ports.PurchaseService
	AdmissionSvc   ports.AdmissionService
	PayoutSvc      ports.PayoutService
	ReportingSvc   ports.ReportingService
	VenueSvc       ports.VenueService
	LedgerSvc      ports.LedgerService
	PaymentProv    ports.PaymentProvider
	TokenSvc       ports.TokenService
	GatewayCfg     config.GatewayConfig
	RateLimitStore *redisStore.RateLimitStore // nil = rate limiting disabled
	HealthCheckers []ports.HealthChecker
	AuditSvc       ports.AuditService // nil = audit logging disabled
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit
	r.Use(middleware.Metrics())

	// Audit logging (after response)
	if deps.AuditSvc != nil {
		r.Use(middleware.AuditLog(deps.AuditSvc))
	}

	// Health check (deep — verifies PostgreSQL + Redis)
	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	// Prometheus scrape endpoint
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Rate limit rules
	rules := middleware.DefaultRateLimitRules()

	// Helper: return rate limiter middleware if store is available, else noop.
	rl := func(group string) gin.HandlerFunc {
		if deps.RateLimitStore == nil {
			return func(c *gin.Context) { c.Next() }
		}
		rule, ok := rules[group]
		if !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rule, deps.Logger)
	}

	// API v1 routes
	v1 := r.Group("/api/v1")

	// --- Public routes (no auth) ---
	authHandler := NewAuthHandler(deps.AuthSvc)
	auth := v1.Group("/auth")
	{
		auth.POST("/register", rl("auth_register"), authHandler.Register)
		auth.POST("/login", rl("auth_login"), authHandler.Login)
	}

	// --- Device routes (binding id is the credential) ---
	walletHandler := NewWalletHandler(deps.WalletSvc, deps.ReportingSvc)
	purchaseHandler := NewPurchaseHandler(deps.PurchaseSvc)

	wallets := v1.Group("/wallets")
	{
		wallets.POST("/bind", rl("wallet_bind"), walletHandler.Bind)
		wallets.GET("/:binding_id", rl("dashboard"), walletHandler.Get)
		wallets.GET("/:binding_id/balance", rl("dashboard"), walletHandler.Balance)
		wallets.GET("/:binding_id/statement", rl("dashboard"), walletHandler.Statement)
		wallets.POST("/:binding_id/verify", rl("wallet_bind"), walletHandler.StartVerification)
	}

	topups := v1.Group("/topups")
	{
		topups.POST("/session", rl("topups"), walletHandler.CreateTopupSession)
	}

	purchases := v1.Group("/purchases")
	{
		purchases.POST("/ticket", rl("purchases"), purchaseHandler.PurchaseTicket)
		purchases.POST("/spend", rl("purchases"), purchaseHandler.VendorSpend)
	}

	// --- Payment provider webhook (signature-authenticated) ---
	webhookHandler := NewWebhookHandler(deps.PaymentProv, deps.LedgerSvc, deps.Logger)
	v1.POST("/webhooks/payment", webhookHandler.PaymentWebhook)

	// --- Gateway routes (per-venue shared key) ---
	gatewayAuth := middleware.GatewayAuth(deps.GatewayCfg, deps.Logger)
	scanHandler := NewScanHandler(deps.AdmissionSvc)
	scans := v1.Group("/scans", gatewayAuth)
	{
		scans.POST("", rl("scans"), scanHandler.Scan)
	}

	// --- JWT-authenticated routes (dashboard) ---
	jwtAuth := middleware.JWTAuth(deps.TokenSvc, deps.Logger)
	dashboardHandler := NewDashboardHandler(deps.ReportingSvc, deps.Logger)
	payoutHandler := NewPayoutHandler(deps.PayoutSvc, deps.Logger)
	venueHandler := NewVenueHandler(deps.VenueSvc, deps.Logger)

	dashboard := v1.Group("/dashboard", jwtAuth)
	{
		dashboard.GET("/stats", rl("dashboard"), dashboardHandler.Stats)
		dashboard.GET("/fees", rl("dashboard"), dashboardHandler.FeeBreakdown)
	}

	payouts := v1.Group("/payouts", jwtAuth)
	{
		payouts.POST("", rl("payouts"), middleware.RequireRole(domain.RoleVendor), payoutHandler.Request)
		payouts.GET("/available", rl("payouts"), middleware.RequireRole(domain.RoleVendor), payoutHandler.Available)
		payouts.GET("", rl("dashboard"), payoutHandler.List)
		payouts.POST("/:id/decide", rl("payouts"), middleware.RequireRole(domain.RoleAdmin), payoutHandler.Decide)
		payouts.POST("/:id/process", rl("payouts"), middleware.RequireRole(domain.RoleAdmin), payoutHandler.Process)
	}

	staffOnly := middleware.RequireRole(domain.RoleAdmin, domain.RoleVenue)
	events := v1.Group("/events", jwtAuth, staffOnly)
	{
		events.POST("", rl("dashboard"), venueHandler.CreateEvent)
		events.GET("", rl("dashboard"), venueHandler.ListEvents)
		events.PATCH("/:id/status", rl("dashboard"), venueHandler.SetStatus)
	}

	profiles := v1.Group("/profiles", jwtAuth, middleware.RequireRole(domain.RoleAdmin))
	{
		profiles.POST("", rl("dashboard"), venueHandler.CreateProfile)
		profiles.GET("", rl("dashboard"), venueHandler.ListProfiles)
		profiles.PUT("/:id", rl("dashboard"), venueHandler.UpdateProfile)
	}

	return r
}
