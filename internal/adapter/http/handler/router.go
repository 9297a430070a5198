package handler

import (
	"waxipay/internal/adapter/http/middleware"
	redisStore "waxipay/internal/adapter/storage/redis"
	"waxipay/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	AuthSvc        ports.AuthService
	PaymentSvc     ports.PaymentService
	ReportingSvc   ports.ReportingService
	OTPSvc         ports.OTPService
	UserRepo       ports.UserRepository
	TokenSvc       ports.TokenService
	RateLimitStore *redisStore.RateLimitStore // nil = rate limiting disabled
	HealthCheckers []ports.HealthChecker
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

	// Health check (deep, verifies PostgreSQL + Redis)
	r.GET("/health", HealthCheck(deps.HealthCheckers...))

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

	jwtAuth := middleware.JWTAuth(deps.TokenSvc, deps.Logger)

	// --- Auth routes ---
	authHandler := NewAuthHandler(deps.AuthSvc, deps.OTPSvc, deps.UserRepo)
	auth := v1.Group("/auth")
	{
		auth.POST("/register", rl("auth_register"), authHandler.Register)
		auth.POST("/login", rl("auth_login"), authHandler.Login)
		auth.POST("/token/refresh", rl("auth_login"), authHandler.RefreshToken)
		auth.POST("/logout", jwtAuth, authHandler.Logout)
		auth.GET("/profile", jwtAuth, rl("dashboard"), authHandler.Profile)
		auth.PATCH("/profile", jwtAuth, rl("dashboard"), authHandler.UpdateProfile)
		auth.POST("/verify-otp", jwtAuth, rl("auth_otp"), authHandler.VerifyOTP)
		auth.POST("/resend-otp", jwtAuth, rl("auth_otp"), authHandler.ResendOTP)
	}

	// --- Payment routes ---
	paymentHandler := NewPaymentHandler(deps.PaymentSvc)
	payments := v1.Group("/payments")
	{
		// The gateway calls this server-to-server, unauthenticated; the
		// notification carries its own credential digests.
		payments.POST("/ipn", paymentHandler.IPN)

		payments.POST("/initiate", jwtAuth, rl("payments"), paymentHandler.InitiatePayment)
		payments.GET("/methods", jwtAuth, rl("dashboard"), paymentHandler.PaymentMethods)
		payments.GET("/success", jwtAuth, paymentHandler.Success)
		payments.GET("/cancel", jwtAuth, paymentHandler.Cancel)
	}

	// --- Wallet & reporting routes ---
	walletHandler := NewWalletHandler(deps.ReportingSvc)
	transactionHandler := NewTransactionHandler(deps.ReportingSvc)

	v1.GET("/wallet", jwtAuth, rl("dashboard"), walletHandler.GetWallet)

	transactions := v1.Group("/transactions", jwtAuth)
	{
		transactions.GET("", rl("dashboard"), transactionHandler.List)
		transactions.GET("/:id", rl("dashboard"), transactionHandler.Get)
	}

	dashboard := v1.Group("/dashboard", jwtAuth)
	{
		dashboard.GET("/stats", rl("dashboard"), transactionHandler.Stats)
	}

	return r
}
