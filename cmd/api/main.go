package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/dafibh/mpwr/portal-backend/docs"
	"github.com/dafibh/mpwr/portal-backend/internal/config"
	"github.com/dafibh/mpwr/portal-backend/internal/domain"
	"github.com/dafibh/mpwr/portal-backend/internal/handler"
	"github.com/dafibh/mpwr/portal-backend/internal/middleware"
	"github.com/dafibh/mpwr/portal-backend/internal/repository/postgres"
	"github.com/dafibh/mpwr/portal-backend/internal/repository/session"
	"github.com/dafibh/mpwr/portal-backend/internal/repository/storage"
	"github.com/dafibh/mpwr/portal-backend/internal/service"
	"github.com/dafibh/mpwr/portal-backend/internal/tracing"
	"github.com/dafibh/mpwr/portal-backend/internal/websocket"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	echoSwagger "github.com/swaggo/echo-swagger"
)

// @title MPWR Borrower Portal API
// @version 1.0
// @description Loans, repayment schedules, payoff projections, payments, documents and notifications for MPWR borrowers.
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// Initialize zerolog
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("ENV") != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Tracing
	shutdownTracing, err := tracing.InitTracing(ctx, cfg.ServiceName, cfg.OtelEndpoint)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize tracing")
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			log.Error().Err(err).Msg("Failed to flush traces")
		}
	}()

	// Connect to database
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pool.Close()

	// Verify database connection
	if err := pool.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to ping database")
	}
	log.Info().Msg("Connected to database")

	// Initialize repositories
	customerRepo := postgres.NewCustomerRepository(pool)
	loanRepo := postgres.NewLoanRepository(pool)
	paymentRepo := postgres.NewPaymentRepository(pool)
	documentRepo := postgres.NewDocumentRepository(pool)
	notificationRepo := postgres.NewNotificationRepository(pool)

	// Override sessions live in Redis when configured, otherwise in memory
	var sessions domain.OverrideSessionRepository
	if cfg.RedisURL != "" {
		redisSessions, err := session.NewRedisOverrideRepository(ctx, cfg.RedisURL, cfg.OverrideTTL)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer redisSessions.Close()
		sessions = redisSessions
		log.Info().Msg("Override sessions stored in Redis")
	} else {
		memorySessions := session.NewMemoryOverrideRepository(cfg.OverrideTTL)
		defer memorySessions.Stop()
		sessions = memorySessions
		log.Info().Msg("REDIS_URL not set, override sessions kept in memory")
	}

	documentStore, err := storage.NewS3DocumentStore(ctx, cfg.S3)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create document store")
	}

	// Real-time events
	hub := websocket.NewHub()

	// Initialize services
	notificationService := service.NewNotificationService(notificationRepo)
	notificationService.SetEventPublisher(hub)
	loanService := service.NewLoanService(loanRepo, sessions)
	loanService.SetEventPublisher(hub)
	paymentService := service.NewPaymentService(paymentRepo, loanRepo, sessions, notificationService)
	paymentService.SetEventPublisher(hub)
	documentService := service.NewDocumentService(documentRepo, documentStore, notificationService)
	documentService.SetEventPublisher(hub)
	profileService := service.NewProfileService(customerRepo)
	dashboardService := service.NewDashboardService(loanRepo, documentRepo, paymentService, notificationService)

	// Payment reminders
	reminderWorker := service.NewReminderWorker(paymentService, notificationService, customerRepo, log.Logger, service.DefaultReminderWorkerConfig())
	reminderWorker.Start(ctx)
	defer reminderWorker.Stop()

	// Initialize auth middleware
	authMiddleware, err := middleware.NewAuthMiddleware(cfg.Cognito.IssuerURL(), cfg.Cognito.ClientID, customerRepo)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create auth middleware")
	}
	wsValidator, err := websocket.NewCognitoJWTValidator(cfg.Cognito.IssuerURL(), cfg.Cognito.ClientID)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create WebSocket token validator")
	}
	rateLimiter := middleware.NewRateLimiterWithConfig(cfg.RateLimitPerMinute, cfg.RateLimitBurst)
	defer rateLimiter.Stop()

	// Initialize handlers
	handlers := handler.Handlers{
		Profile:      handler.NewProfileHandler(profileService),
		Loan:         handler.NewLoanHandler(loanService),
		Payment:      handler.NewPaymentHandler(paymentService),
		Document:     handler.NewDocumentHandler(documentService),
		Notification: handler.NewNotificationHandler(notificationService),
		Dashboard:    handler.NewDashboardHandler(dashboardService),
		WebSocket:    handler.NewWebSocketHandler(hub, wsValidator, cfg.CORSOrigins),
	}

	handlers.WebSocket.SetMessageHandler(handler.AckNotifications(notificationService))

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Request ID middleware
	e.Use(echomiddleware.RequestID())

	// CORS middleware
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Security headers middleware (helmet-like)
	e.Use(echomiddleware.SecureWithConfig(echomiddleware.SecureConfig{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		HSTSMaxAge:            31536000,
		ContentSecurityPolicy: "default-src 'self'",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
	}))

	// Request logging and metrics
	e.Use(zerologMiddleware())
	e.Use(middleware.Metrics())

	// Recovery middleware
	e.Use(echomiddleware.Recover())

	// Health check endpoint
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// API documentation
	e.GET("/swagger/*", echoSwagger.WrapHandler)
	e.GET("/openapi.json", handler.ServeOpenAPI3Spec)

	// Register API routes
	handler.RegisterRoutes(e, authMiddleware, rateLimiter, handlers)

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Graceful shutdown
	<-ctx.Done()

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// zerologMiddleware returns a middleware that logs requests using zerolog
func zerologMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()

			event := log.Info()
			if res.Status >= http.StatusInternalServerError {
				event = log.Error()
			}
			event.
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", res.Status).
				Dur("latency", time.Since(start)).
				Str("request_id", res.Header().Get(echo.HeaderXRequestID)).
				Msg("request")

			return nil
		}
	}
}
