package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"github.com/tkarlsen/bodega/internal"
	"github.com/tkarlsen/bodega/internal/auth"
	"github.com/tkarlsen/bodega/internal/billing"
	"github.com/tkarlsen/bodega/internal/events"
	"github.com/tkarlsen/bodega/internal/handler"
	"github.com/tkarlsen/bodega/internal/middleware"
	"github.com/tkarlsen/bodega/internal/repository"
	"github.com/tkarlsen/bodega/internal/service"
	"github.com/tkarlsen/bodega/internal/telemetry"
)

func run() error {
	ctx := context.Background()

	// Load configuration
	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	// Configure logger
	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)

	// database/sql connection for migrations
	logger.Info().Msg("connecting to database")
	sqlDB, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer sqlDB.Close()

	if err := sqlDB.Ping(); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	logger.Info().Msg("running database migrations")
	if err := internal.RunMigrations(sqlDB); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	// pgx connection pool for the application
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}
	defer pool.Close()

	store := repository.New(pool)

	// Payment provider
	provider, err := billing.NewStripeProvider(cfg.Stripe)
	if err != nil {
		return fmt.Errorf("failed to initialize stripe provider: %w", err)
	}
	if cfg.Stripe.IsTestMode() {
		logger.Warn().Msg("stripe is in test mode")
	}

	// Telemetry
	businessMetrics := telemetry.NewBusinessMetrics("bodega")
	httpMetrics := middleware.NewMetrics("bodega")

	// Event bus
	var publisher events.Publisher = events.NoopPublisher{}
	if cfg.NATS.URL != "" {
		natsPub, err := events.Connect(cfg.NATS.URL, logger)
		if err != nil {
			return fmt.Errorf("failed to connect to nats: %w", err)
		}
		defer natsPub.Close()
		publisher = natsPub
		logger.Info().Str("url", cfg.NATS.URL).Msg("connected to nats")

		// Audit consumer: log and count everything the storefront
		// publishes until a real fulfillment worker takes over.
		err = natsPub.Subscribe(events.SubjectAll, func(subject string, data []byte) {
			businessMetrics.EventsConsumed.WithLabelValues(subject).Inc()
			logger.Info().Str("subject", subject).RawJSON("event", data).Msg("domain event")
		})
		if err != nil {
			return fmt.Errorf("failed to subscribe to events: %w", err)
		}
	}

	// Auth
	tokens := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	// Services
	productService := service.NewProductService(store, logger)
	cartService := service.NewCartService(store, businessMetrics, logger)
	checkoutService := service.NewCheckoutService(store, provider, businessMetrics, logger)
	orderService := service.NewOrderService(store, publisher, businessMetrics, logger)
	ticketService := service.NewTicketService(store, businessMetrics, logger)
	userService := service.NewUserService(store, tokens, publisher, businessMetrics, logger)

	// HTTP server
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.Server.ReadTimeout = 10 * time.Second
	e.Server.WriteTimeout = 30 * time.Second
	e.Server.IdleTimeout = 120 * time.Second
	e.Use(echomw.Recover())
	e.Use(echomw.CORS())
	e.Use(echomw.BodyLimit("1M"))
	e.Use(middleware.RequestLogger(logger))
	e.Use(httpMetrics.Middleware())

	// Credential endpoints get a per-IP rate limit.
	limited := e.Group("", echomw.RateLimiter(echomw.NewRateLimiterMemoryStore(rate.Limit(10))))
	authed := e.Group("", middleware.AuthJWT(tokens))
	admin := e.Group("", middleware.AuthJWT(tokens), middleware.RequireAdmin())

	handler.NewProductHandler(productService).RegisterRoutes(e, admin)
	handler.NewCartHandler(cartService).RegisterRoutes(authed)
	handler.NewCheckoutHandler(checkoutService).RegisterRoutes(authed)
	handler.NewUserHandler(userService, orderService).RegisterRoutes(limited, authed)
	handler.NewTicketHandler(ticketService).RegisterRoutes(e, admin)
	handler.NewWebhookHandler(provider, orderService, businessMetrics, logger).RegisterRoutes(e)

	e.GET("/healthz", func(c echo.Context) error {
		if err := pool.Ping(c.Request().Context()); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
		}
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/metrics", echo.WrapHandler(httpMetrics.Handler()))

	// Serve until interrupted, then drain in-flight requests.
	errCh := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Port)
		logger.Info().Str("addr", addr).Str("env", cfg.Env).Msg("server starting")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
