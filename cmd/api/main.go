package main

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/restylehq/booking-platform/cmd/mainconfig"
	"github.com/restylehq/booking-platform/internal/api/router"
	"github.com/restylehq/booking-platform/internal/availability"
	"github.com/restylehq/booking-platform/internal/bookings"
	appconfig "github.com/restylehq/booking-platform/internal/config"
	"github.com/restylehq/booking-platform/internal/highlevel"
	"github.com/restylehq/booking-platform/internal/http/handlers"
	"github.com/restylehq/booking-platform/internal/observability/metrics"
	"github.com/restylehq/booking-platform/internal/schedule"
	"github.com/restylehq/booking-platform/internal/webhooks"
	"github.com/restylehq/booking-platform/pkg/logging"
)

func main() {
	// Load .env in development; missing file is fine.
	_ = godotenv.Load()

	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting booking-platform API server",
		"env", cfg.Env,
		"port", cfg.Port,
		"timezone", cfg.BookingTimezone,
	)

	loc, err := time.LoadLocation(cfg.BookingTimezone)
	if err != nil {
		logger.Error("invalid BOOKING_TIMEZONE", "timezone", cfg.BookingTimezone, "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	redisOpts := &redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword}
	if cfg.RedisTLS {
		redisOpts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	rdb := redis.NewClient(redisOpts)
	defer rdb.Close()

	// Upstream client with redis-cached OAuth tokens.
	tokenStore := highlevel.NewPGTokenStore(pool)
	tokens := highlevel.NewRedisTokenSource(rdb, tokenStore, cfg.HLBaseURL,
		cfg.HLClientID, cfg.HLClientSecret, logger)
	upstream := highlevel.NewClient(cfg.HLBaseURL, cfg.HLLocationID, tokens, logger).
		WithMetrics(metrics.NewUpstream(nil))

	// Availability engine over the schedule tables.
	scheduleStore := schedule.NewStore(pool, loc, logger)
	engine := availability.NewEngine(scheduleStore, loc, availability.LogObserver{Logger: logger}).
		WithWindow(cfg.SlotWindowDays, cfg.SlotIntervalMinutes)

	bookingStore := bookings.NewStore(pool, logger)

	// Booking event outbox is optional; without a queue URL events are
	// simply not published.
	var publisher handlers.BookingEventPublisher
	if cfg.BookingEventsQueueURL != "" {
		awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
		if err != nil {
			logger.Error("failed to load AWS config", "error", err)
			os.Exit(1)
		}
		publisher = webhooks.NewSQSPublisher(sqs.NewFromConfig(awsCfg), cfg.BookingEventsQueueURL, logger)
	}

	routerCfg := &router.Config{
		Logger:              logger,
		SlotsHandler:        handlers.NewSlotsHandler(engine, metrics.NewSlots(nil), logger),
		CalendarsHandler:    handlers.NewCalendarsHandler(upstream, logger),
		StaffHandler:        handlers.NewStaffHandler(upstream, logger),
		ContactsHandler:     handlers.NewContactsHandler(upstream, logger),
		AppointmentsHandler: handlers.NewAppointmentsHandler(upstream, bookingStore, publisher, logger),
		PaymentsHandler:     handlers.NewPaymentsHandler(upstream, logger),
		TokenHandler:        handlers.NewTokenHandler(tokens, logger),
		AdminSchedule:       handlers.NewAdminScheduleHandler(scheduleStore, logger),
		AdminAuthSecret:     cfg.AdminJWTSecret,
		MetricsHandler:      promhttp.Handler(),
		CORSAllowedOrigins:  cfg.CORSAllowedOrigins,
		RateLimitPerSecond:  cfg.RateLimitPerSecond,
		RateLimitBurst:      cfg.RateLimitBurst,
	}
	r := router.New(routerCfg)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}
