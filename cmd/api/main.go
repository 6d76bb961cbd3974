package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"docnotify/internal/config"
	"docnotify/internal/database"
	"docnotify/internal/database/migration"
	"docnotify/internal/expiry"
	handlers "docnotify/internal/http/handler"
	"docnotify/internal/http/middleware"
	"docnotify/internal/mail"
	"docnotify/internal/metrics"
	"docnotify/internal/otel"
	"docnotify/internal/repository/postgres"
	"docnotify/internal/service"
	"docnotify/internal/storage"
)

func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()

	loc := time.Local
	if cfg.Scheduler.Timezone != "" {
		var err error
		loc, err = time.LoadLocation(cfg.Scheduler.Timezone)
		if err != nil {
			log.Fatalf("invalid SCHEDULER_TIMEZONE: %v", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, loc)
	if err != nil {
		log.Fatalf("failed to initialize tracing: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			log.Printf("tracing shutdown: %v", err)
		}
	}()

	// Initialize PostgreSQL connection (with pooling via database/sql)
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, loc, cfg.Database.Host); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	// Initialize reusable S3-compatible object storage client (MinIO-supported)
	objStore, err := storage.NewMinIO(cfg.MinIO)
	if err != nil {
		log.Fatalf("failed to initialize object storage: %v", err)
	}

	// Outbound email is optional: without SMTP_HOST the expiration cycle
	// still writes in-app notifications and records emails as skipped.
	var mailer mail.Transport
	if cfg.SMTP.Host != "" {
		mailer, err = mail.NewSMTP(cfg.SMTP)
		if err != nil {
			log.Fatalf("failed to initialize smtp transport: %v", err)
		}
	}

	// Initialize repositories and services
	docRepo := postgres.NewDocumentPostgres(db)
	userRepo := postgres.NewUserPostgres(db)
	notifRepo := postgres.NewNotificationPostgres(db)
	prefRepo := postgres.NewPreferencePostgres(db)

	docSvc := service.NewDocumentService(objStore, docRepo, userRepo)
	notifSvc := service.NewNotificationService(notifRepo)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())

	expiryMetrics, err := metrics.NewExpiryMetrics(registry)
	if err != nil {
		log.Fatalf("failed to register expiry metrics: %v", err)
	}

	scanner, err := expiry.NewScanner(docRepo, cfg.Scheduler.Offsets, loc)
	if err != nil {
		log.Fatalf("failed to build expiration scanner: %v", err)
	}
	fanout := expiry.NewFanout(notifRepo, prefRepo, mailer, objStore, nil, loc)
	expirySvc := expiry.NewService(scanner, userRepo, fanout, expiryMetrics, loc)

	scheduler, err := expiry.NewScheduler(expirySvc, nil, cfg.Scheduler)
	if err != nil {
		log.Fatalf("failed to build scheduler: %v", err)
	}
	scheduler.Start(ctx)

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
	})

	// Register global middleware
	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	// JSON Logger middleware for structured request logs
	app.Use(middleware.Logger())
	app.Use(otelfiber.Middleware())

	promMW, err := middleware.NewPrometheusMiddleware(registry)
	if err != nil {
		log.Fatalf("failed to register http metrics: %v", err)
	}
	app.Use(promMW.Handler())

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	// Register HTTP routes with injected services
	handlers.RegisterRoutes(app, db, docSvc, notifSvc, expirySvc)

	addr := ":" + cfg.Port

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			log.Printf("server shutdown: %v", err)
		}
	}()

	if err := app.Listen(addr); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}
