// @title Restau Back Office API
// @version 1.0
// @description Daily restaurant report ingestion and KPI comparison.
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the access token.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	_ "restau/docs"
	rediscache "restau/internal/cache/redis"
	"restau/internal/config"
	"restau/internal/handler"
	"restau/internal/logging"
	"restau/internal/port"
	"restau/internal/repository/postgres"
	"restau/internal/router"
	"restau/internal/service"
	"restau/internal/storage/noop"
	s3storage "restau/internal/storage/s3"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := run(); err != nil {
		logrus.WithError(err).Fatal("server exited")
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := logging.New(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() { _ = db.Close() }()

	if cfg.Server.IsDevelopment() {
		if err := postgres.MigrateUp(postgres.DefaultMigrationsPath, cfg.DB.DSN()); err != nil {
			return fmt.Errorf("failed to apply migrations: %w", err)
		}
	}

	// Initialize repositories
	userRepo := postgres.NewUserRepo(db)
	restaurantRepo := postgres.NewRestaurantRepo(db)
	reportRepo := postgres.NewReportRepo(db)
	auditRepo := postgres.NewAuditRepo(db)

	// Initialize cache
	var redisClient *goredis.Client
	if cfg.Redis.Enabled {
		redisClient, err = rediscache.NewClient(ctx, cfg.Redis)
		if err != nil {
			return fmt.Errorf("failed to initialize redis: %w", err)
		}
		defer func() { _ = redisClient.Close() }()
	}
	monthlyCache := rediscache.NewMonthlyCache(redisClient, cfg.Redis.TTL, log)

	// Initialize storage
	var storage port.ObjectStorage = noop.NewStorage()
	if cfg.S3.Enabled {
		storage, err = s3storage.NewS3Client(ctx, &cfg.S3)
		if err != nil {
			return fmt.Errorf("failed to initialize S3 client: %w", err)
		}
	}

	// Initialize services
	auditSvc := service.NewAuditService(auditRepo, log)
	authSvc := service.NewAuthService(userRepo, auditSvc, cfg.JWT)
	restaurantSvc := service.NewRestaurantService(restaurantRepo)
	reportSvc := service.NewReportService(reportRepo, storage, monthlyCache, auditSvc, cfg.S3, log)

	if cfg.Server.IsDevelopment() {
		created, err := service.SeedDevUser(ctx, userRepo, cfg.Seed)
		if err != nil {
			logging.LogError(log, "main", "run", err, logrus.Fields{"step": "seed"})
		} else if created {
			log.WithField("email", cfg.Seed.DevEmail).Info("seeded development user")
		}
	}

	// Initialize handlers
	checks := map[string]handler.CheckFunc{"postgres": db.PingContext}
	if redisClient != nil {
		checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}

	r := router.Setup(authSvc, auditSvc, router.Handlers{
		Auth:       handler.NewAuthHandler(authSvc, auditSvc, !cfg.Server.IsDevelopment()),
		Report:     handler.NewReportHandler(reportSvc, cfg.Upload.MaxFileSizeMB),
		Restaurant: handler.NewRestaurantHandler(restaurantSvc),
		Audit:      handler.NewAuditHandler(auditSvc),
		Health:     handler.NewHealthHandler(checks),
	}, router.Options{
		Logger:          log,
		AllowedOrigins:  cfg.CORS.AllowedOrigins,
		IsDevelopment:   cfg.Server.IsDevelopment(),
		LoginRateLimit:  cfg.Server.LoginRateLimit,
		LoginRateWindow: cfg.Server.LoginRateWindow,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", cfg.Server.Port).Info("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}
