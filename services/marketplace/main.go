package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/soberstay/marketplace/pkg/cache"
	"github.com/soberstay/marketplace/pkg/config"
	"github.com/soberstay/marketplace/pkg/database"
	"github.com/soberstay/marketplace/pkg/events"
	"github.com/soberstay/marketplace/pkg/logger"
	mw "github.com/soberstay/marketplace/pkg/middleware"
	"github.com/soberstay/marketplace/services/marketplace/internal/handlers"
	"github.com/soberstay/marketplace/services/marketplace/internal/mailer"
	"github.com/soberstay/marketplace/services/marketplace/internal/notify"
	"github.com/soberstay/marketplace/services/marketplace/internal/repository"
	"github.com/soberstay/marketplace/services/marketplace/internal/scheduler"
	"github.com/soberstay/marketplace/services/marketplace/internal/service"
	"github.com/soberstay/marketplace/services/marketplace/migrations"
)

func main() {
	cfg := config.Load()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to database
	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(ctx, pool, migrations.FS); err != nil {
			logger.Error("Failed to run migrations", "error", err)
			os.Exit(1)
		}
	}

	// Connect to redis
	rdb, err := cache.NewRedisClient(ctx, cfg.Redis.URL)
	if err != nil {
		logger.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	defer rdb.Close()
	store := cache.NewStore(rdb, "soberstay")

	// Connect to event bus
	eventBus, err := events.NewNATSEventBus(cfg.NATS.URL)
	if err != nil {
		logger.Error("Failed to connect to NATS", "error", err)
		os.Exit(1)
	}
	defer eventBus.Close()

	// Initialize repositories
	userRepo := repository.NewUserRepository(pool)
	listingRepo := repository.NewListingRepository(pool)
	featuredRepo := repository.NewFeaturedRepository(pool)
	tenantRepo := repository.NewTenantRepository(pool)

	// Initialize services
	authService := service.NewAuthService(userRepo, cfg)
	listingService := service.NewListingService(listingRepo, featuredRepo, store, eventBus, cfg)
	tenantService := service.NewTenantService(tenantRepo, eventBus)
	mail := mailer.New(cfg.Email)
	adminService := service.NewAdminService(listingRepo, featuredRepo, userRepo, store, mail, eventBus, cfg)

	if cfg.Email.AdminInbox != "" {
		if err := notify.NewWorker(eventBus, mail, cfg.Email.AdminInbox).Start(); err != nil {
			logger.Error("Failed to start notify worker", "error", err)
			os.Exit(1)
		}
	}

	h := handlers.New(authService, listingService, tenantService, adminService, cfg)

	// Setup router
	r := chi.NewRouter()

	r.Use(mw.RequestID)
	r.Use(mw.ServiceName("marketplace"))
	r.Use(mw.Logging)
	r.Use(mw.Recover)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key"},
		ExposedHeaders:   []string{"X-Request-ID", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(mw.Health)
	r.Use(mw.Metrics)
	r.Use(mw.Idempotency(store, cfg.Cache.IdempotencyTTL))

	h.Mount(r, mw.RateLimit(store, mw.RateLimitConfig{Requests: 10, Window: time.Minute}))

	// Featured expiry
	if cfg.Scheduler.Enabled {
		sched := scheduler.New(adminService, cfg.Scheduler.FeaturedExpirySpec)
		if err := sched.Start(ctx); err != nil {
			logger.Error("Failed to start scheduler", "error", err)
			os.Exit(1)
		}
		defer sched.Stop()
		sched.RunOnce(ctx)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Graceful shutdown
	go func() {
		<-ctx.Done()
		logger.Info("Shutting down marketplace service...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Marketplace service shutdown error", "error", err)
		}
	}()

	logger.Info("Starting marketplace service", "port", cfg.Server.Port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Marketplace service error", "error", err)
		os.Exit(1)
	}
}
