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

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/jwalitptl/ehr-api/internal/config"
	authHandler "github.com/jwalitptl/ehr-api/internal/handler/auth"
	dashboardHandler "github.com/jwalitptl/ehr-api/internal/handler/dashboard"
	"github.com/jwalitptl/ehr-api/internal/handler/health"
	medicalHandler "github.com/jwalitptl/ehr-api/internal/handler/medical"
	patientHandler "github.com/jwalitptl/ehr-api/internal/handler/patient"
	prescriptionHandler "github.com/jwalitptl/ehr-api/internal/handler/prescription"
	promhandler "github.com/jwalitptl/ehr-api/internal/handler/prometheus"
	userHandler "github.com/jwalitptl/ehr-api/internal/handler/user"
	"github.com/jwalitptl/ehr-api/internal/middleware"
	"github.com/jwalitptl/ehr-api/internal/repository"
	"github.com/jwalitptl/ehr-api/internal/repository/postgres"
	redisrepo "github.com/jwalitptl/ehr-api/internal/repository/redis"
	"github.com/jwalitptl/ehr-api/internal/router"
	authService "github.com/jwalitptl/ehr-api/internal/service/auth"
	dashboardService "github.com/jwalitptl/ehr-api/internal/service/dashboard"
	medicalService "github.com/jwalitptl/ehr-api/internal/service/medical"
	patientService "github.com/jwalitptl/ehr-api/internal/service/patient"
	prescriptionService "github.com/jwalitptl/ehr-api/internal/service/prescription"
	userService "github.com/jwalitptl/ehr-api/internal/service/user"
	"github.com/jwalitptl/ehr-api/pkg/auth"
	"github.com/jwalitptl/ehr-api/pkg/logger"
	"github.com/jwalitptl/ehr-api/pkg/metrics"
)

func serveCmd(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configFile)
			if err != nil {
				return err
			}
			return runServer(cmd.Context(), cfg)
		},
	}
}

func runServer(ctx context.Context, cfg *config.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}

	logger.Setup(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})

	if err := middleware.RegisterValidators(); err != nil {
		return err
	}

	m := metrics.New("ehr")

	// Initialize database
	db, err := postgres.NewDB(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	// Optional token revocation store
	var revocations repository.TokenRevocationStore
	if cfg.Redis.URL != "" {
		client, err := redisrepo.NewClient(ctx, redisrepo.Config{
			URL:          cfg.Redis.URL,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
			MaxRetries:   cfg.Redis.MaxRetries,
		})
		if err != nil {
			return err
		}
		defer client.Close()
		revocations = redisrepo.NewRevocationStore(client)
	} else {
		log.Warn().Msg("redis.url not set, logout will not revoke tokens")
	}

	// Initialize repositories
	base := postgres.NewBaseRepository(db, m)
	patientRepo := postgres.NewPatientRepository(base)
	medicalRepo := postgres.NewMedicalRecordRepository(base)
	prescriptionRepo := postgres.NewPrescriptionRepository(base)
	userRepo := postgres.NewUserRepository(base)
	dashboardRepo := postgres.NewDashboardRepository(base)

	// Initialize services
	dashboardSvc := dashboardService.NewService(dashboardRepo, dashboardService.Config{CacheTTL: cfg.Dashboard.CacheTTL}, m)
	patientSvc := patientService.NewService(patientRepo, medicalRepo).WithInvalidator(dashboardSvc)
	medicalSvc := medicalService.NewService(medicalRepo).WithInvalidator(dashboardSvc)
	prescriptionSvc := prescriptionService.NewService(prescriptionRepo, userRepo).WithInvalidator(dashboardSvc)
	userSvc := userService.NewService(userRepo)
	authSvc := authService.NewService(
		auth.NewTokenValidator(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.Leeway),
		revocations,
	)

	// Setup router
	r := router.NewRouter(
		router.RouterConfig{
			Mode:             cfg.Server.Mode,
			RateLimitEnabled: cfg.RateLimit.Enabled,
			RateLimit: middleware.RateLimiterConfig{
				RPS:   cfg.RateLimit.RequestsPerSecond,
				Burst: cfg.RateLimit.Burst,
			},
			AllowedOrigins: cfg.CORS.AllowedOrigins,
			RequestTimeout: cfg.Server.RequestTimeout,
		},
		middleware.NewAuthMiddleware(authSvc),
		health.NewHandler(db),
		promhandler.New(m),
		patientHandler.NewHandler(patientSvc),
		medicalHandler.NewHandler(medicalSvc),
		prescriptionHandler.NewHandler(prescriptionSvc, prescriptionHandler.Config{StrictBooleans: cfg.Filters.StrictBooleans}),
		dashboardHandler.NewHandler(dashboardSvc),
		userHandler.NewHandler(userSvc),
		authHandler.NewHandler(authSvc, userSvc),
	)
	r.Setup()

	// Create server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server
	serverErr := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-serverErr:
		return fmt.Errorf("failed to start server: %w", err)
	case <-quit:
	case <-ctx.Done():
	}
	log.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout(cfg))
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info().Msg("server exited properly")
	return nil
}

func shutdownTimeout(cfg *config.Config) time.Duration {
	if cfg.Server.ShutdownTimeout > 0 {
		return cfg.Server.ShutdownTimeout
	}
	return 5 * time.Second
}
