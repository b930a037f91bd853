package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/tokotrack/tokotrack-backend/internal/auth"
	"github.com/tokotrack/tokotrack-backend/internal/auth/jwt"
	"github.com/tokotrack/tokotrack-backend/internal/dashboard/client"
	"github.com/tokotrack/tokotrack-backend/internal/dashboard/consumers"
	"github.com/tokotrack/tokotrack-backend/internal/dashboard/handler"
	"github.com/tokotrack/tokotrack-backend/internal/dashboard/service"
	"github.com/tokotrack/tokotrack-backend/pkg/config"
	"github.com/tokotrack/tokotrack-backend/pkg/httputil"
	"github.com/tokotrack/tokotrack-backend/pkg/i18n"
	"github.com/tokotrack/tokotrack-backend/pkg/logger"
	"github.com/tokotrack/tokotrack-backend/pkg/messaging"
)

func main() {
	// Load configuration with validation (fails fast in production if required config is missing)
	cfg, err := config.LoadWithValidation("dashboard-service")
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New("dashboard-service", cfg.Server.Environment)
	log.Info().Msg("starting Dashboard Service")

	// Connect to RabbitMQ for user event invalidation
	rmq, err := messaging.New(&cfg.RabbitMQ, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to RabbitMQ")
	}
	defer rmq.Close()

	// API server client
	apiClient := client.NewAPIClient(&cfg.API, log)

	// Initialize services
	jwtManager := jwt.NewManager(&cfg.JWT)
	aggregator := service.NewAggregatorService(apiClient, cfg.Dashboard.RecentOrdersLimit, log)
	directory := service.NewDirectoryService(apiClient, cfg.Dashboard.RefreshInterval, log)

	// Background context for the refresh loop and consumer, cancelled on shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start periodic directory refresh
	directory.Start(ctx)
	defer directory.Stop()

	// Consume user events so the directory refreshes ahead of the polling interval
	userConsumer, err := consumers.NewUserEventConsumer(rmq, directory, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create user event consumer")
	}
	if err := userConsumer.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to start user event consumer")
	}

	// Initialize handler
	dashboardHandler := handler.NewDashboardHandler(aggregator, directory, apiClient, log)

	// Create router
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RealIP)
	r.Use(httputil.RequestID)
	r.Use(httputil.Logger(log))
	r.Use(httputil.Recoverer(log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000", "http://localhost:5173"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID", "Accept-Language"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// i18n middleware - extract locale from Accept-Language header
	r.Use(i18n.Middleware)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.JSON(w, http.StatusOK, map[string]interface{}{
			"status":   "healthy",
			"service":  "dashboard-service",
			"rabbitmq": rmq.Health(),
		})
	})

	r.Route("/api/v1", func(r chi.Router) {
		// Public landing statistics
		r.Get("/landing/stats", dashboardHandler.GetLandingStats)

		// Authenticated dashboard endpoints
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(jwtManager))

			r.Get("/dashboard/stats", dashboardHandler.GetStats)

			// User directory management is admin-only
			r.Route("/dashboard/users", func(r chi.Router) {
				r.Use(auth.RequireRole("admin"))
				r.Get("/", dashboardHandler.ListUsers)
				r.Post("/", dashboardHandler.CreateUser)
				r.Put("/{id}", dashboardHandler.UpdateUser)
				r.Delete("/{id}", dashboardHandler.DeleteUser)
			})
		})
	})

	// Create server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server
	go func() {
		log.Info().Str("addr", addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")
	cancel()

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
