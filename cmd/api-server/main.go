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
	authhandler "github.com/tokotrack/tokotrack-backend/internal/auth/handler"
	"github.com/tokotrack/tokotrack-backend/internal/auth/jwt"
	authservice "github.com/tokotrack/tokotrack-backend/internal/auth/service"
	cataloghandler "github.com/tokotrack/tokotrack-backend/internal/catalog/handler"
	catalogrepo "github.com/tokotrack/tokotrack-backend/internal/catalog/repository"
	catalogservice "github.com/tokotrack/tokotrack-backend/internal/catalog/service"
	landinghandler "github.com/tokotrack/tokotrack-backend/internal/landing/handler"
	landingservice "github.com/tokotrack/tokotrack-backend/internal/landing/service"
	orderhandler "github.com/tokotrack/tokotrack-backend/internal/order/handler"
	orderrepo "github.com/tokotrack/tokotrack-backend/internal/order/repository"
	orderservice "github.com/tokotrack/tokotrack-backend/internal/order/service"
	userhandler "github.com/tokotrack/tokotrack-backend/internal/user/handler"
	userrepo "github.com/tokotrack/tokotrack-backend/internal/user/repository"
	userservice "github.com/tokotrack/tokotrack-backend/internal/user/service"
	"github.com/tokotrack/tokotrack-backend/pkg/config"
	"github.com/tokotrack/tokotrack-backend/pkg/database"
	"github.com/tokotrack/tokotrack-backend/pkg/httputil"
	"github.com/tokotrack/tokotrack-backend/pkg/i18n"
	"github.com/tokotrack/tokotrack-backend/pkg/logger"
	"github.com/tokotrack/tokotrack-backend/pkg/messaging"

	catalogevents "github.com/tokotrack/tokotrack-backend/internal/catalog/events"
	orderevents "github.com/tokotrack/tokotrack-backend/internal/order/events"
	userevents "github.com/tokotrack/tokotrack-backend/internal/user/events"
)

func main() {
	// Load configuration with validation (fails fast in production if required config is missing)
	cfg, err := config.LoadWithValidation("api-server")
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New("api-server", cfg.Server.Environment)
	log.Info().Msg("starting API Server")

	// Connect to database
	db, err := database.New(&cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	// Connect to RabbitMQ
	rmq, err := messaging.New(&cfg.RabbitMQ, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to RabbitMQ")
	}
	defer rmq.Close()

	// Initialize event publishers
	userPublisher, err := userevents.NewUserEventPublisher(rmq, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create user event publisher")
	}
	catalogPublisher, err := catalogevents.NewCatalogEventPublisher(rmq, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create catalog event publisher")
	}
	orderPublisher, err := orderevents.NewOrderEventPublisher(rmq, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create order event publisher")
	}

	// Initialize repositories
	userRepo := userrepo.NewUserRepository(db)
	productRepo := catalogrepo.NewProductRepository(db)
	supplierRepo := catalogrepo.NewSupplierRepository(db)
	ordersRepo := orderrepo.NewOrderRepository(db)

	// Initialize services
	jwtManager := jwt.NewManager(&cfg.JWT)
	authService := authservice.NewAuthService(userRepo, jwtManager, log)
	userService := userservice.NewUserService(userRepo, userPublisher, log)
	catalogService := catalogservice.NewCatalogService(productRepo, supplierRepo, catalogPublisher, log)
	orderService := orderservice.NewOrderService(ordersRepo, orderPublisher, log)
	statsService := landingservice.NewStatsService(productRepo, ordersRepo, userRepo, log)

	// Initialize handlers
	authHandler := authhandler.NewAuthHandler(authService, log)
	userHandler := userhandler.NewUserHandler(userService, log)
	productHandler := cataloghandler.NewProductHandler(catalogService, log)
	supplierHandler := cataloghandler.NewSupplierHandler(catalogService, log)
	orderHandler := orderhandler.NewOrderHandler(orderService, log)
	statsHandler := landinghandler.NewStatsHandler(statsService, log)

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
			"service":  "api-server",
			"database": db.Health(r.Context()),
			"rabbitmq": rmq.Health(),
		})
	})

	// Public endpoints
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/refresh", authHandler.Refresh)
		r.Get("/landing/stats", statsHandler.Get)

		// Authenticated endpoints
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(jwtManager))

			r.Get("/auth/me", authHandler.Me)

			r.Route("/products", func(r chi.Router) {
				r.Get("/", productHandler.List)
				r.Post("/", productHandler.Create)
				r.Get("/{id}", productHandler.Get)
				r.Put("/{id}", productHandler.Update)
				r.Post("/{id}/adjust", productHandler.AdjustStock)
				r.Delete("/{id}", productHandler.Delete)
			})

			r.Route("/suppliers", func(r chi.Router) {
				r.Get("/", supplierHandler.List)
				r.Post("/", supplierHandler.Create)
				r.Get("/{id}", supplierHandler.Get)
				r.Put("/{id}", supplierHandler.Update)
				r.Delete("/{id}", supplierHandler.Delete)
			})

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", orderHandler.List)
				r.Post("/", orderHandler.Create)
				r.Get("/recent", orderHandler.Recent)
				r.Get("/{id}", orderHandler.Get)
				r.Patch("/{id}/status", orderHandler.UpdateStatus)
				r.Delete("/{id}", orderHandler.Delete)
			})

			// User management is admin-only
			r.Route("/users", func(r chi.Router) {
				r.Use(auth.RequireRole("admin"))
				r.Get("/", userHandler.List)
				r.Post("/", userHandler.Create)
				r.Get("/{id}", userHandler.Get)
				r.Put("/{id}", userHandler.Update)
				r.Delete("/{id}", userHandler.Delete)
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

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
