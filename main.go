package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"evote-be/internal/config"
	"evote-be/internal/container"
	"evote-be/internal/handler"
	"evote-be/internal/middleware"
	"evote-be/internal/repository"
	"evote-be/internal/service"
	"evote-be/pkg/database"
	"evote-be/pkg/logger"
	"evote-be/pkg/redis"
)

// Resources holds all resources that need cleanup
type Resources struct {
	db          *database.PostgresDB
	redisClient *redis.Client
	reconciler  *service.Reconciler
	server      *http.Server
	log         *logger.Logger
	mu          sync.Mutex
	closed      bool
}

// Cleanup gracefully closes all resources
func (r *Resources) Cleanup(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	r.closed = true

	var errs []error

	r.log.Info("Starting graceful shutdown...")

	// Shutdown HTTP server first to stop accepting new requests
	if r.server != nil {
		r.log.Info("Shutting down HTTP server...")
		if err := r.server.Shutdown(ctx); err != nil {
			r.log.WithError(err).Error("Failed to shutdown HTTP server")
			errs = append(errs, fmt.Errorf("HTTP server shutdown: %w", err))
		}
	}

	// Stop the status reconciler before closing its storage
	if r.reconciler != nil {
		r.log.Info("Stopping status reconciler...")
		if err := r.reconciler.Stop(ctx); err != nil {
			r.log.WithError(err).Error("Failed to stop reconciler")
			errs = append(errs, fmt.Errorf("reconciler shutdown: %w", err))
		}
	}

	if r.redisClient != nil {
		r.log.Info("Closing Redis connection...")
		if err := r.redisClient.Close(); err != nil {
			r.log.WithError(err).Error("Failed to close Redis connection")
			errs = append(errs, fmt.Errorf("Redis close: %w", err))
		}
	}

	if r.db != nil {
		r.log.Info("Closing database connection pool...")
		r.db.Close()
	}

	if len(errs) > 0 {
		return fmt.Errorf("cleanup completed with %d errors: %v", len(errs), errs)
	}

	r.log.Info("Graceful shutdown completed successfully")
	return nil
}

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.New(cfg.LogLevel, cfg.Environment)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	log.WithFields(map[string]interface{}{
		"port":        cfg.Port,
		"log_level":   cfg.LogLevel,
		"environment": cfg.Environment,
	}).Info("Starting evote-be server")

	// Create dependency injection container
	ctn, err := container.New(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to create container")
	}

	ctx := context.Background()

	// Initialize storage. Without a DATABASE_URL the server runs on the
	// ephemeral in-memory store, which is only suitable for development.
	var (
		db            *database.PostgresDB
		electionRepo  repository.ElectionRepository
		voterRepo     repository.VoterRepository
		settingsRepo  repository.SettingsRepository
	)
	if cfg.DatabaseURL != "" {
		db, err = database.NewPostgresDB(ctx, cfg.DatabaseURL)
		if err != nil {
			log.WithError(err).Fatal("Failed to connect to database")
		}
		electionRepo = repository.NewPostgresElectionRepository(db)
		voterRepo = repository.NewPostgresVoterRepository(db)
		settingsRepo = repository.NewPostgresSettingsRepository(db)
	} else {
		if !cfg.IsDevelopment() {
			log.Fatal("DATABASE_URL is required outside development")
		}
		log.Warn("DATABASE_URL not set, using ephemeral in-memory storage")
		electionRepo = repository.NewMemoryElectionRepository()
		voterRepo = repository.NewMemoryVoterRepository()
		settingsRepo = repository.NewMemorySettingsRepository()
	}

	redisClient := ctn.GetRedisClient()

	// Initialize services
	settingsService := service.NewSettingsService(settingsRepo, log)
	if err := settingsService.Load(ctx); err != nil {
		log.WithError(err).Fatal("Failed to load settings")
	}

	electionService := service.NewElectionService(electionRepo, settingsService, redisClient, log, cfg.CandidateRemovalPolicy)
	ballotService := service.NewBallotService(electionRepo, voterRepo, redisClient, log)
	resultsService := service.NewResultsService(electionRepo, voterRepo, redisClient, log)

	// Start the periodic status reconciler
	reconciler := service.NewReconciler(electionRepo, log, cfg.ReconcileInterval)
	if err := reconciler.Start(ctx); err != nil {
		log.WithError(err).Fatal("Failed to start reconciler")
	}

	// Setup router
	router := setupRouter(ctn, electionService, ballotService, resultsService, settingsService)

	// Create HTTP server
	server := &http.Server{
		Addr:           ":" + cfg.Port,
		Handler:        router,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   60 * time.Second,
		IdleTimeout:    120 * time.Second,
		MaxHeaderBytes: 1 << 20, // 1MB max header size
	}

	// Create resources manager for cleanup
	resources := &Resources{
		db:          db,
		redisClient: redisClient,
		reconciler:  reconciler,
		server:      server,
		log:         log,
	}

	// Setup graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)

	defer func() {
		cleanupCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := resources.Cleanup(cleanupCtx); err != nil {
			log.WithError(err).Error("Cleanup completed with errors")
		}
	}()

	// Start server in a goroutine
	serverErrChan := make(chan error, 1)
	go func() {
		log.Info("Server starting on port " + cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("Server error occurred")
			serverErrChan <- err
		}
	}()

	// Wait for interrupt signal or server error
	select {
	case sig := <-quit:
		log.WithField("signal", sig.String()).Info("Received shutdown signal")
	case err := <-serverErrChan:
		log.WithError(err).Error("Server failed, initiating shutdown")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 25*time.Second)
	defer cancel()

	if err := resources.Cleanup(shutdownCtx); err != nil {
		log.WithError(err).Error("Graceful shutdown completed with errors")
		os.Exit(1)
	}

	log.Info("Application shutdown complete")
}

// setupRouter configures and returns the HTTP router
func setupRouter(
	ctn *container.Container,
	electionService *service.ElectionService,
	ballotService *service.BallotService,
	resultsService *service.ResultsService,
	settingsService *service.SettingsService,
) *chi.Mux {
	cfg := ctn.GetConfig()
	log := ctn.GetLogger()

	r := chi.NewRouter()

	// Setup CORS middleware
	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowedOrigins = cfg.AllowedOrigins

	// Setup middlewares
	r.Use(middleware.CORS(corsConfig, log))
	r.Use(middleware.RequestID(log))
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Compress(5))
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	// Create handlers
	dev := cfg.IsDevelopment()
	healthHandler := handler.NewHealthHandler(ctn)
	electionHandler := handler.NewElectionHandler(electionService, log, dev)
	ballotHandler := handler.NewBallotHandler(ballotService, resultsService, log, dev)
	settingsHandler := handler.NewSettingsHandler(settingsService, log, dev)

	auth := middleware.Auth(cfg.JWTSecret, log)
	adminOnly := middleware.RequireRole(log, "admin", "sysadmin")

	// Health check (no auth required)
	r.Get("/health", healthHandler.Check)

	r.Route("/api", func(r chi.Router) {
		// Public reads
		r.Get("/elections", electionHandler.List)
		r.Get("/elections/{id}", electionHandler.Get)
		r.Get("/voters/election/{electionId}/results", ballotHandler.GetResults)

		// Authenticated voting
		r.Group(func(r chi.Router) {
			r.Use(auth)
			r.Post("/voters/election/{electionId}", ballotHandler.CastVote)
		})

		// Admin election management
		r.Group(func(r chi.Router) {
			r.Use(auth, adminOnly)

			r.Post("/elections", electionHandler.Create)
			r.Patch("/elections/{id}", electionHandler.Update)
			r.Delete("/elections/{id}", electionHandler.Delete)

			r.Post("/elections/{id}/candidates", electionHandler.AddCandidate)
			r.Patch("/elections/{id}/candidates/{candidateId}", electionHandler.UpdateCandidate)
			r.Delete("/elections/{id}/candidates/{candidateId}", electionHandler.RemoveCandidate)

			r.Get("/settings", settingsHandler.Get)
			r.Patch("/settings", settingsHandler.Update)
		})
	})

	// 404 handler
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"success":false,"type":"not_found","message":"Endpoint not found"}`))
	})

	log.Info("Router configured successfully")
	return r
}
