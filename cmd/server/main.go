package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cypheruni/learn/internal/config"
	"github.com/cypheruni/learn/internal/database"
	"github.com/cypheruni/learn/internal/handlers"
	"github.com/cypheruni/learn/internal/middleware"
	"github.com/cypheruni/learn/internal/store"
)

func main() {
	// Check for migrate command
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		runMigrations()
		return
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger := log.New(os.Stdout, "[learn] ", log.LstdFlags|log.Lshortfile)
	logger.Printf("Starting catalog server in %s mode (%s backend)", cfg.Server.Env, cfg.Store.Backend)

	// Initialize the catalog store
	opts := store.Options{StrictFeedback: cfg.Store.StrictFeedback}
	var (
		st store.Store
		db *database.DB
	)
	switch cfg.Store.Backend {
	case config.BackendMemory:
		st = store.NewMemoryStore(opts)
	case config.BackendBolt:
		boltStore, err := store.NewBoltStore(cfg.Store.BoltPath, opts)
		if err != nil {
			logger.Fatalf("Failed to open bolt database: %v", err)
		}
		st = boltStore
	case config.BackendPostgres:
		db, err = database.New(database.Config{URL: cfg.Database.URL})
		if err != nil {
			logger.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()
		st = store.NewPostgresStore(db.Pool, opts)
	}
	defer st.Close()

	if cfg.Store.SeedSampleData {
		if err := store.Seed(context.Background(), st); err != nil {
			logger.Fatalf("Failed to seed catalog: %v", err)
		}
	}

	// Redis backs sessions and rate limiting. Sign-in is only wired when
	// OAuth credentials are configured, so a bare catalog deployment can
	// run without Redis at all.
	var redisClient *database.RedisClient
	authEnabled := cfg.OAuth.GoogleClientID != ""
	if authEnabled || cfg.IsProduction() {
		redisClient, err = database.NewRedisClient(database.RedisConfig{
			Addr:     cfg.RedisAddr(),
			Password: cfg.Redis.Password,
			DB:       0,
		})
		if err != nil {
			logger.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisClient.Close()
	}

	mux := http.NewServeMux()

	// Catalog API routes, rate limited when Redis is available
	var wrap func(http.Handler) http.Handler
	if redisClient != nil {
		// 100 req/min in production, effectively unlimited elsewhere
		maxRequests := 1000
		if cfg.IsProduction() {
			maxRequests = 100
		}
		rateLimiter := middleware.NewRateLimiter(redisClient.Client, maxRequests, time.Minute, cfg.IsProduction())
		wrap = rateLimiter.Limit
	}
	handlers.RegisterCatalog(mux, st, logger, wrap)

	// Auth routes (admin panel sign-in)
	if authEnabled {
		sessionStore := database.NewSessionStore(redisClient, 7*24*time.Hour)
		authHandler := handlers.NewAuthHandler(sessionStore, handlers.AuthConfig{
			GoogleClientID:     cfg.OAuth.GoogleClientID,
			GoogleClientSecret: cfg.OAuth.GoogleClientSecret,
			CallbackHost:       cfg.OAuth.CallbackHost,
			AdminEmailDomain:   cfg.Admin.EmailDomain,
			SecureCookies:      cfg.IsProduction(),
		}, logger)

		mux.HandleFunc("GET /auth/google/login", authHandler.GoogleLogin)
		mux.HandleFunc("GET /auth/google/callback", authHandler.GoogleCallback)
		mux.HandleFunc("POST /auth/logout", authHandler.Logout)

		authMiddleware := middleware.NewAuthMiddleware(sessionStore)
		mux.Handle("GET /api/me", authMiddleware.WithUser(http.HandlerFunc(authHandler.Me)))
	}

	// Health check endpoint
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		dbStatus := "disabled"
		if db != nil {
			dbStatus = "up"
			if err := db.Health(r.Context()); err != nil {
				dbStatus = "down"
			}
		}
		redisStatus := "disabled"
		if redisClient != nil {
			redisStatus = "up"
			if err := redisClient.Health(r.Context()); err != nil {
				redisStatus = "down"
			}
		}

		if dbStatus == "down" || redisStatus == "down" {
			w.WriteHeader(http.StatusServiceUnavailable)
			fmt.Fprintf(w, `{"status":"unhealthy","database":"%s","redis":"%s"}`, dbStatus, redisStatus)
			return
		}
		fmt.Fprintf(w, `{"status":"ok","database":"%s","redis":"%s"}`, dbStatus, redisStatus)
	})

	// Wrap with logging middleware
	handler := middleware.Logger(logger)(mux)

	// Create HTTP server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Printf("Server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Println("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatalf("Server forced to shutdown: %v", err)
	}

	logger.Println("Server exited")
}

// runMigrations runs database migrations for the postgres backend
func runMigrations() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.Database.URL == "" {
		log.Fatal("DATABASE_URL is required to run migrations")
	}

	db, err := database.New(database.Config{URL: cfg.Database.URL})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	logger := log.New(os.Stdout, "[learn] ", log.LstdFlags)
	migrator := database.NewMigrator(db.Pool, logger)

	ctx := context.Background()
	if err := migrator.Up(ctx); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Migrations completed successfully")
}
