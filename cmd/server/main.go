package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/paularinzee/URL-Shortner/internal/config"
	"github.com/paularinzee/URL-Shortner/internal/handler"
	"github.com/paularinzee/URL-Shortner/internal/logger"
	"github.com/paularinzee/URL-Shortner/internal/middleware"
	"github.com/paularinzee/URL-Shortner/internal/service"
	"github.com/paularinzee/URL-Shortner/internal/shard"
	"github.com/paularinzee/URL-Shortner/internal/store"
)

func main() {
	// ============================================================
	// LOAD CONFIGURATION
	// ============================================================
	fmt.Println("📋 Loading configuration...")
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	if cfg.IsDevelopment() {
		fmt.Printf("   Environment: %s\n", cfg.App.Environment)
		fmt.Printf("   Port: %s\n", cfg.Server.Port)
		fmt.Printf("   Shards: %s\n", strings.Join(cfg.Shards.Addrs, ", "))
		fmt.Printf("   Base URL: %s\n", cfg.App.BaseURL)
	}

	// ============================================================
	// Initialize logger
	// ============================================================
	fmt.Println("📝 Initializing logger...")
	log := logger.New(logger.Config{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		Environment: cfg.App.Environment,
	})

	log.Info("starting url-shortener",
		"level", cfg.Log.Level,
		"format", cfg.Log.Format,
		"environment", cfg.App.Environment,
		"shards", len(cfg.Shards.Addrs))

	// ============================================================
	// CONNECT SHARD POOL
	// ============================================================
	fmt.Println("🗄️  Connecting to shards...")
	pool, err := shard.NewPool(shard.Options{
		Addrs:    cfg.Shards.Addrs,
		Password: cfg.Shards.Password,
		DB:       cfg.Shards.DB,
	}, log)
	if err != nil {
		log.Error("Failed to build shard pool", "error", err.Error())
		os.Exit(1)
	}

	// Every shard must answer before we serve: a missing shard silently
	// excluded from the modulus would corrupt routing for all other keys.
	if err := pool.ConnectAll(context.Background()); err != nil {
		log.Error("Failed to connect shard pool", "error", err.Error())
		os.Exit(1)
	}
	log.Info("all shards connected", "count", pool.Count())

	// ============================================================
	// INITIALIZE LAYERS
	// ============================================================
	fmt.Println("⚙️  Initializing store and service...")
	st, err := store.New(pool, log)
	if err != nil {
		log.Error("Failed to initialize record store", "error", err.Error())
		os.Exit(1)
	}

	svc := service.NewURLService(st, pool, cfg.App.BaseURL, cfg.App.DefaultTTL, cfg.App.MaxTTL)

	fmt.Println("🌐 Setting up HTTP handlers...")
	h := handler.NewURLHandler(svc, cfg.App.BaseURL, log)
	router := h.SetupRoutes()

	// ============================================================
	// BUILD MIDDLEWARE CHAIN
	// ============================================================
	middlewares := []middleware.Middleware{
		middleware.RequestID,
		middleware.RecoveryWithLogger(log),
		middleware.LoggingWithLogger(log),
	}
	// Add rate limiter if enabled
	if cfg.RateLimit.Enabled {
		rateLimiter := middleware.NewRateLimiter(
			middleware.RateLimiterConfig{
				Rate:     cfg.RateLimit.Rate,
				Burst:    cfg.RateLimit.Burst,
				Interval: cfg.RateLimit.Interval,
				Cleanup:  cfg.RateLimit.Cleanup,
			},
			log,
		)
		middlewares = append(middlewares, rateLimiter.Middleware())
		log.Info("rate limiter enabled",
			"rate", cfg.RateLimit.Rate,
			"burst", cfg.RateLimit.Burst,
		)
	}

	wrappedRouter := middleware.Chain(router, middlewares...)

	// ============================================================
	// CREATE SERVER WITH CONFIG TIMEOUTS
	// ============================================================
	addr := ":" + cfg.Server.Port
	server := &http.Server{
		Addr:         addr,
		Handler:      wrappedRouter,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
	// Channel to listen for shutdown signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Channel to track server errors
	serverErr := make(chan error, 1)

	// Start server in a goroutine
	go func() {
		if cfg.IsDevelopment() {
			fmt.Printf("🚀 Server starting on http://localhost%s\n", addr)
			fmt.Println("───────────────────────────────────────")
			fmt.Println("Endpoints:")
			fmt.Println("  POST   /shorten      - Create short URL")
			fmt.Println("  GET    /{code}       - Redirect to original")
			fmt.Println("  GET    /{code}/stats - View statistics")
			fmt.Println("  DELETE /{code}       - Delete short URL")
			fmt.Println("  GET    /health       - Shard health")
			fmt.Println("───────────────────────────────────────")
			fmt.Println("Press Ctrl+C to shutdown gracefully")
		}
		log.Info("server starting", "addr", "http://localhost"+addr)
		serverErr <- server.ListenAndServe()
	}()

	// ============================================================
	// WAIT FOR SHUTDOWN OR ERROR
	// ============================================================
	select {
	case err := <-serverErr:
		log.Error("server error", "error", err.Error())
		os.Exit(1)

	case sig := <-shutdown:
		log.Info("shutdown signal received", "signal", sig.String())
		// Create context with timeout for shutdown
		ctx, cancel := context.WithTimeout(
			context.Background(),
			cfg.Server.ShutdownTimeout,
		)
		defer cancel()

		// Attempt graceful shutdown
		if err := server.Shutdown(ctx); err != nil {
			log.Error("graceful shutdown failed", "error", err.Error())
			// force close if graceful shutdown fails
			if err := server.Close(); err != nil {
				log.Error("forced shutdown failed", "error", err.Error())
			}
		}

		// Drain pending click writes, then close every shard. Individual
		// close failures are logged inside CloseAll without aborting it.
		st.Wait()
		if err := pool.CloseAll(); err != nil {
			log.Error("failed to close shard pool", "error", err.Error())
		}

		log.Info("server stopped")
	}
}
