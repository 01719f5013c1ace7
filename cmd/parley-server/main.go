package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/xonecas/parley/internal/config"
	"github.com/xonecas/parley/internal/logging"
	"github.com/xonecas/parley/internal/server"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	var (
		showVersion = flag.Bool("version", false, "Show version and exit")
		configPath  = flag.String("config", "config.toml", "Path to config file")
		addr        = flag.String("addr", "", "Listen address (overrides config)")
		debug       = flag.Bool("debug", false, "Enable debug logging")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("Parley server %s\n", Version)
		os.Exit(0)
	}

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *addr != "" {
		cfg.Listen.Addr = *addr
	}
	if *debug {
		cfg.Log.Level = "debug"
	}

	// Initialize logger
	logger := logging.InitStdout(cfg.Log)

	hub := server.NewHub(server.WithRosterTimeout(cfg.Listen.RosterTimeout.Duration))

	// Create router
	router := server.NewRouter(logger, hub)

	// Create server
	srv := &http.Server{
		Addr:         cfg.Listen.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info().
			Str("addr", cfg.Listen.Addr).
			Str("version", Version).
			Dur("roster_timeout", cfg.Listen.RosterTimeout.Duration).
			Msg("starting parley server")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server forced to shutdown")
	}

	logger.Info().Msg("server stopped")
}
