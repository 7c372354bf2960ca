// ABOUTME: Entry point for the engine-router gateway server.
// ABOUTME: Loads config, wires the store and bus, and runs the gateway until signaled.

package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"

	"github.com/gigamono-old/engine-router/internal/bus"
	"github.com/gigamono-old/engine-router/internal/config"
	"github.com/gigamono-old/engine-router/internal/gateway"
	"github.com/gigamono-old/engine-router/internal/store"
)

// Version is set by goreleaser at build time.
var version = "dev"

const banner = `
                  _                                 _
   ___ _ __   __ _(_)_ __   ___       _ __ ___  _   _| |_ ___ _ __
  / _ \ '_ \ / _' | | '_ \ / _ \_____| '__/ _ \| | | | __/ _ \ '__|
 |  __/ | | | (_| | | | | |  __/_____| | | (_) | |_| | ||  __/ |
  \___|_| |_|\__, |_|_| |_|\___|     |_|  \___/ \__,_|\__\___|_|
             |___/
`

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "engine-router: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "engine-router.yaml", "path to the configuration file")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Print banner
	cyan := color.New(color.FgCyan)
	cyan.Print(banner)

	gray := color.New(color.FgHiBlack)
	gray.Printf("    version: %s\n\n", version)

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := setupLogger(cfg.Logging)

	// Startup info
	green := color.New(color.FgGreen)
	green.Print("    ▶ ")
	fmt.Printf("Config:   %s\n", *configPath)
	green.Print("    ▶ ")
	fmt.Printf("HTTP:     %s\n", cfg.Server.HTTPAddr)
	green.Print("    ▶ ")
	fmt.Printf("Bus:      %s\n", cfg.NATS.URL)
	if cfg.Metrics.Enabled {
		green.Print("    ▶ ")
		fmt.Printf("Metrics:  %s\n", cfg.Metrics.Addr)
	}
	fmt.Println()

	logger.Info("starting engine-router",
		"config", *configPath,
		"http_addr", cfg.Server.HTTPAddr,
		"nats_url", cfg.NATS.URL,
	)

	st, err := store.NewSQLiteStore(cfg.Database.Path, logger)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer func() { _ = st.Close() }()

	conn, err := bus.Connect(cfg.NATS.URL, cfg.NATS.RequestTimeout, logger)
	if err != nil {
		return fmt.Errorf("connecting to bus: %w", err)
	}
	defer conn.Close()

	gw := gateway.New(cfg, st, conn, logger)
	return gw.Run(ctx)
}

func setupLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
