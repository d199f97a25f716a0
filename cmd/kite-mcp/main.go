package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kite-mcp/internal/logger"
	"kite-mcp/internal/trace"
)

func main() {
	if err := initializeSystem("0.1.0"); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(ctx)
	if err != nil {
		os.Exit(1)
	}

	client := initializeBroker(ctx, cfg)

	srv, err := initializeServer(ctx, cfg, client)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to build MCP server", err)
		os.Exit(1)
	}

	err = serve(ctx, cfg, srv)
	shutdownTracer()
	if err != nil {
		logger.ErrorWithErr(ctx, "Fatal error", err, "transport", cfg.Server.Transport)
		os.Exit(1)
	}

	logger.Info(context.Background(), "Shutting down...")
}

func shutdownTracer() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := trace.Shutdown(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to shut down tracer: %v\n", err)
	}
}
