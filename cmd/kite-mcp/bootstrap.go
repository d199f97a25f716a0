package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"kite-mcp/internal/broker/brokerobs"
	"kite-mcp/internal/broker/zerodha"
	"kite-mcp/internal/logger"
	"kite-mcp/internal/mcpserver"
	"kite-mcp/internal/store"
	"kite-mcp/internal/tools"
	"kite-mcp/internal/trace"

	"github.com/joho/godotenv"
)

// initializeSystem loads .env, then the logger and tracer
func initializeSystem(version string) error {
	_ = godotenv.Load()

	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if err := trace.Init(version); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize tracer: %v\n", err)
	}

	return nil
}

// loadConfig loads the optional yaml config named by KITE_MCP_CONFIG
func loadConfig(ctx context.Context) (*store.Config, error) {
	path := os.Getenv("KITE_MCP_CONFIG")
	if path == "" {
		path = "config.yaml"
	}

	cfg, err := store.LoadConfig(path)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to load config", err, "path", path)
		return nil, err
	}

	logger.Debug(ctx, "Config loaded",
		"path", path,
		"transport", cfg.Server.Transport,
		"timeout", cfg.Timeout(),
		"requests_per_second", cfg.Kite.RequestsPerSecond,
	)
	return cfg, nil
}

// initializeBroker builds the Kite client with observability. A missing API
// key is logged and yields a nil client so discovery keeps working.
func initializeBroker(ctx context.Context, cfg *store.Config) zerodha.Client {
	brk, err := zerodha.NewZerodha(zerodha.Params{
		APIKey:            cfg.Kite.APIKey,
		AccessToken:       cfg.Kite.AccessToken,
		BaseURI:           cfg.Kite.BaseURI,
		Timeout:           cfg.Timeout(),
		RequestsPerSecond: cfg.Kite.RequestsPerSecond,
		Debug:             cfg.Kite.Debug,
	})
	if errors.Is(err, zerodha.ErrMissingAPIKey) {
		logger.ErrorWithErr(ctx, "Kite Connect disabled: all tool calls will fail", err)
		return nil
	}
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to initialize Kite Connect", err)
		return nil
	}

	if brk.HasAccessToken() {
		logger.Info(ctx, "Kite Connect initialized with access token")
	} else {
		logger.Warn(ctx, "No access token provided. Some operations may require authentication.")
	}

	return brokerobs.Wrap(brk)
}

// initializeServer wires the dispatcher into the MCP server
func initializeServer(ctx context.Context, cfg *store.Config, client zerodha.Client) (*mcpserver.Server, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	if cfg.Market.Timezone != "" {
		logger.Info(ctx, "Market status evaluated in configured timezone", "timezone", cfg.Market.Timezone)
	}

	dispatcher := tools.New(client, tools.WithLocation(loc))

	return mcpserver.New(mcpserver.Config{
		Name:      cfg.Server.Name,
		Version:   cfg.Server.Version,
		HTTPToken: cfg.Server.HTTPToken,
	}, dispatcher), nil
}

// serve runs the configured transport until ctx is done or the peer disconnects
func serve(ctx context.Context, cfg *store.Config, srv *mcpserver.Server) error {
	switch cfg.Server.Transport {
	case store.TransportHTTP:
		if cfg.Server.HTTPToken == "" {
			logger.Warn(ctx, "MCP_TOKEN not set; /mcp endpoint is open")
		}
		return srv.ServeHTTP(ctx, cfg.Server.HTTPAddr)
	default:
		return srv.ServeStdio(ctx, os.Stdin, os.Stdout)
	}
}
