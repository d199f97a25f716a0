// Package mcpserver exposes the tool dispatcher over the Model Context Protocol.
//
// Only registered tools reach the dispatcher: mcp-go answers tools/call for an
// unregistered name with a JSON-RPC "tool not found" error rather than an
// "Error: Unknown tool" text result.
package mcpserver

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"kite-mcp/internal/logger"
	"kite-mcp/internal/tools"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const shutdownTimeout = 10 * time.Second

// Config names the server and secures the optional HTTP transport
type Config struct {
	Name    string
	Version string
	// HTTPToken, when set, is required as a bearer token on /mcp
	HTTPToken string
}

// Server owns the MCP server and the dispatcher behind every tool
type Server struct {
	cfg        Config
	mcp        *server.MCPServer
	dispatcher *tools.Dispatcher
}

// New registers every tool descriptor against the dispatcher
func New(cfg Config, dispatcher *tools.Dispatcher) *Server {
	s := &Server{
		cfg:        cfg,
		dispatcher: dispatcher,
		mcp: server.NewMCPServer(
			cfg.Name,
			cfg.Version,
			server.WithToolCapabilities(true),
		),
	}

	for _, tool := range tools.Tools() {
		s.mcp.AddTool(tool, s.handle)
	}

	return s
}

// handle is the single protocol boundary: the dispatcher never fails the call
func (s *Server) handle(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.dispatcher.Invoke(ctx, request.Params.Name, request.GetArguments()), nil
}

// ServeStdio serves newline-delimited JSON-RPC on in/out until ctx is done or
// in closes. Cancellation of ctx is a normal shutdown and returns nil.
func (s *Server) ServeStdio(ctx context.Context, in io.Reader, out io.Writer) error {
	stdio := server.NewStdioServer(s.mcp)
	stdio.SetErrorLogger(logger.StdLogger(slog.LevelError))

	logger.Info(ctx, "Zerodha Kite MCP Server running on stdio", "name", s.cfg.Name, "version", s.cfg.Version)
	if err := stdio.Listen(ctx, in, out); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// ServeHTTP serves the streamable HTTP transport on addr until ctx is done
func (s *Server) ServeHTTP(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          logger.StdLogger(slog.LevelError),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	logger.Info(ctx, "Zerodha Kite MCP Server listening", "addr", addr, "auth", s.cfg.HTTPToken != "")

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
