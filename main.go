// Check Digit MCP Server - A Model Context Protocol server for check digits
// Computes, validates and explains modulo 10 and modulo 11 check digits for
// generic numbers and national identifiers (CPF, CNPJ, Nordic org numbers).
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/olgasafonova/checkdigit-mcp-server/internal/config"
	"github.com/olgasafonova/checkdigit-mcp-server/internal/service"
	"github.com/olgasafonova/checkdigit-mcp-server/tools"
	"github.com/olgasafonova/checkdigit-mcp-server/tracing"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// recoverPanic logs a panic instead of crashing the process
func recoverPanic(logger *slog.Logger, operation string) {
	if r := recover(); r != nil {
		logger.Error("Panic recovered",
			"operation", operation,
			"panic", r,
			"stack", string(debug.Stack()))
	}
}

const (
	ServerName    = "checkdigit-mcp-server"
	ServerVersion = "1.0.0"
)

const instructions = `Check Digit MCP Server computes and validates check digits.

Available tools:
- checkdigit_compute: Check digit(s) for a base number
- checkdigit_complete: Base plus check digits, formatted for display
- checkdigit_explain: Per-digit weights and products behind a check digit
- checkdigit_validate: Verify a full identifier
- checkdigit_validate_batch: Verify many identifiers of one scheme
- checkdigit_detect: Guess the scheme of an identifier
- checkdigit_list_schemes: Supported schemes

Schemes: mod10, mod11, mod11-barcode, cpf, cnpj, no-orgnr, dk-cvr, fi-ytunnus, se-orgnr.
Separators (spaces, dots, hyphens, slashes) in inputs are ignored.`

func main() {
	httpAddr := flag.String("http", "", "Serve streamable HTTP on this address instead of stdio (e.g. :8080)")
	flag.Parse()

	cfg := config.Load()
	if *httpAddr != "" {
		cfg.HTTPAddr = *httpAddr
	}

	// Logs go to stderr; stdout carries the MCP protocol
	logger := newLogger(cfg)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Setup(ctx, tracing.FromConfig(cfg, ServerVersion))
	if err != nil {
		log.Fatalf("Failed to set up tracing: %v", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			logger.Warn("Tracing shutdown failed", "error", err)
		}
	}()

	svc := service.New(service.OptionsFromConfig(cfg), logger)
	defer svc.Close()

	server := mcp.NewServer(&mcp.Implementation{
		Name:    ServerName,
		Version: ServerVersion,
	}, &mcp.ServerOptions{
		Logger:       logger,
		Instructions: instructions,
	})
	tools.NewHandlerRegistry(svc, logger).RegisterAll(server)

	if cfg.HTTPAddr != "" {
		err = runHTTP(ctx, server, cfg, logger)
	} else {
		logger.Info("Starting Check Digit MCP Server",
			"name", ServerName,
			"version", ServerVersion,
			"transport", "stdio",
		)
		err = runStdio(ctx, server, logger)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}
}

// newLogger builds the slog logger described by cfg.
func newLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

func parseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func runStdio(ctx context.Context, server *mcp.Server, logger *slog.Logger) error {
	defer recoverPanic(logger, "stdio transport")
	return server.Run(ctx, &mcp.StdioTransport{})
}

// newHTTPHandler mounts the MCP endpoint behind the security middleware,
// next to health and metrics endpoints.
func newHTTPHandler(server *mcp.Server, cfg *config.Config, logger *slog.Logger) (http.Handler, func()) {
	mcpHandler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return server
	}, nil)
	secured := NewSecurityMiddleware(mcpHandler, logger, SecurityConfig{
		RateLimit:   cfg.RateLimit,
		MaxBodySize: cfg.MaxBodySize,
	})

	mux := http.NewServeMux()
	mux.Handle("/mcp", secured)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"status":"ok","name":%q,"version":%q}`, ServerName, ServerVersion)
	})
	return mux, secured.Close
}

func runHTTP(ctx context.Context, server *mcp.Server, cfg *config.Config, logger *slog.Logger) error {
	handler, closeHandler := newHTTPHandler(server, cfg, logger)
	defer closeHandler()

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		defer recoverPanic(logger, "http transport")
		logger.Info("Starting Check Digit MCP Server",
			"name", ServerName,
			"version", ServerVersion,
			"transport", "http",
			"addr", cfg.HTTPAddr,
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	logger.Info("Shutting down HTTP server")
	return srv.Shutdown(sctx)
}
