package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/wagnerlima/tenant-crm/internal/config"
	"github.com/wagnerlima/tenant-crm/internal/httpapi"
	"github.com/wagnerlima/tenant-crm/internal/logger"
	"github.com/wagnerlima/tenant-crm/internal/server"
	"github.com/wagnerlima/tenant-crm/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	transport := flag.String("transport", cfg.Transport, "Transport mode: stdio or http")
	port := flag.String("port", "", "HTTP port (only used with --transport http); overrides CRM_HTTP_ADDR")
	dataDir := flag.String("data-dir", cfg.DataDir, "Directory for tenant SQLite databases")
	cacheSize := flag.Int("cache-size", cfg.CacheSize, "Maximum number of open tenant databases")
	logLevel := flag.String("log-level", cfg.LogLevel, "Log level: debug, info, warn or error")
	flag.Parse()

	cfg.Transport = *transport
	cfg.DataDir = *dataDir
	cfg.CacheSize = *cacheSize
	cfg.LogLevel = *logLevel
	if *port != "" {
		cfg.HTTPAddr = ":" + *port
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat, "tenant-crm")
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Open the tenant registry
	reg, err := storage.OpenRegistry(cfg.DataDir, cfg.CacheSize, log)
	if err != nil {
		log.Fatal("failed to open tenant registry", zap.Error(err))
	}
	defer reg.Close()

	// Build the MCP server with all tools registered
	srv := server.New(reg, log)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	switch cfg.Transport {
	case "stdio":
		log.Info("tenant CRM starting", zap.String("transport", "stdio"), zap.String("data_dir", reg.DataDir()))
		if err := srv.Run(ctx, &mcp.StdioTransport{}); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("server error", zap.Error(err))
		}
	case "http":
		if err := serveHTTP(ctx, cfg, srv, reg, log); err != nil {
			log.Error("http server error", zap.Error(err))
		}
	}
	log.Info("tenant CRM stopped")
}

// serveHTTP serves the MCP endpoint at /mcp next to the REST API until ctx is
// cancelled, then shuts down gracefully.
func serveHTTP(ctx context.Context, cfg *config.Config, srv *mcp.Server, reg *storage.Registry, log *zap.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/mcp", mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return srv
	}, nil))
	httpapi.New(reg, log).Register(mux)

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpapi.Handler(mux, log, cfg.CORSAllowedOrigins),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("tenant CRM listening",
			zap.String("transport", "http"),
			zap.String("addr", cfg.HTTPAddr),
			zap.String("data_dir", reg.DataDir()),
			zap.Int("cache_size", cfg.CacheSize),
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	log.Info("shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	return httpServer.Shutdown(shutdownCtx)
}
