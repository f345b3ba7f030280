// Command dailylogd serves the daily log API over HTTP, or its MCP tools
// over stdio.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/rpggio/dailylog/internal/config"
	"github.com/rpggio/dailylog/internal/mcp"
	"github.com/rpggio/dailylog/internal/transport"
)

const shutdownTimeout = 5 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "dailylogd: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	logger, closeLog, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := openDatabase(ctx, cfg, logger, time.Now())
	if err != nil {
		logger.Error("database unavailable", "path", cfg.DB.Path, "error", err)
		return err
	}
	defer db.Close()

	svc := newServices(db, cfg, logger)
	mcpServer := mcp.NewServer(mcp.Config{
		Services: mcp.Services{
			Logs:     svc.Logs,
			Projects: svc.Projects,
			Habits:   svc.Habits,
			Activity: svc.Activity,
		},
		Logger: logger,
	})

	if cfg.Transport.Mode == "stdio" {
		return serveStdio(ctx, logger, mcpServer)
	}
	return serveHTTP(ctx, logger, svc, mcpServer, cfg.Server.Addr())
}

func serveStdio(ctx context.Context, logger *slog.Logger, mcpServer *sdkmcp.Server) error {
	logger.Info("starting stdio transport")
	// Run returns when stdin closes or ctx is canceled.
	if err := mcpServer.Run(ctx, &sdkmcp.StdioTransport{}); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("stdio server error", "error", err)
		return err
	}
	logger.Info("stdio transport closed")
	return nil
}

func serveHTTP(ctx context.Context, logger *slog.Logger, svc transport.Services, mcpServer *sdkmcp.Server, addr string) error {
	mcpHandler := sdkmcp.NewStreamableHTTPHandler(
		func(*http.Request) *sdkmcp.Server { return mcpServer },
		&sdkmcp.StreamableHTTPOptions{SessionTimeout: 30 * time.Minute},
	)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           transport.NewServer(svc, logger, mcpHandler),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		logger.Error("server error", "error", err)
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
		return err
	}
	return nil
}
