// Command functions serves the API as an Azure Functions custom handler.
//
// The Functions host forwards each HTTP trigger as-is (enableForwardingHttpRequest in
// host.json), so the handler serves the same /api routes as the monolith on the port
// the host hands over in FUNCTIONS_CUSTOMHANDLER_PORT. Every function directory next to
// this file declares one route.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"docviewer/internal/app"
	"docviewer/internal/config"
	"docviewer/internal/logger"
	"docviewer/internal/otel"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	logg := logger.New(os.Stdout, cfg.LogLevel, cfg.Location())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, "docviewer-functions", logg)
	if err != nil {
		log.Fatalf("failed to initialize tracing: %v", err)
	}

	a, err := app.New(ctx, cfg, logg)
	if err != nil {
		log.Fatalf("failed to initialize application: %v", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- a.Fiber.Listen(":" + cfg.FunctionsPort)
	}()
	logg.Info("custom handler listening", "port", cfg.FunctionsPort, "backend", cfg.Backend)

	select {
	case err := <-errCh:
		if err != nil {
			logg.Error("custom handler stopped", "error", err)
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.Close(shutdownCtx); err != nil {
		logg.Error("graceful shutdown failed", "error", err)
	}
	_ = shutdownTracing(shutdownCtx)
}
