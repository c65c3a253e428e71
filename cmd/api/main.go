package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"

	"docviewer/docs"
	"docviewer/internal/app"
	"docviewer/internal/config"
	"docviewer/internal/logger"
	"docviewer/internal/otel"
)

// @title Document Viewer API
// @version 1.0
// @BasePath /
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	logg := logger.New(os.Stdout, cfg.LogLevel, cfg.Location())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, "docviewer-api", logg)
	if err != nil {
		log.Fatalf("failed to initialize tracing: %v", err)
	}

	a, err := app.New(ctx, cfg, logg)
	if err != nil {
		log.Fatalf("failed to initialize application: %v", err)
	}

	// Swagger UI with dynamic host and scheme
	a.Fiber.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- a.Fiber.Listen(":" + cfg.Port)
	}()
	logg.Info("server listening", "port", cfg.Port, "backend", cfg.Backend)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logg.Error("server stopped", "error", err)
		}
	case <-ctx.Done():
		logg.Info("shutdown requested")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.Close(shutdownCtx); err != nil {
		logg.Error("graceful shutdown failed", "error", err)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logg.Error("tracing shutdown failed", "error", err)
	}
}
