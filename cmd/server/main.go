package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"photobooth-display/internal/config"
	"photobooth-display/internal/observability"
	"photobooth-display/internal/platform/server"
	"photobooth-display/internal/services"
	"photobooth-display/internal/web/handlers"

	"github.com/joho/godotenv"
	"go.opentelemetry.io/otel"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	obsCfg := observability.LoadConfig()
	obsCfg.Environment = cfg.Environment
	obsCfg.LogLevel = cfg.Logging.Level
	obsCfg.LogFormat = cfg.Logging.Format
	obsCfg.LogOutput = cfg.Logging.Output
	obsCfg.BackendURL = cfg.API.BaseURL
	obsCfg.PrimaryView = cfg.Display.View

	logger := observability.NewLogger(obsCfg)
	defer logger.Close()

	ctx := context.Background()

	provider, err := observability.NewProvider(ctx, obsCfg)
	if err != nil {
		logger.Fatal(ctx).Err(err).Msg("Failed to initialize OpenTelemetry")
	}
	otel.SetErrorHandler(otel.ErrorHandlerFunc(logger.OTELErrorHandler()))

	// Initialize dependency injection container
	container, err := services.NewContainer(cfg, logger)
	if err != nil {
		logger.Fatal(ctx).Err(err).Msg("Failed to initialize services container")
	}
	defer container.Close()

	handler, err := handlers.NewWithContainer(container)
	if err != nil {
		logger.Fatal(ctx).Err(err).Msg("Failed to initialize handlers")
	}

	srv := server.New(cfg.Host, cfg.Port, handler.Routes(), cfg.Server)

	tasksCtx, stopTasks := context.WithCancel(ctx)
	defer stopTasks()
	container.Start(tasksCtx)

	go func() {
		logger.Info(ctx).
			Str("addr", srv.Addr).
			Str("backend", cfg.API.BaseURL).
			Bool("telemetry", provider.Enabled()).
			Msg("Server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal(ctx).Err(err).Msg("Server failed to start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info(ctx).Msg("Server shutting down...")

	stopTasks()
	container.Stop()

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx).Err(err).Msg("Server forced to shutdown")
	}

	if err := provider.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx).Err(err).Msg("Failed to shut down OpenTelemetry")
	}

	fmt.Println("Server exited")
}
