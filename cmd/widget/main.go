package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/zintasclinic/booking-widget/internal/api/router"
	"github.com/zintasclinic/booking-widget/internal/bookingapi"
	appconfig "github.com/zintasclinic/booking-widget/internal/config"
	"github.com/zintasclinic/booking-widget/internal/observability/metrics"
	"github.com/zintasclinic/booking-widget/internal/widget"
	"github.com/zintasclinic/booking-widget/pkg/logging"
)

func main() {
	// Load .env if present, then configuration
	_ = godotenv.Load()
	cfg := appconfig.Load()

	// Initialize logger
	logger := logging.NewWithWriter(cfg.LogLevel, cfg.LogFormat, os.Stdout)
	logger.Info("starting booking widget server",
		"env", cfg.Env,
		"port", cfg.Port,
		"booking_api", cfg.BookingAPIBaseURL,
	)

	// Initialize the booking API client and widget sessions
	schedMetrics := metrics.NewSchedulingMetrics(nil)
	apiClient := bookingapi.NewClient(cfg.BookingAPIBaseURL, cfg.BookingAPITimeout, logger)
	widgetHandler := widget.NewHandler(apiClient, schedMetrics, logger)

	// Setup router
	r := router.New(&router.Config{
		Logger:             logger,
		Widget:             widgetHandler,
		MetricsHandler:     promhttp.Handler(),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	})

	// Create HTTP server. Read/write timeouts stay unset because widget
	// WebSocket connections are long-lived.
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	widgetHandler.Close()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}
