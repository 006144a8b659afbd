package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/OldStager01/car-analytics/api"
	"github.com/OldStager01/car-analytics/api/handlers"
	"github.com/OldStager01/car-analytics/internal/logger"
	"github.com/OldStager01/car-analytics/internal/metrics"
	"github.com/OldStager01/car-analytics/internal/orchestrator"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	logger.Infof("Starting %s in %s mode", cfg.App.Name, cfg.App.Mode)

	orch := orchestrator.New(cfg)
	orch.Start()
	defer orch.Stop()

	deps := api.Dependencies{
		Resolver: orch.Resolver(),
		Engine:   orch.Engine(),
		Events:   orch.Events(),
	}
	// A nil *inference.Service must not reach the handler as a non-nil
	// interface.
	if svc, err := orch.Predictor(); err != nil {
		deps.ModelErr = err
		logger.Warnf("Prediction disabled: %v", err)
	} else {
		deps.Predictor = handlers.Predictor(svc)
	}

	server := api.NewServer(cfg.API, cfg.WebSocket, cfg.App.Mode, deps)

	var metricsServer *http.Server
	if cfg.Prometheus.Enabled {
		metricsServer = metrics.StartServer(cfg.Prometheus.Port)
	}

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		logger.Infof("API server listening on port %d", cfg.API.Port)
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdownChan:
		logger.Infof("Received signal %v, shutting down", sig)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}
	if metricsServer != nil {
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			logger.Errorf("Metrics server shutdown error: %v", err)
		}
	}

	logger.Info("Server stopped gracefully")
	return nil
}
