package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lysyi3m/blog-forge/app/api"
	"github.com/lysyi3m/blog-forge/app/catalog"
	"github.com/lysyi3m/blog-forge/app/cfg"
	"github.com/lysyi3m/blog-forge/app/generator"
	"github.com/lysyi3m/blog-forge/app/pipeline"
	"github.com/lysyi3m/blog-forge/app/prompt"
	"github.com/lysyi3m/blog-forge/app/publisher"
	"github.com/lysyi3m/blog-forge/app/tasks"
)

func main() {
	appConfig, err := cfg.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}
	if appConfig == nil {
		// Help was shown, exit gracefully
		return
	}

	logLevel := slog.LevelInfo
	if appConfig.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))

	slog.Info("Starting Blog Forge server...", "version", appConfig.Version)

	promptStore, err := prompt.NewStore(appConfig.StrategiesDir)
	if err != nil {
		slog.Error("Failed to load prompt strategies", "error", err)
		os.Exit(1)
	}
	strategy, err := promptStore.Get(appConfig.Strategy)
	if err != nil {
		slog.Error("Unknown prompt strategy", "strategy", appConfig.Strategy, "error", err)
		os.Exit(1)
	}
	slog.Info("Prompt strategies loaded", "strategies", promptStore.Names(), "active", strategy.Name)

	httpClient := &http.Client{}

	catalogClient := catalog.NewClient(appConfig.LeetCodeURL, appConfig.UserAgent, httpClient)
	completionClient := generator.NewClient(appConfig, httpClient)
	publisherFactory := publisher.NewFactory(appConfig, httpClient)

	runPipeline := pipeline.New(appConfig, catalogClient, completionClient, publisherFactory, strategy)

	slog.Info("Starting background scheduler",
		"workers", appConfig.WorkerCount,
		"schedule", fmt.Sprint(appConfig.ScheduleTimes),
		"platform", appConfig.BlogPlatform)
	scheduler := tasks.NewScheduler(appConfig, runPipeline)
	scheduler.Start()
	defer scheduler.Stop()

	apiHandler := api.NewHandler(scheduler, runPipeline, appConfig.Version)
	server := api.NewServer(apiHandler)

	httpServer := &http.Server{
		Addr:         ":" + appConfig.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "port", appConfig.Port)
		slog.Info("Endpoints available",
			"health", "/health",
			"status", "/api/status",
			"trigger", "/trigger (POST)")

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	slog.Info("Blog Forge server started successfully", "next_run", scheduler.NextRun().Format(time.RFC3339))

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down server gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped")
	}

	// Scheduler is stopped via defer; it stops issuing new runs and lets
	// in-flight runs finish
	slog.Info("Blog Forge server shutdown complete")
}
