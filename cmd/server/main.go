// cmd/server/main.go - HTTP API for recipe imports
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/valpere/RecipeScrapexter/internal/config"
	apperrors "github.com/valpere/RecipeScrapexter/internal/errors"
	"github.com/valpere/RecipeScrapexter/internal/monitoring"
	"github.com/valpere/RecipeScrapexter/internal/utils"
	"github.com/valpere/RecipeScrapexter/pkg/api"
)

// Version information (set by build flags)
var version = "dev"

const (
	shutdownTimeout = 30 * time.Second
	healthTimeout   = 5 * time.Second
)

func main() {
	configFile := flag.String("config", os.Getenv("RECIPE_CONFIG"), "configuration file")
	addr := flag.String("addr", "", "listen address, overrides server.addr")
	flag.Parse()

	if err := run(*configFile, *addr); err != nil {
		errorService := apperrors.NewService()
		fmt.Fprint(os.Stderr, errorService.FormatErrorForCLI(err))
		os.Exit(errorService.GetExitCode(err))
	}
}

func run(configFile, addr string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}
	if addr != "" {
		cfg.Server.Addr = addr
	}

	logger, err := utils.NewLogger(utils.LogConfig{Level: cfg.Log.Level, Development: cfg.Log.Development})
	if err != nil {
		return &apperrors.ConfigError{Path: configFile, Err: err}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics := monitoring.NewMetrics()
	client, err := api.NewClient(ctx, cfg, api.WithLogger(logger), api.WithMetrics(metrics))
	if err != nil {
		return err
	}
	defer client.Close()

	health := monitoring.NewHealthManager(version, healthTimeout)
	client.RegisterHealthChecks(health)

	srv := newServer(client, cfg.Server, metrics, health, logger.WithField("component", "server"))

	if configFile != "" {
		path, err := filepath.Abs(configFile)
		if err != nil {
			return &apperrors.ConfigError{Path: configFile, Err: err}
		}
		watcher, err := config.NewConfigWatcher(path, logger.WithField("component", "config"))
		if err != nil {
			logger.Warnf("config watcher disabled: %v", err)
		} else {
			defer watcher.Close()
			watcher.OnChange(func(updated *config.Config) {
				srv.apply(updated.Server)
				logger.Info("server auth and rate limit settings reloaded")
			})
		}
	}

	httpServer := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           setupRoutes(srv),
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.WithFields(map[string]interface{}{"addr": cfg.Server.Addr, "version": version}).Info("server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}
