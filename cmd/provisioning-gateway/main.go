package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/edvin/provisioning/internal/api"
	"github.com/edvin/provisioning/internal/centralserver"
	"github.com/edvin/provisioning/internal/config"
	"github.com/edvin/provisioning/internal/core"
	"github.com/edvin/provisioning/internal/db"
	"github.com/edvin/provisioning/internal/logging"
	"github.com/edvin/provisioning/internal/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewLogger(cfg)

	reg, err := config.LoadRegistry(cfg.RegistryFile)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load registry")
	}
	users, err := reg.CompiledUsers()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to compile permissions")
	}
	shards := reg.Shards()

	if err := os.MkdirAll(cfg.AlertLogDir, 0o750); err != nil {
		logger.Fatal().Err(err).Str("dir", cfg.AlertLogDir).Msg("failed to create alert log directory")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pools, err := db.NewShardPools(ctx, shards)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to central server databases")
	}
	defer db.ClosePools(pools)

	if err := metrics.RegisterShardPoolMetrics(prometheus.DefaultRegisterer, pools); err != nil {
		logger.Fatal().Err(err).Msg("failed to register pool metrics")
	}

	dbs := make(map[int]core.DB, len(pools))
	pingers := make(map[int]api.Pinger, len(pools))
	for id, p := range pools {
		dbs[id] = p
		pingers[id] = p
	}

	shardSet, err := core.NewShardSet(shards, dbs, reg.GroupNames())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build central server set")
	}

	auth, err := core.NewAuthService(users)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build credential table")
	}

	tlsConfig, err := cfg.CentralServerTLS()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure central server TLS")
	}
	if tlsConfig != nil {
		logger.Info().Msg("central server TLS configured")
	}
	client := centralserver.NewClient(shards, cfg.ConnectTimeout, tlsConfig)

	srv := api.NewServer(logger, cfg, api.Deps{
		Auth:    auth,
		Shards:  shardSet,
		Alerts:  core.NewAlertService(cfg.AlertLogDir, reg.AlertTypeSet()),
		Client:  client,
		Pingers: pingers,
	})

	// No WriteTimeout: a broadcast waits for the slowest central server.
	httpServer := &http.Server{
		Addr:              cfg.HTTPListenAddr,
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	if cfg.MetricsListenAddr != "" {
		metricsServer := metrics.NewServer(cfg.MetricsListenAddr, prometheus.DefaultGatherer, srv.Readiness())
		go func() {
			logger.Info().Str("addr", cfg.MetricsListenAddr).Msg("starting metrics server")
			if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error().Err(err).Msg("metrics server failed")
			}
		}()
		defer metricsServer.Close()
	}

	go func() {
		logger.Info().
			Str("addr", cfg.HTTPListenAddr).
			Str("endpoint_base", cfg.EndpointBase).
			Int("central_servers", len(shards)).
			Msg("starting provisioning gateway")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	httpServer.Shutdown(shutdownCtx)
}
