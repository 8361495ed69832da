package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/edvin/rediscloud-tools/internal/config"
	"github.com/edvin/rediscloud-tools/internal/logging"
	"github.com/edvin/rediscloud-tools/internal/mcpserver"
	"github.com/edvin/rediscloud-tools/internal/metrics"
	"github.com/edvin/rediscloud-tools/internal/tools"
)

func main() {
	var (
		configPath = flag.String("config", "", "Path to rediscloud-mcp.yaml (optional)")
		addr       = flag.String("addr", "", "Listen address (overrides TOOLS_REDIS_CLOUD_HTTP_LISTEN_ADDR)")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fallback := logging.NewLogger(&config.Config{LogLevel: "info"}, "mcp-server")
		fallback.Fatal().Err(err).Msg("failed to load config")
	}
	logger := logging.NewLogger(cfg, "mcp-server")

	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	mcpCfg, err := mcpserver.ParseConfig(nil)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build default MCP config")
	}
	if *configPath != "" {
		mcpCfg, err = mcpserver.LoadConfig(*configPath)
		if err != nil {
			logger.Fatal().Err(err).Str("path", *configPath).Msg("failed to load MCP config")
		}
	}

	provider, err := tools.New(cfg, mcpCfg.Instance, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create tool provider")
	}
	defer provider.Close()

	srv := mcpserver.New(mcpCfg, provider, logger)

	listenAddr := cfg.HTTPListenAddr
	if *addr != "" {
		listenAddr = *addr
	}

	httpSrv := &http.Server{
		Addr:         listenAddr,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	metricsSrv := metrics.NewServer(cfg.MetricsListenAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info().Str("addr", listenAddr).Msg("MCP server starting")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		logger.Info().Str("addr", cfg.MetricsListenAddr).Msg("metrics server starting")
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info().Msg("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("MCP server shutdown error")
		}
		if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("metrics server shutdown error")
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Fatal().Err(err).Msg("server error")
	}
	logger.Info().Msg("MCP server stopped")
}
