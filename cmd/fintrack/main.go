package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"fintrack/internal/amqp"
	"fintrack/internal/backend"
	"fintrack/internal/cache"
	"fintrack/internal/cli"
	"fintrack/internal/config"
	apphttp "fintrack/internal/http"
	"fintrack/internal/log"
	"fintrack/internal/market"
	"fintrack/internal/services"
)

func main() {
	cfg, logger := cli.MustLoadConfig(true)
	if err := run(cfg, logger); err != nil {
		logger.Error("fintrack stopped", "error", err)
		os.Exit(1)
	}
}

// run wires the backend, caches, messaging and market clients behind the
// HTTP server and blocks until a signal or a server error.
func run(cfg *config.Config, logger *log.Logger) error {
	ctx, stop := cli.SignalContext(context.Background())
	defer stop()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return err
	}
	result, err := backend.NewFactory(logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		return fmt.Errorf("initialize %s backend: %w", cfg.DataBackend, err)
	}
	defer func() {
		if err := result.Cleanup(); err != nil {
			logger.Error("Backend cleanup failed", "error", err)
		}
	}()

	caches := cache.NewManager(logger.WithComponent(log.ComponentCache))
	caches.StartCleanup(cfg.CacheCleanupInterval)
	defer caches.Stop()

	var ledgerOpts []services.LedgerOption
	var bus *amqp.Client
	if cfg.AMQPURL != "" {
		bus, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.InstanceID)
		if err != nil {
			return fmt.Errorf("initialize AMQP client: %w", err)
		}
		defer bus.Close()
		ledgerOpts = append(ledgerOpts, services.WithPublisher(bus))

		go func() {
			err := bus.Consume(ctx, amqp.InvalidationHandler(caches))
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("Invalidation consumer stopped", "error", err)
			}
		}()
		logger.Info("Cross-instance cache invalidation enabled",
			"exchange", cfg.AMQPExchange, "instance_id", cfg.InstanceID)
	}

	ledger := services.NewLedgerService(result.Ledger, caches,
		logger.WithComponent(log.ComponentLedger), cfg.CacheTTL, ledgerOpts...)

	hc := &http.Client{Timeout: cfg.MarketTimeout}
	var fx services.FXSource
	if cfg.FXAPIURL != "" {
		fx = market.NewFXClient(cfg.FXAPIURL, hc)
	} else {
		logger.Info("FX_API_URL not set, currency conversion disabled")
	}
	mkt := services.NewMarketService(fx,
		market.NewCoinGeckoClient(cfg.CoinGeckoURL, hc),
		market.NewWorldBankClient(cfg.WorldBankURL, hc),
		caches, logger.WithComponent(log.ComponentMarket), cfg.CacheTTL, cfg.MarketTimeout)

	srv := apphttp.NewServer(apphttp.Options{
		Addr:              ":" + cfg.Port,
		RequestsPerMinute: cfg.RateLimit,
		AllowOrigin:       cfg.CORSAllowOrigin,
		TrustedProxies:    cfg.TrustedProxyList(),
		Ready:             result.Ping,
		Logger:            logger,
	}, ledger, mkt)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting fintrack server", "port", cfg.Port, log.FieldBackend, string(result.Type))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("serve on port %s: %w", cfg.Port, err)
		}
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("Server stopped gracefully")
	return nil
}
