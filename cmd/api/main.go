package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alitto/pond/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/feral-file/ff-token-sweeper/internal/adapter"
	"github.com/feral-file/ff-token-sweeper/internal/api/middleware"
	"github.com/feral-file/ff-token-sweeper/internal/api/server"
	"github.com/feral-file/ff-token-sweeper/internal/api/shared/executor"
	"github.com/feral-file/ff-token-sweeper/internal/balancecache"
	"github.com/feral-file/ff-token-sweeper/internal/config"
	"github.com/feral-file/ff-token-sweeper/internal/discovery"
	"github.com/feral-file/ff-token-sweeper/internal/fetcher"
	"github.com/feral-file/ff-token-sweeper/internal/logger"
	"github.com/feral-file/ff-token-sweeper/internal/messaging"
	"github.com/feral-file/ff-token-sweeper/internal/providers/ethereum"
	"github.com/feral-file/ff-token-sweeper/internal/providers/jetstream"
	"github.com/feral-file/ff-token-sweeper/internal/providers/vendors/moralis"
	"github.com/feral-file/ff-token-sweeper/internal/providers/vendors/tokenlist"
	"github.com/feral-file/ff-token-sweeper/internal/ratelimit"
	"github.com/feral-file/ff-token-sweeper/internal/registry"
	"github.com/feral-file/ff-token-sweeper/internal/session"
	"github.com/feral-file/ff-token-sweeper/internal/store"
	"github.com/feral-file/ff-token-sweeper/internal/sweeper"
	"github.com/feral-file/ff-token-sweeper/internal/transfer"
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	envPath    = flag.String("env", "config/", "Path to environment files")
)

const (
	PROVIDER_MORALIS   = "moralis"
	PROVIDER_TOKENLIST = "tokenlist"
)

func main() {
	flag.Parse()

	// Load configuration
	config.ChdirRepoRoot()
	cfg, err := config.LoadAPIConfig(*configFile, *envPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize logger with sentry integration
	err = logger.Initialize(logger.Config{
		Debug:           cfg.Debug,
		SentryDSN:       cfg.SentryDSN,
		Service:         "token-sweeper-api",
		BreadcrumbLevel: zapcore.InfoLevel,
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)
	logger.InfoCtx(ctx, "Starting Feral File Token Sweeper API")

	// Connect to database
	db, err := gorm.Open(postgres.Open(cfg.Database.DSN()), &gorm.Config{})
	if err != nil {
		logger.FatalCtx(ctx, "Failed to connect to database", zap.Error(err), zap.String("host", cfg.Database.Host))
	}

	// Configure connection pool
	if err := store.ConfigureConnectionPool(db, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns, cfg.Database.ConnMaxLifetime, cfg.Database.ConnMaxIdleTime); err != nil {
		logger.FatalCtx(ctx, "Failed to configure connection pool", zap.Error(err))
	}
	logger.InfoCtx(ctx, "Connected to database",
		zap.Int("max_open_conns", cfg.Database.MaxOpenConns),
		zap.Int("max_idle_conns", cfg.Database.MaxIdleConns),
	)

	// Initialize adapters
	dataStore := store.NewPGStore(db)
	fs := adapter.NewFileSystem()
	jsonAdapter := adapter.NewJSON()
	clock := adapter.NewClock()
	httpClient := adapter.NewHTTPClient()

	// Rate limit proxy for the upstream token data providers
	limiter := newRateLimitProxy(cfg.Vendors)
	if limiter != nil {
		defer func() {
			if err := limiter.Close(); err != nil {
				logger.Warn("Failed to close rate limit proxy", zap.Error(err))
			}
		}()
	}

	fetcherConfig := fetcher.Config{
		MaxRetriesPerCredential: cfg.Fetcher.MaxRetriesPerCredential,
		BackoffStep:             cfg.Fetcher.BackoffStep,
		RequestTimeout:          cfg.Fetcher.RequestTimeout,
	}
	moralisClient := moralis.NewClient(
		fetcher.New(PROVIDER_MORALIS, fetcherConfig, httpClient, limiter),
		cfg.Vendors.Moralis.BaseURL,
		cfg.Vendors.Moralis.APIKeys,
		jsonAdapter)
	tokenListClient := tokenlist.NewClient(
		fetcher.New(PROVIDER_TOKENLIST, fetcherConfig, httpClient, limiter),
		cfg.Vendors.TokenList.BaseURL,
		cfg.Vendors.TokenList.APIKeys,
		cfg.Discovery.VerifiedListLimit,
		jsonAdapter)

	// Registries
	verifiedRegistry := registry.NewVerifiedRegistry(tokenListClient, clock, cfg.Discovery.RegistryTTL, cfg.Fetcher.RequestTimeout)

	var denylistRegistry registry.DenylistRegistry
	if cfg.Discovery.DenylistPath != "" {
		denylistLoader := registry.NewDenylistRegistryLoader(fs, jsonAdapter)
		denylistRegistry, err = denylistLoader.Load(cfg.Discovery.DenylistPath)
		if err != nil {
			logger.FatalCtx(ctx, "Failed to load denylist registry",
				zap.Error(err),
				zap.String("path", cfg.Discovery.DenylistPath))
		}
		logger.InfoCtx(ctx, "Loaded denylist registry", zap.String("path", cfg.Discovery.DenylistPath))
	} else {
		logger.WarnCtx(ctx, "Denylist registry path not configured, no contracts will be denied")
	}

	// Balance cache
	balanceCache := balancecache.New(dataStore, jsonAdapter, clock, balancecache.Config{
		TTL:        cfg.Discovery.BalanceTTL,
		EvictBatch: cfg.Discovery.EvictBatch,
	})

	workerPool := pond.NewPool(32)
	defer workerPool.StopAndWait()

	pipeline := discovery.NewPipeline(balanceCache, verifiedRegistry, denylistRegistry, moralisClient, workerPool, discovery.Config{
		MinDustUSD:           cfg.Discovery.MinDust(),
		ReadinessTimeout:     cfg.Discovery.ReadinessTimeout,
		PriceEnrichmentLimit: cfg.Discovery.PriceEnrichmentLimit,
	})

	// Transfer builder
	rpcURLs, err := config.ParseRPCURLs(cfg.RPCURLs)
	if err != nil {
		logger.FatalCtx(ctx, "Invalid RPC URL configuration", zap.Error(err))
	}
	reserves, err := cfg.Transfer.ParseReserves()
	if err != nil {
		logger.FatalCtx(ctx, "Invalid reserve configuration", zap.Error(err))
	}
	simulators := ethereum.NewClientPool(adapter.NewEthClientDialer(), rpcURLs)
	defer simulators.Close()

	builder := transfer.NewBuilder(simulators, workerPool, clock, transfer.Config{
		CandidateCap: cfg.Transfer.CandidateCap,
		BatchCap:     cfg.Transfer.BatchCap,
		Reserves:     reserves,
	})

	// Batch submission is optional
	var publisher messaging.Publisher
	if cfg.NATS.URL != "" {
		publisher, err = jetstream.NewPublisher(ctx, jetstream.Config{
			URL:            cfg.NATS.URL,
			StreamName:     cfg.NATS.StreamName,
			SubjectPrefix:  cfg.NATS.SubjectPrefix,
			MaxReconnects:  cfg.NATS.MaxReconnects,
			ReconnectWait:  cfg.NATS.ReconnectWait,
			ConnectionName: cfg.NATS.ConnectionName,
			SigningSecret:  cfg.NATS.SigningSecret,
		}, adapter.NewNatsJetStream(), jsonAdapter, clock)
		if err != nil {
			logger.FatalCtx(ctx, "Failed to connect to NATS", zap.Error(err))
		}
		defer publisher.Close()
		logger.InfoCtx(ctx, "Connected to NATS", zap.String("stream", cfg.NATS.StreamName))
	} else {
		logger.WarnCtx(ctx, "NATS URL not configured, batch submission is disabled")
	}

	exec := executor.NewExecutor(pipeline, builder, publisher, balanceCache, verifiedRegistry, session.NewTracker())

	// Background sweepers
	var sweepers []sweeper.Sweeper
	if cfg.SnapshotPruner.Enabled {
		sweepers = append(sweepers, sweeper.NewSnapshotPruner(sweeper.SnapshotPrunerConfig{
			Interval:  cfg.SnapshotPruner.Interval,
			RetainFor: cfg.SnapshotPruner.RetainFor,
		}, dataStore, balanceCache, clock))
	}
	if len(cfg.Discovery.WarmChains) > 0 {
		warmChains, err := config.ParseChains(cfg.Discovery.WarmChains)
		if err != nil {
			logger.FatalCtx(ctx, "Invalid warm chain configuration", zap.Error(err))
		}
		sweepers = append(sweepers, sweeper.NewRegistryWarmer(warmChains, cfg.Discovery.RegistryTTL, verifiedRegistry, workerPool, clock))
	}

	errCh := make(chan error, len(sweepers)+1)
	for _, s := range sweepers {
		go func(s sweeper.Sweeper) {
			if err := s.Start(ctx); err != nil {
				errCh <- fmt.Errorf("%s: %w", s.Name(), err)
			}
		}(s)
	}

	// Create server config
	serverConfig := server.Config{
		Debug:          cfg.Debug,
		Host:           cfg.Server.Host,
		Port:           cfg.Server.Port,
		ReadTimeout:    time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout:   time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:    time.Duration(cfg.Server.IdleTimeout) * time.Second,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Auth: middleware.AuthConfig{
			JWTPublicKey: cfg.Auth.JWTPublicKey,
			APIKeys:      cfg.Auth.APIKeys,
		},
	}

	srv := server.New(serverConfig, exec)

	// Start server in a goroutine
	go func() {
		if err := srv.Start(); err != nil {
			errCh <- err
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		logger.InfoCtx(ctx, "Received shutdown signal", zap.String("signal", sig.String()))
		cancel()
	case err := <-errCh:
		logger.ErrorCtx(ctx, err, zap.String("component", "server"))
		cancel()
	}

	// Create shutdown context with timeout (don't use canceled ctx)
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	logger.InfoCtx(shutdownCtx, "Shutting down server...")

	for _, s := range sweepers {
		if err := s.Stop(shutdownCtx); err != nil {
			logger.WarnCtx(shutdownCtx, "Failed to stop sweeper", zap.String("sweeper", s.Name()), zap.Error(err))
		}
	}

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.FatalCtx(shutdownCtx, "Server forced to shutdown", zap.Error(err))
	}

	// Use non-context logger for final message since original ctx is canceled
	logger.Info("API server stopped")
}

// newRateLimitProxy creates a proxy for the vendors with a positive request rate.
// It returns nil when no vendor is rate limited; vendors left out run unlimited.
func newRateLimitProxy(vendors config.VendorsConfig) ratelimit.Proxy {
	providers := make(map[string]ratelimit.Limit)
	for name, provider := range map[string]config.ProviderConfig{
		PROVIDER_MORALIS:   vendors.Moralis,
		PROVIDER_TOKENLIST: vendors.TokenList,
	} {
		if provider.RequestsPerSecond <= 0 {
			continue
		}
		providers[name] = ratelimit.Limit{
			RequestsPerSecond: provider.RequestsPerSecond,
			Burst:             provider.Burst,
			MaxQueueTime:      30 * time.Second,
		}
	}
	if len(providers) == 0 {
		return nil
	}

	proxy, err := ratelimit.NewProxy(ratelimit.Config{
		Providers:    providers,
		MaxWorkers:   50,
		MaxQueueSize: 1000,
	})
	if err != nil {
		logger.Fatal("Failed to create rate limit proxy", zap.Error(err))
	}
	return proxy
}
