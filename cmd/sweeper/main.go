package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/alitto/pond/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/feral-file/ff-token-sweeper/internal/adapter"
	"github.com/feral-file/ff-token-sweeper/internal/balancecache"
	"github.com/feral-file/ff-token-sweeper/internal/config"
	"github.com/feral-file/ff-token-sweeper/internal/discovery"
	"github.com/feral-file/ff-token-sweeper/internal/domain"
	"github.com/feral-file/ff-token-sweeper/internal/fetcher"
	"github.com/feral-file/ff-token-sweeper/internal/logger"
	"github.com/feral-file/ff-token-sweeper/internal/providers/ethereum"
	"github.com/feral-file/ff-token-sweeper/internal/providers/jetstream"
	"github.com/feral-file/ff-token-sweeper/internal/providers/vendors/moralis"
	"github.com/feral-file/ff-token-sweeper/internal/providers/vendors/tokenlist"
	"github.com/feral-file/ff-token-sweeper/internal/registry"
	"github.com/feral-file/ff-token-sweeper/internal/store"
	"github.com/feral-file/ff-token-sweeper/internal/transfer"
)

var (
	configFile  = flag.String("config", "", "Path to configuration file")
	envPath     = flag.String("env", "config/", "Path to environment files")
	wallet      = flag.String("wallet", "", "Wallet address to inspect")
	chainFlag   = flag.String("chain", string(domain.ChainEthereumMainnet), "Chain as CAIP-2 identifier or chain id")
	destination = flag.String("destination", "", "Destination address; builds a sweep batch when set")
	submit      = flag.Bool("submit", false, "Publish the built batch to NATS")
)

func main() {
	flag.Parse()

	// Load configuration
	config.ChdirRepoRoot()
	cfg, err := config.LoadSweeperConfig(*configFile, *envPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Create context with cancellation
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize logger with sentry integration
	err = logger.Initialize(logger.Config{
		Debug:           cfg.Debug,
		SentryDSN:       cfg.SentryDSN,
		Service:         "sweeper-cli",
		BreadcrumbLevel: zapcore.InfoLevel,
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)

	if *wallet == "" {
		flag.Usage()
		os.Exit(2)
	}
	chain, err := domain.ParseChain(*chainFlag)
	if err != nil {
		logger.FatalCtx(ctx, "Invalid chain", zap.Error(err), zap.String("chain", *chainFlag))
	}

	// Connect to database
	db, err := gorm.Open(postgres.Open(cfg.Database.DSN()), &gorm.Config{})
	if err != nil {
		logger.FatalCtx(ctx, "Failed to connect to database", zap.Error(err), zap.String("host", cfg.Database.Host))
	}
	if err := store.ConfigureConnectionPool(db, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns, cfg.Database.ConnMaxLifetime, cfg.Database.ConnMaxIdleTime); err != nil {
		logger.FatalCtx(ctx, "Failed to configure connection pool", zap.Error(err))
	}

	// Initialize adapters
	dataStore := store.NewPGStore(db)
	jsonAdapter := adapter.NewJSON()
	clock := adapter.NewClock()
	httpClient := adapter.NewHTTPClient()

	fetcherConfig := fetcher.Config{
		MaxRetriesPerCredential: cfg.Fetcher.MaxRetriesPerCredential,
		BackoffStep:             cfg.Fetcher.BackoffStep,
		RequestTimeout:          cfg.Fetcher.RequestTimeout,
	}
	moralisClient := moralis.NewClient(
		fetcher.New("moralis", fetcherConfig, httpClient, nil),
		cfg.Vendors.Moralis.BaseURL,
		cfg.Vendors.Moralis.APIKeys,
		jsonAdapter)
	tokenListClient := tokenlist.NewClient(
		fetcher.New("tokenlist", fetcherConfig, httpClient, nil),
		cfg.Vendors.TokenList.BaseURL,
		cfg.Vendors.TokenList.APIKeys,
		cfg.Discovery.VerifiedListLimit,
		jsonAdapter)

	verifiedRegistry := registry.NewVerifiedRegistry(tokenListClient, clock, cfg.Discovery.RegistryTTL, cfg.Fetcher.RequestTimeout)

	var denylistRegistry registry.DenylistRegistry
	if cfg.Discovery.DenylistPath != "" {
		denylistRegistry, err = registry.NewDenylistRegistryLoader(adapter.NewFileSystem(), jsonAdapter).Load(cfg.Discovery.DenylistPath)
		if err != nil {
			logger.FatalCtx(ctx, "Failed to load denylist registry", zap.Error(err), zap.String("path", cfg.Discovery.DenylistPath))
		}
	}

	balanceCache := balancecache.New(dataStore, jsonAdapter, clock, balancecache.Config{
		TTL:        cfg.Discovery.BalanceTTL,
		EvictBatch: cfg.Discovery.EvictBatch,
	})

	workerPool := pond.NewPool(8)
	defer workerPool.StopAndWait()

	pipeline := discovery.NewPipeline(balanceCache, verifiedRegistry, denylistRegistry, moralisClient, workerPool, discovery.Config{
		MinDustUSD:           cfg.Discovery.MinDust(),
		ReadinessTimeout:     cfg.Discovery.ReadinessTimeout,
		PriceEnrichmentLimit: cfg.Discovery.PriceEnrichmentLimit,
	})

	result, err := pipeline.Discover(ctx, *wallet, chain)
	if err != nil {
		logger.FatalCtx(ctx, domain.UserMessage(err), zap.Error(err))
	}
	printTokens(chain, result)

	if *destination == "" {
		return
	}

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

	batch, err := builder.Build(ctx, transfer.Request{
		Chain:       chain,
		Sender:      *wallet,
		Destination: *destination,
		Tokens:      result.Tokens,
	})
	if err != nil {
		logger.FatalCtx(ctx, domain.UserMessage(err), zap.Error(err))
	}
	printBatch(batch)

	if !*submit {
		return
	}
	if cfg.NATS.URL == "" {
		logger.FatalCtx(ctx, "NATS URL not configured, cannot submit batch")
	}

	publisher, err := jetstream.NewPublisher(ctx, jetstream.Config{
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

	if err := publisher.PublishBatch(ctx, batch); err != nil {
		logger.FatalCtx(ctx, "Failed to submit batch", zap.Error(err), zap.String("batch_id", batch.ID))
	}
	logger.InfoCtx(ctx, "Batch submitted", zap.String("batch_id", batch.ID))
}

func printTokens(chain domain.Chain, result *discovery.Result) {
	if result.NoTokens {
		fmt.Printf("No tokens found on %s\n", chain)
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SYMBOL\tAMOUNT\tUSD\tADDRESS")
	for _, token := range result.Tokens {
		usd := "-"
		if token.USDValue != nil {
			usd = token.USDValue.StringFixed(2)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", token.Symbol, discovery.FormatAmount(token.Balance, token.Decimals), usd, token.Address)
	}
	_ = w.Flush()

	if result.Stale {
		fmt.Println("(served from an expired snapshot)")
	}
	if result.Degraded {
		fmt.Println("(verified token list unavailable, results filtered conservatively)")
	}
}

func printBatch(batch *domain.TransferBatch) {
	fmt.Printf("\nBatch %s: %d calls (%d/%d candidates passed simulation)\n",
		batch.ID, len(batch.Calls), batch.Precheck.ValidCount, batch.Precheck.TotalCandidates)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "#\tKIND\tUSD\tDESCRIPTION")
	for i, call := range batch.Calls {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", i+1, call.Kind, call.USDValue.StringFixed(2), call.Description)
	}
	_ = w.Flush()
}
