package config

import (
	"errors"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/feral-file/ff-token-sweeper/internal/domain"
)

// BaseConfig holds base configuration
type BaseConfig struct {
	Debug     bool   `mapstructure:"debug"`
	SentryDSN string `mapstructure:"sentry_dsn"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`     // Maximum number of open connections to the database
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`     // Maximum number of idle connections in the pool
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`  // Maximum amount of time a connection may be reused (e.g., "5m", "1h")
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"` // Maximum amount of time a connection may be idle (e.g., "10m", "30m")
}

// NATSConfig holds NATS JetStream configuration
type NATSConfig struct {
	URL            string        `mapstructure:"url"`
	StreamName     string        `mapstructure:"stream_name"`
	SubjectPrefix  string        `mapstructure:"subject_prefix"`
	MaxReconnects  int           `mapstructure:"max_reconnects"`
	ReconnectWait  time.Duration `mapstructure:"reconnect_wait"`
	ConnectionName string        `mapstructure:"connection_name"`
	SigningSecret  string        `mapstructure:"signing_secret"` // HMAC secret for published batches, empty disables signing
}

// ProviderConfig holds the endpoint and ordered credentials of one upstream provider
type ProviderConfig struct {
	BaseURL           string   `mapstructure:"base_url"`
	APIKeys           []string `mapstructure:"api_keys"`
	RequestsPerSecond float64  `mapstructure:"requests_per_second"` // 0 disables local rate limiting
	Burst             int      `mapstructure:"burst"`
}

// VendorsConfig holds vendor API configurations
type VendorsConfig struct {
	Moralis   ProviderConfig `mapstructure:"moralis"`
	TokenList ProviderConfig `mapstructure:"tokenlist"`
}

// FetcherConfig holds retry and timeout settings for upstream requests
type FetcherConfig struct {
	MaxRetriesPerCredential int           `mapstructure:"max_retries_per_credential"`
	BackoffStep             time.Duration `mapstructure:"backoff_step"`
	RequestTimeout          time.Duration `mapstructure:"request_timeout"`
}

// DiscoveryConfig holds token discovery and caching settings
type DiscoveryConfig struct {
	MinDustUSD           float64       `mapstructure:"min_dust_usd"`
	RegistryTTL          time.Duration `mapstructure:"registry_ttl"`
	BalanceTTL           time.Duration `mapstructure:"balance_ttl"`
	ReadinessTimeout     time.Duration `mapstructure:"readiness_timeout"`
	EvictBatch           int           `mapstructure:"evict_batch"`
	PriceEnrichmentLimit int           `mapstructure:"price_enrichment_limit"`
	VerifiedListLimit    int           `mapstructure:"verified_list_limit"`
	DenylistPath         string        `mapstructure:"denylist_path"`
	WarmChains           []string      `mapstructure:"warm_chains"`
}

// TransferConfig holds batch building settings
type TransferConfig struct {
	CandidateCap int `mapstructure:"candidate_cap"`
	BatchCap     int `mapstructure:"batch_cap"`
	// Reserves maps a chain (CAIP-2 or bare chain id) to the native amount in wei kept back for fees
	Reserves map[string]string `mapstructure:"reserves"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	ReadTimeout  int    `mapstructure:"read_timeout"`  // in seconds
	WriteTimeout int    `mapstructure:"write_timeout"` // in seconds
	IdleTimeout  int    `mapstructure:"idle_timeout"`  // in seconds
	// AllowedOrigins restricts CORS; empty allows every origin
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// AuthConfig holds authentication configuration
type AuthConfig struct {
	JWTPublicKey string   `mapstructure:"jwt_public_key"`
	APIKeys      []string `mapstructure:"api_keys"`
}

// SnapshotPrunerConfig holds configuration for the balance snapshot pruner
type SnapshotPrunerConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	Interval  time.Duration `mapstructure:"interval"`
	RetainFor time.Duration `mapstructure:"retain_for"`
}

// APIConfig holds configuration for API server
type APIConfig struct {
	BaseConfig     `mapstructure:",squash"`
	Server         ServerConfig         `mapstructure:"server"`
	Database       DatabaseConfig       `mapstructure:"database"`
	NATS           NATSConfig           `mapstructure:"nats"`
	Auth           AuthConfig           `mapstructure:"auth"`
	Vendors        VendorsConfig        `mapstructure:"vendors"`
	Fetcher        FetcherConfig        `mapstructure:"fetcher"`
	Discovery      DiscoveryConfig      `mapstructure:"discovery"`
	Transfer       TransferConfig       `mapstructure:"transfer"`
	SnapshotPruner SnapshotPrunerConfig `mapstructure:"snapshot_pruner"`
	// RPCURLs maps a chain (CAIP-2 or bare chain id) to its JSON-RPC endpoint
	RPCURLs map[string]string `mapstructure:"rpc_urls"`
}

// SweeperConfig holds configuration for the sweeper command line tool
type SweeperConfig struct {
	BaseConfig `mapstructure:",squash"`
	Database   DatabaseConfig    `mapstructure:"database"`
	NATS       NATSConfig        `mapstructure:"nats"`
	Vendors    VendorsConfig     `mapstructure:"vendors"`
	Fetcher    FetcherConfig     `mapstructure:"fetcher"`
	Discovery  DiscoveryConfig   `mapstructure:"discovery"`
	Transfer   TransferConfig    `mapstructure:"transfer"`
	RPCURLs    map[string]string `mapstructure:"rpc_urls"`
}

// LoadAPIConfig loads configuration for API server
func LoadAPIConfig(configFile string, envPath string) (*APIConfig, error) {
	v := configureViper("api", configFile, envPath)

	// Set defaults
	v.SetDefault("debug", false)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 30)
	v.SetDefault("server.idle_timeout", 120)
	v.SetDefault("snapshot_pruner.enabled", true)
	v.SetDefault("snapshot_pruner.interval", "1h")
	v.SetDefault("snapshot_pruner.retain_for", "24h")
	setSharedDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var error viper.ConfigFileNotFoundError
		if errors.As(err, &error) {
			// Config file not found, use environment variables
		} else {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var config APIConfig
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

// LoadSweeperConfig loads configuration for the sweeper command line tool
func LoadSweeperConfig(configFile string, envPath string) (*SweeperConfig, error) {
	v := configureViper("sweeper", configFile, envPath)

	// Set defaults
	v.SetDefault("debug", false)
	setSharedDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var error viper.ConfigFileNotFoundError
		if errors.As(err, &error) {
			// Config file not found, use environment variables
		} else {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var config SweeperConfig
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

// setSharedDefaults sets the defaults common to every service
func setSharedDefaults(v *viper.Viper) {
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("nats.max_reconnects", 10)
	v.SetDefault("nats.reconnect_wait", "2s")
	v.SetDefault("nats.stream_name", "SWEEP_BATCHES")
	v.SetDefault("nats.subject_prefix", "sweep.batches")
	v.SetDefault("vendors.moralis.base_url", "https://deep-index.moralis.io/api/v2.2")
	v.SetDefault("vendors.moralis.requests_per_second", 25)
	v.SetDefault("vendors.moralis.burst", 5)
	v.SetDefault("vendors.tokenlist.requests_per_second", 5)
	v.SetDefault("vendors.tokenlist.burst", 2)
	v.SetDefault("fetcher.max_retries_per_credential", 2)
	v.SetDefault("fetcher.backoff_step", "500ms")
	v.SetDefault("fetcher.request_timeout", "10s")
	v.SetDefault("discovery.min_dust_usd", 0.01)
	v.SetDefault("discovery.registry_ttl", "5m")
	v.SetDefault("discovery.balance_ttl", "15m")
	v.SetDefault("discovery.readiness_timeout", "3s")
	v.SetDefault("discovery.evict_batch", 20)
	v.SetDefault("discovery.price_enrichment_limit", 10)
	v.SetDefault("discovery.verified_list_limit", 1000)
	v.SetDefault("transfer.candidate_cap", 20)
	v.SetDefault("transfer.batch_cap", 10)
}

// configureViper returns a viper instance with the config file and environment variables set
func configureViper(service string, configFile string, envPath string) *viper.Viper {
	v := viper.New()

	// Load environment variables
	loadEnv(envPath, service)

	// Set config file
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		// Search for config.yaml in multiple locations:
		// 1. Current directory
		v.AddConfigPath(".")
		// 2. Service-specific directory (e.g., cmd/sweeper/, cmd/api/)
		v.AddConfigPath(fmt.Sprintf("cmd/%s/", service))
		// 3. Config directory
		v.AddConfigPath("config/")
	}

	// Set environment variables
	v.SetEnvPrefix("FF_SWEEPER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Explicitly bind all environment variables
	bindAllEnvVars(v)
	return v
}

// bindAllEnvVars explicitly binds all possible environment variables
// This is required for viper to map env vars to config struct fields when no config file exists
func bindAllEnvVars(v *viper.Viper) {
	commonKeys := []string{
		"debug",
		"sentry_dsn",
		// Database
		"database.host",
		"database.port",
		"database.user",
		"database.password",
		"database.dbname",
		"database.sslmode",
		"database.max_open_conns",
		"database.max_idle_conns",
		"database.conn_max_lifetime",
		"database.conn_max_idle_time",
		// NATS
		"nats.url",
		"nats.stream_name",
		"nats.subject_prefix",
		"nats.max_reconnects",
		"nats.reconnect_wait",
		"nats.connection_name",
		"nats.signing_secret",
		// Vendors
		"vendors.moralis.base_url",
		"vendors.moralis.api_keys",
		"vendors.moralis.requests_per_second",
		"vendors.moralis.burst",
		"vendors.tokenlist.base_url",
		"vendors.tokenlist.api_keys",
		"vendors.tokenlist.requests_per_second",
		"vendors.tokenlist.burst",
		// Fetcher
		"fetcher.max_retries_per_credential",
		"fetcher.backoff_step",
		"fetcher.request_timeout",
		// Discovery
		"discovery.min_dust_usd",
		"discovery.registry_ttl",
		"discovery.balance_ttl",
		"discovery.readiness_timeout",
		"discovery.evict_batch",
		"discovery.price_enrichment_limit",
		"discovery.verified_list_limit",
		"discovery.denylist_path",
		"discovery.warm_chains",
		// Transfer
		"transfer.candidate_cap",
		"transfer.batch_cap",
		// Server
		"server.host",
		"server.port",
		"server.read_timeout",
		"server.write_timeout",
		"server.idle_timeout",
		"server.allowed_origins",
		// Auth
		"auth.jwt_public_key",
		"auth.api_keys",
		// Snapshot pruner
		"snapshot_pruner.enabled",
		"snapshot_pruner.interval",
		"snapshot_pruner.retain_for",
	}

	for _, key := range commonKeys {
		_ = v.BindEnv(key)
	}
}

// loadEnv loads environment variables from the config directory
func loadEnv(envPath string, service string) {
	// Always try shared base first, then local, then optional per-service local.
	envFiles := []string{".env", ".env.local"}
	if service != "" {
		envFiles = append(envFiles, ".env."+service+".local")
	}

	// Default to config directory
	if envPath == "" {
		envPath = "config/"
	}

	for _, envFile := range envFiles {
		candidate := filepath.Join(envPath, envFile)
		_ = godotenv.Overload(candidate) // Overload lets later files override earlier ones
	}
}

// ChdirRepoRoot changes the current working directory to the repository root
func ChdirRepoRoot() {
	cwd, _ := os.Getwd()
	for range 5 {
		if _, err := os.Stat(filepath.Join(cwd, "config")); err == nil {
			_ = os.Chdir(cwd)
			return
		}
		cwd = filepath.Dir(cwd)
	}
}

// DSN returns the database connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// MinDust returns the dust floor as a decimal
func (c *DiscoveryConfig) MinDust() decimal.Decimal {
	return decimal.NewFromFloat(c.MinDustUSD)
}

// ParseReserves converts the configured reserves into wei amounts keyed by chain.
// Keys may be CAIP-2 identifiers or bare chain ids.
func (c *TransferConfig) ParseReserves() (map[domain.Chain]*big.Int, error) {
	reserves := make(map[domain.Chain]*big.Int, len(c.Reserves))
	for key, value := range c.Reserves {
		chain, err := domain.ParseChain(key)
		if err != nil {
			return nil, fmt.Errorf("invalid reserve chain %q: %w", key, err)
		}
		amount, ok := new(big.Int).SetString(strings.TrimSpace(value), 10)
		if !ok || amount.Sign() < 0 {
			return nil, fmt.Errorf("invalid reserve amount %q for chain %s", value, chain)
		}
		reserves[chain] = amount
	}
	return reserves, nil
}

// ParseRPCURLs converts an RPC URL map into one keyed by chain
func ParseRPCURLs(raw map[string]string) (map[domain.Chain]string, error) {
	urls := make(map[domain.Chain]string, len(raw))
	for key, url := range raw {
		chain, err := domain.ParseChain(key)
		if err != nil {
			return nil, fmt.Errorf("invalid rpc chain %q: %w", key, err)
		}
		urls[chain] = url
	}
	return urls, nil
}

// ParseChains parses a list of chain identifiers
func ParseChains(raw []string) ([]domain.Chain, error) {
	chains := make([]domain.Chain, 0, len(raw))
	for _, s := range raw {
		chain, err := domain.ParseChain(s)
		if err != nil {
			return nil, err
		}
		chains = append(chains, chain)
	}
	return chains, nil
}
