package balancecache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/feral-file/ff-token-sweeper/internal/adapter"
	"github.com/feral-file/ff-token-sweeper/internal/domain"
	"github.com/feral-file/ff-token-sweeper/internal/logger"
	"github.com/feral-file/ff-token-sweeper/internal/metrics"
	"github.com/feral-file/ff-token-sweeper/internal/store"
	"github.com/feral-file/ff-token-sweeper/internal/store/schema"
)

// VERSION_KEY is the key_value_store key holding the global balance cache version
const VERSION_KEY = "balance_cache:version"

// INITIAL_VERSION is the version in effect before the first invalidation
const INITIAL_VERSION int64 = 1

// PostgreSQL error codes treated as storage exhaustion
const (
	pgErrDiskFull    = "53100" // disk_full
	pgErrOutOfMemory = "53200" // out_of_memory
)

// Snapshot is a token list read back from the cache
type Snapshot struct {
	Tokens   []domain.Token
	StoredAt time.Time
}

// Cache is the durable per-wallet, per-chain balance cache
//
//go:generate mockgen -source=cache.go -destination=../mocks/balance_cache.go -package=mocks -mock_names=Cache=MockBalanceCache
type Cache interface {
	// Get returns the tokens stored for the wallet and chain if they are fresh
	Get(ctx context.Context, walletAddress string, chain domain.Chain) ([]domain.Token, bool)
	// GetStale returns the tokens stored under the current version regardless of age
	GetStale(ctx context.Context, walletAddress string, chain domain.Chain) (*Snapshot, bool)
	// Put stores the tokens. Failures are logged and dropped.
	Put(ctx context.Context, walletAddress string, chain domain.Chain, tokens []domain.Token)
	// InvalidateAll bumps the global version and returns it
	InvalidateAll(ctx context.Context) (int64, error)
	// Version returns the current global version
	Version(ctx context.Context) (int64, error)
}

// Config holds the balance cache configuration
type Config struct {
	TTL        time.Duration
	EvictBatch int
}

type cache struct {
	store store.Store
	json  adapter.JSON
	clock adapter.Clock
	cfg   Config
}

// New creates a balance cache backed by the store
func New(st store.Store, json adapter.JSON, clock adapter.Clock, cfg Config) Cache {
	return &cache{
		store: st,
		json:  json,
		clock: clock,
		cfg:   cfg,
	}
}

func (c *cache) Get(ctx context.Context, walletAddress string, chain domain.Chain) ([]domain.Token, bool) {
	snapshot, ok := c.current(ctx, walletAddress, chain)
	if !ok {
		metrics.CacheLookups.WithLabelValues("balance", "miss").Inc()
		return nil, false
	}

	if c.clock.Since(snapshot.StoredAt) >= c.cfg.TTL {
		metrics.CacheLookups.WithLabelValues("balance", "expired").Inc()
		return nil, false
	}

	metrics.CacheLookups.WithLabelValues("balance", "hit").Inc()
	return snapshot.Tokens, true
}

func (c *cache) GetStale(ctx context.Context, walletAddress string, chain domain.Chain) (*Snapshot, bool) {
	return c.current(ctx, walletAddress, chain)
}

// current reads the snapshot and checks it against the global version
func (c *cache) current(ctx context.Context, walletAddress string, chain domain.Chain) (*Snapshot, bool) {
	version, err := c.Version(ctx)
	if err != nil {
		logger.WarnCtx(ctx, "Failed to read balance cache version", zap.Error(err))
		return nil, false
	}

	row, err := c.store.GetBalanceSnapshot(ctx, domain.NormalizeAddress(walletAddress), string(chain))
	if err != nil {
		logger.WarnCtx(ctx, "Failed to read balance snapshot",
			zap.String("wallet", walletAddress),
			zap.String("chain", string(chain)),
			zap.Error(err))
		return nil, false
	}
	if row == nil || row.Version != version {
		return nil, false
	}

	var tokens []domain.Token
	if err := c.json.Unmarshal(row.Tokens, &tokens); err != nil {
		logger.WarnCtx(ctx, "Discarding unreadable balance snapshot",
			zap.String("wallet", walletAddress),
			zap.String("chain", string(chain)),
			zap.Error(err))
		return nil, false
	}
	if tokens == nil {
		tokens = []domain.Token{}
	}

	return &Snapshot{Tokens: tokens, StoredAt: row.StoredAt}, true
}

func (c *cache) Put(ctx context.Context, walletAddress string, chain domain.Chain, tokens []domain.Token) {
	if tokens == nil {
		tokens = []domain.Token{}
	}

	data, err := c.json.Marshal(tokens)
	if err != nil {
		logger.WarnCtx(ctx, "Failed to encode balance snapshot", zap.Error(err))
		return
	}

	version, err := c.Version(ctx)
	if err != nil {
		logger.WarnCtx(ctx, "Failed to read balance cache version", zap.Error(err))
		return
	}

	snapshot := &schema.BalanceSnapshot{
		WalletAddress: domain.NormalizeAddress(walletAddress),
		Chain:         string(chain),
		Tokens:        datatypes.JSON(data),
		Version:       version,
		StoredAt:      c.clock.Now().UTC(),
	}

	err = c.store.UpsertBalanceSnapshot(ctx, snapshot)
	if err == nil {
		return
	}

	if !isStorageExhausted(err) {
		logger.WarnCtx(ctx, "Dropping balance snapshot write", zap.Error(err))
		return
	}

	evicted, evictErr := c.store.DeleteOldestBalanceSnapshots(ctx, c.cfg.EvictBatch)
	if evictErr != nil {
		logger.WarnCtx(ctx, "Failed to evict balance snapshots", zap.Error(evictErr))
		return
	}
	metrics.CacheEvictions.Add(float64(evicted))
	logger.InfoCtx(ctx, "Evicted oldest balance snapshots after storage exhaustion", zap.Int64("evicted", evicted))

	if err := c.store.UpsertBalanceSnapshot(ctx, snapshot); err != nil {
		logger.WarnCtx(ctx, "Dropping balance snapshot write after eviction", zap.Error(err))
	}
}

func (c *cache) InvalidateAll(ctx context.Context) (int64, error) {
	version, err := c.store.IncrementCounter(ctx, VERSION_KEY, INITIAL_VERSION)
	if err != nil {
		return 0, fmt.Errorf("failed to bump balance cache version: %w", err)
	}

	metrics.CacheInvalidations.WithLabelValues("balance").Inc()
	logger.InfoCtx(ctx, "Balance cache invalidated", zap.Int64("version", version))
	return version, nil
}

func (c *cache) Version(ctx context.Context) (int64, error) {
	value, err := c.store.GetKeyValue(ctx, VERSION_KEY)
	if err != nil {
		return 0, err
	}
	if value == "" {
		return INITIAL_VERSION, nil
	}

	version, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid balance cache version %q: %w", value, err)
	}
	return version, nil
}

// isStorageExhausted reports whether a write failed because the database ran out of room
func isStorageExhausted(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgErrDiskFull, pgErrOutOfMemory:
			return true
		}
	}
	return false
}
