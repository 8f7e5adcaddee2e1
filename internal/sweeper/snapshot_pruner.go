package sweeper

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/feral-file/ff-token-sweeper/internal/adapter"
	"github.com/feral-file/ff-token-sweeper/internal/balancecache"
	"github.com/feral-file/ff-token-sweeper/internal/logger"
	"github.com/feral-file/ff-token-sweeper/internal/metrics"
	"github.com/feral-file/ff-token-sweeper/internal/store"
)

const (
	DEFAULT_PRUNE_INTERVAL = time.Hour
	// DEFAULT_RETAIN_FOR keeps expired snapshots around for the stale fallback
	DEFAULT_RETAIN_FOR = 24 * time.Hour
	MAX_PRUNE_RETRIES  = 3

	// LAST_PRUNED_KEY records the completion time of the last prune cycle
	LAST_PRUNED_KEY = "snapshot_pruner_last_run"
)

// SnapshotPrunerConfig holds configuration for the balance snapshot pruner
type SnapshotPrunerConfig struct {
	Interval  time.Duration // Time to sleep between prune cycles
	RetainFor time.Duration // Snapshots older than this are deleted
	// RetryInterval is the initial backoff between failed deletes
	RetryInterval time.Duration
}

type snapshotPruner struct {
	*periodic
	config SnapshotPrunerConfig
	store  store.Store
	cache  balancecache.Cache
	clock  adapter.Clock
}

// NewSnapshotPruner creates a sweeper that deletes balance snapshots which can no
// longer be served: rows written under an invalidated cache version and rows older
// than the retention window
func NewSnapshotPruner(config SnapshotPrunerConfig, st store.Store, cache balancecache.Cache, clock adapter.Clock) Sweeper {
	if config.Interval <= 0 {
		config.Interval = DEFAULT_PRUNE_INTERVAL
	}
	if config.RetainFor <= 0 {
		config.RetainFor = DEFAULT_RETAIN_FOR
	}
	if config.RetryInterval <= 0 {
		config.RetryInterval = time.Second
	}

	p := &snapshotPruner{
		config: config,
		store:  st,
		cache:  cache,
		clock:  clock,
	}
	p.periodic = newPeriodic("snapshot-pruner", config.Interval, clock, p.prune)
	return p
}

// prune runs a single prune cycle
func (p *snapshotPruner) prune(ctx context.Context) error {
	version, err := p.cache.Version(ctx)
	if err != nil {
		return fmt.Errorf("failed to read balance cache version: %w", err)
	}

	var superseded, expired int64
	err = p.withRetry(ctx, func() error {
		n, err := p.store.DeleteBalanceSnapshotsBelowVersion(ctx, version)
		superseded = n
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to delete superseded snapshots: %w", err)
	}

	cutoff := p.clock.Now().Add(-p.config.RetainFor)
	err = p.withRetry(ctx, func() error {
		n, err := p.store.DeleteBalanceSnapshotsBefore(ctx, cutoff)
		expired = n
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to delete expired snapshots: %w", err)
	}

	logger.InfoCtx(ctx, "Pruned balance snapshots",
		zap.Int64("version", version),
		zap.Int64("superseded", superseded),
		zap.Int64("expired", expired),
		zap.Time("cutoff", cutoff))

	p.record(ctx)
	return nil
}

// record publishes the remaining snapshot count and the cycle time.
// Failures here do not fail the cycle.
func (p *snapshotPruner) record(ctx context.Context) {
	remaining, err := p.store.CountBalanceSnapshots(ctx)
	if err != nil {
		logger.WarnCtx(ctx, "Failed to count balance snapshots", zap.Error(err))
	} else {
		metrics.StoredSnapshots.Set(float64(remaining))
	}

	if err := p.store.SetKeyValue(ctx, LAST_PRUNED_KEY, p.clock.Now().UTC().Format(time.RFC3339)); err != nil {
		logger.WarnCtx(ctx, "Failed to record prune time", zap.Error(err))
	}
}

// withRetry retries a delete with exponential backoff
func (p *snapshotPruner) withRetry(ctx context.Context, operation func() error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.config.RetryInterval
	b.Multiplier = 2.0

	notifyOnError := func(err error, duration time.Duration) {
		logger.WarnCtx(ctx, "Snapshot delete failed, retrying",
			zap.Error(err),
			zap.Duration("next_retry_in", duration))
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(b, MAX_PRUNE_RETRIES), ctx)
	return backoff.RetryNotify(operation, policy, notifyOnError)
}
