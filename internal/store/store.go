package store

import (
	"context"
	"time"

	"github.com/feral-file/ff-token-sweeper/internal/store/schema"
)

// Store defines the interface for database operations
//
//go:generate mockgen -source=store.go -destination=../mocks/store.go -package=mocks -mock_names=Store=MockStore
type Store interface {
	// GetBalanceSnapshot retrieves the snapshot for a wallet on a chain, nil if none exists
	GetBalanceSnapshot(ctx context.Context, walletAddress string, chain string) (*schema.BalanceSnapshot, error)
	// UpsertBalanceSnapshot creates or replaces the snapshot for a wallet on a chain
	UpsertBalanceSnapshot(ctx context.Context, snapshot *schema.BalanceSnapshot) error
	// DeleteOldestBalanceSnapshots deletes up to limit snapshots with the oldest stored_at
	DeleteOldestBalanceSnapshots(ctx context.Context, limit int) (int64, error)
	// DeleteBalanceSnapshotsBefore deletes snapshots stored before the given time
	DeleteBalanceSnapshotsBefore(ctx context.Context, before time.Time) (int64, error)
	// DeleteBalanceSnapshotsBelowVersion deletes snapshots written under an older cache version
	DeleteBalanceSnapshotsBelowVersion(ctx context.Context, version int64) (int64, error)
	// CountBalanceSnapshots returns the number of stored snapshots
	CountBalanceSnapshots(ctx context.Context) (int64, error)

	// GetKeyValue retrieves a value by key, empty if the key does not exist
	GetKeyValue(ctx context.Context, key string) (string, error)
	// SetKeyValue sets a key-value pair
	SetKeyValue(ctx context.Context, key string, value string) error
	// IncrementCounter atomically increments an integer value and returns the new value.
	// A missing counter is treated as base.
	IncrementCounter(ctx context.Context, key string, base int64) (int64, error)
}
