package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/feral-file/ff-token-sweeper/internal/store/schema"
)

type pgStore struct {
	db *gorm.DB
}

// NewPGStore creates a new PostgreSQL store instance
func NewPGStore(db *gorm.DB) Store {
	return &pgStore{db: db}
}

// ConfigureConnectionPool configures the connection pool settings for a GORM database connection.
// It accesses the underlying *sql.DB and sets the pool configuration.
// If any of the pool settings are 0 or empty, reasonable defaults are used:
//   - MaxOpenConns: 20 (if 0)
//   - MaxIdleConns: 5 (if 0)
//   - ConnMaxLifetime: 5 minutes (if 0)
//   - ConnMaxIdleTime: 10 minutes (if 0)
func ConfigureConnectionPool(db *gorm.DB, maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime =
		NormalizeConnectionPoolSettings(maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime)

	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)
	sqlDB.SetConnMaxIdleTime(connMaxIdleTime)

	return nil
}

// NormalizeConnectionPoolSettings applies defaults and clamps pool settings into safe values.
//
// Notes:
//   - database/sql treats MaxOpenConns=0 as "unlimited"
//   - database/sql treats MaxIdleConns=0 as "no idle connections"
func NormalizeConnectionPoolSettings(maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) (int, int, time.Duration, time.Duration) {
	if maxOpenConns == 0 {
		maxOpenConns = 20
	}
	if maxIdleConns == 0 {
		maxIdleConns = 5
	}
	if connMaxLifetime == 0 {
		connMaxLifetime = 5 * time.Minute
	}
	if connMaxIdleTime == 0 {
		connMaxIdleTime = 10 * time.Minute
	}

	// Ensure MaxIdleConns doesn't exceed MaxOpenConns
	if maxIdleConns > maxOpenConns {
		maxIdleConns = maxOpenConns
	}

	return maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime
}

// GetBalanceSnapshot retrieves the snapshot for a wallet on a chain
func (s *pgStore) GetBalanceSnapshot(ctx context.Context, walletAddress string, chain string) (*schema.BalanceSnapshot, error) {
	var snapshot schema.BalanceSnapshot
	err := s.db.WithContext(ctx).
		Where("wallet_address = ? AND chain = ?", walletAddress, chain).
		First(&snapshot).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get balance snapshot: %w", err)
	}

	return &snapshot, nil
}

// UpsertBalanceSnapshot creates or replaces the snapshot for a wallet on a chain
func (s *pgStore) UpsertBalanceSnapshot(ctx context.Context, snapshot *schema.BalanceSnapshot) error {
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "wallet_address"}, {Name: "chain"}},
			DoUpdates: clause.AssignmentColumns([]string{"tokens", "version", "stored_at"}),
		}).
		Create(snapshot).Error
	if err != nil {
		return fmt.Errorf("failed to upsert balance snapshot: %w", err)
	}

	return nil
}

// DeleteOldestBalanceSnapshots deletes up to limit snapshots with the oldest stored_at
func (s *pgStore) DeleteOldestBalanceSnapshots(ctx context.Context, limit int) (int64, error) {
	if limit <= 0 {
		return 0, nil
	}

	result := s.db.WithContext(ctx).Exec(`
		DELETE FROM balance_snapshots
		WHERE (wallet_address, chain) IN (
			SELECT wallet_address, chain
			FROM balance_snapshots
			ORDER BY stored_at ASC
			LIMIT ?
		)`, limit)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete oldest balance snapshots: %w", result.Error)
	}

	return result.RowsAffected, nil
}

// DeleteBalanceSnapshotsBefore deletes snapshots stored before the given time
func (s *pgStore) DeleteBalanceSnapshotsBefore(ctx context.Context, before time.Time) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("stored_at < ?", before).
		Delete(&schema.BalanceSnapshot{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete expired balance snapshots: %w", result.Error)
	}

	return result.RowsAffected, nil
}

// DeleteBalanceSnapshotsBelowVersion deletes snapshots written under an older cache version
func (s *pgStore) DeleteBalanceSnapshotsBelowVersion(ctx context.Context, version int64) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("version < ?", version).
		Delete(&schema.BalanceSnapshot{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete outdated balance snapshots: %w", result.Error)
	}

	return result.RowsAffected, nil
}

// CountBalanceSnapshots returns the number of stored snapshots
func (s *pgStore) CountBalanceSnapshots(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&schema.BalanceSnapshot{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count balance snapshots: %w", err)
	}

	return count, nil
}

// SetKeyValue sets a key-value pair in the key-value store
func (s *pgStore) SetKeyValue(ctx context.Context, key string, value string) error {
	kv := schema.KeyValueStore{
		Key:   key,
		Value: value,
	}

	err := s.db.WithContext(ctx).Save(&kv).Error
	if err != nil {
		return fmt.Errorf("failed to set key-value: %w", err)
	}

	return nil
}

// GetKeyValue retrieves a value by key from the key-value store
func (s *pgStore) GetKeyValue(ctx context.Context, key string) (string, error) {
	var kv schema.KeyValueStore
	err := s.db.WithContext(ctx).Where("key = ?", key).First(&kv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("failed to get key-value: %w", err)
	}

	return kv.Value, nil
}

// IncrementCounter atomically increments an integer value in the key-value store
func (s *pgStore) IncrementCounter(ctx context.Context, key string, base int64) (int64, error) {
	var value string
	err := s.db.WithContext(ctx).Raw(`
		INSERT INTO key_value_store (key, value, created_at, updated_at)
		VALUES (?, ?, now(), now())
		ON CONFLICT (key) DO UPDATE
		SET value = ((key_value_store.value)::bigint + 1)::text,
			updated_at = now()
		RETURNING value`, key, strconv.FormatInt(base+1, 10)).
		Scan(&value).Error
	if err != nil {
		return 0, fmt.Errorf("failed to increment counter: %w", err)
	}

	counter, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse counter: %w", err)
	}

	return counter, nil
}
