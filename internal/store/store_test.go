package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/feral-file/ff-token-sweeper/internal/store/schema"
)

// buildTestSnapshot creates a test balance snapshot
func buildTestSnapshot(wallet, chain string, version int64, storedAt time.Time) *schema.BalanceSnapshot {
	return &schema.BalanceSnapshot{
		WalletAddress: wallet,
		Chain:         chain,
		Tokens:        datatypes.JSON(`[{"address":"0x0000000000000000000000000000000000000000","symbol":"ETH","balance":"1000"}]`),
		Version:       version,
		StoredAt:      storedAt.UTC().Truncate(time.Microsecond),
	}
}

// RunStoreTests runs all store tests against the given implementation
func RunStoreTests(t *testing.T, initDB func(t *testing.T) Store, cleanupDB func(t *testing.T)) {
	tests := []struct {
		name string
		fn   func(t *testing.T, store Store)
	}{
		{"BalanceSnapshotRoundTrip", testBalanceSnapshotRoundTrip},
		{"BalanceSnapshotUpsertReplaces", testBalanceSnapshotUpsertReplaces},
		{"DeleteOldestBalanceSnapshots", testDeleteOldestBalanceSnapshots},
		{"DeleteBalanceSnapshotsBefore", testDeleteBalanceSnapshotsBefore},
		{"DeleteBalanceSnapshotsBelowVersion", testDeleteBalanceSnapshotsBelowVersion},
		{"KeyValue", testKeyValue},
		{"IncrementCounter", testIncrementCounter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := initDB(t)
			defer cleanupDB(t)
			tt.fn(t, store)
		})
	}
}

func testBalanceSnapshotRoundTrip(t *testing.T, store Store) {
	ctx := context.Background()

	missing, err := store.GetBalanceSnapshot(ctx, "0xwallet", "eip155:1")
	require.NoError(t, err)
	assert.Nil(t, missing)

	snapshot := buildTestSnapshot("0xwallet", "eip155:1", 1, time.Now())
	require.NoError(t, store.UpsertBalanceSnapshot(ctx, snapshot))

	got, err := store.GetBalanceSnapshot(ctx, "0xwallet", "eip155:1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, int64(1), got.Version)
	assert.True(t, snapshot.StoredAt.Equal(got.StoredAt))
	assert.JSONEq(t, string(snapshot.Tokens), string(got.Tokens))

	other, err := store.GetBalanceSnapshot(ctx, "0xwallet", "eip155:8453")
	require.NoError(t, err)
	assert.Nil(t, other)
}

func testBalanceSnapshotUpsertReplaces(t *testing.T, store Store) {
	ctx := context.Background()

	require.NoError(t, store.UpsertBalanceSnapshot(ctx, buildTestSnapshot("0xwallet", "eip155:1", 1, time.Now().Add(-time.Hour))))

	replacement := buildTestSnapshot("0xwallet", "eip155:1", 2, time.Now())
	replacement.Tokens = datatypes.JSON(`[]`)
	require.NoError(t, store.UpsertBalanceSnapshot(ctx, replacement))

	got, err := store.GetBalanceSnapshot(ctx, "0xwallet", "eip155:1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, int64(2), got.Version)
	assert.JSONEq(t, `[]`, string(got.Tokens))

	count, err := store.CountBalanceSnapshots(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func testDeleteOldestBalanceSnapshots(t *testing.T, store Store) {
	ctx := context.Background()
	now := time.Now()

	for i := 0; i < 5; i++ {
		wallet := fmt.Sprintf("0xwallet%d", i)
		require.NoError(t, store.UpsertBalanceSnapshot(ctx, buildTestSnapshot(wallet, "eip155:1", 1, now.Add(time.Duration(i)*time.Minute))))
	}

	deleted, err := store.DeleteOldestBalanceSnapshots(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	for i, expected := range []bool{false, false, true, true, true} {
		got, err := store.GetBalanceSnapshot(ctx, fmt.Sprintf("0xwallet%d", i), "eip155:1")
		require.NoError(t, err)
		assert.Equal(t, expected, got != nil, "wallet %d", i)
	}

	deleted, err = store.DeleteOldestBalanceSnapshots(ctx, 0)
	require.NoError(t, err)
	assert.Zero(t, deleted)
}

func testDeleteBalanceSnapshotsBefore(t *testing.T, store Store) {
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, store.UpsertBalanceSnapshot(ctx, buildTestSnapshot("0xold", "eip155:1", 1, now.Add(-48*time.Hour))))
	require.NoError(t, store.UpsertBalanceSnapshot(ctx, buildTestSnapshot("0xnew", "eip155:1", 1, now)))

	deleted, err := store.DeleteBalanceSnapshotsBefore(ctx, now.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	count, err := store.CountBalanceSnapshots(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func testDeleteBalanceSnapshotsBelowVersion(t *testing.T, store Store) {
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, store.UpsertBalanceSnapshot(ctx, buildTestSnapshot("0xa", "eip155:1", 1, now)))
	require.NoError(t, store.UpsertBalanceSnapshot(ctx, buildTestSnapshot("0xb", "eip155:1", 2, now)))
	require.NoError(t, store.UpsertBalanceSnapshot(ctx, buildTestSnapshot("0xc", "eip155:1", 3, now)))

	deleted, err := store.DeleteBalanceSnapshotsBelowVersion(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)
}

func testKeyValue(t *testing.T, store Store) {
	ctx := context.Background()

	value, err := store.GetKeyValue(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, value)

	require.NoError(t, store.SetKeyValue(ctx, "balance_cache:version", "7"))
	value, err = store.GetKeyValue(ctx, "balance_cache:version")
	require.NoError(t, err)
	assert.Equal(t, "7", value)

	require.NoError(t, store.SetKeyValue(ctx, "balance_cache:version", "8"))
	value, err = store.GetKeyValue(ctx, "balance_cache:version")
	require.NoError(t, err)
	assert.Equal(t, "8", value)
}

func testIncrementCounter(t *testing.T, store Store) {
	ctx := context.Background()

	v, err := store.IncrementCounter(ctx, "counter", 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), v)

	v, err = store.IncrementCounter(ctx, "counter", 1)
	require.NoError(t, err)
	assert.Equal(t, int64(3), v)

	value, err := store.GetKeyValue(ctx, "counter")
	require.NoError(t, err)
	assert.Equal(t, "3", value)
}

func TestNormalizeConnectionPoolSettings(t *testing.T) {
	open, idle, lifetime, idleTime := NormalizeConnectionPoolSettings(0, 0, 0, 0)
	assert.Equal(t, 20, open)
	assert.Equal(t, 5, idle)
	assert.Equal(t, 5*time.Minute, lifetime)
	assert.Equal(t, 10*time.Minute, idleTime)

	open, idle, _, _ = NormalizeConnectionPoolSettings(4, 10, time.Minute, time.Minute)
	assert.Equal(t, 4, open)
	assert.Equal(t, 4, idle)
}
