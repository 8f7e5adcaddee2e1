package balancecache_test

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-token-sweeper/internal/adapter"
	"github.com/feral-file/ff-token-sweeper/internal/balancecache"
	"github.com/feral-file/ff-token-sweeper/internal/domain"
	"github.com/feral-file/ff-token-sweeper/internal/logger"
	"github.com/feral-file/ff-token-sweeper/internal/mocks"
	"github.com/feral-file/ff-token-sweeper/internal/store/schema"
)

func TestMain(m *testing.M) {
	if err := logger.Initialize(logger.Config{Debug: false}); err != nil {
		panic(err)
	}
	m.Run()
}

const wallet = "0xAbCdEf0000000000000000000000000000000001"

var now = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

type cacheMocks struct {
	ctrl  *gomock.Controller
	store *mocks.MockStore
	clock *mocks.MockClock
}

func setupCache(t *testing.T) (balancecache.Cache, *cacheMocks) {
	ctrl := gomock.NewController(t)
	m := &cacheMocks{
		ctrl:  ctrl,
		store: mocks.NewMockStore(ctrl),
		clock: mocks.NewMockClock(ctrl),
	}
	m.clock.EXPECT().Now().Return(now).AnyTimes()
	m.clock.EXPECT().Since(gomock.Any()).DoAndReturn(func(t time.Time) time.Duration {
		return now.Sub(t)
	}).AnyTimes()

	c := balancecache.New(m.store, adapter.NewJSON(), m.clock, balancecache.Config{
		TTL:        15 * time.Minute,
		EvictBatch: 20,
	})
	return c, m
}

func sampleTokens() []domain.Token {
	value := decimal.RequireFromString("50")
	return []domain.Token{
		{
			Address:  domain.ETHEREUM_ZERO_ADDRESS,
			Symbol:   "ETH",
			Decimals: 18,
			Balance:  big.NewInt(3_000_000_000_000_000),
			IsNative: true,
		},
		{
			Address:     "0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48",
			Symbol:      "USDC",
			Decimals:    6,
			Balance:     big.NewInt(50_000_000),
			USDValue:    &value,
			SupportsERC: []string{"erc20"},
		},
	}
}

func snapshotRow(t *testing.T, version int64, storedAt time.Time) *schema.BalanceSnapshot {
	data, err := adapter.NewJSON().Marshal(sampleTokens())
	require.NoError(t, err)
	return &schema.BalanceSnapshot{
		WalletAddress: domain.NormalizeAddress(wallet),
		Chain:         string(domain.ChainEthereumMainnet),
		Tokens:        data,
		Version:       version,
		StoredAt:      storedAt,
	}
}

func TestCache_Get(t *testing.T) {
	tests := []struct {
		name       string
		version    string
		row        func(t *testing.T) *schema.BalanceSnapshot
		rowErr     error
		expectHit  bool
		expectRead bool
	}{
		{
			name:       "no snapshot",
			row:        func(t *testing.T) *schema.BalanceSnapshot { return nil },
			expectRead: true,
		},
		{
			name:       "fresh snapshot",
			row:        func(t *testing.T) *schema.BalanceSnapshot { return snapshotRow(t, 1, now.Add(-time.Minute)) },
			expectHit:  true,
			expectRead: true,
		},
		{
			name:       "expired snapshot",
			row:        func(t *testing.T) *schema.BalanceSnapshot { return snapshotRow(t, 1, now.Add(-15*time.Minute)) },
			expectRead: true,
		},
		{
			name:       "outdated version",
			version:    "2",
			row:        func(t *testing.T) *schema.BalanceSnapshot { return snapshotRow(t, 1, now) },
			expectRead: true,
		},
		{
			name:       "store error",
			row:        func(t *testing.T) *schema.BalanceSnapshot { return nil },
			rowErr:     errors.New("connection reset"),
			expectRead: true,
		},
		{
			name: "unreadable tokens",
			row: func(t *testing.T) *schema.BalanceSnapshot {
				row := snapshotRow(t, 1, now)
				row.Tokens = []byte(`{"not":"a list"}`)
				return row
			},
			expectRead: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, m := setupCache(t)
			ctx := context.Background()

			m.store.EXPECT().GetKeyValue(gomock.Any(), balancecache.VERSION_KEY).Return(tt.version, nil)
			if tt.expectRead {
				m.store.EXPECT().
					GetBalanceSnapshot(gomock.Any(), "0xabcdef0000000000000000000000000000000001", "eip155:1").
					Return(tt.row(t), tt.rowErr)
			}

			tokens, ok := c.Get(ctx, wallet, domain.ChainEthereumMainnet)
			assert.Equal(t, tt.expectHit, ok)
			if tt.expectHit {
				require.Len(t, tokens, 2)
				assert.Equal(t, "ETH", tokens[0].Symbol)
				assert.Equal(t, 0, tokens[0].Balance.Cmp(big.NewInt(3_000_000_000_000_000)))
				require.NotNil(t, tokens[1].USDValue)
				assert.True(t, tokens[1].USDValue.Equal(decimal.NewFromInt(50)))
			} else {
				assert.Nil(t, tokens)
			}
		})
	}
}

func TestCache_GetStaleIgnoresTTL(t *testing.T) {
	c, m := setupCache(t)
	ctx := context.Background()
	storedAt := now.Add(-2 * time.Hour)

	m.store.EXPECT().GetKeyValue(gomock.Any(), balancecache.VERSION_KEY).Return("", nil)
	m.store.EXPECT().GetBalanceSnapshot(gomock.Any(), gomock.Any(), gomock.Any()).Return(snapshotRow(t, 1, storedAt), nil)

	snapshot, ok := c.GetStale(ctx, wallet, domain.ChainEthereumMainnet)
	require.True(t, ok)
	assert.Len(t, snapshot.Tokens, 2)
	assert.Equal(t, storedAt, snapshot.StoredAt)
}

func TestCache_GetVersionError(t *testing.T) {
	c, m := setupCache(t)

	m.store.EXPECT().GetKeyValue(gomock.Any(), balancecache.VERSION_KEY).Return("", errors.New("db down"))

	_, ok := c.Get(context.Background(), wallet, domain.ChainEthereumMainnet)
	assert.False(t, ok)
}

func TestCache_Put(t *testing.T) {
	diskFull := fmt.Errorf("failed to upsert balance snapshot: %w", &pgconn.PgError{Code: "53100"})

	tests := []struct {
		name       string
		setupMocks func(m *cacheMocks)
	}{
		{
			name: "success",
			setupMocks: func(m *cacheMocks) {
				m.store.EXPECT().
					UpsertBalanceSnapshot(gomock.Any(), gomock.Any()).
					DoAndReturn(func(ctx context.Context, snapshot *schema.BalanceSnapshot) error {
						assert.Equal(t, "0xabcdef0000000000000000000000000000000001", snapshot.WalletAddress)
						assert.Equal(t, "eip155:1", snapshot.Chain)
						assert.Equal(t, int64(3), snapshot.Version)
						assert.Equal(t, now, snapshot.StoredAt)
						return nil
					})
			},
		},
		{
			name: "storage exhausted then retry succeeds",
			setupMocks: func(m *cacheMocks) {
				gomock.InOrder(
					m.store.EXPECT().UpsertBalanceSnapshot(gomock.Any(), gomock.Any()).Return(diskFull),
					m.store.EXPECT().DeleteOldestBalanceSnapshots(gomock.Any(), 20).Return(int64(20), nil),
					m.store.EXPECT().UpsertBalanceSnapshot(gomock.Any(), gomock.Any()).Return(nil),
				)
			},
		},
		{
			name: "storage exhausted twice is dropped",
			setupMocks: func(m *cacheMocks) {
				gomock.InOrder(
					m.store.EXPECT().UpsertBalanceSnapshot(gomock.Any(), gomock.Any()).Return(diskFull),
					m.store.EXPECT().DeleteOldestBalanceSnapshots(gomock.Any(), 20).Return(int64(20), nil),
					m.store.EXPECT().UpsertBalanceSnapshot(gomock.Any(), gomock.Any()).Return(diskFull),
				)
			},
		},
		{
			name: "eviction failure is dropped",
			setupMocks: func(m *cacheMocks) {
				gomock.InOrder(
					m.store.EXPECT().UpsertBalanceSnapshot(gomock.Any(), gomock.Any()).Return(diskFull),
					m.store.EXPECT().DeleteOldestBalanceSnapshots(gomock.Any(), 20).Return(int64(0), errors.New("db down")),
				)
			},
		},
		{
			name: "other failure does not evict",
			setupMocks: func(m *cacheMocks) {
				m.store.EXPECT().UpsertBalanceSnapshot(gomock.Any(), gomock.Any()).Return(errors.New("connection reset"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, m := setupCache(t)
			m.store.EXPECT().GetKeyValue(gomock.Any(), balancecache.VERSION_KEY).Return("3", nil)
			tt.setupMocks(m)

			assert.NotPanics(t, func() {
				c.Put(context.Background(), wallet, domain.ChainEthereumMainnet, sampleTokens())
			})
		})
	}
}

func TestCache_RoundTripAndInvalidate(t *testing.T) {
	c, m := setupCache(t)
	ctx := context.Background()

	version := balancecache.INITIAL_VERSION
	var stored *schema.BalanceSnapshot

	m.store.EXPECT().GetKeyValue(gomock.Any(), balancecache.VERSION_KEY).
		DoAndReturn(func(ctx context.Context, key string) (string, error) {
			return strconv.FormatInt(version, 10), nil
		}).AnyTimes()
	m.store.EXPECT().UpsertBalanceSnapshot(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, snapshot *schema.BalanceSnapshot) error {
			stored = snapshot
			return nil
		})
	m.store.EXPECT().GetBalanceSnapshot(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, w, chain string) (*schema.BalanceSnapshot, error) {
			return stored, nil
		}).AnyTimes()
	m.store.EXPECT().IncrementCounter(gomock.Any(), balancecache.VERSION_KEY, balancecache.INITIAL_VERSION).
		DoAndReturn(func(ctx context.Context, key string, base int64) (int64, error) {
			version++
			return version, nil
		})

	c.Put(ctx, wallet, domain.ChainEthereumMainnet, sampleTokens())

	tokens, ok := c.Get(ctx, wallet, domain.ChainEthereumMainnet)
	require.True(t, ok)
	assert.Len(t, tokens, 2)

	newVersion, err := c.InvalidateAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), newVersion)

	_, ok = c.Get(ctx, wallet, domain.ChainEthereumMainnet)
	assert.False(t, ok)
	_, ok = c.GetStale(ctx, wallet, domain.ChainEthereumMainnet)
	assert.False(t, ok)
}

func TestCache_PutEmptyList(t *testing.T) {
	c, m := setupCache(t)

	m.store.EXPECT().GetKeyValue(gomock.Any(), balancecache.VERSION_KEY).Return("", nil)
	m.store.EXPECT().UpsertBalanceSnapshot(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, snapshot *schema.BalanceSnapshot) error {
			assert.JSONEq(t, `[]`, string(snapshot.Tokens))
			assert.Equal(t, balancecache.INITIAL_VERSION, snapshot.Version)
			return nil
		})

	c.Put(context.Background(), wallet, domain.ChainEthereumMainnet, nil)
}
