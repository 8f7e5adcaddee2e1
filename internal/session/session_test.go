package session_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-token-sweeper/internal/domain"
	"github.com/feral-file/ff-token-sweeper/internal/logger"
	"github.com/feral-file/ff-token-sweeper/internal/session"
)

func TestMain(m *testing.M) {
	if err := logger.Initialize(logger.Config{Debug: false}); err != nil {
		panic(err)
	}
	m.Run()
}

const (
	walletA = "0xAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"
	walletB = "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
)

func TestRun_DiscardsSupersededResult(t *testing.T) {
	tests := []struct {
		name    string
		change  func(tracker *session.Tracker)
		wantErr error
		want    string
	}{
		{
			name:   "selection unchanged",
			change: func(*session.Tracker) {},
			want:   "tokens",
		},
		{
			name: "wallet changed mid-flight",
			change: func(tracker *session.Tracker) {
				tracker.Begin(context.Background(), "client", walletB, domain.ChainEthereumMainnet)
			},
			wantErr: session.ErrStale,
		},
		{
			name: "chain changed mid-flight",
			change: func(tracker *session.Tracker) {
				tracker.Begin(context.Background(), "client", walletA, domain.ChainBase)
			},
			wantErr: session.ErrStale,
		},
		{
			name: "same selection begun again",
			change: func(tracker *session.Tracker) {
				tracker.Begin(context.Background(), "client", walletA, domain.ChainEthereumMainnet)
			},
			want: "tokens",
		},
		{
			name: "other client changed",
			change: func(tracker *session.Tracker) {
				tracker.Begin(context.Background(), "other", walletB, domain.ChainBase)
			},
			want: "tokens",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracker := session.NewTracker()
			ticket := tracker.Begin(context.Background(), "client", walletA, domain.ChainEthereumMainnet)

			result, err := session.Run(ticket, func(ctx context.Context) (string, error) {
				tt.change(tracker)
				return "tokens", nil
			})

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, result)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, result)
		})
	}
}

func TestBegin_CancelsSupersededTicket(t *testing.T) {
	tracker := session.NewTracker()

	first := tracker.Begin(context.Background(), "client", walletA, domain.ChainEthereumMainnet)
	assert.True(t, first.Valid())
	assert.NoError(t, first.Context().Err())

	second := tracker.Begin(context.Background(), "client", walletB, domain.ChainEthereumMainnet)
	assert.False(t, first.Valid())
	assert.ErrorIs(t, first.Context().Err(), context.Canceled)
	assert.True(t, second.Valid())
	assert.NoError(t, second.Context().Err())

	// switching back is another change
	third := tracker.Begin(context.Background(), "client", walletA, domain.ChainEthereumMainnet)
	assert.False(t, second.Valid())
	assert.True(t, third.Valid())
	assert.False(t, first.Valid())
}

func TestBegin_SameSelectionRunsSideBySide(t *testing.T) {
	tracker := session.NewTracker()

	listing := tracker.Begin(context.Background(), "client", walletA, domain.ChainEthereumMainnet)
	build := tracker.Begin(context.Background(), "client", strings.ToLower(walletA), domain.ChainEthereumMainnet)

	assert.True(t, listing.Valid())
	assert.True(t, build.Valid())
	assert.NoError(t, listing.Context().Err())

	// Finishing one operation leaves the other running
	tracker.Finish(build)
	assert.ErrorIs(t, build.Context().Err(), context.Canceled)
	assert.True(t, listing.Valid())
	assert.NoError(t, listing.Context().Err())

	result, err := session.Run(listing, func(ctx context.Context) (int, error) {
		return 3, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, result)
}

func TestRun_PropagatesErrorOfActiveTicket(t *testing.T) {
	tracker := session.NewTracker()
	ticket := tracker.Begin(context.Background(), "client", walletA, domain.ChainEthereumMainnet)

	boom := errors.New("boom")
	_, err := session.Run(ticket, func(ctx context.Context) (int, error) {
		return 0, boom
	})
	assert.ErrorIs(t, err, boom)
}

func TestFinish(t *testing.T) {
	tracker := session.NewTracker()

	old := tracker.Begin(context.Background(), "client", walletA, domain.ChainEthereumMainnet)
	current := tracker.Begin(context.Background(), "client", walletB, domain.ChainEthereumMainnet)

	// A superseded ticket must not release the newer selection
	tracker.Finish(old)
	assert.True(t, current.Valid())

	tracker.Finish(current)
	assert.False(t, current.Valid())

	// Slot state is gone, so a superseded ticket never becomes valid again
	next := tracker.Begin(context.Background(), "client", walletA, domain.ChainEthereumMainnet)
	assert.True(t, next.Valid())
	assert.False(t, old.Valid())
}

func TestZeroTicketIsNeverValid(t *testing.T) {
	assert.False(t, session.Ticket{}.Valid())
}
