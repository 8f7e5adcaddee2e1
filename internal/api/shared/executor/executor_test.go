package executor_test

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-token-sweeper/internal/api/shared/dto"
	apierrors "github.com/feral-file/ff-token-sweeper/internal/api/shared/errors"
	"github.com/feral-file/ff-token-sweeper/internal/api/shared/executor"
	"github.com/feral-file/ff-token-sweeper/internal/discovery"
	"github.com/feral-file/ff-token-sweeper/internal/domain"
	"github.com/feral-file/ff-token-sweeper/internal/logger"
	"github.com/feral-file/ff-token-sweeper/internal/messaging"
	"github.com/feral-file/ff-token-sweeper/internal/mocks"
	"github.com/feral-file/ff-token-sweeper/internal/session"
	"github.com/feral-file/ff-token-sweeper/internal/transfer"
)

func TestMain(m *testing.M) {
	if err := logger.Initialize(logger.Config{Debug: false}); err != nil {
		panic(err)
	}
	m.Run()
}

const (
	walletA     = "0x1111111111111111111111111111111111111111"
	walletB     = "0x3333333333333333333333333333333333333333"
	destination = "0x2222222222222222222222222222222222222222"
)

type testExecutor struct {
	exec      executor.Executor
	pipeline  *mocks.MockPipeline
	builder   *mocks.MockBuilder
	publisher *mocks.MockPublisher
	balances  *mocks.MockBalanceCache
	verified  *mocks.MockVerifiedRegistry
}

func setupExecutor(t *testing.T, withPublisher bool) *testExecutor {
	ctrl := gomock.NewController(t)

	te := &testExecutor{
		pipeline:  mocks.NewMockPipeline(ctrl),
		builder:   mocks.NewMockBuilder(ctrl),
		publisher: mocks.NewMockPublisher(ctrl),
		balances:  mocks.NewMockBalanceCache(ctrl),
		verified:  mocks.NewMockVerifiedRegistry(ctrl),
	}

	var publisher messaging.Publisher
	if withPublisher {
		publisher = te.publisher
	}

	te.exec = executor.NewExecutor(te.pipeline, te.builder, publisher, te.balances, te.verified, session.NewTracker())
	return te
}

func sampleBatch() *domain.TransferBatch {
	return &domain.TransferBatch{
		ID:          "batch-1",
		Chain:       domain.ChainEthereumMainnet,
		Sender:      walletA,
		Destination: destination,
		Calls: []domain.TransferCall{
			{
				To:          destination,
				Value:       big.NewInt(1_000),
				Kind:        domain.TransferKindNative,
				Description: "Transfer 0.000000000000001 ETH",
				USDValue:    decimal.RequireFromString("0.004"),
			},
		},
		Precheck:  domain.PrecheckResult{TotalCandidates: 1, FailedCount: 1},
		CreatedAt: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestGetWalletTokens(t *testing.T) {
	te := setupExecutor(t, false)

	value := decimal.RequireFromString("12.345")
	storedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	te.pipeline.EXPECT().
		Discover(gomock.Any(), walletA, domain.ChainBase).
		Return(&discovery.Result{
			Tokens: []domain.Token{
				{Address: "0xaaaa", Symbol: "USDC", Decimals: 6, Balance: big.NewInt(12_345_000), USDValue: &value},
			},
			FromCache: true,
			StoredAt:  storedAt,
		}, nil)

	resp, err := te.exec.GetWalletTokens(context.Background(), walletA, domain.ChainBase, "")
	require.NoError(t, err)

	assert.Equal(t, domain.ChainBase, resp.Chain)
	assert.True(t, resp.FromCache)
	require.NotNil(t, resp.StoredAt)
	assert.Equal(t, storedAt, *resp.StoredAt)
	require.Len(t, resp.Tokens, 1)
	assert.Equal(t, "12.345", resp.Tokens[0].Amount)
}

func TestGetWalletTokens_PropagatesErrors(t *testing.T) {
	te := setupExecutor(t, false)

	te.pipeline.EXPECT().
		Discover(gomock.Any(), walletA, domain.ChainEthereumMainnet).
		Return(nil, domain.ErrAuthExhausted)

	_, err := te.exec.GetWalletTokens(context.Background(), walletA, domain.ChainEthereumMainnet, "tab")
	assert.ErrorIs(t, err, domain.ErrAuthExhausted)
}

func TestGetWalletTokens_SupersededSelection(t *testing.T) {
	te := setupExecutor(t, false)

	started := make(chan struct{})
	te.pipeline.EXPECT().
		Discover(gomock.Any(), walletA, domain.ChainEthereumMainnet).
		DoAndReturn(func(ctx context.Context, _ string, _ domain.Chain) (*discovery.Result, error) {
			close(started)
			<-ctx.Done()
			return &discovery.Result{NoTokens: true}, nil
		})
	te.pipeline.EXPECT().
		Discover(gomock.Any(), walletB, domain.ChainEthereumMainnet).
		Return(&discovery.Result{NoTokens: true}, nil)

	errCh := make(chan error, 1)
	go func() {
		_, err := te.exec.GetWalletTokens(context.Background(), walletA, domain.ChainEthereumMainnet, "tab")
		errCh <- err
	}()

	<-started
	resp, err := te.exec.GetWalletTokens(context.Background(), walletB, domain.ChainEthereumMainnet, "tab")
	require.NoError(t, err)
	assert.True(t, resp.NoTokens)

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, session.ErrStale)
	case <-time.After(5 * time.Second):
		t.Fatal("superseded request did not return")
	}
}

func TestGetWalletTokens_SameSelectionIsNotSuperseded(t *testing.T) {
	te := setupExecutor(t, false)

	started := make(chan struct{})
	release := make(chan struct{})
	te.pipeline.EXPECT().
		Discover(gomock.Any(), walletA, domain.ChainEthereumMainnet).
		DoAndReturn(func(ctx context.Context, _ string, _ domain.Chain) (*discovery.Result, error) {
			close(started)
			select {
			case <-release:
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			return &discovery.Result{NoTokens: true}, nil
		})
	te.pipeline.EXPECT().
		Discover(gomock.Any(), walletA, domain.ChainEthereumMainnet).
		Return(&discovery.Result{NoTokens: true}, nil)

	errCh := make(chan error, 1)
	go func() {
		_, err := te.exec.GetWalletTokens(context.Background(), walletA, domain.ChainEthereumMainnet, "tab")
		errCh <- err
	}()

	<-started
	_, err := te.exec.GetWalletTokens(context.Background(), walletA, domain.ChainEthereumMainnet, "tab")
	require.NoError(t, err)
	close(release)

	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("first request did not return")
	}
}

func TestBuildTransfers(t *testing.T) {
	validRequest := func(submit bool) *dto.BuildTransfersRequest {
		return &dto.BuildTransfersRequest{
			Chain:       "1",
			Sender:      walletA,
			Destination: destination,
			Submit:      submit,
		}
	}

	tests := []struct {
		name          string
		withPublisher bool
		req           *dto.BuildTransfersRequest
		setup         func(te *testExecutor)
		expectedCode  apierrors.ErrorCode
		expectedErr   error
		validate      func(t *testing.T, resp *dto.TransferBatchResponse)
	}{
		{
			name: "missing sender",
			req:  &dto.BuildTransfersRequest{Chain: "1", Destination: destination},
			setup: func(*testExecutor) {
			},
			expectedCode: apierrors.ErrCodeValidationFailed,
		},
		{
			name: "invalid chain",
			req:  &dto.BuildTransfersRequest{Chain: "solana:mainnet", Sender: walletA, Destination: destination},
			setup: func(*testExecutor) {
			},
			expectedCode: apierrors.ErrCodeValidationFailed,
		},
		{
			name:         "submit without publisher",
			req:          validRequest(true),
			setup:        func(*testExecutor) {},
			expectedCode: apierrors.ErrCodeServiceError,
		},
		{
			name: "built without submitting",
			req:  validRequest(false),
			setup: func(te *testExecutor) {
				tokens := []domain.Token{{Address: domain.NATIVE_SENTINEL_ADDRESS, IsNative: true, Balance: big.NewInt(5)}}
				te.pipeline.EXPECT().
					Discover(gomock.Any(), walletA, domain.ChainEthereumMainnet).
					Return(&discovery.Result{Tokens: tokens, Degraded: true}, nil)
				te.builder.EXPECT().
					Build(gomock.Any(), transfer.Request{
						Chain:       domain.ChainEthereumMainnet,
						Sender:      walletA,
						Destination: destination,
						Tokens:      tokens,
					}).
					Return(sampleBatch(), nil)
			},
			validate: func(t *testing.T, resp *dto.TransferBatchResponse) {
				assert.Equal(t, "batch-1", resp.ID)
				assert.False(t, resp.Submitted)
				assert.True(t, resp.Degraded)
				require.Len(t, resp.Calls, 1)
				assert.Equal(t, "1000", resp.Calls[0].Value)
				assert.Equal(t, "0x", resp.Calls[0].Data)
				assert.Equal(t, "0.00", resp.Calls[0].USDValue)
				assert.Equal(t, 1, resp.Precheck.FailedCount)
			},
		},
		{
			name:          "built and submitted",
			withPublisher: true,
			req:           validRequest(true),
			setup: func(te *testExecutor) {
				batch := sampleBatch()
				te.pipeline.EXPECT().
					Discover(gomock.Any(), walletA, domain.ChainEthereumMainnet).
					Return(&discovery.Result{}, nil)
				te.builder.EXPECT().Build(gomock.Any(), gomock.Any()).Return(batch, nil)
				te.publisher.EXPECT().PublishBatch(gomock.Any(), batch).Return(nil)
			},
			validate: func(t *testing.T, resp *dto.TransferBatchResponse) {
				assert.True(t, resp.Submitted)
			},
		},
		{
			name:          "publish failure",
			withPublisher: true,
			req:           validRequest(true),
			setup: func(te *testExecutor) {
				te.pipeline.EXPECT().Discover(gomock.Any(), gomock.Any(), gomock.Any()).Return(&discovery.Result{}, nil)
				te.builder.EXPECT().Build(gomock.Any(), gomock.Any()).Return(sampleBatch(), nil)
				te.publisher.EXPECT().PublishBatch(gomock.Any(), gomock.Any()).Return(errors.New("nats: timeout"))
			},
			expectedCode: apierrors.ErrCodeServiceError,
		},
		{
			name: "discovery failure skips the builder",
			req:  validRequest(false),
			setup: func(te *testExecutor) {
				te.pipeline.EXPECT().
					Discover(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil, &domain.UpstreamError{StatusCode: 500})
			},
			expectedErr: &domain.UpstreamError{},
		},
		{
			name:          "nothing to sweep is not submitted",
			withPublisher: true,
			req:           validRequest(true),
			setup: func(te *testExecutor) {
				te.pipeline.EXPECT().Discover(gomock.Any(), gomock.Any(), gomock.Any()).Return(&discovery.Result{NoTokens: true}, nil)
				te.builder.EXPECT().Build(gomock.Any(), gomock.Any()).Return(nil, domain.ErrNoValidTransfers)
			},
			expectedErr: domain.ErrNoValidTransfers,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			te := setupExecutor(t, tt.withPublisher)
			tt.setup(te)

			resp, err := te.exec.BuildTransfers(context.Background(), tt.req, "")

			switch {
			case tt.expectedCode != "":
				require.Error(t, err)
				var apiErr *apierrors.APIError
				require.ErrorAs(t, err, &apiErr)
				assert.Equal(t, tt.expectedCode, apiErr.Code)
				assert.Nil(t, resp)
			case tt.expectedErr != nil:
				require.Error(t, err)
				var upstream *domain.UpstreamError
				if errors.As(tt.expectedErr, &upstream) {
					assert.ErrorAs(t, err, &upstream)
				} else {
					assert.ErrorIs(t, err, tt.expectedErr)
				}
				assert.Nil(t, resp)
			default:
				require.NoError(t, err)
				tt.validate(t, resp)
			}
		})
	}
}

func TestBuildTransfers_SupersededBuildIsNotSubmitted(t *testing.T) {
	te := setupExecutor(t, true)

	started := make(chan struct{})
	te.pipeline.EXPECT().
		Discover(gomock.Any(), walletA, domain.ChainEthereumMainnet).
		Return(&discovery.Result{}, nil)
	te.builder.EXPECT().
		Build(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ transfer.Request) (*domain.TransferBatch, error) {
			close(started)
			<-ctx.Done()
			return sampleBatch(), nil
		})
	te.pipeline.EXPECT().
		Discover(gomock.Any(), walletA, domain.ChainBase).
		Return(&discovery.Result{NoTokens: true}, nil)
	// PublishBatch is never expected

	errCh := make(chan error, 1)
	go func() {
		_, err := te.exec.BuildTransfers(context.Background(), &dto.BuildTransfersRequest{
			Chain:       "1",
			Sender:      walletA,
			Destination: destination,
			Submit:      true,
		}, "tab")
		errCh <- err
	}()

	<-started
	_, err := te.exec.GetWalletTokens(context.Background(), walletA, domain.ChainBase, "tab")
	require.NoError(t, err)

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, session.ErrStale)
	case <-time.After(5 * time.Second):
		t.Fatal("superseded build did not return")
	}
}

func TestInvalidateCaches(t *testing.T) {
	tests := []struct {
		name         string
		scope        string
		setup        func(te *testExecutor)
		expectedCode apierrors.ErrorCode
		validate     func(t *testing.T, resp *dto.InvalidateCacheResponse)
	}{
		{
			name:  "default scope invalidates everything",
			scope: "",
			setup: func(te *testExecutor) {
				te.balances.EXPECT().InvalidateAll(gomock.Any()).Return(int64(4), nil)
				te.verified.EXPECT().InvalidateAll()
			},
			validate: func(t *testing.T, resp *dto.InvalidateCacheResponse) {
				assert.Equal(t, "all", resp.Scope)
				require.NotNil(t, resp.BalanceVersion)
				assert.Equal(t, int64(4), *resp.BalanceVersion)
			},
		},
		{
			name:  "balances only",
			scope: "Balances",
			setup: func(te *testExecutor) {
				te.balances.EXPECT().InvalidateAll(gomock.Any()).Return(int64(2), nil)
			},
			validate: func(t *testing.T, resp *dto.InvalidateCacheResponse) {
				assert.Equal(t, "balances", resp.Scope)
				assert.Equal(t, int64(2), *resp.BalanceVersion)
			},
		},
		{
			name:  "verified only",
			scope: "verified",
			setup: func(te *testExecutor) {
				te.verified.EXPECT().InvalidateAll()
			},
			validate: func(t *testing.T, resp *dto.InvalidateCacheResponse) {
				assert.Equal(t, "verified", resp.Scope)
				assert.Nil(t, resp.BalanceVersion)
			},
		},
		{
			name:         "unknown scope",
			scope:        "prices",
			setup:        func(*testExecutor) {},
			expectedCode: apierrors.ErrCodeValidationFailed,
		},
		{
			name:  "store failure",
			scope: "all",
			setup: func(te *testExecutor) {
				te.balances.EXPECT().InvalidateAll(gomock.Any()).Return(int64(0), errors.New("connection reset"))
			},
			expectedCode: apierrors.ErrCodeInternalError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			te := setupExecutor(t, false)
			tt.setup(te)

			resp, err := te.exec.InvalidateCaches(context.Background(), tt.scope)
			if tt.expectedCode != "" {
				var apiErr *apierrors.APIError
				require.ErrorAs(t, err, &apiErr)
				assert.Equal(t, tt.expectedCode, apiErr.Code)
				return
			}
			require.NoError(t, err)
			tt.validate(t, resp)
		})
	}
}
