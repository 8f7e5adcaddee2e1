package executor

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/feral-file/ff-token-sweeper/internal/api/shared/constants"
	"github.com/feral-file/ff-token-sweeper/internal/api/shared/dto"
	apierrors "github.com/feral-file/ff-token-sweeper/internal/api/shared/errors"
	"github.com/feral-file/ff-token-sweeper/internal/balancecache"
	"github.com/feral-file/ff-token-sweeper/internal/discovery"
	"github.com/feral-file/ff-token-sweeper/internal/domain"
	"github.com/feral-file/ff-token-sweeper/internal/logger"
	"github.com/feral-file/ff-token-sweeper/internal/messaging"
	"github.com/feral-file/ff-token-sweeper/internal/registry"
	"github.com/feral-file/ff-token-sweeper/internal/session"
	"github.com/feral-file/ff-token-sweeper/internal/transfer"
)

// Executor is the interface for the API executor
//
//go:generate mockgen -source=executor.go -destination=../../../mocks/api_executor.go -package=mocks -mock_names=Executor=MockAPIExecutor
type Executor interface {
	// GetWalletTokens discovers the fungible tokens of a wallet on a chain.
	// A non-empty sessionID supersedes in-flight requests of the same session for another wallet or chain.
	GetWalletTokens(ctx context.Context, wallet string, chain domain.Chain, sessionID string) (*dto.WalletTokensResponse, error)

	// BuildTransfers discovers the sender's tokens and builds a sweep batch, optionally submitting it
	BuildTransfers(ctx context.Context, req *dto.BuildTransfersRequest, sessionID string) (*dto.TransferBatchResponse, error)

	// InvalidateCaches bumps the version of the balance cache, the verified token lists, or both
	InvalidateCaches(ctx context.Context, scope string) (*dto.InvalidateCacheResponse, error)
}

type executor struct {
	pipeline  discovery.Pipeline
	builder   transfer.Builder
	publisher messaging.Publisher
	balances  balancecache.Cache
	verified  registry.VerifiedRegistry
	tracker   *session.Tracker
}

// NewExecutor creates the API executor. The publisher may be nil when submission is disabled.
func NewExecutor(
	pipeline discovery.Pipeline,
	builder transfer.Builder,
	publisher messaging.Publisher,
	balances balancecache.Cache,
	verified registry.VerifiedRegistry,
	tracker *session.Tracker,
) Executor {
	if tracker == nil {
		tracker = session.NewTracker()
	}
	return &executor{
		pipeline:  pipeline,
		builder:   builder,
		publisher: publisher,
		balances:  balances,
		verified:  verified,
		tracker:   tracker,
	}
}

func (e *executor) GetWalletTokens(ctx context.Context, wallet string, chain domain.Chain, sessionID string) (*dto.WalletTokensResponse, error) {
	result, err := guard(ctx, e.tracker, sessionID, wallet, chain, func(ctx context.Context) (*discovery.Result, error) {
		return e.pipeline.Discover(ctx, wallet, chain)
	})
	if err != nil {
		return nil, err
	}

	return dto.MapWalletTokensToDTO(wallet, chain, result), nil
}

func (e *executor) BuildTransfers(ctx context.Context, req *dto.BuildTransfersRequest, sessionID string) (*dto.TransferBatchResponse, error) {
	chain, err := req.Validate()
	if err != nil {
		return nil, err
	}
	if req.Submit && e.publisher == nil {
		return nil, apierrors.NewServiceError("Batch submission is not configured")
	}

	type built struct {
		batch    *domain.TransferBatch
		degraded bool
	}

	result, err := guard(ctx, e.tracker, sessionID, req.Sender, chain, func(ctx context.Context) (built, error) {
		discovered, err := e.pipeline.Discover(ctx, req.Sender, chain)
		if err != nil {
			return built{}, err
		}

		batch, err := e.builder.Build(ctx, transfer.Request{
			Chain:       chain,
			Sender:      req.Sender,
			Destination: req.Destination,
			Tokens:      discovered.Tokens,
		})
		if err != nil {
			return built{}, err
		}
		return built{batch: batch, degraded: discovered.Degraded}, nil
	})
	if err != nil {
		return nil, err
	}

	resp := dto.MapTransferBatchToDTO(result.batch)
	resp.Degraded = result.degraded

	if req.Submit {
		if err := e.publisher.PublishBatch(ctx, result.batch); err != nil {
			logger.ErrorCtx(ctx, err, zap.String("batch_id", result.batch.ID))
			return nil, apierrors.NewServiceError("Failed to submit batch")
		}
		resp.Submitted = true
	}

	return resp, nil
}

func (e *executor) InvalidateCaches(ctx context.Context, scope string) (*dto.InvalidateCacheResponse, error) {
	req := dto.InvalidateCacheRequest{Scope: scope}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	resp := &dto.InvalidateCacheResponse{Scope: req.Scope}

	if req.Scope == constants.CACHE_SCOPE_BALANCES || req.Scope == constants.CACHE_SCOPE_ALL {
		version, err := e.balances.InvalidateAll(ctx)
		if err != nil {
			logger.ErrorCtx(ctx, err, zap.String("scope", req.Scope))
			return nil, apierrors.NewInternalError(fmt.Sprintf("Failed to invalidate %s cache", constants.CACHE_SCOPE_BALANCES))
		}
		resp.BalanceVersion = &version
	}

	if req.Scope == constants.CACHE_SCOPE_VERIFIED || req.Scope == constants.CACHE_SCOPE_ALL {
		e.verified.InvalidateAll()
	}

	logger.InfoCtx(ctx, "Caches invalidated", zap.String("scope", req.Scope))

	return resp, nil
}

// guard runs fn under the session's selection, discarding the result when the
// session moved to another wallet or chain before fn returned
func guard[T any](
	ctx context.Context,
	tracker *session.Tracker,
	sessionID string,
	wallet string,
	chain domain.Chain,
	fn func(ctx context.Context) (T, error),
) (T, error) {
	ctx = logger.WithFields(ctx, zap.String("wallet", domain.NormalizeAddress(wallet)), zap.String("chain", string(chain)))
	if sessionID == "" {
		return fn(ctx)
	}
	ctx = logger.WithFields(ctx, zap.String("session", sessionID))

	ticket := tracker.Begin(ctx, sessionID, wallet, chain)
	defer tracker.Finish(ticket)

	return session.Run(ticket, fn)
}
