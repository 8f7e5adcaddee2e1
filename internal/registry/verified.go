package registry

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/feral-file/ff-token-sweeper/internal/adapter"
	"github.com/feral-file/ff-token-sweeper/internal/cache"
	"github.com/feral-file/ff-token-sweeper/internal/domain"
	"github.com/feral-file/ff-token-sweeper/internal/logger"
	"github.com/feral-file/ff-token-sweeper/internal/metrics"
	"github.com/feral-file/ff-token-sweeper/internal/providers/vendors/tokenlist"
)

// State is the readiness of one chain's allow-list
type State struct {
	Ready    bool `json:"ready"`
	Degraded bool `json:"degraded"`
}

// VerifiedRegistry decides whether an unfamiliar token contract is trusted
//
//go:generate mockgen -source=verified.go -destination=../mocks/verified_registry.go -package=mocks -mock_names=VerifiedRegistry=MockVerifiedRegistry
type VerifiedRegistry interface {
	// IsVerified reports whether the contract is on the chain's allow-list.
	// It returns false for every address until the chain's list is ready.
	IsVerified(chain domain.Chain, address string) bool

	// Refresh fetches the chain's allow-list and stores it, degrading on failure.
	// The registry is ready for the chain once Refresh returns, even with an error.
	Refresh(ctx context.Context, chain domain.Chain) error

	// Ensure starts a background refresh when the chain's list is missing or stale
	Ensure(ctx context.Context, chain domain.Chain)

	// WaitReady blocks until the chain's list is ready or the timeout elapses
	WaitReady(ctx context.Context, chain domain.Chain, timeout time.Duration) bool

	// State returns the readiness of the chain's list
	State(chain domain.Chain) State

	// InvalidateAll marks every chain's list stale
	InvalidateAll()
}

// allowList is stored whole and never mutated after creation
type allowList struct {
	addresses map[string]struct{}
	trustAll  bool
	degraded  bool
}

type verifiedRegistry struct {
	client         tokenlist.Client
	clock          adapter.Clock
	refreshTimeout time.Duration
	lists          *cache.Versioned[domain.Chain, *allowList]
	group          singleflight.Group

	mu      sync.Mutex
	waiters map[domain.Chain][]chan struct{}
}

// NewVerifiedRegistry creates a process-lifetime allow-list registry whose
// per-chain lists are fresh for ttl
func NewVerifiedRegistry(client tokenlist.Client, clock adapter.Clock, ttl, refreshTimeout time.Duration) VerifiedRegistry {
	return &verifiedRegistry{
		client:         client,
		clock:          clock,
		refreshTimeout: refreshTimeout,
		lists:          cache.NewVersioned[domain.Chain, *allowList](ttl, clock),
		waiters:        make(map[domain.Chain][]chan struct{}),
	}
}

func (r *verifiedRegistry) IsVerified(chain domain.Chain, address string) bool {
	entry, ok := r.lists.Current(chain)
	if !ok {
		return false
	}

	list := entry.Data
	if list.trustAll {
		return true
	}

	_, ok = list.addresses[domain.NormalizeAddress(address)]
	return ok
}

func (r *verifiedRegistry) Refresh(ctx context.Context, chain domain.Chain) error {
	// Refreshes started before and after an invalidation must not share a result
	key := fmt.Sprintf("%s@%d", chain, r.lists.Version())
	_, err, _ := r.group.Do(key, func() (interface{}, error) {
		return nil, r.refresh(ctx, chain)
	})
	return err
}

func (r *verifiedRegistry) refresh(ctx context.Context, chain domain.Chain) error {
	chainID, err := chain.EVMChainID()
	if err != nil {
		return err
	}

	if r.refreshTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.refreshTimeout)
		defer cancel()
	}

	tokens, err := r.client.GetVerifiedTokens(ctx, chainID)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}

		// Keep a previous non-empty list whatever its version, otherwise trust upstream spam flags
		if prev, ok := r.lists.Peek(chain); ok && len(prev.Data.addresses) > 0 {
			r.store(chain, &allowList{addresses: prev.Data.addresses, degraded: true})
			metrics.RegistryRefreshes.WithLabelValues(string(chain), "degraded_previous").Inc()
		} else {
			r.store(chain, &allowList{trustAll: true, degraded: true})
			metrics.RegistryRefreshes.WithLabelValues(string(chain), "degraded_trust_all").Inc()
		}

		logger.WarnCtx(ctx, "Verified token list unavailable, registry degraded",
			zap.String("chain", string(chain)),
			zap.Error(err))
		return fmt.Errorf("failed to refresh verified tokens for %s: %w", chain, err)
	}

	if len(tokens) == 0 {
		r.store(chain, &allowList{trustAll: true})
		metrics.RegistryRefreshes.WithLabelValues(string(chain), "empty").Inc()
		logger.InfoCtx(ctx, "Verified token list is empty, deferring to upstream spam detection",
			zap.String("chain", string(chain)))
		return nil
	}

	addresses := make(map[string]struct{}, len(tokens))
	for _, token := range tokens {
		addresses[domain.NormalizeAddress(token.Address)] = struct{}{}
	}
	r.store(chain, &allowList{addresses: addresses})
	metrics.RegistryRefreshes.WithLabelValues(string(chain), "success").Inc()

	logger.DebugCtx(ctx, "Verified token list refreshed",
		zap.String("chain", string(chain)),
		zap.Int("count", len(addresses)))
	return nil
}

// store replaces the chain's list and wakes every waiter
func (r *verifiedRegistry) store(chain domain.Chain, list *allowList) {
	r.mu.Lock()
	r.lists.Put(chain, list)
	waiters := r.waiters[chain]
	delete(r.waiters, chain)
	r.mu.Unlock()

	for _, ch := range waiters {
		close(ch)
	}
}

func (r *verifiedRegistry) Ensure(ctx context.Context, chain domain.Chain) {
	if _, ok := r.lists.Get(chain); ok {
		metrics.CacheLookups.WithLabelValues("verified", "hit").Inc()
		return
	}
	metrics.CacheLookups.WithLabelValues("verified", "miss").Inc()

	// The refresh outlives the request that triggered it
	bg := context.WithoutCancel(ctx)
	go func() {
		_ = r.Refresh(bg, chain)
	}()
}

func (r *verifiedRegistry) WaitReady(ctx context.Context, chain domain.Chain, timeout time.Duration) bool {
	r.mu.Lock()
	if _, ok := r.lists.Current(chain); ok {
		r.mu.Unlock()
		return true
	}
	ch := make(chan struct{})
	r.waiters[chain] = append(r.waiters[chain], ch)
	r.mu.Unlock()

	select {
	case <-ch:
		return true
	case <-r.clock.After(timeout):
	case <-ctx.Done():
	}

	r.removeWaiter(chain, ch)

	// The list may have landed between the timer firing and the removal
	_, ok := r.lists.Current(chain)
	return ok
}

func (r *verifiedRegistry) removeWaiter(chain domain.Chain, ch chan struct{}) {
	r.mu.Lock()
	defer r.mu.Unlock()

	waiters := r.waiters[chain]
	for i, w := range waiters {
		if w == ch {
			r.waiters[chain] = append(waiters[:i], waiters[i+1:]...)
			break
		}
	}
	if len(r.waiters[chain]) == 0 {
		delete(r.waiters, chain)
	}
}

func (r *verifiedRegistry) State(chain domain.Chain) State {
	entry, ok := r.lists.Current(chain)
	if !ok {
		return State{}
	}
	return State{Ready: true, Degraded: entry.Data.degraded}
}

func (r *verifiedRegistry) InvalidateAll() {
	version := r.lists.InvalidateAll()
	metrics.CacheInvalidations.WithLabelValues("verified").Inc()
	logger.Info("Verified token registry invalidated", zap.Int64("version", version))
}
