package discovery

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/feral-file/ff-token-sweeper/internal/balancecache"
	"github.com/feral-file/ff-token-sweeper/internal/domain"
	"github.com/feral-file/ff-token-sweeper/internal/logger"
	"github.com/feral-file/ff-token-sweeper/internal/metrics"
	"github.com/feral-file/ff-token-sweeper/internal/providers/vendors/moralis"
	"github.com/feral-file/ff-token-sweeper/internal/registry"
)

// Filter reasons reported in metrics
const (
	reasonZeroBalance = "zero_balance"
	reasonSpam        = "spam"
	reasonNotFungible = "not_fungible"
	reasonDust        = "dust"
	reasonUnverified  = "unverified"
	reasonDenied      = "denied"
)

// Result is the outcome of one discovery run
type Result struct {
	Tokens []domain.Token
	// FromCache is set when the tokens came from the balance cache
	FromCache bool
	// Stale is set when the upstream failed and an expired snapshot was served
	Stale bool
	// Degraded is set when the verified registry was not ready or degraded
	Degraded bool
	// NoTokens is the soft "no tokens found" condition
	NoTokens bool
	// StoredAt is when the cached snapshot was written
	StoredAt time.Time
}

// Config holds the discovery pipeline configuration
type Config struct {
	MinDustUSD           decimal.Decimal
	ReadinessTimeout     time.Duration
	PriceEnrichmentLimit int
}

// Pipeline discovers the fungible tokens a wallet holds on a chain
//
//go:generate mockgen -source=pipeline.go -destination=../mocks/discovery_pipeline.go -package=mocks -mock_names=Pipeline=MockPipeline
type Pipeline interface {
	// Discover returns the filtered, ranked token list for a wallet on a chain
	Discover(ctx context.Context, walletAddress string, chain domain.Chain) (*Result, error)
}

type pipeline struct {
	cache    balancecache.Cache
	verified registry.VerifiedRegistry
	denylist registry.DenylistRegistry
	client   moralis.Client
	pool     pond.Pool
	cfg      Config
}

// NewPipeline creates a discovery pipeline. The pool runs price enrichment lookups.
func NewPipeline(
	cache balancecache.Cache,
	verified registry.VerifiedRegistry,
	denylist registry.DenylistRegistry,
	client moralis.Client,
	pool pond.Pool,
	cfg Config,
) Pipeline {
	if denylist == nil {
		denylist = registry.EmptyDenylist()
	}
	return &pipeline{
		cache:    cache,
		verified: verified,
		denylist: denylist,
		client:   client,
		pool:     pool,
		cfg:      cfg,
	}
}

func (p *pipeline) Discover(ctx context.Context, walletAddress string, chain domain.Chain) (*Result, error) {
	if _, err := domain.ValidateAddress(walletAddress); err != nil {
		return nil, err
	}
	wallet := domain.NormalizeAddress(walletAddress)

	// Step 1: fresh cache hit, no network
	if tokens, ok := p.cache.Get(ctx, wallet, chain); ok {
		metrics.DiscoveryRuns.WithLabelValues(string(chain), "cache").Inc()
		return &Result{
			Tokens:    tokens,
			FromCache: true,
			NoTokens:  len(tokens) == 0,
		}, nil
	}

	// Step 2: resolve the provider chain
	chainName, ok := ProviderChainName(chain)
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedChain, chain)
	}

	// Load the allow-list while the balances are being fetched
	p.verified.Ensure(ctx, chain)

	// Step 3: fetch
	payload, err := p.client.GetWalletTokens(ctx, chainName, wallet)
	if err != nil {
		return p.degrade(ctx, wallet, chain, err)
	}

	// Step 4: normalize
	tokens := NormalizeAssets(payload)
	p.enrichPrices(ctx, chainName, tokens)

	// Step 5: classify and filter
	ready := p.verified.WaitReady(ctx, chain, p.cfg.ReadinessTimeout)
	if !ready {
		logger.WarnCtx(ctx, "Verified token registry not ready, filtering conservatively",
			zap.String("chain", string(chain)))
	}

	kept := make([]domain.Token, 0, len(tokens))
	for _, token := range tokens {
		if keep, reason := p.keep(chain, &token); !keep {
			metrics.DiscoveryFiltered.WithLabelValues(string(chain), reason).Inc()
			continue
		}
		kept = append(kept, token)
	}

	// Step 6: rank
	SortByValue(kept)

	// Step 7: cache, unless the result was filtered without a verified list
	if ready {
		p.cache.Put(ctx, wallet, chain, kept)
	}

	metrics.DiscoveryRuns.WithLabelValues(string(chain), "upstream").Inc()
	logger.InfoCtx(ctx, "Discovered wallet tokens",
		zap.String("wallet", wallet),
		zap.String("chain", string(chain)),
		zap.Int("received", len(tokens)),
		zap.Int("kept", len(kept)))

	return &Result{
		Tokens:   kept,
		Degraded: !ready || p.verified.State(chain).Degraded,
		NoTokens: len(kept) == 0,
	}, nil
}

// degrade serves an expired snapshot when the upstream failed.
// Configuration errors and cancellation are surfaced as is.
func (p *pipeline) degrade(ctx context.Context, wallet string, chain domain.Chain, err error) (*Result, error) {
	switch domain.KindOf(err) {
	case domain.ErrorKindConfiguration, domain.ErrorKindCanceled, domain.ErrorKindUnsupportedChain:
		return nil, err
	}

	snapshot, ok := p.cache.GetStale(ctx, wallet, chain)
	if !ok {
		return nil, err
	}

	metrics.DiscoveryRuns.WithLabelValues(string(chain), "stale").Inc()
	logger.WarnCtx(ctx, "Balance provider failed, serving stale snapshot",
		zap.String("wallet", wallet),
		zap.String("chain", string(chain)),
		zap.Time("stored_at", snapshot.StoredAt),
		zap.Error(err))

	return &Result{
		Tokens:    snapshot.Tokens,
		FromCache: true,
		Stale:     true,
		NoTokens:  len(snapshot.Tokens) == 0,
		StoredAt:  snapshot.StoredAt,
	}, nil
}

// keep applies the classification rules and returns the drop reason
func (p *pipeline) keep(chain domain.Chain, token *domain.Token) (bool, string) {
	if token.IsNative {
		switch {
		case !token.HasBalance():
			return false, reasonZeroBalance
		case token.IsSpam:
			return false, reasonSpam
		}
		return true, ""
	}

	switch {
	case !isFungible(token):
		return false, reasonNotFungible
	case isDust(token, p.cfg.MinDustUSD):
		return false, reasonDust
	case !token.HasBalance():
		return false, reasonZeroBalance
	case token.IsSpam:
		return false, reasonSpam
	case !p.verified.IsVerified(chain, token.Address):
		return false, reasonUnverified
	case p.denylist.IsDenied(chain, token.Address):
		return false, reasonDenied
	}
	return true, ""
}

// isFungible accepts an explicit erc20 tag or a usable contract address
func isFungible(token *domain.Token) bool {
	if token.Supports(domain.StandardERC20) {
		return true
	}
	return common.IsHexAddress(token.Address) && !domain.IsZeroAddress(token.Address)
}

// isDust reports a priced value at or below the threshold. An exactly zero
// value means unpriced and is kept.
func isDust(token *domain.Token, minDust decimal.Decimal) bool {
	value := token.Value()
	return !value.IsZero() && value.LessThanOrEqual(minDust)
}

// SortByValue orders tokens by USD value descending, then balance descending
func SortByValue(tokens []domain.Token) {
	sort.SliceStable(tokens, func(i, j int) bool {
		return domain.CompareByValue(&tokens[i], &tokens[j]) < 0
	})
}

// enrichPrices looks up missing prices for the first few candidates.
// Lookup failures leave the token unpriced.
func (p *pipeline) enrichPrices(ctx context.Context, chainName string, tokens []domain.Token) {
	if p.pool == nil || p.cfg.PriceEnrichmentLimit <= 0 {
		return
	}

	var tasks []pond.Task
	for i := range tokens {
		if len(tasks) >= p.cfg.PriceEnrichmentLimit {
			break
		}

		token := &tokens[i]
		if token.IsNative || token.IsSpam || token.USDPrice != nil || !token.HasBalance() || !common.IsHexAddress(token.Address) {
			continue
		}

		tasks = append(tasks, p.pool.Submit(func() {
			price, err := p.client.GetTokenPrice(ctx, chainName, token.Address)
			if err != nil {
				if !errors.Is(err, context.Canceled) {
					logger.DebugCtx(ctx, "Price lookup failed",
						zap.String("token", token.Address),
						zap.Error(err))
				}
				return
			}
			if price == nil {
				return
			}

			value := ComputeUSDValue(*price, token.Balance, token.Decimals)
			token.USDPrice = price
			token.USDValue = &value
		}))
	}

	for _, task := range tasks {
		_ = task.Wait()
	}
}
