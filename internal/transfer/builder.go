package transfer

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sort"

	"github.com/alitto/pond/v2"
	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/feral-file/ff-token-sweeper/internal/adapter"
	"github.com/feral-file/ff-token-sweeper/internal/discovery"
	"github.com/feral-file/ff-token-sweeper/internal/domain"
	"github.com/feral-file/ff-token-sweeper/internal/logger"
	"github.com/feral-file/ff-token-sweeper/internal/metrics"
	"github.com/feral-file/ff-token-sweeper/internal/providers/ethereum"
)

const (
	// DEFAULT_CANDIDATE_CAP bounds how many token transfers are simulated per build
	DEFAULT_CANDIDATE_CAP = 20
	// DEFAULT_BATCH_CAP bounds how many calls a batch carries
	DEFAULT_BATCH_CAP = 10
)

// Config holds the builder limits
type Config struct {
	CandidateCap int
	BatchCap     int
	// Reserves overrides the default native reserve per chain
	Reserves map[domain.Chain]*big.Int
}

// Request is the input of one build
type Request struct {
	Chain       domain.Chain
	Sender      string
	Destination string
	// Tokens is the discovered, ranked token list of the sender
	Tokens []domain.Token
}

// Builder turns a discovered token list into a sweep batch
//
//go:generate mockgen -source=builder.go -destination=../mocks/transfer_builder.go -package=mocks -mock_names=Builder=MockBuilder
type Builder interface {
	// Build selects, encodes and prechecks the transfers of a sweep batch.
	// It returns domain.ErrNoValidTransfers when nothing survives the precheck.
	Build(ctx context.Context, req Request) (*domain.TransferBatch, error)
}

type builder struct {
	simulators ethereum.SimulatorProvider
	pool       pond.Pool
	clock      adapter.Clock
	cfg        Config
}

// NewBuilder creates a batch builder. The pool runs the transfer simulations.
func NewBuilder(simulators ethereum.SimulatorProvider, pool pond.Pool, clock adapter.Clock, cfg Config) Builder {
	if cfg.CandidateCap <= 0 {
		cfg.CandidateCap = DEFAULT_CANDIDATE_CAP
	}
	if cfg.BatchCap <= 0 {
		cfg.BatchCap = DEFAULT_BATCH_CAP
	}
	return &builder{
		simulators: simulators,
		pool:       pool,
		clock:      clock,
		cfg:        cfg,
	}
}

// candidate is a token transfer awaiting its precheck
type candidate struct {
	token domain.Token
	call  domain.TransferCall
}

func (b *builder) Build(ctx context.Context, req Request) (*domain.TransferBatch, error) {
	sender, destination, err := validateParticipants(req.Sender, req.Destination)
	if err != nil {
		return nil, err
	}

	simulator, err := b.simulators.ForChain(ctx, req.Chain)
	if err != nil {
		return nil, err
	}

	// Step 1: select and encode the token candidates
	selected := SelectCandidates(req.Tokens, b.cfg.CandidateCap)
	candidates := make([]candidate, 0, len(selected))
	for _, token := range selected {
		data, err := EncodeTransfer(destination, token.Balance)
		if err != nil {
			logger.WarnCtx(ctx, "Failed to encode transfer, skipping token",
				zap.String("token", token.Address),
				zap.Error(err))
			continue
		}
		candidates = append(candidates, candidate{
			token: token,
			call: domain.TransferCall{
				To:           common.HexToAddress(token.Address).Hex(),
				Value:        big.NewInt(0),
				Data:         data,
				Kind:         domain.TransferKindTokenTransfer,
				Description:  describe(token.Balance, token.Decimals, token.Symbol),
				TokenAddress: domain.NormalizeAddress(token.Address),
				USDValue:     token.Value(),
			},
		})
	}

	// Step 2: precheck
	results := b.precheck(ctx, simulator, sender, candidates)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	calls := make([]domain.TransferCall, 0, len(candidates)+1)
	precheck := domain.PrecheckResult{TotalCandidates: len(candidates)}
	for i, c := range candidates {
		if results[i] != nil {
			precheck.FailedCount++
			metrics.BuildPrechecks.WithLabelValues(string(req.Chain), precheckLabel(results[i])).Inc()
			logger.DebugCtx(ctx, "Transfer precheck failed",
				zap.String("token", c.call.TokenAddress),
				zap.Error(results[i]))
			continue
		}
		precheck.ValidCount++
		metrics.BuildPrechecks.WithLabelValues(string(req.Chain), "valid").Inc()
		calls = append(calls, c.call)
	}

	// Step 3: native transfer above the reserve
	if call, ok := b.nativeCall(ctx, simulator, req, sender, destination); ok {
		calls = append(calls, call)
	}

	// Step 4: merge and cap; a call breaking the value/data rules never leaves the builder
	valid := calls[:0]
	for _, call := range calls {
		if !call.Valid() {
			logger.ErrorCtx(ctx, fmt.Errorf("malformed %s call dropped", call.Kind),
				zap.String("token", call.TokenAddress))
			continue
		}
		valid = append(valid, call)
	}
	calls = valid

	sort.SliceStable(calls, func(i, j int) bool {
		return calls[i].USDValue.GreaterThan(calls[j].USDValue)
	})
	if len(calls) > b.cfg.BatchCap {
		calls = calls[:b.cfg.BatchCap]
	}

	if len(calls) == 0 {
		logger.InfoCtx(ctx, "No valid transfers for wallet",
			zap.String("sender", sender.Hex()),
			zap.String("chain", string(req.Chain)),
			zap.Int("candidates", precheck.TotalCandidates))
		return nil, domain.ErrNoValidTransfers
	}

	batch := &domain.TransferBatch{
		ID:          uuid.NewString(),
		Chain:       req.Chain,
		Sender:      sender.Hex(),
		Destination: destination.Hex(),
		Calls:       calls,
		Precheck:    precheck,
		CreatedAt:   b.clock.Now().UTC(),
	}

	metrics.BuildBatchSize.WithLabelValues(string(req.Chain)).Observe(float64(len(calls)))
	logger.InfoCtx(ctx, "Built transfer batch",
		zap.String("batch_id", batch.ID),
		zap.String("chain", string(req.Chain)),
		zap.Int("calls", len(calls)),
		zap.Int("valid", precheck.ValidCount),
		zap.Int("failed", precheck.FailedCount))

	return batch, nil
}

// precheck simulates every candidate concurrently. Results line up with the candidates.
func (b *builder) precheck(ctx context.Context, simulator ethereum.Simulator, sender common.Address, candidates []candidate) []error {
	results := make([]error, len(candidates))
	tasks := make([]pond.Task, 0, len(candidates))
	for i := range candidates {
		call := candidates[i].call
		tasks = append(tasks, b.pool.Submit(func() {
			results[i] = simulator.SimulateTransfer(ctx, sender, call)
		}))
	}

	for _, task := range tasks {
		_ = task.Wait()
	}
	return results
}

// nativeCall returns the native transfer of everything above the reserve
func (b *builder) nativeCall(
	ctx context.Context,
	simulator ethereum.Simulator,
	req Request,
	sender, destination common.Address,
) (domain.TransferCall, bool) {
	native := findNative(req.Tokens)

	balance, err := simulator.NativeBalance(ctx, sender)
	if err != nil {
		if native == nil || native.Balance == nil {
			logger.WarnCtx(ctx, "Failed to read native balance",
				zap.String("sender", sender.Hex()),
				zap.Error(err))
			return domain.TransferCall{}, false
		}
		logger.WarnCtx(ctx, "Failed to read native balance, using discovered balance",
			zap.String("sender", sender.Hex()),
			zap.Error(err))
		balance = new(big.Int).Set(native.Balance)
	}

	reserve := reserveFor(b.cfg.Reserves, req.Chain)
	if balance.Cmp(reserve) <= 0 {
		return domain.TransferCall{}, false
	}
	amount := new(big.Int).Sub(balance, reserve)

	symbol := "native asset"
	var decimals uint8 = 18
	value := decimal.Zero
	if native != nil {
		if native.Symbol != "" {
			symbol = native.Symbol
		}
		if native.Decimals > 0 {
			decimals = native.Decimals
		}
		value = nativeValue(native, amount)
	}

	return domain.TransferCall{
		To:           destination.Hex(),
		Value:        amount,
		Kind:         domain.TransferKindNative,
		Description:  describe(amount, decimals, symbol),
		TokenAddress: domain.ETHEREUM_ZERO_ADDRESS,
		USDValue:     value,
	}, true
}

// nativeValue prices the swept amount. Without a unit price the discovered value is used.
func nativeValue(native *domain.Token, amount *big.Int) decimal.Decimal {
	if native.USDPrice != nil {
		return discovery.ComputeUSDValue(*native.USDPrice, amount, native.Decimals)
	}
	return native.Value()
}

// SelectCandidates returns at most limit non-native tokens with a balance,
// ranked by USD value then raw balance
func SelectCandidates(tokens []domain.Token, limit int) []domain.Token {
	selected := make([]domain.Token, 0, len(tokens))
	for _, token := range tokens {
		if token.IsNative || !token.HasBalance() || !common.IsHexAddress(token.Address) || domain.IsNativeSentinel(token.Address) {
			continue
		}
		selected = append(selected, token.Clone())
	}

	sort.SliceStable(selected, func(i, j int) bool {
		return domain.CompareByValue(&selected[i], &selected[j]) < 0
	})

	if limit > 0 && len(selected) > limit {
		selected = selected[:limit]
	}
	return selected
}

func validateParticipants(senderAddress, destinationAddress string) (common.Address, common.Address, error) {
	sender, err := domain.ValidateAddress(senderAddress)
	if err != nil {
		return common.Address{}, common.Address{}, err
	}
	destination, err := domain.ValidateAddress(destinationAddress)
	if err != nil {
		return common.Address{}, common.Address{}, err
	}
	if sender == destination {
		return common.Address{}, common.Address{}, &domain.ValidationError{Address: destinationAddress, Err: domain.ErrSelfTransfer}
	}
	return sender, destination, nil
}

func findNative(tokens []domain.Token) *domain.Token {
	for i := range tokens {
		if tokens[i].IsNative {
			return &tokens[i]
		}
	}
	return nil
}

func describe(amount *big.Int, decimals uint8, symbol string) string {
	if symbol == "" {
		symbol = "tokens"
	}
	return fmt.Sprintf("Transfer %s %s", discovery.FormatAmount(amount, decimals), symbol)
}

func precheckLabel(err error) string {
	if errors.Is(err, domain.ErrCallReverted) {
		return "reverted"
	}
	return "error"
}
