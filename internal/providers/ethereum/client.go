package ethereum

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rpc"
	"go.uber.org/zap"

	"github.com/feral-file/ff-token-sweeper/internal/adapter"
	"github.com/feral-file/ff-token-sweeper/internal/domain"
	"github.com/feral-file/ff-token-sweeper/internal/logger"
)

// Simulator runs read-only executions against current chain state
//
//go:generate mockgen -source=client.go -destination=../../mocks/simulator.go -package=mocks -mock_names=Simulator=MockSimulator
type Simulator interface {
	// SimulateTransfer executes the call from the sender without submitting it.
	// It returns an error wrapping domain.ErrCallReverted when the call would revert.
	SimulateTransfer(ctx context.Context, from common.Address, call domain.TransferCall) error

	// NativeBalance returns the native asset balance of an account at the latest block
	NativeBalance(ctx context.Context, address common.Address) (*big.Int, error)

	// Close closes the connection
	Close()
}

type ethereumClient struct {
	chain  domain.Chain
	client adapter.EthClient
}

// NewClient creates a simulator over an Ethereum JSON-RPC client
func NewClient(chain domain.Chain, client adapter.EthClient) Simulator {
	return &ethereumClient{chain: chain, client: client}
}

// SimulateTransfer executes the call via eth_call from the sender
func (c *ethereumClient) SimulateTransfer(ctx context.Context, from common.Address, call domain.TransferCall) error {
	to := common.HexToAddress(call.To)
	msg := ethereum.CallMsg{
		From: from,
		To:   &to,
		Data: call.Data,
	}
	if call.Value != nil && call.Value.Sign() > 0 {
		msg.Value = call.Value
	}

	result, err := c.client.CallContract(ctx, msg, nil)
	if err != nil {
		if isRevert(err) {
			return fmt.Errorf("%w: %s", domain.ErrCallReverted, err.Error())
		}
		return fmt.Errorf("failed to call contract: %w", err)
	}

	if call.Kind != domain.TransferKindTokenTransfer {
		return nil
	}

	// Tokens that predate the ERC20 return value answer with empty data,
	// so confirm the call would be mined with a gas estimate
	if len(result) == 0 {
		if _, err := c.client.EstimateGas(ctx, msg); err != nil {
			if isRevert(err) {
				return fmt.Errorf("%w: %s", domain.ErrCallReverted, err.Error())
			}
			return fmt.Errorf("failed to estimate gas: %w", err)
		}
		return nil
	}

	out, err := ERC20ABI.Unpack("transfer", result)
	if err != nil {
		return fmt.Errorf("%w: unexpected return data: %s", domain.ErrCallReverted, err.Error())
	}
	if ok, isBool := out[0].(bool); !isBool || !ok {
		return fmt.Errorf("%w: transfer returned false", domain.ErrCallReverted)
	}

	return nil
}

// NativeBalance returns the native asset balance of an account
func (c *ethereumClient) NativeBalance(ctx context.Context, address common.Address) (*big.Int, error) {
	balance, err := c.client.BalanceAt(ctx, address, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get native balance: %w", err)
	}
	return balance, nil
}

// Close closes the connection
func (c *ethereumClient) Close() {
	logger.Debug("Closing ethereum client", zap.String("chain", string(c.chain)))
	c.client.Close()
}

// isRevert reports whether the node rejected the call as a revert
func isRevert(err error) bool {
	var dataErr rpc.DataError
	if errors.As(err, &dataErr) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "execution reverted")
}
