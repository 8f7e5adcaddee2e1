package ethereum

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/feral-file/ff-token-sweeper/internal/adapter"
	"github.com/feral-file/ff-token-sweeper/internal/domain"
	"github.com/feral-file/ff-token-sweeper/internal/logger"
)

// SimulatorProvider hands out a simulator per chain
//
//go:generate mockgen -source=pool.go -destination=../../mocks/simulator_provider.go -package=mocks -mock_names=SimulatorProvider=MockSimulatorProvider
type SimulatorProvider interface {
	// ForChain returns the chain's simulator, dialing it on first use
	ForChain(ctx context.Context, chain domain.Chain) (Simulator, error)

	// Close closes every dialed client
	Close()
}

type clientPool struct {
	dialer  adapter.EthClientDialer
	rpcURLs map[domain.Chain]string

	mu      sync.Mutex
	clients map[domain.Chain]Simulator
}

// NewClientPool creates a lazily dialed simulator per configured chain
func NewClientPool(dialer adapter.EthClientDialer, rpcURLs map[domain.Chain]string) SimulatorProvider {
	return &clientPool{
		dialer:  dialer,
		rpcURLs: rpcURLs,
		clients: make(map[domain.Chain]Simulator),
	}
}

func (p *clientPool) ForChain(ctx context.Context, chain domain.Chain) (Simulator, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if client, ok := p.clients[chain]; ok {
		return client, nil
	}

	rpcURL, ok := p.rpcURLs[chain]
	if !ok || rpcURL == "" {
		return nil, fmt.Errorf("%w: no rpc url for %s", domain.ErrUnsupportedChain, chain)
	}

	expected, err := chain.EVMChainID()
	if err != nil {
		return nil, err
	}

	ethClient, err := p.dialer.Dial(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to dial ethereum client: %w", err)
	}

	// Guard against an RPC URL pointing at the wrong network
	chainID, err := ethClient.ChainID(ctx)
	if err != nil {
		ethClient.Close()
		return nil, fmt.Errorf("failed to get chain id: %w", err)
	}
	if !chainID.IsUint64() || chainID.Uint64() != expected {
		ethClient.Close()
		return nil, fmt.Errorf("rpc url for %s serves chain id %s", chain, chainID.String())
	}

	logger.InfoCtx(ctx, "Connected to ethereum node", zap.String("chain", string(chain)))

	client := NewClient(chain, ethClient)
	p.clients[chain] = client
	return client, nil
}

func (p *clientPool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for chain, client := range p.clients {
		client.Close()
		delete(p.clients, chain)
	}
}
