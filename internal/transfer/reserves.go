package transfer

import (
	"math/big"

	"github.com/feral-file/ff-token-sweeper/internal/domain"
)

// defaultReserves is the native balance, in wei, left behind to pay for the batch submission
var defaultReserves = map[domain.Chain]int64{
	domain.ChainEthereumMainnet: 2_000_000_000_000_000,   // 0.002 ETH
	domain.ChainOptimism:        100_000_000_000_000,     // 0.0001 ETH
	domain.ChainBSC:             1_000_000_000_000_000,   // 0.001 BNB
	domain.ChainPolygon:         500_000_000_000_000_000, // 0.5 POL
	domain.ChainBase:            100_000_000_000_000,     // 0.0001 ETH
	domain.ChainArbitrum:        100_000_000_000_000,     // 0.0001 ETH
	domain.ChainAvalanche:       10_000_000_000_000_000,  // 0.01 AVAX
	domain.ChainEthereumSepolia: 2_000_000_000_000_000,   // 0.002 ETH
}

// FALLBACK_RESERVE applies to chains without a configured or default reserve
const FALLBACK_RESERVE int64 = 2_000_000_000_000_000

// DefaultReserves returns a copy of the built-in reserves
func DefaultReserves() map[domain.Chain]*big.Int {
	reserves := make(map[domain.Chain]*big.Int, len(defaultReserves))
	for chain, wei := range defaultReserves {
		reserves[chain] = big.NewInt(wei)
	}
	return reserves
}

// reserveFor returns the configured reserve, falling back to the defaults
func reserveFor(configured map[domain.Chain]*big.Int, chain domain.Chain) *big.Int {
	if reserve, ok := configured[chain]; ok && reserve != nil {
		return reserve
	}
	if wei, ok := defaultReserves[chain]; ok {
		return big.NewInt(wei)
	}
	return big.NewInt(FALLBACK_RESERVE)
}
