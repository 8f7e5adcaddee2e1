package discovery

import "github.com/feral-file/ff-token-sweeper/internal/domain"

// providerChainNames maps CAIP-2 chains to the balance provider's chain names
var providerChainNames = map[domain.Chain]string{
	domain.ChainEthereumMainnet: "eth",
	domain.ChainOptimism:        "optimism",
	domain.ChainBSC:             "bsc",
	domain.ChainPolygon:         "polygon",
	domain.ChainBase:            "base",
	domain.ChainArbitrum:        "arbitrum",
	domain.ChainAvalanche:       "avalanche",
	domain.ChainEthereumSepolia: "sepolia",
}

// ProviderChainName resolves a chain to the balance provider's identifier
func ProviderChainName(chain domain.Chain) (string, bool) {
	name, ok := providerChainNames[chain]
	return name, ok
}
