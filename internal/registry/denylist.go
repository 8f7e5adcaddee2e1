package registry

import (
	"fmt"
	"strings"

	"github.com/feral-file/ff-token-sweeper/internal/adapter"
	"github.com/feral-file/ff-token-sweeper/internal/domain"
)

// DenylistRegistry defines the interface for operator deny-list lookups
//
//go:generate mockgen -source=denylist.go -destination=../mocks/denylist_registry.go -package=mocks -mock_names=DenylistRegistry=MockDenylistRegistry
type DenylistRegistry interface {
	// IsDenied checks if a token contract is denied for a given chain
	IsDenied(chain domain.Chain, contractAddress string) bool
}

// DenylistData represents the structure of the denylist.json file
// Key format: chain (CAIP-2 or bare chain id) -> list of contract addresses
type DenylistData map[string][]string

// denylistRegistry is the internal implementation of DenylistRegistry
type denylistRegistry struct {
	// Fast lookup map: "chain:contract" -> true
	contracts map[string]bool
}

// DenylistRegistryLoader loads a deny-list from disk
type DenylistRegistryLoader struct {
	fs   adapter.FileSystem
	json adapter.JSON
}

// NewDenylistRegistryLoader creates a loader over the given file system and JSON adapters
func NewDenylistRegistryLoader(fs adapter.FileSystem, json adapter.JSON) *DenylistRegistryLoader {
	return &DenylistRegistryLoader{fs: fs, json: json}
}

// Load loads the deny-list registry from a JSON file
func (l *DenylistRegistryLoader) Load(filePath string) (DenylistRegistry, error) {
	data, err := l.fs.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read denylist file: %w", err)
	}

	var denylistData DenylistData
	if err := l.json.Unmarshal(data, &denylistData); err != nil {
		return nil, fmt.Errorf("failed to parse denylist JSON: %w", err)
	}

	dl := &denylistRegistry{
		contracts: make(map[string]bool),
	}

	for rawChain, addresses := range denylistData {
		chain, err := domain.ParseChain(rawChain)
		if err != nil {
			return nil, fmt.Errorf("invalid denylist chain %q: %w", rawChain, err)
		}

		for _, addr := range addresses {
			dl.contracts[denylistKey(chain, addr)] = true
		}
	}

	return dl, nil
}

// IsDenied checks if a token contract is denied for a given chain
func (d *denylistRegistry) IsDenied(chain domain.Chain, contractAddress string) bool {
	if d == nil {
		return false
	}
	return d.contracts[denylistKey(chain, contractAddress)]
}

// EmptyDenylist returns a registry that denies nothing
func EmptyDenylist() DenylistRegistry {
	return &denylistRegistry{contracts: map[string]bool{}}
}

func denylistKey(chain domain.Chain, address string) string {
	return fmt.Sprintf("%s:%s", strings.ToLower(string(chain)), domain.NormalizeAddress(address))
}
