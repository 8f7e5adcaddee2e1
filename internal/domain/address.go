package domain

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// NormalizeAddress lowercases a hex address so it can be used as a lookup key
func NormalizeAddress(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}

// IsZeroAddress reports whether the address is the all-zero address
func IsZeroAddress(address string) bool {
	return NormalizeAddress(address) == ETHEREUM_ZERO_ADDRESS
}

// IsNativeSentinel reports whether a provider used the address as a native-asset placeholder
func IsNativeSentinel(address string) bool {
	a := NormalizeAddress(address)
	return a == ETHEREUM_ZERO_ADDRESS || a == NATIVE_SENTINEL_ADDRESS
}

// ValidateAddress checks that the address is well-formed hex and not the zero address
func ValidateAddress(address string) (common.Address, error) {
	if !common.IsHexAddress(strings.TrimSpace(address)) {
		return common.Address{}, &ValidationError{Address: address, Err: ErrInvalidAddress}
	}
	addr := common.HexToAddress(strings.TrimSpace(address))
	if addr == (common.Address{}) {
		return common.Address{}, &ValidationError{Address: address, Err: ErrZeroAddress}
	}
	return addr, nil
}
