package transfer

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/feral-file/ff-token-sweeper/internal/providers/ethereum"
)

// TRANSFER_SELECTOR is the 4-byte selector of transfer(address,uint256)
const TRANSFER_SELECTOR = "0xa9059cbb"

// EncodeTransfer encodes transfer(to, amount): the selector followed by the
// left-padded 32-byte address and the left-padded 32-byte amount
func EncodeTransfer(to common.Address, amount *big.Int) ([]byte, error) {
	if amount == nil || amount.Sign() < 0 {
		return nil, fmt.Errorf("invalid transfer amount: %v", amount)
	}

	data, err := ethereum.ERC20ABI.Pack("transfer", to, amount)
	if err != nil {
		return nil, fmt.Errorf("failed to pack transfer: %w", err)
	}

	return data, nil
}
