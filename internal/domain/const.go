package domain

const (
	// Blockchain constants
	ETHEREUM_ZERO_ADDRESS = "0x0000000000000000000000000000000000000000"

	// NATIVE_SENTINEL_ADDRESS is the placeholder some providers use for the native asset
	NATIVE_SENTINEL_ADDRESS = "0xeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeee"

	// Token standard tags
	StandardERC20 = "erc20"
)
