package discovery_test

import (
	"math/big"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-token-sweeper/internal/discovery"
	"github.com/feral-file/ff-token-sweeper/internal/domain"
)

func TestNormalizeAssets_ArrayShapes(t *testing.T) {
	record := `{"token_address":"0x1111111111111111111111111111111111111111","balance":"5"}`

	tests := []struct {
		name     string
		payload  string
		expected int
	}{
		{"bare array", `[` + record + `]`, 1},
		{"result key", `{"cursor":null,"result":[` + record + `,` + record + `]}`, 2},
		{"data key", `{"data":[` + record + `]}`, 1},
		{"tokens key", `{"tokens":[` + record + `]}`, 1},
		{"assets key", `{"assets":[` + record + `]}`, 1},
		{"items key", `{"items":[` + record + `]}`, 1},
		{"result wins over data", `{"data":[` + record + `,` + record + `],"result":[` + record + `]}`, 1},
		{"object without array", `{"message":"ok"}`, 0},
		{"non array result", `{"result":{"token_address":"0x1"}}`, 0},
		{"malformed json", `{"result":[`, 0},
		{"empty body", ``, 0},
		{"scalar", `42`, 0},
		{"non object records skipped", `["x", 1, null, ` + record + `]`, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens := discovery.NormalizeAssets([]byte(tt.payload))
			assert.Len(t, tokens, tt.expected)
			assert.NotNil(t, tokens)
		})
	}
}

func TestNormalizeAssets_MoralisRecord(t *testing.T) {
	payload := `{"result":[{
		"token_address": "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48",
		"name": "USD Coin",
		"symbol": "USDC",
		"logo": "https://logo.example.com/usdc.png",
		"thumbnail": "https://logo.example.com/usdc-thumb.png",
		"decimals": 6,
		"balance": "12500000",
		"possible_spam": false,
		"usd_price": 1.0001,
		"usd_value": 12.50125,
		"native_token": false
	}]}`

	tokens := discovery.NormalizeAssets([]byte(payload))
	require.Len(t, tokens, 1)

	token := tokens[0]
	assert.Equal(t, "0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48", token.Address)
	assert.Equal(t, "USD Coin", token.Name)
	assert.Equal(t, "USDC", token.Symbol)
	assert.Equal(t, uint8(6), token.Decimals)
	assert.Equal(t, "12500000", token.Balance.String())
	assert.Equal(t, "https://logo.example.com/usdc.png", token.Logo)
	assert.False(t, token.IsNative)
	assert.False(t, token.IsSpam)
	require.NotNil(t, token.USDPrice)
	assert.True(t, token.USDPrice.Equal(decimal.RequireFromString("1.0001")))
	require.NotNil(t, token.USDValue)
	assert.True(t, token.USDValue.Equal(decimal.RequireFromString("12.50125")))
	assert.Nil(t, token.SupportsERC)
}

func TestNormalizeAssets_AlternateFieldNames(t *testing.T) {
	payload := `{"data":[{
		"contractAddress": "0x2222222222222222222222222222222222222222",
		"token_name": "Wrapped Ether",
		"token_symbol": "WETH",
		"token_decimals": "18",
		"rawBalance": "2000000000000000000",
		"price_usd": "3000",
		"logoURI": "weth.png",
		"is_spam": "true",
		"supports_erc": ["ERC20", ""]
	}]}`

	tokens := discovery.NormalizeAssets([]byte(payload))
	require.Len(t, tokens, 1)

	token := tokens[0]
	assert.Equal(t, "0x2222222222222222222222222222222222222222", token.Address)
	assert.Equal(t, "Wrapped Ether", token.Name)
	assert.Equal(t, "WETH", token.Symbol)
	assert.Equal(t, uint8(18), token.Decimals)
	assert.Equal(t, "2000000000000000000", token.Balance.String())
	assert.Equal(t, "weth.png", token.Logo)
	assert.True(t, token.IsSpam)
	assert.Equal(t, []string{"erc20"}, token.SupportsERC)

	// value computed from price × balance / 10^decimals
	require.NotNil(t, token.USDValue)
	assert.True(t, token.USDValue.Equal(decimal.NewFromInt(6000)), token.USDValue.String())
}

func TestNormalizeAssets_Balance(t *testing.T) {
	tests := []struct {
		name     string
		balance  string
		expected string
	}{
		{"integer string", `"123456789012345678901234567890"`, "123456789012345678901234567890"},
		{"json number", `42`, "42"},
		{"exponential string", `"1.5e21"`, "1500000000000000000000"},
		{"exponential number", `2E+3`, "2000"},
		{"fraction truncated", `"10.99"`, "10"},
		{"negative", `"-5"`, "0"},
		{"garbage", `"lots"`, "0"},
		{"empty", `""`, "0"},
		{"null", `null`, "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := `[{"address":"0x3333333333333333333333333333333333333333","balance":` + tt.balance + `}]`
			tokens := discovery.NormalizeAssets([]byte(payload))
			require.Len(t, tokens, 1)
			assert.Equal(t, tt.expected, tokens[0].Balance.String())
		})
	}
}

func TestNormalizeAssets_BalanceFieldPriority(t *testing.T) {
	payload := `[{"address":"0x3333333333333333333333333333333333333333","amount":"9","raw_balance":"7","balance":""}]`

	tokens := discovery.NormalizeAssets([]byte(payload))
	require.Len(t, tokens, 1)
	assert.Equal(t, "7", tokens[0].Balance.String())
}

func TestNormalizeAssets_Decimals(t *testing.T) {
	tests := []struct {
		name     string
		field    string
		expected uint8
	}{
		{"missing defaults to 18", ``, 18},
		{"number", `,"decimals":8`, 8},
		{"string", `,"decimals":"6"`, 6},
		{"zero", `,"decimals":0`, 0},
		{"negative clamps", `,"decimals":-3`, 0},
		{"too large clamps", `,"decimals":300`, 255},
		{"garbage defaults", `,"decimals":"abc"`, 18},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := `[{"address":"0x3333333333333333333333333333333333333333","balance":"1"` + tt.field + `}]`
			tokens := discovery.NormalizeAssets([]byte(payload))
			require.Len(t, tokens, 1)
			assert.Equal(t, tt.expected, tokens[0].Decimals)
		})
	}
}

func TestNormalizeAssets_Native(t *testing.T) {
	tests := []struct {
		name   string
		record string
	}{
		{"native flag", `{"token_address":"0xeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeee","native_token":true,"balance":"1"}`},
		{"is_native flag without address", `{"is_native":true,"balance":"1"}`},
		{"eeee sentinel", `{"token_address":"0xEeeeeEeeeEeEeeEeEeEeeEEEeeeeEeeeeeeeEEeE","balance":"1"}`},
		{"zero sentinel", `{"address":"0x0000000000000000000000000000000000000000","balance":"1"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens := discovery.NormalizeAssets([]byte(`[` + tt.record + `]`))
			require.Len(t, tokens, 1)
			assert.True(t, tokens[0].IsNative)
			assert.Equal(t, domain.ETHEREUM_ZERO_ADDRESS, tokens[0].Address)
			assert.Nil(t, tokens[0].SupportsERC)
		})
	}
}

func TestNormalizeAssets_NegativePriceIgnored(t *testing.T) {
	payload := `[{"address":"0x3333333333333333333333333333333333333333","balance":"1","usd_price":-1,"usd_value":"-2"}]`

	tokens := discovery.NormalizeAssets([]byte(payload))
	require.Len(t, tokens, 1)
	assert.Nil(t, tokens[0].USDPrice)
	assert.Nil(t, tokens[0].USDValue)
}

func TestComputeUSDValue(t *testing.T) {
	value := discovery.ComputeUSDValue(decimal.RequireFromString("2.5"), big.NewInt(1_500_000), 6)
	assert.True(t, value.Equal(decimal.RequireFromString("3.75")))

	assert.True(t, discovery.ComputeUSDValue(decimal.NewFromInt(1), nil, 18).IsZero())
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "1.5", discovery.FormatAmount(big.NewInt(1_500_000), 6))
	assert.Equal(t, "12", discovery.FormatAmount(big.NewInt(12), 0))
	assert.Equal(t, "0.000000000000000001", discovery.FormatAmount(big.NewInt(1), 18))
	assert.Equal(t, "0", discovery.FormatAmount(nil, 18))
}
