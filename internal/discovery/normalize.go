package discovery

import (
	"bytes"
	"encoding/json"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/feral-file/ff-token-sweeper/internal/domain"
)

const DEFAULT_DECIMALS = 18

// Field priority for each token attribute. The first key holding a usable value wins.
var (
	arrayKeys    = []string{"result", "data", "tokens", "assets", "items"}
	addressKeys  = []string{"token_address", "address", "contract_address", "tokenAddress", "contractAddress"}
	balanceKeys  = []string{"balance", "raw_balance", "balance_raw", "rawBalance", "amount"}
	decimalsKeys = []string{"decimals", "token_decimals"}
	nameKeys     = []string{"name", "token_name"}
	symbolKeys   = []string{"symbol", "token_symbol"}
	priceKeys    = []string{"usd_price", "usdPrice", "price_usd", "price"}
	valueKeys    = []string{"usd_value", "usdValue", "value_usd"}
	logoKeys     = []string{"logo", "thumbnail", "logo_url", "logoURI"}
	spamKeys     = []string{"possible_spam", "is_spam", "spam"}
	nativeKeys   = []string{"native_token", "is_native", "isNative"}
)

// NormalizeAssets converts a balance provider payload into tokens.
//
// The asset array is taken from a bare JSON array, or from the first of
// result, data, tokens, assets, items holding an array. A payload without any
// recognizable array yields no tokens. Records that are not JSON objects are skipped.
//
// Per record:
//   - balance is a base-unit integer; exponential notation is expanded, fractions
//     are truncated, and negative or unparseable values become 0
//   - decimals defaults to 18 and is clamped to 0..255
//   - usd_value is taken as given, or computed as price × balance / 10^decimals
//   - a record is native when flagged or when its address is a sentinel; the
//     native address is canonicalised to the zero address
//   - supports_erc is passed through lowercased; absent means untagged
func NormalizeAssets(payload []byte) []domain.Token {
	records := extractRecords(payload)
	tokens := make([]domain.Token, 0, len(records))

	for _, raw := range records {
		record, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		tokens = append(tokens, normalizeRecord(record))
	}

	return tokens
}

func extractRecords(payload []byte) []interface{} {
	decoder := json.NewDecoder(bytes.NewReader(payload))
	decoder.UseNumber()

	var root interface{}
	if err := decoder.Decode(&root); err != nil {
		return nil
	}

	switch v := root.(type) {
	case []interface{}:
		return v
	case map[string]interface{}:
		for _, key := range arrayKeys {
			if arr, ok := v[key].([]interface{}); ok {
				return arr
			}
		}
	}

	return nil
}

func normalizeRecord(record map[string]interface{}) domain.Token {
	address := domain.NormalizeAddress(firstString(record, addressKeys...))
	isNative := firstBool(record, nativeKeys...) || domain.IsNativeSentinel(address)
	if isNative {
		address = domain.ETHEREUM_ZERO_ADDRESS
	}

	token := domain.Token{
		Address:  address,
		Name:     firstString(record, nameKeys...),
		Symbol:   firstString(record, symbolKeys...),
		Decimals: parseDecimals(first(record, decimalsKeys...)),
		Balance:  parseBalance(first(record, balanceKeys...)),
		IsNative: isNative,
		IsSpam:   firstBool(record, spamKeys...),
		Logo:     firstString(record, logoKeys...),
	}

	token.USDPrice = parseNonNegative(first(record, priceKeys...))
	token.USDValue = parseNonNegative(first(record, valueKeys...))
	if token.USDValue == nil && token.USDPrice != nil {
		value := ComputeUSDValue(*token.USDPrice, token.Balance, token.Decimals)
		token.USDValue = &value
	}

	token.SupportsERC = parseStandards(record["supports_erc"])

	return token
}

// ComputeUSDValue returns price × balance / 10^decimals
func ComputeUSDValue(price decimal.Decimal, balance *big.Int, decimals uint8) decimal.Decimal {
	if balance == nil {
		return decimal.Zero
	}
	return price.Mul(decimal.NewFromBigInt(balance, -int32(decimals)))
}

// FormatAmount renders base units as a human-readable amount, e.g. 1500000 with 6 decimals is "1.5"
func FormatAmount(balance *big.Int, decimals uint8) string {
	if balance == nil {
		return "0"
	}
	return decimal.NewFromBigInt(balance, -int32(decimals)).String()
}

func first(record map[string]interface{}, keys ...string) interface{} {
	for _, key := range keys {
		if v, ok := record[key]; ok && v != nil {
			if s, isString := v.(string); isString && strings.TrimSpace(s) == "" {
				continue
			}
			return v
		}
	}
	return nil
}

func firstString(record map[string]interface{}, keys ...string) string {
	switch v := first(record, keys...).(type) {
	case string:
		return strings.TrimSpace(v)
	case json.Number:
		return v.String()
	default:
		return ""
	}
}

func firstBool(record map[string]interface{}, keys ...string) bool {
	for _, key := range keys {
		switch v := record[key].(type) {
		case bool:
			return v
		case string:
			switch strings.ToLower(strings.TrimSpace(v)) {
			case "true":
				return true
			case "false":
				return false
			}
		}
	}
	return false
}

func toDecimal(v interface{}) (decimal.Decimal, bool) {
	var s string
	switch t := v.(type) {
	case string:
		s = strings.TrimSpace(t)
	case json.Number:
		s = t.String()
	default:
		return decimal.Zero, false
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

func parseBalance(v interface{}) *big.Int {
	if s, ok := v.(string); ok {
		if n, ok := new(big.Int).SetString(strings.TrimSpace(s), 10); ok {
			if n.Sign() < 0 {
				return new(big.Int)
			}
			return n
		}
	}

	d, ok := toDecimal(v)
	if !ok || d.Sign() < 0 {
		return new(big.Int)
	}
	return d.BigInt()
}

func parseDecimals(v interface{}) uint8 {
	d, ok := toDecimal(v)
	if !ok {
		return DEFAULT_DECIMALS
	}

	n := d.IntPart()
	switch {
	case n < 0:
		return 0
	case n > 255:
		return 255
	default:
		return uint8(n)
	}
}

func parseNonNegative(v interface{}) *decimal.Decimal {
	d, ok := toDecimal(v)
	if !ok || d.Sign() < 0 {
		return nil
	}
	return &d
}

func parseStandards(v interface{}) []string {
	arr, ok := v.([]interface{})
	if !ok {
		return nil
	}

	standards := make([]string, 0, len(arr))
	for _, item := range arr {
		if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
			standards = append(standards, strings.ToLower(strings.TrimSpace(s)))
		}
	}
	if len(standards) == 0 {
		return nil
	}
	return standards
}
