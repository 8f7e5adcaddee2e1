package dto

import (
	"time"

	"github.com/feral-file/ff-token-sweeper/internal/discovery"
	"github.com/feral-file/ff-token-sweeper/internal/domain"
)

// TokenResponse represents one fungible balance of a wallet
type TokenResponse struct {
	Address     string   `json:"address"`
	Name        string   `json:"name"`
	Symbol      string   `json:"symbol"`
	Decimals    uint8    `json:"decimals"`
	Balance     string   `json:"balance"`           // Base units
	Amount      string   `json:"amount"`            // Balance scaled by decimals
	USDPrice    *string  `json:"usd_price"`         // Null when the provider has no quote
	USDValue    *string  `json:"usd_value"`         // Null when the provider has no quote
	IsNative    bool     `json:"is_native"`
	SupportsERC []string `json:"supports_erc,omitempty"`
	Logo        string   `json:"logo,omitempty"`
}

// WalletTokensResponse represents the discovered tokens of a wallet on a chain
type WalletTokensResponse struct {
	Wallet string          `json:"wallet"`
	Chain  domain.Chain    `json:"chain"`
	Tokens []TokenResponse `json:"tokens"`
	// NoTokens is the soft "no tokens found" condition, not an error
	NoTokens  bool       `json:"no_tokens"`
	FromCache bool       `json:"from_cache"`
	Stale     bool       `json:"stale"`
	Degraded  bool       `json:"degraded"`
	StoredAt  *time.Time `json:"stored_at,omitempty"`
}

// MapTokenToDTO maps a domain token to its response
func MapTokenToDTO(token domain.Token) TokenResponse {
	resp := TokenResponse{
		Address:     token.Address,
		Name:        token.Name,
		Symbol:      token.Symbol,
		Decimals:    token.Decimals,
		Balance:     "0",
		Amount:      "0",
		IsNative:    token.IsNative,
		SupportsERC: token.SupportsERC,
		Logo:        token.Logo,
	}

	if token.Balance != nil {
		resp.Balance = token.Balance.String()
		resp.Amount = discovery.FormatAmount(token.Balance, token.Decimals)
	}
	if token.USDPrice != nil {
		price := token.USDPrice.String()
		resp.USDPrice = &price
	}
	if token.USDValue != nil {
		value := token.USDValue.StringFixed(2)
		resp.USDValue = &value
	}

	return resp
}

// MapWalletTokensToDTO maps a discovery result to its response
func MapWalletTokensToDTO(wallet string, chain domain.Chain, result *discovery.Result) *WalletTokensResponse {
	resp := &WalletTokensResponse{
		Wallet:    domain.NormalizeAddress(wallet),
		Chain:     chain,
		Tokens:    make([]TokenResponse, 0, len(result.Tokens)),
		NoTokens:  result.NoTokens,
		FromCache: result.FromCache,
		Stale:     result.Stale,
		Degraded:  result.Degraded,
	}

	for _, token := range result.Tokens {
		resp.Tokens = append(resp.Tokens, MapTokenToDTO(token))
	}

	if !result.StoredAt.IsZero() {
		storedAt := result.StoredAt
		resp.StoredAt = &storedAt
	}

	return resp
}
