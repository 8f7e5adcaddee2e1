package moralis

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/feral-file/ff-token-sweeper/internal/adapter"
	"github.com/feral-file/ff-token-sweeper/internal/fetcher"
)

const PROVIDER_NAME = "moralis"

// API_KEY_HEADER carries the credential on every request
const API_KEY_HEADER = "X-API-Key"

// WALLET_TOKENS_LIMIT is the page size requested from the balance endpoint
const WALLET_TOKENS_LIMIT = 100

// priceResponse is the body of the ERC-20 price endpoint
type priceResponse struct {
	USDPrice decimal.NullDecimal `json:"usdPrice"`
}

// Client defines the interface for balance and price lookups to enable mocking
//
//go:generate mockgen -source=client.go -destination=../../../mocks/moralis_client.go -package=mocks -mock_names=Client=MockMoralisClient
type Client interface {
	// GetWalletTokens fetches the raw fungible balance payload of a wallet.
	// Spam and unverified contracts are excluded at the source.
	GetWalletTokens(ctx context.Context, chainName string, wallet string) ([]byte, error)

	// GetTokenPrice fetches the USD price of an ERC-20 token; nil when the provider has none
	GetTokenPrice(ctx context.Context, chainName string, tokenAddress string) (*decimal.Decimal, error)
}

// MoralisClient implements Client over the key-rotating fetcher
type MoralisClient struct {
	fetcher fetcher.Fetcher
	apiURL  string
	apiKeys []string
	json    adapter.JSON
}

// NewClient creates a new balance provider client
func NewClient(f fetcher.Fetcher, apiURL string, apiKeys []string, json adapter.JSON) Client {
	return &MoralisClient{
		fetcher: f,
		apiURL:  strings.TrimRight(apiURL, "/"),
		apiKeys: apiKeys,
		json:    json,
	}
}

// GetWalletTokens fetches the raw fungible balance payload of a wallet
func (c *MoralisClient) GetWalletTokens(ctx context.Context, chainName string, wallet string) ([]byte, error) {
	query := url.Values{}
	query.Set("chain", chainName)
	query.Set("exclude_spam", "true")
	query.Set("exclude_unverified_contracts", "true")
	query.Set("limit", fmt.Sprintf("%d", WALLET_TOKENS_LIMIT))

	endpoint := fmt.Sprintf("%s/wallets/%s/tokens?%s",
		c.apiURL,
		url.PathEscape(strings.ToLower(wallet)),
		query.Encode(),
	)

	body, err := c.fetcher.FetchJSON(ctx, fetcher.Request{URL: endpoint, Header: API_KEY_HEADER}, c.apiKeys)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch wallet tokens: %w", err)
	}

	return body, nil
}

// GetTokenPrice fetches the USD price of an ERC-20 token
func (c *MoralisClient) GetTokenPrice(ctx context.Context, chainName string, tokenAddress string) (*decimal.Decimal, error) {
	query := url.Values{}
	query.Set("chain", chainName)

	endpoint := fmt.Sprintf("%s/erc20/%s/price?%s",
		c.apiURL,
		url.PathEscape(strings.ToLower(tokenAddress)),
		query.Encode(),
	)

	body, err := c.fetcher.FetchJSON(ctx, fetcher.Request{URL: endpoint, Header: API_KEY_HEADER}, c.apiKeys)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch token price: %w", err)
	}

	var response priceResponse
	if err := c.json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to unmarshal price response: %w", err)
	}

	if !response.USDPrice.Valid || response.USDPrice.Decimal.IsNegative() {
		return nil, nil
	}

	price := response.USDPrice.Decimal
	return &price, nil
}
