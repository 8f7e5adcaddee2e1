package tokenlist

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/feral-file/ff-token-sweeper/internal/adapter"
	"github.com/feral-file/ff-token-sweeper/internal/fetcher"
	"github.com/feral-file/ff-token-sweeper/internal/logger"
)

const PROVIDER_NAME = "tokenlist"

const API_KEY_HEADER = "X-API-Key"

var ErrNotConfigured = errors.New("verified token list endpoint not configured")

// VerifiedToken is one entry of the verified token list
type VerifiedToken struct {
	Address  string `json:"address"`
	Symbol   string `json:"symbol"`
	Decimals int    `json:"decimals"`
	Listed   *bool  `json:"listed"`
}

// VerifiedTokensResponse is the body of the verified token list endpoint
type VerifiedTokensResponse struct {
	Tokens []VerifiedToken `json:"tokens"`
}

// Client defines the interface for the verified token list to enable mocking
//
//go:generate mockgen -source=client.go -destination=../../../mocks/tokenlist_client.go -package=mocks -mock_names=Client=MockTokenListClient
type Client interface {
	// GetVerifiedTokens fetches the listed tokens of an EVM chain.
	// An empty list is a valid answer.
	GetVerifiedTokens(ctx context.Context, chainID uint64) ([]VerifiedToken, error)
}

// TokenListClient implements Client over the key-rotating fetcher
type TokenListClient struct {
	fetcher fetcher.Fetcher
	apiURL  string
	apiKeys []string
	limit   int
	json    adapter.JSON
}

// NewClient creates a new verified token list client.
// The endpoint may be public, in which case apiKeys is empty.
func NewClient(f fetcher.Fetcher, apiURL string, apiKeys []string, limit int, json adapter.JSON) Client {
	return &TokenListClient{
		fetcher: f,
		apiURL:  strings.TrimRight(apiURL, "/"),
		apiKeys: apiKeys,
		limit:   limit,
		json:    json,
	}
}

// GetVerifiedTokens fetches the listed tokens of an EVM chain
func (c *TokenListClient) GetVerifiedTokens(ctx context.Context, chainID uint64) ([]VerifiedToken, error) {
	if c.apiURL == "" {
		return nil, ErrNotConfigured
	}

	query := url.Values{}
	query.Set("chainId", strconv.FormatUint(chainID, 10))
	query.Set("limit", strconv.Itoa(c.limit))
	query.Set("listed_only", "true")

	req := fetcher.Request{
		URL:    fmt.Sprintf("%s/tokens/verified?%s", c.apiURL, query.Encode()),
		Header: API_KEY_HEADER,
	}

	credentials := c.apiKeys
	if len(credentials) == 0 {
		// public endpoint: one anonymous attempt
		req.Header = ""
		credentials = []string{""}
	}

	body, err := c.fetcher.FetchJSON(ctx, req, credentials)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch verified tokens: %w", err)
	}

	// A malformed body counts as an empty list
	var response VerifiedTokensResponse
	if err := c.json.Unmarshal(body, &response); err != nil {
		logger.WarnCtx(ctx, "Malformed verified token list, treating as empty",
			zap.Uint64("chain_id", chainID),
			zap.Error(err))
		return []VerifiedToken{}, nil
	}

	tokens := make([]VerifiedToken, 0, len(response.Tokens))
	for _, token := range response.Tokens {
		if token.Listed != nil && !*token.Listed {
			continue
		}
		if strings.TrimSpace(token.Address) == "" {
			continue
		}
		tokens = append(tokens, token)
	}

	return tokens, nil
}
