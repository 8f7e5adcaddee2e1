package domain

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Chain represents the blockchain network identifier using CAIP-2 format
type Chain string

const (
	ChainEthereumMainnet Chain = "eip155:1"
	ChainOptimism        Chain = "eip155:10"
	ChainBSC             Chain = "eip155:56"
	ChainPolygon         Chain = "eip155:137"
	ChainBase            Chain = "eip155:8453"
	ChainArbitrum        Chain = "eip155:42161"
	ChainAvalanche       Chain = "eip155:43114"
	ChainEthereumSepolia Chain = "eip155:11155111"
)

// ParseChain accepts either a CAIP-2 identifier ("eip155:8453") or a bare
// EVM chain id ("8453") and returns the CAIP-2 chain
func ParseChain(s string) (Chain, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return "", fmt.Errorf("%w: empty chain", ErrUnsupportedChain)
	}
	if !strings.Contains(s, ":") {
		s = "eip155:" + s
	}

	chain := Chain(s)
	if _, err := chain.EVMChainID(); err != nil {
		return "", err
	}
	return chain, nil
}

// Namespace returns the CAIP-2 namespace, e.g. "eip155"
func (c Chain) Namespace() string {
	ns, _, _ := strings.Cut(string(c), ":")
	return ns
}

// Reference returns the CAIP-2 reference, e.g. "1"
func (c Chain) Reference() string {
	_, ref, _ := strings.Cut(string(c), ":")
	return ref
}

// EVMChainID returns the numeric chain id for eip155 chains
func (c Chain) EVMChainID() (uint64, error) {
	if c.Namespace() != "eip155" {
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedChain, c)
	}
	id, err := strconv.ParseUint(c.Reference(), 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedChain, c)
	}
	return id, nil
}

// Token is one fungible balance held by a wallet on one chain
type Token struct {
	Address     string           `json:"address"`
	Name        string           `json:"name"`
	Symbol      string           `json:"symbol"`
	Decimals    uint8            `json:"decimals"`
	Balance     *big.Int         `json:"balance"`
	USDPrice    *decimal.Decimal `json:"usd_price,omitempty"`
	USDValue    *decimal.Decimal `json:"usd_value,omitempty"`
	IsNative    bool             `json:"is_native"`
	IsSpam      bool             `json:"is_spam"`
	SupportsERC []string         `json:"supports_erc,omitempty"`
	Logo        string           `json:"logo,omitempty"`
}

// Value returns the USD value, treating an unknown value as zero
func (t *Token) Value() decimal.Decimal {
	if t.USDValue == nil {
		return decimal.Zero
	}
	return *t.USDValue
}

// HasBalance reports whether the token holds a strictly positive balance
func (t *Token) HasBalance() bool {
	return t.Balance != nil && t.Balance.Sign() > 0
}

// Supports reports whether the token carries the given standard tag
func (t *Token) Supports(standard string) bool {
	for _, s := range t.SupportsERC {
		if strings.EqualFold(s, standard) {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so callers never share big.Int or slice storage
func (t Token) Clone() Token {
	c := t
	if t.Balance != nil {
		c.Balance = new(big.Int).Set(t.Balance)
	}
	if t.USDPrice != nil {
		p := *t.USDPrice
		c.USDPrice = &p
	}
	if t.USDValue != nil {
		v := *t.USDValue
		c.USDValue = &v
	}
	if t.SupportsERC != nil {
		c.SupportsERC = append([]string(nil), t.SupportsERC...)
	}
	return c
}

// CloneTokens deep-copies a token list
func CloneTokens(tokens []Token) []Token {
	if tokens == nil {
		return nil
	}
	out := make([]Token, len(tokens))
	for i := range tokens {
		out[i] = tokens[i].Clone()
	}
	return out
}

// CompareByValue orders tokens by USD value descending, then by raw balance descending.
// It returns a negative number when a should come before b.
func CompareByValue(a, b *Token) int {
	if c := b.Value().Cmp(a.Value()); c != 0 {
		return c
	}
	return compareBalance(b.Balance, a.Balance)
}

func compareBalance(a, b *big.Int) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	return a.Cmp(b)
}

// TransferKind distinguishes native transfers from token transfer calls
type TransferKind string

const (
	TransferKindNative        TransferKind = "native"
	TransferKindTokenTransfer TransferKind = "token_transfer"
)

// TransferCall is one call of a sweep batch
type TransferCall struct {
	To           string          `json:"to"`
	Value        *big.Int        `json:"value"`
	Data         []byte          `json:"data,omitempty"`
	Kind         TransferKind    `json:"kind"`
	Description  string          `json:"description"`
	TokenAddress string          `json:"token_address"`
	USDValue     decimal.Decimal `json:"usd_value"`
}

// Valid checks the value/data invariants of a transfer call
func (c *TransferCall) Valid() bool {
	switch c.Kind {
	case TransferKindNative:
		return c.Value != nil && c.Value.Sign() > 0 && len(c.Data) == 0
	case TransferKindTokenTransfer:
		return (c.Value == nil || c.Value.Sign() == 0) && len(c.Data) == 4+32+32
	default:
		return false
	}
}

// PrecheckResult summarises the simulation pass of a build
type PrecheckResult struct {
	TotalCandidates int `json:"total_candidates"`
	ValidCount      int `json:"valid_count"`
	FailedCount     int `json:"failed_count"`
}

// TransferBatch is the envelope handed to the external batch submitter
type TransferBatch struct {
	ID          string         `json:"id"`
	Chain       Chain          `json:"chain"`
	Sender      string         `json:"sender"`
	Destination string         `json:"destination"`
	Calls       []TransferCall `json:"calls"`
	Precheck    PrecheckResult `json:"precheck"`
	CreatedAt   time.Time      `json:"created_at"`
}
