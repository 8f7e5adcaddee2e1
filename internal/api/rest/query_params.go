package rest

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/feral-file/ff-token-sweeper/internal/api/middleware"
	"github.com/feral-file/ff-token-sweeper/internal/api/shared/constants"
	"github.com/feral-file/ff-token-sweeper/internal/domain"
)

// WalletTokensQuery represents the query parameters for GET /api/v1/wallets/:address/tokens
type WalletTokensQuery struct {
	Chain domain.Chain
}

// ParseWalletTokensQuery parses the query parameters. The chain accepts a CAIP-2
// identifier or a bare EVM chain id and defaults to Ethereum mainnet.
func ParseWalletTokensQuery(c *gin.Context) (*WalletTokensQuery, error) {
	raw := strings.TrimSpace(c.Query("chain"))
	if raw == "" {
		return &WalletTokensQuery{Chain: domain.ChainEthereumMainnet}, nil
	}

	chain, err := domain.ParseChain(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid chain: %q", raw)
	}

	return &WalletTokensQuery{Chain: chain}, nil
}

// sessionID returns the client session of the request: the session header, or
// the authenticated subject when the header is absent
func sessionID(c *gin.Context) (string, error) {
	id := strings.TrimSpace(c.GetHeader(constants.SESSION_HEADER))
	if id == "" {
		if subject := middleware.AuthSubject(c); subject != "" {
			return "jwt:" + subject, nil
		}
		return "", nil
	}

	if len(id) > constants.MAX_SESSION_ID_LENGTH {
		return "", fmt.Errorf("%s must be at most %d characters", constants.SESSION_HEADER, constants.MAX_SESSION_ID_LENGTH)
	}
	return id, nil
}
