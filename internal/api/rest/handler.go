package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/feral-file/ff-token-sweeper/internal/api/shared/dto"
	"github.com/feral-file/ff-token-sweeper/internal/api/shared/executor"
)

// Handler defines the interface for REST API handlers
// This interface allows for easy mocking and testing
type Handler interface {
	// GetWalletTokens discovers the fungible tokens of a wallet
	// GET /api/v1/wallets/:address/tokens?chain=<caip-2 chain or chain id>
	GetWalletTokens(c *gin.Context)

	// BuildTransfers builds a sweep batch (requires authentication)
	// POST /api/v1/transfers/build
	BuildTransfers(c *gin.Context)

	// InvalidateCaches invalidates the balance cache and/or verified token lists (requires API key)
	// POST /api/v1/cache/invalidate
	InvalidateCaches(c *gin.Context)

	// HealthCheck returns the health status of the API
	// GET /health
	HealthCheck(c *gin.Context)
}

// handler implements the Handler interface
type handler struct {
	executor executor.Executor
}

// NewHandler creates a new REST API handler using the shared executor
func NewHandler(exec executor.Executor) Handler {
	return &handler{
		executor: exec,
	}
}

// GetWalletTokens discovers the fungible tokens of a wallet
func (h *handler) GetWalletTokens(c *gin.Context) {
	address := c.Param("address")
	if address == "" {
		respondBadRequest(c, "Wallet address is required")
		return
	}

	query, err := ParseWalletTokensQuery(c)
	if err != nil {
		respondValidationError(c, err.Error())
		return
	}

	session, err := sessionID(c)
	if err != nil {
		respondValidationError(c, err.Error())
		return
	}

	resp, err := h.executor.GetWalletTokens(c.Request.Context(), address, query.Chain, session)
	if err != nil {
		respondError(c, err,
			zap.String("wallet", address),
			zap.String("chain", string(query.Chain)))
		return
	}

	c.JSON(http.StatusOK, resp)
}

// BuildTransfers builds a sweep batch for the sender
func (h *handler) BuildTransfers(c *gin.Context) {
	var req dto.BuildTransfersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body", err.Error())
		return
	}

	session, err := sessionID(c)
	if err != nil {
		respondValidationError(c, err.Error())
		return
	}

	resp, err := h.executor.BuildTransfers(c.Request.Context(), &req, session)
	if err != nil {
		respondError(c, err,
			zap.String("sender", req.Sender),
			zap.String("chain", req.Chain))
		return
	}

	c.JSON(http.StatusOK, resp)
}

// InvalidateCaches bumps the cache versions of the requested scope
func (h *handler) InvalidateCaches(c *gin.Context) {
	var req dto.InvalidateCacheRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBadRequest(c, "Invalid request body", err.Error())
			return
		}
	}

	resp, err := h.executor.InvalidateCaches(c.Request.Context(), req.Scope)
	if err != nil {
		respondError(c, err, zap.String("scope", req.Scope))
		return
	}

	c.JSON(http.StatusOK, resp)
}

// HealthCheck returns the health status of the API
func (h *handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}
