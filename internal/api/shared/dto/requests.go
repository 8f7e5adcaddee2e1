package dto

import (
	"fmt"
	"strings"

	"github.com/feral-file/ff-token-sweeper/internal/api/shared/constants"
	apierrors "github.com/feral-file/ff-token-sweeper/internal/api/shared/errors"
	"github.com/feral-file/ff-token-sweeper/internal/domain"
)

// BuildTransfersRequest represents the request body for building a sweep batch
type BuildTransfersRequest struct {
	Chain       string `json:"chain"`
	Sender      string `json:"sender"`
	Destination string `json:"destination"`
	// Submit hands the batch to the batch submitter once built
	Submit bool `json:"submit"`
}

// Validate validates the request body and returns the parsed chain
func (r *BuildTransfersRequest) Validate() (domain.Chain, error) {
	if strings.TrimSpace(r.Sender) == "" {
		return "", apierrors.NewValidationError("sender is required")
	}
	if strings.TrimSpace(r.Destination) == "" {
		return "", apierrors.NewValidationError("destination is required")
	}

	chain, err := domain.ParseChain(r.Chain)
	if err != nil {
		return "", apierrors.NewValidationError(fmt.Sprintf("invalid chain: %q", r.Chain))
	}

	return chain, nil
}

// InvalidateCacheRequest represents the request body for invalidating caches
type InvalidateCacheRequest struct {
	Scope string `json:"scope"`
}

// Validate validates the request body, defaulting the scope to all caches
func (r *InvalidateCacheRequest) Validate() error {
	r.Scope = strings.ToLower(strings.TrimSpace(r.Scope))
	if r.Scope == "" {
		r.Scope = constants.CACHE_SCOPE_ALL
	}

	switch r.Scope {
	case constants.CACHE_SCOPE_BALANCES, constants.CACHE_SCOPE_VERIFIED, constants.CACHE_SCOPE_ALL:
		return nil
	default:
		return apierrors.NewValidationError(fmt.Sprintf("invalid scope: %s. Must be one of balances, verified, all", r.Scope))
	}
}
