package domain

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrNoCredentials is returned when a provider has no API keys configured
	ErrNoCredentials = errors.New("no credentials configured")

	// ErrUnsupportedChain is returned when a chain has no provider mapping
	ErrUnsupportedChain = errors.New("unsupported chain")

	// ErrAuthExhausted is returned when every configured credential was rejected or failed
	ErrAuthExhausted = errors.New("all credentials exhausted")

	// ErrNoValidTransfers is returned when a build produced an empty batch
	ErrNoValidTransfers = errors.New("no valid transfers")

	// ErrCallReverted is returned when a simulated call would revert
	ErrCallReverted = errors.New("call would revert")

	// ErrInvalidAddress is returned for malformed hex addresses
	ErrInvalidAddress = errors.New("invalid address")

	// ErrZeroAddress is returned when the zero address is used as a participant
	ErrZeroAddress = errors.New("zero address not allowed")

	// ErrSelfTransfer is returned when destination equals sender
	ErrSelfTransfer = errors.New("destination equals sender")
)

// UpstreamError is a non-2xx, non-auth response from a provider
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream returned status %d", e.StatusCode)
}

// NetworkError wraps a connection-level failure or timeout
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// ValidationError reports a malformed request parameter
type ValidationError struct {
	Address string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Address == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Address)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// ErrorKind classifies errors for user-facing reporting
type ErrorKind string

const (
	ErrorKindNone             ErrorKind = ""
	ErrorKindConfiguration    ErrorKind = "configuration"
	ErrorKindUnsupportedChain ErrorKind = "unsupported_chain"
	ErrorKindNetwork          ErrorKind = "network"
	ErrorKindUpstream         ErrorKind = "upstream"
	ErrorKindAuthExhausted    ErrorKind = "auth_exhausted"
	ErrorKindValidation       ErrorKind = "validation"
	ErrorKindNoValidTransfers ErrorKind = "no_valid_transfers"
	ErrorKindCanceled         ErrorKind = "canceled"
	ErrorKindInternal         ErrorKind = "internal"
)

// KindOf maps an error onto the taxonomy.
// AuthExhausted is checked before Upstream/Network since it wraps the last failure.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ErrorKindNone
	}

	var validationErr *ValidationError
	var upstreamErr *UpstreamError
	var networkErr *NetworkError

	switch {
	case errors.Is(err, ErrNoCredentials):
		return ErrorKindConfiguration
	case errors.Is(err, ErrUnsupportedChain):
		return ErrorKindUnsupportedChain
	case errors.Is(err, ErrAuthExhausted):
		return ErrorKindAuthExhausted
	case errors.As(err, &validationErr):
		return ErrorKindValidation
	case errors.Is(err, ErrNoValidTransfers):
		return ErrorKindNoValidTransfers
	case errors.As(err, &upstreamErr):
		return ErrorKindUpstream
	case errors.As(err, &networkErr):
		return ErrorKindNetwork
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return ErrorKindCanceled
	default:
		return ErrorKindInternal
	}
}

// UserMessage returns a message suitable for end users; raw upstream text is never exposed
func UserMessage(err error) string {
	switch KindOf(err) {
	case ErrorKindNone:
		return ""
	case ErrorKindConfiguration:
		return "The token data provider is not configured"
	case ErrorKindUnsupportedChain:
		return "This chain is not supported"
	case ErrorKindNetwork:
		return "Could not reach the token data provider, please try again"
	case ErrorKindUpstream:
		return "The token data provider returned an error"
	case ErrorKindAuthExhausted:
		return "The token data provider is temporarily unavailable"
	case ErrorKindValidation:
		var validationErr *ValidationError
		if errors.As(err, &validationErr) {
			switch {
			case errors.Is(validationErr, ErrSelfTransfer):
				return "Destination must differ from the sending wallet"
			case errors.Is(validationErr, ErrZeroAddress):
				return "The zero address cannot be used"
			}
		}
		return "The address is not a valid wallet address"
	case ErrorKindNoValidTransfers:
		return "No tokens can be transferred from this wallet right now"
	case ErrorKindCanceled:
		return "The request was canceled"
	default:
		return "Something went wrong"
	}
}
