package errors

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"strings"

	"github.com/feral-file/ff-token-sweeper/internal/domain"
	"github.com/feral-file/ff-token-sweeper/internal/session"
)

// ErrorCode represents a standardized error code
type ErrorCode string

const (
	// Client errors (4xx)
	ErrCodeBadRequest       ErrorCode = "bad_request"
	ErrCodeNotFound         ErrorCode = "not_found"
	ErrCodeValidationFailed ErrorCode = "validation_failed"
	ErrCodeUnauthorized     ErrorCode = "unauthorized"
	ErrCodeForbidden        ErrorCode = "forbidden"
	ErrCodeUnsupportedChain ErrorCode = "unsupported_chain"
	ErrCodeNoValidTransfers ErrorCode = "no_valid_transfers"
	ErrCodeStaleSelection   ErrorCode = "stale_selection"
	ErrCodeRequestCanceled  ErrorCode = "request_canceled"

	// Server errors (5xx)
	ErrCodeInternalError       ErrorCode = "internal_error"
	ErrCodeServiceError        ErrorCode = "service_error"
	ErrCodeProviderUnavailable ErrorCode = "provider_unavailable"
	ErrCodeProviderError       ErrorCode = "provider_error"
)

// APIError represents a structured API error that carries error code and details
type APIError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	jsonErr, _ := json.Marshal(e)
	return string(jsonErr)
}

// StatusCode returns the HTTP status matching the error code
func (e *APIError) StatusCode() int {
	switch e.Code {
	case ErrCodeBadRequest, ErrCodeValidationFailed, ErrCodeUnsupportedChain:
		return http.StatusBadRequest
	case ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrCodeForbidden:
		return http.StatusForbidden
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeRequestCanceled:
		return http.StatusRequestTimeout
	case ErrCodeStaleSelection:
		return http.StatusConflict
	case ErrCodeNoValidTransfers:
		return http.StatusUnprocessableEntity
	case ErrCodeProviderError:
		return http.StatusBadGateway
	case ErrCodeProviderUnavailable, ErrCodeServiceError:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Error constructors for common error types
func NewBadRequestError(message string, details ...string) *APIError {
	return &APIError{
		Code:    ErrCodeBadRequest,
		Message: message,
		Details: strings.Join(details, ", "),
	}
}

func NewNotFoundError(message string, details ...string) *APIError {
	return &APIError{
		Code:    ErrCodeNotFound,
		Message: message,
		Details: strings.Join(details, ", "),
	}
}

func NewValidationError(details ...string) *APIError {
	return &APIError{
		Code:    ErrCodeValidationFailed,
		Message: "Validation failed",
		Details: strings.Join(details, ", "),
	}
}

func NewUnauthorizedError(message string, details ...string) *APIError {
	return &APIError{
		Code:    ErrCodeUnauthorized,
		Message: message,
		Details: strings.Join(details, ", "),
	}
}

func NewInternalError(message string, details ...string) *APIError {
	return &APIError{
		Code:    ErrCodeInternalError,
		Message: message,
		Details: strings.Join(details, ", "),
	}
}

func NewServiceError(message string, details ...string) *APIError {
	return &APIError{
		Code:    ErrCodeServiceError,
		Message: message,
		Details: strings.Join(details, ", "),
	}
}

// FromError converts any error into an APIError. Messages come from the domain
// error taxonomy so upstream response bodies never reach the client.
func FromError(err error) *APIError {
	if err == nil {
		return nil
	}

	var apiErr *APIError
	if stderrors.As(err, &apiErr) {
		return apiErr
	}

	if stderrors.Is(err, session.ErrStale) {
		return &APIError{
			Code:    ErrCodeStaleSelection,
			Message: "The wallet or chain changed before the request completed",
		}
	}

	message := domain.UserMessage(err)
	switch domain.KindOf(err) {
	case domain.ErrorKindValidation:
		return &APIError{Code: ErrCodeValidationFailed, Message: message, Details: err.Error()}
	case domain.ErrorKindUnsupportedChain:
		return &APIError{Code: ErrCodeUnsupportedChain, Message: message}
	case domain.ErrorKindNoValidTransfers:
		return &APIError{Code: ErrCodeNoValidTransfers, Message: message}
	case domain.ErrorKindCanceled:
		return &APIError{Code: ErrCodeRequestCanceled, Message: message}
	case domain.ErrorKindUpstream, domain.ErrorKindNetwork:
		return &APIError{Code: ErrCodeProviderError, Message: message}
	case domain.ErrorKindAuthExhausted, domain.ErrorKindConfiguration:
		return &APIError{Code: ErrCodeProviderUnavailable, Message: message}
	default:
		return &APIError{Code: ErrCodeInternalError, Message: message}
	}
}
