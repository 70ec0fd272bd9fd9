package errors

import (
	"fmt"
	"net/http"
)

// ErrorCode is the closed taxonomy from the system's error handling design:
// transient I/O, permanent upstream rejection, rate limiting, data contract
// violations, not-found, and empty retrieval.
type ErrorCode int

const (
	// Common error codes (1000-1999)
	ErrBadRequest         ErrorCode = 1000
	ErrUnauthorized       ErrorCode = 1001
	ErrForbidden          ErrorCode = 1002
	ErrNotFound           ErrorCode = 1003
	ErrMethodNotAllowed   ErrorCode = 1004
	ErrConflict           ErrorCode = 1005
	ErrTooManyRequests    ErrorCode = 1006
	ErrInternalServer     ErrorCode = 1007
	ErrServiceUnavailable ErrorCode = 1008
	ErrTimeout            ErrorCode = 1009
	ErrValidation         ErrorCode = 1010

	// Ingest/retrieval taxonomy (2000-2099)

	// ErrTransientIO covers network or database disconnects and model 5xx
	// responses: callers retry with capped exponential backoff; ingestion
	// leaves the work for the next reconciler pass.
	ErrTransientIO ErrorCode = 2000
	// ErrUpstreamRejected covers auth failures and non-rate-limit 4xx
	// responses from an external service: fatal to the caller, terminates
	// the chat ingestor process.
	ErrUpstreamRejected ErrorCode = 2001
	// ErrRateLimited is retried with backoff within a deadline; once the
	// deadline is exceeded it is reported as ErrTransientIO instead.
	ErrRateLimited ErrorCode = 2002
	// ErrDataContract covers a missing required field from the transcript
	// provider or a malformed vector dimension: the single work unit is
	// logged and aborted, durable state is left untouched.
	ErrDataContract ErrorCode = 2003
	// ErrEmptyRetrieval is not surfaced to callers as an error; the
	// retrieval engine resolves it into the canned apology answer.
	ErrEmptyRetrieval ErrorCode = 2004
)

// AppError is the application error structure returned across package
// boundaries and mapped to an HTTP response by the error-handling middleware.
type AppError struct {
	Code     ErrorCode `json:"code"`
	Message  string    `json:"message"`
	Details  any       `json:"details,omitempty"`
	HTTPCode int       `json:"-"`
	cause    error
}

func (e *AppError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("error code: %d, error message: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("error code: %d, error message: %s", e.Code, e.Message)
}

// Unwrap exposes the wrapped cause so errors.Is/errors.As work across the
// taxonomy.
func (e *AppError) Unwrap() error {
	return e.cause
}

// WithDetails adds error details for the API response body.
func (e *AppError) WithDetails(details any) *AppError {
	e.Details = details
	return e
}

// WithCause wraps an underlying error without losing its code/message.
func (e *AppError) WithCause(cause error) *AppError {
	e.cause = cause
	return e
}

func NewBadRequestError(message string) *AppError {
	return &AppError{Code: ErrBadRequest, Message: message, HTTPCode: http.StatusBadRequest}
}

func NewValidationError(message string) *AppError {
	return &AppError{Code: ErrValidation, Message: message, HTTPCode: http.StatusBadRequest}
}

func NewNotFoundError(message string) *AppError {
	return &AppError{Code: ErrNotFound, Message: message, HTTPCode: http.StatusNotFound}
}

func NewConflictError(message string) *AppError {
	return &AppError{Code: ErrConflict, Message: message, HTTPCode: http.StatusConflict}
}

func NewInternalServerError(message string) *AppError {
	if message == "" {
		message = "internal server error"
	}
	return &AppError{Code: ErrInternalServer, Message: message, HTTPCode: http.StatusInternalServerError}
}

// NewTransientIOError wraps a retryable I/O failure (network, database,
// upstream 5xx).
func NewTransientIOError(message string, cause error) *AppError {
	return &AppError{
		Code: ErrTransientIO, Message: message, HTTPCode: http.StatusServiceUnavailable, cause: cause,
	}
}

// NewUpstreamRejectedError wraps a permanent upstream rejection (auth
// failure, non-rate-limit 4xx).
func NewUpstreamRejectedError(message string, cause error) *AppError {
	return &AppError{Code: ErrUpstreamRejected, Message: message, HTTPCode: http.StatusBadGateway, cause: cause}
}

// NewRateLimitedError wraps a rate-limit response.
func NewRateLimitedError(message string, cause error) *AppError {
	return &AppError{Code: ErrRateLimited, Message: message, HTTPCode: http.StatusTooManyRequests, cause: cause}
}

// NewDataContractError wraps a malformed upstream payload or vector
// dimension mismatch.
func NewDataContractError(message string, cause error) *AppError {
	return &AppError{Code: ErrDataContract, Message: message, HTTPCode: http.StatusUnprocessableEntity, cause: cause}
}

// IsAppError checks if the error is an AppError.
func IsAppError(err error) (*AppError, bool) {
	appErr, ok := err.(*AppError)
	return appErr, ok
}

// IsTransient reports whether err should be retried by the caller rather
// than surfaced as a terminal failure.
func IsTransient(err error) bool {
	appErr, ok := IsAppError(err)
	if !ok {
		return false
	}
	return appErr.Code == ErrTransientIO || appErr.Code == ErrRateLimited
}
