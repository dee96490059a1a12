package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError provides a structured error that can be rendered to API consumers.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

func (e *AppError) Error() string {
	if e == nil {
		return "<nil>"
	}

	if e.Internal != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Internal)
	}

	return e.Message
}

// Unwrap exposes the internal error for errors.Is / errors.As compatibility.
func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Internal
}

// WithInternal returns a copy of the AppError with an attached internal error.
func (e *AppError) WithInternal(err error) *AppError {
	if e == nil {
		return nil
	}

	cpy := *e
	cpy.Internal = err
	return &cpy
}

// Details reports the diagnostic text carried by the internal error, if any.
// Lookup failures deliberately surface upstream error text to clients.
func (e *AppError) Details() string {
	if e == nil || e.Internal == nil {
		return ""
	}
	return e.Internal.Error()
}

// Common errors exposed to the rest of the application.
var (
	ErrInvalidDomain = &AppError{
		Code:       "INVALID_DOMAIN",
		Message:    "Invalid domain name",
		StatusCode: http.StatusBadRequest,
	}

	ErrLookupTimeout = &AppError{
		Code:       "LOOKUP_TIMEOUT",
		Message:    "WHOIS lookup timed out",
		StatusCode: http.StatusGatewayTimeout,
	}

	ErrLookupFailed = &AppError{
		Code:       "LOOKUP_FAILED",
		Message:    "WHOIS lookup failed",
		StatusCode: http.StatusInternalServerError,
	}

	ErrProcessingFailed = &AppError{
		Code:       "PROCESSING_FAILED",
		Message:    "Failed to process WHOIS response",
		StatusCode: http.StatusInternalServerError,
	}

	ErrNotFound = &AppError{
		Code:       "NOT_FOUND",
		Message:    "Resource not found",
		StatusCode: http.StatusNotFound,
	}

	ErrBadRequest = &AppError{
		Code:       "BAD_REQUEST",
		Message:    "Invalid request",
		StatusCode: http.StatusBadRequest,
	}

	ErrInternalServer = &AppError{
		Code:       "INTERNAL_SERVER_ERROR",
		Message:    "Internal server error",
		StatusCode: http.StatusInternalServerError,
	}

	ErrRateLimit = &AppError{
		Code:       "RATE_LIMIT_EXCEEDED",
		Message:    "Too many requests, please slow down",
		StatusCode: http.StatusTooManyRequests,
	}
)

// New builds a new application error with the provided metadata.
func New(code, message string, statusCode int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
	}
}

// Wrap turns any error into an AppError while keeping the original error for logging.
func Wrap(err error, message string) *AppError {
	return &AppError{
		Code:       "INTERNAL_ERROR",
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Internal:   err,
	}
}

// FromError converts a generic error into an AppError, defaulting to ErrInternalServer.
func FromError(err error) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	return ErrInternalServer.WithInternal(err)
}

// NewBadRequest wraps validation errors with a helpful message.
func NewBadRequest(message string) *AppError {
	return &AppError{
		Code:       ErrBadRequest.Code,
		Message:    message,
		StatusCode: ErrBadRequest.StatusCode,
	}
}

// NewInvalidDomain reports an allow-list rejection for the given input.
func NewInvalidDomain(domain string) *AppError {
	return &AppError{
		Code:       ErrInvalidDomain.Code,
		Message:    fmt.Sprintf("Invalid domain name: %q", domain),
		StatusCode: ErrInvalidDomain.StatusCode,
	}
}
