package addressbook

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"
)

var (
	// ErrBusy is returned when an operation of the same kind is already in flight.
	ErrBusy = errors.New("operation already in progress")

	// ErrNoEditSession is returned by SubmitEdit when no edit is open.
	ErrNoEditSession = errors.New("no address is being edited")

	// ErrUnassignedIdentity is returned when a mutation targets a record the store
	// has not assigned a key to yet.
	ErrUnassignedIdentity = errors.New("address has no store identity")
)

type ErrorType string

const (
	ErrTransport    ErrorType = "transport"
	ErrNotFound     ErrorType = "not_found"
	ErrUnauthorized ErrorType = "unauthorized"
	ErrValidation   ErrorType = "validation"
	ErrTimeout      ErrorType = "timeout"
	ErrRateLimited  ErrorType = "rate_limited"
	ErrUnavailable  ErrorType = "unavailable"
)

// StoreError is a failure reported by, or on the way to, the address store.
type StoreError struct {
	Type    ErrorType
	Message string
	Code    int
	Cause   error
}

func (e *StoreError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *StoreError) Unwrap() error {
	return e.Cause
}

func NewStoreError(errType ErrorType, message string, cause error) *StoreError {
	return &StoreError{
		Type:    errType,
		Message: message,
		Cause:   cause,
	}
}

func NewTransportError(message string, cause error) *StoreError {
	return NewStoreError(ErrTransport, message, cause)
}

func NewNotFoundError(id string) *StoreError {
	return NewStoreError(ErrNotFound, fmt.Sprintf("address not found: %s", id), nil)
}

func NewTimeoutError(operation string, timeout time.Duration) *StoreError {
	return NewStoreError(ErrTimeout,
		fmt.Sprintf("operation %s timed out after %v", operation, timeout), nil)
}

func NewRateLimitedError(retryAfter time.Duration) *StoreError {
	return NewStoreError(ErrRateLimited,
		fmt.Sprintf("rate limited, retry after %v", retryAfter), nil)
}

// ClassifyError maps an arbitrary error onto the store error taxonomy.
func ClassifyError(err error) *StoreError {
	if err == nil {
		return nil
	}

	var storeErr *StoreError
	if errors.As(err, &storeErr) {
		return storeErr
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return NewStoreError(ErrTimeout, "request deadline exceeded", err)
	}

	errStr := strings.ToLower(err.Error())

	switch {
	case strings.Contains(errStr, "timeout") || strings.Contains(errStr, "deadline exceeded"):
		return NewStoreError(ErrTimeout, "request timed out", err)
	case strings.Contains(errStr, "connection refused") || strings.Contains(errStr, "no such host"):
		return NewTransportError("connection failed", err)
	case strings.Contains(errStr, "rate limit") || strings.Contains(errStr, "too many requests"):
		return NewRateLimitedError(time.Minute)
	default:
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return NewStoreError(ErrTimeout, "network operation timed out", err)
		}
		return NewTransportError("request failed", err)
	}
}

func (e *StoreError) IsRetryable() bool {
	switch e.Type {
	case ErrTransport, ErrUnavailable, ErrTimeout, ErrRateLimited:
		return true
	default:
		return false
	}
}

func (e *StoreError) UserMessage() string {
	switch e.Type {
	case ErrTransport:
		return "Could not reach the address service. Please check your connection."
	case ErrNotFound:
		return "This address no longer exists. The list has been refreshed."
	case ErrUnauthorized:
		return "Your session is not authorized. Please sign in again."
	case ErrValidation:
		return "The address service rejected the data."
	case ErrUnavailable:
		return "The address service is temporarily unavailable."
	case ErrRateLimited:
		return "Too many requests. Please wait a moment and try again."
	case ErrTimeout:
		return "Request timed out. Please try again."
	default:
		return "An unexpected error occurred."
	}
}

func IsNotFound(err error) bool {
	return hasType(err, ErrNotFound)
}

func IsTransport(err error) bool {
	return hasType(err, ErrTransport)
}

func hasType(err error, t ErrorType) bool {
	var storeErr *StoreError
	return errors.As(err, &storeErr) && storeErr.Type == t
}
