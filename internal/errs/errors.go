package errs

import (
	"errors"
	"fmt"
)

// ValidationError covers bad currency/network/address/amount input, a
// malformed order_id, and unsupported (type, status) webhook combinations.
// Nothing is created or mutated when one is returned.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

func NewValidation(format string, args ...interface{}) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// AuthenticationError means a webhook failed signature verification or came
// from a disallowed source. Never retried.
type AuthenticationError struct {
	Reason string
}

func (e *AuthenticationError) Error() string {
	return "authentication failed: " + e.Reason
}

func NewAuthentication(reason string) error {
	return &AuthenticationError{Reason: reason}
}

func IsAuthentication(err error) bool {
	var target *AuthenticationError
	return errors.As(err, &target)
}

// ConflictError signals a duplicate delivery inside the processing window or
// a compare-and-set transition mismatch. It is an idempotent no-op, not a
// failure.
type ConflictError struct {
	TxID   string
	Reason string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflict on transaction %s: %s", e.TxID, e.Reason)
}

func NewConflict(txID, reason string) error {
	return &ConflictError{TxID: txID, Reason: reason}
}

func IsConflict(err error) bool {
	var target *ConflictError
	return errors.As(err, &target)
}

// ProviderError wraps a failed call to the external payment provider:
// timeout, 5xx, or a malformed response. Retryable with bounded attempts.
type ProviderError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("provider %s failed with status %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("provider %s failed: %v", e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

func NewProvider(op string, statusCode int, err error) error {
	return &ProviderError{Op: op, StatusCode: statusCode, Err: err}
}

func IsProvider(err error) bool {
	var target *ProviderError
	return errors.As(err, &target)
}

// InsufficientBalanceError rejects a withdrawal before any mutation.
type InsufficientBalanceError struct {
	UserID    int64
	Requested int64
	Available int64
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance for user %d: requested %d, available %d",
		e.UserID, e.Requested, e.Available)
}

func IsInsufficientBalance(err error) bool {
	var target *InsufficientBalanceError
	return errors.As(err, &target)
}
