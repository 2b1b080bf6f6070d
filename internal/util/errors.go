// internal/util/errors.go
package util

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Common application-specific errors.
var (
	ErrNotFound     = errors.New("resource not found")
	ErrInvalidInput = errors.New("invalid input provided")

	// Ledger primitive errors.
	ErrInvalidAmount     = errors.New("amount must be positive")
	ErrWalletFrozen      = errors.New("wallet is frozen")
	ErrInsufficientFunds = errors.New("insufficient funds")

	// Group joining errors.
	ErrCapacityExceeded       = errors.New("no slots available")
	ErrAlreadyMember          = errors.New("already an active member of this group")
	ErrNoJoinAmountConfigured = errors.New("group joining amount not configured")

	// Settlement / data-integrity errors.
	ErrEventAlreadyDecided = errors.New("event has already been decided")
	ErrInvestedBelowZero   = errors.New("membership invested total would go below zero")

	ErrWalletNotFound = errors.New("wallet not found")
	ErrUserNotFound   = errors.New("user not found")
	ErrDuplicateEntry = errors.New("duplicate entry")
)

// InsufficientFundsError reports the required versus available amount for a
// rejected debit or group join. It wraps ErrInsufficientFunds so callers can
// match it with errors.Is.
type InsufficientFundsError struct {
	Required  decimal.Decimal
	Available decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds: required %s, available %s",
		e.Required.String(), e.Available.String())
}

func (e *InsufficientFundsError) Unwrap() error {
	return ErrInsufficientFunds
}

// IsError reports whether err matches the target sentinel error.
func IsError(err, target error) bool {
	return errors.Is(err, target)
}
