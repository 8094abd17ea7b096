// internal/util/errors.go
package util

import "errors"

// Common application-specific errors.
var (
	ErrNotFound           = errors.New("resource not found")
	ErrInvalidInput       = errors.New("invalid input provided")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrInsufficientShares = errors.New("not enough shares to sell")
	ErrWalletNotFound     = errors.New("wallet not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrStockNotFound      = errors.New("stock not found")
	ErrModuleNotFound     = errors.New("module not found")
	ErrDuplicateEntry     = errors.New("duplicate entry") // For cases like signing up with an existing email
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUnauthorized       = errors.New("authentication required")
)

// IsError reports whether err matches target anywhere in its wrap chain.
func IsError(err, target error) bool {
	return errors.Is(err, target)
}

// IsNotFound reports whether err belongs to the not-found family.
func IsNotFound(err error) bool {
	return IsError(err, ErrNotFound) ||
		IsError(err, ErrWalletNotFound) ||
		IsError(err, ErrUserNotFound) ||
		IsError(err, ErrStockNotFound) ||
		IsError(err, ErrModuleNotFound)
}
