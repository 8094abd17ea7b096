// internal/repository/wallet_repo.go
package repository

import (
	"context"

	"coinquest/internal/domain"

	"github.com/google/uuid"
)

// WalletRepository defines the interface for wallet data operations.
type WalletRepository interface {
	// EnsureWallet inserts the wallet unless the user already has one.
	// Concurrent callers for the same user end up with a single row.
	EnsureWallet(ctx context.Context, q DBExecutor, wallet *domain.Wallet) error
	// GetWalletByUserID retrieves the user's wallet, util.ErrNotFound if absent.
	GetWalletByUserID(ctx context.Context, q DBExecutor, userID uuid.UUID) (*domain.Wallet, error)
	// GetWalletByUserIDForUpdate is GetWalletByUserID holding a row lock until the transaction ends.
	GetWalletByUserIDForUpdate(ctx context.Context, q DBExecutor, userID uuid.UUID) (*domain.Wallet, error)
	// UpdateWallet persists balances, expenses and lastPayout.
	UpdateWallet(ctx context.Context, q DBExecutor, wallet *domain.Wallet) error
}
