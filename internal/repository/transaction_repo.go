// internal/repository/transaction_repo.go
package repository

import (
	"context"

	"coinquest/internal/domain"
)

// TransactionRepository defines the interface for wallet ledger entries.
type TransactionRepository interface {
	// CreateTransaction appends a ledger entry and sets its ID.
	CreateTransaction(ctx context.Context, q DBExecutor, transaction *domain.Transaction) error
	// GetTransactionsByWalletID returns the most recent entries of a wallet, newest first.
	GetTransactionsByWalletID(ctx context.Context, q DBExecutor, walletID int64, limit int) ([]domain.Transaction, error)
}
