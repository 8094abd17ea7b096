// internal/repository/postgres/transaction_pg.go
package postgres

import (
	"context"
	"fmt"

	"coinquest/internal/domain"
	"coinquest/internal/repository"
)

// TransactionRepository implements repository.TransactionRepository for PostgreSQL.
type TransactionRepository struct{}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository() repository.TransactionRepository {
	return &TransactionRepository{}
}

// CreateTransaction inserts a new ledger entry.
func (r *TransactionRepository) CreateTransaction(ctx context.Context, q repository.DBExecutor, transaction *domain.Transaction) error {
	query := `INSERT INTO transactions (wallet_id, type, description, amount, balance_after, created_at)
              VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	err := q.QueryRowContext(ctx, query,
		transaction.WalletID,
		transaction.Type,
		transaction.Description,
		transaction.Amount,
		transaction.BalanceAfter,
		transaction.CreatedAt,
	).Scan(&transaction.ID)
	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", mapError(err))
	}
	return nil
}

// GetTransactionsByWalletID retrieves the newest entries of a wallet.
func (r *TransactionRepository) GetTransactionsByWalletID(ctx context.Context, q repository.DBExecutor, walletID int64, limit int) ([]domain.Transaction, error) {
	transactions := []domain.Transaction{}
	query := `
		SELECT id, wallet_id, type, description, amount, balance_after, created_at
		FROM transactions
		WHERE wallet_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2`
	if err := q.SelectContext(ctx, &transactions, query, walletID, limit); err != nil {
		return nil, fmt.Errorf("failed to fetch transactions for wallet %d: %w", walletID, err)
	}
	return transactions, nil
}
