// internal/repository/postgres/wallet_pg.go
package postgres

import (
	"context"
	"fmt"
	"time"

	"coinquest/internal/domain"
	"coinquest/internal/repository"

	"github.com/google/uuid"
)

const walletColumns = `id, user_id, lucre_balance, active_balance, discretionary_balance, total_earned, last_payout,
	expense_tax, expense_rent, expense_food, expense_utilities, expense_other, created_at, updated_at`

// WalletRepository implements repository.WalletRepository for PostgreSQL.
type WalletRepository struct{}

// NewWalletRepository creates a new WalletRepository.
func NewWalletRepository() repository.WalletRepository {
	return &WalletRepository{}
}

// EnsureWallet inserts the wallet; an existing row for the user wins.
func (r *WalletRepository) EnsureWallet(ctx context.Context, q repository.DBExecutor, wallet *domain.Wallet) error {
	query := `INSERT INTO wallets (user_id, lucre_balance, active_balance, discretionary_balance, total_earned, last_payout,
              expense_tax, expense_rent, expense_food, expense_utilities, expense_other, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
              ON CONFLICT (user_id) DO NOTHING`
	_, err := q.ExecContext(ctx, query,
		wallet.UserID, wallet.LucreBalance, wallet.ActiveBalance, wallet.DiscretionaryBalance, wallet.TotalEarned,
		wallet.LastPayout, wallet.Tax, wallet.Rent, wallet.Food, wallet.Utilities, wallet.Other,
		wallet.CreatedAt, wallet.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to ensure wallet for user %s: %w", wallet.UserID, mapError(err))
	}
	return nil
}

// GetWalletByUserID retrieves a wallet by its owner.
func (r *WalletRepository) GetWalletByUserID(ctx context.Context, q repository.DBExecutor, userID uuid.UUID) (*domain.Wallet, error) {
	return r.get(ctx, q, `SELECT `+walletColumns+` FROM wallets WHERE user_id = $1`, userID)
}

// GetWalletByUserIDForUpdate retrieves and locks a wallet by its owner.
func (r *WalletRepository) GetWalletByUserIDForUpdate(ctx context.Context, q repository.DBExecutor, userID uuid.UUID) (*domain.Wallet, error) {
	return r.get(ctx, q, `SELECT `+walletColumns+` FROM wallets WHERE user_id = $1 FOR UPDATE`, userID)
}

func (r *WalletRepository) get(ctx context.Context, q repository.DBExecutor, query string, userID uuid.UUID) (*domain.Wallet, error) {
	var wallet domain.Wallet
	if err := q.GetContext(ctx, &wallet, query, userID); err != nil {
		return nil, fmt.Errorf("failed to get wallet for user %s: %w", userID, mapError(err))
	}
	return &wallet, nil
}

// UpdateWallet persists balances and expenses.
func (r *WalletRepository) UpdateWallet(ctx context.Context, q repository.DBExecutor, wallet *domain.Wallet) error {
	wallet.UpdatedAt = time.Now().UTC()
	query := `UPDATE wallets SET lucre_balance = $1, active_balance = $2, discretionary_balance = $3, total_earned = $4,
              last_payout = $5, expense_tax = $6, expense_rent = $7, expense_food = $8, expense_utilities = $9,
              expense_other = $10, updated_at = $11
              WHERE id = $12`
	res, err := q.ExecContext(ctx, query,
		wallet.LucreBalance, wallet.ActiveBalance, wallet.DiscretionaryBalance, wallet.TotalEarned, wallet.LastPayout,
		wallet.Tax, wallet.Rent, wallet.Food, wallet.Utilities, wallet.Other, wallet.UpdatedAt,
		wallet.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update wallet %d: %w", wallet.ID, mapError(err))
	}
	if err := checkAffected(res); err != nil {
		return fmt.Errorf("failed to update wallet %d: %w", wallet.ID, err)
	}
	return nil
}
