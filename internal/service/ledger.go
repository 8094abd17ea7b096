// internal/service/ledger.go
package service

import (
	"context"
	"fmt"
	"time"

	"coinquest/internal/domain"
	"coinquest/internal/repository"
	"coinquest/internal/util"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ledger applies balance mutations and appends the matching Transaction.
// It runs on whatever executor it is given, so callers decide the transaction boundary.
type ledger struct {
	wallets      repository.WalletRepository
	transactions repository.TransactionRepository
}

// wallet returns the user's wallet, creating it with the defaults first if needed.
func (l ledger) wallet(ctx context.Context, q repository.DBExecutor, userID uuid.UUID, forUpdate bool) (*domain.Wallet, error) {
	if err := l.wallets.EnsureWallet(ctx, q, domain.NewWallet(userID)); err != nil {
		return nil, err
	}
	get := l.wallets.GetWalletByUserID
	if forUpdate {
		get = l.wallets.GetWalletByUserIDForUpdate
	}
	wallet, err := get(ctx, q, userID)
	if err != nil {
		if util.IsError(err, util.ErrNotFound) {
			return nil, util.ErrWalletNotFound
		}
		return nil, err
	}
	return wallet, nil
}

// credit adds amount to the balance selected by kind: earning goes to lucre and
// totalEarned, income goes to the discretionary balance.
func (l ledger) credit(ctx context.Context, q repository.DBExecutor, wallet *domain.Wallet, amount decimal.Decimal, kind domain.TransactionType, description string) (*domain.Transaction, error) {
	if !amount.IsPositive() || !domain.IsCents(amount) {
		return nil, util.ErrInvalidInput
	}
	switch kind {
	case domain.TransactionTypeEarning:
		wallet.LucreBalance = wallet.LucreBalance.Add(amount)
		wallet.TotalEarned = wallet.TotalEarned.Add(amount)
	case domain.TransactionTypeIncome:
		wallet.DiscretionaryBalance = wallet.DiscretionaryBalance.Add(amount)
	default:
		return nil, fmt.Errorf("%w: cannot credit a %q transaction", util.ErrInvalidInput, kind)
	}
	return l.record(ctx, q, wallet, kind, description, amount)
}

// debit takes amount from the discretionary balance.
func (l ledger) debit(ctx context.Context, q repository.DBExecutor, wallet *domain.Wallet, amount decimal.Decimal, description string) (*domain.Transaction, error) {
	if !amount.IsPositive() || !domain.IsCents(amount) {
		return nil, util.ErrInvalidInput
	}
	if amount.GreaterThan(wallet.DiscretionaryBalance) {
		return nil, util.ErrInsufficientFunds
	}
	wallet.DiscretionaryBalance = wallet.DiscretionaryBalance.Sub(amount)
	return l.record(ctx, q, wallet, domain.TransactionTypeExpense, description, amount.Neg())
}

// payout moves the whole lucre balance into both the active and the discretionary
// balance. It returns a nil Transaction when there is nothing to pay out.
func (l ledger) payout(ctx context.Context, q repository.DBExecutor, wallet *domain.Wallet, now time.Time) (*domain.Transaction, error) {
	if !wallet.LucreBalance.IsPositive() {
		return nil, nil
	}
	amount := wallet.LucreBalance
	wallet.LucreBalance = decimal.Zero
	wallet.ActiveBalance = wallet.ActiveBalance.Add(amount)
	wallet.DiscretionaryBalance = wallet.DiscretionaryBalance.Add(amount)
	wallet.LastPayout = now
	return l.record(ctx, q, wallet, domain.TransactionTypeIncome, "Weekly payout", amount)
}

// record persists the wallet and appends one Transaction snapshotting the discretionary balance.
func (l ledger) record(ctx context.Context, q repository.DBExecutor, wallet *domain.Wallet, kind domain.TransactionType, description string, amount decimal.Decimal) (*domain.Transaction, error) {
	if err := l.wallets.UpdateWallet(ctx, q, wallet); err != nil {
		return nil, err
	}
	transaction := domain.NewTransaction(wallet.ID, kind, description, amount, wallet.DiscretionaryBalance)
	if err := l.transactions.CreateTransaction(ctx, q, transaction); err != nil {
		return nil, err
	}
	return transaction, nil
}
