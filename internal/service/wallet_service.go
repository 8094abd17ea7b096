// internal/service/wallet_service.go
package service

import (
	"context"
	"fmt"
	"time"

	"coinquest/internal/domain"
	"coinquest/internal/repository"
	"coinquest/internal/util"
	"coinquest/pkg/db"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultTransactionLimit is the number of ledger entries returned when no limit is given.
const DefaultTransactionLimit = 50

// WalletSummary is a wallet together with its most recent ledger entries.
type WalletSummary struct {
	Wallet       *domain.Wallet       `json:"wallet"`
	Transactions []domain.Transaction `json:"transactions"`
}

// WalletService defines the interface for wallet-related business logic.
type WalletService interface {
	GetWallet(ctx context.Context, userID uuid.UUID) (*domain.Wallet, error)
	GetSummary(ctx context.Context, userID uuid.UUID) (*WalletSummary, error)
	GetTransactions(ctx context.Context, userID uuid.UUID, limit int) ([]domain.Transaction, error)
	Credit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, kind domain.TransactionType, description string) (*domain.Wallet, *domain.Transaction, error)
	Debit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, description string) (*domain.Wallet, *domain.Transaction, error)
	Payout(ctx context.Context, userID uuid.UUID) (*domain.Wallet, *domain.Transaction, error)
	SetExpenses(ctx context.Context, userID uuid.UUID, expenses domain.Expenses) (*domain.Wallet, error)
}

// walletService implements the WalletService interface.
type walletService struct {
	tx         db.Transactor         // Begin/commit/rollback, injectable in tests
	dbExecutor repository.DBExecutor // For non-transactional reads
	ledger     ledger
	now        func() time.Time
}

// NewWalletService creates a new instance of WalletService.
func NewWalletService(
	tx db.Transactor,
	dbExecutor repository.DBExecutor,
	walletRepo repository.WalletRepository,
	transactionRepo repository.TransactionRepository,
) WalletService {
	return &walletService{
		tx:         tx,
		dbExecutor: dbExecutor,
		ledger:     ledger{wallets: walletRepo, transactions: transactionRepo},
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// GetWallet returns the user's wallet, creating it on first access.
// The create runs in its own transaction so it commits independently of any other.
func (s *walletService) GetWallet(ctx context.Context, userID uuid.UUID) (*domain.Wallet, error) {
	txController, txExecutor, err := beginTx(ctx, s.tx, "get wallet")
	if err != nil {
		return nil, err
	}
	defer s.tx.Rollback(txController)

	wallet, err := s.ledger.wallet(ctx, txExecutor, userID, false)
	if err != nil {
		return nil, fmt.Errorf("get wallet: %w", err)
	}
	if err := s.tx.Commit(txController); err != nil {
		return nil, fmt.Errorf("get wallet: failed to commit transaction: %w", err)
	}
	return wallet, nil
}

// GetSummary returns the wallet and its most recent transactions.
func (s *walletService) GetSummary(ctx context.Context, userID uuid.UUID) (*WalletSummary, error) {
	wallet, err := s.GetWallet(ctx, userID)
	if err != nil {
		return nil, err
	}
	transactions, err := s.ledger.transactions.GetTransactionsByWalletID(ctx, s.dbExecutor, wallet.ID, DefaultTransactionLimit)
	if err != nil {
		return nil, fmt.Errorf("get wallet summary: %w", err)
	}
	return &WalletSummary{Wallet: wallet, Transactions: transactions}, nil
}

// GetTransactions returns the newest ledger entries of the user's wallet.
func (s *walletService) GetTransactions(ctx context.Context, userID uuid.UUID, limit int) ([]domain.Transaction, error) {
	if limit <= 0 {
		limit = DefaultTransactionLimit
	}
	wallet, err := s.GetWallet(ctx, userID)
	if err != nil {
		return nil, err
	}
	transactions, err := s.ledger.transactions.GetTransactionsByWalletID(ctx, s.dbExecutor, wallet.ID, limit)
	if err != nil {
		return nil, fmt.Errorf("get transactions: %w", err)
	}
	return transactions, nil
}

// Credit adds a positive amount, in whole cents, to lucre (earning) or to the discretionary balance (income).
func (s *walletService) Credit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, kind domain.TransactionType, description string) (*domain.Wallet, *domain.Transaction, error) {
	if !amount.IsPositive() || !domain.IsCents(amount) {
		return nil, nil, util.ErrInvalidInput
	}
	if kind != domain.TransactionTypeEarning && kind != domain.TransactionTypeIncome {
		return nil, nil, util.ErrInvalidInput
	}

	txController, txExecutor, err := beginTx(ctx, s.tx, "credit")
	if err != nil {
		return nil, nil, err
	}
	defer s.tx.Rollback(txController)

	wallet, err := s.ledger.wallet(ctx, txExecutor, userID, true)
	if err != nil {
		return nil, nil, fmt.Errorf("credit: failed to get wallet for user %s: %w", userID, err)
	}
	transaction, err := s.ledger.credit(ctx, txExecutor, wallet, amount, kind, description)
	if err != nil {
		return nil, nil, fmt.Errorf("credit: %w", err)
	}

	if err := s.tx.Commit(txController); err != nil {
		return nil, nil, fmt.Errorf("credit: failed to commit transaction: %w", err)
	}
	return wallet, transaction, nil
}

// Debit takes a positive amount from the discretionary balance.
// It fails with util.ErrInsufficientFunds without persisting anything when the balance is too low.
func (s *walletService) Debit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, description string) (*domain.Wallet, *domain.Transaction, error) {
	if !amount.IsPositive() || !domain.IsCents(amount) {
		return nil, nil, util.ErrInvalidInput
	}

	txController, txExecutor, err := beginTx(ctx, s.tx, "debit")
	if err != nil {
		return nil, nil, err
	}
	defer s.tx.Rollback(txController)

	wallet, err := s.ledger.wallet(ctx, txExecutor, userID, true)
	if err != nil {
		return nil, nil, fmt.Errorf("debit: failed to get wallet for user %s: %w", userID, err)
	}
	transaction, err := s.ledger.debit(ctx, txExecutor, wallet, amount, description)
	if err != nil {
		return nil, nil, fmt.Errorf("debit: %w", err)
	}

	if err := s.tx.Commit(txController); err != nil {
		return nil, nil, fmt.Errorf("debit: failed to commit transaction: %w", err)
	}
	return wallet, transaction, nil
}

// Payout banks the lucre balance. With nothing to pay out the wallet is returned
// unchanged and the Transaction is nil.
func (s *walletService) Payout(ctx context.Context, userID uuid.UUID) (*domain.Wallet, *domain.Transaction, error) {
	txController, txExecutor, err := beginTx(ctx, s.tx, "payout")
	if err != nil {
		return nil, nil, err
	}
	defer s.tx.Rollback(txController)

	wallet, err := s.ledger.wallet(ctx, txExecutor, userID, true)
	if err != nil {
		return nil, nil, fmt.Errorf("payout: failed to get wallet for user %s: %w", userID, err)
	}
	transaction, err := s.ledger.payout(ctx, txExecutor, wallet, s.now())
	if err != nil {
		return nil, nil, fmt.Errorf("payout: %w", err)
	}

	if err := s.tx.Commit(txController); err != nil {
		return nil, nil, fmt.Errorf("payout: failed to commit transaction: %w", err)
	}
	return wallet, transaction, nil
}

// SetExpenses replaces the expense breakdown and resets the discretionary balance
// to max(activeBalance - total expenses, 0). No Transaction is recorded.
func (s *walletService) SetExpenses(ctx context.Context, userID uuid.UUID, expenses domain.Expenses) (*domain.Wallet, error) {
	if !expenses.Validate() {
		return nil, util.ErrInvalidInput
	}

	txController, txExecutor, err := beginTx(ctx, s.tx, "set expenses")
	if err != nil {
		return nil, err
	}
	defer s.tx.Rollback(txController)

	wallet, err := s.ledger.wallet(ctx, txExecutor, userID, true)
	if err != nil {
		return nil, fmt.Errorf("set expenses: failed to get wallet for user %s: %w", userID, err)
	}
	wallet.Expenses = expenses
	wallet.DiscretionaryBalance = domain.MaxDecimal(wallet.ActiveBalance.Sub(expenses.Total()), decimal.Zero)
	if err := s.ledger.wallets.UpdateWallet(ctx, txExecutor, wallet); err != nil {
		return nil, fmt.Errorf("set expenses: failed to update wallet: %w", err)
	}

	if err := s.tx.Commit(txController); err != nil {
		return nil, fmt.Errorf("set expenses: failed to commit transaction: %w", err)
	}
	return wallet, nil
}
