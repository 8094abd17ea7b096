// internal/domain/transaction.go
package domain

import (
	"time"

	"github.com/shopspring/decimal" // For precise monetary calculations
)

// TransactionType defines the type of a wallet ledger entry.
type TransactionType string

const (
	TransactionTypeEarning TransactionType = "earning" // Lucre credited
	TransactionTypeExpense TransactionType = "expense" // Discretionary debited, amount negative
	TransactionTypeIncome  TransactionType = "income"  // Discretionary credited, payouts and sales
)

// Valid reports whether t is a known transaction type.
func (t TransactionType) Valid() bool {
	switch t {
	case TransactionTypeEarning, TransactionTypeExpense, TransactionTypeIncome:
		return true
	}
	return false
}

// Transaction is an immutable ledger entry owned by one wallet.
type Transaction struct {
	ID           int64           `db:"id" json:"id"`
	WalletID     int64           `db:"wallet_id" json:"walletId"`
	Type         TransactionType `db:"type" json:"type"`
	Description  string          `db:"description" json:"description"`
	Amount       decimal.Decimal `db:"amount" json:"amount"`              // Signed, expenses are negative
	BalanceAfter decimal.Decimal `db:"balance_after" json:"balanceAfter"` // Discretionary balance at commit time
	CreatedAt    time.Time       `db:"created_at" json:"createdAt"`
}

// NewTransaction creates a new Transaction instance.
func NewTransaction(walletID int64, txType TransactionType, description string, amount, balanceAfter decimal.Decimal) *Transaction {
	return &Transaction{
		WalletID:     walletID,
		Type:         txType,
		Description:  description,
		Amount:       amount,
		BalanceAfter: balanceAfter,
		CreatedAt:    time.Now().UTC(),
	}
}
