// internal/domain/wallet.go
package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal" // For precise monetary calculations
)

// Starting balances for a freshly created wallet.
var (
	DefaultActiveBalance        = decimal.NewFromInt(500)
	DefaultDiscretionaryBalance = decimal.NewFromInt(500)
	DefaultTotalEarned          = decimal.NewFromInt(500)
)

// Expenses is the monthly breakdown a learner budgets against their active balance.
type Expenses struct {
	Tax       decimal.Decimal `db:"expense_tax" json:"tax"`
	Rent      decimal.Decimal `db:"expense_rent" json:"rent"`
	Food      decimal.Decimal `db:"expense_food" json:"food"`
	Utilities decimal.Decimal `db:"expense_utilities" json:"utilities"`
	Other     decimal.Decimal `db:"expense_other" json:"other"`
}

// Total sums all categories.
func (e Expenses) Total() decimal.Decimal {
	return decimal.Sum(e.Tax, e.Rent, e.Food, e.Utilities, e.Other)
}

// Validate reports whether every category is non-negative and in whole cents.
func (e Expenses) Validate() bool {
	for _, v := range []decimal.Decimal{e.Tax, e.Rent, e.Food, e.Utilities, e.Other} {
		if v.IsNegative() || !IsCents(v) {
			return false
		}
	}
	return true
}

// Wallet holds a user's virtual balances. There is exactly one per user.
type Wallet struct {
	ID                   int64           `db:"id" json:"id"`
	UserID               uuid.UUID       `db:"user_id" json:"userId"`
	LucreBalance         decimal.Decimal `db:"lucre_balance" json:"lucreBalance"`                 // Earned but not yet paid out
	ActiveBalance        decimal.Decimal `db:"active_balance" json:"activeBalance"`               // Banked base income
	DiscretionaryBalance decimal.Decimal `db:"discretionary_balance" json:"discretionaryBalance"` // Spendable, never negative
	TotalEarned          decimal.Decimal `db:"total_earned" json:"totalEarned"`
	LastPayout           time.Time       `db:"last_payout" json:"lastPayout"`
	Expenses             `json:"expenses"`
	CreatedAt            time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt            time.Time `db:"updated_at" json:"updatedAt"`
}

// NewWallet creates a new Wallet instance with the documented defaults.
func NewWallet(userID uuid.UUID) *Wallet {
	now := time.Now().UTC()
	return &Wallet{
		UserID:               userID,
		LucreBalance:         decimal.Zero,
		ActiveBalance:        DefaultActiveBalance,
		DiscretionaryBalance: DefaultDiscretionaryBalance,
		TotalEarned:          DefaultTotalEarned,
		LastPayout:           now,
		Expenses: Expenses{
			Tax:       decimal.Zero,
			Rent:      decimal.Zero,
			Food:      decimal.Zero,
			Utilities: decimal.Zero,
			Other:     decimal.Zero,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}
