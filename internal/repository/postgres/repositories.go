// internal/repository/postgres/repositories.go
package postgres

import "coinquest/internal/repository"

// NewRepositories returns the PostgreSQL implementation of every repository.
func NewRepositories() repository.Repositories {
	return repository.Repositories{
		Users:        NewUserRepository(),
		Wallets:      NewWalletRepository(),
		Transactions: NewTransactionRepository(),
		Stocks:       NewStockRepository(),
		Holdings:     NewHoldingRepository(),
		Trades:       NewTradeRepository(),
		Progress:     NewProgressRepository(),
	}
}
