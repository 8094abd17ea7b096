// internal/repository/stock_repo.go
package repository

import (
	"context"

	"coinquest/internal/domain"
)

// StockRepository defines the interface for the shared stock catalog.
type StockRepository interface {
	// ListStocks returns every stock ordered by symbol.
	ListStocks(ctx context.Context, q DBExecutor) ([]domain.Stock, error)
	// ListStocksForUpdate is ListStocks holding row locks until the transaction ends.
	ListStocksForUpdate(ctx context.Context, q DBExecutor) ([]domain.Stock, error)
	// GetStockBySymbol retrieves a stock, util.ErrNotFound if absent.
	GetStockBySymbol(ctx context.Context, q DBExecutor, symbol string) (*domain.Stock, error)
	// InsertStockIfAbsent inserts the stock unless its symbol exists. It reports whether a row was added.
	InsertStockIfAbsent(ctx context.Context, q DBExecutor, stock *domain.Stock) (bool, error)
	// UpdateStockPrice persists price, change, changePercent and history.
	UpdateStockPrice(ctx context.Context, q DBExecutor, stock *domain.Stock) error
}
