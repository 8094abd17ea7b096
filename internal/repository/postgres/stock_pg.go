// internal/repository/postgres/stock_pg.go
package postgres

import (
	"context"
	"fmt"
	"time"

	"coinquest/internal/domain"
	"coinquest/internal/repository"
)

const stockColumns = `id, symbol, name, price, change, change_percent, history, icon, description, sector, created_at, updated_at`

// StockRepository implements repository.StockRepository for PostgreSQL.
type StockRepository struct{}

// NewStockRepository creates a new StockRepository.
func NewStockRepository() repository.StockRepository {
	return &StockRepository{}
}

// ListStocks returns all stocks ordered by symbol.
func (r *StockRepository) ListStocks(ctx context.Context, q repository.DBExecutor) ([]domain.Stock, error) {
	return r.list(ctx, q, `SELECT `+stockColumns+` FROM stocks ORDER BY symbol`)
}

// ListStocksForUpdate returns all stocks and locks their rows.
func (r *StockRepository) ListStocksForUpdate(ctx context.Context, q repository.DBExecutor) ([]domain.Stock, error) {
	return r.list(ctx, q, `SELECT `+stockColumns+` FROM stocks ORDER BY symbol FOR UPDATE`)
}

func (r *StockRepository) list(ctx context.Context, q repository.DBExecutor, query string) ([]domain.Stock, error) {
	stocks := []domain.Stock{}
	if err := q.SelectContext(ctx, &stocks, query); err != nil {
		return nil, fmt.Errorf("failed to list stocks: %w", err)
	}
	return stocks, nil
}

// GetStockBySymbol retrieves a stock by its symbol.
func (r *StockRepository) GetStockBySymbol(ctx context.Context, q repository.DBExecutor, symbol string) (*domain.Stock, error) {
	var stock domain.Stock
	query := `SELECT ` + stockColumns + ` FROM stocks WHERE symbol = $1`
	if err := q.GetContext(ctx, &stock, query, symbol); err != nil {
		return nil, fmt.Errorf("failed to get stock %s: %w", symbol, mapError(err))
	}
	return &stock, nil
}

// InsertStockIfAbsent inserts the stock unless the symbol is already taken.
func (r *StockRepository) InsertStockIfAbsent(ctx context.Context, q repository.DBExecutor, stock *domain.Stock) (bool, error) {
	query := `INSERT INTO stocks (symbol, name, price, change, change_percent, history, icon, description, sector, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
              ON CONFLICT (symbol) DO NOTHING`
	res, err := q.ExecContext(ctx, query,
		stock.Symbol, stock.Name, stock.Price, stock.Change, stock.ChangePercent, stock.History,
		stock.Icon, stock.Description, stock.Sector, stock.CreatedAt, stock.UpdatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert stock %s: %w", stock.Symbol, mapError(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to insert stock %s: %w", stock.Symbol, err)
	}
	return n > 0, nil
}

// UpdateStockPrice persists the result of a price tick.
func (r *StockRepository) UpdateStockPrice(ctx context.Context, q repository.DBExecutor, stock *domain.Stock) error {
	stock.UpdatedAt = time.Now().UTC()
	query := `UPDATE stocks SET price = $1, change = $2, change_percent = $3, history = $4, updated_at = $5 WHERE id = $6`
	res, err := q.ExecContext(ctx, query, stock.Price, stock.Change, stock.ChangePercent, stock.History, stock.UpdatedAt, stock.ID)
	if err != nil {
		return fmt.Errorf("failed to update stock %s: %w", stock.Symbol, mapError(err))
	}
	if err := checkAffected(res); err != nil {
		return fmt.Errorf("failed to update stock %s: %w", stock.Symbol, err)
	}
	return nil
}
