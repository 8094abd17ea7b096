// internal/repository/postgres/trade_pg.go
package postgres

import (
	"context"
	"fmt"

	"coinquest/internal/domain"
	"coinquest/internal/repository"

	"github.com/google/uuid"
)

// TradeRepository implements repository.TradeRepository for PostgreSQL.
type TradeRepository struct{}

// NewTradeRepository creates a new TradeRepository.
func NewTradeRepository() repository.TradeRepository {
	return &TradeRepository{}
}

// CreateTrade appends an executed trade.
func (r *TradeRepository) CreateTrade(ctx context.Context, q repository.DBExecutor, trade *domain.Trade) error {
	query := `INSERT INTO trades (user_id, stock_id, symbol, type, shares, price, created_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	err := q.QueryRowContext(ctx, query,
		trade.UserID, trade.StockID, trade.Symbol, trade.Type, trade.Shares, trade.Price, trade.CreatedAt,
	).Scan(&trade.ID)
	if err != nil {
		return fmt.Errorf("failed to create trade: %w", mapError(err))
	}
	return nil
}

// ListTradesByUser returns the newest trades of a user.
func (r *TradeRepository) ListTradesByUser(ctx context.Context, q repository.DBExecutor, userID uuid.UUID, limit int) ([]domain.Trade, error) {
	trades := []domain.Trade{}
	query := `SELECT id, user_id, stock_id, symbol, type, shares, price, created_at
              FROM trades WHERE user_id = $1
              ORDER BY created_at DESC, id DESC
              LIMIT $2`
	if err := q.SelectContext(ctx, &trades, query, userID, limit); err != nil {
		return nil, fmt.Errorf("failed to list trades for user %s: %w", userID, err)
	}
	return trades, nil
}
