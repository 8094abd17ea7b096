// internal/repository/trade_repo.go
package repository

import (
	"context"

	"coinquest/internal/domain"

	"github.com/google/uuid"
)

// TradeRepository defines the interface for the append-only trade log.
type TradeRepository interface {
	CreateTrade(ctx context.Context, q DBExecutor, trade *domain.Trade) error
	// ListTradesByUser returns the user's most recent trades, newest first.
	ListTradesByUser(ctx context.Context, q DBExecutor, userID uuid.UUID, limit int) ([]domain.Trade, error)
}
