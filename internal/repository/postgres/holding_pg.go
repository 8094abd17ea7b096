// internal/repository/postgres/holding_pg.go
package postgres

import (
	"context"
	"fmt"
	"time"

	"coinquest/internal/domain"
	"coinquest/internal/repository"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const holdingColumns = `id, user_id, stock_id, symbol, shares, avg_cost, created_at, updated_at`

// HoldingRepository implements repository.HoldingRepository for PostgreSQL.
type HoldingRepository struct{}

// NewHoldingRepository creates a new HoldingRepository.
func NewHoldingRepository() repository.HoldingRepository {
	return &HoldingRepository{}
}

// EnsureHolding inserts an empty position; an existing row wins.
func (r *HoldingRepository) EnsureHolding(ctx context.Context, q repository.DBExecutor, holding *domain.Holding) error {
	query := `INSERT INTO holdings (user_id, stock_id, symbol, shares, avg_cost, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7)
              ON CONFLICT (user_id, stock_id) DO NOTHING`
	_, err := q.ExecContext(ctx, query,
		holding.UserID, holding.StockID, holding.Symbol, holding.Shares, holding.AvgCost, holding.CreatedAt, holding.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to ensure holding %s for user %s: %w", holding.Symbol, holding.UserID, mapError(err))
	}
	return nil
}

// GetHoldingForUpdate retrieves and locks a position.
func (r *HoldingRepository) GetHoldingForUpdate(ctx context.Context, q repository.DBExecutor, userID uuid.UUID, stockID int64) (*domain.Holding, error) {
	var holding domain.Holding
	query := `SELECT ` + holdingColumns + ` FROM holdings WHERE user_id = $1 AND stock_id = $2 FOR UPDATE`
	if err := q.GetContext(ctx, &holding, query, userID, stockID); err != nil {
		return nil, fmt.Errorf("failed to get holding of stock %d for user %s: %w", stockID, userID, mapError(err))
	}
	return &holding, nil
}

// UpdateHolding persists shares and average cost.
func (r *HoldingRepository) UpdateHolding(ctx context.Context, q repository.DBExecutor, holding *domain.Holding) error {
	holding.UpdatedAt = time.Now().UTC()
	query := `UPDATE holdings SET shares = $1, avg_cost = $2, updated_at = $3 WHERE id = $4`
	res, err := q.ExecContext(ctx, query, holding.Shares, holding.AvgCost, holding.UpdatedAt, holding.ID)
	if err != nil {
		return fmt.Errorf("failed to update holding %d: %w", holding.ID, mapError(err))
	}
	if err := checkAffected(res); err != nil {
		return fmt.Errorf("failed to update holding %d: %w", holding.ID, err)
	}
	return nil
}

// DeleteHolding removes a position.
func (r *HoldingRepository) DeleteHolding(ctx context.Context, q repository.DBExecutor, id int64) error {
	res, err := q.ExecContext(ctx, `DELETE FROM holdings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete holding %d: %w", id, err)
	}
	if err := checkAffected(res); err != nil {
		return fmt.Errorf("failed to delete holding %d: %w", id, err)
	}
	return nil
}

// ListHoldingsByUser returns a user's positions.
func (r *HoldingRepository) ListHoldingsByUser(ctx context.Context, q repository.DBExecutor, userID uuid.UUID) ([]domain.Holding, error) {
	holdings := []domain.Holding{}
	query := `SELECT ` + holdingColumns + ` FROM holdings WHERE user_id = $1 AND shares > 0 ORDER BY symbol`
	if err := q.SelectContext(ctx, &holdings, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list holdings for user %s: %w", userID, err)
	}
	return holdings, nil
}

// ListHoldingsByUsers returns the positions of every given user.
func (r *HoldingRepository) ListHoldingsByUsers(ctx context.Context, q repository.DBExecutor, userIDs []uuid.UUID) ([]domain.Holding, error) {
	holdings := []domain.Holding{}
	if len(userIDs) == 0 {
		return holdings, nil
	}
	ids := make(pq.StringArray, len(userIDs))
	for i, id := range userIDs {
		ids[i] = id.String()
	}
	query := `SELECT ` + holdingColumns + ` FROM holdings WHERE user_id = ANY($1::uuid[]) AND shares > 0 ORDER BY user_id, symbol`
	if err := q.SelectContext(ctx, &holdings, query, ids); err != nil {
		return nil, fmt.Errorf("failed to list holdings for %d users: %w", len(userIDs), err)
	}
	return holdings, nil
}
