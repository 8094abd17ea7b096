// internal/repository/holding_repo.go
package repository

import (
	"context"

	"coinquest/internal/domain"

	"github.com/google/uuid"
)

// HoldingRepository defines the interface for per-user stock positions.
type HoldingRepository interface {
	// EnsureHolding inserts an empty position unless one exists for (user, stock).
	EnsureHolding(ctx context.Context, q DBExecutor, holding *domain.Holding) error
	// GetHoldingForUpdate retrieves and locks a position, util.ErrNotFound if absent.
	GetHoldingForUpdate(ctx context.Context, q DBExecutor, userID uuid.UUID, stockID int64) (*domain.Holding, error)
	// UpdateHolding persists shares and avgCost.
	UpdateHolding(ctx context.Context, q DBExecutor, holding *domain.Holding) error
	// DeleteHolding removes a position.
	DeleteHolding(ctx context.Context, q DBExecutor, id int64) error
	// ListHoldingsByUser returns the user's positions ordered by symbol.
	ListHoldingsByUser(ctx context.Context, q DBExecutor, userID uuid.UUID) ([]domain.Holding, error)
	// ListHoldingsByUsers returns the positions of several users.
	ListHoldingsByUsers(ctx context.Context, q DBExecutor, userIDs []uuid.UUID) ([]domain.Holding, error)
}
