// internal/repository/progress_repo.go
package repository

import (
	"context"

	"coinquest/internal/domain"

	"github.com/google/uuid"
)

// ProgressRepository defines the interface for learning progress and achievement state.
type ProgressRepository interface {
	// EnsureProgress inserts the record unless the user already has one.
	EnsureProgress(ctx context.Context, q DBExecutor, progress *domain.Progress) error
	// GetProgressByUserID retrieves the user's progress, util.ErrNotFound if absent.
	GetProgressByUserID(ctx context.Context, q DBExecutor, userID uuid.UUID) (*domain.Progress, error)
	// GetProgressByUserIDForUpdate is GetProgressByUserID holding a row lock until the transaction ends.
	GetProgressByUserIDForUpdate(ctx context.Context, q DBExecutor, userID uuid.UUID) (*domain.Progress, error)
	// UpdateProgress persists every mutable field.
	UpdateProgress(ctx context.Context, q DBExecutor, progress *domain.Progress) error
}
