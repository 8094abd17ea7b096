// internal/repository/user_repo.go
package repository

import (
	"context"

	"coinquest/internal/domain"

	"github.com/google/uuid"
)

// UserRepository defines the interface for user data operations.
type UserRepository interface {
	// CreateUser inserts a user. A taken email yields util.ErrDuplicateEntry.
	CreateUser(ctx context.Context, q DBExecutor, user *domain.User) error
	// GetUserByID retrieves a user by ID, util.ErrNotFound if absent.
	GetUserByID(ctx context.Context, q DBExecutor, id uuid.UUID) (*domain.User, error)
	// GetUserByIDForUpdate is GetUserByID holding a row lock until the transaction ends.
	GetUserByIDForUpdate(ctx context.Context, q DBExecutor, id uuid.UUID) (*domain.User, error)
	// GetUserByEmail retrieves a user by normalized email, util.ErrNotFound if absent.
	GetUserByEmail(ctx context.Context, q DBExecutor, email string) (*domain.User, error)
	// UpdateUser persists profile, xp and streak fields.
	UpdateUser(ctx context.Context, q DBExecutor, user *domain.User) error
	// ListTopByXP returns users ordered by xp descending.
	ListTopByXP(ctx context.Context, q DBExecutor, limit int) ([]domain.User, error)
	// CountWithMoreXP counts users whose xp is strictly greater than xp.
	CountWithMoreXP(ctx context.Context, q DBExecutor, xp int64) (int64, error)
}
