// internal/repository/postgres/user_pg.go
package postgres

import (
	"context"
	"fmt"
	"time"

	"coinquest/internal/domain"
	"coinquest/internal/repository"

	"github.com/google/uuid"
)

const userColumns = `id, name, email, password_hash, age, grade, school, knowledge_level, level, xp,
	current_streak, longest_streak, last_login, created_at, updated_at`

// UserRepository implements repository.UserRepository for PostgreSQL.
type UserRepository struct{}

// NewUserRepository creates a new UserRepository.
func NewUserRepository() repository.UserRepository {
	return &UserRepository{}
}

// CreateUser inserts a new user.
func (r *UserRepository) CreateUser(ctx context.Context, q repository.DBExecutor, user *domain.User) error {
	query := `INSERT INTO users (` + userColumns + `)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err := q.ExecContext(ctx, query,
		user.ID, user.Name, user.Email, user.PasswordHash, user.Age, user.Grade, user.School,
		user.KnowledgeLevel, user.Level, user.XP, user.CurrentStreak, user.LongestStreak,
		user.LastLogin, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", mapError(err))
	}
	return nil
}

// GetUserByID retrieves a user by their ID.
func (r *UserRepository) GetUserByID(ctx context.Context, q repository.DBExecutor, id uuid.UUID) (*domain.User, error) {
	var user domain.User
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	if err := q.GetContext(ctx, &user, query, id); err != nil {
		return nil, fmt.Errorf("failed to get user by ID %s: %w", id, mapError(err))
	}
	return &user, nil
}

// GetUserByIDForUpdate retrieves and locks a user by their ID.
func (r *UserRepository) GetUserByIDForUpdate(ctx context.Context, q repository.DBExecutor, id uuid.UUID) (*domain.User, error) {
	var user domain.User
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1 FOR UPDATE`
	if err := q.GetContext(ctx, &user, query, id); err != nil {
		return nil, fmt.Errorf("failed to get user by ID %s: %w", id, mapError(err))
	}
	return &user, nil
}

// GetUserByEmail retrieves a user by their email.
func (r *UserRepository) GetUserByEmail(ctx context.Context, q repository.DBExecutor, email string) (*domain.User, error) {
	var user domain.User
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	if err := q.GetContext(ctx, &user, query, domain.NormalizeEmail(email)); err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", mapError(err))
	}
	return &user, nil
}

// UpdateUser persists the mutable user fields.
func (r *UserRepository) UpdateUser(ctx context.Context, q repository.DBExecutor, user *domain.User) error {
	user.UpdatedAt = time.Now().UTC()
	query := `UPDATE users SET name = $1, age = $2, grade = $3, school = $4, knowledge_level = $5,
              level = $6, xp = $7, current_streak = $8, longest_streak = $9, last_login = $10, updated_at = $11
              WHERE id = $12`
	res, err := q.ExecContext(ctx, query,
		user.Name, user.Age, user.Grade, user.School, user.KnowledgeLevel,
		user.Level, user.XP, user.CurrentStreak, user.LongestStreak, user.LastLogin, user.UpdatedAt,
		user.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update user %s: %w", user.ID, mapError(err))
	}
	if err := checkAffected(res); err != nil {
		return fmt.Errorf("failed to update user %s: %w", user.ID, err)
	}
	return nil
}

// ListTopByXP returns the users with the most experience.
func (r *UserRepository) ListTopByXP(ctx context.Context, q repository.DBExecutor, limit int) ([]domain.User, error) {
	users := []domain.User{}
	query := `SELECT ` + userColumns + ` FROM users ORDER BY xp DESC, created_at ASC LIMIT $1`
	if err := q.SelectContext(ctx, &users, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list users by xp: %w", err)
	}
	return users, nil
}

// CountWithMoreXP counts users strictly ahead of xp.
func (r *UserRepository) CountWithMoreXP(ctx context.Context, q repository.DBExecutor, xp int64) (int64, error) {
	var count int64
	if err := q.GetContext(ctx, &count, `SELECT COUNT(*) FROM users WHERE xp > $1`, xp); err != nil {
		return 0, fmt.Errorf("failed to count users above %d xp: %w", xp, err)
	}
	return count, nil
}
