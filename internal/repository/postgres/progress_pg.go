// internal/repository/postgres/progress_pg.go
package postgres

import (
	"context"
	"fmt"
	"time"

	"coinquest/internal/domain"
	"coinquest/internal/repository"

	"github.com/google/uuid"
)

const progressColumns = `id, user_id, current_module, completed_modules, completed_lessons, quiz_scores, achievements, created_at, updated_at`

// ProgressRepository implements repository.ProgressRepository for PostgreSQL.
type ProgressRepository struct{}

// NewProgressRepository creates a new ProgressRepository.
func NewProgressRepository() repository.ProgressRepository {
	return &ProgressRepository{}
}

// EnsureProgress inserts the record; an existing row for the user wins.
func (r *ProgressRepository) EnsureProgress(ctx context.Context, q repository.DBExecutor, progress *domain.Progress) error {
	query := `INSERT INTO progress (user_id, current_module, completed_modules, completed_lessons, quiz_scores, achievements, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
              ON CONFLICT (user_id) DO NOTHING`
	_, err := q.ExecContext(ctx, query,
		progress.UserID, progress.CurrentModule, progress.CompletedModules, progress.CompletedLessons,
		progress.QuizScores, progress.Achievements, progress.CreatedAt, progress.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to ensure progress for user %s: %w", progress.UserID, mapError(err))
	}
	return nil
}

// GetProgressByUserID retrieves a user's progress.
func (r *ProgressRepository) GetProgressByUserID(ctx context.Context, q repository.DBExecutor, userID uuid.UUID) (*domain.Progress, error) {
	return r.get(ctx, q, `SELECT `+progressColumns+` FROM progress WHERE user_id = $1`, userID)
}

// GetProgressByUserIDForUpdate retrieves and locks a user's progress.
func (r *ProgressRepository) GetProgressByUserIDForUpdate(ctx context.Context, q repository.DBExecutor, userID uuid.UUID) (*domain.Progress, error) {
	return r.get(ctx, q, `SELECT `+progressColumns+` FROM progress WHERE user_id = $1 FOR UPDATE`, userID)
}

func (r *ProgressRepository) get(ctx context.Context, q repository.DBExecutor, query string, userID uuid.UUID) (*domain.Progress, error) {
	var progress domain.Progress
	if err := q.GetContext(ctx, &progress, query, userID); err != nil {
		return nil, fmt.Errorf("failed to get progress for user %s: %w", userID, mapError(err))
	}
	return &progress, nil
}

// UpdateProgress persists the record.
func (r *ProgressRepository) UpdateProgress(ctx context.Context, q repository.DBExecutor, progress *domain.Progress) error {
	progress.UpdatedAt = time.Now().UTC()
	query := `UPDATE progress SET current_module = $1, completed_modules = $2, completed_lessons = $3,
              quiz_scores = $4, achievements = $5, updated_at = $6
              WHERE id = $7`
	res, err := q.ExecContext(ctx, query,
		progress.CurrentModule, progress.CompletedModules, progress.CompletedLessons,
		progress.QuizScores, progress.Achievements, progress.UpdatedAt, progress.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update progress %d: %w", progress.ID, mapError(err))
	}
	if err := checkAffected(res); err != nil {
		return fmt.Errorf("failed to update progress %d: %w", progress.ID, err)
	}
	return nil
}
