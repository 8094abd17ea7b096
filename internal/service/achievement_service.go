// internal/service/achievement_service.go
package service

import (
	"context"
	"fmt"
	"time"

	"coinquest/internal/domain"
	"coinquest/internal/repository"
	"coinquest/internal/util"
	"coinquest/pkg/db"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// AchievementEvaluator recomputes a user's achievements.
type AchievementEvaluator interface {
	Evaluate(ctx context.Context, userID uuid.UUID) ([]domain.AchievementState, error)
}

// AchievementService defines the interface for achievement tracking.
type AchievementService interface {
	AchievementEvaluator
	List(ctx context.Context, userID uuid.UUID) ([]domain.AchievementState, error)
}

// achievementFacts is everything the rules look at.
type achievementFacts struct {
	progress *domain.Progress
	user     *domain.User
	holdings []domain.Holding
	prices   map[string]decimal.Decimal
}

type achievementRule struct {
	id       string
	evaluate func(f achievementFacts) (bool, decimal.Decimal)
}

func countInt(n int) decimal.Decimal { return decimal.NewFromInt(int64(n)) }

var achievementRules = []achievementRule{
	{domain.AchievementFirstSteps, func(f achievementFacts) (bool, decimal.Decimal) {
		return len(f.progress.CompletedLessons) >= 1, decimal.Zero
	}},
	{domain.AchievementQuizMaster, func(f achievementFacts) (bool, decimal.Decimal) {
		n := 0
		for _, qs := range f.progress.QuizScores {
			if qs.Ratio() >= 0.8 {
				n++
			}
		}
		return n >= 5, countInt(min(n, 5))
	}},
	{domain.AchievementEarlyInvestor, func(f achievementFacts) (bool, decimal.Decimal) {
		return len(f.holdings) >= 1, decimal.Zero
	}},
	{domain.AchievementStreakWarrior, func(f achievementFacts) (bool, decimal.Decimal) {
		return f.user.CurrentStreak >= 7, countInt(min(f.user.CurrentStreak, 7))
	}},
	{domain.AchievementMoneyMaster, func(f achievementFacts) (bool, decimal.Decimal) {
		n := len(f.progress.CompletedModules)
		return n >= 5, countInt(n)
	}},
	{domain.AchievementDiversificationPro, func(f achievementFacts) (bool, decimal.Decimal) {
		symbols := map[string]struct{}{}
		for _, h := range f.holdings {
			symbols[h.Symbol] = struct{}{}
		}
		return len(symbols) >= 5, countInt(len(symbols))
	}},
	{domain.AchievementQuizChampion, func(f achievementFacts) (bool, decimal.Decimal) {
		n := 0
		for _, qs := range f.progress.QuizScores {
			if qs.Perfect() {
				n++
			}
		}
		return n >= 10, countInt(min(n, 10))
	}},
	{domain.AchievementTradingTycoon, func(f achievementFacts) (bool, decimal.Decimal) {
		target := decimal.NewFromInt(1000)
		profit := unrealizedProfit(f.holdings, f.prices)
		return profit.GreaterThanOrEqual(target), domain.MinDecimal(profit, target)
	}},
	// Quiz battles are not persisted server-side.
	{domain.AchievementBattleVictor, func(achievementFacts) (bool, decimal.Decimal) {
		return false, decimal.Zero
	}},
}

type achievementService struct {
	tx          db.Transactor
	userRepo    repository.UserRepository
	stockRepo   repository.StockRepository
	holdingRepo repository.HoldingRepository
	progress    repository.ProgressRepository
	now         func() time.Time
}

// NewAchievementService creates a new AchievementService.
func NewAchievementService(tx db.Transactor, repos repository.Repositories) AchievementService {
	return &achievementService{
		tx:          tx,
		userRepo:    repos.Users,
		stockRepo:   repos.Stocks,
		holdingRepo: repos.Holdings,
		progress:    repos.Progress,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Evaluate recomputes every achievement rule and persists the result. A user without
// progress or without a user record gets an empty list and no error.
func (s *achievementService) Evaluate(ctx context.Context, userID uuid.UUID) ([]domain.AchievementState, error) {
	txController, txExecutor, err := beginTx(ctx, s.tx, "evaluate achievements")
	if err != nil {
		return nil, err
	}
	defer s.tx.Rollback(txController)

	progress, err := s.progress.GetProgressByUserIDForUpdate(ctx, txExecutor, userID)
	if util.IsError(err, util.ErrNotFound) {
		return []domain.AchievementState{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("evaluate achievements: %w", err)
	}
	user, err := s.userRepo.GetUserByID(ctx, txExecutor, userID)
	if util.IsError(err, util.ErrNotFound) {
		return []domain.AchievementState{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("evaluate achievements: %w", err)
	}
	holdings, err := s.holdingRepo.ListHoldingsByUser(ctx, txExecutor, userID)
	if err != nil {
		return nil, fmt.Errorf("evaluate achievements: %w", err)
	}
	stocks, err := s.stockRepo.ListStocks(ctx, txExecutor)
	if err != nil {
		return nil, fmt.Errorf("evaluate achievements: %w", err)
	}

	progress.EnsureAchievementSlots()
	facts := achievementFacts{progress: progress, user: user, holdings: holdings, prices: priceIndex(stocks)}
	now := s.now()
	for _, rule := range achievementRules {
		unlocked, value := rule.evaluate(facts)
		progress.UpdateAchievement(rule.id, unlocked, value, now)
	}

	if err := s.progress.UpdateProgress(ctx, txExecutor, progress); err != nil {
		return nil, fmt.Errorf("evaluate achievements: %w", err)
	}
	if err := s.tx.Commit(txController); err != nil {
		return nil, fmt.Errorf("evaluate achievements: failed to commit transaction: %w", err)
	}
	return progress.AchievementList(), nil
}

// List returns the stored achievement state without recomputing it. Missing
// template slots are backfilled and saved.
func (s *achievementService) List(ctx context.Context, userID uuid.UUID) ([]domain.AchievementState, error) {
	txController, txExecutor, err := beginTx(ctx, s.tx, "list achievements")
	if err != nil {
		return nil, err
	}
	defer s.tx.Rollback(txController)

	progress, err := s.progress.GetProgressByUserIDForUpdate(ctx, txExecutor, userID)
	if util.IsError(err, util.ErrNotFound) {
		return []domain.AchievementState{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list achievements: %w", err)
	}
	if progress.EnsureAchievementSlots() {
		if err := s.progress.UpdateProgress(ctx, txExecutor, progress); err != nil {
			return nil, fmt.Errorf("list achievements: %w", err)
		}
	}
	if err := s.tx.Commit(txController); err != nil {
		return nil, fmt.Errorf("list achievements: failed to commit transaction: %w", err)
	}
	return progress.AchievementList(), nil
}

// evaluateAchievements runs a best-effort evaluation after a committed mutation.
// Failures are logged and never returned.
func evaluateAchievements(ctx context.Context, evaluator AchievementEvaluator, logger logrus.FieldLogger, userID uuid.UUID) {
	if evaluator == nil {
		return
	}
	if _, err := evaluator.Evaluate(ctx, userID); err != nil {
		logger.WithError(err).WithField("user_id", userID).Warn("Achievement evaluation failed")
	}
}
