// internal/service/leaderboard_service.go
package service

import (
	"context"
	"fmt"

	"coinquest/internal/domain"
	"coinquest/internal/repository"
	"coinquest/internal/util"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Leaderboard size limits.
const (
	DefaultLeaderboardLimit = 10
	MaxLeaderboardLimit     = 100
)

// LeaderboardEntry is one ranked user.
type LeaderboardEntry struct {
	Rank   int64  `json:"rank"`
	Name   string `json:"name"`
	Level  int    `json:"level"`
	XP     int64  `json:"xp"`
	School string `json:"school"`
	Streak int    `json:"streak"`
	Profit int64  `json:"profit"` // Unrealized trading profit, rounded
}

// LeaderboardService defines the interface for experience rankings.
type LeaderboardService interface {
	Top(ctx context.Context, limit int) ([]LeaderboardEntry, error)
	Standing(ctx context.Context, userID uuid.UUID) (*LeaderboardEntry, error)
}

type leaderboardService struct {
	dbExecutor  repository.DBExecutor
	userRepo    repository.UserRepository
	stockRepo   repository.StockRepository
	holdingRepo repository.HoldingRepository
}

// NewLeaderboardService creates a new LeaderboardService.
func NewLeaderboardService(dbExecutor repository.DBExecutor, repos repository.Repositories) LeaderboardService {
	return &leaderboardService{
		dbExecutor:  dbExecutor,
		userRepo:    repos.Users,
		stockRepo:   repos.Stocks,
		holdingRepo: repos.Holdings,
	}
}

// Top returns users ordered by experience, limit clamped to [1, MaxLeaderboardLimit].
func (s *leaderboardService) Top(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	if limit <= 0 {
		limit = DefaultLeaderboardLimit
	}
	limit = min(limit, MaxLeaderboardLimit)

	users, err := s.userRepo.ListTopByXP(ctx, s.dbExecutor, limit)
	if err != nil {
		return nil, fmt.Errorf("leaderboard: %w", err)
	}
	profits, err := s.profits(ctx, users)
	if err != nil {
		return nil, fmt.Errorf("leaderboard: %w", err)
	}

	entries := make([]LeaderboardEntry, 0, len(users))
	for i := range users {
		entries = append(entries, newLeaderboardEntry(int64(i+1), &users[i], profits[users[i].ID]))
	}
	return entries, nil
}

// Standing ranks one user: 1 + the number of users with strictly more experience.
func (s *leaderboardService) Standing(ctx context.Context, userID uuid.UUID) (*LeaderboardEntry, error) {
	user, err := s.userRepo.GetUserByID(ctx, s.dbExecutor, userID)
	if err != nil {
		if util.IsError(err, util.ErrNotFound) {
			return nil, util.ErrUserNotFound
		}
		return nil, fmt.Errorf("standing: %w", err)
	}
	ahead, err := s.userRepo.CountWithMoreXP(ctx, s.dbExecutor, user.XP)
	if err != nil {
		return nil, fmt.Errorf("standing: %w", err)
	}
	profits, err := s.profits(ctx, []domain.User{*user})
	if err != nil {
		return nil, fmt.Errorf("standing: %w", err)
	}
	entry := newLeaderboardEntry(ahead+1, user, profits[user.ID])
	return &entry, nil
}

// profits sums unrealized profit per user. A holding whose stock is gone contributes zero.
func (s *leaderboardService) profits(ctx context.Context, users []domain.User) (map[uuid.UUID]decimal.Decimal, error) {
	out := make(map[uuid.UUID]decimal.Decimal, len(users))
	if len(users) == 0 {
		return out, nil
	}
	ids := make([]uuid.UUID, len(users))
	for i, u := range users {
		ids[i] = u.ID
	}
	holdings, err := s.holdingRepo.ListHoldingsByUsers(ctx, s.dbExecutor, ids)
	if err != nil {
		return nil, err
	}
	stocks, err := s.stockRepo.ListStocks(ctx, s.dbExecutor)
	if err != nil {
		return nil, err
	}
	prices := priceIndex(stocks)

	byUser := make(map[uuid.UUID][]domain.Holding)
	for _, h := range holdings {
		byUser[h.UserID] = append(byUser[h.UserID], h)
	}
	for id, hs := range byUser {
		out[id] = unrealizedProfit(hs, prices)
	}
	return out, nil
}

func newLeaderboardEntry(rank int64, user *domain.User, profit decimal.Decimal) LeaderboardEntry {
	return LeaderboardEntry{
		Rank:   rank,
		Name:   user.Name,
		Level:  user.Level,
		XP:     user.XP,
		School: user.School,
		Streak: user.CurrentStreak,
		Profit: profit.Round(0).IntPart(),
	}
}
