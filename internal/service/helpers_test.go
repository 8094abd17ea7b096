// internal/service/helpers_test.go
package service

import (
	"context"
	"testing"
	"time"

	"coinquest/internal/content"
	"coinquest/internal/domain"
	"coinquest/internal/repository"
	"coinquest/internal/repository/memory"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// testEnv wires every service against one memory store.
type testEnv struct {
	store        *memory.Store
	repos        repository.Repositories
	catalog      *content.Catalog
	logger       *logrus.Logger
	logs         *test.Hook
	wallets      WalletService
	trading      TradingService
	achievements AchievementService
	learning     LearningService
	leaderboard  LeaderboardService
	auth         AuthService
	tokens       *TokenManager
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := memory.NewStore()
	repos := store.Repositories()
	tx := store.Transactor()
	logger, hook := test.NewNullLogger()
	catalog, err := content.Default()
	require.NoError(t, err)

	achievements := NewAchievementService(tx, repos)
	tokens := NewTokenManager("test-secret", time.Hour)

	auth := NewAuthService(tx, store.Executor(), repos, tokens, achievements, logger)
	auth.(*authService).bcryptCost = bcrypt.MinCost

	env := &testEnv{
		store:        store,
		repos:        repos,
		catalog:      catalog,
		logger:       logger,
		logs:         hook,
		wallets:      NewWalletService(tx, store.Executor(), repos.Wallets, repos.Transactions),
		trading:      NewTradingService(tx, store.Executor(), repos, achievements, logger),
		achievements: achievements,
		learning:     NewLearningService(tx, catalog, repos, achievements, logger),
		leaderboard:  NewLeaderboardService(store.Executor(), repos),
		auth:         auth,
		tokens:       tokens,
	}
	_, err = env.trading.SeedStocks(context.Background())
	require.NoError(t, err)
	return env
}

// signup creates a user with its wallet and progress.
func (e *testEnv) signup(t *testing.T, name string) *domain.User {
	t.Helper()
	res, err := e.auth.Signup(context.Background(), SignupInput{
		Name:     name,
		Email:    name + "@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)
	return res.User
}

func (e *testEnv) wallet(t *testing.T, userID uuid.UUID) *domain.Wallet {
	t.Helper()
	w, err := e.wallets.GetWallet(context.Background(), userID)
	require.NoError(t, err)
	return w
}

func (e *testEnv) stock(t *testing.T, symbol string) *domain.Stock {
	t.Helper()
	st, err := e.repos.Stocks.GetStockBySymbol(context.Background(), e.store.Executor(), symbol)
	require.NoError(t, err)
	return st
}

// setPrice overwrites a stock price outside any service.
func (e *testEnv) setPrice(t *testing.T, symbol, price string) {
	t.Helper()
	st := e.stock(t, symbol)
	st.Price = dec(price)
	require.NoError(t, e.repos.Stocks.UpdateStockPrice(context.Background(), e.store.Executor(), st))
}

// correctAnswers returns the right answer index for every question of the module.
func (e *testEnv) correctAnswers(t *testing.T, moduleID int) []int {
	t.Helper()
	questions, err := e.learning.GetQuiz(moduleID)
	require.NoError(t, err)
	answers := make([]int, len(questions))
	for i, q := range questions {
		answers[i] = q.Correct
	}
	return answers
}

// answersWithScore returns answers with exactly score correct ones.
func (e *testEnv) answersWithScore(t *testing.T, moduleID, score int) []int {
	t.Helper()
	questions, err := e.learning.GetQuiz(moduleID)
	require.NoError(t, err)
	answers := make([]int, len(questions))
	for i, q := range questions {
		if i < score {
			answers[i] = q.Correct
		} else {
			answers[i] = (q.Correct + 1) % len(q.Options)
		}
	}
	return answers
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
