// internal/service/trading_service_test.go
package service

import (
	"context"
	"testing"

	"coinquest/internal/domain"
	"coinquest/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedStocks(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	stocks, err := env.trading.ListStocks(ctx)
	require.NoError(t, err)
	require.Len(t, stocks, 5)
	symbols := make([]string, len(stocks))
	for i, st := range stocks {
		symbols[i] = st.Symbol
	}
	assert.Equal(t, []string{"BOOK", "CAMP", "PNCL", "SNCK", "STDY"}, symbols)

	added, err := env.trading.SeedStocks(ctx)
	require.NoError(t, err)
	assert.Zero(t, added)
}

func TestBuy(t *testing.T) {
	ctx := context.Background()

	t.Run("DebitsAndOpensHolding", func(t *testing.T) {
		env := newTestEnv(t)
		user := env.signup(t, "aarav")

		res, err := env.trading.Buy(ctx, user.ID, "STDY", 5)
		require.NoError(t, err)
		assert.True(t, res.Wallet.DiscretionaryBalance.Equal(dec("40")))
		require.NotNil(t, res.Holding)
		assert.Equal(t, int64(5), res.Holding.Shares)
		assert.True(t, res.Holding.AvgCost.Equal(dec("92")))
		assert.Equal(t, domain.TradeTypeBuy, res.Trade.Type)
		assert.True(t, res.Trade.Price.Equal(dec("92")))
		assert.Equal(t, "Bought 5 STDY shares", res.Transaction.Description)
		assert.True(t, res.Transaction.Amount.Equal(dec("-460")))
		assert.True(t, res.Transaction.BalanceAfter.Equal(dec("40")))

		assert.True(t, env.wallet(t, user.ID).DiscretionaryBalance.Equal(dec("40")))
	})

	t.Run("SymbolIsCaseInsensitive", func(t *testing.T) {
		env := newTestEnv(t)
		user := env.signup(t, "diya")

		res, err := env.trading.Buy(ctx, user.ID, " pncl ", 1)
		require.NoError(t, err)
		assert.Equal(t, "PNCL", res.Stock.Symbol)
	})

	t.Run("WeightedAverageCost", func(t *testing.T) {
		env := newTestEnv(t)
		user := env.signup(t, "vivaan")

		_, err := env.trading.Buy(ctx, user.ID, "STDY", 2)
		require.NoError(t, err)
		env.setPrice(t, "STDY", "100")
		res, err := env.trading.Buy(ctx, user.ID, "STDY", 2)
		require.NoError(t, err)

		assert.Equal(t, int64(4), res.Holding.Shares)
		assert.True(t, res.Holding.AvgCost.Equal(dec("96")), "got %s", res.Holding.AvgCost)
	})

	t.Run("InsufficientFundsChangesNothing", func(t *testing.T) {
		env := newTestEnv(t)
		user := env.signup(t, "kiara")

		_, err := env.trading.Buy(ctx, user.ID, "STDY", 6)
		assert.ErrorIs(t, err, util.ErrInsufficientFunds)

		assert.True(t, env.wallet(t, user.ID).DiscretionaryBalance.Equal(dec("500")))
		portfolio, err := env.trading.GetPortfolio(ctx, user.ID)
		require.NoError(t, err)
		assert.Empty(t, portfolio.Holdings)
		assert.Empty(t, portfolio.Trades)
	})

	t.Run("InvalidRequests", func(t *testing.T) {
		env := newTestEnv(t)
		user := env.signup(t, "reyansh")

		_, err := env.trading.Buy(ctx, user.ID, "STDY", 0)
		assert.ErrorIs(t, err, util.ErrInvalidInput)
		_, err = env.trading.Buy(ctx, user.ID, "NOPE", 1)
		assert.ErrorIs(t, err, util.ErrStockNotFound)
	})
}

func TestSell(t *testing.T) {
	ctx := context.Background()

	t.Run("ClosingSaleDeletesHolding", func(t *testing.T) {
		env := newTestEnv(t)
		user := env.signup(t, "advik")
		_, err := env.trading.Buy(ctx, user.ID, "STDY", 5)
		require.NoError(t, err)
		env.setPrice(t, "STDY", "100")

		res, err := env.trading.Sell(ctx, user.ID, "STDY", 5)
		require.NoError(t, err)
		assert.Nil(t, res.Holding)
		assert.True(t, res.Wallet.DiscretionaryBalance.Equal(dec("540")))
		assert.Equal(t, domain.TransactionTypeIncome, res.Transaction.Type)
		assert.Equal(t, "Sold 5 STDY shares", res.Transaction.Description)
		assert.True(t, res.Transaction.Amount.Equal(dec("500")))

		portfolio, err := env.trading.GetPortfolio(ctx, user.ID)
		require.NoError(t, err)
		assert.Empty(t, portfolio.Holdings)
		require.Len(t, portfolio.Trades, 2)
		assert.Equal(t, domain.TradeTypeSell, portfolio.Trades[0].Type)
	})

	t.Run("PartialSaleKeepsAverageCost", func(t *testing.T) {
		env := newTestEnv(t)
		user := env.signup(t, "myra")
		_, err := env.trading.Buy(ctx, user.ID, "PNCL", 4)
		require.NoError(t, err)
		env.setPrice(t, "PNCL", "50")

		res, err := env.trading.Sell(ctx, user.ID, "PNCL", 1)
		require.NoError(t, err)
		require.NotNil(t, res.Holding)
		assert.Equal(t, int64(3), res.Holding.Shares)
		assert.True(t, res.Holding.AvgCost.Equal(dec("45.5")))
	})

	t.Run("InsufficientSharesChangesNothing", func(t *testing.T) {
		env := newTestEnv(t)
		user := env.signup(t, "shaurya")
		_, err := env.trading.Buy(ctx, user.ID, "STDY", 5)
		require.NoError(t, err)

		_, err = env.trading.Sell(ctx, user.ID, "STDY", 6)
		assert.ErrorIs(t, err, util.ErrInsufficientShares)

		portfolio, err := env.trading.GetPortfolio(ctx, user.ID)
		require.NoError(t, err)
		require.Len(t, portfolio.Holdings, 1)
		assert.Equal(t, int64(5), portfolio.Holdings[0].Shares)
		assert.Len(t, portfolio.Trades, 1)
		assert.True(t, env.wallet(t, user.ID).DiscretionaryBalance.Equal(dec("40")))
	})

	t.Run("NoHolding", func(t *testing.T) {
		env := newTestEnv(t)
		user := env.signup(t, "pari")

		_, err := env.trading.Sell(ctx, user.ID, "BOOK", 1)
		assert.ErrorIs(t, err, util.ErrInsufficientShares)
	})
}

func TestGetPortfolio(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	user := env.signup(t, "ishaan")

	_, err := env.trading.Buy(ctx, user.ID, "BOOK", 2)
	require.NoError(t, err)
	_, err = env.trading.Buy(ctx, user.ID, "PNCL", 4)
	require.NoError(t, err)
	env.setPrice(t, "BOOK", "70")
	env.setPrice(t, "PNCL", "45")

	portfolio, err := env.trading.GetPortfolio(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, portfolio.Holdings, 2)

	bySymbol := map[string]PortfolioHolding{}
	for _, h := range portfolio.Holdings {
		bySymbol[h.Symbol] = h
	}
	assert.True(t, bySymbol["BOOK"].CurrentValue.Equal(dec("140")))
	assert.True(t, bySymbol["BOOK"].Profit.Equal(dec("4.4")))
	assert.True(t, bySymbol["PNCL"].CurrentValue.Equal(dec("180")))
	assert.True(t, bySymbol["PNCL"].Profit.Equal(dec("-2")))
	assert.True(t, portfolio.PortfolioValue.Equal(dec("320")))
	assert.True(t, portfolio.TotalProfit.Equal(dec("2.4")))
}

func TestTradingTycoonStaysUnlocked(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	user := env.signup(t, "aditi")

	_, err := env.trading.Buy(ctx, user.ID, "PNCL", 5)
	require.NoError(t, err)

	env.setPrice(t, "PNCL", "300")
	states, err := env.achievements.Evaluate(ctx, user.ID)
	require.NoError(t, err)
	tycoon := findAchievement(t, states, domain.AchievementTradingTycoon)
	assert.True(t, tycoon.Unlocked)
	assert.True(t, tycoon.Progress.Equal(dec("1000")))
	require.NotNil(t, tycoon.UnlockedAt)
	unlockedAt := *tycoon.UnlockedAt

	env.setPrice(t, "PNCL", "45.5")
	states, err = env.achievements.Evaluate(ctx, user.ID)
	require.NoError(t, err)
	tycoon = findAchievement(t, states, domain.AchievementTradingTycoon)
	assert.True(t, tycoon.Unlocked)
	assert.True(t, tycoon.Progress.IsZero())
	assert.True(t, tycoon.UnlockedAt.Equal(unlockedAt))
}
