// internal/service/trading_service.go
package service

import (
	"context"
	"fmt"
	"strings"

	"coinquest/internal/domain"
	"coinquest/internal/repository"
	"coinquest/internal/util"
	"coinquest/pkg/db"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// RecentTradesLimit is the number of trades returned with a portfolio.
const RecentTradesLimit = 50

// TradeResult is the outcome of a committed buy or sell.
type TradeResult struct {
	Holding     *domain.Holding     `json:"holding,omitempty"` // Nil when a sell closed the position
	Wallet      *domain.Wallet      `json:"wallet"`
	Trade       *domain.Trade       `json:"trade"`
	Stock       *domain.Stock       `json:"stock"`
	Transaction *domain.Transaction `json:"transaction"`
}

// PortfolioHolding is a position valued at the current stock price.
type PortfolioHolding struct {
	domain.Holding
	CurrentPrice decimal.Decimal `json:"currentPrice"`
	CurrentValue decimal.Decimal `json:"currentValue"`
	Profit       decimal.Decimal `json:"profit"`
}

// Portfolio is a user's positions, recent trades and derived totals.
type Portfolio struct {
	Holdings       []PortfolioHolding `json:"holdings"`
	Trades         []domain.Trade     `json:"trades"`
	PortfolioValue decimal.Decimal    `json:"portfolioValue"`
	TotalProfit    decimal.Decimal    `json:"totalProfit"`
}

// TradingService defines the interface for stock trading.
type TradingService interface {
	ListStocks(ctx context.Context) ([]domain.Stock, error)
	Buy(ctx context.Context, userID uuid.UUID, symbol string, shares int64) (*TradeResult, error)
	Sell(ctx context.Context, userID uuid.UUID, symbol string, shares int64) (*TradeResult, error)
	GetPortfolio(ctx context.Context, userID uuid.UUID) (*Portfolio, error)
	SeedStocks(ctx context.Context) (int, error)
}

type tradingService struct {
	tx           db.Transactor
	dbExecutor   repository.DBExecutor
	stockRepo    repository.StockRepository
	holdingRepo  repository.HoldingRepository
	tradeRepo    repository.TradeRepository
	ledger       ledger
	achievements AchievementEvaluator
	logger       logrus.FieldLogger
}

// NewTradingService creates a new TradingService. achievements may be nil.
func NewTradingService(
	tx db.Transactor,
	dbExecutor repository.DBExecutor,
	repos repository.Repositories,
	achievements AchievementEvaluator,
	logger logrus.FieldLogger,
) TradingService {
	return &tradingService{
		tx:           tx,
		dbExecutor:   dbExecutor,
		stockRepo:    repos.Stocks,
		holdingRepo:  repos.Holdings,
		tradeRepo:    repos.Trades,
		ledger:       ledger{wallets: repos.Wallets, transactions: repos.Transactions},
		achievements: achievements,
		logger:       logger,
	}
}

func normalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// ListStocks returns every stock ordered by symbol.
func (s *tradingService) ListStocks(ctx context.Context) ([]domain.Stock, error) {
	stocks, err := s.stockRepo.ListStocks(ctx, s.dbExecutor)
	if err != nil {
		return nil, fmt.Errorf("list stocks: %w", err)
	}
	return stocks, nil
}

func (s *tradingService) getStock(ctx context.Context, q repository.DBExecutor, symbol string) (*domain.Stock, error) {
	stock, err := s.stockRepo.GetStockBySymbol(ctx, q, symbol)
	if err != nil {
		if util.IsError(err, util.ErrNotFound) {
			return nil, util.ErrStockNotFound
		}
		return nil, err
	}
	return stock, nil
}

// Buy debits price*shares from the discretionary balance and adds the shares to the
// user's holding at a recomputed average cost. The wallet, holding, ledger entry and
// trade commit together.
func (s *tradingService) Buy(ctx context.Context, userID uuid.UUID, symbol string, shares int64) (*TradeResult, error) {
	if shares <= 0 {
		return nil, util.ErrInvalidInput
	}
	symbol = normalizeSymbol(symbol)

	txController, txExecutor, err := beginTx(ctx, s.tx, "buy")
	if err != nil {
		return nil, err
	}
	defer s.tx.Rollback(txController)

	stock, err := s.getStock(ctx, txExecutor, symbol)
	if err != nil {
		return nil, fmt.Errorf("buy: %w", err)
	}
	wallet, err := s.ledger.wallet(ctx, txExecutor, userID, true)
	if err != nil {
		return nil, fmt.Errorf("buy: failed to get wallet for user %s: %w", userID, err)
	}

	cost := stock.Price.Mul(decimal.NewFromInt(shares))
	transaction, err := s.ledger.debit(ctx, txExecutor, wallet, cost, fmt.Sprintf("Bought %d %s shares", shares, symbol))
	if err != nil {
		return nil, fmt.Errorf("buy: %w", err)
	}

	if err := s.holdingRepo.EnsureHolding(ctx, txExecutor, domain.NewHolding(userID, stock)); err != nil {
		return nil, fmt.Errorf("buy: %w", err)
	}
	holding, err := s.holdingRepo.GetHoldingForUpdate(ctx, txExecutor, userID, stock.ID)
	if err != nil {
		return nil, fmt.Errorf("buy: %w", err)
	}
	holding.AddShares(shares, cost)
	if err := s.holdingRepo.UpdateHolding(ctx, txExecutor, holding); err != nil {
		return nil, fmt.Errorf("buy: %w", err)
	}

	trade := domain.NewTrade(userID, stock, domain.TradeTypeBuy, shares)
	if err := s.tradeRepo.CreateTrade(ctx, txExecutor, trade); err != nil {
		return nil, fmt.Errorf("buy: %w", err)
	}

	if err := s.tx.Commit(txController); err != nil {
		return nil, fmt.Errorf("buy: failed to commit transaction: %w", err)
	}

	evaluateAchievements(ctx, s.achievements, s.logger, userID)
	return &TradeResult{Holding: holding, Wallet: wallet, Trade: trade, Stock: stock, Transaction: transaction}, nil
}

// Sell credits price*shares to the discretionary balance and removes the shares from
// the user's holding, deleting it when it reaches zero. avgCost is left unchanged.
func (s *tradingService) Sell(ctx context.Context, userID uuid.UUID, symbol string, shares int64) (*TradeResult, error) {
	if shares <= 0 {
		return nil, util.ErrInvalidInput
	}
	symbol = normalizeSymbol(symbol)

	txController, txExecutor, err := beginTx(ctx, s.tx, "sell")
	if err != nil {
		return nil, err
	}
	defer s.tx.Rollback(txController)

	stock, err := s.getStock(ctx, txExecutor, symbol)
	if err != nil {
		return nil, fmt.Errorf("sell: %w", err)
	}
	// Wallet before holding, the same lock order as Buy.
	wallet, err := s.ledger.wallet(ctx, txExecutor, userID, true)
	if err != nil {
		return nil, fmt.Errorf("sell: failed to get wallet for user %s: %w", userID, err)
	}
	holding, err := s.holdingRepo.GetHoldingForUpdate(ctx, txExecutor, userID, stock.ID)
	if err != nil {
		if util.IsError(err, util.ErrNotFound) {
			return nil, util.ErrInsufficientShares
		}
		return nil, fmt.Errorf("sell: %w", err)
	}
	if holding.Shares < shares {
		return nil, util.ErrInsufficientShares
	}

	proceeds := stock.Price.Mul(decimal.NewFromInt(shares))
	transaction, err := s.ledger.credit(ctx, txExecutor, wallet, proceeds, domain.TransactionTypeIncome, fmt.Sprintf("Sold %d %s shares", shares, symbol))
	if err != nil {
		return nil, fmt.Errorf("sell: %w", err)
	}

	holding.RemoveShares(shares)
	if holding.Shares == 0 {
		if err := s.holdingRepo.DeleteHolding(ctx, txExecutor, holding.ID); err != nil {
			return nil, fmt.Errorf("sell: %w", err)
		}
		holding = nil
	} else if err := s.holdingRepo.UpdateHolding(ctx, txExecutor, holding); err != nil {
		return nil, fmt.Errorf("sell: %w", err)
	}

	trade := domain.NewTrade(userID, stock, domain.TradeTypeSell, shares)
	if err := s.tradeRepo.CreateTrade(ctx, txExecutor, trade); err != nil {
		return nil, fmt.Errorf("sell: %w", err)
	}

	if err := s.tx.Commit(txController); err != nil {
		return nil, fmt.Errorf("sell: failed to commit transaction: %w", err)
	}

	evaluateAchievements(ctx, s.achievements, s.logger, userID)
	return &TradeResult{Holding: holding, Wallet: wallet, Trade: trade, Stock: stock, Transaction: transaction}, nil
}

// GetPortfolio values every holding at the latest stock price. A holding whose
// stock cannot be found is valued at zero.
func (s *tradingService) GetPortfolio(ctx context.Context, userID uuid.UUID) (*Portfolio, error) {
	holdings, err := s.holdingRepo.ListHoldingsByUser(ctx, s.dbExecutor, userID)
	if err != nil {
		return nil, fmt.Errorf("get portfolio: %w", err)
	}
	trades, err := s.tradeRepo.ListTradesByUser(ctx, s.dbExecutor, userID, RecentTradesLimit)
	if err != nil {
		return nil, fmt.Errorf("get portfolio: %w", err)
	}
	stocks, err := s.stockRepo.ListStocks(ctx, s.dbExecutor)
	if err != nil {
		return nil, fmt.Errorf("get portfolio: %w", err)
	}
	prices := priceIndex(stocks)

	portfolio := &Portfolio{
		Holdings:       make([]PortfolioHolding, 0, len(holdings)),
		Trades:         trades,
		PortfolioValue: decimal.Zero,
		TotalProfit:    decimal.Zero,
	}
	for _, h := range holdings {
		ph := PortfolioHolding{Holding: h, CurrentPrice: decimal.Zero, CurrentValue: decimal.Zero, Profit: decimal.Zero}
		if price, ok := prices[h.Symbol]; ok {
			ph.CurrentPrice = price
			ph.CurrentValue = h.MarketValue(price)
			ph.Profit = h.UnrealizedProfit(price)
		}
		portfolio.PortfolioValue = portfolio.PortfolioValue.Add(ph.CurrentValue)
		portfolio.TotalProfit = portfolio.TotalProfit.Add(ph.Profit)
		portfolio.Holdings = append(portfolio.Holdings, ph)
	}
	return portfolio, nil
}

// SeedStocks inserts the default instruments that do not exist yet and reports how many were added.
func (s *tradingService) SeedStocks(ctx context.Context) (int, error) {
	txController, txExecutor, err := beginTx(ctx, s.tx, "seed stocks")
	if err != nil {
		return 0, err
	}
	defer s.tx.Rollback(txController)

	added := 0
	for _, stock := range domain.DefaultStocks() {
		inserted, err := s.stockRepo.InsertStockIfAbsent(ctx, txExecutor, stock)
		if err != nil {
			return 0, fmt.Errorf("seed stocks: %w", err)
		}
		if inserted {
			added++
		}
	}

	if err := s.tx.Commit(txController); err != nil {
		return 0, fmt.Errorf("seed stocks: failed to commit transaction: %w", err)
	}
	return added, nil
}

// priceIndex maps symbol to current price.
func priceIndex(stocks []domain.Stock) map[string]decimal.Decimal {
	prices := make(map[string]decimal.Decimal, len(stocks))
	for _, st := range stocks {
		prices[st.Symbol] = st.Price
	}
	return prices
}

// unrealizedProfit sums (price - avgCost) * shares. Holdings without a known price add nothing.
func unrealizedProfit(holdings []domain.Holding, prices map[string]decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, h := range holdings {
		if price, ok := prices[h.Symbol]; ok {
			total = total.Add(h.UnrealizedProfit(price))
		}
	}
	return total
}
