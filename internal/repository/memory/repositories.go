// internal/repository/memory/repositories.go
package memory

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"
	"time"

	"coinquest/internal/domain"
	"coinquest/internal/repository"
	"coinquest/internal/util"

	"github.com/google/uuid"
)

// UserRepository implements repository.UserRepository in memory.
type UserRepository struct{ s *Store }

func (r *UserRepository) CreateUser(ctx context.Context, _ repository.DBExecutor, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.data.users[user.ID]; ok {
		return fmt.Errorf("failed to create user: %w", util.ErrDuplicateEntry)
	}
	for _, u := range r.s.data.users {
		if u.Email == user.Email {
			return fmt.Errorf("failed to create user: %w", util.ErrDuplicateEntry)
		}
	}
	r.s.data.users[user.ID] = cloneUser(*user)
	return nil
}

func (r *UserRepository) GetUserByID(ctx context.Context, _ repository.DBExecutor, id uuid.UUID) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.data.users[id]
	if !ok {
		return nil, fmt.Errorf("failed to get user by ID %s: %w", id, util.ErrNotFound)
	}
	u = cloneUser(u)
	return &u, nil
}

func (r *UserRepository) GetUserByIDForUpdate(ctx context.Context, q repository.DBExecutor, id uuid.UUID) (*domain.User, error) {
	return r.GetUserByID(ctx, q, id)
}

func (r *UserRepository) GetUserByEmail(ctx context.Context, _ repository.DBExecutor, email string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	email = domain.NormalizeEmail(email)
	for _, u := range r.s.data.users {
		if u.Email == email {
			u = cloneUser(u)
			return &u, nil
		}
	}
	return nil, fmt.Errorf("failed to get user by email: %w", util.ErrNotFound)
}

func (r *UserRepository) UpdateUser(ctx context.Context, _ repository.DBExecutor, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.data.users[user.ID]; !ok {
		return fmt.Errorf("failed to update user %s: %w", user.ID, util.ErrNotFound)
	}
	user.UpdatedAt = time.Now().UTC()
	r.s.data.users[user.ID] = cloneUser(*user)
	return nil
}

func (r *UserRepository) ListTopByXP(ctx context.Context, _ repository.DBExecutor, limit int) ([]domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	users := make([]domain.User, 0, len(r.s.data.users))
	for _, u := range r.s.data.users {
		users = append(users, cloneUser(u))
	}
	sort.SliceStable(users, func(i, j int) bool {
		if users[i].XP != users[j].XP {
			return users[i].XP > users[j].XP
		}
		return users[i].CreatedAt.Before(users[j].CreatedAt)
	})
	if limit >= 0 && len(users) > limit {
		users = users[:limit]
	}
	return users, nil
}

func (r *UserRepository) CountWithMoreXP(ctx context.Context, _ repository.DBExecutor, xp int64) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var n int64
	for _, u := range r.s.data.users {
		if u.XP > xp {
			n++
		}
	}
	return n, nil
}

// WalletRepository implements repository.WalletRepository in memory.
type WalletRepository struct{ s *Store }

func (r *WalletRepository) EnsureWallet(ctx context.Context, _ repository.DBExecutor, wallet *domain.Wallet) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, w := range r.s.data.wallets {
		if w.UserID == wallet.UserID {
			return nil
		}
	}
	w := *wallet
	w.ID = r.s.data.id()
	r.s.data.wallets[w.ID] = w
	return nil
}

func (r *WalletRepository) GetWalletByUserID(ctx context.Context, _ repository.DBExecutor, userID uuid.UUID) (*domain.Wallet, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, w := range r.s.data.wallets {
		if w.UserID == userID {
			return &w, nil
		}
	}
	return nil, fmt.Errorf("failed to get wallet for user %s: %w", userID, util.ErrNotFound)
}

func (r *WalletRepository) GetWalletByUserIDForUpdate(ctx context.Context, q repository.DBExecutor, userID uuid.UUID) (*domain.Wallet, error) {
	return r.GetWalletByUserID(ctx, q, userID)
}

func (r *WalletRepository) UpdateWallet(ctx context.Context, _ repository.DBExecutor, wallet *domain.Wallet) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.data.wallets[wallet.ID]; !ok {
		return fmt.Errorf("failed to update wallet %d: %w", wallet.ID, util.ErrNotFound)
	}
	if wallet.DiscretionaryBalance.IsNegative() {
		return fmt.Errorf("failed to update wallet %d: discretionary balance would be negative", wallet.ID)
	}
	wallet.UpdatedAt = time.Now().UTC()
	r.s.data.wallets[wallet.ID] = *wallet
	return nil
}

// TransactionRepository implements repository.TransactionRepository in memory.
type TransactionRepository struct{ s *Store }

func (r *TransactionRepository) CreateTransaction(ctx context.Context, _ repository.DBExecutor, transaction *domain.Transaction) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.data.wallets[transaction.WalletID]; !ok {
		return fmt.Errorf("failed to create transaction: wallet %d: %w", transaction.WalletID, util.ErrNotFound)
	}
	transaction.ID = r.s.data.id()
	r.s.data.transactions = append(r.s.data.transactions, *transaction)
	return nil
}

func (r *TransactionRepository) GetTransactionsByWalletID(ctx context.Context, _ repository.DBExecutor, walletID int64, limit int) ([]domain.Transaction, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []domain.Transaction{}
	for i := len(r.s.data.transactions) - 1; i >= 0 && len(out) < limit; i-- {
		if t := r.s.data.transactions[i]; t.WalletID == walletID {
			out = append(out, t)
		}
	}
	return out, nil
}

// StockRepository implements repository.StockRepository in memory.
type StockRepository struct{ s *Store }

func (r *StockRepository) ListStocks(ctx context.Context, _ repository.DBExecutor) ([]domain.Stock, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	stocks := make([]domain.Stock, 0, len(r.s.data.stocks))
	for _, st := range r.s.data.stocks {
		stocks = append(stocks, cloneStock(st))
	}
	sort.Slice(stocks, func(i, j int) bool { return stocks[i].Symbol < stocks[j].Symbol })
	return stocks, nil
}

func (r *StockRepository) ListStocksForUpdate(ctx context.Context, q repository.DBExecutor) ([]domain.Stock, error) {
	return r.ListStocks(ctx, q)
}

func (r *StockRepository) GetStockBySymbol(ctx context.Context, _ repository.DBExecutor, symbol string) (*domain.Stock, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, st := range r.s.data.stocks {
		if st.Symbol == symbol {
			st = cloneStock(st)
			return &st, nil
		}
	}
	return nil, fmt.Errorf("failed to get stock %s: %w", symbol, util.ErrNotFound)
}

func (r *StockRepository) InsertStockIfAbsent(ctx context.Context, _ repository.DBExecutor, stock *domain.Stock) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, st := range r.s.data.stocks {
		if st.Symbol == stock.Symbol {
			return false, nil
		}
	}
	stock.ID = r.s.data.id()
	r.s.data.stocks[stock.ID] = cloneStock(*stock)
	return true, nil
}

func (r *StockRepository) UpdateStockPrice(ctx context.Context, _ repository.DBExecutor, stock *domain.Stock) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	current, ok := r.s.data.stocks[stock.ID]
	if !ok {
		return fmt.Errorf("failed to update stock %s: %w", stock.Symbol, util.ErrNotFound)
	}
	current.Price = stock.Price
	current.Change = stock.Change
	current.ChangePercent = stock.ChangePercent
	current.History = append(domain.PriceHistory(nil), stock.History...)
	current.UpdatedAt = time.Now().UTC()
	stock.UpdatedAt = current.UpdatedAt
	r.s.data.stocks[stock.ID] = current
	return nil
}

// HoldingRepository implements repository.HoldingRepository in memory.
type HoldingRepository struct{ s *Store }

func (r *HoldingRepository) EnsureHolding(ctx context.Context, _ repository.DBExecutor, holding *domain.Holding) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.data.stocks[holding.StockID]; !ok {
		return fmt.Errorf("failed to ensure holding %s: stock %d: %w", holding.Symbol, holding.StockID, util.ErrNotFound)
	}
	for _, h := range r.s.data.holdings {
		if h.UserID == holding.UserID && h.StockID == holding.StockID {
			return nil
		}
	}
	h := *holding
	h.ID = r.s.data.id()
	r.s.data.holdings[h.ID] = h
	return nil
}

func (r *HoldingRepository) GetHoldingForUpdate(ctx context.Context, _ repository.DBExecutor, userID uuid.UUID, stockID int64) (*domain.Holding, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, h := range r.s.data.holdings {
		if h.UserID == userID && h.StockID == stockID {
			return &h, nil
		}
	}
	return nil, fmt.Errorf("failed to get holding of stock %d for user %s: %w", stockID, userID, util.ErrNotFound)
}

func (r *HoldingRepository) UpdateHolding(ctx context.Context, _ repository.DBExecutor, holding *domain.Holding) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.data.holdings[holding.ID]; !ok {
		return fmt.Errorf("failed to update holding %d: %w", holding.ID, util.ErrNotFound)
	}
	if holding.Shares < 0 || holding.AvgCost.IsNegative() {
		return fmt.Errorf("failed to update holding %d: negative shares or cost", holding.ID)
	}
	holding.UpdatedAt = time.Now().UTC()
	r.s.data.holdings[holding.ID] = *holding
	return nil
}

func (r *HoldingRepository) DeleteHolding(ctx context.Context, _ repository.DBExecutor, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.data.holdings[id]; !ok {
		return fmt.Errorf("failed to delete holding %d: %w", id, util.ErrNotFound)
	}
	delete(r.s.data.holdings, id)
	return nil
}

func (r *HoldingRepository) ListHoldingsByUser(ctx context.Context, q repository.DBExecutor, userID uuid.UUID) ([]domain.Holding, error) {
	return r.ListHoldingsByUsers(ctx, q, []uuid.UUID{userID})
}

func (r *HoldingRepository) ListHoldingsByUsers(ctx context.Context, _ repository.DBExecutor, userIDs []uuid.UUID) ([]domain.Holding, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []domain.Holding{}
	for _, h := range r.s.data.holdings {
		if h.Shares > 0 && slices.Contains(userIDs, h.UserID) {
			out = append(out, h)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if c := strings.Compare(out[i].UserID.String(), out[j].UserID.String()); c != 0 {
			return c < 0
		}
		return out[i].Symbol < out[j].Symbol
	})
	return out, nil
}

// TradeRepository implements repository.TradeRepository in memory.
type TradeRepository struct{ s *Store }

func (r *TradeRepository) CreateTrade(ctx context.Context, _ repository.DBExecutor, trade *domain.Trade) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if trade.Shares <= 0 {
		return fmt.Errorf("failed to create trade: shares must be positive")
	}
	trade.ID = r.s.data.id()
	r.s.data.trades = append(r.s.data.trades, *trade)
	return nil
}

func (r *TradeRepository) ListTradesByUser(ctx context.Context, _ repository.DBExecutor, userID uuid.UUID, limit int) ([]domain.Trade, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []domain.Trade{}
	for i := len(r.s.data.trades) - 1; i >= 0 && len(out) < limit; i-- {
		if t := r.s.data.trades[i]; t.UserID == userID {
			out = append(out, t)
		}
	}
	return out, nil
}

// ProgressRepository implements repository.ProgressRepository in memory.
type ProgressRepository struct{ s *Store }

func (r *ProgressRepository) EnsureProgress(ctx context.Context, _ repository.DBExecutor, progress *domain.Progress) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.data.progress {
		if p.UserID == progress.UserID {
			return nil
		}
	}
	p := cloneProgress(*progress)
	p.ID = r.s.data.id()
	r.s.data.progress[p.ID] = p
	return nil
}

func (r *ProgressRepository) GetProgressByUserID(ctx context.Context, _ repository.DBExecutor, userID uuid.UUID) (*domain.Progress, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, p := range r.s.data.progress {
		if p.UserID == userID {
			p = cloneProgress(p)
			return &p, nil
		}
	}
	return nil, fmt.Errorf("failed to get progress for user %s: %w", userID, util.ErrNotFound)
}

func (r *ProgressRepository) GetProgressByUserIDForUpdate(ctx context.Context, q repository.DBExecutor, userID uuid.UUID) (*domain.Progress, error) {
	return r.GetProgressByUserID(ctx, q, userID)
}

func (r *ProgressRepository) UpdateProgress(ctx context.Context, _ repository.DBExecutor, progress *domain.Progress) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.data.progress[progress.ID]; !ok {
		return fmt.Errorf("failed to update progress %d: %w", progress.ID, util.ErrNotFound)
	}
	progress.UpdatedAt = time.Now().UTC()
	r.s.data.progress[progress.ID] = cloneProgress(*progress)
	return nil
}
