// internal/domain/stock.go
package domain

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// HistoryLimit caps the number of past prices kept on a Stock.
const HistoryLimit = 50

// MinPrice is the floor a simulated price can fall to.
var MinPrice = decimal.RequireFromString("0.01")

// PriceHistory is an ordered list of past prices, oldest first.
// It is stored as a NUMERIC[] column.
type PriceHistory []decimal.Decimal

// Scan implements sql.Scanner.
func (h *PriceHistory) Scan(src any) error {
	var raw pq.StringArray
	if err := raw.Scan(src); err != nil {
		return fmt.Errorf("scan price history: %w", err)
	}
	out := make(PriceHistory, 0, len(raw))
	for _, s := range raw {
		d, err := decimal.NewFromString(s)
		if err != nil {
			return fmt.Errorf("scan price history: %w", err)
		}
		out = append(out, d)
	}
	*h = out
	return nil
}

// Value implements driver.Valuer.
func (h PriceHistory) Value() (driver.Value, error) {
	raw := make(pq.StringArray, len(h))
	for i, d := range h {
		raw[i] = d.StringFixed(2)
	}
	return raw.Value()
}

// Append adds a price and drops the oldest entries beyond HistoryLimit.
func (h PriceHistory) Append(price decimal.Decimal) PriceHistory {
	out := append(append(PriceHistory(nil), h...), price)
	if len(out) > HistoryLimit {
		out = out[len(out)-HistoryLimit:]
	}
	return out
}

// Stock is a tradable instrument shared by all users.
type Stock struct {
	ID            int64           `db:"id" json:"id"`
	Symbol        string          `db:"symbol" json:"symbol"`
	Name          string          `db:"name" json:"name"`
	Price         decimal.Decimal `db:"price" json:"price"`
	Change        decimal.Decimal `db:"change" json:"change"`
	ChangePercent decimal.Decimal `db:"change_percent" json:"changePercent"`
	History       PriceHistory    `db:"history" json:"history"`
	Icon          string          `db:"icon" json:"icon"`
	Description   string          `db:"description" json:"description"`
	Sector        string          `db:"sector" json:"sector"`
	CreatedAt     time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time       `db:"updated_at" json:"updatedAt"`
}

// ApplyChange moves the price by the fractional change pct (0.05 = +5%).
// The new price is rounded to cents and never falls below MinPrice.
func (s *Stock) ApplyChange(pct decimal.Decimal) {
	newPrice := Round2(s.Price.Mul(decimal.NewFromInt(1).Add(pct)))
	if newPrice.LessThan(MinPrice) {
		newPrice = MinPrice
	}
	s.Change = Round2(newPrice.Sub(s.Price))
	s.ChangePercent = Round2(pct.Mul(decimal.NewFromInt(100)))
	s.History = s.History.Append(newPrice)
	s.Price = newPrice
	s.UpdatedAt = time.Now().UTC()
}

// TradeType is the side of a trade.
type TradeType string

const (
	TradeTypeBuy  TradeType = "buy"
	TradeTypeSell TradeType = "sell"
)

// Holding is a user's open position in one stock. Rows with zero shares are deleted.
type Holding struct {
	ID        int64           `db:"id" json:"id"`
	UserID    uuid.UUID       `db:"user_id" json:"userId"`
	StockID   int64           `db:"stock_id" json:"stockId"`
	Symbol    string          `db:"symbol" json:"symbol"`
	Shares    int64           `db:"shares" json:"shares"`
	AvgCost   decimal.Decimal `db:"avg_cost" json:"avgCost"`
	CreatedAt time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time       `db:"updated_at" json:"updatedAt"`
}

// NewHolding creates an empty position for the user in the stock.
func NewHolding(userID uuid.UUID, stock *Stock) *Holding {
	now := time.Now().UTC()
	return &Holding{
		UserID:    userID,
		StockID:   stock.ID,
		Symbol:    stock.Symbol,
		Shares:    0,
		AvgCost:   decimal.Zero,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// AddShares records a purchase of shares for cost and recomputes the weighted
// average cost, rounded to cents.
func (h *Holding) AddShares(shares int64, cost decimal.Decimal) {
	total := h.Shares + shares
	basis := h.AvgCost.Mul(decimal.NewFromInt(h.Shares)).Add(cost)
	h.AvgCost = Round2(basis.Div(decimal.NewFromInt(total)))
	h.Shares = total
	h.UpdatedAt = time.Now().UTC()
}

// RemoveShares records a sale. AvgCost is left unchanged.
func (h *Holding) RemoveShares(shares int64) {
	h.Shares -= shares
	h.UpdatedAt = time.Now().UTC()
}

// MarketValue is price * shares.
func (h *Holding) MarketValue(price decimal.Decimal) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(h.Shares))
}

// UnrealizedProfit is (price - avgCost) * shares.
func (h *Holding) UnrealizedProfit(price decimal.Decimal) decimal.Decimal {
	return price.Sub(h.AvgCost).Mul(decimal.NewFromInt(h.Shares))
}

// Trade is an immutable record of one executed buy or sell.
type Trade struct {
	ID        int64           `db:"id" json:"id"`
	UserID    uuid.UUID       `db:"user_id" json:"userId"`
	StockID   int64           `db:"stock_id" json:"stockId"`
	Symbol    string          `db:"symbol" json:"symbol"`
	Type      TradeType       `db:"type" json:"type"`
	Shares    int64           `db:"shares" json:"shares"`
	Price     decimal.Decimal `db:"price" json:"price"` // Stock price at execution
	CreatedAt time.Time       `db:"created_at" json:"createdAt"`
}

// NewTrade creates a trade executed at the stock's current price.
func NewTrade(userID uuid.UUID, stock *Stock, tradeType TradeType, shares int64) *Trade {
	return &Trade{
		UserID:    userID,
		StockID:   stock.ID,
		Symbol:    stock.Symbol,
		Type:      tradeType,
		Shares:    shares,
		Price:     stock.Price,
		CreatedAt: time.Now().UTC(),
	}
}
