// internal/api/handler/stocks.go
package handler

import (
	"context"
	"fmt"
	"net/http"

	"coinquest/internal/domain"
	"coinquest/internal/service"
	"coinquest/internal/util"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// PriceTicker advances market prices on demand.
type PriceTicker interface {
	Tick(ctx context.Context) ([]domain.Stock, error)
}

// StockHandler handles market and trading requests.
type StockHandler struct {
	responder
	trading service.TradingService
	ticker  PriceTicker
}

// NewStockHandler creates a new StockHandler.
func NewStockHandler(trading service.TradingService, ticker PriceTicker, logger logrus.FieldLogger) *StockHandler {
	return &StockHandler{
		responder: responder{logger: logger},
		trading:   trading,
		ticker:    ticker,
	}
}

// TradeRequest represents the request body for buy and sell.
type TradeRequest struct {
	Shares int64 `json:"shares"`
}

// ListStocks returns every instrument sorted by symbol.
// GET /api/stocks
func (h *StockHandler) ListStocks(w http.ResponseWriter, r *http.Request) {
	stocks, err := h.trading.ListStocks(r.Context())
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	h.respondWithData(w, http.StatusOK, "", stocks)
}

// Portfolio returns the user's valued positions and recent trades.
// GET /api/stocks/portfolio
func (h *StockHandler) Portfolio(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	portfolio, err := h.trading.GetPortfolio(r.Context(), userID)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	h.respondWithData(w, http.StatusOK, "", portfolio)
}

// Refresh runs one price tick immediately.
// POST /api/stocks/refresh
func (h *StockHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	stocks, err := h.ticker.Tick(r.Context())
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	h.respondWithData(w, http.StatusOK, "Prices updated", stocks)
}

// Buy purchases shares of {symbol}.
// POST /api/stocks/{symbol}/buy
func (h *StockHandler) Buy(w http.ResponseWriter, r *http.Request) {
	h.trade(w, r, h.trading.Buy, "Purchase successful")
}

// Sell sells shares of {symbol}.
// POST /api/stocks/{symbol}/sell
func (h *StockHandler) Sell(w http.ResponseWriter, r *http.Request) {
	h.trade(w, r, h.trading.Sell, "Sale successful")
}

type tradeFunc func(ctx context.Context, userID uuid.UUID, symbol string, shares int64) (*service.TradeResult, error)

func (h *StockHandler) trade(w http.ResponseWriter, r *http.Request, do tradeFunc, message string) {
	userID, err := currentUserID(r)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	var req TradeRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondWithError(w, err)
		return
	}
	if req.Shares <= 0 {
		h.respondWithError(w, fmt.Errorf("%w: shares must be a positive integer", util.ErrInvalidInput))
		return
	}

	result, err := do(r.Context(), userID, chi.URLParam(r, "symbol"), req.Shares)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	h.respondWithData(w, http.StatusOK, message, result)
}
