// internal/service/price_simulator.go
package service

import (
	"context"
	"fmt"
	"math/rand/v2"

	"coinquest/internal/domain"
	"coinquest/internal/repository"
	"coinquest/pkg/db"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Bounds of a single tick's fractional price change. The upper bound is exclusive.
const (
	MinTickChange = -0.03
	MaxTickChange = 0.05
)

// PriceSimulator moves every stock price by a bounded random walk.
type PriceSimulator struct {
	tx        db.Transactor
	stockRepo repository.StockRepository
	randFloat func() float64 // Uniform in [0, 1)
	logger    logrus.FieldLogger
}

// NewPriceSimulator creates a simulator. randFloat defaults to math/rand/v2 when nil.
func NewPriceSimulator(tx db.Transactor, stockRepo repository.StockRepository, randFloat func() float64, logger logrus.FieldLogger) *PriceSimulator {
	if randFloat == nil {
		randFloat = rand.Float64
	}
	return &PriceSimulator{tx: tx, stockRepo: stockRepo, randFloat: randFloat, logger: logger}
}

// Tick applies one random change in [MinTickChange, MaxTickChange) to every stock.
// All stocks are updated in a single transaction.
func (p *PriceSimulator) Tick(ctx context.Context) ([]domain.Stock, error) {
	txController, txExecutor, err := beginTx(ctx, p.tx, "price tick")
	if err != nil {
		return nil, err
	}
	defer p.tx.Rollback(txController)

	stocks, err := p.stockRepo.ListStocksForUpdate(ctx, txExecutor)
	if err != nil {
		return nil, fmt.Errorf("price tick: %w", err)
	}
	for i := range stocks {
		pct := MinTickChange + p.randFloat()*(MaxTickChange-MinTickChange)
		stocks[i].ApplyChange(decimal.NewFromFloat(pct))
		if err := p.stockRepo.UpdateStockPrice(ctx, txExecutor, &stocks[i]); err != nil {
			return nil, fmt.Errorf("price tick: %w", err)
		}
	}

	if err := p.tx.Commit(txController); err != nil {
		return nil, fmt.Errorf("price tick: failed to commit transaction: %w", err)
	}
	p.logger.WithField("stocks", len(stocks)).Debug("Stock prices refreshed")
	return stocks, nil
}
